package errutil

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"

	"github.com/xeptore/flaw/v8"
	"gopkg.in/yaml.v3"
)

func HTTPResponseFlawPayload(res *http.Response) flaw.P {
	headers := make(flaw.P, len(res.Header))
	for k, v := range res.Header {
		headers[k] = v
	}
	return flaw.P{
		"status":         res.Status,
		"status_code":    res.StatusCode,
		"content_length": res.ContentLength,
		"proto":          res.Proto,
		"headers":        headers,
	}
}

type Flaw struct {
	Inner        string        `yaml:"inner"`
	InnerType    string        `yaml:"inner_type"`
	Records      []Record      `yaml:"records"`
	JoinedErrors []JoinedError `yaml:"joined_errors"`
	StackTrace   []StackTrace  `yaml:"stack_trace"`
}

type Record struct {
	Function string         `yaml:"function"`
	Payload  map[string]any `yaml:"payload"`
}

type JoinedError struct {
	Message          string      `yaml:"message"`
	CallerStackTrace *StackTrace `yaml:"caller_stack_trace"`
}

type StackTrace struct {
	File     string `yaml:"file"`
	Line     int    `yaml:"line"`
	Function string `yaml:"function"`
}

// FlawToYAML renders f for the `--debug-dump` output of the CLI.
func FlawToYAML(f *flaw.Flaw) ([]byte, error) {
	records := make([]Record, len(f.Records))
	for i, v := range f.Records {
		records[i] = Record{Function: v.Function, Payload: v.Payload}
	}

	joinedErrors := make([]JoinedError, len(f.JoinedErrors))
	for i, v := range f.JoinedErrors {
		joinedErrors[i] = JoinedError{Message: v.Message, CallerStackTrace: nil}
		if st := v.CallerStackTrace; nil != st {
			joinedErrors[i].CallerStackTrace = &StackTrace{File: st.File, Line: st.Line, Function: st.Function}
		}
	}

	stackTraces := make([]StackTrace, len(f.StackTrace))
	for i, v := range f.StackTrace {
		stackTraces[i] = StackTrace{File: v.File, Line: v.Line, Function: v.Function}
	}

	out := Flaw{
		Inner:        f.Inner,
		InnerType:    f.InnerType,
		Records:      records,
		JoinedErrors: joinedErrors,
		StackTrace:   stackTraces,
	}
	var buf bytes.Buffer
	if err := yaml.NewEncoder(&buf).Encode(out); nil != err {
		flawP := flaw.P{"err_debug_tree": Tree(err).FlawP()}
		return nil, flaw.From(fmt.Errorf("failed to encode flaw to yaml: %v", err)).Append(flawP)
	}

	return buf.Bytes(), nil
}

func IsFlaw(err error) bool {
	if flawErr := new(flaw.Flaw); errors.As(err, &flawErr) {
		return true
	}
	return false
}
