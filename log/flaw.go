package log

import (
	"errors"
	"fmt"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"github.com/xeptore/flaw/v8"
)

// Flaw expands err into the event. Errors that carry no *flaw.Flaw in their
// chain are logged with the regular "error" field.
func Flaw(err error) func(e *zerolog.Event) {
	return func(e *zerolog.Event) {
		flawErr := new(flaw.Flaw)
		if !errors.As(err, &flawErr) {
			e.Err(err)
			return
		}

		e.Str("summary", err.Error())
		e.Dict(
			"error",
			zerolog.
				Dict().
				Str("message", flawErr.Inner).
				Str("type_name", flawErr.InnerType).
				Str("syntax_representation", flawErr.InnerSyntaxRepr),
		)
		e.Array("records", records(flawErr))
		e.Array("joined_errors", joinedErrors(flawErr))

		stackTraces := zerolog.Arr()
		for _, v := range flawErr.StackTrace {
			stackTraces.Dict(zerolog.Dict().Str("location", fmt.Sprintf("%s:%d", v.File, v.Line)).Str("function", v.Function))
		}
		e.Array("stack_traces", stackTraces)
	}
}

func records(f *flaw.Flaw) *zerolog.Array {
	out := zerolog.Arr()
	for _, v := range f.Records {
		b, err := json.MarshalWithOption(v.Payload, json.UnorderedMap(), json.DisableNormalizeUTF8(), json.DisableHTMLEscape())
		if nil != err {
			out.Dict(zerolog.Dict().Str("function", v.Function).Dict("payload", zerolog.Dict().Str("error", err.Error()).Str("raw", fmt.Sprintf("%#+v", v.Payload))))
			continue
		}
		out.Dict(zerolog.Dict().Str("function", v.Function).RawJSON("payload", b))
	}
	return out
}

func joinedErrors(f *flaw.Flaw) *zerolog.Array {
	out := zerolog.Arr()
	for _, v := range f.JoinedErrors {
		d := zerolog.
			Dict().
			Dict(
				"error",
				zerolog.
					Dict().
					Str("message", v.Message).
					Str("type_name", v.TypeName).
					Str("syntax_representation", v.SyntaxRepr),
			)
		if st := v.CallerStackTrace; nil != st {
			d.Dict(
				"caller_stack_trace",
				zerolog.
					Dict().
					Str("location", fmt.Sprintf("%s:%d", st.File, st.Line)).
					Str("function", st.Function),
			)
		} else {
			d.Stringer("caller_stack_trace", nil)
		}
		out.Dict(d)
	}
	return out
}
