package httputil

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/xeptore/flaw/v8"

	"github.com/xeptore/toptracks/errutil"
)

func readResponseBody(ctx context.Context, resp *http.Response) ([]byte, error) {
	respBody, err := io.ReadAll(resp.Body)
	if nil != err {
		switch {
		case errutil.IsContext(ctx):
			return nil, ctx.Err()
		case errutil.IsTimeout(err):
			return nil, context.DeadlineExceeded
		default:
			flawP := flaw.P{"err_debug_tree": errutil.Tree(err).FlawP()}
			return nil, flaw.From(fmt.Errorf("failed to read response body: %v", err)).Append(flawP)
		}
	}
	if len(respBody) == 0 {
		return nil, io.EOF
	}
	return respBody, nil
}

func ReadResponseBody(ctx context.Context, resp *http.Response) ([]byte, error) {
	respBody, err := readResponseBody(ctx, resp)
	if nil != err {
		if errors.Is(err, io.EOF) {
			return nil, flaw.From(errors.New("unexpected empty response body"))
		}
		return nil, err
	}
	return respBody, nil
}

func ReadOptionalResponseBody(ctx context.Context, resp *http.Response) ([]byte, error) {
	respBody, err := readResponseBody(ctx, resp)
	if nil != err && !errors.Is(err, io.EOF) {
		return nil, err
	}
	return respBody, nil
}

// ErrorMessage extracts a human readable message from a Spotify error body.
// The Web API nests it as {"error":{"status":..,"message":..}} while the
// accounts service uses {"error":..,"error_description":..}.
func ErrorMessage(b []byte) string {
	if !gjson.ValidBytes(b) {
		return strings.TrimSpace(string(b))
	}

	res := gjson.GetManyBytes(b, "error.message", "error_description", "error")
	switch {
	case res[0].Type == gjson.String:
		return res[0].Str
	case res[1].Type == gjson.String && res[2].Type == gjson.String:
		return res[2].Str + ": " + res[1].Str
	case res[2].Type == gjson.String:
		return res[2].Str
	default:
		return ""
	}
}
