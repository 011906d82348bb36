package catalog

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/xeptore/flaw/v8"

	"github.com/xeptore/toptracks/errutil"
	"github.com/xeptore/toptracks/httputil"
	"github.com/xeptore/toptracks/must"
	"github.com/xeptore/toptracks/spotify"
)

// get issues a single authorized GET against endpoint and returns the body of
// a 2xx response along with its status code. Every failure other than the
// cancellation of ctx is reported as *spotify.FetchError.
func (c *Client) get(ctx context.Context, token, endpoint string, params url.Values, timeout time.Duration) ([]byte, int, error) {
	status, respBytes, err := c.doGet(ctx, token, endpoint, params, timeout)
	if nil != err {
		if errutil.IsContext(ctx) {
			return nil, status, ctx.Err()
		}
		return nil, status, &spotify.FetchError{Endpoint: endpoint, Status: status, Err: err}
	}
	return respBytes, status, nil
}

func (c *Client) doGet(ctx context.Context, token, endpoint string, params url.Values, timeout time.Duration) (status int, b []byte, err error) {
	reqURL, err := url.JoinPath(c.apiBaseURL, endpoint)
	if nil != err {
		flawP := flaw.P{"endpoint": endpoint, "err_debug_tree": errutil.Tree(err).FlawP()}
		return 0, nil, flaw.From(fmt.Errorf("failed to create request URL: %v", err)).Append(flawP)
	}
	if len(params) > 0 {
		reqURL += "?" + params.Encode()
	}
	flawP := flaw.P{"url": reqURL}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if nil != err {
		flawP["err_debug_tree"] = errutil.Tree(err).FlawP()
		return 0, nil, flaw.From(fmt.Errorf("failed to create request: %v", err)).Append(flawP)
	}
	req.Header.Add("Authorization", "Bearer "+token)
	req.Header.Add("Accept", "application/json")

	client := http.Client{Timeout: timeout} //nolint:exhaustruct
	resp, err := client.Do(req)
	if nil != err {
		flawP["err_debug_tree"] = errutil.Tree(err).FlawP()
		if errutil.IsTimeout(err) {
			return 0, nil, flaw.From(fmt.Errorf("request timed out after %s", timeout)).Append(flawP)
		}
		return 0, nil, flaw.From(fmt.Errorf("failed to send request: %v", err)).Append(flawP)
	}
	defer func() {
		if closeErr := resp.Body.Close(); nil != closeErr {
			flawP["err_debug_tree"] = errutil.Tree(closeErr).FlawP()
			closeErr = flaw.From(fmt.Errorf("failed to close response body: %v", closeErr)).Append(flawP)
			if nil != err {
				err = must.BeFlaw(err).Join(closeErr)
			} else {
				err = closeErr
			}
		}
	}()
	flawP["response"] = errutil.HTTPResponseFlawPayload(resp)

	switch code := resp.StatusCode; {
	case code >= 200 && code <= 299:
	case code == http.StatusUnauthorized:
		respBytes, err := httputil.ReadOptionalResponseBody(ctx, resp)
		if nil != err {
			return code, nil, readFlaw(err, flawP)
		}
		flawP["response_body"] = string(respBytes)
		if msg := httputil.ErrorMessage(respBytes); msg != "" {
			return code, nil, flaw.From(fmt.Errorf("access token was rejected: %s", msg)).Append(flawP)
		}
		return code, nil, flaw.From(errors.New("access token was rejected")).Append(flawP)
	default:
		respBytes, err := httputil.ReadOptionalResponseBody(ctx, resp)
		if nil != err {
			return code, nil, readFlaw(err, flawP)
		}
		flawP["response_body"] = string(respBytes)
		if msg := httputil.ErrorMessage(respBytes); msg != "" {
			return code, nil, flaw.From(fmt.Errorf("unexpected status code %d: %s", code, msg)).Append(flawP)
		}
		return code, nil, flaw.From(fmt.Errorf("unexpected status code: %d", code)).Append(flawP)
	}

	respBytes, err := httputil.ReadResponseBody(ctx, resp)
	if nil != err {
		return resp.StatusCode, nil, readFlaw(err, flawP)
	}
	return resp.StatusCode, respBytes, nil
}

func readFlaw(err error, flawP flaw.P) error {
	if errutil.IsFlaw(err) {
		return must.BeFlaw(err).Append(flawP)
	}
	flawP["err_debug_tree"] = errutil.Tree(err).FlawP()
	return flaw.From(fmt.Errorf("failed to read response body: %v", err)).Append(flawP)
}

func decodeFlaw(err error, respBytes []byte, what string) error {
	flawP := flaw.P{
		"response_body":  string(respBytes),
		"err_debug_tree": errutil.Tree(err).FlawP(),
	}
	return flaw.From(fmt.Errorf("failed to decode %s: %v", what, err)).Append(flawP)
}
