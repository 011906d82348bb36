package auth

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"github.com/xeptore/flaw/v8"

	"github.com/xeptore/toptracks/config"
	"github.com/xeptore/toptracks/errutil"
	"github.com/xeptore/toptracks/httputil"
	"github.com/xeptore/toptracks/log"
	"github.com/xeptore/toptracks/must"
	"github.com/xeptore/toptracks/spotify"
	"github.com/xeptore/toptracks/spotify/fs"
)

const tokenPath = "/api/token"

type Credentials struct {
	ClientID     string
	ClientSecret string
}

func CredentialsFromFile(content fs.CredentialsFileContent) Credentials {
	return Credentials{
		ClientID:     content.ClientID,
		ClientSecret: content.ClientSecret,
	}
}

func (c Credentials) basic() string {
	return "Basic " + base64.StdEncoding.Strict().EncodeToString([]byte(c.ClientID+":"+c.ClientSecret))
}

type Provider struct {
	accountsBaseURL string
	logger          zerolog.Logger
}

func NewProvider(accountsBaseURL string, logger zerolog.Logger) *Provider {
	return &Provider{
		accountsBaseURL: accountsBaseURL,
		logger:          logger.With().Str("module", "auth").Logger(),
	}
}

// AcquireToken performs a single client-credentials grant. Every failure other
// than the cancellation of ctx is reported as *spotify.AuthError.
func (p *Provider) AcquireToken(ctx context.Context, creds Credentials) (string, error) {
	creds.ClientID = strings.TrimSpace(creds.ClientID)
	creds.ClientSecret = strings.TrimSpace(creds.ClientSecret)
	if creds.ClientID == "" || creds.ClientSecret == "" {
		return "", &spotify.InputError{Input: "", Reason: "client id and client secret are required"}
	}

	status, token, err := p.requestToken(ctx, creds)
	if nil != err {
		if errutil.IsContext(ctx) {
			return "", ctx.Err()
		}
		return "", &spotify.AuthError{Status: status, Err: err}
	}

	p.logger.Debug().Str("access_token", log.RedactString(token)).Msg("Access token acquired")
	return token, nil
}

func (p *Provider) requestToken(ctx context.Context, creds Credentials) (status int, token string, err error) {
	reqURL, err := url.JoinPath(p.accountsBaseURL, tokenPath)
	if nil != err {
		flawP := flaw.P{"err_debug_tree": errutil.Tree(err).FlawP()}
		return 0, "", flaw.From(fmt.Errorf("failed to create token URL: %v", err)).Append(flawP)
	}
	flawP := flaw.P{"url": reqURL, "client_id": log.RedactString(creds.ClientID)}

	reqParams := make(url.Values, 1)
	reqParams.Add("grant_type", "client_credentials")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, strings.NewReader(reqParams.Encode()))
	if nil != err {
		flawP["err_debug_tree"] = errutil.Tree(err).FlawP()
		return 0, "", flaw.From(fmt.Errorf("failed to create token request: %v", err)).Append(flawP)
	}
	req.Header.Add("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Add("Authorization", creds.basic())

	client := http.Client{Timeout: config.TokenRequestTimeout} //nolint:exhaustruct
	resp, err := client.Do(req)
	if nil != err {
		flawP["err_debug_tree"] = errutil.Tree(err).FlawP()
		if errutil.IsTimeout(err) {
			return 0, "", flaw.From(fmt.Errorf("token request timed out after %s", config.TokenRequestTimeout)).Append(flawP)
		}
		return 0, "", flaw.From(fmt.Errorf("failed to issue token request: %v", err)).Append(flawP)
	}
	defer func() {
		if closeErr := resp.Body.Close(); nil != closeErr {
			flawP["err_debug_tree"] = errutil.Tree(closeErr).FlawP()
			closeErr = flaw.From(fmt.Errorf("failed to close token response body: %v", closeErr)).Append(flawP)
			if nil != err {
				err = must.BeFlaw(err).Join(closeErr)
			} else {
				err = closeErr
			}
		}
	}()
	flawP["response"] = errutil.HTTPResponseFlawPayload(resp)

	if code := resp.StatusCode; code < 200 || code > 299 {
		respBytes, err := httputil.ReadOptionalResponseBody(ctx, resp)
		if nil != err {
			return code, "", asFlaw(err, flawP)
		}
		flawP["response_body"] = string(respBytes)
		if msg := httputil.ErrorMessage(respBytes); msg != "" {
			return code, "", flaw.From(fmt.Errorf("token endpoint rejected credentials: %s", msg)).Append(flawP)
		}
		return code, "", flaw.From(fmt.Errorf("unexpected status code: %d", code)).Append(flawP)
	}

	respBytes, err := httputil.ReadResponseBody(ctx, resp)
	if nil != err {
		return resp.StatusCode, "", asFlaw(err, flawP)
	}
	var respBody struct {
		AccessToken string `json:"access_token"`
		TokenType   string `json:"token_type"`
		ExpiresIn   int    `json:"expires_in"`
	}
	if err := json.Unmarshal(respBytes, &respBody); nil != err {
		flawP["response_body"] = string(respBytes)
		flawP["err_debug_tree"] = errutil.Tree(err).FlawP()
		return resp.StatusCode, "", flaw.From(fmt.Errorf("failed to decode token response body: %v", err)).Append(flawP)
	}
	if respBody.AccessToken == "" {
		flawP["token_type"] = respBody.TokenType
		return resp.StatusCode, "", flaw.From(errors.New("token response has no access token")).Append(flawP)
	}

	return resp.StatusCode, respBody.AccessToken, nil
}

// asFlaw converts the plain errors returned by httputil into a flaw carrying flawP.
func asFlaw(err error, flawP flaw.P) error {
	if errutil.IsFlaw(err) {
		return must.BeFlaw(err).Append(flawP)
	}
	flawP["err_debug_tree"] = errutil.Tree(err).FlawP()
	return flaw.From(fmt.Errorf("failed to read token response body: %v", err)).Append(flawP)
}
