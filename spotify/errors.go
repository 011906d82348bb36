package spotify

import (
	"fmt"
	"net/http"
)

// InputError reports an unusable user input. It is always returned before
// any network request is issued.
type InputError struct {
	Input  string
	Reason string
}

func (e *InputError) Error() string {
	if e.Input == "" {
		return "invalid input: " + e.Reason
	}
	return fmt.Sprintf("invalid input %q: %s", e.Input, e.Reason)
}

// AuthError reports a failed access token acquisition. Status is zero when no
// response was received.
type AuthError struct {
	Status int
	Err    error
}

func (e *AuthError) Error() string {
	if e.Status == 0 {
		return fmt.Sprintf("failed to acquire access token: %v", e.Err)
	}
	return fmt.Sprintf("failed to acquire access token (%d %s): %v", e.Status, http.StatusText(e.Status), e.Err)
}

func (e *AuthError) Unwrap() error {
	return e.Err
}

// FetchError reports a failed catalog request or an unreadable catalog
// response. Status is zero when no response was received.
type FetchError struct {
	Endpoint string
	Status   int
	Err      error
}

func (e *FetchError) Error() string {
	if e.Status == 0 {
		return fmt.Sprintf("failed to fetch %s: %v", e.Endpoint, e.Err)
	}
	return fmt.Sprintf("failed to fetch %s (%d %s): %v", e.Endpoint, e.Status, http.StatusText(e.Status), e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}
