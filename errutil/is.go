package errutil

import (
	"context"
	"errors"
	"net"
)

func IsAny(err error, target error, targets ...error) (error, bool) {
	if errors.Is(err, target) {
		return target, true
	}
	for _, t := range targets {
		if errors.Is(err, t) {
			return t, true
		}
	}
	return nil, false
}

// IsContext reports whether ctx itself has ended, as opposed to a request-scoped timeout.
func IsContext(ctx context.Context) bool {
	_, ok := IsAny(ctx.Err(), context.Canceled, context.DeadlineExceeded)
	return ok
}

func IsTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
