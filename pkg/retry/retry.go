package retry

import (
	"context"
	"database/sql/driver"
	"errors"
	"io"
	"math/rand"
	"net"
	"time"

	appErrors "github.com/edushare-my/edushare-api/pkg/errors"
)

// Policy parameterises bounded exponential backoff. It is a plain value
// passed into services; no package-level state is kept across calls.
type Policy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
}

// Default returns the policy used when configuration leaves fields unset.
func Default() Policy {
	return Policy{MaxAttempts: 3, BaseDelay: 100 * time.Millisecond, MaxDelay: 2 * time.Second}
}

func (p Policy) normalised() Policy {
	if p.MaxAttempts <= 0 {
		p.MaxAttempts = 3
	}
	if p.BaseDelay <= 0 {
		p.BaseDelay = 100 * time.Millisecond
	}
	if p.MaxDelay < p.BaseDelay {
		p.MaxDelay = p.BaseDelay
	}
	return p
}

// Do runs op, retrying transient failures with exponential backoff and
// jitter. Domain errors (validation, authorization, conflict, not-found) are
// returned immediately. When attempts are exhausted the last cause is wrapped
// as UNAVAILABLE so callers can distinguish "try again later" from bad input.
func (p Policy) Do(ctx context.Context, op func(context.Context) error) error {
	p = p.normalised()

	var last error
	delay := p.BaseDelay
	for attempt := 1; attempt <= p.MaxAttempts; attempt++ {
		err := op(ctx)
		if err == nil {
			return nil
		}
		if !Transient(err) {
			return err
		}
		last = err
		if attempt == p.MaxAttempts {
			break
		}

		sleep := delay + time.Duration(rand.Int63n(int64(delay)/2+1))
		if sleep > p.MaxDelay {
			sleep = p.MaxDelay
		}
		timer := time.NewTimer(sleep)
		select {
		case <-ctx.Done():
			timer.Stop()
			return appErrors.Wrap(ctx.Err(), appErrors.ErrUnavailable.Code, appErrors.ErrUnavailable.Status, "operation cancelled during retry")
		case <-timer.C:
		}

		delay *= 2
		if delay > p.MaxDelay {
			delay = p.MaxDelay
		}
	}
	return appErrors.Wrap(last, appErrors.ErrUnavailable.Code, appErrors.ErrUnavailable.Status, "retries exhausted")
}

// Transient classifies an error as a retryable connectivity failure.
func Transient(err error) bool {
	if err == nil {
		return false
	}
	var appErr *appErrors.Error
	if errors.As(err, &appErr) {
		// Typed domain errors carry a caller-side verdict; only an
		// explicit UNAVAILABLE marking is retryable.
		return appErr.Code == appErrors.ErrUnavailable.Code
	}
	if errors.Is(err, driver.ErrBadConn) || errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return true
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return netErr.Timeout()
	}
	var opErr *net.OpError
	return errors.As(err, &opErr)
}
