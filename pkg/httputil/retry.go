package httputil

import (
	"context"
	"errors"
	"time"
)

// RetryableError marks a failure worth another attempt: a dropped
// connection, a timeout, or a 5xx/429 response.
type RetryableError struct{ Err error }

func (e *RetryableError) Error() string { return e.Err.Error() }
func (e *RetryableError) Unwrap() error { return e.Err }

// Retryable wraps err as a [RetryableError]. It returns nil for nil.
func Retryable(err error) error {
	if err == nil {
		return nil
	}
	return &RetryableError{Err: err}
}

// IsRetryable reports whether err is wrapped in a [RetryableError].
func IsRetryable(err error) bool {
	var re *RetryableError
	return errors.As(err, &re)
}

// Retry calls fn until it succeeds, returns an error that is not
// [Retryable], or has been called attempts times. The wait between calls
// starts at delay and doubles each time. Values of attempts below one
// still call fn once.
//
// A cancelled context ends the wait early with ctx.Err().
func Retry(ctx context.Context, attempts int, delay time.Duration, fn func() error) error {
	var err error
	for n := 1; ; n++ {
		err = fn()
		if err == nil || !IsRetryable(err) || n >= attempts {
			return err
		}

		t := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			t.Stop()
			return ctx.Err()
		case <-t.C:
		}
		delay *= 2
	}
}
