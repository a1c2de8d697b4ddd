// Package retry provides a bounded retry loop with exponential backoff for
// the multi-call paths most exposed to partial failure: commission bulk
// updates and push-notification dispatch.
package retry

import (
	"context"
	"errors"
	"net"
	"syscall"
	"time"
)

// Do runs fn up to attempts times, sleeping base, 2*base, 4*base... between
// tries. It stops early when fn succeeds, when retryable reports the error
// as permanent, or when ctx is done.
func Do(ctx context.Context, attempts int, base time.Duration, retryable func(error) bool, fn func() error) error {
	var err error
	for i := 0; i < attempts; i++ {
		if err = fn(); err == nil {
			return nil
		}
		if !retryable(err) {
			return err
		}
		if i == attempts-1 {
			break
		}

		select {
		case <-time.After(base << uint(i)):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return err
}

// Transient reports whether err looks like a temporary network or
// connection failure worth retrying. Validation-class errors never are.
func Transient(err error) bool {
	if err == nil {
		return false
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	if errors.Is(err, syscall.ECONNREFUSED) || errors.Is(err, syscall.ECONNRESET) {
		return true
	}
	return false
}
