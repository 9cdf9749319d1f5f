package cache

import (
	"context"
	"errors"
	"time"
)

// Errors reported by payload fetches that sit behind the cache.
var (
	// ErrNotFound means the source answered but has no such payload.
	ErrNotFound = errors.New("not found")

	// ErrNetwork covers transport failures and unexpected HTTP statuses.
	ErrNetwork = errors.New("network error")
)

// maxBackoff caps the wait between two attempts.
const maxBackoff = 30 * time.Second

type retryable struct{ error }

func (r retryable) Unwrap() error { return r.error }

// Retryable marks err as transient so [Retry] tries again. It returns nil
// for a nil err. The message is unchanged.
func Retryable(err error) error {
	if err == nil {
		return nil
	}
	return retryable{err}
}

// IsRetryable reports whether err, or anything it wraps, was marked by
// [Retryable].
func IsRetryable(err error) bool {
	var r retryable
	return errors.As(err, &r)
}

// Retry calls fn until it succeeds, returns an error not marked
// [Retryable], or has been called attempts times. The wait starts at delay
// and doubles after each failure up to a cap. A cancelled ctx ends the wait
// with ctx.Err().
func Retry(ctx context.Context, attempts int, delay time.Duration, fn func() error) error {
	if attempts < 1 {
		attempts = 1
	}
	for n := 1; ; n++ {
		err := fn()
		if err == nil || !IsRetryable(err) || n == attempts {
			return err
		}
		t := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			t.Stop()
			return ctx.Err()
		case <-t.C:
		}
		delay = min(2*delay, maxBackoff)
	}
}

// RetryWithBackoff is [Retry] with three attempts starting one second apart.
func RetryWithBackoff(ctx context.Context, fn func() error) error {
	return Retry(ctx, 3, time.Second, fn)
}
