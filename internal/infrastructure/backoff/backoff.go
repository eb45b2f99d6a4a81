// Package backoff computes exponential retry delays and drives retries of
// transient failures.
package backoff

import (
	"context"
	"math"
	"math/rand/v2"
	"time"

	"github.com/sethvargo/go-retry"
)

type Backoff struct {
	Min    time.Duration
	Max    time.Duration
	Factor float64
	Jitter bool
}

func New(min, max time.Duration, factor float64) *Backoff {
	return &Backoff{
		Min:    min,
		Max:    max,
		Factor: factor,
		Jitter: true,
	}
}

// Duration returns the delay before retry number attempt (1-based).
func (b *Backoff) Duration(attempt int) time.Duration {
	if attempt <= 0 {
		return b.Min
	}

	duration := float64(b.Min) * math.Pow(b.Factor, float64(attempt-1))
	if duration > float64(b.Max) {
		duration = float64(b.Max)
	}

	if b.Jitter {
		duration = duration * (0.5 + rand.Float64()*0.5)
	}

	return time.Duration(duration)
}

// Sequence adapts b to retry.Backoff, stopping after maxRetries retries.
func (b *Backoff) Sequence(maxRetries uint64) retry.Backoff {
	attempt := 0
	return retry.WithMaxRetries(maxRetries, retry.BackoffFunc(func() (time.Duration, bool) {
		attempt++
		return b.Duration(attempt), false
	}))
}

// Retryable marks err so Do tries again.
func Retryable(err error) error {
	return retry.RetryableError(err)
}

// Do calls f until it succeeds, returns an error not marked Retryable, or
// maxRetries retries are spent. The last error is returned unwrapped.
func Do[T any](ctx context.Context, b *Backoff, maxRetries uint64, f func(ctx context.Context) (T, error)) (T, error) {
	return retry.DoValue(ctx, b.Sequence(maxRetries), f)
}
