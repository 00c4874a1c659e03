package apiclient

import (
	"context"
	"time"

	"github.com/sethvargo/go-retry"
)

// Policy decides how often a failed call is attempted again.
type Policy struct {
	// MaxRetries is the number of attempts after the first one.
	MaxRetries uint64
	// Base is the first delay; each later delay doubles, up to Cap.
	Base time.Duration
	Cap  time.Duration
	// Retryable filters errors. Nil retries every error.
	Retryable func(error) bool
}

// QueryPolicy is used for reads: three retries, 1s doubling to at most 30s.
func QueryPolicy() Policy {
	return Policy{MaxRetries: 3, Base: time.Second, Cap: 30 * time.Second}
}

// MutationPolicy is used for writes: 4xx responses are final, anything
// else is retried twice.
func MutationPolicy() Policy {
	return Policy{
		MaxRetries: 2,
		Base:       time.Second,
		Cap:        30 * time.Second,
		Retryable:  func(err error) bool { return !IsClientError(err) },
	}
}

// NoRetry runs the call once.
func NoRetry() Policy {
	return Policy{}
}

func (p Policy) backoff() retry.Backoff {
	base := p.Base
	if base <= 0 {
		base = time.Millisecond
	}
	b := retry.NewExponential(base)
	if p.Cap > 0 {
		b = retry.WithCappedDuration(p.Cap, b)
	}
	return retry.WithMaxRetries(p.MaxRetries, b)
}

// Retry runs fn under p and returns its last error unwrapped.
func Retry(ctx context.Context, p Policy, fn func(ctx context.Context) error) error {
	return retry.Do(ctx, p.backoff(), func(ctx context.Context) error {
		err := fn(ctx)
		if err == nil {
			return nil
		}
		if p.Retryable != nil && !p.Retryable(err) {
			return err
		}
		return retry.RetryableError(err)
	})
}
