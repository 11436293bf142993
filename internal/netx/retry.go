package netx

import (
	"context"
	"time"

	"github.com/sethvargo/go-retry"
)

// Policy bounds retries. Attempts counts every try, the first one included.
type Policy struct {
	Attempts  uint64
	BaseDelay time.Duration
	MaxDelay  time.Duration
}

// DefaultPolicy is used when a Policy is left zero.
var DefaultPolicy = Policy{Attempts: 3, BaseDelay: 200 * time.Millisecond, MaxDelay: 5 * time.Second}

func (p Policy) backoff() retry.Backoff {
	if p.Attempts == 0 {
		p = DefaultPolicy
	}
	base := p.BaseDelay
	if base <= 0 {
		base = DefaultPolicy.BaseDelay
	}
	b := retry.NewExponential(base)
	if p.MaxDelay > 0 {
		b = retry.WithCappedDuration(p.MaxDelay, b)
	}
	b = retry.WithJitterPercent(10, b)
	return retry.WithMaxRetries(p.Attempts-1, b)
}

// Retry marks err as worth another attempt.
func Retry(err error) error {
	return retry.RetryableError(err)
}

// Do calls fn until it succeeds, returns an error not marked with Retry, or
// the policy runs out. attempt starts at 1. Context cancellation stops the
// loop and returns ctx.Err().
func Do(ctx context.Context, p Policy, fn func(ctx context.Context, attempt int) error) error {
	attempt := 0
	return retry.Do(ctx, p.backoff(), func(ctx context.Context) error {
		attempt++
		return fn(ctx, attempt)
	})
}
