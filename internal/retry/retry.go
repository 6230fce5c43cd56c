// Package retry runs an operation again with exponential backoff after transient failures.
package retry

import (
	"context"
	"fmt"
	"time"
)

// Policy bounds the retries. Retries is the number of extra attempts after the first.
type Policy struct {
	Retries     int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
	ShouldRetry func(error) bool
}

// Delay returns the backoff before the given retry (1-based).
func (p Policy) Delay(retry int) time.Duration {
	d := p.BaseDelay << uint(retry-1)
	if p.MaxDelay > 0 && d > p.MaxDelay {
		d = p.MaxDelay
	}
	return d
}

// Do calls fn until it succeeds, returns a non-retryable error, or the retries are spent.
// The last error is returned unwrapped so callers keep its type.
func Do(ctx context.Context, p Policy, fn func(ctx context.Context) error) error {
	var err error
	for attempt := 0; attempt <= p.Retries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return fmt.Errorf("retry aborted: %w", ctx.Err())
			case <-time.After(p.Delay(attempt)):
			}
		}
		if err = fn(ctx); err == nil {
			return nil
		}
		if p.ShouldRetry != nil && !p.ShouldRetry(err) {
			return err
		}
	}
	return err
}
