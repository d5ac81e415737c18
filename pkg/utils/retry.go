package utils

import (
	"context"
	"time"
)

// RetryConfig bounds retry behavior for transient persistence failures.
// User-facing management operations retry; the live call-handling path must not.
type RetryConfig struct {
	Attempts int
	Base     time.Duration
	Max      time.Duration
}

func (c RetryConfig) withDefaults() RetryConfig {
	out := c
	if out.Attempts <= 0 {
		out.Attempts = 3
	}
	if out.Base <= 0 {
		out.Base = 100 * time.Millisecond
	}
	if out.Max <= 0 {
		out.Max = 2 * time.Second
	}
	return out
}

// Retry runs fn up to cfg.Attempts times with exponential backoff.
// retryable decides whether an error is worth another attempt; errors it
// rejects (NotFound, InvalidState, invariant violations) are returned as-is
// immediately. The last error is returned after the attempt budget is spent.
func Retry(ctx context.Context, cfg RetryConfig, retryable func(error) bool, fn func(ctx context.Context) error) error {
	cfg = cfg.withDefaults()

	var err error
	delay := cfg.Base
	for attempt := 0; attempt < cfg.Attempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
			delay *= 2
			if delay > cfg.Max {
				delay = cfg.Max
			}
		}

		err = fn(ctx)
		if err == nil {
			return nil
		}
		if retryable != nil && !retryable(err) {
			return err
		}
	}
	return err
}
