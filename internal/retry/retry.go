// Package retry polls an operation with exponential backoff until it
// succeeds, fails permanently, or a time budget runs out.
//
// sigscan uses it to wait for a module to be loaded by the target process:
//
//	cfg := retry.Config{
//	    Timeout:        5 * time.Second,
//	    InitialBackoff: 50 * time.Millisecond,
//	    MaxBackoff:     time.Second,
//	}
//
//	err := retry.Do(ctx, cfg, func() error {
//	    _, err := locator.Lookup("libgame.so")
//	    return err
//	}, func(err error) bool {
//	    return errors.Is(err, module.ErrModuleNotFound)
//	})
//
// # Backoff Strategy
//
// The wait before attempt n (n >= 1) is InitialBackoff * 2^(n-1), capped at
// MaxBackoff. With InitialBackoff of 50ms:
//   - Attempt 1: 50ms
//   - Attempt 2: 100ms
//   - Attempt 3: 200ms
//
// # Context Cancellation
//
// Canceling the parent context ends the loop with the context error. Running
// out of Timeout ends it with the last error from fn.
package retry

import (
	"context"
	"fmt"
	"math"
	"time"
)

// DefaultInitialBackoff replaces a non-positive Config.InitialBackoff so the
// loop never polls back to back.
const DefaultInitialBackoff = 50 * time.Millisecond

// Config defines the polling behavior.
type Config struct {
	// Timeout bounds the total time spent retrying. Zero means fn is called
	// exactly once.
	Timeout time.Duration

	// InitialBackoff is the wait before the first retry. Each further retry
	// doubles it. Zero or negative means DefaultInitialBackoff.
	InitialBackoff time.Duration

	// MaxBackoff caps the wait between attempts. Zero means no cap.
	MaxBackoff time.Duration
}

// ShouldRetryFunc reports whether an error is transient.
//
// If this function is nil when passed to Do, all errors are retried.
type ShouldRetryFunc func(error) bool

// Do calls fn until it returns nil, returns an error shouldRetry rejects, or
// cfg.Timeout elapses.
//
// When the budget runs out Do returns an error wrapping the last error from
// fn, so callers can still match it with errors.Is.
func Do(ctx context.Context, cfg Config, fn func() error, shouldRetry ShouldRetryFunc) error {
	if cfg.Timeout <= 0 {
		return fn()
	}

	budget, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()

	var lastErr error
	for attempt := 0; ; attempt++ {
		// Apply backoff before retry (but not on first attempt).
		if attempt > 0 {
			timer := time.NewTimer(calculateBackoff(cfg, attempt))
			select {
			case <-budget.Done():
				timer.Stop()
				if ctx.Err() != nil {
					return ctx.Err()
				}
				return fmt.Errorf("gave up after %d attempts in %s: %w", attempt, cfg.Timeout, lastErr)
			case <-timer.C:
			}
		}

		err := fn()
		if err == nil {
			return nil
		}
		if shouldRetry != nil && !shouldRetry(err) {
			return err
		}
		lastErr = err
	}
}

// calculateBackoff returns InitialBackoff * 2^(attempt-1), capped at
// MaxBackoff when set.
func calculateBackoff(cfg Config, attempt int) time.Duration {
	initial := cfg.InitialBackoff
	if initial <= 0 {
		initial = DefaultInitialBackoff
	}
	multiplier := math.Pow(2, float64(attempt-1))
	backoff := time.Duration(multiplier * float64(initial))

	if cfg.MaxBackoff > 0 && (backoff > cfg.MaxBackoff || backoff < 0) {
		backoff = cfg.MaxBackoff
	}
	return backoff
}
