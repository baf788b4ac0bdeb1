package retry

import (
	"context"
	"errors"
	"time"

	"github.com/LuiseFreese/mermaid-sub004/pkg/mdv"
)

// SleepFunc waits for the given duration, returning early with ctx.Err()
// when the context is cancelled. Injectable so backoff timing is testable
// without real waits.
type SleepFunc func(ctx context.Context, d time.Duration) error

// defaultSleep waits on a real timer.
func defaultSleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Executor orchestrates retry attempts with backoff and error classification.
//
// Thread Safety:
// The Executor itself is safe for concurrent use when calling Execute().
// WithOnRetry() and WithSleep() return a NEW instance with the option
// configured; the original Executor remains unchanged.
type Executor struct {
	classifier mdv.ErrorClassifier
	strategy   mdv.BackoffStrategy
	sleep      SleepFunc
	onRetry    func(attempt int, err error, delay time.Duration)
}

// NewExecutor creates a new retry executor with the given configuration.
// Panics if classifier or strategy is nil.
func NewExecutor(classifier mdv.ErrorClassifier, strategy mdv.BackoffStrategy) *Executor {
	if classifier == nil {
		panic("classifier cannot be nil")
	}
	if strategy == nil {
		panic("strategy cannot be nil")
	}
	return &Executor{
		classifier: classifier,
		strategy:   strategy,
		sleep:      defaultSleep,
	}
}

// WithOnRetry returns a new Executor with the specified retry callback.
// The receiver is not modified.
func (e *Executor) WithOnRetry(callback func(attempt int, err error, delay time.Duration)) *Executor {
	clone := *e
	clone.onRetry = callback
	return &clone
}

// WithSleep returns a new Executor using the given sleep function.
// The receiver is not modified. Intended for tests that need deterministic
// backoff timing.
func (e *Executor) WithSleep(sleep SleepFunc) *Executor {
	clone := *e
	clone.sleep = sleep
	return &clone
}

// Execute runs the operation with retry logic.
// Returns the result of the last attempt (success or fatal error).
//
// When the failed attempt's error carries a RetryAfterHint (a rate-limited
// response with a Retry-After header), the wait before the next attempt is
// the maximum of the hinted delay and the backoff floor.
func (e *Executor) Execute(ctx context.Context, operation func(ctx context.Context) error) error {
	maxAttempts := e.strategy.MaxAttempts()

	// Initial attempt (not a retry)
	lastErr := operation(ctx)
	if lastErr == nil {
		return nil
	}

	if !e.classifier.IsTransient(lastErr) {
		return lastErr
	}

	// Retry until maxAttempts is reached (negative = unlimited).
	for attempt := 0; maxAttempts < 0 || attempt < maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		delay := e.strategy.NextDelay(attempt)

		var hint mdv.RetryAfterHint
		if errors.As(lastErr, &hint) {
			if hinted, ok := hint.RetryAfter(); ok && hinted > delay {
				delay = hinted
			}
		}

		if e.onRetry != nil {
			e.onRetry(attempt, lastErr, delay)
		}

		if err := e.sleep(ctx, delay); err != nil {
			return err
		}

		lastErr = operation(ctx)
		if lastErr == nil {
			return nil
		}

		if !e.classifier.IsTransient(lastErr) {
			return lastErr
		}
	}

	// Exhausted all retry attempts
	return lastErr
}
