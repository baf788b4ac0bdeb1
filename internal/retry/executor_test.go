package retry

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"
)

// fakeClassifier marks every error as transient except those listed as fatal.
type fakeClassifier struct {
	fatal []error
}

func (c *fakeClassifier) IsTransient(err error) bool {
	for _, f := range c.fatal {
		if errors.Is(err, f) {
			return false
		}
	}
	return err != nil
}

// recordingSleep collects requested delays without waiting.
func recordingSleep(delays *[]time.Duration) SleepFunc {
	return func(ctx context.Context, d time.Duration) error {
		*delays = append(*delays, d)
		return ctx.Err()
	}
}

// hintedError carries a Retry-After hint like a rate-limited response.
type hintedError struct {
	after time.Duration
}

func (e *hintedError) Error() string                    { return "rate limited" }
func (e *hintedError) HTTPStatus() int                  { return 429 }
func (e *hintedError) RetryAfter() (time.Duration, bool) { return e.after, true }

func TestExecutor_SuccessOnFirstAttempt(t *testing.T) {
	executor := NewExecutor(&fakeClassifier{}, NewExponentialBackoff(3, WithJitter(0)))

	calls := 0
	err := executor.Execute(context.Background(), func(ctx context.Context) error {
		calls++
		return nil
	})

	if err != nil {
		t.Fatalf("Execute returned error: %v", err)
	}
	if calls != 1 {
		t.Errorf("Expected 1 call, got %d", calls)
	}
}

func TestExecutor_RetriesTransientThenSucceeds(t *testing.T) {
	var delays []time.Duration
	executor := NewExecutor(&fakeClassifier{}, NewExponentialBackoff(3,
		WithInitialDelay(10*time.Millisecond), WithJitter(0))).
		WithSleep(recordingSleep(&delays))

	calls := 0
	err := executor.Execute(context.Background(), func(ctx context.Context) error {
		calls++
		if calls < 3 {
			return errors.New("transient")
		}
		return nil
	})

	if err != nil {
		t.Fatalf("Execute returned error: %v", err)
	}
	if calls != 3 {
		t.Errorf("Expected 3 calls, got %d", calls)
	}
	if len(delays) != 2 {
		t.Fatalf("Expected 2 sleeps, got %d", len(delays))
	}
	if delays[0] != 10*time.Millisecond || delays[1] != 20*time.Millisecond {
		t.Errorf("Unexpected backoff sequence: %v", delays)
	}
}

func TestExecutor_FatalErrorNotRetried(t *testing.T) {
	fatal := errors.New("bad request")
	executor := NewExecutor(&fakeClassifier{fatal: []error{fatal}},
		NewExponentialBackoff(3, WithJitter(0)))

	calls := 0
	err := executor.Execute(context.Background(), func(ctx context.Context) error {
		calls++
		return fatal
	})

	if !errors.Is(err, fatal) {
		t.Fatalf("Expected fatal error, got %v", err)
	}
	if calls != 1 {
		t.Errorf("Expected 1 call, got %d", calls)
	}
}

func TestExecutor_ExhaustsAttempts(t *testing.T) {
	var delays []time.Duration
	executor := NewExecutor(&fakeClassifier{}, NewExponentialBackoff(2,
		WithInitialDelay(time.Millisecond), WithJitter(0))).
		WithSleep(recordingSleep(&delays))

	calls := 0
	transient := errors.New("still failing")
	err := executor.Execute(context.Background(), func(ctx context.Context) error {
		calls++
		return transient
	})

	if !errors.Is(err, transient) {
		t.Fatalf("Expected last error surfaced, got %v", err)
	}
	// 1 initial attempt + 2 retries
	if calls != 3 {
		t.Errorf("Expected 3 calls, got %d", calls)
	}
}

func TestExecutor_RetryAfterHintRaisesDelay(t *testing.T) {
	var delays []time.Duration
	executor := NewExecutor(&fakeClassifier{}, NewExponentialBackoff(3,
		WithInitialDelay(100*time.Millisecond), WithJitter(0))).
		WithSleep(recordingSleep(&delays))

	calls := 0
	err := executor.Execute(context.Background(), func(ctx context.Context) error {
		calls++
		if calls == 1 {
			return &hintedError{after: 2 * time.Second}
		}
		return nil
	})

	if err != nil {
		t.Fatalf("Execute returned error: %v", err)
	}
	if calls != 2 {
		t.Errorf("Expected exactly 2 attempts, got %d", calls)
	}
	if len(delays) != 1 || delays[0] != 2*time.Second {
		t.Errorf("Expected a single 2s wait from Retry-After, got %v", delays)
	}
}

func TestExecutor_RetryAfterHintBelowBackoffFloor(t *testing.T) {
	var delays []time.Duration
	executor := NewExecutor(&fakeClassifier{}, NewExponentialBackoff(3,
		WithInitialDelay(500*time.Millisecond), WithJitter(0))).
		WithSleep(recordingSleep(&delays))

	calls := 0
	_ = executor.Execute(context.Background(), func(ctx context.Context) error {
		calls++
		if calls == 1 {
			return &hintedError{after: 100 * time.Millisecond}
		}
		return nil
	})

	// Hint below the backoff floor: the floor wins.
	if len(delays) != 1 || delays[0] != 500*time.Millisecond {
		t.Errorf("Expected backoff floor of 500ms, got %v", delays)
	}
}

func TestExecutor_ContextCancelledDuringBackoff(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	executor := NewExecutor(&fakeClassifier{}, NewExponentialBackoff(3,
		WithInitialDelay(time.Millisecond), WithJitter(0))).
		WithSleep(func(ctx context.Context, d time.Duration) error {
			cancel()
			return ctx.Err()
		})

	err := executor.Execute(ctx, func(ctx context.Context) error {
		return errors.New("transient")
	})

	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Expected context.Canceled, got %v", err)
	}
}

func TestExecutor_OnRetryCallback(t *testing.T) {
	var attempts []int
	executor := NewExecutor(&fakeClassifier{}, NewExponentialBackoff(2,
		WithInitialDelay(time.Millisecond), WithJitter(0))).
		WithSleep(func(ctx context.Context, d time.Duration) error { return nil }).
		WithOnRetry(func(attempt int, err error, delay time.Duration) {
			attempts = append(attempts, attempt)
		})

	_ = executor.Execute(context.Background(), func(ctx context.Context) error {
		return fmt.Errorf("transient")
	})

	if len(attempts) != 2 || attempts[0] != 0 || attempts[1] != 1 {
		t.Errorf("Unexpected onRetry attempts: %v", attempts)
	}
}

func TestNewExecutor_PanicsOnNilDependencies(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("Expected panic on nil classifier")
		}
	}()
	NewExecutor(nil, NewExponentialBackoff(1))
}
