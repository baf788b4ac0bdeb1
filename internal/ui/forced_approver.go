package ui

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/LuiseFreese/mermaid-sub004/pkg/mdv"
)

// ForcedApprover implements the Approver interface for forced
// (non-interactive) approval. It displays a countdown and automatically
// approves when it runs out, used when the --force flag is provided.
type ForcedApprover struct {
	out       io.Writer
	countdown time.Duration
	sleep     func(time.Duration)
}

// ForcedOption configures a ForcedApprover. Intended for tests.
type ForcedOption func(*ForcedApprover)

// WithForcedOutput sets the output stream.
func WithForcedOutput(out io.Writer) ForcedOption {
	return func(a *ForcedApprover) {
		a.out = out
	}
}

// WithCountdown overrides the countdown duration.
func WithCountdown(d time.Duration) ForcedOption {
	return func(a *ForcedApprover) {
		a.countdown = d
	}
}

// WithSleepFunc overrides the per-second wait.
func WithSleepFunc(sleep func(time.Duration)) ForcedOption {
	return func(a *ForcedApprover) {
		a.sleep = sleep
	}
}

// NewForcedApprover creates a forced approver writing to stderr unless
// overridden.
func NewForcedApprover(opts ...ForcedOption) *ForcedApprover {
	a := &ForcedApprover{
		out:       os.Stderr,
		countdown: mdv.DefaultForceApprovalCountdown,
		sleep:     time.Sleep,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// RequestApproval displays a countdown and approves when it completes.
// Cancelling the context during the countdown denies approval.
func (a *ForcedApprover) RequestApproval(ctx context.Context, solutionName string) (bool, error) {
	fmt.Fprintf(a.out, "\n⚠️  --force: deleting the schema objects of solution '%s' without confirmation\n", solutionName)

	countdownSeconds := int(a.countdown.Seconds())
	for i := countdownSeconds; i > 0; i-- {
		select {
		case <-ctx.Done():
			return false, ctx.Err()
		default:
			fmt.Fprintf(a.out, "\rDeleting in: %d seconds... (Press Ctrl+C to cancel)", i)
			a.sleep(1 * time.Second)
		}
	}

	fmt.Fprintf(a.out, "\r✓ Proceeding with cleanup...                              \n")
	return true, nil
}

var _ mdv.Approver = (*ForcedApprover)(nil)
