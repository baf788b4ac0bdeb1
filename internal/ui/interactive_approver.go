package ui

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/LuiseFreese/mermaid-sub004/pkg/mdv"
)

// InteractiveApprover implements the Approver interface for console-based
// interactive confirmation. It prompts the user to type the solution name
// to confirm destructive operations.
type InteractiveApprover struct {
	in  io.Reader
	out io.Writer
}

// ApproverOption configures an approver's streams. Intended for tests.
type ApproverOption func(*InteractiveApprover)

// WithInput sets the input stream.
func WithInput(in io.Reader) ApproverOption {
	return func(a *InteractiveApprover) {
		a.in = in
	}
}

// WithOutput sets the output stream.
func WithOutput(out io.Writer) ApproverOption {
	return func(a *InteractiveApprover) {
		a.out = out
	}
}

// NewInteractiveApprover creates an approver reading from stdin and writing
// to stderr unless overridden.
func NewInteractiveApprover(opts ...ApproverOption) *InteractiveApprover {
	a := &InteractiveApprover{in: os.Stdin, out: os.Stderr}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// RequestApproval prompts the user to type the solution name to confirm.
func (a *InteractiveApprover) RequestApproval(ctx context.Context, solutionName string) (bool, error) {
	fmt.Fprintf(a.out, "\n⚠️  WARNING: You are about to DELETE the schema objects of solution '%s'\n", solutionName)
	fmt.Fprintln(a.out, "This removes the deployed entities, their data, and their relationships from the environment!")
	fmt.Fprintf(a.out, "\nTo confirm, type the solution name '%s' and press Enter: ", solutionName)

	// Read user input with context cancellation support.
	inputChan := make(chan string, 1)
	errChan := make(chan error, 1)

	go func() {
		reader := bufio.NewReader(a.in)
		input, err := reader.ReadString('\n')
		if err != nil {
			errChan <- err
			return
		}
		inputChan <- strings.TrimSpace(input)
	}()

	select {
	case <-ctx.Done():
		return false, ctx.Err()
	case err := <-errChan:
		return false, fmt.Errorf("failed to read input: %w", err)
	case input := <-inputChan:
		if input == solutionName {
			fmt.Fprintln(a.out, "✓ Confirmed. Proceeding with cleanup...")
			return true, nil
		}
		fmt.Fprintf(a.out, "✗ Input '%s' does not match solution name '%s'. Operation cancelled.\n", input, solutionName)
		return false, nil
	}
}

var _ mdv.Approver = (*InteractiveApprover)(nil)
