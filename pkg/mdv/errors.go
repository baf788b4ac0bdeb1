package mdv

import (
	"errors"
	"fmt"
)

// Sentinel errors for common failure scenarios.
// These enable callers to distinguish error types using errors.Is().
//
// Example usage:
//
//	result, err := deployer.Execute(ctx, plan)
//	if errors.Is(err, mdv.ErrCredentialFailed) {
//	    // Re-authenticate and retry
//	}
var (
	// ErrInvalidConfig indicates the provided configuration or deployment
	// request is invalid.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrUnparsableDiagram indicates the diagram text could not be
	// tokenized into entities and relationships at all.
	ErrUnparsableDiagram = errors.New("diagram cannot be parsed")

	// ErrApprovalDenied indicates the user denied approval for a
	// destructive operation.
	ErrApprovalDenied = errors.New("approval denied")

	// ErrCredentialFailed indicates a bearer credential could not be
	// acquired. Aborts the entire deployment.
	ErrCredentialFailed = errors.New("credential acquisition failed")

	// ErrDeploymentAborted indicates a phase-blocking failure stopped the
	// deployment before all phases were attempted.
	ErrDeploymentAborted = errors.New("deployment aborted")

	// ErrAlreadyExists indicates the target store reported a conflict
	// because the resource already exists. Callers treat this as a no-op
	// success, never as a retryable or fatal error.
	ErrAlreadyExists = errors.New("resource already exists")

	// ErrNotFound indicates a required resource is missing in the target
	// store.
	ErrNotFound = errors.New("resource not found")
)

// ParseError is the fatal error returned when diagram text cannot be
// tokenized. Recoverable deviations become ValidationWarnings instead.
type ParseError struct {
	// Line is the 1-based line number, 0 if not line-specific.
	Line int

	// Msg describes why tokenization failed.
	Msg string
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("parse error at line %d: %s", e.Line, e.Msg)
	}
	return fmt.Sprintf("parse error: %s", e.Msg)
}

// Unwrap makes errors.Is(err, ErrUnparsableDiagram) true for all ParseErrors.
func (e *ParseError) Unwrap() error { return ErrUnparsableDiagram }

// ExitCodeForError returns the appropriate exit code for an error.
// Returns ExitSuccess (0) for nil errors, semantic codes for known errors,
// and ExitGeneralError (1) for unclassified errors.
func ExitCodeForError(err error) int {
	if err == nil {
		return ExitSuccess
	}

	switch {
	case errors.Is(err, ErrInvalidConfig):
		return ExitConfigError
	case errors.Is(err, ErrUnparsableDiagram):
		return ExitParseError
	case errors.Is(err, ErrCredentialFailed):
		return ExitCredentialError
	case errors.Is(err, ErrApprovalDenied):
		return ExitApprovalDenied
	case errors.Is(err, ErrDeploymentAborted):
		return ExitDeploymentFailed
	}

	return ExitGeneralError
}
