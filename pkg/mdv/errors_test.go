package mdv

import (
	"errors"
	"fmt"
	"testing"
)

func TestExitCodeForError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil error", nil, ExitSuccess},
		{"invalid config", ErrInvalidConfig, ExitConfigError},
		{"wrapped invalid config", fmt.Errorf("bad request: %w", ErrInvalidConfig), ExitConfigError},
		{"unparsable diagram", ErrUnparsableDiagram, ExitParseError},
		{"parse error unwraps", &ParseError{Line: 3, Msg: "bad token"}, ExitParseError},
		{"credential failure", fmt.Errorf("auth: %w", ErrCredentialFailed), ExitCredentialError},
		{"approval denied", ErrApprovalDenied, ExitApprovalDenied},
		{"deployment aborted", fmt.Errorf("run: %w", ErrDeploymentAborted), ExitDeploymentFailed},
		{"unclassified", errors.New("boom"), ExitGeneralError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExitCodeForError(tt.err); got != tt.want {
				t.Errorf("ExitCodeForError(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}

func TestParseError_Message(t *testing.T) {
	withLine := &ParseError{Line: 7, Msg: "unexpected token"}
	if got := withLine.Error(); got != "parse error at line 7: unexpected token" {
		t.Errorf("Error() = %q", got)
	}

	withoutLine := &ParseError{Msg: "empty input"}
	if got := withoutLine.Error(); got != "parse error: empty input" {
		t.Errorf("Error() = %q", got)
	}

	if !errors.Is(withLine, ErrUnparsableDiagram) {
		t.Error("expected ParseError to unwrap to ErrUnparsableDiagram")
	}
}
