package tui

import "testing"

func TestDetectMode_EnvironmentOverrides(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"explicit non-interactive", "MDV_NON_INTERACTIVE", "1"},
		{"ci convention", "CI", "true"},
		{"no-color convention", "NO_COLOR", "1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			if got := DetectMode(); got != ModeNonInteractive {
				t.Errorf("DetectMode() = %v, want ModeNonInteractive", got)
			}
		})
	}
}

func TestDetectMode_PipedStdinIsNonInteractive(t *testing.T) {
	// Test processes never run with a terminal stdin.
	if got := DetectMode(); got != ModeNonInteractive {
		t.Errorf("DetectMode() = %v, want ModeNonInteractive under test harness", got)
	}
	if IsInteractive() {
		t.Error("IsInteractive() = true under test harness")
	}
}
