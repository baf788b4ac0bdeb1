package logging

import (
	"bytes"
	"strings"
	"sync"
	"testing"
)

func TestConsoleLogger_InfoAlwaysLogged(t *testing.T) {
	var buf bytes.Buffer
	logger := NewConsoleLoggerTo(&buf, false)

	logger.Info("deployed %d entities", 3)

	if got := buf.String(); got != "deployed 3 entities\n" {
		t.Errorf("Info output = %q", got)
	}
}

func TestConsoleLogger_VerboseSuppressedByDefault(t *testing.T) {
	var buf bytes.Buffer
	logger := NewConsoleLoggerTo(&buf, false)

	logger.Verbose("checking publisher %q", "contoso")

	if buf.Len() != 0 {
		t.Errorf("Verbose output should be suppressed, got %q", buf.String())
	}
}

func TestConsoleLogger_VerboseEnabled(t *testing.T) {
	var buf bytes.Buffer
	logger := NewConsoleLoggerTo(&buf, true)

	logger.Verbose("checking publisher %q", "contoso")

	if got := buf.String(); !strings.HasPrefix(got, "[VERBOSE] ") {
		t.Errorf("Verbose output missing prefix: %q", got)
	}
}

func TestConsoleLogger_ErrorPrefix(t *testing.T) {
	var buf bytes.Buffer
	logger := NewConsoleLoggerTo(&buf, false)

	logger.Error("create failed: %v", "boom")

	if got := buf.String(); got != "[ERROR] create failed: boom\n" {
		t.Errorf("Error output = %q", got)
	}
}

func TestConsoleLogger_NoArgsLiteralPercent(t *testing.T) {
	var buf bytes.Buffer
	logger := NewConsoleLoggerTo(&buf, false)

	// A message containing % but no args must not be format-expanded.
	logger.Info("progress 100%")

	if got := buf.String(); got != "progress 100%\n" {
		t.Errorf("Info output = %q", got)
	}
}

func TestConsoleLogger_ConcurrentUse(t *testing.T) {
	var buf bytes.Buffer
	logger := NewConsoleLoggerTo(&buf, true)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			logger.Info("line")
			logger.Verbose("line")
			logger.Error("line")
		}()
	}
	wg.Wait()

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 60 {
		t.Errorf("Expected 60 lines, got %d", len(lines))
	}
}

func TestNullLogger_Discards(t *testing.T) {
	logger := NewNullLogger()
	// Must not panic or write anywhere.
	logger.Verbose("v")
	logger.Info("i")
	logger.Error("e")
}
