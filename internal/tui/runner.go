package tui

import (
	"fmt"
	"io"
	"os"

	"github.com/LuiseFreese/mermaid-sub004/pkg/mdv"
)

// PromptContinue asks a yes/no question on the terminal. In non-interactive
// mode it answers yes, so pipelines are never blocked on a prompt.
func PromptContinue(message string) bool {
	if !IsInteractive() {
		return true
	}

	fmt.Printf("%s [Y/n]: ", message)

	var response string
	fmt.Scanln(&response)

	return response == "" || response == "y" || response == "Y"
}

// ProgressPrinter renders deployment progress events as styled lines. It
// implements mdv.ProgressSink and is safe for the executor's concurrent
// entity phase because fmt.Fprintf on a single writer is atomic enough for
// line-oriented output.
type ProgressPrinter struct {
	out io.Writer
}

// NewProgressPrinter creates a printer writing to stderr unless overridden.
func NewProgressPrinter(out io.Writer) *ProgressPrinter {
	if out == nil {
		out = os.Stderr
	}
	return &ProgressPrinter{out: out}
}

// Publish renders one progress event.
func (p *ProgressPrinter) Publish(event mdv.ProgressEvent) {
	switch event.Message {
	case "failed":
		fmt.Fprintf(p.out, "%s %s %s\n", ErrorStyle.Render(SymbolCross), event.Step, event.Detail)
	case "skipped":
		fmt.Fprintf(p.out, "%s %s %s (skipped)\n", WarningStyle.Render(SymbolBullet), event.Step, event.Detail)
	case "starting":
		// Start events are only interesting in verbose logs.
	default:
		fmt.Fprintf(p.out, "%s %s %s\n", SuccessStyle.Render(SymbolCheck), event.Step, event.Detail)
	}
}

var _ mdv.ProgressSink = (*ProgressPrinter)(nil)
