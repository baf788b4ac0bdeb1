package main

import (
	"fmt"
	"os"
	"runtime/debug"

	"github.com/LuiseFreese/mermaid-sub004/internal/cli"
	"github.com/LuiseFreese/mermaid-sub004/pkg/mdv"
)

func main() {
	// Recover from panics to ensure graceful exits with stack traces
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "panic: %v\n%s\n", r, debug.Stack())
			os.Exit(mdv.ExitPanic)
		}
	}()

	if err := cli.Execute(); err != nil {
		os.Exit(mdv.ExitCodeForError(err))
	}
}
