package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/LuiseFreese/mermaid-sub004/internal/logging"
	"github.com/LuiseFreese/mermaid-sub004/internal/parser"
)

var validateCmd = &cobra.Command{
	Use:   "validate <diagram.mmd>",
	Short: "Check a diagram without touching any environment",
	Long: `Validate parses the diagram and reports every recoverable issue with its
line number and, where possible, the corrected form. The parser is
forgiving: unknown types, reversed cardinalities, and missing primary keys
become warnings, not errors.

With --corrected, the normalized diagram with all fixes applied is printed
to stdout, ready to replace the original.`,
	Args: cobra.ExactArgs(1),
	RunE: runValidate,
}

var validateShowCorrected bool

func init() {
	rootCmd.AddCommand(validateCmd)
	validateCmd.Flags().BoolVar(&validateShowCorrected, "corrected", false,
		"Print the corrected diagram to stdout")
}

func runValidate(cmd *cobra.Command, args []string) error {
	logger := logging.NewConsoleLogger(getVerboseFlag(cmd))

	text, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("failed to read diagram %s: %v", args[0], err)
	}

	result, err := parser.New(logger).Parse(string(text))
	if err != nil {
		return err
	}

	for _, warning := range result.Warnings {
		fmt.Fprintf(os.Stderr, "warning: %s\n", warning)
		if warning.Suggestion != "" {
			fmt.Fprintf(os.Stderr, "  suggestion: %s\n", warning.Suggestion)
		}
	}

	if validateShowCorrected && result.CorrectedDiagram != "" {
		fmt.Print(result.CorrectedDiagram)
	}

	fmt.Fprintf(os.Stderr, "%d entities, %d relationships, %d warnings\n",
		result.Validation.EntityCount, result.Validation.RelationshipCount, len(result.Warnings))
	return nil
}
