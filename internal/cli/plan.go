package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/LuiseFreese/mermaid-sub004/internal/logging"
	"github.com/LuiseFreese/mermaid-sub004/pkg/mdv"
)

var planCmd = &cobra.Command{
	Use:   "plan <diagram.mmd>",
	Short: "Show the ordered operations a deployment would perform",
	Long: `Plan runs the full parse-match-plan pipeline and prints the resulting
operation list without connecting to any environment. The order shown is
exactly the order deploy would execute: publisher and solution first, then
choice sets, tables, columns, and finally relationships.

Planning needs the same identity inputs as deploy (solution, publisher,
prefix) because every logical name embeds the publisher prefix.`,
	Args: cobra.ExactArgs(1),
	RunE: runPlan,
}

var planFlags requestFlags

func init() {
	rootCmd.AddCommand(planCmd)
	addRequestFlags(planCmd, &planFlags)
}

func runPlan(cmd *cobra.Command, args []string) error {
	logger := logging.NewConsoleLogger(getVerboseFlag(cmd))

	cfg, err := loadProjectConfig(args[0])
	if err != nil {
		return err
	}
	request, err := resolveRequest(cmd, &planFlags, cfg)
	if err != nil {
		return err
	}
	if err := request.Validate(); err != nil {
		return err
	}

	parse, err := parseDiagram(args[0], logger)
	if err != nil {
		return err
	}
	plan, err := buildPlan(parse, request, logger)
	if err != nil {
		return err
	}

	renderPlan(os.Stdout, plan)
	return nil
}

// renderPlan prints one numbered line per operation.
func renderPlan(out io.Writer, plan *mdv.DeploymentPlan) {
	for i, op := range plan.Operations {
		fmt.Fprintf(out, "%3d. %-26s %s%s\n", i+1, op.Kind, op.Name, operationDetail(op))
	}
	fmt.Fprintf(out, "\n%d operations (%d custom entities, %d canonical)\n",
		len(plan.Operations), len(plan.CustomEntities), len(plan.CanonicalEntities))
}

func operationDetail(op mdv.Operation) string {
	switch op.Kind {
	case mdv.OpCreateAttribute:
		return fmt.Sprintf(" on %s", op.OwnerEntity)
	case mdv.OpCreateRelationship:
		if op.Relationship != nil {
			return fmt.Sprintf(" (%s -> %s)", op.Relationship.ReferencingEntity, op.Relationship.ReferencedEntity)
		}
	case mdv.OpIntegrateCanonical:
		if op.Match != nil {
			return fmt.Sprintf(" (matched %q, score %.2f)", op.Match.EntityName, op.Match.Score)
		}
	}
	return ""
}
