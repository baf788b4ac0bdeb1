package cli

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/LuiseFreese/mermaid-sub004/internal/logging"
	"github.com/LuiseFreese/mermaid-sub004/internal/tui"
	"github.com/LuiseFreese/mermaid-sub004/internal/ui"
	"github.com/LuiseFreese/mermaid-sub004/pkg/mdv"
)

var cleanupCmd = &cobra.Command{
	Use:   "cleanup <diagram.mmd>",
	Short: "Delete the schema objects a diagram's deployment created",
	Long: `Cleanup plans the diagram the same way deploy does, then deletes the
planned objects in reverse dependency order: relationships first, then
tables. Only objects inside the publisher prefix namespace are touched;
canonical (standard) tables are never deleted, and global choice sets are
left in place with a warning.

This is destructive. Interactively you must type the solution's unique
name to confirm; with --force a short countdown runs instead, for CI use.`,
	Args: cobra.ExactArgs(1),
	RunE: runCleanup,
}

var cleanupFlags struct {
	requestFlags
	force   bool
	timeout time.Duration
}

func init() {
	rootCmd.AddCommand(cleanupCmd)
	addRequestFlags(cleanupCmd, &cleanupFlags.requestFlags)

	cleanupCmd.Flags().BoolVar(&cleanupFlags.force, "force", false,
		"Skip the type-to-confirm prompt; a countdown runs instead")
	cleanupCmd.Flags().DurationVar(&cleanupFlags.timeout, "timeout", 10*time.Minute,
		"Catastrophic failure protection timeout (default 10m)")
}

func runCleanup(cmd *cobra.Command, args []string) error {
	verbose := getVerboseFlag(cmd)
	logger := logging.NewConsoleLogger(verbose)

	_ = godotenv.Load()

	cfg, err := loadProjectConfig(args[0])
	if err != nil {
		return err
	}
	request, err := resolveRequest(cmd, &cleanupFlags.requestFlags, cfg)
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

	ctx, cancel := signalContext(cleanupFlags.timeout)
	defer cancel()

	var approver mdv.Approver
	switch {
	case cleanupFlags.force:
		approver = ui.NewForcedApprover()
	case tui.IsInteractive():
		approver = ui.NewInteractiveApprover()
	default:
		return fmt.Errorf("cleanup needs a terminal to confirm, or --force: %w", mdv.ErrApprovalDenied)
	}

	approved, err := approver.RequestApproval(ctx, request.SolutionUniqueName)
	if err != nil {
		return err
	}
	if !approved {
		return fmt.Errorf("cleanup of %s not confirmed: %w", request.SolutionUniqueName, mdv.ErrApprovalDenied)
	}

	client, err := newMetadataClient(request, resolveCredentials(&cleanupFlags.requestFlags, cfg), logger)
	if err != nil {
		return err
	}
	deployer := newDeployer(client, logger, 0)

	result, err := deployer.Cleanup(ctx, plan)
	if result != nil {
		reportResult(result)
	}
	if err != nil {
		return fmt.Errorf("cleanup failed: %w", err)
	}
	return nil
}
