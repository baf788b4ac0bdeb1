package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/LuiseFreese/mermaid-sub004/internal/config"
	"github.com/LuiseFreese/mermaid-sub004/internal/logging"
	"github.com/LuiseFreese/mermaid-sub004/internal/tui"
	"github.com/LuiseFreese/mermaid-sub004/internal/tui/wizards"
	"github.com/LuiseFreese/mermaid-sub004/pkg/mdv"
)

var deployCmd = &cobra.Command{
	Use:   "deploy [diagram.mmd]",
	Short: "Deploy a Mermaid erDiagram to a Dataverse environment",
	Long: `Deploy parses the diagram, plans the schema it describes, and creates the
publisher, solution, tables, columns, relationships, and global choice sets
in dependency order.

Every step follows the ensure pattern: objects that already exist are
recorded as such and left untouched, so deployments are safe to re-run.
A failing column or relationship is reported and skipped over; only a
publisher or solution failure aborts the run.

Configuration precedence: flags > environment variables > mdv.yaml next to
the diagram. When required values are missing and you are at a terminal, an
interactive wizard collects them.

Authentication:
  Service principal when --tenant-id, --client-id, and
  $DATAVERSE_CLIENT_SECRET (or $AZURE_CLIENT_SECRET) are all set;
  otherwise the default Azure credential chain (Azure CLI, managed
  identity, ...). The secret is never accepted as a flag.

Examples:
  # Everything from mdv.yaml and the environment
  mdv deploy ./schema.mmd

  # Explicit coordinates
  mdv deploy ./schema.mmd \
    --env-url https://org.crm.dynamics.com \
    --solution CustomerSolution --publisher Contoso --prefix ctso

  # Reuse standard tables where entities match
  mdv deploy ./schema.mmd --integrate-cdm

  # Extra global choice set beyond the diagram's enums
  mdv deploy ./schema.mmd --choice-set priority=Low,Medium,High`,
	Args: cobra.MaximumNArgs(1),
	RunE: runDeploy,
}

var deployFlags struct {
	requestFlags
	workers int
	timeout time.Duration
}

func init() {
	rootCmd.AddCommand(deployCmd)
	addRequestFlags(deployCmd, &deployFlags.requestFlags)

	deployCmd.Flags().IntVar(&deployFlags.workers, "workers", mdv.DefaultEntityWorkers,
		"Concurrent table creations within the create-entities phase")
	deployCmd.Flags().DurationVar(&deployFlags.timeout, "timeout", 10*time.Minute,
		"Catastrophic failure protection timeout (default 10m)\n"+
			"Prevents indefinite hangs from network issues\n"+
			"Examples: 30s, 5m, 1h30m")
}

func runDeploy(cmd *cobra.Command, args []string) error {
	verbose := getVerboseFlag(cmd)
	logger := logging.NewConsoleLogger(verbose)

	_ = godotenv.Load()

	diagramPath := ""
	if len(args) > 0 {
		diagramPath = args[0]
	}

	diagramPath, request, creds, err := resolveDeployInputs(cmd, diagramPath)
	if err != nil {
		return err
	}

	parse, err := parseDiagram(diagramPath, logger)
	if err != nil {
		return err
	}

	plan, err := buildPlan(parse, request, logger)
	if err != nil {
		return err
	}

	prompt := fmt.Sprintf("Deploy %d operations to %s?", len(plan.Operations), request.EnvironmentURL)
	if !tui.PromptContinue(prompt) {
		return fmt.Errorf("deployment not confirmed: %w", mdv.ErrApprovalDenied)
	}

	client, err := newMetadataClient(request, creds, logger)
	if err != nil {
		return err
	}
	deployer := newDeployer(client, logger, deployFlags.workers)

	ctx, cancel := signalContext(deployFlags.timeout)
	defer cancel()

	result, err := deployer.Execute(ctx, plan)
	if result != nil {
		reportResult(result)
	}
	if err != nil {
		return fmt.Errorf("deployment failed: %w", err)
	}
	return nil
}

// resolveDeployInputs resolves the diagram path, request, and credentials.
// Missing values fall through to the interactive wizard when a terminal is
// attached; otherwise validation fails fast.
func resolveDeployInputs(cmd *cobra.Command, diagramPath string) (string, mdv.DeploymentRequest, credentials, error) {
	var cfg *config.ProjectConfig
	if diagramPath != "" {
		loaded, err := loadProjectConfig(diagramPath)
		if err != nil {
			return "", mdv.DeploymentRequest{}, credentials{}, err
		}
		cfg = loaded
	}

	request, err := resolveRequest(cmd, &deployFlags.requestFlags, cfg)
	if err != nil {
		return "", mdv.DeploymentRequest{}, credentials{}, err
	}

	if (diagramPath == "" || request.Validate() != nil) && tui.IsInteractive() {
		inputs, ok, err := wizards.RunDeployWizard(wizards.DeployInputs{
			DiagramPath: diagramPath,
			Request:     request,
		})
		if err != nil {
			return "", mdv.DeploymentRequest{}, credentials{}, err
		}
		if !ok {
			return "", mdv.DeploymentRequest{}, credentials{}, fmt.Errorf("wizard cancelled: %w", mdv.ErrApprovalDenied)
		}
		diagramPath = inputs.DiagramPath
		request = inputs.Request

		// The wizard may have pointed at a different directory; pick up its
		// config for credentials only.
		if cfg == nil {
			cfg, err = loadProjectConfig(diagramPath)
			if err != nil {
				return "", mdv.DeploymentRequest{}, credentials{}, err
			}
		}
	}

	if diagramPath == "" {
		return "", mdv.DeploymentRequest{}, credentials{}, fmt.Errorf("diagram path is required: %w", mdv.ErrInvalidConfig)
	}
	if err := request.Validate(); err != nil {
		return "", mdv.DeploymentRequest{}, credentials{}, err
	}

	return diagramPath, request, resolveCredentials(&deployFlags.requestFlags, cfg), nil
}

// signalContext returns a context cancelled by SIGINT/SIGTERM or the timeout.
func signalContext(timeout time.Duration) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		select {
		case <-sigChan:
			fmt.Fprintln(os.Stderr, "\ninterrupt received, cancelling...")
			cancel()
		case <-ctx.Done():
		}
	}()

	return ctx, cancel
}
