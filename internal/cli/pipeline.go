package cli

import (
	"fmt"
	"os"

	"github.com/LuiseFreese/mermaid-sub004/internal/cdm"
	"github.com/LuiseFreese/mermaid-sub004/internal/dataverse"
	"github.com/LuiseFreese/mermaid-sub004/internal/deploy"
	"github.com/LuiseFreese/mermaid-sub004/internal/parser"
	"github.com/LuiseFreese/mermaid-sub004/internal/planner"
	"github.com/LuiseFreese/mermaid-sub004/internal/tui"
	"github.com/LuiseFreese/mermaid-sub004/pkg/mdv"
)

// parseDiagram reads and parses the diagram file, surfacing warnings on
// stderr so they are visible regardless of the command.
func parseDiagram(path string, logger mdv.Logger) (*mdv.ParseResult, error) {
	text, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read diagram %s: %w: %v", path, mdv.ErrInvalidConfig, err)
	}

	result, err := parser.New(logger).Parse(string(text))
	if err != nil {
		return nil, err
	}

	for _, warning := range result.Warnings {
		logger.Info("warning: %s", warning)
	}
	return result, nil
}

// buildPlan runs the parse result through the matcher and planner.
func buildPlan(parse *mdv.ParseResult, request mdv.DeploymentRequest, logger mdv.Logger) (*mdv.DeploymentPlan, error) {
	matches := cdm.NewMatcher(logger).DetectCanonicalEntities(parse.Entities)
	return planner.New(logger).Plan(parse, matches, request)
}

// newMetadataClient wires a Dataverse client for the resolved request: a
// service principal when the material is complete, the default Azure
// credential chain otherwise.
func newMetadataClient(request mdv.DeploymentRequest, creds credentials, logger mdv.Logger) (mdv.MetadataClient, error) {
	var (
		provider mdv.TokenProvider
		err      error
	)
	if creds.ServicePrincipal() {
		logger.Verbose("authenticating as service principal %s", creds.ClientID)
		provider, err = dataverse.NewServicePrincipalProvider(
			creds.TenantID, creds.ClientID, creds.ClientSecret, request.EnvironmentURL)
	} else {
		logger.Verbose("authenticating via the default Azure credential chain")
		provider, err = dataverse.NewDefaultCredentialProvider(request.EnvironmentURL)
	}
	if err != nil {
		return nil, err
	}
	return dataverse.NewClient(request.EnvironmentURL, provider, logger)
}

// newDeployer builds the executor with progress rendering on stderr.
func newDeployer(client mdv.MetadataClient, logger mdv.Logger, workers int) *deploy.Executor {
	opts := []deploy.Option{
		deploy.WithProgress(tui.NewProgressPrinter(os.Stderr)),
	}
	if workers > 0 {
		opts = append(opts, deploy.WithWorkers(workers))
	}
	return deploy.NewExecutor(client, logger, opts...)
}

// reportResult prints the run summary and collected warnings and errors.
func reportResult(result *mdv.DeploymentResult) {
	for _, warning := range result.Warnings {
		fmt.Fprintf(os.Stderr, "warning: %s\n", warning)
	}
	for _, message := range result.Errors {
		fmt.Fprintf(os.Stderr, "error: %s\n", message)
	}
	fmt.Println(result.Summary())
}
