package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/LuiseFreese/mermaid-sub004/internal/config"
	"github.com/LuiseFreese/mermaid-sub004/internal/params"
	"github.com/LuiseFreese/mermaid-sub004/pkg/mdv"
)

// Environment variables recognized by all commands. Flags override these,
// and these override mdv.yaml. The client secret has no flag on purpose:
// secrets never appear in shell history or process lists.
const (
	EnvEnvironmentURL = "DATAVERSE_URL"
	EnvTenantID       = "AZURE_TENANT_ID"
	EnvClientID       = "AZURE_CLIENT_ID"
	EnvClientSecret   = "DATAVERSE_CLIENT_SECRET"
	EnvClientSecret2  = "AZURE_CLIENT_SECRET"
	EnvSolutionName   = "MDV_SOLUTION_NAME"
	EnvPublisherName  = "MDV_PUBLISHER_NAME"
	EnvPrefix         = "MDV_PUBLISHER_PREFIX"
	EnvIntegrateCDM   = "MDV_INTEGRATE_CDM"
)

// requestFlags holds the per-command flag values that feed a
// DeploymentRequest. Each command registers its own copy so parallel tests
// never share state.
type requestFlags struct {
	environmentURL   string
	tenantID         string
	clientID         string
	solution         string
	solutionDisplay  string
	publisher        string
	publisherDisplay string
	prefix           string
	integrateCDM     bool
	choiceSets       []string
	envFiles         []string
}

func addRequestFlags(cmd *cobra.Command, f *requestFlags) {
	cmd.Flags().StringVar(&f.environmentURL, "env-url", "",
		"Target environment URL, e.g. https://org.crm.dynamics.com\n"+
			"Precedence: --env-url > $"+EnvEnvironmentURL+" > mdv.yaml")
	cmd.Flags().StringVar(&f.tenantID, "tenant-id", "",
		"Entra ID tenant for service principal authentication (or $"+EnvTenantID+")")
	cmd.Flags().StringVar(&f.clientID, "client-id", "",
		"Application (client) ID for service principal authentication (or $"+EnvClientID+")")
	cmd.Flags().StringVarP(&f.solution, "solution", "s", "",
		"Unique name of the target solution (or $"+EnvSolutionName+")")
	cmd.Flags().StringVar(&f.solutionDisplay, "solution-display-name", "",
		"Display name used if the solution must be created (default: unique name)")
	cmd.Flags().StringVarP(&f.publisher, "publisher", "p", "",
		"Unique name of the target publisher (or $"+EnvPublisherName+")")
	cmd.Flags().StringVar(&f.publisherDisplay, "publisher-display-name", "",
		"Display name used if the publisher must be created (default: unique name)")
	cmd.Flags().StringVar(&f.prefix, "prefix", "",
		"Customization prefix for all logical names: 2-8 lowercase letters or\n"+
			"digits, starting with a letter (or $"+EnvPrefix+")")
	cmd.Flags().BoolVar(&f.integrateCDM, "integrate-cdm", false,
		"Reuse standard tables (account, contact, ...) for matching entities\n"+
			"instead of creating custom tables")
	cmd.Flags().StringSliceVar(&f.choiceSets, "choice-set", nil,
		"Extra global choice set as name=Label1,Label2 (can be repeated)")
	cmd.Flags().StringSliceVar(&f.envFiles, "env-file", nil,
		"Load environment variables from .env files before resolving values\n"+
			"(can be repeated; later files never override already-set variables)")
}

// loadProjectConfig reads mdv.yaml next to the diagram. A missing file is
// fine; any other read or parse failure is not.
func loadProjectConfig(diagramPath string) (*config.ProjectConfig, error) {
	cfg, err := config.Load(filepath.Dir(diagramPath))
	if err != nil {
		if errors.Is(err, config.ErrConfigNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load %s: %w: %v", config.ConfigFileName, mdv.ErrInvalidConfig, err)
	}
	return cfg, nil
}

// resolveRequest merges flags, environment variables, and the project config
// into a DeploymentRequest, highest precedence first.
func resolveRequest(cmd *cobra.Command, f *requestFlags, cfg *config.ProjectConfig) (mdv.DeploymentRequest, error) {
	for _, file := range f.envFiles {
		if err := params.LoadEnvFile(file); err != nil {
			return mdv.DeploymentRequest{}, fmt.Errorf("%w: %v", mdv.ErrInvalidConfig, err)
		}
	}

	var fileCfg config.ProjectConfig
	if cfg != nil {
		fileCfg = *cfg
	}

	request := mdv.DeploymentRequest{
		EnvironmentURL:       pick(f.environmentURL, EnvEnvironmentURL, fileCfg.Environment.URL),
		SolutionUniqueName:   pick(f.solution, EnvSolutionName, fileCfg.Solution.UniqueName),
		SolutionDisplayName:  pick(f.solutionDisplay, "", fileCfg.Solution.DisplayName),
		PublisherUniqueName:  pick(f.publisher, EnvPublisherName, fileCfg.Publisher.UniqueName),
		PublisherDisplayName: pick(f.publisherDisplay, "", fileCfg.Publisher.DisplayName),
		PublisherPrefix:      pick(f.prefix, EnvPrefix, fileCfg.Publisher.Prefix),
	}

	switch {
	case cmd.Flags().Changed("integrate-cdm"):
		request.IntegrateCDM = f.integrateCDM
	case os.Getenv(EnvIntegrateCDM) != "":
		v := os.Getenv(EnvIntegrateCDM)
		request.IntegrateCDM = v == "1" || v == "true"
	default:
		request.IntegrateCDM = fileCfg.IntegrateCDM
	}

	if cfg != nil {
		request.ChoiceSets = cfg.ChoiceSetsForRequest()
	}
	if len(f.choiceSets) > 0 {
		extra, err := params.ParseChoiceSets(f.choiceSets)
		if err != nil {
			return mdv.DeploymentRequest{}, fmt.Errorf("invalid --choice-set: %w", err)
		}
		request.ChoiceSets = append(request.ChoiceSets, extra...)
	}

	return request, nil
}

func pick(flagValue, envKey, configValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if envKey != "" {
		if v := os.Getenv(envKey); v != "" {
			return v
		}
	}
	return configValue
}

// credentials is the resolved authentication material for one run.
type credentials struct {
	TenantID     string
	ClientID     string
	ClientSecret string
}

// resolveCredentials merges flags, environment, and config. The secret only
// ever comes from the environment.
func resolveCredentials(f *requestFlags, cfg *config.ProjectConfig) credentials {
	var fileCfg config.ProjectConfig
	if cfg != nil {
		fileCfg = *cfg
	}
	secret := os.Getenv(EnvClientSecret)
	if secret == "" {
		secret = os.Getenv(EnvClientSecret2)
	}
	return credentials{
		TenantID:     pick(f.tenantID, EnvTenantID, fileCfg.Environment.TenantID),
		ClientID:     pick(f.clientID, EnvClientID, fileCfg.Environment.ClientID),
		ClientSecret: secret,
	}
}

// ServicePrincipal reports whether the resolved material is complete enough
// for client-secret authentication. Anything less falls back to the default
// Azure credential chain.
func (c credentials) ServicePrincipal() bool {
	return c.TenantID != "" && c.ClientID != "" && c.ClientSecret != ""
}
