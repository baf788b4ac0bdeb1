package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

const asciiLogo = `
                _
  _ __ ___   __| |_   __
 | '_ ` + "`" + ` _ \ / _` + "`" + ` \ \ / /
 | | | | | | (_| |\ V /
 |_| |_| |_|\__,_| \_/`

var rootCmd = &cobra.Command{
	Use:   "mdv",
	Short: "Mermaid-to-Dataverse schema deployer",
	Long: asciiLogo + `

mdv reads a Mermaid erDiagram, plans the Dataverse tables, columns,
relationships, and choice sets it describes, and deploys them into a target
environment. Every operation is idempotent: objects that already exist are
recorded and left untouched, so re-running a deployment is safe.

Credentials are never passed on the command line. Set
DATAVERSE_CLIENT_SECRET (or AZURE_CLIENT_SECRET) for service principal
authentication, or rely on the default Azure credential chain.

Exit Codes:
  0  - Success
  1  - General error
  2  - CLI usage error (invalid arguments or flags)
  3  - Panic or unexpected system error
  10 - Invalid configuration or deployment request
  11 - Failed to acquire a credential
  12 - User denied cleanup approval
  13 - Deployment aborted on the critical path
  14 - Diagram could not be parsed`,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() error {
	if len(os.Args) > 1 && os.Args[1] == "--version" {
		printVersionInfo()
		return nil
	}
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().Bool("help", false, "Help for mdv")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose output for all commands")
}

// getVerboseFlag safely retrieves the verbose flag value
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Failed to get verbose flag: %v\n", err)
		return false
	}
	return verbose
}
