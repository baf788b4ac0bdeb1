package cli

import (
	"github.com/spf13/cobra"
)

// diagramExtensions are the file extensions offered for diagram arguments.
var diagramExtensions = []string{"mmd", "mermaid"}

// completeDiagramFiles provides shell completion for diagram path arguments.
func completeDiagramFiles(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	return diagramExtensions, cobra.ShellCompDirectiveFilterFileExt
}

func init() {
	deployCmd.ValidArgsFunction = completeDiagramFiles
	validateCmd.ValidArgsFunction = completeDiagramFiles
	planCmd.ValidArgsFunction = completeDiagramFiles
	cleanupCmd.ValidArgsFunction = completeDiagramFiles
}
