// Package main provides the entry point for the git-xrays CLI tool.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jogendra123/git-xrays/cmd/git-xrays/commands"
	"github.com/jogendra123/git-xrays/pkg/version"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "git-xrays",
		Short: "git-xrays mines a repository's history and source tree for code-health signals",
		Long: `git-xrays runs nine metric pipelines over a git repository's commit
history and current source tree: hotspots, knowledge concentration,
temporal coupling, structural PAIN, anemic-model and god-class
detection, AST complexity, commit clustering, effort modeling, and a
composite developer-experience overlay. Results persist to a local
SQLite run store for longitudinal comparison.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(commands.NewAnalyzeCommand())
	rootCmd.AddCommand(commands.NewRunsCommand())
	rootCmd.AddCommand(versionCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(commands.ExitCodeFor(err))
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(_ *cobra.Command, _ []string) {
			fmt.Fprintln(os.Stdout, version.String())
		},
	}
}
