// Package main provides the entry point for the anchorscope CLI tool.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/anchorscope/anchorscope/cmd/anchorscope/commands"
	"github.com/anchorscope/anchorscope/pkg/version"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "anchorscope",
		Short: "Anchorscope - structural metrics for Anchor contract sources",
		Long: `Anchorscope measures the structural complexity and code volume of
Rust smart-contract sources: per-function cyclomatic and cognitive
complexity, statement counts, handler classification, and a workspace
code-volume factor.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(commands.NewAnalyzeCommand())
	rootCmd.AddCommand(versionCmd())

	err := rootCmd.Execute()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(_ *cobra.Command, _ []string) {
			fmt.Fprintf(os.Stdout, "anchorscope %s\n", version.String())
		},
	}
}
