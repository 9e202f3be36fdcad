// Package main provides the entry point for the layerfang CLI tool.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/layerfang/cmd/layerfang/commands"
	"github.com/Sumatoshi-tech/layerfang/pkg/version"
)

// exitCodeFatal is used for configuration and environment errors, keeping
// exit code 1 reserved for "violations found".
const exitCodeFatal = 2

func main() {
	rootCmd := &cobra.Command{
		Use:   "layerfang",
		Short: "Layerfang - layered-architecture import checker",
		Long: `Layerfang enforces a layered-architecture import policy on a Python
package tree: files belong to layers by directory, and imports crossing a
forbidden layer edge fail the run.

Commands:
  check     Scan a package root and report forbidden import directions`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(commands.NewCheckCommand())
	rootCmd.AddCommand(commands.NewMCPCommand())
	rootCmd.AddCommand(versionCmd())

	err := rootCmd.Execute()
	if err != nil {
		if errors.Is(err, commands.ErrViolationsFound) {
			os.Exit(1)
		}

		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(exitCodeFatal)
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(_ *cobra.Command, _ []string) {
			fmt.Fprintf(os.Stdout, "layerfang %s (commit: %s, built: %s)\n", version.Version, version.Commit, version.Date)
		},
	}
}
