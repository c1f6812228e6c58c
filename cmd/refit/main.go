package main

import (
	"fmt"
	"os"

	"github.com/ludo-technologies/refit/internal/version"
	"github.com/spf13/cobra"
)

var (
	// Version information (set via ldflags during build)
	Version = version.Version
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "refit",
		Short: "refit - reference file integration engine",
		Long: `refit reads a staging directory of untyped TypeScript/JavaScript source
files, analyzes each for role and exports, builds a dependency graph,
determines a safe processing order, and integrates every file into
the project's canonical source tree — verifying the project still
type-checks after each step, with atomic rollback on failure.`,
		Version: Version,
	}

	rootCmd.AddCommand(integrateCmd())
	rootCmd.AddCommand(statusCmd())
	rootCmd.AddCommand(graphCmd())
	rootCmd.AddCommand(initCmd())
	rootCmd.AddCommand(versionCmd())

	if err := rootCmd.Execute(); err != nil {
		if exitErr, ok := err.(*CheckExitError); ok {
			if exitErr.Message != "" {
				fmt.Fprintf(os.Stderr, "Error: %s\n", exitErr.Message)
			}
			os.Exit(exitErr.Code)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// CheckExitError carries a specific process exit code alongside an
// already-printed (or intentionally silent) error message.
type CheckExitError struct {
	Code    int
	Message string
}

func (e *CheckExitError) Error() string {
	return e.Message
}

func versionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			verbose, _ := cmd.Flags().GetBool("verbose")
			if verbose {
				fmt.Println(version.GetFullVersion())
			} else {
				fmt.Printf("refit version %s\n", version.GetVersion())
			}
		},
	}

	cmd.Flags().BoolP("verbose", "v", false, "Show detailed version information")
	return cmd
}
