package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/ludo-technologies/refit/app"
	"github.com/ludo-technologies/refit/domain"
	"github.com/ludo-technologies/refit/internal/config"
	"github.com/spf13/cobra"
)

var graphConfigPath string

func graphCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "graph [path]",
		Short: "Render the staged-file dependency graph as JSON",
		Long: `Discover and analyze the staging directory's files, build the
dependency graph used to decide processing order, and print it as
indented JSON without integrating anything. Useful for inspecting why
a cycle was reported before committing to a run.`,
		Args: cobra.MaximumNArgs(1),
		RunE: runGraph,
	}

	cmd.Flags().StringVarP(&graphConfigPath, "config", "c", "", "Path to config file")
	return cmd
}

func runGraph(cmd *cobra.Command, args []string) error {
	target := "."
	if len(args) == 1 {
		target = args[0]
	}

	cfg, err := config.LoadConfigWithTarget(graphConfigPath, target)
	if err != nil {
		return &CheckExitError{Code: 2, Message: fmt.Sprintf("failed to load configuration: %v", err)}
	}

	uc := app.NewIntegrationUseCase()
	report, err := uc.Graph(domain.IntegrationRequest{
		Config:          &cfg.Integration,
		IncludePatterns: cfg.Scan.IncludePatterns,
		ExcludePatterns: cfg.Scan.ExcludePatterns,
	})
	if err != nil {
		return &CheckExitError{Code: 2, Message: fmt.Sprintf("failed to build graph: %v", err)}
	}

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(report); err != nil {
		return &CheckExitError{Code: 2, Message: fmt.Sprintf("failed to encode JSON: %v", err)}
	}

	if len(report.Cycles) > 0 {
		return &CheckExitError{Code: 1, Message: ""}
	}
	return nil
}
