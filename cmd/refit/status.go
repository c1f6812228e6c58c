package main

import (
	"fmt"

	"github.com/ludo-technologies/refit/app"
	"github.com/ludo-technologies/refit/internal/config"
	"github.com/spf13/cobra"
)

var statusConfigPath string

func statusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status [path]",
		Short: "Print the live integration state without running the engine",
		Long: `Load the persisted state document and print a human summary: total
files, processed count, completion percentage, and the file currently
in progress, if any. Does not invoke the pipeline.`,
		Args: cobra.MaximumNArgs(1),
		RunE: runStatus,
	}

	cmd.Flags().StringVarP(&statusConfigPath, "config", "c", "", "Path to config file")
	return cmd
}

func runStatus(cmd *cobra.Command, args []string) error {
	target := "."
	if len(args) == 1 {
		target = args[0]
	}

	cfg, err := config.LoadConfigWithTarget(statusConfigPath, target)
	if err != nil {
		return &CheckExitError{Code: 2, Message: fmt.Sprintf("failed to load configuration: %v", err)}
	}

	uc := app.NewIntegrationUseCase()
	state := uc.Status(cfg.Integration.StateStore.Path)

	fmt.Println(state.Summary())
	if state.Current != "" {
		fmt.Printf("  in progress: %s\n", state.Current)
	}
	if len(state.Failed) > 0 {
		fmt.Println("  failed:")
		for _, kv := range state.Failed {
			fmt.Printf("    %s: %s\n", kv.Path, kv.Value)
		}
	}
	if len(state.Skipped) > 0 {
		fmt.Println("  skipped:")
		for _, kv := range state.Skipped {
			fmt.Printf("    %s: %s\n", kv.Path, kv.Value)
		}
	}
	return nil
}
