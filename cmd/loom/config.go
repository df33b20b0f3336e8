package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ShayCichocki/loom/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show effective configuration",
	Long: `Display the effective configuration after merging defaults, the user
config, the project config, and LOOM_* environment variables.

Configuration is stored at ~/.config/loom/config.yaml
Project-specific overrides can be placed in .loom.yaml`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}

		fmt.Printf("workflow.max_iterations: %d\n", cfg.Workflow.MaxIterations)
		fmt.Printf("workflow.phase_timeout:  %s\n", cfg.Workflow.PhaseTimeout)
		fmt.Printf("workflow.root:           %s\n", cfg.Workflow.Root)
		fmt.Printf("classifier.rules_path:   %s\n", orDefault(cfg.Classifier.RulesPath, "(built-in)"))
		fmt.Printf("runs.db_path:            %s\n", orDefault(cfg.Runs.DBPath, "(project default)"))
		fmt.Printf("runs.retention:          %s\n", cfg.Runs.Retention)
		fmt.Printf("tui.refresh_rate:        %s\n", cfg.TUI.RefreshRate)

		if p := config.GetProjectConfigPath(); p != "" {
			fmt.Printf("\nProject config: %s\n", p)
		}
		fmt.Printf("User config:    %s\n", config.GetUserConfigPath())
		return nil
	},
}

func orDefault(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}
