package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ShayCichocki/loom/pkg/models"
)

var listStatus string

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List feature workspaces",
	Long:  `List all feature workspaces, most recently updated first.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		store, err := openStore(cfg)
		if err != nil {
			return err
		}

		var filter *models.Status
		if listStatus != "" {
			s := models.Status(listStatus)
			if !s.Valid() {
				return fmt.Errorf("unknown status %q", listStatus)
			}
			filter = &s
		}

		entries, err := store.List(filter)
		if err != nil {
			return err
		}
		if len(entries) == 0 {
			fmt.Println("No workspaces. Run 'loom create <feature-id>' to start.")
			return nil
		}

		fmt.Printf("%-20s %-22s %-12s %6s  %s\n", "FEATURE", "PHASE", "STATUS", "ITER", "UPDATED")
		for _, e := range entries {
			fmt.Printf("%-20s %-22s %-12s %3d/%-2d  %s\n",
				e.Workspace.FeatureID,
				e.State.Phase,
				colorStatus(e.State.Status),
				e.State.Iteration,
				e.State.MaxIterations,
				e.State.UpdatedAt.Local().Format("2006-01-02 15:04"))
		}
		return nil
	},
}

func init() {
	listCmd.Flags().StringVar(&listStatus, "status", "", "Filter by status (pending|in_progress|completed|failed|paused)")
}
