package main

import (
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/ShayCichocki/loom/internal/tui"
	"github.com/ShayCichocki/loom/pkg/models"
)

var statusWatch bool

var statusCmd = &cobra.Command{
	Use:   "status [feature-id]",
	Short: "Show feature state",
	Long: `Display the current state of a feature workspace.

Shows:
  - Current phase and status
  - Feedback-loop iteration against its budget
  - Completed phases and recorded errors
  - Stored artifacts

With --watch, opens a live view over every workspace instead.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runStatus,
}

func runStatus(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	store, err := openStore(cfg)
	if err != nil {
		return err
	}

	if statusWatch {
		return tui.Run(store)
	}
	if len(args) == 0 {
		return fmt.Errorf("feature id required (or use --watch)")
	}

	info, err := store.Get(args[0])
	if err != nil {
		return err
	}

	title := info.Workspace.Title
	if title == "" {
		title = info.Workspace.FeatureID
	}
	fmt.Printf("Feature: %s\n", title)
	fmt.Printf("  Phase:     %s\n", info.State.Phase)
	fmt.Printf("  Status:    %s\n", colorStatus(info.State.Status))
	fmt.Printf("  Scope:     %s\n", info.State.Scope.Mode)
	fmt.Printf("  Iteration: %d/%d\n", info.State.Iteration, info.State.MaxIterations)
	fmt.Printf("  Updated:   %s ago\n", formatDuration(time.Since(info.State.UpdatedAt)))

	if len(info.State.PhasesCompleted) > 0 {
		fmt.Println("\nCompleted phases:")
		for _, p := range info.State.PhasesCompleted {
			fmt.Printf("  ✓ %s\n", p)
		}
	}

	if len(info.State.Errors) > 0 {
		fmt.Println("\nErrors:")
		for _, e := range info.State.Errors {
			color.New(color.FgRed).Printf("  ✗ %s\n", e)
		}
	}

	if len(info.Artifacts) > 0 {
		fmt.Println("\nArtifacts:")
		for _, a := range info.Artifacts {
			fmt.Printf("  %-24s %-10s %6d bytes  %s\n",
				a.Name, a.Type, a.Size, a.ModifiedAt.Local().Format("15:04:05"))
		}
	}
	return nil
}

func init() {
	statusCmd.Flags().BoolVar(&statusWatch, "watch", false, "Open a live view over all workspaces")
}

// colorStatus renders a status with its conventional color.
func colorStatus(s models.Status) string {
	switch s {
	case models.StatusCompleted:
		return color.GreenString(string(s))
	case models.StatusFailed:
		return color.RedString(string(s))
	case models.StatusPaused:
		return color.YellowString(string(s))
	case models.StatusInProgress:
		return color.CyanString(string(s))
	default:
		return string(s)
	}
}

// formatDuration formats a duration in a human-readable way.
func formatDuration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%ds", int(d.Seconds()))
	}
	if d < time.Hour {
		return fmt.Sprintf("%dm", int(d.Minutes()))
	}
	if d < 24*time.Hour {
		h := int(d.Hours())
		m := int(d.Minutes()) % 60
		if m > 0 {
			return fmt.Sprintf("%dh%dm", h, m)
		}
		return fmt.Sprintf("%dh", h)
	}
	return fmt.Sprintf("%dd", int(d.Hours())/24)
}
