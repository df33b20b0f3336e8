package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	runsPurgeOlderThan time.Duration
	runsShowJSON       bool
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Inspect test-run history",
	Long:  `List, show, and purge the recorded test runs for features.`,
}

var runsListCmd = &cobra.Command{
	Use:   "list <feature-id>",
	Short: "List recorded runs for a feature",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		db, err := openRuns(cfg)
		if err != nil {
			return err
		}
		defer db.Close()

		runs, err := db.ListRuns(args[0])
		if err != nil {
			return err
		}
		if len(runs) == 0 {
			fmt.Println("No recorded runs")
			return nil
		}

		fmt.Printf("%-36s %-20s %7s %7s %8s\n", "RUN", "STARTED", "PASSED", "FAILED", "SKIPPED")
		for _, r := range runs {
			fmt.Printf("%-36s %-20s %7d %7d %8d\n",
				r.ID,
				r.StartedAt.Local().Format("2006-01-02 15:04:05"),
				r.Passed, r.Failed, r.Skipped)
		}
		return nil
	},
}

var runsShowCmd = &cobra.Command{
	Use:   "show <run-id>",
	Short: "Show one run with its outcomes",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		db, err := openRuns(cfg)
		if err != nil {
			return err
		}
		defer db.Close()

		run, err := db.GetRun(args[0])
		if err != nil {
			return err
		}
		if run == nil {
			return fmt.Errorf("run %s not found", args[0])
		}

		if runsShowJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(run)
		}

		fmt.Printf("Run %s (feature %s)\n", run.ID, run.FeatureID)
		fmt.Printf("  Started:  %s\n", run.StartedAt.Local().Format("2006-01-02 15:04:05"))
		if run.FinishedAt != nil {
			fmt.Printf("  Finished: %s\n", run.FinishedAt.Local().Format("2006-01-02 15:04:05"))
		}
		fmt.Printf("  Totals:   %d passed, %d failed, %d skipped\n", run.Passed, run.Failed, run.Skipped)

		if len(run.Outcomes) > 0 {
			fmt.Println("\nOutcomes:")
			for _, o := range run.Outcomes {
				line := fmt.Sprintf("  %-8s %s", o.Status, o.ID)
				switch o.Status {
				case "failed":
					color.New(color.FgRed).Println(line)
					if o.ErrorText != "" {
						fmt.Printf("           %s\n", o.ErrorText)
					}
				case "passed":
					color.New(color.FgGreen).Println(line)
				default:
					fmt.Println(line)
				}
			}
		}
		return nil
	},
}

var runsPurgeCmd = &cobra.Command{
	Use:   "purge",
	Short: "Delete runs older than the retention window",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		db, err := openRuns(cfg)
		if err != nil {
			return err
		}
		defer db.Close()

		olderThan := runsPurgeOlderThan
		if olderThan <= 0 {
			olderThan = cfg.Runs.Retention
		}

		count, err := db.PurgeOldRuns(olderThan)
		if err != nil {
			return err
		}
		printStatus("✓", fmt.Sprintf("Purged %d run(s) older than %s", count, olderThan), color.FgGreen)
		return nil
	},
}

func init() {
	runsShowCmd.Flags().BoolVar(&runsShowJSON, "json", false, "Print the run as JSON")
	runsPurgeCmd.Flags().DurationVar(&runsPurgeOlderThan, "older-than", 0, "Override the retention window (e.g. 168h)")

	runsCmd.AddCommand(runsListCmd)
	runsCmd.AddCommand(runsShowCmd)
	runsCmd.AddCommand(runsPurgeCmd)
}
