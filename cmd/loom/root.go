package main

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/ShayCichocki/loom/internal/config"
	"github.com/ShayCichocki/loom/internal/runstore"
	"github.com/ShayCichocki/loom/internal/workspace"
)

var rootCmd = &cobra.Command{
	Use:   "loom",
	Short: "Feature workflow orchestration engine",
	Long: `Loom drives feature development through a fixed workflow of phases,
delegating the actual work to external collaborator processes.

Each feature owns an isolated workspace holding its state and the artifacts
collaborators produce. Verification is gated on full acceptance-criteria test
coverage, and failing test outcomes are correlated back to the checklist and
routed to the right collaborator for remediation.

Core capabilities:
- Per-feature workspaces with typed, atomically-written artifacts
- A strict phase state machine with a bounded feedback loop
- A coverage gate guarding the verification phase
- Test-outcome correlation and advisory failure routing
- Durable test-run history`,
	SilenceUsage: true,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(createCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(deleteCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(artifactCmd)
	rootCmd.AddCommand(runsCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(versionCmd)
}

// loadConfig loads the effective configuration.
func loadConfig() (*config.Config, error) {
	return config.Load()
}

// openStore opens the workspace store for the current project.
func openStore(cfg *config.Config) (*workspace.Store, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	return workspace.NewStore(filepath.Join(cwd, cfg.Workflow.Root, "features")), nil
}

// openRuns opens the run-history database for the current project.
func openRuns(cfg *config.Config) (*runstore.DB, error) {
	path := cfg.Runs.DBPath
	if path == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, err
		}
		path = filepath.Join(cwd, cfg.Workflow.Root, "runs.db")
	}

	db, err := runstore.Open(path)
	if err != nil {
		return nil, err
	}
	if err := db.Migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}
