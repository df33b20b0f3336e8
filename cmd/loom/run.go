package main

import (
	"context"
	"fmt"
	"os/signal"
	"strings"
	"sync"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/ShayCichocki/loom/internal/correlate"
	"github.com/ShayCichocki/loom/internal/exec"
	"github.com/ShayCichocki/loom/internal/orchestrator"
	"github.com/ShayCichocki/loom/pkg/models"
)

var (
	runCommand       string
	runPhaseCommands []string
)

var runCmd = &cobra.Command{
	Use:   "run <feature-id>",
	Short: "Drive a feature through the workflow",
	Long: `Run the workflow for a feature from its current phase.

Each phase is delegated to a collaborator command. The command receives the
phase request as JSON on stdin and writes the phase artifact to stdout. The
same command serves every phase unless a per-phase override is given:

  loom run feat-auth --command ./agent.sh \
    --phase-command verification='./run-tests.sh'

A feature that previously failed verification resumes from its persisted
phase; completed features are a no-op.`,
	Args: cobra.ExactArgs(1),
	RunE: runRun,
}

func runRun(cmd *cobra.Command, args []string) error {
	featureID := args[0]

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	store, err := openStore(cfg)
	if err != nil {
		return err
	}
	db, err := openRuns(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	collabs, err := buildCollaborators(runCommand, runPhaseCommands)
	if err != nil {
		return err
	}

	var rules []correlate.Rule
	if cfg.Classifier.RulesPath != "" {
		rules, err = correlate.LoadRules(cfg.Classifier.RulesPath)
		if err != nil {
			return fmt.Errorf("load classifier rules: %w", err)
		}
	}

	engine := orchestrator.New(store, db, collabs, orchestrator.Config{
		PhaseTimeout: cfg.Workflow.PhaseTimeout,
		Rules:        rules,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		printEvents(engine.Events())
	}()

	runErr := engine.Run(ctx, featureID)
	stop()
	engine.Close()
	wg.Wait()

	if runErr != nil {
		return runErr
	}

	st, err := store.ReadState(featureID)
	if err != nil {
		return err
	}
	switch st.Status {
	case models.StatusCompleted:
		printStatus("✓", fmt.Sprintf("Feature %s completed", featureID), color.FgGreen)
	case models.StatusPaused:
		printStatus("⚠", fmt.Sprintf("Feature %s paused for user review", featureID), color.FgYellow)
	case models.StatusFailed:
		printStatus("✗", fmt.Sprintf("Feature %s failed", featureID), color.FgRed)
	}
	return nil
}

// buildCollaborators maps every collaborator phase to its command.
func buildCollaborators(defaultCmd string, overrides []string) (map[models.Phase]orchestrator.Collaborator, error) {
	perPhase := map[models.Phase]string{}
	for _, o := range overrides {
		parts := strings.SplitN(o, "=", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("invalid --phase-command %q, want phase=command", o)
		}
		phase := models.Phase(parts[0])
		if !phase.Valid() {
			return nil, fmt.Errorf("unknown phase %q", parts[0])
		}
		perPhase[phase] = parts[1]
	}

	runner := exec.NewRunner()
	collabs := map[models.Phase]orchestrator.Collaborator{}
	for _, phase := range []models.Phase{
		models.PhaseSpec,
		models.PhaseDocsAudit,
		models.PhasePlanning,
		models.PhaseTestIdeation,
		models.PhaseImplementation,
		models.PhaseTestImplementation,
		models.PhaseVerification,
		models.PhaseFinalization,
	} {
		command := defaultCmd
		if c, ok := perPhase[phase]; ok {
			command = c
		}
		if command == "" {
			return nil, fmt.Errorf("no command for phase %s (set --command or --phase-command)", phase)
		}
		collabs[phase] = orchestrator.NewSubprocessCollaborator(runner, command)
	}
	return collabs, nil
}

// printEvents renders engine events as they arrive.
func printEvents(events <-chan orchestrator.Event) {
	for ev := range events {
		switch ev.Type {
		case orchestrator.EventPhaseStarted:
			fmt.Printf("→ %s\n", ev.Phase)
		case orchestrator.EventPhaseCompleted:
			color.New(color.FgGreen).Printf("✓ %s\n", ev.Phase)
		case orchestrator.EventPhaseFailed:
			color.New(color.FgRed).Printf("✗ %s: %v\n", ev.Phase, ev.Error)
		case orchestrator.EventGatePassed:
			color.New(color.FgGreen).Println("✓ coverage gate passed")
		case orchestrator.EventGateFailed:
			color.New(color.FgYellow).Printf("⚠ coverage gate failed: %s\n", ev.Message)
		case orchestrator.EventFeedbackRouted:
			color.New(color.FgYellow).Printf("↩ iteration %d: %s (re-entering %s)\n", ev.Iteration, ev.Message, ev.Phase)
		case orchestrator.EventEscalated:
			color.New(color.FgRed).Printf("⚠ escalated: %s\n", ev.Message)
		case orchestrator.EventRunRecorded:
			fmt.Printf("  recorded run %s\n", ev.Message)
		case orchestrator.EventFeatureCompleted:
			color.New(color.FgGreen).Println("✓ workflow complete")
		}
	}
}

func init() {
	runCmd.Flags().StringVar(&runCommand, "command", "", "Collaborator command for every phase")
	runCmd.Flags().StringArrayVar(&runPhaseCommands, "phase-command", nil, "Per-phase override, phase=command (repeatable)")
}
