// Package orchestrator drives a feature through the workflow phases.
//
// The orchestrator package provides functionality for:
//   - Phase execution: Invoking one collaborator per phase and persisting the
//     artifact it produces
//   - Coverage gating: Blocking verification until every acceptance criterion
//     has test coverage
//   - Feedback routing: Correlating test outcomes to checklist items and
//     routing remediation back into the implementation phases
//
// Collaborators are external processes behind the Collaborator interface.
// The engine never interprets their output beyond the artifact contracts for
// the structured phases (checklist, coverage, outcomes).
//
// Example usage:
//
//	engine := orchestrator.New(store, runs, collaborators, orchestrator.Config{})
//	err := engine.Run(ctx, "feat-auth")
package orchestrator
