// Package models defines the shared domain types for the loom workflow engine.
package models

// Phase represents a stage in the feature-development workflow.
type Phase string

const (
	// PhaseInitialization is the phase a feature starts in when its workspace is created.
	PhaseInitialization Phase = "initialization"
	// PhaseSpec is the specification-drafting phase.
	PhaseSpec Phase = "spec"
	// PhaseDocsAudit is the documentation search and enrichment phase.
	PhaseDocsAudit Phase = "docs_audit"
	// PhasePlanning is the implementation-planning phase.
	PhasePlanning Phase = "planning"
	// PhaseTestIdeation is the test-design phase.
	PhaseTestIdeation Phase = "test_ideation"
	// PhaseImplementation is the code-implementation phase.
	PhaseImplementation Phase = "implementation"
	// PhaseTestImplementation is the test-writing phase.
	PhaseTestImplementation Phase = "test_implementation"
	// PhaseCoverageValidation is the phase where test coverage is checked against the checklist.
	PhaseCoverageValidation Phase = "coverage_validation"
	// PhaseVerification is the phase where tests are executed and correlated.
	PhaseVerification Phase = "verification"
	// PhaseFinalization is the report-writing phase.
	PhaseFinalization Phase = "finalization"
	// PhaseCompleted is the terminal phase of a finished feature.
	PhaseCompleted Phase = "completed"
)

// Valid returns true if the phase is a known value.
func (p Phase) Valid() bool {
	switch p {
	case PhaseInitialization, PhaseSpec, PhaseDocsAudit, PhasePlanning,
		PhaseTestIdeation, PhaseImplementation, PhaseTestImplementation,
		PhaseCoverageValidation, PhaseVerification, PhaseFinalization,
		PhaseCompleted:
		return true
	default:
		return false
	}
}

// Status represents the overall state of a feature.
type Status string

const (
	// StatusPending indicates the feature has not started.
	StatusPending Status = "pending"
	// StatusInProgress indicates the feature is being worked on.
	StatusInProgress Status = "in_progress"
	// StatusCompleted indicates the feature finished successfully.
	StatusCompleted Status = "completed"
	// StatusFailed indicates the feature failed and will not be retried.
	StatusFailed Status = "failed"
	// StatusPaused indicates the feature is waiting on user input.
	StatusPaused Status = "paused"
)

// Valid returns true if the status is a known value.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusCompleted, StatusFailed, StatusPaused:
		return true
	default:
		return false
	}
}

// Terminal returns true if no further work happens in this status.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}
