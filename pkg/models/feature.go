package models

import "time"

// ScopeMode selects which implementation areas a feature touches.
type ScopeMode string

const (
	// ScopeFull covers backend and frontend work.
	ScopeFull ScopeMode = "full"
	// ScopeFrontendOnly restricts the feature to frontend work.
	ScopeFrontendOnly ScopeMode = "frontend_only"
)

// Valid returns true if the mode is a known value.
func (m ScopeMode) Valid() bool {
	return m == ScopeFull || m == ScopeFrontendOnly
}

// Scope describes which implementation areas a feature covers.
type Scope struct {
	// Mode is the scope mode.
	Mode ScopeMode `json:"mode"`
	// SkipBackend is derived from Mode and persisted for collaborators.
	SkipBackend bool `json:"skip_backend"`
	// Notes holds optional free-form scope notes.
	Notes string `json:"notes,omitempty"`
}

// NewScope builds a scope for the given mode with SkipBackend derived.
func NewScope(mode ScopeMode) Scope {
	return Scope{
		Mode:        mode,
		SkipBackend: mode == ScopeFrontendOnly,
	}
}

// FeatureState tracks a feature's progress through the workflow.
// It is owned by the state machine and mutated only through its operations.
type FeatureState struct {
	// FeatureID is the unique identifier of the feature.
	FeatureID string `json:"feature_id"`
	// Phase is the current workflow phase.
	Phase Phase `json:"phase"`
	// Status is the overall feature status.
	Status Status `json:"status"`
	// Scope describes which implementation areas the feature covers.
	Scope Scope `json:"scope"`
	// Iteration counts feedback-loop passes. It only increases.
	Iteration int `json:"iteration"`
	// MaxIterations bounds the feedback loop.
	MaxIterations int `json:"max_iterations"`
	// PhasesCompleted is the grow-only set of finished phases.
	PhasesCompleted []string `json:"phases_completed"`
	// Errors accumulates error messages in the order they occurred.
	Errors []string `json:"errors"`
	// UpdatedAt is refreshed on every state mutation.
	UpdatedAt time.Time `json:"updated_at"`
}

// HasCompleted reports whether the given phase has been marked completed.
func (s *FeatureState) HasCompleted(phase Phase) bool {
	for _, p := range s.PhasesCompleted {
		if p == string(phase) {
			return true
		}
	}
	return false
}

// MarkPhaseCompleted adds the phase to the completed set.
// Duplicate marks are no-ops.
func (s *FeatureState) MarkPhaseCompleted(phase Phase) {
	if s.HasCompleted(phase) {
		return
	}
	s.PhasesCompleted = append(s.PhasesCompleted, string(phase))
}

// Workspace holds the metadata of a per-feature directory.
type Workspace struct {
	// FeatureID is the unique identifier of the feature.
	FeatureID string `json:"feature_id"`
	// Title is the optional human-readable feature title.
	Title string `json:"title,omitempty"`
	// CreatedAt is when the workspace was created.
	CreatedAt time.Time `json:"created_at"`
	// RootPath is the absolute path of the workspace directory.
	RootPath string `json:"root_path"`
}
