// Package state implements the feature state machine. It owns FeatureState
// exclusively: every mutation goes through Update or SetScope, which persist
// atomically via the workspace store. Out-of-graph phase transitions are
// rejected here at the boundary rather than trusted to callers.
package state

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/ShayCichocki/loom/internal/workspace"
	"github.com/ShayCichocki/loom/pkg/models"
)

// IterationLimitError is the fixed error entry appended when an iteration
// increment would exceed max_iterations.
const IterationLimitError = "iteration limit exceeded: max_iterations reached without passing verification"

// Machine mutates feature state through controlled operations.
type Machine struct {
	store *workspace.Store
}

// NewMachine creates a state machine backed by the given workspace store.
func NewMachine(store *workspace.Store) *Machine {
	return &Machine{store: store}
}

// Update describes a single state mutation. Each supplied field is applied;
// zero-valued fields are ignored.
type Update struct {
	// Phase moves the feature to a new phase. The transition must be
	// reachable in the phase graph.
	Phase *models.Phase
	// Status sets the feature status. Any status is reachable from any
	// phase (the side edge to failed/paused).
	Status *models.Status
	// IncrementIteration bumps the feedback-loop counter. If the increment
	// would exceed max_iterations the status is set to failed and a fixed
	// error entry is appended instead; the counter never passes the limit.
	IncrementIteration bool
	// AddError appends an error message to the state's error list.
	AddError string
	// MarkPhaseCompleted adds a phase to the completed set. Duplicate
	// marks are no-ops.
	MarkPhaseCompleted *models.Phase
}

// Get reads the current state for a feature.
func (m *Machine) Get(featureID string) (*models.FeatureState, error) {
	return m.store.ReadState(featureID)
}

// Apply applies an update to a state value without persisting it. It is
// exported for callers that need the pure transition logic.
func Apply(state *models.FeatureState, u Update, now time.Time) error {
	if u.Phase != nil {
		if !u.Phase.Valid() {
			return fmt.Errorf("%w: unknown phase %q", ErrInvalidTransition, *u.Phase)
		}
		if !CanTransition(state.Phase, *u.Phase) {
			return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, state.Phase, *u.Phase)
		}
		state.Phase = *u.Phase
	}

	if u.Status != nil {
		if !u.Status.Valid() {
			return fmt.Errorf("invalid status %q", *u.Status)
		}
		state.Status = *u.Status
	}

	if u.IncrementIteration {
		if state.Iteration+1 > state.MaxIterations {
			state.Status = models.StatusFailed
			state.Errors = append(state.Errors, IterationLimitError)
		} else {
			state.Iteration++
		}
	}

	if u.AddError != "" {
		state.Errors = append(state.Errors, u.AddError)
	}

	if u.MarkPhaseCompleted != nil {
		state.MarkPhaseCompleted(*u.MarkPhaseCompleted)
	}

	state.UpdatedAt = now
	return nil
}

// Update applies the given mutation and persists the result atomically.
// It returns the updated state.
func (m *Machine) Update(featureID string, u Update) (*models.FeatureState, error) {
	state, err := m.store.ReadState(featureID)
	if err != nil {
		return nil, err
	}

	if err := Apply(state, u, time.Now().UTC()); err != nil {
		return nil, err
	}

	if err := m.store.WriteState(featureID, state); err != nil {
		return nil, err
	}
	return state, nil
}

// SetScope replaces the feature's scope. The state file is updated
// atomically; the scope artifact is refreshed as a second, independent
// atomic write for collaborators that read it directly.
func (m *Machine) SetScope(featureID string, scope models.Scope) (*models.FeatureState, error) {
	state, err := m.store.ReadState(featureID)
	if err != nil {
		return nil, err
	}

	state.Scope = scope
	state.UpdatedAt = time.Now().UTC()

	if err := m.store.WriteState(featureID, state); err != nil {
		return nil, err
	}

	scopeJSON, err := json.MarshalIndent(scope, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal scope: %w", err)
	}
	if _, err := m.store.SaveArtifact(featureID, "scope", scopeJSON, workspace.TypeStructured); err != nil {
		return nil, err
	}

	return state, nil
}
