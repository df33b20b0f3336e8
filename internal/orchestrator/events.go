package orchestrator

import (
	"time"

	"github.com/ShayCichocki/loom/pkg/models"
)

// EventType represents the type of engine event.
type EventType string

const (
	// EventPhaseStarted indicates a phase has started execution.
	EventPhaseStarted EventType = "phase_started"
	// EventPhaseCompleted indicates a phase completed successfully.
	EventPhaseCompleted EventType = "phase_completed"
	// EventPhaseFailed indicates a phase failed.
	EventPhaseFailed EventType = "phase_failed"
	// EventGatePassed indicates the coverage gate allowed verification.
	EventGatePassed EventType = "gate_passed"
	// EventGateFailed indicates the coverage gate blocked verification.
	EventGateFailed EventType = "gate_failed"
	// EventRunRecorded indicates a test run was persisted to run history.
	EventRunRecorded EventType = "run_recorded"
	// EventFeedbackRouted indicates remediation work was routed back into
	// an implementation phase.
	EventFeedbackRouted EventType = "feedback_routed"
	// EventEscalated indicates the feature was handed to the user.
	EventEscalated EventType = "escalated"
	// EventFeatureCompleted indicates the feature finished the workflow.
	EventFeatureCompleted EventType = "feature_completed"
)

// Event represents an event emitted by the engine.
// These events are used to update the watch view and track progress.
type Event struct {
	// Type is the kind of event.
	Type EventType
	// FeatureID is the feature the event belongs to.
	FeatureID string
	// Phase is the workflow phase the event relates to, if applicable.
	Phase models.Phase
	// Iteration is the feedback-loop counter at the time of the event.
	Iteration int
	// Message provides additional context about the event.
	Message string
	// Error contains error details for failure events.
	Error error
	// Timestamp is when the event occurred.
	Timestamp time.Time
}
