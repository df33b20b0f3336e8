package state

import (
	"errors"

	"github.com/ShayCichocki/loom/pkg/models"
)

// ErrInvalidTransition is returned when an update requests a phase not
// reachable from the current one.
var ErrInvalidTransition = errors.New("invalid phase transition")

// transitions is the workflow phase graph. Phases advance linearly from
// initialization to completed, with a single cyclic back-edge from
// coverage_validation and verification into the implementation phases for the
// feedback loop.
var transitions = map[models.Phase][]models.Phase{
	models.PhaseInitialization:      {models.PhaseSpec},
	models.PhaseSpec:                {models.PhaseDocsAudit},
	models.PhaseDocsAudit:           {models.PhasePlanning},
	models.PhasePlanning:            {models.PhaseTestIdeation},
	models.PhaseTestIdeation:        {models.PhaseImplementation},
	models.PhaseImplementation:      {models.PhaseTestImplementation},
	models.PhaseTestImplementation:  {models.PhaseCoverageValidation},
	models.PhaseCoverageValidation:  {models.PhaseVerification, models.PhaseImplementation, models.PhaseTestImplementation},
	models.PhaseVerification:        {models.PhaseFinalization, models.PhaseImplementation, models.PhaseTestImplementation},
	models.PhaseFinalization:        {models.PhaseCompleted},
	models.PhaseCompleted:           {},
}

// CanTransition reports whether the phase graph allows moving from one phase
// to another.
func CanTransition(from, to models.Phase) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// NextPhases returns the phases reachable from the given phase.
func NextPhases(from models.Phase) []models.Phase {
	next := transitions[from]
	out := make([]models.Phase, len(next))
	copy(out, next)
	return out
}
