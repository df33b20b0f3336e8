package orchestrator

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ShayCichocki/loom/internal/correlate"
	"github.com/ShayCichocki/loom/internal/gate"
	"github.com/ShayCichocki/loom/internal/router"
	"github.com/ShayCichocki/loom/internal/runstore"
	"github.com/ShayCichocki/loom/internal/state"
	"github.com/ShayCichocki/loom/internal/workspace"
	"github.com/ShayCichocki/loom/pkg/models"
)

const (
	defaultPhaseTimeout = 30 * time.Minute
	defaultEventBuffer  = 64
)

// Artifact names owned by the engine, one per producing phase.
const (
	ArtifactSpec         = "spec"
	ArtifactDocsAudit    = "docs_audit"
	ArtifactPlan         = "plan"
	ArtifactChecklist    = "checklist"
	ArtifactImplNotes    = "implementation_notes"
	ArtifactCoverage     = "coverage"
	ArtifactOutcomes     = "outcomes"
	ArtifactSummary      = "summary"
	ArtifactGateResult   = "gate_result"
	ArtifactVerification = "verification_report"
	ArtifactRouting      = "routing"
)

// phaseArtifact is the artifact contract for a collaborator phase.
type phaseArtifact struct {
	name string
	typ  workspace.ArtifactType
}

// phaseArtifacts maps each collaborator phase to the artifact it produces.
var phaseArtifacts = map[models.Phase]phaseArtifact{
	models.PhaseSpec:               {ArtifactSpec, workspace.TypeDocument},
	models.PhaseDocsAudit:          {ArtifactDocsAudit, workspace.TypeDocument},
	models.PhasePlanning:           {ArtifactPlan, workspace.TypeDocument},
	models.PhaseTestIdeation:       {ArtifactChecklist, workspace.TypeStructured},
	models.PhaseImplementation:     {ArtifactImplNotes, workspace.TypeDocument},
	models.PhaseTestImplementation: {ArtifactCoverage, workspace.TypeStructured},
	models.PhaseVerification:       {ArtifactOutcomes, workspace.TypeStructured},
	models.PhaseFinalization:       {ArtifactSummary, workspace.TypeDocument},
}

// forwardNext is the linear successor of each collaborator phase. The
// engine's control phases (coverage_validation, verification) pick their own
// successors.
var forwardNext = map[models.Phase]models.Phase{
	models.PhaseSpec:               models.PhaseDocsAudit,
	models.PhaseDocsAudit:          models.PhasePlanning,
	models.PhasePlanning:           models.PhaseTestIdeation,
	models.PhaseTestIdeation:       models.PhaseImplementation,
	models.PhaseImplementation:     models.PhaseTestImplementation,
	models.PhaseTestImplementation: models.PhaseCoverageValidation,
	models.PhaseFinalization:       models.PhaseCompleted,
}

// Config holds engine settings.
type Config struct {
	// PhaseTimeout is the wall-clock budget per collaborator invocation.
	// Zero means the default of 30 minutes.
	PhaseTimeout time.Duration
	// EventBuffer is the event channel capacity. Zero means the default.
	EventBuffer int
	// Rules overrides the default failure-classification rule table.
	Rules []correlate.Rule
}

// Engine drives features through the workflow.
type Engine struct {
	store        *workspace.Store
	machine      *state.Machine
	runs         *runstore.DB
	collabs      map[models.Phase]Collaborator
	correlator   *correlate.Correlator
	emitter      *EventEmitter
	phaseTimeout time.Duration
}

// New creates an engine. The collaborators map must hold one entry per
// collaborator phase the workflow will reach; a missing entry fails the run
// when that phase is entered. The runs store may be nil to disable run
// history recording.
func New(store *workspace.Store, runs *runstore.DB, collaborators map[models.Phase]Collaborator, cfg Config) *Engine {
	if cfg.PhaseTimeout <= 0 {
		cfg.PhaseTimeout = defaultPhaseTimeout
	}
	if cfg.EventBuffer <= 0 {
		cfg.EventBuffer = defaultEventBuffer
	}

	correlator := correlate.New()
	if len(cfg.Rules) > 0 {
		correlator = correlate.NewWithRules(cfg.Rules)
	}

	return &Engine{
		store:        store,
		machine:      state.NewMachine(store),
		runs:         runs,
		collabs:      collaborators,
		correlator:   correlator,
		emitter:      NewEventEmitter(cfg.EventBuffer),
		phaseTimeout: cfg.PhaseTimeout,
	}
}

// Events returns the engine's event stream.
func (e *Engine) Events() <-chan Event {
	return e.emitter.Events()
}

// Close closes the event stream. Call it once, after the last Run returns.
func (e *Engine) Close() {
	e.emitter.Close()
}

// Run drives the feature from its current phase until it completes, fails,
// pauses, or ctx is cancelled. Resuming a feature mid-workflow is the same
// call: the loop picks up from the persisted phase.
func (e *Engine) Run(ctx context.Context, featureID string) error {
	var feedback []router.Decision

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		st, err := e.machine.Get(featureID)
		if err != nil {
			return err
		}
		if st.Status != models.StatusInProgress {
			return nil
		}

		switch st.Phase {
		case models.PhaseInitialization:
			spec := models.PhaseSpec
			_, err = e.machine.Update(featureID, state.Update{
				Phase:              &spec,
				MarkPhaseCompleted: &st.Phase,
			})

		case models.PhaseCoverageValidation:
			feedback, err = e.validateCoverage(featureID, st)

		case models.PhaseVerification:
			feedback, err = e.verify(ctx, featureID, st, feedback)

		case models.PhaseCompleted:
			return nil

		default:
			err = e.runCollaboratorPhase(ctx, featureID, st, feedback)
		}

		if err != nil {
			return err
		}
	}
}

// emit sends an event with the timestamp filled in.
func (e *Engine) emit(ev Event) {
	ev.Timestamp = time.Now()
	e.emitter.Emit(ev)
}

// failPhase records a phase failure in state and emits the failure event.
func (e *Engine) failPhase(featureID string, phase models.Phase, iteration int, cause error) error {
	failed := models.StatusFailed
	if _, uerr := e.machine.Update(featureID, state.Update{
		Status:   &failed,
		AddError: fmt.Sprintf("phase %s: %v", phase, cause),
	}); uerr != nil {
		return fmt.Errorf("record phase failure: %v (original: %w)", uerr, cause)
	}

	e.emit(Event{
		Type:      EventPhaseFailed,
		FeatureID: featureID,
		Phase:     phase,
		Iteration: iteration,
		Error:     cause,
	})
	return fmt.Errorf("phase %s: %w", phase, cause)
}

// runCollaboratorPhase invokes the phase's collaborator under the phase
// budget, stores the artifact it returns, and advances to the next phase.
func (e *Engine) runCollaboratorPhase(ctx context.Context, featureID string, st *models.FeatureState, feedback []router.Decision) error {
	collab, ok := e.collabs[st.Phase]
	if !ok {
		return e.failPhase(featureID, st.Phase, st.Iteration, fmt.Errorf("no collaborator configured"))
	}
	spec, ok := phaseArtifacts[st.Phase]
	if !ok {
		return e.failPhase(featureID, st.Phase, st.Iteration, fmt.Errorf("no artifact contract"))
	}

	e.emit(Event{
		Type:      EventPhaseStarted,
		FeatureID: featureID,
		Phase:     st.Phase,
		Iteration: st.Iteration,
	})

	pctx, cancel := context.WithTimeout(ctx, e.phaseTimeout)
	content, err := collab.Run(pctx, Request{
		FeatureID:    featureID,
		Phase:        st.Phase,
		WorkspaceDir: e.store.Dir(featureID),
		Scope:        st.Scope,
		Iteration:    st.Iteration,
		Feedback:     feedback,
	})
	cancel()
	if err != nil {
		return e.failPhase(featureID, st.Phase, st.Iteration, err)
	}

	if _, err := e.store.SaveArtifact(featureID, spec.name, content, spec.typ); err != nil {
		return e.failPhase(featureID, st.Phase, st.Iteration, err)
	}

	next := forwardNext[st.Phase]
	if st.Phase == models.PhaseTestImplementation {
		// Re-entry after feedback skips the gate's forward edge check;
		// the graph allows test_implementation -> coverage_validation
		// unconditionally.
		next = models.PhaseCoverageValidation
	}

	update := state.Update{Phase: &next, MarkPhaseCompleted: &st.Phase}
	if next == models.PhaseCompleted {
		completed := models.StatusCompleted
		update.Status = &completed
	}
	if _, err := e.machine.Update(featureID, update); err != nil {
		return err
	}

	e.emit(Event{
		Type:      EventPhaseCompleted,
		FeatureID: featureID,
		Phase:     st.Phase,
		Iteration: st.Iteration,
	})
	if next == models.PhaseCompleted {
		e.emit(Event{
			Type:      EventFeatureCompleted,
			FeatureID: featureID,
			Phase:     next,
			Iteration: st.Iteration,
		})
	}
	return nil
}

// validateCoverage runs the coverage gate over the checklist and coverage
// artifacts. On pass the feature advances to verification; on fail the
// feedback loop sends the missing items back to test implementation.
func (e *Engine) validateCoverage(featureID string, st *models.FeatureState) ([]router.Decision, error) {
	checklist, err := e.loadChecklist(featureID, st.Scope)
	if err != nil {
		return nil, e.failPhase(featureID, st.Phase, st.Iteration, err)
	}

	var record models.CoverageRecord
	if err := e.loadStructured(featureID, ArtifactCoverage, &record); err != nil {
		return nil, e.failPhase(featureID, st.Phase, st.Iteration, err)
	}

	result, err := gate.Evaluate(checklist, &record)
	if err != nil {
		return nil, e.failPhase(featureID, st.Phase, st.Iteration, err)
	}
	if err := e.saveStructured(featureID, ArtifactGateResult, result); err != nil {
		return nil, e.failPhase(featureID, st.Phase, st.Iteration, err)
	}

	if result.Status == gate.StatusPass {
		e.emit(Event{
			Type:      EventGatePassed,
			FeatureID: featureID,
			Phase:     st.Phase,
			Iteration: st.Iteration,
		})
		verification := models.PhaseVerification
		_, err := e.machine.Update(featureID, state.Update{
			Phase:              &verification,
			MarkPhaseCompleted: &st.Phase,
		})
		return nil, err
	}

	e.emit(Event{
		Type:      EventGateFailed,
		FeatureID: featureID,
		Phase:     st.Phase,
		Iteration: st.Iteration,
		Message:   result.Reason,
	})

	// Gate failures mean missing tests, so everything routes to the
	// test-authoring collaborator.
	var decisions []router.Decision
	for _, id := range append(result.Missing, result.MissingE2E...) {
		decisions = append(decisions, router.Decide(id, models.FailureUnknown, st.Iteration, st.MaxIterations))
	}

	return e.routeFeedback(featureID, st, decisions, models.PhaseTestImplementation, result.Reason)
}

// verify executes the feature's tests through the verification collaborator,
// records the run, correlates outcomes against the checklist, and either
// advances to finalization or routes remediation work.
func (e *Engine) verify(ctx context.Context, featureID string, st *models.FeatureState, feedback []router.Decision) ([]router.Decision, error) {
	collab, ok := e.collabs[st.Phase]
	if !ok {
		return nil, e.failPhase(featureID, st.Phase, st.Iteration, fmt.Errorf("no collaborator configured"))
	}

	e.emit(Event{
		Type:      EventPhaseStarted,
		FeatureID: featureID,
		Phase:     st.Phase,
		Iteration: st.Iteration,
	})

	startedAt := time.Now().UTC()
	pctx, cancel := context.WithTimeout(ctx, e.phaseTimeout)
	content, err := collab.Run(pctx, Request{
		FeatureID:    featureID,
		Phase:        st.Phase,
		WorkspaceDir: e.store.Dir(featureID),
		Scope:        st.Scope,
		Iteration:    st.Iteration,
		Feedback:     feedback,
	})
	cancel()
	if err != nil {
		return nil, e.failPhase(featureID, st.Phase, st.Iteration, err)
	}

	var outcomes []models.TestOutcome
	if err := json.Unmarshal(content, &outcomes); err != nil {
		return nil, e.failPhase(featureID, st.Phase, st.Iteration, fmt.Errorf("parse outcomes: %w", err))
	}
	if _, err := e.store.SaveArtifact(featureID, ArtifactOutcomes, content, workspace.TypeStructured); err != nil {
		return nil, e.failPhase(featureID, st.Phase, st.Iteration, err)
	}

	if err := e.recordRun(featureID, startedAt, outcomes); err != nil {
		return nil, e.failPhase(featureID, st.Phase, st.Iteration, err)
	}

	checklist, err := e.loadChecklist(featureID, st.Scope)
	if err != nil {
		return nil, e.failPhase(featureID, st.Phase, st.Iteration, err)
	}

	report, err := e.correlator.Correlate(checklist, outcomes)
	if err != nil {
		return nil, e.failPhase(featureID, st.Phase, st.Iteration, err)
	}
	if err := e.saveStructured(featureID, ArtifactVerification, report); err != nil {
		return nil, e.failPhase(featureID, st.Phase, st.Iteration, err)
	}

	// Remediation covers failed items and items whose tests never ran.
	type remediation struct {
		itemID   string
		category models.FailureCategory
	}
	var pending []remediation
	for _, item := range report.Items {
		switch item.Status {
		case models.ItemFailed:
			pending = append(pending, remediation{item.ID, item.DominantCategory()})
		case models.ItemNotTested:
			pending = append(pending, remediation{item.ID, models.FailureUnknown})
		}
	}

	if len(pending) == 0 {
		e.emit(Event{
			Type:      EventPhaseCompleted,
			FeatureID: featureID,
			Phase:     st.Phase,
			Iteration: st.Iteration,
		})
		finalization := models.PhaseFinalization
		_, err := e.machine.Update(featureID, state.Update{
			Phase:              &finalization,
			MarkPhaseCompleted: &st.Phase,
		})
		return nil, err
	}

	var decisions []router.Decision
	for _, p := range pending {
		decisions = append(decisions, router.Decide(p.itemID, p.category, st.Iteration, st.MaxIterations))
	}

	// Implementation failures outrank test-authoring fixes when choosing
	// which phase to re-enter.
	target := models.PhaseTestImplementation
	for _, d := range decisions {
		if d.Route == router.RouteFrontend || d.Route == router.RouteBackend || d.Route == router.RouteInfra {
			target = models.PhaseImplementation
			break
		}
	}

	return e.routeFeedback(featureID, st, decisions, target,
		fmt.Sprintf("%d item(s) need remediation", len(pending)))
}

// routeFeedback spends one iteration and re-enters the target phase with the
// given routing decisions. If the budget is exhausted the state machine marks
// the feature failed; if any decision escalates, the feature pauses for the
// user instead of re-entering.
func (e *Engine) routeFeedback(featureID string, st *models.FeatureState, decisions []router.Decision, target models.Phase, reason string) ([]router.Decision, error) {
	if err := e.saveStructured(featureID, ArtifactRouting, decisions); err != nil {
		return nil, e.failPhase(featureID, st.Phase, st.Iteration, err)
	}

	// A spent budget escalates before another iteration is charged.
	for _, d := range decisions {
		if d.Route == router.RouteUserEscalation {
			paused := models.StatusPaused
			if _, err := e.machine.Update(featureID, state.Update{
				Status:   &paused,
				AddError: d.Reason,
			}); err != nil {
				return nil, err
			}
			e.emit(Event{
				Type:      EventEscalated,
				FeatureID: featureID,
				Phase:     st.Phase,
				Iteration: st.Iteration,
				Message:   d.Reason,
			})
			return nil, nil
		}
	}

	updated, err := e.machine.Update(featureID, state.Update{IncrementIteration: true})
	if err != nil {
		return nil, err
	}
	if updated.Status == models.StatusFailed {
		e.emit(Event{
			Type:      EventEscalated,
			FeatureID: featureID,
			Phase:     st.Phase,
			Iteration: updated.Iteration,
			Message:   state.IterationLimitError,
		})
		return nil, nil
	}

	if _, err := e.machine.Update(featureID, state.Update{Phase: &target}); err != nil {
		return nil, err
	}

	e.emit(Event{
		Type:      EventFeedbackRouted,
		FeatureID: featureID,
		Phase:     target,
		Iteration: updated.Iteration,
		Message:   reason,
	})
	return decisions, nil
}

// recordRun persists one finished test run to run history.
func (e *Engine) recordRun(featureID string, startedAt time.Time, outcomes []models.TestOutcome) error {
	if e.runs == nil {
		return nil
	}

	run := &models.TestRun{
		ID:        uuid.NewString(),
		FeatureID: featureID,
		StartedAt: startedAt,
	}
	if err := e.runs.CreateRun(run); err != nil {
		return err
	}
	if err := e.runs.FinishRun(run.ID, time.Now().UTC(), outcomes); err != nil {
		return err
	}

	e.emit(Event{
		Type:      EventRunRecorded,
		FeatureID: featureID,
		Phase:     models.PhaseVerification,
		Message:   run.ID,
	})
	return nil
}

// loadChecklist reads the checklist artifact and applies the feature scope.
// Backend items are dropped for frontend-only features.
func (e *Engine) loadChecklist(featureID string, scope models.Scope) (*models.Checklist, error) {
	var checklist models.Checklist
	if err := e.loadStructured(featureID, ArtifactChecklist, &checklist); err != nil {
		return nil, err
	}

	if !scope.SkipBackend {
		return &checklist, nil
	}

	filtered := &models.Checklist{}
	for _, item := range checklist.Items {
		if item.Area == "backend" {
			continue
		}
		filtered.Items = append(filtered.Items, item)
	}
	return filtered, nil
}

// loadStructured reads a structured artifact into v.
func (e *Engine) loadStructured(featureID, name string, v any) error {
	content, _, err := e.store.GetArtifact(featureID, name)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(content, v); err != nil {
		return fmt.Errorf("parse artifact %q: %w", name, err)
	}
	return nil
}

// saveStructured writes v as a structured artifact.
func (e *Engine) saveStructured(featureID, name string, v any) error {
	content, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal artifact %q: %w", name, err)
	}
	_, err = e.store.SaveArtifact(featureID, name, content, workspace.TypeStructured)
	return err
}
