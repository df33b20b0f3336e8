package orchestrator

import (
	"context"

	"github.com/ShayCichocki/loom/internal/router"
	"github.com/ShayCichocki/loom/pkg/models"
)

// Request is the input handed to a collaborator for one phase execution.
type Request struct {
	// FeatureID is the feature being worked on.
	FeatureID string `json:"feature_id"`
	// Phase is the workflow phase the collaborator is executing.
	Phase models.Phase `json:"phase"`
	// WorkspaceDir is the feature's workspace directory. Collaborators read
	// prior artifacts from here directly.
	WorkspaceDir string `json:"workspace_dir"`
	// Scope describes which implementation areas the feature covers.
	Scope models.Scope `json:"scope"`
	// Iteration is the current feedback-loop counter.
	Iteration int `json:"iteration"`
	// Feedback holds the routing decisions from the previous failed
	// verification pass, if any. Advisory only.
	Feedback []router.Decision `json:"feedback,omitempty"`
}

// Collaborator executes one workflow phase and returns the artifact content
// for that phase. Run blocks until the collaborator finishes or ctx is
// cancelled; phase budgets are enforced by the caller through ctx.
type Collaborator interface {
	Run(ctx context.Context, req Request) ([]byte, error)
}

// CollaboratorFunc adapts a function to the Collaborator interface.
type CollaboratorFunc func(ctx context.Context, req Request) ([]byte, error)

// Run implements Collaborator.
func (f CollaboratorFunc) Run(ctx context.Context, req Request) ([]byte, error) {
	return f(ctx, req)
}
