package workspace

import "errors"

// Sentinel errors returned by the workspace store and artifact repository.
// Callers match them with errors.Is.
var (
	// ErrWorkspaceExists is returned when creating a workspace whose directory already exists.
	ErrWorkspaceExists = errors.New("workspace already exists")
	// ErrWorkspaceNotFound is returned when a workspace directory is absent.
	ErrWorkspaceNotFound = errors.New("workspace not found")
	// ErrDeletionNotConfirmed is returned when delete is called without confirmation.
	ErrDeletionNotConfirmed = errors.New("deletion not confirmed")
	// ErrArtifactNotFound is returned when a named artifact is absent.
	ErrArtifactNotFound = errors.New("artifact not found")
	// ErrInvalidArtifactContent is returned when structured content fails to parse.
	ErrInvalidArtifactContent = errors.New("invalid artifact content")
	// ErrStateNotFound is returned when a workspace has no state file.
	ErrStateNotFound = errors.New("state not found")
	// ErrStateCorrupt is returned when a state file cannot be parsed.
	ErrStateCorrupt = errors.New("state corrupt")
	// ErrInvalidFeatureID is returned when a feature id is empty or contains path separators.
	ErrInvalidFeatureID = errors.New("invalid feature id")
)
