// Package workspace provides the per-feature directory store and the typed
// artifact repository for loom. Each feature owns one directory under the
// store root; all state and artifacts for that feature live inside it, and
// nothing is shared across feature ids.
package workspace

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/ShayCichocki/loom/pkg/models"
)

const (
	// metaFile holds the workspace metadata inside each feature directory.
	metaFile = "workspace.json"
	// stateFile holds the feature state inside each feature directory.
	stateFile = "state.json"

	dirPerm  = 0755
	filePerm = 0644
)

// DefaultRoot returns the workspace root for a project directory.
func DefaultRoot(projectRoot string) string {
	return filepath.Join(projectRoot, ".loom", "features")
}

// Store owns the lifecycle of per-feature workspace directories.
// It assumes at most one active writer per feature id; concurrent writers on
// the same feature are the caller's responsibility to prevent.
type Store struct {
	root string
}

// NewStore creates a store rooted at the given directory.
// The directory is created on first use.
func NewStore(root string) *Store {
	return &Store{root: root}
}

// Root returns the store's root directory.
func (s *Store) Root() string {
	return s.root
}

// Dir returns the workspace directory for a feature id.
func (s *Store) Dir(featureID string) string {
	return filepath.Join(s.root, featureID)
}

// validateFeatureID rejects empty ids and ids that would escape the root.
func validateFeatureID(id string) error {
	if id == "" {
		return fmt.Errorf("%w: empty", ErrInvalidFeatureID)
	}
	if strings.ContainsAny(id, "/\\") || id == "." || id == ".." {
		return fmt.Errorf("%w: %q", ErrInvalidFeatureID, id)
	}
	return nil
}

// Entry pairs a workspace with its current state.
type Entry struct {
	Workspace models.Workspace
	State     *models.FeatureState
}

// Info is the full view of a workspace returned by Get.
type Info struct {
	Workspace models.Workspace
	State     *models.FeatureState
	Artifacts []ArtifactInfo
}

// Create creates the workspace directory for a feature along with its initial
// state. It fails with ErrWorkspaceExists if the directory already exists.
// On any later failure the directory is removed so a workspace never
// partially exists.
func (s *Store) Create(featureID, title string, scope models.Scope, maxIterations int) (*models.Workspace, error) {
	if err := validateFeatureID(featureID); err != nil {
		return nil, err
	}

	dir := s.Dir(featureID)
	if _, err := os.Stat(dir); err == nil {
		return nil, fmt.Errorf("%w: %s", ErrWorkspaceExists, featureID)
	}

	if err := os.MkdirAll(dir, dirPerm); err != nil {
		return nil, fmt.Errorf("create workspace directory: %w", err)
	}

	ws := &models.Workspace{
		FeatureID: featureID,
		Title:     title,
		CreatedAt: time.Now().UTC(),
		RootPath:  dir,
	}

	state := &models.FeatureState{
		FeatureID:       featureID,
		Phase:           models.PhaseInitialization,
		Status:          models.StatusInProgress,
		Scope:           scope,
		Iteration:       0,
		MaxIterations:   maxIterations,
		PhasesCompleted: []string{},
		Errors:          []string{},
		UpdatedAt:       time.Now().UTC(),
	}

	if err := s.writeJSON(filepath.Join(dir, metaFile), ws); err != nil {
		os.RemoveAll(dir)
		return nil, fmt.Errorf("write workspace metadata: %w", err)
	}
	if err := s.WriteState(featureID, state); err != nil {
		os.RemoveAll(dir)
		return nil, err
	}

	scopeJSON, err := json.MarshalIndent(scope, "", "  ")
	if err != nil {
		os.RemoveAll(dir)
		return nil, fmt.Errorf("marshal scope: %w", err)
	}
	if _, err := s.SaveArtifact(featureID, "scope", scopeJSON, TypeStructured); err != nil {
		os.RemoveAll(dir)
		return nil, err
	}

	return ws, nil
}

// Get returns the workspace metadata, its current state, and an artifact
// listing. It fails with ErrWorkspaceNotFound if the workspace is absent.
func (s *Store) Get(featureID string) (*Info, error) {
	if err := validateFeatureID(featureID); err != nil {
		return nil, err
	}

	dir := s.Dir(featureID)
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return nil, fmt.Errorf("%w: %s", ErrWorkspaceNotFound, featureID)
	}

	var ws models.Workspace
	if err := readJSON(filepath.Join(dir, metaFile), &ws); err != nil {
		return nil, fmt.Errorf("read workspace metadata: %w", err)
	}

	state, err := s.ReadState(featureID)
	if err != nil {
		return nil, err
	}

	artifacts, err := s.ListArtifacts(featureID)
	if err != nil {
		return nil, err
	}

	return &Info{Workspace: ws, State: state, Artifacts: artifacts}, nil
}

// List enumerates workspaces, newest state first. Workspaces whose state
// cannot be read or parsed are silently excluded; a corrupt neighbor must not
// fail the whole listing. An optional status filter narrows the result.
func (s *Store) List(statusFilter *models.Status) ([]Entry, error) {
	dirents, err := os.ReadDir(s.root)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read workspace root: %w", err)
	}

	var entries []Entry
	for _, de := range dirents {
		if !de.IsDir() {
			continue
		}

		state, err := s.ReadState(de.Name())
		if err != nil {
			// Corrupt or missing state: treat the workspace as absent.
			continue
		}
		if statusFilter != nil && state.Status != *statusFilter {
			continue
		}

		var ws models.Workspace
		if err := readJSON(filepath.Join(s.Dir(de.Name()), metaFile), &ws); err != nil {
			continue
		}

		entries = append(entries, Entry{Workspace: ws, State: state})
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].State.UpdatedAt.After(entries[j].State.UpdatedAt)
	})

	return entries, nil
}

// Delete removes the entire workspace subtree. The operation is irreversible
// and requires explicit confirmation.
func (s *Store) Delete(featureID string, confirm bool) error {
	if err := validateFeatureID(featureID); err != nil {
		return err
	}
	if !confirm {
		return fmt.Errorf("%w: refusing to delete %s", ErrDeletionNotConfirmed, featureID)
	}

	dir := s.Dir(featureID)
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return fmt.Errorf("%w: %s", ErrWorkspaceNotFound, featureID)
	}

	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("delete workspace: %w", err)
	}
	return nil
}

// ReadState loads the feature state for a workspace. It returns
// ErrStateNotFound if the state file is absent and ErrStateCorrupt if it
// cannot be parsed.
func (s *Store) ReadState(featureID string) (*models.FeatureState, error) {
	if err := validateFeatureID(featureID); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(filepath.Join(s.Dir(featureID), stateFile))
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("%w: %s", ErrStateNotFound, featureID)
	}
	if err != nil {
		return nil, fmt.Errorf("read state file: %w", err)
	}

	var state models.FeatureState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrStateCorrupt, featureID, err)
	}
	return &state, nil
}

// WriteState persists the feature state atomically.
func (s *Store) WriteState(featureID string, state *models.FeatureState) error {
	if err := validateFeatureID(featureID); err != nil {
		return err
	}
	return s.writeJSON(filepath.Join(s.Dir(featureID), stateFile), state)
}

// writeJSON marshals v with indentation and writes it atomically.
func (s *Store) writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal %s: %w", filepath.Base(path), err)
	}
	return writeFileAtomic(path, data, filePerm)
}

// readJSON reads and unmarshals a JSON file.
func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}
