package workspace

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ShayCichocki/loom/pkg/models"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	return NewStore(filepath.Join(t.TempDir(), "features"))
}

func TestStore_CreateAndGet(t *testing.T) {
	store := newTestStore(t)

	ws, err := store.Create("feat-x-20250101000000", "Checkout flow", models.NewScope(models.ScopeFrontendOnly), 5)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if ws.FeatureID != "feat-x-20250101000000" {
		t.Errorf("FeatureID = %q", ws.FeatureID)
	}

	info, err := store.Get("feat-x-20250101000000")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if info.State.Phase != models.PhaseInitialization {
		t.Errorf("initial phase = %q, want %q", info.State.Phase, models.PhaseInitialization)
	}
	if info.State.Status != models.StatusInProgress {
		t.Errorf("initial status = %q, want %q", info.State.Status, models.StatusInProgress)
	}
	if info.State.Iteration != 0 {
		t.Errorf("initial iteration = %d, want 0", info.State.Iteration)
	}
	if len(info.State.Errors) != 0 {
		t.Errorf("initial errors = %v, want empty", info.State.Errors)
	}
	if info.State.Scope.Mode != models.ScopeFrontendOnly || !info.State.Scope.SkipBackend {
		t.Errorf("scope = %+v, want frontend_only with skip_backend", info.State.Scope)
	}
}

func TestStore_CreateDuplicate(t *testing.T) {
	store := newTestStore(t)

	if _, err := store.Create("feat-a", "", models.NewScope(models.ScopeFull), 5); err != nil {
		t.Fatalf("first Create() error = %v", err)
	}

	_, err := store.Create("feat-a", "", models.NewScope(models.ScopeFull), 5)
	if !errors.Is(err, ErrWorkspaceExists) {
		t.Fatalf("second Create() error = %v, want ErrWorkspaceExists", err)
	}

	// First workspace must be unaffected.
	info, err := store.Get("feat-a")
	if err != nil {
		t.Fatalf("Get() after duplicate create error = %v", err)
	}
	if info.State.Phase != models.PhaseInitialization {
		t.Errorf("state damaged by duplicate create: phase = %q", info.State.Phase)
	}
}

func TestStore_CreateInvalidID(t *testing.T) {
	store := newTestStore(t)

	tests := []string{"", "a/b", `a\b`, ".", ".."}
	for _, id := range tests {
		t.Run(id, func(t *testing.T) {
			if _, err := store.Create(id, "", models.NewScope(models.ScopeFull), 5); !errors.Is(err, ErrInvalidFeatureID) {
				t.Errorf("Create(%q) error = %v, want ErrInvalidFeatureID", id, err)
			}
		})
	}
}

func TestStore_GetMissing(t *testing.T) {
	store := newTestStore(t)

	_, err := store.Get("nope")
	if !errors.Is(err, ErrWorkspaceNotFound) {
		t.Fatalf("Get() error = %v, want ErrWorkspaceNotFound", err)
	}
}

func TestStore_List(t *testing.T) {
	store := newTestStore(t)

	for _, id := range []string{"feat-old", "feat-new"} {
		if _, err := store.Create(id, "", models.NewScope(models.ScopeFull), 5); err != nil {
			t.Fatalf("Create(%q) error = %v", id, err)
		}
	}

	// Make feat-new the most recently updated.
	state, err := store.ReadState("feat-new")
	if err != nil {
		t.Fatalf("ReadState() error = %v", err)
	}
	state.UpdatedAt = time.Now().UTC().Add(time.Hour)
	if err := store.WriteState("feat-new", state); err != nil {
		t.Fatalf("WriteState() error = %v", err)
	}

	entries, err := store.List(nil)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("List() returned %d entries, want 2", len(entries))
	}
	if entries[0].Workspace.FeatureID != "feat-new" {
		t.Errorf("List() order = [%s, %s], want most recently modified first",
			entries[0].Workspace.FeatureID, entries[1].Workspace.FeatureID)
	}
}

func TestStore_ListSkipsCorruptState(t *testing.T) {
	store := newTestStore(t)

	if _, err := store.Create("feat-good", "", models.NewScope(models.ScopeFull), 5); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if _, err := store.Create("feat-bad", "", models.NewScope(models.ScopeFull), 5); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	// Corrupt feat-bad's state file.
	badState := filepath.Join(store.Dir("feat-bad"), stateFile)
	if err := os.WriteFile(badState, []byte("{truncated"), 0644); err != nil {
		t.Fatalf("corrupt state: %v", err)
	}

	entries, err := store.List(nil)
	if err != nil {
		t.Fatalf("List() error = %v, corrupt entries must be skipped not raised", err)
	}
	if len(entries) != 1 || entries[0].Workspace.FeatureID != "feat-good" {
		t.Errorf("List() = %v entries, want only feat-good", len(entries))
	}

	// Get must surface the corruption explicitly.
	if _, err := store.Get("feat-bad"); !errors.Is(err, ErrStateCorrupt) {
		t.Errorf("Get(feat-bad) error = %v, want ErrStateCorrupt", err)
	}
}

func TestStore_ListStatusFilter(t *testing.T) {
	store := newTestStore(t)

	if _, err := store.Create("feat-run", "", models.NewScope(models.ScopeFull), 5); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if _, err := store.Create("feat-done", "", models.NewScope(models.ScopeFull), 5); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	state, err := store.ReadState("feat-done")
	if err != nil {
		t.Fatalf("ReadState() error = %v", err)
	}
	state.Status = models.StatusCompleted
	if err := store.WriteState("feat-done", state); err != nil {
		t.Fatalf("WriteState() error = %v", err)
	}

	completed := models.StatusCompleted
	entries, err := store.List(&completed)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(entries) != 1 || entries[0].Workspace.FeatureID != "feat-done" {
		t.Errorf("filtered List() = %d entries, want only feat-done", len(entries))
	}
}

func TestStore_Delete(t *testing.T) {
	store := newTestStore(t)

	if _, err := store.Create("feat-a", "", models.NewScope(models.ScopeFull), 5); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if err := store.Delete("feat-a", false); !errors.Is(err, ErrDeletionNotConfirmed) {
		t.Fatalf("Delete(confirm=false) error = %v, want ErrDeletionNotConfirmed", err)
	}
	// Unconfirmed delete must not remove anything.
	if _, err := store.Get("feat-a"); err != nil {
		t.Fatalf("workspace gone after unconfirmed delete: %v", err)
	}

	if err := store.Delete("feat-a", true); err != nil {
		t.Fatalf("Delete(confirm=true) error = %v", err)
	}
	if _, err := store.Get("feat-a"); !errors.Is(err, ErrWorkspaceNotFound) {
		t.Fatalf("Get() after delete error = %v, want ErrWorkspaceNotFound", err)
	}

	if err := store.Delete("feat-a", true); !errors.Is(err, ErrWorkspaceNotFound) {
		t.Fatalf("Delete() of missing workspace error = %v, want ErrWorkspaceNotFound", err)
	}
}

func TestStore_WriteStateAtomicLeavesNoTempFiles(t *testing.T) {
	store := newTestStore(t)

	if _, err := store.Create("feat-a", "", models.NewScope(models.ScopeFull), 5); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	state, err := store.ReadState("feat-a")
	if err != nil {
		t.Fatalf("ReadState() error = %v", err)
	}
	for i := 0; i < 10; i++ {
		state.UpdatedAt = time.Now().UTC()
		if err := store.WriteState("feat-a", state); err != nil {
			t.Fatalf("WriteState() error = %v", err)
		}
	}

	dirents, err := os.ReadDir(store.Dir("feat-a"))
	if err != nil {
		t.Fatalf("ReadDir() error = %v", err)
	}
	for _, de := range dirents {
		if strings.HasPrefix(de.Name(), ".tmp-") {
			t.Errorf("leftover temp file %q", de.Name())
		}
	}
}
