package workspace

import (
	"bytes"
	"errors"
	"testing"

	"github.com/ShayCichocki/loom/pkg/models"
)

func newArtifactStore(t *testing.T) *Store {
	t.Helper()
	store := newTestStore(t)
	if _, err := store.Create("feat-a", "", models.NewScope(models.ScopeFull), 5); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	return store
}

func TestArtifacts_RoundTrip(t *testing.T) {
	store := newArtifactStore(t)

	tests := []struct {
		name    string
		artName string
		content []byte
		typ     ArtifactType
	}{
		{"structured object", "checklist", []byte(`{"items":[{"id":"AC1"}]}`), TypeStructured},
		{"structured array", "results", []byte(`[1,2,3]`), TypeStructured},
		{"document", "plan", []byte("# Plan\n\n- step one\n"), TypeDocument},
		{"text", "report", []byte("all good\n"), TypeText},
		{"empty text", "notes", []byte{}, TypeText},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := store.SaveArtifact("feat-a", tt.artName, tt.content, tt.typ); err != nil {
				t.Fatalf("SaveArtifact() error = %v", err)
			}

			content, info, err := store.GetArtifact("feat-a", tt.artName)
			if err != nil {
				t.Fatalf("GetArtifact() error = %v", err)
			}
			if !bytes.Equal(content, tt.content) {
				t.Errorf("content round-trip mismatch: got %q, want %q", content, tt.content)
			}
			if info.Type != tt.typ {
				t.Errorf("Type = %q, want %q", info.Type, tt.typ)
			}
			if info.Size != int64(len(tt.content)) {
				t.Errorf("Size = %d, want %d", info.Size, len(tt.content))
			}
		})
	}
}

func TestArtifacts_InvalidStructuredContent(t *testing.T) {
	store := newArtifactStore(t)

	_, err := store.SaveArtifact("feat-a", "checklist", []byte("{not valid"), TypeStructured)
	if !errors.Is(err, ErrInvalidArtifactContent) {
		t.Fatalf("SaveArtifact() error = %v, want ErrInvalidArtifactContent", err)
	}

	// Nothing may be written on a rejected save.
	infos, err := store.ListArtifacts("feat-a")
	if err != nil {
		t.Fatalf("ListArtifacts() error = %v", err)
	}
	for _, info := range infos {
		if info.Name == "checklist" {
			t.Errorf("rejected artifact %q present in listing", info.Name)
		}
	}
	if _, _, err := store.GetArtifact("feat-a", "checklist"); !errors.Is(err, ErrArtifactNotFound) {
		t.Errorf("GetArtifact() error = %v, want ErrArtifactNotFound", err)
	}
}

func TestArtifacts_OverwriteIsIdempotent(t *testing.T) {
	store := newArtifactStore(t)

	if _, err := store.SaveArtifact("feat-a", "spec", []byte(`{"v":1}`), TypeStructured); err != nil {
		t.Fatalf("SaveArtifact() error = %v", err)
	}
	if _, err := store.SaveArtifact("feat-a", "spec", []byte(`{"v":2}`), TypeStructured); err != nil {
		t.Fatalf("re-SaveArtifact() error = %v", err)
	}

	content, _, err := store.GetArtifact("feat-a", "spec")
	if err != nil {
		t.Fatalf("GetArtifact() error = %v", err)
	}
	if string(content) != `{"v":2}` {
		t.Errorf("content = %q, want latest save", content)
	}

	count := 0
	infos, err := store.ListArtifacts("feat-a")
	if err != nil {
		t.Fatalf("ListArtifacts() error = %v", err)
	}
	for _, info := range infos {
		if info.Name == "spec" {
			count++
		}
	}
	if count != 1 {
		t.Errorf("artifact %q appears %d times, want 1", "spec", count)
	}
}

func TestArtifacts_TypeChangeRemovesStaleTwin(t *testing.T) {
	store := newArtifactStore(t)

	if _, err := store.SaveArtifact("feat-a", "plan", []byte(`{"steps":[]}`), TypeStructured); err != nil {
		t.Fatalf("SaveArtifact() error = %v", err)
	}
	if _, err := store.SaveArtifact("feat-a", "plan", []byte("# Plan\n"), TypeDocument); err != nil {
		t.Fatalf("SaveArtifact() error = %v", err)
	}

	_, info, err := store.GetArtifact("feat-a", "plan")
	if err != nil {
		t.Fatalf("GetArtifact() error = %v", err)
	}
	if info.Type != TypeDocument {
		t.Errorf("Type after re-save = %q, want document", info.Type)
	}
}

func TestArtifacts_GetMissing(t *testing.T) {
	store := newArtifactStore(t)

	_, _, err := store.GetArtifact("feat-a", "nope")
	if !errors.Is(err, ErrArtifactNotFound) {
		t.Fatalf("GetArtifact() error = %v, want ErrArtifactNotFound", err)
	}
}

func TestArtifacts_ListExcludesEngineFiles(t *testing.T) {
	store := newArtifactStore(t)

	infos, err := store.ListArtifacts("feat-a")
	if err != nil {
		t.Fatalf("ListArtifacts() error = %v", err)
	}
	for _, info := range infos {
		if info.Name == "state" || info.Name == "workspace" {
			t.Errorf("engine-owned file %q leaked into artifact listing", info.Name)
		}
	}
}

func TestArtifacts_ReservedNames(t *testing.T) {
	store := newArtifactStore(t)

	for _, name := range []string{"state", "workspace", "", "../escape", "a/b"} {
		t.Run(name, func(t *testing.T) {
			if _, err := store.SaveArtifact("feat-a", name, []byte("{}"), TypeStructured); err == nil {
				t.Errorf("SaveArtifact(%q) succeeded, want error", name)
			}
		})
	}
}

func TestArtifacts_WorkspaceMissing(t *testing.T) {
	store := newTestStore(t)

	if _, err := store.SaveArtifact("nope", "spec", []byte("{}"), TypeStructured); !errors.Is(err, ErrWorkspaceNotFound) {
		t.Errorf("SaveArtifact() error = %v, want ErrWorkspaceNotFound", err)
	}
	if _, _, err := store.GetArtifact("nope", "spec"); !errors.Is(err, ErrWorkspaceNotFound) {
		t.Errorf("GetArtifact() error = %v, want ErrWorkspaceNotFound", err)
	}
	if _, err := store.ListArtifacts("nope"); !errors.Is(err, ErrWorkspaceNotFound) {
		t.Errorf("ListArtifacts() error = %v, want ErrWorkspaceNotFound", err)
	}
}
