package workspace

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// ArtifactType declares how an artifact's content is validated and which
// file suffix it is stored under.
type ArtifactType string

const (
	// TypeStructured artifacts must parse as JSON before being accepted.
	TypeStructured ArtifactType = "structured"
	// TypeDocument artifacts hold markdown documents.
	TypeDocument ArtifactType = "document"
	// TypeText artifacts hold plain text.
	TypeText ArtifactType = "text"
)

// Valid returns true if the type is a known value.
func (t ArtifactType) Valid() bool {
	return t == TypeStructured || t == TypeDocument || t == TypeText
}

// Ext returns the file suffix for the type.
func (t ArtifactType) Ext() string {
	switch t {
	case TypeStructured:
		return ".json"
	case TypeDocument:
		return ".md"
	default:
		return ".txt"
	}
}

// typeForExt classifies an artifact file by its suffix.
func typeForExt(ext string) ArtifactType {
	switch ext {
	case ".json":
		return TypeStructured
	case ".md":
		return TypeDocument
	default:
		return TypeText
	}
}

// artifactExts is the lookup order used when resolving a name to a file.
var artifactExts = []string{".json", ".md", ".txt"}

// ArtifactInfo describes a stored artifact.
type ArtifactInfo struct {
	// Name is the artifact name, unique within its workspace.
	Name string `json:"name"`
	// Type is the artifact type classified by suffix.
	Type ArtifactType `json:"type"`
	// Size is the content size in bytes.
	Size int64 `json:"size"`
	// ModifiedAt is the last modification time.
	ModifiedAt time.Time `json:"modified_at"`
}

// validateArtifactName rejects names that would collide with engine-owned
// files or escape the workspace directory.
func validateArtifactName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: empty artifact name", ErrInvalidArtifactContent)
	}
	if strings.ContainsAny(name, "/\\") || strings.HasPrefix(name, ".") {
		return fmt.Errorf("%w: invalid artifact name %q", ErrInvalidArtifactContent, name)
	}
	if name == "state" || name == "workspace" {
		return fmt.Errorf("%w: %q is reserved", ErrInvalidArtifactContent, name)
	}
	return nil
}

// SaveArtifact stores a named artifact in the feature's workspace. Structured
// content that does not parse as JSON is rejected with
// ErrInvalidArtifactContent and nothing is written. Saving an existing name
// overwrites it; names are unique per workspace regardless of type.
func (s *Store) SaveArtifact(featureID, name string, content []byte, typ ArtifactType) (*ArtifactInfo, error) {
	if err := validateFeatureID(featureID); err != nil {
		return nil, err
	}
	if err := validateArtifactName(name); err != nil {
		return nil, err
	}
	if !typ.Valid() {
		return nil, fmt.Errorf("%w: unknown artifact type %q", ErrInvalidArtifactContent, typ)
	}

	dir := s.Dir(featureID)
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return nil, fmt.Errorf("%w: %s", ErrWorkspaceNotFound, featureID)
	}

	if typ == TypeStructured && !json.Valid(content) {
		return nil, fmt.Errorf("%w: %q is not well-formed JSON", ErrInvalidArtifactContent, name)
	}

	path := filepath.Join(dir, name+typ.Ext())
	if err := writeFileAtomic(path, content, filePerm); err != nil {
		return nil, fmt.Errorf("write artifact %q: %w", name, err)
	}

	// A re-save under a different type must not leave a stale twin behind;
	// the name stays unique within the workspace.
	for _, ext := range artifactExts {
		if ext == typ.Ext() {
			continue
		}
		os.Remove(filepath.Join(dir, name+ext))
	}

	fi, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat artifact %q: %w", name, err)
	}

	return &ArtifactInfo{
		Name:       name,
		Type:       typ,
		Size:       fi.Size(),
		ModifiedAt: fi.ModTime(),
	}, nil
}

// GetArtifact returns an artifact's content and metadata. It fails with
// ErrArtifactNotFound if no file matches the name under any known suffix.
func (s *Store) GetArtifact(featureID, name string) ([]byte, *ArtifactInfo, error) {
	if err := validateFeatureID(featureID); err != nil {
		return nil, nil, err
	}
	if err := validateArtifactName(name); err != nil {
		return nil, nil, err
	}

	dir := s.Dir(featureID)
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return nil, nil, fmt.Errorf("%w: %s", ErrWorkspaceNotFound, featureID)
	}

	for _, ext := range artifactExts {
		path := filepath.Join(dir, name+ext)
		fi, err := os.Stat(path)
		if err != nil {
			continue
		}
		content, err := os.ReadFile(path)
		if err != nil {
			return nil, nil, fmt.Errorf("read artifact %q: %w", name, err)
		}
		return content, &ArtifactInfo{
			Name:       name,
			Type:       typeForExt(ext),
			Size:       fi.Size(),
			ModifiedAt: fi.ModTime(),
		}, nil
	}

	return nil, nil, fmt.Errorf("%w: %s", ErrArtifactNotFound, name)
}

// ListArtifacts enumerates the collaborator artifacts in a workspace,
// classified by suffix. Engine-owned files (state, workspace metadata) and
// unreadable entries are skipped; a bad entry never fails the listing.
func (s *Store) ListArtifacts(featureID string) ([]ArtifactInfo, error) {
	if err := validateFeatureID(featureID); err != nil {
		return nil, err
	}

	dir := s.Dir(featureID)
	dirents, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("%w: %s", ErrWorkspaceNotFound, featureID)
	}
	if err != nil {
		return nil, fmt.Errorf("read workspace directory: %w", err)
	}

	var infos []ArtifactInfo
	for _, de := range dirents {
		if de.IsDir() {
			continue
		}
		fname := de.Name()
		if fname == metaFile || fname == stateFile || strings.HasPrefix(fname, ".") {
			continue
		}

		fi, err := de.Info()
		if err != nil {
			continue
		}

		ext := filepath.Ext(fname)
		infos = append(infos, ArtifactInfo{
			Name:       strings.TrimSuffix(fname, ext),
			Type:       typeForExt(ext),
			Size:       fi.Size(),
			ModifiedAt: fi.ModTime(),
		})
	}

	return infos, nil
}
