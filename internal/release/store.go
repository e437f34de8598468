package release

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// VersionStore reads and writes the canonical project version
type VersionStore interface {
	// Read returns ok=false when no version has been recorded yet
	Read() (v Version, ok bool, err error)
	// Write replaces the stored version
	Write(v Version) error
}

// FileStore keeps the version in a single plain-text file
type FileStore struct {
	Path string
}

// NewFileStore returns a store backed by path
func NewFileStore(path string) *FileStore {
	return &FileStore{Path: path}
}

// Read loads the stored version. A missing or blank file means no prior release.
func (s *FileStore) Read() (Version, bool, error) {
	data, err := os.ReadFile(s.Path)
	if errors.Is(err, fs.ErrNotExist) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read version file: %w", err)
	}

	raw := strings.TrimSpace(string(data))
	if raw == "" {
		return "", false, nil
	}

	v, err := ParseVersion(raw)
	if err != nil {
		return "", false, fmt.Errorf("%s: %w", s.Path, err)
	}
	return v, true, nil
}

// Write stores v followed by a single newline. The content is written to a
// sibling temp file and renamed into place so readers never see a partial value.
func (s *FileStore) Write(v Version) error {
	if err := ValidateVersion(string(v)); err != nil {
		return err
	}
	return writeFileAtomic(s.Path, []byte(string(v)+"\n"), 0644)
}

// writeFileAtomic replaces path with data via rename, keeping the existing
// file mode when there is one.
func writeFileAtomic(path string, data []byte, perm fs.FileMode) error {
	if info, err := os.Stat(path); err == nil {
		perm = info.Mode().Perm()
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+"-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() {
		// no-op after a successful rename
		_ = os.Remove(tmpName)
	}()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := os.Chmod(tmpName, perm); err != nil {
		return fmt.Errorf("failed to set mode on %s: %w", path, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("failed to replace %s: %w", path, err)
	}
	return nil
}
