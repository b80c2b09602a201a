// Package fsstore persists profile records and image bytes on the local
// filesystem, one file per entity. Records are JSON documents under
// <root>/profiles, image bytes live under <root>/images.
package fsstore

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/msomdec/prof/internal/domain"
)

// Store owns the storage directories. Construct it with New; directory
// creation is an explicit initialization step, not import-time state.
type Store struct {
	profilesDir string
	imagesDir   string
}

// New creates the storage directories under root and returns a handle.
func New(root string) (*Store, error) {
	s := &Store{
		profilesDir: filepath.Join(root, "profiles"),
		imagesDir:   filepath.Join(root, "images"),
	}
	for _, dir := range []string{s.profilesDir, s.imagesDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create storage directory %s: %w", dir, err)
		}
	}
	return s, nil
}

// Profiles returns the profile record repository.
func (s *Store) Profiles() domain.ProfileRepository {
	return &profileRepo{dir: s.profilesDir}
}

// Images returns the image byte store.
func (s *Store) Images() domain.FileStore {
	return &imageStore{dir: s.imagesDir}
}

// validName rejects names that would escape the storage directory.
func validName(name string) bool {
	return name != "" && name != "." && name != ".." &&
		!strings.ContainsAny(name, "/\\")
}

// writeFileAtomic writes data to path so the file either lands in full or
// not at all: write to a temp file in the same directory, then rename.
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}
