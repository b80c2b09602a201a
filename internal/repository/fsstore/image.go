package fsstore

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/msomdec/prof/internal/domain"
)

// imageStore implements domain.FileStore on the local filesystem.
type imageStore struct {
	dir string
}

func (s *imageStore) Save(_ context.Context, name string, data []byte) error {
	if !validName(name) {
		return fmt.Errorf("invalid image name %q", name)
	}
	if err := writeFileAtomic(filepath.Join(s.dir, name), data); err != nil {
		return fmt.Errorf("write image %s: %w", name, err)
	}
	return nil
}

func (s *imageStore) Get(_ context.Context, name string) ([]byte, error) {
	if !validName(name) {
		return nil, domain.ErrNotFound
	}
	data, err := os.ReadFile(filepath.Join(s.dir, name))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("read image %s: %w", name, err)
	}
	return data, nil
}

func (s *imageStore) Delete(_ context.Context, name string) error {
	if !validName(name) {
		return domain.ErrNotFound
	}
	if err := os.Remove(filepath.Join(s.dir, name)); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("delete image %s: %w", name, err)
	}
	return nil
}
