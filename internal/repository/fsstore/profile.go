package fsstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/msomdec/prof/internal/domain"
)

// profileRepo implements domain.ProfileRepository with one JSON file per
// profile, named <uuid>.json.
type profileRepo struct {
	dir string
}

func (r *profileRepo) path(uuid string) string {
	return filepath.Join(r.dir, uuid+".json")
}

func (r *profileRepo) Save(_ context.Context, p *domain.Profile) error {
	if !validName(p.UUID) {
		return fmt.Errorf("invalid profile identifier %q", p.UUID)
	}
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal profile %s: %w", p.UUID, err)
	}
	if err := writeFileAtomic(r.path(p.UUID), data); err != nil {
		return fmt.Errorf("write profile %s: %w", p.UUID, err)
	}
	return nil
}

func (r *profileRepo) Get(_ context.Context, uuid string) (*domain.Profile, error) {
	if !validName(uuid) {
		return nil, domain.ErrNotFound
	}
	data, err := os.ReadFile(r.path(uuid))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("read profile %s: %w", uuid, err)
	}
	p := &domain.Profile{}
	if err := json.Unmarshal(data, p); err != nil {
		return nil, fmt.Errorf("unmarshal profile %s: %w", uuid, err)
	}
	return p, nil
}

func (r *profileRepo) Delete(_ context.Context, uuid string) error {
	if !validName(uuid) {
		return domain.ErrNotFound
	}
	if err := os.Remove(r.path(uuid)); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("delete profile %s: %w", uuid, err)
	}
	return nil
}

func (r *profileRepo) List(ctx context.Context) ([]domain.Profile, error) {
	entries, err := os.ReadDir(r.dir)
	if err != nil {
		return nil, fmt.Errorf("scan profiles: %w", err)
	}

	var profiles []domain.Profile
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".json") || strings.HasPrefix(name, ".") {
			continue
		}
		p, err := r.Get(ctx, strings.TrimSuffix(name, ".json"))
		if err != nil {
			// A record removed mid-scan is not an error.
			if errors.Is(err, domain.ErrNotFound) {
				continue
			}
			return nil, err
		}
		profiles = append(profiles, *p)
	}
	return profiles, nil
}
