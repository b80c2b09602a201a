package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/msomdec/prof/internal/domain"
)

// ProfileService orchestrates validation, image normalization, record
// persistence, and tag-index maintenance for profile operations. Mutations on
// the same identifier are serialized by a per-identifier lock; reads are
// lock-free.
type ProfileService struct {
	profiles   domain.ProfileRepository
	images     domain.FileStore
	tags       domain.TagIndex
	validator  *Validator
	normalizer *ImageNormalizer

	locks sync.Map // uuid → *sync.Mutex
}

// NewProfileService creates a new ProfileService.
func NewProfileService(profiles domain.ProfileRepository, images domain.FileStore, tags domain.TagIndex, validator *Validator, normalizer *ImageNormalizer) *ProfileService {
	return &ProfileService{
		profiles:   profiles,
		images:     images,
		tags:       tags,
		validator:  validator,
		normalizer: normalizer,
	}
}

func (s *ProfileService) lock(uuid string) *sync.Mutex {
	m, _ := s.locks.LoadOrStore(uuid, &sync.Mutex{})
	return m.(*sync.Mutex)
}

// Create stores a new profile record, with an optional image.
func (s *ProfileService) Create(ctx context.Context, uuid string, data map[string]any, imageData []byte, imageName string) (*domain.Profile, error) {
	mu := s.lock(uuid)
	mu.Lock()
	defer mu.Unlock()

	if _, err := s.profiles.Get(ctx, uuid); err == nil {
		return nil, domain.ErrAlreadyExists
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("check existing profile: %w", err)
	}

	data = stripReserved(data)
	if violations := s.validator.Validate(data); len(violations) > 0 {
		return nil, &domain.ValidationError{Details: violations}
	}

	var imageFilename string
	if len(imageData) > 0 {
		name, encoded, err := s.normalizer.Normalize(imageData, imageName)
		if err != nil {
			return nil, err
		}
		if err := s.images.Save(ctx, name, encoded); err != nil {
			return nil, fmt.Errorf("%w: save image: %v", domain.ErrPersist, err)
		}
		imageFilename = name
	}

	now := time.Now().UTC()
	p := profileFromData(uuid, data)
	p.ImageFilename = imageFilename
	p.CreatedAt = now
	p.UpdatedAt = now

	if err := s.profiles.Save(ctx, p); err != nil {
		// Never leave an unreferenced image behind.
		if imageFilename != "" {
			if derr := s.images.Delete(ctx, imageFilename); derr != nil {
				slog.Warn("cleanup orphaned image", "filename", imageFilename, "error", derr)
			}
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrPersist, err)
	}

	// The record is already durable; index additions are best-effort and
	// repaired by the next rebuild if they fail.
	for _, tag := range p.Tags {
		if err := s.tags.Add(ctx, tag, p); err != nil {
			slog.Warn("add tag index entry", "tag", tag, "uuid", uuid, "error", err)
		}
	}

	return p, nil
}

// Update merges the incoming data over the stored record, optionally
// replacing the image, and reconciles the tag index.
func (s *ProfileService) Update(ctx context.Context, uuid string, data map[string]any, imageData []byte, imageName string) (*domain.Profile, error) {
	mu := s.lock(uuid)
	mu.Lock()
	defer mu.Unlock()

	existing, err := s.profiles.Get(ctx, uuid)
	if err != nil {
		return nil, err
	}

	// Validation applies to the merged record, not the delta.
	merged := existing.DataMap()
	for k, v := range stripReserved(data) {
		merged[k] = v
	}
	if violations := s.validator.Validate(merged); len(violations) > 0 {
		return nil, &domain.ValidationError{Details: violations}
	}

	// Normalize and store the replacement image before touching the old
	// one, so a failure leaves the previous image fully intact.
	var newImage string
	if len(imageData) > 0 {
		name, encoded, err := s.normalizer.Normalize(imageData, imageName)
		if err != nil {
			return nil, err
		}
		if err := s.images.Save(ctx, name, encoded); err != nil {
			return nil, fmt.Errorf("%w: save image: %v", domain.ErrPersist, err)
		}
		newImage = name
	}

	p := profileFromData(uuid, merged)
	p.CreatedAt = existing.CreatedAt
	p.UpdatedAt = time.Now().UTC()
	p.ImageFilename = existing.ImageFilename
	if newImage != "" {
		p.ImageFilename = newImage
	}

	if err := s.profiles.Save(ctx, p); err != nil {
		if newImage != "" {
			if derr := s.images.Delete(ctx, newImage); derr != nil {
				slog.Warn("cleanup orphaned image", "filename", newImage, "error", derr)
			}
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrPersist, err)
	}

	// Release the old image only after the new record is durable.
	if newImage != "" && existing.ImageFilename != "" && existing.ImageFilename != newImage {
		if err := s.images.Delete(ctx, existing.ImageFilename); err != nil {
			slog.Warn("delete replaced image", "filename", existing.ImageFilename, "error", err)
		}
	}

	s.reconcileTags(ctx, existing.Tags, p)

	return p, nil
}

// Delete removes the profile record, its image, and its tag-index entries.
// The record is the authoritative resource: once it is gone the operation
// succeeds, and leftover image or index entries are cleanable artifacts.
func (s *ProfileService) Delete(ctx context.Context, uuid string) error {
	mu := s.lock(uuid)
	mu.Lock()
	defer mu.Unlock()

	p, err := s.profiles.Get(ctx, uuid)
	if err != nil {
		return err
	}

	if err := s.profiles.Delete(ctx, uuid); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return err
		}
		return fmt.Errorf("%w: %v", domain.ErrPersist, err)
	}

	if p.ImageFilename != "" {
		if err := s.images.Delete(ctx, p.ImageFilename); err != nil {
			slog.Warn("delete profile image", "filename", p.ImageFilename, "error", err)
		}
	}
	for _, tag := range p.Tags {
		if err := s.tags.Remove(ctx, tag, uuid); err != nil {
			slog.Warn("remove tag index entry", "tag", tag, "uuid", uuid, "error", err)
		}
	}

	return nil
}

// Get returns the stored record. Pure read, no side effects.
func (s *ProfileService) Get(ctx context.Context, uuid string) (*domain.Profile, error) {
	return s.profiles.Get(ctx, uuid)
}

// GetImage returns the stored image bytes and filename for a profile.
// A set filename whose backing bytes are missing is a data inconsistency
// reported as a normal not-found, not a fatal error.
func (s *ProfileService) GetImage(ctx context.Context, uuid string) ([]byte, string, error) {
	p, err := s.profiles.Get(ctx, uuid)
	if err != nil {
		return nil, "", err
	}
	if p.ImageFilename == "" {
		return nil, "", domain.ErrImageNotFound
	}
	data, err := s.images.Get(ctx, p.ImageFilename)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, "", domain.ErrImageFileMissing
		}
		return nil, "", fmt.Errorf("get image %s: %w", p.ImageFilename, err)
	}
	return data, p.ImageFilename, nil
}

// List returns the profiles matching any of the given tags, de-duplicated in
// first-seen order. With no tags it falls back to a full scan of all stored
// profiles — the slow path; callers filtering at scale should supply tags.
func (s *ProfileService) List(ctx context.Context, tags []string) ([]domain.Profile, error) {
	if len(tags) > 0 {
		return s.tags.GetAny(ctx, tags)
	}
	return s.profiles.List(ctx)
}

// RebuildTagIndex rebuilds the tag index from a full scan of the profile
// records, repairing any drift between the index and the records.
func (s *ProfileService) RebuildTagIndex(ctx context.Context) error {
	profiles, err := s.profiles.List(ctx)
	if err != nil {
		return fmt.Errorf("scan profiles: %w", err)
	}
	if err := s.tags.Rebuild(ctx, profiles); err != nil {
		return fmt.Errorf("rebuild tag index: %w", err)
	}
	return nil
}

// reconcileTags removes the identifier from tags it no longer carries and
// upserts it under every current tag, refreshing stale snapshots. Best-effort:
// the record is already durable, so failures are logged and repaired later.
func (s *ProfileService) reconcileTags(ctx context.Context, before []string, p *domain.Profile) {
	after := make(map[string]bool, len(p.Tags))
	for _, tag := range p.Tags {
		after[tag] = true
	}
	for _, tag := range before {
		if !after[tag] {
			if err := s.tags.Remove(ctx, tag, p.UUID); err != nil {
				slog.Warn("remove tag index entry", "tag", tag, "uuid", p.UUID, "error", err)
			}
		}
	}
	for _, tag := range p.Tags {
		if err := s.tags.Add(ctx, tag, p); err != nil {
			slog.Warn("add tag index entry", "tag", tag, "uuid", p.UUID, "error", err)
		}
	}
}

// profileFromData builds a record from a field map, routing fixed keys to
// their struct fields and everything else into the field bag.
func profileFromData(uuid string, data map[string]any) *domain.Profile {
	p := &domain.Profile{UUID: uuid, Fields: make(map[string]any)}
	for k, v := range data {
		switch k {
		case domain.KeyName:
			p.Name, _ = v.(string)
		case domain.KeyEmail:
			p.Email, _ = v.(string)
		case domain.KeyTags:
			p.Tags = domain.StringSlice(v)
		default:
			p.Fields[k] = v
		}
	}
	return p
}

// stripReserved drops keys the caller may not set directly: identity,
// timestamps, and image bookkeeping are owned by the store.
func stripReserved(data map[string]any) map[string]any {
	out := make(map[string]any, len(data))
	for k, v := range data {
		switch k {
		case domain.KeyUUID, domain.KeyImage, domain.KeyImageFilename, domain.KeyCreatedAt, domain.KeyUpdatedAt:
			continue
		}
		out[k] = v
	}
	return out
}
