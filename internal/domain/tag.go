package domain

import "context"

// TagIndex is the denormalized tag → profiles view derived from profile
// records. It is a rebuildable projection, never a source of truth: an entry
// may lag the authoritative record until the next reconciliation.
type TagIndex interface {
	// Add upserts the profile snapshot under the tag. Re-adding the same
	// identifier overwrites its snapshot.
	Add(ctx context.Context, tag string, p *Profile) error
	// Remove deletes the entry if present; unknown tags and identifiers
	// are a no-op, not an error.
	Remove(ctx context.Context, tag, uuid string) error
	// Get returns the snapshots under a tag, empty when the tag is unknown.
	Get(ctx context.Context, tag string) ([]Profile, error)
	// GetAny returns snapshots under any of the given tags, de-duplicated
	// by identifier in first-seen order across the tags.
	GetAny(ctx context.Context, tags []string) ([]Profile, error)
	// Rebuild replaces the entire index with entries derived from the
	// given records. Used to repair drift between index and records.
	Rebuild(ctx context.Context, profiles []Profile) error
}
