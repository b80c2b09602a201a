package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/msomdec/prof/internal/domain"
)

// TagIndex implements domain.TagIndex using SQLite. Each entry stores the
// profile's canonical JSON as the snapshot; insertion order (rowid) preserves
// first-seen ordering within a tag.
type TagIndex struct {
	db *sql.DB
}

func (t *TagIndex) Add(ctx context.Context, tag string, p *domain.Profile) error {
	snapshot, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal snapshot for %s: %w", p.UUID, err)
	}
	_, err = t.db.ExecContext(ctx,
		`INSERT INTO tag_entries (tag, uuid, snapshot) VALUES (?, ?, ?)
		 ON CONFLICT (tag, uuid) DO UPDATE SET snapshot = excluded.snapshot`,
		tag, p.UUID, string(snapshot),
	)
	if err != nil {
		return fmt.Errorf("upsert tag entry: %w", err)
	}
	return nil
}

func (t *TagIndex) Remove(ctx context.Context, tag, uuid string) error {
	// Deleting a missing entry is a no-op, not an error.
	_, err := t.db.ExecContext(ctx,
		"DELETE FROM tag_entries WHERE tag = ? AND uuid = ?", tag, uuid)
	if err != nil {
		return fmt.Errorf("delete tag entry: %w", err)
	}
	return nil
}

func (t *TagIndex) Get(ctx context.Context, tag string) ([]domain.Profile, error) {
	rows, err := t.db.QueryContext(ctx,
		"SELECT snapshot FROM tag_entries WHERE tag = ? ORDER BY rowid", tag)
	if err != nil {
		return nil, fmt.Errorf("query tag entries: %w", err)
	}
	defer rows.Close()
	return scanSnapshots(rows, nil)
}

func (t *TagIndex) GetAny(ctx context.Context, tags []string) ([]domain.Profile, error) {
	seen := make(map[string]bool)
	var profiles []domain.Profile
	for _, tag := range tags {
		rows, err := t.db.QueryContext(ctx,
			"SELECT snapshot FROM tag_entries WHERE tag = ? ORDER BY rowid", tag)
		if err != nil {
			return nil, fmt.Errorf("query tag entries: %w", err)
		}
		profiles, err = scanSnapshotsInto(rows, seen, profiles)
		rows.Close()
		if err != nil {
			return nil, err
		}
	}
	return profiles, nil
}

func (t *TagIndex) Rebuild(ctx context.Context, profiles []domain.Profile) error {
	tx, err := t.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin rebuild: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM tag_entries"); err != nil {
		return fmt.Errorf("clear tag entries: %w", err)
	}

	for i := range profiles {
		p := &profiles[i]
		snapshot, err := json.Marshal(p)
		if err != nil {
			return fmt.Errorf("marshal snapshot for %s: %w", p.UUID, err)
		}
		// Upsert like Add: a record may list the same tag twice, and the
		// rebuild must tolerate whatever the records contain.
		for _, tag := range p.Tags {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO tag_entries (tag, uuid, snapshot) VALUES (?, ?, ?)
				 ON CONFLICT (tag, uuid) DO UPDATE SET snapshot = excluded.snapshot`,
				tag, p.UUID, string(snapshot),
			); err != nil {
				return fmt.Errorf("insert tag entry %s/%s: %w", tag, p.UUID, err)
			}
		}
	}

	return tx.Commit()
}

func scanSnapshots(rows *sql.Rows, seen map[string]bool) ([]domain.Profile, error) {
	return scanSnapshotsInto(rows, seen, nil)
}

func scanSnapshotsInto(rows *sql.Rows, seen map[string]bool, profiles []domain.Profile) ([]domain.Profile, error) {
	for rows.Next() {
		var snapshot string
		if err := rows.Scan(&snapshot); err != nil {
			return nil, fmt.Errorf("scan tag entry: %w", err)
		}
		var p domain.Profile
		if err := json.Unmarshal([]byte(snapshot), &p); err != nil {
			return nil, fmt.Errorf("unmarshal snapshot: %w", err)
		}
		if seen != nil {
			if seen[p.UUID] {
				continue
			}
			seen[p.UUID] = true
		}
		profiles = append(profiles, p)
	}
	return profiles, rows.Err()
}
