package domain

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// Keys with fixed meaning at the top level of a profile document. Everything
// else a caller sends lands in the open field bag.
const (
	KeyUUID          = "uuid"
	KeyName          = "name"
	KeyEmail         = "email"
	KeyImage         = "image"
	KeyImageFilename = "imageFilename"
	KeyTags          = "tags"
	KeyCreatedAt     = "createdAt"
	KeyUpdatedAt     = "updatedAt"
)

// Profile is the durable per-user record. Fields holds the open set of
// additional caller-supplied fields; on the wire they are flattened into the
// top level of the JSON document alongside the fixed keys.
type Profile struct {
	UUID          string
	Name          string
	Email         string
	ImageFilename string
	Tags          []string
	Fields        map[string]any
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// ProfileRepository defines persistence operations for profile records.
// The record is the authoritative resource; the tag index is derived from it.
type ProfileRepository interface {
	Save(ctx context.Context, p *Profile) error
	Get(ctx context.Context, uuid string) (*Profile, error)
	Delete(ctx context.Context, uuid string) error
	List(ctx context.Context) ([]Profile, error)
}

// DataMap returns the mergeable view of the record: name, email, tags, and
// the additional fields. Identity and timestamps are excluded since they are
// never merged from caller input.
func (p *Profile) DataMap() map[string]any {
	m := make(map[string]any, len(p.Fields)+3)
	for k, v := range p.Fields {
		m[k] = v
	}
	m[KeyName] = p.Name
	m[KeyEmail] = p.Email
	if len(p.Tags) > 0 {
		m[KeyTags] = p.Tags
	}
	return m
}

// MarshalJSON flattens the additional fields into the top-level document.
// Fixed keys always win over a field of the same name.
func (p Profile) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(p.Fields)+7)
	for k, v := range p.Fields {
		out[k] = v
	}
	out[KeyUUID] = p.UUID
	out[KeyName] = p.Name
	out[KeyEmail] = p.Email
	if p.ImageFilename != "" {
		out[KeyImageFilename] = p.ImageFilename
	}
	if len(p.Tags) > 0 {
		out[KeyTags] = p.Tags
	}
	out[KeyCreatedAt] = p.CreatedAt.UTC().Format(time.RFC3339Nano)
	out[KeyUpdatedAt] = p.UpdatedAt.UTC().Format(time.RFC3339Nano)
	return json.Marshal(out)
}

// UnmarshalJSON splits a flattened document back into fixed keys and the
// additional field bag.
func (p *Profile) UnmarshalJSON(data []byte) error {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*p = Profile{Fields: make(map[string]any)}
	for k, v := range raw {
		switch k {
		case KeyUUID:
			p.UUID, _ = v.(string)
		case KeyName:
			p.Name, _ = v.(string)
		case KeyEmail:
			p.Email, _ = v.(string)
		case KeyImageFilename:
			p.ImageFilename, _ = v.(string)
		case KeyTags:
			p.Tags = StringSlice(v)
		case KeyCreatedAt:
			t, err := parseTimestamp(v)
			if err != nil {
				return fmt.Errorf("parse createdAt: %w", err)
			}
			p.CreatedAt = t
		case KeyUpdatedAt:
			t, err := parseTimestamp(v)
			if err != nil {
				return fmt.Errorf("parse updatedAt: %w", err)
			}
			p.UpdatedAt = t
		default:
			p.Fields[k] = v
		}
	}
	return nil
}

// StringSlice converts a decoded JSON value into a []string, dropping
// non-string elements. Returns nil for anything that is not a list.
func StringSlice(v any) []string {
	switch vs := v.(type) {
	case []string:
		return vs
	case []any:
		out := make([]string, 0, len(vs))
		for _, e := range vs {
			if s, ok := e.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}

func parseTimestamp(v any) (time.Time, error) {
	s, ok := v.(string)
	if !ok {
		return time.Time{}, fmt.Errorf("timestamp is not a string")
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, err
	}
	return t, nil
}
