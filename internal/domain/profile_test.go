package domain_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/msomdec/prof/internal/domain"
)

func TestProfileMarshalFlattensFields(t *testing.T) {
	p := domain.Profile{
		UUID:          "abc",
		Name:          "Alice",
		Email:         "alice@example.com",
		ImageFilename: "img.jpg",
		Tags:          []string{"dev", "go"},
		Fields:        map[string]any{"bio": "hello", "age": 30},
		CreatedAt:     time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC),
		UpdatedAt:     time.Date(2025, 1, 2, 3, 4, 6, 0, time.UTC),
	}

	data, err := json.Marshal(p)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("Unmarshal raw: %v", err)
	}

	if raw["bio"] != "hello" {
		t.Fatalf("expected bio at top level, got %v", raw["bio"])
	}
	if raw["name"] != "Alice" {
		t.Fatalf("expected name Alice, got %v", raw["name"])
	}
	if raw["imageFilename"] != "img.jpg" {
		t.Fatalf("expected imageFilename, got %v", raw["imageFilename"])
	}
	if _, ok := raw["fields"]; ok {
		t.Fatal("field bag must not appear as a nested object")
	}
}

func TestProfileMarshalOmitsEmptyImageAndTags(t *testing.T) {
	p := domain.Profile{UUID: "abc", Name: "A", Email: "a@x.com"}

	data, err := json.Marshal(p)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("Unmarshal raw: %v", err)
	}
	if _, ok := raw["imageFilename"]; ok {
		t.Fatal("imageFilename should be absent when empty")
	}
	if _, ok := raw["tags"]; ok {
		t.Fatal("tags should be absent when empty")
	}
}

func TestProfileRoundTrip(t *testing.T) {
	in := domain.Profile{
		UUID:      "abc",
		Name:      "Alice",
		Email:     "alice@example.com",
		Tags:      []string{"dev"},
		Fields:    map[string]any{"bio": "hi", "nested": map[string]any{"a": "b"}},
		CreatedAt: time.Date(2025, 1, 2, 3, 4, 5, 123456789, time.UTC),
		UpdatedAt: time.Date(2025, 1, 2, 3, 4, 6, 0, time.UTC),
	}

	data, err := json.Marshal(in)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	var out domain.Profile
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}

	if out.UUID != in.UUID || out.Name != in.Name || out.Email != in.Email {
		t.Fatalf("fixed keys did not survive: %+v", out)
	}
	if len(out.Tags) != 1 || out.Tags[0] != "dev" {
		t.Fatalf("tags did not survive: %v", out.Tags)
	}
	if out.Fields["bio"] != "hi" {
		t.Fatalf("field bag did not survive: %v", out.Fields)
	}
	if _, ok := out.Fields["uuid"]; ok {
		t.Fatal("fixed keys must not leak into the field bag")
	}
	if !out.CreatedAt.Equal(in.CreatedAt) {
		t.Fatalf("createdAt changed: %v != %v", out.CreatedAt, in.CreatedAt)
	}
}

func TestStringSlice(t *testing.T) {
	got := domain.StringSlice([]any{"a", 1, "b"})
	if len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Fatalf("expected [a b], got %v", got)
	}
	if domain.StringSlice("not a list") != nil {
		t.Fatal("expected nil for non-list value")
	}
}
