package service

import (
	"fmt"
	"regexp"
	"sort"
	"unicode/utf8"
)

// Default validation limits, overridable per Validator. Lengths are counted
// in characters, not bytes.
const (
	DefaultMaxNameLength  = 100
	DefaultMaxEmailLength = 255
	DefaultMaxFields      = 20
	DefaultMaxFieldLength = 1000
)

// local-part@domain.tld: one @, a dot after it, no whitespace.
var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Keys that never count as additional fields.
var fixedKeys = map[string]bool{
	"name":          true,
	"email":         true,
	"image":         true,
	"imageFilename": true,
}

// Validator checks a profile record against field-presence, length, format,
// and field-count policies.
type Validator struct {
	MaxNameLength  int
	MaxEmailLength int
	MaxFields      int
	MaxFieldLength int
}

// NewValidator creates a Validator with the default limits.
func NewValidator() *Validator {
	return &Validator{
		MaxNameLength:  DefaultMaxNameLength,
		MaxEmailLength: DefaultMaxEmailLength,
		MaxFields:      DefaultMaxFields,
		MaxFieldLength: DefaultMaxFieldLength,
	}
}

// Validate applies the rules in a fixed order and returns the violations in
// that order, empty when the record is acceptable. The caller must reject the
// whole operation on any violation.
func (v *Validator) Validate(data map[string]any) []string {
	var violations []string

	if name, ok := data["name"].(string); !ok || name == "" {
		violations = append(violations, "Name is required and must be a string")
	} else if utf8.RuneCountInString(name) > v.MaxNameLength {
		violations = append(violations, fmt.Sprintf("Name must not exceed %d characters", v.MaxNameLength))
	}

	if email, ok := data["email"].(string); !ok || email == "" {
		violations = append(violations, "Email is required and must be a string")
	} else {
		// Length and format are independent checks: an overlong,
		// badly-formed email yields two violations.
		if utf8.RuneCountInString(email) > v.MaxEmailLength {
			violations = append(violations, fmt.Sprintf("Email must not exceed %d characters", v.MaxEmailLength))
		}
		if !emailPattern.MatchString(email) {
			violations = append(violations, "Email must be a valid email address")
		}
	}

	var extra []string
	for k := range data {
		if !fixedKeys[k] {
			extra = append(extra, k)
		}
	}
	if len(extra) > v.MaxFields {
		violations = append(violations, fmt.Sprintf("Too many additional fields (maximum %d)", v.MaxFields))
	}

	// Sorted for deterministic violation order.
	sort.Strings(extra)
	for _, k := range extra {
		if s, ok := data[k].(string); ok && utf8.RuneCountInString(s) > v.MaxFieldLength {
			violations = append(violations, fmt.Sprintf("Field '%s' must not exceed %d characters", k, v.MaxFieldLength))
		}
	}

	return violations
}
