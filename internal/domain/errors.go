package domain

import (
	"errors"
	"strings"
)

var (
	ErrNotFound         = errors.New("profile not found")
	ErrAlreadyExists    = errors.New("profile already exists")
	ErrImageNotFound    = errors.New("image not found")
	ErrImageFileMissing = errors.New("image file not found")
	ErrImageProcessing  = errors.New("failed to process image")
	ErrPersist          = errors.New("failed to persist profile")
)

// ValidationError carries the ordered list of rule violations for a
// rejected record. Details are preserved verbatim for the caller.
type ValidationError struct {
	Details []string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Details, "; ")
}
