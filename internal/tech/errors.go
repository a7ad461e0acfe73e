package tech

import (
	"errors"
	"fmt"
	"strconv"
)

// ValidationError reports input that fails a shape or length constraint.
// It is returned before any mutation is attempted.
type ValidationError struct {
	// Field names the offending field ("title", "technologies", ...).
	Field string

	// Reason is a human-readable description of the problem.
	Reason string

	// Index is the position of the offending entry in a batch, or -1.
	Index int

	// Title is the offending entry's title when known.
	Title string
}

// NewValidationError creates a ValidationError that is not tied to a batch entry.
func NewValidationError(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason, Index: -1}
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	prefix := ""
	if e.Index >= 0 {
		prefix = "entry " + strconv.Itoa(e.Index)
		if e.Title != "" {
			prefix += fmt.Sprintf(" (%q)", e.Title)
		}
		prefix += ": "
	}
	if e.Field != "" {
		return fmt.Sprintf("%s%s: %s", prefix, e.Field, e.Reason)
	}
	return prefix + e.Reason
}

// PersistenceError reports a failed write to the storage medium.
// The write is attempted once; nothing retries it.
type PersistenceError struct {
	Op  string // "save", "backup", "stamp version", ...
	Key string
	Err error
}

// Error implements the error interface.
func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s %q: %v", e.Op, e.Key, e.Err)
}

// Unwrap returns the underlying storage error.
func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// ParseError reports malformed stored data. It is recovered during load and
// never reaches the end user.
type ParseError struct {
	Key string
	Err error
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %q: %v", e.Key, e.Err)
}

// Unwrap returns the underlying decode error.
func (e *ParseError) Unwrap() error {
	return e.Err
}

// IsValidation returns true if err is or wraps a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsPersistence returns true if err is or wraps a PersistenceError.
func IsPersistence(err error) bool {
	var pe *PersistenceError
	return errors.As(err, &pe)
}
