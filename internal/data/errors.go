package data

import (
	"errors"
	"fmt"
)

var (
	// ErrRecordNotFound is returned by a Store when no row matches the identifier.
	ErrRecordNotFound = errors.New("record not found")
	// ErrDuplicateRecord is returned by a Store when the identifier is already taken,
	// whether detected by the pre-check or by the unique constraint on write.
	ErrDuplicateRecord = errors.New("duplicate record")
)

// ValidationError reports malformed or out-of-range input for a single field.
// It is always raised before the store is touched.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// ConflictError is returned when creating a record whose identifier already exists.
type ConflictError struct {
	Identifier string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("a record with identifier %q already exists", e.Identifier)
}

// NotFoundError is returned when reading, updating, deleting or rendering a
// record that does not exist.
type NotFoundError struct {
	Identifier string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("no record with identifier %q", e.Identifier)
}

func (e *NotFoundError) Unwrap() error { return ErrRecordNotFound }

func invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}
