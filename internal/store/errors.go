package store

import (
	"errors"
	"fmt"
)

// Error codes reported by the store.
const (
	ErrCodeConflict = "CONCURRENT_UPDATE_CONFLICT"
	ErrCodeNotFound = "NOT_FOUND"
)

// ConflictError reports that a document changed since the caller read it.
// Expected is the revision the caller passed, Actual the current head.
type ConflictError struct {
	ID       string
	Expected string
	Actual   string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("[%s] document %s: expected revision %q, found %q",
		ErrCodeConflict, e.ID, e.Expected, e.Actual)
}

// Code returns the error code.
func (e *ConflictError) Code() string { return ErrCodeConflict }

// NotFoundError reports a missing document or revision.
type NotFoundError struct {
	ID  string
	Rev string
}

func (e *NotFoundError) Error() string {
	if e.Rev != "" {
		return fmt.Sprintf("[%s] document %s revision %s", ErrCodeNotFound, e.ID, e.Rev)
	}
	return fmt.Sprintf("[%s] document %s", ErrCodeNotFound, e.ID)
}

// Code returns the error code.
func (e *NotFoundError) Code() string { return ErrCodeNotFound }

// IsConflict reports whether err is a ConflictError.
func IsConflict(err error) bool {
	var ce *ConflictError
	return errors.As(err, &ce)
}

// IsNotFound reports whether err is a NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}
