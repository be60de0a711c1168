// Package store persists the submission history of deployed scenarios.
package store

import (
	"errors"
	"fmt"
)

// =============================================================================
// Error Types
// =============================================================================

var (
	ErrNotFound         = errors.New("submission not found")
	ErrDuplicateID      = errors.New("submission already recorded")
	ErrConnectionFailed = errors.New("history database unavailable")
	ErrMigrationFailed  = errors.New("history migration failed")

	// ErrInvalidData covers rows whose object list or timestamp cannot be
	// decoded.
	ErrInvalidData = errors.New("invalid history row")
)

// StoreError carries the failing operation and, when known, the submission.
type StoreError struct {
	Op      string
	Entity  string
	ID      string
	Message string
	Err     error
}

func (e *StoreError) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("%s %s %s: %s", e.Op, e.Entity, e.ID, e.Message)
	}
	if e.Entity != "" {
		return fmt.Sprintf("%s %s: %s", e.Op, e.Entity, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Message)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// NewStoreError creates a new StoreError.
func NewStoreError(op, entity, id, message string, err error) *StoreError {
	return &StoreError{
		Op:      op,
		Entity:  entity,
		ID:      id,
		Message: message,
		Err:     err,
	}
}
