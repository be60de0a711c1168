// Package bundle holds the resource bundle: an ordered collection of
// Kubernetes-style objects plus the substitutable parameters of a template.
// This is part of the Functional Core - no I/O.
package bundle

import (
	"errors"
	"fmt"
)

// =============================================================================
// Error Types
// =============================================================================

var (
	// ErrDuplicateName is returned when an object with the same kind and name
	// is already part of the bundle.
	ErrDuplicateName = errors.New("object with this kind and name already exists")

	// ErrEmptyName is returned when an object without a name is added.
	ErrEmptyName = errors.New("object name is required")

	// ErrUnknownKind is returned when the kind of an object cannot be resolved.
	ErrUnknownKind = errors.New("object kind cannot be resolved")

	// ErrDuplicateParameter is returned when a parameter name is declared twice.
	ErrDuplicateParameter = errors.New("parameter with this name already exists")

	// ErrIndexOutOfRange is returned by ReplaceObject for a bad index.
	ErrIndexOutOfRange = errors.New("object index out of range")
)

// DuplicateNameError reports a (kind, name) pair that is already taken.
type DuplicateNameError struct {
	Bundle string
	Kind   Kind
	Name   string
}

func (e *DuplicateNameError) Error() string {
	if e.Bundle != "" {
		return fmt.Sprintf("bundle %s: %s %q already exists", e.Bundle, e.Kind, e.Name)
	}
	return fmt.Sprintf("%s %q already exists", e.Kind, e.Name)
}

func (e *DuplicateNameError) Unwrap() error {
	return ErrDuplicateName
}
