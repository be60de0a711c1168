package template

import (
	"errors"
	"fmt"
)

var (
	// ErrTemplateNotFound is returned when no layer holds the template.
	ErrTemplateNotFound = errors.New("template not found")

	// ErrInvalidIdentifier is returned for identifiers that are not a
	// relative slash-separated path.
	ErrInvalidIdentifier = errors.New("invalid template identifier")
)

// LoadError wraps a failure to read or decode a template.
type LoadError struct {
	Identifier string
	Object     int // index in objects, -1 for the document itself
	Err        error
}

func (e *LoadError) Error() string {
	if e.Object >= 0 {
		return fmt.Sprintf("template %s: object %d: %v", e.Identifier, e.Object, e.Err)
	}
	return fmt.Sprintf("template %s: %v", e.Identifier, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}
