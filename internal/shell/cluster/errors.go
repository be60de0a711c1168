package cluster

import (
	"errors"
	"fmt"
)

var (
	// ErrNoKubeconfig is returned when no cluster configuration is found.
	ErrNoKubeconfig = errors.New("no kubernetes configuration found")

	// ErrEmptyNamespace is returned when submitting without a namespace.
	ErrEmptyNamespace = errors.New("namespace is required")
)

// SubmitError wraps a failed cluster API call.
type SubmitError struct {
	Op   string
	Kind string
	Name string
	Err  error
}

func (e *SubmitError) Error() string {
	if e.Kind != "" {
		return fmt.Sprintf("cluster %s %s %s: %v", e.Op, e.Kind, e.Name, e.Err)
	}
	return fmt.Sprintf("cluster %s %s: %v", e.Op, e.Name, e.Err)
}

func (e *SubmitError) Unwrap() error {
	return e.Err
}
