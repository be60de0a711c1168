package deployment

import (
	"errors"
	"fmt"
)

// =============================================================================
// Error Types
// =============================================================================

var (
	// ErrEnvVarNotFound is returned when no workload declares a required
	// environment variable.
	ErrEnvVarNotFound = errors.New("environment variable not found")

	// ErrInvalidApplicationName is returned when renaming with an empty name.
	ErrInvalidApplicationName = errors.New("application name is required")
)

// EnvVarNotFoundError names the variable that was looked up and the
// deployment it was missing from.
type EnvVarNotFoundError struct {
	Deployment string
	Name       string
}

func (e *EnvVarNotFoundError) Error() string {
	if e.Deployment != "" {
		return fmt.Sprintf("environment variable %s is not declared by any workload of deployment %s", e.Name, e.Deployment)
	}
	return fmt.Sprintf("environment variable %s is not declared by any workload", e.Name)
}

func (e *EnvVarNotFoundError) Unwrap() error {
	return ErrEnvVarNotFound
}
