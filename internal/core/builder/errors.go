package builder

import (
	"errors"
	"fmt"
)

// =============================================================================
// Error Types
// =============================================================================

var (
	// ErrAlreadyConfigured is returned when Configure runs twice on one builder.
	ErrAlreadyConfigured = errors.New("builder is already configured")

	// ErrNotConfigured is returned by Build before Configure has completed.
	ErrNotConfigured = errors.New("builder is not configured")

	// ErrNoWorkload is returned when a step needs the workload before
	// ConfigureWorkload has added it.
	ErrNoWorkload = errors.New("workload is not configured")

	// ErrBindingIncomplete is returned when a peer deployment lacks a value
	// needed for cross-deployment binding.
	ErrBindingIncomplete = errors.New("peer deployment is incomplete for binding")

	// ErrUnknownDatabase is returned when a peer deployment declares none of
	// the supported database variables.
	ErrUnknownDatabase = errors.New("peer deployment is not a supported database")
)

// StepError reports which construction step failed.
type StepError struct {
	Builder string
	Step    string
	Err     error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("builder %s: step %s failed: %v", e.Builder, e.Step, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}

// BindingIncompleteError names the peer and the value that was missing.
// It matches ErrBindingIncomplete and the underlying cause.
type BindingIncompleteError struct {
	Peer    string
	Missing string
	Err     error
}

func (e *BindingIncompleteError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("cannot bind to %s: missing %s: %v", e.Peer, e.Missing, e.Err)
	}
	return fmt.Sprintf("cannot bind to %s: missing %s", e.Peer, e.Missing)
}

func (e *BindingIncompleteError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrBindingIncomplete}
	}
	return []error{ErrBindingIncomplete, e.Err}
}
