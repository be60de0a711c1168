package store

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// Submission
// =============================================================================

// Status is the result of one submission.
type Status string

const (
	StatusSubmitted Status = "submitted"
	StatusFailed    Status = "failed"
)

// Submission records one deployment of a scenario being sent to a cluster.
type Submission struct {
	ID          string
	Application string
	Namespace   string
	Deployment  string
	Objects     []string // "Kind/name" of every created object
	Status      Status
	Error       string
	CreatedAt   time.Time
}

// NewSubmission creates a submission with a fresh ID and timestamp.
func NewSubmission(application, namespace, deployment string, status Status) *Submission {
	return &Submission{
		ID:          uuid.NewString(),
		Application: application,
		Namespace:   namespace,
		Deployment:  deployment,
		Status:      status,
		CreatedAt:   time.Now().UTC(),
	}
}

// =============================================================================
// Store Interface
// =============================================================================

// Store defines the persistence interface for submission history.
type Store interface {
	RecordSubmission(ctx context.Context, s *Submission) error
	GetSubmission(ctx context.Context, id string) (*Submission, error)
	ListSubmissions(ctx context.Context, opts ListOptions) ([]Submission, error)
	ListSubmissionsByApplication(ctx context.Context, application string, opts ListOptions) ([]Submission, error)

	// Lifecycle
	Close() error
}

// =============================================================================
// Options
// =============================================================================

// ListOptions defines pagination options.
type ListOptions struct {
	Limit  int
	Offset int
}

// DefaultListOptions returns default list options.
func DefaultListOptions() ListOptions {
	return ListOptions{
		Limit:  100,
		Offset: 0,
	}
}

// Normalize ensures list options have valid values.
func (o ListOptions) Normalize() ListOptions {
	if o.Limit <= 0 {
		o.Limit = 100
	}
	if o.Limit > 1000 {
		o.Limit = 1000
	}
	if o.Offset < 0 {
		o.Offset = 0
	}
	return o
}
