// Package deployer submits a scenario to a cluster: namespace first, then
// every deployment in order, then an optional wait for route endpoints.
package deployer

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/artpar/kiedeploy/internal/core/bundle"
	"github.com/artpar/kiedeploy/internal/core/scenario"
	"github.com/artpar/kiedeploy/internal/shell/cluster"
	"github.com/artpar/kiedeploy/internal/shell/store"
)

// Cluster is the submission side of a cluster client.
type Cluster interface {
	CreateNamespace(ctx context.Context, name string) error
	Submit(ctx context.Context, b *bundle.Bundle, namespace string) (cluster.Outcome, error)
}

// Waiter blocks until route endpoints are available.
type Waiter interface {
	WaitForRoutes(ctx context.Context, routes []*bundle.Route) error
}

// History records submissions.
type History interface {
	RecordSubmission(ctx context.Context, s *store.Submission) error
}

// =============================================================================
// Deployer - Manages Scenario Submission
// =============================================================================

// Deployer submits scenarios. Waiter and History are optional.
type Deployer struct {
	cluster Cluster
	waiter  Waiter
	history History
	logger  *slog.Logger
}

// New creates a deployer.
func New(c Cluster, waiter Waiter, history History, logger *slog.Logger) *Deployer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Deployer{
		cluster: c,
		waiter:  waiter,
		history: history,
		logger:  logger.With("component", "deployer"),
	}
}

// Deploy creates namespace once and submits each deployment of sc in
// insertion order. The first failure stops the run; nothing is retried or
// rolled back. Outcomes of the deployments submitted so far are returned
// either way.
func (d *Deployer) Deploy(ctx context.Context, sc *scenario.Scenario, namespace string) ([]cluster.Outcome, error) {
	deployments := sc.Deployments()
	d.logger.Info("deploying scenario",
		"application", sc.ApplicationName,
		"namespace", namespace,
		"deployments", len(deployments),
	)

	// 1. Namespace
	if err := d.cluster.CreateNamespace(ctx, namespace); err != nil {
		return nil, fmt.Errorf("failed to create namespace %s: %w", namespace, err)
	}

	// 2. Deployments, in order
	outcomes := make([]cluster.Outcome, 0, len(deployments))
	for _, dep := range deployments {
		outcome, err := d.cluster.Submit(ctx, dep.Bundle(), namespace)
		d.record(ctx, sc.ApplicationName, namespace, dep.Name(), outcome, err)
		if err != nil {
			return outcomes, fmt.Errorf("failed to submit deployment %s: %w", dep.Name(), err)
		}
		outcomes = append(outcomes, outcome)
	}

	// 3. Readiness
	if d.waiter != nil {
		if err := d.waiter.WaitForRoutes(ctx, sc.Routes()); err != nil {
			return outcomes, err
		}
	}

	d.logger.Info("scenario deployed",
		"application", sc.ApplicationName,
		"namespace", namespace,
	)
	return outcomes, nil
}

// record stores the submission. History failures are logged, not returned.
func (d *Deployer) record(ctx context.Context, application, namespace, name string, outcome cluster.Outcome, submitErr error) {
	if d.history == nil {
		return
	}

	status := store.StatusSubmitted
	if submitErr != nil {
		status = store.StatusFailed
	}
	sub := store.NewSubmission(application, namespace, name, status)
	for _, ref := range outcome.Objects {
		sub.Objects = append(sub.Objects, ref.Kind+"/"+ref.Name)
	}
	if submitErr != nil {
		sub.Error = submitErr.Error()
	}

	if err := d.history.RecordSubmission(ctx, sub); err != nil {
		d.logger.Warn("failed to record submission",
			"deployment", name,
			"error", err,
		)
	}
}
