// Package scenario aggregates deployments into one named application.
package scenario

import (
	"fmt"
	"slices"

	"github.com/artpar/kiedeploy/internal/core/bundle"
	"github.com/artpar/kiedeploy/internal/core/deployment"
)

// Scenario is a set of deployments submitted together, in insertion order.
type Scenario struct {
	ApplicationName string

	deployments []*deployment.Deployment
}

// Deployments returns the deployments in insertion order.
func (s *Scenario) Deployments() []*deployment.Deployment {
	return slices.Clone(s.deployments)
}

// Routes returns the routes of every deployment, in deployment order.
func (s *Scenario) Routes() []*bundle.Route {
	var out []*bundle.Route
	for _, d := range s.deployments {
		out = append(out, d.Routes()...)
	}
	return out
}

// Builder collects deployments and an optional application name.
type Builder struct {
	applicationName string
	deployments     []*deployment.Deployment
}

// NewBuilder creates an empty scenario builder.
func NewBuilder() *Builder {
	return &Builder{}
}

// WithDeployment appends d.
func (b *Builder) WithDeployment(d *deployment.Deployment) *Builder {
	b.deployments = append(b.deployments, d)
	return b
}

// WithApplicationName records the name every deployment is renamed with on
// Build.
func (b *Builder) WithApplicationName(name string) *Builder {
	b.applicationName = name
	return b
}

// Build returns the scenario, renaming every deployment first when an
// application name was recorded. Renaming cannot be undone; the builder
// should not be built twice.
func (b *Builder) Build() (*Scenario, error) {
	if b.applicationName != "" {
		for _, d := range b.deployments {
			if err := d.RenameWithApplicationPrefix(b.applicationName); err != nil {
				return nil, fmt.Errorf("failed to rename deployment %s: %w", d.Name(), err)
			}
		}
	}
	return &Scenario{
		ApplicationName: b.applicationName,
		deployments:     slices.Clone(b.deployments),
	}, nil
}
