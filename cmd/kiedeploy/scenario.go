package main

import (
	"errors"
	"fmt"
	"maps"
	"os"
	"slices"

	"github.com/artpar/kiedeploy/internal/core/builder"
	"github.com/artpar/kiedeploy/internal/core/deployment"
	"github.com/artpar/kiedeploy/internal/core/naming"
	"github.com/artpar/kiedeploy/internal/core/scenario"
	"gopkg.in/yaml.v3"
)

// Deployment types a scenario file can declare.
const (
	TypeKieServer  = "kieserver"
	TypeMySQL      = "mysql"
	TypePostgreSQL = "postgresql"
)

// ErrInvalidScenario is returned for scenario files that fail validation.
var ErrInvalidScenario = errors.New("invalid scenario")

// ScenarioFile is the YAML definition of a scenario.
type ScenarioFile struct {
	ApplicationName string            `yaml:"applicationName"`
	Deployments     []DeploymentEntry `yaml:"deployments"`
}

// DeploymentEntry declares one deployment of a scenario file.
type DeploymentEntry struct {
	Name      string            `yaml:"name"`
	Type      string            `yaml:"type"`
	Database  string            `yaml:"database,omitempty"`
	User      string            `yaml:"user,omitempty"`
	Password  string            `yaml:"password,omitempty"`
	Hostname  string            `yaml:"hostname,omitempty"`
	Replicas  int32             `yaml:"replicas,omitempty"`
	Env       map[string]string `yaml:"env,omitempty"`
	ConnectTo string            `yaml:"connectTo,omitempty"`
}

func (e DeploymentEntry) isDatabase() bool {
	return e.Type == TypeMySQL || e.Type == TypePostgreSQL
}

// LoadScenarioFile reads and validates a scenario file.
func LoadScenarioFile(path string) (*ScenarioFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario %s: %w", path, err)
	}
	var f ScenarioFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse scenario %s: %w", path, err)
	}
	if err := f.Validate(); err != nil {
		return nil, err
	}
	return &f, nil
}

// Validate checks names, types and connectTo references.
func (f *ScenarioFile) Validate() error {
	if f.ApplicationName != "" && !naming.IsValid(f.ApplicationName) {
		return fmt.Errorf("%w: applicationName %q is not a DNS-1123 label", ErrInvalidScenario, f.ApplicationName)
	}
	if len(f.Deployments) == 0 {
		return fmt.Errorf("%w: no deployments", ErrInvalidScenario)
	}

	seen := make(map[string]DeploymentEntry, len(f.Deployments))
	for i, e := range f.Deployments {
		if e.Name == "" {
			return fmt.Errorf("%w: deployment %d has no name", ErrInvalidScenario, i)
		}
		if _, dup := seen[e.Name]; dup {
			return fmt.Errorf("%w: deployment %q declared twice", ErrInvalidScenario, e.Name)
		}
		switch e.Type {
		case TypeKieServer, TypeMySQL, TypePostgreSQL:
		default:
			return fmt.Errorf("%w: deployment %q has unknown type %q", ErrInvalidScenario, e.Name, e.Type)
		}
		if e.ConnectTo != "" {
			if e.Type != TypeKieServer {
				return fmt.Errorf("%w: deployment %q: only %s deployments can connect to a database", ErrInvalidScenario, e.Name, TypeKieServer)
			}
			peer, ok := seen[e.ConnectTo]
			if !ok || !peer.isDatabase() {
				return fmt.Errorf("%w: deployment %q connects to %q, which is not a database declared before it", ErrInvalidScenario, e.Name, e.ConnectTo)
			}
		}
		seen[e.Name] = e
	}
	return nil
}

// Build runs the builders for every entry in file order and assembles the
// scenario. A missing application name is generated.
func (f *ScenarioFile) Build(opts builder.Options) (*scenario.Scenario, error) {
	built := make(map[string]*deployment.Deployment, len(f.Deployments))
	sb := scenario.NewBuilder()

	for _, e := range f.Deployments {
		d, err := buildEntry(e, opts, built)
		if err != nil {
			return nil, fmt.Errorf("deployment %s: %w", e.Name, err)
		}
		built[e.Name] = d
		sb.WithDeployment(d)
	}

	name := f.ApplicationName
	if name == "" {
		name = naming.ApplicationName("kie")
	}
	return sb.WithApplicationName(name).Build()
}

func buildEntry(e DeploymentEntry, opts builder.Options, built map[string]*deployment.Deployment) (*deployment.Deployment, error) {
	switch e.Type {
	case TypeMySQL:
		m, err := builder.NewMySQLBuilder(opts)
		if err != nil {
			return nil, err
		}
		if e.Database != "" {
			m.WithDatabaseName(e.Database)
		}
		if e.User != "" {
			m.WithDatabaseUser(e.User, e.Password)
		}
		return m.Build()

	case TypePostgreSQL:
		p, err := builder.NewPostgreSQLBuilder(opts)
		if err != nil {
			return nil, err
		}
		if e.Database != "" {
			p.WithDatabaseName(e.Database)
		}
		if e.User != "" {
			p.WithDatabaseUser(e.User, e.Password)
		}
		return p.Build()

	default:
		s, err := builder.NewServerBuilder(opts)
		if err != nil {
			return nil, err
		}
		if e.User != "" {
			s.WithKieServerUser(e.User, e.Password)
		}
		if e.Hostname != "" {
			s.WithHostname(e.Hostname)
		}
		if e.Replicas > 0 {
			s.WithReplicas(e.Replicas)
		}
		for _, name := range slices.Sorted(maps.Keys(e.Env)) {
			s.WithEnv(name, e.Env[name])
		}
		if e.ConnectTo != "" {
			if err := s.ConnectToDatabase(built[e.ConnectTo]); err != nil {
				return nil, err
			}
		}
		return s.Build()
	}
}
