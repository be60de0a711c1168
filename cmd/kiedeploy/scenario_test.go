package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/artpar/kiedeploy/internal/config"
	"github.com/artpar/kiedeploy/internal/core/builder"
	"github.com/artpar/kiedeploy/internal/core/naming"
	"github.com/artpar/kiedeploy/internal/shell/template"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const shopScenario = `
applicationName: shop
deployments:
  - name: db
    type: mysql
    database: orders
    user: shop
    password: secret
  - name: server
    type: kieserver
    user: admin
    password: admin1!
    hostname: kie.example.com
    replicas: 2
    env:
      JAVA_OPTS: -Xmx1g
    connectTo: db
`

func writeScenario(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scenario.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func testOptions(t *testing.T) builder.Options {
	t.Helper()
	resolver, err := config.Load("")
	require.NoError(t, err)
	return builder.Options{
		Config: resolver,
		Source: template.NewFSSource(nil, template.Embedded()),
	}
}

// =============================================================================
// Loading and Validation Tests
// =============================================================================

func TestLoadScenarioFile(t *testing.T) {
	f, err := LoadScenarioFile(writeScenario(t, shopScenario))
	require.NoError(t, err)

	assert.Equal(t, "shop", f.ApplicationName)
	require.Len(t, f.Deployments, 2)
	assert.Equal(t, TypeMySQL, f.Deployments[0].Type)
	assert.Equal(t, "orders", f.Deployments[0].Database)
	assert.Equal(t, int32(2), f.Deployments[1].Replicas)
	assert.Equal(t, map[string]string{"JAVA_OPTS": "-Xmx1g"}, f.Deployments[1].Env)
	assert.Equal(t, "db", f.Deployments[1].ConnectTo)
}

func TestLoadScenarioFile_Missing(t *testing.T) {
	_, err := LoadScenarioFile(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestLoadScenarioFile_Malformed(t *testing.T) {
	_, err := LoadScenarioFile(writeScenario(t, "deployments: [unclosed"))
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrInvalidScenario)
}

func TestScenarioFile_Validate(t *testing.T) {
	tests := []struct {
		name string
		file ScenarioFile
	}{
		{
			name: "no deployments",
			file: ScenarioFile{},
		},
		{
			name: "invalid application name",
			file: ScenarioFile{
				ApplicationName: "Shop_App",
				Deployments:     []DeploymentEntry{{Name: "s", Type: TypeKieServer}},
			},
		},
		{
			name: "missing name",
			file: ScenarioFile{Deployments: []DeploymentEntry{{Type: TypeKieServer}}},
		},
		{
			name: "duplicate name",
			file: ScenarioFile{Deployments: []DeploymentEntry{
				{Name: "s", Type: TypeKieServer},
				{Name: "s", Type: TypeMySQL},
			}},
		},
		{
			name: "unknown type",
			file: ScenarioFile{Deployments: []DeploymentEntry{{Name: "s", Type: "oracle"}}},
		},
		{
			name: "database connecting",
			file: ScenarioFile{Deployments: []DeploymentEntry{
				{Name: "a", Type: TypeMySQL},
				{Name: "b", Type: TypePostgreSQL, ConnectTo: "a"},
			}},
		},
		{
			name: "connect to unknown",
			file: ScenarioFile{Deployments: []DeploymentEntry{
				{Name: "s", Type: TypeKieServer, ConnectTo: "db"},
			}},
		},
		{
			name: "connect to later database",
			file: ScenarioFile{Deployments: []DeploymentEntry{
				{Name: "s", Type: TypeKieServer, ConnectTo: "db"},
				{Name: "db", Type: TypeMySQL},
			}},
		},
		{
			name: "connect to server",
			file: ScenarioFile{Deployments: []DeploymentEntry{
				{Name: "a", Type: TypeKieServer},
				{Name: "b", Type: TypeKieServer, ConnectTo: "a"},
			}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, tt.file.Validate(), ErrInvalidScenario)
		})
	}
}

// =============================================================================
// Build Tests
// =============================================================================

func TestScenarioFile_Build(t *testing.T) {
	f, err := LoadScenarioFile(writeScenario(t, shopScenario))
	require.NoError(t, err)

	sc, err := f.Build(testOptions(t))
	require.NoError(t, err)

	assert.Equal(t, "shop", sc.ApplicationName)
	deployments := sc.Deployments()
	require.Len(t, deployments, 2)
	db, server := deployments[0], deployments[1]

	require.Len(t, db.Workloads(), 1)
	assert.Equal(t, "shop-mysql", db.Workloads()[0].Name)
	require.Len(t, db.VolumeClaims(), 1)
	assert.Equal(t, "shop-mysql-claim", db.VolumeClaims()[0].Name)

	v, err := db.EnvironmentVariableValue(builder.EnvMySQLDatabase)
	require.NoError(t, err)
	assert.Equal(t, "orders", v)

	expected := map[string]string{
		builder.EnvKieServerUser:     "admin",
		builder.EnvKieServerPassword: "admin1!",
		builder.EnvKieDatabase:       "orders",
		builder.EnvKieUsername:       "shop",
		builder.EnvKiePassword:       "secret",
		builder.EnvKieServiceHost:    "shop-mysql",
		builder.EnvKieServicePort:    "3306",
		"JAVA_OPTS":                  "-Xmx1g",
	}
	for name, want := range expected {
		got, err := server.EnvironmentVariableValue(name)
		require.NoError(t, err, name)
		assert.Equal(t, want, got, name)
	}

	workloads := server.Workloads()
	require.Len(t, workloads, 1)
	assert.Equal(t, "shop-kieserver", workloads[0].Name)
	require.NotNil(t, workloads[0].Spec.Replicas)
	assert.Equal(t, int32(2), *workloads[0].Spec.Replicas)

	for _, r := range server.Routes() {
		assert.Equal(t, "kie.example.com", r.Spec.Host)
	}
	assert.Len(t, sc.Routes(), 2)
}

func TestScenarioFile_Build_PostgreSQL(t *testing.T) {
	f := &ScenarioFile{
		ApplicationName: "pg",
		Deployments: []DeploymentEntry{
			{Name: "db", Type: TypePostgreSQL, Database: "jbpm"},
			{Name: "server", Type: TypeKieServer, ConnectTo: "db"},
		},
	}
	require.NoError(t, f.Validate())

	sc, err := f.Build(testOptions(t))
	require.NoError(t, err)

	server := sc.Deployments()[1]
	host, err := server.EnvironmentVariableValue(builder.EnvKieServiceHost)
	require.NoError(t, err)
	assert.Equal(t, "pg-postgresql", host)

	port, err := server.EnvironmentVariableValue(builder.EnvKieServicePort)
	require.NoError(t, err)
	assert.Equal(t, "5432", port)

	database, err := server.EnvironmentVariableValue(builder.EnvKieDatabase)
	require.NoError(t, err)
	assert.Equal(t, "jbpm", database)
}

func TestScenarioFile_Build_GeneratesApplicationName(t *testing.T) {
	f := &ScenarioFile{Deployments: []DeploymentEntry{{Name: "server", Type: TypeKieServer}}}

	sc, err := f.Build(testOptions(t))
	require.NoError(t, err)

	assert.True(t, naming.IsValid(sc.ApplicationName), sc.ApplicationName)
	assert.Len(t, sc.ApplicationName, len("kie-")+naming.SuffixLength)
	workloads := sc.Deployments()[0].Workloads()
	require.Len(t, workloads, 1)
	assert.Equal(t, sc.ApplicationName+"-kieserver", workloads[0].Name)
}
