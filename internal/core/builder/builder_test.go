package builder

import (
	"errors"
	"strings"
	"testing"

	"github.com/artpar/kiedeploy/internal/core/bundle"
	"github.com/artpar/kiedeploy/internal/core/deployment"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
)

// =============================================================================
// Test Fixtures
// =============================================================================

type mapResolver map[string]string

func (m mapResolver) Get(key string) (string, bool) {
	v, ok := m[key]
	return v, ok
}

type mapSource map[string]func() *bundle.Bundle

func (m mapSource) LoadBundle(identifier string) (*bundle.Bundle, error) {
	fn, ok := m[identifier]
	if !ok {
		return nil, errors.New("no template " + identifier)
	}
	return fn(), nil
}

func envOf(t *testing.T, d *deployment.Deployment, name string) string {
	t.Helper()
	v, err := d.EnvironmentVariableValue(name)
	require.NoError(t, err)
	return v
}

func primaryContainer(t *testing.T, d *deployment.Deployment) *corev1.Container {
	t.Helper()
	require.Len(t, d.Workloads(), 1)
	c, ok := deployment.PrimaryContainer(d.Workloads()[0])
	require.True(t, ok)
	return c
}

// recordingSteps wraps Base and records the order Configure calls steps in.
type recordingSteps struct {
	Base
	calls  []string
	failAt string
}

func (r *recordingSteps) record(step string) error {
	r.calls = append(r.calls, step)
	if step == r.failAt {
		return errors.New("boom")
	}
	return nil
}

func (r *recordingSteps) InitDefaultValues() error { return r.record(StepInitDefaultValues) }
func (r *recordingSteps) ConfigureWorkload() error { return r.record(StepConfigureWorkload) }
func (r *recordingSteps) ConfigureService() error { return r.record(StepConfigureService) }
func (r *recordingSteps) ConfigureRoute() error { return r.record(StepConfigureRoute) }
func (r *recordingSteps) ConfigureLivenessProbe() error {
	return r.record(StepConfigureLivenessProbe)
}
func (r *recordingSteps) ConfigureReadinessProbe() error {
	return r.record(StepConfigureReadinessProbe)
}

// =============================================================================
// Configure Tests
// =============================================================================

func TestConfigure_StepOrder(t *testing.T) {
	r := &recordingSteps{Base: newBase(bundle.New("rec"), "rec")}

	require.NoError(t, Configure(r))

	assert.Equal(t, []string{
		StepInitDefaultValues,
		StepConfigureWorkload,
		StepConfigureService,
		StepConfigureRoute,
		StepConfigureLivenessProbe,
		StepConfigureReadinessProbe,
	}, r.calls)
}

func TestConfigure_RunsOnce(t *testing.T) {
	r := &recordingSteps{Base: newBase(bundle.New("rec"), "rec")}
	require.NoError(t, Configure(r))

	err := Configure(r)
	assert.ErrorIs(t, err, ErrAlreadyConfigured)
	assert.Len(t, r.calls, 6)
}

func TestConfigure_StopsAtFailingStep(t *testing.T) {
	r := &recordingSteps{Base: newBase(bundle.New("rec"), "rec"), failAt: StepConfigureService}

	err := Configure(r)
	require.Error(t, err)

	var stepErr *StepError
	require.True(t, errors.As(err, &stepErr))
	assert.Equal(t, StepConfigureService, stepErr.Step)
	assert.Equal(t, "rec", stepErr.Builder)
	assert.Equal(t, []string{StepInitDefaultValues, StepConfigureWorkload, StepConfigureService}, r.calls)

	_, buildErr := r.Build()
	assert.ErrorIs(t, buildErr, err)
}

func TestBuild_NotConfigured(t *testing.T) {
	s, err := newServerBuilder(Options{})
	require.NoError(t, err)

	_, err = s.Build()
	assert.ErrorIs(t, err, ErrNotConfigured)
}

// =============================================================================
// Step Ordering Tests
// =============================================================================

func TestServerBuilder_ProbeBeforeDefaultsFails(t *testing.T) {
	s, err := newServerBuilder(Options{})
	require.NoError(t, err)

	err = s.ConfigureLivenessProbe()
	require.Error(t, err)
	assert.ErrorIs(t, err, deployment.ErrEnvVarNotFound)
	assert.Contains(t, err.Error(), EnvKieServerUser)
}

func TestServerBuilder_NoStateSharedBetweenBuilders(t *testing.T) {
	first, err := NewServerBuilder(Options{})
	require.NoError(t, err)
	first.WithKieServerUser("alice", "alice-pwd")

	second, err := newServerBuilder(Options{})
	require.NoError(t, err)

	// Defaults staged but the workload does not exist yet.
	require.NoError(t, second.InitDefaultValues())
	assert.ErrorIs(t, second.ConfigureReadinessProbe(), deployment.ErrEnvVarNotFound)

	require.NoError(t, second.ConfigureWorkload())
	require.NoError(t, second.ConfigureReadinessProbe())
	c := primaryContainer(t, second.Deployment())
	command := strings.Join(c.ReadinessProbe.Exec.Command, " ")
	assert.Contains(t, command, defaultKieServerUser)
	assert.NotContains(t, command, "alice")
}

// =============================================================================
// Server Builder Tests
// =============================================================================

func TestNewServerBuilder(t *testing.T) {
	opts := Options{Config: mapResolver{
		"kieserver.image":  "quay.io/kiegroup/kie-server-showcase",
		"kieserver.tag":    "7.74.1.Final",
		"kieserver.memory": "1Gi",
		"kieserver.user":   "admin",
	}}

	s, err := NewServerBuilder(opts)
	require.NoError(t, err)
	d, err := s.Build()
	require.NoError(t, err)

	c := primaryContainer(t, d)
	assert.Equal(t, "quay.io/kiegroup/kie-server-showcase:7.74.1.Final", c.Image)
	assert.Equal(t, "1Gi", c.Resources.Limits.Memory().String())
	require.Len(t, c.Ports, 2)
	assert.Equal(t, int32(8080), c.Ports[0].ContainerPort)
	assert.Equal(t, int32(8443), c.Ports[1].ContainerPort)

	assert.Equal(t, "admin", envOf(t, d, EnvKieServerUser))
	assert.Equal(t, defaultKieServerPassword, envOf(t, d, EnvKieServerPassword))
	assert.Equal(t, "${APPLICATION_NAME}-kieserver", envOf(t, d, EnvKieServerID))

	require.Len(t, d.Services(), 1)
	assert.Equal(t, "${APPLICATION_NAME}-kieserver", d.Services()[0].Name)
	assert.Len(t, d.Services()[0].Spec.Ports, 2)

	require.Len(t, d.UnsecureRoutes(), 1)
	require.Len(t, d.SecureRoutes(), 1)
	assert.Equal(t, "secure-${APPLICATION_NAME}-kieserver", d.SecureRoutes()[0].Name)
	assert.Equal(t, bundle.TLSTerminationPassthrough, d.SecureRoutes()[0].Spec.TLS.Termination)
	assert.Equal(t, []string{"${APPLICATION_NAME}-kieserver"}, serviceNames(d.SecureServices()))
	assert.Equal(t, []string{"${APPLICATION_NAME}-kieserver"}, serviceNames(d.UnsecureServices()))

	require.NotNil(t, c.LivenessProbe)
	assert.Contains(t, strings.Join(c.LivenessProbe.Exec.Command, " "), "'admin:"+defaultKieServerPassword+"'")
	assert.Contains(t, strings.Join(c.ReadinessProbe.Exec.Command, " "), "/services/rest/server/readycheck")
}

func TestNewServerBuilder_KeepsTemplateObjects(t *testing.T) {
	src := mapSource{"kieserver": func() *bundle.Bundle {
		b := bundle.New("kieserver")
		_ = b.AddParameter(bundle.Parameter{Name: deployment.ApplicationNameParameter, Required: true})
		_ = b.AddObject(&corev1.ServiceAccount{ObjectMeta: metav1.ObjectMeta{Name: "${APPLICATION_NAME}-kieserver"}})
		return b
	}}

	s, err := NewServerBuilder(Options{Source: src})
	require.NoError(t, err)
	d, err := s.Build()
	require.NoError(t, err)

	objs := d.Bundle().Objects()
	require.Len(t, objs, 5)
	assert.Equal(t, bundle.KindServiceAccount, bundle.KindOf(objs[0]))
	assert.Equal(t, bundle.KindWorkload, bundle.KindOf(objs[1]))
	assert.Equal(t, "${APPLICATION_NAME}-kieserver", d.Workloads()[0].Spec.Template.Spec.ServiceAccountName)
	_, ok := d.Bundle().Parameter(deployment.ApplicationNameParameter)
	assert.True(t, ok)
}

func TestNewServerBuilder_TemplateError(t *testing.T) {
	_, err := NewServerBuilder(Options{Source: mapSource{}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "kieserver")
}

func TestNewServerBuilder_InvalidMemory(t *testing.T) {
	_, err := NewServerBuilder(Options{Config: mapResolver{"kieserver.memory": "lots"}})

	var stepErr *StepError
	require.True(t, errors.As(err, &stepErr))
	assert.Equal(t, StepConfigureWorkload, stepErr.Step)
}

func TestServerBuilder_WithKieServerUserRerendersProbes(t *testing.T) {
	s, err := NewServerBuilder(Options{})
	require.NoError(t, err)

	d, err := s.WithKieServerUser("bob", "bob-pwd").Build()
	require.NoError(t, err)

	c := primaryContainer(t, d)
	assert.Equal(t, "bob", envOf(t, d, EnvKieServerUser))
	assert.Contains(t, strings.Join(c.LivenessProbe.Exec.Command, " "), "'bob:bob-pwd'")
	assert.Contains(t, strings.Join(c.ReadinessProbe.Exec.Command, " "), "'bob:bob-pwd'")
	assert.NotContains(t, strings.Join(c.LivenessProbe.Exec.Command, " "), defaultKieServerUser)
}

func TestServerBuilder_Setters(t *testing.T) {
	s, err := NewServerBuilder(Options{})
	require.NoError(t, err)

	d, err := s.
		WithHostname("kie.example.com").
		WithReplicas(3).
		WithEnv("JAVA_OPTS", "-Xmx1g").
		WithEnv("JAVA_OPTS", "-Xmx2g").
		Build()
	require.NoError(t, err)

	for _, r := range d.Routes() {
		assert.Equal(t, "kie.example.com", r.Spec.Host)
	}
	assert.Equal(t, int32(3), *d.Workloads()[0].Spec.Replicas)
	assert.Equal(t, "-Xmx2g", envOf(t, d, "JAVA_OPTS"))

	count := 0
	for _, env := range primaryContainer(t, d).Env {
		if env.Name == "JAVA_OPTS" {
			count++
		}
	}
	assert.Equal(t, 1, count)
}

// =============================================================================
// Database Builder Tests
// =============================================================================

func TestNewMySQLBuilder(t *testing.T) {
	m, err := NewMySQLBuilder(Options{Config: mapResolver{"mysql.image": "mysql", "mysql.tag": "8.0"}})
	require.NoError(t, err)

	d, err := m.WithDatabaseName("foo").WithDatabaseUser("bar", "baz").Build()
	require.NoError(t, err)

	c := primaryContainer(t, d)
	assert.Equal(t, "mysql:8.0", c.Image)
	require.Len(t, c.Ports, 1)
	assert.Equal(t, int32(3306), c.Ports[0].ContainerPort)
	assert.Equal(t, "foo", envOf(t, d, EnvMySQLDatabase))
	assert.Equal(t, "bar", envOf(t, d, EnvMySQLUser))
	assert.Equal(t, "baz", envOf(t, d, EnvMySQLPassword))

	assert.Empty(t, d.Routes())
	require.Len(t, d.Services(), 1)
	assert.Equal(t, int32(3306), d.Services()[0].Spec.Ports[0].Port)

	require.Len(t, d.VolumeClaims(), 1)
	claim := d.VolumeClaims()[0].Name
	assert.Equal(t, "${APPLICATION_NAME}-mysql-claim", claim)
	require.Len(t, c.VolumeMounts, 1)
	assert.Equal(t, "/var/lib/mysql/data", c.VolumeMounts[0].MountPath)
	volumes := d.Workloads()[0].Spec.Template.Spec.Volumes
	require.Len(t, volumes, 1)
	assert.Equal(t, claim, volumes[0].PersistentVolumeClaim.ClaimName)

	assert.NotNil(t, c.LivenessProbe.TCPSocket)
	assert.Contains(t, strings.Join(c.ReadinessProbe.Exec.Command, " "), "$MYSQL_USER")
}

func TestNewMySQLBuilder_ReusesTemplateClaim(t *testing.T) {
	src := mapSource{"mysql": func() *bundle.Bundle {
		b := bundle.New("mysql")
		_ = b.AddObject(volumeClaim("${APPLICATION_NAME}-mysql-claim"))
		return b
	}}

	m, err := NewMySQLBuilder(Options{Source: src})
	require.NoError(t, err)
	d, err := m.Build()
	require.NoError(t, err)

	assert.Len(t, d.VolumeClaims(), 1)
}

func TestNewPostgreSQLBuilder(t *testing.T) {
	p, err := NewPostgreSQLBuilder(Options{})
	require.NoError(t, err)

	d, err := p.WithDatabaseName("jbpm").Build()
	require.NoError(t, err)

	c := primaryContainer(t, d)
	assert.Equal(t, "postgresql:latest", c.Image)
	assert.Equal(t, int32(5432), c.Ports[0].ContainerPort)
	assert.Equal(t, "jbpm", envOf(t, d, EnvPostgreSQLDatabase))
	assert.Equal(t, defaultDatabaseUser, envOf(t, d, EnvPostgreSQLUser))
	assert.Equal(t, "/var/lib/pgsql/data", c.VolumeMounts[0].MountPath)
	assert.Empty(t, d.Routes())
}

func serviceNames(services []*corev1.Service) []string {
	out := make([]string, 0, len(services))
	for _, s := range services {
		out = append(out, s.Name)
	}
	return out
}
