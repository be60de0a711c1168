package builder

import (
	"fmt"

	"github.com/artpar/kiedeploy/internal/core/bundle"
	corev1 "k8s.io/api/core/v1"
	"k8s.io/apimachinery/pkg/util/intstr"
)

// KIE server env and defaults.
const (
	EnvKieServerUser     = "KIE_SERVER_USER"
	EnvKieServerPassword = "KIE_SERVER_PWD"
	EnvKieServerID       = "KIE_SERVER_ID"

	kieServerComponent = "kieserver"
	kieServerHTTPPort  = int32(8080)
	kieServerHTTPSPort = int32(8443)

	defaultKieServerUser     = "executionUser"
	defaultKieServerPassword = "executionUser1!"
)

// ServerBuilder builds a KIE server deployment: one workload listening on
// 8080 and 8443, a Service, an unsecure Route and a secure passthrough Route.
type ServerBuilder struct {
	Base
	opts Options
}

// NewServerBuilder loads the "kieserver" template and configures it.
func NewServerBuilder(opts Options) (*ServerBuilder, error) {
	s, err := newServerBuilder(opts)
	if err != nil {
		return nil, err
	}
	if err := Configure(s); err != nil {
		return nil, err
	}
	return s, nil
}

func newServerBuilder(opts Options) (*ServerBuilder, error) {
	b, err := opts.load(kieServerComponent)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s template: %w", kieServerComponent, err)
	}
	s := &ServerBuilder{Base: newBase(b, kieServerComponent), opts: opts}
	s.Image = opts.image(kieServerComponent)
	s.Port = kieServerHTTPPort
	s.Memory = opts.property("kieserver.memory", "")
	return s, nil
}

// SecureRouteName is the name of the TLS route.
func (s *ServerBuilder) SecureRouteName() string {
	return "secure-" + s.ObjectName()
}

// =============================================================================
// Steps
// =============================================================================

// InitDefaultValues stages the server credentials and id.
func (s *ServerBuilder) InitDefaultValues() error {
	s.SetDefault(EnvKieServerUser, s.opts.property("kieserver.user", defaultKieServerUser))
	s.SetDefault(EnvKieServerPassword, s.opts.property("kieserver.password", defaultKieServerPassword))
	s.SetDefault(EnvKieServerID, s.ObjectName())
	return nil
}

// ConfigureWorkload adds the https port to the default workload and runs it
// under the template's service account, when there is one.
func (s *ServerBuilder) ConfigureWorkload() error {
	if err := s.Base.ConfigureWorkload(); err != nil {
		return err
	}
	w, c, err := s.workload()
	if err != nil {
		return err
	}
	if _, ok := s.Deployment().Bundle().Object(bundle.KindServiceAccount, s.ObjectName()); ok {
		w.Spec.Template.Spec.ServiceAccountName = s.ObjectName()
	}
	c.Ports = append(c.Ports, corev1.ContainerPort{
		Name:          "https",
		ContainerPort: kieServerHTTPSPort,
		Protocol:      corev1.ProtocolTCP,
	})
	return nil
}

// ConfigureService exposes both ports.
func (s *ServerBuilder) ConfigureService() error {
	if err := s.Base.ConfigureService(); err != nil {
		return err
	}
	svc := s.Deployment().Services()
	for _, candidate := range svc {
		if candidate.Name != s.ObjectName() {
			continue
		}
		candidate.Spec.Ports = append(candidate.Spec.Ports, corev1.ServicePort{
			Name:       "https",
			Port:       kieServerHTTPSPort,
			TargetPort: intstr.FromInt32(kieServerHTTPSPort),
			Protocol:   corev1.ProtocolTCP,
		})
	}
	return nil
}

// ConfigureRoute adds the unsecure route and the secure passthrough route,
// both targeting the server Service.
func (s *ServerBuilder) ConfigureRoute() error {
	if err := s.Base.ConfigureRoute(); err != nil {
		return err
	}
	tls := &bundle.TLSConfig{Termination: bundle.TLSTerminationPassthrough}
	return s.Deployment().Bundle().AddObject(s.route(s.SecureRouteName(), "https", tls))
}

// ConfigureLivenessProbe embeds the current credentials into a curl check.
func (s *ServerBuilder) ConfigureLivenessProbe() error {
	probe, err := s.curlProbe("healthcheck", 180)
	if err != nil {
		return err
	}
	_, c, err := s.workload()
	if err != nil {
		return err
	}
	c.LivenessProbe = probe
	return nil
}

// ConfigureReadinessProbe embeds the current credentials into a curl check.
func (s *ServerBuilder) ConfigureReadinessProbe() error {
	probe, err := s.curlProbe("readycheck", 60)
	if err != nil {
		return err
	}
	_, c, err := s.workload()
	if err != nil {
		return err
	}
	c.ReadinessProbe = probe
	return nil
}

// curlProbe reads the credentials through the deployment, so it fails
// before the workload carries them.
func (s *ServerBuilder) curlProbe(check string, initialDelay int32) (*corev1.Probe, error) {
	user, err := s.Deployment().EnvironmentVariableValue(EnvKieServerUser)
	if err != nil {
		return nil, err
	}
	pwd, err := s.Deployment().EnvironmentVariableValue(EnvKieServerPassword)
	if err != nil {
		return nil, err
	}
	url := fmt.Sprintf("http://localhost:%d/services/rest/server/%s", kieServerHTTPPort, check)
	return execProbe([]string{
		"/bin/bash", "-c",
		fmt.Sprintf("curl --fail --silent -u '%s:%s' %s", user, pwd, url),
	}, initialDelay), nil
}

// =============================================================================
// Setters
// =============================================================================

// WithKieServerUser sets the server credentials and re-renders the probes
// that embed them.
func (s *ServerBuilder) WithKieServerUser(user, password string) *ServerBuilder {
	s.Deployment().UpsertEnvironmentVariable(EnvKieServerUser, user)
	s.Deployment().UpsertEnvironmentVariable(EnvKieServerPassword, password)
	s.fail(s.ConfigureLivenessProbe())
	s.fail(s.ConfigureReadinessProbe())
	return s
}

// WithHostname sets the host of both routes.
func (s *ServerBuilder) WithHostname(host string) *ServerBuilder {
	for _, r := range s.Deployment().Routes() {
		r.Spec.Host = host
	}
	return s
}

// WithReplicas sets the replica count of the workload.
func (s *ServerBuilder) WithReplicas(replicas int32) *ServerBuilder {
	w, _, err := s.workload()
	if err != nil {
		s.fail(err)
		return s
	}
	w.Spec.Replicas = &replicas
	return s
}

// WithEnv upserts an arbitrary env variable.
func (s *ServerBuilder) WithEnv(name, value string) *ServerBuilder {
	s.Deployment().UpsertEnvironmentVariable(name, value)
	return s
}
