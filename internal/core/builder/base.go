package builder

import (
	"fmt"
	"slices"

	"github.com/artpar/kiedeploy/internal/core/bundle"
	"github.com/artpar/kiedeploy/internal/core/deployment"
	appsv1 "k8s.io/api/apps/v1"
	corev1 "k8s.io/api/core/v1"
	"k8s.io/apimachinery/pkg/api/resource"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/util/intstr"
)

// LabelDeployment ties a workload's pods to its Service selector.
const LabelDeployment = "deployment"

// Base holds the state shared by every builder variant and the default
// implementation of each step.
type Base struct {
	deployment *deployment.Deployment
	component  string

	// Image, Port, PortName and Memory are read by ConfigureWorkload and
	// ConfigureService. Variants set them before Configure runs.
	Image    string
	Port     int32
	PortName string
	Memory   string

	defaults   []corev1.EnvVar
	configured bool
	ready      bool
	err        error
}

func newBase(b *bundle.Bundle, component string) Base {
	return Base{
		deployment: deployment.New(b),
		component:  component,
		PortName:   "http",
	}
}

func (b *Base) base() *Base {
	return b
}

// Deployment returns the deployment under construction.
func (b *Base) Deployment() *deployment.Deployment {
	return b.deployment
}

// ObjectName is the name of the workload and its Service, still carrying the
// application name placeholder.
func (b *Base) ObjectName() string {
	return deployment.ApplicationNamePlaceholder + "-" + b.component
}

// SetDefault stages an env default for ConfigureWorkload. Once the workload
// exists it is upserted directly.
func (b *Base) SetDefault(name, value string) {
	b.defaults = slices.DeleteFunc(b.defaults, func(env corev1.EnvVar) bool {
		return env.Name == name
	})
	b.defaults = append(b.defaults, corev1.EnvVar{Name: name, Value: value})
	b.deployment.UpsertEnvironmentVariable(name, value)
}

// Build returns the finished deployment, or the first error recorded by
// Configure or by a setter.
func (b *Base) Build() (*deployment.Deployment, error) {
	if b.err != nil {
		return nil, b.err
	}
	if !b.ready {
		return nil, ErrNotConfigured
	}
	return b.deployment, nil
}

// fail records the first setter error; Build reports it.
func (b *Base) fail(err error) {
	if err != nil && b.err == nil {
		b.err = err
	}
}

// workload returns the workload added by ConfigureWorkload and its primary
// container.
func (b *Base) workload() (*appsv1.Deployment, *corev1.Container, error) {
	obj, ok := b.deployment.Bundle().Object(bundle.KindWorkload, b.ObjectName())
	if !ok {
		return nil, nil, ErrNoWorkload
	}
	w, ok := obj.(*appsv1.Deployment)
	if !ok {
		return nil, nil, fmt.Errorf("%w: %s is %T", ErrNoWorkload, b.ObjectName(), obj)
	}
	c, ok := deployment.PrimaryContainer(w)
	if !ok {
		return nil, nil, fmt.Errorf("%w: %s has no containers", ErrNoWorkload, b.ObjectName())
	}
	return w, c, nil
}

// =============================================================================
// Default Steps
// =============================================================================

// InitDefaultValues stages nothing.
func (b *Base) InitDefaultValues() error {
	return nil
}

// ConfigureWorkload appends a single-replica workload running Image with the
// staged defaults as its env.
func (b *Base) ConfigureWorkload() error {
	name := b.ObjectName()
	selector := map[string]string{LabelDeployment: name}

	container := corev1.Container{
		Name:            b.component,
		Image:           b.Image,
		ImagePullPolicy: corev1.PullIfNotPresent,
		Env:             slices.Clone(b.defaults),
	}
	if b.Port > 0 {
		container.Ports = []corev1.ContainerPort{{
			Name:          b.PortName,
			ContainerPort: b.Port,
			Protocol:      corev1.ProtocolTCP,
		}}
	}
	if b.Memory != "" {
		limit, err := resource.ParseQuantity(b.Memory)
		if err != nil {
			return fmt.Errorf("invalid memory limit %q: %w", b.Memory, err)
		}
		container.Resources.Limits = corev1.ResourceList{corev1.ResourceMemory: limit}
	}

	replicas := int32(1)
	w := &appsv1.Deployment{
		ObjectMeta: metav1.ObjectMeta{
			Name:   name,
			Labels: map[string]string{LabelDeployment: name},
		},
		Spec: appsv1.DeploymentSpec{
			Replicas: &replicas,
			Selector: &metav1.LabelSelector{MatchLabels: selector},
			Strategy: appsv1.DeploymentStrategy{Type: appsv1.RecreateDeploymentStrategyType},
			Template: corev1.PodTemplateSpec{
				ObjectMeta: metav1.ObjectMeta{
					Name:   name,
					Labels: map[string]string{LabelDeployment: name},
				},
				Spec: corev1.PodSpec{
					RestartPolicy: corev1.RestartPolicyAlways,
					Containers:    []corev1.Container{container},
				},
			},
		},
	}
	return b.deployment.Bundle().AddObject(w)
}

// ConfigureService appends a Service exposing the primary port.
func (b *Base) ConfigureService() error {
	return b.deployment.Bundle().AddObject(&corev1.Service{
		ObjectMeta: metav1.ObjectMeta{Name: b.ObjectName()},
		Spec: corev1.ServiceSpec{
			Selector: map[string]string{LabelDeployment: b.ObjectName()},
			Ports: []corev1.ServicePort{{
				Name:       b.PortName,
				Port:       b.Port,
				TargetPort: intstr.FromInt32(b.Port),
				Protocol:   corev1.ProtocolTCP,
			}},
		},
	})
}

// ConfigureRoute appends an unsecure Route to the Service.
func (b *Base) ConfigureRoute() error {
	return b.deployment.Bundle().AddObject(b.route(b.ObjectName(), b.PortName, nil))
}

// ConfigureLivenessProbe attaches a TCP check on the primary port.
func (b *Base) ConfigureLivenessProbe() error {
	_, c, err := b.workload()
	if err != nil {
		return err
	}
	c.LivenessProbe = b.tcpProbe(30)
	return nil
}

// ConfigureReadinessProbe attaches a TCP check on the primary port.
func (b *Base) ConfigureReadinessProbe() error {
	_, c, err := b.workload()
	if err != nil {
		return err
	}
	c.ReadinessProbe = b.tcpProbe(5)
	return nil
}

func (b *Base) route(name, targetPort string, tls *bundle.TLSConfig) *bundle.Route {
	return &bundle.Route{
		ObjectMeta: metav1.ObjectMeta{Name: name},
		Spec: bundle.RouteSpec{
			To:   bundle.RouteTargetReference{Kind: string(bundle.KindService), Name: b.ObjectName()},
			Port: &bundle.RoutePort{TargetPort: intstr.FromString(targetPort)},
			TLS:  tls,
		},
	}
}

func (b *Base) tcpProbe(initialDelay int32) *corev1.Probe {
	return &corev1.Probe{
		ProbeHandler: corev1.ProbeHandler{
			TCPSocket: &corev1.TCPSocketAction{Port: intstr.FromInt32(b.Port)},
		},
		InitialDelaySeconds: initialDelay,
		TimeoutSeconds:      1,
		PeriodSeconds:       10,
	}
}

func execProbe(command []string, initialDelay int32) *corev1.Probe {
	return &corev1.Probe{
		ProbeHandler: corev1.ProbeHandler{
			Exec: &corev1.ExecAction{Command: command},
		},
		InitialDelaySeconds: initialDelay,
		TimeoutSeconds:      2,
		PeriodSeconds:       15,
		FailureThreshold:    3,
	}
}
