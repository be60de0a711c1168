package deployment

import (
	"slices"

	appsv1 "k8s.io/api/apps/v1"
	corev1 "k8s.io/api/core/v1"
)

// PrimaryContainer returns the single addressable container of a workload.
//
// Workloads built here run one process: the container at index 0 is "the"
// container for env and probe operations. Multi-container workloads are not
// supported; extra containers are ignored.
func PrimaryContainer(w *appsv1.Deployment) (*corev1.Container, bool) {
	if w == nil || len(w.Spec.Template.Spec.Containers) == 0 {
		return nil, false
	}
	return &w.Spec.Template.Spec.Containers[0], true
}

// EnvironmentVariableValue returns the value of the first env entry named
// name across the primary containers of all workloads.
//
// A missing variable is an error, never a default: callers that can live
// without it use OptionalEnvironmentVariableValue.
func (d *Deployment) EnvironmentVariableValue(name string) (string, error) {
	if value, ok := d.OptionalEnvironmentVariableValue(name); ok {
		return value, nil
	}
	return "", &EnvVarNotFoundError{Deployment: d.Name(), Name: name}
}

// OptionalEnvironmentVariableValue is EnvironmentVariableValue without the
// error: ok is false when no workload declares name.
func (d *Deployment) OptionalEnvironmentVariableValue(name string) (value string, ok bool) {
	for _, w := range d.Workloads() {
		c, found := PrimaryContainer(w)
		if !found {
			continue
		}
		for _, env := range c.Env {
			if env.Name == name {
				return env.Value, true
			}
		}
	}
	return "", false
}

// UpsertEnvironmentVariable sets name=value on the primary container of
// every workload: existing entries named name are removed, then the new
// entry is appended. Repeated calls converge to exactly one entry.
func (d *Deployment) UpsertEnvironmentVariable(name, value string) {
	for _, w := range d.Workloads() {
		c, ok := PrimaryContainer(w)
		if !ok {
			continue
		}
		c.Env = slices.DeleteFunc(c.Env, func(env corev1.EnvVar) bool {
			return env.Name == name
		})
		c.Env = append(c.Env, corev1.EnvVar{Name: name, Value: value})
	}
}
