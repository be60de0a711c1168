package deployment

import (
	"github.com/artpar/kiedeploy/internal/core/bundle"
	appsv1 "k8s.io/api/apps/v1"
	corev1 "k8s.io/api/core/v1"
)

// Deployment is one deployable unit: a bundle plus typed views over it.
type Deployment struct {
	bundle *bundle.Bundle
}

// New wraps b. The Deployment becomes the only mutator of b.
func New(b *bundle.Bundle) *Deployment {
	if b == nil {
		b = bundle.New("")
	}
	return &Deployment{bundle: b}
}

// Bundle returns the wrapped bundle.
func (d *Deployment) Bundle() *bundle.Bundle {
	return d.bundle
}

// Name returns the bundle name.
func (d *Deployment) Name() string {
	return d.bundle.Name
}

// =============================================================================
// Typed Views
// =============================================================================

// Services returns the Service objects in bundle order.
func (d *Deployment) Services() []*corev1.Service {
	return ofKind[*corev1.Service](d.bundle, bundle.KindService)
}

// Routes returns the Route objects in bundle order.
func (d *Deployment) Routes() []*bundle.Route {
	return ofKind[*bundle.Route](d.bundle, bundle.KindRoute)
}

// Workloads returns the workload objects in bundle order.
func (d *Deployment) Workloads() []*appsv1.Deployment {
	return ofKind[*appsv1.Deployment](d.bundle, bundle.KindWorkload)
}

// VolumeClaims returns the PersistentVolumeClaim objects in bundle order.
func (d *Deployment) VolumeClaims() []*corev1.PersistentVolumeClaim {
	return ofKind[*corev1.PersistentVolumeClaim](d.bundle, bundle.KindVolumeClaim)
}

// ofKind collects the objects of kind that are of Go type T. Objects of the
// right kind held in another representation (e.g. unstructured) are skipped.
func ofKind[T bundle.Object](b *bundle.Bundle, kind bundle.Kind) []T {
	var out []T
	for obj := range b.ObjectsOfKind(kind) {
		if typed, ok := obj.(T); ok {
			out = append(out, typed)
		}
	}
	return out
}

// =============================================================================
// Route Classification
// =============================================================================

// SecureRoutes returns the routes with a TLS block.
func (d *Deployment) SecureRoutes() []*bundle.Route {
	return d.routes(true)
}

// UnsecureRoutes returns the routes without a TLS block.
func (d *Deployment) UnsecureRoutes() []*bundle.Route {
	return d.routes(false)
}

func (d *Deployment) routes(secure bool) []*bundle.Route {
	var out []*bundle.Route
	for _, r := range d.Routes() {
		if r.Secure() == secure {
			out = append(out, r)
		}
	}
	return out
}

// SecureServices returns the services targeted, by name, by at least one
// secure route. A service can be both secure and unsecure.
func (d *Deployment) SecureServices() []*corev1.Service {
	return d.servicesTargetedBy(d.SecureRoutes())
}

// UnsecureServices returns the services targeted, by name, by at least one
// unsecure route.
func (d *Deployment) UnsecureServices() []*corev1.Service {
	return d.servicesTargetedBy(d.UnsecureRoutes())
}

func (d *Deployment) servicesTargetedBy(routes []*bundle.Route) []*corev1.Service {
	if len(routes) == 0 {
		return nil
	}
	targets := make(map[string]bool, len(routes))
	for _, r := range routes {
		targets[r.Spec.To.Name] = true
	}

	var out []*corev1.Service
	for _, svc := range d.Services() {
		if targets[svc.Name] {
			out = append(out, svc)
		}
	}
	return out
}
