package bundle

import (
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/runtime"
	"k8s.io/apimachinery/pkg/runtime/schema"
	"k8s.io/apimachinery/pkg/util/intstr"
)

// RouteGroupVersion is the API group/version Route objects are declared in.
var RouteGroupVersion = schema.GroupVersion{Group: "route.openshift.io", Version: "v1"}

// Route exposes a Service under an externally reachable host, optionally
// terminating TLS.
type Route struct {
	metav1.TypeMeta   `json:",inline"`
	metav1.ObjectMeta `json:"metadata,omitempty"`

	Spec RouteSpec `json:"spec"`
}

// RouteSpec describes the host and the target Service of a route.
type RouteSpec struct {
	Host string               `json:"host,omitempty"`
	Path string               `json:"path,omitempty"`
	To   RouteTargetReference `json:"to"`
	Port *RoutePort           `json:"port,omitempty"`
	TLS  *TLSConfig           `json:"tls,omitempty"`
}

// RouteTargetReference names the Service a route forwards to.
type RouteTargetReference struct {
	Kind   string `json:"kind"`
	Name   string `json:"name"`
	Weight *int32 `json:"weight,omitempty"`
}

// RoutePort selects the target port of the Service.
type RoutePort struct {
	TargetPort intstr.IntOrString `json:"targetPort"`
}

// TLSTerminationType is where TLS is terminated for a secure route.
type TLSTerminationType string

const (
	TLSTerminationEdge        TLSTerminationType = "edge"
	TLSTerminationPassthrough TLSTerminationType = "passthrough"
	TLSTerminationReencrypt   TLSTerminationType = "reencrypt"
)

// TLSConfig is the transport security block of a route.
type TLSConfig struct {
	Termination                   TLSTerminationType `json:"termination"`
	InsecureEdgeTerminationPolicy string             `json:"insecureEdgeTerminationPolicy,omitempty"`
}

// Secure reports whether the route declares a TLS block.
func (r *Route) Secure() bool {
	return r.Spec.TLS != nil
}

// RouteList is a list of routes.
type RouteList struct {
	metav1.TypeMeta `json:",inline"`
	metav1.ListMeta `json:"metadata,omitempty"`

	Items []Route `json:"items"`
}

// =============================================================================
// Deep copy
// =============================================================================

func (in *RouteSpec) DeepCopyInto(out *RouteSpec) {
	*out = *in
	if in.To.Weight != nil {
		w := *in.To.Weight
		out.To.Weight = &w
	}
	if in.Port != nil {
		p := *in.Port
		out.Port = &p
	}
	if in.TLS != nil {
		t := *in.TLS
		out.TLS = &t
	}
}

func (in *Route) DeepCopyInto(out *Route) {
	*out = *in
	out.TypeMeta = in.TypeMeta
	in.ObjectMeta.DeepCopyInto(&out.ObjectMeta)
	in.Spec.DeepCopyInto(&out.Spec)
}

func (in *Route) DeepCopy() *Route {
	if in == nil {
		return nil
	}
	out := new(Route)
	in.DeepCopyInto(out)
	return out
}

func (in *Route) DeepCopyObject() runtime.Object {
	if c := in.DeepCopy(); c != nil {
		return c
	}
	return nil
}

func (in *RouteList) DeepCopyInto(out *RouteList) {
	*out = *in
	out.TypeMeta = in.TypeMeta
	in.ListMeta.DeepCopyInto(&out.ListMeta)
	if in.Items != nil {
		out.Items = make([]Route, len(in.Items))
		for i := range in.Items {
			in.Items[i].DeepCopyInto(&out.Items[i])
		}
	}
}

func (in *RouteList) DeepCopy() *RouteList {
	if in == nil {
		return nil
	}
	out := new(RouteList)
	in.DeepCopyInto(out)
	return out
}

func (in *RouteList) DeepCopyObject() runtime.Object {
	if c := in.DeepCopy(); c != nil {
		return c
	}
	return nil
}
