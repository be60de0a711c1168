package bundle

import (
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/runtime"
)

// Object is any infrastructure object a bundle can carry.
type Object interface {
	metav1.Object
	runtime.Object
}

// Kind identifies the variant of an object inside a bundle.
type Kind string

const (
	KindService        Kind = "Service"
	KindRoute          Kind = "Route"
	KindWorkload       Kind = "Deployment"
	KindVolumeClaim    Kind = "PersistentVolumeClaim"
	KindServiceAccount Kind = "ServiceAccount"
	KindRoleBinding    Kind = "RoleBinding"
	KindSecret         Kind = "Secret"
	KindConfigMap      Kind = "ConfigMap"
)

// KindOf resolves the kind of obj from its TypeMeta, falling back to the
// scheme registration of its Go type. Returns "" when neither is known.
func KindOf(obj runtime.Object) Kind {
	if obj == nil {
		return ""
	}
	if k := obj.GetObjectKind().GroupVersionKind().Kind; k != "" {
		return Kind(k)
	}
	gvks, _, err := Scheme.ObjectKinds(obj)
	if err != nil || len(gvks) == 0 {
		return ""
	}
	return Kind(gvks[0].Kind)
}

// ensureTypeMeta fills in apiVersion/kind for typed objects that were
// constructed in code without them.
func ensureTypeMeta(obj runtime.Object) Kind {
	gvk := obj.GetObjectKind().GroupVersionKind()
	if gvk.Kind != "" {
		return Kind(gvk.Kind)
	}
	gvks, _, err := Scheme.ObjectKinds(obj)
	if err != nil || len(gvks) == 0 {
		return ""
	}
	obj.GetObjectKind().SetGroupVersionKind(gvks[0])
	return Kind(gvks[0].Kind)
}
