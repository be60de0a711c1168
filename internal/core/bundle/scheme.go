package bundle

import (
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/runtime"
	"k8s.io/apimachinery/pkg/runtime/serializer"
	utilruntime "k8s.io/apimachinery/pkg/util/runtime"
	clientgoscheme "k8s.io/client-go/kubernetes/scheme"
)

var (
	// Scheme knows every built-in Kubernetes type plus Route.
	Scheme = runtime.NewScheme()

	// Codecs decodes and encodes objects registered in Scheme.
	Codecs = serializer.NewCodecFactory(Scheme)
)

func init() {
	utilruntime.Must(clientgoscheme.AddToScheme(Scheme))
	Scheme.AddKnownTypes(RouteGroupVersion, &Route{}, &RouteList{})
	metav1.AddToGroupVersion(Scheme, RouteGroupVersion)
}
