// Package cluster submits bundles to a Kubernetes or OpenShift API server.
package cluster

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/artpar/kiedeploy/internal/core/bundle"
	corev1 "k8s.io/api/core/v1"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	"k8s.io/apimachinery/pkg/api/meta"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/runtime"
	"k8s.io/apimachinery/pkg/runtime/schema"
	"k8s.io/apimachinery/pkg/types"
	"k8s.io/client-go/dynamic"
	"k8s.io/client-go/kubernetes"
)

// ObjectRef identifies one created object.
type ObjectRef struct {
	Kind string    `json:"kind"`
	Name string    `json:"name"`
	UID  types.UID `json:"uid,omitempty"`
}

// Outcome is the result of submitting one bundle. On failure it lists the
// objects created before the failing one.
type Outcome struct {
	Deployment  string
	Namespace   string
	Objects     []ObjectRef
	SubmittedAt time.Time
}

// Client creates namespaces through the typed clientset and every bundle
// object through the dynamic client.
type Client struct {
	kube    kubernetes.Interface
	dynamic dynamic.Interface
	logger  *slog.Logger
	now     func() time.Time
}

// NewClient creates a client over existing clientsets.
func NewClient(kube kubernetes.Interface, dyn dynamic.Interface, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		kube:    kube,
		dynamic: dyn,
		logger:  logger.With("component", "cluster"),
		now:     time.Now,
	}
}

// NewClientFromKubeconfig resolves the configuration with RESTConfig and
// creates both clientsets.
func NewClientFromKubeconfig(kubeconfig string, logger *slog.Logger) (*Client, error) {
	config, err := RESTConfig(kubeconfig)
	if err != nil {
		return nil, err
	}
	kube, err := kubernetes.NewForConfig(config)
	if err != nil {
		return nil, fmt.Errorf("failed to create kubernetes client: %w", err)
	}
	dyn, err := dynamic.NewForConfig(config)
	if err != nil {
		return nil, fmt.Errorf("failed to create dynamic client: %w", err)
	}
	return NewClient(kube, dyn, logger), nil
}

// CreateNamespace creates the namespace. An existing namespace is reused.
func (c *Client) CreateNamespace(ctx context.Context, name string) error {
	if name == "" {
		return ErrEmptyNamespace
	}
	ns := &corev1.Namespace{ObjectMeta: metav1.ObjectMeta{Name: name}}
	_, err := c.kube.CoreV1().Namespaces().Create(ctx, ns, metav1.CreateOptions{})
	if apierrors.IsAlreadyExists(err) {
		c.logger.Debug("namespace already exists", "namespace", name)
		return nil
	}
	if err != nil {
		return &SubmitError{Op: "create", Kind: "Namespace", Name: name, Err: err}
	}
	c.logger.Info("namespace created", "namespace", name)
	return nil
}

// Submit creates every object of b in namespace, in bundle order. The first
// failure stops the submission; objects already created are left in place.
func (c *Client) Submit(ctx context.Context, b *bundle.Bundle, namespace string) (Outcome, error) {
	outcome := Outcome{
		Deployment:  b.Name,
		Namespace:   namespace,
		SubmittedAt: c.now(),
	}
	if namespace == "" {
		return outcome, ErrEmptyNamespace
	}

	for _, obj := range b.Objects() {
		u, err := toUnstructured(obj)
		if err != nil {
			return outcome, &SubmitError{Op: "convert", Kind: string(bundle.KindOf(obj)), Name: obj.GetName(), Err: err}
		}
		u.SetNamespace(namespace)

		gvr := ResourceFor(u.GroupVersionKind())
		created, err := c.dynamic.Resource(gvr).Namespace(namespace).Create(ctx, u, metav1.CreateOptions{})
		if err != nil {
			return outcome, &SubmitError{Op: "create", Kind: u.GetKind(), Name: u.GetName(), Err: err}
		}

		outcome.Objects = append(outcome.Objects, ObjectRef{
			Kind: created.GetKind(),
			Name: created.GetName(),
			UID:  created.GetUID(),
		})
		c.logger.Debug("object created",
			"namespace", namespace,
			"kind", u.GetKind(),
			"name", u.GetName(),
			"resource", gvr.Resource,
		)
	}

	c.logger.Info("bundle submitted",
		"deployment", b.Name,
		"namespace", namespace,
		"objects", len(outcome.Objects),
	)
	return outcome, nil
}

// toUnstructured returns a private unstructured copy of obj with its
// apiVersion and kind set.
func toUnstructured(obj bundle.Object) (*unstructured.Unstructured, error) {
	if u, ok := obj.(*unstructured.Unstructured); ok {
		return u.DeepCopy(), nil
	}
	content, err := runtime.DefaultUnstructuredConverter.ToUnstructured(obj)
	if err != nil {
		return nil, err
	}
	u := &unstructured.Unstructured{Object: content}
	if u.GetKind() == "" {
		gvks, _, err := bundle.Scheme.ObjectKinds(obj)
		if err != nil {
			return nil, err
		}
		u.SetGroupVersionKind(gvks[0])
	}
	return u, nil
}

// ResourceFor returns the resource the dynamic client uses for gvk.
func ResourceFor(gvk schema.GroupVersionKind) schema.GroupVersionResource {
	gvr, _ := meta.UnsafeGuessKindToResource(gvk)
	return gvr
}
