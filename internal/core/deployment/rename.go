package deployment

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/artpar/kiedeploy/internal/core/bundle"
	appsv1 "k8s.io/api/apps/v1"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/runtime"
)

// =============================================================================
// Application Naming
// =============================================================================

const (
	// ApplicationNameParameter is the template parameter every object name
	// is prefixed with.
	ApplicationNameParameter = "APPLICATION_NAME"

	// ApplicationNamePlaceholder is how ApplicationNameParameter appears
	// inside object fields.
	ApplicationNamePlaceholder = "${" + ApplicationNameParameter + "}"

	// LabelApplication groups every object of one application.
	LabelApplication = "application"
)

// RenameWithApplicationPrefix resolves the application name placeholder in
// every string field of every object, nested pod template metadata and env
// values included, and labels every object and pod template with
// application=<name>. The APPLICATION_NAME parameter is removed afterwards.
//
// Other placeholders are kept as they are, defaults included. When two
// objects of one kind end up with the same name, a *bundle.DuplicateNameError
// is returned and the bundle is left unchanged.
//
// The rewrite is one-way: the placeholder is gone once it has been applied.
func (d *Deployment) RenameWithApplicationPrefix(applicationName string) error {
	if strings.TrimSpace(applicationName) == "" {
		return ErrInvalidApplicationName
	}
	vars := map[string]string{ApplicationNameParameter: applicationName}

	objects := d.bundle.Objects()
	renamed := make([]bundle.Object, len(objects))
	taken := make(map[objectKey]struct{}, len(objects))
	for i, obj := range objects {
		out, err := substituteObject(obj, vars)
		if err != nil {
			return fmt.Errorf("failed to rename %s %s: %w", bundle.KindOf(obj), obj.GetName(), err)
		}
		key := objectKey{kind: bundle.KindOf(obj), name: out.GetName()}
		if _, dup := taken[key]; dup {
			return &bundle.DuplicateNameError{Bundle: d.bundle.Name, Kind: key.kind, Name: key.name}
		}
		taken[key] = struct{}{}
		labelApplication(out, applicationName)
		renamed[i] = out
	}

	for i, obj := range renamed {
		if err := d.bundle.ReplaceObject(i, obj); err != nil {
			return err
		}
	}

	d.bundle.RemoveParameter(ApplicationNameParameter)
	return nil
}

type objectKey struct {
	kind bundle.Kind
	name string
}

// substituteObject returns a copy of obj with placeholders in all string
// values substituted.
func substituteObject(obj bundle.Object, vars map[string]string) (bundle.Object, error) {
	if u, ok := obj.(*unstructured.Unstructured); ok {
		out := u.DeepCopy()
		out.Object = substituteTree(out.Object, vars).(map[string]interface{})
		return out, nil
	}

	tree, err := runtime.DefaultUnstructuredConverter.ToUnstructured(obj)
	if err != nil {
		return nil, err
	}
	tree = substituteTree(tree, vars).(map[string]interface{})

	fresh, ok := reflect.New(reflect.TypeOf(obj).Elem()).Interface().(bundle.Object)
	if !ok {
		return nil, fmt.Errorf("%T is not a bundle object", obj)
	}
	if err := runtime.DefaultUnstructuredConverter.FromUnstructured(tree, fresh); err != nil {
		return nil, err
	}
	return fresh, nil
}

func labelApplication(obj bundle.Object, applicationName string) {
	obj.SetLabels(withLabel(obj.GetLabels(), LabelApplication, applicationName))

	if w, ok := obj.(*appsv1.Deployment); ok {
		w.Spec.Template.Labels = withLabel(w.Spec.Template.Labels, LabelApplication, applicationName)
	}
}

func withLabel(labels map[string]string, key, value string) map[string]string {
	if labels == nil {
		labels = make(map[string]string, 1)
	}
	labels[key] = value
	return labels
}
