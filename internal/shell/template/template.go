// Package template loads resource bundles from OpenShift-style Template YAML
// and renders bundles back into that format.
package template

import (
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"

	"github.com/artpar/kiedeploy/internal/core/bundle"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/runtime"
	"sigs.k8s.io/yaml"
)

//go:embed templates/*.yaml
var embedded embed.FS

const (
	templateAPIVersion = "template.openshift.io/v1"
	templateKind       = "Template"
	extension          = ".yaml"
)

// document is the on-disk shape of a template.
type document struct {
	APIVersion string             `json:"apiVersion"`
	Kind       string             `json:"kind"`
	Metadata   documentMeta       `json:"metadata"`
	Parameters []bundle.Parameter `json:"parameters,omitempty"`
	Objects    []json.RawMessage  `json:"objects"`
}

type documentMeta struct {
	Name        string            `json:"name"`
	Annotations map[string]string `json:"annotations,omitempty"`
}

// FSSource loads templates from one or more file systems. Layers are
// searched in order; the first one holding "<identifier>.yaml" wins.
type FSSource struct {
	layers []fs.FS
	logger *slog.Logger
}

// NewFSSource creates a source over the given layers.
func NewFSSource(logger *slog.Logger, layers ...fs.FS) *FSSource {
	if logger == nil {
		logger = slog.Default()
	}
	return &FSSource{
		layers: layers,
		logger: logger.With("component", "template"),
	}
}

// Embedded returns the built-in templates: kieserver, mysql and postgresql.
func Embedded() fs.FS {
	sub, err := fs.Sub(embedded, "templates")
	if err != nil {
		panic(err)
	}
	return sub
}

// LoadBundle reads and decodes the template named identifier.
func (s *FSSource) LoadBundle(identifier string) (*bundle.Bundle, error) {
	path := identifier + extension
	if !fs.ValidPath(path) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidIdentifier, identifier)
	}

	for i, layer := range s.layers {
		data, err := fs.ReadFile(layer, path)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, &LoadError{Identifier: identifier, Object: -1, Err: err}
		}

		b, err := Decode(identifier, data)
		if err != nil {
			return nil, err
		}
		s.logger.Debug("loaded template",
			"identifier", identifier,
			"layer", i,
			"objects", b.Len(),
			"parameters", len(b.Parameters()),
		)
		return b, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrTemplateNotFound, identifier)
}

// Decode parses template YAML into a bundle. Objects of kinds the bundle
// scheme does not know are kept as unstructured objects.
func Decode(identifier string, data []byte) (*bundle.Bundle, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, &LoadError{Identifier: identifier, Object: -1, Err: err}
	}
	if doc.Kind != "" && doc.Kind != templateKind {
		return nil, &LoadError{Identifier: identifier, Object: -1, Err: fmt.Errorf("unexpected kind %q", doc.Kind)}
	}

	name := doc.Metadata.Name
	if name == "" {
		name = identifier
	}
	b := bundle.New(name)

	for _, p := range doc.Parameters {
		if err := b.AddParameter(p); err != nil {
			return nil, &LoadError{Identifier: identifier, Object: -1, Err: err}
		}
	}
	for i, raw := range doc.Objects {
		obj, err := decodeObject(raw)
		if err != nil {
			return nil, &LoadError{Identifier: identifier, Object: i, Err: err}
		}
		if err := b.AddObject(obj); err != nil {
			return nil, &LoadError{Identifier: identifier, Object: i, Err: err}
		}
	}
	return b, nil
}

func decodeObject(raw []byte) (bundle.Object, error) {
	decoded, _, err := bundle.Codecs.UniversalDeserializer().Decode(raw, nil, nil)
	if runtime.IsNotRegisteredError(err) {
		u := &unstructured.Unstructured{}
		if err := u.UnmarshalJSON(raw); err != nil {
			return nil, err
		}
		return u, nil
	}
	if err != nil {
		return nil, err
	}
	obj, ok := decoded.(bundle.Object)
	if !ok {
		return nil, fmt.Errorf("%T has no object metadata", decoded)
	}
	return obj, nil
}

// =============================================================================
// Rendering
// =============================================================================

// Render encodes b as template YAML. Status and creation timestamps are
// dropped.
func Render(b *bundle.Bundle) ([]byte, error) {
	doc := document{
		APIVersion: templateAPIVersion,
		Kind:       templateKind,
		Metadata:   documentMeta{Name: b.Name},
		Parameters: b.Parameters(),
		Objects:    make([]json.RawMessage, 0, b.Len()),
	}

	for _, obj := range b.Objects() {
		content, err := toContent(obj)
		if err != nil {
			return nil, fmt.Errorf("failed to convert %s %s: %w", bundle.KindOf(obj), obj.GetName(), err)
		}
		unstructured.RemoveNestedField(content, "status")
		unstructured.RemoveNestedField(content, "metadata", "creationTimestamp")
		unstructured.RemoveNestedField(content, "spec", "template", "metadata", "creationTimestamp")

		raw, err := json.Marshal(content)
		if err != nil {
			return nil, fmt.Errorf("failed to encode %s %s: %w", bundle.KindOf(obj), obj.GetName(), err)
		}
		doc.Objects = append(doc.Objects, raw)
	}

	return yaml.Marshal(doc)
}

// toContent returns a private map copy of obj.
func toContent(obj bundle.Object) (map[string]interface{}, error) {
	if u, ok := obj.(*unstructured.Unstructured); ok {
		return u.DeepCopy().Object, nil
	}
	return runtime.DefaultUnstructuredConverter.ToUnstructured(obj)
}
