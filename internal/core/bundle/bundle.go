package bundle

import (
	"fmt"
	"iter"
	"slices"
)

// =============================================================================
// Parameter
// =============================================================================

// Parameter is a named, substitutable value declared by a template.
type Parameter struct {
	Name        string `json:"name"`
	DisplayName string `json:"displayName,omitempty"`
	Description string `json:"description,omitempty"`
	Value       string `json:"value,omitempty"`
	Required    bool   `json:"required,omitempty"`
	// Generate and From describe a generated default, e.g. "expression" and
	// "[a-zA-Z0-9]{8}".
	Generate string `json:"generate,omitempty"`
	From     string `json:"from,omitempty"`
}

// =============================================================================
// Bundle
// =============================================================================

// Bundle is an ordered collection of objects plus named parameters.
//
// Object order is insertion order and is preserved for submission. Every
// object has a non-empty (kind, name) pair that is unique within the bundle.
// A Bundle is not safe for concurrent use.
type Bundle struct {
	Name string

	objects    []Object
	parameters []Parameter
}

// New creates an empty bundle.
func New(name string) *Bundle {
	return &Bundle{Name: name}
}

// AddObject appends obj to the bundle.
func (b *Bundle) AddObject(obj Object) error {
	kind := ensureTypeMeta(obj)
	if kind == "" {
		return fmt.Errorf("%w: %T", ErrUnknownKind, obj)
	}
	name := obj.GetName()
	if name == "" {
		return fmt.Errorf("%w: %s", ErrEmptyName, kind)
	}
	if b.indexOf(kind, name) >= 0 {
		return &DuplicateNameError{Bundle: b.Name, Kind: kind, Name: name}
	}
	b.objects = append(b.objects, obj)
	return nil
}

// Objects returns the objects in bundle order. The slice is a copy; the
// objects are not.
func (b *Bundle) Objects() []Object {
	return slices.Clone(b.objects)
}

// Len returns the number of objects.
func (b *Bundle) Len() int {
	return len(b.objects)
}

// ObjectsOfKind yields the objects of the given kind in bundle order.
// The sequence reads the bundle lazily and can be ranged over any number
// of times.
func (b *Bundle) ObjectsOfKind(kind Kind) iter.Seq[Object] {
	return func(yield func(Object) bool) {
		for _, obj := range b.objects {
			if KindOf(obj) != kind {
				continue
			}
			if !yield(obj) {
				return
			}
		}
	}
}

// Object looks an object up by kind and name.
func (b *Bundle) Object(kind Kind, name string) (Object, bool) {
	i := b.indexOf(kind, name)
	if i < 0 {
		return nil, false
	}
	return b.objects[i], true
}

// ReplaceObject swaps the object at index i. Used by whole-bundle rewrites
// that produce a fresh copy of each object. The replacement may not take a
// (kind, name) pair held by another index.
func (b *Bundle) ReplaceObject(i int, obj Object) error {
	if i < 0 || i >= len(b.objects) {
		return fmt.Errorf("%w: %d", ErrIndexOutOfRange, i)
	}
	kind := ensureTypeMeta(obj)
	if j := b.indexOf(kind, obj.GetName()); j >= 0 && j != i {
		return &DuplicateNameError{Bundle: b.Name, Kind: kind, Name: obj.GetName()}
	}
	b.objects[i] = obj
	return nil
}

func (b *Bundle) indexOf(kind Kind, name string) int {
	for i, obj := range b.objects {
		if obj.GetName() == name && KindOf(obj) == kind {
			return i
		}
	}
	return -1
}

// =============================================================================
// Parameters
// =============================================================================

// AddParameter declares a parameter.
func (b *Bundle) AddParameter(p Parameter) error {
	if _, ok := b.Parameter(p.Name); ok {
		return fmt.Errorf("%w: %s", ErrDuplicateParameter, p.Name)
	}
	b.parameters = append(b.parameters, p)
	return nil
}

// Parameter returns the parameter declared under name.
func (b *Bundle) Parameter(name string) (Parameter, bool) {
	for _, p := range b.parameters {
		if p.Name == name {
			return p, true
		}
	}
	return Parameter{}, false
}

// Parameters returns the declared parameters in declaration order.
func (b *Bundle) Parameters() []Parameter {
	return slices.Clone(b.parameters)
}

// RemoveParameter drops a declared parameter. Absent names are ignored.
func (b *Bundle) RemoveParameter(name string) {
	b.parameters = slices.DeleteFunc(b.parameters, func(p Parameter) bool {
		return p.Name == name
	})
}
