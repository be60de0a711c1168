package builder

import (
	"github.com/artpar/kiedeploy/internal/core/bundle"
)

// Resolver looks up configuration properties such as image names and
// memory limits.
type Resolver interface {
	Get(key string) (string, bool)
}

// Source loads the base template a builder starts from.
type Source interface {
	LoadBundle(identifier string) (*bundle.Bundle, error)
}

// Options carries the collaborators every builder constructor needs.
// Both fields are optional: without a Source a builder starts from an empty
// bundle, without a Config the built-in fallbacks apply.
type Options struct {
	Config Resolver
	Source Source
}

func (o Options) property(key, fallback string) string {
	if o.Config == nil {
		return fallback
	}
	if v, ok := o.Config.Get(key); ok && v != "" {
		return v
	}
	return fallback
}

func (o Options) load(identifier string) (*bundle.Bundle, error) {
	if o.Source == nil {
		return bundle.New(identifier), nil
	}
	return o.Source.LoadBundle(identifier)
}

// image resolves "<component>.image" and "<component>.tag" into a reference.
func (o Options) image(component string) string {
	return o.property(component+".image", component) + ":" + o.property(component+".tag", "latest")
}
