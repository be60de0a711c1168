// Package config resolves the properties builders read: images, tags,
// memory limits and default credentials.
//
// Lookup order, highest first:
//
//  1. Environment: KIEDEPLOY_<KEY> with dots replaced by underscores
//  2. Override property file, when one is given
//  3. Embedded defaults.properties
//
// A Resolver is loaded once at startup and passed to builders explicitly.
package config

import (
	_ "embed"
	"fmt"
	"strings"

	"github.com/magiconair/properties"
	"github.com/spf13/viper"
)

// EnvPrefix is the prefix of environment overrides.
const EnvPrefix = "KIEDEPLOY"

//go:embed defaults.properties
var defaultProperties []byte

// Resolver is a layered, read-only property lookup.
type Resolver struct {
	v *viper.Viper
}

// Load builds a Resolver from the embedded defaults and an optional override
// file. A missing override file is ignored; a malformed one is an error.
func Load(overridePath string) (*Resolver, error) {
	loader := properties.Loader{Encoding: properties.UTF8, DisableExpansion: true, IgnoreMissing: true}

	props, err := loader.LoadBytes(defaultProperties)
	if err != nil {
		return nil, fmt.Errorf("failed to read default properties: %w", err)
	}
	if overridePath != "" {
		override, err := loader.LoadFile(overridePath)
		if err != nil {
			return nil, fmt.Errorf("failed to read properties %s: %w", overridePath, err)
		}
		props.Merge(override)
	}

	// File layers become viper defaults so environment overrides win.
	v := viper.New()
	for key, value := range props.Map() {
		v.SetDefault(key, value)
	}
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return &Resolver{v: v}, nil
}

// Get returns the value for key and whether any layer declares it.
func (r *Resolver) Get(key string) (string, bool) {
	if !r.v.IsSet(key) {
		return "", false
	}
	return r.v.GetString(key), true
}
