package validation

import (
	"fmt"
	"strings"

	"github.com/artpar/kiedeploy/internal/core/bundle"
)

const placeholderPrefix = "${"

// =============================================================================
// Bundle Validation Functions
// =============================================================================

// ValidateSubmittable validates a bundle about to be submitted.
// Returns the offending field and a message, or empty strings when the
// bundle can be submitted.
//
// Example:
//
//	field, msg := ValidateSubmittable(d.Bundle())
//	if field != "" {
//	    // Handle validation error
//	}
func ValidateSubmittable(b *bundle.Bundle) (field, message string) {
	if b.Len() == 0 {
		return "objects", fmt.Sprintf("bundle %s has no objects", b.Name)
	}

	for _, obj := range b.Objects() {
		kind := bundle.KindOf(obj)
		name := obj.GetName()
		if name == "" {
			return "metadata.name", fmt.Sprintf("%s in bundle %s has no name", kind, b.Name)
		}
		if strings.Contains(name, placeholderPrefix) {
			return "metadata.name", fmt.Sprintf("%s %s has an unresolved parameter", kind, name)
		}
	}

	for _, p := range b.Parameters() {
		if p.Required && p.Value == "" && p.Generate == "" {
			return "parameters", fmt.Sprintf("required parameter %s has no value", p.Name)
		}
	}

	return "", ""
}

// CanSubmit checks every bundle in order.
// Returns whether all of them can be submitted and, if not, the reason
// for the first one that cannot.
func CanSubmit(bundles []*bundle.Bundle) (allowed bool, reason string) {
	for _, b := range bundles {
		if field, msg := ValidateSubmittable(b); field != "" {
			return false, field + ": " + msg
		}
	}
	return true, ""
}
