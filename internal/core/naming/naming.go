// Package naming generates the names scenarios and namespaces are deployed
// under.
package naming

import (
	"strings"

	"github.com/google/uuid"
	"k8s.io/apimachinery/pkg/util/validation"
)

const (
	// SuffixLength is the length of RandomSuffix tokens.
	SuffixLength = 8

	// MaxApplicationNameLength keeps derived object names such as
	// "secure-<name>-kieserver" inside the 63 character label limit.
	MaxApplicationNameLength = 32

	defaultPrefix = "app"
)

// RandomSuffix returns a short opaque lowercase token.
func RandomSuffix() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:SuffixLength]
}

// ApplicationName returns "<prefix>-<suffix>" with prefix slugified and
// truncated to fit MaxApplicationNameLength.
func ApplicationName(prefix string) string {
	return withSuffix(prefix, MaxApplicationNameLength)
}

// Namespace returns a unique namespace name derived from prefix.
func Namespace(prefix string) string {
	return withSuffix(prefix, validation.DNS1123LabelMaxLength)
}

func withSuffix(prefix string, max int) string {
	slug := Slugify(prefix)
	if slug == "" {
		slug = defaultPrefix
	}
	if limit := max - SuffixLength - 1; len(slug) > limit {
		slug = strings.TrimRight(slug[:limit], "-")
	}
	return slug + "-" + RandomSuffix()
}

// =============================================================================
// Slug Generation
// =============================================================================

// Slugify converts a name to a DNS-1123 label fragment.
//
// The transformation rules are:
//   - Lowercase letters (a-z) and digits (0-9) are kept as-is
//   - Uppercase letters (A-Z) are converted to lowercase
//   - Spaces, hyphens and underscores become a single hyphen
//   - All other characters are removed
//   - Leading and trailing hyphens are trimmed
//
// Example:
//
//	Slugify("Hello World")    // returns "hello-world"
//	Slugify("My App 2.0!")    // returns "my-app-20"
//	Slugify("kie__server")    // returns "kie-server"
func Slugify(name string) string {
	var sb strings.Builder
	for _, r := range name {
		switch {
		case (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9'):
			sb.WriteRune(r)
		case r >= 'A' && r <= 'Z':
			sb.WriteRune(r + 32)
		case r == ' ' || r == '-' || r == '_':
			if s := sb.String(); s != "" && !strings.HasSuffix(s, "-") {
				sb.WriteByte('-')
			}
		}
	}
	return strings.Trim(sb.String(), "-")
}

// IsValid reports whether name can be used as an application or namespace
// name as-is.
func IsValid(name string) bool {
	return len(validation.IsDNS1123Label(name)) == 0
}
