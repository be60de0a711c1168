package deployment

import "regexp"

// =============================================================================
// Placeholder Substitution
// =============================================================================

// varPlaceholderRegex matches ${VAR} and ${VAR:-default} patterns.
// Groups:
//   - Group 1: Variable name (required)
//   - Group 2: ":-default" suffix including the separator (optional)
var varPlaceholderRegex = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)(:-[^}]*)?\}`)

// SubstituteVariables replaces ${VAR} and ${VAR:-default} placeholders whose
// name is in the variables map.
//
// Behavior:
//   - ${VAR} and ${VAR:-default} - replaced with variables["VAR"] if present
//   - Placeholders for other names are kept as-is, default included
//   - Text outside placeholders is left unchanged
//
// Keeping unknown placeholders intact lets a bundle be renamed for one
// parameter while the others are still resolved later by the cluster.
//
// Examples:
//
//	SubstituteVariables("${APPLICATION_NAME}-db", map[string]string{"APPLICATION_NAME": "acme"})
//	// Returns: "acme-db"
//
//	SubstituteVariables("${DB_HOST:-localhost}", map[string]string{"APPLICATION_NAME": "acme"})
//	// Returns: "${DB_HOST:-localhost}"
func SubstituteVariables(value string, variables map[string]string) string {
	return varPlaceholderRegex.ReplaceAllStringFunc(value, func(match string) string {
		submatch := varPlaceholderRegex.FindStringSubmatch(match)
		if val, ok := variables[submatch[1]]; ok {
			return val
		}
		return match
	})
}

// substituteTree applies SubstituteVariables to every string value of a
// decoded JSON tree. Map keys are left alone.
func substituteTree(node interface{}, variables map[string]string) interface{} {
	switch v := node.(type) {
	case string:
		return SubstituteVariables(v, variables)
	case map[string]interface{}:
		for k, child := range v {
			v[k] = substituteTree(child, variables)
		}
		return v
	case []interface{}:
		for i, child := range v {
			v[i] = substituteTree(child, variables)
		}
		return v
	default:
		return node
	}
}
