// Package validation provides pure checks run on built bundles before they
// are submitted to a cluster.
//
// All functions are pure: no I/O and no mutation of the bundle.
//
// # Functions
//
//   - ValidateSubmittable: Check that a bundle holds objects, that every
//     object is named with no unresolved template parameter, and that no
//     required parameter is left without a value
//   - CanSubmit: Check a whole set of bundles, stopping at the first problem
//
// # Usage
//
//	if field, msg := validation.ValidateSubmittable(b); field != "" {
//	    // Refuse to submit b
//	}
package validation
