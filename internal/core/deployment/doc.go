// Package deployment wraps a resource bundle with the typed queries and
// mutations builders and scenarios need.
//
// This package is part of the functional core: no I/O, no logging. A
// Deployment owns exactly one bundle and never caches derived state: every
// query recomputes from the bundle's current objects. Builders keep
// mutating it between construction steps.
//
// # Operations
//
//   - Views: Services, Routes, Workloads, VolumeClaims
//   - Route classification: SecureRoutes, UnsecureRoutes, SecureServices, UnsecureServices
//   - Environment: EnvironmentVariableValue, OptionalEnvironmentVariableValue, UpsertEnvironmentVariable
//   - Naming: RenameWithApplicationPrefix, SubstituteVariables
//
// # Usage
//
//	d := deployment.New(b)
//	d.UpsertEnvironmentVariable("MYSQL_USER", "bar")
//	user, err := d.EnvironmentVariableValue("MYSQL_USER")
//
// A Deployment is not safe for concurrent use; callers serialize access.
package deployment
