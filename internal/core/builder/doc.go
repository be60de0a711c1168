// Package builder constructs Deployments from base templates through a fixed
// sequence of configuration steps.
//
// Every builder variant implements Steps. Configure drives the steps in this
// order and never lets a variant reorder them:
//
//  1. InitDefaultValues      - stage default env (credentials, names)
//  2. ConfigureWorkload      - append the workload with the staged env
//  3. ConfigureService       - append a Service for the primary port
//  4. ConfigureRoute         - append Routes targeting the Service
//  5. ConfigureLivenessProbe - attach the liveness check
//  6. ConfigureReadinessProbe
//
// Probe steps read env through the Deployment, so they depend on steps 1
// and 2 having run. Invoked on a fresh builder they fail with
// deployment.EnvVarNotFoundError instead of falling back to anything.
//
// Base supplies default implementations; variants embed it and override the
// steps they need. Exported constructors (NewServerBuilder, NewMySQLBuilder,
// NewPostgreSQLBuilder) load the base template, run Configure once, and hand
// back a builder whose fluent setters may be called in any order before
// Build.
//
// # Usage
//
//	opts := builder.Options{Config: resolver, Source: templates}
//	db, err := builder.NewMySQLBuilder(opts)
//	...
//	dbDeployment, err := db.WithDatabaseName("foo").WithDatabaseUser("bar", "secret").Build()
//
//	server, err := builder.NewServerBuilder(opts)
//	...
//	if err := server.ConnectToDatabase(dbDeployment); err != nil { ... }
//	serverDeployment, err := server.WithKieServerUser("admin", "admin1!").Build()
//
// Builders are not safe for concurrent use and share no state with each
// other.
package builder
