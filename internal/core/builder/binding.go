package builder

import (
	"strconv"

	"github.com/artpar/kiedeploy/internal/core/deployment"
)

// Env injected into a server bound to a database.
const (
	EnvDataSources                 = "DATASOURCES"
	EnvKieDatabase                 = "KIE_DATABASE"
	EnvKieUsername                 = "KIE_USERNAME"
	EnvKiePassword                 = "KIE_PASSWORD"
	EnvKieServiceHost              = "KIE_SERVICE_HOST"
	EnvKieServicePort              = "KIE_SERVICE_PORT"
	EnvKieDriver                   = "KIE_DRIVER"
	EnvKieJNDI                     = "KIE_JNDI"
	EnvKieJTA                      = "KIE_JTA"
	EnvKieServerPersistenceDS      = "KIE_SERVER_PERSISTENCE_DS"
	EnvKieServerPersistenceDialect = "KIE_SERVER_PERSISTENCE_DIALECT"
	EnvTimerRefreshInterval        = "TIMER_SERVICE_DATA_STORE_REFRESH_INTERVAL"

	dataSourcePrefix    = "KIE"
	dataSourceJNDI      = "java:/jboss/datasources/kie"
	defaultTimerRefresh = "60000"
)

// ConnectToDatabase binds the server to db, detecting MySQL or PostgreSQL
// from the env db declares.
//
// The binding is a one-time copy: later changes to db are not seen by the
// server until ConnectToDatabase is called again.
func (s *ServerBuilder) ConnectToDatabase(db *deployment.Deployment) error {
	for _, d := range []dialect{mysqlDialect, postgresqlDialect} {
		if _, ok := db.OptionalEnvironmentVariableValue(d.envDatabase); ok {
			return s.connect(db, d)
		}
	}
	return &BindingIncompleteError{
		Peer:    db.Name(),
		Missing: EnvMySQLDatabase + " or " + EnvPostgreSQLDatabase,
		Err:     ErrUnknownDatabase,
	}
}

// ConnectToMySQLDatabase binds the server to a MySQL deployment.
func (s *ServerBuilder) ConnectToMySQLDatabase(db *deployment.Deployment) error {
	return s.connect(db, mysqlDialect)
}

// ConnectToPostgreSQLDatabase binds the server to a PostgreSQL deployment.
func (s *ServerBuilder) ConnectToPostgreSQLDatabase(db *deployment.Deployment) error {
	return s.connect(db, postgresqlDialect)
}

// connect reads every peer value before writing any, so a failed binding
// leaves the server untouched.
func (s *ServerBuilder) connect(db *deployment.Deployment, d dialect) error {
	values := make(map[string]string, 3)
	for _, name := range []string{d.envDatabase, d.envUser, d.envPassword} {
		v, err := db.EnvironmentVariableValue(name)
		if err != nil {
			return &BindingIncompleteError{Peer: db.Name(), Missing: name, Err: err}
		}
		values[name] = v
	}

	services := db.Services()
	if len(services) == 0 {
		return &BindingIncompleteError{Peer: db.Name(), Missing: "service"}
	}
	host := services[0].Name
	port := d.port
	if ports := services[0].Spec.Ports; len(ports) > 0 && ports[0].Port > 0 {
		port = ports[0].Port
	}

	env := []struct{ name, value string }{
		{EnvDataSources, dataSourcePrefix},
		{EnvKieDatabase, values[d.envDatabase]},
		{EnvKieUsername, values[d.envUser]},
		{EnvKiePassword, values[d.envPassword]},
		{EnvKieServiceHost, host},
		{EnvKieServicePort, strconv.Itoa(int(port))},
		{EnvKieDriver, d.driver},
		{EnvKieJNDI, dataSourceJNDI},
		{EnvKieJTA, "true"},
		{EnvKieServerPersistenceDS, dataSourceJNDI},
		{EnvKieServerPersistenceDialect, d.persistenceClass},
		{EnvTimerRefreshInterval, s.opts.property("kieserver.timer_refresh_interval", defaultTimerRefresh)},
	}
	for _, e := range env {
		s.Deployment().UpsertEnvironmentVariable(e.name, e.value)
	}
	return nil
}
