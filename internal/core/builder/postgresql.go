package builder

// PostgreSQL env names.
const (
	EnvPostgreSQLDatabase = "POSTGRESQL_DATABASE"
	EnvPostgreSQLUser     = "POSTGRESQL_USER"
	EnvPostgreSQLPassword = "POSTGRESQL_PASSWORD"
)

var postgresqlDialect = dialect{
	component:        "postgresql",
	port:             5432,
	dataDir:          "/var/lib/pgsql/data",
	envDatabase:      EnvPostgreSQLDatabase,
	envUser:          EnvPostgreSQLUser,
	envPassword:      EnvPostgreSQLPassword,
	readiness:        `psql -h 127.0.0.1 -U $POSTGRESQL_USER -q -d $POSTGRESQL_DATABASE -c 'SELECT 1'`,
	driver:           "postgresql",
	persistenceClass: "org.hibernate.dialect.PostgreSQLDialect",
}

// PostgreSQLBuilder builds a PostgreSQL deployment listening on 5432.
type PostgreSQLBuilder struct {
	databaseBuilder
}

// NewPostgreSQLBuilder loads the "postgresql" template and configures it.
func NewPostgreSQLBuilder(opts Options) (*PostgreSQLBuilder, error) {
	p, err := newPostgreSQLBuilder(opts)
	if err != nil {
		return nil, err
	}
	if err := Configure(p); err != nil {
		return nil, err
	}
	return p, nil
}

func newPostgreSQLBuilder(opts Options) (*PostgreSQLBuilder, error) {
	db, err := newDatabaseBuilder(opts, postgresqlDialect)
	if err != nil {
		return nil, err
	}
	return &PostgreSQLBuilder{databaseBuilder: *db}, nil
}

// WithDatabaseName sets POSTGRESQL_DATABASE.
func (p *PostgreSQLBuilder) WithDatabaseName(name string) *PostgreSQLBuilder {
	p.setDatabaseName(name)
	return p
}

// WithDatabaseUser sets POSTGRESQL_USER and POSTGRESQL_PASSWORD.
func (p *PostgreSQLBuilder) WithDatabaseUser(user, password string) *PostgreSQLBuilder {
	p.setDatabaseUser(user, password)
	return p
}
