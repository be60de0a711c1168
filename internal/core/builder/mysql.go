package builder

// MySQL env names.
const (
	EnvMySQLDatabase = "MYSQL_DATABASE"
	EnvMySQLUser     = "MYSQL_USER"
	EnvMySQLPassword = "MYSQL_PASSWORD"
)

var mysqlDialect = dialect{
	component:        "mysql",
	port:             3306,
	dataDir:          "/var/lib/mysql/data",
	envDatabase:      EnvMySQLDatabase,
	envUser:          EnvMySQLUser,
	envPassword:      EnvMySQLPassword,
	readiness:        `MYSQL_PWD="$MYSQL_PASSWORD" mysql -h 127.0.0.1 -u $MYSQL_USER -D $MYSQL_DATABASE -e 'SELECT 1'`,
	driver:           "mysql",
	persistenceClass: "org.hibernate.dialect.MySQL8Dialect",
}

// MySQLBuilder builds a MySQL deployment listening on 3306.
type MySQLBuilder struct {
	databaseBuilder
}

// NewMySQLBuilder loads the "mysql" template and configures it.
func NewMySQLBuilder(opts Options) (*MySQLBuilder, error) {
	m, err := newMySQLBuilder(opts)
	if err != nil {
		return nil, err
	}
	if err := Configure(m); err != nil {
		return nil, err
	}
	return m, nil
}

func newMySQLBuilder(opts Options) (*MySQLBuilder, error) {
	db, err := newDatabaseBuilder(opts, mysqlDialect)
	if err != nil {
		return nil, err
	}
	return &MySQLBuilder{databaseBuilder: *db}, nil
}

// WithDatabaseName sets MYSQL_DATABASE.
func (m *MySQLBuilder) WithDatabaseName(name string) *MySQLBuilder {
	m.setDatabaseName(name)
	return m
}

// WithDatabaseUser sets MYSQL_USER and MYSQL_PASSWORD.
func (m *MySQLBuilder) WithDatabaseUser(user, password string) *MySQLBuilder {
	m.setDatabaseUser(user, password)
	return m
}
