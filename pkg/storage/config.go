package storage

import "time"

// Supported database drivers
const (
	DriverSQLite   = "sqlite3"
	DriverPostgres = "postgres"
	DriverPgx      = "pgx"
)

// Config for the relational store and the optional Redis session backend
type Config struct {
	Driver string // "sqlite3", "postgres", "pgx"
	URL    string

	MaxConns        int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	Timeout         time.Duration

	// Redis config
	RedisURL        string
	RedisMaxRetries int
	RedisPoolSize   int
}

// DefaultConfig returns sensible default configuration
func DefaultConfig() Config {
	return Config{
		Driver:          DriverSQLite,
		URL:             "ideagrave.db",
		MaxConns:        10,
		MaxIdleConns:    5,
		ConnMaxLifetime: 30 * time.Minute,
		Timeout:         5 * time.Second,
		RedisMaxRetries: 3,
		RedisPoolSize:   10,
	}
}

// IsPostgres reports whether the driver speaks the PostgreSQL dialect
func (c Config) IsPostgres() bool {
	return c.Driver == DriverPostgres || c.Driver == DriverPgx
}
