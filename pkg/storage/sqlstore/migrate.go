package sqlstore

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"sync"

	"github.com/platinummonkey/ideagrave/pkg/storage"
	"github.com/pressly/goose/v3"
)

//go:embed migrations/sqlite3/*.sql migrations/postgres/*.sql
var migrations embed.FS

// goose keeps its base FS, dialect and logger in package globals
var migrateMu sync.Mutex

// Migrate applies all pending migrations for driver. logger may be nil.
func Migrate(ctx context.Context, db *sql.DB, driver string, logger goose.Logger) error {
	dialect, dir := "sqlite3", "migrations/sqlite3"
	switch driver {
	case storage.DriverSQLite:
	case storage.DriverPostgres, storage.DriverPgx:
		dialect, dir = "postgres", "migrations/postgres"
	default:
		return fmt.Errorf("unsupported database driver: %s", driver)
	}

	if logger == nil {
		logger = goose.NopLogger()
	}

	migrateMu.Lock()
	defer migrateMu.Unlock()

	goose.SetBaseFS(migrations)
	goose.SetLogger(logger)
	if err := goose.SetDialect(dialect); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}

	if err := goose.UpContext(ctx, db, dir); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}
