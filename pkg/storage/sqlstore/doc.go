// Package sqlstore persists users, verification attempts, ideas and
// sessions with database/sql.
//
// Three drivers are supported: sqlite3 (mattn/go-sqlite3, the default),
// postgres (lib/pq) and pgx (jackc/pgx stdlib). The schema is embedded and
// applied with goose:
//
//	db, err := sqlstore.Open(ctx, cfg.Storage)
//	err = sqlstore.Migrate(ctx, db, cfg.Storage.Driver, logger)
//	store := sqlstore.New(db)
//
// Missing rows surface as storage.ErrNotFound and unique violations as
// storage.ErrConflict, whatever the driver.
package sqlstore
