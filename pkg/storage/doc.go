// Package storage holds the configuration and sentinel errors shared by the
// persistence backends.
//
// Backends live in sub-packages:
//
//   - storage/sqlstore: users, verifications, ideas and sessions on
//     database/sql (sqlite3, lib/pq or pgx), schema managed by goose
//   - storage/redisstore: sessions on Redis
//
// Backends translate driver-specific errors into ErrNotFound and
// ErrConflict so services can branch with errors.Is without importing a
// driver.
package storage
