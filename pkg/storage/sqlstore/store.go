package sqlstore

import (
	"database/sql"
	"time"
)

// Store implements the user, verification and idea stores on database/sql.
// Queries use $n placeholders, which sqlite3, lib/pq and pgx all accept.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// New wraps an open database
func New(db *sql.DB) *Store {
	return &Store{db: db, now: time.Now}
}

// DB returns the underlying handle
func (s *Store) DB() *sql.DB {
	return s.db
}

// Sessions returns a session store sharing the same database
func (s *Store) Sessions() *SessionStore {
	return &SessionStore{db: s.db}
}
