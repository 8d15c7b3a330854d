package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/platinummonkey/ideagrave/pkg/auth"
	"github.com/platinummonkey/ideagrave/pkg/session"
)

// SessionStore keeps sessions in the sessions table. Expired rows remain
// until PurgeExpiredSessions runs or the row is next loaded.
type SessionStore struct {
	db *sql.DB
}

// NewSessionStore creates a session store on db
func NewSessionStore(db *sql.DB) *SessionStore {
	return &SessionStore{db: db}
}

func (s *SessionStore) Get(ctx context.Context, id string) (*session.Session, error) {
	var (
		sess session.Session
		role string
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT id, user_id, username, role, created_at, expires_at
		FROM sessions WHERE id = $1`, id,
	).Scan(&sess.ID, &sess.Principal.ID, &sess.Principal.Identity, &role, &sess.CreatedAt, &sess.ExpiresAt)
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", translate(err))
	}
	sess.Principal.Role = auth.Role(role)
	return &sess, nil
}

func (s *SessionStore) Save(ctx context.Context, sess *session.Session) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO sessions (id, user_id, username, role, created_at, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		sess.ID, sess.Principal.ID, sess.Principal.Identity, string(sess.Principal.Role),
		sess.CreatedAt.UTC(), sess.ExpiresAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to save session: %w", translate(err))
	}
	return nil
}

func (s *SessionStore) Delete(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// PurgeExpiredSessions removes sessions that expired at or before now
func (s *SessionStore) PurgeExpiredSessions(ctx context.Context, now time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE expires_at <= $1`, now.UTC())
	if err != nil {
		return 0, fmt.Errorf("failed to purge sessions: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to purge sessions: %w", err)
	}
	return n, nil
}

var (
	_ session.Store  = (*SessionStore)(nil)
	_ session.Purger = (*SessionStore)(nil)
)
