package session

import (
	"context"
	"errors"
	"time"

	"github.com/platinummonkey/ideagrave/pkg/auth"
)

// ErrNoSession is returned when a request carries no valid, live session
var ErrNoSession = errors.New("no session")

// Session is the server-side record behind a session cookie. ID is the
// SHA-256 hex of the cookie token; the raw token is never stored.
type Session struct {
	ID        string         `json:"id"`
	Principal auth.Principal `json:"principal"`
	CreatedAt time.Time      `json:"created_at"`
	ExpiresAt time.Time      `json:"expires_at"`
}

// Expired reports whether the session is no longer valid at now
func (s *Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

// Store persists sessions. Get returns storage.ErrNotFound for unknown ids
// and Delete of an unknown id is not an error.
type Store interface {
	Get(ctx context.Context, id string) (*Session, error)
	Save(ctx context.Context, s *Session) error
	Delete(ctx context.Context, id string) error
}

// Purger is implemented by stores that keep expired rows around until told
// to remove them
type Purger interface {
	PurgeExpiredSessions(ctx context.Context, now time.Time) (int64, error)
}
