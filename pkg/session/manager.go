package session

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/securecookie"
	"github.com/platinummonkey/ideagrave/pkg/auth"
	"github.com/platinummonkey/ideagrave/pkg/storage"
)

// Options configures the session cookie
type Options struct {
	CookieName string
	Secret     string
	TTL        time.Duration
	Secure     bool
}

// Manager issues, resolves and destroys cookie-backed sessions
type Manager struct {
	store Store
	codec *securecookie.SecureCookie
	opts  Options
	now   func() time.Time
}

// NewManager creates a manager. The cookie value is the session token signed
// with opts.Secret; the token's hash keys the record in store.
func NewManager(store Store, opts Options) *Manager {
	codec := securecookie.New([]byte(opts.Secret), nil)
	codec.SetSerializer(securecookie.JSONEncoder{})
	codec.MaxAge(int(opts.TTL / time.Second))

	return &Manager{
		store: store,
		codec: codec,
		opts:  opts,
		now:   time.Now,
	}
}

// WithClock overrides the time source, for tests
func (m *Manager) WithClock(now func() time.Time) *Manager {
	m.now = now
	return m
}

// Issue stores a new session for p and sets its cookie. Any session already
// attached to r is destroyed first.
func (m *Manager) Issue(ctx context.Context, w http.ResponseWriter, r *http.Request, p *auth.Principal) (*Session, error) {
	if id, ok := m.sessionID(r); ok {
		if err := m.store.Delete(ctx, id); err != nil {
			return nil, fmt.Errorf("failed to drop previous session: %w", err)
		}
	}

	token, id, err := NewToken()
	if err != nil {
		return nil, err
	}

	now := m.now().UTC()
	s := &Session{
		ID:        id,
		Principal: *p,
		CreatedAt: now,
		ExpiresAt: now.Add(m.opts.TTL),
	}
	if err := m.store.Save(ctx, s); err != nil {
		return nil, fmt.Errorf("failed to save session: %w", err)
	}

	encoded, err := m.codec.Encode(m.opts.CookieName, token)
	if err != nil {
		return nil, fmt.Errorf("failed to encode session cookie: %w", err)
	}

	http.SetCookie(w, m.cookie(encoded, s.ExpiresAt, int(m.opts.TTL/time.Second)))
	return s, nil
}

// Load resolves the session attached to r. It returns ErrNoSession when the
// cookie is absent, tampered with, unknown or expired.
func (m *Manager) Load(ctx context.Context, r *http.Request) (*Session, error) {
	id, ok := m.sessionID(r)
	if !ok {
		return nil, ErrNoSession
	}

	s, err := m.store.Get(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrNoSession
		}
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	if s.Expired(m.now()) {
		if err := m.store.Delete(ctx, id); err != nil {
			return nil, fmt.Errorf("failed to delete expired session: %w", err)
		}
		return nil, ErrNoSession
	}

	return s, nil
}

// Destroy deletes the session attached to r, if any, and clears the cookie.
// Calling it without a session is not an error.
func (m *Manager) Destroy(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	if id, ok := m.sessionID(r); ok {
		if err := m.store.Delete(ctx, id); err != nil {
			return fmt.Errorf("failed to delete session: %w", err)
		}
	}

	http.SetCookie(w, m.cookie("", time.Unix(0, 0), -1))
	return nil
}

// sessionID extracts and verifies the cookie token and returns its store key
func (m *Manager) sessionID(r *http.Request) (string, bool) {
	c, err := r.Cookie(m.opts.CookieName)
	if err != nil || c.Value == "" {
		return "", false
	}

	var token string
	if err := m.codec.Decode(m.opts.CookieName, c.Value, &token); err != nil {
		return "", false
	}
	return HashToken(token), true
}

func (m *Manager) cookie(value string, expires time.Time, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     m.opts.CookieName,
		Value:    value,
		Path:     "/",
		Expires:  expires,
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   m.opts.Secure,
		SameSite: http.SameSiteLaxMode,
	}
}
