package middleware

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/platinummonkey/ideagrave/pkg/auth"
	"github.com/platinummonkey/ideagrave/pkg/contextkeys"
	"github.com/platinummonkey/ideagrave/pkg/httputil"
	"github.com/platinummonkey/ideagrave/pkg/observability"
	"github.com/platinummonkey/ideagrave/pkg/session"
)

// SessionLoader resolves the session attached to a request
type SessionLoader interface {
	Load(ctx context.Context, r *http.Request) (*session.Session, error)
}

// SessionMiddleware attaches the session principal, when there is one, to
// the request context. Requests without a session pass through untouched;
// gating is left to RequireSession and RequireRole.
type SessionMiddleware struct {
	sessions SessionLoader
}

// NewSessionMiddleware creates a new session middleware
func NewSessionMiddleware(sessions SessionLoader) *SessionMiddleware {
	return &SessionMiddleware{sessions: sessions}
}

// Handler wraps an HTTP handler with session resolution
func (m *SessionMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s, err := m.sessions.Load(r.Context(), r)
		if err != nil {
			if errors.Is(err, session.ErrNoSession) {
				next.ServeHTTP(w, r)
				return
			}
			observability.FromContext(r.Context()).WithError(err).Error("session lookup failed")
			httputil.WriteInternalError(w)
			return
		}

		p := s.Principal
		ctx := contextkeys.WithPrincipal(r.Context(), &p)
		ctx = contextkeys.WithSessionID(ctx, s.ID)
		ctx = contextkeys.WithUserID(ctx, strconv.FormatInt(p.ID, 10))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// PrincipalFrom returns the principal resolved for this request, or nil
func PrincipalFrom(ctx context.Context) *auth.Principal {
	p, _ := ctx.Value(contextkeys.PrincipalKey).(*auth.Principal)
	return p
}

// RequireSession rejects requests without a session with 401
func RequireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if PrincipalFrom(r.Context()) == nil {
			httputil.WriteUnauthorized(w, auth.ErrUnauthenticated.Error())
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireRole rejects requests without a session with 401 and requests whose
// principal holds none of roles with 403
func RequireRole(roles ...auth.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch err := auth.Authorize(PrincipalFrom(r.Context()), roles...); {
			case errors.Is(err, auth.ErrUnauthenticated):
				httputil.WriteUnauthorized(w, err.Error())
			case err != nil:
				httputil.WriteForbidden(w, err.Error())
			default:
				next.ServeHTTP(w, r)
			}
		})
	}
}
