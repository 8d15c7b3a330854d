package api

import (
	"errors"
	"net/http"

	"github.com/platinummonkey/ideagrave/pkg/admin"
	"github.com/platinummonkey/ideagrave/pkg/auth"
	"github.com/platinummonkey/ideagrave/pkg/httputil"
	"github.com/platinummonkey/ideagrave/pkg/ideas"
	"github.com/platinummonkey/ideagrave/pkg/observability"
	"github.com/platinummonkey/ideagrave/pkg/registration"
)

// errorStatuses maps service sentinels to response codes. The sentinel's
// own text is the response message, never the wrapped cause.
var errorStatuses = []struct {
	err    error
	status int
}{
	{registration.ErrConsentRequired, http.StatusBadRequest},
	{registration.ErrInvalidInput, http.StatusBadRequest},
	{registration.ErrIdentityTaken, http.StatusBadRequest},
	{registration.ErrVerificationNotFound, http.StatusBadRequest},
	{registration.ErrVerificationExpired, http.StatusBadRequest},
	{ideas.ErrInvalidIdea, http.StatusBadRequest},
	{auth.ErrAuthenticationFailed, http.StatusUnauthorized},
	{auth.ErrUnauthenticated, http.StatusUnauthorized},
	{auth.ErrVerificationRequired, http.StatusForbidden},
	{auth.ErrForbidden, http.StatusForbidden},
	{admin.ErrUserNotFound, http.StatusNotFound},
	{registration.ErrMailDeliveryFailed, http.StatusInternalServerError},
	{registration.ErrAccountCreationFailed, http.StatusInternalServerError},
}

// statusFor returns the response code and message for err
func statusFor(err error) (int, string, bool) {
	for _, e := range errorStatuses {
		if errors.Is(err, e.err) {
			return e.status, e.err.Error(), true
		}
	}
	return http.StatusInternalServerError, "", false
}

// writeServiceError writes err as a JSON error body. Server-side failures
// are logged with their cause.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	status, msg, known := statusFor(err)
	if status >= http.StatusInternalServerError {
		observability.FromContext(r.Context()).WithError(err).
			WithField("path", r.URL.Path).
			Error("request failed")
	}
	if !known {
		httputil.WriteInternalError(w)
		return
	}
	httputil.WriteErrorMessage(w, status, msg)
}
