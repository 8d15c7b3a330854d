package api

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/platinummonkey/ideagrave/pkg/auth"
	"github.com/platinummonkey/ideagrave/pkg/httputil"
	"github.com/platinummonkey/ideagrave/pkg/middleware"
	"github.com/platinummonkey/ideagrave/pkg/observability"
	"github.com/platinummonkey/ideagrave/pkg/registration"
	"github.com/platinummonkey/ideagrave/pkg/session"
)

// verificationSentMessage accompanies the verify id in the /register response
const verificationSentMessage = "verification email sent"

// AuthHandlers handles registration and session endpoints
type AuthHandlers struct {
	workflow *registration.Workflow
	auth     *auth.Service
	sessions *session.Manager
}

// NewAuthHandlers creates a new auth handlers instance
func NewAuthHandlers(workflow *registration.Workflow, authService *auth.Service, sessions *session.Manager) *AuthHandlers {
	return &AuthHandlers{
		workflow: workflow,
		auth:     authService,
		sessions: sessions,
	}
}

// RegisterRoutes registers authentication routes
func (h *AuthHandlers) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/register", h.register).Methods("POST")
	router.HandleFunc("/verify", h.verify).Methods("POST")
	router.HandleFunc("/complete-register", h.completeRegister).Methods("POST")
	router.HandleFunc("/login", h.login).Methods("POST")
	router.HandleFunc("/logout", h.logout).Methods("POST")
	router.Handle("/me", middleware.RequireSession(http.HandlerFunc(h.me))).Methods("GET")
}

// register handles POST /register
func (h *AuthHandlers) register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}

	verifyID, err := h.workflow.RequestRegistration(r.Context(), req.Username, req.Password, req.Agree)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httputil.WriteSuccess(w, RegisterResponse{
		VerifyID: verifyID,
		Message:  verificationSentMessage,
	})
}

// verify handles POST /verify
func (h *AuthHandlers) verify(w http.ResponseWriter, r *http.Request) {
	var req VerifyRequest
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}

	if err := h.workflow.ConfirmCode(r.Context(), req.VerifyID, req.Code); err != nil {
		writeServiceError(w, r, err)
		return
	}
	httputil.WriteAck(w)
}

// completeRegister handles POST /complete-register
func (h *AuthHandlers) completeRegister(w http.ResponseWriter, r *http.Request) {
	var req CompleteRegisterRequest
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}

	user, err := h.workflow.CompleteRegistration(r.Context(), req.VerifyID, req.Code, req.Username, req.Password, req.DisplayName)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	observability.FromContext(r.Context()).WithField("new_user_id", user.ID).Info("account created")
	httputil.WriteAck(w)
}

// login handles POST /login
func (h *AuthHandlers) login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}

	principal, err := h.auth.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	if _, err := h.sessions.Issue(r.Context(), w, r, principal); err != nil {
		writeServiceError(w, r, err)
		return
	}
	httputil.WriteAck(w)
}

// logout handles POST /logout. It succeeds without a session.
func (h *AuthHandlers) logout(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.Destroy(r.Context(), w, r); err != nil {
		writeServiceError(w, r, err)
		return
	}
	httputil.WriteAck(w)
}

// me handles GET /me
func (h *AuthHandlers) me(w http.ResponseWriter, r *http.Request) {
	httputil.NoStore(w)
	httputil.WriteSuccess(w, middleware.PrincipalFrom(r.Context()))
}
