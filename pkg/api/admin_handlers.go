package api

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/platinummonkey/ideagrave/pkg/admin"
	"github.com/platinummonkey/ideagrave/pkg/auth"
	"github.com/platinummonkey/ideagrave/pkg/httputil"
	"github.com/platinummonkey/ideagrave/pkg/middleware"
)

// AdminHandlers handles user administration endpoints
type AdminHandlers struct {
	admin *admin.Service
}

// NewAdminHandlers creates a new admin handlers instance
func NewAdminHandlers(service *admin.Service) *AdminHandlers {
	return &AdminHandlers{admin: service}
}

// RegisterRoutes registers user administration routes
func (h *AdminHandlers) RegisterRoutes(router *mux.Router) {
	admins := middleware.RequireRole(auth.AdminRoles...)
	superadmins := middleware.RequireRole(auth.SuperadminOnly...)

	router.Handle("/users", admins(http.HandlerFunc(h.listUsers))).Methods("GET")
	router.Handle("/users/{id}/role", superadmins(http.HandlerFunc(h.toggleRole))).Methods("PUT")
	router.Handle("/users/{id}", admins(http.HandlerFunc(h.deleteUser))).Methods("DELETE")
}

// listUsers handles GET /users
func (h *AdminHandlers) listUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.admin.ListUsers(r.Context(), middleware.PrincipalFrom(r.Context()))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httputil.WriteSuccess(w, toPrincipals(users))
}

// toggleRole handles PUT /users/{id}/role
func (h *AdminHandlers) toggleRole(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParsePathInt64OrError(w, r, "id")
	if !ok {
		return
	}

	newRole, err := h.admin.ToggleAdminRole(r.Context(), middleware.PrincipalFrom(r.Context()), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httputil.WriteSuccess(w, RoleResponse{Success: true, NewRole: newRole})
}

// deleteUser handles DELETE /users/{id}
func (h *AdminHandlers) deleteUser(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParsePathInt64OrError(w, r, "id")
	if !ok {
		return
	}

	if err := h.admin.DeleteUser(r.Context(), middleware.PrincipalFrom(r.Context()), id); err != nil {
		writeServiceError(w, r, err)
		return
	}
	httputil.WriteAck(w)
}
