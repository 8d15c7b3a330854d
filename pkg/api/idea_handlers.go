package api

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/platinummonkey/ideagrave/pkg/auth"
	"github.com/platinummonkey/ideagrave/pkg/httputil"
	"github.com/platinummonkey/ideagrave/pkg/ideas"
	"github.com/platinummonkey/ideagrave/pkg/middleware"
)

// IdeaHandlers handles idea endpoints
type IdeaHandlers struct {
	ideas *ideas.Service
}

// NewIdeaHandlers creates a new idea handlers instance
func NewIdeaHandlers(service *ideas.Service) *IdeaHandlers {
	return &IdeaHandlers{ideas: service}
}

// RegisterRoutes registers idea routes
func (h *IdeaHandlers) RegisterRoutes(router *mux.Router) {
	router.Handle("/ideas", middleware.RequireSession(http.HandlerFunc(h.listIdeas))).Methods("GET")
	router.Handle("/ideas", middleware.RequireSession(http.HandlerFunc(h.createIdea))).Methods("POST")
	router.Handle("/ideas/{id}", middleware.RequireRole(auth.AdminRoles...)(http.HandlerFunc(h.deleteIdea))).Methods("DELETE")
}

// listIdeas handles GET /ideas
func (h *IdeaHandlers) listIdeas(w http.ResponseWriter, r *http.Request) {
	list, err := h.ideas.List(r.Context(), middleware.PrincipalFrom(r.Context()))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	out := make([]IdeaResponse, 0, len(list))
	for _, idea := range list {
		out = append(out, toIdeaResponse(idea))
	}
	httputil.WriteSuccess(w, out)
}

// createIdea handles POST /ideas
func (h *IdeaHandlers) createIdea(w http.ResponseWriter, r *http.Request) {
	var req CreateIdeaRequest
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}

	if _, err := h.ideas.Create(r.Context(), middleware.PrincipalFrom(r.Context()), req.Title, req.Description); err != nil {
		writeServiceError(w, r, err)
		return
	}
	httputil.WriteAck(w)
}

// deleteIdea handles DELETE /ideas/{id}
func (h *IdeaHandlers) deleteIdea(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParsePathInt64OrError(w, r, "id")
	if !ok {
		return
	}

	if err := h.ideas.Delete(r.Context(), middleware.PrincipalFrom(r.Context()), id); err != nil {
		writeServiceError(w, r, err)
		return
	}
	httputil.WriteAck(w)
}
