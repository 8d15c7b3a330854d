package api

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/platinummonkey/ideagrave/pkg/admin"
	"github.com/platinummonkey/ideagrave/pkg/auth"
	"github.com/platinummonkey/ideagrave/pkg/ideas"
	"github.com/platinummonkey/ideagrave/pkg/middleware"
	"github.com/platinummonkey/ideagrave/pkg/observability"
	"github.com/platinummonkey/ideagrave/pkg/registration"
	"github.com/platinummonkey/ideagrave/pkg/session"
)

// Deps are the services the API is built on
type Deps struct {
	Registration *registration.Workflow
	Auth         *auth.Service
	Ideas        *ideas.Service
	Admin        *admin.Service
	Sessions     *session.Manager
	Metrics      *observability.Metrics
}

// Server represents our API server
type Server struct {
	router *mux.Router
}

// NewServer creates the API server with every route registered
func NewServer(deps Deps) *Server {
	s := &Server{router: mux.NewRouter()}

	s.router.Use(middleware.NewSessionMiddleware(deps.Sessions).Handler)
	if deps.Metrics != nil {
		s.router.Use(observability.HTTPMetricsMiddleware(deps.Metrics))
	}

	s.RegisterRoutes(NewAuthHandlers(deps.Registration, deps.Auth, deps.Sessions))
	s.RegisterRoutes(NewAdminHandlers(deps.Admin))
	s.RegisterRoutes(NewIdeaHandlers(deps.Ideas))
	return s
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Router returns the underlying router
func (s *Server) Router() *mux.Router {
	return s.router
}

// RouteRegistrar is an interface for types that can register routes
type RouteRegistrar interface {
	RegisterRoutes(router *mux.Router)
}

// RegisterRoutes registers routes from a RouteRegistrar
func (s *Server) RegisterRoutes(registrar RouteRegistrar) {
	registrar.RegisterRoutes(s.router)
}
