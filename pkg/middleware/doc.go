// Package middleware provides session resolution and role gating.
//
//	sessions := middleware.NewSessionMiddleware(manager)
//	router.Use(sessions.Handler)
//
//	me := router.Handle("/me", middleware.RequireSession(meHandler))
//	users := router.Handle("/users", middleware.RequireRole(auth.AdminRoles...)(usersHandler))
//
// A request without a valid session cookie reaches RequireSession or
// RequireRole with no principal and is answered 401. A principal with the
// wrong role gets 403. Handlers read the principal with PrincipalFrom.
//
// # Related Packages
//
//   - pkg/session: Cookie and session store
//   - pkg/auth: Roles and Authorize
package middleware
