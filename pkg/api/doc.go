// Package api provides the HTTP JSON API of the idea board.
//
// # Routes
//
//	POST   /register           {username, password, agree} -> {verifyId, message}
//	POST   /verify             {verifyId, code}
//	POST   /complete-register  {verifyId, code, username, password, displayName}
//	POST   /login              {username, password}, sets the session cookie
//	POST   /logout
//	GET    /me                 session
//	GET    /users              admin, superadmin
//	PUT    /users/{id}/role    superadmin
//	DELETE /users/{id}         admin, superadmin
//	GET    /ideas              session
//	POST   /ideas              session
//	DELETE /ideas/{id}         admin, superadmin
//
// Acknowledgements are {"success": true}; failures are {"error": "..."} with
// the status chosen in errors.go.
//
// # Usage
//
//	server := api.NewServer(api.Deps{
//		Registration: workflow,
//		Auth:         authService,
//		Ideas:        ideaService,
//		Admin:        adminService,
//		Sessions:     sessionManager,
//		Metrics:      metrics,
//	})
//	http.ListenAndServe(":3000", server)
package api
