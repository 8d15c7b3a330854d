// Package httputil provides HTTP utilities for standardized request/response handling.
//
// # Response Helpers
//
//	httputil.WriteJSON(w, http.StatusOK, data)
//	httputil.WriteAck(w) // {"success": true}
//	httputil.WriteBadRequest(w, "title is required")
//	httputil.WriteForbidden(w, "insufficient role")
//
// Every error body has the shape {"error": "<message>"}.
//
// # Request Parsing
//
//	var req loginRequest
//	if !httputil.ParseJSONOrError(w, r, &req) {
//		return // Error response already written
//	}
//	id, ok := httputil.ParsePathInt64OrError(w, r, "id")
//
// # Middleware
//
//	httputil.Chain(
//		httputil.RequestIDMiddleware,
//		httputil.LoggingMiddleware(logger),
//		httputil.RecoveryMiddleware(logger),
//		httputil.CORSMiddleware([]string{"http://localhost:3000"}),
//		httputil.MaxBytesMiddleware(1<<20),
//	)
//
// # Related Packages
//
//   - pkg/middleware: Session and role middleware
package httputil
