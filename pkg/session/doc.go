// Package session implements cookie sessions with a pluggable server-side
// store.
//
// The browser holds a signed random token (gorilla/securecookie). The server
// keeps a Session keyed by the token's SHA-256, so a leaked store does not
// yield usable cookies.
//
//	mgr := session.NewManager(store, session.Options{
//		CookieName: "ideagrave.sid",
//		Secret:     cfg.Session.Secret,
//		TTL:        24 * time.Hour,
//	})
//	s, err := mgr.Issue(ctx, w, r, principal)
//	s, err = mgr.Load(ctx, r)      // ErrNoSession when absent
//	err = mgr.Destroy(ctx, w, r)   // idempotent
//
// Stores:
//
//   - MemoryStore: in-process expirable LRU
//   - sqlstore.Store: the sessions table
//   - redisstore.SessionStore: Redis keys with TTL
package session
