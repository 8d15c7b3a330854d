// Package auth provides password authentication and role checks.
//
// # Login
//
//	svc, err := auth.NewService(userStore, auth.NewBcryptHasher(10), metrics)
//	principal, err := svc.Login(ctx, "alice@example.com", "hunter2")
//	switch {
//	case errors.Is(err, auth.ErrAuthenticationFailed): // 401
//	case errors.Is(err, auth.ErrVerificationRequired): // 403
//	}
//
// Unknown identities still pay for a bcrypt comparison against a dummy hash,
// so response timing does not reveal which accounts exist.
//
// # Roles
//
//	RoleUser       - default for self-registered accounts
//	RoleAdmin      - may list users and moderate ideas
//	RoleSuperadmin - may additionally change roles and delete users
//
// Role checks are exact set membership; there is no hierarchy:
//
//	err := auth.Authorize(principal, auth.AdminRoles...)
//
// # Related Packages
//
//   - pkg/session: Stores the Principal returned by Login
//   - pkg/middleware: HTTP session and role middleware
package auth
