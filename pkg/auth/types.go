package auth

import (
	"strings"
	"time"
)

// Role is a user's access level
type Role string

const (
	RoleUser       Role = "user"
	RoleAdmin      Role = "admin"
	RoleSuperadmin Role = "superadmin"
)

// Role sets accepted by the gated routes
var (
	AdminRoles     = []Role{RoleAdmin, RoleSuperadmin}
	SuperadminOnly = []Role{RoleSuperadmin}
)

// Valid reports whether r is one of the known roles
func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleAdmin, RoleSuperadmin:
		return true
	}
	return false
}

// User represents an account. Identity is the normalized email address used
// to log in; Email is kept separately so a future display change does not
// break login.
type User struct {
	ID           int64     `json:"id"`
	Identity     string    `json:"username"`
	Email        string    `json:"email"`
	DisplayName  string    `json:"display_name"`
	PasswordHash string    `json:"-"`
	Verified     bool      `json:"verified"`
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
}

// Principal returns the session snapshot of the user
func (u *User) Principal() *Principal {
	return &Principal{ID: u.ID, Identity: u.Identity, Role: u.Role}
}

// Principal is the identity snapshot carried by a session. The role is
// captured at login and is not refreshed when an administrator changes it.
type Principal struct {
	ID       int64  `json:"id"`
	Identity string `json:"username"`
	Role     Role   `json:"role"`
}

// HasRole reports whether the principal's role is in roles
func (p *Principal) HasRole(roles ...Role) bool {
	if p == nil {
		return false
	}
	for _, r := range roles {
		if p.Role == r {
			return true
		}
	}
	return false
}

// NormalizeIdentity trims and lower-cases an email identity
func NormalizeIdentity(identity string) string {
	return strings.ToLower(strings.TrimSpace(identity))
}
