// Package admin implements user administration: listing accounts, toggling
// the admin role and deleting accounts.
//
// Role changes do not touch sessions that are already issued; the affected
// user keeps their old role until they log in again.
package admin
