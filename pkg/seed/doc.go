// Package seed creates accounts at startup, from SUPERADMIN_IDENTITY and
// SUPERADMIN_PASSWORD and from an optional YAML file. Existing identities
// are left untouched, so seeding is safe on every boot.
package seed
