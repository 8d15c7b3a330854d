package auth

import "errors"

var (
	// ErrAuthenticationFailed covers both unknown identities and wrong
	// passwords so callers cannot tell them apart
	ErrAuthenticationFailed = errors.New("invalid credentials")
	// ErrVerificationRequired is returned when the password matched an
	// account that never completed email verification
	ErrVerificationRequired = errors.New("email verification required")
	ErrUnauthenticated      = errors.New("authentication required")
	ErrForbidden            = errors.New("insufficient permissions")
)
