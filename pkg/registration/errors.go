package registration

import "errors"

var (
	ErrConsentRequired = errors.New("consent is required to register")
	ErrInvalidInput    = errors.New("invalid registration input")
	ErrIdentityTaken   = errors.New("identity already registered")

	// ErrVerificationNotFound covers an unknown id and a wrong code alike,
	// so a caller cannot tell which one it guessed wrong.
	ErrVerificationNotFound = errors.New("verification not found or code mismatch")

	// ErrVerificationExpired is returned once, by the lookup that deletes
	// the expired attempt.
	ErrVerificationExpired = errors.New("verification code expired")

	// ErrMailDeliveryFailed means the code could not be sent. The attempt
	// row is kept and ages out with the sweeper.
	ErrMailDeliveryFailed = errors.New("failed to send verification email")

	// ErrAccountCreationFailed means the insert lost a race on the identity.
	ErrAccountCreationFailed = errors.New("failed to create account")
)

// outcome labels err for the registration metrics
func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrConsentRequired):
		return "consent_required"
	case errors.Is(err, ErrInvalidInput):
		return "invalid_input"
	case errors.Is(err, ErrIdentityTaken):
		return "identity_taken"
	case errors.Is(err, ErrVerificationNotFound):
		return "not_found"
	case errors.Is(err, ErrVerificationExpired):
		return "expired"
	case errors.Is(err, ErrMailDeliveryFailed):
		return "mail_failed"
	case errors.Is(err, ErrAccountCreationFailed):
		return "creation_failed"
	}
	return "error"
}
