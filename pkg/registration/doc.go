// Package registration implements email-verified sign up.
//
// The flow has three calls:
//
//	id, err := wf.RequestRegistration(ctx, "a@x.com", "pw", true) // mails a code
//	err = wf.ConfirmCode(ctx, id, "AB12CD")                        // pure check
//	user, err := wf.CompleteRegistration(ctx, id, code, "a@x.com", "pw", "Alice")
//
// An attempt is valid for the configured TTL (180s by default) counted from
// its creation; an attempt exactly TTL old is still valid. Both confirm and
// complete re-check expiry, and an expired attempt is deleted on the lookup
// that notices it, so a retry reports ErrVerificationNotFound.
//
// Completion re-checks the code, so knowing the id alone is not enough to
// claim an email. It inserts the user verified with role "user". Two
// concurrent completions for the same email race on the unique identity
// column and the loser gets ErrAccountCreationFailed.
package registration
