// Package mail sends the registration verification email.
//
// Two transports exist: SMTPTransport for a real relay (PLAIN auth over
// STARTTLS, e.g. smtp.gmail.com:587) and LogTransport, which logs the
// message and is selected automatically when no SMTP user is configured.
// Every SMTP delivery is bounded by SMTPConfig.Timeout even when the caller's
// context has no deadline.
//
//	t := mail.Instrument(mail.NewSMTPTransport(cfg), metrics)
//	err := t.Send(ctx, mail.VerificationMessage(email, subject, code))
package mail
