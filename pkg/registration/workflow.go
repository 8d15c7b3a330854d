package registration

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	netmail "net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/platinummonkey/ideagrave/pkg/auth"
	"github.com/platinummonkey/ideagrave/pkg/mail"
	"github.com/platinummonkey/ideagrave/pkg/observability"
	"github.com/platinummonkey/ideagrave/pkg/storage"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// DefaultTTL is how long a verification code stays valid
const DefaultTTL = 180 * time.Second

// Store is what the workflow needs from persistence
type Store interface {
	IdentityExists(ctx context.Context, identity string) (bool, error)
	CreateUser(ctx context.Context, u *auth.User) error
	CreateVerification(ctx context.Context, v *Verification) error
	GetVerification(ctx context.Context, id string) (*Verification, error)
	DeleteVerification(ctx context.Context, id string) error
}

// Config tunes the workflow
type Config struct {
	TTL     time.Duration
	Subject string
}

// Workflow runs the request, confirm and complete steps of signing up
type Workflow struct {
	store   Store
	mailer  mail.Transport
	hasher  auth.Hasher
	cfg     Config
	metrics *observability.Metrics
	tracer  trace.Tracer

	now     func() time.Time
	newCode func() (string, error)
	newID   func() string
}

// NewWorkflow creates a workflow. metrics may be nil.
func NewWorkflow(store Store, mailer mail.Transport, hasher auth.Hasher, cfg Config, metrics *observability.Metrics) *Workflow {
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultTTL
	}

	return &Workflow{
		store:   store,
		mailer:  mailer,
		hasher:  hasher,
		cfg:     cfg,
		metrics: metrics,
		tracer:  otel.Tracer("github.com/platinummonkey/ideagrave/pkg/registration"),
		now:     time.Now,
		newCode: NewCode,
		newID:   uuid.NewString,
	}
}

// WithClock overrides the time source
func (w *Workflow) WithClock(now func() time.Time) *Workflow {
	w.now = now
	return w
}

// RequestRegistration records a verification attempt for identity and mails
// its code. It returns the verification id, never the code. When mailing
// fails the attempt is kept and ErrMailDeliveryFailed is returned.
func (w *Workflow) RequestRegistration(ctx context.Context, identity, password string, consent bool) (verifyID string, err error) {
	ctx, span := w.tracer.Start(ctx, "registration.Request")
	defer func() { w.finish(span, "request", err) }()

	if !consent {
		return "", ErrConsentRequired
	}

	identity = auth.NormalizeIdentity(identity)
	if err := validateIdentity(identity); err != nil {
		return "", err
	}
	if err := validatePassword(password); err != nil {
		return "", err
	}

	exists, err := w.store.IdentityExists(ctx, identity)
	if err != nil {
		return "", fmt.Errorf("failed to check identity: %w", err)
	}
	if exists {
		return "", ErrIdentityTaken
	}

	code, err := w.newCode()
	if err != nil {
		return "", err
	}

	v := &Verification{
		ID:        w.newID(),
		Email:     identity,
		Code:      code,
		CreatedAt: w.now().UTC(),
	}
	if err := w.store.CreateVerification(ctx, v); err != nil {
		return "", fmt.Errorf("failed to store verification: %w", err)
	}
	span.SetAttributes(attribute.String("verification.id", v.ID))

	if err := w.mailer.Send(ctx, mail.VerificationMessage(v.Email, w.cfg.Subject, v.Code)); err != nil {
		observability.FromContext(ctx).
			WithError(err).
			WithField("verification_id", v.ID).
			Error("verification email failed")
		return "", fmt.Errorf("%w: %v", ErrMailDeliveryFailed, err)
	}

	return v.ID, nil
}

// ConfirmCode checks code against attempt verifyID without consuming it
func (w *Workflow) ConfirmCode(ctx context.Context, verifyID, code string) (err error) {
	ctx, span := w.tracer.Start(ctx, "registration.Confirm")
	defer func() { w.finish(span, "confirm", err) }()

	v, err := w.lookup(ctx, verifyID)
	if err != nil {
		return err
	}

	if !matchCode(v, code) {
		return ErrVerificationNotFound
	}

	return w.checkExpiry(ctx, v)
}

// CompleteRegistration creates the verified account for attempt verifyID
// and consumes the attempt. code must be the attempt's emailed code.
// identity may be empty, meaning the attempt's email; otherwise it must
// match that email.
func (w *Workflow) CompleteRegistration(ctx context.Context, verifyID, code, identity, password, displayName string) (user *auth.User, err error) {
	ctx, span := w.tracer.Start(ctx, "registration.Complete")
	defer func() { w.finish(span, "complete", err) }()

	v, err := w.lookup(ctx, verifyID)
	if err != nil {
		return nil, err
	}
	if !matchCode(v, code) {
		return nil, ErrVerificationNotFound
	}
	if err := w.checkExpiry(ctx, v); err != nil {
		return nil, err
	}

	identity = auth.NormalizeIdentity(identity)
	if identity != "" && identity != v.Email {
		return nil, fmt.Errorf("%w: identity does not match the verified email", ErrInvalidInput)
	}
	if err := validatePassword(password); err != nil {
		return nil, err
	}

	hash, err := w.hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user = &auth.User{
		Identity:     v.Email,
		Email:        v.Email,
		DisplayName:  strings.TrimSpace(displayName),
		PasswordHash: hash,
		Verified:     true,
		Role:         auth.RoleUser,
		CreatedAt:    w.now().UTC(),
	}
	if err := w.store.CreateUser(ctx, user); err != nil {
		if errors.Is(err, storage.ErrConflict) {
			return nil, fmt.Errorf("%w: %v", ErrAccountCreationFailed, err)
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	if err := w.store.DeleteVerification(ctx, v.ID); err != nil {
		observability.FromContext(ctx).
			WithError(err).
			WithField("verification_id", v.ID).
			Warn("account created but verification entry was not removed")
	}

	return user, nil
}

// lookup fetches attempt id, mapping a missing row to ErrVerificationNotFound
func (w *Workflow) lookup(ctx context.Context, id string) (*Verification, error) {
	if strings.TrimSpace(id) == "" {
		return nil, ErrVerificationNotFound
	}

	v, err := w.store.GetVerification(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrVerificationNotFound
		}
		return nil, fmt.Errorf("failed to load verification: %w", err)
	}
	return v, nil
}

// matchCode compares code with v's code in constant time, ignoring case and
// surrounding space
func matchCode(v *Verification, code string) bool {
	submitted := strings.ToUpper(strings.TrimSpace(code))
	return subtle.ConstantTimeCompare([]byte(submitted), []byte(v.Code)) == 1
}

// checkExpiry deletes v and returns ErrVerificationExpired once it is past
// the TTL
func (w *Workflow) checkExpiry(ctx context.Context, v *Verification) error {
	if !v.Expired(w.now(), w.cfg.TTL) {
		return nil
	}
	if err := w.store.DeleteVerification(ctx, v.ID); err != nil {
		return fmt.Errorf("failed to delete expired verification: %w", err)
	}
	return ErrVerificationExpired
}

func (w *Workflow) finish(span trace.Span, stage string, err error) {
	result := outcome(err)
	w.metrics.ObserveRegistration(stage, result)

	span.SetAttributes(attribute.String("registration.outcome", result))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, result)
	}
	span.End()
}

func validateIdentity(identity string) error {
	if identity == "" {
		return fmt.Errorf("%w: email is required", ErrInvalidInput)
	}
	addr, err := netmail.ParseAddress(identity)
	if err != nil || addr.Address != identity {
		return fmt.Errorf("%w: %q is not an email address", ErrInvalidInput, identity)
	}
	return nil
}

func validatePassword(password string) error {
	if password == "" {
		return fmt.Errorf("%w: password is required", ErrInvalidInput)
	}
	if len(password) > auth.MaxPasswordBytes {
		return fmt.Errorf("%w: password longer than %d bytes", ErrInvalidInput, auth.MaxPasswordBytes)
	}
	return nil
}
