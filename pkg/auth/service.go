package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/platinummonkey/ideagrave/pkg/observability"
	"github.com/platinummonkey/ideagrave/pkg/storage"
)

// UserReader looks up accounts by login identity
type UserReader interface {
	GetUserByIdentity(ctx context.Context, identity string) (*User, error)
}

// Service authenticates credentials and checks role requirements
type Service struct {
	users     UserReader
	hasher    Hasher
	metrics   *observability.Metrics
	dummyHash string
}

// NewService creates an authentication service. metrics may be nil.
func NewService(users UserReader, hasher Hasher, metrics *observability.Metrics) (*Service, error) {
	// Compared against when the identity is unknown so both paths pay for a
	// bcrypt comparison.
	dummy, err := hasher.Hash("ideagrave-absent-account")
	if err != nil {
		return nil, fmt.Errorf("failed to prepare dummy hash: %w", err)
	}

	return &Service{
		users:     users,
		hasher:    hasher,
		metrics:   metrics,
		dummyHash: dummy,
	}, nil
}

// Login checks credentials and returns the principal to store in the session
func (s *Service) Login(ctx context.Context, identity, password string) (*Principal, error) {
	identity = NormalizeIdentity(identity)

	user, err := s.users.GetUserByIdentity(ctx, identity)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			s.metrics.ObserveLogin("error")
			return nil, fmt.Errorf("failed to load user: %w", err)
		}
		_ = s.hasher.Compare(s.dummyHash, password)
		s.metrics.ObserveLogin("failed")
		return nil, ErrAuthenticationFailed
	}

	if err := s.hasher.Compare(user.PasswordHash, password); err != nil {
		s.metrics.ObserveLogin("failed")
		return nil, ErrAuthenticationFailed
	}

	if !user.Verified {
		s.metrics.ObserveLogin("unverified")
		return nil, ErrVerificationRequired
	}

	s.metrics.ObserveLogin("success")
	return user.Principal(), nil
}

// Authorize returns ErrUnauthenticated when there is no principal and
// ErrForbidden when its role is not one of allowed
func Authorize(p *Principal, allowed ...Role) error {
	if p == nil {
		return ErrUnauthenticated
	}
	if !p.HasRole(allowed...) {
		return ErrForbidden
	}
	return nil
}
