package admin

import (
	"context"
	"errors"
	"fmt"

	"github.com/platinummonkey/ideagrave/pkg/auth"
	"github.com/platinummonkey/ideagrave/pkg/observability"
	"github.com/platinummonkey/ideagrave/pkg/storage"
)

// ErrUserNotFound is returned when the target user does not exist
var ErrUserNotFound = errors.New("user not found")

// Store is the slice of the credential store that administration needs
type Store interface {
	ListUsers(ctx context.Context) ([]*auth.User, error)
	GetUserByID(ctx context.Context, id int64) (*auth.User, error)
	UpdateUserRole(ctx context.Context, id int64, role auth.Role) error
	DeleteUser(ctx context.Context, id int64) error
}

// Service implements role administration
type Service struct {
	store Store
}

// NewService creates an administration service
func NewService(store Store) *Service {
	return &Service{store: store}
}

// ListUsers returns all users. Requires admin or superadmin.
func (s *Service) ListUsers(ctx context.Context, actor *auth.Principal) ([]*auth.User, error) {
	if err := auth.Authorize(actor, auth.AdminRoles...); err != nil {
		return nil, err
	}
	return s.store.ListUsers(ctx)
}

// ToggledRole is the role ToggleAdminRole assigns to a user holding current
func ToggledRole(current auth.Role) auth.Role {
	if current == auth.RoleAdmin {
		return auth.RoleUser
	}
	return auth.RoleAdmin
}

// ToggleAdminRole flips the target between user and admin and returns the
// new role. Requires superadmin. A superadmin target is demoted to admin;
// this is logged as a warning.
func (s *Service) ToggleAdminRole(ctx context.Context, actor *auth.Principal, targetID int64) (auth.Role, error) {
	if err := auth.Authorize(actor, auth.SuperadminOnly...); err != nil {
		return "", err
	}

	target, err := s.store.GetUserByID(ctx, targetID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return "", ErrUserNotFound
		}
		return "", fmt.Errorf("failed to load user: %w", err)
	}

	newRole := ToggledRole(target.Role)
	if target.Role == auth.RoleSuperadmin {
		observability.FromContext(ctx).WithFields(map[string]interface{}{
			"actor_id":  actor.ID,
			"target_id": target.ID,
		}).Warn("role toggle is demoting a superadmin to admin")
	}

	if err := s.store.UpdateUserRole(ctx, targetID, newRole); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return "", ErrUserNotFound
		}
		return "", fmt.Errorf("failed to update role: %w", err)
	}

	return newRole, nil
}

// DeleteUser removes the target unconditionally. Requires admin or
// superadmin. Self-deletion and deleting the last superadmin are allowed.
func (s *Service) DeleteUser(ctx context.Context, actor *auth.Principal, targetID int64) error {
	if err := auth.Authorize(actor, auth.AdminRoles...); err != nil {
		return err
	}
	if err := s.store.DeleteUser(ctx, targetID); err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	return nil
}
