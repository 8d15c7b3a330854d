package sqlstore

import (
	"context"
	"fmt"

	"github.com/platinummonkey/ideagrave/pkg/auth"
	"github.com/platinummonkey/ideagrave/pkg/storage"
)

const userColumns = `id, username, email, display_name, password_hash, verified, role, created_at`

// CreateUser inserts u and sets its ID. A taken identity yields
// storage.ErrConflict.
func (s *Store) CreateUser(ctx context.Context, u *auth.User) error {
	if u.CreatedAt.IsZero() {
		u.CreatedAt = s.now().UTC()
	}
	if u.Role == "" {
		u.Role = auth.RoleUser
	}

	err := s.db.QueryRowContext(ctx, `
		INSERT INTO users (username, email, display_name, password_hash, verified, role, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`,
		u.Identity, u.Email, u.DisplayName, u.PasswordHash, u.Verified, string(u.Role), u.CreatedAt,
	).Scan(&u.ID)
	if err != nil {
		return fmt.Errorf("failed to create user: %w", translate(err))
	}
	return nil
}

// GetUserByIdentity returns storage.ErrNotFound for unknown identities
func (s *Store) GetUserByIdentity(ctx context.Context, identity string) (*auth.User, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE username = $1`, identity)
	u, err := scanUser(row)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", translate(err))
	}
	return u, nil
}

// GetUserByID returns storage.ErrNotFound for unknown ids
func (s *Store) GetUserByID(ctx context.Context, id int64) (*auth.User, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	u, err := scanUser(row)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", translate(err))
	}
	return u, nil
}

// IdentityExists reports whether an account already uses identity
func (s *Store) IdentityExists(ctx context.Context, identity string) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM users WHERE username = $1)`, identity,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check identity: %w", err)
	}
	return exists, nil
}

// ListUsers returns every user ordered by id
func (s *Store) ListUsers(ctx context.Context) ([]*auth.User, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+userColumns+` FROM users ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	users := make([]*auth.User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate users: %w", err)
	}
	return users, nil
}

// UpdateUserRole sets the role of user id. Unknown ids yield
// storage.ErrNotFound.
func (s *Store) UpdateUserRole(ctx context.Context, id int64, role auth.Role) error {
	res, err := s.db.ExecContext(ctx, `UPDATE users SET role = $1 WHERE id = $2`, string(role), id)
	if err != nil {
		return fmt.Errorf("failed to update role: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to update role: %w", err)
	}
	if n == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// DeleteUser removes user id. Deleting an unknown id is not an error.
func (s *Store) DeleteUser(ctx context.Context, id int64) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanUser(row rowScanner) (*auth.User, error) {
	var (
		u    auth.User
		role string
	)
	if err := row.Scan(&u.ID, &u.Identity, &u.Email, &u.DisplayName, &u.PasswordHash, &u.Verified, &role, &u.CreatedAt); err != nil {
		return nil, err
	}
	u.Role = auth.Role(role)
	return &u, nil
}

