package sqlstore

import (
	"context"
	"fmt"
	"time"

	"github.com/platinummonkey/ideagrave/pkg/registration"
)

// CreateVerification stores a pending verification attempt
func (s *Store) CreateVerification(ctx context.Context, v *registration.Verification) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO verifications (id, email, code, created_at) VALUES ($1, $2, $3, $4)`,
		v.ID, v.Email, v.Code, v.CreatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to create verification: %w", translate(err))
	}
	return nil
}

// GetVerification returns storage.ErrNotFound for unknown ids
func (s *Store) GetVerification(ctx context.Context, id string) (*registration.Verification, error) {
	var v registration.Verification
	err := s.db.QueryRowContext(ctx,
		`SELECT id, email, code, created_at FROM verifications WHERE id = $1`, id,
	).Scan(&v.ID, &v.Email, &v.Code, &v.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to get verification: %w", translate(err))
	}
	return &v, nil
}

// DeleteVerification removes attempt id. Unknown ids are not an error.
func (s *Store) DeleteVerification(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM verifications WHERE id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete verification: %w", err)
	}
	return nil
}

// DeleteVerificationsBefore removes attempts created before cutoff and
// returns how many were removed
func (s *Store) DeleteVerificationsBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM verifications WHERE created_at < $1`, cutoff.UTC())
	if err != nil {
		return 0, fmt.Errorf("failed to sweep verifications: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to sweep verifications: %w", err)
	}
	return n, nil
}
