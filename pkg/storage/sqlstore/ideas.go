package sqlstore

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/platinummonkey/ideagrave/pkg/ideas"
)

// CreateIdea inserts idea and sets its ID
func (s *Store) CreateIdea(ctx context.Context, idea *ideas.Idea) error {
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO ideas (title, description, date, user_id)
		VALUES ($1, $2, $3, $4)
		RETURNING id`,
		idea.Title, idea.Description, idea.Date, idea.UserID,
	).Scan(&idea.ID)
	if err != nil {
		return fmt.Errorf("failed to create idea: %w", translate(err))
	}
	return nil
}

// ListIdeas returns every idea with its author's identity. Ideas whose
// author was deleted are kept with a nil Author.
func (s *Store) ListIdeas(ctx context.Context) ([]*ideas.Idea, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT i.id, i.title, i.description, i.date, i.user_id, u.username
		FROM ideas i
		LEFT JOIN users u ON u.id = i.user_id
		ORDER BY i.id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list ideas: %w", err)
	}
	defer rows.Close()

	list := make([]*ideas.Idea, 0)
	for rows.Next() {
		var (
			idea   ideas.Idea
			author sql.NullString
		)
		if err := rows.Scan(&idea.ID, &idea.Title, &idea.Description, &idea.Date, &idea.UserID, &author); err != nil {
			return nil, fmt.Errorf("failed to scan idea: %w", err)
		}
		if author.Valid {
			idea.Author = &author.String
		}
		list = append(list, &idea)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate ideas: %w", err)
	}
	return list, nil
}

// DeleteIdea removes idea id. Unknown ids are not an error.
func (s *Store) DeleteIdea(ctx context.Context, id int64) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM ideas WHERE id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete idea: %w", err)
	}
	return nil
}
