package ideas

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/platinummonkey/ideagrave/pkg/auth"
)

// DateLayout renders the creation instant like JavaScript's toISOString
const DateLayout = "2006-01-02T15:04:05.000Z07:00"

// ErrInvalidIdea is returned when an idea has no title
var ErrInvalidIdea = errors.New("title is required")

// Store persists ideas
type Store interface {
	CreateIdea(ctx context.Context, idea *Idea) error
	ListIdeas(ctx context.Context) ([]*Idea, error)
	DeleteIdea(ctx context.Context, id int64) error
}

// Service implements idea listing, creation and moderation
type Service struct {
	store Store
	now   func() time.Time
}

// NewService creates an idea service
func NewService(store Store) *Service {
	return &Service{store: store, now: time.Now}
}

// List returns every idea, including those whose author was deleted
func (s *Service) List(ctx context.Context, actor *auth.Principal) ([]*Idea, error) {
	if actor == nil {
		return nil, auth.ErrUnauthenticated
	}
	return s.store.ListIdeas(ctx)
}

// Create stores a new idea authored by actor and dated now
func (s *Service) Create(ctx context.Context, actor *auth.Principal, title, description string) (*Idea, error) {
	if actor == nil {
		return nil, auth.ErrUnauthenticated
	}

	title = strings.TrimSpace(title)
	if title == "" {
		return nil, ErrInvalidIdea
	}

	idea := &Idea{
		Title:       title,
		Description: description,
		Date:        s.now().UTC().Format(DateLayout),
		UserID:      actor.ID,
	}
	if err := s.store.CreateIdea(ctx, idea); err != nil {
		return nil, fmt.Errorf("failed to create idea: %w", err)
	}
	return idea, nil
}

// Delete removes idea id. Only admins and superadmins may delete, and they
// may delete anyone's idea.
func (s *Service) Delete(ctx context.Context, actor *auth.Principal, id int64) error {
	if err := auth.Authorize(actor, auth.AdminRoles...); err != nil {
		return err
	}
	return s.store.DeleteIdea(ctx, id)
}
