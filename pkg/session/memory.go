package session

import (
	"context"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/platinummonkey/ideagrave/pkg/storage"
)

// MemoryStore keeps sessions in a size-bounded LRU whose entries also expire
// after ttl. Sessions do not survive a restart.
type MemoryStore struct {
	lru *expirable.LRU[string, Session]
}

// NewMemoryStore creates an in-process store holding at most size sessions
func NewMemoryStore(size int, ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		lru: expirable.NewLRU[string, Session](size, nil, ttl),
	}
}

func (m *MemoryStore) Get(ctx context.Context, id string) (*Session, error) {
	s, ok := m.lru.Get(id)
	if !ok {
		return nil, storage.ErrNotFound
	}
	return &s, nil
}

func (m *MemoryStore) Save(ctx context.Context, s *Session) error {
	m.lru.Add(s.ID, *s)
	return nil
}

func (m *MemoryStore) Delete(ctx context.Context, id string) error {
	m.lru.Remove(id)
	return nil
}

// Len returns the number of live sessions
func (m *MemoryStore) Len() int {
	return m.lru.Len()
}
