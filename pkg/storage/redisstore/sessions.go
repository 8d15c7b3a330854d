package redisstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/platinummonkey/ideagrave/pkg/session"
	"github.com/platinummonkey/ideagrave/pkg/storage"
)

const sessionKeyPrefix = "session:"

// SessionStore keeps sessions as JSON values that Redis expires on its own
type SessionStore struct {
	client *redis.Client
	now    func() time.Time
}

// NewSessionStore creates a session store on client
func NewSessionStore(client *redis.Client) *SessionStore {
	return &SessionStore{client: client, now: time.Now}
}

func sessionKey(id string) string {
	return sessionKeyPrefix + id
}

func (s *SessionStore) Get(ctx context.Context, id string) (*session.Session, error) {
	key := sessionKey(id)

	data, err := s.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, storage.ErrNotFound
	} else if err != nil {
		return nil, fmt.Errorf("redis get failed: %w", err)
	}

	var sess session.Session
	if err := json.Unmarshal(data, &sess); err != nil {
		// If unmarshal fails, delete corrupt data
		s.client.Del(ctx, key)
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}

	return &sess, nil
}

// Save stores sess with a TTL matching its expiry. Already expired sessions
// are not written.
func (s *SessionStore) Save(ctx context.Context, sess *session.Session) error {
	ttl := sess.ExpiresAt.Sub(s.now())
	if ttl <= 0 {
		return nil
	}

	data, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	if err := s.client.Set(ctx, sessionKey(sess.ID), data, ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (s *SessionStore) Delete(ctx context.Context, id string) error {
	if err := s.client.Del(ctx, sessionKey(id)).Err(); err != nil {
		return fmt.Errorf("redis del failed: %w", err)
	}
	return nil
}

var _ session.Store = (*SessionStore)(nil)
