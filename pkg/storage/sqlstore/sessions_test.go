package sqlstore

import (
	"context"
	"testing"
	"time"

	"github.com/platinummonkey/ideagrave/pkg/auth"
	"github.com/platinummonkey/ideagrave/pkg/session"
	"github.com/platinummonkey/ideagrave/pkg/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionStore(t *testing.T) {
	ctx := context.Background()
	store := setupTestStore(t).Sessions()

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	sess := &session.Session{
		ID:        "hash-1",
		Principal: auth.Principal{ID: 5, Identity: "alice@example.com", Role: auth.RoleSuperadmin},
		CreatedAt: now,
		ExpiresAt: now.Add(time.Hour),
	}
	require.NoError(t, store.Save(ctx, sess))

	got, err := store.Get(ctx, "hash-1")
	require.NoError(t, err)
	assert.Equal(t, sess.Principal, got.Principal)
	assert.True(t, sess.ExpiresAt.Equal(got.ExpiresAt))

	require.NoError(t, store.Delete(ctx, "hash-1"))
	_, err = store.Get(ctx, "hash-1")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestSessionStore_PurgeExpired(t *testing.T) {
	ctx := context.Background()
	store := setupTestStore(t).Sessions()

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	for id, exp := range map[string]time.Time{"gone": now.Add(-time.Minute), "edge": now, "live": now.Add(time.Minute)} {
		require.NoError(t, store.Save(ctx, &session.Session{ID: id, CreatedAt: now.Add(-time.Hour), ExpiresAt: exp}))
	}

	n, err := store.PurgeExpiredSessions(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	_, err = store.Get(ctx, "live")
	assert.NoError(t, err)
}
