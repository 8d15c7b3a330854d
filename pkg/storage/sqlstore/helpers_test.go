package sqlstore

import (
	"context"
	"testing"
	"time"

	"github.com/platinummonkey/ideagrave/pkg/storage"
	"github.com/stretchr/testify/require"
)

// setupTestStore returns a migrated in-memory SQLite store
func setupTestStore(t *testing.T) *Store {
	t.Helper()
	ctx := context.Background()

	cfg := storage.DefaultConfig()
	cfg.URL = ":memory:"

	db, err := Open(ctx, cfg)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, Migrate(ctx, db, storage.DriverSQLite, nil))

	s := New(db)
	s.now = func() time.Time { return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC) }
	return s
}
