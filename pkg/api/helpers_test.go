package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/platinummonkey/ideagrave/pkg/admin"
	"github.com/platinummonkey/ideagrave/pkg/auth"
	"github.com/platinummonkey/ideagrave/pkg/ideas"
	"github.com/platinummonkey/ideagrave/pkg/mail"
	"github.com/platinummonkey/ideagrave/pkg/observability"
	"github.com/platinummonkey/ideagrave/pkg/registration"
	"github.com/platinummonkey/ideagrave/pkg/seed"
	"github.com/platinummonkey/ideagrave/pkg/session"
	"github.com/platinummonkey/ideagrave/pkg/storage"
	"github.com/platinummonkey/ideagrave/pkg/storage/sqlstore"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// captureMailer keeps every message instead of delivering it
type captureMailer struct {
	mu   sync.Mutex
	sent []mail.Message
}

func (c *captureMailer) Send(ctx context.Context, msg mail.Message) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sent = append(c.sent, msg)
	return nil
}

func (c *captureMailer) Name() string { return "capture" }

// lastCode returns the code from the most recent verification mail
func (c *captureMailer) lastCode(t *testing.T) string {
	t.Helper()
	c.mu.Lock()
	defer c.mu.Unlock()
	require.NotEmpty(t, c.sent)
	body := c.sent[len(c.sent)-1].Body
	i := strings.LastIndex(body, ": ")
	require.True(t, i >= 0, "unexpected body %q", body)
	return body[i+2:]
}

type testEnv struct {
	server  *httptest.Server
	store   *sqlstore.Store
	mailer  *captureMailer
	metrics *observability.Metrics
}

const testPassword = "hunter2"

// setupTestEnv starts the API over a migrated in-memory SQLite database with
// one account per role, all sharing testPassword
func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()
	ctx := context.Background()

	cfg := storage.DefaultConfig()
	cfg.URL = ":memory:"
	db, err := sqlstore.Open(ctx, cfg)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, sqlstore.Migrate(ctx, db, storage.DriverSQLite, nil))

	store := sqlstore.New(db)
	hasher := auth.NewBcryptHasher(bcrypt.MinCost)
	metrics := observability.NewMetrics(prometheus.NewRegistry())
	logger := observability.NewLogger(observability.ErrorLevel, io.Discard)

	_, err = seed.NewSeeder(store, hasher, logger).Seed(ctx,
		seed.Account{Identity: "root@example.com", Password: testPassword, Role: auth.RoleSuperadmin},
		seed.Account{Identity: "mod@example.com", Password: testPassword, Role: auth.RoleAdmin},
		seed.Account{Identity: "user@example.com", Password: testPassword, Role: auth.RoleUser},
	)
	require.NoError(t, err)

	authService, err := auth.NewService(store, hasher, metrics)
	require.NoError(t, err)

	mailer := &captureMailer{}
	server := NewServer(Deps{
		Registration: registration.NewWorkflow(store, mailer, hasher, registration.Config{Subject: "Verify"}, metrics),
		Auth:         authService,
		Ideas:        ideas.NewService(store),
		Admin:        admin.NewService(store),
		Sessions: session.NewManager(store.Sessions(), session.Options{
			CookieName: "ideagrave.sid",
			Secret:     "0123456789abcdef0123456789abcdef",
			TTL:        time.Hour,
		}),
		Metrics: metrics,
	})

	ts := httptest.NewServer(server)
	t.Cleanup(ts.Close)

	return &testEnv{server: ts, store: store, mailer: mailer, metrics: metrics}
}

// client is a browser-like client with its own cookie jar
type client struct {
	t    *testing.T
	base string
	http *http.Client
}

func (e *testEnv) newClient(t *testing.T) *client {
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &client{t: t, base: e.server.URL, http: &http.Client{Jar: jar}}
}

// loggedIn returns a client holding a session for identity
func (e *testEnv) loggedIn(t *testing.T, identity string) *client {
	c := e.newClient(t)
	resp, _ := c.do("POST", "/login", LoginRequest{Username: identity, Password: testPassword})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	return c
}

func (c *client) do(method, path string, body interface{}) (*http.Response, []byte) {
	c.t.Helper()

	var r io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		r = strings.NewReader(b)
	default:
		data, err := json.Marshal(b)
		require.NoError(c.t, err)
		r = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, c.base+path, r)
	require.NoError(c.t, err)
	if r != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	require.NoError(c.t, err)
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	require.NoError(c.t, err)
	return resp, data
}
