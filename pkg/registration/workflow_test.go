package registration

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/platinummonkey/ideagrave/pkg/auth"
	"github.com/platinummonkey/ideagrave/pkg/mail"
	"github.com/platinummonkey/ideagrave/pkg/observability"
	"github.com/platinummonkey/ideagrave/pkg/storage"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// memStore is an in-memory Store
type memStore struct {
	mu            sync.Mutex
	users         map[string]*auth.User
	verifications map[string]*Verification
	nextID        int64
}

func newMemStore() *memStore {
	return &memStore{users: map[string]*auth.User{}, verifications: map[string]*Verification{}}
}

func (m *memStore) IdentityExists(ctx context.Context, identity string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.users[identity]
	return ok, nil
}

func (m *memStore) CreateUser(ctx context.Context, u *auth.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[u.Identity]; ok {
		return storage.ErrConflict
	}
	m.nextID++
	u.ID = m.nextID
	m.users[u.Identity] = u
	return nil
}

func (m *memStore) CreateVerification(ctx context.Context, v *Verification) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *v
	m.verifications[v.ID] = &cp
	return nil
}

func (m *memStore) GetVerification(ctx context.Context, id string) (*Verification, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.verifications[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	cp := *v
	return &cp, nil
}

func (m *memStore) DeleteVerification(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.verifications, id)
	return nil
}

func (m *memStore) DeleteVerificationsBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for id, v := range m.verifications {
		if v.CreatedAt.Before(cutoff) {
			delete(m.verifications, id)
			n++
		}
	}
	return n, nil
}

// captureMailer records sent messages and optionally fails
type captureMailer struct {
	sent []mail.Message
	err  error
}

func (c *captureMailer) Send(ctx context.Context, msg mail.Message) error {
	if c.err != nil {
		return c.err
	}
	c.sent = append(c.sent, msg)
	return nil
}

func (c *captureMailer) Name() string { return "capture" }

type fixture struct {
	wf      *Workflow
	store   *memStore
	mailer  *captureMailer
	metrics *observability.Metrics
	now     time.Time
}

func (f *fixture) advance(d time.Duration) { f.now = f.now.Add(d) }

func setupWorkflow(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		store:   newMemStore(),
		mailer:  &captureMailer{},
		metrics: observability.NewMetrics(prometheus.NewRegistry()),
		now:     time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
	f.wf = NewWorkflow(f.store, f.mailer, auth.NewBcryptHasher(bcrypt.MinCost), Config{Subject: "Verify"}, f.metrics).
		WithClock(func() time.Time { return f.now })
	f.wf.newCode = func() (string, error) { return "AB12CD", nil }
	f.wf.newID = func() string { return "verify-1" }
	return f
}

func TestRequestRegistration(t *testing.T) {
	f := setupWorkflow(t)

	id, err := f.wf.RequestRegistration(context.Background(), " A@X.com ", "pw", true)
	require.NoError(t, err)
	assert.Equal(t, "verify-1", id)

	v, err := f.store.GetVerification(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", v.Email)
	assert.Equal(t, "AB12CD", v.Code)
	assert.Equal(t, f.now, v.CreatedAt)

	require.Len(t, f.mailer.sent, 1)
	assert.Equal(t, "a@x.com", f.mailer.sent[0].To)
	assert.Equal(t, "Verify", f.mailer.sent[0].Subject)
	assert.Contains(t, f.mailer.sent[0].Body, "AB12CD")

	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.RegistrationEvents.WithLabelValues("request", "ok")))
}

func TestRequestRegistration_NoConsent(t *testing.T) {
	f := setupWorkflow(t)

	_, err := f.wf.RequestRegistration(context.Background(), "a@x.com", "pw", false)
	assert.ErrorIs(t, err, ErrConsentRequired)
	assert.Empty(t, f.store.verifications)
	assert.Empty(t, f.mailer.sent)

	// Consent is checked before anything else
	_, err = f.wf.RequestRegistration(context.Background(), "", "", false)
	assert.ErrorIs(t, err, ErrConsentRequired)
}

func TestRequestRegistration_InvalidInput(t *testing.T) {
	tests := []struct {
		name     string
		identity string
		password string
	}{
		{"empty identity", "", "pw"},
		{"not an email", "alice", "pw"},
		{"display name form", "Alice <a@x.com>", "pw"},
		{"empty password", "a@x.com", ""},
		{"password too long", "a@x.com", string(make([]byte, 73))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := setupWorkflow(t)
			_, err := f.wf.RequestRegistration(context.Background(), tt.identity, tt.password, true)
			assert.ErrorIs(t, err, ErrInvalidInput)
			assert.Empty(t, f.store.verifications)
		})
	}
}

func TestRequestRegistration_IdentityTaken(t *testing.T) {
	f := setupWorkflow(t)
	require.NoError(t, f.store.CreateUser(context.Background(), &auth.User{Identity: "a@x.com"}))

	_, err := f.wf.RequestRegistration(context.Background(), "a@x.com", "pw", true)
	assert.ErrorIs(t, err, ErrIdentityTaken)
	assert.Empty(t, f.store.verifications)
}

func TestRequestRegistration_MailFailureKeepsEntry(t *testing.T) {
	f := setupWorkflow(t)
	f.mailer.err = errors.New("relay refused")

	id, err := f.wf.RequestRegistration(context.Background(), "a@x.com", "pw", true)
	assert.ErrorIs(t, err, ErrMailDeliveryFailed)
	assert.Empty(t, id)
	assert.Len(t, f.store.verifications, 1)
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.RegistrationEvents.WithLabelValues("request", "mail_failed")))
}

func TestRequestRegistration_MultipleAttemptsPerEmail(t *testing.T) {
	f := setupWorkflow(t)
	ids := []string{"v-1", "v-2"}
	f.wf.newID = func() string {
		id := ids[0]
		ids = ids[1:]
		return id
	}

	_, err := f.wf.RequestRegistration(context.Background(), "a@x.com", "pw", true)
	require.NoError(t, err)
	_, err = f.wf.RequestRegistration(context.Background(), "a@x.com", "pw", true)
	require.NoError(t, err)
	assert.Len(t, f.store.verifications, 2)
}

func TestConfirmCode(t *testing.T) {
	ctx := context.Background()
	f := setupWorkflow(t)
	id, err := f.wf.RequestRegistration(ctx, "a@x.com", "pw", true)
	require.NoError(t, err)

	assert.ErrorIs(t, f.wf.ConfirmCode(ctx, id, "ZZZZZZ"), ErrVerificationNotFound)
	assert.ErrorIs(t, f.wf.ConfirmCode(ctx, "unknown", "AB12CD"), ErrVerificationNotFound)
	assert.ErrorIs(t, f.wf.ConfirmCode(ctx, "", "AB12CD"), ErrVerificationNotFound)

	require.NoError(t, f.wf.ConfirmCode(ctx, id, "AB12CD"))
	// Lower-case input is accepted and the entry is not consumed
	require.NoError(t, f.wf.ConfirmCode(ctx, id, " ab12cd "))
	assert.Len(t, f.store.verifications, 1)
}

func TestConfirmCode_ExpiryBoundary(t *testing.T) {
	ctx := context.Background()
	f := setupWorkflow(t)
	id, err := f.wf.RequestRegistration(ctx, "a@x.com", "pw", true)
	require.NoError(t, err)

	f.advance(180 * time.Second)
	require.NoError(t, f.wf.ConfirmCode(ctx, id, "AB12CD"), "exactly TTL old is still valid")

	f.advance(time.Millisecond)
	assert.ErrorIs(t, f.wf.ConfirmCode(ctx, id, "AB12CD"), ErrVerificationExpired)
	assert.Empty(t, f.store.verifications)

	// Retrying after expiry reports not found
	assert.ErrorIs(t, f.wf.ConfirmCode(ctx, id, "AB12CD"), ErrVerificationNotFound)
}

func TestConfirmCode_WrongCodeOnExpiredEntry(t *testing.T) {
	ctx := context.Background()
	f := setupWorkflow(t)
	id, err := f.wf.RequestRegistration(ctx, "a@x.com", "pw", true)
	require.NoError(t, err)

	f.advance(time.Hour)
	assert.ErrorIs(t, f.wf.ConfirmCode(ctx, id, "ZZZZZZ"), ErrVerificationNotFound)
	assert.Len(t, f.store.verifications, 1)
}

func TestCompleteRegistration(t *testing.T) {
	ctx := context.Background()
	f := setupWorkflow(t)
	id, err := f.wf.RequestRegistration(ctx, "a@x.com", "pw", true)
	require.NoError(t, err)
	require.NoError(t, f.wf.ConfirmCode(ctx, id, "AB12CD"))

	user, err := f.wf.CompleteRegistration(ctx, id, "AB12CD", "a@x.com", "pw", " Alice ")
	require.NoError(t, err)

	assert.Equal(t, "a@x.com", user.Identity)
	assert.Equal(t, "a@x.com", user.Email)
	assert.Equal(t, "Alice", user.DisplayName)
	assert.True(t, user.Verified)
	assert.Equal(t, auth.RoleUser, user.Role)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("pw")))
	assert.Empty(t, f.store.verifications)

	// The attempt is consumed
	_, err = f.wf.CompleteRegistration(ctx, id, "AB12CD", "a@x.com", "pw", "Alice")
	assert.ErrorIs(t, err, ErrVerificationNotFound)
}

func TestCompleteRegistration_EmptyIdentityUsesLedgerEmail(t *testing.T) {
	ctx := context.Background()
	f := setupWorkflow(t)
	id, err := f.wf.RequestRegistration(ctx, "a@x.com", "pw", true)
	require.NoError(t, err)

	require.NoError(t, f.wf.ConfirmCode(ctx, id, "AB12CD"))

	user, err := f.wf.CompleteRegistration(ctx, id, "ab12cd", "", "pw", "")
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", user.Identity)
}

func TestCompleteRegistration_RequiresCode(t *testing.T) {
	tests := []struct {
		name string
		code string
	}{
		{"missing code", ""},
		{"wrong code", "ZZZZZZ"},
		{"prefix of code", "AB12C"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			f := setupWorkflow(t)
			id, err := f.wf.RequestRegistration(ctx, "a@x.com", "pw", true)
			require.NoError(t, err)

			_, err = f.wf.CompleteRegistration(ctx, id, tt.code, "a@x.com", "pw", "")
			assert.ErrorIs(t, err, ErrVerificationNotFound)
			assert.Empty(t, f.store.users)
			// A failed guess leaves the attempt usable by its owner
			assert.Len(t, f.store.verifications, 1)
			assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.RegistrationEvents.WithLabelValues("complete", "not_found")))
		})
	}
}

func TestCompleteRegistration_WrongCodeOnExpiredEntry(t *testing.T) {
	ctx := context.Background()
	f := setupWorkflow(t)
	id, err := f.wf.RequestRegistration(ctx, "a@x.com", "pw", true)
	require.NoError(t, err)

	f.advance(time.Hour)
	_, err = f.wf.CompleteRegistration(ctx, id, "ZZZZZZ", "a@x.com", "pw", "")
	assert.ErrorIs(t, err, ErrVerificationNotFound)
	assert.Len(t, f.store.verifications, 1)
}

func TestCompleteRegistration_IdentityMismatch(t *testing.T) {
	ctx := context.Background()
	f := setupWorkflow(t)
	id, err := f.wf.RequestRegistration(ctx, "a@x.com", "pw", true)
	require.NoError(t, err)

	_, err = f.wf.CompleteRegistration(ctx, id, "AB12CD", "b@x.com", "pw", "")
	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.Len(t, f.store.verifications, 1)
}

func TestCompleteRegistration_Expired(t *testing.T) {
	ctx := context.Background()
	f := setupWorkflow(t)
	id, err := f.wf.RequestRegistration(ctx, "a@x.com", "pw", true)
	require.NoError(t, err)
	require.NoError(t, f.wf.ConfirmCode(ctx, id, "AB12CD"))

	f.advance(181 * time.Second)
	_, err = f.wf.CompleteRegistration(ctx, id, "AB12CD", "a@x.com", "pw", "Alice")
	assert.ErrorIs(t, err, ErrVerificationExpired)
	assert.Empty(t, f.store.users)
}

func TestCompleteRegistration_Race(t *testing.T) {
	ctx := context.Background()
	f := setupWorkflow(t)
	ids := []string{"v-1", "v-2"}
	f.wf.newID = func() string {
		id := ids[0]
		ids = ids[1:]
		return id
	}

	first, err := f.wf.RequestRegistration(ctx, "a@x.com", "pw", true)
	require.NoError(t, err)
	second, err := f.wf.RequestRegistration(ctx, "a@x.com", "pw", true)
	require.NoError(t, err)

	require.NoError(t, f.wf.ConfirmCode(ctx, first, "AB12CD"))
	require.NoError(t, f.wf.ConfirmCode(ctx, second, "AB12CD"))

	_, err = f.wf.CompleteRegistration(ctx, first, "AB12CD", "", "pw", "")
	require.NoError(t, err)

	_, err = f.wf.CompleteRegistration(ctx, second, "AB12CD", "", "pw", "")
	assert.ErrorIs(t, err, ErrAccountCreationFailed)
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.RegistrationEvents.WithLabelValues("complete", "creation_failed")))
}

func TestNewCode(t *testing.T) {
	for i := 0; i < 200; i++ {
		code, err := NewCode()
		require.NoError(t, err)
		assert.Regexp(t, `^[A-Z0-9]{6}$`, code)
	}
}

func TestVerification_Expired(t *testing.T) {
	created := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	v := &Verification{CreatedAt: created}

	assert.False(t, v.Expired(created.Add(180*time.Second), DefaultTTL))
	assert.True(t, v.Expired(created.Add(180*time.Second+time.Nanosecond), DefaultTTL))
}
