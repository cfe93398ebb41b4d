package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elegant-dining/reservation-api/internal/model"
	"github.com/elegant-dining/reservation-api/internal/repository"
	"github.com/elegant-dining/reservation-api/internal/testutil"
)

func newManagerFixture(t *testing.T, ttl time.Duration) (*Manager, *repository.UserRepo) {
	t.Helper()
	db := testutil.OpenDB(t)
	return NewManager(repository.NewSessionRepo(db), ttl), repository.NewUserRepo(db)
}

func seedUser(t *testing.T, users *repository.UserRepo, username string, role model.Role) uint64 {
	t.Helper()
	id, err := users.Create(context.Background(), model.User{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: "x",
		Role:         role,
		FullName:     "Test User",
		IsActive:     true,
	})
	require.NoError(t, err)
	return id
}

func TestNewManagerDefaultTTL(t *testing.T) {
	m := NewManager(nil, 0)
	assert.Equal(t, DefaultSessionTTL, m.TTL)
	m = NewManager(nil, -time.Hour)
	assert.Equal(t, DefaultSessionTTL, m.TTL)
	m = NewManager(nil, 2*time.Hour)
	assert.Equal(t, 2*time.Hour, m.TTL)
}

func TestIssueThenValidate(t *testing.T) {
	m, users := newManagerFixture(t, time.Hour)
	ctx := context.Background()
	uid := seedUser(t, users, "alice", model.RoleCustomer)

	token, exp, err := m.Issue(ctx, uid, "203.0.113.7", "test-agent")
	require.NoError(t, err)
	assert.Len(t, token, 64)
	assert.WithinDuration(t, time.Now().UTC().Add(time.Hour), exp, 5*time.Second)

	u, err := m.Validate(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, uid, u.ID)
	assert.Equal(t, "alice", u.Username)
}

func TestIssueDistinctTokens(t *testing.T) {
	m, users := newManagerFixture(t, time.Hour)
	ctx := context.Background()
	uid := seedUser(t, users, "alice", model.RoleCustomer)

	t1, _, err := m.Issue(ctx, uid, "", "")
	require.NoError(t, err)
	t2, _, err := m.Issue(ctx, uid, "", "")
	require.NoError(t, err)
	assert.NotEqual(t, t1, t2)

	// Both sessions validate independently; the user may be logged in
	// on several devices at once.
	_, err = m.Validate(ctx, t1)
	assert.NoError(t, err)
	_, err = m.Validate(ctx, t2)
	assert.NoError(t, err)
}

func TestValidateFailuresAreUniform(t *testing.T) {
	m, users := newManagerFixture(t, time.Hour)
	ctx := context.Background()
	uid := seedUser(t, users, "alice", model.RoleCustomer)

	token, _, err := m.Issue(ctx, uid, "", "")
	require.NoError(t, err)

	// Empty token.
	_, err = m.Validate(ctx, "")
	assert.ErrorIs(t, err, ErrInvalidSession)

	// Unknown token.
	_, err = m.Validate(ctx, "0000000000000000000000000000000000000000000000000000000000000000")
	assert.ErrorIs(t, err, ErrInvalidSession)

	// Revoked token.
	require.NoError(t, m.Revoke(ctx, token))
	_, err = m.Validate(ctx, token)
	assert.ErrorIs(t, err, ErrInvalidSession)
}

func TestExpiredSessionRejected(t *testing.T) {
	m, users := newManagerFixture(t, time.Hour)
	ctx := context.Background()
	uid := seedUser(t, users, "alice", model.RoleCustomer)

	// Insert a session whose expiry already passed; no sweep needed
	// for it to stop validating.
	require.NoError(t, m.Sessions.Store(ctx, model.Session{
		UserID:    uid,
		Token:     "expired-token",
		ExpiresAt: time.Now().UTC().Add(-time.Minute),
	}))

	_, err := m.Validate(ctx, "expired-token")
	assert.ErrorIs(t, err, ErrInvalidSession)
}

func TestIssueSweepsExpiredRows(t *testing.T) {
	m, users := newManagerFixture(t, time.Hour)
	ctx := context.Background()
	uid := seedUser(t, users, "alice", model.RoleCustomer)

	require.NoError(t, m.Sessions.Store(ctx, model.Session{
		UserID:    uid,
		Token:     "stale",
		ExpiresAt: time.Now().UTC().Add(-time.Hour),
	}))

	_, _, err := m.Issue(ctx, uid, "", "")
	require.NoError(t, err)

	// Only the freshly issued session remains.
	n, err := m.Sessions.CountForUser(ctx, uid)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestRevokeIdempotent(t *testing.T) {
	m, users := newManagerFixture(t, time.Hour)
	ctx := context.Background()
	uid := seedUser(t, users, "alice", model.RoleCustomer)

	token, _, err := m.Issue(ctx, uid, "", "")
	require.NoError(t, err)

	require.NoError(t, m.Revoke(ctx, token))
	require.NoError(t, m.Revoke(ctx, token))
	require.NoError(t, m.Revoke(ctx, "never-issued"))
}

func TestRevokeAllForUser(t *testing.T) {
	m, users := newManagerFixture(t, time.Hour)
	ctx := context.Background()
	alice := seedUser(t, users, "alice", model.RoleCustomer)
	bob := seedUser(t, users, "bob", model.RoleCustomer)

	ta, _, err := m.Issue(ctx, alice, "", "")
	require.NoError(t, err)
	tb, _, err := m.Issue(ctx, bob, "", "")
	require.NoError(t, err)

	require.NoError(t, m.RevokeAllForUser(ctx, alice))

	_, err = m.Validate(ctx, ta)
	assert.ErrorIs(t, err, ErrInvalidSession)
	_, err = m.Validate(ctx, tb)
	assert.NoError(t, err)
}

func TestDeactivatedUserSessionsStopValidating(t *testing.T) {
	m, users := newManagerFixture(t, time.Hour)
	ctx := context.Background()
	uid := seedUser(t, users, "alice", model.RoleCustomer)

	token, _, err := m.Issue(ctx, uid, "", "")
	require.NoError(t, err)
	require.NoError(t, users.Deactivate(ctx, uid))

	// Takes effect on the next validation, no session mutation needed.
	_, err = m.Validate(ctx, token)
	assert.ErrorIs(t, err, ErrInvalidSession)
}
