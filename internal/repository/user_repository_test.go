package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elegant-dining/reservation-api/internal/model"
	"github.com/elegant-dining/reservation-api/internal/testutil"
)

func newUserRepo(t *testing.T) *UserRepo {
	t.Helper()
	return NewUserRepo(testutil.OpenDB(t))
}

func seedUser(t *testing.T, r *UserRepo, username, email string, role model.Role) uint64 {
	t.Helper()
	id, err := r.Create(context.Background(), model.User{
		Username:     username,
		Email:        email,
		PasswordHash: "x",
		Role:         role,
		FullName:     "Test User",
		IsActive:     true,
	})
	require.NoError(t, err)
	return id
}

func TestUserCreateAndGet(t *testing.T) {
	r := newUserRepo(t)
	ctx := context.Background()

	id := seedUser(t, r, "alice", "alice@example.com", model.RoleCustomer)
	require.NotZero(t, id)

	u, err := r.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "alice", u.Username)
	assert.Equal(t, "alice@example.com", u.Email)
	assert.Equal(t, model.RoleCustomer, u.Role)
	assert.True(t, u.IsActive)
	assert.Nil(t, u.LastLogin)
	assert.False(t, u.CreatedAt.IsZero())
}

func TestUserCreateDuplicates(t *testing.T) {
	r := newUserRepo(t)
	ctx := context.Background()
	seedUser(t, r, "alice", "alice@example.com", model.RoleCustomer)

	_, err := r.Create(ctx, model.User{
		Username: "alice", Email: "other@example.com", PasswordHash: "x", Role: model.RoleCustomer,
	})
	assert.ErrorIs(t, err, ErrUsernameExists)

	_, err = r.Create(ctx, model.User{
		Username: "bob", Email: "alice@example.com", PasswordHash: "x", Role: model.RoleCustomer,
	})
	assert.ErrorIs(t, err, ErrEmailExists)
}

func TestUserGetByLogin(t *testing.T) {
	r := newUserRepo(t)
	ctx := context.Background()
	id := seedUser(t, r, "alice", "alice@example.com", model.RoleCustomer)

	byName, err := r.GetByLogin(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, id, byName.ID)

	byEmail, err := r.GetByLogin(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, id, byEmail.ID)

	_, err = r.GetByLogin(ctx, "nobody")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUserDeactivatedInvisible(t *testing.T) {
	r := newUserRepo(t)
	ctx := context.Background()
	id := seedUser(t, r, "alice", "alice@example.com", model.RoleCustomer)

	require.NoError(t, r.Deactivate(ctx, id))

	_, err := r.GetByLogin(ctx, "alice")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = r.GetByID(ctx, id)
	assert.ErrorIs(t, err, ErrNotFound)

	// The row still exists, so the username stays reserved.
	taken, err := r.UsernameExists(ctx, "alice")
	require.NoError(t, err)
	assert.True(t, taken)
}

func TestUserExistenceChecks(t *testing.T) {
	r := newUserRepo(t)
	ctx := context.Background()
	seedUser(t, r, "alice", "alice@example.com", model.RoleCustomer)

	taken, err := r.UsernameExists(ctx, "alice")
	require.NoError(t, err)
	assert.True(t, taken)

	taken, err = r.UsernameExists(ctx, "bob")
	require.NoError(t, err)
	assert.False(t, taken)

	taken, err = r.EmailExists(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.True(t, taken)

	taken, err = r.EmailExists(ctx, "bob@example.com")
	require.NoError(t, err)
	assert.False(t, taken)
}

func TestUserTouchLastLogin(t *testing.T) {
	r := newUserRepo(t)
	ctx := context.Background()
	id := seedUser(t, r, "alice", "alice@example.com", model.RoleCustomer)

	require.NoError(t, r.TouchLastLogin(ctx, id))

	u, err := r.GetByID(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, u.LastLogin)
	assert.False(t, u.LastLogin.IsZero())
}

func TestUserUpdateProfile(t *testing.T) {
	r := newUserRepo(t)
	ctx := context.Background()
	id := seedUser(t, r, "alice", "alice@example.com", model.RoleCustomer)
	seedUser(t, r, "bob", "bob@example.com", model.RoleCustomer)

	require.NoError(t, r.UpdateProfile(ctx, id, "Alice A.", "555-0100", "alice.a@example.com"))

	u, err := r.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Alice A.", u.FullName)
	assert.Equal(t, "555-0100", u.Phone)
	assert.Equal(t, "alice.a@example.com", u.Email)

	// Moving onto another account's email hits the unique constraint.
	err = r.UpdateProfile(ctx, id, "Alice A.", "", "bob@example.com")
	assert.ErrorIs(t, err, ErrEmailExists)
}

func TestUserListAll(t *testing.T) {
	r := newUserRepo(t)
	ctx := context.Background()
	seedUser(t, r, "alice", "alice@example.com", model.RoleCustomer)
	idBob := seedUser(t, r, "bob", "bob@example.com", model.RoleAdmin)
	require.NoError(t, r.Deactivate(ctx, idBob))

	users, err := r.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, users, 2)

	byName := make(map[string]model.User, len(users))
	for _, u := range users {
		byName[u.Username] = u
	}
	assert.True(t, byName["alice"].IsActive)
	assert.False(t, byName["bob"].IsActive)
	assert.Equal(t, model.RoleAdmin, byName["bob"].Role)
}
