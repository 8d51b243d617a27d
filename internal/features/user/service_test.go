package user

import (
	"context"
	"testing"

	"github.com/eng-by-sjb/blue-harbor-commerce-backend/internal/auth"
	"github.com/eng-by-sjb/blue-harbor-commerce-backend/internal/servererrors"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	usersByEmail map[string]*User
}

func newFakeStore() *fakeStore {
	return &fakeStore{usersByEmail: make(map[string]*User)}
}

func (f *fakeStore) createOne(_ context.Context, newUser *User) error {
	if _, exists := f.usersByEmail[newUser.Email]; exists {
		return servererrors.ErrUserAlreadyExists
	}

	newUser.UserID = uuid.New()
	f.usersByEmail[newUser.Email] = newUser

	return nil
}

func (f *fakeStore) findByEmail(_ context.Context, email string) (*User, error) {
	foundUser, exists := f.usersByEmail[email]
	if !exists {
		return nil, servererrors.ErrUserNotFound
	}

	return foundUser, nil
}

func newTestService() *service {
	return NewService(
		newFakeStore(),
		auth.NewTokenService("access", "refresh", 60, 120),
	)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	req := &RegisterRequest{
		Name:     "Ada",
		Email:    "a@x.com",
		Password: "correcthorse",
	}

	require.NoError(t, svc.register(ctx, req))

	err := svc.register(ctx, req)
	assert.ErrorIs(t, err, servererrors.ErrUserAlreadyExists)
}

func TestRegisterDefaultsRoleToCustomer(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	require.NoError(t, svc.register(ctx, &RegisterRequest{
		Name:     "Ada",
		Email:    "ada@x.com",
		Password: "correcthorse",
	}))

	foundUser, err := svc.store.findByEmail(ctx, "ada@x.com")
	require.NoError(t, err)
	assert.Equal(t, auth.RoleCustomer, foundUser.Role)

	// password must never be stored in the clear
	assert.NotEqual(t, "correcthorse", foundUser.Password)
}

func TestLoginAndRefresh(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	require.NoError(t, svc.register(ctx, &RegisterRequest{
		Name:     "Ada",
		Email:    "Ada@X.com",
		Password: "correcthorse",
	}))

	// email lookup is case-insensitive via normalization
	pair, err := svc.login(ctx, &LoginRequest{
		Email:    "ada@x.com",
		Password: "correcthorse",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, pair.AccessToken)
	assert.NotEmpty(t, pair.RefreshToken)

	_, err = svc.login(ctx, &LoginRequest{
		Email:    "ada@x.com",
		Password: "wrong",
	})
	assert.ErrorIs(t, err, servererrors.ErrWrongCredentials)

	refreshed, err := svc.refresh(ctx, &RefreshRequest{
		RefreshToken: pair.RefreshToken,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, refreshed.AccessToken)

	// an access token is not a valid refresh token
	_, err = svc.refresh(ctx, &RefreshRequest{
		RefreshToken: pair.AccessToken,
	})
	assert.ErrorIs(t, err, servererrors.ErrInvalidToken)
}
