package service

import (
	"context"
	"testing"

	"shop-service/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFirstRegistrantBecomesAdmin(t *testing.T) {
	db := newTestStore(t)
	svc := NewUserService(db)
	ctx := context.Background()

	first, err := svc.Register(ctx, &RegisterRequest{Name: "Ana", Email: "ana@example.com", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, first.Role)

	second, err := svc.Register(ctx, &RegisterRequest{Name: "Ben", Email: "ben@example.com", Password: "secret2"})
	require.NoError(t, err)
	assert.Equal(t, models.RoleCustomer, second.Role)
}

func TestDuplicateEmailIsCaseInsensitiveConflict(t *testing.T) {
	db := newTestStore(t)
	svc := NewUserService(db)
	ctx := context.Background()

	_, err := svc.Register(ctx, &RegisterRequest{Name: "Ana", Email: "ana@example.com", Password: "secret1"})
	require.NoError(t, err)

	_, err = svc.Register(ctx, &RegisterRequest{Name: "Imposter", Email: "ANA@Example.COM", Password: "secret2"})
	require.Error(t, err)
	assert.Equal(t, KindConflict, ErrKind(err))
}

func TestLogin(t *testing.T) {
	db := newTestStore(t)
	svc := NewUserService(db)
	ctx := context.Background()

	registered, err := svc.Register(ctx, &RegisterRequest{Name: "Ana", Email: "ana@example.com", Password: "secret1"})
	require.NoError(t, err)

	user, err := svc.Login(ctx, "Ana@Example.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, registered.ID, user.ID)

	_, err = svc.Login(ctx, "ana@example.com", "wrong")
	assert.Equal(t, KindUnauthorized, ErrKind(err))

	_, err = svc.Login(ctx, "nobody@example.com", "secret1")
	assert.Equal(t, KindUnauthorized, ErrKind(err))
}

func TestPasswordIsStoredHashed(t *testing.T) {
	db := newTestStore(t)
	svc := NewUserService(db)
	ctx := context.Background()

	user, err := svc.Register(ctx, &RegisterRequest{Name: "Ana", Email: "ana@example.com", Password: "secret1"})
	require.NoError(t, err)
	assert.NotEqual(t, "secret1", user.PasswordHash)
	assert.NotContains(t, user.PasswordHash, "secret1")
}

func TestUpdateProfile(t *testing.T) {
	db := newTestStore(t)
	svc := NewUserService(db)
	ctx := context.Background()

	user, err := svc.Register(ctx, &RegisterRequest{Name: "Ana", Email: "ana@example.com", Password: "secret1"})
	require.NoError(t, err)

	updated, err := svc.UpdateProfile(ctx, user.ID, &UpdateProfileRequest{Name: "Ana B", Phone: "555-0101"})
	require.NoError(t, err)
	assert.Equal(t, "Ana B", updated.Name)
	assert.Equal(t, "555-0101", updated.Phone)
	assert.Equal(t, "ana@example.com", updated.Email)

	_, err = svc.UpdateProfile(ctx, "missing", &UpdateProfileRequest{Name: "X"})
	assert.Equal(t, KindNotFound, ErrKind(err))
}

func TestChangePassword(t *testing.T) {
	db := newTestStore(t)
	svc := NewUserService(db)
	ctx := context.Background()

	user, err := svc.Register(ctx, &RegisterRequest{Name: "Ana", Email: "ana@example.com", Password: "secret1"})
	require.NoError(t, err)

	err = svc.ChangePassword(ctx, user.ID, &ChangePasswordRequest{CurrentPassword: "wrong", NewPassword: "newsecret"})
	assert.Equal(t, KindUnauthorized, ErrKind(err))

	require.NoError(t, svc.ChangePassword(ctx, user.ID, &ChangePasswordRequest{CurrentPassword: "secret1", NewPassword: "newsecret"}))

	_, err = svc.Login(ctx, "ana@example.com", "newsecret")
	assert.NoError(t, err)
	_, err = svc.Login(ctx, "ana@example.com", "secret1")
	assert.Error(t, err)
}
