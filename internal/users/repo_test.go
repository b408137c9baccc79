package users

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tablenow/tablenow-backend/pkg/db/models"
	"github.com/tablenow/tablenow-backend/pkg/enums"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func newTestRepo(t *testing.T) *Repository {
	t.Helper()
	conn, err := gorm.Open(sqlite.Open("file:users_"+uuid.NewString()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(&models.User{}))
	return NewRepository(conn)
}

func TestRepositoryLifecycle(t *testing.T) {
	ctx := context.Background()
	r := newTestRepo(t)

	created, err := r.Create(ctx, CreateUserDTO{
		Email:        "manager@example.com",
		PasswordHash: "hash",
		Name:         "Manager",
		Role:         enums.UserRoleManager,
	})
	require.NoError(t, err)
	require.NotEqual(t, uuid.Nil, created.ID)
	assert.True(t, created.IsActive)

	byEmail, err := r.FindByEmail(ctx, "manager@example.com")
	require.NoError(t, err)
	assert.Equal(t, created.ID, byEmail.ID)
	assert.Equal(t, enums.UserRoleManager, byEmail.Role)

	at := time.Date(2026, 10, 17, 12, 0, 0, 0, time.UTC)
	require.NoError(t, r.UpdateLastLogin(ctx, created.ID, at))
	require.NoError(t, r.Deactivate(ctx, created.ID))

	byID, err := r.FindByID(ctx, created.ID)
	require.NoError(t, err)
	assert.False(t, byID.IsActive)
	require.NotNil(t, byID.LastLoginAt)
	assert.True(t, byID.LastLoginAt.Equal(at))

	assert.ErrorIs(t, r.Deactivate(ctx, uuid.New()), gorm.ErrRecordNotFound)
	_, err = r.FindByID(ctx, uuid.New())
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestCreateUserDTODefaultsRole(t *testing.T) {
	model := CreateUserDTO{Email: "x@example.com"}.ToModel()
	assert.Equal(t, enums.UserRoleUser, model.Role)
	assert.True(t, model.IsActive)
}
