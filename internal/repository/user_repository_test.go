package repository

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"agrimap/internal/model"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	gormDB, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, gormDB.AutoMigrate(&model.User{}))
	return gormDB
}

func TestUserRepository_FindByEmailCaseInsensitive(t *testing.T) {
	repo := NewUserRepository(newTestDB(t))
	ctx := context.Background()

	user := &model.User{
		Email:        "farmer@example.com",
		PasswordHash: "hash",
		FirstName:    "Farm",
		LastName:     "Er",
		Sex:          "F",
		ContactNo:    "09170000000",
		Role:         model.DefaultRole,
	}
	require.NoError(t, repo.Create(ctx, user))

	found, err := repo.FindByEmail(ctx, "Farmer@EXAMPLE.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, found.ID)

	_, err = repo.FindByEmail(ctx, "other@example.com")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestUserRepository_DuplicateEmailRejected(t *testing.T) {
	repo := NewUserRepository(newTestDB(t))
	ctx := context.Background()

	first := &model.User{Email: "dup@example.com", PasswordHash: "h", FirstName: "A", LastName: "B", Sex: "M", ContactNo: "1", Role: model.DefaultRole}
	require.NoError(t, repo.Create(ctx, first))

	second := &model.User{Email: "dup@example.com", PasswordHash: "h", FirstName: "C", LastName: "D", Sex: "F", ContactNo: "2", Role: model.DefaultRole}
	assert.Error(t, repo.Create(ctx, second))
}
