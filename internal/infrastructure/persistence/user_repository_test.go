package persistence

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/costerbox/backend/internal/domain/identity"
	"github.com/costerbox/backend/internal/domain/shared"
	"github.com/costerbox/backend/internal/infrastructure/persistence/models"
)

func setupUserTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(&models.UserModel{}))
	return db
}

func newTestUser(t *testing.T, email string, role identity.Role) *identity.User {
	u, err := identity.NewUser(email, "secret-password", "Test User", role)
	require.NoError(t, err)
	return u
}

func TestGormUserRepository_SaveAndFindByEmail(t *testing.T) {
	repo := NewGormUserRepository(setupUserTestDB(t))
	ctx := context.Background()

	u := newTestUser(t, "meera@example.com", identity.RoleCustomer)
	require.NoError(t, repo.Save(ctx, u))

	found, err := repo.FindByEmail(ctx, "MEERA@example.com")
	require.NoError(t, err)
	assert.Equal(t, u.ID, found.ID)
	assert.Equal(t, identity.RoleCustomer, found.Role)
	assert.True(t, found.VerifyPassword("secret-password"))
}

func TestGormUserRepository_FindByID_NotFound(t *testing.T) {
	repo := NewGormUserRepository(setupUserTestDB(t))

	_, err := repo.FindByID(context.Background(), uuid.New())
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestGormUserRepository_ExistsByEmail(t *testing.T) {
	repo := NewGormUserRepository(setupUserTestDB(t))
	ctx := context.Background()

	exists, err := repo.ExistsByEmail(ctx, "kumar@example.com")
	require.NoError(t, err)
	assert.False(t, exists)

	require.NoError(t, repo.Save(ctx, newTestUser(t, "kumar@example.com", identity.RoleArtisan)))

	exists, err = repo.ExistsByEmail(ctx, "Kumar@Example.com")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestGormUserRepository_FindByRole(t *testing.T) {
	repo := NewGormUserRepository(setupUserTestDB(t))
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, newTestUser(t, "a1@example.com", identity.RoleArtisan)))
	require.NoError(t, repo.Save(ctx, newTestUser(t, "a2@example.com", identity.RoleArtisan)))
	require.NoError(t, repo.Save(ctx, newTestUser(t, "c1@example.com", identity.RoleCustomer)))

	artisans, err := repo.FindByRole(ctx, identity.RoleArtisan, shared.DefaultFilter())
	require.NoError(t, err)
	assert.Len(t, artisans, 2)
}

func TestGormUserRepository_PickupFieldsRoundTrip(t *testing.T) {
	repo := NewGormUserRepository(setupUserTestDB(t))
	ctx := context.Background()

	u := newTestUser(t, "shilpa@example.com", identity.RoleArtisan)
	require.NoError(t, u.SetZone("South Bengaluru"))
	addr := testShippingAddress()
	require.NoError(t, u.SetPickupAddress(addr))
	u.MarkPickupLocationRegistered("shilpaexamplecom")
	require.NoError(t, repo.Save(ctx, u))

	found, err := repo.FindByEmail(ctx, "shilpa@example.com")
	require.NoError(t, err)
	assert.Equal(t, "South Bengaluru", found.Zone)
	assert.True(t, found.PickupLocationRegistered)
	assert.Equal(t, "shilpaexamplecom", found.PickupLocationCode)
	assert.True(t, found.PickupAddress.Equals(addr))
}

func TestGormUserRepository_Delete(t *testing.T) {
	repo := NewGormUserRepository(setupUserTestDB(t))
	ctx := context.Background()

	u := newTestUser(t, "gone@example.com", identity.RoleCustomer)
	require.NoError(t, repo.Save(ctx, u))
	require.NoError(t, repo.Delete(ctx, u.ID))

	_, err := repo.FindByID(ctx, u.ID)
	assert.ErrorIs(t, err, shared.ErrNotFound)

	assert.ErrorIs(t, repo.Delete(ctx, u.ID), shared.ErrNotFound)
}
