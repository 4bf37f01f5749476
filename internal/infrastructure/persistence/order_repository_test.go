package persistence

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/costerbox/backend/internal/domain/order"
	"github.com/costerbox/backend/internal/domain/shared"
	"github.com/costerbox/backend/internal/domain/shared/valueobject"
	"github.com/costerbox/backend/internal/infrastructure/persistence/models"
)

func setupOrderTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)

	err = db.AutoMigrate(&models.OrderModel{}, &models.OrderItemModel{}, &models.PaymentModel{})
	require.NoError(t, err)

	return db
}

func testShippingAddress() valueobject.Address {
	return valueobject.MustNewAddress(
		"14 Brigade Road", "Bengaluru", "Karnataka", "560001",
		valueobject.WithPhone("9876543210"),
	)
}

func newTestOrder(t *testing.T, kind order.Kind) *order.Order {
	item, err := order.NewItem(uuid.New(), "Terracotta Vase", "TV-001",
		valueobject.NewMoneyINRFromFloat(1499), 2)
	require.NoError(t, err)

	o, err := order.NewOrder("CB-2026-00001", uuid.New(), kind,
		[]order.Item{*item}, testShippingAddress(), "Asha", "asha@example.com")
	require.NoError(t, err)
	return o
}

// newPendingCustomOrder builds a custom order that has paid the advance and
// is waiting on the claim feed.
func newPendingCustomOrder(t *testing.T, repo *GormOrderRepository, num string) *order.Order {
	item, err := order.NewItem(uuid.New(), "Custom Nameplate", "CN-001",
		valueobject.NewMoneyINRFromFloat(3000), 1)
	require.NoError(t, err)

	o, err := order.NewOrder(num, uuid.New(), order.KindCustom,
		[]order.Item{*item}, testShippingAddress(), "Ravi", "ravi@example.com")
	require.NoError(t, err)

	require.NoError(t, o.RecordPayment("order_gw1_"+num, "pay_gw1_"+num, o.AdvanceAmount(), order.PaymentPurposeAdvance))
	require.Equal(t, order.StatusPendingAcceptance, o.Status)

	require.NoError(t, repo.Save(context.Background(), o))
	return o
}

func TestGormOrderRepository_SaveAndFindByID(t *testing.T) {
	repo := NewGormOrderRepository(setupOrderTestDB(t))
	ctx := context.Background()

	o := newTestOrder(t, order.KindCatalog)
	require.NoError(t, repo.Save(ctx, o))

	found, err := repo.FindByID(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, o.OrderNumber, found.OrderNumber)
	assert.Equal(t, order.StatusCreated, found.Status)
	assert.Len(t, found.Items, 1)
	assert.Equal(t, "Terracotta Vase", found.Items[0].ProductName)
	assert.True(t, found.TotalAmount.Equals(valueobject.NewMoneyINRFromFloat(2998)))
	assert.Nil(t, found.Tracking)
}

func TestGormOrderRepository_Save_DuplicateOrderNumber(t *testing.T) {
	repo := NewGormOrderRepository(setupOrderTestDB(t))
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, newTestOrder(t, order.KindCatalog)))

	err := repo.Save(ctx, newTestOrder(t, order.KindCatalog))
	assert.ErrorIs(t, err, shared.ErrDuplicateNumber)
}

func TestGormOrderRepository_FindByID_NotFound(t *testing.T) {
	repo := NewGormOrderRepository(setupOrderTestDB(t))

	_, err := repo.FindByID(context.Background(), uuid.New())
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestGormOrderRepository_FindByOrderNumber(t *testing.T) {
	repo := NewGormOrderRepository(setupOrderTestDB(t))
	ctx := context.Background()

	o := newTestOrder(t, order.KindCatalog)
	require.NoError(t, repo.Save(ctx, o))

	found, err := repo.FindByOrderNumber(ctx, "CB-2026-00001")
	require.NoError(t, err)
	assert.Equal(t, o.ID, found.ID)

	_, err = repo.FindByOrderNumber(ctx, "CB-2026-99999")
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestGormOrderRepository_FindByGatewayOrderID(t *testing.T) {
	repo := NewGormOrderRepository(setupOrderTestDB(t))
	ctx := context.Background()

	o := newPendingCustomOrder(t, repo, "CB-2026-00002")

	found, err := repo.FindByGatewayOrderID(ctx, "order_gw1_CB-2026-00002")
	require.NoError(t, err)
	assert.Equal(t, o.ID, found.ID)
	assert.Len(t, found.Payments, 1)
	assert.Equal(t, order.PaymentPurposeAdvance, found.Payments[0].Purpose)
}

func TestGormOrderRepository_FindClaimable(t *testing.T) {
	repo := NewGormOrderRepository(setupOrderTestDB(t))
	ctx := context.Background()

	pending := newPendingCustomOrder(t, repo, "CB-2026-00003")

	// a catalog order must not show up on the claim feed
	catalogOrder := newTestOrder(t, order.KindCatalog)
	require.NoError(t, repo.Save(ctx, catalogOrder))

	claimable, err := repo.FindClaimable(ctx, shared.DefaultFilter())
	require.NoError(t, err)
	require.Len(t, claimable, 1)
	assert.Equal(t, pending.ID, claimable[0].ID)
}

func TestGormOrderRepository_ClaimForArtisan(t *testing.T) {
	repo := NewGormOrderRepository(setupOrderTestDB(t))
	ctx := context.Background()

	o := newPendingCustomOrder(t, repo, "CB-2026-00004")
	artisanID := uuid.New()

	claimed, err := repo.ClaimForArtisan(ctx, o.ID, artisanID)
	require.NoError(t, err)
	require.NotNil(t, claimed.ArtisanID)
	assert.Equal(t, artisanID, *claimed.ArtisanID)
	assert.Equal(t, order.StatusInProduction, claimed.Status)
	assert.NotNil(t, claimed.ClaimedAt)
	assert.Equal(t, o.Version+1, claimed.Version)
}

func TestGormOrderRepository_ClaimForArtisan_LoserGetsConflict(t *testing.T) {
	repo := NewGormOrderRepository(setupOrderTestDB(t))
	ctx := context.Background()

	o := newPendingCustomOrder(t, repo, "CB-2026-00005")

	winner := uuid.New()
	loser := uuid.New()

	_, err := repo.ClaimForArtisan(ctx, o.ID, winner)
	require.NoError(t, err)

	_, err = repo.ClaimForArtisan(ctx, o.ID, loser)
	assert.ErrorIs(t, err, shared.ErrAlreadyClaimed)

	// the winner's assignment is untouched
	found, err := repo.FindByID(ctx, o.ID)
	require.NoError(t, err)
	require.NotNil(t, found.ArtisanID)
	assert.Equal(t, winner, *found.ArtisanID)
}

func TestGormOrderRepository_ClaimForArtisan_MissingOrder(t *testing.T) {
	repo := NewGormOrderRepository(setupOrderTestDB(t))

	_, err := repo.ClaimForArtisan(context.Background(), uuid.New(), uuid.New())
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestGormOrderRepository_ClaimForArtisan_WrongState(t *testing.T) {
	repo := NewGormOrderRepository(setupOrderTestDB(t))
	ctx := context.Background()

	// a created (unpaid) order cannot be claimed
	o := newTestOrder(t, order.KindCustom)
	require.NoError(t, repo.Save(ctx, o))

	_, err := repo.ClaimForArtisan(ctx, o.ID, uuid.New())
	assert.ErrorIs(t, err, shared.ErrAlreadyClaimed)
}

func TestGormOrderRepository_SaveWithLock(t *testing.T) {
	repo := NewGormOrderRepository(setupOrderTestDB(t))
	ctx := context.Background()

	o := newTestOrder(t, order.KindCatalog)
	require.NoError(t, repo.Save(ctx, o))

	o.Flag("manual review")
	require.NoError(t, repo.SaveWithLock(ctx, o))
	assert.Equal(t, 2, o.Version)

	// a stale copy loses
	stale := newTestOrder(t, order.KindCatalog)
	stale.BaseAggregateRoot = o.BaseAggregateRoot
	stale.Version = 1
	err := repo.SaveWithLock(ctx, stale)
	assert.ErrorIs(t, err, shared.ErrConcurrencyConflict)
}

func TestGormOrderRepository_FindByCustomerAndArtisan(t *testing.T) {
	repo := NewGormOrderRepository(setupOrderTestDB(t))
	ctx := context.Background()

	o := newPendingCustomOrder(t, repo, "CB-2026-00006")
	artisanID := uuid.New()
	_, err := repo.ClaimForArtisan(ctx, o.ID, artisanID)
	require.NoError(t, err)

	byCustomer, err := repo.FindByCustomer(ctx, o.CustomerID, shared.DefaultFilter())
	require.NoError(t, err)
	require.Len(t, byCustomer, 1)

	byArtisan, err := repo.FindByArtisan(ctx, artisanID, shared.DefaultFilter())
	require.NoError(t, err)
	require.Len(t, byArtisan, 1)
	assert.Equal(t, o.ID, byArtisan[0].ID)

	byOther, err := repo.FindByArtisan(ctx, uuid.New(), shared.DefaultFilter())
	require.NoError(t, err)
	assert.Empty(t, byOther)
}

func TestGormOrderRepository_CountByStatus(t *testing.T) {
	repo := NewGormOrderRepository(setupOrderTestDB(t))
	ctx := context.Background()

	newPendingCustomOrder(t, repo, "CB-2026-00007")
	require.NoError(t, repo.Save(ctx, newTestOrder(t, order.KindCatalog)))

	count, err := repo.CountByStatus(ctx, order.StatusPendingAcceptance)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestGormOrderRepository_GenerateOrderNumber(t *testing.T) {
	repo := NewGormOrderRepository(setupOrderTestDB(t))
	ctx := context.Background()

	num, err := repo.GenerateOrderNumber(ctx)
	require.NoError(t, err)
	assert.Regexp(t, `^CB-\d{4}-00001$`, num)

	o := newTestOrder(t, order.KindCatalog)
	o.OrderNumber = num
	require.NoError(t, repo.Save(ctx, o))

	next, err := repo.GenerateOrderNumber(ctx)
	require.NoError(t, err)
	assert.Regexp(t, `^CB-\d{4}-00002$`, next)
}

func TestGormOrderRepository_TrackingRoundTrip(t *testing.T) {
	repo := NewGormOrderRepository(setupOrderTestDB(t))
	ctx := context.Background()

	o := newTestOrder(t, order.KindCatalog)
	require.NoError(t, o.RecordPayment("order_gw2", "pay_gw2", o.TotalAmount, order.PaymentPurposeFull))
	require.NoError(t, o.MarkShipped(order.Tracking{
		CourierOrderID:    "4123456",
		CourierShipmentID: "4098765",
		AWBCode:           "",
		AWBAssigned:       false,
	}))
	require.NoError(t, repo.Save(ctx, o))

	found, err := repo.FindByID(ctx, o.ID)
	require.NoError(t, err)
	require.NotNil(t, found.Tracking)
	assert.Equal(t, "4123456", found.Tracking.CourierOrderID)
	assert.Empty(t, found.Tracking.AWBCode)
	assert.False(t, found.Tracking.AWBAssigned)
	assert.Equal(t, order.StatusShipped, found.Status)
}
