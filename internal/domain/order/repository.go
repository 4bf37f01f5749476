package order

import (
	"context"

	"github.com/costerbox/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Repository defines the interface for order persistence
type Repository interface {
	// FindByID finds an order by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Order, error)

	// FindByOrderNumber finds an order by its public order number
	FindByOrderNumber(ctx context.Context, orderNumber string) (*Order, error)

	// FindByGatewayOrderID finds the order a gateway order was created for
	FindByGatewayOrderID(ctx context.Context, gatewayOrderID string) (*Order, error)

	// FindAll finds orders with filtering (admin search)
	FindAll(ctx context.Context, filter shared.Filter) ([]Order, error)

	// FindByCustomer finds orders placed by a customer
	FindByCustomer(ctx context.Context, customerID uuid.UUID, filter shared.Filter) ([]Order, error)

	// FindByArtisan finds commissioned orders assigned to an artisan
	FindByArtisan(ctx context.Context, artisanID uuid.UUID, filter shared.Filter) ([]Order, error)

	// FindClaimable finds paid custom orders with no artisan assigned yet
	FindClaimable(ctx context.Context, filter shared.Filter) ([]Order, error)

	// Save creates or updates an order
	Save(ctx context.Context, o *Order) error

	// SaveWithLock saves with optimistic locking (version check)
	SaveWithLock(ctx context.Context, o *Order) error

	// ClaimForArtisan atomically assigns a pending commissioned order to an
	// artisan. The update only applies while the order is unclaimed; when
	// another artisan got there first it returns shared.ErrAlreadyClaimed.
	ClaimForArtisan(ctx context.Context, orderID, artisanID uuid.UUID) (*Order, error)

	// Count counts orders matching the filter
	Count(ctx context.Context, filter shared.Filter) (int64, error)

	// CountByStatus counts orders by status
	CountByStatus(ctx context.Context, status Status) (int64, error)

	// GenerateOrderNumber generates the next order number (CB-YYYY-NNNNN)
	GenerateOrderNumber(ctx context.Context) (string, error)
}
