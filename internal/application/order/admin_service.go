package order

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/costerbox/backend/internal/domain/identity"
	"github.com/costerbox/backend/internal/domain/order"
	"github.com/costerbox/backend/internal/domain/shared"
)

// AdminOrderService exposes the back-office overrides. Every override is
// logged with the acting admin for audit.
type AdminOrderService struct {
	orderRepo order.Repository
	userRepo  identity.UserRepository
	logger    *zap.Logger
}

// NewAdminOrderService creates a new admin order service
func NewAdminOrderService(
	orderRepo order.Repository,
	userRepo identity.UserRepository,
	logger *zap.Logger,
) *AdminOrderService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AdminOrderService{
		orderRepo: orderRepo,
		userRepo:  userRepo,
		logger:    logger,
	}
}

// SearchOrders searches the full order book
func (s *AdminOrderService) SearchOrders(ctx context.Context, filter shared.Filter) (*shared.Paginated[order.Order], error) {
	orders, err := s.orderRepo.FindAll(ctx, filter)
	if err != nil {
		return nil, err
	}
	total, err := s.orderRepo.Count(ctx, filter)
	if err != nil {
		return nil, err
	}
	result := shared.NewPaginated(orders, total, filter.Page, filter.PageSize)
	return &result, nil
}

// StatusCounts returns the number of orders in each state
func (s *AdminOrderService) StatusCounts(ctx context.Context) (map[order.Status]int64, error) {
	statuses := []order.Status{
		order.StatusCreated,
		order.StatusPaid,
		order.StatusPendingAcceptance,
		order.StatusInProduction,
		order.StatusBalanceDue,
		order.StatusBalancePaid,
		order.StatusShipped,
		order.StatusDelivered,
		order.StatusCancelled,
	}
	counts := make(map[order.Status]int64, len(statuses))
	for _, status := range statuses {
		count, err := s.orderRepo.CountByStatus(ctx, status)
		if err != nil {
			return nil, err
		}
		counts[status] = count
	}
	return counts, nil
}

// ForceStatus sets an order's status without transition checks
func (s *AdminOrderService) ForceStatus(ctx context.Context, adminID string, input ForceStatusInput) (*order.Order, error) {
	o, err := s.orderRepo.FindByID(ctx, input.OrderID)
	if err != nil {
		return nil, err
	}
	previous := o.Status
	o.ForceStatus(input.Status)
	if err := s.orderRepo.SaveWithLock(ctx, o); err != nil {
		return nil, err
	}

	s.logger.Warn("order status overridden",
		zap.String("order_number", o.OrderNumber),
		zap.String("from", string(previous)),
		zap.String("to", string(input.Status)),
		zap.String("reason", input.Reason),
		zap.String("admin_id", adminID),
	)
	return o, nil
}

// OverrideTracking replaces an order's tracking block, e.g. to backfill an
// AWB assigned manually from the courier panel
func (s *AdminOrderService) OverrideTracking(ctx context.Context, adminID string, input OverrideTrackingInput) (*order.Order, error) {
	o, err := s.orderRepo.FindByID(ctx, input.OrderID)
	if err != nil {
		return nil, err
	}
	o.OverrideTracking(order.Tracking{
		CourierOrderID:    input.CourierOrderID,
		CourierShipmentID: input.CourierShipmentID,
		AWBCode:           input.AWBCode,
		CourierName:       input.CourierName,
		AWBAssigned:       input.AWBCode != "",
	})
	if err := s.orderRepo.SaveWithLock(ctx, o); err != nil {
		return nil, err
	}

	s.logger.Warn("order tracking overridden",
		zap.String("order_number", o.OrderNumber),
		zap.String("awb_code", input.AWBCode),
		zap.String("admin_id", adminID),
	)
	return o, nil
}

// ReassignArtisan moves a commission to another artisan
func (s *AdminOrderService) ReassignArtisan(ctx context.Context, adminID string, input ReassignArtisanInput) (*order.Order, error) {
	artisan, err := s.userRepo.FindByID(ctx, input.ArtisanID)
	if err != nil {
		return nil, err
	}
	if !artisan.IsArtisan() {
		return nil, shared.NewDomainError("INVALID_ARTISAN", "Target user is not an artisan")
	}

	o, err := s.orderRepo.FindByID(ctx, input.OrderID)
	if err != nil {
		return nil, err
	}
	if err := o.ReassignArtisan(input.ArtisanID); err != nil {
		return nil, err
	}
	if err := s.orderRepo.SaveWithLock(ctx, o); err != nil {
		return nil, err
	}

	s.logger.Warn("commission reassigned",
		zap.String("order_number", o.OrderNumber),
		zap.String("artisan_id", input.ArtisanID.String()),
		zap.String("admin_id", adminID),
	)
	return o, nil
}

// FlagOrder marks an order for manual review
func (s *AdminOrderService) FlagOrder(ctx context.Context, input FlagOrderInput) (*order.Order, error) {
	o, err := s.orderRepo.FindByID(ctx, input.OrderID)
	if err != nil {
		return nil, err
	}
	o.Flag(input.Reason)
	if err := s.orderRepo.SaveWithLock(ctx, o); err != nil {
		return nil, err
	}
	return o, nil
}

// UnflagOrder clears the review flag
func (s *AdminOrderService) UnflagOrder(ctx context.Context, orderID uuid.UUID) (*order.Order, error) {
	o, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	o.Unflag()
	if err := s.orderRepo.SaveWithLock(ctx, o); err != nil {
		return nil, err
	}
	return o, nil
}
