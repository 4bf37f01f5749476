package order

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/costerbox/backend/internal/domain/identity"
	"github.com/costerbox/backend/internal/domain/order"
	"github.com/costerbox/backend/internal/domain/shared"
)

// OrderService handles order views and the commissioned-order lifecycle
type OrderService struct {
	orderRepo order.Repository
	userRepo  identity.UserRepository
	eventBus  shared.EventPublisher
	logger    *zap.Logger
}

// NewOrderService creates a new order service
func NewOrderService(
	orderRepo order.Repository,
	userRepo identity.UserRepository,
	eventBus shared.EventPublisher,
	logger *zap.Logger,
) *OrderService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OrderService{
		orderRepo: orderRepo,
		userRepo:  userRepo,
		eventBus:  eventBus,
		logger:    logger,
	}
}

// GetOrder returns an order visible to the requesting user. Customers see
// their own orders, artisans their assigned ones, admins everything.
func (s *OrderService) GetOrder(ctx context.Context, orderID, requesterID uuid.UUID, role identity.Role) (*order.Order, error) {
	o, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	switch role {
	case identity.RoleAdmin:
		return o, nil
	case identity.RoleCustomer:
		if o.CustomerID != requesterID {
			return nil, shared.ErrForbidden
		}
	case identity.RoleArtisan:
		if o.ArtisanID == nil || *o.ArtisanID != requesterID {
			return nil, shared.ErrForbidden
		}
	default:
		return nil, shared.ErrForbidden
	}
	return o, nil
}

// ListCustomerOrders lists a customer's own orders
func (s *OrderService) ListCustomerOrders(ctx context.Context, customerID uuid.UUID, filter shared.Filter) (*shared.Paginated[order.Order], error) {
	orders, err := s.orderRepo.FindByCustomer(ctx, customerID, filter)
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

// ListArtisanOrders lists commissions assigned to an artisan
func (s *OrderService) ListArtisanOrders(ctx context.Context, artisanID uuid.UUID, filter shared.Filter) ([]order.Order, error) {
	return s.orderRepo.FindByArtisan(ctx, artisanID, filter)
}

// ListClaimableOrders lists paid commissions waiting for an artisan. The
// feed is shared; two artisans may see the same order and race for it.
func (s *OrderService) ListClaimableOrders(ctx context.Context, filter shared.Filter) ([]order.Order, error) {
	return s.orderRepo.FindClaimable(ctx, filter)
}

// ClaimOrder assigns a pending commission to the artisan. The repository
// performs the assignment as a single conditional update, so when two
// artisans race only one wins; the loser gets shared.ErrAlreadyClaimed.
func (s *OrderService) ClaimOrder(ctx context.Context, input ClaimOrderInput) (*order.Order, error) {
	artisan, err := s.userRepo.FindByID(ctx, input.ArtisanID)
	if err != nil {
		return nil, err
	}
	if !artisan.IsArtisan() {
		return nil, shared.ErrForbidden
	}

	o, err := s.orderRepo.ClaimForArtisan(ctx, input.OrderID, input.ArtisanID)
	if err != nil {
		return nil, err
	}

	// The conditional update bypasses the aggregate, so the claim event is
	// raised here for the winner. Chat thread creation hangs off it.
	s.publish(ctx, order.NewClaimedEvent(o, input.ArtisanID))

	s.logger.Info("commission claimed",
		zap.String("order_number", o.OrderNumber),
		zap.String("artisan_id", input.ArtisanID.String()),
	)
	return o, nil
}

func (s *OrderService) publish(ctx context.Context, events ...shared.DomainEvent) {
	if s.eventBus == nil {
		return
	}
	if err := s.eventBus.Publish(ctx, events...); err != nil {
		s.logger.Error("failed to publish events", zap.Error(err))
	}
}

// RequestBalance moves an in-production commission to balance_due so the
// remaining 30% can be collected before dispatch
func (s *OrderService) RequestBalance(ctx context.Context, input RequestBalanceInput) (*order.Order, error) {
	o, err := s.orderRepo.FindByID(ctx, input.OrderID)
	if err != nil {
		return nil, err
	}
	if o.ArtisanID == nil || *o.ArtisanID != input.ArtisanID {
		return nil, shared.ErrForbidden
	}
	if err := o.RequestBalance(); err != nil {
		return nil, err
	}
	if err := s.orderRepo.SaveWithLock(ctx, o); err != nil {
		return nil, err
	}
	return o, nil
}

// MarkDelivered completes a shipped order
func (s *OrderService) MarkDelivered(ctx context.Context, orderID uuid.UUID) (*order.Order, error) {
	o, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if err := o.MarkDelivered(); err != nil {
		return nil, err
	}
	if err := s.orderRepo.SaveWithLock(ctx, o); err != nil {
		return nil, err
	}
	return o, nil
}

// CancelOrder cancels an order that has not shipped yet
func (s *OrderService) CancelOrder(ctx context.Context, input CancelOrderInput) (*order.Order, error) {
	o, err := s.orderRepo.FindByID(ctx, input.OrderID)
	if err != nil {
		return nil, err
	}
	if err := o.Cancel(input.Reason); err != nil {
		return nil, err
	}
	if err := s.orderRepo.SaveWithLock(ctx, o); err != nil {
		return nil, err
	}
	s.logger.Info("order cancelled", zap.String("order_number", o.OrderNumber))
	return o, nil
}
