package chat

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/costerbox/backend/internal/domain/order"
	"github.com/costerbox/backend/internal/domain/shared"
)

// OrderClaimedHandler handles order.ClaimedEvent and opens the order-scoped
// conversation between the customer and the artisan who took the commission,
// so the two sides can discuss the piece without either having to initiate
type OrderClaimedHandler struct {
	chatService *ChatService
	orderRepo   order.Repository
	logger      *zap.Logger
}

// NewOrderClaimedHandler creates a new handler for order claimed events
func NewOrderClaimedHandler(
	chatService *ChatService,
	orderRepo order.Repository,
	logger *zap.Logger,
) *OrderClaimedHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OrderClaimedHandler{
		chatService: chatService,
		orderRepo:   orderRepo,
		logger:      logger,
	}
}

// EventTypes returns the event types this handler is interested in
func (h *OrderClaimedHandler) EventTypes() []string {
	return []string{order.EventTypeOrderClaimed}
}

// Handle opens the customer/artisan thread for a freshly claimed order.
// OpenThread is idempotent on the thread key, so redelivery is harmless.
func (h *OrderClaimedHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	claimedEvent, ok := event.(*order.ClaimedEvent)
	if !ok {
		h.logger.Error("unexpected event type",
			zap.String("expected", order.EventTypeOrderClaimed),
			zap.String("actual", event.EventType()),
		)
		return fmt.Errorf("unexpected event type: expected %s, got %s",
			order.EventTypeOrderClaimed, event.EventType())
	}

	o, err := h.orderRepo.FindByID(ctx, claimedEvent.OrderID)
	if err != nil {
		h.logger.Error("failed to load claimed order",
			zap.String("order_id", claimedEvent.OrderID.String()),
			zap.Error(err),
		)
		return fmt.Errorf("failed to load claimed order: %w", err)
	}

	orderID := o.ID
	thread, err := h.chatService.OpenThread(ctx, OpenThreadInput{
		CustomerID:    o.CustomerID,
		CounterpartID: claimedEvent.ArtisanID,
		OrderID:       &orderID,
	})
	if err != nil {
		h.logger.Error("failed to open thread for claimed order",
			zap.String("order_id", claimedEvent.OrderID.String()),
			zap.String("artisan_id", claimedEvent.ArtisanID.String()),
			zap.Error(err),
		)
		return fmt.Errorf("failed to open thread for claimed order: %w", err)
	}

	h.logger.Info("opened conversation for claimed order",
		zap.String("order_id", o.ID.String()),
		zap.String("order_number", claimedEvent.OrderNumber),
		zap.String("thread_id", thread.ID.String()),
	)
	return nil
}
