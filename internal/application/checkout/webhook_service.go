package checkout

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/costerbox/backend/internal/domain/order"
	"github.com/costerbox/backend/internal/domain/payment"
	"github.com/costerbox/backend/internal/domain/shared"
	"github.com/costerbox/backend/internal/domain/shared/valueobject"
)

const (
	eventPaymentCaptured = "payment.captured"

	// webhookDedupeTTL keeps processed payment IDs long enough to absorb
	// the gateway's retry window
	webhookDedupeTTL = 48 * time.Hour
)

// webhookEvent mirrors the gateway's webhook envelope
type webhookEvent struct {
	Event   string `json:"event"`
	Payload struct {
		Payment struct {
			Entity struct {
				ID          string            `json:"id"`
				OrderID     string            `json:"order_id"`
				AmountPaise int64             `json:"amount"`
				Currency    string            `json:"currency"`
				Notes       map[string]string `json:"notes"`
			} `json:"entity"`
		} `json:"payment"`
	} `json:"payload"`
}

// WebhookService processes payment gateway webhooks
type WebhookService struct {
	orderRepo   order.Repository
	gateway     payment.Gateway
	idempotency shared.IdempotencyStore
	eventBus    shared.EventPublisher
	logger      *zap.Logger
}

// NewWebhookService creates a new webhook service
func NewWebhookService(
	orderRepo order.Repository,
	gateway payment.Gateway,
	idempotency shared.IdempotencyStore,
	eventBus shared.EventPublisher,
	logger *zap.Logger,
) *WebhookService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WebhookService{
		orderRepo:   orderRepo,
		gateway:     gateway,
		idempotency: idempotency,
		eventBus:    eventBus,
		logger:      logger,
	}
}

// HandlePaymentWebhook verifies and processes a gateway webhook delivery.
// Replays and unrelated event types are acknowledged without side effects.
func (s *WebhookService) HandlePaymentWebhook(ctx context.Context, body []byte, signature string) error {
	if err := s.gateway.VerifyWebhookSignature(body, signature); err != nil {
		s.logger.Warn("webhook signature rejected")
		return err
	}

	var event webhookEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return fmt.Errorf("failed to decode webhook payload: %w", err)
	}

	if event.Event != eventPaymentCaptured {
		s.logger.Debug("ignoring webhook event", zap.String("event", event.Event))
		return nil
	}

	entity := event.Payload.Payment.Entity
	if entity.ID == "" {
		return shared.NewDomainError("INVALID_WEBHOOK", "Webhook payload has no payment ID")
	}

	// Fast-path replay drop. The marker is only written after the payment
	// is durably recorded, so a delivery that failed mid-way stays
	// unmarked and the gateway's retry gets to run the whole path again.
	seen, err := s.idempotency.IsProcessed(ctx, "payment:"+entity.ID)
	if err != nil {
		return err
	}
	if seen {
		s.logger.Debug("webhook replay ignored", zap.String("gateway_payment_id", entity.ID))
		return nil
	}

	o, err := s.resolveOrder(ctx, entity.Notes, entity.OrderID)
	if err != nil {
		return err
	}

	// the hosted-checkout callback may have landed first
	if hasPayment(o, entity.ID) {
		return nil
	}

	amount, purpose, err := dueAmount(o)
	if err != nil {
		return err
	}
	captured := valueobject.NewMoneyINR(decimal.NewFromInt(entity.AmountPaise).Div(decimal.NewFromInt(100)))
	if !captured.Equals(amount) {
		o.Flag(fmt.Sprintf("captured amount %s does not match due amount %s", captured, amount))
		s.logger.Warn("captured amount mismatch",
			zap.String("order_number", o.OrderNumber),
			zap.String("captured", captured.String()),
			zap.String("due", amount.String()),
		)
	}

	if err := o.RecordPayment(entity.OrderID, entity.ID, captured, purpose); err != nil {
		return err
	}
	if err := s.orderRepo.SaveWithLock(ctx, o); err != nil {
		return err
	}

	// Best effort: a failed mark only means a replay takes the slow path,
	// where hasPayment drops it anyway.
	if _, err := s.idempotency.MarkProcessed(ctx, "payment:"+entity.ID, webhookDedupeTTL); err != nil {
		s.logger.Warn("failed to mark webhook processed", zap.Error(err))
	}

	s.publishEvents(ctx, o)
	s.logger.Info("webhook payment recorded",
		zap.String("order_number", o.OrderNumber),
		zap.String("purpose", string(purpose)),
	)
	return nil
}

// resolveOrder locates the order a captured payment belongs to. The order
// number travels in the gateway order notes; the gateway order ID works as
// a fallback for balance payments recorded earlier.
func (s *WebhookService) resolveOrder(ctx context.Context, notes map[string]string, gatewayOrderID string) (*order.Order, error) {
	if orderNumber := notes["order_number"]; orderNumber != "" {
		return s.orderRepo.FindByOrderNumber(ctx, orderNumber)
	}
	if gatewayOrderID != "" {
		return s.orderRepo.FindByGatewayOrderID(ctx, gatewayOrderID)
	}
	return nil, shared.NewDomainError("INVALID_WEBHOOK", "Webhook payload does not reference an order")
}

func (s *WebhookService) publishEvents(ctx context.Context, o *order.Order) {
	if s.eventBus == nil {
		return
	}
	events := o.GetDomainEvents()
	if len(events) == 0 {
		return
	}
	if err := s.eventBus.Publish(ctx, events...); err != nil {
		s.logger.Error("failed to publish events", zap.Error(err))
	}
	o.ClearDomainEvents()
}
