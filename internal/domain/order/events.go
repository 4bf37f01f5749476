package order

import (
	"github.com/costerbox/backend/internal/domain/shared"
	"github.com/costerbox/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
)

// Aggregate type constant
const AggregateTypeOrder = "Order"

// Event type constants
const (
	EventTypeOrderCreated = "OrderCreated"
	EventTypeOrderPaid    = "OrderPaid"
	EventTypeOrderClaimed = "OrderClaimed"
	EventTypeOrderShipped = "OrderShipped"
)

// CreatedEvent is raised when a new order document is created
type CreatedEvent struct {
	shared.BaseDomainEvent
	OrderID     uuid.UUID `json:"order_id"`
	OrderNumber string    `json:"order_number"`
	CustomerID  uuid.UUID `json:"customer_id"`
	Kind        Kind      `json:"kind"`
}

// NewCreatedEvent creates a new CreatedEvent
func NewCreatedEvent(o *Order) *CreatedEvent {
	return &CreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderCreated, AggregateTypeOrder, o.ID),
		OrderID:         o.ID,
		OrderNumber:     o.OrderNumber,
		CustomerID:      o.CustomerID,
		Kind:            o.Kind,
	}
}

// EventType returns the event type name
func (e *CreatedEvent) EventType() string {
	return EventTypeOrderCreated
}

// PaidEvent is raised when a gateway payment is captured against the order
type PaidEvent struct {
	shared.BaseDomainEvent
	OrderID          uuid.UUID         `json:"order_id"`
	OrderNumber      string            `json:"order_number"`
	GatewayPaymentID string            `json:"gateway_payment_id"`
	Amount           valueobject.Money `json:"amount"`
	Purpose          PaymentPurpose    `json:"purpose"`
	Status           Status            `json:"status"`
}

// NewPaidEvent creates a new PaidEvent
func NewPaidEvent(o *Order, gatewayPaymentID string, amount valueobject.Money, purpose PaymentPurpose) *PaidEvent {
	return &PaidEvent{
		BaseDomainEvent:  shared.NewBaseDomainEvent(EventTypeOrderPaid, AggregateTypeOrder, o.ID),
		OrderID:          o.ID,
		OrderNumber:      o.OrderNumber,
		GatewayPaymentID: gatewayPaymentID,
		Amount:           amount,
		Purpose:          purpose,
		Status:           o.Status,
	}
}

// EventType returns the event type name
func (e *PaidEvent) EventType() string {
	return EventTypeOrderPaid
}

// ClaimedEvent is raised when an artisan claims a commissioned order
type ClaimedEvent struct {
	shared.BaseDomainEvent
	OrderID     uuid.UUID `json:"order_id"`
	OrderNumber string    `json:"order_number"`
	ArtisanID   uuid.UUID `json:"artisan_id"`
}

// NewClaimedEvent creates a new ClaimedEvent
func NewClaimedEvent(o *Order, artisanID uuid.UUID) *ClaimedEvent {
	return &ClaimedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderClaimed, AggregateTypeOrder, o.ID),
		OrderID:         o.ID,
		OrderNumber:     o.OrderNumber,
		ArtisanID:       artisanID,
	}
}

// EventType returns the event type name
func (e *ClaimedEvent) EventType() string {
	return EventTypeOrderClaimed
}

// ShippedEvent is raised when an order is dispatched
type ShippedEvent struct {
	shared.BaseDomainEvent
	OrderID     uuid.UUID `json:"order_id"`
	OrderNumber string    `json:"order_number"`
	Tracking    Tracking  `json:"tracking"`
}

// NewShippedEvent creates a new ShippedEvent
func NewShippedEvent(o *Order, tracking Tracking) *ShippedEvent {
	return &ShippedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderShipped, AggregateTypeOrder, o.ID),
		OrderID:         o.ID,
		OrderNumber:     o.OrderNumber,
		Tracking:        tracking,
	}
}

// EventType returns the event type name
func (e *ShippedEvent) EventType() string {
	return EventTypeOrderShipped
}
