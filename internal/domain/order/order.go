package order

import (
	"fmt"
	"time"

	"github.com/costerbox/backend/internal/domain/shared"
	"github.com/costerbox/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Status represents the state of an order
type Status string

const (
	StatusCreated           Status = "created"
	StatusPaid              Status = "paid"
	StatusPendingAcceptance Status = "pending_acceptance"
	StatusInProduction      Status = "in_production"
	StatusBalanceDue        Status = "balance_due"
	StatusBalancePaid       Status = "balance_paid"
	StatusShipped           Status = "shipped"
	StatusDelivered         Status = "delivered"
	StatusCancelled         Status = "cancelled"
)

// Kind distinguishes catalog purchases from commissioned work
type Kind string

const (
	KindCatalog Kind = "catalog"
	KindCustom  Kind = "custom"
)

// AdvancePercent is the share of a custom order collected at checkout.
// The balance is collected before dispatch.
var AdvancePercent = decimal.NewFromInt(70)

// CanTransitionTo checks if the status can transition to the target status
func (s Status) CanTransitionTo(target Status) bool {
	transitions := map[Status][]Status{
		StatusCreated:           {StatusPaid, StatusPendingAcceptance, StatusCancelled},
		StatusPaid:              {StatusShipped, StatusCancelled},
		StatusPendingAcceptance: {StatusInProduction, StatusCancelled},
		StatusInProduction:      {StatusBalanceDue, StatusCancelled},
		StatusBalanceDue:        {StatusBalancePaid, StatusCancelled},
		StatusBalancePaid:       {StatusShipped},
		StatusShipped:           {StatusDelivered},
		StatusDelivered:         {},
		StatusCancelled:         {},
	}

	allowed, ok := transitions[s]
	if !ok {
		return false
	}
	for _, t := range allowed {
		if t == target {
			return true
		}
	}
	return false
}

// IsTerminal returns true for end states
func (s Status) IsTerminal() bool {
	return s == StatusDelivered || s == StatusCancelled
}

// Item is a line item holding an immutable snapshot of the product at
// purchase time.
type Item struct {
	shared.BaseEntity
	OrderID     uuid.UUID
	ProductID   uuid.UUID
	ProductName string
	SKU         string
	UnitPrice   valueobject.Money
	Quantity    int
	LineTotal   valueobject.Money
}

// NewItem creates a line item snapshot
func NewItem(productID uuid.UUID, name, sku string, unitPrice valueobject.Money, quantity int) (*Item, error) {
	if name == "" {
		return nil, shared.NewDomainError("INVALID_ITEM", "product name is required")
	}
	if quantity <= 0 {
		return nil, shared.NewDomainError("INVALID_ITEM", "quantity must be positive")
	}
	if unitPrice.IsNegative() {
		return nil, shared.NewDomainError("INVALID_ITEM", "unit price cannot be negative")
	}
	return &Item{
		BaseEntity:  shared.NewBaseEntity(),
		ProductID:   productID,
		ProductName: name,
		SKU:         sku,
		UnitPrice:   unitPrice,
		Quantity:    quantity,
		LineTotal:   unitPrice.MultiplyByInt(int64(quantity)),
	}, nil
}

// Payment records one captured gateway payment against the order
type Payment struct {
	shared.BaseEntity
	OrderID          uuid.UUID
	GatewayOrderID   string
	GatewayPaymentID string
	Amount           valueobject.Money
	Purpose          PaymentPurpose
	CapturedAt       time.Time
}

// PaymentPurpose distinguishes the advance from the balance payment
type PaymentPurpose string

const (
	PaymentPurposeFull    PaymentPurpose = "full"
	PaymentPurposeAdvance PaymentPurpose = "advance"
	PaymentPurposeBalance PaymentPurpose = "balance"
)

// Tracking holds the courier-side identifiers for a dispatched order.
// AWBCode stays empty when waybill assignment failed; the shipment still
// exists on the courier side and the code can be backfilled from the panel.
type Tracking struct {
	CourierOrderID    string `json:"courier_order_id"`
	CourierShipmentID string `json:"courier_shipment_id"`
	AWBCode           string `json:"awb_code"`
	CourierName       string `json:"courier_name"`
	AWBAssigned       bool   `json:"awb_assigned"`
}

// Order is the aggregate root for a storefront order document
type Order struct {
	shared.BaseAggregateRoot
	OrderNumber     string
	CustomerID      uuid.UUID
	Kind            Kind
	Status          Status
	Items           []Item
	ShippingAddress valueobject.Address
	RecipientName   string
	RecipientEmail  string

	TotalAmount   valueobject.Money
	PaidAmount    valueobject.Money
	PendingAmount valueobject.Money
	Payments      []Payment

	// Custom-order fields
	ArtisanID     *uuid.UUID
	Customization string
	ClaimedAt     *time.Time

	Tracking   *Tracking
	Flagged    bool
	FlagReason string

	ShippedAt   *time.Time
	DeliveredAt *time.Time
	CancelledAt *time.Time
}

// NewOrder creates a new order document in the created state. The total is
// derived from the item snapshots.
func NewOrder(orderNumber string, customerID uuid.UUID, kind Kind, items []Item, shipTo valueobject.Address, recipientName, recipientEmail string) (*Order, error) {
	if orderNumber == "" {
		return nil, shared.NewDomainError("INVALID_ORDER", "order number is required")
	}
	if customerID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_ORDER", "customer is required")
	}
	if len(items) == 0 {
		return nil, shared.NewDomainError("INVALID_ORDER", "order must have at least one item")
	}
	if kind != KindCatalog && kind != KindCustom {
		return nil, shared.NewDomainError("INVALID_ORDER", fmt.Sprintf("unknown order kind %q", kind))
	}
	if shipTo.IsEmpty() {
		return nil, shared.NewDomainError("INVALID_ORDER", "shipping address is required")
	}

	total := valueobject.ZeroINR()
	for i := range items {
		total = total.MustAdd(items[i].LineTotal)
	}

	o := &Order{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		OrderNumber:       orderNumber,
		CustomerID:        customerID,
		Kind:              kind,
		Status:            StatusCreated,
		Items:             items,
		ShippingAddress:   shipTo,
		RecipientName:     recipientName,
		RecipientEmail:    recipientEmail,
		TotalAmount:       total,
		PaidAmount:        valueobject.ZeroINR(),
		PendingAmount:     total,
	}
	for i := range o.Items {
		o.Items[i].OrderID = o.ID
	}

	o.AddDomainEvent(NewCreatedEvent(o))
	return o, nil
}

// IsCustom returns true for commissioned orders
func (o *Order) IsCustom() bool {
	return o.Kind == KindCustom
}

// AdvanceAmount returns the advance due at checkout: the full total for
// catalog orders, 70% (rounded to paise) for custom orders.
func (o *Order) AdvanceAmount() valueobject.Money {
	if !o.IsCustom() {
		return o.TotalAmount
	}
	return o.TotalAmount.CalculatePercentage(AdvancePercent)
}

// BalanceAmount returns the outstanding balance after the advance
func (o *Order) BalanceAmount() valueobject.Money {
	return o.TotalAmount.MustSubtract(o.AdvanceAmount())
}

// RecordPayment applies a captured gateway payment to the order and advances
// the status accordingly. Catalog orders become paid; custom orders become
// pending_acceptance on the advance and balance_paid on the balance.
func (o *Order) RecordPayment(gatewayOrderID, gatewayPaymentID string, amount valueobject.Money, purpose PaymentPurpose) error {
	if amount.IsNegative() || amount.IsZero() {
		return shared.NewDomainError("INVALID_PAYMENT", "payment amount must be positive")
	}

	switch purpose {
	case PaymentPurposeFull, PaymentPurposeAdvance:
		if o.Status != StatusCreated {
			return shared.ErrInvalidState
		}
	case PaymentPurposeBalance:
		if o.Status != StatusBalanceDue {
			return shared.ErrInvalidState
		}
	default:
		return shared.NewDomainError("INVALID_PAYMENT", fmt.Sprintf("unknown payment purpose %q", purpose))
	}

	o.Payments = append(o.Payments, Payment{
		BaseEntity:       shared.NewBaseEntity(),
		OrderID:          o.ID,
		GatewayOrderID:   gatewayOrderID,
		GatewayPaymentID: gatewayPaymentID,
		Amount:           amount,
		Purpose:          purpose,
		CapturedAt:       time.Now(),
	})
	o.PaidAmount = o.PaidAmount.MustAdd(amount)
	o.PendingAmount = o.TotalAmount.MustSubtract(o.PaidAmount)

	switch purpose {
	case PaymentPurposeFull:
		o.Status = StatusPaid
	case PaymentPurposeAdvance:
		o.Status = StatusPendingAcceptance
	case PaymentPurposeBalance:
		o.Status = StatusBalancePaid
	}

	o.Touch()
	o.AddDomainEvent(NewPaidEvent(o, gatewayPaymentID, amount, purpose))
	return nil
}

// Claim assigns the order to an artisan. The repository enforces the
// winner-takes-it compare-and-swap; this method only validates state.
func (o *Order) Claim(artisanID uuid.UUID) error {
	if o.Status != StatusPendingAcceptance {
		return shared.ErrInvalidState
	}
	if o.ArtisanID != nil {
		return shared.ErrAlreadyClaimed
	}
	now := time.Now()
	o.ArtisanID = &artisanID
	o.ClaimedAt = &now
	o.Status = StatusInProduction
	o.Touch()
	o.AddDomainEvent(NewClaimedEvent(o, artisanID))
	return nil
}

// RequestBalance moves a commissioned order to balance_due once production
// is finished and the remaining 30% can be collected.
func (o *Order) RequestBalance() error {
	if !o.Status.CanTransitionTo(StatusBalanceDue) {
		return shared.ErrInvalidState
	}
	o.Status = StatusBalanceDue
	o.Touch()
	return nil
}

// ReadyToShip reports whether dispatch is allowed
func (o *Order) ReadyToShip() bool {
	return o.Status.CanTransitionTo(StatusShipped)
}

// MarkShipped records the tracking block and transitions to shipped.
// The tracking may carry an empty AWB when waybill assignment failed.
func (o *Order) MarkShipped(tracking Tracking) error {
	if !o.Status.CanTransitionTo(StatusShipped) {
		if o.PendingAmount.IsPositive() {
			return shared.ErrPaymentRequired
		}
		return shared.ErrInvalidState
	}
	now := time.Now()
	o.Tracking = &tracking
	o.Status = StatusShipped
	o.ShippedAt = &now
	o.Touch()
	o.AddDomainEvent(NewShippedEvent(o, tracking))
	return nil
}

// MarkDelivered completes the order
func (o *Order) MarkDelivered() error {
	if !o.Status.CanTransitionTo(StatusDelivered) {
		return shared.ErrInvalidState
	}
	now := time.Now()
	o.Status = StatusDelivered
	o.DeliveredAt = &now
	o.Touch()
	return nil
}

// Cancel cancels the order with a reason
func (o *Order) Cancel(reason string) error {
	if !o.Status.CanTransitionTo(StatusCancelled) {
		return shared.ErrInvalidState
	}
	now := time.Now()
	o.Status = StatusCancelled
	o.CancelledAt = &now
	if reason != "" {
		o.FlagReason = reason
	}
	o.Touch()
	return nil
}

// Flag marks the order for manual review
func (o *Order) Flag(reason string) {
	o.Flagged = true
	o.FlagReason = reason
	o.Touch()
}

// Unflag clears the review flag
func (o *Order) Unflag() {
	o.Flagged = false
	o.FlagReason = ""
	o.Touch()
}

// ForceStatus sets the status without transition checks. Admin console only;
// callers are responsible for auditing the override.
func (o *Order) ForceStatus(status Status) {
	o.Status = status
	o.Touch()
}

// OverrideTracking replaces the tracking block. Admin console only.
func (o *Order) OverrideTracking(tracking Tracking) {
	o.Tracking = &tracking
	o.Touch()
}

// ReassignArtisan replaces the assigned artisan. Admin console only.
func (o *Order) ReassignArtisan(artisanID uuid.UUID) error {
	if !o.IsCustom() {
		return shared.ErrInvalidState
	}
	now := time.Now()
	o.ArtisanID = &artisanID
	o.ClaimedAt = &now
	o.Touch()
	return nil
}
