package order

import (
	"github.com/google/uuid"

	"github.com/costerbox/backend/internal/domain/order"
)

// ClaimOrderInput contains the input for an artisan claiming a commission
type ClaimOrderInput struct {
	OrderID   uuid.UUID
	ArtisanID uuid.UUID
}

// RequestBalanceInput contains the input for requesting the balance payment
type RequestBalanceInput struct {
	OrderID   uuid.UUID
	ArtisanID uuid.UUID
}

// ForceStatusInput contains the input for an admin status override
type ForceStatusInput struct {
	OrderID uuid.UUID
	Status  order.Status
	Reason  string
}

// OverrideTrackingInput contains the input for an admin tracking override
type OverrideTrackingInput struct {
	OrderID           uuid.UUID
	CourierOrderID    string
	CourierShipmentID string
	AWBCode           string
	CourierName       string
}

// ReassignArtisanInput contains the input for an admin reassignment
type ReassignArtisanInput struct {
	OrderID   uuid.UUID
	ArtisanID uuid.UUID
}

// FlagOrderInput contains the input for flagging an order for review
type FlagOrderInput struct {
	OrderID uuid.UUID
	Reason  string
}

// CancelOrderInput contains the input for cancelling an order
type CancelOrderInput struct {
	OrderID uuid.UUID
	Reason  string
}
