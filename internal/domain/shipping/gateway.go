// Package shipping defines the courier-facing contracts the fulfillment
// flow depends on. The concrete REST client lives in infrastructure.
package shipping

import (
	"context"
	"errors"
	"time"
)

// Gateway errors. Adapters wrap upstream failures with these sentinels so
// callers can branch without knowing transport details.
var (
	// ErrAuth means authentication against the courier failed even after a
	// forced token refresh.
	ErrAuth = errors.New("courier authentication failed")
	// ErrValidation carries an upstream 422 rejection; the wrapped message is
	// the courier's own validation text, verbatim.
	ErrValidation = errors.New("courier rejected the payload")
	// ErrRequestFailed covers transport errors and unexpected statuses.
	ErrRequestFailed = errors.New("courier request failed")
)

// OrderItem is one line of a courier order payload
type OrderItem struct {
	Name         string  `json:"name"`
	SKU          string  `json:"sku"`
	Units        int     `json:"units"`
	SellingPrice float64 `json:"selling_price"`
}

// CreateOrderRequest is the payload for registering a shipment with the
// courier. Field names follow the aggregator's adhoc-order schema.
type CreateOrderRequest struct {
	OrderID           string      `json:"order_id"`
	OrderDate         string      `json:"order_date"`
	PickupLocation    string      `json:"pickup_location"`
	BillingName       string      `json:"billing_customer_name"`
	BillingAddress    string      `json:"billing_address"`
	BillingAddress2   string      `json:"billing_address_2,omitempty"`
	BillingCity       string      `json:"billing_city"`
	BillingState      string      `json:"billing_state"`
	BillingPincode    string      `json:"billing_pincode"`
	BillingCountry    string      `json:"billing_country"`
	BillingEmail      string      `json:"billing_email"`
	BillingPhone      string      `json:"billing_phone"`
	ShippingIsBilling bool        `json:"shipping_is_billing"`
	Items             []OrderItem `json:"order_items"`
	PaymentMethod     string      `json:"payment_method"`
	SubTotal          float64     `json:"sub_total"`
	LengthCm          float64     `json:"length"`
	BreadthCm         float64     `json:"breadth"`
	HeightCm          float64     `json:"height"`
	WeightKg          float64     `json:"weight"`
}

// CreateOrderResponse carries the courier-side identifiers of a new shipment
type CreateOrderResponse struct {
	OrderID    string
	ShipmentID string
	Status     string
}

// PickupLocation is a named collection address registered with the courier
type PickupLocation struct {
	Name     string
	Contact  string
	Email    string
	Phone    string
	Address  string
	Address2 string
	City     string
	State    string
	Country  string
	Pincode  string
}

// WaybillResult is the outcome of an AWB assignment
type WaybillResult struct {
	AWBCode     string
	CourierName string
	CourierID   string
}

// Gateway is the courier client used by the fulfillment flow
type Gateway interface {
	// CreateOrder registers a shipment and returns the courier identifiers
	CreateOrder(ctx context.Context, req CreateOrderRequest) (*CreateOrderResponse, error)

	// AddPickupLocation registers a new named pickup address
	AddPickupLocation(ctx context.Context, loc PickupLocation) error

	// GetPickupLocations lists the pickup addresses registered on the account
	GetPickupLocations(ctx context.Context) ([]PickupLocation, error)

	// AssignWaybill requests an AWB for a shipment. An empty courierID lets
	// the courier pick one.
	AssignWaybill(ctx context.Context, shipmentID, courierID string) (*WaybillResult, error)
}

// OrderDateFormat is the timestamp layout the courier expects
const OrderDateFormat = "2006-01-02 15:04"

// FormatOrderDate renders a time in the courier's expected layout
func FormatOrderDate(t time.Time) string {
	return t.Format(OrderDateFormat)
}
