package checkout

import (
	"github.com/google/uuid"

	"github.com/costerbox/backend/internal/domain/order"
)

// OrderLine is one requested line at checkout
type OrderLine struct {
	ProductID uuid.UUID
	Quantity  int
}

// ShippingAddressInput carries the destination address
type ShippingAddressInput struct {
	Line1   string
	Line2   string
	City    string
	State   string
	Pincode string
	Phone   string
}

// PlaceOrderInput contains the input for placing an order
type PlaceOrderInput struct {
	CustomerID     uuid.UUID
	Kind           order.Kind
	Lines          []OrderLine
	Customization  string
	ShipTo         ShippingAddressInput
	RecipientName  string
	RecipientEmail string
}

// PaymentSession is what the storefront needs to open the hosted checkout
type PaymentSession struct {
	OrderID        uuid.UUID
	OrderNumber    string
	GatewayOrderID string
	AmountPaise    int64
	Currency       string
	Purpose        order.PaymentPurpose
}

// PlaceOrderResult contains the created order and its payment session
type PlaceOrderResult struct {
	Order   *order.Order
	Session PaymentSession
}

// ConfirmPaymentInput contains the checkout callback fields
type ConfirmPaymentInput struct {
	OrderID          uuid.UUID
	GatewayOrderID   string
	GatewayPaymentID string
	Signature        string
}
