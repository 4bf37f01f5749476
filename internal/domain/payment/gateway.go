// Package payment defines the payment-gateway contract used by checkout.
// The concrete Razorpay-style REST adapter lives in infrastructure.
package payment

import (
	"context"
	"errors"
)

// Gateway errors
var (
	// ErrRequestFailed covers transport errors and unexpected statuses
	ErrRequestFailed = errors.New("payment gateway request failed")
	// ErrInvalidSignature means a callback or checkout signature did not verify
	ErrInvalidSignature = errors.New("payment signature verification failed")
)

// CreateOrderRequest asks the gateway to open a payment order. Amounts are
// in minor units (paise).
type CreateOrderRequest struct {
	AmountPaise int64             `json:"amount"`
	Currency    string            `json:"currency"`
	Receipt     string            `json:"receipt"`
	Notes       map[string]string `json:"notes,omitempty"`
}

// GatewayOrder is the gateway-side order a customer pays against
type GatewayOrder struct {
	ID          string `json:"id"`
	AmountPaise int64  `json:"amount"`
	Currency    string `json:"currency"`
	Receipt     string `json:"receipt"`
	Status      string `json:"status"`
}

// CapturedPayment describes a settled payment extracted from a verified
// checkout callback or webhook.
type CapturedPayment struct {
	GatewayOrderID   string
	GatewayPaymentID string
	AmountPaise      int64
}

// Gateway is the payment provider client used by checkout
type Gateway interface {
	// CreateOrder opens a gateway order for the given amount
	CreateOrder(ctx context.Context, req CreateOrderRequest) (*GatewayOrder, error)

	// VerifyCheckoutSignature verifies the signature returned by the hosted
	// checkout (HMAC of "orderID|paymentID" with the key secret).
	VerifyCheckoutSignature(gatewayOrderID, gatewayPaymentID, signature string) error

	// VerifyWebhookSignature verifies a webhook body against its signature
	// header using the webhook secret.
	VerifyWebhookSignature(body []byte, signature string) error
}
