package handler

import (
	"time"

	"github.com/google/uuid"

	"github.com/costerbox/backend/internal/domain/order"
	"github.com/costerbox/backend/internal/domain/shared"
	"github.com/costerbox/backend/internal/domain/shared/valueobject"
)

// OrderItemResponse represents one order line in API responses
type OrderItemResponse struct {
	ID          uuid.UUID `json:"id"`
	ProductID   uuid.UUID `json:"product_id"`
	ProductName string    `json:"product_name"`
	SKU         string    `json:"sku"`
	UnitPrice   string    `json:"unit_price"`
	Quantity    int       `json:"quantity"`
	LineTotal   string    `json:"line_total"`
}

// OrderPaymentResponse represents a captured payment in API responses
type OrderPaymentResponse struct {
	ID               uuid.UUID            `json:"id"`
	GatewayOrderID   string               `json:"gateway_order_id"`
	GatewayPaymentID string               `json:"gateway_payment_id"`
	Amount           string               `json:"amount"`
	Purpose          order.PaymentPurpose `json:"purpose"`
	CapturedAt       time.Time            `json:"captured_at"`
}

// OrderResponse represents an order document in API responses
type OrderResponse struct {
	ID              uuid.UUID              `json:"id"`
	OrderNumber     string                 `json:"order_number"`
	CustomerID      uuid.UUID              `json:"customer_id"`
	Kind            order.Kind             `json:"kind"`
	Status          order.Status           `json:"status"`
	Items           []OrderItemResponse    `json:"items"`
	ShippingAddress valueobject.Address    `json:"shipping_address"`
	RecipientName   string                 `json:"recipient_name"`
	RecipientEmail  string                 `json:"recipient_email"`
	Currency        string                 `json:"currency"`
	TotalAmount     string                 `json:"total_amount"`
	PaidAmount      string                 `json:"paid_amount"`
	PendingAmount   string                 `json:"pending_amount"`
	Payments        []OrderPaymentResponse `json:"payments,omitempty"`
	ArtisanID       *uuid.UUID             `json:"artisan_id,omitempty"`
	Customization   string                 `json:"customization,omitempty"`
	ClaimedAt       *time.Time             `json:"claimed_at,omitempty"`
	Tracking        *order.Tracking        `json:"tracking,omitempty"`
	Flagged         bool                   `json:"flagged"`
	FlagReason      string                 `json:"flag_reason,omitempty"`
	ShippedAt       *time.Time             `json:"shipped_at,omitempty"`
	DeliveredAt     *time.Time             `json:"delivered_at,omitempty"`
	CancelledAt     *time.Time             `json:"cancelled_at,omitempty"`
	CreatedAt       time.Time              `json:"created_at"`
	UpdatedAt       time.Time              `json:"updated_at"`
}

// PaymentSessionResponse is what the storefront needs to open hosted checkout
type PaymentSessionResponse struct {
	OrderID        uuid.UUID            `json:"order_id"`
	OrderNumber    string               `json:"order_number"`
	GatewayOrderID string               `json:"gateway_order_id"`
	AmountPaise    int64                `json:"amount_paise"`
	Currency       string               `json:"currency"`
	Purpose        order.PaymentPurpose `json:"purpose"`
}

func toOrderItemResponse(item order.Item) OrderItemResponse {
	return OrderItemResponse{
		ID:          item.ID,
		ProductID:   item.ProductID,
		ProductName: item.ProductName,
		SKU:         item.SKU,
		UnitPrice:   item.UnitPrice.StringFixed(2),
		Quantity:    item.Quantity,
		LineTotal:   item.LineTotal.StringFixed(2),
	}
}

func toOrderPaymentResponse(p order.Payment) OrderPaymentResponse {
	return OrderPaymentResponse{
		ID:               p.ID,
		GatewayOrderID:   p.GatewayOrderID,
		GatewayPaymentID: p.GatewayPaymentID,
		Amount:           p.Amount.StringFixed(2),
		Purpose:          p.Purpose,
		CapturedAt:       p.CapturedAt,
	}
}

func toOrderResponse(o *order.Order) OrderResponse {
	items := make([]OrderItemResponse, 0, len(o.Items))
	for _, item := range o.Items {
		items = append(items, toOrderItemResponse(item))
	}
	payments := make([]OrderPaymentResponse, 0, len(o.Payments))
	for _, p := range o.Payments {
		payments = append(payments, toOrderPaymentResponse(p))
	}

	return OrderResponse{
		ID:              o.ID,
		OrderNumber:     o.OrderNumber,
		CustomerID:      o.CustomerID,
		Kind:            o.Kind,
		Status:          o.Status,
		Items:           items,
		ShippingAddress: o.ShippingAddress,
		RecipientName:   o.RecipientName,
		RecipientEmail:  o.RecipientEmail,
		Currency:        string(o.TotalAmount.Currency()),
		TotalAmount:     o.TotalAmount.StringFixed(2),
		PaidAmount:      o.PaidAmount.StringFixed(2),
		PendingAmount:   o.PendingAmount.StringFixed(2),
		Payments:        payments,
		ArtisanID:       o.ArtisanID,
		Customization:   o.Customization,
		ClaimedAt:       o.ClaimedAt,
		Tracking:        o.Tracking,
		Flagged:         o.Flagged,
		FlagReason:      o.FlagReason,
		ShippedAt:       o.ShippedAt,
		DeliveredAt:     o.DeliveredAt,
		CancelledAt:     o.CancelledAt,
		CreatedAt:       o.CreatedAt,
		UpdatedAt:       o.UpdatedAt,
	}
}

func toOrderResponses(orders []order.Order) []OrderResponse {
	out := make([]OrderResponse, 0, len(orders))
	for i := range orders {
		out = append(out, toOrderResponse(&orders[i]))
	}
	return out
}

func toPaginatedOrderResponses(page *shared.Paginated[order.Order]) []OrderResponse {
	return toOrderResponses(page.Items)
}
