package handler

import (
	checkoutapp "github.com/costerbox/backend/internal/application/checkout"
	"github.com/costerbox/backend/internal/domain/order"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// CheckoutHandler handles order placement and payment confirmation
type CheckoutHandler struct {
	BaseHandler
	checkoutService *checkoutapp.CheckoutService
}

// NewCheckoutHandler creates a new CheckoutHandler
func NewCheckoutHandler(checkoutService *checkoutapp.CheckoutService) *CheckoutHandler {
	return &CheckoutHandler{
		checkoutService: checkoutService,
	}
}

// OrderLineRequest is one requested line at checkout
type OrderLineRequest struct {
	ProductID string `json:"product_id" binding:"required,uuid"`
	Quantity  int    `json:"quantity" binding:"required,min=1,max=50"`
}

// ShippingAddressRequest carries the destination address
type ShippingAddressRequest struct {
	Line1   string `json:"line1" binding:"required,max=180"`
	Line2   string `json:"line2" binding:"max=180"`
	City    string `json:"city" binding:"required,max=80"`
	State   string `json:"state" binding:"required,max=80"`
	Pincode string `json:"pincode" binding:"required,len=6"`
	Phone   string `json:"phone" binding:"required,min=10,max=15"`
}

// PlaceOrderRequest represents a checkout request
type PlaceOrderRequest struct {
	Kind           string                 `json:"kind" binding:"required,oneof=catalog custom"`
	Lines          []OrderLineRequest     `json:"lines" binding:"required,min=1,dive"`
	Customization  string                 `json:"customization" binding:"max=4000"`
	ShipTo         ShippingAddressRequest `json:"ship_to" binding:"required"`
	RecipientName  string                 `json:"recipient_name" binding:"required,max=100"`
	RecipientEmail string                 `json:"recipient_email" binding:"required,email"`
}

// ConfirmPaymentRequest represents the hosted checkout callback
type ConfirmPaymentRequest struct {
	GatewayOrderID   string `json:"gateway_order_id" binding:"required"`
	GatewayPaymentID string `json:"gateway_payment_id" binding:"required"`
	Signature        string `json:"signature" binding:"required"`
}

// PlaceOrderResponse pairs the created order with its payment session
type PlaceOrderResponse struct {
	Order   OrderResponse          `json:"order"`
	Session PaymentSessionResponse `json:"session"`
}

func toPaymentSessionResponse(s checkoutapp.PaymentSession) PaymentSessionResponse {
	return PaymentSessionResponse{
		OrderID:        s.OrderID,
		OrderNumber:    s.OrderNumber,
		GatewayOrderID: s.GatewayOrderID,
		AmountPaise:    s.AmountPaise,
		Currency:       s.Currency,
		Purpose:        s.Purpose,
	}
}

// PlaceOrder godoc
// @Summary      Place an order
// @Description  Creates the order document and opens a payment session. Catalog
// @Description  orders collect the full amount; custom orders collect the advance.
// @Tags         checkout
// @Accept       json
// @Produce      json
// @Param        request body PlaceOrderRequest true "Checkout request"
// @Success      201 {object} dto.Response{data=PlaceOrderResponse}
// @Security     BearerAuth
// @Router       /checkout/orders [post]
func (h *CheckoutHandler) PlaceOrder(c *gin.Context) {
	customerID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var req PlaceOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	input := checkoutapp.PlaceOrderInput{
		CustomerID:    customerID,
		Kind:          order.Kind(req.Kind),
		Customization: req.Customization,
		ShipTo: checkoutapp.ShippingAddressInput{
			Line1:   req.ShipTo.Line1,
			Line2:   req.ShipTo.Line2,
			City:    req.ShipTo.City,
			State:   req.ShipTo.State,
			Pincode: req.ShipTo.Pincode,
			Phone:   req.ShipTo.Phone,
		},
		RecipientName:  req.RecipientName,
		RecipientEmail: req.RecipientEmail,
	}
	for _, line := range req.Lines {
		productID, err := uuid.Parse(line.ProductID)
		if err != nil {
			h.BadRequest(c, "Invalid product ID format")
			return
		}
		input.Lines = append(input.Lines, checkoutapp.OrderLine{
			ProductID: productID,
			Quantity:  line.Quantity,
		})
	}

	result, err := h.checkoutService.PlaceOrder(c.Request.Context(), input)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, PlaceOrderResponse{
		Order:   toOrderResponse(result.Order),
		Session: toPaymentSessionResponse(result.Session),
	})
}

// ConfirmPayment godoc
// @Summary      Confirm a payment from the checkout callback
// @Description  Verifies the gateway signature and records the payment. Safe to
// @Description  replay; a payment already recorded by the webhook is a no-op.
// @Tags         checkout
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Router       /checkout/orders/{id}/confirm [post]
func (h *CheckoutHandler) ConfirmPayment(c *gin.Context) {
	orderID, ok := parseIDParam(c)
	if !ok {
		h.BadRequest(c, "Invalid order ID format")
		return
	}

	var req ConfirmPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	o, err := h.checkoutService.ConfirmPayment(c.Request.Context(), checkoutapp.ConfirmPaymentInput{
		OrderID:          orderID,
		GatewayOrderID:   req.GatewayOrderID,
		GatewayPaymentID: req.GatewayPaymentID,
		Signature:        req.Signature,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, toOrderResponse(o))
}

// CreateBalanceSession godoc
// @Summary      Open a payment session for the remaining balance
// @Tags         checkout
// @Produce      json
// @Security     BearerAuth
// @Router       /checkout/orders/{id}/balance-session [post]
func (h *CheckoutHandler) CreateBalanceSession(c *gin.Context) {
	orderID, ok := parseIDParam(c)
	if !ok {
		h.BadRequest(c, "Invalid order ID format")
		return
	}

	session, err := h.checkoutService.CreateBalanceSession(c.Request.Context(), orderID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, toPaymentSessionResponse(*session))
}
