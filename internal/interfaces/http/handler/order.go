package handler

import (
	orderapp "github.com/costerbox/backend/internal/application/order"
	"github.com/gin-gonic/gin"
)

// OrderHandler handles customer and artisan order API endpoints
type OrderHandler struct {
	BaseHandler
	orderService *orderapp.OrderService
}

// NewOrderHandler creates a new OrderHandler
func NewOrderHandler(orderService *orderapp.OrderService) *OrderHandler {
	return &OrderHandler{
		orderService: orderService,
	}
}

// CancelOrderRequest represents a cancellation request
type CancelOrderRequest struct {
	Reason string `json:"reason" binding:"max=500"`
}

// GetByID godoc
// @Summary      Get an order
// @Description  Customers see their own orders, artisans their assigned ones,
// @Description  admins everything.
// @Tags         orders
// @Produce      json
// @Security     BearerAuth
// @Router       /orders/{id} [get]
func (h *OrderHandler) GetByID(c *gin.Context) {
	orderID, ok := parseIDParam(c)
	if !ok {
		h.BadRequest(c, "Invalid order ID format")
		return
	}

	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	o, err := h.orderService.GetOrder(c.Request.Context(), orderID, userID, getRole(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, toOrderResponse(o))
}

// ListMine godoc
// @Summary      List the caller's orders
// @Tags         orders
// @Produce      json
// @Security     BearerAuth
// @Router       /orders [get]
func (h *OrderHandler) ListMine(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	page, err := h.orderService.ListCustomerOrders(c.Request.Context(), userID, parseListFilter(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, toPaginatedOrderResponses(page), page.Total, page.Page, page.PageSize)
}

// Cancel godoc
// @Summary      Cancel an order
// @Tags         orders
// @Security     BearerAuth
// @Router       /orders/{id}/cancel [post]
func (h *OrderHandler) Cancel(c *gin.Context) {
	orderID, ok := parseIDParam(c)
	if !ok {
		h.BadRequest(c, "Invalid order ID format")
		return
	}

	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	// Only the owner (or an admin) may cancel
	o, err := h.orderService.GetOrder(c.Request.Context(), orderID, userID, getRole(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	var req CancelOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil && c.Request.ContentLength > 0 {
		h.BadRequest(c, err.Error())
		return
	}

	o, err = h.orderService.CancelOrder(c.Request.Context(), orderapp.CancelOrderInput{
		OrderID: o.ID,
		Reason:  req.Reason,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, toOrderResponse(o))
}

// ListClaimable godoc
// @Summary      List unclaimed custom orders
// @Description  The artisan feed: paid commissions nobody has accepted yet.
// @Tags         artisan
// @Produce      json
// @Security     BearerAuth
// @Router       /artisan/feed [get]
func (h *OrderHandler) ListClaimable(c *gin.Context) {
	orders, err := h.orderService.ListClaimableOrders(c.Request.Context(), parseListFilter(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, toOrderResponses(orders))
}

// ListAssigned godoc
// @Summary      List orders assigned to the calling artisan
// @Tags         artisan
// @Produce      json
// @Security     BearerAuth
// @Router       /artisan/orders [get]
func (h *OrderHandler) ListAssigned(c *gin.Context) {
	artisanID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	orders, err := h.orderService.ListArtisanOrders(c.Request.Context(), artisanID, parseListFilter(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, toOrderResponses(orders))
}

// Claim godoc
// @Summary      Claim a custom order
// @Description  First artisan to claim wins; losers get a conflict response.
// @Tags         artisan
// @Produce      json
// @Security     BearerAuth
// @Router       /artisan/orders/{id}/claim [post]
func (h *OrderHandler) Claim(c *gin.Context) {
	orderID, ok := parseIDParam(c)
	if !ok {
		h.BadRequest(c, "Invalid order ID format")
		return
	}

	artisanID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	o, err := h.orderService.ClaimOrder(c.Request.Context(), orderapp.ClaimOrderInput{
		OrderID:   orderID,
		ArtisanID: artisanID,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, toOrderResponse(o))
}

// RequestBalance godoc
// @Summary      Request the balance payment
// @Description  Marks production as finished and asks the customer to settle
// @Description  the remaining 30%.
// @Tags         artisan
// @Produce      json
// @Security     BearerAuth
// @Router       /artisan/orders/{id}/request-balance [post]
func (h *OrderHandler) RequestBalance(c *gin.Context) {
	orderID, ok := parseIDParam(c)
	if !ok {
		h.BadRequest(c, "Invalid order ID format")
		return
	}

	artisanID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	o, err := h.orderService.RequestBalance(c.Request.Context(), orderapp.RequestBalanceInput{
		OrderID:   orderID,
		ArtisanID: artisanID,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, toOrderResponse(o))
}
