package handler

import (
	orderapp "github.com/costerbox/backend/internal/application/order"
	shippingapp "github.com/costerbox/backend/internal/application/shipping"
	"github.com/costerbox/backend/internal/domain/order"
	"github.com/costerbox/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// AdminOrderHandler handles the admin order console endpoints
type AdminOrderHandler struct {
	BaseHandler
	adminService    *orderapp.AdminOrderService
	orderService    *orderapp.OrderService
	shippingService *shippingapp.ShippingService
}

// NewAdminOrderHandler creates a new AdminOrderHandler
func NewAdminOrderHandler(
	adminService *orderapp.AdminOrderService,
	orderService *orderapp.OrderService,
	shippingService *shippingapp.ShippingService,
) *AdminOrderHandler {
	return &AdminOrderHandler{
		adminService:    adminService,
		orderService:    orderService,
		shippingService: shippingService,
	}
}

// ForceStatusRequest represents an admin status override
type ForceStatusRequest struct {
	Status string `json:"status" binding:"required"`
	Reason string `json:"reason" binding:"required,max=500"`
}

// OverrideTrackingRequest represents an admin tracking override
type OverrideTrackingRequest struct {
	CourierOrderID    string `json:"courier_order_id"`
	CourierShipmentID string `json:"courier_shipment_id"`
	AWBCode           string `json:"awb_code"`
	CourierName       string `json:"courier_name"`
}

// ReassignArtisanRequest represents an admin artisan reassignment
type ReassignArtisanRequest struct {
	ArtisanID string `json:"artisan_id" binding:"required,uuid"`
}

// FlagOrderRequest represents flagging an order for manual review
type FlagOrderRequest struct {
	Reason string `json:"reason" binding:"required,max=500"`
}

// Search godoc
// @Summary      Search orders
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Router       /admin/orders [get]
func (h *AdminOrderHandler) Search(c *gin.Context) {
	filter := parseListFilter(c)
	if status := c.Query("status"); status != "" {
		filter.Filters["status"] = status
	}
	if kind := c.Query("kind"); kind != "" {
		filter.Filters["kind"] = kind
	}
	if c.Query("flagged") == "true" {
		filter.Filters["flagged"] = true
	}

	page, err := h.adminService.SearchOrders(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, toPaginatedOrderResponses(page), page.Total, page.Page, page.PageSize)
}

// StatusCounts godoc
// @Summary      Count orders per status
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Router       /admin/orders/stats [get]
func (h *AdminOrderHandler) StatusCounts(c *gin.Context) {
	counts, err := h.adminService.StatusCounts(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, counts)
}

// ForceStatus godoc
// @Summary      Force an order into a status
// @Description  Bypasses the normal transitions; the override is logged with
// @Description  the acting admin and reason.
// @Tags         admin
// @Security     BearerAuth
// @Router       /admin/orders/{id}/force-status [post]
func (h *AdminOrderHandler) ForceStatus(c *gin.Context) {
	orderID, ok := parseIDParam(c)
	if !ok {
		h.BadRequest(c, "Invalid order ID format")
		return
	}

	var req ForceStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	o, err := h.adminService.ForceStatus(c.Request.Context(), middleware.GetJWTUserID(c), orderapp.ForceStatusInput{
		OrderID: orderID,
		Status:  order.Status(req.Status),
		Reason:  req.Reason,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, toOrderResponse(o))
}

// OverrideTracking godoc
// @Summary      Override courier tracking fields
// @Tags         admin
// @Security     BearerAuth
// @Router       /admin/orders/{id}/tracking [put]
func (h *AdminOrderHandler) OverrideTracking(c *gin.Context) {
	orderID, ok := parseIDParam(c)
	if !ok {
		h.BadRequest(c, "Invalid order ID format")
		return
	}

	var req OverrideTrackingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	o, err := h.adminService.OverrideTracking(c.Request.Context(), middleware.GetJWTUserID(c), orderapp.OverrideTrackingInput{
		OrderID:           orderID,
		CourierOrderID:    req.CourierOrderID,
		CourierShipmentID: req.CourierShipmentID,
		AWBCode:           req.AWBCode,
		CourierName:       req.CourierName,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, toOrderResponse(o))
}

// ReassignArtisan godoc
// @Summary      Reassign a custom order to another artisan
// @Tags         admin
// @Security     BearerAuth
// @Router       /admin/orders/{id}/reassign [post]
func (h *AdminOrderHandler) ReassignArtisan(c *gin.Context) {
	orderID, ok := parseIDParam(c)
	if !ok {
		h.BadRequest(c, "Invalid order ID format")
		return
	}

	var req ReassignArtisanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	artisanID, err := uuid.Parse(req.ArtisanID)
	if err != nil {
		h.BadRequest(c, "Invalid artisan ID format")
		return
	}

	o, err := h.adminService.ReassignArtisan(c.Request.Context(), middleware.GetJWTUserID(c), orderapp.ReassignArtisanInput{
		OrderID:   orderID,
		ArtisanID: artisanID,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, toOrderResponse(o))
}

// Flag godoc
// @Summary      Flag an order for manual review
// @Tags         admin
// @Security     BearerAuth
// @Router       /admin/orders/{id}/flag [post]
func (h *AdminOrderHandler) Flag(c *gin.Context) {
	orderID, ok := parseIDParam(c)
	if !ok {
		h.BadRequest(c, "Invalid order ID format")
		return
	}

	var req FlagOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	o, err := h.adminService.FlagOrder(c.Request.Context(), orderapp.FlagOrderInput{
		OrderID: orderID,
		Reason:  req.Reason,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, toOrderResponse(o))
}

// Unflag godoc
// @Summary      Clear the review flag from an order
// @Tags         admin
// @Security     BearerAuth
// @Router       /admin/orders/{id}/unflag [post]
func (h *AdminOrderHandler) Unflag(c *gin.Context) {
	orderID, ok := parseIDParam(c)
	if !ok {
		h.BadRequest(c, "Invalid order ID format")
		return
	}

	o, err := h.adminService.UnflagOrder(c.Request.Context(), orderID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, toOrderResponse(o))
}

// Ship godoc
// @Summary      Hand an order to the courier
// @Description  Registers the pickup location if needed, creates the courier
// @Description  order and assigns a waybill. AWB assignment is best effort.
// @Tags         admin
// @Security     BearerAuth
// @Router       /admin/orders/{id}/ship [post]
func (h *AdminOrderHandler) Ship(c *gin.Context) {
	orderID, ok := parseIDParam(c)
	if !ok {
		h.BadRequest(c, "Invalid order ID format")
		return
	}

	o, err := h.shippingService.ShipOrder(c.Request.Context(), orderID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, toOrderResponse(o))
}

// MarkDelivered godoc
// @Summary      Mark a shipped order as delivered
// @Tags         admin
// @Security     BearerAuth
// @Router       /admin/orders/{id}/deliver [post]
func (h *AdminOrderHandler) MarkDelivered(c *gin.Context) {
	orderID, ok := parseIDParam(c)
	if !ok {
		h.BadRequest(c, "Invalid order ID format")
		return
	}

	o, err := h.orderService.MarkDelivered(c.Request.Context(), orderID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, toOrderResponse(o))
}
