package handler

import (
	"errors"
	"io"
	"net/http"

	checkoutapp "github.com/costerbox/backend/internal/application/checkout"
	"github.com/costerbox/backend/internal/domain/payment"
	"github.com/gin-gonic/gin"
)

// Maximum webhook payload size (64KB - gateway webhooks are small)
const maxWebhookPayloadSize = 65536

// signatureHeader is where the payment gateway puts the HMAC of the body
const signatureHeader = "X-Razorpay-Signature"

// PaymentWebhookHandler handles payment gateway webhook endpoints.
// These endpoints are called by the gateway and do not require authentication;
// authenticity comes from the body signature instead.
type PaymentWebhookHandler struct {
	BaseHandler
	webhookService *checkoutapp.WebhookService
}

// NewPaymentWebhookHandler creates a new PaymentWebhookHandler
func NewPaymentWebhookHandler(webhookService *checkoutapp.WebhookService) *PaymentWebhookHandler {
	return &PaymentWebhookHandler{
		webhookService: webhookService,
	}
}

// WebhookResponse represents the response returned to the gateway
type WebhookResponse struct {
	Received bool   `json:"received"`
	Message  string `json:"message,omitempty"`
}

// HandlePaymentWebhook godoc
// @Summary      Handle payment gateway webhook
// @Description  Receives capture events from the payment gateway. The raw body
// @Description  is required for signature verification.
// @Tags         webhooks
// @Accept       json
// @Produce      json
// @Param        X-Razorpay-Signature header string true "Webhook body signature"
// @Success      200 {object} WebhookResponse
// @Router       /webhooks/payments [post]
func (h *PaymentWebhookHandler) HandlePaymentWebhook(c *gin.Context) {
	payload, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookPayloadSize+1))
	if err != nil {
		c.JSON(http.StatusBadRequest, WebhookResponse{
			Received: false,
			Message:  "Failed to read request body",
		})
		return
	}

	if len(payload) > maxWebhookPayloadSize {
		c.JSON(http.StatusRequestEntityTooLarge, WebhookResponse{
			Received: false,
			Message:  "Payload too large",
		})
		return
	}

	signature := c.GetHeader(signatureHeader)
	if signature == "" {
		c.JSON(http.StatusUnauthorized, WebhookResponse{
			Received: false,
			Message:  "Missing signature header",
		})
		return
	}

	if err := h.webhookService.HandlePaymentWebhook(c.Request.Context(), payload, signature); err != nil {
		if errors.Is(err, payment.ErrInvalidSignature) {
			c.JSON(http.StatusUnauthorized, WebhookResponse{
				Received: false,
				Message:  "Webhook signature verification failed",
			})
			return
		}

		// Other processing errors still return 200 so the gateway does not
		// retry events that will never succeed. Details stay server-side.
		c.JSON(http.StatusOK, WebhookResponse{
			Received: true,
			Message:  "Webhook received but processing encountered an issue",
		})
		return
	}

	c.JSON(http.StatusOK, WebhookResponse{Received: true})
}
