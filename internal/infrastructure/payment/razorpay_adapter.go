// Package payment implements the payment-gateway adapter used by checkout.
package payment

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	domainpayment "github.com/costerbox/backend/internal/domain/payment"
	"go.uber.org/zap"
)

// maxResponseSize limits response body reads (10MB)
const maxResponseSize = 10 * 1024 * 1024

// RazorpayConfig holds gateway credentials and connection settings
type RazorpayConfig struct {
	BaseURL       string
	KeyID         string
	KeySecret     string
	WebhookSecret string
	Timeout       time.Duration
}

// Validate checks the required configuration fields
func (c *RazorpayConfig) Validate() error {
	if c.KeyID == "" {
		return errors.New("razorpay key ID is required")
	}
	if c.KeySecret == "" {
		return errors.New("razorpay key secret is required")
	}
	return nil
}

// RazorpayAdapter implements the payment gateway against the Razorpay REST API
type RazorpayAdapter struct {
	config     RazorpayConfig
	httpClient *http.Client
	logger     *zap.Logger
}

// NewRazorpayAdapter creates a gateway adapter from configuration
func NewRazorpayAdapter(config RazorpayConfig, logger *zap.Logger) (*RazorpayAdapter, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid razorpay config: %w", err)
	}
	if config.BaseURL == "" {
		config.BaseURL = "https://api.razorpay.com/v1"
	}
	timeout := config.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &RazorpayAdapter{
		config: config,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}, nil
}

type gatewayErrorResponse struct {
	Error struct {
		Code        string `json:"code"`
		Description string `json:"description"`
	} `json:"error"`
}

// doRequest performs an authenticated request against the gateway
func (a *RazorpayAdapter) doRequest(ctx context.Context, method, path string, payload, out any) error {
	var reqBody io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, a.config.BaseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(a.config.KeyID, a.config.KeySecret)

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: request failed: %v", domainpayment.ErrRequestFailed, err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return fmt.Errorf("%w: failed to read response: %v", domainpayment.ErrRequestFailed, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var gwErr gatewayErrorResponse
		if json.Unmarshal(respBody, &gwErr) == nil && gwErr.Error.Description != "" {
			return fmt.Errorf("%w: %s (%s)", domainpayment.ErrRequestFailed, gwErr.Error.Description, gwErr.Error.Code)
		}
		return fmt.Errorf("%w: status %d: %s", domainpayment.ErrRequestFailed, resp.StatusCode, string(respBody))
	}

	if out != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, out); err != nil {
			return fmt.Errorf("%w: failed to decode response: %v", domainpayment.ErrRequestFailed, err)
		}
	}
	return nil
}

// CreateOrder opens a gateway order the hosted checkout collects against
func (a *RazorpayAdapter) CreateOrder(ctx context.Context, req domainpayment.CreateOrderRequest) (*domainpayment.GatewayOrder, error) {
	if req.AmountPaise <= 0 {
		return nil, fmt.Errorf("%w: amount must be positive", domainpayment.ErrRequestFailed)
	}
	if req.Currency == "" {
		req.Currency = "INR"
	}

	var order domainpayment.GatewayOrder
	if err := a.doRequest(ctx, http.MethodPost, "/orders", req, &order); err != nil {
		return nil, err
	}

	a.logger.Debug("gateway order created",
		zap.String("gateway_order_id", order.ID),
		zap.Int64("amount_paise", order.AmountPaise),
	)
	return &order, nil
}

// VerifyCheckoutSignature verifies the signature the hosted checkout returns:
// HMAC-SHA256 of "orderID|paymentID" keyed with the key secret.
func (a *RazorpayAdapter) VerifyCheckoutSignature(gatewayOrderID, gatewayPaymentID, signature string) error {
	expected := hmacHex([]byte(a.config.KeySecret), []byte(gatewayOrderID+"|"+gatewayPaymentID))
	if !hmac.Equal([]byte(expected), []byte(signature)) {
		return domainpayment.ErrInvalidSignature
	}
	return nil
}

// VerifyWebhookSignature verifies a webhook body against the signature header
func (a *RazorpayAdapter) VerifyWebhookSignature(body []byte, signature string) error {
	if a.config.WebhookSecret == "" {
		return fmt.Errorf("%w: webhook secret not configured", domainpayment.ErrInvalidSignature)
	}
	expected := hmacHex([]byte(a.config.WebhookSecret), body)
	if !hmac.Equal([]byte(expected), []byte(signature)) {
		return domainpayment.ErrInvalidSignature
	}
	return nil
}

func hmacHex(key, message []byte) string {
	mac := hmac.New(sha256.New, key)
	mac.Write(message)
	return hex.EncodeToString(mac.Sum(nil))
}

// Ensure RazorpayAdapter implements the gateway interface
var _ domainpayment.Gateway = (*RazorpayAdapter)(nil)
