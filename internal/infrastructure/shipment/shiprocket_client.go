// Package shipment implements the courier aggregator client used for
// dispatching orders.
package shipment

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/costerbox/backend/internal/domain/shipping"
	"go.uber.org/zap"
)

// maxResponseSize limits response body reads (10MB)
const maxResponseSize = 10 * 1024 * 1024

// defaultTokenTTL is how long a login token is reused before re-authenticating.
// The courier issues tokens valid for 10 days; refreshing after 9 keeps a
// safety margin.
const defaultTokenTTL = 9 * 24 * time.Hour

// Config holds courier API credentials and connection settings
type Config struct {
	BaseURL  string
	Email    string
	Password string
	TokenTTL time.Duration
	Timeout  time.Duration
}

// Validate checks the required configuration fields
func (c *Config) Validate() error {
	if c.BaseURL == "" {
		return errors.New("courier base URL is required")
	}
	if c.Email == "" {
		return errors.New("courier account email is required")
	}
	if c.Password == "" {
		return errors.New("courier account password is required")
	}
	return nil
}

// cachedToken is a bearer token with its fetch time. Freshness is judged
// against the fetch time, not the token's own expiry claim.
type cachedToken struct {
	value     string
	fetchedAt time.Time
}

// Client is the courier aggregator REST client. It caches the login token
// and transparently refreshes it once when the upstream rejects a call with
// 401/403; a second rejection is terminal.
type Client struct {
	config     Config
	httpClient *http.Client
	logger     *zap.Logger

	mu    sync.Mutex
	token *cachedToken
}

// NewClient creates a courier client from configuration
func NewClient(config Config, logger *zap.Logger) (*Client, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid courier config: %w", err)
	}
	if config.TokenTTL <= 0 {
		config.TokenTTL = defaultTokenTTL
	}
	timeout := config.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Client{
		config: config,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}, nil
}

// apiError carries the upstream status and body for retry decisions
type apiError struct {
	status int
	body   string
}

func (e *apiError) Error() string {
	return fmt.Sprintf("courier returned status %d: %s", e.status, e.body)
}

func (e *apiError) isAuthFailure() bool {
	return e.status == http.StatusUnauthorized || e.status == http.StatusForbidden
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string `json:"token"`
}

// getToken returns the cached bearer token when it is younger than the TTL.
// With forceRefresh, or when the cache is stale or empty, it logs in again
// and replaces the cache. The mutex makes concurrent callers share a single
// refresh instead of racing logins.
func (c *Client) getToken(ctx context.Context, forceRefresh bool) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !forceRefresh && c.token != nil && time.Since(c.token.fetchedAt) < c.config.TokenTTL {
		return c.token.value, nil
	}

	body, err := json.Marshal(loginRequest{Email: c.config.Email, Password: c.config.Password})
	if err != nil {
		return "", fmt.Errorf("failed to marshal login request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.BaseURL+"/auth/login", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create login request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: login request failed: %v", shipping.ErrRequestFailed, err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return "", fmt.Errorf("%w: failed to read login response: %v", shipping.ErrRequestFailed, err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: login returned status %d: %s", shipping.ErrAuth, resp.StatusCode, string(respBody))
	}

	var loginResp loginResponse
	if err := json.Unmarshal(respBody, &loginResp); err != nil {
		return "", fmt.Errorf("%w: failed to decode login response: %v", shipping.ErrRequestFailed, err)
	}
	if loginResp.Token == "" {
		return "", fmt.Errorf("%w: login response contained no token", shipping.ErrAuth)
	}

	c.token = &cachedToken{value: loginResp.Token, fetchedAt: time.Now()}
	c.logger.Debug("courier token refreshed", zap.Bool("forced", forceRefresh))
	return c.token.value, nil
}

// doAuthorized performs one authenticated request and decodes the response
// into out. Non-2xx statuses come back as *apiError.
func (c *Client) doAuthorized(ctx context.Context, token, method, path string, payload, out any) error {
	var reqBody io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.config.BaseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: request failed: %v", shipping.ErrRequestFailed, err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return fmt.Errorf("%w: failed to read response: %v", shipping.ErrRequestFailed, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &apiError{status: resp.StatusCode, body: string(respBody)}
	}

	if out != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, out); err != nil {
			return fmt.Errorf("%w: failed to decode response: %v", shipping.ErrRequestFailed, err)
		}
	}
	return nil
}

// call wraps doAuthorized with the token retry policy: on a 401/403 the
// cached token is discarded and refreshed exactly once, then the request is
// retried exactly once. A second auth rejection is terminal. Every other
// failure propagates immediately.
func (c *Client) call(ctx context.Context, method, path string, payload, out any) error {
	token, err := c.getToken(ctx, false)
	if err != nil {
		return err
	}

	err = c.doAuthorized(ctx, token, method, path, payload, out)
	var apiErr *apiError
	if err == nil || !errors.As(err, &apiErr) {
		return c.mapAPIError(err)
	}
	if !apiErr.isAuthFailure() {
		return c.mapAPIError(err)
	}

	c.logger.Info("courier rejected token, forcing refresh",
		zap.Int("status", apiErr.status),
		zap.String("path", path),
	)

	token, err = c.getToken(ctx, true)
	if err != nil {
		return err
	}

	err = c.doAuthorized(ctx, token, method, path, payload, out)
	if err != nil && errors.As(err, &apiErr) && apiErr.isAuthFailure() {
		return fmt.Errorf("%w: status %d after forced refresh: %s", shipping.ErrAuth, apiErr.status, apiErr.body)
	}
	return c.mapAPIError(err)
}

// mapAPIError converts *apiError into the domain sentinels. 422 bodies keep
// the courier's validation text verbatim.
func (c *Client) mapAPIError(err error) error {
	if err == nil {
		return nil
	}
	var apiErr *apiError
	if !errors.As(err, &apiErr) {
		return err
	}
	if apiErr.status == http.StatusUnprocessableEntity {
		return fmt.Errorf("%w: %s", shipping.ErrValidation, apiErr.body)
	}
	return fmt.Errorf("%w: status %d: %s", shipping.ErrRequestFailed, apiErr.status, apiErr.body)
}

type createOrderResponse struct {
	OrderID    json.Number `json:"order_id"`
	ShipmentID json.Number `json:"shipment_id"`
	Status     string      `json:"status"`
}

// CreateOrder registers an adhoc shipment with the courier
func (c *Client) CreateOrder(ctx context.Context, req shipping.CreateOrderRequest) (*shipping.CreateOrderResponse, error) {
	var resp createOrderResponse
	if err := c.call(ctx, http.MethodPost, "/orders/create/adhoc", req, &resp); err != nil {
		return nil, err
	}
	return &shipping.CreateOrderResponse{
		OrderID:    resp.OrderID.String(),
		ShipmentID: resp.ShipmentID.String(),
		Status:     resp.Status,
	}, nil
}

type addPickupRequest struct {
	PickupLocation string `json:"pickup_location"`
	Name           string `json:"name"`
	Email          string `json:"email"`
	Phone          string `json:"phone"`
	Address        string `json:"address"`
	Address2       string `json:"address_2,omitempty"`
	City           string `json:"city"`
	State          string `json:"state"`
	Country        string `json:"country"`
	PinCode        string `json:"pin_code"`
}

// AddPickupLocation registers a named pickup address with the courier
func (c *Client) AddPickupLocation(ctx context.Context, loc shipping.PickupLocation) error {
	req := addPickupRequest{
		PickupLocation: loc.Name,
		Name:           loc.Contact,
		Email:          loc.Email,
		Phone:          loc.Phone,
		Address:        loc.Address,
		Address2:       loc.Address2,
		City:           loc.City,
		State:          loc.State,
		Country:        loc.Country,
		PinCode:        loc.Pincode,
	}
	return c.call(ctx, http.MethodPost, "/settings/company/addpickup", req, nil)
}

type pickupLocationsResponse struct {
	Data struct {
		ShippingAddress []struct {
			PickupLocation string `json:"pickup_location"`
			Name           string `json:"name"`
			Email          string `json:"email"`
			Phone          string `json:"phone"`
			Address        string `json:"address"`
			Address2       string `json:"address_2"`
			City           string `json:"city"`
			State          string `json:"state"`
			Country        string `json:"country"`
			PinCode        string `json:"pin_code"`
		} `json:"shipping_address"`
	} `json:"data"`
}

// GetPickupLocations lists the pickup addresses registered on the account
func (c *Client) GetPickupLocations(ctx context.Context) ([]shipping.PickupLocation, error) {
	var resp pickupLocationsResponse
	if err := c.call(ctx, http.MethodGet, "/settings/company/pickup", nil, &resp); err != nil {
		return nil, err
	}

	locations := make([]shipping.PickupLocation, 0, len(resp.Data.ShippingAddress))
	for _, a := range resp.Data.ShippingAddress {
		locations = append(locations, shipping.PickupLocation{
			Name:     a.PickupLocation,
			Contact:  a.Name,
			Email:    a.Email,
			Phone:    a.Phone,
			Address:  a.Address,
			Address2: a.Address2,
			City:     a.City,
			State:    a.State,
			Country:  a.Country,
			Pincode:  a.PinCode,
		})
	}
	return locations, nil
}

type assignWaybillRequest struct {
	ShipmentID string `json:"shipment_id"`
	CourierID  string `json:"courier_id,omitempty"`
}

type assignWaybillResponse struct {
	AWBAssignStatus int `json:"awb_assign_status"`
	Response        struct {
		Data struct {
			AWBCode     string      `json:"awb_code"`
			CourierName string      `json:"courier_name"`
			CourierID   json.Number `json:"courier_company_id"`
		} `json:"data"`
	} `json:"response"`
}

// AssignWaybill requests an AWB for a shipment. An empty courierID lets the
// courier choose the carrier.
func (c *Client) AssignWaybill(ctx context.Context, shipmentID, courierID string) (*shipping.WaybillResult, error) {
	req := assignWaybillRequest{ShipmentID: shipmentID, CourierID: courierID}
	var resp assignWaybillResponse
	if err := c.call(ctx, http.MethodPost, "/courier/assign/awb", req, &resp); err != nil {
		return nil, err
	}
	if resp.AWBAssignStatus != 1 || resp.Response.Data.AWBCode == "" {
		return nil, fmt.Errorf("%w: waybill not assigned (status %d)", shipping.ErrRequestFailed, resp.AWBAssignStatus)
	}
	return &shipping.WaybillResult{
		AWBCode:     resp.Response.Data.AWBCode,
		CourierName: resp.Response.Data.CourierName,
		CourierID:   resp.Response.Data.CourierID.String(),
	}, nil
}

// Ensure Client implements shipping.Gateway
var _ shipping.Gateway = (*Client)(nil)
