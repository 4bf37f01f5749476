package shipment

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/costerbox/backend/internal/domain/shipping"
)

// ---------------------------------------------------------------------------
// Config Tests
// ---------------------------------------------------------------------------

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr bool
	}{
		{
			name: "valid config",
			config: Config{
				BaseURL:  "https://courier.example.com/v1",
				Email:    "ops@example.com",
				Password: "secret",
			},
			wantErr: false,
		},
		{
			name: "missing base URL",
			config: Config{
				Email:    "ops@example.com",
				Password: "secret",
			},
			wantErr: true,
		},
		{
			name: "missing email",
			config: Config{
				BaseURL:  "https://courier.example.com/v1",
				Password: "secret",
			},
			wantErr: true,
		},
		{
			name: "missing password",
			config: Config{
				BaseURL: "https://courier.example.com/v1",
				Email:   "ops@example.com",
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// Mock server
// ---------------------------------------------------------------------------

type mockCourier struct {
	server *httptest.Server

	loginCount   atomic.Int64
	orderCount   atomic.Int64
	waybillCount atomic.Int64

	// tokens issued in sequence; the handler validates the latest
	currentToken atomic.Value

	// orderHandler overrides the default create-order behavior
	orderHandler func(w http.ResponseWriter, r *http.Request)
}

func newMockCourier(t *testing.T) *mockCourier {
	t.Helper()
	m := &mockCourier{}
	m.currentToken.Store("")

	mux := http.NewServeMux()
	mux.HandleFunc("/auth/login", func(w http.ResponseWriter, r *http.Request) {
		n := m.loginCount.Add(1)
		token := "token-" + string(rune('a'+n-1))
		m.currentToken.Store(token)
		_ = json.NewEncoder(w).Encode(map[string]string{"token": token})
	})
	mux.HandleFunc("/orders/create/adhoc", func(w http.ResponseWriter, r *http.Request) {
		m.orderCount.Add(1)
		if m.orderHandler != nil {
			m.orderHandler(w, r)
			return
		}
		if r.Header.Get("Authorization") != "Bearer "+m.currentToken.Load().(string) {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"order_id":    708001,
			"shipment_id": 808001,
			"status":      "NEW",
		})
	})
	mux.HandleFunc("/courier/assign/awb", func(w http.ResponseWriter, r *http.Request) {
		m.waybillCount.Add(1)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"awb_assign_status": 1,
			"response": map[string]any{
				"data": map[string]any{
					"awb_code":           "AWB123456",
					"courier_name":       "Delhivery",
					"courier_company_id": 12,
				},
			},
		})
	})
	mux.HandleFunc("/settings/company/pickup", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"data": map[string]any{
				"shipping_address": []map[string]string{
					{
						"pickup_location": "Primary",
						"name":            "Costerbox Warehouse",
						"email":           "ops@example.com",
						"phone":           "9876543210",
						"address":         "12 Industrial Estate",
						"city":            "Jaipur",
						"state":           "Rajasthan",
						"country":         "India",
						"pin_code":        "302001",
					},
				},
			},
		})
	})
	mux.HandleFunc("/settings/company/addpickup", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	m.server = httptest.NewServer(mux)
	t.Cleanup(m.server.Close)
	return m
}

func newTestClient(t *testing.T, m *mockCourier, ttl time.Duration) *Client {
	t.Helper()
	client, err := NewClient(Config{
		BaseURL:  m.server.URL,
		Email:    "ops@example.com",
		Password: "secret",
		TokenTTL: ttl,
	}, zap.NewNop())
	require.NoError(t, err)
	return client
}

func testOrderRequest() shipping.CreateOrderRequest {
	return shipping.CreateOrderRequest{
		OrderID:        "CB-2026-00042",
		OrderDate:      "2026-08-30 11:00",
		PickupLocation: "Primary",
		BillingName:    "Asha Rao",
		BillingAddress: "4 MG Road",
		BillingCity:    "Bengaluru",
		BillingState:   "Karnataka",
		BillingPincode: "560001",
		BillingCountry: "India",
		BillingEmail:   "asha@example.com",
		BillingPhone:   "9000000001",
		Items: []shipping.OrderItem{
			{Name: "Terracotta Vase", SKU: "TCV-01", Units: 1, SellingPrice: 1499},
		},
		PaymentMethod: "Prepaid",
		SubTotal:      1499,
		WeightKg:      1.2,
	}
}

// ---------------------------------------------------------------------------
// Token cache behavior
// ---------------------------------------------------------------------------

func TestClient_TokenCachedWithinTTL(t *testing.T) {
	m := newMockCourier(t)
	client := newTestClient(t, m, 9*24*time.Hour)
	ctx := context.Background()

	_, err := client.CreateOrder(ctx, testOrderRequest())
	require.NoError(t, err)
	_, err = client.CreateOrder(ctx, testOrderRequest())
	require.NoError(t, err)

	assert.Equal(t, int64(1), m.loginCount.Load(), "second call must reuse the cached token")
	assert.Equal(t, int64(2), m.orderCount.Load())
}

func TestClient_TokenRefreshedAfterTTL(t *testing.T) {
	m := newMockCourier(t)
	client := newTestClient(t, m, 20*time.Millisecond)
	ctx := context.Background()

	_, err := client.CreateOrder(ctx, testOrderRequest())
	require.NoError(t, err)

	time.Sleep(30 * time.Millisecond)

	_, err = client.CreateOrder(ctx, testOrderRequest())
	require.NoError(t, err)

	assert.Equal(t, int64(2), m.loginCount.Load(), "stale token must trigger a fresh login")
}

func TestClient_ForceRefresh(t *testing.T) {
	m := newMockCourier(t)
	client := newTestClient(t, m, 9*24*time.Hour)
	ctx := context.Background()

	tok1, err := client.getToken(ctx, false)
	require.NoError(t, err)
	tok2, err := client.getToken(ctx, false)
	require.NoError(t, err)
	assert.Equal(t, tok1, tok2)

	tok3, err := client.getToken(ctx, true)
	require.NoError(t, err)
	assert.NotEqual(t, tok1, tok3)
	assert.Equal(t, int64(2), m.loginCount.Load())
}

// ---------------------------------------------------------------------------
// Retry policy
// ---------------------------------------------------------------------------

func TestClient_RefreshesOnceOn401(t *testing.T) {
	m := newMockCourier(t)
	var rejected atomic.Bool
	m.orderHandler = func(w http.ResponseWriter, r *http.Request) {
		// Reject the first attempt regardless of token, accept the retry
		if rejected.CompareAndSwap(false, true) {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"order_id":    708002,
			"shipment_id": 808002,
			"status":      "NEW",
		})
	}

	client := newTestClient(t, m, 9*24*time.Hour)
	resp, err := client.CreateOrder(context.Background(), testOrderRequest())
	require.NoError(t, err)

	assert.Equal(t, "708002", resp.OrderID)
	assert.Equal(t, int64(2), m.loginCount.Load(), "401 must force exactly one re-login")
	assert.Equal(t, int64(2), m.orderCount.Load(), "401 must trigger exactly one retry")
}

func TestClient_SecondAuthFailureIsTerminal(t *testing.T) {
	m := newMockCourier(t)
	m.orderHandler = func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}

	client := newTestClient(t, m, 9*24*time.Hour)
	_, err := client.CreateOrder(context.Background(), testOrderRequest())

	require.Error(t, err)
	assert.ErrorIs(t, err, shipping.ErrAuth)
	assert.Equal(t, int64(2), m.orderCount.Load(), "no third attempt after a second auth failure")
}

func TestClient_ValidationErrorNoRetry(t *testing.T) {
	m := newMockCourier(t)
	m.orderHandler = func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"message":"billing_pincode is invalid"}`))
	}

	client := newTestClient(t, m, 9*24*time.Hour)
	_, err := client.CreateOrder(context.Background(), testOrderRequest())

	require.Error(t, err)
	assert.ErrorIs(t, err, shipping.ErrValidation)
	assert.Contains(t, err.Error(), "billing_pincode is invalid", "upstream validation text must survive verbatim")
	assert.Equal(t, int64(1), m.orderCount.Load(), "validation failures must not be retried")
	assert.Equal(t, int64(1), m.loginCount.Load())
}

func TestClient_ServerErrorPropagates(t *testing.T) {
	m := newMockCourier(t)
	m.orderHandler = func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte("upstream down"))
	}

	client := newTestClient(t, m, 9*24*time.Hour)
	_, err := client.CreateOrder(context.Background(), testOrderRequest())

	require.Error(t, err)
	assert.ErrorIs(t, err, shipping.ErrRequestFailed)
	assert.NotErrorIs(t, err, shipping.ErrAuth)
	assert.Equal(t, int64(1), m.orderCount.Load())
}

// ---------------------------------------------------------------------------
// Operations
// ---------------------------------------------------------------------------

func TestClient_GetPickupLocations(t *testing.T) {
	m := newMockCourier(t)
	client := newTestClient(t, m, 9*24*time.Hour)

	locations, err := client.GetPickupLocations(context.Background())
	require.NoError(t, err)
	require.Len(t, locations, 1)
	assert.Equal(t, "Primary", locations[0].Name)
	assert.Equal(t, "Jaipur", locations[0].City)
	assert.Equal(t, "302001", locations[0].Pincode)
}

func TestClient_AssignWaybill(t *testing.T) {
	m := newMockCourier(t)
	client := newTestClient(t, m, 9*24*time.Hour)

	result, err := client.AssignWaybill(context.Background(), "808001", "")
	require.NoError(t, err)
	assert.Equal(t, "AWB123456", result.AWBCode)
	assert.Equal(t, "Delhivery", result.CourierName)
	assert.Equal(t, "12", result.CourierID)
}

func TestClient_AddPickupLocation(t *testing.T) {
	m := newMockCourier(t)
	client := newTestClient(t, m, 9*24*time.Hour)

	err := client.AddPickupLocation(context.Background(), shipping.PickupLocation{
		Name:    "meerakala",
		Contact: "Meera Kala",
		Email:   "meera.kala@example.com",
		Phone:   "9000000002",
		Address: "7 Craft Lane",
		City:    "Jodhpur",
		State:   "Rajasthan",
		Country: "India",
		Pincode: "342001",
	})
	require.NoError(t, err)
}
