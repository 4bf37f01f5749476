package checkout

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/costerbox/backend/internal/domain/order"
	"github.com/costerbox/backend/internal/domain/payment"
	"github.com/costerbox/backend/internal/infrastructure/cache"
)

func capturedPaymentBody(t *testing.T, paymentID, gatewayOrderID, orderNumber string, amountPaise int64) []byte {
	t.Helper()
	body, err := json.Marshal(map[string]any{
		"event": "payment.captured",
		"payload": map[string]any{
			"payment": map[string]any{
				"entity": map[string]any{
					"id":       paymentID,
					"order_id": gatewayOrderID,
					"amount":   amountPaise,
					"currency": "INR",
					"notes":    map[string]string{"order_number": orderNumber},
				},
			},
		},
	})
	require.NoError(t, err)
	return body
}

func newWebhookService(t *testing.T, orders *mockOrderRepository, gateway *mockGateway) *WebhookService {
	t.Helper()
	store := cache.NewInMemoryIdempotencyStore()
	t.Cleanup(func() { _ = store.Close() })
	return NewWebhookService(orders, gateway, store, nil, zap.NewNop())
}

func TestWebhookService_PaymentCaptured(t *testing.T) {
	orders := new(mockOrderRepository)
	gateway := new(mockGateway)
	svc := newWebhookService(t, orders, gateway)

	o := newCreatedOrder(t, order.KindCustom, 1000)
	body := capturedPaymentBody(t, "pay_wh_1", "order_gw_1", o.OrderNumber, 70000)

	gateway.On("VerifyWebhookSignature", body, "sig").Return(nil)
	orders.On("FindByOrderNumber", mock.Anything, o.OrderNumber).Return(o, nil)
	orders.On("SaveWithLock", mock.Anything, o).Return(nil)

	require.NoError(t, svc.HandlePaymentWebhook(context.Background(), body, "sig"))
	assert.Equal(t, order.StatusPendingAcceptance, o.Status)
	require.Len(t, o.Payments, 1)
	assert.Equal(t, "pay_wh_1", o.Payments[0].GatewayPaymentID)
	assert.Equal(t, order.PaymentPurposeAdvance, o.Payments[0].Purpose)
}

func TestWebhookService_ReplayIgnored(t *testing.T) {
	orders := new(mockOrderRepository)
	gateway := new(mockGateway)
	svc := newWebhookService(t, orders, gateway)

	o := newCreatedOrder(t, order.KindCatalog, 1000)
	body := capturedPaymentBody(t, "pay_wh_2", "order_gw_1", o.OrderNumber, 100000)

	gateway.On("VerifyWebhookSignature", body, "sig").Return(nil)
	orders.On("FindByOrderNumber", mock.Anything, o.OrderNumber).Return(o, nil)
	orders.On("SaveWithLock", mock.Anything, o).Return(nil)

	require.NoError(t, svc.HandlePaymentWebhook(context.Background(), body, "sig"))
	require.NoError(t, svc.HandlePaymentWebhook(context.Background(), body, "sig"))

	assert.Len(t, o.Payments, 1)
	orders.AssertNumberOfCalls(t, "SaveWithLock", 1)
}

func TestWebhookService_RetryAfterStoreFailureRecordsPayment(t *testing.T) {
	orders := new(mockOrderRepository)
	gateway := new(mockGateway)
	svc := newWebhookService(t, orders, gateway)

	o := newCreatedOrder(t, order.KindCatalog, 1000)
	body := capturedPaymentBody(t, "pay_wh_5", "order_gw_1", o.OrderNumber, 100000)

	gateway.On("VerifyWebhookSignature", body, "sig").Return(nil)
	orders.On("FindByOrderNumber", mock.Anything, o.OrderNumber).Return(o, nil)
	// first save fails, so the delivery must not be remembered as processed
	orders.On("SaveWithLock", mock.Anything, o).Return(assert.AnError).Once()
	orders.On("SaveWithLock", mock.Anything, o).Return(nil).Once()

	err := svc.HandlePaymentWebhook(context.Background(), body, "sig")
	require.ErrorIs(t, err, assert.AnError)

	// the failed save rolled back, so the gateway's retry sees the order unpaid
	o.Payments = nil
	o.Status = order.StatusCreated
	require.NoError(t, svc.HandlePaymentWebhook(context.Background(), body, "sig"))
	require.Len(t, o.Payments, 1)
	assert.Equal(t, "pay_wh_5", o.Payments[0].GatewayPaymentID)
}

func TestWebhookService_BadSignature(t *testing.T) {
	orders := new(mockOrderRepository)
	gateway := new(mockGateway)
	svc := newWebhookService(t, orders, gateway)

	body := []byte(`{"event":"payment.captured"}`)
	gateway.On("VerifyWebhookSignature", body, "bad").Return(payment.ErrInvalidSignature)

	err := svc.HandlePaymentWebhook(context.Background(), body, "bad")
	assert.ErrorIs(t, err, payment.ErrInvalidSignature)
	orders.AssertNotCalled(t, "FindByOrderNumber")
}

func TestWebhookService_IgnoresOtherEvents(t *testing.T) {
	orders := new(mockOrderRepository)
	gateway := new(mockGateway)
	svc := newWebhookService(t, orders, gateway)

	body := []byte(`{"event":"payment.failed","payload":{"payment":{"entity":{"id":"pay_f_1"}}}}`)
	gateway.On("VerifyWebhookSignature", body, "sig").Return(nil)

	require.NoError(t, svc.HandlePaymentWebhook(context.Background(), body, "sig"))
	orders.AssertNotCalled(t, "FindByOrderNumber")
}

func TestWebhookService_AmountMismatchFlagsOrder(t *testing.T) {
	orders := new(mockOrderRepository)
	gateway := new(mockGateway)
	svc := newWebhookService(t, orders, gateway)

	o := newCreatedOrder(t, order.KindCatalog, 1000)
	// short payment: 900 instead of 1000
	body := capturedPaymentBody(t, "pay_wh_3", "order_gw_1", o.OrderNumber, 90000)

	gateway.On("VerifyWebhookSignature", body, "sig").Return(nil)
	orders.On("FindByOrderNumber", mock.Anything, o.OrderNumber).Return(o, nil)
	orders.On("SaveWithLock", mock.Anything, o).Return(nil)

	require.NoError(t, svc.HandlePaymentWebhook(context.Background(), body, "sig"))
	assert.True(t, o.Flagged)
	assert.Equal(t, order.StatusPaid, o.Status)
}

func TestWebhookService_SkipsWhenCallbackLandedFirst(t *testing.T) {
	orders := new(mockOrderRepository)
	gateway := new(mockGateway)
	svc := newWebhookService(t, orders, gateway)

	o := newCreatedOrder(t, order.KindCatalog, 1000)
	require.NoError(t, o.RecordPayment("order_gw_1", "pay_wh_4", o.TotalAmount, order.PaymentPurposeFull))
	body := capturedPaymentBody(t, "pay_wh_4", "order_gw_1", o.OrderNumber, 100000)

	gateway.On("VerifyWebhookSignature", body, "sig").Return(nil)
	orders.On("FindByOrderNumber", mock.Anything, o.OrderNumber).Return(o, nil)

	require.NoError(t, svc.HandlePaymentWebhook(context.Background(), body, "sig"))
	assert.Len(t, o.Payments, 1)
	orders.AssertNotCalled(t, "SaveWithLock")
}
