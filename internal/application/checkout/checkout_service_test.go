package checkout

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/costerbox/backend/internal/domain/catalog"
	"github.com/costerbox/backend/internal/domain/order"
	"github.com/costerbox/backend/internal/domain/payment"
	"github.com/costerbox/backend/internal/domain/shared"
	"github.com/costerbox/backend/internal/domain/shared/valueobject"
)

type mockOrderRepository struct {
	mock.Mock
}

func (m *mockOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*order.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *mockOrderRepository) FindByOrderNumber(ctx context.Context, orderNumber string) (*order.Order, error) {
	args := m.Called(ctx, orderNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *mockOrderRepository) FindByGatewayOrderID(ctx context.Context, gatewayOrderID string) (*order.Order, error) {
	args := m.Called(ctx, gatewayOrderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *mockOrderRepository) FindAll(ctx context.Context, filter shared.Filter) ([]order.Order, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]order.Order), args.Error(1)
}

func (m *mockOrderRepository) FindByCustomer(ctx context.Context, customerID uuid.UUID, filter shared.Filter) ([]order.Order, error) {
	args := m.Called(ctx, customerID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]order.Order), args.Error(1)
}

func (m *mockOrderRepository) FindByArtisan(ctx context.Context, artisanID uuid.UUID, filter shared.Filter) ([]order.Order, error) {
	args := m.Called(ctx, artisanID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]order.Order), args.Error(1)
}

func (m *mockOrderRepository) FindClaimable(ctx context.Context, filter shared.Filter) ([]order.Order, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]order.Order), args.Error(1)
}

func (m *mockOrderRepository) Save(ctx context.Context, o *order.Order) error {
	args := m.Called(ctx, o)
	return args.Error(0)
}

func (m *mockOrderRepository) SaveWithLock(ctx context.Context, o *order.Order) error {
	args := m.Called(ctx, o)
	return args.Error(0)
}

func (m *mockOrderRepository) ClaimForArtisan(ctx context.Context, orderID, artisanID uuid.UUID) (*order.Order, error) {
	args := m.Called(ctx, orderID, artisanID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *mockOrderRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockOrderRepository) CountByStatus(ctx context.Context, status order.Status) (int64, error) {
	args := m.Called(ctx, status)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockOrderRepository) GenerateOrderNumber(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

type mockProductRepository struct {
	mock.Mock
}

func (m *mockProductRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Product), args.Error(1)
}

func (m *mockProductRepository) FindBySKU(ctx context.Context, sku string) (*catalog.Product, error) {
	args := m.Called(ctx, sku)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Product), args.Error(1)
}

func (m *mockProductRepository) FindAll(ctx context.Context, filter shared.Filter) ([]catalog.Product, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]catalog.Product), args.Error(1)
}

func (m *mockProductRepository) FindActive(ctx context.Context, filter shared.Filter) ([]catalog.Product, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]catalog.Product), args.Error(1)
}

func (m *mockProductRepository) Save(ctx context.Context, p *catalog.Product) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *mockProductRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *mockProductRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

type mockGateway struct {
	mock.Mock
}

func (m *mockGateway) CreateOrder(ctx context.Context, req payment.CreateOrderRequest) (*payment.GatewayOrder, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payment.GatewayOrder), args.Error(1)
}

func (m *mockGateway) VerifyCheckoutSignature(gatewayOrderID, gatewayPaymentID, signature string) error {
	args := m.Called(gatewayOrderID, gatewayPaymentID, signature)
	return args.Error(0)
}

func (m *mockGateway) VerifyWebhookSignature(body []byte, signature string) error {
	args := m.Called(body, signature)
	return args.Error(0)
}

func testProduct(t *testing.T, priceINR float64, customizable bool) *catalog.Product {
	t.Helper()
	product, err := catalog.NewProduct("Terracotta Vase", "CB-VASE-01", valueobject.NewMoneyINRFromFloat(priceINR))
	require.NoError(t, err)
	product.MarkCustomizable(customizable)
	require.NoError(t, product.SetShippingProfile(1.2, 20, 20, 30))
	return product
}

func placeOrderInput(productID uuid.UUID, kind order.Kind) PlaceOrderInput {
	input := PlaceOrderInput{
		CustomerID: uuid.New(),
		Kind:       kind,
		Lines:      []OrderLine{{ProductID: productID, Quantity: 1}},
		ShipTo: ShippingAddressInput{
			Line1:   "42 Lake View Road",
			City:    "Bengaluru",
			State:   "Karnataka",
			Pincode: "560001",
			Phone:   "9876543210",
		},
		RecipientName:  "Asha Rao",
		RecipientEmail: "asha@example.com",
	}
	if kind == order.KindCustom {
		input.Customization = "Engrave 'A&R' near the base"
	}
	return input
}

func TestCheckoutService_PlaceOrder_Catalog(t *testing.T) {
	orders := new(mockOrderRepository)
	products := new(mockProductRepository)
	gateway := new(mockGateway)
	svc := NewCheckoutService(orders, products, gateway, nil, zap.NewNop())

	product := testProduct(t, 1000, false)
	products.On("FindByID", mock.Anything, product.ID).Return(product, nil)
	orders.On("GenerateOrderNumber", mock.Anything).Return("CB-2026-00001", nil)
	orders.On("Save", mock.Anything, mock.AnythingOfType("*order.Order")).Return(nil)
	gateway.On("CreateOrder", mock.Anything, mock.MatchedBy(func(req payment.CreateOrderRequest) bool {
		return req.AmountPaise == 100000 && req.Receipt == "CB-2026-00001"
	})).Return(&payment.GatewayOrder{
		ID: "order_gw_1", AmountPaise: 100000, Currency: "INR", Receipt: "CB-2026-00001",
	}, nil)

	result, err := svc.PlaceOrder(context.Background(), placeOrderInput(product.ID, order.KindCatalog))
	require.NoError(t, err)
	assert.Equal(t, order.StatusCreated, result.Order.Status)
	assert.Equal(t, order.PaymentPurposeFull, result.Session.Purpose)
	assert.Equal(t, int64(100000), result.Session.AmountPaise)
	gateway.AssertExpectations(t)
}

func TestCheckoutService_PlaceOrder_CustomCollectsAdvance(t *testing.T) {
	orders := new(mockOrderRepository)
	products := new(mockProductRepository)
	gateway := new(mockGateway)
	svc := NewCheckoutService(orders, products, gateway, nil, zap.NewNop())

	product := testProduct(t, 1000, true)
	products.On("FindByID", mock.Anything, product.ID).Return(product, nil)
	orders.On("GenerateOrderNumber", mock.Anything).Return("CB-2026-00002", nil)
	orders.On("Save", mock.Anything, mock.AnythingOfType("*order.Order")).Return(nil)
	gateway.On("CreateOrder", mock.Anything, mock.MatchedBy(func(req payment.CreateOrderRequest) bool {
		// 70% of 1000 INR
		return req.AmountPaise == 70000
	})).Return(&payment.GatewayOrder{
		ID: "order_gw_2", AmountPaise: 70000, Currency: "INR",
	}, nil)

	result, err := svc.PlaceOrder(context.Background(), placeOrderInput(product.ID, order.KindCustom))
	require.NoError(t, err)
	assert.Equal(t, order.PaymentPurposeAdvance, result.Session.Purpose)
	assert.Equal(t, int64(70000), result.Session.AmountPaise)
}

func TestCheckoutService_PlaceOrder_RedrawsNumberOnCollision(t *testing.T) {
	orders := new(mockOrderRepository)
	products := new(mockProductRepository)
	gateway := new(mockGateway)
	svc := NewCheckoutService(orders, products, gateway, nil, zap.NewNop())

	product := testProduct(t, 1000, false)
	products.On("FindByID", mock.Anything, product.ID).Return(product, nil)
	orders.On("GenerateOrderNumber", mock.Anything).Return("CB-2026-00007", nil).Once()
	orders.On("GenerateOrderNumber", mock.Anything).Return("CB-2026-00008", nil).Once()
	// a concurrent checkout took CB-2026-00007 first
	orders.On("Save", mock.Anything, mock.AnythingOfType("*order.Order")).Return(shared.ErrDuplicateNumber).Once()
	orders.On("Save", mock.Anything, mock.AnythingOfType("*order.Order")).Return(nil).Once()
	gateway.On("CreateOrder", mock.Anything, mock.Anything).Return(&payment.GatewayOrder{
		ID: "order_gw_7", AmountPaise: 100000, Currency: "INR", Receipt: "CB-2026-00008",
	}, nil)

	result, err := svc.PlaceOrder(context.Background(), placeOrderInput(product.ID, order.KindCatalog))
	require.NoError(t, err)
	assert.Equal(t, "CB-2026-00008", result.Order.OrderNumber)
	orders.AssertNumberOfCalls(t, "Save", 2)
}

func TestCheckoutService_PlaceOrder_GivesUpAfterRepeatedCollisions(t *testing.T) {
	orders := new(mockOrderRepository)
	products := new(mockProductRepository)
	gateway := new(mockGateway)
	svc := NewCheckoutService(orders, products, gateway, nil, zap.NewNop())

	product := testProduct(t, 1000, false)
	products.On("FindByID", mock.Anything, product.ID).Return(product, nil)
	orders.On("GenerateOrderNumber", mock.Anything).Return("CB-2026-00009", nil)
	orders.On("Save", mock.Anything, mock.AnythingOfType("*order.Order")).Return(shared.ErrDuplicateNumber)

	_, err := svc.PlaceOrder(context.Background(), placeOrderInput(product.ID, order.KindCatalog))
	require.ErrorIs(t, err, shared.ErrDuplicateNumber)
	orders.AssertNumberOfCalls(t, "Save", orderNumberAttempts)
	gateway.AssertNotCalled(t, "CreateOrder")
}

func TestCheckoutService_PlaceOrder_CustomRequiresNote(t *testing.T) {
	orders := new(mockOrderRepository)
	products := new(mockProductRepository)
	gateway := new(mockGateway)
	svc := NewCheckoutService(orders, products, gateway, nil, zap.NewNop())

	input := placeOrderInput(uuid.New(), order.KindCustom)
	input.Customization = ""

	_, err := svc.PlaceOrder(context.Background(), input)
	require.Error(t, err)
	orders.AssertNotCalled(t, "Save")
}

func TestCheckoutService_PlaceOrder_CustomRejectsNonCustomizable(t *testing.T) {
	orders := new(mockOrderRepository)
	products := new(mockProductRepository)
	gateway := new(mockGateway)
	svc := NewCheckoutService(orders, products, gateway, nil, zap.NewNop())

	product := testProduct(t, 1000, false)
	products.On("FindByID", mock.Anything, product.ID).Return(product, nil)

	_, err := svc.PlaceOrder(context.Background(), placeOrderInput(product.ID, order.KindCustom))
	require.Error(t, err)
	orders.AssertNotCalled(t, "Save")
}

func TestCheckoutService_ConfirmPayment(t *testing.T) {
	orders := new(mockOrderRepository)
	products := new(mockProductRepository)
	gateway := new(mockGateway)
	svc := NewCheckoutService(orders, products, gateway, nil, zap.NewNop())

	o := newCreatedOrder(t, order.KindCatalog, 1000)
	orders.On("FindByID", mock.Anything, o.ID).Return(o, nil)
	orders.On("SaveWithLock", mock.Anything, o).Return(nil)
	gateway.On("VerifyCheckoutSignature", "order_gw_1", "pay_1", "sig").Return(nil)

	updated, err := svc.ConfirmPayment(context.Background(), ConfirmPaymentInput{
		OrderID:          o.ID,
		GatewayOrderID:   "order_gw_1",
		GatewayPaymentID: "pay_1",
		Signature:        "sig",
	})
	require.NoError(t, err)
	assert.Equal(t, order.StatusPaid, updated.Status)
	assert.True(t, updated.PendingAmount.IsZero())
}

func TestCheckoutService_ConfirmPayment_BadSignature(t *testing.T) {
	orders := new(mockOrderRepository)
	products := new(mockProductRepository)
	gateway := new(mockGateway)
	svc := NewCheckoutService(orders, products, gateway, nil, zap.NewNop())

	gateway.On("VerifyCheckoutSignature", "order_gw_1", "pay_1", "bad").Return(payment.ErrInvalidSignature)

	_, err := svc.ConfirmPayment(context.Background(), ConfirmPaymentInput{
		OrderID:          uuid.New(),
		GatewayOrderID:   "order_gw_1",
		GatewayPaymentID: "pay_1",
		Signature:        "bad",
	})
	assert.ErrorIs(t, err, payment.ErrInvalidSignature)
	orders.AssertNotCalled(t, "FindByID")
}

func TestCheckoutService_ConfirmPayment_ReplayIsIdempotent(t *testing.T) {
	orders := new(mockOrderRepository)
	products := new(mockProductRepository)
	gateway := new(mockGateway)
	svc := NewCheckoutService(orders, products, gateway, nil, zap.NewNop())

	o := newCreatedOrder(t, order.KindCatalog, 1000)
	require.NoError(t, o.RecordPayment("order_gw_1", "pay_1", o.TotalAmount, order.PaymentPurposeFull))

	orders.On("FindByID", mock.Anything, o.ID).Return(o, nil)
	gateway.On("VerifyCheckoutSignature", "order_gw_1", "pay_1", "sig").Return(nil)

	updated, err := svc.ConfirmPayment(context.Background(), ConfirmPaymentInput{
		OrderID:          o.ID,
		GatewayOrderID:   "order_gw_1",
		GatewayPaymentID: "pay_1",
		Signature:        "sig",
	})
	require.NoError(t, err)
	assert.Len(t, updated.Payments, 1)
	orders.AssertNotCalled(t, "SaveWithLock")
}

func TestCheckoutService_CreateBalanceSession(t *testing.T) {
	orders := new(mockOrderRepository)
	products := new(mockProductRepository)
	gateway := new(mockGateway)
	svc := NewCheckoutService(orders, products, gateway, nil, zap.NewNop())

	o := newCreatedOrder(t, order.KindCustom, 1000)
	require.NoError(t, o.RecordPayment("order_gw_2", "pay_2", o.AdvanceAmount(), order.PaymentPurposeAdvance))
	require.NoError(t, o.Claim(uuid.New()))
	require.NoError(t, o.RequestBalance())

	orders.On("FindByID", mock.Anything, o.ID).Return(o, nil)
	gateway.On("CreateOrder", mock.Anything, mock.MatchedBy(func(req payment.CreateOrderRequest) bool {
		// remaining 30% of 1000 INR
		return req.AmountPaise == 30000
	})).Return(&payment.GatewayOrder{ID: "order_gw_3", AmountPaise: 30000, Currency: "INR"}, nil)

	session, err := svc.CreateBalanceSession(context.Background(), o.ID)
	require.NoError(t, err)
	assert.Equal(t, order.PaymentPurposeBalance, session.Purpose)
	assert.Equal(t, int64(30000), session.AmountPaise)
}

func TestCheckoutService_CreateBalanceSession_WrongState(t *testing.T) {
	orders := new(mockOrderRepository)
	products := new(mockProductRepository)
	gateway := new(mockGateway)
	svc := NewCheckoutService(orders, products, gateway, nil, zap.NewNop())

	o := newCreatedOrder(t, order.KindCustom, 1000)
	orders.On("FindByID", mock.Anything, o.ID).Return(o, nil)

	_, err := svc.CreateBalanceSession(context.Background(), o.ID)
	assert.ErrorIs(t, err, shared.ErrInvalidState)
	gateway.AssertNotCalled(t, "CreateOrder")
}

func newCreatedOrder(t *testing.T, kind order.Kind, totalINR float64) *order.Order {
	t.Helper()
	item, err := order.NewItem(uuid.New(), "Terracotta Vase", "CB-VASE-01", valueobject.NewMoneyINRFromFloat(totalINR), 1)
	require.NoError(t, err)

	shipTo := valueobject.MustNewAddress("42 Lake View Road", "Bengaluru", "Karnataka", "560001",
		valueobject.WithPhone("9876543210"))
	o, err := order.NewOrder("CB-2026-09999", uuid.New(), kind, []order.Item{*item}, shipTo, "Asha Rao", "asha@example.com")
	require.NoError(t, err)
	if kind == order.KindCustom {
		o.Customization = "Engrave 'A&R' near the base"
	}
	o.ClearDomainEvents()
	return o
}
