package checkout

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/costerbox/backend/internal/domain/catalog"
	"github.com/costerbox/backend/internal/domain/order"
	"github.com/costerbox/backend/internal/domain/payment"
	"github.com/costerbox/backend/internal/domain/shared"
	"github.com/costerbox/backend/internal/domain/shared/valueobject"
)

// orderNumberAttempts bounds how many times a checkout redraws the order
// number after losing a uniqueness race.
const orderNumberAttempts = 3

// CheckoutService places orders and collects payments against them
type CheckoutService struct {
	orderRepo   order.Repository
	productRepo catalog.ProductRepository
	gateway     payment.Gateway
	eventBus    shared.EventPublisher
	logger      *zap.Logger
}

// NewCheckoutService creates a new checkout service
func NewCheckoutService(
	orderRepo order.Repository,
	productRepo catalog.ProductRepository,
	gateway payment.Gateway,
	eventBus shared.EventPublisher,
	logger *zap.Logger,
) *CheckoutService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CheckoutService{
		orderRepo:   orderRepo,
		productRepo: productRepo,
		gateway:     gateway,
		eventBus:    eventBus,
		logger:      logger,
	}
}

// PlaceOrder creates an order document from the cart and opens a gateway
// order for the amount due at checkout: the full total for catalog orders,
// the 70% advance for commissioned ones.
func (s *CheckoutService) PlaceOrder(ctx context.Context, input PlaceOrderInput) (*PlaceOrderResult, error) {
	if input.Kind == order.KindCustom && input.Customization == "" {
		return nil, shared.NewDomainError("INVALID_ORDER", "Commissioned orders require a customization note")
	}

	items, err := s.buildItems(ctx, input)
	if err != nil {
		return nil, err
	}

	shipTo, err := buildAddress(input.ShipTo)
	if err != nil {
		return nil, err
	}

	o, err := s.createOrder(ctx, input, items, shipTo)
	if err != nil {
		return nil, err
	}

	purpose := order.PaymentPurposeFull
	if o.IsCustom() {
		purpose = order.PaymentPurposeAdvance
	}

	session, err := s.openPaymentSession(ctx, o, o.AdvanceAmount(), purpose)
	if err != nil {
		return nil, err
	}

	s.publishEvents(ctx, o)
	s.logger.Info("order placed",
		zap.String("order_number", o.OrderNumber),
		zap.String("kind", string(o.Kind)),
		zap.Int64("amount_paise", session.AmountPaise),
	)
	return &PlaceOrderResult{Order: o, Session: *session}, nil
}

// createOrder persists a new order under a freshly generated order number.
// Numbers are derived from a count, so two concurrent checkouts can draw
// the same one; the unique index rejects the loser and we draw again.
func (s *CheckoutService) createOrder(ctx context.Context, input PlaceOrderInput, items []order.Item, shipTo valueobject.Address) (*order.Order, error) {
	for attempt := 1; ; attempt++ {
		orderNumber, err := s.orderRepo.GenerateOrderNumber(ctx)
		if err != nil {
			return nil, err
		}

		o, err := order.NewOrder(orderNumber, input.CustomerID, input.Kind, items, shipTo, input.RecipientName, input.RecipientEmail)
		if err != nil {
			return nil, err
		}
		o.Customization = input.Customization

		err = s.orderRepo.Save(ctx, o)
		if err == nil {
			return o, nil
		}
		if !errors.Is(err, shared.ErrDuplicateNumber) || attempt >= orderNumberAttempts {
			return nil, err
		}
		s.logger.Warn("order number collision, regenerating",
			zap.String("order_number", orderNumber),
			zap.Int("attempt", attempt),
		)
	}
}

// CreateBalanceSession opens a gateway order for the outstanding balance of
// a commissioned order
func (s *CheckoutService) CreateBalanceSession(ctx context.Context, orderID uuid.UUID) (*PaymentSession, error) {
	o, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if o.Status != order.StatusBalanceDue {
		return nil, shared.ErrInvalidState
	}
	return s.openPaymentSession(ctx, o, o.BalanceAmount(), order.PaymentPurposeBalance)
}

// ConfirmPayment verifies a hosted-checkout callback and records the payment.
// Replayed confirmations for an already-recorded payment are accepted.
func (s *CheckoutService) ConfirmPayment(ctx context.Context, input ConfirmPaymentInput) (*order.Order, error) {
	if err := s.gateway.VerifyCheckoutSignature(input.GatewayOrderID, input.GatewayPaymentID, input.Signature); err != nil {
		s.logger.Warn("checkout signature rejected",
			zap.String("gateway_order_id", input.GatewayOrderID),
		)
		return nil, err
	}

	o, err := s.orderRepo.FindByID(ctx, input.OrderID)
	if err != nil {
		return nil, err
	}

	if hasPayment(o, input.GatewayPaymentID) {
		return o, nil
	}

	amount, purpose, err := dueAmount(o)
	if err != nil {
		return nil, err
	}
	if err := o.RecordPayment(input.GatewayOrderID, input.GatewayPaymentID, amount, purpose); err != nil {
		return nil, err
	}
	if err := s.orderRepo.SaveWithLock(ctx, o); err != nil {
		return nil, err
	}

	s.publishEvents(ctx, o)
	s.logger.Info("payment recorded",
		zap.String("order_number", o.OrderNumber),
		zap.String("purpose", string(purpose)),
	)
	return o, nil
}

func (s *CheckoutService) buildItems(ctx context.Context, input PlaceOrderInput) ([]order.Item, error) {
	if len(input.Lines) == 0 {
		return nil, shared.NewDomainError("INVALID_ORDER", "Order must have at least one item")
	}

	items := make([]order.Item, 0, len(input.Lines))
	for _, line := range input.Lines {
		product, err := s.productRepo.FindByID(ctx, line.ProductID)
		if err != nil {
			return nil, shared.NewDomainError("INVALID_ORDER", "Product does not exist")
		}
		if !product.Active {
			return nil, shared.NewDomainError("INVALID_ORDER", "Product is not available")
		}
		if input.Kind == order.KindCustom && !product.Customizable {
			return nil, shared.NewDomainError("INVALID_ORDER", "Product does not accept commissions")
		}

		item, err := order.NewItem(product.ID, product.Name, product.SKU, product.Price, line.Quantity)
		if err != nil {
			return nil, err
		}
		items = append(items, *item)
	}
	return items, nil
}

func (s *CheckoutService) openPaymentSession(ctx context.Context, o *order.Order, amount valueobject.Money, purpose order.PaymentPurpose) (*PaymentSession, error) {
	gatewayOrder, err := s.gateway.CreateOrder(ctx, payment.CreateOrderRequest{
		AmountPaise: amount.Paise(),
		Currency:    "INR",
		Receipt:     o.OrderNumber,
		Notes: map[string]string{
			"order_number": o.OrderNumber,
			"purpose":      string(purpose),
		},
	})
	if err != nil {
		return nil, err
	}
	return &PaymentSession{
		OrderID:        o.ID,
		OrderNumber:    o.OrderNumber,
		GatewayOrderID: gatewayOrder.ID,
		AmountPaise:    gatewayOrder.AmountPaise,
		Currency:       gatewayOrder.Currency,
		Purpose:        purpose,
	}, nil
}

func (s *CheckoutService) publishEvents(ctx context.Context, o *order.Order) {
	if s.eventBus == nil {
		return
	}
	events := o.GetDomainEvents()
	if len(events) == 0 {
		return
	}
	if err := s.eventBus.Publish(ctx, events...); err != nil {
		s.logger.Error("failed to publish events", zap.Error(err))
	}
	o.ClearDomainEvents()
}

// dueAmount resolves what a payment against the order is for, based on the
// order's current state
func dueAmount(o *order.Order) (valueobject.Money, order.PaymentPurpose, error) {
	switch o.Status {
	case order.StatusCreated:
		if o.IsCustom() {
			return o.AdvanceAmount(), order.PaymentPurposeAdvance, nil
		}
		return o.TotalAmount, order.PaymentPurposeFull, nil
	case order.StatusBalanceDue:
		return o.BalanceAmount(), order.PaymentPurposeBalance, nil
	default:
		return valueobject.ZeroINR(), "", shared.ErrInvalidState
	}
}

func hasPayment(o *order.Order, gatewayPaymentID string) bool {
	for i := range o.Payments {
		if o.Payments[i].GatewayPaymentID == gatewayPaymentID {
			return true
		}
	}
	return false
}

func buildAddress(in ShippingAddressInput) (valueobject.Address, error) {
	opts := []valueobject.AddressOption{}
	if in.Phone != "" {
		opts = append(opts, valueobject.WithPhone(in.Phone))
	}
	if in.Line2 != "" {
		opts = append(opts, valueobject.WithLine2(in.Line2))
	}
	return valueobject.NewAddress(in.Line1, in.City, in.State, in.Pincode, opts...)
}
