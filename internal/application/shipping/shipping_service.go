package shipping

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/costerbox/backend/internal/domain/catalog"
	"github.com/costerbox/backend/internal/domain/identity"
	"github.com/costerbox/backend/internal/domain/order"
	"github.com/costerbox/backend/internal/domain/shared"
	"github.com/costerbox/backend/internal/domain/shipping"
)

// Courier field limits. Over-long fields come back as 422s, so payloads are
// clipped before leaving the process.
const (
	maxNameLen    = 50
	maxAddressLen = 180
	maxItemName   = 100
)

// ShippingService dispatches paid orders through the courier aggregator
type ShippingService struct {
	orderRepo   order.Repository
	userRepo    identity.UserRepository
	productRepo catalog.ProductRepository
	courier     shipping.Gateway
	eventBus    shared.EventPublisher
	logger      *zap.Logger
}

// NewShippingService creates a new shipping service
func NewShippingService(
	orderRepo order.Repository,
	userRepo identity.UserRepository,
	productRepo catalog.ProductRepository,
	courier shipping.Gateway,
	eventBus shared.EventPublisher,
	logger *zap.Logger,
) *ShippingService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ShippingService{
		orderRepo:   orderRepo,
		userRepo:    userRepo,
		productRepo: productRepo,
		courier:     courier,
		eventBus:    eventBus,
		logger:      logger,
	}
}

// ShipOrder registers a shipment for a fully paid order and transitions it
// to shipped. All local validation runs before the first courier call, so a
// rejected order never leaves a half-registered shipment behind.
//
// Waybill assignment is best effort: when the courier cannot assign an AWB
// the shipment still exists on their side, so the order ships with an empty
// AWB and the code is backfilled later from the admin console.
func (s *ShippingService) ShipOrder(ctx context.Context, orderID uuid.UUID) (*order.Order, error) {
	o, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !o.ReadyToShip() {
		if o.PendingAmount.IsPositive() {
			return nil, shared.ErrPaymentRequired
		}
		return nil, shared.ErrInvalidState
	}
	if !o.ShippingAddress.IsComplete() {
		return nil, shared.NewDomainError("INCOMPLETE_ADDRESS", "Shipping address is missing required fields")
	}

	pickupName, err := s.resolvePickupLocation(ctx, o)
	if err != nil {
		return nil, err
	}

	req, err := s.buildCourierOrder(ctx, o, pickupName)
	if err != nil {
		return nil, err
	}

	created, err := s.courier.CreateOrder(ctx, *req)
	if err != nil {
		return nil, err
	}

	tracking := order.Tracking{
		CourierOrderID:    created.OrderID,
		CourierShipmentID: created.ShipmentID,
	}

	waybill, err := s.courier.AssignWaybill(ctx, created.ShipmentID, "")
	if err != nil {
		s.logger.Warn("waybill assignment failed, shipping without AWB",
			zap.String("order_number", o.OrderNumber),
			zap.String("shipment_id", created.ShipmentID),
			zap.Error(err),
		)
	} else {
		tracking.AWBCode = waybill.AWBCode
		tracking.CourierName = waybill.CourierName
		tracking.AWBAssigned = waybill.AWBCode != ""
	}

	if err := o.MarkShipped(tracking); err != nil {
		return nil, err
	}
	if err := s.orderRepo.SaveWithLock(ctx, o); err != nil {
		return nil, err
	}

	s.publishEvents(ctx, o)
	s.logger.Info("order shipped",
		zap.String("order_number", o.OrderNumber),
		zap.String("shipment_id", created.ShipmentID),
		zap.Bool("awb_assigned", tracking.AWBAssigned),
	)
	return o, nil
}

// resolvePickupLocation returns the pickup location name for the shipment.
// Catalog orders collect from the storefront's own location; commissioned
// work collects from the assigned artisan, registering their address with
// the courier on first use.
func (s *ShippingService) resolvePickupLocation(ctx context.Context, o *order.Order) (string, error) {
	if !o.IsCustom() {
		return s.storefrontPickupLocation(ctx)
	}

	if o.ArtisanID == nil {
		return "", shared.NewDomainError("NO_ARTISAN", "Commissioned order has no artisan assigned")
	}
	artisan, err := s.userRepo.FindByID(ctx, *o.ArtisanID)
	if err != nil {
		return "", err
	}
	if !artisan.PickupAddress.IsComplete() {
		return "", shared.NewDomainError("INCOMPLETE_PICKUP_ADDRESS",
			"Artisan pickup address must be completed before dispatch")
	}

	if artisan.PickupLocationRegistered {
		return artisan.PickupLocationCode, nil
	}

	code := shipping.DerivePickupCode(artisan.Email)
	addr := artisan.PickupAddress
	if err := s.courier.AddPickupLocation(ctx, shipping.PickupLocation{
		Name:     code,
		Contact:  shipping.Truncate(artisan.DisplayName, maxNameLen),
		Email:    artisan.Email,
		Phone:    addr.Phone(),
		Address:  shipping.Truncate(addr.Line1(), maxAddressLen),
		Address2: shipping.Truncate(addr.Line2(), maxAddressLen),
		City:     addr.City(),
		State:    addr.State(),
		Country:  addr.Country(),
		Pincode:  addr.Pincode(),
	}); err != nil {
		return "", err
	}

	artisan.MarkPickupLocationRegistered(code)
	if err := s.userRepo.Save(ctx, artisan); err != nil {
		return "", err
	}

	s.logger.Info("pickup location registered",
		zap.String("artisan_id", artisan.ID.String()),
		zap.String("pickup_code", code),
	)
	return code, nil
}

// storefrontPickupLocation picks the courier-side location catalog orders
// collect from: the one named "Primary" when registered, otherwise the first
// registered location.
func (s *ShippingService) storefrontPickupLocation(ctx context.Context) (string, error) {
	locations, err := s.courier.GetPickupLocations(ctx)
	if err != nil {
		return "", err
	}
	if len(locations) == 0 {
		return "", shared.NewDomainError("NO_PICKUP_LOCATION",
			"No pickup locations are registered with the courier")
	}
	for _, loc := range locations {
		if loc.Name == shipping.DefaultPickupName {
			return loc.Name, nil
		}
	}
	return locations[0].Name, nil
}

// buildCourierOrder assembles the adhoc-order payload from the order and
// the shipping profiles of its products
func (s *ShippingService) buildCourierOrder(ctx context.Context, o *order.Order, pickupName string) (*shipping.CreateOrderRequest, error) {
	items := make([]shipping.OrderItem, 0, len(o.Items))
	var weight, length, breadth, height float64
	for i := range o.Items {
		item := &o.Items[i]
		items = append(items, shipping.OrderItem{
			Name:         shipping.Truncate(item.ProductName, maxItemName),
			SKU:          item.SKU,
			Units:        item.Quantity,
			SellingPrice: item.UnitPrice.Float64(),
		})

		product, err := s.productRepo.FindByID(ctx, item.ProductID)
		if err != nil {
			// product gone since purchase; ship with the defaults below
			continue
		}
		weight += product.WeightKg * float64(item.Quantity)
		if product.LengthCm > length {
			length = product.LengthCm
		}
		if product.WidthCm > breadth {
			breadth = product.WidthCm
		}
		height += product.HeightCm * float64(item.Quantity)
	}

	// courier rejects zero dimensions
	if weight <= 0 {
		weight = 0.5
	}
	if length <= 0 {
		length = 10
	}
	if breadth <= 0 {
		breadth = 10
	}
	if height <= 0 {
		height = 10
	}

	addr := o.ShippingAddress
	country := addr.Country()
	if country == "" {
		country = "India"
	}

	return &shipping.CreateOrderRequest{
		OrderID:           o.OrderNumber,
		OrderDate:         shipping.FormatOrderDate(time.Now()),
		PickupLocation:    pickupName,
		BillingName:       shipping.Truncate(o.RecipientName, maxNameLen),
		BillingAddress:    shipping.Truncate(addr.Line1(), maxAddressLen),
		BillingAddress2:   shipping.Truncate(addr.Line2(), maxAddressLen),
		BillingCity:       addr.City(),
		BillingState:      addr.State(),
		BillingPincode:    addr.Pincode(),
		BillingCountry:    country,
		BillingEmail:      o.RecipientEmail,
		BillingPhone:      addr.Phone(),
		ShippingIsBilling: true,
		Items:             items,
		PaymentMethod:     "Prepaid",
		SubTotal:          o.TotalAmount.Float64(),
		LengthCm:          length,
		BreadthCm:         breadth,
		HeightCm:          height,
		WeightKg:          weight,
	}, nil
}

func (s *ShippingService) publishEvents(ctx context.Context, o *order.Order) {
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
