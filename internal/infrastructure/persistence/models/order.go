package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/costerbox/backend/internal/domain/order"
	"github.com/costerbox/backend/internal/domain/shared/valueobject"
)

// OrderModel is the persistence model for the Order aggregate root.
type OrderModel struct {
	AggregateModel
	OrderNumber     string              `gorm:"type:varchar(20);not null;uniqueIndex"`
	CustomerID      uuid.UUID           `gorm:"type:uuid;not null;index"`
	Kind            order.Kind          `gorm:"type:varchar(10);not null"`
	Status          order.Status        `gorm:"type:varchar(20);not null;default:'created';index"`
	Items           []OrderItemModel    `gorm:"foreignKey:OrderID;references:ID"`
	Payments        []PaymentModel      `gorm:"foreignKey:OrderID;references:ID"`
	ShippingAddress valueobject.Address `gorm:"type:jsonb;not null"`
	RecipientName   string              `gorm:"type:varchar(200)"`
	RecipientEmail  string              `gorm:"type:varchar(255)"`

	TotalAmount   valueobject.Money `gorm:"type:decimal(18,2);not null;default:0"`
	PaidAmount    valueobject.Money `gorm:"type:decimal(18,2);not null;default:0"`
	PendingAmount valueobject.Money `gorm:"type:decimal(18,2);not null;default:0"`

	ArtisanID     *uuid.UUID `gorm:"type:uuid;index"`
	Customization string     `gorm:"type:text"`
	ClaimedAt     *time.Time

	CourierOrderID    string `gorm:"type:varchar(50)"`
	CourierShipmentID string `gorm:"type:varchar(50)"`
	AWBCode           string `gorm:"column:awb_code;type:varchar(50)"`
	CourierName       string `gorm:"type:varchar(100)"`
	AWBAssigned       bool   `gorm:"column:awb_assigned;not null;default:false"`

	Flagged    bool   `gorm:"not null;default:false;index"`
	FlagReason string `gorm:"type:varchar(500)"`

	ShippedAt   *time.Time `gorm:"index"`
	DeliveredAt *time.Time
	CancelledAt *time.Time
}

// TableName returns the table name for GORM
func (OrderModel) TableName() string {
	return "orders"
}

// ToDomain converts the persistence model to a domain Order aggregate.
func (m *OrderModel) ToDomain() *order.Order {
	o := &order.Order{
		OrderNumber:     m.OrderNumber,
		CustomerID:      m.CustomerID,
		Kind:            m.Kind,
		Status:          m.Status,
		ShippingAddress: m.ShippingAddress,
		RecipientName:   m.RecipientName,
		RecipientEmail:  m.RecipientEmail,
		TotalAmount:     m.TotalAmount,
		PaidAmount:      m.PaidAmount,
		PendingAmount:   m.PendingAmount,
		ArtisanID:       m.ArtisanID,
		Customization:   m.Customization,
		ClaimedAt:       m.ClaimedAt,
		Flagged:         m.Flagged,
		FlagReason:      m.FlagReason,
		ShippedAt:       m.ShippedAt,
		DeliveredAt:     m.DeliveredAt,
		CancelledAt:     m.CancelledAt,
	}
	m.PopulateAggregateRoot(&o.BaseAggregateRoot)

	if m.CourierOrderID != "" || m.CourierShipmentID != "" {
		o.Tracking = &order.Tracking{
			CourierOrderID:    m.CourierOrderID,
			CourierShipmentID: m.CourierShipmentID,
			AWBCode:           m.AWBCode,
			CourierName:       m.CourierName,
			AWBAssigned:       m.AWBAssigned,
		}
	}

	o.Items = make([]order.Item, len(m.Items))
	for i := range m.Items {
		o.Items[i] = *m.Items[i].ToDomain()
	}
	o.Payments = make([]order.Payment, len(m.Payments))
	for i := range m.Payments {
		o.Payments[i] = *m.Payments[i].ToDomain()
	}
	return o
}

// FromDomain populates the persistence model from a domain Order aggregate.
func (m *OrderModel) FromDomain(o *order.Order) {
	m.FromDomainAggregateRoot(o.BaseAggregateRoot)
	m.OrderNumber = o.OrderNumber
	m.CustomerID = o.CustomerID
	m.Kind = o.Kind
	m.Status = o.Status
	m.ShippingAddress = o.ShippingAddress
	m.RecipientName = o.RecipientName
	m.RecipientEmail = o.RecipientEmail
	m.TotalAmount = o.TotalAmount
	m.PaidAmount = o.PaidAmount
	m.PendingAmount = o.PendingAmount
	m.ArtisanID = o.ArtisanID
	m.Customization = o.Customization
	m.ClaimedAt = o.ClaimedAt
	m.Flagged = o.Flagged
	m.FlagReason = o.FlagReason
	m.ShippedAt = o.ShippedAt
	m.DeliveredAt = o.DeliveredAt
	m.CancelledAt = o.CancelledAt

	if o.Tracking != nil {
		m.CourierOrderID = o.Tracking.CourierOrderID
		m.CourierShipmentID = o.Tracking.CourierShipmentID
		m.AWBCode = o.Tracking.AWBCode
		m.CourierName = o.Tracking.CourierName
		m.AWBAssigned = o.Tracking.AWBAssigned
	}

	m.Items = make([]OrderItemModel, len(o.Items))
	for i := range o.Items {
		m.Items[i] = *OrderItemModelFromDomain(&o.Items[i])
	}
	m.Payments = make([]PaymentModel, len(o.Payments))
	for i := range o.Payments {
		m.Payments[i] = *PaymentModelFromDomain(&o.Payments[i])
	}
}

// OrderModelFromDomain creates a persistence model from a domain Order.
func OrderModelFromDomain(o *order.Order) *OrderModel {
	m := &OrderModel{}
	m.FromDomain(o)
	return m
}

// OrderItemModel is the persistence model for an order line item.
type OrderItemModel struct {
	BaseModel
	OrderID     uuid.UUID         `gorm:"type:uuid;not null;index"`
	ProductID   uuid.UUID         `gorm:"type:uuid;not null"`
	ProductName string            `gorm:"type:varchar(200);not null"`
	SKU         string            `gorm:"column:sku;type:varchar(50)"`
	UnitPrice   valueobject.Money `gorm:"type:decimal(18,2);not null"`
	Quantity    int               `gorm:"not null"`
	LineTotal   valueobject.Money `gorm:"type:decimal(18,2);not null"`
}

// TableName returns the table name for GORM
func (OrderItemModel) TableName() string {
	return "order_items"
}

// ToDomain converts the persistence model to a domain Item.
func (m *OrderItemModel) ToDomain() *order.Item {
	return &order.Item{
		BaseEntity:  m.BaseModel.ToDomain(),
		OrderID:     m.OrderID,
		ProductID:   m.ProductID,
		ProductName: m.ProductName,
		SKU:         m.SKU,
		UnitPrice:   m.UnitPrice,
		Quantity:    m.Quantity,
		LineTotal:   m.LineTotal,
	}
}

// OrderItemModelFromDomain creates a persistence model from a domain Item.
func OrderItemModelFromDomain(item *order.Item) *OrderItemModel {
	m := &OrderItemModel{
		OrderID:     item.OrderID,
		ProductID:   item.ProductID,
		ProductName: item.ProductName,
		SKU:         item.SKU,
		UnitPrice:   item.UnitPrice,
		Quantity:    item.Quantity,
		LineTotal:   item.LineTotal,
	}
	m.FromDomainBaseEntity(item.BaseEntity)
	return m
}

// PaymentModel is the persistence model for a captured payment.
type PaymentModel struct {
	BaseModel
	OrderID          uuid.UUID            `gorm:"type:uuid;not null;index"`
	GatewayOrderID   string               `gorm:"type:varchar(64);not null;index"`
	GatewayPaymentID string               `gorm:"type:varchar(64);not null;uniqueIndex"`
	Amount           valueobject.Money    `gorm:"type:decimal(18,2);not null"`
	Purpose          order.PaymentPurpose `gorm:"type:varchar(10);not null"`
	CapturedAt       time.Time            `gorm:"not null"`
}

// TableName returns the table name for GORM
func (PaymentModel) TableName() string {
	return "order_payments"
}

// ToDomain converts the persistence model to a domain Payment.
func (m *PaymentModel) ToDomain() *order.Payment {
	return &order.Payment{
		BaseEntity:       m.BaseModel.ToDomain(),
		OrderID:          m.OrderID,
		GatewayOrderID:   m.GatewayOrderID,
		GatewayPaymentID: m.GatewayPaymentID,
		Amount:           m.Amount,
		Purpose:          m.Purpose,
		CapturedAt:       m.CapturedAt,
	}
}

// PaymentModelFromDomain creates a persistence model from a domain Payment.
func PaymentModelFromDomain(p *order.Payment) *PaymentModel {
	m := &PaymentModel{
		OrderID:          p.OrderID,
		GatewayOrderID:   p.GatewayOrderID,
		GatewayPaymentID: p.GatewayPaymentID,
		Amount:           p.Amount,
		Purpose:          p.Purpose,
		CapturedAt:       p.CapturedAt,
	}
	m.FromDomainBaseEntity(p.BaseEntity)
	return m
}
