package catalog

import (
	"strings"

	"github.com/costerbox/backend/internal/domain/shared"
	"github.com/costerbox/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
)

// Product is a sellable item in the storefront catalog
type Product struct {
	shared.BaseAggregateRoot
	Name         string
	SKU          string
	Description  string
	Price        valueobject.Money
	CategoryID   *uuid.UUID
	ImageKeys    []string
	Active       bool
	Customizable bool

	// Shipping profile used when building courier payloads
	WeightKg float64
	LengthCm float64
	WidthCm  float64
	HeightCm float64
}

// NewProduct creates a new catalog product
func NewProduct(name, sku string, price valueobject.Money) (*Product, error) {
	name = strings.TrimSpace(name)
	sku = strings.ToUpper(strings.TrimSpace(sku))
	if name == "" {
		return nil, shared.NewDomainError("INVALID_PRODUCT", "Product name is required")
	}
	if len(name) > 200 {
		return nil, shared.NewDomainError("INVALID_PRODUCT", "Product name cannot exceed 200 characters")
	}
	if sku == "" {
		return nil, shared.NewDomainError("INVALID_PRODUCT", "SKU is required")
	}
	if price.IsNegative() {
		return nil, shared.NewDomainError("INVALID_PRODUCT", "Price cannot be negative")
	}

	return &Product{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              name,
		SKU:               sku,
		Price:             price,
		Active:            true,
	}, nil
}

// SetPrice updates the product price
func (p *Product) SetPrice(price valueobject.Money) error {
	if price.IsNegative() {
		return shared.NewDomainError("INVALID_PRODUCT", "Price cannot be negative")
	}
	p.Price = price
	p.Touch()
	return nil
}

// SetCategory assigns the product to a category
func (p *Product) SetCategory(categoryID uuid.UUID) {
	p.CategoryID = &categoryID
	p.Touch()
}

// SetShippingProfile sets the dimensions and weight used for shipments
func (p *Product) SetShippingProfile(weightKg, lengthCm, widthCm, heightCm float64) error {
	if weightKg < 0 || lengthCm < 0 || widthCm < 0 || heightCm < 0 {
		return shared.NewDomainError("INVALID_PRODUCT", "Shipping dimensions cannot be negative")
	}
	p.WeightKg = weightKg
	p.LengthCm = lengthCm
	p.WidthCm = widthCm
	p.HeightCm = heightCm
	p.Touch()
	return nil
}

// AddImage appends an object-storage key to the product gallery
func (p *Product) AddImage(storageKey string) error {
	if storageKey == "" {
		return shared.ErrInvalidInput
	}
	p.ImageKeys = append(p.ImageKeys, storageKey)
	p.Touch()
	return nil
}

// MarkCustomizable flags the product as eligible for commissions
func (p *Product) MarkCustomizable(customizable bool) {
	p.Customizable = customizable
	p.Touch()
}

// Deactivate hides the product from the storefront
func (p *Product) Deactivate() {
	p.Active = false
	p.Touch()
}

// Activate publishes the product on the storefront
func (p *Product) Activate() {
	p.Active = true
	p.Touch()
}
