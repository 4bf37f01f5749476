package catalog

import (
	"time"

	"github.com/google/uuid"

	"github.com/costerbox/backend/internal/domain/shared"
)

// CreateProductInput contains the input for creating a product
type CreateProductInput struct {
	Name         string
	SKU          string
	Description  string
	PriceINR     float64
	CategoryID   *uuid.UUID
	Customizable bool
	WeightKg     float64
	LengthCm     float64
	WidthCm      float64
	HeightCm     float64
}

// UpdateProductInput contains the input for updating a product. Nil fields
// are left unchanged.
type UpdateProductInput struct {
	ProductID    uuid.UUID
	Name         *string
	Description  *string
	PriceINR     *float64
	CategoryID   *uuid.UUID
	Customizable *bool
	Active       *bool
	WeightKg     *float64
	LengthCm     *float64
	WidthCm      *float64
	HeightCm     *float64
}

// ListProductsInput contains the input for listing products
type ListProductsInput struct {
	Filter     shared.Filter
	ActiveOnly bool
}

// ProductImageUploadInput contains the input for requesting an image upload URL
type ProductImageUploadInput struct {
	ProductID   uuid.UUID
	ContentType string
	Extension   string
}

// ProductImageUploadResult contains a presigned upload URL for a product image
type ProductImageUploadResult struct {
	StorageKey string
	UploadURL  string
	ExpiresAt  time.Time
}

// CreateCategoryInput contains the input for creating a category
type CreateCategoryInput struct {
	Name     string
	Slug     string
	ParentID *uuid.UUID
	SortNum  int
}
