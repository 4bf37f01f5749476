package handler

import (
	"time"

	"github.com/google/uuid"

	"github.com/costerbox/backend/internal/domain/catalog"
)

// ProductResponse represents a catalog product in API responses
type ProductResponse struct {
	ID           uuid.UUID  `json:"id"`
	Name         string     `json:"name"`
	SKU          string     `json:"sku"`
	Description  string     `json:"description,omitempty"`
	Price        string     `json:"price"`
	Currency     string     `json:"currency"`
	CategoryID   *uuid.UUID `json:"category_id,omitempty"`
	ImageKeys    []string   `json:"image_keys,omitempty"`
	Active       bool       `json:"active"`
	Customizable bool       `json:"customizable"`
	WeightKg     float64    `json:"weight_kg,omitempty"`
	LengthCm     float64    `json:"length_cm,omitempty"`
	WidthCm      float64    `json:"width_cm,omitempty"`
	HeightCm     float64    `json:"height_cm,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// CategoryResponse represents a category in API responses
type CategoryResponse struct {
	ID       uuid.UUID  `json:"id"`
	Name     string     `json:"name"`
	Slug     string     `json:"slug"`
	ParentID *uuid.UUID `json:"parent_id,omitempty"`
	SortNum  int        `json:"sort_num"`
	Active   bool       `json:"active"`
}

func toProductResponse(p *catalog.Product) ProductResponse {
	return ProductResponse{
		ID:           p.ID,
		Name:         p.Name,
		SKU:          p.SKU,
		Description:  p.Description,
		Price:        p.Price.StringFixed(2),
		Currency:     string(p.Price.Currency()),
		CategoryID:   p.CategoryID,
		ImageKeys:    p.ImageKeys,
		Active:       p.Active,
		Customizable: p.Customizable,
		WeightKg:     p.WeightKg,
		LengthCm:     p.LengthCm,
		WidthCm:      p.WidthCm,
		HeightCm:     p.HeightCm,
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
	}
}

func toProductResponses(products []catalog.Product) []ProductResponse {
	out := make([]ProductResponse, 0, len(products))
	for i := range products {
		out = append(out, toProductResponse(&products[i]))
	}
	return out
}

func toCategoryResponse(cat *catalog.Category) CategoryResponse {
	return CategoryResponse{
		ID:       cat.ID,
		Name:     cat.Name,
		Slug:     cat.Slug,
		ParentID: cat.ParentID,
		SortNum:  cat.SortNum,
		Active:   cat.Active,
	}
}

func toCategoryResponses(categories []catalog.Category) []CategoryResponse {
	out := make([]CategoryResponse, 0, len(categories))
	for i := range categories {
		out = append(out, toCategoryResponse(&categories[i]))
	}
	return out
}
