package models

import (
	"github.com/google/uuid"

	"github.com/costerbox/backend/internal/domain/catalog"
	"github.com/costerbox/backend/internal/domain/shared/valueobject"
)

// ProductModel is the persistence model for the Product aggregate root.
type ProductModel struct {
	AggregateModel
	Name         string            `gorm:"type:varchar(200);not null"`
	SKU          string            `gorm:"column:sku;type:varchar(50);not null;uniqueIndex"`
	Description  string            `gorm:"type:text"`
	Price        valueobject.Money `gorm:"type:decimal(18,2);not null"`
	CategoryID   *uuid.UUID        `gorm:"type:uuid;index"`
	ImageKeys    StringSlice       `gorm:"type:jsonb"`
	Active       bool              `gorm:"not null;default:true;index"`
	Customizable bool              `gorm:"not null;default:false"`

	WeightKg float64 `gorm:"type:decimal(10,3);not null;default:0"`
	LengthCm float64 `gorm:"type:decimal(10,2);not null;default:0"`
	WidthCm  float64 `gorm:"type:decimal(10,2);not null;default:0"`
	HeightCm float64 `gorm:"type:decimal(10,2);not null;default:0"`
}

// TableName returns the table name for GORM
func (ProductModel) TableName() string {
	return "products"
}

// ToDomain converts the persistence model to a domain Product aggregate.
func (m *ProductModel) ToDomain() *catalog.Product {
	p := &catalog.Product{
		Name:         m.Name,
		SKU:          m.SKU,
		Description:  m.Description,
		Price:        m.Price,
		CategoryID:   m.CategoryID,
		ImageKeys:    m.ImageKeys,
		Active:       m.Active,
		Customizable: m.Customizable,
		WeightKg:     m.WeightKg,
		LengthCm:     m.LengthCm,
		WidthCm:      m.WidthCm,
		HeightCm:     m.HeightCm,
	}
	m.PopulateAggregateRoot(&p.BaseAggregateRoot)
	return p
}

// FromDomain populates the persistence model from a domain Product aggregate.
func (m *ProductModel) FromDomain(p *catalog.Product) {
	m.FromDomainAggregateRoot(p.BaseAggregateRoot)
	m.Name = p.Name
	m.SKU = p.SKU
	m.Description = p.Description
	m.Price = p.Price
	m.CategoryID = p.CategoryID
	m.ImageKeys = p.ImageKeys
	m.Active = p.Active
	m.Customizable = p.Customizable
	m.WeightKg = p.WeightKg
	m.LengthCm = p.LengthCm
	m.WidthCm = p.WidthCm
	m.HeightCm = p.HeightCm
}

// ProductModelFromDomain creates a persistence model from a domain Product.
func ProductModelFromDomain(p *catalog.Product) *ProductModel {
	m := &ProductModel{}
	m.FromDomain(p)
	return m
}

// CategoryModel is the persistence model for the Category aggregate root.
type CategoryModel struct {
	AggregateModel
	Name     string     `gorm:"type:varchar(100);not null"`
	Slug     string     `gorm:"type:varchar(100);not null;uniqueIndex"`
	ParentID *uuid.UUID `gorm:"type:uuid;index"`
	SortNum  int        `gorm:"not null;default:0"`
	Active   bool       `gorm:"not null;default:true"`
}

// TableName returns the table name for GORM
func (CategoryModel) TableName() string {
	return "categories"
}

// ToDomain converts the persistence model to a domain Category aggregate.
func (m *CategoryModel) ToDomain() *catalog.Category {
	c := &catalog.Category{
		Name:     m.Name,
		Slug:     m.Slug,
		ParentID: m.ParentID,
		SortNum:  m.SortNum,
		Active:   m.Active,
	}
	m.PopulateAggregateRoot(&c.BaseAggregateRoot)
	return c
}

// CategoryModelFromDomain creates a persistence model from a domain Category.
func CategoryModelFromDomain(c *catalog.Category) *CategoryModel {
	m := &CategoryModel{
		Name:     c.Name,
		Slug:     c.Slug,
		ParentID: c.ParentID,
		SortNum:  c.SortNum,
		Active:   c.Active,
	}
	m.FromDomainAggregateRoot(c.BaseAggregateRoot)
	return m
}
