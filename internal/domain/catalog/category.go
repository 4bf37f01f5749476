package catalog

import (
	"strings"

	"github.com/costerbox/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Category groups catalog products. Categories form a flat tree via an
// optional parent reference.
type Category struct {
	shared.BaseAggregateRoot
	Name     string
	Slug     string
	ParentID *uuid.UUID
	SortNum  int
	Active   bool
}

// NewCategory creates a new category
func NewCategory(name, slug string) (*Category, error) {
	name = strings.TrimSpace(name)
	slug = strings.ToLower(strings.TrimSpace(slug))
	if name == "" {
		return nil, shared.NewDomainError("INVALID_CATEGORY", "Category name is required")
	}
	if slug == "" {
		return nil, shared.NewDomainError("INVALID_CATEGORY", "Category slug is required")
	}

	return &Category{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              name,
		Slug:              slug,
		Active:            true,
	}, nil
}

// SetParent moves the category under another category
func (c *Category) SetParent(parentID uuid.UUID) error {
	if parentID == c.ID {
		return shared.NewDomainError("INVALID_CATEGORY", "Category cannot be its own parent")
	}
	c.ParentID = &parentID
	c.Touch()
	return nil
}

// Rename changes the display name
func (c *Category) Rename(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return shared.NewDomainError("INVALID_CATEGORY", "Category name is required")
	}
	c.Name = name
	c.Touch()
	return nil
}

// Deactivate hides the category
func (c *Category) Deactivate() {
	c.Active = false
	c.Touch()
}
