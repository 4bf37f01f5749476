package catalog

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/costerbox/backend/internal/domain/catalog"
	"github.com/costerbox/backend/internal/domain/shared"
)

// CategoryService handles catalog category management
type CategoryService struct {
	categoryRepo catalog.CategoryRepository
	productRepo  catalog.ProductRepository
	logger       *zap.Logger
}

// NewCategoryService creates a new category service
func NewCategoryService(
	categoryRepo catalog.CategoryRepository,
	productRepo catalog.ProductRepository,
	logger *zap.Logger,
) *CategoryService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CategoryService{
		categoryRepo: categoryRepo,
		productRepo:  productRepo,
		logger:       logger,
	}
}

// CreateCategory creates a new category
func (s *CategoryService) CreateCategory(ctx context.Context, input CreateCategoryInput) (*catalog.Category, error) {
	if _, err := s.categoryRepo.FindBySlug(ctx, input.Slug); err == nil {
		return nil, shared.NewDomainError("SLUG_TAKEN", "A category with this slug already exists")
	}

	category, err := catalog.NewCategory(input.Name, input.Slug)
	if err != nil {
		return nil, err
	}
	category.SortNum = input.SortNum

	if input.ParentID != nil {
		if _, err := s.categoryRepo.FindByID(ctx, *input.ParentID); err != nil {
			return nil, shared.NewDomainError("INVALID_CATEGORY", "Parent category does not exist")
		}
		if err := category.SetParent(*input.ParentID); err != nil {
			return nil, err
		}
	}

	if err := s.categoryRepo.Save(ctx, category); err != nil {
		return nil, err
	}
	return category, nil
}

// GetCategory returns a category by ID
func (s *CategoryService) GetCategory(ctx context.Context, id uuid.UUID) (*catalog.Category, error) {
	return s.categoryRepo.FindByID(ctx, id)
}

// GetCategoryBySlug returns a category by its slug
func (s *CategoryService) GetCategoryBySlug(ctx context.Context, slug string) (*catalog.Category, error) {
	return s.categoryRepo.FindBySlug(ctx, slug)
}

// ListCategories lists categories
func (s *CategoryService) ListCategories(ctx context.Context, filter shared.Filter) ([]catalog.Category, error) {
	return s.categoryRepo.FindAll(ctx, filter)
}

// RenameCategory renames a category
func (s *CategoryService) RenameCategory(ctx context.Context, id uuid.UUID, name string) (*catalog.Category, error) {
	category, err := s.categoryRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := category.Rename(name); err != nil {
		return nil, err
	}
	if err := s.categoryRepo.Save(ctx, category); err != nil {
		return nil, err
	}
	return category, nil
}

// DeleteCategory removes an empty category
func (s *CategoryService) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	filter := shared.DefaultFilter()
	filter.Filters["category_id"] = id
	count, err := s.productRepo.Count(ctx, filter)
	if err != nil {
		return err
	}
	if count > 0 {
		return shared.NewDomainError("CATEGORY_NOT_EMPTY", "Category still has products assigned")
	}
	return s.categoryRepo.Delete(ctx, id)
}
