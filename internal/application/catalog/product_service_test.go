package catalog

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/costerbox/backend/internal/domain/catalog"
	"github.com/costerbox/backend/internal/domain/shared"
	"github.com/costerbox/backend/internal/domain/shared/valueobject"
	"github.com/costerbox/backend/internal/infrastructure/storage"
)

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

type mockCategoryRepository struct {
	mock.Mock
}

func (m *mockCategoryRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Category, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Category), args.Error(1)
}

func (m *mockCategoryRepository) FindBySlug(ctx context.Context, slug string) (*catalog.Category, error) {
	args := m.Called(ctx, slug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Category), args.Error(1)
}

func (m *mockCategoryRepository) FindAll(ctx context.Context, filter shared.Filter) ([]catalog.Category, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]catalog.Category), args.Error(1)
}

func (m *mockCategoryRepository) Save(ctx context.Context, c *catalog.Category) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

func (m *mockCategoryRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func moneyINR(t *testing.T, amount float64) valueobject.Money {
	t.Helper()
	return valueobject.NewMoneyINRFromFloat(amount)
}

func newTestProductService(products *mockProductRepository, categories *mockCategoryRepository) *ProductService {
	return NewProductService(products, categories, storage.NewStubObjectStorage(), zap.NewNop())
}

func TestProductService_CreateProduct(t *testing.T) {
	products := new(mockProductRepository)
	categories := new(mockCategoryRepository)
	svc := newTestProductService(products, categories)

	products.On("FindBySKU", mock.Anything, "CB-MUG-01").Return(nil, shared.ErrNotFound)
	products.On("Save", mock.Anything, mock.AnythingOfType("*catalog.Product")).Return(nil)

	product, err := svc.CreateProduct(context.Background(), CreateProductInput{
		Name:         "Terracotta Mug",
		SKU:          "CB-MUG-01",
		Description:  "Hand-thrown terracotta mug",
		PriceINR:     649,
		Customizable: true,
		WeightKg:     0.4,
		LengthCm:     12,
		WidthCm:      10,
		HeightCm:     11,
	})
	require.NoError(t, err)
	assert.Equal(t, "CB-MUG-01", product.SKU)
	assert.True(t, product.Customizable)
	assert.True(t, product.Active)
	assert.Equal(t, 0.4, product.WeightKg)
}

func TestProductService_CreateProduct_DuplicateSKU(t *testing.T) {
	products := new(mockProductRepository)
	categories := new(mockCategoryRepository)
	svc := newTestProductService(products, categories)

	existing, err := catalog.NewProduct("Old Mug", "CB-MUG-01", moneyINR(t, 500))
	require.NoError(t, err)
	products.On("FindBySKU", mock.Anything, "CB-MUG-01").Return(existing, nil)

	_, err = svc.CreateProduct(context.Background(), CreateProductInput{
		Name:     "New Mug",
		SKU:      "CB-MUG-01",
		PriceINR: 649,
	})
	require.Error(t, err)

	var derr *shared.DomainError
	require.ErrorAs(t, err, &derr)
	assert.Equal(t, "SKU_TAKEN", derr.Code)
	products.AssertNotCalled(t, "Save")
}

func TestProductService_CreateProduct_UnknownCategory(t *testing.T) {
	products := new(mockProductRepository)
	categories := new(mockCategoryRepository)
	svc := newTestProductService(products, categories)

	categoryID := uuid.New()
	products.On("FindBySKU", mock.Anything, "CB-MUG-02").Return(nil, shared.ErrNotFound)
	categories.On("FindByID", mock.Anything, categoryID).Return(nil, shared.ErrNotFound)

	_, err := svc.CreateProduct(context.Background(), CreateProductInput{
		Name:       "Mug",
		SKU:        "CB-MUG-02",
		PriceINR:   649,
		CategoryID: &categoryID,
	})
	require.Error(t, err)
	products.AssertNotCalled(t, "Save")
}

func TestProductService_UpdateProduct_PartialFields(t *testing.T) {
	products := new(mockProductRepository)
	categories := new(mockCategoryRepository)
	svc := newTestProductService(products, categories)

	product, err := catalog.NewProduct("Mug", "CB-MUG-01", moneyINR(t, 649))
	require.NoError(t, err)
	require.NoError(t, product.SetShippingProfile(0.4, 12, 10, 11))

	products.On("FindByID", mock.Anything, product.ID).Return(product, nil)
	products.On("Save", mock.Anything, product).Return(nil)

	newPrice := 799.0
	newWeight := 0.5
	inactive := false
	updated, err := svc.UpdateProduct(context.Background(), UpdateProductInput{
		ProductID: product.ID,
		PriceINR:  &newPrice,
		WeightKg:  &newWeight,
		Active:    &inactive,
	})
	require.NoError(t, err)
	assert.Equal(t, "799", updated.Price.Amount().String())
	assert.Equal(t, 0.5, updated.WeightKg)
	// untouched dimensions survive a partial shipping update
	assert.Equal(t, 12.0, updated.LengthCm)
	assert.False(t, updated.Active)
}

func TestProductService_RequestImageUpload(t *testing.T) {
	products := new(mockProductRepository)
	categories := new(mockCategoryRepository)
	svc := newTestProductService(products, categories)

	product, err := catalog.NewProduct("Mug", "CB-MUG-01", moneyINR(t, 649))
	require.NoError(t, err)
	products.On("FindByID", mock.Anything, product.ID).Return(product, nil)

	result, err := svc.RequestImageUpload(context.Background(), ProductImageUploadInput{
		ProductID:   product.ID,
		ContentType: "image/jpeg",
		Extension:   ".jpg",
	})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(result.StorageKey, "products/"+product.ID.String()+"/"))
	assert.True(t, strings.HasSuffix(result.StorageKey, ".jpg"))
	assert.NotEmpty(t, result.UploadURL)
}

func TestProductService_ConfirmImageUpload(t *testing.T) {
	products := new(mockProductRepository)
	categories := new(mockCategoryRepository)
	svc := newTestProductService(products, categories)

	product, err := catalog.NewProduct("Mug", "CB-MUG-01", moneyINR(t, 649))
	require.NoError(t, err)
	products.On("FindByID", mock.Anything, product.ID).Return(product, nil)
	products.On("Save", mock.Anything, product).Return(nil)

	key := "products/" + product.ID.String() + "/abc.jpg"
	updated, err := svc.ConfirmImageUpload(context.Background(), product.ID, key)
	require.NoError(t, err)
	assert.Contains(t, updated.ImageKeys, key)
}

func TestCategoryService_DeleteCategory_NotEmpty(t *testing.T) {
	products := new(mockProductRepository)
	categories := new(mockCategoryRepository)
	svc := NewCategoryService(categories, products, zap.NewNop())

	categoryID := uuid.New()
	products.On("Count", mock.Anything, mock.Anything).Return(int64(3), nil)

	err := svc.DeleteCategory(context.Background(), categoryID)
	require.Error(t, err)

	var derr *shared.DomainError
	require.ErrorAs(t, err, &derr)
	assert.Equal(t, "CATEGORY_NOT_EMPTY", derr.Code)
	categories.AssertNotCalled(t, "Delete")
}

func TestCategoryService_CreateCategory_DuplicateSlug(t *testing.T) {
	products := new(mockProductRepository)
	categories := new(mockCategoryRepository)
	svc := NewCategoryService(categories, products, zap.NewNop())

	existing, err := catalog.NewCategory("Pottery", "pottery")
	require.NoError(t, err)
	categories.On("FindBySlug", mock.Anything, "pottery").Return(existing, nil)

	_, err = svc.CreateCategory(context.Background(), CreateCategoryInput{Name: "Pottery", Slug: "pottery"})
	require.Error(t, err)
	categories.AssertNotCalled(t, "Save")
}
