package catalog

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/costerbox/backend/internal/application/media"
	"github.com/costerbox/backend/internal/domain/catalog"
	"github.com/costerbox/backend/internal/domain/shared"
	"github.com/costerbox/backend/internal/domain/shared/valueobject"
)

const imageUploadURLTTL = 15 * time.Minute

// ProductService handles catalog product management
type ProductService struct {
	productRepo  catalog.ProductRepository
	categoryRepo catalog.CategoryRepository
	storage      media.ObjectStorage
	logger       *zap.Logger
}

// NewProductService creates a new product service
func NewProductService(
	productRepo catalog.ProductRepository,
	categoryRepo catalog.CategoryRepository,
	storage media.ObjectStorage,
	logger *zap.Logger,
) *ProductService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProductService{
		productRepo:  productRepo,
		categoryRepo: categoryRepo,
		storage:      storage,
		logger:       logger,
	}
}

// CreateProduct creates a new catalog product
func (s *ProductService) CreateProduct(ctx context.Context, input CreateProductInput) (*catalog.Product, error) {
	if _, err := s.productRepo.FindBySKU(ctx, input.SKU); err == nil {
		return nil, shared.NewDomainError("SKU_TAKEN", "A product with this SKU already exists")
	}

	price := valueobject.NewMoneyINRFromFloat(input.PriceINR)
	product, err := catalog.NewProduct(input.Name, input.SKU, price)
	if err != nil {
		return nil, err
	}
	product.Description = input.Description
	product.MarkCustomizable(input.Customizable)

	if input.CategoryID != nil {
		if _, err := s.categoryRepo.FindByID(ctx, *input.CategoryID); err != nil {
			return nil, shared.NewDomainError("INVALID_CATEGORY", "Category does not exist")
		}
		product.SetCategory(*input.CategoryID)
	}

	if err := product.SetShippingProfile(input.WeightKg, input.LengthCm, input.WidthCm, input.HeightCm); err != nil {
		return nil, err
	}

	if err := s.productRepo.Save(ctx, product); err != nil {
		return nil, err
	}

	s.logger.Info("product created",
		zap.String("product_id", product.ID.String()),
		zap.String("sku", product.SKU),
	)
	return product, nil
}

// UpdateProduct applies a partial update to a product
func (s *ProductService) UpdateProduct(ctx context.Context, input UpdateProductInput) (*catalog.Product, error) {
	product, err := s.productRepo.FindByID(ctx, input.ProductID)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		product.Name = *input.Name
		product.Touch()
	}
	if input.Description != nil {
		product.Description = *input.Description
		product.Touch()
	}
	if input.PriceINR != nil {
		price := valueobject.NewMoneyINRFromFloat(*input.PriceINR)
		if err := product.SetPrice(price); err != nil {
			return nil, err
		}
	}
	if input.CategoryID != nil {
		if _, err := s.categoryRepo.FindByID(ctx, *input.CategoryID); err != nil {
			return nil, shared.NewDomainError("INVALID_CATEGORY", "Category does not exist")
		}
		product.SetCategory(*input.CategoryID)
	}
	if input.Customizable != nil {
		product.MarkCustomizable(*input.Customizable)
	}
	if input.Active != nil {
		if *input.Active {
			product.Activate()
		} else {
			product.Deactivate()
		}
	}
	if input.WeightKg != nil || input.LengthCm != nil || input.WidthCm != nil || input.HeightCm != nil {
		weight, length, width, height := product.WeightKg, product.LengthCm, product.WidthCm, product.HeightCm
		if input.WeightKg != nil {
			weight = *input.WeightKg
		}
		if input.LengthCm != nil {
			length = *input.LengthCm
		}
		if input.WidthCm != nil {
			width = *input.WidthCm
		}
		if input.HeightCm != nil {
			height = *input.HeightCm
		}
		if err := product.SetShippingProfile(weight, length, width, height); err != nil {
			return nil, err
		}
	}

	if err := s.productRepo.Save(ctx, product); err != nil {
		return nil, err
	}
	return product, nil
}

// GetProduct returns a product by ID
func (s *ProductService) GetProduct(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	return s.productRepo.FindByID(ctx, id)
}

// ListProducts lists products, optionally restricted to the storefront view
func (s *ProductService) ListProducts(ctx context.Context, input ListProductsInput) (*shared.Paginated[catalog.Product], error) {
	var (
		products []catalog.Product
		err      error
	)
	if input.ActiveOnly {
		products, err = s.productRepo.FindActive(ctx, input.Filter)
	} else {
		products, err = s.productRepo.FindAll(ctx, input.Filter)
	}
	if err != nil {
		return nil, err
	}

	total, err := s.productRepo.Count(ctx, input.Filter)
	if err != nil {
		return nil, err
	}
	result := shared.NewPaginated(products, total, input.Filter.Page, input.Filter.PageSize)
	return &result, nil
}

// DeleteProduct removes a product and its stored images
func (s *ProductService) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.productRepo.Delete(ctx, id); err != nil {
		return err
	}

	for _, key := range product.ImageKeys {
		if err := s.storage.DeleteObject(ctx, key); err != nil {
			s.logger.Warn("failed to delete product image",
				zap.String("storage_key", key),
				zap.Error(err),
			)
		}
	}
	return nil
}

// RequestImageUpload returns a presigned URL for uploading a product image.
// The key is recorded on the product once the client confirms the upload.
func (s *ProductService) RequestImageUpload(ctx context.Context, input ProductImageUploadInput) (*ProductImageUploadResult, error) {
	if _, err := s.productRepo.FindByID(ctx, input.ProductID); err != nil {
		return nil, err
	}

	key := media.ProductImageKey(input.ProductID, input.Extension)
	url, expiresAt, err := s.storage.GenerateUploadURL(ctx, key, input.ContentType, imageUploadURLTTL)
	if err != nil {
		return nil, err
	}
	return &ProductImageUploadResult{
		StorageKey: key,
		UploadURL:  url,
		ExpiresAt:  expiresAt,
	}, nil
}

// ConfirmImageUpload attaches an uploaded image to the product gallery
func (s *ProductService) ConfirmImageUpload(ctx context.Context, productID uuid.UUID, storageKey string) (*catalog.Product, error) {
	product, err := s.productRepo.FindByID(ctx, productID)
	if err != nil {
		return nil, err
	}

	exists, err := s.storage.ObjectExists(ctx, storageKey)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, shared.NewDomainError("UPLOAD_NOT_FOUND", "Uploaded image was not found in storage")
	}

	if err := product.AddImage(storageKey); err != nil {
		return nil, err
	}
	if err := s.productRepo.Save(ctx, product); err != nil {
		return nil, err
	}
	return product, nil
}

// ImageURLs returns presigned download URLs for a product's gallery
func (s *ProductService) ImageURLs(ctx context.Context, product *catalog.Product, expiresIn time.Duration) ([]string, error) {
	urls := make([]string, 0, len(product.ImageKeys))
	for _, key := range product.ImageKeys {
		url, _, err := s.storage.GenerateDownloadURL(ctx, key, expiresIn)
		if err != nil {
			return nil, err
		}
		urls = append(urls, url)
	}
	return urls, nil
}
