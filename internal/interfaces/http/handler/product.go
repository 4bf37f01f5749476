package handler

import (
	"time"

	catalogapp "github.com/costerbox/backend/internal/application/catalog"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// productImageURLTTL bounds how long listed image links stay valid
const productImageURLTTL = time.Hour

// ProductHandler handles catalog product API endpoints
type ProductHandler struct {
	BaseHandler
	productService *catalogapp.ProductService
}

// NewProductHandler creates a new ProductHandler
func NewProductHandler(productService *catalogapp.ProductService) *ProductHandler {
	return &ProductHandler{
		productService: productService,
	}
}

// CreateProductRequest represents a request to create a new product
type CreateProductRequest struct {
	Name         string  `json:"name" binding:"required,min=1,max=200"`
	SKU          string  `json:"sku" binding:"required,min=1,max=50"`
	Description  string  `json:"description" binding:"max=2000"`
	Price        float64 `json:"price" binding:"required,gt=0"`
	CategoryID   *string `json:"category_id"`
	Customizable bool    `json:"customizable"`
	WeightKg     float64 `json:"weight_kg" binding:"omitempty,gt=0"`
	LengthCm     float64 `json:"length_cm" binding:"omitempty,gt=0"`
	WidthCm      float64 `json:"width_cm" binding:"omitempty,gt=0"`
	HeightCm     float64 `json:"height_cm" binding:"omitempty,gt=0"`
}

// UpdateProductRequest represents a request to update a product
type UpdateProductRequest struct {
	Name         *string  `json:"name" binding:"omitempty,min=1,max=200"`
	Description  *string  `json:"description" binding:"omitempty,max=2000"`
	Price        *float64 `json:"price" binding:"omitempty,gt=0"`
	CategoryID   *string  `json:"category_id"`
	Customizable *bool    `json:"customizable"`
	Active       *bool    `json:"active"`
	WeightKg     *float64 `json:"weight_kg" binding:"omitempty,gt=0"`
	LengthCm     *float64 `json:"length_cm" binding:"omitempty,gt=0"`
	WidthCm      *float64 `json:"width_cm" binding:"omitempty,gt=0"`
	HeightCm     *float64 `json:"height_cm" binding:"omitempty,gt=0"`
}

// ImageUploadRequest represents a request for a presigned product image upload
type ImageUploadRequest struct {
	ContentType string `json:"content_type" binding:"required"`
	Extension   string `json:"extension" binding:"required,max=10"`
}

// ConfirmImageRequest confirms a completed product image upload
type ConfirmImageRequest struct {
	StorageKey string `json:"storage_key" binding:"required"`
}

// Create godoc
// @Summary      Create a product
// @Tags         catalog
// @Accept       json
// @Produce      json
// @Param        request body CreateProductRequest true "Product creation request"
// @Success      201 {object} dto.Response{data=ProductResponse}
// @Security     BearerAuth
// @Router       /admin/products [post]
func (h *ProductHandler) Create(c *gin.Context) {
	var req CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	input := catalogapp.CreateProductInput{
		Name:         req.Name,
		SKU:          req.SKU,
		Description:  req.Description,
		PriceINR:     req.Price,
		Customizable: req.Customizable,
		WeightKg:     req.WeightKg,
		LengthCm:     req.LengthCm,
		WidthCm:      req.WidthCm,
		HeightCm:     req.HeightCm,
	}

	if req.CategoryID != nil && *req.CategoryID != "" {
		catID, err := uuid.Parse(*req.CategoryID)
		if err != nil {
			h.BadRequest(c, "Invalid category ID format")
			return
		}
		input.CategoryID = &catID
	}

	product, err := h.productService.CreateProduct(c.Request.Context(), input)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, toProductResponse(product))
}

// Update godoc
// @Summary      Update a product
// @Tags         catalog
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Router       /admin/products/{id} [put]
func (h *ProductHandler) Update(c *gin.Context) {
	productID, ok := parseIDParam(c)
	if !ok {
		h.BadRequest(c, "Invalid product ID format")
		return
	}

	var req UpdateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	input := catalogapp.UpdateProductInput{
		ProductID:    productID,
		Name:         req.Name,
		Description:  req.Description,
		PriceINR:     req.Price,
		Customizable: req.Customizable,
		Active:       req.Active,
		WeightKg:     req.WeightKg,
		LengthCm:     req.LengthCm,
		WidthCm:      req.WidthCm,
		HeightCm:     req.HeightCm,
	}

	if req.CategoryID != nil && *req.CategoryID != "" {
		catID, err := uuid.Parse(*req.CategoryID)
		if err != nil {
			h.BadRequest(c, "Invalid category ID format")
			return
		}
		input.CategoryID = &catID
	}

	product, err := h.productService.UpdateProduct(c.Request.Context(), input)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, toProductResponse(product))
}

// GetByID godoc
// @Summary      Get product by ID
// @Tags         catalog
// @Produce      json
// @Router       /products/{id} [get]
func (h *ProductHandler) GetByID(c *gin.Context) {
	productID, ok := parseIDParam(c)
	if !ok {
		h.BadRequest(c, "Invalid product ID format")
		return
	}

	product, err := h.productService.GetProduct(c.Request.Context(), productID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, toProductResponse(product))
}

// List godoc
// @Summary      List products
// @Description  Storefront listing only shows active products; admins pass all=true
// @Tags         catalog
// @Produce      json
// @Router       /products [get]
func (h *ProductHandler) List(c *gin.Context) {
	input := catalogapp.ListProductsInput{
		Filter:     parseListFilter(c),
		ActiveOnly: c.Query("all") != "true" || !isAdmin(c),
	}

	page, err := h.productService.ListProducts(c.Request.Context(), input)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, toProductResponses(page.Items), page.Total, page.Page, page.PageSize)
}

// Delete godoc
// @Summary      Delete a product
// @Tags         catalog
// @Security     BearerAuth
// @Router       /admin/products/{id} [delete]
func (h *ProductHandler) Delete(c *gin.Context) {
	productID, ok := parseIDParam(c)
	if !ok {
		h.BadRequest(c, "Invalid product ID format")
		return
	}

	if err := h.productService.DeleteProduct(c.Request.Context(), productID); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}

// RequestImageUpload godoc
// @Summary      Request a presigned product image upload URL
// @Tags         catalog
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Router       /admin/products/{id}/images/upload-url [post]
func (h *ProductHandler) RequestImageUpload(c *gin.Context) {
	productID, ok := parseIDParam(c)
	if !ok {
		h.BadRequest(c, "Invalid product ID format")
		return
	}

	var req ImageUploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	result, err := h.productService.RequestImageUpload(c.Request.Context(), catalogapp.ProductImageUploadInput{
		ProductID:   productID,
		ContentType: req.ContentType,
		Extension:   req.Extension,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, gin.H{
		"storage_key": result.StorageKey,
		"upload_url":  result.UploadURL,
		"expires_at":  result.ExpiresAt,
	})
}

// ConfirmImageUpload godoc
// @Summary      Attach an uploaded image to the product
// @Tags         catalog
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Router       /admin/products/{id}/images [post]
func (h *ProductHandler) ConfirmImageUpload(c *gin.Context) {
	productID, ok := parseIDParam(c)
	if !ok {
		h.BadRequest(c, "Invalid product ID format")
		return
	}

	var req ConfirmImageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	product, err := h.productService.ConfirmImageUpload(c.Request.Context(), productID, req.StorageKey)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, toProductResponse(product))
}

// ListImages godoc
// @Summary      List presigned download URLs for product images
// @Tags         catalog
// @Produce      json
// @Router       /products/{id}/images [get]
func (h *ProductHandler) ListImages(c *gin.Context) {
	productID, ok := parseIDParam(c)
	if !ok {
		h.BadRequest(c, "Invalid product ID format")
		return
	}

	product, err := h.productService.GetProduct(c.Request.Context(), productID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	urls, err := h.productService.ImageURLs(c.Request.Context(), product, productImageURLTTL)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, gin.H{"urls": urls})
}
