package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sangkips/pharmapos-api/internal/application/service"
	"github.com/sangkips/pharmapos-api/internal/domain/repository"
	"github.com/sangkips/pharmapos-api/internal/presentation/http/dto/request"
	"github.com/sangkips/pharmapos-api/internal/presentation/http/dto/response"
	"github.com/sangkips/pharmapos-api/pkg/apperror"
	"github.com/sangkips/pharmapos-api/pkg/pagination"
)

// ProductHandler handles catalog requests
type ProductHandler struct {
	productService    *service.ProductService
	lowStockThreshold int
}

// NewProductHandler creates a new product handler
func NewProductHandler(productService *service.ProductService, lowStockThreshold int) *ProductHandler {
	return &ProductHandler{productService: productService, lowStockThreshold: lowStockThreshold}
}

// List handles listing products
func (h *ProductHandler) List(c *gin.Context) {
	var filter request.ProductFilterRequest
	if err := c.ShouldBindQuery(&filter); err != nil {
		bindError(c, err)
		return
	}

	params := &repository.ProductFilterParams{
		Pagination: pagination.New(filter.Page, filter.PerPage),
		Search:     filter.Search,
		Category:   filter.Category,
		SortBy:     filter.SortBy,
		SortOrder:  filter.SortOrder,
	}
	if filter.LowStock {
		params.LowStockBelow = h.lowStockThreshold
	}

	result, err := h.productService.ListProducts(c.Request.Context(), params)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.SuccessWithPagination(c, 200, "Products retrieved successfully", result)
}

// Get handles getting a single product
func (h *ProductHandler) Get(c *gin.Context) {
	id, ok := productID(c)
	if !ok {
		return
	}
	product, err := h.productService.GetProduct(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Product retrieved successfully", product)
}

// Create handles product creation
func (h *ProductHandler) Create(c *gin.Context) {
	var req request.CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	expiry, err := parseDate(req.ExpiryDate)
	if err != nil || expiry == nil {
		response.Error(c, apperror.NewFieldValidationError("expiry_date", "must be a date in yyyy-mm-dd form"))
		return
	}

	product, err := h.productService.CreateProduct(c.Request.Context(), &service.CreateProductInput{
		Name:          req.Name,
		BrandName:     req.BrandName,
		Category:      req.Category,
		BatchNumber:   req.BatchNumber,
		ExpiryDate:    *expiry,
		PurchasePrice: req.PurchasePrice,
		SellingPrice:  req.SellingPrice,
		StockQuantity: req.StockQuantity,
		SupplierName:  req.SupplierName,
		TaxPercentage: req.TaxPercentage,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, "Product created successfully", product)
}

// Update handles product updates
func (h *ProductHandler) Update(c *gin.Context) {
	id, ok := productID(c)
	if !ok {
		return
	}
	var req request.UpdateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	input := &service.UpdateProductInput{
		ID:                 id,
		Name:               req.Name,
		BrandName:          req.BrandName,
		Category:           req.Category,
		BatchNumber:        req.BatchNumber,
		PurchasePrice:      req.PurchasePrice,
		SellingPrice:       req.SellingPrice,
		StockQuantity:      req.StockQuantity,
		SupplierName:       req.SupplierName,
		TaxPercentage:      req.TaxPercentage,
		ClearTaxPercentage: req.ClearTaxPercentage,
	}
	if req.ExpiryDate != nil {
		expiry, err := time.ParseInLocation(dateLayout, *req.ExpiryDate, time.Local)
		if err != nil {
			response.Error(c, apperror.NewFieldValidationError("expiry_date", "must be a date in yyyy-mm-dd form"))
			return
		}
		input.ExpiryDate = &expiry
	}

	product, err := h.productService.UpdateProduct(c.Request.Context(), input)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Product updated successfully", product)
}

// Delete handles product deletion
func (h *ProductHandler) Delete(c *gin.Context) {
	id, ok := productID(c)
	if !ok {
		return
	}
	if err := h.productService.DeleteProduct(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

func productID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid product ID")
		return uuid.Nil, false
	}
	return id, true
}
