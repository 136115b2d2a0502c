package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sangkips/pharmapos-api/internal/application/service"
	"github.com/sangkips/pharmapos-api/internal/domain/enum"
	"github.com/sangkips/pharmapos-api/internal/presentation/http/dto/request"
	"github.com/sangkips/pharmapos-api/internal/presentation/http/dto/response"
	"github.com/sangkips/pharmapos-api/pkg/apperror"
	"github.com/sangkips/pharmapos-api/pkg/pagination"
	"github.com/shopspring/decimal"
)

// SaleHandler handles billing and sale lookup requests
type SaleHandler struct {
	billingService *service.BillingService
	reportService  *service.ReportService
	printerService *service.PrinterService
}

// NewSaleHandler creates a new sale handler
func NewSaleHandler(
	billingService *service.BillingService,
	reportService *service.ReportService,
	printerService *service.PrinterService,
) *SaleHandler {
	return &SaleHandler{
		billingService: billingService,
		reportService:  reportService,
		printerService: printerService,
	}
}

// Create handles POST /sales
func (h *SaleHandler) Create(c *gin.Context) {
	var req request.CreateSaleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	input := &service.CreateSaleInput{
		CustomerName:     req.CustomerName,
		CustomerContact:  req.CustomerContact,
		Items:            make([]service.SaleItemInput, len(req.Items)),
		Discount:         req.Discount,
		GatewayOrderID:   req.GatewayOrderID,
		GatewayPaymentID: req.GatewayPaymentID,
		CreatedBy:        GetUserID(c),
	}

	method, err := enum.ParsePaymentMethod(req.PaymentMethod)
	if err != nil {
		response.Error(c, apperror.NewFieldValidationError("payment_method", "must be one of Cash, Card, UPI"))
		return
	}
	input.PaymentMethod = method

	var fieldErrors []apperror.FieldError
	for i, item := range req.Items {
		id, err := uuid.Parse(item.ProductID)
		if err != nil {
			fieldErrors = append(fieldErrors, apperror.FieldError{
				Field:   "items[" + strconv.Itoa(i) + "].product_id",
				Message: "must be a valid UUID",
			})
			continue
		}
		input.Items[i] = service.SaleItemInput{ProductID: id, Quantity: item.Quantity}
	}
	if len(fieldErrors) > 0 {
		response.ValidationError(c, fieldErrors)
		return
	}

	sale, err := h.billingService.CreateSale(c.Request.Context(), input)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Sale created successfully", sale)
}

// List handles GET /sales
func (h *SaleHandler) List(c *gin.Context) {
	var req request.DateRangeRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		bindError(c, err)
		return
	}
	start, end, err := parseDateRange(req)
	if err != nil {
		response.Error(c, err)
		return
	}

	sales, err := h.reportService.ListSales(c.Request.Context(), start, end)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Sales retrieved successfully", sales)
}

// Search handles GET /sales/search
func (h *SaleHandler) Search(c *gin.Context) {
	var req request.SearchSalesRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		bindError(c, err)
		return
	}

	result, err := h.reportService.SearchSales(c.Request.Context(), req.Query, pagination.New(req.Page, req.PerPage))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Sales retrieved successfully", result)
}

// Get handles GET /sales/:invoice
func (h *SaleHandler) Get(c *gin.Context) {
	sale, err := h.reportService.GetSale(c.Request.Context(), c.Param("invoice"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Sale retrieved successfully", sale)
}

// PrintReceipt handles POST /sales/:invoice/print
func (h *SaleHandler) PrintReceipt(c *gin.Context) {
	result, err := h.printerService.PrintSaleReceipt(c.Request.Context(), c.Param("invoice"))
	if err != nil {
		response.Error(c, err)
		return
	}

	message := "Receipt printed successfully"
	if !result.Printed {
		message = "Receipt generated but not printed"
	}
	response.OK(c, message, result)
}

// SuggestDiscount handles GET /sales/discount-suggestion
func (h *SaleHandler) SuggestDiscount(c *gin.Context) {
	var req request.DiscountSuggestionRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		bindError(c, err)
		return
	}
	subTotal, err := decimal.NewFromString(req.SubTotal)
	if err != nil {
		response.Error(c, apperror.NewFieldValidationError("subtotal", "must be a number"))
		return
	}

	discount, err := h.billingService.SuggestDiscount(c.Request.Context(), subTotal)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Discount suggested", gin.H{
		"subtotal": subTotal,
		"discount": discount,
	})
}
