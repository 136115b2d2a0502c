package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/sangkips/pharmapos-api/internal/application/service"
	"github.com/sangkips/pharmapos-api/internal/presentation/http/dto/request"
	"github.com/sangkips/pharmapos-api/internal/presentation/http/dto/response"
)

// SettingsHandler handles pharmacy settings requests
type SettingsHandler struct {
	settingsService *service.SettingsService
}

// NewSettingsHandler creates a new settings handler
func NewSettingsHandler(settingsService *service.SettingsService) *SettingsHandler {
	return &SettingsHandler{settingsService: settingsService}
}

// GetSettings returns the pharmacy settings, creating defaults on first use
func (h *SettingsHandler) GetSettings(c *gin.Context) {
	settings, err := h.settingsService.GetSettings(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Settings retrieved successfully", settings)
}

// UpdateSettings replaces the pharmacy settings
func (h *SettingsHandler) UpdateSettings(c *gin.Context) {
	var req request.UpdateSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	settings, err := h.settingsService.UpdateSettings(c.Request.Context(), &service.UpdateSettingsInput{
		PharmacyName:             req.PharmacyName,
		PharmacyAddress:          req.PharmacyAddress,
		PharmacyPhone:            req.PharmacyPhone,
		PharmacyGSTNo:            req.PharmacyGSTNo,
		DefaultGSTPercent:        req.DefaultGSTPercent,
		GlobalDiscountPercent:    req.GlobalDiscountPercent,
		ThresholdAmount:          req.ThresholdAmount,
		ThresholdDiscountPercent: req.ThresholdDiscountPercent,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Settings updated successfully", settings)
}
