package handler

import (
	"bytes"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sangkips/pharmapos-api/internal/application/service"
	"github.com/sangkips/pharmapos-api/internal/presentation/http/dto/request"
	"github.com/sangkips/pharmapos-api/internal/presentation/http/dto/response"
	"github.com/sangkips/pharmapos-api/pkg/pagination"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ReportHandler handles reporting requests
type ReportHandler struct {
	reportService *service.ReportService
}

// NewReportHandler creates a new report handler
func NewReportHandler(reportService *service.ReportService) *ReportHandler {
	return &ReportHandler{reportService: reportService}
}

// Dashboard handles GET /dashboard/summary
func (h *ReportHandler) Dashboard(c *gin.Context) {
	summary, err := h.reportService.GetDashboardSummary(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Dashboard summary retrieved successfully", summary)
}

// Period handles GET /reports/period
func (h *ReportHandler) Period(c *gin.Context) {
	var req request.PeriodReportRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		bindError(c, err)
		return
	}
	start, end, err := parseDateRange(req.DateRangeRequest)
	if err != nil {
		response.Error(c, err)
		return
	}

	report, err := h.reportService.GetPeriodReport(c.Request.Context(), start, end, pagination.New(req.Page, req.PerPage))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Report generated successfully", report)
}

// Export handles GET /reports/export and streams a CSV or XLSX file.
func (h *ReportHandler) Export(c *gin.Context) {
	var req request.ExportRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		bindError(c, err)
		return
	}
	start, end, err := parseDateRange(req.DateRangeRequest)
	if err != nil {
		response.Error(c, err)
		return
	}

	rows, err := h.reportService.ExportPeriod(c.Request.Context(), start, end)
	if err != nil {
		response.Error(c, err)
		return
	}

	// Encode fully before writing headers so a failure can still be a JSON error.
	var buf bytes.Buffer
	contentType := "text/csv; charset=utf-8"
	ext := "csv"
	if req.Format == "xlsx" {
		contentType = xlsxContentType
		ext = "xlsx"
		err = service.WriteXLSX(&buf, rows)
	} else {
		err = service.WriteCSV(&buf, rows)
	}
	if err != nil {
		response.Error(c, err)
		return
	}

	filename := "sales-report-" + time.Now().Format(dateLayout) + "." + ext
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, contentType, buf.Bytes())
}
