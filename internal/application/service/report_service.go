package service

import (
	"context"
	"strings"
	"time"

	"github.com/sangkips/pharmapos-api/internal/domain/entity"
	"github.com/sangkips/pharmapos-api/internal/domain/repository"
	"github.com/sangkips/pharmapos-api/pkg/apperror"
	"github.com/sangkips/pharmapos-api/pkg/logger"
	"github.com/sangkips/pharmapos-api/pkg/pagination"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// SummaryCache stores computed dashboard summaries for a short time.
type SummaryCache interface {
	GetObject(ctx context.Context, key string, dest any) (bool, error)
	SetObject(ctx context.Context, key string, obj any, ttl time.Duration) error
}

// ReportConfig holds the inventory alert thresholds
type ReportConfig struct {
	LowStockThreshold int
	ExpiryWindow      time.Duration
	// SummaryTTL of zero disables dashboard caching.
	SummaryTTL time.Duration
}

// ReportOption customises a ReportService.
type ReportOption func(*ReportService)

// WithReportClock replaces time.Now.
func WithReportClock(now func() time.Time) ReportOption {
	return func(s *ReportService) { s.now = now }
}

// WithSummaryCache caches dashboard summaries in c.
func WithSummaryCache(c SummaryCache) ReportOption {
	return func(s *ReportService) { s.cache = c }
}

// ReportService provides read-only views over the ledger and catalog
type ReportService struct {
	saleRepo    repository.SaleRepository
	productRepo repository.ProductRepository
	cfg         ReportConfig
	cache       SummaryCache
	log         *logrus.Logger
	now         func() time.Time
}

// NewReportService creates a new report service
func NewReportService(
	saleRepo repository.SaleRepository,
	productRepo repository.ProductRepository,
	cfg ReportConfig,
	log *logrus.Logger,
	opts ...ReportOption,
) *ReportService {
	if cfg.LowStockThreshold <= 0 {
		cfg.LowStockThreshold = 10
	}
	if cfg.ExpiryWindow <= 0 {
		cfg.ExpiryWindow = 30 * 24 * time.Hour
	}
	s := &ReportService{
		saleRepo:    saleRepo,
		productRepo: productRepo,
		cfg:         cfg,
		log:         log,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// DashboardSummary represents the dashboard cards
type DashboardSummary struct {
	TotalProducts     int64             `json:"total_products"`
	TodaySalesAmount  decimal.Decimal   `json:"today_sales_amount"`
	TodayProfit       decimal.Decimal   `json:"today_profit"`
	TodayBills        int64             `json:"today_bills"`
	LowStockCount     int64             `json:"low_stock_count"`
	ExpiringSoonCount int64             `json:"expiring_soon_count"`
	DailySalesData    []DailySalesPoint `json:"daily_sales_data"`
}

// DailySalesPoint represents a daily sales data point
type DailySalesPoint struct {
	Date    string          `json:"date"`
	Revenue decimal.Decimal `json:"revenue"`
	Profit  decimal.Decimal `json:"profit"`
}

// GetDashboardSummary returns today's figures and the inventory alert counts.
func (s *ReportService) GetDashboardSummary(ctx context.Context) (*DashboardSummary, error) {
	now := s.now()
	cacheKey := "dashboard:summary:" + now.Format("2006-01-02")

	if s.cache != nil && s.cfg.SummaryTTL > 0 {
		var cached DashboardSummary
		hit, err := s.cache.GetObject(ctx, cacheKey, &cached)
		if err != nil {
			s.log.WithError(err).Warn("dashboard cache read failed")
		}
		if hit {
			return &cached, nil
		}
	}

	summary := &DashboardSummary{}
	var err error

	if summary.TotalProducts, err = s.productRepo.Count(ctx); err != nil {
		return nil, s.internal("GetDashboardSummary", "count products", err)
	}

	today, err := s.saleRepo.Summarize(ctx, StartOfDay(now), now)
	if err != nil {
		return nil, s.internal("GetDashboardSummary", "summarize today", err)
	}
	summary.TodaySalesAmount = today.Revenue
	summary.TodayProfit = today.Profit
	summary.TodayBills = today.Count

	if summary.LowStockCount, err = s.productRepo.CountLowStock(ctx, s.cfg.LowStockThreshold); err != nil {
		return nil, s.internal("GetDashboardSummary", "count low stock", err)
	}
	if summary.ExpiringSoonCount, err = s.productRepo.CountExpiringBetween(ctx, now, now.Add(s.cfg.ExpiryWindow)); err != nil {
		return nil, s.internal("GetDashboardSummary", "count expiring", err)
	}

	// Last 7 days including today, oldest first.
	summary.DailySalesData = make([]DailySalesPoint, 0, 7)
	for i := 6; i >= 0; i-- {
		day := now.AddDate(0, 0, -i)
		totals, err := s.saleRepo.Summarize(ctx, StartOfDay(day), EndOfDay(day))
		if err != nil {
			return nil, s.internal("GetDashboardSummary", "summarize day", err)
		}
		summary.DailySalesData = append(summary.DailySalesData, DailySalesPoint{
			Date:    day.Format("Jan 02"),
			Revenue: totals.Revenue,
			Profit:  totals.Profit,
		})
	}

	if s.cache != nil && s.cfg.SummaryTTL > 0 {
		if err := s.cache.SetObject(ctx, cacheKey, summary, s.cfg.SummaryTTL); err != nil {
			s.log.WithError(err).Warn("dashboard cache write failed")
		}
	}
	return summary, nil
}

// Period is an inclusive reporting window.
type Period struct {
	Start time.Time
	End   time.Time
}

// ResolvePeriod normalises optional bounds. A missing start means one month
// before today; a missing end means today. Start snaps to the first
// millisecond of its day and end to the last.
func (s *ReportService) ResolvePeriod(start, end *time.Time) (Period, error) {
	now := s.now()
	p := Period{
		Start: StartOfDay(now.AddDate(0, -1, 0)),
		End:   EndOfDay(now),
	}
	if start != nil {
		p.Start = StartOfDay(*start)
	}
	if end != nil {
		p.End = EndOfDay(*end)
	}
	if p.End.Before(p.Start) {
		return Period{}, apperror.NewFieldValidationError("end_date", "must not be before start_date")
	}
	return p, nil
}

// PeriodSummary aggregates every sale in a period
type PeriodSummary struct {
	TotalRevenue     decimal.Decimal `json:"total_revenue"`
	TotalProfit      decimal.Decimal `json:"total_profit"`
	TotalBills       int64           `json:"total_bills"`
	GrowthPercentage float64         `json:"growth_percentage"`
	PreviousRevenue  decimal.Decimal `json:"previous_revenue"`
}

// InventoryAlerts lists products needing attention
type InventoryAlerts struct {
	LowStock     []entity.Product `json:"low_stock"`
	Expired      []entity.Product `json:"expired"`
	ExpiringSoon []entity.Product `json:"expiring_soon"`
}

// PeriodReport represents a historical report
type PeriodReport struct {
	StartDate time.Time                                `json:"start_date"`
	EndDate   time.Time                                `json:"end_date"`
	Summary   PeriodSummary                            `json:"summary"`
	Sales     *pagination.PaginatedResult[entity.Sale] `json:"sales"`
	Inventory InventoryAlerts                          `json:"inventory"`
}

// GetPeriodReport aggregates every sale in the period, pages through them
// newest first and attaches the current inventory alerts. The summary is
// independent of the requested page.
func (s *ReportService) GetPeriodReport(ctx context.Context, start, end *time.Time, params *pagination.PaginationParams) (*PeriodReport, error) {
	period, err := s.ResolvePeriod(start, end)
	if err != nil {
		return nil, err
	}
	if params == nil {
		params = pagination.DefaultPagination()
	}
	params.Validate()

	current, err := s.saleRepo.Summarize(ctx, period.Start, period.End)
	if err != nil {
		return nil, s.internal("GetPeriodReport", "summarize period", err)
	}
	prevStart, prevEnd := PreviousPeriod(period.Start, period.End)
	previous, err := s.saleRepo.Summarize(ctx, prevStart, prevEnd)
	if err != nil {
		return nil, s.internal("GetPeriodReport", "summarize previous period", err)
	}

	sales, total, err := s.saleRepo.List(ctx, &repository.SaleFilterParams{
		Pagination: params,
		StartDate:  &period.Start,
		EndDate:    &period.End,
	})
	if err != nil {
		return nil, s.internal("GetPeriodReport", "list sales", err)
	}

	alerts, err := s.inventoryAlerts(ctx)
	if err != nil {
		return nil, err
	}

	return &PeriodReport{
		StartDate: period.Start,
		EndDate:   period.End,
		Summary: PeriodSummary{
			TotalRevenue:     current.Revenue,
			TotalProfit:      current.Profit,
			TotalBills:       current.Count,
			GrowthPercentage: GrowthPercentage(current.Revenue, previous.Revenue),
			PreviousRevenue:  previous.Revenue,
		},
		Sales:     pagination.NewPaginatedResult(sales, pagination.NewPagination(params.Page, params.PerPage, total)),
		Inventory: *alerts,
	}, nil
}

func (s *ReportService) inventoryAlerts(ctx context.Context) (*InventoryAlerts, error) {
	now := s.now()
	lowStock, err := s.productRepo.ListLowStock(ctx, s.cfg.LowStockThreshold)
	if err != nil {
		return nil, s.internal("inventoryAlerts", "list low stock", err)
	}
	expired, err := s.productRepo.ListExpired(ctx, now)
	if err != nil {
		return nil, s.internal("inventoryAlerts", "list expired", err)
	}
	expiring, err := s.productRepo.ListExpiringBetween(ctx, now, now.Add(s.cfg.ExpiryWindow))
	if err != nil {
		return nil, s.internal("inventoryAlerts", "list expiring", err)
	}
	return &InventoryAlerts{
		LowStock:     nonNil(lowStock),
		Expired:      nonNil(expired),
		ExpiringSoon: nonNil(expiring),
	}, nil
}

// SearchResult represents a page of matching sales
type SearchResult struct {
	Sales       []entity.Sale `json:"sales"`
	TotalCount  int64         `json:"total_count"`
	TotalPages  int           `json:"total_pages"`
	CurrentPage int           `json:"current_page"`
}

// SearchSales matches query against customer name, contact and invoice
// number. A blank query matches nothing.
func (s *ReportService) SearchSales(ctx context.Context, query string, params *pagination.PaginationParams) (*SearchResult, error) {
	if params == nil {
		params = pagination.DefaultPagination()
	}
	params.Validate()

	query = strings.TrimSpace(query)
	if query == "" {
		return &SearchResult{Sales: []entity.Sale{}, CurrentPage: params.Page}, nil
	}

	sales, total, err := s.saleRepo.Search(ctx, query, params)
	if err != nil {
		return nil, s.internal("SearchSales", "search sales", err)
	}
	page := pagination.NewPagination(params.Page, params.PerPage, total)
	return &SearchResult{
		Sales:       nonNil(sales),
		TotalCount:  total,
		TotalPages:  page.TotalPages,
		CurrentPage: params.Page,
	}, nil
}

// ListSales returns every sale in the optional range, newest first.
// Unlike reports, missing bounds leave that side open.
func (s *ReportService) ListSales(ctx context.Context, start, end *time.Time) ([]entity.Sale, error) {
	params := &repository.SaleFilterParams{}
	if start != nil {
		from := StartOfDay(*start)
		params.StartDate = &from
	}
	if end != nil {
		to := EndOfDay(*end)
		params.EndDate = &to
	}
	sales, _, err := s.saleRepo.List(ctx, params)
	if err != nil {
		return nil, s.internal("ListSales", "list sales", err)
	}
	return nonNil(sales), nil
}

// GetSale returns one sale by invoice number
func (s *ReportService) GetSale(ctx context.Context, invoiceNumber string) (*entity.Sale, error) {
	sale, err := s.saleRepo.GetByInvoiceNumber(ctx, invoiceNumber)
	if err != nil {
		return nil, s.internal("GetSale", "load sale", err)
	}
	if sale == nil {
		return nil, apperror.NewNotFoundError("Sale")
	}
	return sale, nil
}

// ExportPeriod returns one row per sale in the period, newest first,
// regardless of any page size used elsewhere.
func (s *ReportService) ExportPeriod(ctx context.Context, start, end *time.Time) ([]ExportRow, error) {
	period, err := s.ResolvePeriod(start, end)
	if err != nil {
		return nil, err
	}
	sales, _, err := s.saleRepo.List(ctx, &repository.SaleFilterParams{
		StartDate: &period.Start,
		EndDate:   &period.End,
	})
	if err != nil {
		return nil, s.internal("ExportPeriod", "list sales", err)
	}

	rows := make([]ExportRow, len(sales))
	for i := range sales {
		rows[i] = NewExportRow(&sales[i])
	}
	return rows, nil
}

func (s *ReportService) internal(funcName, context string, err error) error {
	logger.LogError(s.log, "ReportService", funcName, context, nil, err)
	return apperror.ErrInternalServer
}

func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
