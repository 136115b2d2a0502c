package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/sangkips/pharmapos-api/internal/config"
	domainRepo "github.com/sangkips/pharmapos-api/internal/domain/repository"
	"github.com/sangkips/pharmapos-api/internal/presentation/http/handler"
	"github.com/sangkips/pharmapos-api/internal/presentation/http/middleware"
	"github.com/sangkips/pharmapos-api/pkg/utils"
	"github.com/sirupsen/logrus"
)

// RoleAdmin may change the catalog, settings and printer.
const RoleAdmin = "admin"

// Handlers holds all the HTTP handlers used for route registration.
type Handlers struct {
	Sale     *handler.SaleHandler
	Report   *handler.ReportHandler
	Product  *handler.ProductHandler
	Settings *handler.SettingsHandler
	Printer  *handler.PrinterHandler
}

// Deps holds shared dependencies needed by the routes.
type Deps struct {
	JWTManager      *utils.JWTManager
	Cfg             *config.Config
	Log             *logrus.Logger
	IdempotencyRepo domainRepo.IdempotencyRepository
	// RateLimiter is optional.
	RateLimiter *middleware.ClientRateLimiter
}

// Setup creates the Gin router and registers all routes.
func Setup(h *Handlers, deps *Deps) *gin.Engine {
	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(middleware.LoggerMiddleware(deps.Log))
	router.Use(middleware.CORSMiddleware(&deps.Cfg.CORS))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"service": deps.Cfg.App.Name,
		})
	})

	v1 := router.Group("/api/v1")
	v1.Use(middleware.AuthMiddleware(deps.JWTManager))
	if deps.RateLimiter != nil {
		v1.Use(deps.RateLimiter.Middleware())
	}

	v1.GET("/dashboard/summary", h.Report.Dashboard)

	registerSaleRoutes(v1, h, deps)
	registerReportRoutes(v1, h)
	registerProductRoutes(v1, h)

	v1.GET("/settings", h.Settings.GetSettings)
	v1.PUT("/settings", middleware.RequireRole(RoleAdmin), h.Settings.UpdateSettings)

	printerGroup := v1.Group("/printer")
	{
		printerGroup.GET("/status", h.Printer.GetStatus)
		printerGroup.POST("/test", middleware.RequireRole(RoleAdmin), h.Printer.TestPrint)
	}

	return router
}

func registerSaleRoutes(v1 *gin.RouterGroup, h *Handlers, deps *Deps) {
	sales := v1.Group("/sales")
	{
		sales.POST("", middleware.Idempotency(middleware.IdempotencyConfig{
			Repo: deps.IdempotencyRepo,
			Log:  deps.Log,
		}), h.Sale.Create)
		sales.GET("", h.Sale.List)
		sales.GET("/search", h.Sale.Search)
		sales.GET("/discount-suggestion", h.Sale.SuggestDiscount)
		sales.GET("/:invoice", h.Sale.Get)
		sales.POST("/:invoice/print", h.Sale.PrintReceipt)
	}
}

func registerReportRoutes(v1 *gin.RouterGroup, h *Handlers) {
	reports := v1.Group("/reports")
	{
		reports.GET("/period", h.Report.Period)
		reports.GET("/export", h.Report.Export)
	}
}

func registerProductRoutes(v1 *gin.RouterGroup, h *Handlers) {
	products := v1.Group("/products")
	{
		products.GET("", h.Product.List)
		products.GET("/:id", h.Product.Get)
		products.POST("", middleware.RequireRole(RoleAdmin), h.Product.Create)
		products.PUT("/:id", middleware.RequireRole(RoleAdmin), h.Product.Update)
		products.DELETE("/:id", middleware.RequireRole(RoleAdmin), h.Product.Delete)
	}
}
