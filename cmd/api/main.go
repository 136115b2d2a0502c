package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sangkips/pharmapos-api/internal/application/service"
	"github.com/sangkips/pharmapos-api/internal/config"
	domainRepo "github.com/sangkips/pharmapos-api/internal/domain/repository"
	"github.com/sangkips/pharmapos-api/internal/infrastructure/cache"
	"github.com/sangkips/pharmapos-api/internal/infrastructure/database"
	"github.com/sangkips/pharmapos-api/internal/infrastructure/memory"
	"github.com/sangkips/pharmapos-api/internal/infrastructure/repository"
	"github.com/sangkips/pharmapos-api/internal/presentation/http/handler"
	"github.com/sangkips/pharmapos-api/internal/presentation/http/middleware"
	"github.com/sangkips/pharmapos-api/internal/presentation/http/routes"
	"github.com/sangkips/pharmapos-api/pkg/logger"
	"github.com/sangkips/pharmapos-api/pkg/printer"
	"github.com/sangkips/pharmapos-api/pkg/utils"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// repositories bundles the storage backends chosen by DB_DRIVER.
type repositories struct {
	product     domainRepo.ProductRepository
	sale        domainRepo.SaleRepository
	settings    domainRepo.SettingsRepository
	idempotency domainRepo.IdempotencyRepository
	close       func() error
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("Failed to load configuration: %v", err)
	}

	log := logger.New(cfg.Log.Level, cfg.Log.Format)
	if !cfg.App.EnvFileLoaded {
		log.Info("no .env file found, using environment variables only")
	}

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	// Money goes over the wire as JSON numbers.
	decimal.MarshalJSONWithoutQuotes = true

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	repos, err := openRepositories(cfg, log)
	if err != nil {
		log.Fatalf("Failed to open storage: %v", err)
	}
	defer repos.close()

	if cfg.Database.SeedDemo {
		if err := database.SeedDemoCatalog(ctx, repos.product, log); err != nil {
			log.WithError(err).Warn("failed to seed demo catalog")
		}
	}

	var summaryCache service.SummaryCache = cache.Noop{}
	if cfg.Redis.Enabled() {
		redisCache, err := cache.NewRedisCache(ctx, &cfg.Redis, "pharmapos:")
		if err != nil {
			log.WithError(err).Warn("redis unavailable, dashboard caching disabled")
		} else {
			defer redisCache.Close()
			summaryCache = redisCache
		}
	}

	thermalPrinter, err := printer.New(printer.Options{
		Type:    cfg.Printer.Type,
		USBPath: cfg.Printer.USBPath,
		Address: cfg.Printer.Address,
	})
	if err != nil {
		log.WithError(err).Warn("failed to initialize printer, printing disabled")
		thermalPrinter = printer.NullPrinter{}
	}
	defer thermalPrinter.Close()

	settingsService := service.NewSettingsService(repos.settings, log)
	billingService := service.NewBillingService(repos.product, repos.sale, settingsService, service.BillingConfig{
		PhoneRegion:        cfg.Billing.PhoneRegion,
		MaxInvoiceAttempts: cfg.Billing.MaxInvoiceRetries,
		TaxFallback:        decimal.NewFromFloat(cfg.Billing.DefaultTaxFallback),
	}, log)
	reportService := service.NewReportService(repos.sale, repos.product, service.ReportConfig{
		LowStockThreshold: cfg.Billing.LowStockThreshold,
		ExpiryWindow:      time.Duration(cfg.Billing.ExpiryWindowDays) * 24 * time.Hour,
		SummaryTTL:        cfg.Redis.SummaryTTL,
	}, log, service.WithSummaryCache(summaryCache))
	productService := service.NewProductService(repos.product, log)
	printerService := service.NewPrinterService(thermalPrinter, repos.sale, settingsService,
		cfg.Printer.Type, cfg.Printer.CharWidth, log)

	handlers := &routes.Handlers{
		Sale:     handler.NewSaleHandler(billingService, reportService, printerService),
		Report:   handler.NewReportHandler(reportService),
		Product:  handler.NewProductHandler(productService, cfg.Billing.LowStockThreshold),
		Settings: handler.NewSettingsHandler(settingsService),
		Printer:  handler.NewPrinterHandler(printerService),
	}

	rateLimiter := middleware.NewClientRateLimiter(middleware.RateLimiterConfig{
		RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
		BurstSize:         cfg.RateLimit.Burst,
	})
	go rateLimiter.Run(ctx)
	go purgeIdempotencyKeys(ctx, repos.idempotency, log)

	router := routes.Setup(handlers, &routes.Deps{
		JWTManager:      utils.NewJWTManager(cfg.JWT.Secret, cfg.JWT.Issuer),
		Cfg:             cfg,
		Log:             log,
		IdempotencyRepo: repos.idempotency,
		RateLimiter:     rateLimiter,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.App.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.WithFields(logrus.Fields{
			"port":   cfg.App.Port,
			"env":    cfg.App.Env,
			"driver": cfg.Database.Driver,
		}).Infof("starting %s", cfg.App.Name)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("graceful shutdown failed")
	}
}

func openRepositories(cfg *config.Config, log *logrus.Logger) (*repositories, error) {
	if cfg.Database.Driver == "memory" {
		store := memory.NewStore()
		log.Warn("using in-memory storage, data is lost on restart")
		return &repositories{
			product:     memory.NewProductRepository(store),
			sale:        memory.NewSaleRepository(store),
			settings:    memory.NewSettingsRepository(store),
			idempotency: memory.NewIdempotencyRepository(store),
			close:       func() error { return nil },
		}, nil
	}

	db, err := database.Open(&cfg.Database, log)
	if err != nil {
		return nil, err
	}
	if err := database.AutoMigrate(db, log); err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	return &repositories{
		product:     repository.NewProductRepository(db),
		sale:        repository.NewSaleRepository(db),
		settings:    repository.NewSettingsRepository(db),
		idempotency: repository.NewIdempotencyRepository(db),
		close:       sqlDB.Close,
	}, nil
}

// purgeIdempotencyKeys deletes expired keys once an hour.
func purgeIdempotencyKeys(ctx context.Context, repo domainRepo.IdempotencyRepository, log *logrus.Logger) {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			n, err := repo.DeleteExpired(ctx, now)
			if err != nil {
				log.WithError(err).Warn("failed to purge idempotency keys")
				continue
			}
			if n > 0 {
				log.WithField("deleted", n).Debug("purged expired idempotency keys")
			}
		}
	}
}
