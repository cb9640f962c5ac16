package main

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	catalogapp "github.com/retailcore/backend/internal/application/catalog"
	eventapp "github.com/retailcore/backend/internal/application/event"
	partnerapp "github.com/retailcore/backend/internal/application/partner"
	pricingapp "github.com/retailcore/backend/internal/application/pricing"
	tradeapp "github.com/retailcore/backend/internal/application/trade"
	"github.com/retailcore/backend/internal/infrastructure/auth"
	"github.com/retailcore/backend/internal/infrastructure/cache"
	"github.com/retailcore/backend/internal/infrastructure/config"
	"github.com/retailcore/backend/internal/infrastructure/event"
	"github.com/retailcore/backend/internal/infrastructure/logger"
	"github.com/retailcore/backend/internal/infrastructure/persistence"
	"github.com/retailcore/backend/internal/infrastructure/telemetry"
	"github.com/retailcore/backend/internal/interfaces/http/handler"
	"github.com/retailcore/backend/internal/interfaces/http/middleware"
	"github.com/retailcore/backend/internal/interfaces/http/router"
	"go.uber.org/zap"
)

// version is set at build time with -ldflags "-X main.version=..."
var version = "dev"

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	logCfg := &logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: cfg.Log.TimeFormat,
	}
	bootLog, err := logger.New(logCfg)
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}

	ctx := context.Background()

	// The OTEL log bridge needs a logger to report its own setup, so the
	// final logger is built once the provider exists.
	logProvider, err := telemetry.NewLoggerProvider(ctx, cfg.Telemetry, bootLog)
	if err != nil {
		bootLog.Fatal("Failed to initialize OTEL logs", zap.Error(err))
	}
	log, err := logger.New(logCfg, logProvider.ZapCore(logger.ParseLevel(cfg.Log.Level)))
	if err != nil {
		bootLog.Fatal("Failed to initialize logger", zap.Error(err))
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting retail core",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("version", version),
	)

	tracerProvider, err := telemetry.NewTracerProvider(ctx, cfg.Telemetry, log)
	if err != nil {
		log.Fatal("Failed to initialize tracing", zap.Error(err))
	}
	meterProvider, err := telemetry.NewMeterProvider(ctx, cfg.Telemetry, log)
	if err != nil {
		log.Fatal("Failed to initialize metrics", zap.Error(err))
	}
	profiler, err := telemetry.NewProfiler(cfg.Telemetry, cfg.App.Env, log)
	if err != nil {
		log.Fatal("Failed to start profiler", zap.Error(err))
	}
	if profiler.IsEnabled() {
		tracerProvider.EnableSpanProfiles()
	}
	meter := meterProvider.Meter(cfg.Telemetry.ServiceName)

	// Database
	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level),
		logger.WithSlowThreshold(cfg.Telemetry.DBSlowQueryThresh))
	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected", zap.String("driver", db.Driver))

	if tracerProvider.IsEnabled() && cfg.Telemetry.DBTraceEnabled {
		if err := telemetry.RegisterDBTracing(db.DB, telemetry.DBTracingConfig{
			DBSystem:        db.Driver,
			LogFullSQL:      cfg.Telemetry.DBLogFullSQL,
			SlowQueryThresh: cfg.Telemetry.DBSlowQueryThresh,
		}, log); err != nil {
			log.Warn("Database tracing not installed", zap.Error(err))
		}
	}
	if sqlDB, err := db.DB.DB(); err == nil {
		if _, err := telemetry.RegisterDBPoolMetrics(meter, sqlDB); err != nil {
			log.Warn("Database pool metrics not registered", zap.Error(err))
		}
	}

	if cfg.Database.AutoMigrate {
		if err := db.AutoMigrate(ctx); err != nil {
			log.Fatal("Failed to migrate database", zap.Error(err))
		}
		log.Info("Database schema migrated")
	}

	// Repositories
	productRepo := persistence.NewGormProductRepository(db.DB)
	saleRepo := persistence.NewGormSaleRepository(db.DB)
	invoiceRepo := persistence.NewGormInvoiceRepository(db.DB)
	supplierRepo := persistence.NewGormSupplierRepository(db.DB)
	settingsRepo := persistence.NewGormSettingsRepository(db.DB)
	txScope := persistence.NewGormTransactionScope(db.DB)

	// In-process events
	eventBus := event.NewInMemoryEventBus(log)
	activity := eventapp.NewActivityLog(log, cfg.Event.ActivityCapacity)
	eventBus.Subscribe(activity)
	eventBus.Subscribe(catalogapp.NewLowStockAlertHandler(log).
		WithNotifier(catalogapp.NewLoggingStockAlertNotifier(log)))
	if err := eventBus.Start(ctx); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}

	// Cart store; Redis when configured, in-memory otherwise
	carts, cartCloser, err := cache.NewCartStoreFactory(cfg.Cart, cfg.Redis,
		cache.WithLogger(log),
		cache.WithInMemoryFallback(cfg.App.Env != "production"),
	).Create()
	if err != nil {
		log.Fatal("Failed to create cart store", zap.Error(err))
	}

	// Services
	seed, err := cfg.Pricing.Settings()
	if err != nil {
		log.Fatal("Invalid pricing defaults", zap.Error(err))
	}
	localCurrency, err := cfg.Pricing.Currency()
	if err != nil {
		log.Fatal("Invalid local currency", zap.Error(err))
	}
	settingsService := pricingapp.NewSettingsService(settingsRepo, seed)
	if err := settingsService.EnsureDefaults(ctx); err != nil {
		log.Fatal("Failed to store default settings", zap.Error(err))
	}

	businessMetrics, err := telemetry.NewBusinessMetrics(meter, log)
	if err != nil {
		log.Fatal("Failed to create business metrics", zap.Error(err))
	}
	if _, err := telemetry.RegisterSnapshotGauges(meter, telemetry.SnapshotSources{
		Products: productRepo,
		Sales:    saleRepo,
		Invoices: invoiceRepo,
	}, log); err != nil {
		log.Warn("Snapshot gauges not registered", zap.Error(err))
	}

	productService := catalogapp.NewProductService(productRepo, settingsService,
		catalogapp.NewTradeReferenceChecker(saleRepo, invoiceRepo))
	productService.SetEventPublisher(eventBus)
	productService.SetLocalCurrency(localCurrency)

	cartService := tradeapp.NewCartService(carts, productRepo, settingsService)
	cartService.SetLocalCurrency(localCurrency)

	saleService := tradeapp.NewSaleService(txScope, saleRepo, carts, settingsService, log)
	saleService.SetEventPublisher(eventBus)
	saleService.SetMetrics(businessMetrics)
	saleService.SetLocalCurrency(localCurrency)

	invoiceService := tradeapp.NewInvoiceService(txScope, invoiceRepo, log)
	invoiceService.SetEventPublisher(eventBus)
	invoiceService.SetMetrics(businessMetrics)

	supplierService := partnerapp.NewSupplierService(supplierRepo)

	// Bearer tokens. Revocations share the cart Redis when there is one.
	jwtService := auth.NewJWTService(cfg.JWT)
	var revocations auth.RevocationList = auth.NewInMemoryRevocationList()
	if client, ok := cartCloser.(*redis.Client); ok {
		revocations = auth.NewRedisRevocationList(client)
	}

	// HTTP
	engine, err := router.NewEngine(router.EngineConfig{
		Logger: log,
		HTTP:   cfg.HTTP,
		Tracing: middleware.TracingConfig{
			ServiceName: cfg.Telemetry.ServiceName,
			Enabled:     tracerProvider.IsEnabled(),
		},
		Meter:     meter,
		Profiling: profiler.IsEnabled(),
	})
	if err != nil {
		log.Fatal("Failed to build HTTP engine", zap.Error(err))
	}

	router.RegisterRoutes(engine, router.Handlers{
		Settings: handler.NewSettingsHandler(settingsService),
		Products: handler.NewProductHandler(productService),
		Cart:     handler.NewCartHandler(cartService),
		Sales:    handler.NewSaleHandler(saleService),
		Invoices: handler.NewInvoiceHandler(invoiceService),
		Supplier: handler.NewSupplierHandler(supplierService),
		Activity: handler.NewActivityHandler(activity),
		System:   handler.NewSystemHandler(db, version),
		Auth:     handler.NewAuthHandler(revocations),
	}, middleware.ActorConfig{
		JWTService:  jwtService,
		Revocations: revocations,
		Required:    cfg.JWT.Required,
		Logger:      log,
	})

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	_ = eventBus.Stop(shutdownCtx)
	closeQuietly(log, "cart store", cartCloser)

	if err := profiler.Stop(); err != nil {
		log.Warn("Profiler stop failed", zap.Error(err))
	}
	if err := meterProvider.Shutdown(shutdownCtx); err != nil {
		log.Warn("Meter provider shutdown failed", zap.Error(err))
	}
	if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
		log.Warn("Tracer provider shutdown failed", zap.Error(err))
	}
	log.Info("Server exited gracefully")
	// Flushed last so the lines above still reach the collector.
	_ = logProvider.Shutdown(shutdownCtx)
}

func closeQuietly(log *zap.Logger, name string, c io.Closer) {
	if c == nil {
		return
	}
	if err := c.Close(); err != nil {
		log.Warn("Close failed", zap.String("resource", name), zap.Error(err))
	}
}
