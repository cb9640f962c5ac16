package router

import (
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	catalogapp "github.com/retailcore/backend/internal/application/catalog"
	eventapp "github.com/retailcore/backend/internal/application/event"
	partnerapp "github.com/retailcore/backend/internal/application/partner"
	pricingapp "github.com/retailcore/backend/internal/application/pricing"
	tradeapp "github.com/retailcore/backend/internal/application/trade"
	"github.com/retailcore/backend/internal/domain/pricing"
	"github.com/retailcore/backend/internal/infrastructure/auth"
	"github.com/retailcore/backend/internal/infrastructure/cache"
	"github.com/retailcore/backend/internal/infrastructure/config"
	"github.com/retailcore/backend/internal/infrastructure/event"
	"github.com/retailcore/backend/internal/infrastructure/persistence"
	"github.com/retailcore/backend/internal/interfaces/http/handler"
	"github.com/retailcore/backend/internal/interfaces/http/middleware"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type testAPI struct {
	engine *gin.Engine
	jwt    *auth.JWTService
}

type testOption func(*middleware.ActorConfig)

func withRequiredAuth() testOption {
	return func(cfg *middleware.ActorConfig) { cfg.Required = true }
}

// newTestAPI wires the real services over a private in-memory database
func newTestAPI(t *testing.T, opts ...testOption) *testAPI {
	t.Helper()
	log := zaptest.NewLogger(t)

	db, err := persistence.NewDatabase(&config.DatabaseConfig{
		Driver:       config.DriverSQLite,
		Path:         ":memory:",
		MaxOpenConns: 1,
		MaxIdleConns: 1,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, db.AutoMigrate(t.Context()))

	productRepo := persistence.NewGormProductRepository(db.DB)
	saleRepo := persistence.NewGormSaleRepository(db.DB)
	invoiceRepo := persistence.NewGormInvoiceRepository(db.DB)
	supplierRepo := persistence.NewGormSupplierRepository(db.DB)
	settingsRepo := persistence.NewGormSettingsRepository(db.DB)
	txScope := persistence.NewGormTransactionScope(db.DB)

	bus := event.NewInMemoryEventBus(log)
	activity := eventapp.NewActivityLog(log, 100)
	bus.Subscribe(activity)

	carts := cache.NewInMemoryCartStore(time.Hour)
	t.Cleanup(func() { _ = carts.Close() })

	settingsService := pricingapp.NewSettingsService(settingsRepo, pricing.DefaultSettings())
	productService := catalogapp.NewProductService(productRepo, settingsService,
		catalogapp.NewTradeReferenceChecker(saleRepo, invoiceRepo))
	productService.SetEventPublisher(bus)
	cartService := tradeapp.NewCartService(carts, productRepo, settingsService)
	saleService := tradeapp.NewSaleService(txScope, saleRepo, carts, settingsService, log)
	saleService.SetEventPublisher(bus)
	invoiceService := tradeapp.NewInvoiceService(txScope, invoiceRepo, log)
	invoiceService.SetEventPublisher(bus)
	supplierService := partnerapp.NewSupplierService(supplierRepo)

	jwtService := auth.NewJWTService(config.JWTConfig{
		Secret:                "router-test-secret",
		Issuer:                "retailcore",
		AccessTokenExpiration: time.Hour,
	})
	revocations := auth.NewInMemoryRevocationList()

	engine, err := NewEngine(EngineConfig{Logger: log})
	require.NoError(t, err)

	actor := middleware.ActorConfig{JWTService: jwtService, Revocations: revocations, Logger: log}
	for _, opt := range opts {
		opt(&actor)
	}
	RegisterRoutes(engine, Handlers{
		Settings: handler.NewSettingsHandler(settingsService),
		Products: handler.NewProductHandler(productService),
		Cart:     handler.NewCartHandler(cartService),
		Sales:    handler.NewSaleHandler(saleService),
		Invoices: handler.NewInvoiceHandler(invoiceService),
		Supplier: handler.NewSupplierHandler(supplierService),
		Activity: handler.NewActivityHandler(activity),
		System:   handler.NewSystemHandler(db, "test"),
		Auth:     handler.NewAuthHandler(revocations),
	}, actor)

	return &testAPI{engine: engine, jwt: jwtService}
}
