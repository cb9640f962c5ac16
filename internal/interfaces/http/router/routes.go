package router

import (
	"github.com/gin-gonic/gin"
	"github.com/retailcore/backend/internal/interfaces/http/handler"
	"github.com/retailcore/backend/internal/interfaces/http/middleware"
)

// Handlers bundles every resource handler. Auth may be nil when no
// revocation list is configured.
type Handlers struct {
	Settings *handler.SettingsHandler
	Products *handler.ProductHandler
	Cart     *handler.CartHandler
	Sales    *handler.SaleHandler
	Invoices *handler.InvoiceHandler
	Supplier *handler.SupplierHandler
	Activity *handler.ActivityHandler
	System   *handler.SystemHandler
	Auth     *handler.AuthHandler
}

// HealthPath is served both at the root and under the API prefix
const HealthPath = "/health"

// RegisterRoutes wires the API. The actor middleware and span enricher run
// for every API route; health stays reachable without a token.
func RegisterRoutes(engine *gin.Engine, h Handlers, actor middleware.ActorConfig, opts ...RouterOption) *Router {
	r := NewRouter(engine, opts...)
	actor.SkipPaths = append(actor.SkipPaths, r.BasePath()+HealthPath)
	r.Use(middleware.Actor(actor), middleware.SpanEnricher())

	engine.GET(HealthPath, h.System.Health)

	system := NewDomainGroup("system", "")
	system.GET(HealthPath, h.System.Health)
	system.GET("/activity", h.Activity.Recent)

	settings := NewDomainGroup("settings", "")
	settings.GET("/settings", h.Settings.Get)
	settings.PUT("/settings", h.Settings.Update)
	settings.POST("/pricing/quote", h.Settings.Quote)

	products := NewDomainGroup("catalog", "/products")
	products.GET("", h.Products.List)
	products.POST("", h.Products.Create)
	products.GET("/low-stock", h.Products.LowStock)
	products.GET("/by-sku/:sku", h.Products.GetBySKU)
	products.GET("/:id", h.Products.GetByID)
	products.PUT("/:id", h.Products.Update)
	products.DELETE("/:id", h.Products.Delete)
	products.GET("/:id/price", h.Products.Price)

	priceList := NewDomainGroup("price-list", "/price-list")
	priceList.GET("", h.Products.PriceList)

	cart := NewDomainGroup("cart", "/cart")
	cart.GET("", h.Cart.Get)
	cart.DELETE("", h.Cart.Clear)
	cart.POST("/lines", h.Cart.AddLine)
	cart.PUT("/lines/:product_id", h.Cart.SetQuantity)
	cart.DELETE("/lines/:product_id", h.Cart.RemoveLine)

	sales := NewDomainGroup("sales", "/sales")
	sales.POST("", h.Sales.Settle)
	sales.GET("", h.Sales.List)
	sales.GET("/receivables", h.Sales.Receivables)
	sales.GET("/:id", h.Sales.GetByID)
	sales.PUT("/:id/items", h.Sales.Amend)
	sales.POST("/:id/cancel", h.Sales.Cancel)
	sales.POST("/:id/payments", h.Sales.RegisterPayment)
	sales.DELETE("/:id/payments/:payment_id", h.Sales.RemovePayment)

	invoices := NewDomainGroup("invoices", "/invoices")
	invoices.POST("", h.Invoices.Receive)
	invoices.GET("", h.Invoices.List)
	invoices.GET("/payables", h.Invoices.Payables)
	invoices.GET("/overdue", h.Invoices.Overdue)
	invoices.GET("/:id", h.Invoices.GetByID)
	invoices.PUT("/:id/items", h.Invoices.EditItems)
	invoices.POST("/:id/payments", h.Invoices.RegisterPayment)
	invoices.DELETE("/:id/payments/:payment_id", h.Invoices.RemovePayment)

	suppliers := NewDomainGroup("suppliers", "/suppliers")
	suppliers.GET("", h.Supplier.List)
	suppliers.POST("", h.Supplier.Create)
	suppliers.GET("/:id", h.Supplier.GetByID)

	r.Register(system).
		Register(settings).
		Register(products).
		Register(priceList).
		Register(cart).
		Register(sales).
		Register(invoices).
		Register(suppliers)

	if h.Auth != nil {
		authRoutes := NewDomainGroup("auth", "/auth")
		authRoutes.POST("/logout", h.Auth.Logout)
		r.Register(authRoutes)
	}

	r.Setup()
	return r
}
