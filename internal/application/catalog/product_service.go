package catalog

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/retailcore/backend/internal/domain/catalog"
	"github.com/retailcore/backend/internal/domain/pricing"
	"github.com/retailcore/backend/internal/domain/shared"
	"github.com/retailcore/backend/internal/domain/shared/valueobject"
	"github.com/retailcore/backend/internal/domain/trade"
)

// SettingsProvider returns the pricing settings in force
type SettingsProvider interface {
	Current(ctx context.Context) (pricing.Settings, error)
}

// ReferenceChecker tells whether sales or invoices still point at a product
type ReferenceChecker interface {
	IsReferenced(ctx context.Context, product *catalog.Product) (bool, error)
}

// ProductService handles product-related business operations
type ProductService struct {
	productRepo    catalog.ProductRepository
	settings       SettingsProvider
	references     ReferenceChecker
	eventPublisher shared.EventPublisher
	display        valueobject.Formatter
}

// NewProductService creates a new ProductService
func NewProductService(
	productRepo catalog.ProductRepository,
	settings SettingsProvider,
	references ReferenceChecker,
) *ProductService {
	return &ProductService{
		productRepo: productRepo,
		settings:    settings,
		references:  references,
	}
}

// SetEventPublisher sets the event publisher for cross-context integration
func (s *ProductService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// SetLocalCurrency sets the currency local prices are displayed in
func (s *ProductService) SetLocalCurrency(c valueobject.Currency) {
	s.display = valueobject.NewFormatter(c)
}

// Create creates a new product
func (s *ProductService) Create(ctx context.Context, req CreateProductRequest) (*ProductResponse, error) {
	basis, err := pricing.ParseCostBasis(req.CostBasis)
	if err != nil {
		return nil, err
	}
	product, err := catalog.NewProduct(catalog.ProductInput{
		SKU:                 req.SKU,
		Name:                req.Name,
		Category:            req.Category,
		Supplier:            req.Supplier,
		Stock:               req.Stock,
		MinStock:            req.MinStock,
		Cost:                req.Cost,
		Freight:             req.Freight,
		CostBasis:           basis,
		CustomMarginPercent: req.CustomMarginPercent,
		CustomVatPercent:    req.CustomVatPercent,
	})
	if err != nil {
		return nil, err
	}

	if err := s.productRepo.Save(ctx, product); err != nil {
		return nil, err
	}
	s.publish(ctx, product)

	return s.respond(ctx, product)
}

// GetByID retrieves a product by ID
func (s *ProductService) GetByID(ctx context.Context, id uuid.UUID) (*ProductResponse, error) {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.respond(ctx, product)
}

// GetBySKU retrieves the first product carrying a SKU
func (s *ProductService) GetBySKU(ctx context.Context, sku string) (*ProductResponse, error) {
	product, err := s.productRepo.FindBySKU(ctx, catalog.NormalizeSKU(sku))
	if err != nil {
		return nil, err
	}
	return s.respond(ctx, product)
}

// List retrieves a list of products with filtering and pagination
func (s *ProductService) List(ctx context.Context, filter ProductListFilter) ([]ProductResponse, int64, error) {
	domainFilter := toDomainFilter(filter)

	products, err := s.productRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.productRepo.Count(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	settings, err := s.settings.Current(ctx)
	if err != nil {
		return nil, 0, err
	}
	return ToProductResponses(products, settings, s.display), total, nil
}

// Update updates the editable fields of a product
func (s *ProductService) Update(ctx context.Context, id uuid.UUID, req UpdateProductRequest) (*ProductResponse, error) {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	basis, err := pricing.ParseCostBasis(req.CostBasis)
	if err != nil {
		return nil, err
	}

	if err := product.Update(catalog.ProductInput{
		SKU:                 req.SKU,
		Name:                req.Name,
		Category:            req.Category,
		Supplier:            req.Supplier,
		MinStock:            req.MinStock,
		Cost:                req.Cost,
		Freight:             req.Freight,
		CostBasis:           basis,
		CustomMarginPercent: req.CustomMarginPercent,
		CustomVatPercent:    req.CustomVatPercent,
	}); err != nil {
		return nil, err
	}

	if err := s.productRepo.Save(ctx, product); err != nil {
		return nil, err
	}
	return s.respond(ctx, product)
}

// Delete removes a product that no sale or invoice refers to
func (s *ProductService) Delete(ctx context.Context, id uuid.UUID) error {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}

	referenced, err := s.references.IsReferenced(ctx, product)
	if err != nil {
		return err
	}
	if referenced {
		return shared.NewDomainErrorf(shared.CodeProductInUse,
			"Product %s is referenced by sales or invoices and cannot be deleted", product.SKU)
	}
	return s.productRepo.Delete(ctx, id)
}

// Quote returns the full price breakdown of a product
func (s *ProductService) Quote(ctx context.Context, id uuid.UUID) (*pricing.Breakdown, error) {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	settings, err := s.settings.Current(ctx)
	if err != nil {
		return nil, err
	}
	breakdown := product.Price(settings)
	return &breakdown, nil
}

// PriceList prices the listed products at the current settings
func (s *ProductService) PriceList(ctx context.Context, filter ProductListFilter) ([]PriceListItem, int64, error) {
	domainFilter := toDomainFilter(filter)

	products, err := s.productRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.productRepo.Count(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	settings, err := s.settings.Current(ctx)
	if err != nil {
		return nil, 0, err
	}

	items := make([]PriceListItem, len(products))
	for i := range products {
		items[i] = ToPriceListItem(&products[i], products[i].Price(settings), s.display)
	}
	return items, total, nil
}

// LowStock lists products at or below their reorder threshold
func (s *ProductService) LowStock(ctx context.Context) ([]ProductResponse, error) {
	products, err := s.productRepo.FindLowStock(ctx)
	if err != nil {
		return nil, err
	}
	settings, err := s.settings.Current(ctx)
	if err != nil {
		return nil, err
	}
	return ToProductResponses(products, settings, s.display), nil
}

func (s *ProductService) respond(ctx context.Context, product *catalog.Product) (*ProductResponse, error) {
	settings, err := s.settings.Current(ctx)
	if err != nil {
		return nil, err
	}
	resp := ToProductResponse(product, product.Price(settings), s.display)
	return &resp, nil
}

func (s *ProductService) publish(ctx context.Context, product *catalog.Product) {
	if s.eventPublisher == nil {
		return
	}
	// Publish failures don't fail the operation; the bus logs them
	_ = s.eventPublisher.Publish(ctx, product.GetDomainEvents()...)
	product.ClearDomainEvents()
}

func toDomainFilter(filter ProductListFilter) shared.Filter {
	domainFilter := shared.Filter{
		Page:     filter.Page,
		PageSize: filter.PageSize,
		OrderBy:  filter.OrderBy,
		OrderDir: filter.OrderDir,
		Search:   strings.TrimSpace(filter.Search),
		Filters:  make(map[string]any),
	}
	if domainFilter.OrderBy == "" {
		domainFilter.OrderBy = "name"
		if domainFilter.OrderDir == "" {
			domainFilter.OrderDir = "asc"
		}
	}
	if filter.Category != "" {
		domainFilter.Filters[catalog.FilterCategory] = filter.Category
	}
	if filter.LowStock {
		domainFilter.Filters[catalog.FilterLowStock] = true
	}
	return domainFilter.Normalize()
}

// TradeReferenceChecker looks a product up in sale items by id and in
// invoice items by SKU
type TradeReferenceChecker struct {
	sales    trade.SaleRepository
	invoices trade.InvoiceRepository
}

// NewTradeReferenceChecker creates a TradeReferenceChecker
func NewTradeReferenceChecker(sales trade.SaleRepository, invoices trade.InvoiceRepository) *TradeReferenceChecker {
	return &TradeReferenceChecker{sales: sales, invoices: invoices}
}

// IsReferenced implements ReferenceChecker
func (c *TradeReferenceChecker) IsReferenced(ctx context.Context, product *catalog.Product) (bool, error) {
	inSales, err := c.sales.ExistsForProduct(ctx, product.ID)
	if err != nil || inSales {
		return inSales, err
	}
	return c.invoices.ExistsForSKU(ctx, product.SKU)
}
