package trade

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/retailcore/backend/internal/domain/catalog"
	"github.com/retailcore/backend/internal/domain/pricing"
	"github.com/retailcore/backend/internal/domain/shared"
	"github.com/retailcore/backend/internal/domain/shared/valueobject"
	"github.com/retailcore/backend/internal/domain/trade"
	"go.uber.org/zap"
)

// SaleService settles carts into sales and maintains them afterwards.
// Every operation that moves stock runs inside one transaction together
// with the sale it belongs to.
type SaleService struct {
	txScope        TransactionScope
	saleRepo       trade.SaleRepository
	carts          CartStore
	settings       SettingsProvider
	eventPublisher shared.EventPublisher
	metrics        MetricsRecorder
	display        valueobject.Formatter
	logger         *zap.Logger
}

// NewSaleService creates a new SaleService
func NewSaleService(
	txScope TransactionScope,
	saleRepo trade.SaleRepository,
	carts CartStore,
	settings SettingsProvider,
	logger *zap.Logger,
) *SaleService {
	return &SaleService{
		txScope:  txScope,
		saleRepo: saleRepo,
		carts:    carts,
		settings: settings,
		metrics:  noopMetrics{},
		logger:   logger,
	}
}

// SetEventPublisher sets the event publisher for cross-context integration
func (s *SaleService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// SetLocalCurrency sets the currency local totals are displayed in
func (s *SaleService) SetLocalCurrency(c valueobject.Currency) {
	s.display = valueobject.NewFormatter(c)
}

// SetMetrics sets the business metrics recorder
func (s *SaleService) SetMetrics(metrics MetricsRecorder) {
	if metrics != nil {
		s.metrics = metrics
	}
}

// Settle turns the session's cart into a sale. Stock is re-validated against
// freshly loaded products; on any shortfall nothing is written. The cart is
// cleared only after the sale is committed.
func (s *SaleService) Settle(ctx context.Context, sessionID string, req SettleSaleRequest) (*SaleResponse, error) {
	sessionID, err := normalizeSession(sessionID)
	if err != nil {
		return nil, err
	}
	cart, err := s.carts.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if cart.IsEmpty() {
		return nil, shared.ErrEmptyCart
	}
	settings, err := s.settings.Current(ctx)
	if err != nil {
		return nil, err
	}
	primaryRate, _ := pricing.EffectiveRates(settings)

	var sale *trade.Sale
	var products []*catalog.Product
	err = s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		requested := make(map[uuid.UUID]int, len(cart.Lines))
		order := make([]uuid.UUID, 0, len(cart.Lines))
		for _, line := range cart.Lines {
			if _, seen := requested[line.ProductID]; !seen {
				order = append(order, line.ProductID)
			}
			requested[line.ProductID] += line.Quantity
		}

		loaded, err := loadProducts(ctx, repos.ProductRepo(), order)
		if err != nil {
			return err
		}
		for _, id := range order {
			p := loaded[id]
			if !p.HasStock(requested[id]) {
				return shared.NewInsufficientStockError(p.Name, requested[id], p.Stock)
			}
		}
		for _, id := range order {
			p := loaded[id]
			if err := p.DecreaseStock(requested[id]); err != nil {
				return err
			}
			products = append(products, p)
		}

		number, err := repos.SaleRepo().NextNumber(ctx)
		if err != nil {
			return err
		}
		sale, err = trade.NewSale(trade.NewSaleInput{
			Number:            number,
			Lines:             cart.Lines,
			PaymentMethod:     req.PaymentMethod,
			ClientID:          req.ClientID,
			InitialPaymentUSD: req.InitialPaymentUSD,
			PrimaryRate:       primaryRate,
			Actor:             shared.ActorFromContext(ctx),
			At:                time.Now(),
		})
		if err != nil {
			return err
		}

		if err := repos.ProductRepo().SaveBatch(ctx, products); err != nil {
			return err
		}
		return repos.SaleRepo().Save(ctx, sale)
	})
	if err != nil {
		return nil, err
	}

	if err := s.carts.Delete(ctx, sessionID); err != nil {
		s.logger.Warn("sale settled but cart could not be cleared",
			zap.String("session_id", sessionID),
			zap.String("sale_number", sale.Number),
			zap.Error(err),
		)
	}

	s.logger.Info("sale settled",
		zap.String("sale_number", sale.Number),
		zap.String("total_usd", sale.TotalUSD().StringFixed(2)),
		zap.String("status", string(sale.Status)),
		zap.String("seller", sale.SellerName),
	)
	s.metrics.RecordSaleSettled(ctx, sale.PaymentMethod, sale.TotalUSD(), sale.IsCredit())
	for _, p := range sale.Ledger.Payments {
		s.metrics.RecordPayment(ctx, "sale", p.Method, p.AmountUSD)
	}
	s.publish(ctx, sale, products)

	response := ToSaleResponse(sale, s.display)
	return &response, nil
}

// Amend replaces the items of a sale and moves stock by the difference
// between the old and the new quantities. The paid amount and the status
// are not recomputed.
func (s *SaleService) Amend(ctx context.Context, saleID uuid.UUID, req AmendSaleRequest) (*SaleResponse, error) {
	settings, err := s.settings.Current(ctx)
	if err != nil {
		return nil, err
	}

	var sale *trade.Sale
	var products []*catalog.Product
	err = s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		sale, err = repos.SaleRepo().FindByID(ctx, saleID)
		if err != nil {
			return err
		}
		if sale.IsCancelled() {
			return shared.NewDomainErrorf(shared.CodeSaleCancelled, "Sale %s is cancelled", sale.Number)
		}

		previous := sale.Items.QuantitiesByProduct()
		next := make(map[uuid.UUID]int, len(req.Items))
		ids := make([]uuid.UUID, 0, len(previous)+len(req.Items))
		for _, it := range sale.Items {
			if _, seen := next[it.ProductID]; !seen {
				next[it.ProductID] = 0
				ids = append(ids, it.ProductID)
			}
		}
		for _, it := range req.Items {
			if _, seen := next[it.ProductID]; !seen {
				ids = append(ids, it.ProductID)
			}
			next[it.ProductID] += it.Quantity
		}

		loaded, err := loadProducts(ctx, repos.ProductRepo(), ids)
		if err != nil {
			return err
		}
		for _, id := range ids {
			p := loaded[id]
			available := p.Stock + previous[id]
			if next[id] > available {
				return shared.NewInsufficientStockError(p.Name, next[id], available)
			}
		}
		for _, id := range ids {
			p := loaded[id]
			delta := previous[id] - next[id]
			switch {
			case delta > 0:
				err = p.IncreaseStock(delta)
			case delta < 0:
				err = p.DecreaseStock(-delta)
			default:
				continue
			}
			if err != nil {
				return err
			}
			products = append(products, p)
		}

		items := make([]trade.SaleItem, 0, len(req.Items))
		for _, in := range req.Items {
			items = append(items, amendedItem(sale, loaded[in.ProductID], in, settings))
		}
		if err := sale.Amend(items); err != nil {
			return err
		}

		if len(products) > 0 {
			if err := repos.ProductRepo().SaveBatch(ctx, products); err != nil {
				return err
			}
		}
		return repos.SaleRepo().Save(ctx, sale)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("sale amended",
		zap.String("sale_number", sale.Number),
		zap.String("total_usd", sale.TotalUSD().StringFixed(2)),
	)
	s.publish(ctx, sale, products)

	response := ToSaleResponse(sale, s.display)
	return &response, nil
}

// Cancel restores every line's quantity to stock and marks the sale
// cancelled. Cancelling a cancelled sale returns it unchanged.
func (s *SaleService) Cancel(ctx context.Context, saleID uuid.UUID, req CancelSaleRequest) (*SaleResponse, error) {
	var sale *trade.Sale
	var products []*catalog.Product
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		sale, err = repos.SaleRepo().FindByID(ctx, saleID)
		if err != nil {
			return err
		}
		if sale.IsCancelled() {
			return nil
		}

		quantities := sale.Items.QuantitiesByProduct()
		ids := make([]uuid.UUID, 0, len(sale.Items))
		for _, it := range sale.Items {
			ids = append(ids, it.ProductID)
		}
		ids = uniqueIDs(ids)
		loaded, err := loadProducts(ctx, repos.ProductRepo(), ids)
		if err != nil {
			return err
		}
		for _, id := range ids {
			p := loaded[id]
			if err := p.IncreaseStock(quantities[id]); err != nil {
				return err
			}
			products = append(products, p)
		}

		sale.Cancel(req.Reason, time.Now())
		if err := repos.ProductRepo().SaveBatch(ctx, products); err != nil {
			return err
		}
		return repos.SaleRepo().Save(ctx, sale)
	})
	if err != nil {
		return nil, err
	}

	if len(products) > 0 {
		s.logger.Info("sale cancelled",
			zap.String("sale_number", sale.Number),
			zap.String("reason", sale.CancelReason),
		)
	}
	s.publish(ctx, sale, products)

	response := ToSaleResponse(sale, s.display)
	return &response, nil
}

// RegisterPayment pays down a sale's debt
func (s *SaleService) RegisterPayment(ctx context.Context, saleID uuid.UUID, req RegisterPaymentRequest) (*SaleResponse, error) {
	sale, err := s.saleRepo.FindByID(ctx, saleID)
	if err != nil {
		return nil, err
	}
	payment, err := sale.RegisterPayment(req.AmountUSD, req.Method, req.Note, time.Now())
	if err != nil {
		return nil, err
	}
	if err := s.saleRepo.Save(ctx, sale); err != nil {
		return nil, err
	}

	s.metrics.RecordPayment(ctx, "sale", payment.Method, payment.AmountUSD)
	s.publish(ctx, sale, nil)

	response := ToSaleResponse(sale, s.display)
	return &response, nil
}

// RemovePayment deletes a payment from a sale's ledger
func (s *SaleService) RemovePayment(ctx context.Context, saleID, paymentID uuid.UUID) (*SaleResponse, error) {
	sale, err := s.saleRepo.FindByID(ctx, saleID)
	if err != nil {
		return nil, err
	}
	if _, err := sale.RemovePayment(paymentID); err != nil {
		return nil, err
	}
	if err := s.saleRepo.Save(ctx, sale); err != nil {
		return nil, err
	}
	s.publish(ctx, sale, nil)

	response := ToSaleResponse(sale, s.display)
	return &response, nil
}

// GetByID retrieves a sale by ID
func (s *SaleService) GetByID(ctx context.Context, saleID uuid.UUID) (*SaleResponse, error) {
	sale, err := s.saleRepo.FindByID(ctx, saleID)
	if err != nil {
		return nil, err
	}
	response := ToSaleResponse(sale, s.display)
	return &response, nil
}

// List retrieves sales with filtering and pagination
func (s *SaleService) List(ctx context.Context, filter SaleListFilter) ([]SaleResponse, int64, error) {
	domainFilter := shared.Filter{
		Page:     filter.Page,
		PageSize: filter.PageSize,
		OrderBy:  filter.OrderBy,
		OrderDir: filter.OrderDir,
		Filters:  make(map[string]any),
	}
	if domainFilter.OrderBy == "" {
		domainFilter.OrderBy = "date"
	}
	if filter.Status != "" {
		domainFilter.Filters[trade.SaleFilterStatus] = filter.Status
	}
	if filter.ClientID != "" {
		domainFilter.Filters[trade.SaleFilterClientID] = filter.ClientID
	}
	if filter.CreditOnly {
		domainFilter.Filters[trade.SaleFilterCreditOnly] = true
	}
	if filter.From != nil {
		domainFilter.Filters[trade.SaleFilterFrom] = *filter.From
	}
	if filter.To != nil {
		domainFilter.Filters[trade.SaleFilterTo] = *filter.To
	}
	domainFilter = domainFilter.Normalize()

	sales, err := s.saleRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.saleRepo.Count(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	return ToSaleResponses(sales, s.display), total, nil
}

// Receivables sums the open debt of sales that are not cancelled
func (s *SaleService) Receivables(ctx context.Context) (*trade.DebtSummary, error) {
	summary, err := s.saleRepo.Receivables(ctx)
	if err != nil {
		return nil, err
	}
	return &summary, nil
}

func (s *SaleService) publish(ctx context.Context, sale *trade.Sale, products []*catalog.Product) {
	aggregates := make([]shared.AggregateRoot, 0, len(products)+1)
	aggregates = append(aggregates, sale)
	for _, p := range products {
		aggregates = append(aggregates, p)
	}
	publishEvents(ctx, s.eventPublisher, s.logger, aggregates...)
}

// amendedItem keeps the price and cost already on the sale for a product
// unless a new price is given; products new to the sale are priced now.
func amendedItem(sale *trade.Sale, p *catalog.Product, in AmendSaleItemInput, settings pricing.Settings) trade.SaleItem {
	item := trade.SaleItem{
		ProductID: p.ID,
		SKU:       p.SKU,
		Name:      p.Name,
		Quantity:  in.Quantity,
	}
	found := false
	for _, existing := range sale.Items {
		if existing.ProductID == p.ID {
			item.UnitPriceUSD = existing.UnitPriceUSD
			item.UnitCostUSD = existing.UnitCostUSD
			found = true
			break
		}
	}
	if !found {
		prices := p.Price(settings)
		item.UnitPriceUSD = valueobject.Round2(prices.FinalPriceUSD)
		item.UnitCostUSD = valueobject.Round2(prices.BaseCostUSD)
	}
	if in.UnitPriceUSD != nil {
		item.UnitPriceUSD = valueobject.Round2(*in.UnitPriceUSD)
	}
	return item
}

// loadProducts fetches products by id and fails on the first missing one
func loadProducts(ctx context.Context, repo catalog.ProductRepository, ids []uuid.UUID) (map[uuid.UUID]*catalog.Product, error) {
	found, err := repo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[uuid.UUID]*catalog.Product, len(found))
	for i := range found {
		byID[found[i].ID] = &found[i]
	}
	for _, id := range ids {
		if _, ok := byID[id]; !ok {
			return nil, shared.NewDomainErrorf(shared.CodeNotFound, "Product %s not found", id)
		}
	}
	return byID, nil
}

func uniqueIDs(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := ids[:0]
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
