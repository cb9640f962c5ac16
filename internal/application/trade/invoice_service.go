package trade

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/retailcore/backend/internal/domain/catalog"
	"github.com/retailcore/backend/internal/domain/partner"
	"github.com/retailcore/backend/internal/domain/pricing"
	"github.com/retailcore/backend/internal/domain/shared"
	"github.com/retailcore/backend/internal/domain/trade"
	"go.uber.org/zap"
)

// InvoiceService receives supplier invoices into stock and tracks what is
// owed on them
type InvoiceService struct {
	txScope        TransactionScope
	invoiceRepo    trade.InvoiceRepository
	eventPublisher shared.EventPublisher
	metrics        MetricsRecorder
	logger         *zap.Logger
}

// NewInvoiceService creates a new InvoiceService
func NewInvoiceService(txScope TransactionScope, invoiceRepo trade.InvoiceRepository, logger *zap.Logger) *InvoiceService {
	return &InvoiceService{
		txScope:     txScope,
		invoiceRepo: invoiceRepo,
		metrics:     noopMetrics{},
		logger:      logger,
	}
}

// SetEventPublisher sets the event publisher for cross-context integration
func (s *InvoiceService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// SetMetrics sets the business metrics recorder
func (s *InvoiceService) SetMetrics(metrics MetricsRecorder) {
	if metrics != nil {
		s.metrics = metrics
	}
}

// Receive books a supplier invoice. In one transaction it refuses
// duplicates, lands every line on its product (creating unknown SKUs),
// refreshes the supplier's catalog and records the optional initial payment.
func (s *InvoiceService) Receive(ctx context.Context, req ReceiveInvoiceRequest) (*InvoiceResponse, error) {
	basis, err := pricing.ParseCostBasis(req.CostBasis)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	dateIssue := now
	if req.DateIssue != nil {
		dateIssue = *req.DateIssue
	}

	var invoice *trade.Invoice
	var products []*catalog.Product
	var supplier *partner.Supplier
	err = s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		invoice, err = trade.NewInvoice(trade.NewInvoiceInput{
			Number:          req.Number,
			Supplier:        req.Supplier,
			DateIssue:       dateIssue,
			DateDue:         req.DateDue,
			Items:           toInvoiceItems(req.Items),
			FreightTotalUSD: req.FreightTotalUSD,
			CostBasis:       basis,
		})
		if err != nil {
			return err
		}

		_, err = repos.InvoiceRepo().FindByNumberAndSupplier(ctx, invoice.Number, invoice.Supplier)
		switch {
		case err == nil:
			return shared.NewDomainErrorf(shared.CodeDuplicateInvoice,
				"Invoice %s from %s was already received", invoice.Number, invoice.Supplier)
		case !errors.Is(err, shared.ErrNotFound):
			return err
		}

		products, err = s.receiveItems(ctx, repos.ProductRepo(), invoice)
		if err != nil {
			return err
		}
		if err := repos.ProductRepo().SaveBatch(ctx, products); err != nil {
			return err
		}

		supplier, err = upsertSupplierCatalog(ctx, repos.SupplierRepo(), invoice, now)
		if err != nil {
			return err
		}
		if err := repos.SupplierRepo().Save(ctx, supplier); err != nil {
			return err
		}

		if req.InitialPayment != nil {
			p := req.InitialPayment
			if _, err := invoice.RegisterPayment(p.AmountUSD, p.Method, p.Note, now); err != nil {
				return err
			}
		}
		return repos.InvoiceRepo().Save(ctx, invoice)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("invoice received",
		zap.String("invoice_number", invoice.Number),
		zap.String("supplier", invoice.Supplier),
		zap.Int("lines", len(invoice.Items)),
		zap.String("total_usd", invoice.TotalUSD().StringFixed(2)),
	)
	s.metrics.RecordInvoiceReceived(ctx, invoice.TotalUSD())
	for _, p := range invoice.Ledger.Payments {
		s.metrics.RecordPayment(ctx, "invoice", p.Method, p.AmountUSD)
	}
	aggregates := []shared.AggregateRoot{invoice, supplier}
	for _, p := range products {
		aggregates = append(aggregates, p)
	}
	publishEvents(ctx, s.eventPublisher, s.logger, aggregates...)

	response := ToInvoiceResponse(invoice, now)
	return &response, nil
}

// receiveItems applies each line to the product carrying its SKU. Unknown
// SKUs become new products; repeated SKUs within the invoice land on the
// same product.
func (s *InvoiceService) receiveItems(ctx context.Context, repo catalog.ProductRepository, invoice *trade.Invoice) ([]*catalog.Product, error) {
	unitFreight := invoice.UnitFreight()
	bySKU := make(map[string]*catalog.Product, len(invoice.Items))
	products := make([]*catalog.Product, 0, len(invoice.Items))

	for _, item := range invoice.Items {
		if p, ok := bySKU[item.SKU]; ok {
			if err := p.ApplyReceipt(item.Quantity, item.UnitCostUSD, unitFreight, invoice.CostBasis); err != nil {
				return nil, err
			}
			continue
		}

		p, err := repo.FindBySKU(ctx, item.SKU)
		switch {
		case err == nil:
			if err := p.ApplyReceipt(item.Quantity, item.UnitCostUSD, unitFreight, invoice.CostBasis); err != nil {
				return nil, err
			}
		case errors.Is(err, shared.ErrNotFound):
			minStock := 0
			if item.MinStock != nil {
				minStock = *item.MinStock
			}
			p, err = catalog.NewProduct(catalog.ProductInput{
				SKU:       item.SKU,
				Name:      item.Name,
				Category:  catalog.DefaultCategory,
				Supplier:  invoice.Supplier,
				Stock:     item.Quantity,
				MinStock:  minStock,
				Cost:      item.UnitCostUSD,
				Freight:   unitFreight,
				CostBasis: invoice.CostBasis,
			})
			if err != nil {
				return nil, err
			}
			s.logger.Debug("new product created from invoice",
				zap.String("sku", p.SKU),
				zap.String("invoice_number", invoice.Number),
			)
		default:
			return nil, err
		}
		bySKU[item.SKU] = p
		products = append(products, p)
	}
	return products, nil
}

// upsertSupplierCatalog finds the invoice's supplier by name, creating it
// when unknown, and records the last cost of every SKU on the invoice
func upsertSupplierCatalog(ctx context.Context, repo partner.SupplierRepository, invoice *trade.Invoice, at time.Time) (*partner.Supplier, error) {
	supplier, err := repo.FindByName(ctx, invoice.Supplier)
	if err != nil {
		if !errors.Is(err, shared.ErrNotFound) {
			return nil, err
		}
		supplier, err = partner.NewSupplier(invoice.Supplier)
		if err != nil {
			return nil, err
		}
	}
	for _, item := range invoice.Items {
		supplier.UpsertCatalogEntry(item.SKU, item.Name, item.UnitCostUSD, at)
	}
	return supplier, nil
}

// EditLineItems corrects an invoice's lines and freight. Stock and product
// costs booked at reception are left as they were.
func (s *InvoiceService) EditLineItems(ctx context.Context, invoiceID uuid.UUID, req EditInvoiceItemsRequest) (*InvoiceResponse, error) {
	invoice, err := s.invoiceRepo.FindByID(ctx, invoiceID)
	if err != nil {
		return nil, err
	}
	if err := invoice.EditLineItems(toInvoiceItems(req.Items), req.FreightTotalUSD); err != nil {
		return nil, err
	}
	if err := s.invoiceRepo.Save(ctx, invoice); err != nil {
		return nil, err
	}
	publishEvents(ctx, s.eventPublisher, s.logger, invoice)

	response := ToInvoiceResponse(invoice, time.Now())
	return &response, nil
}

// RegisterPayment pays down an invoice
func (s *InvoiceService) RegisterPayment(ctx context.Context, invoiceID uuid.UUID, req RegisterPaymentRequest) (*InvoiceResponse, error) {
	invoice, err := s.invoiceRepo.FindByID(ctx, invoiceID)
	if err != nil {
		return nil, err
	}
	payment, err := invoice.RegisterPayment(req.AmountUSD, req.Method, req.Note, time.Now())
	if err != nil {
		return nil, err
	}
	if err := s.invoiceRepo.Save(ctx, invoice); err != nil {
		return nil, err
	}

	s.metrics.RecordPayment(ctx, "invoice", payment.Method, payment.AmountUSD)
	publishEvents(ctx, s.eventPublisher, s.logger, invoice)

	response := ToInvoiceResponse(invoice, time.Now())
	return &response, nil
}

// RemovePayment deletes a payment from an invoice's ledger
func (s *InvoiceService) RemovePayment(ctx context.Context, invoiceID, paymentID uuid.UUID) (*InvoiceResponse, error) {
	invoice, err := s.invoiceRepo.FindByID(ctx, invoiceID)
	if err != nil {
		return nil, err
	}
	if _, err := invoice.RemovePayment(paymentID); err != nil {
		return nil, err
	}
	if err := s.invoiceRepo.Save(ctx, invoice); err != nil {
		return nil, err
	}
	publishEvents(ctx, s.eventPublisher, s.logger, invoice)

	response := ToInvoiceResponse(invoice, time.Now())
	return &response, nil
}

// GetByID retrieves an invoice by ID
func (s *InvoiceService) GetByID(ctx context.Context, invoiceID uuid.UUID) (*InvoiceResponse, error) {
	invoice, err := s.invoiceRepo.FindByID(ctx, invoiceID)
	if err != nil {
		return nil, err
	}
	response := ToInvoiceResponse(invoice, time.Now())
	return &response, nil
}

// List retrieves invoices with filtering and pagination
func (s *InvoiceService) List(ctx context.Context, filter InvoiceListFilter) ([]InvoiceResponse, int64, error) {
	domainFilter := shared.Filter{
		Page:     filter.Page,
		PageSize: filter.PageSize,
		OrderBy:  filter.OrderBy,
		OrderDir: filter.OrderDir,
		Filters:  make(map[string]any),
	}
	if domainFilter.OrderBy == "" {
		domainFilter.OrderBy = "date_issue"
	}
	if filter.Supplier != "" {
		domainFilter.Filters[trade.InvoiceFilterSupplier] = filter.Supplier
	}
	if filter.Status != "" {
		domainFilter.Filters[trade.InvoiceFilterStatus] = filter.Status
	}
	if filter.DueBefore != nil {
		domainFilter.Filters[trade.InvoiceFilterDueBefore] = *filter.DueBefore
	}
	domainFilter = domainFilter.Normalize()

	invoices, err := s.invoiceRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.invoiceRepo.Count(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	return ToInvoiceResponses(invoices, time.Now()), total, nil
}

// Payables sums the open debt on invoices
func (s *InvoiceService) Payables(ctx context.Context) (*trade.DebtSummary, error) {
	summary, err := s.invoiceRepo.Payables(ctx)
	if err != nil {
		return nil, err
	}
	return &summary, nil
}

// Overdue lists unpaid invoices past their due date
func (s *InvoiceService) Overdue(ctx context.Context) ([]InvoiceResponse, error) {
	now := time.Now()
	invoices, err := s.invoiceRepo.FindOverdue(ctx, now)
	if err != nil {
		return nil, err
	}
	return ToInvoiceResponses(invoices, now), nil
}
