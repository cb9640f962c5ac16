package trade

import (
	"context"

	"github.com/retailcore/backend/internal/domain/catalog"
	"github.com/retailcore/backend/internal/domain/partner"
	"github.com/retailcore/backend/internal/domain/trade"
)

// TransactionScope provides transactional access to the repositories a
// settlement or a reception touches. If fn returns an error every write made
// through repos is rolled back.
type TransactionScope interface {
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories share one underlying database transaction.
//
// Products own stock, so every stock movement of a sale or an invoice goes
// through ProductRepo inside the same transaction as the sale or invoice
// itself.
type TransactionalRepositories interface {
	ProductRepo() catalog.ProductRepository
	SaleRepo() trade.SaleRepository
	InvoiceRepo() trade.InvoiceRepository
	SupplierRepo() partner.SupplierRepository
}

// NoOpTransactionScope is a transaction scope that doesn't actually use transactions.
// This is useful for testing or when transaction support is not required.
type NoOpTransactionScope struct {
	productRepo  catalog.ProductRepository
	saleRepo     trade.SaleRepository
	invoiceRepo  trade.InvoiceRepository
	supplierRepo partner.SupplierRepository
}

// NewNoOpTransactionScope creates a NoOpTransactionScope with the given repositories.
func NewNoOpTransactionScope(
	productRepo catalog.ProductRepository,
	saleRepo trade.SaleRepository,
	invoiceRepo trade.InvoiceRepository,
	supplierRepo partner.SupplierRepository,
) *NoOpTransactionScope {
	return &NoOpTransactionScope{
		productRepo:  productRepo,
		saleRepo:     saleRepo,
		invoiceRepo:  invoiceRepo,
		supplierRepo: supplierRepo,
	}
}

// Execute runs the function without a real transaction
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

func (s *NoOpTransactionScope) ProductRepo() catalog.ProductRepository   { return s.productRepo }
func (s *NoOpTransactionScope) SaleRepo() trade.SaleRepository           { return s.saleRepo }
func (s *NoOpTransactionScope) InvoiceRepo() trade.InvoiceRepository     { return s.invoiceRepo }
func (s *NoOpTransactionScope) SupplierRepo() partner.SupplierRepository { return s.supplierRepo }
