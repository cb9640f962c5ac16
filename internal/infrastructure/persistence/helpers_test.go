package persistence

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/retailcore/backend/internal/domain/catalog"
	"github.com/retailcore/backend/internal/domain/pricing"
	"github.com/retailcore/backend/internal/domain/trade"
	"github.com/retailcore/backend/internal/infrastructure/persistence/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestDB opens a private in-memory sqlite database with every table
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(SQLiteDSN(":memory:")), &gorm.Config{
		Logger:  logger.Default.LogMode(logger.Silent),
		NowFunc: func() time.Time { return time.Now().UTC() },
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(models.All()...))
	return db
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func newTestProduct(t *testing.T, sku, name string, stock, minStock int) *catalog.Product {
	t.Helper()
	p, err := catalog.NewProduct(catalog.ProductInput{
		SKU:       sku,
		Name:      name,
		Category:  "General",
		Supplier:  "Acme",
		Stock:     stock,
		MinStock:  minStock,
		Cost:      dec("10"),
		CostBasis: pricing.CostBasisPrimary,
	})
	require.NoError(t, err)
	return p
}

func newTestSale(t *testing.T, number string, at time.Time, paid *decimal.Decimal, lines ...trade.CartLine) *trade.Sale {
	t.Helper()
	if len(lines) == 0 {
		lines = []trade.CartLine{{
			ProductID:     uuid.New(),
			SKU:           "SKU-1",
			Name:          "Widget",
			Quantity:      2,
			UnitCostUSD:   dec("10"),
			FinalPriceUSD: dec("15"),
		}}
	}
	s, err := trade.NewSale(trade.NewSaleInput{
		Number:            number,
		Lines:             lines,
		PaymentMethod:     "CASH",
		InitialPaymentUSD: paid,
		PrimaryRate:       dec("40"),
		At:                at,
	})
	require.NoError(t, err)
	return s
}

func newTestInvoice(t *testing.T, number, supplier string, issue time.Time, due *time.Time) *trade.Invoice {
	t.Helper()
	inv, err := trade.NewInvoice(trade.NewInvoiceInput{
		Number:    number,
		Supplier:  supplier,
		DateIssue: issue,
		DateDue:   due,
		Items: []trade.InvoiceItem{
			{SKU: "abc-1", Name: "Bolt", Quantity: 10, UnitCostUSD: dec("2")},
			{SKU: "abc-2", Name: "Nut", Quantity: 5, UnitCostUSD: dec("1")},
		},
		FreightTotalUSD: dec("5"),
		CostBasis:       pricing.CostBasisPrimary,
	})
	require.NoError(t, err)
	return inv
}
