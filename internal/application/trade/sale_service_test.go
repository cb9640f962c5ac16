package trade

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/retailcore/backend/internal/domain/catalog"
	"github.com/retailcore/backend/internal/domain/finance"
	"github.com/retailcore/backend/internal/domain/shared"
	"github.com/retailcore/backend/internal/domain/shared/valueobject"
	"github.com/retailcore/backend/internal/domain/trade"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type saleFixture struct {
	svc       *SaleService
	scope     *fakeScope
	products  *MockProductRepository
	sales     *MockSaleRepository
	carts     *MockCartStore
	publisher *recordingPublisher
}

func newSaleFixture(t *testing.T) *saleFixture {
	f := &saleFixture{
		products:  new(MockProductRepository),
		sales:     new(MockSaleRepository),
		carts:     new(MockCartStore),
		publisher: &recordingPublisher{},
	}
	f.scope = &fakeScope{NoOpTransactionScope: NewNoOpTransactionScope(
		f.products, f.sales, new(MockInvoiceRepository), new(MockSupplierRepository),
	)}
	f.svc = NewSaleService(f.scope, f.sales, f.carts, scenarioSettings(), zaptest.NewLogger(t))
	f.svc.SetEventPublisher(f.publisher)
	return f
}

func cartWith(t *testing.T, p *catalog.Product, qty int) *trade.Cart {
	t.Helper()
	cart := trade.NewCart("s1")
	_, err := cart.AddLine(p, scenarioSettings().settings)
	require.NoError(t, err)
	require.NoError(t, cart.SetQuantity(p.ID, qty, p.Stock))
	return cart
}

func settledSale(t *testing.T, p *catalog.Product, qty int, initial *decimal.Decimal) *trade.Sale {
	t.Helper()
	s, err := trade.NewSale(trade.NewSaleInput{
		Number:            "S-000001",
		Lines:             cartWith(t, p, qty).Lines,
		PaymentMethod:     finance.MethodCash,
		InitialPaymentUSD: initial,
		PrimaryRate:       decimal.NewFromInt(36),
	})
	require.NoError(t, err)
	s.ClearDomainEvents()
	return s
}

func stockIs(n int) any {
	return mock.MatchedBy(func(ps []*catalog.Product) bool {
		return len(ps) == 1 && ps[0].Stock == n
	})
}

func TestSaleService_Settle(t *testing.T) {
	t.Run("paid in full", func(t *testing.T) {
		f := newSaleFixture(t)
		ctx := shared.WithActor(context.Background(), shared.Actor{UserID: "u1", Username: "ana"})
		p := scenarioProduct(t, 5)
		p.MinStock = 2
		f.carts.On("Get", ctx, "s1").Return(cartWith(t, p, 3), nil)
		f.products.On("FindByIDs", ctx, []uuid.UUID{p.ID}).Return([]catalog.Product{*p}, nil)
		f.products.On("SaveBatch", ctx, stockIs(2)).Return(nil)
		f.sales.On("NextNumber", ctx).Return("S-000001", nil)
		f.sales.On("Save", ctx, mock.AnythingOfType("*trade.Sale")).Return(nil)
		f.carts.On("Delete", ctx, "s1").Return(nil)

		resp, err := f.svc.Settle(ctx, "s1", SettleSaleRequest{PaymentMethod: finance.MethodCash})
		require.NoError(t, err)
		assert.Equal(t, "S-000001", resp.Number)
		assert.Equal(t, "45.24", resp.TotalUSD.StringFixed(2))
		assert.Equal(t, "45.24", resp.PaidAmountUSD.StringFixed(2))
		assert.Equal(t, "1628.64", resp.TotalLocal.StringFixed(2))
		assert.Equal(t, "$45.24", resp.TotalUSDDisplay)
		assert.Equal(t, "Bs. 1.628,64", resp.TotalLocalDisplay)
		assert.Equal(t, "$0.00", resp.RemainingUSDDisplay)
		assert.Equal(t, string(trade.SaleStatusCompleted), resp.Status)
		assert.False(t, resp.IsCredit)
		assert.Len(t, resp.Payments, 1)
		assert.Equal(t, "u1", resp.SellerID)
		assert.Equal(t, "ana", resp.SellerName)
		assert.True(t, f.scope.committed)
		assert.ElementsMatch(t,
			[]string{trade.EventTypeSaleSettled, catalog.EventTypeStockBelowMinimum},
			f.publisher.types())
		f.carts.AssertExpectations(t)
	})

	t.Run("on credit", func(t *testing.T) {
		f := newSaleFixture(t)
		f.svc.SetLocalCurrency("EUR")
		ctx := context.Background()
		p := scenarioProduct(t, 5)
		f.carts.On("Get", ctx, "s1").Return(cartWith(t, p, 3), nil)
		f.products.On("FindByIDs", ctx, mock.Anything).Return([]catalog.Product{*p}, nil)
		f.products.On("SaveBatch", ctx, stockIs(2)).Return(nil)
		f.sales.On("NextNumber", ctx).Return("S-000002", nil)
		f.sales.On("Save", ctx, mock.Anything).Return(nil)
		f.carts.On("Delete", ctx, "s1").Return(nil)

		zero := decimal.Zero
		resp, err := f.svc.Settle(ctx, "s1", SettleSaleRequest{
			PaymentMethod: finance.MethodCredit, ClientID: "c-9", InitialPaymentUSD: &zero,
		})
		require.NoError(t, err)
		assert.Equal(t, string(trade.SaleStatusPending), resp.Status)
		assert.True(t, resp.IsCredit)
		assert.Empty(t, resp.Payments)
		assert.Equal(t, "45.24", resp.RemainingUSD.StringFixed(2))
		assert.Equal(t, "$45.24", resp.RemainingUSDDisplay)
		assert.Equal(t, "c-9", resp.ClientID)
		assert.Equal(t, valueobject.Currency("EUR"), resp.LocalCurrency)
		assert.Equal(t, "€ 1.628,64", resp.TotalLocalDisplay)
	})

	t.Run("stock shortfall writes nothing", func(t *testing.T) {
		f := newSaleFixture(t)
		ctx := context.Background()
		p := scenarioProduct(t, 5)
		cart := cartWith(t, p, 3)
		sold := *p
		sold.Stock = 2
		f.carts.On("Get", ctx, "s1").Return(cart, nil)
		f.products.On("FindByIDs", ctx, mock.Anything).Return([]catalog.Product{sold}, nil)

		_, err := f.svc.Settle(ctx, "s1", SettleSaleRequest{PaymentMethod: finance.MethodCash})
		de, ok := shared.AsDomainError(err)
		require.True(t, ok)
		assert.Equal(t, shared.CodeInsufficientStock, de.Code)
		assert.Equal(t, "Widget", de.Details["product"])
		assert.Equal(t, 3, de.Details["requested"])
		assert.Equal(t, 2, de.Details["available"])
		assert.False(t, f.scope.committed)
		f.products.AssertNotCalled(t, "SaveBatch", mock.Anything, mock.Anything)
		f.sales.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
		f.carts.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
		assert.Empty(t, f.publisher.types())
	})

	t.Run("initial payment above total", func(t *testing.T) {
		f := newSaleFixture(t)
		ctx := context.Background()
		p := scenarioProduct(t, 5)
		f.carts.On("Get", ctx, "s1").Return(cartWith(t, p, 3), nil)
		f.products.On("FindByIDs", ctx, mock.Anything).Return([]catalog.Product{*p}, nil)
		f.sales.On("NextNumber", ctx).Return("S-000003", nil)

		over := decimal.NewFromInt(50)
		_, err := f.svc.Settle(ctx, "s1", SettleSaleRequest{PaymentMethod: finance.MethodCash, InitialPaymentUSD: &over})
		de, ok := shared.AsDomainError(err)
		require.True(t, ok)
		assert.Equal(t, shared.CodeOverpayment, de.Code)
		f.sales.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("empty cart", func(t *testing.T) {
		f := newSaleFixture(t)
		ctx := context.Background()
		f.carts.On("Get", ctx, "s1").Return(trade.NewCart("s1"), nil)

		_, err := f.svc.Settle(ctx, "s1", SettleSaleRequest{PaymentMethod: finance.MethodCash})
		assert.ErrorIs(t, err, shared.ErrEmptyCart)
	})

	t.Run("cart clear failure does not undo the sale", func(t *testing.T) {
		f := newSaleFixture(t)
		ctx := context.Background()
		p := scenarioProduct(t, 5)
		f.carts.On("Get", ctx, "s1").Return(cartWith(t, p, 1), nil)
		f.products.On("FindByIDs", ctx, mock.Anything).Return([]catalog.Product{*p}, nil)
		f.products.On("SaveBatch", ctx, stockIs(4)).Return(nil)
		f.sales.On("NextNumber", ctx).Return("S-000004", nil)
		f.sales.On("Save", ctx, mock.Anything).Return(nil)
		f.carts.On("Delete", ctx, "s1").Return(errors.New("redis down"))

		resp, err := f.svc.Settle(ctx, "s1", SettleSaleRequest{PaymentMethod: finance.MethodCash})
		require.NoError(t, err)
		assert.Equal(t, "S-000004", resp.Number)
	})
}

func TestSaleService_Amend(t *testing.T) {
	ctx := context.Background()

	t.Run("moves stock by the difference and keeps paid and status", func(t *testing.T) {
		f := newSaleFixture(t)
		p := scenarioProduct(t, 5)
		sale := settledSale(t, p, 3, nil)
		p.Stock = 2
		f.sales.On("FindByID", ctx, sale.ID).Return(sale, nil)
		f.products.On("FindByIDs", ctx, []uuid.UUID{p.ID}).Return([]catalog.Product{*p}, nil)
		f.products.On("SaveBatch", ctx, stockIs(0)).Return(nil)
		f.sales.On("Save", ctx, sale).Return(nil)

		resp, err := f.svc.Amend(ctx, sale.ID, AmendSaleRequest{Items: []AmendSaleItemInput{{ProductID: p.ID, Quantity: 5}}})
		require.NoError(t, err)
		assert.Equal(t, "75.40", resp.TotalUSD.StringFixed(2))
		assert.Equal(t, "2714.40", resp.TotalLocal.StringFixed(2))
		// paid amount and status are not recomputed by an amendment
		assert.Equal(t, "45.24", resp.PaidAmountUSD.StringFixed(2))
		assert.Equal(t, string(trade.SaleStatusCompleted), resp.Status)
		assert.Contains(t, f.publisher.types(), trade.EventTypeSaleAmended)
	})

	t.Run("returning units puts them back", func(t *testing.T) {
		f := newSaleFixture(t)
		p := scenarioProduct(t, 5)
		sale := settledSale(t, p, 3, nil)
		p.Stock = 2
		f.sales.On("FindByID", ctx, sale.ID).Return(sale, nil)
		f.products.On("FindByIDs", ctx, mock.Anything).Return([]catalog.Product{*p}, nil)
		f.products.On("SaveBatch", ctx, stockIs(4)).Return(nil)
		f.sales.On("Save", ctx, sale).Return(nil)

		resp, err := f.svc.Amend(ctx, sale.ID, AmendSaleRequest{Items: []AmendSaleItemInput{{ProductID: p.ID, Quantity: 1}}})
		require.NoError(t, err)
		assert.Equal(t, "15.08", resp.TotalUSD.StringFixed(2))
	})

	t.Run("shortfall rejects the whole amendment", func(t *testing.T) {
		f := newSaleFixture(t)
		p := scenarioProduct(t, 5)
		sale := settledSale(t, p, 3, nil)
		p.Stock = 2
		f.sales.On("FindByID", ctx, sale.ID).Return(sale, nil)
		f.products.On("FindByIDs", ctx, mock.Anything).Return([]catalog.Product{*p}, nil)

		_, err := f.svc.Amend(ctx, sale.ID, AmendSaleRequest{Items: []AmendSaleItemInput{{ProductID: p.ID, Quantity: 6}}})
		de, ok := shared.AsDomainError(err)
		require.True(t, ok)
		assert.Equal(t, shared.CodeInsufficientStock, de.Code)
		assert.Equal(t, 5, de.Details["available"])
		assert.Equal(t, 3, sale.Items[0].Quantity)
		f.sales.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("cancelled sale", func(t *testing.T) {
		f := newSaleFixture(t)
		p := scenarioProduct(t, 5)
		sale := settledSale(t, p, 3, nil)
		sale.Cancel("", sale.Date)
		f.sales.On("FindByID", ctx, sale.ID).Return(sale, nil)

		_, err := f.svc.Amend(ctx, sale.ID, AmendSaleRequest{Items: []AmendSaleItemInput{{ProductID: p.ID, Quantity: 1}}})
		de, ok := shared.AsDomainError(err)
		require.True(t, ok)
		assert.Equal(t, shared.CodeSaleCancelled, de.Code)
	})

	t.Run("explicit price overrides the stored one", func(t *testing.T) {
		f := newSaleFixture(t)
		p := scenarioProduct(t, 5)
		sale := settledSale(t, p, 1, nil)
		f.sales.On("FindByID", ctx, sale.ID).Return(sale, nil)
		f.products.On("FindByIDs", ctx, mock.Anything).Return([]catalog.Product{*p}, nil)
		f.sales.On("Save", ctx, sale).Return(nil)

		price := decimal.RequireFromString("12.5")
		resp, err := f.svc.Amend(ctx, sale.ID, AmendSaleRequest{Items: []AmendSaleItemInput{{ProductID: p.ID, Quantity: 1, UnitPriceUSD: &price}}})
		require.NoError(t, err)
		assert.Equal(t, "12.50", resp.TotalUSD.StringFixed(2))
		f.products.AssertNotCalled(t, "SaveBatch", mock.Anything, mock.Anything)
	})
}

func TestSaleService_Cancel(t *testing.T) {
	ctx := context.Background()

	t.Run("restores stock", func(t *testing.T) {
		f := newSaleFixture(t)
		p := scenarioProduct(t, 5)
		sale := settledSale(t, p, 3, nil)
		p.Stock = 2
		f.sales.On("FindByID", ctx, sale.ID).Return(sale, nil)
		f.products.On("FindByIDs", ctx, []uuid.UUID{p.ID}).Return([]catalog.Product{*p}, nil)
		f.products.On("SaveBatch", ctx, stockIs(5)).Return(nil)
		f.sales.On("Save", ctx, sale).Return(nil)

		resp, err := f.svc.Cancel(ctx, sale.ID, CancelSaleRequest{Reason: "customer returned"})
		require.NoError(t, err)
		assert.Equal(t, string(trade.SaleStatusCancelled), resp.Status)
		assert.Equal(t, "customer returned", resp.CancelReason)
		assert.NotNil(t, resp.CancelledAt)
		assert.Contains(t, f.publisher.types(), trade.EventTypeSaleCancelled)
	})

	t.Run("second cancel is a no-op", func(t *testing.T) {
		f := newSaleFixture(t)
		p := scenarioProduct(t, 5)
		sale := settledSale(t, p, 3, nil)
		sale.Cancel("first", sale.Date)
		sale.ClearDomainEvents()
		f.sales.On("FindByID", ctx, sale.ID).Return(sale, nil)

		resp, err := f.svc.Cancel(ctx, sale.ID, CancelSaleRequest{Reason: "second"})
		require.NoError(t, err)
		assert.Equal(t, "first", resp.CancelReason)
		f.products.AssertNotCalled(t, "FindByIDs", mock.Anything, mock.Anything)
		f.sales.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
		assert.Empty(t, f.publisher.types())
	})
}

func TestSaleService_Payments(t *testing.T) {
	ctx := context.Background()

	t.Run("partial then overpayment is rejected", func(t *testing.T) {
		f := newSaleFixture(t)
		p := scenarioProduct(t, 5)
		zero := decimal.Zero
		sale := settledSale(t, p, 3, &zero)
		f.sales.On("FindByID", ctx, sale.ID).Return(sale, nil)
		f.sales.On("Save", ctx, sale).Return(nil)

		resp, err := f.svc.RegisterPayment(ctx, sale.ID, RegisterPaymentRequest{
			AmountUSD: decimal.NewFromInt(20), Method: finance.MethodTransfer,
		})
		require.NoError(t, err)
		assert.Equal(t, string(trade.SaleStatusPartial), resp.Status)
		assert.Equal(t, "25.24", resp.RemainingUSD.StringFixed(2))

		_, err = f.svc.RegisterPayment(ctx, sale.ID, RegisterPaymentRequest{
			AmountUSD: decimal.NewFromInt(30), Method: finance.MethodCash,
		})
		de, ok := shared.AsDomainError(err)
		require.True(t, ok)
		assert.Equal(t, shared.CodeOverpayment, de.Code)
		assert.Equal(t, "20.00", sale.PaidAmountUSD().StringFixed(2))
		assert.Equal(t, trade.SaleStatusPartial, sale.Status)
		f.sales.AssertNumberOfCalls(t, "Save", 1)
	})

	t.Run("cancelled sale takes no payments", func(t *testing.T) {
		f := newSaleFixture(t)
		p := scenarioProduct(t, 5)
		zero := decimal.Zero
		sale := settledSale(t, p, 1, &zero)
		sale.Cancel("", sale.Date)
		f.sales.On("FindByID", ctx, sale.ID).Return(sale, nil)

		_, err := f.svc.RegisterPayment(ctx, sale.ID, RegisterPaymentRequest{
			AmountUSD: decimal.NewFromInt(1), Method: finance.MethodCash,
		})
		de, ok := shared.AsDomainError(err)
		require.True(t, ok)
		assert.Equal(t, shared.CodeSaleCancelled, de.Code)
	})

	t.Run("remove payment reopens the debt", func(t *testing.T) {
		f := newSaleFixture(t)
		p := scenarioProduct(t, 5)
		sale := settledSale(t, p, 3, nil)
		paymentID := sale.Ledger.Payments[0].ID
		f.sales.On("FindByID", ctx, sale.ID).Return(sale, nil)
		f.sales.On("Save", ctx, sale).Return(nil)

		resp, err := f.svc.RemovePayment(ctx, sale.ID, paymentID)
		require.NoError(t, err)
		assert.Equal(t, string(trade.SaleStatusPending), resp.Status)
		assert.True(t, resp.PaidAmountUSD.IsZero())

		_, err = f.svc.RemovePayment(ctx, sale.ID, paymentID)
		de, ok := shared.AsDomainError(err)
		require.True(t, ok)
		assert.Equal(t, shared.CodePaymentNotFound, de.Code)
	})
}

func TestSaleService_Queries(t *testing.T) {
	ctx := context.Background()
	f := newSaleFixture(t)
	p := scenarioProduct(t, 5)
	sale := settledSale(t, p, 2, nil)

	f.sales.On("FindAll", ctx, mock.MatchedBy(func(flt shared.Filter) bool {
		return flt.Filters[trade.SaleFilterCreditOnly] == true && flt.OrderBy == "date" && flt.PageSize == 20
	})).Return([]trade.Sale{*sale}, nil)
	f.sales.On("Count", ctx, mock.Anything).Return(int64(1), nil)
	f.sales.On("Receivables", ctx).Return(trade.DebtSummary{Count: 1, OutstandingUSD: decimal.NewFromInt(5)}, nil)
	f.sales.On("FindByID", ctx, sale.ID).Return(sale, nil)

	list, total, err := f.svc.List(ctx, SaleListFilter{CreditOnly: true})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Len(t, list, 1)

	summary, err := f.svc.Receivables(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), summary.Count)

	got, err := f.svc.GetByID(ctx, sale.ID)
	require.NoError(t, err)
	assert.Equal(t, sale.Number, got.Number)
}
