package catalog

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/retailcore/backend/internal/domain/catalog"
	"github.com/retailcore/backend/internal/domain/pricing"
	"github.com/retailcore/backend/internal/domain/shared"
	"github.com/retailcore/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockProductRepository is a mock implementation of ProductRepository
type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Product), args.Error(1)
}

func (m *MockProductRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]catalog.Product, error) {
	args := m.Called(ctx, ids)
	return args.Get(0).([]catalog.Product), args.Error(1)
}

func (m *MockProductRepository) FindBySKU(ctx context.Context, sku string) (*catalog.Product, error) {
	args := m.Called(ctx, sku)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Product), args.Error(1)
}

func (m *MockProductRepository) FindAll(ctx context.Context, filter shared.Filter) ([]catalog.Product, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]catalog.Product), args.Error(1)
}

func (m *MockProductRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockProductRepository) FindLowStock(ctx context.Context) ([]catalog.Product, error) {
	args := m.Called(ctx)
	return args.Get(0).([]catalog.Product), args.Error(1)
}

func (m *MockProductRepository) Save(ctx context.Context, product *catalog.Product) error {
	args := m.Called(ctx, product)
	return args.Error(0)
}

func (m *MockProductRepository) SaveBatch(ctx context.Context, products []*catalog.Product) error {
	args := m.Called(ctx, products)
	return args.Error(0)
}

func (m *MockProductRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockReferenceChecker is a mock implementation of ReferenceChecker
type MockReferenceChecker struct {
	mock.Mock
}

func (m *MockReferenceChecker) IsReferenced(ctx context.Context, product *catalog.Product) (bool, error) {
	args := m.Called(ctx, product)
	return args.Bool(0), args.Error(1)
}

type fixedSettings struct {
	settings pricing.Settings
}

func (f fixedSettings) Current(context.Context) (pricing.Settings, error) {
	return f.settings, nil
}

func testSettings() fixedSettings {
	return fixedSettings{settings: pricing.Settings{
		ExchangeRatePrimary:   decimal.NewFromInt(36),
		ExchangeRateSecondary: decimal.NewFromInt(40),
		DefaultMarginPercent:  decimal.NewFromInt(30),
		DefaultVatPercent:     decimal.NewFromInt(16),
	}}
}

func newTestProduct(t *testing.T) *catalog.Product {
	t.Helper()
	p, err := catalog.NewProduct(catalog.ProductInput{
		SKU:      "abc-1",
		Name:     "Widget",
		Stock:    10,
		MinStock: 2,
		Cost:     decimal.NewFromInt(10),
	})
	require.NoError(t, err)
	return p
}

func setupProductService() (*ProductService, *MockProductRepository, *MockReferenceChecker) {
	repo := new(MockProductRepository)
	refs := new(MockReferenceChecker)
	return NewProductService(repo, testSettings(), refs), repo, refs
}

func TestProductService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("creates and prices a product", func(t *testing.T) {
		svc, repo, _ := setupProductService()
		repo.On("Save", ctx, mock.AnythingOfType("*catalog.Product")).Return(nil)

		resp, err := svc.Create(ctx, CreateProductRequest{
			SKU:   " abc-1 ",
			Name:  "Widget",
			Stock: 5,
			Cost:  decimal.NewFromInt(10),
		})
		require.NoError(t, err)
		assert.Equal(t, "ABC-1", resp.SKU)
		assert.Equal(t, catalog.DefaultCategory, resp.Category)
		assert.Equal(t, string(pricing.CostBasisPrimary), resp.CostBasis)
		assert.Equal(t, "15.08", resp.Prices.FinalPriceUSD.StringFixed(2))
		assert.Equal(t, "542.88", resp.Prices.PriceLocalPrimary.StringFixed(2))
		assert.Equal(t, valueobject.VES, resp.LocalCurrency)
		assert.Equal(t, "$15.08", resp.FinalPriceDisplay)
		assert.Equal(t, "Bs. 542,88", resp.PriceLocalPrimaryDisplay)
		assert.Equal(t, "Bs. 603,20", resp.PriceLocalSecondaryDisplay)
		repo.AssertExpectations(t)
	})

	t.Run("rejects negative cost", func(t *testing.T) {
		svc, repo, _ := setupProductService()

		_, err := svc.Create(ctx, CreateProductRequest{SKU: "X", Name: "X", Cost: decimal.NewFromInt(-1)})
		assert.ErrorIs(t, err, shared.ErrInvalidInput)
		repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("rejects unknown cost basis", func(t *testing.T) {
		svc, _, _ := setupProductService()

		_, err := svc.Create(ctx, CreateProductRequest{SKU: "X", Name: "X", CostBasis: "EURO"})
		assert.ErrorIs(t, err, shared.ErrInvalidInput)
	})
}

func TestProductService_Update(t *testing.T) {
	ctx := context.Background()
	svc, repo, _ := setupProductService()
	product := newTestProduct(t)
	repo.On("FindByID", ctx, product.ID).Return(product, nil)
	repo.On("Save", ctx, product).Return(nil)

	margin := decimal.NewFromInt(50)
	resp, err := svc.Update(ctx, product.ID, UpdateProductRequest{
		SKU:                 "abc-1",
		Name:                "Widget Pro",
		MinStock:            3,
		Cost:                decimal.NewFromInt(10),
		CostBasis:           string(pricing.CostBasisSecondary),
		CustomMarginPercent: &margin,
	})
	require.NoError(t, err)
	assert.Equal(t, "Widget Pro", resp.Name)
	assert.Equal(t, 10, resp.Stock, "stock is not editable through update")
	assert.True(t, resp.Prices.RateUsed.Equal(decimal.NewFromInt(40)))
	assert.True(t, resp.Prices.MarginPercent.Equal(margin))
}

func TestProductService_Delete(t *testing.T) {
	ctx := context.Background()

	t.Run("deletes an unreferenced product", func(t *testing.T) {
		svc, repo, refs := setupProductService()
		product := newTestProduct(t)
		repo.On("FindByID", ctx, product.ID).Return(product, nil)
		refs.On("IsReferenced", ctx, product).Return(false, nil)
		repo.On("Delete", ctx, product.ID).Return(nil)

		require.NoError(t, svc.Delete(ctx, product.ID))
		repo.AssertExpectations(t)
	})

	t.Run("refuses a referenced product", func(t *testing.T) {
		svc, repo, refs := setupProductService()
		product := newTestProduct(t)
		repo.On("FindByID", ctx, product.ID).Return(product, nil)
		refs.On("IsReferenced", ctx, product).Return(true, nil)

		err := svc.Delete(ctx, product.ID)
		de, ok := shared.AsDomainError(err)
		require.True(t, ok)
		assert.Equal(t, shared.CodeProductInUse, de.Code)
		repo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	})

	t.Run("missing product", func(t *testing.T) {
		svc, repo, _ := setupProductService()
		id := uuid.New()
		repo.On("FindByID", ctx, id).Return(nil, shared.ErrNotFound)

		assert.ErrorIs(t, svc.Delete(ctx, id), shared.ErrNotFound)
	})

	t.Run("reference check failure", func(t *testing.T) {
		svc, repo, refs := setupProductService()
		product := newTestProduct(t)
		repo.On("FindByID", ctx, product.ID).Return(product, nil)
		refs.On("IsReferenced", ctx, product).Return(false, errors.New("boom"))

		assert.EqualError(t, svc.Delete(ctx, product.ID), "boom")
	})
}

func TestProductService_ListAndPriceList(t *testing.T) {
	ctx := context.Background()
	svc, repo, _ := setupProductService()
	svc.SetLocalCurrency("ARS")
	product := newTestProduct(t)

	repo.On("FindAll", ctx, mock.MatchedBy(func(f shared.Filter) bool {
		return f.Filters[catalog.FilterCategory] == "Tools" && f.OrderBy == "name" && f.OrderDir == "asc"
	})).Return([]catalog.Product{*product}, nil)
	repo.On("Count", ctx, mock.Anything).Return(int64(1), nil)

	list, total, err := svc.List(ctx, ProductListFilter{Category: "Tools"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, list, 1)
	assert.True(t, list[0].Prices.FinalPriceUSD.Equal(decimal.RequireFromString("15.08")))
	assert.Equal(t, "AR$ 542,88", list[0].PriceLocalPrimaryDisplay)

	items, _, err := svc.PriceList(ctx, ProductListFilter{Category: "Tools"})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "542.88", items[0].PriceLocalPrimary.StringFixed(2))
	assert.Equal(t, "603.20", items[0].PriceLocalSecondary.StringFixed(2))
	assert.Equal(t, valueobject.Currency("ARS"), items[0].LocalCurrency)
	assert.Equal(t, "$15.08", items[0].FinalPriceDisplay)
	assert.Equal(t, "AR$ 603,20", items[0].PriceLocalSecondaryDisplay)
}

func TestProductService_Quote(t *testing.T) {
	ctx := context.Background()
	svc, repo, _ := setupProductService()
	product := newTestProduct(t)
	repo.On("FindByID", ctx, product.ID).Return(product, nil)

	b, err := svc.Quote(ctx, product.ID)
	require.NoError(t, err)
	assert.Equal(t, "13.00", b.BasePriceUSD.StringFixed(2))
	assert.Equal(t, "2.08", b.TaxUSD.StringFixed(2))
}

func TestProductService_LowStock(t *testing.T) {
	ctx := context.Background()
	svc, repo, _ := setupProductService()
	product := newTestProduct(t)
	require.NoError(t, product.DecreaseStock(8))
	repo.On("FindLowStock", ctx).Return([]catalog.Product{*product}, nil)

	list, err := svc.LowStock(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.True(t, list[0].LowStock)
}
