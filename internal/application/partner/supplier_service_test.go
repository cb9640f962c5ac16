package partner

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/retailcore/backend/internal/domain/partner"
	"github.com/retailcore/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockSupplierRepository is a mock implementation of SupplierRepository
type MockSupplierRepository struct {
	mock.Mock
}

func (m *MockSupplierRepository) FindByID(ctx context.Context, id uuid.UUID) (*partner.Supplier, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*partner.Supplier), args.Error(1)
}

func (m *MockSupplierRepository) FindByName(ctx context.Context, name string) (*partner.Supplier, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*partner.Supplier), args.Error(1)
}

func (m *MockSupplierRepository) FindAll(ctx context.Context, filter shared.Filter) ([]partner.Supplier, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]partner.Supplier), args.Error(1)
}

func (m *MockSupplierRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockSupplierRepository) Save(ctx context.Context, supplier *partner.Supplier) error {
	args := m.Called(ctx, supplier)
	return args.Error(0)
}

func TestSupplierService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("creates a new supplier", func(t *testing.T) {
		repo := new(MockSupplierRepository)
		repo.On("FindByName", ctx, "Acme").Return(nil, shared.ErrNotFound)
		repo.On("Save", ctx, mock.AnythingOfType("*partner.Supplier")).Return(nil)
		svc := NewSupplierService(repo)

		resp, err := svc.Create(ctx, CreateSupplierRequest{Name: "Acme", Email: "sales@acme.test"})
		require.NoError(t, err)
		assert.Equal(t, "Acme", resp.Name)
		assert.Equal(t, "sales@acme.test", resp.Email)
		assert.Empty(t, resp.Catalog)
	})

	t.Run("name is unique ignoring case", func(t *testing.T) {
		repo := new(MockSupplierRepository)
		existing, err := partner.NewSupplier("ACME")
		require.NoError(t, err)
		repo.On("FindByName", ctx, "acme").Return(existing, nil)
		svc := NewSupplierService(repo)

		_, err = svc.Create(ctx, CreateSupplierRequest{Name: "acme"})
		de, ok := shared.AsDomainError(err)
		require.True(t, ok)
		assert.Equal(t, shared.CodeSupplierExists, de.Code)
		repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("lookup failure", func(t *testing.T) {
		repo := new(MockSupplierRepository)
		repo.On("FindByName", ctx, "Acme").Return(nil, errors.New("db down"))
		svc := NewSupplierService(repo)

		_, err := svc.Create(ctx, CreateSupplierRequest{Name: "Acme"})
		assert.EqualError(t, err, "db down")
	})
}

func TestSupplierService_List(t *testing.T) {
	ctx := context.Background()
	repo := new(MockSupplierRepository)
	s, err := partner.NewSupplier("Acme")
	require.NoError(t, err)
	repo.On("FindAll", ctx, mock.MatchedBy(func(f shared.Filter) bool {
		return f.OrderBy == "name" && f.OrderDir == "asc" && f.Page == 1
	})).Return([]partner.Supplier{*s}, nil)
	repo.On("Count", ctx, mock.Anything).Return(int64(1), nil)
	repo.On("FindByID", ctx, s.ID).Return(s, nil)
	svc := NewSupplierService(repo)

	list, total, err := svc.List(ctx, SupplierListFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, "Acme", list[0].Name)

	got, err := svc.GetByID(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, s.ID, got.ID)
}
