package catalog

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/profitalyze/backend/internal/domain/catalog"
	"github.com/profitalyze/backend/internal/domain/shared"
)

// MockProductRepository is a mock implementation of ProductRepository
type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) FindAll(ctx context.Context) ([]catalog.Product, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]catalog.Product), args.Error(1)
}

func (m *MockProductRepository) FindByID(ctx context.Context, id int64) (*catalog.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Product), args.Error(1)
}

func testProduct(id int64, root string, finalPrice string, stock int64) catalog.Product {
	p := catalog.Product{
		ProductID:     id,
		ProductName:   "Product",
		FinalPrice:    decimal.RequireFromString(finalPrice),
		StockQuantity: stock,
	}
	if root != "" {
		p.Category = &catalog.Category{CategoryID: id, CategoryName: root, RootCategoryName: root}
	}
	return p
}

func TestProductService_List(t *testing.T) {
	repo := new(MockProductRepository)
	svc := NewProductService(repo)
	products := []catalog.Product{testProduct(1, "Electronics", "10", 2)}
	repo.On("FindAll", mock.Anything).Return(products, nil)

	got, err := svc.List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, products, got)
	repo.AssertExpectations(t)
}

func TestProductService_List_RepositoryError(t *testing.T) {
	repo := new(MockProductRepository)
	svc := NewProductService(repo)
	dbErr := errors.New("connection refused")
	repo.On("FindAll", mock.Anything).Return(nil, dbErr)

	_, err := svc.List(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, dbErr)
}

func TestProductService_GetByID(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		repo := new(MockProductRepository)
		svc := NewProductService(repo)
		p := testProduct(7, "Beauty & Health", "5", 1)
		repo.On("FindByID", mock.Anything, int64(7)).Return(&p, nil)

		got, err := svc.GetByID(context.Background(), 7)
		require.NoError(t, err)
		assert.Equal(t, int64(7), got.ProductID)
	})

	t.Run("not found", func(t *testing.T) {
		repo := new(MockProductRepository)
		svc := NewProductService(repo)
		repo.On("FindByID", mock.Anything, int64(99)).Return(nil, shared.ErrNotFound)

		_, err := svc.GetByID(context.Background(), 99)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestProductService_ListByCategory(t *testing.T) {
	repo := new(MockProductRepository)
	svc := NewProductService(repo)
	repo.On("FindAll", mock.Anything).Return([]catalog.Product{
		testProduct(1, "Electronics", "10", 1),
		testProduct(2, "", "10", 1),
		testProduct(3, "Electronics", "10", 1),
	}, nil)

	groups, err := svc.ListByCategory(context.Background())
	require.NoError(t, err)
	require.Len(t, groups, 2)
	assert.Equal(t, "Electronics", groups[0].Name)
	assert.Len(t, groups[0].Products, 2)
	assert.Equal(t, catalog.UncategorizedName, groups[1].Name)
}

func TestProductService_RevenueByCategory(t *testing.T) {
	repo := new(MockProductRepository)
	svc := NewProductService(repo)
	repo.On("FindAll", mock.Anything).Return([]catalog.Product{
		testProduct(1, "Electronics", "19.99", 3),
		testProduct(2, "Electronics", "0.50", 1),
	}, nil)

	revenue, err := svc.RevenueByCategory(context.Background())
	require.NoError(t, err)
	require.Len(t, revenue, 1)
	// 59.97 + 0.50 rounds to 60
	assert.True(t, decimal.NewFromInt(60).Equal(revenue[0].Revenue))
}

func TestProductService_RevenueByCategory_Error(t *testing.T) {
	repo := new(MockProductRepository)
	svc := NewProductService(repo)
	repo.On("FindAll", mock.Anything).Return(nil, errors.New("boom"))

	_, err := svc.RevenueByCategory(context.Background())
	assert.Error(t, err)
}
