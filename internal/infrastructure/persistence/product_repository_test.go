package persistence

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/profitalyze/backend/internal/domain/shared"
)

func TestGormProductRepository_FindAll(t *testing.T) {
	db := newSQLiteDB(t)
	seedStore(t, db)
	repo := NewGormProductRepository(db)

	products, err := repo.FindAll(context.Background())
	require.NoError(t, err)
	require.Len(t, products, 3)

	assert.Equal(t, int64(10), products[0].ProductID)
	require.NotNil(t, products[0].Category)
	assert.Equal(t, "Phones", products[0].Category.CategoryName)
	assert.Equal(t, "Electronics", products[0].RootCategoryName())
	assert.True(t, money("450").Equal(products[0].FinalPrice))

	assert.Equal(t, "Laura Mercier", products[1].Brand)
	assert.Nil(t, products[2].Category)
	assert.Nil(t, products[2].CategoryID)
}

func TestGormProductRepository_FindByID(t *testing.T) {
	db := newSQLiteDB(t)
	seedStore(t, db)
	repo := NewGormProductRepository(db)

	t.Run("returns the product with its category", func(t *testing.T) {
		p, err := repo.FindByID(context.Background(), 11)
		require.NoError(t, err)
		assert.Equal(t, "Primer", p.ProductName)
		require.NotNil(t, p.Category)
		assert.Equal(t, int64(8), p.Category.CategoryID)
		assert.True(t, money("2").Equal(p.ShippingCost))
	})

	t.Run("maps missing rows to ErrNotFound", func(t *testing.T) {
		_, err := repo.FindByID(context.Background(), 999)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestGormProductRepository_FindAll_QueryError(t *testing.T) {
	db, mock, mockDB := newMockDatabase(t)
	defer mockDB.Close()

	mock.ExpectQuery(`SELECT \* FROM "products" ORDER BY product_id ASC`).
		WillReturnError(assert.AnError)

	repo := NewGormProductRepository(db.DB)
	_, err := repo.FindAll(context.Background())
	require.Error(t, err)
	assert.NotErrorIs(t, err, shared.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
