package persistence

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/profitalyze/backend/internal/domain/analytics"
)

func TestGormAnalyticsRepository(t *testing.T) {
	db := newSQLiteDB(t)
	seedStore(t, db)
	repo := NewGormAnalyticsRepository(db)
	ctx := context.Background()

	t.Run("top customers by spending", func(t *testing.T) {
		top, err := repo.TopCustomersBySpending(ctx, 10)
		require.NoError(t, err)
		require.Len(t, top, 2)
		assert.Equal(t, int64(1), top[0].CustomerID)
		assert.True(t, money("400").Equal(top[0].TotalSpending))
		assert.Equal(t, int64(2), top[1].CustomerID)

		top, err = repo.TopCustomersBySpending(ctx, 1)
		require.NoError(t, err)
		assert.Len(t, top, 1)
	})

	t.Run("customer tiers keep null tiers", func(t *testing.T) {
		tiers, err := repo.CustomerTiers(ctx)
		require.NoError(t, err)
		require.Len(t, tiers, 3)
		require.NotNil(t, tiers[0].Tier)
		assert.Equal(t, "Gold", *tiers[0].Tier)
		assert.Nil(t, tiers[1].Tier)
	})

	t.Run("usage counts by customer and deal", func(t *testing.T) {
		counts, err := repo.UsageCountsByCustomerAndDeal(ctx)
		require.NoError(t, err)
		assert.ElementsMatch(t, []analytics.UsageCount{
			{CustomerID: 1, DealID: 1, Count: 2},
			{CustomerID: 2, DealID: 2, Count: 1},
		}, counts)
	})

	t.Run("deal ids", func(t *testing.T) {
		ids, err := repo.DealIDs(ctx)
		require.NoError(t, err)
		assert.Equal(t, []int64{1, 2, 3}, ids)
	})

	t.Run("tier counts report null as empty", func(t *testing.T) {
		counts, err := repo.TierCounts(ctx)
		require.NoError(t, err)
		assert.ElementsMatch(t, []analytics.TierCount{
			{LoyaltyTier: "", Count: 1},
			{LoyaltyTier: "Gold", Count: 1},
			{LoyaltyTier: "Silver", Count: 1},
		}, counts)
	})

	t.Run("usage products carry the category", func(t *testing.T) {
		usages, err := repo.UsageProducts(ctx)
		require.NoError(t, err)
		require.Len(t, usages, 3)
		assert.Equal(t, int64(10), usages[0].ProductID)
		require.NotNil(t, usages[0].CategoryID)
		assert.Equal(t, int64(2), *usages[0].CategoryID)
	})

	t.Run("cart quantities", func(t *testing.T) {
		carts, err := repo.CartQuantities(ctx)
		require.NoError(t, err)
		assert.ElementsMatch(t, []analytics.CartQuantity{
			{CustomerID: 1, ProductID: 11, Quantity: 4},
			{CustomerID: 2, ProductID: 10, Quantity: 2},
		}, carts)
	})

	t.Run("funnel counts", func(t *testing.T) {
		active, err := repo.CountActiveCarts(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(1), active)

		txns, err := repo.CountTransactions(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(3), txns)
	})

	t.Run("category volumes from repository data", func(t *testing.T) {
		usages, err := repo.UsageProducts(ctx)
		require.NoError(t, err)
		carts, err := repo.CartQuantities(ctx)
		require.NoError(t, err)

		volumes := analytics.BuildCategoryVolumes(usages, carts)
		assert.ElementsMatch(t, []analytics.CategoryVolume{
			{CustomerID: 1, CategoryID: 2, Volume: 1},
			{CustomerID: 1, CategoryID: 8, Volume: 4},
			{CustomerID: 2, CategoryID: 8, Volume: 1},
		}, volumes)
	})
}
