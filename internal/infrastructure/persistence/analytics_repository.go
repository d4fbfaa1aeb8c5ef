package persistence

import (
	"context"

	"github.com/profitalyze/backend/internal/domain/analytics"
	"github.com/profitalyze/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormAnalyticsRepository implements analytics.Repository using GORM
type GormAnalyticsRepository struct {
	db *gorm.DB
}

// NewGormAnalyticsRepository creates a new GormAnalyticsRepository
func NewGormAnalyticsRepository(db *gorm.DB) *GormAnalyticsRepository {
	return &GormAnalyticsRepository{db: db}
}

// TopCustomersBySpending returns the customers with the highest summed transaction value
func (r *GormAnalyticsRepository) TopCustomersBySpending(ctx context.Context, limit int) ([]analytics.CustomerSpending, error) {
	var results []analytics.CustomerSpending
	err := r.db.WithContext(ctx).Table("transactions").
		Select("customer_id, COALESCE(SUM(total_amount), 0) as total_spending").
		Group("customer_id").
		Order("total_spending DESC, customer_id ASC").
		Limit(limit).
		Scan(&results).Error
	if err != nil {
		return nil, err
	}
	return results, nil
}

// CustomerTiers returns every customer's loyalty tier
func (r *GormAnalyticsRepository) CustomerTiers(ctx context.Context) ([]analytics.CustomerTier, error) {
	var rows []models.CustomerModel
	if err := r.db.WithContext(ctx).
		Select("customer_id", "loyalty_tier").
		Order("customer_id ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}

	tiers := make([]analytics.CustomerTier, len(rows))
	for i, row := range rows {
		tiers[i] = analytics.CustomerTier{CustomerID: row.CustomerID, Tier: row.LoyaltyTier}
	}
	return tiers, nil
}

// UsageCountsByCustomerAndDeal counts deal usages per customer and deal
func (r *GormAnalyticsRepository) UsageCountsByCustomerAndDeal(ctx context.Context) ([]analytics.UsageCount, error) {
	var results []analytics.UsageCount
	err := r.db.WithContext(ctx).Table("deal_usages").
		Select("customer_id, deal_id, COUNT(*) as count").
		Group("customer_id, deal_id").
		Scan(&results).Error
	if err != nil {
		return nil, err
	}
	return results, nil
}

// DealIDs returns every deal id in ascending order
func (r *GormAnalyticsRepository) DealIDs(ctx context.Context) ([]int64, error) {
	var ids []int64
	if err := r.db.WithContext(ctx).
		Model(&models.DealModel{}).
		Order("deal_id ASC").
		Pluck("deal_id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

// TierCounts counts customers per loyalty tier; a null tier is reported as ""
func (r *GormAnalyticsRepository) TierCounts(ctx context.Context) ([]analytics.TierCount, error) {
	var results []analytics.TierCount
	err := r.db.WithContext(ctx).Table("customers").
		Select("COALESCE(loyalty_tier, '') as loyalty_tier, COUNT(customer_id) as count").
		Group("loyalty_tier").
		Order("loyalty_tier ASC").
		Scan(&results).Error
	if err != nil {
		return nil, err
	}
	return results, nil
}

// UsageProducts resolves each deal usage to its product's category
func (r *GormAnalyticsRepository) UsageProducts(ctx context.Context) ([]analytics.UsageProduct, error) {
	var results []analytics.UsageProduct
	err := r.db.WithContext(ctx).Table("deal_usages du").
		Select("du.customer_id, du.product_id, p.category_id").
		Joins("JOIN products p ON p.product_id = du.product_id").
		Order("du.usage_id ASC").
		Scan(&results).Error
	if err != nil {
		return nil, err
	}
	return results, nil
}

// CartQuantities returns the quantity of every cart line
func (r *GormAnalyticsRepository) CartQuantities(ctx context.Context) ([]analytics.CartQuantity, error) {
	var results []analytics.CartQuantity
	err := r.db.WithContext(ctx).Table("cart_items").
		Select("customer_id, product_id, quantity").
		Scan(&results).Error
	if err != nil {
		return nil, err
	}
	return results, nil
}

// CountActiveCarts counts cart lines that are still active
func (r *GormAnalyticsRepository) CountActiveCarts(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.CartItemModel{}).
		Where("is_active = ?", true).
		Count(&count).Error
	return count, err
}

// CountTransactions counts completed purchases
func (r *GormAnalyticsRepository) CountTransactions(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.TransactionModel{}).Count(&count).Error
	return count, err
}

var _ analytics.Repository = (*GormAnalyticsRepository)(nil)
