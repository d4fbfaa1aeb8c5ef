package persistence

import (
	"context"

	"github.com/profitalyze/backend/internal/domain/dealimpact"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GormDealImpactRepository implements dealimpact.Repository using GORM
type GormDealImpactRepository struct {
	db *gorm.DB
}

// NewGormDealImpactRepository creates a new GormDealImpactRepository
func NewGormDealImpactRepository(db *gorm.DB) *GormDealImpactRepository {
	return &GormDealImpactRepository{db: db}
}

// AggregateByDeal groups deal usages joined with their transactions per deal.
// Inner joins drop deals that were never used.
func (r *GormDealImpactRepository) AggregateByDeal(ctx context.Context, filter dealimpact.Filter) ([]dealimpact.Aggregate, error) {
	type aggregateResult struct {
		DealID                int64
		DealName              string
		DealType              string
		DiscountValue         decimal.Decimal
		UsageCount            int64
		TotalSavingsGiven     decimal.Decimal
		TotalRevenueWithDeal  decimal.Decimal
		AvgOrderValueWithDeal decimal.Decimal
		RevenuePlusSavings    decimal.Decimal
	}

	var results []aggregateResult

	query := r.db.WithContext(ctx).Table("deals d").
		Select(`
			d.deal_id, d.deal_name, d.deal_type, d.discount_value,
			COUNT(du.usage_id) as usage_count,
			COALESCE(SUM(du.savings_amount), 0) as total_savings_given,
			COALESCE(SUM(t.total_amount), 0) as total_revenue_with_deal,
			COALESCE(AVG(t.total_amount), 0) as avg_order_value_with_deal,
			COALESCE(SUM(t.total_amount + du.savings_amount), 0) as revenue_plus_savings
		`).
		Joins("JOIN deal_usages du ON d.deal_id = du.deal_id").
		Joins("JOIN transactions t ON du.transaction_id = t.transaction_id")

	if filter.DealID != nil {
		query = query.Where("d.deal_id = ?", *filter.DealID)
	}
	if filter.DealType != "" {
		query = query.Where("d.deal_type = ?", filter.DealType)
	}

	query = query.Group("d.deal_id, d.deal_name, d.deal_type, d.discount_value")
	if filter.MinUsageCount > 0 {
		query = query.Having("COUNT(du.usage_id) >= ?", filter.MinUsageCount)
	}

	if err := query.Order("d.deal_id ASC").Scan(&results).Error; err != nil {
		return nil, err
	}

	aggs := make([]dealimpact.Aggregate, len(results))
	for i, res := range results {
		aggs[i] = dealimpact.Aggregate{
			DealID:                res.DealID,
			DealName:              res.DealName,
			DealType:              res.DealType,
			DiscountValue:         res.DiscountValue,
			UsageCount:            res.UsageCount,
			TotalSavingsGiven:     res.TotalSavingsGiven,
			TotalRevenueWithDeal:  res.TotalRevenueWithDeal,
			AvgOrderValueWithDeal: res.AvgOrderValueWithDeal,
			RevenuePlusSavings:    res.RevenuePlusSavings,
		}
	}
	return aggs, nil
}

var _ dealimpact.Repository = (*GormDealImpactRepository)(nil)
