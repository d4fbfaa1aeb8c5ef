package telemetry

import (
	"context"

	"gorm.io/gorm"
)

// GormDatasetStatsProvider implements DatasetStatsProvider with plain COUNT queries.
type GormDatasetStatsProvider struct {
	db *gorm.DB
}

// NewGormDatasetStatsProvider creates a new GormDatasetStatsProvider.
func NewGormDatasetStatsProvider(db *gorm.DB) *GormDatasetStatsProvider {
	return &GormDatasetStatsProvider{db: db}
}

// CountDeals returns the number of deals.
func (p *GormDatasetStatsProvider) CountDeals(ctx context.Context) (int64, error) {
	var n int64
	err := p.db.WithContext(ctx).Table("deals").Count(&n).Error
	return n, err
}

// CountActiveCarts returns the number of active cart rows.
func (p *GormDatasetStatsProvider) CountActiveCarts(ctx context.Context) (int64, error) {
	var n int64
	err := p.db.WithContext(ctx).Table("cart_items").Where("is_active = ?", true).Count(&n).Error
	return n, err
}

// CountTransactions returns the number of transactions.
func (p *GormDatasetStatsProvider) CountTransactions(ctx context.Context) (int64, error) {
	var n int64
	err := p.db.WithContext(ctx).Table("transactions").Count(&n).Error
	return n, err
}
