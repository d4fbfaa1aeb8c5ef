package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// DealModel is the persistence model for a promotional deal
type DealModel struct {
	DealID        int64           `gorm:"primaryKey;autoIncrement"`
	DealName      string          `gorm:"type:varchar(200);not null"`
	DealType      string          `gorm:"type:varchar(30);not null;index"`
	DiscountValue decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	StartDate     *time.Time
	EndDate       *time.Time
}

// TableName returns the table name for GORM
func (DealModel) TableName() string {
	return "deals"
}

// DealUsageModel records one application of a deal to a transaction
type DealUsageModel struct {
	UsageID       int64           `gorm:"primaryKey;autoIncrement"`
	DealID        int64           `gorm:"not null;index"`
	CustomerID    int64           `gorm:"not null;index"`
	TransactionID int64           `gorm:"not null;index"`
	ProductID     int64           `gorm:"not null;index"`
	SavingsAmount decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	UsedAt        time.Time       `gorm:"not null;autoCreateTime"`
}

// TableName returns the table name for GORM
func (DealUsageModel) TableName() string {
	return "deal_usages"
}
