package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// CustomerModel is the persistence model for a shopper
type CustomerModel struct {
	CustomerID   int64   `gorm:"primaryKey;autoIncrement"`
	CustomerName string  `gorm:"type:varchar(200)"`
	Email        string  `gorm:"type:varchar(255)"`
	LoyaltyTier  *string `gorm:"type:varchar(30);index"`
}

// TableName returns the table name for GORM
func (CustomerModel) TableName() string {
	return "customers"
}

// TransactionModel is a completed purchase
type TransactionModel struct {
	TransactionID   int64           `gorm:"primaryKey;autoIncrement"`
	CustomerID      int64           `gorm:"not null;index"`
	TotalAmount     decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	PaymentMethod   string          `gorm:"type:varchar(30)"`
	TransactionDate time.Time       `gorm:"not null;autoCreateTime"`
}

// TableName returns the table name for GORM
func (TransactionModel) TableName() string {
	return "transactions"
}

// CartItemModel is a product placed in a customer's cart
type CartItemModel struct {
	CartID     int64     `gorm:"primaryKey;autoIncrement"`
	CustomerID int64     `gorm:"not null;index"`
	ProductID  int64     `gorm:"not null;index"`
	Quantity   int64     `gorm:"not null;default:1"`
	IsActive   bool      `gorm:"not null;index"`
	AddedAt    time.Time `gorm:"not null;autoCreateTime"`
}

// TableName returns the table name for GORM
func (CartItemModel) TableName() string {
	return "cart_items"
}
