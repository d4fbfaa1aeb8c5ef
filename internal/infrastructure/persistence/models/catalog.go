package models

import (
	"github.com/profitalyze/backend/internal/domain/catalog"
	"github.com/shopspring/decimal"
)

// CategoryModel is the persistence model for a product category
type CategoryModel struct {
	CategoryID       int64  `gorm:"primaryKey;autoIncrement"`
	CategoryName     string `gorm:"type:varchar(200);not null"`
	ParentCategoryID *int64 `gorm:"index"`
	RootCategoryName string `gorm:"type:varchar(200)"`
}

// TableName returns the table name for GORM
func (CategoryModel) TableName() string {
	return "categories"
}

// ToDomain converts the persistence model to a domain Category
func (m *CategoryModel) ToDomain() *catalog.Category {
	return &catalog.Category{
		CategoryID:       m.CategoryID,
		CategoryName:     m.CategoryName,
		RootCategoryName: m.RootCategoryName,
	}
}

// ProductModel is the persistence model for a catalog product
type ProductModel struct {
	ProductID     int64           `gorm:"primaryKey;autoIncrement"`
	ProductName   string          `gorm:"type:varchar(255);not null"`
	UnitPrice     decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	CostPrice     decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	FinalPrice    decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	StockQuantity int64           `gorm:"not null;default:0"`
	Brand         string          `gorm:"type:varchar(100)"`
	CategoryID    *int64          `gorm:"index"`
	ShippingCost  decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	Category      *CategoryModel  `gorm:"foreignKey:CategoryID;references:CategoryID"`
}

// TableName returns the table name for GORM
func (ProductModel) TableName() string {
	return "products"
}

// ToDomain converts the persistence model to a domain Product, including
// its category when it was preloaded
func (m *ProductModel) ToDomain() *catalog.Product {
	p := &catalog.Product{
		ProductID:     m.ProductID,
		ProductName:   m.ProductName,
		UnitPrice:     m.UnitPrice,
		CostPrice:     m.CostPrice,
		FinalPrice:    m.FinalPrice,
		StockQuantity: m.StockQuantity,
		Brand:         m.Brand,
		CategoryID:    m.CategoryID,
		ShippingCost:  m.ShippingCost,
	}
	if m.Category != nil {
		p.Category = m.Category.ToDomain()
	}
	return p
}
