package persistence

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/profitalyze/backend/internal/infrastructure/persistence/models"
)

func money(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func int64Ptr(v int64) *int64 { return &v }

func strPtr(s string) *string { return &s }

// seedStore loads a small store: three deals (one never used), three
// customers, three transactions and two carts
func seedStore(t *testing.T, db *gorm.DB) {
	t.Helper()

	rows := []any{
		&models.CategoryModel{CategoryID: 2, CategoryName: "Phones", RootCategoryName: "Electronics"},
		&models.CategoryModel{CategoryID: 8, CategoryName: "Skincare", RootCategoryName: "Beauty & Health"},
		&models.ProductModel{ProductID: 10, ProductName: "Galaxy", UnitPrice: money("500"), CostPrice: money("300"), FinalPrice: money("450"), StockQuantity: 3, Brand: "Samsung", CategoryID: int64Ptr(2), ShippingCost: money("5")},
		&models.ProductModel{ProductID: 11, ProductName: "Primer", UnitPrice: money("40"), CostPrice: money("10"), FinalPrice: money("36"), StockQuantity: 10, Brand: "Laura Mercier", CategoryID: int64Ptr(8), ShippingCost: money("2")},
		&models.ProductModel{ProductID: 12, ProductName: "Gift Card", UnitPrice: money("25"), CostPrice: money("25"), FinalPrice: money("25"), StockQuantity: 100},
		&models.CustomerModel{CustomerID: 1, CustomerName: "Ada", LoyaltyTier: strPtr("Gold")},
		&models.CustomerModel{CustomerID: 2, CustomerName: "Ben"},
		&models.CustomerModel{CustomerID: 3, CustomerName: "Cy", LoyaltyTier: strPtr("Silver")},
		&models.DealModel{DealID: 1, DealName: "Spring Sale", DealType: "percentage", DiscountValue: money("20")},
		&models.DealModel{DealID: 2, DealName: "Ten Off", DealType: "fixed_amount", DiscountValue: money("10")},
		&models.DealModel{DealID: 3, DealName: "Free Ship", DealType: "free_shipping"},
		&models.TransactionModel{TransactionID: 100, CustomerID: 1, TotalAmount: money("100"), PaymentMethod: "card"},
		&models.TransactionModel{TransactionID: 101, CustomerID: 1, TotalAmount: money("300"), PaymentMethod: "card"},
		&models.TransactionModel{TransactionID: 102, CustomerID: 2, TotalAmount: money("50"), PaymentMethod: "paypal"},
		&models.DealUsageModel{UsageID: 1, DealID: 1, CustomerID: 1, TransactionID: 100, ProductID: 10, SavingsAmount: money("25")},
		&models.DealUsageModel{UsageID: 2, DealID: 1, CustomerID: 1, TransactionID: 101, ProductID: 11, SavingsAmount: money("75")},
		&models.DealUsageModel{UsageID: 3, DealID: 2, CustomerID: 2, TransactionID: 102, ProductID: 11, SavingsAmount: money("10")},
		&models.CartItemModel{CartID: 1, CustomerID: 1, ProductID: 11, Quantity: 4, IsActive: true},
		&models.CartItemModel{CartID: 2, CustomerID: 2, ProductID: 10, Quantity: 2, IsActive: false},
	}
	for _, row := range rows {
		require.NoError(t, db.Create(row).Error)
	}
}
