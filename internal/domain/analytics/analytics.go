// Package analytics holds customer and deal usage read models for the dashboard
package analytics

import (
	"context"

	"github.com/shopspring/decimal"
)

// NoTierName labels customers without a loyalty tier
const NoTierName = "None"

// Funnel stage names
const (
	StageCartInitiated     = "Cart Initiated"
	StagePurchaseCompleted = "Purchase Completed"
)

// CustomerSpending is a customer's total transaction value
type CustomerSpending struct {
	CustomerID    int64           `json:"customer_id"`
	TotalSpending decimal.Decimal `json:"total_spending"`
}

// TierCount is the number of customers in a loyalty tier
type TierCount struct {
	LoyaltyTier string `json:"loyalty_tier"`
	Count       int64  `json:"count"`
}

// DealCount is the number of uses of one deal
type DealCount struct {
	DealID int64 `json:"deal_id"`
	Count  int64 `json:"count"`
}

// TierDealUsage is one heatmap row: deal usage counts for a loyalty tier
type TierDealUsage struct {
	LoyaltyTier string      `json:"loyalty_tier"`
	Deals       []DealCount `json:"deals"`
}

// CategoryVolume is the purchase volume of a customer in one category
type CategoryVolume struct {
	CustomerID int64 `json:"customer_id"`
	CategoryID int64 `json:"category_id"`
	Volume     int64 `json:"volume"`
}

// FunnelStage is one step of the cart-to-purchase funnel
type FunnelStage struct {
	Stage string `json:"stage"`
	Count int64  `json:"count"`
}

// CustomerTier maps a customer to a loyalty tier; Tier is nil when unset
type CustomerTier struct {
	CustomerID int64
	Tier       *string
}

// UsageCount is the number of deal usages for a customer and deal pair
type UsageCount struct {
	CustomerID int64
	DealID     int64
	Count      int64
}

// UsageProduct is a deal usage resolved to its product category
type UsageProduct struct {
	CustomerID int64
	ProductID  int64
	CategoryID *int64
}

// CartQuantity is a cart line's quantity for a customer and product
type CartQuantity struct {
	CustomerID int64
	ProductID  int64
	Quantity   int64
}

// Repository reads the raw groupings the analytics views are built from
type Repository interface {
	TopCustomersBySpending(ctx context.Context, limit int) ([]CustomerSpending, error)
	CustomerTiers(ctx context.Context) ([]CustomerTier, error)
	UsageCountsByCustomerAndDeal(ctx context.Context) ([]UsageCount, error)
	DealIDs(ctx context.Context) ([]int64, error)
	TierCounts(ctx context.Context) ([]TierCount, error)
	UsageProducts(ctx context.Context) ([]UsageProduct, error)
	CartQuantities(ctx context.Context) ([]CartQuantity, error)
	CountActiveCarts(ctx context.Context) (int64, error)
	CountTransactions(ctx context.Context) (int64, error)
}
