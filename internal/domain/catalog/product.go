package catalog

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Product is a catalog entry as read by the dashboard
type Product struct {
	ProductID     int64           `json:"product_id"`
	ProductName   string          `json:"product_name"`
	UnitPrice     decimal.Decimal `json:"unit_price"`
	CostPrice     decimal.Decimal `json:"cost_price"`
	FinalPrice    decimal.Decimal `json:"final_price"`
	StockQuantity int64           `json:"stock_quantity"`
	Brand         string          `json:"brand"`
	CategoryID    *int64          `json:"category_id"`
	ShippingCost  decimal.Decimal `json:"shipping_cost"`
	Category      *Category       `json:"category"`
}

// RootCategoryName returns the product's root category, or UncategorizedName
func (p Product) RootCategoryName() string {
	if p.Category == nil || p.Category.RootCategoryName == "" {
		return UncategorizedName
	}
	return p.Category.RootCategoryName
}

// InventoryValue is final price times stock on hand
func (p Product) InventoryValue() decimal.Decimal {
	return p.FinalPrice.Mul(decimal.NewFromInt(p.StockQuantity))
}

// CategoryGroup is a root category with the products under it
type CategoryGroup struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	Products []Product `json:"products"`
}

// CategoryRevenue is the inventory value of one root category
type CategoryRevenue struct {
	Category string          `json:"category"`
	Revenue  decimal.Decimal `json:"revenue"`
}

// CategorySlug turns "Beauty & Health" into "beauty-health"
func CategorySlug(name string) string {
	s := strings.ToLower(name)
	s = strings.ReplaceAll(s, " & ", "-")
	return strings.Join(strings.Fields(s), "-")
}

// GroupByRootCategory groups products by root category name.
// Groups appear in the order their first product appears.
func GroupByRootCategory(products []Product) []CategoryGroup {
	index := make(map[string]int)
	groups := make([]CategoryGroup, 0)
	for _, p := range products {
		name := p.RootCategoryName()
		i, ok := index[name]
		if !ok {
			i = len(groups)
			index[name] = i
			groups = append(groups, CategoryGroup{ID: CategorySlug(name), Name: name, Products: []Product{}})
		}
		groups[i].Products = append(groups[i].Products, p)
	}
	return groups
}

// RevenueByRootCategory sums inventory value per root category, rounded to
// whole currency units. Categories appear in first-seen order.
func RevenueByRootCategory(products []Product) []CategoryRevenue {
	index := make(map[string]int)
	out := make([]CategoryRevenue, 0)
	for _, p := range products {
		name := p.RootCategoryName()
		i, ok := index[name]
		if !ok {
			i = len(out)
			index[name] = i
			out = append(out, CategoryRevenue{Category: name, Revenue: decimal.Zero})
		}
		out[i].Revenue = out[i].Revenue.Add(p.InventoryValue())
	}
	for i := range out {
		out[i].Revenue = out[i].Revenue.Round(0)
	}
	return out
}
