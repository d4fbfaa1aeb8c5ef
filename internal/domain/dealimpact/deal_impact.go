// Package dealimpact estimates per-deal revenue and profit impact from
// recorded deal usage, using a baseline margin and a counterfactual
// retention ratio.
package dealimpact

import (
	"context"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
)

// Deal types with a dedicated counterfactual revenue estimate
const (
	DealTypePercentage  = "percentage"
	DealTypeFixedAmount = "fixed_amount"
)

var (
	hundred = decimal.NewFromInt(100)
	one     = decimal.NewFromInt(1)
)

// Assumptions are the heuristic ratios applied to every deal
type Assumptions struct {
	ProfitMargin      decimal.Decimal `json:"profit_margin"`
	CustomerRetention decimal.Decimal `json:"customer_retention"`
}

// DefaultAssumptions returns a 35% baseline margin and 50% retention
func DefaultAssumptions() Assumptions {
	return Assumptions{
		ProfitMargin:      decimal.RequireFromString("0.35"),
		CustomerRetention: decimal.RequireFromString("0.5"),
	}
}

// Validate checks that both ratios lie in (0, 1]
func (a Assumptions) Validate() error {
	if !a.ProfitMargin.IsPositive() || a.ProfitMargin.GreaterThan(one) {
		return fmt.Errorf("profit_margin must be greater than 0 and at most 1")
	}
	if !a.CustomerRetention.IsPositive() || a.CustomerRetention.GreaterThan(one) {
		return fmt.Errorf("customer_retention must be greater than 0 and at most 1")
	}
	return nil
}

// Aggregate holds the per-deal sums produced by the grouping query
type Aggregate struct {
	DealID                int64
	DealName              string
	DealType              string
	DiscountValue         decimal.Decimal
	UsageCount            int64
	TotalSavingsGiven     decimal.Decimal
	TotalRevenueWithDeal  decimal.Decimal
	AvgOrderValueWithDeal decimal.Decimal
	// RevenuePlusSavings is Σ(total_amount + savings_amount) over the joined rows
	RevenuePlusSavings decimal.Decimal
}

// Row is the derived impact estimate for one deal
type Row struct {
	DealID                      int64           `json:"deal_id"`
	DealName                    string          `json:"deal_name"`
	DealType                    string          `json:"deal_type"`
	DiscountValue               decimal.Decimal `json:"discount_value"`
	UsageCount                  int64           `json:"usage_count"`
	TotalSavingsGiven           decimal.Decimal `json:"total_savings_given"`
	TotalRevenueWithDeal        decimal.Decimal `json:"total_revenue_with_deal"`
	AvgOrderValueWithDeal       decimal.Decimal `json:"avg_order_value_with_deal"`
	EstimatedRevenueWithoutDeal decimal.Decimal `json:"estimated_revenue_without_deal"`
	IncrementalRevenue          decimal.Decimal `json:"incremental_revenue"`
	ProfitWithDeal              decimal.Decimal `json:"profit_with_deal"`
	EstimatedProfitWithoutDeal  decimal.Decimal `json:"estimated_profit_without_deal"`
	IncrementalProfit           decimal.Decimal `json:"incremental_profit"`
	DealProfitMarginPercent     decimal.Decimal `json:"deal_profit_margin_percent"`
}

// Filter narrows the grouping query
type Filter struct {
	DealType      string
	MinUsageCount int64
	DealID        *int64
}

// Page selects a window of the ranked result
type Page struct {
	Limit  int
	Offset int
}

// Repository produces per-deal aggregates over deals joined with their
// usage records and transactions. Deals without usage are not returned.
type Repository interface {
	AggregateByDeal(ctx context.Context, filter Filter) ([]Aggregate, error)
}

// EstimateRevenueWithoutDeal is the counterfactual revenue for a deal.
// A 100% percentage discount has no defined counterfactual and falls back
// to the observed revenue.
func EstimateRevenueWithoutDeal(agg Aggregate) decimal.Decimal {
	switch agg.DealType {
	case DealTypePercentage:
		divisor := one.Sub(agg.DiscountValue.Div(hundred))
		if !divisor.IsPositive() {
			return agg.TotalRevenueWithDeal
		}
		return agg.TotalRevenueWithDeal.Div(divisor)
	case DealTypeFixedAmount:
		return agg.RevenuePlusSavings
	default:
		return agg.TotalRevenueWithDeal
	}
}

// MarginPercent returns profit/revenue*100 rounded to two decimals,
// or zero when revenue is zero.
func MarginPercent(profit, revenue decimal.Decimal) decimal.Decimal {
	if revenue.IsZero() {
		return decimal.Zero
	}
	return profit.Div(revenue).Mul(hundred).Round(2)
}

// Derive computes the impact row for one aggregate
func Derive(agg Aggregate, a Assumptions) Row {
	rev := agg.TotalRevenueWithDeal
	est := EstimateRevenueWithoutDeal(agg)

	profitWith := rev.Mul(a.ProfitMargin).Sub(agg.TotalSavingsGiven)
	profitWithout := est.Mul(a.ProfitMargin).Mul(a.CustomerRetention)

	return Row{
		DealID:                      agg.DealID,
		DealName:                    agg.DealName,
		DealType:                    agg.DealType,
		DiscountValue:               agg.DiscountValue,
		UsageCount:                  agg.UsageCount,
		TotalSavingsGiven:           agg.TotalSavingsGiven,
		TotalRevenueWithDeal:        rev,
		AvgOrderValueWithDeal:       agg.AvgOrderValueWithDeal,
		EstimatedRevenueWithoutDeal: est,
		IncrementalRevenue:          rev.Sub(est.Mul(a.CustomerRetention)),
		ProfitWithDeal:              profitWith,
		EstimatedProfitWithoutDeal:  profitWithout,
		IncrementalProfit:           profitWith.Sub(profitWithout),
		DealProfitMarginPercent:     MarginPercent(profitWith, rev),
	}
}

// Analyze derives every aggregate and ranks the rows by incremental profit,
// highest first. Ties keep ascending deal id order.
func Analyze(aggs []Aggregate, a Assumptions) []Row {
	rows := make([]Row, 0, len(aggs))
	for _, agg := range aggs {
		rows = append(rows, Derive(agg, a))
	}
	sort.SliceStable(rows, func(i, j int) bool {
		if c := rows[i].IncrementalProfit.Cmp(rows[j].IncrementalProfit); c != 0 {
			return c > 0
		}
		return rows[i].DealID < rows[j].DealID
	})
	return rows
}

// Paginate returns the window of rows selected by page
func Paginate(rows []Row, page Page) []Row {
	if page.Offset < 0 {
		page.Offset = 0
	}
	if page.Offset >= len(rows) || page.Limit <= 0 {
		return []Row{}
	}
	end := page.Offset + page.Limit
	if end > len(rows) {
		end = len(rows)
	}
	return rows[page.Offset:end]
}
