package report

import (
	"time"

	"github.com/profitalyze/backend/internal/domain/dealimpact"
)

// AssumptionsQuery overrides the heuristic ratios for one request.
// Absent fields fall back to the configured defaults.
type AssumptionsQuery struct {
	ProfitMargin      *float64 `form:"profit_margin" binding:"omitempty,gt=0,lte=1"`
	CustomerRetention *float64 `form:"customer_retention" binding:"omitempty,gt=0,lte=1"`
}

// ImpactFilter is the query accepted by the filtered deal-impact listing.
// A nil Limit means the configured default; an explicit limit must be positive.
type ImpactFilter struct {
	AssumptionsQuery
	DealType      string `form:"deal_type" binding:"omitempty,max=50"`
	MinUsageCount int64  `form:"min_usage_count" binding:"omitempty,min=0"`
	Limit         *int   `form:"limit" binding:"omitempty,min=1"`
	Offset        int    `form:"offset" binding:"omitempty,min=0"`
}

// ImpactPage is one window of the ranked deal-impact table
type ImpactPage struct {
	Rows []dealimpact.Row
	Page dealimpact.Page
}

// ExportResult locates an uploaded deal-impact CSV
type ExportResult struct {
	Key       string    `json:"key"`
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expires_at"`
	Rows      int       `json:"rows"`
}
