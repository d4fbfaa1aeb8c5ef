package report

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"path"
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/profitalyze/backend/internal/domain/dealimpact"
	"github.com/profitalyze/backend/internal/domain/shared"
	"github.com/profitalyze/backend/internal/infrastructure/logger"
	"github.com/profitalyze/backend/internal/infrastructure/telemetry"
)

// ErrExportUnavailable is returned when no export storage is configured
var ErrExportUnavailable = shared.NewDomainError(shared.ErrUnavailable.Code, "Report export storage is not configured")

var csvHeader = []string{
	"deal_id",
	"deal_name",
	"deal_type",
	"discount_value",
	"usage_count",
	"total_savings_given",
	"total_revenue_with_deal",
	"avg_order_value_with_deal",
	"estimated_revenue_without_deal",
	"incremental_revenue",
	"profit_with_deal",
	"estimated_profit_without_deal",
	"incremental_profit",
	"deal_profit_margin_percent",
}

// ExportImpact renders the ranked table matching the filter as CSV, uploads it
// and returns a time-limited download link. Limit and offset are ignored.
func (s *DealImpactService) ExportImpact(ctx context.Context, f ImpactFilter) (*ExportResult, error) {
	if s.storage == nil {
		return nil, ErrExportUnavailable
	}
	ctx, span := telemetry.StartServiceSpan(ctx, "deal_impact", "export")
	defer span.End()

	result, err := s.export(ctx, f)
	s.metrics.RecordExport(ctx, err == nil)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	telemetry.SetAttributes(span,
		telemetry.SpanAttrExportKey, result.Key,
		telemetry.SpanAttrRowCount, result.Rows,
	)
	logger.FromContextOr(ctx, s.logger).Info("Deal impact report exported",
		zap.String("key", result.Key),
		zap.Int("rows", result.Rows),
	)
	return result, nil
}

func (s *DealImpactService) export(ctx context.Context, f ImpactFilter) (*ExportResult, error) {
	a, err := s.Assumptions(f.AssumptionsQuery)
	if err != nil {
		return nil, err
	}
	rows, err := s.ranked(ctx, ReportDealImpactFiltered, dealimpact.Filter{
		DealType:      f.DealType,
		MinUsageCount: f.MinUsageCount,
	}, a)
	if err != nil {
		return nil, err
	}

	data, err := RenderCSV(rows)
	if err != nil {
		return nil, err
	}

	key := exportKey(s.exportPrefix, time.Now().UTC())
	if err := s.storage.Upload(ctx, key, data, "text/csv"); err != nil {
		return nil, fmt.Errorf("failed to upload export: %w", err)
	}
	url, expiresAt, err := s.storage.GenerateDownloadURL(ctx, key, s.exportExpiry)
	if err != nil {
		return nil, fmt.Errorf("failed to sign export url: %w", err)
	}
	return &ExportResult{Key: key, URL: url, ExpiresAt: expiresAt, Rows: len(rows)}, nil
}

// exportKey builds prefix/YYYY/MM/DD/<uuid>.csv
func exportKey(prefix string, now time.Time) string {
	return path.Join(prefix, now.Format("2006/01/02"), uuid.NewString()+".csv")
}

// RenderCSV writes the rows with a header line. Money values keep full precision.
func RenderCSV(rows []dealimpact.Row) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(csvHeader); err != nil {
		return nil, fmt.Errorf("failed to write csv header: %w", err)
	}
	for _, r := range rows {
		record := []string{
			strconv.FormatInt(r.DealID, 10),
			r.DealName,
			r.DealType,
			r.DiscountValue.String(),
			strconv.FormatInt(r.UsageCount, 10),
			r.TotalSavingsGiven.String(),
			r.TotalRevenueWithDeal.String(),
			r.AvgOrderValueWithDeal.String(),
			r.EstimatedRevenueWithoutDeal.String(),
			r.IncrementalRevenue.String(),
			r.ProfitWithDeal.String(),
			r.EstimatedProfitWithoutDeal.String(),
			r.IncrementalProfit.String(),
			r.DealProfitMarginPercent.StringFixed(2),
		}
		if err := w.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write csv row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("failed to flush csv: %w", err)
	}
	return buf.Bytes(), nil
}
