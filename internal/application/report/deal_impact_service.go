// Package report serves the deal-impact and customer analytics reports.
package report

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/profitalyze/backend/internal/domain/dealimpact"
	"github.com/profitalyze/backend/internal/domain/shared"
	"github.com/profitalyze/backend/internal/infrastructure/config"
	"github.com/profitalyze/backend/internal/infrastructure/logger"
	"github.com/profitalyze/backend/internal/infrastructure/telemetry"
)

// Report names used for cache keys and metrics
const (
	ReportDealImpact         = "deal_impact"
	ReportDealImpactFiltered = "deal_impact_filtered"
	ReportDealImpactSingle   = "deal_impact_single"
)

// ExportStorage stores rendered reports and hands out download links
type ExportStorage interface {
	Upload(ctx context.Context, key string, data []byte, contentType string) error
	GenerateDownloadURL(ctx context.Context, key string, expiresIn time.Duration) (string, time.Time, error)
}

// DealImpactService ranks deals by estimated incremental profit
type DealImpactService struct {
	repo         dealimpact.Repository
	defaults     dealimpact.Assumptions
	defaultLimit int
	maxLimit     int

	cache    shared.ReportCache
	cacheTTL time.Duration
	metrics  *telemetry.ReportMetrics
	logger   *zap.Logger

	storage      ExportStorage
	exportPrefix string
	exportExpiry time.Duration
}

// DealImpactOption configures a DealImpactService
type DealImpactOption func(*DealImpactService)

// WithReportCache caches ranked tables for ttl
func WithReportCache(cache shared.ReportCache, ttl time.Duration) DealImpactOption {
	return func(s *DealImpactService) {
		s.cache = cache
		s.cacheTTL = ttl
	}
}

// WithReportMetrics records cache lookups, exports and result sizes
func WithReportMetrics(m *telemetry.ReportMetrics) DealImpactOption {
	return func(s *DealImpactService) {
		s.metrics = m
	}
}

// WithLogger sets the fallback logger used outside request scope
func WithLogger(l *zap.Logger) DealImpactOption {
	return func(s *DealImpactService) {
		s.logger = l
	}
}

// WithExportStorage enables CSV export. Objects are written under prefix
// and download links are valid for expiry.
func WithExportStorage(storage ExportStorage, prefix string, expiry time.Duration) DealImpactOption {
	return func(s *DealImpactService) {
		s.storage = storage
		s.exportPrefix = strings.Trim(prefix, "/")
		s.exportExpiry = expiry
	}
}

// NewDealImpactService creates a new DealImpactService
func NewDealImpactService(repo dealimpact.Repository, cfg config.AnalysisConfig, opts ...DealImpactOption) (*DealImpactService, error) {
	defaults := dealimpact.Assumptions{
		ProfitMargin:      decimal.NewFromFloat(cfg.ProfitMargin),
		CustomerRetention: decimal.NewFromFloat(cfg.CustomerRetention),
	}
	if err := defaults.Validate(); err != nil {
		return nil, fmt.Errorf("invalid analysis defaults: %w", err)
	}

	s := &DealImpactService{
		repo:         repo,
		defaults:     defaults,
		defaultLimit: cfg.DefaultLimit,
		maxLimit:     cfg.MaxLimit,
		logger:       zap.NewNop(),
		exportExpiry: time.Hour,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// ExportEnabled reports whether an export storage is configured
func (s *DealImpactService) ExportEnabled() bool {
	return s.storage != nil
}

// Assumptions resolves per-request overrides against the configured defaults
func (s *DealImpactService) Assumptions(q AssumptionsQuery) (dealimpact.Assumptions, error) {
	a := s.defaults
	if q.ProfitMargin != nil {
		a.ProfitMargin = decimal.NewFromFloat(*q.ProfitMargin)
	}
	if q.CustomerRetention != nil {
		a.CustomerRetention = decimal.NewFromFloat(*q.CustomerRetention)
	}
	if err := a.Validate(); err != nil {
		return dealimpact.Assumptions{}, shared.NewDomainErrorWithCause(shared.ErrInvalidInput.Code, err.Error(), err)
	}
	return a, nil
}

// ListImpact returns every deal with usage, ranked by incremental profit
func (s *DealImpactService) ListImpact(ctx context.Context, q AssumptionsQuery) ([]dealimpact.Row, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "deal_impact", "list")
	defer span.End()

	a, err := s.Assumptions(q)
	if err != nil {
		return nil, err
	}
	rows, err := s.ranked(ctx, ReportDealImpact, dealimpact.Filter{}, a)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	telemetry.SetAttributes(span, telemetry.SpanAttrRowCount, len(rows))
	s.metrics.RecordRows(ctx, ReportDealImpact, len(rows))
	return rows, nil
}

// ListFilteredImpact ranks deals matching the filter and returns the requested window
func (s *DealImpactService) ListFilteredImpact(ctx context.Context, f ImpactFilter) (*ImpactPage, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "deal_impact", "list_filtered")
	defer span.End()
	telemetry.SetAttributes(span, telemetry.SpanAttrDealType, f.DealType)

	a, err := s.Assumptions(f.AssumptionsQuery)
	if err != nil {
		return nil, err
	}
	page := s.page(f)
	rows, err := s.ranked(ctx, ReportDealImpactFiltered, dealimpact.Filter{
		DealType:      f.DealType,
		MinUsageCount: f.MinUsageCount,
	}, a)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	window := dealimpact.Paginate(rows, page)
	telemetry.SetAttributes(span, telemetry.SpanAttrRowCount, len(window))
	s.metrics.RecordRows(ctx, ReportDealImpactFiltered, len(window))
	return &ImpactPage{Rows: window, Page: page}, nil
}

// GetDealImpact returns the impact row for one deal. A deal that does not
// exist or has no recorded usage yields shared.ErrNotFound.
func (s *DealImpactService) GetDealImpact(ctx context.Context, dealID int64, q AssumptionsQuery) (*dealimpact.Row, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "deal_impact", "get")
	defer span.End()
	telemetry.SetAttributes(span, telemetry.SpanAttrDealID, dealID)

	a, err := s.Assumptions(q)
	if err != nil {
		return nil, err
	}
	rows, err := s.ranked(ctx, ReportDealImpactSingle, dealimpact.Filter{DealID: &dealID}, a)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	if len(rows) == 0 {
		return nil, shared.ErrNotFound
	}
	return &rows[0], nil
}

// page applies the default and maximum window sizes
func (s *DealImpactService) page(f ImpactFilter) dealimpact.Page {
	limit := s.defaultLimit
	if f.Limit != nil {
		limit = *f.Limit
	}
	if s.maxLimit > 0 && limit > s.maxLimit {
		limit = s.maxLimit
	}
	offset := f.Offset
	if offset < 0 {
		offset = 0
	}
	return dealimpact.Page{Limit: limit, Offset: offset}
}

// ranked returns the full ranked table for a filter, served from cache when possible
func (s *DealImpactService) ranked(ctx context.Context, report string, filter dealimpact.Filter, a dealimpact.Assumptions) ([]dealimpact.Row, error) {
	key := impactCacheKey(report, filter, a)
	if rows, ok := s.cached(ctx, report, key); ok {
		return rows, nil
	}

	var rows []dealimpact.Row
	var queryErr error
	telemetry.WithProfilingLabels(ctx, map[string]string{telemetry.ProfilingLabelOperation: report}, func(c context.Context) {
		aggs, err := s.repo.AggregateByDeal(c, filter)
		if err != nil {
			queryErr = fmt.Errorf("failed to aggregate deal usage: %w", err)
			return
		}
		rows = dealimpact.Analyze(aggs, a)
	})
	if queryErr != nil {
		return nil, queryErr
	}

	s.store(ctx, key, rows)
	return rows, nil
}

func (s *DealImpactService) cached(ctx context.Context, report, key string) ([]dealimpact.Row, bool) {
	if s.cache == nil {
		return nil, false
	}
	var rows []dealimpact.Row
	hit, err := s.cache.Get(ctx, key, &rows)
	switch {
	case err != nil:
		s.metrics.RecordCacheLookup(ctx, report, telemetry.CacheError)
		logger.FromContextOr(ctx, s.logger).Warn("Report cache read failed", zap.String("key", key), zap.Error(err))
		return nil, false
	case !hit:
		s.metrics.RecordCacheLookup(ctx, report, telemetry.CacheMiss)
		return nil, false
	}
	s.metrics.RecordCacheLookup(ctx, report, telemetry.CacheHit)
	return rows, true
}

func (s *DealImpactService) store(ctx context.Context, key string, rows []dealimpact.Row) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(ctx, key, rows, s.cacheTTL); err != nil {
		logger.FromContextOr(ctx, s.logger).Warn("Report cache write failed", zap.String("key", key), zap.Error(err))
	}
}

// impactCacheKey identifies a ranked table by its filter and assumptions
func impactCacheKey(report string, f dealimpact.Filter, a dealimpact.Assumptions) string {
	deal := "all"
	if f.DealID != nil {
		deal = fmt.Sprintf("%d", *f.DealID)
	}
	return strings.Join([]string{
		report,
		deal,
		"type=" + f.DealType,
		fmt.Sprintf("min=%d", f.MinUsageCount),
		"margin=" + a.ProfitMargin.String(),
		"retention=" + a.CustomerRetention.String(),
	}, ":")
}
