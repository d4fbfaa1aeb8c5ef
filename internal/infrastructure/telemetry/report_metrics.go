package telemetry

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// Report attribute keys
var (
	AttrReport       = attribute.Key("report")
	AttrCacheResult  = attribute.Key("cache.result")
	AttrExportResult = attribute.Key("export.result")
	AttrDataset      = attribute.Key("dataset")
)

// Cache lookup results
const (
	CacheHit   = "hit"
	CacheMiss  = "miss"
	CacheError = "error"
)

// DatasetStatsProvider reports row counts of the analysed tables.
// It lets the telemetry layer sample the dataset without depending on the domain.
type DatasetStatsProvider interface {
	CountDeals(ctx context.Context) (int64, error)
	CountActiveCarts(ctx context.Context) (int64, error)
	CountTransactions(ctx context.Context) (int64, error)
}

// ReportMetricsConfig holds configuration for report metrics.
type ReportMetricsConfig struct {
	Meter           metric.Meter
	Logger          *zap.Logger
	CollectInterval time.Duration // default 5 minutes
	StatsProvider   DatasetStatsProvider
}

// ReportMetrics tracks report serving (cache efficiency, exports) and
// samples dataset sizes on an interval.
type ReportMetrics struct {
	logger *zap.Logger

	cacheLookups *Counter
	exports      *Counter
	reportRows   *Histogram
	datasetRows  *Gauge

	provider    DatasetStatsProvider
	interval    time.Duration
	stopChan    chan struct{}
	stopOnce    sync.Once
	collectOnce sync.Once
}

// ErrMeterNil is returned when no meter is supplied.
var ErrMeterNil = &MetricsError{Op: "NewReportMetrics", Err: "meter cannot be nil"}

// MetricsError represents a metrics-related error.
type MetricsError struct {
	Op  string
	Err string
}

func (e *MetricsError) Error() string {
	return e.Op + ": " + e.Err
}

// NewReportMetrics creates the report instruments.
func NewReportMetrics(cfg ReportMetricsConfig) (*ReportMetrics, error) {
	if cfg.Meter == nil {
		return nil, ErrMeterNil
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	interval := cfg.CollectInterval
	if interval <= 0 {
		interval = 5 * time.Minute
	}

	rm := &ReportMetrics{
		logger:   logger,
		provider: cfg.StatsProvider,
		interval: interval,
		stopChan: make(chan struct{}),
	}

	var err error
	if rm.cacheLookups, err = NewCounter(cfg.Meter, "report_cache_lookups_total", "Report cache lookups by result", "{lookup}"); err != nil {
		return nil, err
	}
	if rm.exports, err = NewCounter(cfg.Meter, "report_exports_total", "Report exports by result", "{export}"); err != nil {
		return nil, err
	}
	if rm.reportRows, err = NewHistogram(cfg.Meter, HistogramOpts{
		Name:        "report_rows",
		Description: "Rows returned per report",
		Unit:        "{row}",
		Boundaries:  []float64{0, 1, 5, 10, 25, 50, 100, 250, 500},
	}); err != nil {
		return nil, err
	}
	if rm.datasetRows, err = NewGauge(cfg.Meter, "dataset_rows", "Row counts of the analysed tables", "{row}"); err != nil {
		return nil, err
	}
	return rm, nil
}

// RecordCacheLookup counts one cache lookup. A nil receiver is a no-op.
func (rm *ReportMetrics) RecordCacheLookup(ctx context.Context, report, result string) {
	if rm == nil {
		return
	}
	rm.cacheLookups.Inc(ctx, AttrReport.String(report), AttrCacheResult.String(result))
}

// RecordExport counts one export attempt. A nil receiver is a no-op.
func (rm *ReportMetrics) RecordExport(ctx context.Context, success bool) {
	if rm == nil {
		return
	}
	result := "success"
	if !success {
		result = "failure"
	}
	rm.exports.Inc(ctx, AttrExportResult.String(result))
}

// RecordRows records the size of a served report. A nil receiver is a no-op.
func (rm *ReportMetrics) RecordRows(ctx context.Context, report string, rows int) {
	if rm == nil {
		return
	}
	rm.reportRows.Record(ctx, float64(rows), AttrReport.String(report))
}

// StartPeriodicCollection samples dataset sizes until Stop or ctx is done.
// Only the first call starts the collector.
func (rm *ReportMetrics) StartPeriodicCollection(ctx context.Context) {
	if rm.provider == nil {
		rm.logger.Debug("No dataset stats provider configured, skipping collection")
		return
	}
	rm.collectOnce.Do(func() {
		go rm.runPeriodicCollection(ctx)
	})
}

func (rm *ReportMetrics) runPeriodicCollection(ctx context.Context) {
	ticker := time.NewTicker(rm.interval)
	defer ticker.Stop()

	rm.collectDatasetStats(ctx)
	for {
		select {
		case <-rm.stopChan:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			rm.collectDatasetStats(ctx)
		}
	}
}

func (rm *ReportMetrics) collectDatasetStats(ctx context.Context) {
	samples := []struct {
		dataset string
		count   func(context.Context) (int64, error)
	}{
		{"deals", rm.provider.CountDeals},
		{"active_carts", rm.provider.CountActiveCarts},
		{"transactions", rm.provider.CountTransactions},
	}
	for _, s := range samples {
		n, err := s.count(ctx)
		if err != nil {
			rm.logger.Warn("Failed to sample dataset size", zap.String("dataset", s.dataset), zap.Error(err))
			continue
		}
		rm.datasetRows.Record(ctx, n, AttrDataset.String(s.dataset))
	}
}

// Stop stops the periodic collection.
func (rm *ReportMetrics) Stop() {
	rm.stopOnce.Do(func() {
		close(rm.stopChan)
	})
}
