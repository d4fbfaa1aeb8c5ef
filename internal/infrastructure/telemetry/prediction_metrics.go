package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/metric"
)

// Prediction outcomes
const (
	OutcomeSuccess = "success"
	OutcomeConfig  = "config_error"
	OutcomeTimeout = "timeout"
	OutcomeProcess = "process_error"
	OutcomeParse   = "parse_error"
)

// PredictionMetrics counts scoring runs and their latency per model
type PredictionMetrics struct {
	runs     *Counter
	duration *Histogram
}

// NewPredictionMetrics creates the scoring instruments on meter
func NewPredictionMetrics(meter metric.Meter) (*PredictionMetrics, error) {
	runs, err := NewCounter(meter, "prediction_runs_total", "Scoring process runs by model and outcome", "{run}")
	if err != nil {
		return nil, err
	}
	duration, err := NewHistogram(meter, HistogramOpts{
		Name:        "prediction_duration_seconds",
		Description: "Scoring process wall time in seconds",
		Unit:        "s",
		Boundaries:  ScoringDurationBuckets,
	})
	if err != nil {
		return nil, err
	}
	return &PredictionMetrics{runs: runs, duration: duration}, nil
}

// Record records one scoring run. A nil receiver is a no-op.
func (m *PredictionMetrics) Record(ctx context.Context, model, outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.runs.Inc(ctx, AttrPredictionModel.String(model), AttrPredictionOutcome.String(outcome))
	m.duration.RecordDuration(ctx, d, AttrPredictionModel.String(model))
}
