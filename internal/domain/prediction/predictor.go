package prediction

import (
	"context"
	"strconv"
)

// Predictor scores a feature vector and returns the predicted profit margin.
// Implementations fail with *ConfigError, *TimeoutError, *ProcessError or *ParseError.
type Predictor interface {
	Predict(ctx context.Context, req Request) (float64, error)
}

// FormatMargin renders a prediction with two decimal places
func FormatMargin(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
