// Package prediction serves margin predictions for a cart and discount.
package prediction

import (
	"context"

	"github.com/profitalyze/backend/internal/domain/prediction"
	"github.com/profitalyze/backend/internal/infrastructure/telemetry"
)

// MarginResult is a prediction rendered for API callers
type MarginResult struct {
	ProfitMargin string           `json:"profit_margin"`
	Model        prediction.Model `json:"-"`
}

// Service validates prediction input and delegates scoring to a Predictor
type Service struct {
	predictor prediction.Predictor
}

// NewService creates a new prediction Service
func NewService(predictor prediction.Predictor) *Service {
	return &Service{predictor: predictor}
}

// PredictMargin builds the feature vector for the cart and scores it.
// Input problems return *prediction.ValidationError; scoring failures are
// passed through from the Predictor unchanged.
func (s *Service) PredictMargin(ctx context.Context, in prediction.Input) (*MarginResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "prediction", "predict_margin")
	defer span.End()

	req, err := prediction.BuildRequest(in.Items, in.Discount)
	if err != nil {
		return nil, err
	}
	telemetry.SetAttributes(span, telemetry.SpanAttrPredictionModel, string(req.Model))

	margin, err := s.predictor.Predict(ctx, req)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	return &MarginResult{ProfitMargin: prediction.FormatMargin(margin), Model: req.Model}, nil
}
