package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	predictionapp "github.com/profitalyze/backend/internal/application/prediction"
	"github.com/profitalyze/backend/internal/domain/prediction"
)

// MarginPredictor is the prediction surface used by PredictionHandler
type MarginPredictor interface {
	PredictMargin(ctx context.Context, in prediction.Input) (*predictionapp.MarginResult, error)
}

// PredictionHandler handles margin prediction requests
type PredictionHandler struct {
	BaseHandler
	predictor MarginPredictor
}

// NewPredictionHandler creates a new PredictionHandler
func NewPredictionHandler(predictor MarginPredictor) *PredictionHandler {
	return &PredictionHandler{predictor: predictor}
}

// PredictMarginRequest documents the JSON body form
type PredictMarginRequest struct {
	Products      []PredictMarginProduct `json:"products"`
	DiscountType  string                 `json:"discount_type" example:"percentage"`
	DiscountValue float64                `json:"discount_value" example:"10"`
}

// PredictMarginProduct is one cart line of PredictMarginRequest
type PredictMarginProduct struct {
	ProductID    int64   `json:"product_id" example:"17"`
	UnitPrice    float64 `json:"unit_price" example:"19.99"`
	CostPrice    float64 `json:"cost_price" example:"12.50"`
	Quantity     int64   `json:"quantity" example:"2"`
	Brand        string  `json:"brand" example:"Acme"`
	CategoryID   int64   `json:"category_id" example:"4"`
	ShippingCost float64 `json:"shipping_cost" example:"3.00"`
}

// PredictMargin godoc
// @Summary      Predict profit margin for a cart and discount
// @Description  Accepts a JSON cart, or a single item as query parameters when the body has no products
// @Tags         predictions
// @Accept       json
// @Produce      json
// @Param        request body PredictMarginRequest false "Cart and discount"
// @Success      200 {object} predictionapp.MarginResult
// @Failure      400 {object} dto.ErrorResponse
// @Failure      500 {object} dto.ErrorResponse
// @Router       /predictions/predict-margin [post]
func (h *PredictionHandler) PredictMargin(c *gin.Context) {
	in, err := h.readInput(c)
	if err != nil {
		h.predictionError(c, err)
		return
	}

	result, err := h.predictor.PredictMargin(c.Request.Context(), in)
	if err != nil {
		h.predictionError(c, err)
		return
	}
	h.Success(c, result)
}

// readInput prefers the JSON body and falls back to the query form
func (h *PredictionHandler) readInput(c *gin.Context) (prediction.Input, error) {
	body, err := c.GetRawData()
	if err == nil {
		if in, ok := predictionapp.ParseBody(body); ok {
			return in, nil
		}
	}

	in, ok, err := predictionapp.ParseQuery(c.Request.URL.Query())
	if err != nil {
		return prediction.Input{}, err
	}
	if !ok {
		return prediction.Input{}, prediction.NewValidationError(prediction.MsgNoProductsOrQuery)
	}
	return in, nil
}

func (h *PredictionHandler) predictionError(c *gin.Context, err error) {
	var validationErr *prediction.ValidationError
	if errors.As(err, &validationErr) {
		h.BadRequest(c, validationErr.Message)
		return
	}

	var configErr *prediction.ConfigError
	if errors.As(err, &configErr) {
		h.logError(c, err, zap.String("python_path", configErr.Path))
		h.ErrorWithDetails(c, http.StatusInternalServerError, prediction.MsgServerConfiguration, err.Error())
		return
	}
	if errors.Is(err, prediction.ErrPredictorUnavailable) {
		h.logError(c, err)
		h.ErrorWithDetails(c, http.StatusInternalServerError, prediction.MsgServerConfiguration, err.Error())
		return
	}

	h.logError(c, err)
	h.ErrorWithDetails(c, http.StatusInternalServerError, prediction.MsgPredictionFailed, err.Error())
}
