package handler

import (
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	predictionapp "github.com/profitalyze/backend/internal/application/prediction"
	"github.com/profitalyze/backend/internal/domain/prediction"
)

const predictPath = "/predictions/predict-margin"

func predictionRouter(h *PredictionHandler) *gin.Engine {
	r := gin.New()
	r.POST(predictPath, h.PredictMargin)
	return r
}

const cartBody = `{
	"products": [
		{"product_id": 1, "unit_price": 20, "cost_price": 12, "quantity": 2, "brand": "Acme", "category_id": 3, "shipping_cost": 4},
		{"product_id": 2, "unit_price": 10, "cost_price": 5, "quantity": 1, "brand": "Zen", "category_id": 5, "shipping_cost": 0}
	],
	"discount_type": "percentage",
	"discount_value": 10
}`

const singleQuery = "?product_id=1&unit_price=20&cost_price=12&quantity=2&brand=Acme" +
	"&category_id=3&shipping_cost=4&discount_type=percentage&discount_value=10"

func TestPredictionHandler_BodyForm(t *testing.T) {
	predictor := new(MockMarginPredictor)
	predictor.On("PredictMargin", mock.Anything, mock.MatchedBy(func(in prediction.Input) bool {
		return len(in.Items) == 2 && in.Discount.Type == "percentage" && *in.Items[1].Brand == "Zen"
	})).Return(&predictionapp.MarginResult{ProfitMargin: "23.46", Model: prediction.ModelCombination}, nil)

	w := serve(predictionRouter(NewPredictionHandler(predictor)), http.MethodPost, predictPath, cartBody)

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"profit_margin":"23.46"}`, w.Body.String())
	predictor.AssertExpectations(t)
}

func TestPredictionHandler_QueryForm(t *testing.T) {
	predictor := new(MockMarginPredictor)
	predictor.On("PredictMargin", mock.Anything, mock.MatchedBy(func(in prediction.Input) bool {
		return len(in.Items) == 1 && *in.Items[0].ProductID == 1 && *in.Items[0].Quantity == 2
	})).Return(&predictionapp.MarginResult{ProfitMargin: "18.00", Model: prediction.ModelSingle}, nil)

	w := serve(predictionRouter(NewPredictionHandler(predictor)), http.MethodPost, predictPath+singleQuery, "")

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"profit_margin":"18.00"}`, w.Body.String())
	predictor.AssertExpectations(t)
}

func TestPredictionHandler_InputErrors(t *testing.T) {
	tests := []struct {
		name   string
		target string
		body   string
		want   string
	}{
		{"no body and no query", predictPath, "", prediction.MsgNoProductsOrQuery},
		{"body without products", predictPath, `{"discount_type":"percentage"}`, prediction.MsgNoProductsOrQuery},
		{"malformed body", predictPath, `{"products":`, prediction.MsgNoProductsOrQuery},
		{"partial query", predictPath + "?product_id=1&unit_price=20", "", prediction.MsgMissingQueryParams},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			predictor := new(MockMarginPredictor)

			w := serve(predictionRouter(NewPredictionHandler(predictor)), http.MethodPost, tt.target, tt.body)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.JSONEq(t, `{"error":"`+tt.want+`"}`, w.Body.String())
			predictor.AssertNotCalled(t, "PredictMargin", mock.Anything, mock.Anything)
		})
	}
}

func TestPredictionHandler_ServiceErrors(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantError  string
	}{
		{
			name:       "validation",
			err:        prediction.NewValidationError(prediction.MsgInvalidDiscountType),
			wantStatus: http.StatusBadRequest,
			wantError:  prediction.MsgInvalidDiscountType,
		},
		{
			name:       "missing executable",
			err:        &prediction.ConfigError{Path: "/opt/venv/bin/python"},
			wantStatus: http.StatusInternalServerError,
			wantError:  prediction.MsgServerConfiguration,
		},
		{
			name:       "process failure",
			err:        &prediction.ProcessError{Script: "predict_regular.py", ExitCode: 1, Stderr: "ModuleNotFoundError"},
			wantStatus: http.StatusInternalServerError,
			wantError:  prediction.MsgPredictionFailed,
		},
		{
			name:       "timeout",
			err:        &prediction.TimeoutError{Timeout: 10 * time.Second},
			wantStatus: http.StatusInternalServerError,
			wantError:  prediction.MsgPredictionFailed,
		},
		{
			name:       "unparseable output",
			err:        &prediction.ParseError{Output: "nan", Err: errors.New("not finite")},
			wantStatus: http.StatusInternalServerError,
			wantError:  prediction.MsgPredictionFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			predictor := new(MockMarginPredictor)
			predictor.On("PredictMargin", mock.Anything, mock.Anything).Return(nil, tt.err)

			w := serve(predictionRouter(NewPredictionHandler(predictor)), http.MethodPost, predictPath, cartBody)

			assert.Equal(t, tt.wantStatus, w.Code)
			resp := decodeReport(t, w.Body.Bytes())
			assert.Equal(t, tt.wantError, resp["error"])
			if tt.wantStatus == http.StatusInternalServerError {
				assert.Equal(t, tt.err.Error(), resp["details"])
			}
		})
	}
}

func TestPredictionHandler_ServiceValidation(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{
			name: "empty products array",
			body: `{"products":[],"discount_type":"percentage","discount_value":10}`,
			want: prediction.MsgEmptyProducts,
		},
		{
			name: "unknown discount type",
			body: `{"products":[{"product_id":1,"unit_price":20,"cost_price":12,"quantity":2,"brand":"Acme","category_id":3,"shipping_cost":4}],` +
				`"discount_type":"bogus","discount_value":10}`,
			want: prediction.MsgInvalidDiscountType,
		},
		{
			name: "product missing fields",
			body: `{"products":[{"product_id":1}],"discount_type":"fixed_amount","discount_value":5}`,
			want: prediction.MsgMissingProductFields,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			scorer := new(MockPredictor)
			h := NewPredictionHandler(predictionapp.NewService(scorer))

			w := serve(predictionRouter(h), http.MethodPost, predictPath, tt.body)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.JSONEq(t, `{"error":"`+tt.want+`"}`, w.Body.String())
			scorer.AssertNotCalled(t, "Predict", mock.Anything, mock.Anything)
		})
	}

	t.Run("valid cart reaches the predictor", func(t *testing.T) {
		scorer := new(MockPredictor)
		scorer.On("Predict", mock.Anything, mock.MatchedBy(func(req prediction.Request) bool {
			return req.Model == prediction.ModelCombination
		})).Return(23.46, nil)

		w := serve(predictionRouter(NewPredictionHandler(predictionapp.NewService(scorer))), http.MethodPost, predictPath, cartBody)

		require.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"profit_margin":"23.46"}`, w.Body.String())
		scorer.AssertExpectations(t)
	})
}
