package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/mock"

	predictionapp "github.com/profitalyze/backend/internal/application/prediction"
	reportapp "github.com/profitalyze/backend/internal/application/report"
	"github.com/profitalyze/backend/internal/domain/analytics"
	"github.com/profitalyze/backend/internal/domain/catalog"
	"github.com/profitalyze/backend/internal/domain/dealimpact"
	"github.com/profitalyze/backend/internal/domain/prediction"
	"github.com/profitalyze/backend/internal/interfaces/http/middleware"
)

func init() {
	gin.SetMode(gin.TestMode)
	middleware.SetupValidator()
}

// serve runs one request through router
func serve(router *gin.Engine, method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

// MockProductReader implements ProductReader for testing
type MockProductReader struct {
	mock.Mock
}

func (m *MockProductReader) List(ctx context.Context) ([]catalog.Product, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]catalog.Product), args.Error(1)
}

func (m *MockProductReader) GetByID(ctx context.Context, id int64) (*catalog.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Product), args.Error(1)
}

func (m *MockProductReader) ListByCategory(ctx context.Context) ([]catalog.CategoryGroup, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]catalog.CategoryGroup), args.Error(1)
}

func (m *MockProductReader) RevenueByCategory(ctx context.Context) ([]catalog.CategoryRevenue, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]catalog.CategoryRevenue), args.Error(1)
}

// MockDealImpactReader implements DealImpactReader for testing
type MockDealImpactReader struct {
	mock.Mock
}

func (m *MockDealImpactReader) ListImpact(ctx context.Context, q reportapp.AssumptionsQuery) ([]dealimpact.Row, error) {
	args := m.Called(ctx, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]dealimpact.Row), args.Error(1)
}

func (m *MockDealImpactReader) ListFilteredImpact(ctx context.Context, f reportapp.ImpactFilter) (*reportapp.ImpactPage, error) {
	args := m.Called(ctx, f)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*reportapp.ImpactPage), args.Error(1)
}

func (m *MockDealImpactReader) GetDealImpact(ctx context.Context, dealID int64, q reportapp.AssumptionsQuery) (*dealimpact.Row, error) {
	args := m.Called(ctx, dealID, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dealimpact.Row), args.Error(1)
}

func (m *MockDealImpactReader) ExportImpact(ctx context.Context, f reportapp.ImpactFilter) (*reportapp.ExportResult, error) {
	args := m.Called(ctx, f)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*reportapp.ExportResult), args.Error(1)
}

// MockMarginPredictor implements MarginPredictor for testing
type MockMarginPredictor struct {
	mock.Mock
}

func (m *MockMarginPredictor) PredictMargin(ctx context.Context, in prediction.Input) (*predictionapp.MarginResult, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*predictionapp.MarginResult), args.Error(1)
}

// MockPredictor implements prediction.Predictor for testing
type MockPredictor struct {
	mock.Mock
}

func (m *MockPredictor) Predict(ctx context.Context, req prediction.Request) (float64, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(float64), args.Error(1)
}

// MockAnalyticsReader implements AnalyticsReader for testing
type MockAnalyticsReader struct {
	mock.Mock
}

func (m *MockAnalyticsReader) TopCustomers(ctx context.Context) ([]analytics.CustomerSpending, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]analytics.CustomerSpending), args.Error(1)
}

func (m *MockAnalyticsReader) DealUsageByTier(ctx context.Context) ([]analytics.TierDealUsage, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]analytics.TierDealUsage), args.Error(1)
}

func (m *MockAnalyticsReader) LoyaltyTiers(ctx context.Context) ([]analytics.TierCount, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]analytics.TierCount), args.Error(1)
}

func (m *MockAnalyticsReader) CategoryVolumes(ctx context.Context) ([]analytics.CategoryVolume, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]analytics.CategoryVolume), args.Error(1)
}

func (m *MockAnalyticsReader) CartFunnel(ctx context.Context) ([]analytics.FunnelStage, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]analytics.FunnelStage), args.Error(1)
}

// MockPinger implements Pinger for testing
type MockPinger struct {
	mock.Mock
}

func (m *MockPinger) Ping(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}
