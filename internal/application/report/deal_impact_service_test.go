package report

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/profitalyze/backend/internal/domain/dealimpact"
	"github.com/profitalyze/backend/internal/domain/shared"
	"github.com/profitalyze/backend/internal/infrastructure/config"
)

// MockDealImpactRepository is a mock implementation of dealimpact.Repository
type MockDealImpactRepository struct {
	mock.Mock
}

func (m *MockDealImpactRepository) AggregateByDeal(ctx context.Context, filter dealimpact.Filter) ([]dealimpact.Aggregate, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]dealimpact.Aggregate), args.Error(1)
}

// MockReportCache is a mock implementation of shared.ReportCache
type MockReportCache struct {
	mock.Mock
}

func (m *MockReportCache) Get(ctx context.Context, key string, dest any) (bool, error) {
	args := m.Called(ctx, key, dest)
	return args.Bool(0), args.Error(1)
}

func (m *MockReportCache) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	args := m.Called(ctx, key, value, ttl)
	return args.Error(0)
}

func (m *MockReportCache) Close() error {
	return m.Called().Error(0)
}

// MockExportStorage is a mock implementation of ExportStorage
type MockExportStorage struct {
	mock.Mock
}

func (m *MockExportStorage) Upload(ctx context.Context, key string, data []byte, contentType string) error {
	args := m.Called(ctx, key, data, contentType)
	return args.Error(0)
}

func (m *MockExportStorage) GenerateDownloadURL(ctx context.Context, key string, expiresIn time.Duration) (string, time.Time, error) {
	args := m.Called(ctx, key, expiresIn)
	return args.String(0), args.Get(1).(time.Time), args.Error(2)
}

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func testAnalysisConfig() config.AnalysisConfig {
	return config.AnalysisConfig{
		ProfitMargin:      0.35,
		CustomerRetention: 0.5,
		DefaultLimit:      2,
		MaxLimit:          3,
	}
}

// testAggregates rank as deal 1 (40), deal 2 (28.75), deal 3 (17.5)
func testAggregates() []dealimpact.Aggregate {
	return []dealimpact.Aggregate{
		{
			DealID: 3, DealName: "Bundle", DealType: "bogo", UsageCount: 1,
			TotalSavingsGiven: d("0"), TotalRevenueWithDeal: d("100"), AvgOrderValueWithDeal: d("100"),
			RevenuePlusSavings: d("100"),
		},
		{
			DealID: 1, DealName: "Ten Off", DealType: dealimpact.DealTypePercentage, DiscountValue: d("10"), UsageCount: 3,
			TotalSavingsGiven: d("100"), TotalRevenueWithDeal: d("900"), AvgOrderValueWithDeal: d("300"),
			RevenuePlusSavings: d("1000"),
		},
		{
			DealID: 2, DealName: "Fifty Back", DealType: dealimpact.DealTypeFixedAmount, DiscountValue: d("50"), UsageCount: 1,
			TotalSavingsGiven: d("50"), TotalRevenueWithDeal: d("500"), AvgOrderValueWithDeal: d("500"),
			RevenuePlusSavings: d("550"),
		},
	}
}

func newTestService(t *testing.T, repo *MockDealImpactRepository, opts ...DealImpactOption) *DealImpactService {
	t.Helper()
	svc, err := NewDealImpactService(repo, testAnalysisConfig(), opts...)
	require.NoError(t, err)
	return svc
}

func dealIDs(rows []dealimpact.Row) []int64 {
	ids := make([]int64, len(rows))
	for i, r := range rows {
		ids[i] = r.DealID
	}
	return ids
}

func TestNewDealImpactService_InvalidDefaults(t *testing.T) {
	cfg := testAnalysisConfig()
	cfg.ProfitMargin = 0
	_, err := NewDealImpactService(new(MockDealImpactRepository), cfg)
	assert.Error(t, err)
}

func TestDealImpactService_ListImpact(t *testing.T) {
	repo := new(MockDealImpactRepository)
	svc := newTestService(t, repo)
	repo.On("AggregateByDeal", mock.Anything, dealimpact.Filter{}).Return(testAggregates(), nil)

	rows, err := svc.ListImpact(context.Background(), AssumptionsQuery{})
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2, 3}, dealIDs(rows))
	assert.True(t, d("40").Equal(rows[0].IncrementalProfit), rows[0].IncrementalProfit.String())
	assert.True(t, d("28.75").Equal(rows[1].IncrementalProfit), rows[1].IncrementalProfit.String())
	repo.AssertExpectations(t)
}

func TestDealImpactService_ListImpact_AssumptionOverrides(t *testing.T) {
	repo := new(MockDealImpactRepository)
	svc := newTestService(t, repo)
	repo.On("AggregateByDeal", mock.Anything, dealimpact.Filter{}).Return(testAggregates(), nil)

	margin, retention := 0.5, 1.0
	rows, err := svc.ListImpact(context.Background(), AssumptionsQuery{ProfitMargin: &margin, CustomerRetention: &retention})
	require.NoError(t, err)

	// deal 3: 100*0.5 - 0 - 100*0.5*1
	for _, r := range rows {
		if r.DealID == 3 {
			assert.True(t, r.IncrementalProfit.IsZero(), r.IncrementalProfit.String())
		}
	}
}

func TestDealImpactService_ListImpact_InvalidAssumptions(t *testing.T) {
	repo := new(MockDealImpactRepository)
	svc := newTestService(t, repo)

	retention := 1.5
	_, err := svc.ListImpact(context.Background(), AssumptionsQuery{CustomerRetention: &retention})
	require.Error(t, err)
	assert.ErrorIs(t, err, shared.ErrInvalidInput)
	repo.AssertNotCalled(t, "AggregateByDeal", mock.Anything, mock.Anything)
}

func TestDealImpactService_ListImpact_RepositoryError(t *testing.T) {
	repo := new(MockDealImpactRepository)
	svc := newTestService(t, repo)
	dbErr := errors.New("relation \"deals\" does not exist")
	repo.On("AggregateByDeal", mock.Anything, mock.Anything).Return(nil, dbErr)

	_, err := svc.ListImpact(context.Background(), AssumptionsQuery{})
	require.Error(t, err)
	assert.ErrorIs(t, err, dbErr)
}

func intPtr(v int) *int { return &v }

func TestDealImpactService_ListFilteredImpact(t *testing.T) {
	tests := []struct {
		name       string
		filter     ImpactFilter
		wantIDs    []int64
		wantLimit  int
		wantOffset int
	}{
		{name: "default limit", filter: ImpactFilter{}, wantIDs: []int64{1, 2}, wantLimit: 2},
		{name: "offset", filter: ImpactFilter{Limit: intPtr(2), Offset: 1}, wantIDs: []int64{2, 3}, wantLimit: 2, wantOffset: 1},
		{name: "limit clamped", filter: ImpactFilter{Limit: intPtr(100)}, wantIDs: []int64{1, 2, 3}, wantLimit: 3},
		{name: "offset past end", filter: ImpactFilter{Offset: 10}, wantIDs: []int64{}, wantLimit: 2, wantOffset: 10},
		{name: "explicit zero limit", filter: ImpactFilter{Limit: intPtr(0)}, wantIDs: []int64{}, wantLimit: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockDealImpactRepository)
			svc := newTestService(t, repo)
			repo.On("AggregateByDeal", mock.Anything, dealimpact.Filter{}).Return(testAggregates(), nil)

			page, err := svc.ListFilteredImpact(context.Background(), tt.filter)
			require.NoError(t, err)
			assert.Equal(t, tt.wantIDs, dealIDs(page.Rows))
			assert.Equal(t, dealimpact.Page{Limit: tt.wantLimit, Offset: tt.wantOffset}, page.Page)
		})
	}
}

func TestDealImpactService_ListFilteredImpact_PassesFilter(t *testing.T) {
	repo := new(MockDealImpactRepository)
	svc := newTestService(t, repo)
	want := dealimpact.Filter{DealType: dealimpact.DealTypePercentage, MinUsageCount: 2}
	repo.On("AggregateByDeal", mock.Anything, want).Return(testAggregates()[1:2], nil)

	page, err := svc.ListFilteredImpact(context.Background(), ImpactFilter{DealType: "percentage", MinUsageCount: 2})
	require.NoError(t, err)
	assert.Equal(t, []int64{1}, dealIDs(page.Rows))
	repo.AssertExpectations(t)
}

func TestDealImpactService_GetDealImpact(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		repo := new(MockDealImpactRepository)
		svc := newTestService(t, repo)
		id := int64(2)
		repo.On("AggregateByDeal", mock.Anything, dealimpact.Filter{DealID: &id}).Return(testAggregates()[2:], nil)

		row, err := svc.GetDealImpact(context.Background(), 2, AssumptionsQuery{})
		require.NoError(t, err)
		assert.Equal(t, int64(2), row.DealID)
		assert.True(t, d("96.25").Equal(row.EstimatedProfitWithoutDeal))
	})

	t.Run("no usage", func(t *testing.T) {
		repo := new(MockDealImpactRepository)
		svc := newTestService(t, repo)
		repo.On("AggregateByDeal", mock.Anything, mock.Anything).Return([]dealimpact.Aggregate{}, nil)

		_, err := svc.GetDealImpact(context.Background(), 42, AssumptionsQuery{})
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestDealImpactService_CacheHit(t *testing.T) {
	repo := new(MockDealImpactRepository)
	cache := new(MockReportCache)
	svc := newTestService(t, repo, WithReportCache(cache, time.Minute))

	cached := []dealimpact.Row{{DealID: 9, DealName: "Cached"}}
	cache.On("Get", mock.Anything, mock.MatchedBy(func(key string) bool {
		return strings.HasPrefix(key, ReportDealImpact+":all:")
	}), mock.Anything).
		Run(func(args mock.Arguments) {
			*(args.Get(2).(*[]dealimpact.Row)) = cached
		}).
		Return(true, nil)

	rows, err := svc.ListImpact(context.Background(), AssumptionsQuery{})
	require.NoError(t, err)
	assert.Equal(t, cached, rows)
	repo.AssertNotCalled(t, "AggregateByDeal", mock.Anything, mock.Anything)
	cache.AssertNotCalled(t, "Set", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestDealImpactService_CacheMissStores(t *testing.T) {
	repo := new(MockDealImpactRepository)
	cache := new(MockReportCache)
	svc := newTestService(t, repo, WithReportCache(cache, time.Minute))

	repo.On("AggregateByDeal", mock.Anything, dealimpact.Filter{}).Return(testAggregates(), nil)
	cache.On("Get", mock.Anything, mock.Anything, mock.Anything).Return(false, nil)
	cache.On("Set", mock.Anything, mock.Anything, mock.Anything, time.Minute).Return(nil)

	rows, err := svc.ListImpact(context.Background(), AssumptionsQuery{})
	require.NoError(t, err)
	assert.Len(t, rows, 3)
	cache.AssertExpectations(t)
}

func TestDealImpactService_CacheErrorFallsThrough(t *testing.T) {
	repo := new(MockDealImpactRepository)
	cache := new(MockReportCache)
	svc := newTestService(t, repo, WithReportCache(cache, time.Minute))

	repo.On("AggregateByDeal", mock.Anything, dealimpact.Filter{}).Return(testAggregates(), nil)
	cache.On("Get", mock.Anything, mock.Anything, mock.Anything).Return(false, errors.New("redis down"))
	cache.On("Set", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(errors.New("redis down"))

	rows, err := svc.ListImpact(context.Background(), AssumptionsQuery{})
	require.NoError(t, err)
	assert.Len(t, rows, 3)
}

func TestImpactCacheKey_DistinguishesAssumptions(t *testing.T) {
	a := dealimpact.DefaultAssumptions()
	b := a
	b.CustomerRetention = d("0.6")
	id := int64(4)

	assert.NotEqual(t, impactCacheKey(ReportDealImpact, dealimpact.Filter{}, a), impactCacheKey(ReportDealImpact, dealimpact.Filter{}, b))
	assert.Contains(t, impactCacheKey(ReportDealImpactSingle, dealimpact.Filter{DealID: &id}, a), ":4:")
}

func TestDealImpactService_ExportImpact(t *testing.T) {
	repo := new(MockDealImpactRepository)
	store := new(MockExportStorage)
	svc := newTestService(t, repo, WithExportStorage(store, "/exports/deal-impact/", 15*time.Minute))
	require.True(t, svc.ExportEnabled())

	expires := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	repo.On("AggregateByDeal", mock.Anything, dealimpact.Filter{}).Return(testAggregates(), nil)

	var uploaded []byte
	store.On("Upload", mock.Anything, mock.MatchedBy(func(key string) bool {
		return strings.HasPrefix(key, "exports/deal-impact/") && strings.HasSuffix(key, ".csv")
	}), mock.Anything, "text/csv").
		Run(func(args mock.Arguments) { uploaded = args.Get(2).([]byte) }).
		Return(nil)
	store.On("GenerateDownloadURL", mock.Anything, mock.Anything, 15*time.Minute).
		Return("https://s3.example.com/signed", expires, nil)

	// limit and offset do not narrow the export
	result, err := svc.ExportImpact(context.Background(), ImpactFilter{Limit: intPtr(1), Offset: 1})
	require.NoError(t, err)
	assert.Equal(t, "https://s3.example.com/signed", result.URL)
	assert.Equal(t, expires, result.ExpiresAt)
	assert.Equal(t, 3, result.Rows)

	records, err := csv.NewReader(bytes.NewReader(uploaded)).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 4)
	assert.Equal(t, csvHeader, records[0])
	assert.Equal(t, "1", records[1][0])
	store.AssertExpectations(t)
}

func TestDealImpactService_ExportImpact_Unavailable(t *testing.T) {
	svc := newTestService(t, new(MockDealImpactRepository))
	assert.False(t, svc.ExportEnabled())

	_, err := svc.ExportImpact(context.Background(), ImpactFilter{})
	assert.ErrorIs(t, err, shared.ErrUnavailable)
}

func TestDealImpactService_ExportImpact_UploadError(t *testing.T) {
	repo := new(MockDealImpactRepository)
	store := new(MockExportStorage)
	svc := newTestService(t, repo, WithExportStorage(store, "exports", time.Hour))

	repo.On("AggregateByDeal", mock.Anything, mock.Anything).Return(testAggregates(), nil)
	store.On("Upload", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(errors.New("access denied"))

	_, err := svc.ExportImpact(context.Background(), ImpactFilter{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to upload export")
	store.AssertNotCalled(t, "GenerateDownloadURL", mock.Anything, mock.Anything, mock.Anything)
}

func TestRenderCSV_Empty(t *testing.T) {
	data, err := RenderCSV(nil)
	require.NoError(t, err)
	assert.Equal(t, strings.Join(csvHeader, ",")+"\n", string(data))
}

func TestExportKey(t *testing.T) {
	key := exportKey("exports", time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC))
	assert.True(t, strings.HasPrefix(key, "exports/2026/03/09/"), key)
	assert.True(t, strings.HasSuffix(key, ".csv"), key)
}
