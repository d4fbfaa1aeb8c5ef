package report

import (
	"context"
	"fmt"

	"github.com/profitalyze/backend/internal/domain/analytics"
	"github.com/profitalyze/backend/internal/infrastructure/telemetry"
)

// TopCustomersLimit is the number of customers in the spending ranking
const TopCustomersLimit = 10

// Analytics report names used for metrics
const (
	ReportCustomerSpending = "customer_spending"
	ReportDealUsage        = "deal_usage"
	ReportLoyaltyTiers     = "loyalty_tiers"
	ReportCategoryVolume   = "category_volume"
	ReportCartFunnel       = "cart_funnel"
)

// AnalyticsService builds the customer and deal usage dashboards
type AnalyticsService struct {
	repo    analytics.Repository
	metrics *telemetry.ReportMetrics
}

// NewAnalyticsService creates a new AnalyticsService. metrics may be nil.
func NewAnalyticsService(repo analytics.Repository, metrics *telemetry.ReportMetrics) *AnalyticsService {
	return &AnalyticsService{repo: repo, metrics: metrics}
}

// TopCustomers returns the highest spending customers
func (s *AnalyticsService) TopCustomers(ctx context.Context) ([]analytics.CustomerSpending, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "analytics", ReportCustomerSpending)
	defer span.End()

	out, err := s.repo.TopCustomersBySpending(ctx, TopCustomersLimit)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to rank customers: %w", err)
	}
	s.metrics.RecordRows(ctx, ReportCustomerSpending, len(out))
	return out, nil
}

// DealUsageByTier returns the loyalty tier by deal usage heatmap
func (s *AnalyticsService) DealUsageByTier(ctx context.Context) ([]analytics.TierDealUsage, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "analytics", ReportDealUsage)
	defer span.End()

	customers, err := s.repo.CustomerTiers(ctx)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to load customer tiers: %w", err)
	}
	usage, err := s.repo.UsageCountsByCustomerAndDeal(ctx)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to count deal usage: %w", err)
	}
	dealIDs, err := s.repo.DealIDs(ctx)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to load deals: %w", err)
	}

	out := analytics.BuildDealUsageHeatmap(customers, usage, dealIDs)
	s.metrics.RecordRows(ctx, ReportDealUsage, len(out))
	return out, nil
}

// LoyaltyTiers returns the number of customers per loyalty tier
func (s *AnalyticsService) LoyaltyTiers(ctx context.Context) ([]analytics.TierCount, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "analytics", ReportLoyaltyTiers)
	defer span.End()

	counts, err := s.repo.TierCounts(ctx)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to count loyalty tiers: %w", err)
	}
	out := analytics.NormalizeTierCounts(counts)
	s.metrics.RecordRows(ctx, ReportLoyaltyTiers, len(out))
	return out, nil
}

// CategoryVolumes returns per customer and category purchase volume of deal usages
func (s *AnalyticsService) CategoryVolumes(ctx context.Context) ([]analytics.CategoryVolume, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "analytics", ReportCategoryVolume)
	defer span.End()

	usages, err := s.repo.UsageProducts(ctx)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to load deal usage products: %w", err)
	}
	carts, err := s.repo.CartQuantities(ctx)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to load cart quantities: %w", err)
	}

	out := analytics.BuildCategoryVolumes(usages, carts)
	s.metrics.RecordRows(ctx, ReportCategoryVolume, len(out))
	return out, nil
}

// CartFunnel returns active carts against completed purchases
func (s *AnalyticsService) CartFunnel(ctx context.Context) ([]analytics.FunnelStage, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "analytics", ReportCartFunnel)
	defer span.End()

	carts, err := s.repo.CountActiveCarts(ctx)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to count active carts: %w", err)
	}
	purchases, err := s.repo.CountTransactions(ctx)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to count transactions: %w", err)
	}
	return analytics.BuildFunnel(carts, purchases), nil
}
