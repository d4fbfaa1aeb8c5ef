package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/profitalyze/backend/internal/domain/analytics"
	"github.com/profitalyze/backend/internal/interfaces/http/dto"
)

// AnalyticsReader is the dashboard analytics surface used by AnalyticsHandler
type AnalyticsReader interface {
	TopCustomers(ctx context.Context) ([]analytics.CustomerSpending, error)
	DealUsageByTier(ctx context.Context) ([]analytics.TierDealUsage, error)
	LoyaltyTiers(ctx context.Context) ([]analytics.TierCount, error)
	CategoryVolumes(ctx context.Context) ([]analytics.CategoryVolume, error)
	CartFunnel(ctx context.Context) ([]analytics.FunnelStage, error)
}

// AnalyticsHandler handles customer and deal usage analytics endpoints
type AnalyticsHandler struct {
	BaseHandler
	analytics AnalyticsReader
}

// NewAnalyticsHandler creates a new AnalyticsHandler
func NewAnalyticsHandler(reader AnalyticsReader) *AnalyticsHandler {
	return &AnalyticsHandler{analytics: reader}
}

// respond writes result, or {error:"Server error", details} when err is set
func respond[T any](h *AnalyticsHandler, c *gin.Context, result []T, err error) {
	if err != nil {
		h.logError(c, err)
		h.ErrorWithDetails(c, http.StatusInternalServerError, dto.MsgServerError, err.Error())
		return
	}
	if result == nil {
		result = []T{}
	}
	h.Success(c, result)
}

// TopCustomers godoc
// @Summary      Top customers by spending
// @Tags         analytics
// @Produce      json
// @Success      200 {array} analytics.CustomerSpending
// @Failure      500 {object} dto.ErrorResponse
// @Router       /analytics/customer-transactions [get]
func (h *AnalyticsHandler) TopCustomers(c *gin.Context) {
	result, err := h.analytics.TopCustomers(c.Request.Context())
	respond(h, c, result, err)
}

// DealUsage godoc
// @Summary      Deal usage by loyalty tier
// @Tags         analytics
// @Produce      json
// @Success      200 {array} analytics.TierDealUsage
// @Failure      500 {object} dto.ErrorResponse
// @Router       /analytics/deal-usage [get]
func (h *AnalyticsHandler) DealUsage(c *gin.Context) {
	result, err := h.analytics.DealUsageByTier(c.Request.Context())
	respond(h, c, result, err)
}

// LoyaltyTiers godoc
// @Summary      Customers per loyalty tier
// @Tags         analytics
// @Produce      json
// @Success      200 {array} analytics.TierCount
// @Failure      500 {object} dto.ErrorResponse
// @Router       /analytics/loyalty-tiers [get]
func (h *AnalyticsHandler) LoyaltyTiers(c *gin.Context) {
	result, err := h.analytics.LoyaltyTiers(c.Request.Context())
	respond(h, c, result, err)
}

// ProductPerformance godoc
// @Summary      Purchase volume per customer and category
// @Tags         analytics
// @Produce      json
// @Success      200 {array} analytics.CategoryVolume
// @Failure      500 {object} dto.ErrorResponse
// @Router       /analytics/product-performance-with-cart [get]
func (h *AnalyticsHandler) ProductPerformance(c *gin.Context) {
	result, err := h.analytics.CategoryVolumes(c.Request.Context())
	respond(h, c, result, err)
}

// CartAbandonment godoc
// @Summary      Cart to purchase funnel
// @Tags         analytics
// @Produce      json
// @Success      200 {array} analytics.FunnelStage
// @Failure      500 {object} dto.ErrorResponse
// @Router       /analytics/cart-abandonment [get]
func (h *AnalyticsHandler) CartAbandonment(c *gin.Context) {
	result, err := h.analytics.CartFunnel(c.Request.Context())
	respond(h, c, result, err)
}
