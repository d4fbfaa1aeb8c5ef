package router

import (
	"github.com/profitalyze/backend/internal/interfaces/http/handler"
)

// Handlers bundles the endpoint handlers mounted under the API prefix
type Handlers struct {
	Products   *handler.ProductHandler
	DealImpact *handler.DealImpactHandler
	Prediction *handler.PredictionHandler
	Analytics  *handler.AnalyticsHandler
}

// ProductRoutes mounts the catalog read endpoints
func ProductRoutes(h *handler.ProductHandler) *DomainGroup {
	return NewDomainGroup("products", "/products").
		GET("", h.List).
		GET("/by-category", h.ByCategory).
		GET("/revenue-by-category", h.RevenueByCategory).
		GET("/:id", h.GetByID)
}

// ProfitRoutes mounts the deal-impact report endpoints
func ProfitRoutes(h *handler.DealImpactHandler) *DomainGroup {
	profits := NewDomainGroup("profits", "/profits")
	profits.Group("deal-impact", "/deal-impact-analysis").
		GET("", h.List).
		GET("/filtered", h.ListFiltered).
		POST("/export", h.Export).
		GET("/:dealId", h.Get)
	return profits
}

// PredictionRoutes mounts the margin prediction endpoint
func PredictionRoutes(h *handler.PredictionHandler) *DomainGroup {
	return NewDomainGroup("predictions", "/predictions").
		POST("/predict-margin", h.PredictMargin)
}

// AnalyticsRoutes mounts the dashboard analytics endpoints
func AnalyticsRoutes(h *handler.AnalyticsHandler) *DomainGroup {
	return NewDomainGroup("analytics", "/analytics").
		GET("/customer-transactions", h.TopCustomers).
		GET("/deal-usage", h.DealUsage).
		GET("/loyalty-tiers", h.LoyaltyTiers).
		GET("/product-performance-with-cart", h.ProductPerformance).
		GET("/cart-abandonment", h.CartAbandonment)
}

// RegisterAPI registers every API domain group on r
func RegisterAPI(r *Router, h Handlers) *Router {
	return r.Register(ProductRoutes(h.Products)).
		Register(ProfitRoutes(h.DealImpact)).
		Register(PredictionRoutes(h.Prediction)).
		Register(AnalyticsRoutes(h.Analytics))
}
