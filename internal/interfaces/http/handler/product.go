package handler

import (
	"context"
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/profitalyze/backend/internal/domain/catalog"
	"github.com/profitalyze/backend/internal/domain/shared"
)

// MsgProductNotFound is returned for an unknown product id
const MsgProductNotFound = "Product not found"

// ProductReader is the catalog read side used by ProductHandler
type ProductReader interface {
	List(ctx context.Context) ([]catalog.Product, error)
	GetByID(ctx context.Context, id int64) (*catalog.Product, error)
	ListByCategory(ctx context.Context) ([]catalog.CategoryGroup, error)
	RevenueByCategory(ctx context.Context) ([]catalog.CategoryRevenue, error)
}

// ProductHandler handles product catalog endpoints
type ProductHandler struct {
	BaseHandler
	products ProductReader
}

// NewProductHandler creates a new ProductHandler
func NewProductHandler(products ProductReader) *ProductHandler {
	return &ProductHandler{products: products}
}

// List godoc
// @Summary      List products
// @Description  All products with their category
// @Tags         products
// @Produce      json
// @Success      200 {array} catalog.Product
// @Failure      500 {object} dto.ErrorResponse
// @Router       /products [get]
func (h *ProductHandler) List(c *gin.Context) {
	products, err := h.products.List(c.Request.Context())
	if err != nil {
		h.InternalError(c, err)
		return
	}
	if products == nil {
		products = []catalog.Product{}
	}
	h.Success(c, products)
}

// GetByID godoc
// @Summary      Get product by ID
// @Tags         products
// @Produce      json
// @Param        id path int true "Product ID"
// @Success      200 {object} catalog.Product
// @Failure      404 {object} dto.ErrorResponse
// @Failure      500 {object} dto.ErrorResponse
// @Router       /products/{id} [get]
func (h *ProductHandler) GetByID(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		// A non-numeric id can never match a product
		h.NotFound(c, MsgProductNotFound)
		return
	}

	product, err := h.products.GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			h.NotFound(c, MsgProductNotFound)
			return
		}
		h.InternalError(c, err)
		return
	}
	h.Success(c, product)
}

// ByCategory godoc
// @Summary      Products grouped by root category
// @Tags         products
// @Produce      json
// @Success      200 {array} catalog.CategoryGroup
// @Failure      500 {object} dto.ErrorResponse
// @Router       /products/by-category [get]
func (h *ProductHandler) ByCategory(c *gin.Context) {
	groups, err := h.products.ListByCategory(c.Request.Context())
	if err != nil {
		h.InternalError(c, err)
		return
	}
	if groups == nil {
		groups = []catalog.CategoryGroup{}
	}
	h.Success(c, groups)
}

// RevenueByCategory godoc
// @Summary      Inventory revenue by root category
// @Description  Sum of final_price x stock_quantity per root category
// @Tags         products
// @Produce      json
// @Success      200 {array} catalog.CategoryRevenue
// @Failure      500 {object} dto.ErrorResponse
// @Router       /products/revenue-by-category [get]
func (h *ProductHandler) RevenueByCategory(c *gin.Context) {
	revenue, err := h.products.RevenueByCategory(c.Request.Context())
	if err != nil {
		h.InternalError(c, err)
		return
	}
	if revenue == nil {
		revenue = []catalog.CategoryRevenue{}
	}
	h.Success(c, revenue)
}
