package catalog

import (
	"context"
	"fmt"

	"github.com/profitalyze/backend/internal/domain/catalog"
	"github.com/profitalyze/backend/internal/infrastructure/telemetry"
)

// ProductService serves read-only catalog views
type ProductService struct {
	productRepo catalog.ProductRepository
}

// NewProductService creates a new ProductService
func NewProductService(productRepo catalog.ProductRepository) *ProductService {
	return &ProductService{productRepo: productRepo}
}

// List returns every product with its category
func (s *ProductService) List(ctx context.Context) ([]catalog.Product, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "catalog", "list_products")
	defer span.End()

	products, err := s.productRepo.FindAll(ctx)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	telemetry.SetAttributes(span, telemetry.SpanAttrRowCount, len(products))
	return products, nil
}

// GetByID returns one product. Unknown ids yield shared.ErrNotFound.
func (s *ProductService) GetByID(ctx context.Context, id int64) (*catalog.Product, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "catalog", "get_product")
	defer span.End()
	telemetry.SetAttributes(span, telemetry.SpanAttrProductID, id)

	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	return product, nil
}

// ListByCategory groups all products under their root category
func (s *ProductService) ListByCategory(ctx context.Context) ([]catalog.CategoryGroup, error) {
	products, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	return catalog.GroupByRootCategory(products), nil
}

// RevenueByCategory sums inventory value per root category
func (s *ProductService) RevenueByCategory(ctx context.Context) ([]catalog.CategoryRevenue, error) {
	products, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	return catalog.RevenueByRootCategory(products), nil
}
