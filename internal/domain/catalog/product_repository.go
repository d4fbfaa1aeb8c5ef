package catalog

import "context"

// ProductRepository reads products with their categories
type ProductRepository interface {
	// FindAll returns every product, ordered by product id
	FindAll(ctx context.Context) ([]Product, error)

	// FindByID returns shared.ErrNotFound when the product does not exist
	FindByID(ctx context.Context, id int64) (*Product, error)
}
