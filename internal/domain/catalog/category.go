package catalog

// UncategorizedName groups products without a category
const UncategorizedName = "Uncategorized"

// Category is a product category with its top-level ancestor name
type Category struct {
	CategoryID       int64  `json:"category_id"`
	CategoryName     string `json:"category_name"`
	RootCategoryName string `json:"root_category_name"`
}
