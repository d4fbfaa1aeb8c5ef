package seed

import (
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/profitalyze/backend/internal/infrastructure/persistence/models"
)

// Table describes how one CSV file maps onto a database table
type Table struct {
	Name  string
	Key   string
	Rules []Rule
	// build converts validated rows into a typed model slice for insert
	build func(rows []*Row) any
}

// modelsOf lifts a per-row conversion into a Table build function
func modelsOf[M any](convert func(r *Row) *M) func(rows []*Row) any {
	return func(rows []*Row) any {
		out := make([]*M, 0, len(rows))
		for _, r := range rows {
			out = append(out, convert(r))
		}
		return out
	}
}

// File returns the expected file name, "<table>.csv"
func (t Table) File() string {
	return t.Name + ".csv"
}

// RequiredColumns returns the columns a file must carry
func (t Table) RequiredColumns() []string {
	var cols []string
	for _, r := range t.Rules {
		if r.Required {
			cols = append(cols, r.Column)
		}
	}
	return cols
}

// Tables returns the dataset tables in load order, referenced tables first
func Tables() []Table {
	return []Table{
		{
			Name: "categories",
			Key:  "category_id",
			Rules: []Rule{
				Field("category_id").Int().Required().Unique().Build(),
				Field("category_name").Required().MaxLength(200).Build(),
				Field("parent_category_id").References("categories").Build(),
				Field("root_category_name").MaxLength(200).Build(),
			},
			build: func(rows []*Row) any {
				cats := make([]*models.CategoryModel, 0, len(rows))
				for _, r := range rows {
					cats = append(cats, &models.CategoryModel{
						CategoryID:       intValue(r, "category_id"),
						CategoryName:     r.Get("category_name"),
						ParentCategoryID: optInt(r, "parent_category_id"),
						RootCategoryName: r.Get("root_category_name"),
					})
				}
				return arrangeCategories(cats)
			},
		},
		{
			Name: "products",
			Key:  "product_id",
			Rules: []Rule{
				Field("product_id").Int().Required().Unique().Build(),
				Field("product_name").Required().MaxLength(255).Build(),
				Field("unit_price").Decimal().Required().NonNegative().Build(),
				Field("cost_price").Decimal().Required().NonNegative().Build(),
				Field("final_price").Decimal().NonNegative().Build(),
				Field("stock_quantity").Int().NonNegative().Build(),
				Field("brand").MaxLength(100).Build(),
				Field("category_id").References("categories").Build(),
				Field("shipping_cost").Decimal().NonNegative().Build(),
			},
			build: modelsOf(func(r *Row) *models.ProductModel {
				unit := decimalValue(r, "unit_price")
				final := unit
				if r.Get("final_price") != "" {
					final = decimalValue(r, "final_price")
				}
				return &models.ProductModel{
					ProductID:     intValue(r, "product_id"),
					ProductName:   r.Get("product_name"),
					UnitPrice:     unit,
					CostPrice:     decimalValue(r, "cost_price"),
					FinalPrice:    final,
					StockQuantity: intValue(r, "stock_quantity"),
					Brand:         r.Get("brand"),
					CategoryID:    optInt(r, "category_id"),
					ShippingCost:  decimalValue(r, "shipping_cost"),
				}
			}),
		},
		{
			Name: "customers",
			Key:  "customer_id",
			Rules: []Rule{
				Field("customer_id").Int().Required().Unique().Build(),
				Field("customer_name").MaxLength(200).Build(),
				Field("email").MaxLength(255).Build(),
				Field("loyalty_tier").MaxLength(30).Build(),
			},
			build: modelsOf(func(r *Row) *models.CustomerModel {
				return &models.CustomerModel{
					CustomerID:   intValue(r, "customer_id"),
					CustomerName: r.Get("customer_name"),
					Email:        r.Get("email"),
					LoyaltyTier:  optString(r, "loyalty_tier"),
				}
			}),
		},
		{
			Name: "deals",
			Key:  "deal_id",
			Rules: []Rule{
				Field("deal_id").Int().Required().Unique().Build(),
				Field("deal_name").Required().MaxLength(200).Build(),
				Field("deal_type").Required().MaxLength(30).Build(),
				Field("discount_value").Decimal().NonNegative().Build(),
				Field("start_date").Time().Build(),
				Field("end_date").Time().Build(),
			},
			build: modelsOf(func(r *Row) *models.DealModel {
				return &models.DealModel{
					DealID:        intValue(r, "deal_id"),
					DealName:      r.Get("deal_name"),
					DealType:      r.Get("deal_type"),
					DiscountValue: decimalValue(r, "discount_value"),
					StartDate:     optTime(r, "start_date"),
					EndDate:       optTime(r, "end_date"),
				}
			}),
		},
		{
			Name: "transactions",
			Key:  "transaction_id",
			Rules: []Rule{
				Field("transaction_id").Int().Required().Unique().Build(),
				Field("customer_id").References("customers").Required().Build(),
				Field("total_amount").Decimal().Required().NonNegative().Build(),
				Field("payment_method").MaxLength(30).Build(),
				Field("transaction_date").Time().Build(),
			},
			build: modelsOf(func(r *Row) *models.TransactionModel {
				return &models.TransactionModel{
					TransactionID:   intValue(r, "transaction_id"),
					CustomerID:      intValue(r, "customer_id"),
					TotalAmount:     decimalValue(r, "total_amount"),
					PaymentMethod:   r.Get("payment_method"),
					TransactionDate: timeValue(r, "transaction_date"),
				}
			}),
		},
		{
			Name: "deal_usages",
			Key:  "usage_id",
			Rules: []Rule{
				Field("usage_id").Int().Required().Unique().Build(),
				Field("deal_id").References("deals").Required().Build(),
				Field("customer_id").References("customers").Required().Build(),
				Field("transaction_id").References("transactions").Required().Build(),
				Field("product_id").References("products").Required().Build(),
				Field("savings_amount").Decimal().NonNegative().Build(),
				Field("used_at").Time().Build(),
			},
			build: modelsOf(func(r *Row) *models.DealUsageModel {
				return &models.DealUsageModel{
					UsageID:       intValue(r, "usage_id"),
					DealID:        intValue(r, "deal_id"),
					CustomerID:    intValue(r, "customer_id"),
					TransactionID: intValue(r, "transaction_id"),
					ProductID:     intValue(r, "product_id"),
					SavingsAmount: decimalValue(r, "savings_amount"),
					UsedAt:        timeValue(r, "used_at"),
				}
			}),
		},
		{
			Name: "cart_items",
			Key:  "cart_id",
			Rules: []Rule{
				Field("cart_id").Int().Required().Unique().Build(),
				Field("customer_id").References("customers").Required().Build(),
				Field("product_id").References("products").Required().Build(),
				Field("quantity").Int().Range(decimal.NewFromInt(1), decimal.NewFromInt(1_000_000)).Build(),
				Field("is_active").Bool().Build(),
				Field("added_at").Time().Build(),
			},
			build: modelsOf(func(r *Row) *models.CartItemModel {
				qty := int64(1)
				if r.Get("quantity") != "" {
					qty = intValue(r, "quantity")
				}
				active := true
				if v := r.Get("is_active"); v != "" {
					active, _ = parseBool(v)
				}
				return &models.CartItemModel{
					CartID:     intValue(r, "cart_id"),
					CustomerID: intValue(r, "customer_id"),
					ProductID:  intValue(r, "product_id"),
					Quantity:   qty,
					IsActive:   active,
					AddedAt:    timeValue(r, "added_at"),
				}
			}),
		},
	}
}

// arrangeCategories puts parents before children and fills a missing root
// category name from the top of each category's ancestry
func arrangeCategories(cats []*models.CategoryModel) []*models.CategoryModel {
	byID := make(map[int64]*models.CategoryModel, len(cats))
	for _, c := range cats {
		byID[c.CategoryID] = c
	}

	for _, c := range cats {
		if c.RootCategoryName != "" {
			continue
		}
		root := c
		for hops := 0; root.ParentCategoryID != nil && hops < len(cats); hops++ {
			parent, ok := byID[*root.ParentCategoryID]
			if !ok {
				break
			}
			root = parent
		}
		c.RootCategoryName = root.CategoryName
	}

	ordered := make([]*models.CategoryModel, 0, len(cats))
	placed := make(map[int64]bool, len(cats))
	pending := cats
	for len(pending) > 0 {
		var next []*models.CategoryModel
		for _, c := range pending {
			parent := c.ParentCategoryID
			if parent == nil || placed[*parent] || byID[*parent] == nil {
				ordered = append(ordered, c)
				placed[c.CategoryID] = true
				continue
			}
			next = append(next, c)
		}
		if len(next) == len(pending) {
			// a parent cycle; the database rejects it
			ordered = append(ordered, next...)
			break
		}
		pending = next
	}
	return ordered
}

// Values below were checked by the table's rules, so parse errors cannot occur.

func intValue(r *Row, col string) int64 {
	v, _ := strconv.ParseInt(r.Get(col), 10, 64)
	return v
}

func optInt(r *Row, col string) *int64 {
	if r.Get(col) == "" {
		return nil
	}
	v := intValue(r, col)
	return &v
}

func optString(r *Row, col string) *string {
	v := r.Get(col)
	if v == "" {
		return nil
	}
	return &v
}

func decimalValue(r *Row, col string) decimal.Decimal {
	v, err := decimal.NewFromString(r.Get(col))
	if err != nil {
		return decimal.Zero
	}
	return v
}

// timeValue returns the zero time for a blank column, which lets the
// model's autoCreateTime fill it
func timeValue(r *Row, col string) time.Time {
	t, _ := parseTime(r.Get(col))
	return t
}

func optTime(r *Row, col string) *time.Time {
	if r.Get(col) == "" {
		return nil
	}
	t := timeValue(r, col)
	return &t
}
