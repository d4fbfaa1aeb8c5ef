package prediction

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

// Model selects which scoring model a request is routed to
type Model string

const (
	ModelSingle      Model = "single"
	ModelCombination Model = "combination"
)

// KnownBrands is the closed set of brands the combination model has flags for.
// Entries are in normalized (underscore) form.
var KnownBrands = []string{"Laura_Mercier", "Apple", "Samsung", "Nike", "KitchenAid"}

// KnownCategories is the closed set of category ids the combination model has flags for
var KnownCategories = []int64{2, 8, 9, 11, 12}

// SingleInput is the feature record for the single-product model
type SingleInput struct {
	ProductID     int64
	UnitPrice     decimal.Decimal
	CostPrice     decimal.Decimal
	Quantity      int64
	DiscountType  DiscountType
	DiscountValue decimal.Decimal
	ShippingCost  decimal.Decimal
	Brand         string
	CategoryID    int64
}

// MarshalJSON encodes the record with numeric values as JSON numbers
func (s SingleInput) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]any{
		"product_id":     s.ProductID,
		"unit_price":     s.UnitPrice.InexactFloat64(),
		"cost_price":     s.CostPrice.InexactFloat64(),
		"quantity":       s.Quantity,
		"discount_type":  string(s.DiscountType),
		"discount_value": s.DiscountValue.InexactFloat64(),
		"shipping_cost":  s.ShippingCost.InexactFloat64(),
		"brand":          s.Brand,
		"category_id":    s.CategoryID,
	})
}

// Flag is a one-hot presence indicator
type Flag struct {
	Key   string
	Value int
}

// CombinationInput is the feature record for the multi-product model
type CombinationInput struct {
	TotalUnitPrice decimal.Decimal
	TotalCostPrice decimal.Decimal
	TotalQuantity  int64
	DiscountType   DiscountType
	DiscountValue  decimal.Decimal
	ShippingCost   decimal.Decimal
	NumProducts    int
	BrandFlags     []Flag
	CategoryFlags  []Flag
}

// Flag returns the value of the named brand or category flag
func (c CombinationInput) Flag(key string) (int, bool) {
	for _, f := range c.BrandFlags {
		if f.Key == key {
			return f.Value, true
		}
	}
	for _, f := range c.CategoryFlags {
		if f.Key == key {
			return f.Value, true
		}
	}
	return 0, false
}

// MarshalJSON flattens the aggregates and flags into one object
func (c CombinationInput) MarshalJSON() ([]byte, error) {
	m := map[string]any{
		"total_unit_price": c.TotalUnitPrice.InexactFloat64(),
		"total_cost_price": c.TotalCostPrice.InexactFloat64(),
		"total_quantity":   c.TotalQuantity,
		"discount_type":    string(c.DiscountType),
		"discount_value":   c.DiscountValue.InexactFloat64(),
		"shipping_cost":    c.ShippingCost.InexactFloat64(),
		"num_products":     c.NumProducts,
	}
	for _, f := range c.BrandFlags {
		m[f.Key] = f.Value
	}
	for _, f := range c.CategoryFlags {
		m[f.Key] = f.Value
	}
	return json.Marshal(m)
}

// BrandFlagKey returns the feature name for a brand flag
func BrandFlagKey(brand string) string {
	return "has_brand_" + brand
}

// CategoryFlagKey returns the feature name for a category flag
func CategoryFlagKey(categoryID int64) string {
	return fmt.Sprintf("has_category_id_%d", categoryID)
}

// Request is a built feature vector routed to one model.
// Exactly one of Single and Combination is set, matching Model.
type Request struct {
	Model       Model
	Single      *SingleInput
	Combination *CombinationInput
}

// Payload returns the JSON argument for the scoring process
func (r Request) Payload() ([]byte, error) {
	switch r.Model {
	case ModelSingle:
		if r.Single == nil {
			return nil, fmt.Errorf("single model request without features")
		}
		return json.Marshal(r.Single)
	case ModelCombination:
		if r.Combination == nil {
			return nil, fmt.Errorf("combination model request without features")
		}
		return json.Marshal(r.Combination)
	default:
		return nil, fmt.Errorf("unknown model %q", r.Model)
	}
}

// ValidateDiscount checks the discount descriptor
func ValidateDiscount(in DiscountInput) (DiscountSpec, error) {
	t := DiscountType(in.Type)
	if !t.IsValid() {
		return DiscountSpec{}, NewValidationError(MsgInvalidDiscountType)
	}
	if in.Value == nil {
		return DiscountSpec{}, NewValidationError(MsgInvalidDiscountValue)
	}
	return DiscountSpec{Type: t, Value: *in.Value}, nil
}

// BuildRequest validates the cart and discount and builds the feature vector.
// One item routes to the single-product model, two or more to the
// combination model.
func BuildRequest(items []LineItemInput, discount DiscountInput) (Request, error) {
	if len(items) == 0 {
		return Request{}, NewValidationError(MsgEmptyProducts)
	}
	spec, err := ValidateDiscount(discount)
	if err != nil {
		return Request{}, err
	}

	lines := make([]LineItem, 0, len(items))
	for _, in := range items {
		li, ok := in.complete()
		if !ok {
			return Request{}, NewValidationError(MsgMissingProductFields)
		}
		lines = append(lines, li)
	}

	if len(lines) == 1 {
		single := BuildSingle(lines[0], spec)
		return Request{Model: ModelSingle, Single: &single}, nil
	}
	combo := BuildCombination(lines, spec)
	return Request{Model: ModelCombination, Combination: &combo}, nil
}

// BuildSingle builds the single-product record
func BuildSingle(li LineItem, spec DiscountSpec) SingleInput {
	shipping := li.ShippingCost
	if spec.FreeShipping() {
		shipping = decimal.Zero
	}
	return SingleInput{
		ProductID:     li.ProductID,
		UnitPrice:     li.UnitPrice,
		CostPrice:     li.CostPrice,
		Quantity:      li.Quantity,
		DiscountType:  spec.Type,
		DiscountValue: spec.Value,
		ShippingCost:  shipping,
		Brand:         li.Brand,
		CategoryID:    li.CategoryID,
	}
}

// BuildCombination aggregates several line items into the combination record
func BuildCombination(lines []LineItem, spec DiscountSpec) CombinationInput {
	out := CombinationInput{
		TotalUnitPrice: decimal.Zero,
		TotalCostPrice: decimal.Zero,
		ShippingCost:   decimal.Zero,
		DiscountType:   spec.Type,
		DiscountValue:  spec.Value,
		NumProducts:    len(lines),
	}

	brands := make(map[string]bool, len(lines))
	categories := make(map[int64]bool, len(lines))
	for i, li := range lines {
		qty := decimal.NewFromInt(li.Quantity)
		out.TotalQuantity += li.Quantity
		out.TotalUnitPrice = out.TotalUnitPrice.Add(li.UnitPrice.Mul(qty))
		out.TotalCostPrice = out.TotalCostPrice.Add(li.CostPrice.Mul(qty))
		if i == 0 || li.ShippingCost.GreaterThan(out.ShippingCost) {
			out.ShippingCost = li.ShippingCost
		}
		brands[li.NormalizedBrand()] = true
		categories[li.CategoryID] = true
	}
	if spec.FreeShipping() {
		out.ShippingCost = decimal.Zero
	}

	out.BrandFlags = make([]Flag, 0, len(KnownBrands))
	for _, b := range KnownBrands {
		out.BrandFlags = append(out.BrandFlags, Flag{Key: BrandFlagKey(b), Value: indicator(brands[b])})
	}
	out.CategoryFlags = make([]Flag, 0, len(KnownCategories))
	for _, c := range KnownCategories {
		out.CategoryFlags = append(out.CategoryFlags, Flag{Key: CategoryFlagKey(c), Value: indicator(categories[c])})
	}
	return out
}

func indicator(present bool) int {
	if present {
		return 1
	}
	return 0
}
