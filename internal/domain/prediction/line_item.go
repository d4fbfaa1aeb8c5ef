// Package prediction holds the margin prediction domain: cart line items,
// discount descriptors, and the feature vectors handed to the scoring models.
package prediction

import (
	"strings"

	"github.com/shopspring/decimal"
)

// DiscountType identifies how a discount value is interpreted
type DiscountType string

const (
	DiscountPercentage   DiscountType = "percentage"
	DiscountFixedAmount  DiscountType = "fixed_amount"
	DiscountFreeShipping DiscountType = "free_shipping"
)

// IsValid returns true if the discount type is one of the recognized values
func (t DiscountType) IsValid() bool {
	switch t {
	case DiscountPercentage, DiscountFixedAmount, DiscountFreeShipping:
		return true
	}
	return false
}

// LineItem is one validated cart entry
type LineItem struct {
	ProductID    int64
	UnitPrice    decimal.Decimal
	CostPrice    decimal.Decimal
	Quantity     int64
	Brand        string
	CategoryID   int64
	ShippingCost decimal.Decimal
}

// NormalizedBrand returns the brand with spaces replaced by underscores,
// which is the form the combination model's brand flags are keyed on.
func (li LineItem) NormalizedBrand() string {
	return NormalizeBrand(li.Brand)
}

// NormalizeBrand replaces spaces with underscores
func NormalizeBrand(brand string) string {
	return strings.ReplaceAll(brand, " ", "_")
}

// DiscountSpec is a validated discount descriptor.
// Value is a percent for percentage, a currency amount for fixed_amount,
// and ignored for free_shipping.
type DiscountSpec struct {
	Type  DiscountType
	Value decimal.Decimal
}

// FreeShipping reports whether shipping cost must be zeroed
func (d DiscountSpec) FreeShipping() bool {
	return d.Type == DiscountFreeShipping
}

// LineItemInput is an unvalidated cart entry as received at the boundary.
// A nil field means the caller did not supply it (or supplied something
// that could not be read as the expected type).
type LineItemInput struct {
	ProductID    *int64
	UnitPrice    *decimal.Decimal
	CostPrice    *decimal.Decimal
	Quantity     *int64
	Brand        *string
	CategoryID   *int64
	ShippingCost *decimal.Decimal
}

// complete returns the validated line item, or false if any field is missing
func (in LineItemInput) complete() (LineItem, bool) {
	if in.ProductID == nil || in.UnitPrice == nil || in.CostPrice == nil ||
		in.Quantity == nil || in.Brand == nil || in.CategoryID == nil || in.ShippingCost == nil {
		return LineItem{}, false
	}
	return LineItem{
		ProductID:    *in.ProductID,
		UnitPrice:    *in.UnitPrice,
		CostPrice:    *in.CostPrice,
		Quantity:     *in.Quantity,
		Brand:        *in.Brand,
		CategoryID:   *in.CategoryID,
		ShippingCost: *in.ShippingCost,
	}, true
}

// DiscountInput is an unvalidated discount descriptor
type DiscountInput struct {
	Type  string
	Value *decimal.Decimal
}

// Input is the typed request both the body and query-string forms converge on
type Input struct {
	Items    []LineItemInput
	Discount DiscountInput
}
