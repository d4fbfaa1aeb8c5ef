package prediction

import (
	"bytes"
	"encoding/json"
	"net/url"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/profitalyze/backend/internal/domain/prediction"
)

// QueryFields must all be present for the single-item query form
var QueryFields = []string{
	"product_id", "unit_price", "cost_price", "quantity", "brand",
	"category_id", "shipping_cost", "discount_type", "discount_value",
}

type bodyForm struct {
	Products      *[]map[string]json.RawMessage `json:"products"`
	DiscountType  json.RawMessage               `json:"discount_type"`
	DiscountValue json.RawMessage               `json:"discount_value"`
}

// ParseBody reads the JSON body form. ok is false when the body carries no
// products array, so the caller can fall back to the query form.
// Values that cannot be read as the expected type are treated as absent.
func ParseBody(data []byte) (in prediction.Input, ok bool) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return prediction.Input{}, false
	}
	var body bodyForm
	if err := json.Unmarshal(data, &body); err != nil || body.Products == nil {
		return prediction.Input{}, false
	}

	items := make([]prediction.LineItemInput, 0, len(*body.Products))
	for _, p := range *body.Products {
		items = append(items, prediction.LineItemInput{
			ProductID:    rawInt(p["product_id"]),
			UnitPrice:    rawDecimal(p["unit_price"]),
			CostPrice:    rawDecimal(p["cost_price"]),
			Quantity:     rawInt(p["quantity"]),
			Brand:        rawString(p["brand"]),
			CategoryID:   rawInt(p["category_id"]),
			ShippingCost: rawDecimal(p["shipping_cost"]),
		})
	}

	var discountType string
	if s := rawString(body.DiscountType); s != nil {
		discountType = *s
	}
	return prediction.Input{
		Items:    items,
		Discount: prediction.DiscountInput{Type: discountType, Value: rawDecimal(body.DiscountValue)},
	}, true
}

// ParseQuery reads the single-item query form. ok is false when no
// product_id is given. A partial query yields a validation error.
func ParseQuery(q url.Values) (in prediction.Input, ok bool, err error) {
	if q.Get("product_id") == "" {
		return prediction.Input{}, false, nil
	}
	for _, field := range QueryFields {
		if _, present := q[field]; !present {
			return prediction.Input{}, true, prediction.NewValidationError(prediction.MsgMissingQueryParams)
		}
	}

	brand := q.Get("brand")
	item := prediction.LineItemInput{
		ProductID:    parseInt(q.Get("product_id")),
		UnitPrice:    parseDecimal(q.Get("unit_price")),
		CostPrice:    parseDecimal(q.Get("cost_price")),
		Quantity:     parseInt(q.Get("quantity")),
		Brand:        &brand,
		CategoryID:   parseInt(q.Get("category_id")),
		ShippingCost: parseDecimal(q.Get("shipping_cost")),
	}
	return prediction.Input{
		Items: []prediction.LineItemInput{item},
		Discount: prediction.DiscountInput{
			Type:  q.Get("discount_type"),
			Value: parseDecimal(q.Get("discount_value")),
		},
	}, true, nil
}

// rawDecimal accepts a JSON number or a numeric string
func rawDecimal(raw json.RawMessage) *decimal.Decimal {
	if len(raw) == 0 {
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return parseDecimal(n.String())
	}
	if s := rawString(raw); s != nil {
		return parseDecimal(*s)
	}
	return nil
}

// rawInt accepts an integral JSON number or numeric string
func rawInt(raw json.RawMessage) *int64 {
	d := rawDecimal(raw)
	if d == nil || !d.IsInteger() {
		return nil
	}
	v := d.IntPart()
	return &v
}

func rawString(raw json.RawMessage) *string {
	var s string
	if len(raw) == 0 || json.Unmarshal(raw, &s) != nil {
		return nil
	}
	return &s
}

func parseDecimal(s string) *decimal.Decimal {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return nil
	}
	return &d
}

func parseInt(s string) *int64 {
	v, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return nil
	}
	return &v
}
