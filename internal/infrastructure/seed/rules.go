package seed

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// FieldType is the expected type of a column value
type FieldType string

const (
	TypeString  FieldType = "string"
	TypeInt     FieldType = "integer"
	TypeDecimal FieldType = "decimal"
	TypeTime    FieldType = "timestamp"
	TypeBool    FieldType = "boolean"
)

// timeLayouts are tried in order when parsing timestamps
var timeLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// Rule describes how one column is validated
type Rule struct {
	Column    string
	Type      FieldType
	Required  bool
	Unique    bool
	MaxLength int
	Min       *decimal.Decimal
	Max       *decimal.Decimal
	// RefTable names the table whose primary keys the value must be among
	RefTable string
}

// RuleBuilder builds a Rule fluently
type RuleBuilder struct {
	rule Rule
}

// Field starts a rule for column, typed as a string
func Field(column string) *RuleBuilder {
	return &RuleBuilder{rule: Rule{Column: column, Type: TypeString}}
}

func (b *RuleBuilder) Required() *RuleBuilder { b.rule.Required = true; return b }
func (b *RuleBuilder) Unique() *RuleBuilder { b.rule.Unique = true; return b }
func (b *RuleBuilder) Int() *RuleBuilder { b.rule.Type = TypeInt; return b }
func (b *RuleBuilder) Decimal() *RuleBuilder { b.rule.Type = TypeDecimal; return b }
func (b *RuleBuilder) Time() *RuleBuilder { b.rule.Type = TypeTime; return b }
func (b *RuleBuilder) Bool() *RuleBuilder { b.rule.Type = TypeBool; return b }
func (b *RuleBuilder) MaxLength(n int) *RuleBuilder {
	b.rule.MaxLength = n
	return b
}

// NonNegative rejects numbers below zero
func (b *RuleBuilder) NonNegative() *RuleBuilder {
	zero := decimal.Zero
	b.rule.Min = &zero
	return b
}

// Range bounds a numeric value, inclusive
func (b *RuleBuilder) Range(min, max decimal.Decimal) *RuleBuilder {
	b.rule.Min = &min
	b.rule.Max = &max
	return b
}

// References requires the value to be a key of table. Implies Int.
func (b *RuleBuilder) References(table string) *RuleBuilder {
	b.rule.Type = TypeInt
	b.rule.RefTable = table
	return b
}

// Build returns the rule
func (b *RuleBuilder) Build() Rule {
	return b.rule
}

// KeySet holds the primary keys known per table
type KeySet map[string]map[int64]struct{}

// Add records key as present in table
func (ks KeySet) Add(table string, key int64) {
	if ks[table] == nil {
		ks[table] = make(map[int64]struct{})
	}
	ks[table][key] = struct{}{}
}

// Has reports whether key is present in table
func (ks KeySet) Has(table string, key int64) bool {
	_, ok := ks[table][key]
	return ok
}

// RowValidator applies rules to rows and collects errors
type RowValidator struct {
	rules  []Rule
	keys   KeySet
	seen   map[string]map[string]int
	errors *ErrorCollection
}

// NewRowValidator validates references against keys; keys may be nil
// when no rule references another table
func NewRowValidator(rules []Rule, keys KeySet, maxErrors int) *RowValidator {
	return &RowValidator{
		rules:  rules,
		keys:   keys,
		seen:   make(map[string]map[string]int),
		errors: NewErrorCollection(maxErrors),
	}
}

// Errors returns the collected errors
func (v *RowValidator) Errors() *ErrorCollection {
	return v.errors
}

// Validate checks every rule against row and reports whether it passed
func (v *RowValidator) Validate(row *Row) bool {
	ok := true
	for _, rule := range v.rules {
		if !v.check(row, rule) {
			ok = false
		}
	}
	return ok
}

func (v *RowValidator) check(row *Row, rule Rule) bool {
	value := row.Get(rule.Column)
	fail := func(code, msg string) bool {
		v.errors.Add(RowError{Line: row.Line, Column: rule.Column, Code: code, Message: msg, Value: value})
		return false
	}

	if value == "" {
		if rule.Required {
			return fail(CodeRequired, "value is required")
		}
		return true
	}

	if err := checkType(value, rule.Type); err != nil {
		return fail(CodeInvalidType, fmt.Sprintf("expected %s", rule.Type))
	}

	if rule.MaxLength > 0 && len([]rune(value)) > rule.MaxLength {
		return fail(CodeTooLong, fmt.Sprintf("must be at most %d characters", rule.MaxLength))
	}

	if rule.Min != nil || rule.Max != nil {
		d, _ := decimal.NewFromString(value)
		if rule.Min != nil && d.LessThan(*rule.Min) {
			return fail(CodeOutOfRange, fmt.Sprintf("must be at least %s", rule.Min.String()))
		}
		if rule.Max != nil && d.GreaterThan(*rule.Max) {
			return fail(CodeOutOfRange, fmt.Sprintf("must be at most %s", rule.Max.String()))
		}
	}

	if rule.Unique {
		if v.seen[rule.Column] == nil {
			v.seen[rule.Column] = make(map[string]int)
		}
		if first, dup := v.seen[rule.Column][value]; dup {
			return fail(CodeDuplicate, fmt.Sprintf("duplicate value (first seen on line %d)", first))
		}
		v.seen[rule.Column][value] = row.Line
	}

	if rule.RefTable != "" {
		key, _ := strconv.ParseInt(value, 10, 64)
		if !v.keys.Has(rule.RefTable, key) {
			return fail(CodeUnknownReference, fmt.Sprintf("no %s row with this id", rule.RefTable))
		}
	}
	return true
}

func checkType(value string, t FieldType) error {
	var err error
	switch t {
	case TypeInt:
		_, err = strconv.ParseInt(value, 10, 64)
	case TypeDecimal:
		_, err = decimal.NewFromString(value)
	case TypeTime:
		_, err = parseTime(value)
	case TypeBool:
		_, err = parseBool(value)
	}
	return err
}

func parseTime(value string) (time.Time, error) {
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", value)
}

func parseBool(value string) (bool, error) {
	switch strings.ToLower(value) {
	case "true", "t", "1", "yes", "y":
		return true, nil
	case "false", "f", "0", "no", "n":
		return false, nil
	}
	return false, fmt.Errorf("invalid boolean %q", value)
}
