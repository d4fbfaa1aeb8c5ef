package seed

import (
	"errors"
	"fmt"
	"strings"
)

// Row error codes
const (
	CodeRequired         = "REQUIRED"
	CodeInvalidType      = "INVALID_TYPE"
	CodeOutOfRange       = "OUT_OF_RANGE"
	CodeTooLong          = "TOO_LONG"
	CodeDuplicate        = "DUPLICATE"
	CodeUnknownReference = "UNKNOWN_REFERENCE"
)

var (
	// ErrEmptyFile is returned for a file with no content
	ErrEmptyFile = errors.New("CSV file is empty")

	// ErrInvalidEncoding is returned when the file is not UTF-8
	ErrInvalidEncoding = errors.New("CSV file is not valid UTF-8")

	// ErrMissingHeader is returned when the file has no header row
	ErrMissingHeader = errors.New("CSV file missing header row")
)

// RowError is a problem with one value in one line of a file
type RowError struct {
	Line    int    `json:"line"`
	Column  string `json:"column,omitempty"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Value   string `json:"value,omitempty"`
}

func (e RowError) Error() string {
	if e.Column != "" {
		return fmt.Sprintf("line %d, column '%s': %s", e.Line, e.Column, e.Message)
	}
	return fmt.Sprintf("line %d: %s", e.Line, e.Message)
}

const defaultMaxErrors = 100

// ErrorCollection keeps the first max errors and counts the rest
type ErrorCollection struct {
	errors []RowError
	max    int
	total  int
}

// NewErrorCollection creates a collection; max <= 0 uses 100
func NewErrorCollection(max int) *ErrorCollection {
	if max <= 0 {
		max = defaultMaxErrors
	}
	return &ErrorCollection{max: max}
}

// Add records an error
func (ec *ErrorCollection) Add(err RowError) {
	ec.total++
	if len(ec.errors) < ec.max {
		ec.errors = append(ec.errors, err)
	}
}

// Errors returns the kept errors
func (ec *ErrorCollection) Errors() []RowError {
	return ec.errors
}

// Total returns the number of errors added, kept or not
func (ec *ErrorCollection) Total() int {
	return ec.total
}

// HasErrors reports whether anything was added
func (ec *ErrorCollection) HasErrors() bool {
	return ec.total > 0
}

// Truncated reports whether errors were dropped
func (ec *ErrorCollection) Truncated() bool {
	return ec.total > len(ec.errors)
}

func (ec *ErrorCollection) String() string {
	if !ec.HasErrors() {
		return "no errors"
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "%d error(s)", ec.total)
	if ec.Truncated() {
		fmt.Fprintf(&sb, " (showing first %d)", len(ec.errors))
	}
	for _, e := range ec.errors {
		sb.WriteString("\n  - ")
		sb.WriteString(e.Error())
	}
	return sb.String()
}

// ValidationError is returned when a file has rows that cannot be loaded.
// Nothing is written when it occurs.
type ValidationError struct {
	Table  string
	File   string
	Errors *ErrorCollection
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.File, e.Errors.String())
}

// MissingColumnsError is returned when a file lacks required columns
type MissingColumnsError struct {
	File    string
	Columns []string
}

func (e *MissingColumnsError) Error() string {
	return fmt.Sprintf("%s: missing required column(s): %s", e.File, strings.Join(e.Columns, ", "))
}
