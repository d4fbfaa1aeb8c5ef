package prediction

import (
	"errors"
	"fmt"
	"time"
)

// Validation messages returned to API callers
const (
	MsgEmptyProducts        = "Products array is required and cannot be empty"
	MsgInvalidDiscountType  = "Invalid discount_type"
	MsgInvalidDiscountValue = "Invalid discount_value"
	MsgMissingProductFields = "Missing required product fields"
	MsgMissingQueryParams   = "Missing required query parameters"
	MsgNoProductsOrQuery    = "Products array (body) or query parameters are required"
	MsgServerConfiguration  = "Server configuration error"
	MsgPredictionFailed     = "Prediction failed"
)

// ValidationError is returned when prediction input violates a constraint
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// NewValidationError creates a validation error with the given message
func NewValidationError(msg string) error {
	return &ValidationError{Message: msg}
}

// ErrPredictorUnavailable is the base error for a missing scoring executable
var ErrPredictorUnavailable = errors.New("scoring executable not found")

// ConfigError reports that the configured scoring executable cannot be used
type ConfigError struct {
	Path string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("Python executable not found at %s", e.Path)
}

// Unwrap lets callers match with errors.Is(err, ErrPredictorUnavailable)
func (e *ConfigError) Unwrap() error {
	return ErrPredictorUnavailable
}

// TimeoutError reports that the scoring process exceeded its time budget
type TimeoutError struct {
	Timeout time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("scoring process timed out after %s", e.Timeout)
}

// ProcessError reports a scoring process that failed to start or exited non-zero
type ProcessError struct {
	Script   string
	ExitCode int
	Stderr   string
	Err      error
}

func (e *ProcessError) Error() string {
	msg := fmt.Sprintf("scoring process %s failed", e.Script)
	if e.ExitCode != 0 {
		msg = fmt.Sprintf("%s with exit code %d", msg, e.ExitCode)
	}
	if e.Stderr != "" {
		msg = msg + ": " + e.Stderr
	} else if e.Err != nil {
		msg = msg + ": " + e.Err.Error()
	}
	return msg
}

func (e *ProcessError) Unwrap() error {
	return e.Err
}

// ParseError reports scoring output that is not a finite decimal number
type ParseError struct {
	Output string
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("invalid scoring output %q", e.Output)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
