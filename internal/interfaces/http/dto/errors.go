package dto

import (
	"errors"
	"net/http"

	"github.com/profitalyze/backend/internal/domain/shared"
)

// Generic messages surfaced to API callers
const (
	MsgInternalServerError = "Internal server error"
	MsgServerError         = "Server error"
	MsgInvalidQuery        = "Invalid query parameters"
)

// DomainCodeHTTPStatus maps domain error codes to HTTP status codes
var DomainCodeHTTPStatus = map[string]int{
	shared.ErrNotFound.Code:     http.StatusNotFound,
	shared.ErrInvalidInput.Code: http.StatusBadRequest,
	shared.ErrUnavailable.Code:  http.StatusServiceUnavailable,
}

// StatusForError returns the HTTP status for err.
// Errors that are not domain errors map to 500.
func StatusForError(err error) int {
	var de *shared.DomainError
	if errors.As(err, &de) {
		if status, ok := DomainCodeHTTPStatus[de.Code]; ok {
			return status
		}
	}
	return http.StatusInternalServerError
}

// DomainMessage returns the caller-safe message of a domain error, or fallback
func DomainMessage(err error, fallback string) string {
	var de *shared.DomainError
	if errors.As(err, &de) {
		return de.Message
	}
	return fallback
}
