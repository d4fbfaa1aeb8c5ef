package dto

// ErrorResponse is the error body of the catalog, prediction and analytics endpoints
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// ValidationDetail names one rejected field
type ValidationDetail struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationErrorResponse is returned when query binding fails
type ValidationErrorResponse struct {
	Success bool               `json:"success"`
	Error   string             `json:"error"`
	Details []ValidationDetail `json:"details,omitempty"`
}

// Pagination echoes the window applied to a filtered report
type Pagination struct {
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}

// ReportResponse is the envelope of the profits endpoints
type ReportResponse struct {
	Success    bool        `json:"success"`
	Data       any         `json:"data,omitempty"`
	Count      *int        `json:"count,omitempty"`
	Pagination *Pagination `json:"pagination,omitempty"`
	Error      string      `json:"error,omitempty"`
	Message    string      `json:"message,omitempty"`
}

// NewReportItem wraps a single record
func NewReportItem(data any, message string) ReportResponse {
	return ReportResponse{Success: true, Data: data, Message: message}
}

// NewReportList wraps a full list with its row count
func NewReportList(data any, count int, message string) ReportResponse {
	return ReportResponse{Success: true, Data: data, Count: &count, Message: message}
}

// NewReportPage wraps one page of a filtered list
func NewReportPage(data any, count, limit, offset int, message string) ReportResponse {
	return ReportResponse{
		Success:    true,
		Data:       data,
		Count:      &count,
		Pagination: &Pagination{Limit: limit, Offset: offset},
		Message:    message,
	}
}

// NewReportFailure creates a failed report response
func NewReportFailure(errMsg, message string) ReportResponse {
	return ReportResponse{Success: false, Error: errMsg, Message: message}
}
