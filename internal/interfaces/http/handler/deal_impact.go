package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	reportapp "github.com/profitalyze/backend/internal/application/report"
	"github.com/profitalyze/backend/internal/domain/dealimpact"
	"github.com/profitalyze/backend/internal/domain/shared"
	"github.com/profitalyze/backend/internal/interfaces/http/dto"
	"github.com/profitalyze/backend/internal/interfaces/http/middleware"
)

// Deal impact response messages
const (
	MsgDealImpactRetrieved         = "Deal impact analysis retrieved successfully"
	MsgDealImpactFailed            = "Failed to retrieve deal impact analysis"
	MsgFilteredDealImpactRetrieved = "Filtered deal impact analysis retrieved successfully"
	MsgFilteredDealImpactFailed    = "Failed to retrieve filtered deal impact analysis"
	MsgDealNotFound                = "Deal not found or no impact data available"
	MsgDealImpactExported          = "Deal impact report exported successfully"
	MsgDealImpactExportFailed      = "Failed to export deal impact analysis"
)

// DealImpactReader is the deal-impact report surface used by DealImpactHandler
type DealImpactReader interface {
	ListImpact(ctx context.Context, q reportapp.AssumptionsQuery) ([]dealimpact.Row, error)
	ListFilteredImpact(ctx context.Context, f reportapp.ImpactFilter) (*reportapp.ImpactPage, error)
	GetDealImpact(ctx context.Context, dealID int64, q reportapp.AssumptionsQuery) (*dealimpact.Row, error)
	ExportImpact(ctx context.Context, f reportapp.ImpactFilter) (*reportapp.ExportResult, error)
}

// DealImpactHandler handles the profits endpoints
type DealImpactHandler struct {
	BaseHandler
	reports DealImpactReader
}

// NewDealImpactHandler creates a new DealImpactHandler
func NewDealImpactHandler(reports DealImpactReader) *DealImpactHandler {
	return &DealImpactHandler{reports: reports}
}

// List godoc
// @Summary      Deal impact analysis
// @Description  Every deal ranked by estimated incremental profit
// @Tags         profits
// @Produce      json
// @Param        profit_margin      query number false "Assumed gross margin (0, 1]"
// @Param        customer_retention query number false "Assumed retention without the deal (0, 1]"
// @Success      200 {object} dto.ReportResponse{data=[]dealimpact.Row}
// @Failure      400 {object} dto.ValidationErrorResponse
// @Failure      500 {object} dto.ReportResponse
// @Router       /profits/deal-impact-analysis [get]
func (h *DealImpactHandler) List(c *gin.Context) {
	var q reportapp.AssumptionsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	rows, err := h.reports.ListImpact(c.Request.Context(), q)
	if err != nil {
		h.reportError(c, err, MsgDealImpactFailed)
		return
	}
	rows = nonNilRows(rows)
	c.JSON(http.StatusOK, dto.NewReportList(rows, len(rows), MsgDealImpactRetrieved))
}

// ListFiltered godoc
// @Summary      Filtered deal impact analysis
// @Tags         profits
// @Produce      json
// @Param        deal_type          query string  false "Deal type"
// @Param        min_usage_count    query int     false "Minimum number of uses"
// @Param        limit              query int     false "Page size" default(50)
// @Param        offset             query int     false "Page offset" default(0)
// @Param        profit_margin      query number  false "Assumed gross margin (0, 1]"
// @Param        customer_retention query number  false "Assumed retention without the deal (0, 1]"
// @Success      200 {object} dto.ReportResponse{data=[]dealimpact.Row}
// @Failure      400 {object} dto.ValidationErrorResponse
// @Failure      500 {object} dto.ReportResponse
// @Router       /profits/deal-impact-analysis/filtered [get]
func (h *DealImpactHandler) ListFiltered(c *gin.Context) {
	var f reportapp.ImpactFilter
	if err := c.ShouldBindQuery(&f); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	page, err := h.reports.ListFilteredImpact(c.Request.Context(), f)
	if err != nil {
		h.reportError(c, err, MsgFilteredDealImpactFailed)
		return
	}
	rows := nonNilRows(page.Rows)
	c.JSON(http.StatusOK, dto.NewReportPage(rows, len(rows), page.Page.Limit, page.Page.Offset, MsgFilteredDealImpactRetrieved))
}

// Get godoc
// @Summary      Impact analysis for one deal
// @Tags         profits
// @Produce      json
// @Param        dealId             path  int    true  "Deal ID"
// @Param        profit_margin      query number false "Assumed gross margin (0, 1]"
// @Param        customer_retention query number false "Assumed retention without the deal (0, 1]"
// @Success      200 {object} dto.ReportResponse{data=dealimpact.Row}
// @Failure      404 {object} dto.ReportResponse
// @Failure      500 {object} dto.ReportResponse
// @Router       /profits/deal-impact-analysis/{dealId} [get]
func (h *DealImpactHandler) Get(c *gin.Context) {
	var q reportapp.AssumptionsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	dealID, err := strconv.ParseInt(c.Param("dealId"), 10, 64)
	if err != nil {
		h.dealNotFound(c)
		return
	}

	row, err := h.reports.GetDealImpact(c.Request.Context(), dealID, q)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			h.dealNotFound(c)
			return
		}
		h.reportError(c, err, MsgDealImpactFailed)
		return
	}
	c.JSON(http.StatusOK, dto.NewReportItem(row, MsgDealImpactRetrieved))
}

// Export godoc
// @Summary      Export deal impact analysis as CSV
// @Description  Uploads the ranked table to object storage and returns a presigned download link
// @Tags         profits
// @Produce      json
// @Param        deal_type          query string  false "Deal type"
// @Param        min_usage_count    query int     false "Minimum number of uses"
// @Param        profit_margin      query number  false "Assumed gross margin (0, 1]"
// @Param        customer_retention query number  false "Assumed retention without the deal (0, 1]"
// @Success      200 {object} dto.ReportResponse{data=reportapp.ExportResult}
// @Failure      503 {object} dto.ReportResponse
// @Failure      500 {object} dto.ReportResponse
// @Router       /profits/deal-impact-analysis/export [post]
func (h *DealImpactHandler) Export(c *gin.Context) {
	var f reportapp.ImpactFilter
	if err := c.ShouldBindQuery(&f); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	result, err := h.reports.ExportImpact(c.Request.Context(), f)
	if err != nil {
		h.reportError(c, err, MsgDealImpactExportFailed)
		return
	}
	c.JSON(http.StatusOK, dto.NewReportItem(result, MsgDealImpactExported))
}

func (h *DealImpactHandler) dealNotFound(c *gin.Context) {
	c.JSON(http.StatusNotFound, dto.ReportResponse{Success: false, Message: MsgDealNotFound})
}

// reportError maps domain errors to their status and hides everything else behind a 500
func (h *DealImpactHandler) reportError(c *gin.Context, err error, message string) {
	status := dto.StatusForError(err)
	if status == http.StatusInternalServerError {
		h.logError(c, err, zap.String("report", c.FullPath()))
		c.JSON(status, dto.NewReportFailure(dto.MsgInternalServerError, message))
		return
	}
	c.JSON(status, dto.NewReportFailure(dto.DomainMessage(err, message), message))
}

func nonNilRows(rows []dealimpact.Row) []dealimpact.Row {
	if rows == nil {
		return []dealimpact.Row{}
	}
	return rows
}
