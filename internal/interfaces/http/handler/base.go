// Package handler implements the HTTP endpoints of the Profitalyze API.
package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/profitalyze/backend/internal/infrastructure/logger"
	"github.com/profitalyze/backend/internal/interfaces/http/dto"
)

// BaseHandler provides common handler utilities
type BaseHandler struct{}

// Success sends data as a 200 response
func (h *BaseHandler) Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, data)
}

// Error sends an {error} body
func (h *BaseHandler) Error(c *gin.Context, statusCode int, message string) {
	c.JSON(statusCode, dto.ErrorResponse{Error: message})
}

// ErrorWithDetails sends an {error, details} body
func (h *BaseHandler) ErrorWithDetails(c *gin.Context, statusCode int, message, details string) {
	c.JSON(statusCode, dto.ErrorResponse{Error: message, Details: details})
}

// BadRequest sends a 400 response
func (h *BaseHandler) BadRequest(c *gin.Context, message string) {
	h.Error(c, http.StatusBadRequest, message)
}

// NotFound sends a 404 response
func (h *BaseHandler) NotFound(c *gin.Context, message string) {
	h.Error(c, http.StatusNotFound, message)
}

// InternalError logs err and sends a 500 response with a generic message
func (h *BaseHandler) InternalError(c *gin.Context, err error) {
	h.logError(c, err)
	h.Error(c, http.StatusInternalServerError, dto.MsgInternalServerError)
}

// logError records a failed request on the request-scoped logger
func (h *BaseHandler) logError(c *gin.Context, err error, fields ...zap.Field) {
	fields = append(fields, zap.Error(err))
	logger.GetGinLogger(c).Error("Request failed", fields...)
}
