package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/profitalyze/backend/internal/interfaces/http/dto"
)

type filterQuery struct {
	DealType     string   `form:"deal_type" binding:"omitempty,max=10"`
	Limit        *int     `form:"limit" binding:"omitempty,min=1"`
	ProfitMargin *float64 `form:"profit_margin" binding:"omitempty,gt=0,lte=1"`
}

func validatedRouter() *gin.Engine {
	SetupValidator()

	router := gin.New()
	router.GET("/test", func(c *gin.Context) {
		var q filterQuery
		if err := c.ShouldBindQuery(&q); err != nil {
			HandleValidationError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true})
	})
	return router
}

func TestSetupValidator(t *testing.T) {
	SetupValidator()

	v, ok := binding.Validator.Engine().(*validator.Validate)
	assert.True(t, ok)
	assert.NotNil(t, v)
}

func TestHandleValidationError(t *testing.T) {
	router := validatedRouter()

	t.Run("reports query field names", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test?limit=0&profit_margin=1.5", nil))

		assert.Equal(t, http.StatusBadRequest, w.Code)

		var resp dto.ValidationErrorResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.False(t, resp.Success)
		assert.Equal(t, dto.MsgInvalidQuery, resp.Error)
		require.Len(t, resp.Details, 2)
		assert.Equal(t, "limit", resp.Details[0].Field)
		assert.Equal(t, "Must be at least 1", resp.Details[0].Message)
		assert.Equal(t, "profit_margin", resp.Details[1].Field)
		assert.Equal(t, "Must be less than or equal to 1", resp.Details[1].Message)
	})

	t.Run("malformed number", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test?limit=abc", nil))

		assert.Equal(t, http.StatusBadRequest, w.Code)

		var resp dto.ValidationErrorResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		require.Len(t, resp.Details, 1)
		assert.Equal(t, "query", resp.Details[0].Field)
	})

	t.Run("valid query passes", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test?deal_type=percentage&limit=5&profit_margin=0.4", nil))

		assert.Equal(t, http.StatusOK, w.Code)
	})
}

func TestGetValidationMessage(t *testing.T) {
	type sample struct {
		Required string `validate:"required"`
		Min      string `validate:"min=5"`
		Max      int    `validate:"max=10"`
		OneOf    string `validate:"oneof=a b c"`
		GT       int    `validate:"gt=0"`
	}

	v := validator.New()
	err := v.Struct(sample{Min: "ab", Max: 11, OneOf: "d"})
	require.Error(t, err)

	got := map[string]string{}
	for _, e := range err.(validator.ValidationErrors) {
		got[e.Field()] = getValidationMessage(e)
	}

	assert.Equal(t, "This field is required", got["Required"])
	assert.Equal(t, "Must be at least 5 characters", got["Min"])
	assert.Equal(t, "Must be at most 10", got["Max"])
	assert.Equal(t, "Must be one of: a b c", got["OneOf"])
	assert.Equal(t, "Must be greater than 0", got["GT"])
}
