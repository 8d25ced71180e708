package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vitrina/backend/internal/domain/catalog"
	"github.com/vitrina/backend/internal/domain/shared"
	"github.com/vitrina/backend/internal/interfaces/http/dto"
	"github.com/vitrina/backend/internal/interfaces/http/middleware"
)

func TestBaseHandler_HandleError(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"validation", catalog.NewValidationError("bad"), http.StatusBadRequest, "VALIDATION_ERROR"},
		{"wrapped not found", fmt.Errorf("add: %w", catalog.NewProductNotFoundError("X")), http.StatusNotFound, "NOT_FOUND"},
		{"transport", catalog.NewTransportError(http.StatusServiceUnavailable), http.StatusBadGateway, "TRANSPORT_ERROR"},
		{"schema", catalog.NewSchemaError("not an array"), http.StatusBadGateway, "SCHEMA_ERROR"},
		{"empty cart", shared.ErrEmptyCart, http.StatusUnprocessableEntity, "EMPTY_CART"},
		{"plain error", errors.New("boom"), http.StatusInternalServerError, "INTERNAL_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request, _ = http.NewRequest(http.MethodGet, "/", nil)
			c.Set(middleware.RequestIDKey, "req-7")

			h := &BaseHandler{}
			h.HandleError(c, tt.err)

			assert.Equal(t, tt.wantStatus, w.Code)
			var resp dto.Response
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.False(t, resp.Success)
			assert.Equal(t, tt.wantCode, resp.Error.Code)
			assert.Equal(t, "req-7", resp.Error.RequestID)
			assert.Len(t, c.Errors, 1)
		})
	}
}

func TestBaseHandler_MissingSession(t *testing.T) {
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodGet, "/cart", nil)

	NewCartHandler(nil).GetCart(c)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}
