package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vitrina/backend/internal/interfaces/http/dto"
)

type pingFunc func(ctx context.Context) error

func (f pingFunc) Ping(ctx context.Context) error { return f(ctx) }

type sessionCount int

func (n sessionCount) Len() int { return int(n) }

func TestHealthHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)

	run := func(h *HealthHandler) (*httptest.ResponseRecorder, dto.Response) {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request, _ = http.NewRequest(http.MethodGet, "/health", nil)
		h.Health(c)

		var resp dto.Response
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		return w, resp
	}

	t.Run("healthy", func(t *testing.T) {
		h := NewHealthHandler(HealthConfig{
			Store:    pingFunc(func(context.Context) error { return nil }),
			Driver:   "redis",
			Sessions: sessionCount(4),
		})
		w, resp := run(h)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.True(t, resp.Success)
		data := resp.Data.(map[string]any)
		assert.Equal(t, "healthy", data["status"])
		assert.Equal(t, "redis", data["storage"])
		assert.Equal(t, float64(4), data["sessions"])
	})

	t.Run("store unreachable", func(t *testing.T) {
		h := NewHealthHandler(HealthConfig{
			Store: pingFunc(func(context.Context) error { return errors.New("connection refused") }),
		})
		w, resp := run(h)

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		assert.False(t, resp.Success)
		assert.Equal(t, dto.ErrCodeStorageUnavailable, resp.Error.Code)
	})

	t.Run("ping is bounded by the timeout", func(t *testing.T) {
		h := NewHealthHandler(HealthConfig{
			Store: pingFunc(func(ctx context.Context) error {
				_, ok := ctx.Deadline()
				assert.True(t, ok)
				return nil
			}),
		})
		w, _ := run(h)
		assert.Equal(t, http.StatusOK, w.Code)
	})
}
