package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/vitrina/backend/internal/infrastructure/logger"
	"github.com/vitrina/backend/internal/infrastructure/telemetry"
	"github.com/vitrina/backend/internal/interfaces/http/dto"
)

// Pinger reports whether a backing store is reachable
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthConfig describes what the health check inspects
type HealthConfig struct {
	Store    Pinger
	Driver   string
	Fallback bool
	Sessions telemetry.SessionCounter
	Timeout  time.Duration
}

// HealthHandler reports service readiness
type HealthHandler struct {
	BaseHandler
	cfg HealthConfig
}

// NewHealthHandler creates a new HealthHandler
func NewHealthHandler(cfg HealthConfig) *HealthHandler {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 2 * time.Second
	}
	return &HealthHandler{cfg: cfg}
}

// Health godoc
//
//	@Summary	Health check
//	@Tags		system
//	@Produce	json
//	@Success	200	{object}	dto.Response{data=dto.HealthResponse}
//	@Failure	503	{object}	dto.Response
//	@Router		/health [get]
func (h *HealthHandler) Health(c *gin.Context) {
	resp := dto.HealthResponse{
		Status:   "healthy",
		Storage:  h.cfg.Driver,
		Fallback: h.cfg.Fallback,
		Version:  telemetry.ServiceVersion,
	}
	if h.cfg.Sessions != nil {
		resp.Sessions = h.cfg.Sessions.Len()
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), h.cfg.Timeout)
	defer cancel()

	if err := h.cfg.Store.Ping(ctx); err != nil {
		logger.GetGinLogger(c).Warn("Health check failed", zap.Error(err))
		h.Error(c, http.StatusServiceUnavailable, dto.ErrCodeStorageUnavailable, "Cart storage is unreachable")
		return
	}
	h.Success(c, resp)
}
