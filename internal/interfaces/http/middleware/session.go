package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	appcart "github.com/vitrina/backend/internal/application/cart"
	"github.com/vitrina/backend/internal/infrastructure/logger"
	"github.com/vitrina/backend/internal/interfaces/http/dto"
)

// Session header and context keys
const (
	SessionIDHeader = "X-Session-ID"
	SessionIDKey    = "session_id"
	SessionKey      = "session"

	// MaxSessionIDLength bounds client supplied session ids
	MaxSessionIDLength = 64
)

// SessionOpener opens or resumes a visitor session
type SessionOpener interface {
	Open(ctx context.Context, id string) (*appcart.Session, error)
}

// SessionConfig holds the session cookie settings
type SessionConfig struct {
	CookieName string
	Secure     bool
	MaxAge     time.Duration
}

// Session resolves the visitor session from the X-Session-ID header or the
// session cookie, creating a new one when neither is present. The id is
// echoed back in both so that browser and API clients can keep it.
func Session(opener SessionOpener, cfg SessionConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(SessionIDHeader)
		if id == "" {
			id, _ = c.Cookie(cfg.CookieName)
		}
		if len(id) > MaxSessionIDLength {
			id = ""
		}

		sess, err := opener.Open(c.Request.Context(), id)
		if err != nil {
			logger.GetGinLogger(c).Error("Failed to open session",
				zap.String("session_id", id),
				zap.Error(err),
			)
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, dto.NewErrorResponseWithRequestID(
				dto.ErrCodeSessionUnavailable,
				"Session could not be opened",
				GetRequestID(c),
			))
			return
		}

		c.Set(SessionIDKey, sess.ID)
		c.Set(SessionKey, sess)
		c.Request = c.Request.WithContext(logger.WithSessionID(c.Request.Context(), sess.ID))

		c.Header(SessionIDHeader, sess.ID)
		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(cfg.CookieName, sess.ID, int(cfg.MaxAge.Seconds()), "/", "", cfg.Secure, true)

		c.Next()
	}
}

// GetSession returns the session resolved by Session
func GetSession(c *gin.Context) (*appcart.Session, bool) {
	v, ok := c.Get(SessionKey)
	if !ok {
		return nil, false
	}
	sess, ok := v.(*appcart.Session)
	return sess, ok && sess != nil
}

// GetSessionID returns the id of the session resolved by Session
func GetSessionID(c *gin.Context) string {
	return c.GetString(SessionIDKey)
}
