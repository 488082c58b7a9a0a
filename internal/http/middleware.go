package httpapi

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/fairyhunter13/vending-machine-simulator/internal/obs"
)

const (
	ctxKeyRequestID    = "request_id"
	ctxKeyAdminSession = "admin_session"
)

func RequestIDFromContext(c *gin.Context) string {
	return c.GetString(ctxKeyRequestID)
}

func WithRequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		reqID := c.GetHeader("X-Request-Id")
		if reqID == "" {
			reqID = uuid.NewString()
		}
		c.Header("X-Request-Id", reqID)
		c.Set(ctxKeyRequestID, reqID)
		c.Next()
	}
}

func WithLogging() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		lat := time.Since(start)
		obs.Logger.Info("http_request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Int("bytes", c.Writer.Size()),
			zap.Float64("latency_ms", float64(lat.Microseconds())/1000.0),
			zap.String("request_id", RequestIDFromContext(c)),
		)
	}
}

// requireAdmin resolves the bearer token to a live admin session.
func (a *App) requireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		parts := strings.SplitN(c.GetHeader("Authorization"), " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			WriteJSONError(c, http.StatusUnauthorized, "unauthorized", "missing bearer token")
			return
		}
		sid, err := a.Tokens.Verify(parts[1])
		if err != nil {
			WriteJSONError(c, http.StatusUnauthorized, "unauthorized", "invalid token")
			return
		}
		a.mu.Lock()
		s, ok := a.sessions[sid]
		a.mu.Unlock()
		if !ok {
			WriteJSONError(c, http.StatusUnauthorized, "unauthorized", "admin session ended")
			return
		}
		c.Set(ctxKeyAdminSession, s)
		c.Next()
	}
}
