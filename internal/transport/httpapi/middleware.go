package httpapi

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/shop/internal/domain"
	"github.com/vladislavdragonenkov/shop/internal/metrics"
)

const (
	headerRequestID = "X-Request-ID"

	ctxRequestID = "request_id"
	ctxUserID    = "user_id"
)

// requestID пробрасывает входящий X-Request-ID или генерирует новый.
func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := strings.TrimSpace(c.GetHeader(headerRequestID))
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(ctxRequestID, id)
		c.Header(headerRequestID, id)
		c.Next()
	}
}

func accessLog(logger *log.Entry) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		entry := logger.WithFields(log.Fields{
			"request_id":  c.GetString(ctxRequestID),
			"method":      c.Request.Method,
			"path":        c.Request.URL.Path,
			"route":       c.FullPath(),
			"status":      c.Writer.Status(),
			"duration_ms": time.Since(start).Milliseconds(),
		})
		if c.Writer.Status() >= http.StatusInternalServerError {
			entry.Warn("http request")
			return
		}
		entry.Info("http request")
	}
}

func observe(m *metrics.HTTPMetrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		m.Observe(c.Request.Method, c.FullPath(), c.Writer.Status(), time.Since(start))
	}
}

func recovery(logger *log.Entry) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		logger.WithFields(log.Fields{
			"request_id": c.GetString(ctxRequestID),
			"panic":      recovered,
		}).Error("panic in http handler")
		c.AbortWithStatusJSON(http.StatusInternalServerError, errorResponse{Code: codeInternal, Message: internalMessage})
	})
}

// requireAuth пропускает запрос дальше только с валидным bearer-токеном живого пользователя.
func (h *handler) requireAuth(c *gin.Context) {
	userID, err := h.auth.Authenticate(c.Request.Context(), c.GetHeader("Authorization"))
	if err != nil {
		if domain.IsAuth(err) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, errorResponse{Code: codeUnauthorized, Message: domain.ErrUnauthorized.Error()})
			return
		}
		h.writeError(c, err)
		return
	}
	c.Set(ctxUserID, userID)
	c.Next()
}

func callerID(c *gin.Context) int64 {
	return c.GetInt64(ctxUserID)
}
