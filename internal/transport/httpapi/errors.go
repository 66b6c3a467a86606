package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/shop/internal/domain"
)

const (
	codeValidation   = "validation_error"
	codeUnauthorized = "unauthorized"
	codeNotFound     = "not_found"
	codeConflict     = "conflict"
	codeInternal     = "internal_error"

	internalMessage = "internal server error"
)

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// statusFor сопоставляет группу доменной ошибки HTTP-статусу.
func statusFor(err error) (int, string) {
	switch {
	case domain.IsValidation(err):
		return http.StatusBadRequest, codeValidation
	case domain.IsAuth(err):
		return http.StatusUnauthorized, codeUnauthorized
	case domain.IsNotFound(err):
		return http.StatusNotFound, codeNotFound
	case domain.IsConflict(err):
		return http.StatusConflict, codeConflict
	default:
		return http.StatusInternalServerError, codeInternal
	}
}

// writeError отвечает клиенту; внутренние ошибки логируются и скрываются за общим сообщением.
func (h *handler) writeError(c *gin.Context, err error) {
	status, code := statusFor(err)
	message := err.Error()
	if status == http.StatusInternalServerError {
		h.logger.WithError(err).WithFields(log.Fields{
			"request_id": c.GetString(ctxRequestID),
			"route":      c.FullPath(),
		}).Error("request failed")
		message = internalMessage
	}
	c.AbortWithStatusJSON(status, errorResponse{Code: code, Message: message})
}

func (h *handler) badRequest(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, errorResponse{Code: codeValidation, Message: message})
}
