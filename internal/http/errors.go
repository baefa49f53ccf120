package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"student-compass/internal/assessment"
	"student-compass/internal/service"
)

// respondError traduce errores de servicio a status HTTP. Lo no reconocido se loguea y sale como 500.
func respondError(c *gin.Context, logger *zap.Logger, err error, op string) {
	var incomplete *assessment.IncompleteAnswersError
	switch {
	case errors.As(err, &incomplete):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "incomplete answers", "detail": "incomplete answers", "missing": incomplete.Missing})
	case errors.Is(err, assessment.ErrSessionIncomplete):
		writeError(c, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, assessment.ErrInvalidAnswer),
		errors.Is(err, assessment.ErrUnknownQuestion),
		errors.Is(err, service.ErrInvalidProfile),
		errors.Is(err, service.ErrInvalidUsername),
		errors.Is(err, service.ErrInvalidPassword),
		errors.Is(err, service.ErrInvalidEducation),
		errors.Is(err, service.ErrInvalidEventType),
		errors.Is(err, service.ErrInvalidEventID):
		writeError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrUserNotFound),
		errors.Is(err, service.ErrProfileNotFound),
		errors.Is(err, service.ErrSessionNotFound):
		writeError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrUsernameTaken),
		errors.Is(err, service.ErrSessionSubmitted):
		writeError(c, http.StatusConflict, err.Error())
	case errors.Is(err, service.ErrRateLimited):
		writeError(c, http.StatusTooManyRequests, "too many requests")
	case errors.Is(err, service.ErrInvalidCredentials):
		writeError(c, http.StatusUnauthorized, "invalid username or password")
	default:
		logger.Error(op+" failed", zap.Error(err))
		writeError(c, http.StatusInternalServerError, "could not "+op)
	}
}

func badRequest(c *gin.Context, logger *zap.Logger, err error, what string) {
	logger.Warn("invalid "+what+" request", zap.Error(err))
	writeError(c, http.StatusBadRequest, "invalid request")
}

// writeError responde con error y detail (el cliente web lee detail).
func writeError(c *gin.Context, status int, msg string) {
	c.JSON(status, gin.H{"error": msg, "detail": msg})
}
