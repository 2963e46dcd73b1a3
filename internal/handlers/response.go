package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"bonneaffaire/pkg/apperrors"
)

// Response is the envelope of every JSON answer.
type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Errors  []string    `json:"errors,omitempty"`
}

func respond(c *gin.Context, status int, message string, data interface{}) {
	c.JSON(status, Response{Success: true, Message: message, Data: data})
}

func respondFailure(c *gin.Context, status int, message string, errs ...string) {
	c.AbortWithStatusJSON(status, Response{Success: false, Message: message, Errors: errs})
}

// respondError maps err onto a status code. Unexpected errors are logged and,
// in production, reported without their message.
func respondError(c *gin.Context, logger *zap.Logger, production bool, err error) {
	var (
		verr *apperrors.ValidationError
		nf   *apperrors.NotFoundError
		cf   *apperrors.ConflictError
	)

	switch {
	case errors.As(err, &verr):
		respondFailure(c, http.StatusBadRequest, "validation failed", verr.Messages()...)
	case apperrors.IsInvalidID(err):
		respondFailure(c, http.StatusBadRequest, "invalid identifier format")
	case errors.As(err, &nf):
		respondFailure(c, http.StatusNotFound, nf.Resource+" not found")
	case errors.As(err, &cf):
		respondFailure(c, http.StatusConflict, cf.Error())
	case errors.Is(err, apperrors.ErrUnavailable):
		respondFailure(c, http.StatusServiceUnavailable, "service temporarily unavailable")
	default:
		logger.Error("request failed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Error(err),
		)
		message := err.Error()
		if production {
			message = "internal server error"
		}
		respondFailure(c, http.StatusInternalServerError, message)
	}
}
