package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"bonneaffaire/internal/models"
	"bonneaffaire/internal/services"
)

const adminContextKey = "admin"

// customRecovery logs panics and answers with the JSON envelope.
func customRecovery(logger *zap.Logger, production bool) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		logger.Error("Panic recovered",
			zap.Any("error", recovered),
			zap.String("path", c.Request.URL.Path),
			zap.String("method", c.Request.Method),
		)
		message := "internal server error"
		if !production {
			message = fmt.Sprintf("%v", recovered)
		}
		respondFailure(c, http.StatusInternalServerError, message)
	})
}

// loggingMiddleware logs HTTP requests
func loggingMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		method := c.Request.Method

		c.Next()

		logger.Info("HTTP request",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
		)
	}
}

// adminAuth checks HTTP basic credentials against the back-office users.
func adminAuth(users services.UserService, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		username, password, ok := c.Request.BasicAuth()
		if !ok {
			c.Header("WWW-Authenticate", `Basic realm="admin"`)
			respondFailure(c, http.StatusUnauthorized, "authentication required")
			return
		}

		user, err := users.Authenticate(c.Request.Context(), username, password)
		if err != nil {
			if !errors.Is(err, services.ErrInvalidCredentials) {
				logger.Error("Failed to authenticate admin", zap.Error(err))
			} else {
				logger.Warn("Rejected admin credentials", zap.String("username", username))
			}
			c.Header("WWW-Authenticate", `Basic realm="admin"`)
			respondFailure(c, http.StatusUnauthorized, "invalid credentials")
			return
		}

		c.Set(adminContextKey, user)
		c.Next()
	}
}

// adminName returns the authenticated back-office username, for audit entries.
func adminName(c *gin.Context) string {
	if v, ok := c.Get(adminContextKey); ok {
		if user, ok := v.(*models.User); ok {
			return user.Username
		}
	}
	return ""
}

// corsMiddleware lets the storefront origin call the API. An empty origin allows any.
func corsMiddleware(origin string) gin.HandlerFunc {
	if origin == "" {
		origin = "*"
	}
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", origin)
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Authorization, Content-Type")
		if origin != "*" {
			c.Header("Vary", "Origin")
		}
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
