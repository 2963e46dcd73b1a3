package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

const apiVersion = "1.0.0"

// APIHandler answers the service information routes.
type APIHandler struct {
	environment       string
	databaseConnected bool
	startedAt         time.Time
}

func NewAPIHandler(environment string, databaseConnected bool) *APIHandler {
	return &APIHandler{
		environment:       environment,
		databaseConnected: databaseConnected,
		startedAt:         time.Now(),
	}
}

func (h *APIHandler) Info(c *gin.Context) {
	database := "disconnected"
	if h.databaseConnected {
		database = "connected"
	}
	c.JSON(http.StatusOK, gin.H{
		"message":     "API Bonne Affaire 78",
		"version":     apiVersion,
		"status":      "active",
		"timestamp":   time.Now().UTC().Format(time.RFC3339),
		"environment": h.environment,
		"database":    database,
	})
}

func (h *APIHandler) Test(c *gin.Context) {
	respond(c, http.StatusOK, "API operational", gin.H{
		"server":    "Bonne Affaire 78",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"uptime":    time.Since(h.startedAt).Seconds(),
	})
}

func (h *APIHandler) NotFound(c *gin.Context) {
	respondFailure(c, http.StatusNotFound, "API route not found")
}
