package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"bonneaffaire/internal/services"
)

type SettingsHandler struct {
	settingsService services.SettingsService
	logger          *zap.Logger
	production      bool
}

func NewSettingsHandler(settingsService services.SettingsService, logger *zap.Logger, production bool) *SettingsHandler {
	return &SettingsHandler{settingsService: settingsService, logger: logger, production: production}
}

// ListSettings handles GET /api/admin/settings
func (h *SettingsHandler) ListSettings(c *gin.Context) {
	settings, err := h.settingsService.List(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, h.production, err)
		return
	}
	respond(c, http.StatusOK, "", settings)
}

// SetSetting handles PUT /api/admin/settings/:name
func (h *SettingsHandler) SetSetting(c *gin.Context) {
	var req struct {
		Value        *float64 `json:"value"`
		IsPercentage bool     `json:"isPercentage"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.Value == nil {
		respondFailure(c, http.StatusBadRequest, "invalid request format", "value is required")
		return
	}

	if err := h.settingsService.Set(c.Request.Context(), c.Param("name"), *req.Value, req.IsPercentage); err != nil {
		respondError(c, h.logger, h.production, err)
		return
	}
	h.logger.Info("Shop setting updated",
		zap.String("setting", c.Param("name")),
		zap.Float64("value", *req.Value),
		zap.String("user", adminName(c)),
	)
	respond(c, http.StatusOK, "setting updated", nil)
}
