package handlers

import (
	"encoding/json"
	"io"
	"net/http"

	"game_store_backend/internal/services"
	"game_store_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// maxSettingBody bounds a single setting value.
const maxSettingBody = 64 << 10

type SettingHandler struct {
	settings services.SettingService
}

func NewSettingHandler(ss services.SettingService) *SettingHandler {
	return &SettingHandler{settings: ss}
}

func (h *SettingHandler) GetSettings(c *gin.Context) {
	all, err := h.settings.GetAll(c.Request.Context())
	if err != nil {
		respondServiceError(c, err, "GetSettings: settingService.GetAll failed", "Failed to fetch settings.")
		return
	}
	c.JSON(http.StatusOK, all)
}

// StoreConfig returns the typed settings view with defaults applied.
func (h *SettingHandler) StoreConfig(c *gin.Context) {
	cfg, err := h.settings.StoreConfig(c.Request.Context())
	if err != nil {
		respondServiceError(c, err, "StoreConfig: settingService.StoreConfig failed", "Failed to fetch store configuration.")
		return
	}
	c.JSON(http.StatusOK, cfg)
}

// UpsertSetting godoc
// @Summary  Create or replace a store setting
// @Tags     settings
// @Security BearerAuth
// @Param    key  path string true "Setting key"
// @Param    body body object true "Any JSON value"
// @Success  200 {object} models.StoreSetting
// @Failure  400 {object} utils.APIError
// @Router   /api/v1/settings/{key} [put]
func (h *SettingHandler) UpsertSetting(c *gin.Context) {
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxSettingBody+1))
	if err != nil || len(body) > maxSettingBody || !json.Valid(body) {
		utils.RespondValidationFailed(c, "setting value must be a JSON document")
		return
	}
	uid, ok := currentUser(c)
	if !ok {
		return
	}
	setting, err := h.settings.Upsert(c.Request.Context(), c.Param("key"), json.RawMessage(body), uid)
	if err != nil {
		respondServiceError(c, err, "UpsertSetting: settingService.Upsert failed", "Failed to save setting.")
		return
	}
	c.JSON(http.StatusOK, setting)
}

func (h *SettingHandler) DeleteSetting(c *gin.Context) {
	if err := h.settings.Delete(c.Request.Context(), c.Param("key")); err != nil {
		respondServiceError(c, err, "DeleteSetting: settingService.Delete failed", "Failed to delete setting.")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Setting deleted successfully"})
}

func (h *SettingHandler) Theme(c *gin.Context) {
	theme, err := h.settings.Theme(c.Request.Context())
	if err != nil {
		respondServiceError(c, err, "Theme: settingService.Theme failed", "Failed to fetch theme.")
		return
	}
	c.JSON(http.StatusOK, theme)
}

func (h *SettingHandler) Features(c *gin.Context) {
	flags, err := h.settings.Features(c.Request.Context())
	if err != nil {
		respondServiceError(c, err, "Features: settingService.Features failed", "Failed to fetch features.")
		return
	}
	c.JSON(http.StatusOK, flags)
}
