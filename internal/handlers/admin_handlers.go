package handlers

import (
	"net/http"

	"game_store_backend/internal/middleware"
	"game_store_backend/internal/services"
	"game_store_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// AdminHandler serves the owner data export and cleanup.
type AdminHandler struct {
	admin services.AdminService
}

func NewAdminHandler(as services.AdminService) *AdminHandler {
	return &AdminHandler{admin: as}
}

// Export godoc
// @Summary  Dump the newest rows of the business tables
// @Tags     admin
// @Security BearerAuth
// @Success  200 {object} models.DataExport
// @Failure  403 {object} utils.APIError
// @Router   /api/v1/admin/export [get]
func (h *AdminHandler) Export(c *gin.Context) {
	export, err := h.admin.Export(c.Request.Context())
	if err != nil {
		respondServiceError(c, err, "Export: adminService.Export failed", "Failed to export data.")
		return
	}
	userID, _ := middleware.CurrentUserID(c)
	utils.LogInfo("data export served", map[string]interface{}{"user_id": userID})
	c.JSON(http.StatusOK, export)
}

// Cleanup godoc
// @Summary  Delete closed records older than days_to_keep
// @Tags     admin
// @Security BearerAuth
// @Param    body body services.CleanupRequest true "Retention"
// @Success  200 {object} models.CleanupResult
// @Failure  400 {object} utils.APIError
// @Router   /api/v1/admin/cleanup [delete]
func (h *AdminHandler) Cleanup(c *gin.Context) {
	var req services.CleanupRequest
	if !bindJSON(c, &req, "Cleanup") {
		return
	}
	result, err := h.admin.Cleanup(c.Request.Context(), req)
	if err != nil {
		respondServiceError(c, err, "Cleanup: adminService.Cleanup failed", "Failed to clean up data.")
		return
	}
	c.JSON(http.StatusOK, result)
}
