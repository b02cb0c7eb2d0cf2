package handlers

import (
	"net/http"

	"game_store_backend/internal/models"
	"game_store_backend/internal/services"

	"github.com/gin-gonic/gin"
)

// RepairHandler serves the repair catalog and service requests.
type RepairHandler struct {
	repairs services.RepairService
}

func NewRepairHandler(rs services.RepairService) *RepairHandler {
	return &RepairHandler{repairs: rs}
}

// ListPublicServices lists active catalog entries.
func (h *RepairHandler) ListPublicServices(c *gin.Context) {
	h.listServices(c, true)
}

func (h *RepairHandler) ListServices(c *gin.Context) {
	h.listServices(c, c.Query("active_only") == "true")
}

func (h *RepairHandler) listServices(c *gin.Context, activeOnly bool) {
	rows, err := h.repairs.ListServices(c.Request.Context(), optString(c, "category"), activeOnly)
	if err != nil {
		respondServiceError(c, err, "ListServices: repairService.ListServices failed", "Failed to fetch services.")
		return
	}
	c.JSON(http.StatusOK, listResponse{Data: rows, Total: len(rows)})
}

func (h *RepairHandler) GetService(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	item, err := h.repairs.GetService(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err, "GetService: repairService.GetService failed", "Failed to fetch service.")
		return
	}
	c.JSON(http.StatusOK, item)
}

func (h *RepairHandler) CreateService(c *gin.Context) {
	var req services.ServiceCatalogRequest
	if !bindJSON(c, &req, "CreateService") {
		return
	}
	item, err := h.repairs.CreateService(c.Request.Context(), req)
	if err != nil {
		respondServiceError(c, err, "CreateService: repairService.CreateService failed", "Failed to create service.")
		return
	}
	c.JSON(http.StatusCreated, item)
}

func (h *RepairHandler) UpdateService(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req services.ServiceCatalogRequest
	if !bindJSON(c, &req, "UpdateService") {
		return
	}
	item, err := h.repairs.UpdateService(c.Request.Context(), id, req)
	if err != nil {
		respondServiceError(c, err, "UpdateService: repairService.UpdateService failed", "Failed to update service.")
		return
	}
	c.JSON(http.StatusOK, item)
}

func (h *RepairHandler) DeleteService(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	if err := h.repairs.DeleteService(c.Request.Context(), id); err != nil {
		respondServiceError(c, err, "DeleteService: repairService.DeleteService failed", "Failed to delete service.")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Service deleted successfully"})
}

// CreateRequest godoc
// @Summary  Submit a repair request
// @Tags     repairs
// @Param    body body services.CreateServiceRequestRequest true "Request"
// @Success  201 {object} models.ServiceRequest
// @Router   /api/v1/public/service-requests [post]
func (h *RepairHandler) CreateRequest(c *gin.Context) {
	var req services.CreateServiceRequestRequest
	if !bindJSON(c, &req, "CreateRequest") {
		return
	}
	r, err := h.repairs.CreateRequest(c.Request.Context(), req, actorID(c))
	if err != nil {
		respondServiceError(c, err, "CreateRequest: repairService.CreateRequest failed", "Failed to submit the request.")
		return
	}
	c.JSON(http.StatusCreated, r)
}

func (h *RepairHandler) ListRequests(c *gin.Context) {
	assigned, ok := optInt64(c, "assigned_to")
	if !ok {
		return
	}
	from, ok := optTime(c, "from")
	if !ok {
		return
	}
	to, ok := optTime(c, "to")
	if !ok {
		return
	}
	page, pageSize := pageParams(c)
	rows, total, err := h.repairs.ListRequests(c.Request.Context(), models.ServiceRequestFilters{
		Status:     optString(c, "status"),
		AssignedTo: assigned,
		From:       from,
		To:         to,
		Page:       page,
		PageSize:   pageSize,
	})
	if err != nil {
		respondServiceError(c, err, "ListRequests: repairService.ListRequests failed", "Failed to fetch requests.")
		return
	}
	c.JSON(http.StatusOK, listResponse{Data: rows, Total: total, Page: page, PageSize: pageSize})
}

func (h *RepairHandler) TodayRequests(c *gin.Context) {
	rows, total, err := h.repairs.TodayRequests(c.Request.Context())
	if err != nil {
		respondServiceError(c, err, "TodayRequests: repairService.TodayRequests failed", "Failed to fetch requests.")
		return
	}
	c.JSON(http.StatusOK, listResponse{Data: rows, Total: total})
}

func (h *RepairHandler) GetRequest(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	r, err := h.repairs.GetRequest(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err, "GetRequest: repairService.GetRequest failed", "Failed to fetch request.")
		return
	}
	c.JSON(http.StatusOK, r)
}

func (h *RepairHandler) UpdateRequest(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req services.UpdateServiceRequestRequest
	if !bindJSON(c, &req, "UpdateRequest") {
		return
	}
	r, err := h.repairs.UpdateRequest(c.Request.Context(), id, req)
	if err != nil {
		respondServiceError(c, err, "UpdateRequest: repairService.UpdateRequest failed", "Failed to update request.")
		return
	}
	c.JSON(http.StatusOK, r)
}

func (h *RepairHandler) DeleteRequest(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	if err := h.repairs.DeleteRequest(c.Request.Context(), id); err != nil {
		respondServiceError(c, err, "DeleteRequest: repairService.DeleteRequest failed", "Failed to delete request.")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Request deleted successfully"})
}
