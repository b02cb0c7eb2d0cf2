package handlers

import (
	"errors"
	"net/http"

	"game_store_backend/internal/middleware"
	"game_store_backend/internal/models"
	"game_store_backend/internal/services"
	"game_store_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// StaffHandler holds the staff account and attendance services.
type StaffHandler struct {
	staffService services.StaffService
	shiftService services.ShiftService
}

// NewStaffHandler creates a new StaffHandler.
func NewStaffHandler(ss services.StaffService, sh services.ShiftService) *StaffHandler {
	return &StaffHandler{staffService: ss, shiftService: sh}
}

// --- Staff accounts (owner) ---

// CreateStaff creates the account, then waits for the invitation email.
// When the notifier times out the account exists and the answer is 504.
// @Summary  Invite a staff member
// @Tags     staff
// @Security BearerAuth
// @Param    body body services.CreateStaffRequest true "Staff member"
// @Success  201 {object} services.CreateStaffResult
// @Failure  504 {object} map[string]interface{}
// @Router   /api/v1/staff [post]
func (h *StaffHandler) CreateStaff(c *gin.Context) {
	var req services.CreateStaffRequest
	if !bindJSON(c, &req, "CreateStaff") {
		return
	}
	result, err := h.staffService.CreateStaff(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, services.ErrNotifyTimeout) && result != nil {
			utils.LogWarn(err, "CreateStaff: invitation timed out", map[string]interface{}{"user_id": result.User.ID})
			c.JSON(http.StatusGatewayTimeout, gin.H{
				"error": utils.NewAPIError(http.StatusGatewayTimeout, utils.ErrCodeGatewayTimeout,
					"The account was created but the invitation email could not be confirmed.", err.Error()),
				"user":            result.User,
				"invitation_sent": false,
			})
			return
		}
		respondServiceError(c, err, "CreateStaff: staffService.CreateStaff failed", "Failed to create staff member.")
		return
	}
	c.JSON(http.StatusCreated, result)
}

func (h *StaffHandler) ListStaff(c *gin.Context) {
	users, err := h.staffService.ListStaff(c.Request.Context())
	if err != nil {
		respondServiceError(c, err, "ListStaff: staffService.ListStaff failed", "Failed to fetch staff members.")
		return
	}
	c.JSON(http.StatusOK, listResponse{Data: users, Total: len(users)})
}

func (h *StaffHandler) GetStaff(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	user, err := h.staffService.GetStaff(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err, "GetStaff: staffService.GetStaff failed", "Failed to fetch staff member.")
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *StaffHandler) UpdateStaff(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req services.UpdateStaffRequest
	if !bindJSON(c, &req, "UpdateStaff") {
		return
	}
	user, err := h.staffService.UpdateStaff(c.Request.Context(), id, req)
	if err != nil {
		respondServiceError(c, err, "UpdateStaff: staffService.UpdateStaff failed", "Failed to update staff member.")
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *StaffHandler) DeleteStaff(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	self, ok := currentUser(c)
	if !ok {
		return
	}
	if err := h.staffService.DeleteStaff(c.Request.Context(), id, self); err != nil {
		respondServiceError(c, err, "DeleteStaff: staffService.DeleteStaff failed", "Failed to delete staff member.")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Staff member deleted successfully"})
}

// --- Shifts ---

func (h *StaffHandler) ClockIn(c *gin.Context) {
	self, ok := currentUser(c)
	if !ok {
		return
	}
	var req services.ClockInRequest
	if c.Request.ContentLength > 0 && !bindJSON(c, &req, "ClockIn") {
		return
	}
	shift, err := h.shiftService.ClockIn(c.Request.Context(), self, req.Notes)
	if err != nil {
		respondServiceError(c, err, "ClockIn: shiftService.ClockIn failed", "Failed to clock in.")
		return
	}
	c.JSON(http.StatusCreated, shift)
}

func (h *StaffHandler) ClockOut(c *gin.Context) {
	self, ok := currentUser(c)
	if !ok {
		return
	}
	shift, err := h.shiftService.ClockOut(c.Request.Context(), self)
	if err != nil {
		respondServiceError(c, err, "ClockOut: shiftService.ClockOut failed", "Failed to clock out.")
		return
	}
	c.JSON(http.StatusOK, shift)
}

func (h *StaffHandler) MyShiftStatus(c *gin.Context) {
	self, ok := currentUser(c)
	if !ok {
		return
	}
	status, err := h.shiftService.MyStatus(c.Request.Context(), self)
	if err != nil {
		respondServiceError(c, err, "MyShiftStatus: shiftService.MyStatus failed", "Failed to fetch shift status.")
		return
	}
	c.JSON(http.StatusOK, status)
}

func (h *StaffHandler) ActiveShifts(c *gin.Context) {
	shifts, err := h.shiftService.ActiveShifts(c.Request.Context())
	if err != nil {
		respondServiceError(c, err, "ActiveShifts: shiftService.ActiveShifts failed", "Failed to fetch active shifts.")
		return
	}
	c.JSON(http.StatusOK, listResponse{Data: shifts, Total: len(shifts)})
}

// ShiftHistory lets owners filter by staff_id; workers only see their own shifts.
func (h *StaffHandler) ShiftHistory(c *gin.Context) {
	staffID, ok := optInt64(c, "staff_id")
	if !ok {
		return
	}
	if c.GetString(middleware.ContextUserRole) != models.RoleOwner {
		staffID = actorID(c)
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
	shifts, total, err := h.shiftService.ShiftHistory(c.Request.Context(), models.ShiftFilters{
		StaffID: staffID, From: from, To: to, Page: page, PageSize: pageSize,
	})
	if err != nil {
		respondServiceError(c, err, "ShiftHistory: shiftService.ShiftHistory failed", "Failed to fetch shifts.")
		return
	}
	c.JSON(http.StatusOK, listResponse{Data: shifts, Total: total, Page: page, PageSize: pageSize})
}
