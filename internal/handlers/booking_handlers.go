package handlers

import (
	"context"
	"net/http"

	"game_store_backend/internal/models"
	"game_store_backend/internal/services"

	"github.com/gin-gonic/gin"
)

// BookingHandler serves reservation requests.
type BookingHandler struct {
	reservations services.ReservationService
}

// NewBookingHandler creates a new BookingHandler.
func NewBookingHandler(rs services.ReservationService) *BookingHandler {
	return &BookingHandler{reservations: rs}
}

// CreateReservation godoc
// @Summary  Request a console reservation
// @Tags     reservations
// @Param    body body services.CreateReservationRequest true "Reservation"
// @Success  201 {object} models.Reservation
// @Failure  400 {object} utils.APIError
// @Router   /api/v1/public/reservations [post]
func (h *BookingHandler) CreateReservation(c *gin.Context) {
	var req services.CreateReservationRequest
	if !bindJSON(c, &req, "CreateReservation") {
		return
	}
	r, err := h.reservations.CreateReservation(c.Request.Context(), req)
	if err != nil {
		respondServiceError(c, err, "CreateReservation: reservationService.CreateReservation failed", "Failed to create reservation.")
		return
	}
	c.JSON(http.StatusCreated, r)
}

func (h *BookingHandler) ListReservations(c *gin.Context) {
	consoleID, ok := optInt64(c, "console_id")
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
	rows, total, err := h.reservations.ListReservations(c.Request.Context(), models.ReservationFilters{
		Status:    optString(c, "status"),
		ConsoleID: consoleID,
		From:      from,
		To:        to,
		Page:      page,
		PageSize:  pageSize,
	})
	if err != nil {
		respondServiceError(c, err, "ListReservations: reservationService.ListReservations failed", "Failed to fetch reservations.")
		return
	}
	c.JSON(http.StatusOK, listResponse{Data: rows, Total: total, Page: page, PageSize: pageSize})
}

func (h *BookingHandler) GetReservation(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	r, err := h.reservations.GetReservation(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err, "GetReservation: reservationService.GetReservation failed", "Failed to fetch reservation.")
		return
	}
	c.JSON(http.StatusOK, r)
}

// ConfirmReservation assigns a console; overlapping confirmed bookings give 409.
func (h *BookingHandler) ConfirmReservation(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req services.ConfirmReservationRequest
	if !bindJSON(c, &req, "ConfirmReservation") {
		return
	}
	r, err := h.reservations.Confirm(c.Request.Context(), id, req.ConsoleID, actorID(c))
	if err != nil {
		respondServiceError(c, err, "ConfirmReservation: reservationService.Confirm failed", "Failed to confirm reservation.")
		return
	}
	c.JSON(http.StatusOK, r)
}

func (h *BookingHandler) CancelReservation(c *gin.Context) {
	h.transition(c, "CancelReservation", h.reservations.Cancel)
}

func (h *BookingHandler) CompleteReservation(c *gin.Context) {
	h.transition(c, "CompleteReservation", h.reservations.Complete)
}

func (h *BookingHandler) NoShowReservation(c *gin.Context) {
	h.transition(c, "NoShowReservation", h.reservations.MarkNoShow)
}

type reservationTransition func(ctx context.Context, id int64, staffID *int64) (*models.Reservation, error)

func (h *BookingHandler) transition(c *gin.Context, op string, fn reservationTransition) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	r, err := fn(c.Request.Context(), id, actorID(c))
	if err != nil {
		respondServiceError(c, err, op+": reservation transition failed", "Failed to update reservation.")
		return
	}
	c.JSON(http.StatusOK, r)
}

func (h *BookingHandler) DeleteReservation(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	if err := h.reservations.DeleteReservation(c.Request.Context(), id); err != nil {
		respondServiceError(c, err, "DeleteReservation: reservationService.DeleteReservation failed", "Failed to delete reservation.")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Reservation deleted successfully"})
}
