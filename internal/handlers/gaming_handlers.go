package handlers

import (
	"net/http"

	"game_store_backend/internal/models"
	"game_store_backend/internal/services"

	"github.com/gin-gonic/gin"
)

// GamingHandler serves consoles, tariffs and gaming sessions.
type GamingHandler struct {
	consoles services.ConsoleService
	pricing  services.PricingService
	sessions services.SessionService
}

func NewGamingHandler(cs services.ConsoleService, ps services.PricingService, ss services.SessionService) *GamingHandler {
	return &GamingHandler{consoles: cs, pricing: ps, sessions: ss}
}

// --- Consoles ---

func (h *GamingHandler) ListConsoles(c *gin.Context) {
	consoles, err := h.consoles.ListConsoles(c.Request.Context(), optString(c, "console_type"))
	if err != nil {
		respondServiceError(c, err, "ListConsoles: consoleService.ListConsoles failed", "Failed to fetch consoles.")
		return
	}
	c.JSON(http.StatusOK, listResponse{Data: consoles, Total: len(consoles)})
}

// ConsoleCounter godoc
// @Summary  Available consoles per type
// @Tags     consoles
// @Success  200 {object} models.ConsoleCounter
// @Router   /api/v1/public/consoles/counter [get]
func (h *GamingHandler) ConsoleCounter(c *gin.Context) {
	counter, err := h.consoles.Counter(c.Request.Context())
	if err != nil {
		respondServiceError(c, err, "ConsoleCounter: consoleService.Counter failed", "Failed to count consoles.")
		return
	}
	c.JSON(http.StatusOK, counter)
}

func (h *GamingHandler) GetConsole(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	console, err := h.consoles.GetConsole(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err, "GetConsole: consoleService.GetConsole failed", "Failed to fetch console.")
		return
	}
	c.JSON(http.StatusOK, console)
}

func (h *GamingHandler) CreateConsole(c *gin.Context) {
	var req services.CreateConsoleRequest
	if !bindJSON(c, &req, "CreateConsole") {
		return
	}
	console, err := h.consoles.CreateConsole(c.Request.Context(), req)
	if err != nil {
		respondServiceError(c, err, "CreateConsole: consoleService.CreateConsole failed", "Failed to create console.")
		return
	}
	c.JSON(http.StatusCreated, console)
}

func (h *GamingHandler) UpdateConsole(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req services.UpdateConsoleRequest
	if !bindJSON(c, &req, "UpdateConsole") {
		return
	}
	console, err := h.consoles.UpdateConsole(c.Request.Context(), id, req)
	if err != nil {
		respondServiceError(c, err, "UpdateConsole: consoleService.UpdateConsole failed", "Failed to update console.")
		return
	}
	c.JSON(http.StatusOK, console)
}

func (h *GamingHandler) SetMaintenance(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req struct {
		Maintenance bool `json:"maintenance"`
	}
	if !bindJSON(c, &req, "SetMaintenance") {
		return
	}
	console, err := h.consoles.SetMaintenance(c.Request.Context(), id, req.Maintenance)
	if err != nil {
		respondServiceError(c, err, "SetMaintenance: consoleService.SetMaintenance failed", "Failed to change console status.")
		return
	}
	c.JSON(http.StatusOK, console)
}

func (h *GamingHandler) DeleteConsole(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	if err := h.consoles.DeleteConsole(c.Request.Context(), id); err != nil {
		respondServiceError(c, err, "DeleteConsole: consoleService.DeleteConsole failed", "Failed to delete console.")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Console deleted successfully"})
}

// --- Pricing ---

// ListActivePricing is the public tariff list.
func (h *GamingHandler) ListActivePricing(c *gin.Context) {
	rows, err := h.pricing.ListActive(c.Request.Context(), optString(c, "console_type"))
	if err != nil {
		respondServiceError(c, err, "ListActivePricing: pricingService.ListActive failed", "Failed to fetch pricing.")
		return
	}
	c.JSON(http.StatusOK, listResponse{Data: rows, Total: len(rows)})
}

func (h *GamingHandler) ListAllPricing(c *gin.Context) {
	rows, err := h.pricing.ListAll(c.Request.Context(), optString(c, "console_type"))
	if err != nil {
		respondServiceError(c, err, "ListAllPricing: pricingService.ListAll failed", "Failed to fetch pricing.")
		return
	}
	c.JSON(http.StatusOK, listResponse{Data: rows, Total: len(rows)})
}

func (h *GamingHandler) GetPricing(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	p, err := h.pricing.GetPricing(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err, "GetPricing: pricingService.GetPricing failed", "Failed to fetch pricing.")
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *GamingHandler) CreatePricing(c *gin.Context) {
	var req services.CreatePricingRequest
	if !bindJSON(c, &req, "CreatePricing") {
		return
	}
	p, err := h.pricing.CreatePricing(c.Request.Context(), req)
	if err != nil {
		respondServiceError(c, err, "CreatePricing: pricingService.CreatePricing failed", "Failed to create pricing.")
		return
	}
	c.JSON(http.StatusCreated, p)
}

func (h *GamingHandler) UpdatePricing(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req services.UpdatePricingRequest
	if !bindJSON(c, &req, "UpdatePricing") {
		return
	}
	p, err := h.pricing.UpdatePricing(c.Request.Context(), id, req)
	if err != nil {
		respondServiceError(c, err, "UpdatePricing: pricingService.UpdatePricing failed", "Failed to update pricing.")
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *GamingHandler) DeletePricing(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	if err := h.pricing.DeletePricing(c.Request.Context(), id); err != nil {
		respondServiceError(c, err, "DeletePricing: pricingService.DeletePricing failed", "Failed to delete pricing.")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Pricing deleted successfully"})
}

// --- Sessions ---

// StartSession godoc
// @Summary  Start a gaming session on an available console
// @Tags     sessions
// @Security BearerAuth
// @Param    body body services.StartSessionRequest true "Session"
// @Success  201 {object} models.GamingSession
// @Failure  409 {object} utils.APIError "console not available"
// @Router   /api/v1/sessions [post]
func (h *GamingHandler) StartSession(c *gin.Context) {
	var req services.StartSessionRequest
	if !bindJSON(c, &req, "StartSession") {
		return
	}
	s, err := h.sessions.StartSession(c.Request.Context(), req, actorID(c))
	if err != nil {
		respondServiceError(c, err, "StartSession: sessionService.StartSession failed", "Failed to start session.")
		return
	}
	c.JSON(http.StatusCreated, s)
}

func (h *GamingHandler) UpdateProgress(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req services.UpdateProgressRequest
	if !bindJSON(c, &req, "UpdateProgress") {
		return
	}
	s, err := h.sessions.UpdateProgress(c.Request.Context(), id, req)
	if err != nil {
		respondServiceError(c, err, "UpdateProgress: sessionService.UpdateProgress failed", "Failed to update session.")
		return
	}
	c.JSON(http.StatusOK, s)
}

func (h *GamingHandler) AddConsumption(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req services.AddConsumptionRequest
	if !bindJSON(c, &req, "AddConsumption") {
		return
	}
	item, err := h.sessions.AddConsumption(c.Request.Context(), id, req)
	if err != nil {
		respondServiceError(c, err, "AddConsumption: sessionService.AddConsumption failed", "Failed to add consumption.")
		return
	}
	c.JSON(http.StatusCreated, item)
}

func (h *GamingHandler) ListConsumptions(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	items, err := h.sessions.ListConsumptions(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err, "ListConsumptions: sessionService.ListConsumptions failed", "Failed to fetch consumptions.")
		return
	}
	c.JSON(http.StatusOK, listResponse{Data: items, Total: len(items)})
}

func (h *GamingHandler) RemoveConsumption(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	itemID, ok := idParam(c, "itemId")
	if !ok {
		return
	}
	if err := h.sessions.RemoveConsumption(c.Request.Context(), id, itemID); err != nil {
		respondServiceError(c, err, "RemoveConsumption: sessionService.RemoveConsumption failed", "Failed to remove consumption.")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Consumption removed"})
}

// EndSession godoc
// @Summary  End a session and bill it
// @Tags     sessions
// @Security BearerAuth
// @Param    id   path int                        true "Session ID"
// @Param    body body services.EndSessionRequest true "Payment"
// @Success  200 {object} models.SessionReceipt
// @Router   /api/v1/sessions/{id}/end [post]
func (h *GamingHandler) EndSession(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req services.EndSessionRequest
	if c.Request.ContentLength > 0 && !bindJSON(c, &req, "EndSession") {
		return
	}
	receipt, err := h.sessions.EndSession(c.Request.Context(), id, req, actorID(c))
	if err != nil {
		respondServiceError(c, err, "EndSession: sessionService.EndSession failed", "Failed to end session.")
		return
	}
	c.JSON(http.StatusOK, receipt)
}

func (h *GamingHandler) ActiveSessions(c *gin.Context) {
	rows, err := h.sessions.ActiveSessions(c.Request.Context())
	if err != nil {
		respondServiceError(c, err, "ActiveSessions: sessionService.ActiveSessions failed", "Failed to fetch sessions.")
		return
	}
	c.JSON(http.StatusOK, listResponse{Data: rows, Total: len(rows)})
}

func (h *GamingHandler) TodaySessions(c *gin.Context) {
	rows, total, err := h.sessions.TodaySessions(c.Request.Context())
	if err != nil {
		respondServiceError(c, err, "TodaySessions: sessionService.TodaySessions failed", "Failed to fetch sessions.")
		return
	}
	c.JSON(http.StatusOK, listResponse{Data: rows, Total: total})
}

func (h *GamingHandler) GetSession(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	s, err := h.sessions.GetSession(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err, "GetSession: sessionService.GetSession failed", "Failed to fetch session.")
		return
	}
	c.JSON(http.StatusOK, s)
}

func (h *GamingHandler) ListSessions(c *gin.Context) {
	consoleID, ok := optInt64(c, "console_id")
	if !ok {
		return
	}
	clientID, ok := optInt64(c, "client_id")
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
	rows, total, err := h.sessions.ListSessions(c.Request.Context(), models.SessionFilters{
		Status:    optString(c, "status"),
		ConsoleID: consoleID,
		ClientID:  clientID,
		From:      from,
		To:        to,
		Page:      page,
		PageSize:  pageSize,
	})
	if err != nil {
		respondServiceError(c, err, "ListSessions: sessionService.ListSessions failed", "Failed to fetch sessions.")
		return
	}
	c.JSON(http.StatusOK, listResponse{Data: rows, Total: total, Page: page, PageSize: pageSize})
}
