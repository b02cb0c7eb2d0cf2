package handlers

import (
	"net/http"
	"strconv"

	"game_store_backend/internal/services"

	"github.com/gin-gonic/gin"
)

// ClientHandler serves clients and their loyalty ledger.
type ClientHandler struct {
	clientService services.ClientService
	pointsService services.PointsService
}

// NewClientHandler creates a new ClientHandler.
func NewClientHandler(cs services.ClientService, ps services.PointsService) *ClientHandler {
	return &ClientHandler{clientService: cs, pointsService: ps}
}

// CreateClient handles the creation of a new client.
// @Summary  Create client
// @Tags     clients
// @Security BearerAuth
// @Param    body body services.CreateClientRequest true "Client"
// @Success  201 {object} models.Client
// @Failure  409 {object} utils.APIError
// @Router   /api/v1/clients [post]
func (h *ClientHandler) CreateClient(c *gin.Context) {
	var req services.CreateClientRequest
	if !bindJSON(c, &req, "CreateClient") {
		return
	}
	client, err := h.clientService.CreateClient(c.Request.Context(), req, actorID(c))
	if err != nil {
		respondServiceError(c, err, "CreateClient: clientService.CreateClient failed", "Failed to create client.")
		return
	}
	c.JSON(http.StatusCreated, client)
}

// GetClients handles fetching all clients with pagination and search.
func (h *ClientHandler) GetClients(c *gin.Context) {
	page, pageSize := pageParams(c)
	clients, total, err := h.clientService.GetClients(c.Request.Context(), page, pageSize, optString(c, "search"))
	if err != nil {
		respondServiceError(c, err, "GetClients: clientService.GetClients failed", "Failed to fetch clients.")
		return
	}
	c.JSON(http.StatusOK, listResponse{Data: clients, Total: total, Page: page, PageSize: pageSize})
}

func (h *ClientHandler) GetClientByID(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	client, err := h.clientService.GetClientByID(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err, "GetClientByID: clientService.GetClientByID failed", "Failed to fetch client.")
		return
	}
	c.JSON(http.StatusOK, client)
}

// GetClientByPhone looks a client up by any accepted phone spelling.
func (h *ClientHandler) GetClientByPhone(c *gin.Context) {
	client, err := h.clientService.GetClientByPhone(c.Request.Context(), c.Param("phone"))
	if err != nil {
		respondServiceError(c, err, "GetClientByPhone: clientService.GetClientByPhone failed", "Failed to fetch client.")
		return
	}
	c.JSON(http.StatusOK, client)
}

func (h *ClientHandler) UpdateClient(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req services.UpdateClientRequest
	if !bindJSON(c, &req, "UpdateClient") {
		return
	}
	client, err := h.clientService.UpdateClient(c.Request.Context(), id, req)
	if err != nil {
		respondServiceError(c, err, "UpdateClient: clientService.UpdateClient failed", "Failed to update client.")
		return
	}
	c.JSON(http.StatusOK, client)
}

func (h *ClientHandler) DeleteClient(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	if err := h.clientService.DeleteClient(c.Request.Context(), id); err != nil {
		respondServiceError(c, err, "DeleteClient: clientService.DeleteClient failed", "Failed to delete client.")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Client deleted successfully"})
}

// --- Points ledger ---

// CreatePointsTransaction posts one signed ledger row.
// @Summary  Post a points transaction
// @Tags     points
// @Security BearerAuth
// @Param    body body services.CreatePointsTransactionRequest true "Transaction"
// @Success  201 {object} models.PointsTransaction
// @Failure  409 {object} utils.APIError "insufficient points"
// @Router   /api/v1/points [post]
func (h *ClientHandler) CreatePointsTransaction(c *gin.Context) {
	var req services.CreatePointsTransactionRequest
	if !bindJSON(c, &req, "CreatePointsTransaction") {
		return
	}
	tx, err := h.pointsService.CreateTransaction(c.Request.Context(), req, actorID(c))
	if err != nil {
		respondServiceError(c, err, "CreatePointsTransaction: pointsService.CreateTransaction failed", "Failed to record points.")
		return
	}
	c.JSON(http.StatusCreated, tx)
}

func (h *ClientHandler) RedeemPoints(c *gin.Context) {
	var req services.RedeemPointsRequest
	if !bindJSON(c, &req, "RedeemPoints") {
		return
	}
	tx, err := h.pointsService.Redeem(c.Request.Context(), req, actorID(c))
	if err != nil {
		respondServiceError(c, err, "RedeemPoints: pointsService.Redeem failed", "Failed to redeem points.")
		return
	}
	c.JSON(http.StatusCreated, tx)
}

func (h *ClientHandler) PointsHistory(c *gin.Context) {
	clientID, ok := optInt64(c, "client_id")
	if !ok {
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))
	rows, err := h.pointsService.History(c.Request.Context(), clientID, limit)
	if err != nil {
		respondServiceError(c, err, "PointsHistory: pointsService.History failed", "Failed to fetch points history.")
		return
	}
	c.JSON(http.StatusOK, listResponse{Data: rows, Total: len(rows)})
}

func (h *ClientHandler) PointsBalance(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	balance, err := h.pointsService.Balance(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err, "PointsBalance: pointsService.Balance failed", "Failed to compute balance.")
		return
	}
	c.JSON(http.StatusOK, gin.H{"client_id": id, "balance": balance})
}

// ReconcilePoints rewrites the stored balance from the ledger (owner).
func (h *ClientHandler) ReconcilePoints(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	res, err := h.pointsService.Reconcile(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err, "ReconcilePoints: pointsService.Reconcile failed", "Failed to reconcile balance.")
		return
	}
	c.JSON(http.StatusOK, res)
}
