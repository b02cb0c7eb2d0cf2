package handlers

import (
	"net/http"

	"game_store_backend/internal/services"

	"github.com/gin-gonic/gin"
)

// AdjustStock records a manual stock movement for a product.
// @Summary  Adjust product stock
// @Tags     stock
// @Security BearerAuth
// @Param    id   path int                          true "Product ID"
// @Param    body body services.AdjustStockRequest  true "Adjustment"
// @Success  201 {object} models.StockMovement
// @Router   /api/v1/products/{id}/stock [post]
func (h *InventoryHandler) AdjustStock(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req services.AdjustStockRequest
	if !bindJSON(c, &req, "AdjustStock") {
		return
	}
	movement, err := h.products.AdjustStock(c.Request.Context(), id, req, actorID(c))
	if err != nil {
		respondServiceError(c, err, "AdjustStock: productService.AdjustStock failed", "Failed to adjust stock.")
		return
	}
	c.JSON(http.StatusCreated, movement)
}

// ListMovements handles fetching stock movements, optionally for one product.
func (h *InventoryHandler) ListMovements(c *gin.Context) {
	productID, ok := optInt64(c, "product_id")
	if !ok {
		return
	}
	page, pageSize := pageParams(c)
	rows, total, err := h.products.Movements(c.Request.Context(), productID, optString(c, "movement_type"), page, pageSize)
	if err != nil {
		respondServiceError(c, err, "ListMovements: productService.Movements failed", "Failed to fetch stock movements.")
		return
	}
	c.JSON(http.StatusOK, listResponse{Data: rows, Total: total, Page: page, PageSize: pageSize})
}
