package handlers

import (
	"net/http"

	"game_store_backend/internal/models"
	"game_store_backend/internal/services"

	"github.com/gin-gonic/gin"
)

// HeaderCartID carries the anonymous cart id between the SPA and the API.
const HeaderCartID = "X-Cart-ID"

// OrderHandler serves the shopping cart and online orders.
type OrderHandler struct {
	carts  services.CartService
	orders services.OrderService
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(cs services.CartService, osvc services.OrderService) *OrderHandler {
	return &OrderHandler{carts: cs, orders: osvc}
}

func (h *OrderHandler) respondCart(c *gin.Context, cart *models.Cart, err error, op string) {
	if err != nil {
		respondServiceError(c, err, op, "Failed to update the cart.")
		return
	}
	c.Header(HeaderCartID, cart.ID)
	c.JSON(http.StatusOK, cart.View())
}

// --- Cart ---

func (h *OrderHandler) GetCart(c *gin.Context) {
	cart, err := h.carts.Get(c.Request.Context(), c.GetHeader(HeaderCartID))
	h.respondCart(c, cart, err, "GetCart: cartService.Get failed")
}

// AddToCart godoc
// @Summary  Add one unit of a product to the cart
// @Tags     cart
// @Param    X-Cart-ID header string false "Cart id, created when missing"
// @Param    body      body   object true  "{\"product_id\": 1}"
// @Success  200 {object} models.CartView
// @Router   /api/v1/cart/items [post]
func (h *OrderHandler) AddToCart(c *gin.Context) {
	var req struct {
		ProductID int64 `json:"product_id" binding:"required"`
	}
	if !bindJSON(c, &req, "AddToCart") {
		return
	}
	cart, err := h.carts.Add(c.Request.Context(), c.GetHeader(HeaderCartID), req.ProductID)
	h.respondCart(c, cart, err, "AddToCart: cartService.Add failed")
}

// UpdateCartItem sets a line quantity; zero or less removes the line.
func (h *OrderHandler) UpdateCartItem(c *gin.Context) {
	productID, ok := idParam(c, "productId")
	if !ok {
		return
	}
	var req struct {
		Quantity int `json:"quantity"`
	}
	if !bindJSON(c, &req, "UpdateCartItem") {
		return
	}
	cart, err := h.carts.UpdateQuantity(c.Request.Context(), c.GetHeader(HeaderCartID), productID, req.Quantity)
	h.respondCart(c, cart, err, "UpdateCartItem: cartService.UpdateQuantity failed")
}

func (h *OrderHandler) RemoveCartItem(c *gin.Context) {
	productID, ok := idParam(c, "productId")
	if !ok {
		return
	}
	cart, err := h.carts.Remove(c.Request.Context(), c.GetHeader(HeaderCartID), productID)
	h.respondCart(c, cart, err, "RemoveCartItem: cartService.Remove failed")
}

func (h *OrderHandler) ClearCart(c *gin.Context) {
	cart, err := h.carts.Clear(c.Request.Context(), c.GetHeader(HeaderCartID))
	h.respondCart(c, cart, err, "ClearCart: cartService.Clear failed")
}

// --- Orders ---

// Checkout godoc
// @Summary  Place an online order from the cart or explicit items
// @Tags     orders
// @Param    X-Cart-ID header string                    false "Cart id"
// @Param    body      body   services.CheckoutRequest  true  "Order"
// @Success  201 {object} models.Order
// @Failure  400 {object} utils.APIError
// @Router   /api/v1/checkout [post]
func (h *OrderHandler) Checkout(c *gin.Context) {
	var req services.CheckoutRequest
	if !bindJSON(c, &req, "Checkout") {
		return
	}
	req.CartID = c.GetHeader(HeaderCartID)
	order, err := h.orders.Checkout(c.Request.Context(), req)
	if err != nil {
		respondServiceError(c, err, "Checkout: orderService.Checkout failed", "Failed to place the order.")
		return
	}
	c.JSON(http.StatusCreated, order)
}

// TrackOrder needs both the order number and the phone used at checkout.
func (h *OrderHandler) TrackOrder(c *gin.Context) {
	order, err := h.orders.TrackOrder(c.Request.Context(), c.Param("number"), c.Query("phone"))
	if err != nil {
		respondServiceError(c, err, "TrackOrder: orderService.TrackOrder failed", "Failed to fetch the order.")
		return
	}
	c.JSON(http.StatusOK, order)
}

func (h *OrderHandler) ListOrders(c *gin.Context) {
	from, ok := optTime(c, "from")
	if !ok {
		return
	}
	to, ok := optTime(c, "to")
	if !ok {
		return
	}
	page, pageSize := pageParams(c)
	rows, total, err := h.orders.ListOrders(c.Request.Context(), models.OrderFilters{
		Status:        optString(c, "status"),
		PaymentStatus: optString(c, "payment_status"),
		Search:        optString(c, "search"),
		From:          from,
		To:            to,
		Page:          page,
		PageSize:      pageSize,
	})
	if err != nil {
		respondServiceError(c, err, "ListOrders: orderService.ListOrders failed", "Failed to fetch orders.")
		return
	}
	c.JSON(http.StatusOK, listResponse{Data: rows, Total: total, Page: page, PageSize: pageSize})
}

func (h *OrderHandler) GetOrder(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	order, err := h.orders.GetOrder(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err, "GetOrder: orderService.GetOrder failed", "Failed to fetch the order.")
		return
	}
	c.JSON(http.StatusOK, order)
}

func (h *OrderHandler) UpdateOrderStatus(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req services.UpdateOrderStatusRequest
	if !bindJSON(c, &req, "UpdateOrderStatus") {
		return
	}
	order, err := h.orders.UpdateStatus(c.Request.Context(), id, req, actorID(c))
	if err != nil {
		respondServiceError(c, err, "UpdateOrderStatus: orderService.UpdateStatus failed", "Failed to update the order.")
		return
	}
	c.JSON(http.StatusOK, order)
}

func (h *OrderHandler) UpdateOrderPayment(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req services.UpdatePaymentRequest
	if !bindJSON(c, &req, "UpdateOrderPayment") {
		return
	}
	order, err := h.orders.UpdatePayment(c.Request.Context(), id, req, actorID(c))
	if err != nil {
		respondServiceError(c, err, "UpdateOrderPayment: orderService.UpdatePayment failed", "Failed to update the payment.")
		return
	}
	c.JSON(http.StatusOK, order)
}

func (h *OrderHandler) DeleteOrder(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	if err := h.orders.DeleteOrder(c.Request.Context(), id, actorID(c)); err != nil {
		respondServiceError(c, err, "DeleteOrder: orderService.DeleteOrder failed", "Failed to delete the order.")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Order deleted successfully"})
}
