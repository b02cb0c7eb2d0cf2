package handlers

import (
	"net/http"
	"strconv"

	"game_store_backend/internal/models"
	"game_store_backend/internal/services"

	"github.com/gin-gonic/gin"
)

// InventoryHandler serves products, stock and walk-in sales.
type InventoryHandler struct {
	products services.ProductService
	sales    services.SaleService
}

func NewInventoryHandler(ps services.ProductService, ss services.SaleService) *InventoryHandler {
	return &InventoryHandler{products: ps, sales: ss}
}

func productFilters(c *gin.Context) models.ProductFilters {
	page, pageSize := pageParams(c)
	f := models.ProductFilters{
		Category:    optString(c, "category"),
		ProductType: optString(c, "product_type"),
		Search:      optString(c, "search"),
		Page:        page,
		PageSize:    pageSize,
	}
	if v, err := strconv.ParseBool(c.Query("quick_sale")); err == nil {
		f.QuickSale = &v
	}
	return f
}

// ListPublicProducts godoc
// @Summary  Storefront product list (active only)
// @Tags     products
// @Param    category   query string false "Category"
// @Param    quick_sale query bool   false "Quick-sale items only"
// @Success  200 {object} listResponse
// @Router   /api/v1/public/products [get]
func (h *InventoryHandler) ListPublicProducts(c *gin.Context) {
	f := productFilters(c)
	f.ActiveOnly = true
	rows, total, err := h.products.ListProducts(c.Request.Context(), f)
	if err != nil {
		respondServiceError(c, err, "ListPublicProducts: productService.ListProducts failed", "Failed to fetch products.")
		return
	}
	// digital content is delivered with the order, never listed
	for i := range rows {
		rows[i].DigitalContent = nil
	}
	c.JSON(http.StatusOK, listResponse{Data: rows, Total: total, Page: f.Page, PageSize: f.PageSize})
}

// ListProducts is the staff list; active_only=false includes retired products.
func (h *InventoryHandler) ListProducts(c *gin.Context) {
	f := productFilters(c)
	f.ActiveOnly = c.DefaultQuery("active_only", "false") == "true"
	rows, total, err := h.products.ListProducts(c.Request.Context(), f)
	if err != nil {
		respondServiceError(c, err, "ListProducts: productService.ListProducts failed", "Failed to fetch products.")
		return
	}
	c.JSON(http.StatusOK, listResponse{Data: rows, Total: total, Page: f.Page, PageSize: f.PageSize})
}

// GetPublicProduct hides inactive products from the storefront.
func (h *InventoryHandler) GetPublicProduct(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	p, err := h.products.GetProduct(c.Request.Context(), id)
	if err == nil && !p.IsActive {
		err = services.ErrProductNotFound
	}
	if err != nil {
		respondServiceError(c, err, "GetPublicProduct: productService.GetProduct failed", "Failed to fetch product.")
		return
	}
	p.DigitalContent = nil
	c.JSON(http.StatusOK, p)
}

func (h *InventoryHandler) GetProduct(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	p, err := h.products.GetProduct(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err, "GetProduct: productService.GetProduct failed", "Failed to fetch product.")
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *InventoryHandler) Categories(c *gin.Context) {
	cats, err := h.products.Categories(c.Request.Context())
	if err != nil {
		respondServiceError(c, err, "Categories: productService.Categories failed", "Failed to fetch categories.")
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": cats})
}

func (h *InventoryHandler) CreateProduct(c *gin.Context) {
	var req services.CreateProductRequest
	if !bindJSON(c, &req, "CreateProduct") {
		return
	}
	p, err := h.products.CreateProduct(c.Request.Context(), req, actorID(c))
	if err != nil {
		respondServiceError(c, err, "CreateProduct: productService.CreateProduct failed", "Failed to create product.")
		return
	}
	c.JSON(http.StatusCreated, p)
}

func (h *InventoryHandler) UpdateProduct(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req services.UpdateProductRequest
	if !bindJSON(c, &req, "UpdateProduct") {
		return
	}
	p, err := h.products.UpdateProduct(c.Request.Context(), id, req)
	if err != nil {
		respondServiceError(c, err, "UpdateProduct: productService.UpdateProduct failed", "Failed to update product.")
		return
	}
	c.JSON(http.StatusOK, p)
}

// DeleteProduct retires products that sales still reference.
func (h *InventoryHandler) DeleteProduct(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	soft, err := h.products.DeleteProduct(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err, "DeleteProduct: productService.DeleteProduct failed", "Failed to delete product.")
		return
	}
	if soft {
		c.JSON(http.StatusOK, gin.H{"message": "Product is referenced by sales and was deactivated", "deactivated": true})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Product deleted successfully", "deactivated": false})
}

func (h *InventoryHandler) LowStock(c *gin.Context) {
	rows, err := h.products.LowStock(c.Request.Context())
	if err != nil {
		respondServiceError(c, err, "LowStock: productService.LowStock failed", "Failed to fetch low stock products.")
		return
	}
	c.JSON(http.StatusOK, listResponse{Data: rows, Total: len(rows)})
}

// --- Sales ---

// CreateSale godoc
// @Summary  Record a walk-in sale
// @Tags     sales
// @Security BearerAuth
// @Param    body body services.CreateSaleRequest true "Sale"
// @Success  201 {object} models.Sale
// @Router   /api/v1/sales [post]
func (h *InventoryHandler) CreateSale(c *gin.Context) {
	var req services.CreateSaleRequest
	if !bindJSON(c, &req, "CreateSale") {
		return
	}
	sale, err := h.sales.CreateSale(c.Request.Context(), req, actorID(c))
	if err != nil {
		respondServiceError(c, err, "CreateSale: saleService.CreateSale failed", "Failed to record sale.")
		return
	}
	c.JSON(http.StatusCreated, sale)
}

func (h *InventoryHandler) GetSale(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	sale, err := h.sales.GetSale(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err, "GetSale: saleService.GetSale failed", "Failed to fetch sale.")
		return
	}
	c.JSON(http.StatusOK, sale)
}

func (h *InventoryHandler) TodaySales(c *gin.Context) {
	rows, total, err := h.sales.TodaySales(c.Request.Context())
	if err != nil {
		respondServiceError(c, err, "TodaySales: saleService.TodaySales failed", "Failed to fetch sales.")
		return
	}
	c.JSON(http.StatusOK, listResponse{Data: rows, Total: total})
}

func (h *InventoryHandler) ListSales(c *gin.Context) {
	clientID, ok := optInt64(c, "client_id")
	if !ok {
		return
	}
	productID, ok := optInt64(c, "product_id")
	if !ok {
		return
	}
	staffID, ok := optInt64(c, "staff_id")
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
	rows, total, err := h.sales.ListSales(c.Request.Context(), models.SaleFilters{
		ClientID:  clientID,
		ProductID: productID,
		StaffID:   staffID,
		From:      from,
		To:        to,
		Page:      page,
		PageSize:  pageSize,
	})
	if err != nil {
		respondServiceError(c, err, "ListSales: saleService.ListSales failed", "Failed to fetch sales.")
		return
	}
	c.JSON(http.StatusOK, listResponse{Data: rows, Total: total, Page: page, PageSize: pageSize})
}

// DeleteSale voids a sale and restores its stock (owner).
func (h *InventoryHandler) DeleteSale(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	if err := h.sales.DeleteSale(c.Request.Context(), id, actorID(c)); err != nil {
		respondServiceError(c, err, "DeleteSale: saleService.DeleteSale failed", "Failed to delete sale.")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Sale deleted successfully"})
}
