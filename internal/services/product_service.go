package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"game_store_backend/internal/cache"
	"game_store_backend/internal/models"
	"game_store_backend/internal/repositories"
	"game_store_backend/pkg/utils"
)

// --- Custom Service Errors for Products ---
var (
	ErrProductNotFound   = errors.New("product not found")
	ErrProductValidation = errors.New("product validation error")
	ErrProductInactive   = errors.New("product is not available")
)

// --- Product DTOs ---
type CreateProductRequest struct {
	Name              string   `json:"name" binding:"required"`
	NameFr            *string  `json:"name_fr"`
	NameAr            *string  `json:"name_ar"`
	Description       *string  `json:"description"`
	DescriptionFr     *string  `json:"description_fr"`
	DescriptionAr     *string  `json:"description_ar"`
	Category          string   `json:"category" binding:"required"`
	Subcategory       *string  `json:"subcategory"`
	ProductType       string   `json:"product_type"`
	Price             float64  `json:"price"`
	SalePrice         *float64 `json:"sale_price"`
	CostPrice         *float64 `json:"cost_price"`
	StockQuantity     int      `json:"stock_quantity"`
	LowStockThreshold *int     `json:"low_stock_threshold"`
	PointsEarned      int      `json:"points_earned"`
	PointsPrice       *int     `json:"points_price"`
	ImageURL          *string  `json:"image_url"`
	IsActive          *bool    `json:"is_active"`
	IsQuickSale       bool     `json:"is_quick_sale"`
	DigitalContent    *string  `json:"digital_content"`
	IsDigitalDelivery bool     `json:"is_digital_delivery"`
}

// UpdateProductRequest never touches stock; use AdjustStock.
type UpdateProductRequest struct {
	Name              *string  `json:"name"`
	NameFr            *string  `json:"name_fr"`
	NameAr            *string  `json:"name_ar"`
	Description       *string  `json:"description"`
	DescriptionFr     *string  `json:"description_fr"`
	DescriptionAr     *string  `json:"description_ar"`
	Category          *string  `json:"category"`
	Subcategory       *string  `json:"subcategory"`
	ProductType       *string  `json:"product_type"`
	Price             *float64 `json:"price"`
	SalePrice         *float64 `json:"sale_price"`
	CostPrice         *float64 `json:"cost_price"`
	LowStockThreshold *int     `json:"low_stock_threshold"`
	PointsEarned      *int     `json:"points_earned"`
	PointsPrice       *int     `json:"points_price"`
	ImageURL          *string  `json:"image_url"`
	IsActive          *bool    `json:"is_active"`
	IsQuickSale       *bool    `json:"is_quick_sale"`
	DigitalContent    *string  `json:"digital_content"`
	IsDigitalDelivery *bool    `json:"is_digital_delivery"`
}

type AdjustStockRequest struct {
	Delta        int     `json:"delta" binding:"required"`
	MovementType string  `json:"movement_type"`
	Reason       *string `json:"reason"`
}

// --- ProductService Interface ---
type ProductService interface {
	ListProducts(ctx context.Context, filters models.ProductFilters) ([]models.Product, int, error)
	GetProduct(ctx context.Context, id int64) (*models.Product, error)
	CreateProduct(ctx context.Context, req CreateProductRequest, staffID *int64) (*models.Product, error)
	UpdateProduct(ctx context.Context, id int64, req UpdateProductRequest) (*models.Product, error)
	DeleteProduct(ctx context.Context, id int64) (softDeleted bool, err error)
	AdjustStock(ctx context.Context, id int64, req AdjustStockRequest, staffID *int64) (*models.StockMovement, error)
	LowStock(ctx context.Context) ([]models.Product, error)
	Categories(ctx context.Context) ([]string, error)
	Movements(ctx context.Context, productID *int64, movementType *string, page, pageSize int) ([]models.StockMovement, int, error)
}

// stockKeeper applies stock deltas and records the matching movement.
type stockKeeper struct {
	products  repositories.ProductRepository
	movements repositories.StockMovementRepository
}

type stockChange struct {
	ProductID     int64
	Delta         int
	MovementType  string
	Reason        *string
	ReferenceType string
	ReferenceID   *int64
	StaffID       *int64
}

func (k *stockKeeper) apply(ctx context.Context, exec repositories.SQLExecutor, ch stockChange) (*models.StockMovement, error) {
	after, applied, err := k.products.AdjustStock(ctx, exec, ch.ProductID, ch.Delta)
	if err != nil {
		return nil, wrapNotFound(err, ErrProductNotFound)
	}
	if applied != ch.Delta {
		utils.LogWarn(nil, "stock clamped at zero", map[string]interface{}{
			"product_id": ch.ProductID, "delta": ch.Delta, "applied": applied, "movement_type": ch.MovementType,
		})
	}
	m := &models.StockMovement{
		ProductID:       ch.ProductID,
		MovementType:    ch.MovementType,
		QuantityChanged: applied,
		StockAfter:      after,
		Reason:          ch.Reason,
		ReferenceID:     ch.ReferenceID,
		StaffID:         ch.StaffID,
	}
	if ch.ReferenceType != "" {
		m.ReferenceType = utils.Ptr(ch.ReferenceType)
	}
	if _, err := k.movements.CreateMovement(ctx, exec, m); err != nil {
		return nil, err
	}
	return m, nil
}

// giveBack restocks at most quantity units, limited to what the referenced
// sale or order actually took off the shelf. It returns nil when there is
// nothing left to return.
func (k *stockKeeper) giveBack(ctx context.Context, exec repositories.SQLExecutor, ch stockChange, quantity int) (*models.StockMovement, error) {
	net, err := k.movements.NetChange(ctx, exec, ch.ReferenceType, *ch.ReferenceID, ch.ProductID)
	if err != nil {
		return nil, err
	}
	ch.Delta = min(quantity, -net)
	if ch.Delta <= 0 {
		return nil, nil
	}
	return k.apply(ctx, exec, ch)
}

// --- productService Implementation ---
type productService struct {
	repo  repositories.ProductRepository
	stock *stockKeeper
	tx    repositories.TxRunner
	db    repositories.SQLExecutor
	cache *cache.Cache
}

func NewProductService(
	repo repositories.ProductRepository,
	movements repositories.StockMovementRepository,
	tx repositories.TxRunner,
	db repositories.SQLExecutor,
	c *cache.Cache,
) ProductService {
	return &productService{
		repo:  repo,
		stock: &stockKeeper{products: repo, movements: movements},
		tx:    tx,
		db:    db,
		cache: c,
	}
}

func validateProduct(p *models.Product) error {
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrProductValidation)
	}
	if strings.TrimSpace(p.Category) == "" {
		return fmt.Errorf("%w: category is required", ErrProductValidation)
	}
	if !models.IsValidProductType(p.ProductType) {
		return fmt.Errorf("%w: product type must be physical, consumable or digital", ErrProductValidation)
	}
	if p.Price < 0 {
		return fmt.Errorf("%w: price cannot be negative", ErrProductValidation)
	}
	if p.SalePrice != nil && *p.SalePrice < 0 {
		return fmt.Errorf("%w: sale price cannot be negative", ErrProductValidation)
	}
	if p.CostPrice != nil && *p.CostPrice < 0 {
		return fmt.Errorf("%w: cost price cannot be negative", ErrProductValidation)
	}
	if p.StockQuantity < 0 || p.LowStockThreshold < 0 {
		return fmt.Errorf("%w: stock values cannot be negative", ErrProductValidation)
	}
	if p.PointsEarned < 0 || (p.PointsPrice != nil && *p.PointsPrice <= 0) {
		return fmt.Errorf("%w: points values must be positive", ErrProductValidation)
	}
	return nil
}

func roundOpt(v *float64) *float64 {
	if v == nil {
		return nil
	}
	return utils.Ptr(utils.RoundMoney(*v))
}

// publicVariant keys only the anonymous storefront listings; staff queries skip the cache.
func publicVariant(f models.ProductFilters) (string, bool) {
	if !f.ActiveOnly || f.Search != nil || f.ProductType != nil {
		return "", false
	}
	v := "active:" + strconv.Itoa(f.Page) + ":" + strconv.Itoa(f.PageSize)
	if f.Category != nil {
		v += ":c=" + *f.Category
	}
	if f.QuickSale != nil {
		v += ":q=" + strconv.FormatBool(*f.QuickSale)
	}
	return v, true
}

type productPage struct {
	Items []models.Product `json:"items"`
	Total int              `json:"total"`
}

func (s *productService) ListProducts(ctx context.Context, filters models.ProductFilters) ([]models.Product, int, error) {
	filters.Page, filters.PageSize = normalizePage(filters.Page, filters.PageSize)
	variant, cacheable := publicVariant(filters)
	if !cacheable {
		return s.repo.GetProducts(ctx, filters)
	}
	page, err := cache.GetOrLoad(ctx, s.cache, tableProducts, variant, func(ctx context.Context) (productPage, error) {
		items, total, err := s.repo.GetProducts(ctx, filters)
		return productPage{Items: items, Total: total}, err
	})
	if err != nil {
		return nil, 0, err
	}
	return page.Items, page.Total, nil
}

func (s *productService) GetProduct(ctx context.Context, id int64) (*models.Product, error) {
	p, err := s.repo.GetProductByID(ctx, id)
	if err != nil {
		return nil, wrapNotFound(err, ErrProductNotFound)
	}
	return p, nil
}

func (s *productService) CreateProduct(ctx context.Context, req CreateProductRequest, staffID *int64) (*models.Product, error) {
	p := &models.Product{
		Name:              strings.TrimSpace(req.Name),
		NameFr:            req.NameFr,
		NameAr:            req.NameAr,
		Description:       req.Description,
		DescriptionFr:     req.DescriptionFr,
		DescriptionAr:     req.DescriptionAr,
		Category:          strings.TrimSpace(req.Category),
		Subcategory:       req.Subcategory,
		ProductType:       req.ProductType,
		Price:             utils.RoundMoney(req.Price),
		SalePrice:         roundOpt(req.SalePrice),
		CostPrice:         roundOpt(req.CostPrice),
		LowStockThreshold: 5,
		PointsEarned:      req.PointsEarned,
		PointsPrice:       req.PointsPrice,
		ImageURL:          req.ImageURL,
		IsActive:          req.IsActive == nil || *req.IsActive,
		IsQuickSale:       req.IsQuickSale,
		DigitalContent:    req.DigitalContent,
		IsDigitalDelivery: req.IsDigitalDelivery,
	}
	if p.ProductType == "" {
		p.ProductType = models.ProductPhysical
	}
	if req.LowStockThreshold != nil {
		p.LowStockThreshold = *req.LowStockThreshold
	}
	if req.StockQuantity < 0 {
		return nil, fmt.Errorf("%w: stock values cannot be negative", ErrProductValidation)
	}
	if err := validateProduct(p); err != nil {
		return nil, err
	}

	err := s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		if _, err := s.repo.CreateProduct(ctx, exec, p); err != nil {
			return err
		}
		if req.StockQuantity == 0 {
			return nil
		}
		_, err := s.stock.apply(ctx, exec, stockChange{
			ProductID:    p.ID,
			Delta:        req.StockQuantity,
			MovementType: models.MovementRestock,
			Reason:       utils.Ptr("initial stock"),
			StaffID:      staffID,
		})
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}
	s.cache.Invalidate(ctx, tableProducts)
	return s.repo.GetProductByID(ctx, p.ID)
}

func (s *productService) UpdateProduct(ctx context.Context, id int64, req UpdateProductRequest) (*models.Product, error) {
	p, err := s.repo.GetProductByID(ctx, id)
	if err != nil {
		return nil, wrapNotFound(err, ErrProductNotFound)
	}

	if req.Name != nil {
		p.Name = strings.TrimSpace(*req.Name)
	}
	if req.NameFr != nil {
		p.NameFr = utils.NewNullString(*req.NameFr)
	}
	if req.NameAr != nil {
		p.NameAr = utils.NewNullString(*req.NameAr)
	}
	if req.Description != nil {
		p.Description = utils.NewNullString(*req.Description)
	}
	if req.DescriptionFr != nil {
		p.DescriptionFr = utils.NewNullString(*req.DescriptionFr)
	}
	if req.DescriptionAr != nil {
		p.DescriptionAr = utils.NewNullString(*req.DescriptionAr)
	}
	if req.Category != nil {
		p.Category = strings.TrimSpace(*req.Category)
	}
	if req.Subcategory != nil {
		p.Subcategory = utils.NewNullString(*req.Subcategory)
	}
	if req.ProductType != nil {
		p.ProductType = *req.ProductType
	}
	if req.Price != nil {
		p.Price = utils.RoundMoney(*req.Price)
	}
	if req.SalePrice != nil {
		// 0 clears the sale price.
		p.SalePrice = roundOpt(req.SalePrice)
		if *req.SalePrice == 0 {
			p.SalePrice = nil
		}
	}
	if req.CostPrice != nil {
		p.CostPrice = roundOpt(req.CostPrice)
	}
	if req.LowStockThreshold != nil {
		p.LowStockThreshold = *req.LowStockThreshold
	}
	if req.PointsEarned != nil {
		p.PointsEarned = *req.PointsEarned
	}
	if req.PointsPrice != nil {
		p.PointsPrice = req.PointsPrice
		if *req.PointsPrice == 0 {
			p.PointsPrice = nil
		}
	}
	if req.ImageURL != nil {
		p.ImageURL = utils.NewNullString(*req.ImageURL)
	}
	if req.IsActive != nil {
		p.IsActive = *req.IsActive
	}
	if req.IsQuickSale != nil {
		p.IsQuickSale = *req.IsQuickSale
	}
	if req.DigitalContent != nil {
		p.DigitalContent = utils.NewNullString(*req.DigitalContent)
	}
	if req.IsDigitalDelivery != nil {
		p.IsDigitalDelivery = *req.IsDigitalDelivery
	}

	if err := validateProduct(p); err != nil {
		return nil, err
	}
	if err := s.repo.UpdateProduct(ctx, s.db, p); err != nil {
		return nil, wrapNotFound(err, ErrProductNotFound)
	}
	s.cache.Invalidate(ctx, tableProducts)
	return s.repo.GetProductByID(ctx, id)
}

// DeleteProduct removes the product, or deactivates it when sales or
// movements still reference it.
func (s *productService) DeleteProduct(ctx context.Context, id int64) (bool, error) {
	err := s.repo.DeleteProduct(ctx, s.db, id)
	if err == nil {
		s.cache.Invalidate(ctx, tableProducts)
		return false, nil
	}
	if !errors.Is(err, repositories.ErrForeignKey) {
		return false, wrapNotFound(err, ErrProductNotFound)
	}

	p, err := s.repo.GetProductByID(ctx, id)
	if err != nil {
		return false, wrapNotFound(err, ErrProductNotFound)
	}
	p.IsActive = false
	if err := s.repo.UpdateProduct(ctx, s.db, p); err != nil {
		return false, err
	}
	s.cache.Invalidate(ctx, tableProducts)
	return true, nil
}

func (s *productService) AdjustStock(ctx context.Context, id int64, req AdjustStockRequest, staffID *int64) (*models.StockMovement, error) {
	if req.Delta == 0 {
		return nil, fmt.Errorf("%w: delta cannot be zero", ErrProductValidation)
	}
	movementType := req.MovementType
	if movementType == "" {
		movementType = models.MovementAdjustment
		if req.Delta > 0 {
			movementType = models.MovementRestock
		}
	}
	switch movementType {
	case models.MovementRestock, models.MovementAdjustment, models.MovementReturn:
	default:
		return nil, fmt.Errorf("%w: movement type %q cannot be recorded manually", ErrProductValidation, movementType)
	}

	var m *models.StockMovement
	err := s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		var err error
		m, err = s.stock.apply(ctx, exec, stockChange{
			ProductID:     id,
			Delta:         req.Delta,
			MovementType:  movementType,
			Reason:        req.Reason,
			ReferenceType: models.ReferenceManual,
			StaffID:       staffID,
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	s.cache.Invalidate(ctx, tableProducts)
	return m, nil
}

func (s *productService) LowStock(ctx context.Context) ([]models.Product, error) {
	return s.repo.GetLowStock(ctx)
}

func (s *productService) Categories(ctx context.Context) ([]string, error) {
	return cache.GetOrLoad(ctx, s.cache, tableProducts, "categories", s.repo.GetCategories)
}

func (s *productService) Movements(ctx context.Context, productID *int64, movementType *string, page, pageSize int) ([]models.StockMovement, int, error) {
	page, pageSize = normalizePage(page, pageSize)
	return s.stock.movements.GetMovements(ctx, productID, movementType, page, pageSize)
}
