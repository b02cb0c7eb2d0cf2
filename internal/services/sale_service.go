package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"game_store_backend/internal/models"
	"game_store_backend/internal/repositories"
	"game_store_backend/pkg/utils"
)

var (
	ErrSaleNotFound   = errors.New("sale not found")
	ErrSaleValidation = errors.New("sale validation error")
)

type CreateSaleRequest struct {
	ProductID     int64    `json:"product_id" binding:"required"`
	Quantity      int      `json:"quantity" binding:"required"`
	UnitPrice     *float64 `json:"unit_price"`
	ClientID      *int64   `json:"client_id"`
	PaymentMethod string   `json:"payment_method"`
	Notes         *string  `json:"notes"`
}

type SaleService interface {
	CreateSale(ctx context.Context, req CreateSaleRequest, staffID *int64) (*models.Sale, error)
	GetSale(ctx context.Context, id int64) (*models.Sale, error)
	TodaySales(ctx context.Context) ([]models.Sale, int, error)
	ListSales(ctx context.Context, filters models.SaleFilters) ([]models.Sale, int, error)
	DeleteSale(ctx context.Context, id int64, staffID *int64) error
}

type saleService struct {
	sales    repositories.SaleRepository
	products repositories.ProductRepository
	stock    *stockKeeper
	ledger   *ledger
	tx       repositories.TxRunner
	config   ConfigProvider
	now      func() time.Time
}

func NewSaleService(
	sales repositories.SaleRepository,
	products repositories.ProductRepository,
	movements repositories.StockMovementRepository,
	clients repositories.ClientRepository,
	points repositories.PointsRepository,
	tx repositories.TxRunner,
	config ConfigProvider,
) SaleService {
	return &saleService{
		sales:    sales,
		products: products,
		stock:    &stockKeeper{products: products, movements: movements},
		ledger:   &ledger{clients: clients, points: points},
		tx:       tx,
		config:   config,
		now:      time.Now,
	}
}

// recordSale inserts the sale and decrements stock with a sale movement.
func recordSale(ctx context.Context, exec repositories.SQLExecutor, sales repositories.SaleRepository, stock *stockKeeper, sale *models.Sale) error {
	if _, err := sales.CreateSale(ctx, exec, sale); err != nil {
		if errors.Is(err, repositories.ErrForeignKey) {
			return fmt.Errorf("%w: product or client does not exist", ErrSaleValidation)
		}
		return err
	}
	_, err := stock.apply(ctx, exec, stockChange{
		ProductID:     sale.ProductID,
		Delta:         -sale.Quantity,
		MovementType:  models.MovementSale,
		ReferenceType: models.ReferenceSale,
		ReferenceID:   &sale.ID,
		StaffID:       sale.StaffID,
	})
	return err
}

func (s *saleService) CreateSale(ctx context.Context, req CreateSaleRequest, staffID *int64) (*models.Sale, error) {
	if req.Quantity <= 0 {
		return nil, fmt.Errorf("%w: quantity must be positive", ErrSaleValidation)
	}
	payment := req.PaymentMethod
	if payment == "" {
		payment = models.PaymentCash
	}
	if payment != models.PaymentCash && payment != models.PaymentPoints {
		return nil, fmt.Errorf("%w: payment method must be cash or points", ErrSaleValidation)
	}
	if payment == models.PaymentPoints && req.ClientID == nil {
		return nil, fmt.Errorf("%w: paying with points needs a client", ErrSaleValidation)
	}
	if req.UnitPrice != nil && *req.UnitPrice < 0 {
		return nil, fmt.Errorf("%w: unit price cannot be negative", ErrSaleValidation)
	}

	cfg, err := s.config.StoreConfig(ctx)
	if err != nil {
		return nil, err
	}

	var sale *models.Sale
	err = s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		product, err := s.products.LockProduct(ctx, exec, req.ProductID)
		if err != nil {
			return wrapNotFound(err, ErrProductNotFound)
		}
		if !product.IsActive {
			return ErrProductInactive
		}

		unit := product.EffectivePrice()
		if req.UnitPrice != nil {
			unit = *req.UnitPrice
		}
		sale = &models.Sale{
			ClientID:      req.ClientID,
			ProductID:     product.ID,
			Quantity:      req.Quantity,
			UnitPrice:     utils.RoundMoney(unit),
			TotalAmount:   utils.RoundMoney(unit * float64(req.Quantity)),
			PaymentMethod: payment,
			StaffID:       staffID,
			Notes:         req.Notes,
		}

		if payment == models.PaymentPoints {
			if product.PointsPrice == nil {
				return fmt.Errorf("%w: product cannot be bought with points", ErrSaleValidation)
			}
			sale.PointsUsed = *product.PointsPrice * req.Quantity
			sale.TotalAmount = 0
		} else if cfg.PointsEnabled && req.ClientID != nil {
			sale.PointsEarned = product.PointsEarned * req.Quantity
		}

		if err := recordSale(ctx, exec, s.sales, s.stock, sale); err != nil {
			return err
		}

		if sale.PointsUsed > 0 {
			if _, err := s.ledger.redeem(ctx, exec, ledgerEntry{
				ClientID:      *req.ClientID,
				Amount:        sale.PointsUsed,
				Description:   utils.Ptr(fmt.Sprintf("Sale #%d paid with points", sale.ID)),
				ReferenceType: models.ReferenceSale,
				ReferenceID:   &sale.ID,
				StaffID:       staffID,
			}); err != nil {
				return err
			}
		}
		if sale.PointsEarned > 0 {
			if _, err := s.ledger.post(ctx, exec, ledgerEntry{
				ClientID:      *req.ClientID,
				Type:          models.PointsEarned,
				Amount:        sale.PointsEarned,
				Description:   utils.Ptr(fmt.Sprintf("Points earned on sale #%d", sale.ID)),
				ReferenceType: models.ReferenceSale,
				ReferenceID:   &sale.ID,
				StaffID:       staffID,
			}); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.sales.GetSaleByID(ctx, sale.ID)
}

func (s *saleService) GetSale(ctx context.Context, id int64) (*models.Sale, error) {
	sale, err := s.sales.GetSaleByID(ctx, id)
	if err != nil {
		return nil, wrapNotFound(err, ErrSaleNotFound)
	}
	return sale, nil
}

func (s *saleService) TodaySales(ctx context.Context) ([]models.Sale, int, error) {
	from := startOfDay(s.now())
	to := from.AddDate(0, 0, 1)
	return s.sales.GetSales(ctx, models.SaleFilters{From: &from, To: &to, PageSize: 500})
}

func (s *saleService) ListSales(ctx context.Context, filters models.SaleFilters) ([]models.Sale, int, error) {
	filters.Page, filters.PageSize = normalizePage(filters.Page, filters.PageSize)
	return s.sales.GetSales(ctx, filters)
}

// DeleteSale voids a sale: stock comes back and its points are reversed.
func (s *saleService) DeleteSale(ctx context.Context, id int64, staffID *int64) error {
	sale, err := s.sales.GetSaleByID(ctx, id)
	if err != nil {
		return wrapNotFound(err, ErrSaleNotFound)
	}

	return s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		_, err := s.stock.giveBack(ctx, exec, stockChange{
			ProductID:     sale.ProductID,
			MovementType:  models.MovementReturn,
			Reason:        utils.Ptr(fmt.Sprintf("sale #%d voided", sale.ID)),
			ReferenceType: models.ReferenceSale,
			ReferenceID:   &sale.ID,
			StaffID:       staffID,
		}, sale.Quantity)
		if err != nil && !errors.Is(err, ErrProductNotFound) {
			return err
		}

		if sale.ClientID != nil && sale.PointsUsed > 0 {
			if _, err := s.ledger.post(ctx, exec, ledgerEntry{
				ClientID:      *sale.ClientID,
				Type:          models.PointsRefund,
				Amount:        sale.PointsUsed,
				Description:   utils.Ptr(fmt.Sprintf("Refund of voided sale #%d", sale.ID)),
				ReferenceType: models.ReferenceSale,
				ReferenceID:   &sale.ID,
				StaffID:       staffID,
			}); err != nil {
				return err
			}
		}
		if sale.ClientID != nil && sale.PointsEarned > 0 {
			if _, err := s.ledger.post(ctx, exec, ledgerEntry{
				ClientID:      *sale.ClientID,
				Type:          models.PointsAdjustment,
				Amount:        -sale.PointsEarned,
				Description:   utils.Ptr(fmt.Sprintf("Points of voided sale #%d", sale.ID)),
				ReferenceType: models.ReferenceSale,
				ReferenceID:   &sale.ID,
				StaffID:       staffID,
			}); err != nil {
				return err
			}
		}

		if err := s.sales.DeleteSale(ctx, exec, id); err != nil {
			return wrapNotFound(err, ErrSaleNotFound)
		}
		return nil
	})
}
