package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"game_store_backend/internal/models"
	"game_store_backend/internal/repositories"
	"game_store_backend/pkg/utils"
)

var (
	ErrOrderNotFound      = errors.New("order not found")
	ErrOrderValidation    = errors.New("order validation error")
	ErrInvalidOrderStatus = errors.New("invalid order status")
	ErrOrderClosed        = errors.New("order is already delivered or cancelled")
	ErrEmptyOrder         = errors.New("order has no items")
)

// --- DTOs ---

type CheckoutItem struct {
	ProductID int64 `json:"product_id" binding:"required"`
	Quantity  int   `json:"quantity" binding:"required"`
}

// CheckoutRequest takes its lines from Items when given, else from the cart.
type CheckoutRequest struct {
	CartID           string         `json:"-"`
	Items            []CheckoutItem `json:"items"`
	ClientName       string         `json:"client_name" binding:"required"`
	ClientPhone      string         `json:"client_phone" binding:"required"`
	ClientEmail      *string        `json:"client_email"`
	DeliveryMethod   string         `json:"delivery_method" binding:"required"`
	DeliveryAddress  *string        `json:"delivery_address"`
	PaymentMethod    string         `json:"payment_method"`
	PaymentReference *string        `json:"payment_reference"`
	Notes            *string        `json:"notes"`
}

type UpdateOrderStatusRequest struct {
	Status     string  `json:"status" binding:"required"`
	StaffNotes *string `json:"staff_notes"`
}

type UpdatePaymentRequest struct {
	PaymentStatus    string  `json:"payment_status" binding:"required"`
	PaymentReference *string `json:"payment_reference"`
}

type OrderService interface {
	Checkout(ctx context.Context, req CheckoutRequest) (*models.Order, error)
	GetOrder(ctx context.Context, id int64) (*models.Order, error)
	TrackOrder(ctx context.Context, number, phone string) (*models.Order, error)
	ListOrders(ctx context.Context, filters models.OrderFilters) ([]models.Order, int, error)
	UpdateStatus(ctx context.Context, id int64, req UpdateOrderStatusRequest, staffID *int64) (*models.Order, error)
	UpdatePayment(ctx context.Context, id int64, req UpdatePaymentRequest, staffID *int64) (*models.Order, error)
	DeleteOrder(ctx context.Context, id int64, staffID *int64) error
}

type orderService struct {
	orders   repositories.OrderRepository
	products repositories.ProductRepository
	clients  repositories.ClientRepository
	stock    *stockKeeper
	carts    CartStore
	tx       repositories.TxRunner
	config   ConfigProvider
	now      func() time.Time
}

func NewOrderService(
	orders repositories.OrderRepository,
	products repositories.ProductRepository,
	movements repositories.StockMovementRepository,
	clients repositories.ClientRepository,
	carts CartStore,
	tx repositories.TxRunner,
	config ConfigProvider,
) OrderService {
	return &orderService{
		orders:   orders,
		products: products,
		clients:  clients,
		stock:    &stockKeeper{products: products, movements: movements},
		carts:    carts,
		tx:       tx,
		config:   config,
		now:      time.Now,
	}
}

// newOrderNumber formats GSZ-YYYYMMDD-XXXXXX.
func newOrderNumber(now time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:6])
	return fmt.Sprintf("GSZ-%s-%s", now.Format("20060102"), suffix)
}

func tracksStock(productType string) bool {
	return productType != models.ProductDigital
}

func (s *orderService) checkoutLines(ctx context.Context, req CheckoutRequest) ([]CheckoutItem, error) {
	if len(req.Items) > 0 {
		return req.Items, nil
	}
	if req.CartID == "" || s.carts == nil {
		return nil, ErrEmptyOrder
	}
	cart, err := s.carts.Get(ctx, req.CartID)
	if err != nil {
		return nil, fmt.Errorf("loading cart: %w", err)
	}
	lines := make([]CheckoutItem, 0, len(cart.Items))
	for _, item := range cart.Items {
		lines = append(lines, CheckoutItem{ProductID: item.ProductID, Quantity: item.Quantity})
	}
	if len(lines) == 0 {
		return nil, ErrEmptyOrder
	}
	return lines, nil
}

func (s *orderService) Checkout(ctx context.Context, req CheckoutRequest) (*models.Order, error) {
	name := strings.TrimSpace(utils.SanitizeInput(req.ClientName))
	if !utils.IsValidName(name) {
		return nil, fmt.Errorf("%w: name must be at least 2 characters", ErrOrderValidation)
	}
	if !utils.IsValidPhone(req.ClientPhone) {
		return nil, fmt.Errorf("%w: invalid phone number", ErrOrderValidation)
	}
	email := normalizedEmail(req.ClientEmail)
	if email != nil && !utils.IsValidEmail(*email) {
		return nil, fmt.Errorf("%w: invalid email", ErrOrderValidation)
	}
	if !models.IsValidDeliveryMethod(req.DeliveryMethod) {
		return nil, fmt.Errorf("%w: unknown delivery method %q", ErrOrderValidation, req.DeliveryMethod)
	}
	if req.DeliveryMethod != models.DeliveryPickup && (req.DeliveryAddress == nil || strings.TrimSpace(*req.DeliveryAddress) == "") {
		return nil, fmt.Errorf("%w: delivery address is required", ErrOrderValidation)
	}
	payment := req.PaymentMethod
	if payment == "" {
		payment = models.PaymentCash
	}
	if !models.IsValidOrderPayment(payment) {
		return nil, fmt.Errorf("%w: unknown payment method %q", ErrOrderValidation, payment)
	}

	cfg, err := s.config.StoreConfig(ctx)
	if err != nil {
		return nil, err
	}
	deliveryCost, enabled := cfg.DeliveryCost(req.DeliveryMethod)
	if !enabled {
		return nil, fmt.Errorf("%w: delivery method %s is disabled", ErrOrderValidation, req.DeliveryMethod)
	}
	if !cfg.PaymentEnabled(payment) {
		return nil, fmt.Errorf("%w: payment method %s is disabled", ErrOrderValidation, payment)
	}

	lines, err := s.checkoutLines(ctx, req)
	if err != nil {
		return nil, err
	}

	order := &models.Order{
		OrderNumber:      newOrderNumber(s.now()),
		ClientName:       name,
		ClientPhone:      utils.NormalizePhone(req.ClientPhone),
		ClientEmail:      email,
		DeliveryMethod:   req.DeliveryMethod,
		DeliveryCost:     deliveryCost,
		DeliveryAddress:  req.DeliveryAddress,
		PaymentMethod:    payment,
		PaymentStatus:    models.PaymentStatusPending,
		PaymentReference: req.PaymentReference,
		Status:           models.OrderPending,
		Notes:            req.Notes,
	}
	if client, err := s.clients.GetClientByPhone(ctx, order.ClientPhone); err == nil {
		order.ClientID = &client.ID
	} else if !errors.Is(err, repositories.ErrNotFound) {
		return nil, err
	}

	err = s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		order.Items = make([]models.OrderItem, 0, len(lines))
		var subtotal float64
		for _, line := range lines {
			if line.Quantity <= 0 {
				return fmt.Errorf("%w: quantity for product %d must be positive", ErrOrderValidation, line.ProductID)
			}
			product, err := s.products.LockProduct(ctx, exec, line.ProductID)
			if err != nil {
				return wrapNotFound(err, ErrProductNotFound)
			}
			if !product.IsActive {
				return fmt.Errorf("%w: %s", ErrProductInactive, product.Name)
			}
			price := product.EffectivePrice()
			subtotal += price * float64(line.Quantity)
			item := models.OrderItem{
				ProductID:   product.ID,
				Name:        product.Name,
				Quantity:    line.Quantity,
				Price:       price,
				ProductType: product.ProductType,
			}
			if product.IsDigitalDelivery {
				item.DigitalContent = product.DigitalContent
			}
			order.Items = append(order.Items, item)
		}
		order.Subtotal = utils.RoundMoney(subtotal)
		order.TotalAmount = utils.RoundMoney(subtotal + deliveryCost)

		if _, err := s.orders.CreateOrder(ctx, exec, order); err != nil {
			return err
		}
		return s.moveOrderStock(ctx, exec, order, -1, models.MovementOrder, nil, nil)
	})
	if err != nil {
		return nil, err
	}

	if req.CartID != "" && s.carts != nil {
		if err := s.carts.Delete(ctx, req.CartID); err != nil {
			utils.LogWarn(err, "cart not cleared after checkout", map[string]interface{}{"order_number": order.OrderNumber, "cart_id": req.CartID})
		}
	}
	utils.LogInfo("order placed", map[string]interface{}{
		"order_number": order.OrderNumber,
		"lines":        len(order.Items),
		"total":        order.TotalAmount,
	})
	return publicOrder(order), nil
}

// moveOrderStock applies sign*quantity for every stock-tracked line. Returns
// only give back what checkout actually removed.
func (s *orderService) moveOrderStock(ctx context.Context, exec repositories.SQLExecutor, order *models.Order, sign int, movementType string, reason *string, staffID *int64) error {
	for _, item := range order.Items {
		if !tracksStock(item.ProductType) {
			continue
		}
		ch := stockChange{
			ProductID:     item.ProductID,
			Delta:         sign * item.Quantity,
			MovementType:  movementType,
			Reason:        reason,
			ReferenceType: models.ReferenceOrder,
			ReferenceID:   &order.ID,
			StaffID:       staffID,
		}
		var err error
		if sign > 0 {
			_, err = s.stock.giveBack(ctx, exec, ch, item.Quantity)
		} else {
			_, err = s.stock.apply(ctx, exec, ch)
		}
		if err != nil {
			if errors.Is(err, ErrProductNotFound) && sign > 0 {
				// product removed since checkout; nothing to restock
				continue
			}
			return err
		}
	}
	return nil
}

// publicOrder hides digital content until staff deliver the order.
func publicOrder(o *models.Order) *models.Order {
	cp := *o
	cp.Items = make([]models.OrderItem, len(o.Items))
	for i, item := range o.Items {
		item.DigitalContent = nil
		cp.Items[i] = item
	}
	cp.StaffNotes = nil
	return &cp
}

func (s *orderService) GetOrder(ctx context.Context, id int64) (*models.Order, error) {
	order, err := s.orders.GetOrderByID(ctx, id)
	if err != nil {
		return nil, wrapNotFound(err, ErrOrderNotFound)
	}
	return order, nil
}

// TrackOrder lets a customer look up an order by number; the phone must match.
func (s *orderService) TrackOrder(ctx context.Context, number, phone string) (*models.Order, error) {
	order, err := s.orders.GetOrderByNumber(ctx, strings.ToUpper(strings.TrimSpace(number)))
	if err != nil {
		return nil, wrapNotFound(err, ErrOrderNotFound)
	}
	if order.ClientPhone != utils.NormalizePhone(phone) {
		return nil, ErrOrderNotFound
	}
	out := publicOrder(order)
	if order.Status == models.OrderDelivered {
		out.Items = order.Items
	}
	return out, nil
}

func (s *orderService) ListOrders(ctx context.Context, filters models.OrderFilters) ([]models.Order, int, error) {
	if filters.Status != nil && !models.IsValidOrderStatus(*filters.Status) {
		return nil, 0, fmt.Errorf("%w: %s", ErrInvalidOrderStatus, *filters.Status)
	}
	filters.Page, filters.PageSize = normalizePage(filters.Page, filters.PageSize)
	return s.orders.GetOrders(ctx, filters)
}

func (s *orderService) UpdateStatus(ctx context.Context, id int64, req UpdateOrderStatusRequest, staffID *int64) (*models.Order, error) {
	if !models.IsValidOrderStatus(req.Status) {
		return nil, fmt.Errorf("%w: %s", ErrInvalidOrderStatus, req.Status)
	}
	order, err := s.orders.GetOrderByID(ctx, id)
	if err != nil {
		return nil, wrapNotFound(err, ErrOrderNotFound)
	}
	if order.Status == models.OrderDelivered || order.Status == models.OrderCancelled {
		return nil, ErrOrderClosed
	}

	now := s.now()
	order.Status = req.Status
	order.StaffID = staffID
	if req.StaffNotes != nil {
		order.StaffNotes = req.StaffNotes
	}
	switch req.Status {
	case models.OrderConfirmed:
		if order.ConfirmedAt == nil {
			order.ConfirmedAt = &now
		}
	case models.OrderDelivered:
		order.DeliveredAt = &now
	}

	err = s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		if req.Status == models.OrderCancelled {
			reason := fmt.Sprintf("order %s cancelled", order.OrderNumber)
			if err := s.moveOrderStock(ctx, exec, order, 1, models.MovementReturn, &reason, staffID); err != nil {
				return err
			}
		}
		return wrapNotFound(s.orders.UpdateOrderStatus(ctx, exec, order), ErrOrderNotFound)
	})
	if err != nil {
		return nil, err
	}
	return s.GetOrder(ctx, id)
}

func (s *orderService) UpdatePayment(ctx context.Context, id int64, req UpdatePaymentRequest, staffID *int64) (*models.Order, error) {
	if !models.IsValidPaymentStatus(req.PaymentStatus) {
		return nil, fmt.Errorf("%w: unknown payment status %q", ErrOrderValidation, req.PaymentStatus)
	}
	order, err := s.orders.GetOrderByID(ctx, id)
	if err != nil {
		return nil, wrapNotFound(err, ErrOrderNotFound)
	}
	order.PaymentStatus = req.PaymentStatus
	if req.PaymentReference != nil {
		order.PaymentReference = req.PaymentReference
	}
	order.StaffID = staffID

	err = s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		return wrapNotFound(s.orders.UpdateOrderStatus(ctx, exec, order), ErrOrderNotFound)
	})
	if err != nil {
		return nil, err
	}
	return s.GetOrder(ctx, id)
}

// DeleteOrder removes the order; stock of open orders goes back on the shelf.
func (s *orderService) DeleteOrder(ctx context.Context, id int64, staffID *int64) error {
	order, err := s.orders.GetOrderByID(ctx, id)
	if err != nil {
		return wrapNotFound(err, ErrOrderNotFound)
	}
	return s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		if order.Status != models.OrderCancelled && order.Status != models.OrderDelivered {
			reason := fmt.Sprintf("order %s deleted", order.OrderNumber)
			if err := s.moveOrderStock(ctx, exec, order, 1, models.MovementReturn, &reason, staffID); err != nil {
				return err
			}
		}
		return wrapNotFound(s.orders.DeleteOrder(ctx, exec, id), ErrOrderNotFound)
	})
}
