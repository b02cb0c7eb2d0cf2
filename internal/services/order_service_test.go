package services

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"game_store_backend/internal/models"
	"game_store_backend/internal/repositories"
	"game_store_backend/pkg/utils"
)

type fakeOrders struct {
	rows map[int64]*models.Order
	next int64
}

func (f *fakeOrders) CreateOrder(_ context.Context, _ repositories.SQLExecutor, o *models.Order) (int64, error) {
	f.next++
	o.ID = f.next
	cp := *o
	f.rows[o.ID] = &cp
	return o.ID, nil
}

func (f *fakeOrders) GetOrderByID(_ context.Context, id int64) (*models.Order, error) {
	o, ok := f.rows[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	cp := *o
	return &cp, nil
}

func (f *fakeOrders) GetOrderByNumber(_ context.Context, number string) (*models.Order, error) {
	for _, o := range f.rows {
		if o.OrderNumber == number {
			cp := *o
			return &cp, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (f *fakeOrders) GetOrders(context.Context, models.OrderFilters) ([]models.Order, int, error) {
	out := []models.Order{}
	for _, o := range f.rows {
		out = append(out, *o)
	}
	return out, len(out), nil
}

func (f *fakeOrders) UpdateOrderStatus(_ context.Context, _ repositories.SQLExecutor, o *models.Order) error {
	if _, ok := f.rows[o.ID]; !ok {
		return repositories.ErrNotFound
	}
	cp := *o
	f.rows[o.ID] = &cp
	return nil
}

func (f *fakeOrders) DeleteOrder(_ context.Context, _ repositories.SQLExecutor, id int64) error {
	if _, ok := f.rows[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(f.rows, id)
	return nil
}

type orderFixture struct {
	svc       OrderService
	orders    *fakeOrders
	products  *fakeProducts
	movements *fakeMovements
	carts     *memCartStore
}

func newOrderFixture(cfg models.StoreConfig) *orderFixture {
	f := &orderFixture{
		orders: &fakeOrders{rows: map[int64]*models.Order{}},
		products: newFakeProducts(
			models.Product{ID: 1, Name: "DualSense", Price: 250, SalePrice: utils.Ptr(229.0), StockQuantity: 4, ProductType: models.ProductPhysical, IsActive: true},
			models.Product{ID: 2, Name: "PSN 50", Price: 60, ProductType: models.ProductDigital, IsActive: true,
				IsDigitalDelivery: true, DigitalContent: utils.Ptr("CODE-123")},
			models.Product{ID: 3, Name: "Old", Price: 5, IsActive: false},
		),
		movements: &fakeMovements{},
		carts:     &memCartStore{carts: map[string]models.Cart{}},
	}
	clients := newFakeClients(models.Client{ID: 7, Phone: "22123456", Name: "Amine"})
	f.svc = NewOrderService(f.orders, f.products, f.movements, clients, f.carts, &fakeTx{}, StaticConfig(cfg))
	return f
}

func TestOrder_CheckoutFromCart(t *testing.T) {
	f := newOrderFixture(models.DefaultStoreConfig())
	ctx := context.Background()
	cartID := "0b7f6c1e-9a55-4d2b-8a57-3f4f1c1f4e10"
	f.carts.carts[cartID] = models.Cart{ID: cartID, Items: []models.CartItem{
		{ProductID: 1, Quantity: 2}, {ProductID: 2, Quantity: 1},
	}}

	order, err := f.svc.Checkout(ctx, CheckoutRequest{
		CartID:          cartID,
		ClientName:      "Amine",
		ClientPhone:     "+216 22 123 456",
		DeliveryMethod:  models.DeliveryRapid,
		DeliveryAddress: utils.Ptr("Zarzis centre"),
	})
	require.NoError(t, err)

	assert.Regexp(t, regexp.MustCompile(`^GSZ-\d{8}-[0-9A-F]{6}$`), order.OrderNumber)
	assert.InDelta(t, 518.0, order.Subtotal, 0.0001)
	assert.InDelta(t, 10.0, order.DeliveryCost, 0.0001)
	assert.InDelta(t, 528.0, order.TotalAmount, 0.0001)
	assert.Equal(t, int64(7), *order.ClientID)
	assert.Equal(t, models.OrderPending, order.Status)
	assert.Nil(t, order.Items[1].DigitalContent)

	assert.Equal(t, 2, f.products.rows[1].StockQuantity)
	require.Len(t, f.movements.rows, 1)
	assert.Equal(t, models.MovementOrder, f.movements.rows[0].MovementType)
	assert.NotContains(t, f.carts.carts, cartID)
	assert.Equal(t, "CODE-123", *f.orders.rows[order.ID].Items[1].DigitalContent)
}

func TestOrder_CheckoutRules(t *testing.T) {
	cfg := models.DefaultStoreConfig()
	cfg.Delivery.LocalDeliveryEnabled = false
	f := newOrderFixture(cfg)
	ctx := context.Background()
	base := CheckoutRequest{
		Items:          []CheckoutItem{{ProductID: 1, Quantity: 1}},
		ClientName:     "Amine",
		ClientPhone:    "22123456",
		DeliveryMethod: models.DeliveryPickup,
	}

	req := base
	req.DeliveryMethod = models.DeliveryLocal
	req.DeliveryAddress = utils.Ptr("Hassi Jerbi")
	_, err := f.svc.Checkout(ctx, req)
	assert.ErrorIs(t, err, ErrOrderValidation)

	req = base
	req.PaymentMethod = "d17"
	_, err = f.svc.Checkout(ctx, req)
	assert.ErrorIs(t, err, ErrOrderValidation)

	req = base
	req.DeliveryMethod = models.DeliveryRapid
	_, err = f.svc.Checkout(ctx, req)
	assert.ErrorIs(t, err, ErrOrderValidation, "address required")

	req = base
	req.Items = []CheckoutItem{{ProductID: 3, Quantity: 1}}
	_, err = f.svc.Checkout(ctx, req)
	assert.ErrorIs(t, err, ErrProductInactive)

	req = base
	req.Items = nil
	_, err = f.svc.Checkout(ctx, req)
	assert.ErrorIs(t, err, ErrEmptyOrder)

	order, err := f.svc.Checkout(ctx, base)
	require.NoError(t, err)
	assert.Zero(t, order.DeliveryCost)
	assert.Equal(t, models.PaymentCash, order.PaymentMethod)
}

func TestOrder_StatusLifecycle(t *testing.T) {
	f := newOrderFixture(models.DefaultStoreConfig())
	ctx := context.Background()
	fixed := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	f.svc.(*orderService).now = func() time.Time { return fixed }

	order, err := f.svc.Checkout(ctx, CheckoutRequest{
		Items:          []CheckoutItem{{ProductID: 1, Quantity: 3}},
		ClientName:     "Sami",
		ClientPhone:    "55000111",
		DeliveryMethod: models.DeliveryPickup,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, f.products.rows[1].StockQuantity)

	updated, err := f.svc.UpdateStatus(ctx, order.ID, UpdateOrderStatusRequest{Status: models.OrderConfirmed}, utils.Ptr(int64(1)))
	require.NoError(t, err)
	require.NotNil(t, updated.ConfirmedAt)
	assert.Equal(t, fixed, *updated.ConfirmedAt)

	_, err = f.svc.UpdateStatus(ctx, order.ID, UpdateOrderStatusRequest{Status: "lost"}, nil)
	assert.ErrorIs(t, err, ErrInvalidOrderStatus)

	_, err = f.svc.UpdateStatus(ctx, order.ID, UpdateOrderStatusRequest{Status: models.OrderCancelled}, nil)
	require.NoError(t, err)
	assert.Equal(t, 4, f.products.rows[1].StockQuantity, "cancel restocks")

	_, err = f.svc.UpdateStatus(ctx, order.ID, UpdateOrderStatusRequest{Status: models.OrderReady}, nil)
	assert.ErrorIs(t, err, ErrOrderClosed)

	paid, err := f.svc.UpdatePayment(ctx, order.ID, UpdatePaymentRequest{PaymentStatus: models.PaymentStatusPaid, PaymentReference: utils.Ptr("TX-9")}, nil)
	require.NoError(t, err)
	assert.Equal(t, "TX-9", *paid.PaymentReference)

	require.NoError(t, f.svc.DeleteOrder(ctx, order.ID, nil))
	assert.Equal(t, 4, f.products.rows[1].StockQuantity, "cancelled order is not restocked twice")
	assert.ErrorIs(t, f.svc.DeleteOrder(ctx, order.ID, nil), ErrOrderNotFound)
}

func TestOrder_TrackNeedsMatchingPhone(t *testing.T) {
	f := newOrderFixture(models.DefaultStoreConfig())
	ctx := context.Background()

	order, err := f.svc.Checkout(ctx, CheckoutRequest{
		Items:          []CheckoutItem{{ProductID: 2, Quantity: 1}},
		ClientName:     "Sami",
		ClientPhone:    "55000111",
		DeliveryMethod: models.DeliveryPickup,
	})
	require.NoError(t, err)

	_, err = f.svc.TrackOrder(ctx, order.OrderNumber, "22000000")
	assert.ErrorIs(t, err, ErrOrderNotFound)

	tracked, err := f.svc.TrackOrder(ctx, order.OrderNumber, "55 000 111")
	require.NoError(t, err)
	assert.Nil(t, tracked.Items[0].DigitalContent)

	_, err = f.svc.UpdateStatus(ctx, order.ID, UpdateOrderStatusRequest{Status: models.OrderDelivered}, nil)
	require.NoError(t, err)
	tracked, err = f.svc.TrackOrder(ctx, order.OrderNumber, "55000111")
	require.NoError(t, err)
	assert.Equal(t, "CODE-123", *tracked.Items[0].DigitalContent)
}
