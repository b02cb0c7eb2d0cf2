package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"game_store_backend/internal/models"
	"game_store_backend/internal/repositories"
	"game_store_backend/pkg/utils"
)

func newProductFixture() (ProductService, *fakeProducts, *fakeMovements) {
	products := newFakeProducts(
		models.Product{ID: 1, Name: "Cola", Category: "drinks", ProductType: models.ProductConsumable, Price: 2.5,
			StockQuantity: 3, LowStockThreshold: 5, IsActive: true},
		models.Product{ID: 2, Name: "FIFA 26", Category: "games", ProductType: models.ProductPhysical, Price: 220,
			StockQuantity: 12, LowStockThreshold: 2, IsActive: true},
	)
	movements := &fakeMovements{}
	return NewProductService(products, movements, &fakeTx{}, nil, nil), products, movements
}

func TestProduct_CreateRecordsInitialStock(t *testing.T) {
	svc, products, movements := newProductFixture()
	ctx := context.Background()

	p, err := svc.CreateProduct(ctx, CreateProductRequest{Name: " Headset ", Category: "accessories", Price: 89.9999, StockQuantity: 4}, utils.Ptr(int64(1)))
	require.NoError(t, err)
	assert.Equal(t, "Headset", p.Name)
	assert.Equal(t, models.ProductPhysical, p.ProductType)
	assert.Equal(t, 90.0, p.Price)
	assert.Equal(t, 5, p.LowStockThreshold)
	assert.Equal(t, 4, products.rows[p.ID].StockQuantity)

	require.Len(t, movements.rows, 1)
	assert.Equal(t, models.MovementRestock, movements.rows[0].MovementType)
	assert.Equal(t, 4, movements.rows[0].QuantityChanged)
}

func TestProduct_Validation(t *testing.T) {
	svc, _, _ := newProductFixture()
	ctx := context.Background()

	_, err := svc.CreateProduct(ctx, CreateProductRequest{Name: "X", Category: "c", ProductType: "service"}, nil)
	assert.ErrorIs(t, err, ErrProductValidation)
	_, err = svc.CreateProduct(ctx, CreateProductRequest{Name: "X", Category: "c", Price: -1}, nil)
	assert.ErrorIs(t, err, ErrProductValidation)
	_, err = svc.CreateProduct(ctx, CreateProductRequest{Name: "X", Category: "c", StockQuantity: -2}, nil)
	assert.ErrorIs(t, err, ErrProductValidation)
	_, err = svc.UpdateProduct(ctx, 1, UpdateProductRequest{PointsPrice: utils.Ptr(-5)})
	assert.ErrorIs(t, err, ErrProductValidation)
	_, err = svc.UpdateProduct(ctx, 42, UpdateProductRequest{Name: utils.Ptr("Ghost")})
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestProduct_UpdateClearsSalePriceWithZero(t *testing.T) {
	svc, products, _ := newProductFixture()
	ctx := context.Background()

	p, err := svc.UpdateProduct(ctx, 2, UpdateProductRequest{SalePrice: utils.Ptr(199.0)})
	require.NoError(t, err)
	require.NotNil(t, p.SalePrice)
	assert.Equal(t, 199.0, *p.SalePrice)

	p, err = svc.UpdateProduct(ctx, 2, UpdateProductRequest{SalePrice: utils.Ptr(0.0)})
	require.NoError(t, err)
	assert.Nil(t, p.SalePrice)
	assert.Equal(t, 12, products.rows[2].StockQuantity, "updates never move stock")
}

func TestProduct_DeleteFallsBackToDeactivation(t *testing.T) {
	svc, products, _ := newProductFixture()
	ctx := context.Background()

	products.deleteErr = repositories.ErrForeignKey
	soft, err := svc.DeleteProduct(ctx, 1)
	require.NoError(t, err)
	assert.True(t, soft)
	require.Contains(t, products.rows, int64(1))
	assert.False(t, products.rows[1].IsActive)

	products.deleteErr = nil
	soft, err = svc.DeleteProduct(ctx, 2)
	require.NoError(t, err)
	assert.False(t, soft)
	assert.NotContains(t, products.rows, int64(2))

	_, err = svc.DeleteProduct(ctx, 2)
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestProduct_AdjustStock(t *testing.T) {
	svc, products, movements := newProductFixture()
	ctx := context.Background()
	staff := utils.Ptr(int64(9))

	_, err := svc.AdjustStock(ctx, 1, AdjustStockRequest{Delta: 0}, staff)
	assert.ErrorIs(t, err, ErrProductValidation)
	_, err = svc.AdjustStock(ctx, 1, AdjustStockRequest{Delta: -1, MovementType: models.MovementSale}, staff)
	assert.ErrorIs(t, err, ErrProductValidation, "sale movements come from sales only")
	assert.Empty(t, movements.rows)

	m, err := svc.AdjustStock(ctx, 1, AdjustStockRequest{Delta: 10}, staff)
	require.NoError(t, err)
	assert.Equal(t, models.MovementRestock, m.MovementType)
	assert.Equal(t, 13, m.StockAfter)
	require.NotNil(t, m.ReferenceType)
	assert.Equal(t, models.ReferenceManual, *m.ReferenceType)
	assert.Equal(t, staff, m.StaffID)

	m, err = svc.AdjustStock(ctx, 1, AdjustStockRequest{Delta: -20, Reason: utils.Ptr("broken crate")}, staff)
	require.NoError(t, err)
	assert.Equal(t, models.MovementAdjustment, m.MovementType)
	assert.Equal(t, -13, m.QuantityChanged, "clamped at zero")
	assert.Equal(t, 0, products.rows[1].StockQuantity)

	m, err = svc.AdjustStock(ctx, 1, AdjustStockRequest{Delta: 2, MovementType: models.MovementReturn}, staff)
	require.NoError(t, err)
	assert.Equal(t, models.MovementReturn, m.MovementType)
	assert.Len(t, movements.rows, 3)

	_, err = svc.AdjustStock(ctx, 77, AdjustStockRequest{Delta: 1}, staff)
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestProduct_LowStock(t *testing.T) {
	svc, _, _ := newProductFixture()

	low, err := svc.LowStock(context.Background())
	require.NoError(t, err)
	require.Len(t, low, 1)
	assert.Equal(t, "Cola", low[0].Name)
}
