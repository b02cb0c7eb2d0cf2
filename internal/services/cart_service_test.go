package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"game_store_backend/internal/models"
	"game_store_backend/pkg/utils"
)

type memCartStore struct {
	carts map[string]models.Cart
}

func (m *memCartStore) Get(_ context.Context, id string) (*models.Cart, error) {
	if c, ok := m.carts[id]; ok {
		c.Items = append([]models.CartItem(nil), c.Items...)
		return &c, nil
	}
	return &models.Cart{ID: id, Items: []models.CartItem{}}, nil
}

func (m *memCartStore) Save(_ context.Context, c *models.Cart) error {
	m.carts[c.ID] = *c
	return nil
}

func (m *memCartStore) Delete(_ context.Context, id string) error {
	delete(m.carts, id)
	return nil
}

func newCartFixture() (CartService, *memCartStore) {
	store := &memCartStore{carts: map[string]models.Cart{}}
	products := newFakeProducts(
		models.Product{ID: 1, Name: "FIFA 26", Price: 200, SalePrice: utils.Ptr(180.0), IsActive: true},
		models.Product{ID: 2, Name: "Headset", Price: 95.5, IsActive: true},
		models.Product{ID: 3, Name: "Retired", Price: 10},
	)
	return NewCartService(store, products), store
}

func TestCart_AddCreatesCartAndTotals(t *testing.T) {
	svc, store := newCartFixture()
	ctx := context.Background()

	cart, err := svc.Add(ctx, "", 1)
	require.NoError(t, err)
	require.NotEmpty(t, cart.ID)

	cart, err = svc.Add(ctx, cart.ID, 1)
	require.NoError(t, err)
	cart, err = svc.Add(ctx, cart.ID, 2)
	require.NoError(t, err)

	view := cart.View()
	assert.Equal(t, 3, view.Count)
	assert.InDelta(t, 455.5, view.Total, 0.0001)
	assert.Contains(t, store.carts, cart.ID)
}

func TestCart_QuantityZeroRemovesLine(t *testing.T) {
	svc, _ := newCartFixture()
	ctx := context.Background()

	cart, err := svc.Add(ctx, "", 2)
	require.NoError(t, err)
	cart, err = svc.UpdateQuantity(ctx, cart.ID, 2, 0)
	require.NoError(t, err)
	assert.Empty(t, cart.Items)

	_, err = svc.Remove(ctx, cart.ID, 2)
	assert.ErrorIs(t, err, ErrCartItemMissing)
}

func TestCart_RejectsInactiveAndBadIDs(t *testing.T) {
	svc, _ := newCartFixture()
	ctx := context.Background()

	_, err := svc.Add(ctx, "", 3)
	assert.ErrorIs(t, err, ErrProductNotFound)
	_, err = svc.Add(ctx, "", 99)
	assert.ErrorIs(t, err, ErrProductNotFound)
	_, err = svc.Get(ctx, "../etc")
	assert.ErrorIs(t, err, ErrInvalidCartID)

	_, err = NewCartService(nil, newFakeProducts()).Get(ctx, "")
	assert.ErrorIs(t, err, ErrCartUnavailable)
}
