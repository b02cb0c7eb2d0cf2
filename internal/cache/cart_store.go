package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"game_store_backend/internal/models"

	"github.com/redis/go-redis/v9"
)

// CartTTL is refreshed on every save.
const CartTTL = 30 * 24 * time.Hour

// CartStore keeps shopping carts in redis.
type CartStore struct {
	rdb *redis.Client
}

func NewCartStore(rdb *redis.Client) *CartStore {
	return &CartStore{rdb: rdb}
}

// Get returns the stored cart, or an empty cart with the given id.
func (s *CartStore) Get(ctx context.Context, cartID string) (*models.Cart, error) {
	raw, err := s.rdb.Get(ctx, KeyCart(cartID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return &models.Cart{ID: cartID, Items: []models.CartItem{}}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("loading cart: %w", err)
	}

	var cart models.Cart
	if err := json.Unmarshal(raw, &cart); err != nil {
		return nil, fmt.Errorf("decoding cart: %w", err)
	}
	cart.ID = cartID
	if cart.Items == nil {
		cart.Items = []models.CartItem{}
	}
	return &cart, nil
}

func (s *CartStore) Save(ctx context.Context, cart *models.Cart) error {
	cart.UpdatedAt = time.Now().UTC()
	b, err := json.Marshal(cart)
	if err != nil {
		return fmt.Errorf("encoding cart: %w", err)
	}
	if err := s.rdb.Set(ctx, KeyCart(cart.ID), b, CartTTL).Err(); err != nil {
		return fmt.Errorf("saving cart: %w", err)
	}
	return nil
}

func (s *CartStore) Delete(ctx context.Context, cartID string) error {
	return s.rdb.Del(ctx, KeyCart(cartID)).Err()
}
