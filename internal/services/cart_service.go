package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"game_store_backend/internal/models"
	"game_store_backend/internal/repositories"
)

var (
	ErrCartUnavailable = errors.New("cart storage is unavailable")
	ErrCartItemMissing = errors.New("product is not in the cart")
	ErrInvalidCartID   = errors.New("invalid cart id")
)

// CartStore persists carts by id.
type CartStore interface {
	Get(ctx context.Context, cartID string) (*models.Cart, error)
	Save(ctx context.Context, cart *models.Cart) error
	Delete(ctx context.Context, cartID string) error
}

type CartService interface {
	Get(ctx context.Context, cartID string) (*models.Cart, error)
	Add(ctx context.Context, cartID string, productID int64) (*models.Cart, error)
	UpdateQuantity(ctx context.Context, cartID string, productID int64, quantity int) (*models.Cart, error)
	Remove(ctx context.Context, cartID string, productID int64) (*models.Cart, error)
	Clear(ctx context.Context, cartID string) (*models.Cart, error)
}

type cartService struct {
	store    CartStore
	products repositories.ProductRepository
}

// NewCartService returns a service whose calls fail with ErrCartUnavailable
// when store is nil.
func NewCartService(store CartStore, products repositories.ProductRepository) CartService {
	return &cartService{store: store, products: products}
}

func (s *cartService) load(ctx context.Context, cartID string, create bool) (*models.Cart, error) {
	if s.store == nil {
		return nil, ErrCartUnavailable
	}
	if cartID == "" {
		if !create {
			return &models.Cart{Items: []models.CartItem{}}, nil
		}
		cartID = uuid.NewString()
	} else if _, err := uuid.Parse(cartID); err != nil {
		return nil, ErrInvalidCartID
	}
	return s.store.Get(ctx, cartID)
}

func (s *cartService) Get(ctx context.Context, cartID string) (*models.Cart, error) {
	return s.load(ctx, cartID, false)
}

func (s *cartService) Add(ctx context.Context, cartID string, productID int64) (*models.Cart, error) {
	product, err := s.products.GetProductByID(ctx, productID)
	if err != nil {
		return nil, wrapNotFound(err, ErrProductNotFound)
	}
	if !product.IsActive {
		return nil, ErrProductNotFound
	}
	cart, err := s.load(ctx, cartID, true)
	if err != nil {
		return nil, err
	}
	cart.Add(models.CartItem{
		ProductID:   product.ID,
		Name:        product.Name,
		Price:       product.Price,
		SalePrice:   product.SalePrice,
		ImageURL:    product.ImageURL,
		ProductType: product.ProductType,
	})
	if err := s.store.Save(ctx, cart); err != nil {
		return nil, err
	}
	return cart, nil
}

func (s *cartService) UpdateQuantity(ctx context.Context, cartID string, productID int64, quantity int) (*models.Cart, error) {
	cart, err := s.load(ctx, cartID, false)
	if err != nil {
		return nil, err
	}
	if !cart.UpdateQuantity(productID, quantity) {
		return nil, fmt.Errorf("%w: product %d", ErrCartItemMissing, productID)
	}
	return cart, s.save(ctx, cart)
}

func (s *cartService) Remove(ctx context.Context, cartID string, productID int64) (*models.Cart, error) {
	cart, err := s.load(ctx, cartID, false)
	if err != nil {
		return nil, err
	}
	if !cart.Remove(productID) {
		return nil, fmt.Errorf("%w: product %d", ErrCartItemMissing, productID)
	}
	return cart, s.save(ctx, cart)
}

func (s *cartService) Clear(ctx context.Context, cartID string) (*models.Cart, error) {
	cart, err := s.load(ctx, cartID, false)
	if err != nil {
		return nil, err
	}
	cart.Clear()
	if cart.ID == "" {
		return cart, nil
	}
	return cart, s.store.Delete(ctx, cart.ID)
}

func (s *cartService) save(ctx context.Context, cart *models.Cart) error {
	if cart.ID == "" {
		return nil
	}
	return s.store.Save(ctx, cart)
}
