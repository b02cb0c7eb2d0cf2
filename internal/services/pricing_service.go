package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"game_store_backend/internal/cache"
	"game_store_backend/internal/models"
	"game_store_backend/internal/repositories"
	"game_store_backend/pkg/utils"
)

var (
	ErrPricingNotFound   = errors.New("pricing not found")
	ErrPricingValidation = errors.New("pricing validation error")
	ErrPricingInUse      = errors.New("pricing is referenced by sessions or consoles")
	ErrPricingMismatch   = errors.New("pricing does not match console type")
)

type CreatePricingRequest struct {
	Name                string  `json:"name" binding:"required"`
	NameFr              *string `json:"name_fr"`
	NameAr              *string `json:"name_ar"`
	ConsoleType         string  `json:"console_type" binding:"required"`
	PriceType           string  `json:"price_type" binding:"required"`
	Price               float64 `json:"price"`
	GameDurationMinutes *int    `json:"game_duration_minutes"`
	ExtraTimePrice      float64 `json:"extra_time_price"`
	PointsEarned        int     `json:"points_earned"`
	IsActive            *bool   `json:"is_active"`
	SortOrder           int     `json:"sort_order"`
}

type UpdatePricingRequest struct {
	Name                *string  `json:"name"`
	NameFr              *string  `json:"name_fr"`
	NameAr              *string  `json:"name_ar"`
	ConsoleType         *string  `json:"console_type"`
	PriceType           *string  `json:"price_type"`
	Price               *float64 `json:"price"`
	GameDurationMinutes *int     `json:"game_duration_minutes"`
	ExtraTimePrice      *float64 `json:"extra_time_price"`
	PointsEarned        *int     `json:"points_earned"`
	IsActive            *bool    `json:"is_active"`
	SortOrder           *int     `json:"sort_order"`
}

type PricingService interface {
	ListActive(ctx context.Context, consoleType *string) ([]models.Pricing, error)
	ListAll(ctx context.Context, consoleType *string) ([]models.Pricing, error)
	GetPricing(ctx context.Context, id int64) (*models.Pricing, error)
	CreatePricing(ctx context.Context, req CreatePricingRequest) (*models.Pricing, error)
	UpdatePricing(ctx context.Context, id int64, req UpdatePricingRequest) (*models.Pricing, error)
	DeletePricing(ctx context.Context, id int64) error
}

type pricingService struct {
	repo  repositories.PricingRepository
	db    repositories.SQLExecutor
	cache *cache.Cache
}

func NewPricingService(repo repositories.PricingRepository, db repositories.SQLExecutor, c *cache.Cache) PricingService {
	return &pricingService{repo: repo, db: db, cache: c}
}

func validatePricing(p *models.Pricing) error {
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrPricingValidation)
	}
	if !models.IsValidConsoleType(p.ConsoleType) {
		return fmt.Errorf("%w: console type must be ps4 or ps5", ErrPricingValidation)
	}
	if !models.IsValidPriceType(p.PriceType) {
		return fmt.Errorf("%w: price type must be hourly or per_game", ErrPricingValidation)
	}
	if p.Price < 0 || p.ExtraTimePrice < 0 {
		return fmt.Errorf("%w: prices cannot be negative", ErrPricingValidation)
	}
	if p.PointsEarned < 0 {
		return fmt.Errorf("%w: points earned cannot be negative", ErrPricingValidation)
	}
	if p.GameDurationMinutes != nil && *p.GameDurationMinutes <= 0 {
		return fmt.Errorf("%w: game duration must be positive", ErrPricingValidation)
	}
	return nil
}

func (s *pricingService) ListActive(ctx context.Context, consoleType *string) ([]models.Pricing, error) {
	variant := "active"
	if consoleType != nil {
		variant += ":" + *consoleType
	}
	return cache.GetOrLoad(ctx, s.cache, tablePricing, variant, func(ctx context.Context) ([]models.Pricing, error) {
		return s.repo.GetPricings(ctx, consoleType, true)
	})
}

func (s *pricingService) ListAll(ctx context.Context, consoleType *string) ([]models.Pricing, error) {
	return s.repo.GetPricings(ctx, consoleType, false)
}

func (s *pricingService) GetPricing(ctx context.Context, id int64) (*models.Pricing, error) {
	p, err := s.repo.GetPricingByID(ctx, id)
	if err != nil {
		return nil, wrapNotFound(err, ErrPricingNotFound)
	}
	return p, nil
}

func (s *pricingService) CreatePricing(ctx context.Context, req CreatePricingRequest) (*models.Pricing, error) {
	p := &models.Pricing{
		Name:                strings.TrimSpace(req.Name),
		NameFr:              req.NameFr,
		NameAr:              req.NameAr,
		ConsoleType:         req.ConsoleType,
		PriceType:           req.PriceType,
		Price:               utils.RoundMoney(req.Price),
		GameDurationMinutes: req.GameDurationMinutes,
		ExtraTimePrice:      utils.RoundMoney(req.ExtraTimePrice),
		PointsEarned:        req.PointsEarned,
		IsActive:            req.IsActive == nil || *req.IsActive,
		SortOrder:           req.SortOrder,
	}
	if err := validatePricing(p); err != nil {
		return nil, err
	}
	if _, err := s.repo.CreatePricing(ctx, s.db, p); err != nil {
		return nil, err
	}
	s.cache.Invalidate(ctx, tablePricing)
	return s.repo.GetPricingByID(ctx, p.ID)
}

func (s *pricingService) UpdatePricing(ctx context.Context, id int64, req UpdatePricingRequest) (*models.Pricing, error) {
	p, err := s.repo.GetPricingByID(ctx, id)
	if err != nil {
		return nil, wrapNotFound(err, ErrPricingNotFound)
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
	if req.ConsoleType != nil {
		p.ConsoleType = *req.ConsoleType
	}
	if req.PriceType != nil {
		p.PriceType = *req.PriceType
	}
	if req.Price != nil {
		p.Price = utils.RoundMoney(*req.Price)
	}
	if req.GameDurationMinutes != nil {
		p.GameDurationMinutes = req.GameDurationMinutes
	}
	if req.ExtraTimePrice != nil {
		p.ExtraTimePrice = utils.RoundMoney(*req.ExtraTimePrice)
	}
	if req.PointsEarned != nil {
		p.PointsEarned = *req.PointsEarned
	}
	if req.IsActive != nil {
		p.IsActive = *req.IsActive
	}
	if req.SortOrder != nil {
		p.SortOrder = *req.SortOrder
	}
	if err := validatePricing(p); err != nil {
		return nil, err
	}
	if err := s.repo.UpdatePricing(ctx, s.db, p); err != nil {
		return nil, wrapNotFound(err, ErrPricingNotFound)
	}
	s.cache.Invalidate(ctx, tablePricing)
	return s.repo.GetPricingByID(ctx, id)
}

func (s *pricingService) DeletePricing(ctx context.Context, id int64) error {
	err := s.repo.DeletePricing(ctx, s.db, id)
	switch {
	case errors.Is(err, repositories.ErrForeignKey):
		return ErrPricingInUse
	case err != nil:
		return wrapNotFound(err, ErrPricingNotFound)
	}
	s.cache.Invalidate(ctx, tablePricing)
	return nil
}
