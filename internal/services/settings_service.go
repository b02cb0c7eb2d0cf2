package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"game_store_backend/internal/cache"
	"game_store_backend/internal/models"
	"game_store_backend/internal/repositories"
)

var (
	ErrSettingNotFound   = errors.New("setting not found")
	ErrSettingValidation = errors.New("setting validation error")
)

// SettingService serves store settings and their typed view.
type SettingService interface {
	GetAll(ctx context.Context) (map[string]json.RawMessage, error)
	Upsert(ctx context.Context, key string, value json.RawMessage, updatedBy int64) (*models.StoreSetting, error)
	Delete(ctx context.Context, key string) error
	StoreConfig(ctx context.Context) (models.StoreConfig, error)
	Theme(ctx context.Context) (models.Theme, error)
	Features(ctx context.Context) (models.FeatureFlags, error)
}

type settingService struct {
	repo  repositories.SettingRepository
	cache *cache.Cache
}

func NewSettingService(repo repositories.SettingRepository, c *cache.Cache) SettingService {
	return &settingService{repo: repo, cache: c}
}

func (s *settingService) GetAll(ctx context.Context) (map[string]json.RawMessage, error) {
	return cache.GetOrLoad(ctx, s.cache, tableStoreSettings, "all", func(ctx context.Context) (map[string]json.RawMessage, error) {
		rows, err := s.repo.GetAll(ctx)
		if err != nil {
			return nil, err
		}
		out := make(map[string]json.RawMessage, len(rows))
		for _, r := range rows {
			out[r.Key] = r.Value
		}
		return out, nil
	})
}

func (s *settingService) Upsert(ctx context.Context, key string, value json.RawMessage, updatedBy int64) (*models.StoreSetting, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return nil, fmt.Errorf("%w: key is required", ErrSettingValidation)
	}
	if len(value) == 0 || !json.Valid(value) {
		return nil, fmt.Errorf("%w: value must be valid JSON", ErrSettingValidation)
	}
	setting, err := s.repo.Upsert(ctx, key, value, &updatedBy)
	if err != nil {
		return nil, err
	}
	s.cache.Invalidate(ctx, tableStoreSettings)
	return setting, nil
}

func (s *settingService) Delete(ctx context.Context, key string) error {
	if err := s.repo.Delete(ctx, key); err != nil {
		return wrapNotFound(err, ErrSettingNotFound)
	}
	s.cache.Invalidate(ctx, tableStoreSettings)
	return nil
}

func (s *settingService) StoreConfig(ctx context.Context) (models.StoreConfig, error) {
	raw, err := s.GetAll(ctx)
	if err != nil {
		return models.StoreConfig{}, err
	}
	return models.ParseStoreConfig(raw), nil
}

func (s *settingService) Theme(ctx context.Context) (models.Theme, error) {
	cfg, err := s.StoreConfig(ctx)
	if err != nil {
		return models.Theme{}, err
	}
	return cfg.Theme, nil
}

func (s *settingService) Features(ctx context.Context) (models.FeatureFlags, error) {
	cfg, err := s.StoreConfig(ctx)
	if err != nil {
		return models.FeatureFlags{}, err
	}
	return cfg.Features(), nil
}
