package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"game_store_backend/internal/models"
	"game_store_backend/internal/repositories"
)

// Cached table names; they match the realtime notification payloads.
const (
	tableConsoles       = "consoles"
	tablePricing        = "pricing"
	tableProducts       = "products"
	tableServiceCatalog = "services_catalog"
	tableBlogPosts      = "blog_posts"
	tableStoreSettings  = "store_settings"
)

// notifyTimeout bounds notifier calls whose outcome is reported to the caller.
const notifyTimeout = 30 * time.Second

// ErrNotifyTimeout is returned when the notifier did not answer in time.
var ErrNotifyTimeout = errors.New("notification service timed out")

// ConfigProvider gives services the typed store settings.
type ConfigProvider interface {
	StoreConfig(ctx context.Context) (models.StoreConfig, error)
}

// StaticConfig serves a fixed configuration.
type StaticConfig models.StoreConfig

func (s StaticConfig) StoreConfig(context.Context) (models.StoreConfig, error) {
	return models.StoreConfig(s), nil
}

func normalizePage(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}
	if pageSize > 100 {
		pageSize = 100
	}
	return page, pageSize
}

// wrapNotFound turns repositories.ErrNotFound into the service sentinel.
func wrapNotFound(err error, notFound error) error {
	if errors.Is(err, repositories.ErrNotFound) {
		return notFound
	}
	return err
}

// notifyErr classifies a notifier error after a bounded call.
func notifyErr(ctx context.Context, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(ctx.Err(), context.DeadlineExceeded) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", ErrNotifyTimeout, err)
	}
	return err
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
