package cache

import (
	"context"
	"fmt"
	"time"

	"game_store_backend/internal/config"

	"github.com/redis/go-redis/v9"
)

// New connects to redis and verifies the connection with a short ping.
func New(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	const op = "cache.New"

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	if _, err := client.Ping(pingCtx).Result(); err != nil {
		client.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return client, nil
}
