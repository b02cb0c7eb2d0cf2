package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"game_store_backend/internal/cache"
	"game_store_backend/internal/config"
	"game_store_backend/internal/database"
	"game_store_backend/internal/notify"
	"game_store_backend/internal/realtime"
	"game_store_backend/internal/router"
	"game_store_backend/pkg/utils"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"
)

const (
	publicWriteLimit  = 10
	publicWriteWindow = time.Minute
	shutdownTimeout   = 15 * time.Second
)

// @title       Game Store Zarzis API
// @version     1.0
// @description Gaming lounge, shop and repair desk backend.
// @BasePath    /
// @securityDefinitions.apikey BearerAuth
// @in   header
// @name Authorization
func main() {
	cfg, err := config.New()
	if err != nil {
		utils.InitLogger("info", "console")
		utils.LogError(err, "Failed to load configuration")
		os.Exit(1)
	}
	utils.InitLogger(cfg.Log.Level, cfg.Log.Format)

	if err := run(cfg); err != nil {
		utils.LogError(err, "Server stopped with error")
		os.Exit(1)
	}
}

func run(cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.Open(ctx, cfg.Postgres)
	if err != nil {
		return err
	}
	defer db.Close()
	utils.LogInfo("Database initialized", map[string]interface{}{"host": cfg.Postgres.Host, "name": cfg.Postgres.Name})

	if cfg.Postgres.ApplySchema {
		if err := database.ApplySchema(ctx, db, cfg.Postgres.SchemaPath); err != nil {
			return err
		}
	}

	deps := router.Deps{
		DB:             db,
		AllowedOrigins: cfg.Server.CORSAllowedOrigins,
		Tokens:         utils.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTL, cfg.Auth.RefreshTokenTTL),
		Hub:            realtime.NewHub(cfg.Server.CORSAllowedOrigins),
	}

	// Redis is optional: without it the cache, carts and rate limits are off.
	var changes *cache.ChangesPubSub
	rdb, err := cache.New(ctx, cfg.Redis)
	if err != nil {
		utils.LogWarn(err, "Redis unavailable, running without cache", map[string]interface{}{"addr": cfg.Redis.Addr})
	} else {
		defer rdb.Close()
		deps.Redis = rdb
		deps.Cache = cache.NewCache(rdb)
		deps.Carts = cache.NewCartStore(rdb)
		deps.Limiter = cache.NewSlidingWindowLimiter(rdb, publicWriteLimit, publicWriteWindow).
			WithScope("admin_export", cache.Rule{Limit: 2, Window: time.Hour}).
			WithScope("admin_cleanup", cache.Rule{Limit: 5, Window: time.Hour})
		changes = cache.NewChangesPubSub(rdb)
	}

	notifier, err := notify.New(cfg.Notify, cfg.NATS, cfg.Auth.ServiceTokenSecret)
	if err != nil {
		return err
	}
	defer notifier.Close()
	deps.Notifier = notifier

	if !cfg.Server.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}
	srv := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           router.New(deps),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		utils.LogInfo("Server starting", map[string]interface{}{"addr": srv.Addr, "env": cfg.Server.Env})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		return startRealtime(gctx, cfg, deps, rdb, changes)
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		utils.LogInfo("Shutting down server")
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

// startRealtime runs the LISTEN connection. With redis the events fan out
// through pub/sub so every API instance sees them; otherwise they go
// straight to the local hub.
func startRealtime(ctx context.Context, cfg *config.Config, deps router.Deps, rdb *redis.Client, changes *cache.ChangesPubSub) error {
	if rdb == nil {
		return realtime.NewListener(cfg.Postgres.DSN(), deps.Cache, deps.Hub).Run(ctx)
	}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return realtime.NewListener(cfg.Postgres.DSN(), deps.Cache, changes).Run(gctx)
	})
	g.Go(func() error {
		if err := deps.Hub.Consume(gctx, changes); err != nil && gctx.Err() == nil {
			return err
		}
		return nil
	})
	return g.Wait()
}
