package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"game_store_backend/internal/config"
	"game_store_backend/internal/notifier"
	"game_store_backend/internal/notify"
	"game_store_backend/pkg/utils"

	"golang.org/x/sync/errgroup"
)

func main() {
	cfg, err := config.New()
	if err != nil {
		utils.InitLogger("info", "console")
		utils.LogError(err, "Failed to load configuration")
		os.Exit(1)
	}
	utils.InitLogger(cfg.Log.Level, cfg.Log.Format)

	if err := run(cfg); err != nil {
		utils.LogError(err, "Notifier stopped with error")
		os.Exit(1)
	}
}

func run(cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	nc := cfg.Notifier
	if nc.SMTPHost == "" {
		utils.LogWarn(notifier.ErrMailerNotConfigured, "SMTP_HOST is empty, every send will fail")
	}
	mailer := notifier.NewSMTPMailer(notifier.SMTPConfig{
		Host:      nc.SMTPHost,
		Port:      nc.SMTPPort,
		User:      nc.SMTPUser,
		Password:  nc.SMTPPassword,
		FromEmail: nc.FromEmail,
		FromName:  nc.FromName,
	})

	var deliveries notifier.DeliveryLog
	if nc.MongoURI != "" {
		mlog, err := notifier.NewMongoLog(ctx, nc.MongoURI, nc.MongoDB)
		if err != nil {
			utils.LogWarn(err, "Delivery log disabled")
		} else {
			defer mlog.Close(context.Background())
			deliveries = mlog
		}
	}

	svc := notifier.NewService(mailer, deliveries, notifier.Options{
		StoreEmail:   nc.StoreEmail,
		ResetBaseURL: nc.ResetBaseURL,
	})

	if cfg.Notify.Transport == "nats" {
		conn, err := notify.Connect(cfg.NATS.URL, cfg.NATS.Token, "game-store-notifier")
		if err != nil {
			return err
		}
		defer conn.Drain()
		sub, err := notifier.Subscribe(conn, svc)
		if err != nil {
			return err
		}
		defer sub.Drain()
		utils.LogInfo("NATS intake subscribed", map[string]interface{}{"url": conn.ConnectedUrl()})
	}

	handler := notifier.NewHandler(svc, cfg.Auth.ServiceTokenSecret)
	srv := &http.Server{
		Addr: cfg.Notifier.Addr(),
		Handler: notifier.NewRouter(handler, notifier.RouterConfig{
			RateLimit:      nc.RateLimit,
			AllowedOrigins: cfg.Server.CORSAllowedOrigins,
		}),
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		utils.LogInfo("Notifier starting", map[string]interface{}{"addr": srv.Addr})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
