package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Simplici0/shadequote/internal/auth"
	"github.com/Simplici0/shadequote/internal/config"
	"github.com/Simplici0/shadequote/internal/db"
	"github.com/Simplici0/shadequote/internal/logger"
	"github.com/Simplici0/shadequote/internal/metrics"
	"github.com/Simplici0/shadequote/internal/migrations"
	"github.com/Simplici0/shadequote/internal/priceconfig"
	"github.com/Simplici0/shadequote/internal/pricing"
	"github.com/Simplici0/shadequote/internal/quotes"
	"github.com/Simplici0/shadequote/internal/seed"
)

const (
	serviceName     = "shadequote"
	shutdownTimeout = 10 * time.Second
)

func main() {
	logg := logger.New(logger.Options{ServiceName: serviceName})

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: serviceName,
		Level:       logger.ParseLevel(cfg.LogLevel),
		Format:      cfg.LogFormat,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logg); err != nil {
		logg.Error(ctx, "server stopped unexpectedly", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, logg *logger.Logger) error {
	database, err := db.Open(ctx, cfg.DBPath)
	if err != nil {
		return err
	}
	defer func() {
		if err := database.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if cfg.IsDev() {
		if err := migrations.Up(ctx, database); err != nil {
			return err
		}
	}

	stats, err := seed.Run(ctx, database)
	if err != nil {
		return err
	}
	logg.Info(logg.WithField(ctx, "inserts", stats.Inserts), "startup seed complete")

	authService, err := auth.NewService(auth.Options{
		Username:     cfg.AdminUsername,
		Password:     cfg.AdminPassword,
		Secret:       cfg.SessionSecret,
		TTL:          cfg.SessionTTL,
		SecureCookie: cfg.IsProd(),
	})
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	recorder := metrics.New(reg)

	store := priceconfig.NewStore(database)
	engine := pricing.NewEngine(store)

	srv := &server{
		logg:     logg,
		auth:     authService,
		config:   store,
		quotes:   quotes.NewService(quotes.NewRepository(database), engine, recorder, logg),
		metrics:  recorder,
		exporter: promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}),
		now:      time.Now,
	}

	httpServer := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           srv.routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx = logg.WithFields(ctx, map[string]any{
		"env":  cfg.AppEnv,
		"addr": httpServer.Addr,
	})
	logg.Info(ctx, "starting api server")

	errCh := make(chan error, 1)
	go func() {
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logg.Info(ctx, "shutting down api server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return httpServer.Shutdown(shutdownCtx)
}
