package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/ignatzorin/freelance-catalog/internal/app"
	"github.com/ignatzorin/freelance-catalog/internal/db"
	"github.com/ignatzorin/freelance-catalog/internal/goroutine"
	"github.com/ignatzorin/freelance-catalog/internal/http/handlers"
	"github.com/ignatzorin/freelance-catalog/internal/http/middleware"
	"github.com/ignatzorin/freelance-catalog/internal/http/response"
	"github.com/ignatzorin/freelance-catalog/internal/http/router"
	"github.com/ignatzorin/freelance-catalog/internal/logger"
	"github.com/ignatzorin/freelance-catalog/internal/service"
	"github.com/ignatzorin/freelance-catalog/internal/ws"
)

var serveCommand = &cli.Command{
	Name:  "serve",
	Usage: "Запустить HTTP сервер",
	Flags: []cli.Flag{
		&cli.BoolFlag{
			Name:  "skip-migrations",
			Usage: "Не применять миграции при старте",
		},
	},
	Action: serve,
}

func serve(cCtx *cli.Context) error {
	// Готовим контекст для graceful shutdown.
	ctx, stop := signal.NotifyContext(cCtx.Context, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := bootstrap()
	if err != nil {
		return err
	}
	log := logger.L()

	if !cCtx.Bool("skip-migrations") {
		if err := db.RunMigrations(cfg.DatabaseURL); err != nil {
			return fmt.Errorf("main: ошибка миграций: %w", err)
		}
	}

	conn, err := connect(ctx, cfg)
	if err != nil {
		return err
	}
	defer safeClose(conn)

	objects, err := openStorage(ctx, cfg.Storage)
	if err != nil {
		return err
	}

	// Вебсокеты: лента изменений каталога.
	hub := ws.NewHub(ctx)
	goroutine.SafeGo("ws_hub", hub.Run)

	var counts *service.CountCache
	if cfg.CountCacheTTL > 0 {
		counts = service.NewCountCache(cfg.CountCacheTTL)
		goroutine.SafeGoWithContext(ctx, "count_cache", counts.Run)
	}

	services := app.NewServices(conn, app.Options{
		Objects:     objects,
		Bucket:      cfg.Storage.Bucket,
		MaxUploadMB: cfg.Storage.MaxUploadMB,
		Publisher:   hub,
		CountCache:  counts,
	})

	alerts := response.NewAlerts(cfg.AppName)
	resources := append(services.Handlers(alerts),
		handlers.NewWSHandler(hub, cfg.AllowedOrigins, services.Resources()...))

	var tokens middleware.TokenParser
	if cfg.JWTSecret != "" {
		tokens = service.NewTokenManager(cfg.JWTSecret, cfg.AccessTokenTTL)
	}

	health := handlers.NewHealthHandler(conn).WithCheck("storage", func(ctx context.Context) error {
		return objects.EnsureBucket(ctx, cfg.Storage.Bucket)
	})

	engine := router.SetupRouter(cfg, health, tokens, resources...)

	server := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Завершаем сервер при получении сигнала.
	goroutine.SafeGo("shutdown", func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.WithError(err).Error("main: ошибка остановки http сервера")
		}
	})

	log.WithField("port", cfg.HTTPPort).WithField("storage", cfg.Storage.Driver).
		Info("main: HTTP сервер запущен")

	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("main: сервер завершился с ошибкой: %w", err)
	}
	log.Info("main: сервер остановлен")
	return nil
}
