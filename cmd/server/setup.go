package main

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/ignatzorin/freelance-catalog/internal/config"
	"github.com/ignatzorin/freelance-catalog/internal/db"
	"github.com/ignatzorin/freelance-catalog/internal/logger"
	"github.com/ignatzorin/freelance-catalog/internal/storage"
)

// bootstrap читает конфигурацию и настраивает логгер.
func bootstrap() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	logger.Init(cfg.LogLevel, cfg.Env)
	return cfg, nil
}

func connect(ctx context.Context, cfg *config.Config) (*sqlx.DB, error) {
	return db.NewPostgres(ctx, cfg.DatabaseURL, db.PoolOptions{
		MaxOpenConns:    cfg.DBMaxOpenConns,
		MaxIdleConns:    cfg.DBMaxIdleConns,
		ConnMaxLifetime: cfg.DBConnLifetime,
	})
}

// openStorage создаёт хранилище файлов по STORAGE_DRIVER и готовит бакет.
func openStorage(ctx context.Context, cfg config.StorageConfig) (storage.ObjectStorage, error) {
	var (
		objects storage.ObjectStorage
		err     error
	)
	switch cfg.Driver {
	case "s3":
		objects, err = storage.NewS3Storage(ctx, storage.S3Options{
			Endpoint:  cfg.Endpoint,
			Region:    cfg.Region,
			AccessKey: cfg.AccessKey,
			SecretKey: cfg.SecretKey,
		})
	default:
		objects, err = storage.NewLocalStorage(cfg.LocalPath, cfg.MaxUploadMB)
	}
	if err != nil {
		return nil, err
	}

	if err := objects.EnsureBucket(ctx, cfg.Bucket); err != nil {
		return nil, fmt.Errorf("main: не удалось подготовить бакет %q: %w", cfg.Bucket, err)
	}
	return objects, nil
}

// safeClose закрывает соединение с базой.
func safeClose(conn *sqlx.DB) {
	if err := conn.Close(); err != nil {
		logger.L().WithError(err).Warn("main: ошибка закрытия базы")
	}
}
