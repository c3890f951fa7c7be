package db

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/sirupsen/logrus"

	"github.com/ignatzorin/freelance-catalog/internal/logger"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Migrator применяет встроенные в бинарник миграции схемы.
type Migrator struct {
	migrate *migrate.Migrate
	log     *logrus.Entry
}

// NewMigrator открывает отдельное соединение: драйвер миграций закрывает его вместе с собой.
func NewMigrator(dsn string) (*Migrator, error) {
	sqlDB, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("migrate: не удалось открыть соединение: %w", err)
	}

	driver, err := postgres.WithInstance(sqlDB, &postgres.Config{
		MigrationsTable: "schema_migrations",
	})
	if err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("migrate: не удалось создать драйвер postgres: %w", err)
	}

	source, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("migrate: не удалось прочитать встроенные миграции: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", source, "postgres", driver)
	if err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("migrate: не удалось создать мигратор: %w", err)
	}

	return &Migrator{
		migrate: m,
		log:     logger.L().WithField("component", "migrator"),
	}, nil
}

// Up применяет все новые миграции.
func (m *Migrator) Up() error {
	m.log.Info("применяем миграции")

	if err := m.migrate.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			m.log.Info("новых миграций нет")
			return nil
		}
		return fmt.Errorf("migrate: ошибка применения миграций: %w", err)
	}

	m.log.Info("миграции применены")
	return nil
}

// Down откатывает все миграции.
func (m *Migrator) Down() error {
	m.log.Warn("откатываем все миграции")

	if err := m.migrate.Down(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			m.log.Info("откатывать нечего")
			return nil
		}
		return fmt.Errorf("migrate: ошибка отката миграций: %w", err)
	}
	return nil
}

// Version возвращает текущую версию схемы.
func (m *Migrator) Version() (uint, bool, error) {
	version, dirty, err := m.migrate.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, nil
	}
	return version, dirty, err
}

// Close закрывает источник и соединение мигратора.
func (m *Migrator) Close() error {
	srcErr, dbErr := m.migrate.Close()
	return errors.Join(srcErr, dbErr)
}

// RunMigrations применяет миграции и закрывает мигратор.
func RunMigrations(dsn string) error {
	m, err := NewMigrator(dsn)
	if err != nil {
		return err
	}
	defer func() {
		if err := m.Close(); err != nil {
			m.log.WithError(err).Warn("не удалось закрыть мигратор")
		}
	}()
	return m.Up()
}
