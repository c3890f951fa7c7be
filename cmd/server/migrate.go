package main

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/ignatzorin/freelance-catalog/internal/db"
	"github.com/ignatzorin/freelance-catalog/internal/logger"
)

var migrateCommand = &cli.Command{
	Name:  "migrate",
	Usage: "Управление схемой базы",
	Subcommands: []*cli.Command{
		{
			Name:  "up",
			Usage: "Применить все новые миграции",
			Action: func(c *cli.Context) error {
				return withMigrator(func(m *db.Migrator) error { return m.Up() })
			},
		},
		{
			Name:  "down",
			Usage: "Откатить все миграции",
			Action: func(c *cli.Context) error {
				return withMigrator(func(m *db.Migrator) error { return m.Down() })
			},
		},
		{
			Name:  "version",
			Usage: "Показать текущую версию схемы",
			Action: func(c *cli.Context) error {
				return withMigrator(func(m *db.Migrator) error {
					version, dirty, err := m.Version()
					if err != nil {
						return err
					}
					fmt.Fprintf(c.App.Writer, "version=%d dirty=%t\n", version, dirty)
					return nil
				})
			},
		},
	},
}

func withMigrator(fn func(m *db.Migrator) error) error {
	cfg, err := bootstrap()
	if err != nil {
		return err
	}

	m, err := db.NewMigrator(cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer func() {
		if err := m.Close(); err != nil {
			logger.L().WithError(err).Warn("migrate: не удалось закрыть мигратор")
		}
	}()

	return fn(m)
}
