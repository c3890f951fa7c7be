package main

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/ignatzorin/freelance-catalog/internal/app"
	"github.com/ignatzorin/freelance-catalog/internal/db"
	"github.com/ignatzorin/freelance-catalog/internal/seed"
	"github.com/ignatzorin/freelance-catalog/internal/service"
)

var seedCommand = &cli.Command{
	Name:  "seed",
	Usage: "Наполнить справочники демо-данными",
	Flags: []cli.Flag{
		&cli.IntFlag{Name: "categories", Value: seed.DefaultCounts.Categories},
		&cli.IntFlag{Name: "tags", Value: seed.DefaultCounts.Tags},
		&cli.IntFlag{Name: "countries", Value: seed.DefaultCounts.Countries},
		&cli.Int64Flag{Name: "rand-seed", Usage: "Зерно генератора, 0 означает случайное"},
	},
	Action: func(c *cli.Context) error {
		cfg, err := bootstrap()
		if err != nil {
			return err
		}
		if err := db.RunMigrations(cfg.DatabaseURL); err != nil {
			return fmt.Errorf("seed: ошибка миграций: %w", err)
		}

		conn, err := connect(c.Context, cfg)
		if err != nil {
			return err
		}
		defer safeClose(conn)

		counts := seed.DefaultCounts
		counts.Categories = c.Int("categories")
		counts.Tags = c.Int("tags")
		counts.Countries = c.Int("countries")

		ctx := service.WithLogin(c.Context, "seed")
		res, err := app.NewServices(conn, app.Options{}).Seeder(c.Int64("rand-seed")).Run(ctx, counts)
		if err != nil {
			return err
		}

		fmt.Fprintf(c.App.Writer, "categories=%d subcategories=%d skills=%d offerTypes=%d tags=%d countries=%d\n",
			res.Categories, res.Subcategories, res.Skills, res.OfferTypes, res.Tags, res.Countries)
		return nil
	},
}
