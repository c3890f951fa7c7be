package main

import (
	"os"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:  "freelance-catalog",
		Usage: "REST API каталога фриланс-маркетплейса",
		Commands: []*cli.Command{
			serveCommand,
			migrateCommand,
			seedCommand,
			tokenCommand,
		},
		DefaultCommand: "serve",
	}

	if err := app.Run(os.Args); err != nil {
		logrus.WithError(err).Fatal("main: приложение завершилось с ошибкой")
	}
}
