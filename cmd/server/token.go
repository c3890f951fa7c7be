package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/ignatzorin/freelance-catalog/internal/service"
)

var tokenCommand = &cli.Command{
	Name:  "token",
	Usage: "Выпустить access токен для вызова API",
	Flags: []cli.Flag{
		&cli.StringFlag{Name: "login", Required: true},
		&cli.StringFlag{Name: "role", Value: service.RoleAdmin},
		&cli.DurationFlag{Name: "ttl", Usage: "Время жизни, по умолчанию ACCESS_TOKEN_TTL"},
	},
	Action: func(c *cli.Context) error {
		cfg, err := bootstrap()
		if err != nil {
			return err
		}
		if cfg.JWTSecret == "" {
			return errors.New("token: JWT_SECRET не задан")
		}

		ttl := cfg.AccessTokenTTL
		if c.Duration("ttl") > 0 {
			ttl = c.Duration("ttl")
		}

		token, expires, err := service.NewTokenManager(cfg.JWTSecret, ttl).Issue(c.String("login"), c.String("role"))
		if err != nil {
			return err
		}

		fmt.Fprintln(c.App.Writer, token)
		fmt.Fprintf(c.App.ErrWriter, "expires: %s\n", expires.Format(time.RFC3339))
		return nil
	},
}
