package main

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v5"
	"github.com/labstack/echo/v5/middleware"
	"github.com/urfave/cli/v3"

	"github.com/samcharles93/typelib/internal/api"
	"github.com/samcharles93/typelib/internal/config"
	"github.com/samcharles93/typelib/internal/logger"
)

func serveCmd() *cli.Command {
	var (
		addr        string
		readTimeout time.Duration
	)

	return &cli.Command{
		Name:  "serve",
		Usage: "Serve the validation REST API",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "addr",
				Usage:       "listen address",
				Value:       "127.0.0.1:8080",
				Destination: &addr,
			},
			&cli.DurationFlag{
				Name:        "read-timeout",
				Usage:       "read timeout",
				Value:       30 * time.Second,
				Destination: &readTimeout,
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			log := logger.FromContext(ctx)
			applyServeConfig(cmd, settings.Server, &addr, &readTimeout)

			e := newEcho(settings.Server, log)
			log.Info("starting server", "address", addr, "max_body", settings.Server.MaxBodyBytes)
			sc := echo.StartConfig{
				Address: addr,
				BeforeServeFunc: func(srv *http.Server) error {
					srv.ReadHeaderTimeout = readTimeout
					srv.ReadTimeout = readTimeout
					return nil
				},
			}
			return sc.Start(ctx, e)
		},
	}
}

// applyServeConfig applies config file values to serve flags that were not
// given explicitly.
func applyServeConfig(c *cli.Command, cfg config.Server, addr *string, readTimeout *time.Duration) {
	if cfg.Address != "" && !c.IsSet("addr") {
		*addr = cfg.Address
	}
	if cfg.ReadTimeout > 0 && !c.IsSet("read-timeout") {
		*readTimeout = cfg.ReadTimeout
	}
}

func newEcho(cfg config.Server, log logger.Logger) *echo.Echo {
	server := api.NewServer(api.NewReportStore(cfg.CacheSize), log.With("component", "api"), api.Options{
		MaxBodyBytes: cfg.MaxBodyBytes,
		RateLimit:    cfg.RateLimit,
		RateBurst:    cfg.RateBurst,
	})
	e := echo.New()
	e.Use(middleware.RequestLogger())
	e.Use(middleware.Recover())
	server.Register(e)
	return e
}
