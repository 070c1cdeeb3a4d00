package main

import (
	"context"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/samcharles93/typelib/internal/config"
	"github.com/samcharles93/typelib/internal/logger"
)

var (
	configPath string
	logLevel   string
	logFormat  string
	debug      bool

	// settings is the merged configuration, filled by setup.
	settings = config.Default()
)

func configFlag() cli.Flag {
	return &cli.StringFlag{
		Name:        "config",
		Usage:       "path to config.yaml (default: user config dir)",
		Destination: &configPath,
	}
}

func loggingFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "log-level",
			Usage:       "log level (debug, info, warn, error)",
			Value:       "info",
			Destination: &logLevel,
		},
		&cli.StringFlag{
			Name:        "log-format",
			Usage:       "log format (pretty, json, text)",
			Value:       "pretty",
			Destination: &logFormat,
		},
		&cli.BoolFlag{
			Name:        "debug",
			Usage:       "enable debug logging (shorthand for --log-level=debug)",
			Destination: &debug,
		},
	}
}

// setup loads the config file, lets explicit flags win over it and puts
// the resulting logger on the context.
func setup(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	path := configPath
	if path == "" {
		path = config.Path()
	}
	cfg, err := config.Load(path)
	if err != nil {
		return ctx, err
	}
	applyLoggingConfig(cmd, &cfg)
	if err := cfg.Validate(); err != nil {
		return ctx, err
	}
	settings = cfg

	log, err := logger.NewFromConfig(cfg.LogFormat, cfg.LogLevel, os.Stderr)
	if err != nil {
		return ctx, err
	}
	log.Debug("configured", "config", path, "level", cfg.LogLevel, "format", cfg.LogFormat)
	return logger.WithContext(ctx, log), nil
}

func applyLoggingConfig(c *cli.Command, cfg *config.Config) {
	if c.IsSet("log-level") || cfg.LogLevel == "" {
		cfg.LogLevel = logLevel
	}
	if c.IsSet("log-format") || cfg.LogFormat == "" {
		cfg.LogFormat = logFormat
	}
	if debug {
		cfg.LogLevel = "debug"
	}
}
