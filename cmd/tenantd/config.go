package main

import (
	"log/slog"
	"os"

	"github.com/dmitrymomot/tenancy/pkg/config"
	"github.com/dmitrymomot/tenancy/pkg/httpserver"
	"github.com/dmitrymomot/tenancy/pkg/logger"
	"github.com/dmitrymomot/tenancy/pkg/pg"
	"github.com/dmitrymomot/tenancy/pkg/redis"
	"github.com/dmitrymomot/tenancy/pkg/requestid"
	"github.com/dmitrymomot/tenancy/pkg/tenant"
)

type appConfig struct {
	Env  string `env:"APP_ENV" envDefault:"development"`
	Name string `env:"APP_NAME" envDefault:"tenantd"`

	// AdminToken guards /admin/tenants; empty leaves the admin API unmounted.
	AdminToken string `env:"ADMIN_TOKEN"`

	Tenant tenant.Config
	PG     pg.Config
	Redis  redis.Config
	HTTP   httpserver.Config
}

func loadConfig() (appConfig, error) {
	var cfg appConfig
	if err := config.Load(&cfg); err != nil {
		return appConfig{}, err
	}
	return cfg, nil
}

func newLogger(cfg appConfig) *slog.Logger {
	return logger.New(
		logger.WithOutput(os.Stderr),
		logger.WithEnvironment(cfg.Env, cfg.Name),
		logger.WithContextExtractors(
			requestid.LoggerExtractor(),
			tenant.LoggerExtractor(),
			tenant.SlugLoggerExtractor(),
		),
	)
}
