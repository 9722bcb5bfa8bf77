package config

import (
	"fmt"
	"time"

	pkgconfig "github.com/fjod/fitlyf/pkg/config"
)

const EnvPrefix = "PRODUCTS_"

type Config struct {
	App struct {
		Name     string `koanf:"name"`
		HTTPAddr string `koanf:"http_addr"`
		LogLevel string `koanf:"log_level"`
		LogFile  string `koanf:"log_file"`
	} `koanf:"app"`

	HTTP struct {
		RequestTimeout  time.Duration `koanf:"request_timeout"`
		ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
	} `koanf:"http"`

	DB struct {
		Path           string `koanf:"path"`
		MigrationsPath string `koanf:"migrations_path"`
	} `koanf:"db"`
}

func Default() *Config {
	c := &Config{}
	c.App.Name = "product-service"
	c.App.HTTPAddr = ":8082"
	c.App.LogLevel = "info"
	c.HTTP.RequestTimeout = 5 * time.Second
	c.HTTP.ShutdownTimeout = 10 * time.Second
	c.DB.Path = "./data/products.db"
	c.DB.MigrationsPath = "./product-service/internal/repository/migrations"
	return c
}

// Load reads defaults, then path (if it exists), then PRODUCTS_* variables.
func Load(path string) (*Config, error) {
	cfg := Default()
	if err := pkgconfig.Load(cfg, path, EnvPrefix); err != nil {
		return nil, err
	}
	if cfg.App.HTTPAddr == "" || cfg.DB.Path == "" {
		return nil, fmt.Errorf("app.http_addr and db.path required")
	}
	return cfg, nil
}
