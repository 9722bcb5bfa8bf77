package config

import (
	"fmt"
	"time"

	"github.com/fjod/fitlyf/pkg/circuitbreaker"
	pkgconfig "github.com/fjod/fitlyf/pkg/config"
)

const EnvPrefix = "CART_"

type Config struct {
	App struct {
		Name     string `koanf:"name"`
		HTTPAddr string `koanf:"http_addr"`
		LogLevel string `koanf:"log_level"`
		LogFile  string `koanf:"log_file"`
	} `koanf:"app"`

	HTTP struct {
		ReadTimeout     time.Duration `koanf:"read_timeout"`
		WriteTimeout    time.Duration `koanf:"write_timeout"`
		IdleTimeout     time.Duration `koanf:"idle_timeout"`
		RequestTimeout  time.Duration `koanf:"request_timeout"`
		ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
		MaxBodyBytes    int64         `koanf:"max_body_bytes"`
	} `koanf:"http"`

	Storage struct {
		// Driver is one of memory, sqlite, redis, mongo.
		Driver     string        `koanf:"driver"`
		SQLitePath string        `koanf:"sqlite_path"`
		TTL        time.Duration `koanf:"ttl"`
	} `koanf:"storage"`

	Redis struct {
		Addr     string `koanf:"addr"`
		Password string `koanf:"password"`
		DB       int    `koanf:"db"`
	} `koanf:"redis"`

	Mongo struct {
		URI      string `koanf:"uri"`
		Database string `koanf:"database"`
	} `koanf:"mongo"`

	OrdersAPI struct {
		BaseURL string        `koanf:"base_url"`
		Timeout time.Duration `koanf:"timeout"`
	} `koanf:"orders_api"`

	CatalogAPI struct {
		BaseURL string        `koanf:"base_url"`
		Timeout time.Duration `koanf:"timeout"`
	} `koanf:"catalog_api"`

	Breaker circuitbreaker.Settings `koanf:"breaker"`

	Session struct {
		IdleTTL         time.Duration `koanf:"idle_ttl"`
		CleanupInterval time.Duration `koanf:"cleanup_interval"`
	} `koanf:"session"`

	Tracking struct {
		PollInterval time.Duration `koanf:"poll_interval"`
	} `koanf:"tracking"`
}

func Default() *Config {
	c := &Config{}
	c.App.Name = "cart-service"
	c.App.HTTPAddr = ":8080"
	c.App.LogLevel = "info"

	c.HTTP.ReadTimeout = 10 * time.Second
	c.HTTP.WriteTimeout = 30 * time.Second
	c.HTTP.IdleTimeout = 60 * time.Second
	c.HTTP.RequestTimeout = 15 * time.Second
	c.HTTP.ShutdownTimeout = 10 * time.Second
	c.HTTP.MaxBodyBytes = 1 << 20 // 1MB

	c.Storage.Driver = "sqlite"
	c.Storage.SQLitePath = "./data/storefront.db"
	c.Storage.TTL = 30 * 24 * time.Hour

	c.Redis.Addr = "localhost:6379"
	c.Mongo.URI = "mongodb://localhost:27017"
	c.Mongo.Database = "fitlyf"

	c.OrdersAPI.BaseURL = "http://localhost:8081"
	c.OrdersAPI.Timeout = 10 * time.Second
	c.CatalogAPI.BaseURL = "http://localhost:8082"
	c.CatalogAPI.Timeout = 5 * time.Second

	c.Breaker = circuitbreaker.DefaultSettings()

	c.Session.IdleTTL = 30 * time.Minute
	c.Session.CleanupInterval = time.Minute
	c.Tracking.PollInterval = 30 * time.Second
	return c
}

// Load reads defaults, then path (if it exists), then CART_* variables.
func Load(path string) (*Config, error) {
	cfg := Default()
	if err := pkgconfig.Load(cfg, path, EnvPrefix); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.App.HTTPAddr == "" {
		return fmt.Errorf("app.http_addr required")
	}
	switch c.Storage.Driver {
	case "memory":
	case "sqlite":
		if c.Storage.SQLitePath == "" {
			return fmt.Errorf("storage.sqlite_path required for sqlite driver")
		}
	case "redis":
		if c.Redis.Addr == "" {
			return fmt.Errorf("redis.addr required for redis driver")
		}
	case "mongo":
		if c.Mongo.URI == "" || c.Mongo.Database == "" {
			return fmt.Errorf("mongo.uri and mongo.database required for mongo driver")
		}
	default:
		return fmt.Errorf("unknown storage.driver %q", c.Storage.Driver)
	}
	if c.OrdersAPI.BaseURL == "" {
		return fmt.Errorf("orders_api.base_url required")
	}
	if c.CatalogAPI.BaseURL == "" {
		return fmt.Errorf("catalog_api.base_url required")
	}
	if c.Tracking.PollInterval <= 0 {
		return fmt.Errorf("tracking.poll_interval must be positive")
	}
	return nil
}
