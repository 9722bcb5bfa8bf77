package config

import (
	"fmt"
	"time"

	pkgconfig "github.com/fjod/fitlyf/pkg/config"
)

const EnvPrefix = "ORDERS_"

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
		RequestTimeout  time.Duration `koanf:"request_timeout"`
		ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
		MaxBodyBytes    int64         `koanf:"max_body_bytes"`
	} `koanf:"http"`

	Postgres struct {
		Host           string `koanf:"host"`
		Port           int    `koanf:"port"`
		User           string `koanf:"user"`
		Password       string `koanf:"password"`
		DBName         string `koanf:"dbname"`
		MigrationsPath string `koanf:"migrations_path"`
	} `koanf:"postgres"`

	Kafka struct {
		Brokers     []string `koanf:"brokers"`
		StatusGroup string   `koanf:"status_group"`
	} `koanf:"kafka"`
}

func Default() *Config {
	c := &Config{}
	c.App.Name = "orders-service"
	c.App.HTTPAddr = ":8081"
	c.App.LogLevel = "info"

	c.HTTP.ReadTimeout = 10 * time.Second
	c.HTTP.WriteTimeout = 15 * time.Second
	c.HTTP.RequestTimeout = 10 * time.Second
	c.HTTP.ShutdownTimeout = 10 * time.Second
	c.HTTP.MaxBodyBytes = 1 << 20

	c.Postgres.Host = "localhost"
	c.Postgres.Port = 5432
	c.Postgres.User = "postgres"
	c.Postgres.Password = "postgres"
	c.Postgres.DBName = "fitlyf"
	c.Postgres.MigrationsPath = "./orders-service/internal/repository/migrations"

	c.Kafka.Brokers = []string{"localhost:9092"}
	c.Kafka.StatusGroup = "orders-service"
	return c
}

// Load reads defaults, then path (if it exists), then ORDERS_* variables.
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
	if c.Postgres.Host == "" || c.Postgres.DBName == "" {
		return fmt.Errorf("postgres.host and postgres.dbname required")
	}
	if c.Postgres.Port <= 0 {
		return fmt.Errorf("postgres.port must be positive")
	}
	if len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("kafka.brokers required")
	}
	return nil
}
