package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/fjod/fitlyf/cart-service/internal/clients"
	"github.com/fjod/fitlyf/cart-service/internal/config"
	carthttp "github.com/fjod/fitlyf/cart-service/internal/http"
	"github.com/fjod/fitlyf/cart-service/internal/session"
	"github.com/fjod/fitlyf/cart-service/internal/storage"
	"github.com/fjod/fitlyf/pkg/logger"
	"go.uber.org/zap"
)

func main() {
	configPath := flag.String("config", "configs/cart-service.yaml", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	zl, err := logger.New(cfg.App.Name, cfg.App.LogLevel, cfg.App.LogFile)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer func() { _ = zl.Sync() }()
	zap.ReplaceGlobals(zl)

	ctx := context.Background()
	st, closeStorage, err := openStorage(ctx, cfg, zl)
	if err != nil {
		zl.Fatal("failed to open storage", zap.String("driver", cfg.Storage.Driver), zap.Error(err))
	}
	defer closeStorage()

	ordersBase, err := clients.NewClient("orders-api", cfg.OrdersAPI.BaseURL, cfg.OrdersAPI.Timeout, cfg.Breaker, zl)
	if err != nil {
		zl.Fatal("failed to create orders client", zap.Error(err))
	}
	catalogBase, err := clients.NewClient("catalog-api", cfg.CatalogAPI.BaseURL, cfg.CatalogAPI.Timeout, cfg.Breaker, zl)
	if err != nil {
		zl.Fatal("failed to create catalog client", zap.Error(err))
	}

	sessions := session.NewRegistry(st, clients.NewOrdersClient(ordersBase), cfg.Session.IdleTTL, zl)
	sessions.Start(cfg.Session.CleanupInterval)
	defer sessions.Close()

	router := carthttp.NewRouter(sessions, clients.NewCatalogClient(catalogBase), carthttp.RouterConfig{
		RequestTimeout: cfg.HTTP.RequestTimeout,
		PollInterval:   cfg.Tracking.PollInterval,
		MaxBodyBytes:   cfg.HTTP.MaxBodyBytes,
	}, zl)

	srv := &http.Server{
		Addr:         cfg.App.HTTPAddr,
		Handler:      router,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	go func() {
		zl.Info("cart service listening",
			zap.String("addr", cfg.App.HTTPAddr),
			zap.String("storage", cfg.Storage.Driver),
			zap.String("orders_api", cfg.OrdersAPI.BaseURL),
			zap.String("catalog_api", cfg.CatalogAPI.BaseURL))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zl.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zl.Info("shutting down cart service")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zl.Error("graceful shutdown failed", zap.Error(err))
	}
	zl.Info("cart service stopped")
}

// openStorage returns the configured backend and a func releasing it.
func openStorage(ctx context.Context, cfg *config.Config, zl *zap.Logger) (storage.Storage, func(), error) {
	switch cfg.Storage.Driver {
	case "memory":
		return storage.NewMemoryStorage(), func() {}, nil

	case "sqlite":
		if dir := filepath.Dir(cfg.Storage.SQLitePath); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, nil, err
			}
		}
		s, err := storage.NewSQLiteStorage(cfg.Storage.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		zl.Info("opened sqlite storage", zap.String("path", cfg.Storage.SQLitePath))
		return s, func() { _ = s.Close() }, nil

	case "redis":
		client, err := storage.ConnectRedis(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			return nil, nil, err
		}
		zl.Info("connected to redis", zap.String("addr", cfg.Redis.Addr))
		return storage.NewRedisStorage(client, cfg.Storage.TTL), func() { _ = client.Close() }, nil

	case "mongo":
		db, err := storage.ConnectMongoDB(ctx, cfg.Mongo.URI, cfg.Mongo.Database)
		if err != nil {
			return nil, nil, err
		}
		s := storage.NewMongoStorage(db, cfg.Storage.TTL)
		indexCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()
		if err := s.CreateIndexes(indexCtx); err != nil {
			_ = db.Client().Disconnect(ctx)
			return nil, nil, err
		}
		zl.Info("connected to mongodb", zap.String("database", cfg.Mongo.Database))
		return s, func() { _ = db.Client().Disconnect(context.Background()) }, nil
	}
	return nil, nil, errors.New("unknown storage driver " + cfg.Storage.Driver)
}
