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

	"github.com/fjod/fitlyf/pkg/logger"
	"github.com/fjod/fitlyf/product-service/internal/config"
	producthttp "github.com/fjod/fitlyf/product-service/internal/http"
	"github.com/fjod/fitlyf/product-service/internal/repository"
	"go.uber.org/zap"
)

func main() {
	configPath := flag.String("config", "configs/product-service.yaml", "path to config file")
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

	if dir := filepath.Dir(cfg.DB.Path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			zl.Fatal("failed to create data directory", zap.Error(err))
		}
	}

	repo, err := repository.NewRepository(cfg.DB.Path)
	if err != nil {
		zl.Fatal("failed to open database", zap.Error(err))
	}
	defer repo.Close()

	if err := repo.RunMigrations(cfg.DB.MigrationsPath); err != nil {
		zl.Fatal("failed to run migrations", zap.Error(err))
	}
	zl.Info("migrations completed successfully")

	srv := &http.Server{
		Addr:    cfg.App.HTTPAddr,
		Handler: producthttp.NewRouter(producthttp.NewProductHandler(repo, cfg.HTTP.RequestTimeout), zl),
	}

	go func() {
		zl.Info("product service listening", zap.String("addr", cfg.App.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zl.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zl.Info("shutting down product service")
	ctx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		zl.Error("graceful shutdown failed", zap.Error(err))
	}
}
