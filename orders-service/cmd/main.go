package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/fjod/fitlyf/orders-service/internal/config"
	"github.com/fjod/fitlyf/orders-service/internal/consumer"
	ordershttp "github.com/fjod/fitlyf/orders-service/internal/http"
	"github.com/fjod/fitlyf/orders-service/internal/publisher"
	"github.com/fjod/fitlyf/orders-service/internal/repository"
	"github.com/fjod/fitlyf/orders-service/internal/service"
	"github.com/fjod/fitlyf/pkg/logger"
	"go.uber.org/zap"
)

func main() {
	configPath := flag.String("config", "configs/orders-service.yaml", "path to config file")
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

	var wg sync.WaitGroup

	creds := &repository.Credentials{
		Host:              cfg.Postgres.Host,
		Port:              cfg.Postgres.Port,
		User:              cfg.Postgres.User,
		Password:          cfg.Postgres.Password,
		DBName:            cfg.Postgres.DBName,
		MigrationsDirPath: cfg.Postgres.MigrationsPath,
	}

	repo, err := repository.NewRepository(creds)
	if err != nil {
		zl.Fatal("failed to connect to database", zap.Error(err))
	}
	defer repo.Close()

	if err := repo.RunMigrations(creds); err != nil {
		zl.Fatal("failed to run migrations", zap.Error(err))
	}
	zl.Info("database migrations completed")

	svc := service.NewOrderService(repo, zl)

	bgCtx, bgCancel := context.WithCancel(context.Background())

	poller := publisher.NewOutboxPoller(repo, zl.Named("outbox"), cfg.Kafka.Brokers...)
	statusConsumer := consumer.NewConsumer(svc, zl.Named("status"), cfg.Kafka.StatusGroup, cfg.Kafka.Brokers...)

	wg.Add(2)
	go func() {
		defer wg.Done()
		poller.Run(bgCtx)
	}()
	go func() {
		defer wg.Done()
		statusConsumer.Run(bgCtx)
	}()

	srv := &http.Server{
		Addr:         cfg.App.HTTPAddr,
		Handler:      ordershttp.NewRouter(ordershttp.NewOrdersHandler(svc, cfg.HTTP.RequestTimeout, cfg.HTTP.MaxBodyBytes), zl),
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
	}

	go func() {
		zl.Info("orders service listening", zap.String("addr", cfg.App.HTTPAddr), zap.Strings("kafka", cfg.Kafka.Brokers))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zl.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zl.Info("shutting down orders service")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		zl.Error("graceful shutdown failed", zap.Error(err))
	}
	bgCancel()

	doneChan := make(chan struct{})
	go func() {
		wg.Wait()
		close(doneChan)
	}()

	select {
	case <-doneChan:
		zl.Info("background workers stopped cleanly")
	case <-shutdownCtx.Done():
		zl.Warn("background workers didn't stop in time")
	}

	statusConsumer.Close()
	if err := poller.Close(); err != nil {
		zl.Warn("failed to close kafka writer", zap.Error(err))
	}
	zl.Info("orders service stopped")
}
