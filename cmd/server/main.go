package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"internhub/internal/cache"
	"internhub/internal/config"
	"internhub/internal/database"
	"internhub/internal/push"
	"internhub/internal/repositories"
	"internhub/internal/response"
	"internhub/internal/router"
	"internhub/internal/services"

	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		zap.NewExample().Fatal("Failed to load configuration", zap.Error(err))
	}

	logger := newLogger(cfg.Server.Environment)
	defer logger.Sync()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("Server exited with error", zap.Error(err))
	}
}

func run(cfg *config.Config, logger *zap.Logger) error {
	db, err := database.NewManager(&cfg.Database, logger)
	if err != nil {
		return err
	}
	defer db.Close()

	cacheClient, err := cache.New(cfg.Redis.URL, logger)
	if err != nil {
		return err
	}
	defer cacheClient.Close()

	hub := push.NewHub(logger)
	defer hub.Close()

	repos := repositories.NewCollection(db, logger)
	svcs := services.NewCollection(repos, cacheClient, hub, cfg, logger)

	builderConfig := response.DefaultConfig()
	builderConfig.PrettyJSON = cfg.Server.Environment != "production"
	builderConfig.MaskInternalErrors = cfg.Server.Environment == "production"
	builder := response.NewBuilder(builderConfig, logger)

	handler := router.New(router.Dependencies{
		Config:   cfg,
		Database: db,
		Services: svcs,
		Hub:      hub,
		Builder:  builder,
		Logger:   logger,
	})

	server := &http.Server{
		Addr:         net.JoinHostPort(cfg.Server.Host, cfg.Server.Port),
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Server listening",
			zap.String("addr", server.Addr),
			zap.String("environment", cfg.Server.Environment),
		)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-stop:
		logger.Info("Shutting down", zap.String("signal", sig.String()))
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.GracefulTimeout)
	defer cancel()
	return server.Shutdown(ctx)
}

// newLogger picks the log encoding by environment: JSON in production,
// console output everywhere else.
func newLogger(environment string) *zap.Logger {
	var logger *zap.Logger
	var err error
	if environment == "production" {
		logger, err = zap.NewProduction()
	} else {
		logger, err = zap.NewDevelopment()
	}
	if err != nil {
		panic(err)
	}
	return logger
}
