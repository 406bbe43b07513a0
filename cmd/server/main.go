package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/business-nexus/backend/internal/auth"
	"github.com/business-nexus/backend/internal/chat"
	"github.com/business-nexus/backend/internal/config"
	"github.com/business-nexus/backend/internal/logging"
	"github.com/business-nexus/backend/internal/server"
	"github.com/business-nexus/backend/internal/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger := logging.New(cfg.Logging)

	store, err := buildStore(logger, cfg)
	if err != nil {
		logger.Error("failed to open store", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Warn("closing store failed", "error", err)
		}
	}()

	authenticator := auth.NewAuthenticator(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)

	registry := chat.NewRegistry()
	relay := chat.NewRelay(logger, store, registry)
	chatHandler := chat.NewHandler(logger, authenticator, registry, relay, cfg.Chat)

	router := server.NewRouter(logger, server.RouterDependencies{
		Health:         server.StoreHealthService{Store: store},
		API:            server.NewAPIHandlers(logger, store, authenticator),
		Chat:           chatHandler,
		AllowedOrigins: parseAllowedOrigins(cfg.HTTP.AllowedOriginsCSV),
	})

	srv := server.New(logger, cfg.HTTP, router)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logger.Info("received shutdown signal", "signal", sig.String())
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("server stopped unexpectedly", "error", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", "error", err)
	}
}

func buildStore(logger *slog.Logger, cfg config.Config) (storage.Store, error) {
	if cfg.Database.DSN == "" {
		logger.Info("no DATABASE_URL configured, using in-memory store")
		return storage.NewMemoryStore(), nil
	}
	logger.Info("connecting to postgres store")
	return storage.OpenGorm(cfg.Database.DSN)
}

func parseAllowedOrigins(csv string) []string {
	if csv == "" {
		return nil
	}
	var origins []string
	for _, part := range strings.Split(csv, ",") {
		origin := strings.TrimSpace(part)
		if origin == "" {
			continue
		}
		origins = append(origins, origin)
	}
	return origins
}
