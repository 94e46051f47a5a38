package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/debate-club/portal/config"
	"github.com/debate-club/portal/internal/bootstrap"
)

func main() {
	ctx := context.Background()
	cfg, err := bootstrap.LoadConfig()
	logger := bootstrap.InitLogger(err == nil && cfg.IsDev)
	if err == nil {
		err = run(ctx, logger, &cfg)
	}
	if err != nil {
		logger.ErrorContext(ctx, "fatal error", "error", err)
		os.Exit(1) //nolint:forbidigo // Main entrypoint should exit with non-zero status on fatal errors.
	}
}

func run(ctx context.Context, logger *slog.Logger, cfg *config.AppConfig) error {
	if err := bootstrap.ValidateConfig(cfg); err != nil {
		return err
	}
	logStartupInfo(ctx, logger, cfg)

	infra, err := bootstrap.ConnectInfrastructure(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := infra.Close(); cerr != nil {
			logger.ErrorContext(ctx, "close infrastructure failed", "error", cerr)
		}
	}()

	services, err := bootstrap.NewServices(&bootstrap.ServiceDeps{
		Config: cfg,
		Infra:  infra,
		Logger: logger,
	})
	if err != nil {
		return err
	}

	return bootstrap.RunServicesWithShutdown(&bootstrap.ServiceOrchestrationConfig{
		Config:   cfg,
		Services: services,
		Logger:   logger,
	})
}

func logStartupInfo(ctx context.Context, logger *slog.Logger, cfg *config.AppConfig) {
	logger.InfoContext(ctx, "starting debate portal",
		"addr", cfg.HTTP.Addr,
		"api", cfg.Backend.BaseURL,
		"auth_mode", cfg.Auth.Mode,
		"storage", cfg.Storage.Backend,
		"unknown_role_policy", cfg.Auth.UnknownRole,
		"dev", cfg.IsDev,
	)
}
