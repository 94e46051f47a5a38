package bootstrap

import (
	"fmt"
	"log/slog"

	"github.com/debate-club/portal/config"
	"github.com/debate-club/portal/internal/adapters/backend"
	"github.com/debate-club/portal/internal/adapters/devauth"
	domainauth "github.com/debate-club/portal/internal/domain/auth"
	"github.com/debate-club/portal/internal/ports"
)

// AuthConfig contains configuration for the authenticator.
type AuthConfig struct {
	Auth    config.AuthConfig
	Backend *backend.Client
	Logger  *slog.Logger
}

// BuildAuthenticator returns the authenticator for the configured auth mode.
//
//nolint:ireturn // the mode picks the implementation
func BuildAuthenticator(cfg AuthConfig) (ports.Authenticator, error) {
	switch cfg.Auth.Mode {
	case config.AuthModeMock:
		return buildDevAuth(cfg)

	case config.AuthModeAPI, "":
		if cfg.Backend == nil {
			return nil, fmt.Errorf("auth mode %q requires the club API client", config.AuthModeAPI)
		}
		return cfg.Backend, nil

	default:
		return nil, fmt.Errorf("unknown auth mode %q", cfg.Auth.Mode)
	}
}

func buildDevAuth(cfg AuthConfig) (*devauth.Provider, error) {
	dev := cfg.Auth.DevAuth
	prov, err := devauth.NewProvider(devauth.Config{
		UserID:   dev.UserID,
		Name:     dev.Name,
		Email:    dev.Email,
		Password: dev.Password,
		Role:     domainauth.Role(dev.Role),
	})
	if err != nil {
		return nil, fmt.Errorf("create dev auth provider: %w", err)
	}
	if cfg.Logger != nil {
		cfg.Logger.Warn("dev auth enabled; sign-ins are checked against a local account", "email", dev.Email, "role", dev.Role)
	}
	return prov, nil
}
