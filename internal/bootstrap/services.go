package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/debate-club/portal/config"
	"github.com/debate-club/portal/internal/adapters/backend"
	"github.com/debate-club/portal/internal/domain/menu"
	"github.com/debate-club/portal/internal/ports"
	"github.com/debate-club/portal/internal/service"
)

const shutdownWaitTimeout = 10 * time.Second

// ServiceContainer holds everything the router is built from.
type ServiceContainer struct {
	Menu     *menu.Registry
	Storage  ports.ClientStorage
	Purger   Purger
	Auth     ports.Authenticator
	Backend  *backend.Client
	Profile  *service.ProfileService
	Members  *service.MemberService
	Payments *service.PaymentService
	Events   *service.EventService
	Gallery  *service.GalleryService
	Contact  *service.ContactService
	Admin    *service.AdminService
}

// ServiceDeps contains dependencies for building services.
type ServiceDeps struct {
	Config *config.AppConfig
	Infra  *Infrastructure
	Logger *slog.Logger

	// HTTPClient overrides the club API transport in tests.
	HTTPClient *http.Client
}

// NewServices wires the club API client, storage, authenticator and domain services.
func NewServices(deps *ServiceDeps) (ServiceContainer, error) {
	if deps == nil || deps.Config == nil {
		return ServiceContainer{}, errors.New("service deps with config are required")
	}
	cfg := deps.Config
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	client, err := backend.NewClient(backend.Config{
		BaseURL:          cfg.Backend.BaseURL,
		Timeout:          cfg.Backend.Timeout,
		ErrorMessagePath: cfg.Backend.ErrorMessagePath,
		MaxBodyBytes:     cfg.Backend.MaxBodyBytes,
		HTTPClient:       deps.HTTPClient,
		Logger:           logger,
	})
	if err != nil {
		return ServiceContainer{}, fmt.Errorf("create club API client: %w", err)
	}

	storage, err := BuildClientStorage(cfg.Storage, deps.Infra)
	if err != nil {
		return ServiceContainer{}, err
	}

	auth, err := BuildAuthenticator(AuthConfig{Auth: cfg.Auth, Backend: client, Logger: logger})
	if err != nil {
		return ServiceContainer{}, err
	}

	return ServiceContainer{
		Menu:     menu.Default(menuPolicy(cfg.Auth.UnknownRole)),
		Storage:  storage.Storage,
		Purger:   storage.Purger,
		Auth:     auth,
		Backend:  client,
		Profile:  service.NewProfileService(service.ProfileServiceOptions{Users: client, Logger: logger}),
		Members:  service.NewMemberService(service.MemberServiceOptions{Users: client, Logger: logger}),
		Payments: service.NewPaymentService(service.PaymentServiceOptions{Ledger: client, Logger: logger}),
		Events:   service.NewEventService(service.EventServiceOptions{Catalog: client, Logger: logger}),
		Gallery:  service.NewGalleryService(service.GalleryServiceOptions{Store: client, Logger: logger}),
		Contact:  service.NewContactService(client, logger),
		Admin: service.NewAdminService(service.AdminServiceOptions{
			Sources: service.AdminSources{
				Stats:    client,
				Users:    client,
				Payments: client,
				Events:   client,
				Gallery:  client,
			},
			Logger: logger,
		}),
	}, nil
}

func menuPolicy(u config.UnknownRole) menu.UnknownRolePolicy {
	if u == config.UnknownRoleDeny {
		return menu.DenyAll
	}
	return menu.FallbackToUser
}

// ServiceOrchestrationConfig contains configuration for running the portal.
type ServiceOrchestrationConfig struct {
	Config   *config.AppConfig
	Services ServiceContainer
	Logger   *slog.Logger
}

// backgroundService describes a startable background component.
type backgroundService struct {
	name  string
	start func(context.Context) error
}

// backgroundServiceHandle tracks a running background service.
type backgroundServiceHandle struct {
	name string
	done <-chan struct{}
}

func launchBackground(
	ctx context.Context,
	logger *slog.Logger,
	errCh chan<- error,
	descriptor backgroundService,
) backgroundServiceHandle {
	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := descriptor.start(ctx); err != nil {
			errMsg := fmt.Errorf("%s failed: %w", descriptor.name, err)
			select {
			case errCh <- errMsg:
			case <-ctx.Done():
			default:
				logger.WarnContext(ctx, "dropping background service error", "service", descriptor.name, "error", errMsg)
			}
		}
	}()
	logger.InfoContext(ctx, "background service started", "service", descriptor.name)
	return backgroundServiceHandle{name: descriptor.name, done: done}
}

func buildBackgroundServices(cfg *ServiceOrchestrationConfig, logger *slog.Logger) []backgroundService {
	var out []backgroundService
	if cfg.Services.Purger != nil {
		out = append(out, backgroundService{
			name: "storage purger",
			start: func(ctx context.Context) error {
				return RunStoragePurger(ctx, PurgeRunnerOptions{
					Purger:   cfg.Services.Purger,
					Interval: cfg.Config.Storage.PurgeInterval,
					Logger:   logger,
				})
			},
		})
	}
	return out
}

// RunServicesWithShutdown serves HTTP and runs background services until SIGINT or
// SIGTERM, or until one of them fails.
func RunServicesWithShutdown(cfg *ServiceOrchestrationConfig) error {
	if cfg == nil || cfg.Config == nil {
		return errors.New("service orchestration config with AppConfig is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	serviceCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	server, err := StartHTTPServer(&HTTPServerConfig{Config: cfg.Config, Services: cfg.Services, Logger: logger})
	if err != nil {
		return err
	}

	background := buildBackgroundServices(cfg, logger)
	errCh := make(chan error, len(background)+1)
	handles := make([]backgroundServiceHandle, 0, len(background))
	for _, svc := range background {
		handles = append(handles, launchBackground(serviceCtx, logger, errCh, svc))
	}

	return waitForShutdown(shutdownConfig{
		ctx:             serviceCtx,
		cancel:          cancel,
		errCh:           errCh,
		server:          server,
		shutdownTimeout: cfg.Config.HTTP.ShutdownTimeout,
		logger:          logger,
		backgrounds:     handles,
	})
}

// shutdownConfig contains dependencies for graceful shutdown.
type shutdownConfig struct {
	ctx             context.Context
	cancel          context.CancelFunc
	errCh           <-chan error
	server          *RunningServer
	shutdownTimeout time.Duration
	logger          *slog.Logger
	backgrounds     []backgroundServiceHandle
}

// waitForShutdown waits for a shutdown signal, a server failure or a background error.
func waitForShutdown(cfg shutdownConfig) error {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	var runErr error
	select {
	case <-quit:
		cfg.logger.Info("shutting down services...")
	case runErr = <-cfg.server.Errors():
		cfg.logger.Error("HTTP server failed", "error", runErr)
	case runErr = <-cfg.errCh:
		cfg.logger.Error("service error", "error", runErr)
	}

	cfg.cancel()
	if stopErr := gracefulStop(cfg); stopErr != nil {
		if runErr == nil {
			return stopErr
		}
		cfg.logger.Error("graceful stop failed", "error", stopErr)
	}
	return runErr
}

// gracefulStop drains HTTP connections, then waits for background services.
func gracefulStop(cfg shutdownConfig) error {
	timeout := cfg.shutdownTimeout
	if timeout <= 0 {
		timeout = shutdownWaitTimeout
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	err := ShutdownHTTPServer(ShutdownConfig{Context: shutdownCtx, Server: cfg.server, Logger: cfg.logger})

	for _, svc := range cfg.backgrounds {
		waitForService(svc.done, svc.name, cfg.logger)
	}
	return err
}

// waitForService waits for a service to finish with timeout.
func waitForService(done <-chan struct{}, name string, logger *slog.Logger) {
	if done == nil {
		return
	}
	select {
	case <-done:
		logger.Info(name + " stopped")
	case <-time.After(shutdownWaitTimeout):
		logger.Warn("timeout waiting for " + name + " to stop")
	}
}
