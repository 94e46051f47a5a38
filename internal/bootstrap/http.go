package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/debate-club/portal/config"
	httpx "github.com/debate-club/portal/internal/http"
)

// HTTPServerConfig contains configuration for the HTTP server.
type HTTPServerConfig struct {
	Config   *config.AppConfig
	Services ServiceContainer
	Logger   *slog.Logger
}

// RunningServer is a started HTTP server.
type RunningServer struct {
	server *http.Server
	addr   string
	errs   chan error
}

// Addr is the address the server is listening on.
func (s *RunningServer) Addr() string { return s.addr }

// Errors delivers the serve error if the server stops for any reason but Shutdown.
func (s *RunningServer) Errors() <-chan error { return s.errs }

// BuildHTTPHandler builds the portal router from the service container.
func BuildHTTPHandler(cfg *HTTPServerConfig) (http.Handler, error) {
	appCfg := cfg.Config
	if appCfg == nil {
		appCfg = &config.AppConfig{}
	}
	svc := cfg.Services
	return httpx.NewRouter(httpx.RouterServices{
		Menu:             svc.Menu,
		Storage:          svc.Storage,
		Auth:             svc.Auth,
		Profile:          svc.Profile,
		Members:          svc.Members,
		Payments:         svc.Payments,
		Events:           svc.Events,
		Gallery:          svc.Gallery,
		Contact:          svc.Contact,
		Admin:            svc.Admin,
		CookieDomain:     appCfg.HTTP.CookieDomain,
		ClientCookieName: appCfg.Auth.ClientCookieName,
		SessionInitWait:  appCfg.HTTP.SessionInitWait,
		Compression:      appCfg.HTTP.CompressionEnabled,
		Metrics:          appCfg.Observability.Metrics.IsEnabled(),
		IsDev:            appCfg.IsDev,
		Logger:           cfg.Logger,
	})
}

// StartHTTPServer binds the configured address and serves the portal in the background.
func StartHTTPServer(cfg *HTTPServerConfig) (*RunningServer, error) {
	if cfg == nil {
		return nil, errors.New("http server config is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	handler, err := BuildHTTPHandler(cfg)
	if err != nil {
		return nil, fmt.Errorf("build router: %w", err)
	}
	if cfg.Config != nil && cfg.Config.HTTP.CompressionEnabled {
		logger.Info("HTTP compression enabled")
	}

	addr := ":8080"
	if cfg.Config != nil && cfg.Config.HTTP.Addr != "" {
		addr = cfg.Config.HTTP.Addr
	}
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("listen on %s: %w", addr, err)
	}

	server := &http.Server{
		Handler:      handler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelWarn),
	}
	rs := &RunningServer{server: server, addr: ln.Addr().String(), errs: make(chan error, 1)}

	go func() {
		logger.Info("starting HTTP server", "addr", rs.addr)
		if serveErr := server.Serve(ln); serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			rs.errs <- serveErr
		}
	}()

	return rs, nil
}

// ShutdownConfig contains dependencies for HTTP server shutdown.
type ShutdownConfig struct {
	Context context.Context
	Server  *RunningServer
	Logger  *slog.Logger
}

// ShutdownHTTPServer gracefully shuts down the HTTP server.
func ShutdownHTTPServer(cfg ShutdownConfig) error {
	if cfg.Server == nil {
		return nil
	}
	ctx := cfg.Context
	if ctx == nil {
		ctx = context.Background()
	}

	if cfg.Logger != nil {
		cfg.Logger.Info("shutting down HTTP server")
	}
	if err := cfg.Server.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown http server: %w", err)
	}
	if cfg.Logger != nil {
		cfg.Logger.Info("HTTP server stopped")
	}
	return nil
}
