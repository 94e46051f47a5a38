package httpx

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/net/publicsuffix"

	"github.com/debate-club/portal/internal/ports"
	"github.com/debate-club/portal/internal/service"
)

const (
	// DefaultClientCookieName names the cookie that scopes client storage to a browser.
	DefaultClientCookieName = "portal_client"
	// DefaultSessionInitWait bounds how long a request waits for rehydration before the
	// guard renders the pending page.
	DefaultSessionInitWait = 2 * time.Second

	clientCookieMaxAge = 400 * 24 * 60 * 60
	sessionInitBudget  = 30 * time.Second
)

// SessionConfig configures the Sessions middleware.
type SessionConfig struct {
	Storage      ports.ClientStorage
	Auth         ports.Authenticator
	CookieName   string
	CookieDomain string
	// InitWait is how long a request waits for Initialize. Rehydration keeps running in the
	// background after the wait expires; the next request of the same client starts over.
	InitWait time.Duration
	Logger   *slog.Logger
}

// Sessions returns a middleware that resolves the client cookie, builds a SessionStore
// bound to that client's storage and initializes it before handing the request on.
//
// The store is per request. Rehydration reads the persisted keys without a network call,
// so a fresh store per request costs two storage reads.
func Sessions(cfg SessionConfig) func(http.Handler) http.Handler {
	if cfg.Storage == nil {
		panic("ClientStorage is required")
	}
	if cfg.Auth == nil {
		panic("Authenticator is required")
	}
	if cfg.CookieName == "" {
		cfg.CookieName = DefaultClientCookieName
	}
	if cfg.InitWait <= 0 {
		cfg.InitWait = DefaultSessionInitWait
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	cfg.CookieDomain = CookieDomain(cfg.CookieDomain, cfg.Logger)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			clientID, fresh := clientIDFromRequest(r, cfg.CookieName)
			if fresh {
				setClientCookie(w, r, cfg, clientID)
			}

			store := service.NewSessionStore(service.SessionStoreOptions{
				Storage: cfg.Storage.For(clientID),
				Auth:    cfg.Auth,
				Logger:  cfg.Logger,
			})
			initializeWithin(r.Context(), store, cfg.InitWait)

			ctx := setClientIDInContext(r.Context(), clientID)
			ctx = SetSessionInContext(ctx, store)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// initializeWithin runs store.Initialize and waits at most wait for it. When the wait
// expires the store is still loading and guards answer with the pending page.
func initializeWithin(ctx context.Context, store *service.SessionStore, wait time.Duration) {
	initCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), sessionInitBudget)
	done := make(chan struct{})
	go func() {
		defer cancel()
		defer close(done)
		store.Initialize(initCtx)
	}()

	timer := time.NewTimer(wait)
	defer timer.Stop()
	select {
	case <-done:
	case <-timer.C:
	}
}

// clientIDFromRequest returns the cookie's client id, or a new one when the cookie is
// missing or does not hold a UUID.
func clientIDFromRequest(r *http.Request, name string) (string, bool) {
	if c, err := r.Cookie(name); err == nil {
		if id, err := uuid.Parse(c.Value); err == nil {
			return id.String(), false
		}
	}
	return uuid.NewString(), true
}

func setClientCookie(w http.ResponseWriter, r *http.Request, cfg SessionConfig, id string) {
	http.SetCookie(w, &http.Cookie{
		Name:     cfg.CookieName,
		Value:    id,
		Path:     "/",
		Domain:   cfg.CookieDomain,
		HttpOnly: true,
		Secure:   r.TLS != nil || isForwardedHTTPS(r),
		SameSite: http.SameSiteLaxMode,
		MaxAge:   clientCookieMaxAge,
	})
}

// CookieDomain validates a configured cookie domain. Browsers drop cookies scoped to a
// public suffix such as "com" or "github.io", so those fall back to host-only ("").
func CookieDomain(domain string, logger *slog.Logger) string {
	d := strings.TrimPrefix(strings.ToLower(strings.TrimSpace(domain)), ".")
	if d == "" || d == "localhost" {
		return ""
	}
	suffix, _ := publicsuffix.PublicSuffix(d)
	if suffix == d {
		if logger != nil {
			logger.Warn("cookie domain is a public suffix; using host-only cookies", "domain", domain)
		}
		return ""
	}
	return d
}
