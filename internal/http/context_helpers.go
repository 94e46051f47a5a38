package httpx

import (
	"context"

	domainauth "github.com/debate-club/portal/internal/domain/auth"
	"github.com/debate-club/portal/internal/service"
)

// sessionKey is an unexported context key type to avoid collisions across packages.
// Centralized in this file so all handlers/middleware use the same key.
type sessionKey struct{}

// clientIDKey carries the opaque client id resolved from the client cookie.
type clientIDKey struct{}

// SetSessionInContext returns a child context that carries the given session store.
// If store is nil, the original ctx is returned unchanged.
func SetSessionInContext(ctx context.Context, store *service.SessionStore) context.Context {
	if store == nil {
		return ctx
	}
	return context.WithValue(ctx, sessionKey{}, store)
}

// GetSessionFromContext returns the request's session store and whether one is present.
func GetSessionFromContext(ctx context.Context) (*service.SessionStore, bool) {
	if s, ok := ctx.Value(sessionKey{}).(*service.SessionStore); ok && s != nil {
		return s, true
	}
	return nil, false
}

// SessionStateFromContext returns the session snapshot for the request.
// A request without a session store reports Loading, which guards treat as pending.
func SessionStateFromContext(ctx context.Context) domainauth.SessionState {
	if s, ok := GetSessionFromContext(ctx); ok {
		return s.State()
	}
	return domainauth.SessionState{Loading: true}
}

// CurrentIdentity returns the signed-in identity, if any.
func CurrentIdentity(ctx context.Context) (domainauth.Identity, bool) {
	s, ok := GetSessionFromContext(ctx)
	if !ok {
		return domainauth.Identity{}, false
	}
	return s.Identity()
}

func setClientIDInContext(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, clientIDKey{}, id)
}

// ClientIDFromContext returns the client id resolved by the Sessions middleware.
func ClientIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(clientIDKey{}).(string)
	return id
}
