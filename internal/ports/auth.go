// Package ports defines interfaces (hexagonal ports) for session and auth behavior.
// Implementations live in internal/adapters; orchestration in internal/service.
package ports

import (
	"context"

	domainauth "github.com/debate-club/portal/internal/domain/auth"
	"github.com/debate-club/portal/internal/domain/model"
)

// Authenticator exchanges credentials for a bearer token and identity.
type Authenticator interface {
	// Login verifies email and password and returns the grant. Failures carry a
	// human-readable message suitable for the login form.
	Login(ctx context.Context, creds domainauth.Credentials) (domainauth.Grant, error)

	// Register creates an account and signs it in.
	Register(ctx context.Context, req model.RegisterRequest) (domainauth.Grant, error)
}
