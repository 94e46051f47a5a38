package config

import (
	"fmt"
	"strings"
)

// AuthMode represents the authentication mode for the application.
type AuthMode string

const (
	// AuthModeAPI authenticates against the club API (/auth/login, /auth/register).
	AuthModeAPI AuthMode = "api"
	// AuthModeMock uses a single configured dev account (for development only).
	AuthModeMock AuthMode = "mock"
)

// UnmarshalText implements encoding.TextUnmarshaler for AuthMode.
func (a *AuthMode) UnmarshalText(text []byte) error {
	v := strings.ToLower(strings.TrimSpace(string(text)))
	switch v {
	case "api", "mock":
		*a = AuthMode(v)
		return nil
	default:
		return fmt.Errorf("invalid AuthMode: %q (valid options: api, mock)", v)
	}
}

// UnknownRole names the policy for roles outside the closed set.
type UnknownRole string

const (
	// UnknownRoleUser treats unknown roles as the baseline user role.
	UnknownRoleUser UnknownRole = "user"
	// UnknownRoleDeny shows unknown roles no dashboard entries.
	UnknownRoleDeny UnknownRole = "deny"
)

// UnmarshalText implements encoding.TextUnmarshaler for UnknownRole.
func (u *UnknownRole) UnmarshalText(text []byte) error {
	v := strings.ToLower(strings.TrimSpace(string(text)))
	switch v {
	case "user", "deny":
		*u = UnknownRole(v)
		return nil
	default:
		return fmt.Errorf("invalid RBAC_UNKNOWN_ROLE: %q (valid options: user, deny)", v)
	}
}

// DevAuthConfig controls the mock account accepted when AUTH_MODE=mock.
type DevAuthConfig struct {
	UserID   string `env:"USER_ID"  envDefault:"dev-user"`
	Name     string `env:"NAME"     envDefault:"Dev User"`
	Email    string `env:"EMAIL"    envDefault:"dev@example.com"`
	Password string `env:"PASSWORD" envDefault:"devpassword"`
	Role     string `env:"ROLE"     envDefault:"admin"`
}

// AuthConfig groups all authentication-related configuration.
type AuthConfig struct {
	// Mode determines which authenticator to use.
	Mode AuthMode `env:"AUTH_MODE" envDefault:"api"`

	// DevAuth configuration (used when Mode=mock).
	DevAuth DevAuthConfig `envPrefix:"DEV_AUTH_"`

	// UnknownRole decides what an absent or unrecognized role may see.
	UnknownRole UnknownRole `env:"RBAC_UNKNOWN_ROLE" envDefault:"user"`

	// ClientCookieName is the cookie that scopes client storage to a browser.
	ClientCookieName string `env:"CLIENT_COOKIE_NAME" envDefault:"portal_client"`
}

// Sanitize applies guardrails to auth configuration values.
func (a *AuthConfig) Sanitize() {
	if a.Mode == "" {
		a.Mode = AuthModeAPI
	}
	if a.UnknownRole == "" {
		a.UnknownRole = UnknownRoleUser
	}
	a.ClientCookieName = strings.TrimSpace(a.ClientCookieName)
	if a.ClientCookieName == "" {
		a.ClientCookieName = "portal_client"
	}
	a.DevAuth.Email = strings.ToLower(strings.TrimSpace(a.DevAuth.Email))
}
