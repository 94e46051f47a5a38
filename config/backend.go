package config

import (
	"strings"
	"time"
)

const (
	defaultBackendBaseURL     = "http://localhost:5000/api"
	defaultErrorMessagePath   = "message || error.message || error || errors[0].msg"
	defaultBackendTimeout     = 10 * time.Second
	maxBackendTimeout         = 2 * time.Minute
	defaultBackendMaxBodySize = 4 << 20
)

// BackendConfig configures the club REST API client.
type BackendConfig struct {
	// BaseURL is the API root; endpoint paths such as /auth/login are appended to it.
	BaseURL string `env:"BASE_URL" envDefault:"http://localhost:5000/api"`

	// Timeout bounds each request to the API.
	Timeout time.Duration `env:"TIMEOUT" envDefault:"10s"`

	// ErrorMessagePath is a JMESPath expression that extracts the user-facing message
	// from a failed response body.
	ErrorMessagePath string `env:"ERROR_MESSAGE_PATH" envDefault:"message || error.message || error || errors[0].msg"`

	// MaxBodyBytes caps how much of a response body is read.
	MaxBodyBytes int64 `env:"MAX_BODY_BYTES" envDefault:"4194304"`
}

// Sanitize applies guardrails to backend configuration values.
func (b *BackendConfig) Sanitize() {
	b.BaseURL = strings.TrimRight(strings.TrimSpace(b.BaseURL), "/")
	if b.BaseURL == "" {
		b.BaseURL = defaultBackendBaseURL
	}
	if b.Timeout <= 0 {
		b.Timeout = defaultBackendTimeout
	}
	if b.Timeout > maxBackendTimeout {
		b.Timeout = maxBackendTimeout
	}
	b.ErrorMessagePath = strings.TrimSpace(b.ErrorMessagePath)
	if b.ErrorMessagePath == "" {
		b.ErrorMessagePath = defaultErrorMessagePath
	}
	if b.MaxBodyBytes <= 0 {
		b.MaxBodyBytes = defaultBackendMaxBodySize
	}
}
