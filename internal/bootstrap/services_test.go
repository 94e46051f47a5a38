package bootstrap

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/debate-club/portal/config"
	"github.com/debate-club/portal/internal/domain/menu"
)

func devConfig() *config.AppConfig {
	cfg := &config.AppConfig{
		IsDev: true,
		Auth: config.AuthConfig{
			Mode:        config.AuthModeMock,
			UnknownRole: config.UnknownRoleDeny,
			DevAuth: config.DevAuthConfig{
				UserID:   "dev",
				Email:    "dev@club.org",
				Password: "pw",
				Role:     "admin",
			},
		},
		Backend: config.BackendConfig{BaseURL: "http://api.test"},
		Storage: config.StorageConfig{Backend: config.StorageBackendMemory, TTL: time.Hour},
	}
	cfg.Sanitize()
	return cfg
}

func TestNewServices_Wiring(t *testing.T) {
	svc, err := NewServices(&ServiceDeps{Config: devConfig(), Logger: discardLogger()})
	require.NoError(t, err)

	assert.NotNil(t, svc.Storage)
	assert.Nil(t, svc.Purger)
	assert.NotNil(t, svc.Auth)
	assert.NotNil(t, svc.Backend)
	assert.NotNil(t, svc.Profile)
	assert.NotNil(t, svc.Members)
	assert.NotNil(t, svc.Payments)
	assert.NotNil(t, svc.Events)
	assert.NotNil(t, svc.Gallery)
	assert.NotNil(t, svc.Contact)
	assert.NotNil(t, svc.Admin)
	require.NotNil(t, svc.Menu)
	assert.Equal(t, menu.DenyAll, svc.Menu.Policy())
}

func TestNewServices_Errors(t *testing.T) {
	_, err := NewServices(nil)
	require.Error(t, err)

	cfg := devConfig()
	cfg.Backend.ErrorMessagePath = "[[["
	_, err = NewServices(&ServiceDeps{Config: cfg})
	require.Error(t, err, "an invalid JMESPath expression fails startup")

	cfg = devConfig()
	cfg.Storage.Backend = config.StorageBackendPostgres
	_, err = NewServices(&ServiceDeps{Config: cfg})
	require.Error(t, err)
}

func TestMenuPolicy(t *testing.T) {
	assert.Equal(t, menu.FallbackToUser, menuPolicy(config.UnknownRoleUser))
	assert.Equal(t, menu.FallbackToUser, menuPolicy(""))
	assert.Equal(t, menu.DenyAll, menuPolicy(config.UnknownRoleDeny))
}

func TestBuildHTTPHandler_ServesHealthAndGuards(t *testing.T) {
	cfg := devConfig()
	cfg.IsDev = false // embedded templates
	svc, err := NewServices(&ServiceDeps{Config: cfg, Logger: discardLogger()})
	require.NoError(t, err)

	h, err := BuildHTTPHandler(&HTTPServerConfig{Config: cfg, Services: svc, Logger: discardLogger()})
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/dashboard", nil))
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/login?redirect_uri=%2Fdashboard", rec.Header().Get("Location"))
}

func TestValidateConfig(t *testing.T) {
	require.Error(t, ValidateConfig(nil))
	require.NoError(t, ValidateConfig(devConfig()))

	cfg := devConfig()
	cfg.IsDev = false
	require.Error(t, ValidateConfig(cfg), "memory storage outside dev")

	cfg.Storage.Backend = config.StorageBackendRedis
	require.Error(t, ValidateConfig(cfg), "mock auth outside dev")

	cfg.Auth.Mode = config.AuthModeAPI
	require.NoError(t, ValidateConfig(cfg))
}

func TestPostgresDSN(t *testing.T) {
	dsn := PostgresDSN(config.DBConfig{
		Host: "db", Port: 5432, User: "portal", Password: "p@ss/word", Name: "portal", SSLMode: "require",
	})
	assert.Equal(t, "postgres://portal:p%40ss%2Fword@db:5432/portal?sslmode=require", dsn)
}
