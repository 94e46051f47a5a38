package main

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/debate-club/portal/config"
)

func newCommandContext(cfg config.AppConfig) (*commandContext, *bytes.Buffer) {
	out := &bytes.Buffer{}
	return &commandContext{
		Ctx:    context.Background(),
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		Config: cfg,
		Out:    out,
	}, out
}

func TestRunMenu_Moderator(t *testing.T) {
	cmdCtx, out := newCommandContext(config.AppConfig{})
	require.NoError(t, runMenu(cmdCtx, []string{"moderator"}))

	outStr := out.String()
	require.Contains(t, outStr, "manage-events")
	require.Contains(t, outStr, "/dashboard/manage/gallery")
	require.NotContains(t, outStr, "manage-users")
	require.NotContains(t, outStr, "/admin")
}

func TestRunMenu_UnknownRolePolicies(t *testing.T) {
	cmdCtx, out := newCommandContext(config.AppConfig{})
	require.NoError(t, runMenu(cmdCtx, []string{"treasurer"}))
	require.Contains(t, out.String(), `showing the menu for "user"`)
	require.Contains(t, out.String(), "my-payments")

	cmdCtx, out = newCommandContext(config.AppConfig{})
	require.NoError(t, runMenu(cmdCtx, []string{"--unknown-role", "deny", "treasurer"}))
	require.Contains(t, out.String(), "policy denies it")
	require.Contains(t, out.String(), "No entries.")
}

func TestRunMenu_ConfigPolicyIsDefault(t *testing.T) {
	cmdCtx, out := newCommandContext(config.AppConfig{Auth: config.AuthConfig{UnknownRole: config.UnknownRoleDeny}})
	require.NoError(t, runMenu(cmdCtx, []string{""}))
	require.Contains(t, out.String(), "No entries.")
}

func TestRunMenu_BadArgs(t *testing.T) {
	cmdCtx, _ := newCommandContext(config.AppConfig{})
	require.Error(t, runMenu(cmdCtx, nil))
	require.Error(t, runMenu(cmdCtx, []string{"--unknown-role", "allow", "admin"}))
}

func TestRunRoutes(t *testing.T) {
	cmdCtx, out := newCommandContext(config.AppConfig{})
	require.NoError(t, runRoutes(cmdCtx, nil))

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Greater(t, len(lines), 1)
	require.Contains(t, lines[0], "Route")

	var adminLine string
	for _, l := range lines {
		if strings.HasPrefix(l, "GET /admin ") {
			adminLine = l
		}
	}
	require.NotEmpty(t, adminLine)
	require.Contains(t, adminLine, "president, admin")
}

func TestRunPingAPI(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/health" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success":true}`))
	}))
	defer srv.Close()

	cfg := config.AppConfig{Backend: config.BackendConfig{BaseURL: srv.URL + "/api"}}
	cfg.Backend.Sanitize()
	cmdCtx, out := newCommandContext(cfg)
	require.NoError(t, runPingAPI(cmdCtx, nil))
	require.Contains(t, out.String(), "is up")

	cfg.Backend.BaseURL = srv.URL + "/missing"
	cmdCtx, _ = newCommandContext(cfg)
	require.Error(t, runPingAPI(cmdCtx, nil))
}

func TestParseMigrateFlags(t *testing.T) {
	opts, err := parseMigrateFlags([]string{"--dry-run"})
	require.NoError(t, err)
	require.True(t, opts.DryRun)
	require.Equal(t, defaultMigrationTimeout, opts.Timeout)

	_, err = parseMigrateFlags([]string{"--timeout", "0s"})
	require.Error(t, err)
}

func TestPrintUsageListsCommands(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, printUsage(&buf))
	for name := range commands() {
		require.Contains(t, buf.String(), name)
	}
}
