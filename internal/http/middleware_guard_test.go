package httpx

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainauth "github.com/debate-club/portal/internal/domain/auth"
	"github.com/debate-club/portal/internal/domain/guard"
	"github.com/debate-club/portal/internal/domain/menu"
)

// stubResponder records which non-redirect outcome the guard chose.
type stubResponder struct {
	pending, forbidden int
}

func (s *stubResponder) Pending(w http.ResponseWriter, _ *http.Request) {
	s.pending++
	w.WriteHeader(http.StatusServiceUnavailable)
}

func (s *stubResponder) Forbidden(w http.ResponseWriter, _ *http.Request) {
	s.forbidden++
	w.WriteHeader(http.StatusForbidden)
}

func guardedOK() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("secret"))
	})
}

func TestRequireRoles_Browser(t *testing.T) {
	adminOnly := guard.AnyRole(domainauth.RoleAdmin, domainauth.RolePresident)

	tests := []struct {
		name          string
		store         func(t *testing.T) *http.Request
		wantStatus    int
		wantLocation  string
		wantPending   int
		wantForbidden int
		wantBody      string
	}{
		{
			name: "loading session renders pending",
			store: func(t *testing.T) *http.Request {
				r := httptest.NewRequest(http.MethodGet, "/admin", nil)
				return withSession(r, pendingSession(t))
			},
			wantStatus:  http.StatusServiceUnavailable,
			wantPending: 1,
		},
		{
			name: "anonymous redirects to login with redirect_uri",
			store: func(t *testing.T) *http.Request {
				r := httptest.NewRequest(http.MethodGet, "/admin?tab=roles", nil)
				return withSession(r, newSession(t, nil))
			},
			wantStatus:   http.StatusSeeOther,
			wantLocation: "/login?redirect_uri=%2Fadmin%3Ftab%3Droles",
		},
		{
			name: "member is forbidden",
			store: func(t *testing.T) *http.Request {
				r := httptest.NewRequest(http.MethodGet, "/admin", nil)
				return withSession(r, newSession(t, testIdentity(domainauth.RoleMember)))
			},
			wantStatus:    http.StatusForbidden,
			wantForbidden: 1,
		},
		{
			name: "president is authorized",
			store: func(t *testing.T) *http.Request {
				r := httptest.NewRequest(http.MethodGet, "/admin", nil)
				return withSession(r, newSession(t, testIdentity(domainauth.RolePresident)))
			},
			wantStatus: http.StatusOK,
			wantBody:   "secret",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := &stubResponder{}
			rec := httptest.NewRecorder()
			RequireRoles(resp, adminOnly)(guardedOK()).ServeHTTP(rec, asBrowser(tt.store(t)))

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantLocation, rec.Header().Get("Location"))
			assert.Equal(t, tt.wantPending, resp.pending)
			assert.Equal(t, tt.wantForbidden, resp.forbidden)
			if tt.wantBody != "" {
				assert.Equal(t, tt.wantBody, rec.Body.String())
			} else {
				assert.NotContains(t, rec.Body.String(), "secret")
			}
		})
	}
}

func TestRequireRoles_NoSessionIsPending(t *testing.T) {
	resp := &stubResponder{}
	rec := httptest.NewRecorder()
	r := asBrowser(httptest.NewRequest(http.MethodGet, "/dashboard", nil))

	RequireAuth(resp)(guardedOK()).ServeHTTP(rec, r)

	assert.Equal(t, 1, resp.pending)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestRequireRoles_HTMXRedirectReplacesHistory(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/dashboard/profile", nil)
	r.Header.Set("Hx-Current-Url", "http://portal.test/dashboard/profile?tab=1")
	r = withSession(asHTMX(r), newSession(t, nil))
	rec := httptest.NewRecorder()

	RequireAuth(&stubResponder{})(guardedOK()).ServeHTTP(rec, r)

	assert.Equal(t, http.StatusOK, rec.Code)
	want := "/login?redirect_uri=%2Fdashboard%2Fprofile%3Ftab%3D1"
	assert.Equal(t, want, rec.Header().Get("Hx-Redirect"))
	assert.Equal(t, want, rec.Header().Get("Hx-Replace-Url"))
}

func TestRequireRoles_APIClientsGetJSON(t *testing.T) {
	tests := []struct {
		name     string
		identity *domainauth.Identity
		wantCode int
		wantErr  string
	}{
		{name: "anonymous", identity: nil, wantCode: http.StatusUnauthorized, wantErr: "authentication_required"},
		{name: "wrong role", identity: testIdentity(domainauth.RoleUser), wantCode: http.StatusForbidden, wantErr: "insufficient_permissions"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/api/menu", nil)
			r.Header.Set("Accept", "application/json")
			r = withSession(r, newSession(t, tt.identity))
			rec := httptest.NewRecorder()

			RequireRoles(&stubResponder{}, guard.AnyRole(domainauth.RoleAdmin))(guardedOK()).ServeHTTP(rec, r)

			assert.Equal(t, tt.wantCode, rec.Code)
			var body map[string]string
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.wantErr, body["error"])
		})
	}
}

func TestRequireMenuEntry_UnknownRoleFollowsPolicy(t *testing.T) {
	odd := testIdentity(domainauth.Role("treasurer"))

	tests := []struct {
		policy     menu.UnknownRolePolicy
		key        string
		wantStatus int
	}{
		{policy: menu.FallbackToUser, key: menu.KeyProfile, wantStatus: http.StatusOK},
		{policy: menu.FallbackToUser, key: menu.KeyManageUsers, wantStatus: http.StatusForbidden},
		{policy: menu.DenyAll, key: menu.KeyProfile, wantStatus: http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(string(tt.policy)+"/"+tt.key, func(t *testing.T) {
			gate, err := RequireMenuEntry(&stubResponder{}, menu.Default(tt.policy), tt.key)
			require.NoError(t, err)

			r := withSession(asBrowser(httptest.NewRequest(http.MethodGet, "/dashboard", nil)), newSession(t, odd))
			rec := httptest.NewRecorder()
			gate(guardedOK()).ServeHTTP(rec, r)

			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}
}

func TestRequireMenuEntry_UnknownKey(t *testing.T) {
	_, err := RequireMenuEntry(&stubResponder{}, menu.Default(menu.FallbackToUser), "nope")
	require.Error(t, err)
}

func TestRedirectIfAuthenticated(t *testing.T) {
	mw := RedirectIfAuthenticated(dashboardPath)

	t.Run("signed in goes to redirect_uri", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/login?redirect_uri=/dashboard/payments", nil)
		r = withSession(r, newSession(t, testIdentity(domainauth.RoleMember)))
		rec := httptest.NewRecorder()
		mw(guardedOK()).ServeHTTP(rec, r)

		assert.Equal(t, http.StatusSeeOther, rec.Code)
		assert.Equal(t, "/dashboard/payments", rec.Header().Get("Location"))
	})

	t.Run("external redirect_uri is ignored", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/login?redirect_uri=//evil.example", nil)
		r = withSession(r, newSession(t, testIdentity(domainauth.RoleMember)))
		rec := httptest.NewRecorder()
		mw(guardedOK()).ServeHTTP(rec, r)

		assert.Equal(t, "/", rec.Header().Get("Location"))
	})

	t.Run("anonymous sees the page", func(t *testing.T) {
		r := withSession(httptest.NewRequest(http.MethodGet, "/login", nil), newSession(t, nil))
		rec := httptest.NewRecorder()
		mw(guardedOK()).ServeHTTP(rec, r)

		assert.Equal(t, http.StatusOK, rec.Code)
	})
}
