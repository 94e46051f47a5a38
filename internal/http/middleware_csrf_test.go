package httpx

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
)

func csrfTestHandler() http.Handler {
	return CSRFProtection(CSRFConfig{})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(GetCSRFToken(r)))
	}))
}

func issueCSRFToken(t *testing.T, handler http.Handler) string {
	t.Helper()
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/contact", nil))
	resp := w.Result()
	defer resp.Body.Close()
	for _, c := range resp.Cookies() {
		if c.Name == DefaultCSRFCookieName {
			if !c.HttpOnly {
				t.Error("CSRF cookie should be HttpOnly")
			}
			if c.SameSite != http.SameSiteStrictMode {
				t.Errorf("expected SameSite=Strict, got %v", c.SameSite)
			}
			return c.Value
		}
	}
	t.Fatal("CSRF cookie not set")
	return ""
}

func TestCSRFProtection_GetIssuesToken(t *testing.T) {
	handler := csrfTestHandler()
	token := issueCSRFToken(t, handler)
	if token == "" {
		t.Fatal("CSRF token is empty")
	}

	// The same token is exposed to templates on later requests.
	req := httptest.NewRequest(http.MethodGet, "/contact", nil)
	req.AddCookie(&http.Cookie{Name: DefaultCSRFCookieName, Value: token})
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	if w.Body.String() != token {
		t.Errorf("expected context token %q, got %q", token, w.Body.String())
	}
	if len(w.Result().Cookies()) != 0 {
		t.Error("existing token should not be reissued")
	}
}

func TestCSRFProtection_PostWithoutTokenFails(t *testing.T) {
	handler := csrfTestHandler()

	tests := []struct {
		name       string
		configure  func(r *http.Request)
		wantHeader string
	}{
		{
			name:      "browser form",
			configure: func(r *http.Request) { r.Header.Set("Accept", "text/html") },
		},
		{
			name:       "htmx",
			configure:  func(r *http.Request) { r.Header.Set("Hx-Request", "true") },
			wantHeader: "showToast",
		},
		{
			name:      "api client",
			configure: func(r *http.Request) { r.Header.Set("Accept", "application/json") },
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/contact", nil)
			tt.configure(req)
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)

			if w.Code != http.StatusForbidden {
				t.Errorf("expected status 403, got %d", w.Code)
			}
			if tt.wantHeader != "" && !strings.Contains(w.Header().Get("Hx-Trigger"), tt.wantHeader) {
				t.Errorf("expected Hx-Trigger to contain %q, got %q", tt.wantHeader, w.Header().Get("Hx-Trigger"))
			}
		})
	}
}

func TestCSRFProtection_PostWithValidHeaderToken(t *testing.T) {
	handler := csrfTestHandler()
	token := issueCSRFToken(t, handler)

	req := httptest.NewRequest(http.MethodPost, "/logout", nil)
	req.AddCookie(&http.Cookie{Name: DefaultCSRFCookieName, Value: token})
	req.Header.Set(DefaultCSRFHeaderName, token)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", w.Code)
	}
}

func TestCSRFProtection_PostWithValidFormToken(t *testing.T) {
	handler := csrfTestHandler()
	token := issueCSRFToken(t, handler)

	form := url.Values{DefaultCSRFCookieName: {token}, "email": {"ada@example.com"}}
	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.AddCookie(&http.Cookie{Name: DefaultCSRFCookieName, Value: token})
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", w.Code)
	}
}

func TestCSRFProtection_MismatchedTokenFails(t *testing.T) {
	handler := csrfTestHandler()
	token := issueCSRFToken(t, handler)

	req := httptest.NewRequest(http.MethodPost, "/logout", nil)
	req.AddCookie(&http.Cookie{Name: DefaultCSRFCookieName, Value: token})
	req.Header.Set(DefaultCSRFHeaderName, token+"x")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusForbidden {
		t.Errorf("expected status 403, got %d", w.Code)
	}
}

func TestCSRFProtection_JSONBodyNeedsHeader(t *testing.T) {
	handler := csrfTestHandler()
	token := issueCSRFToken(t, handler)

	req := httptest.NewRequest(http.MethodPost, "/api/thing", strings.NewReader(`{"csrf_token":"`+token+`"}`))
	req.Header.Set("Content-Type", "application/json")
	req.AddCookie(&http.Cookie{Name: DefaultCSRFCookieName, Value: token})
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusForbidden {
		t.Errorf("expected status 403, got %d", w.Code)
	}
}

func TestCSRFProtection_SecureBehindProxy(t *testing.T) {
	handler := csrfTestHandler()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Forwarded-Proto", "http, https")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	for _, c := range w.Result().Cookies() {
		if c.Name == DefaultCSRFCookieName && !c.Secure {
			t.Error("expected Secure cookie behind an https proxy")
		}
	}
}
