package httpx

import (
	"errors"
	"fmt"
	"net/http"

	domainauth "github.com/debate-club/portal/internal/domain/auth"
	"github.com/debate-club/portal/internal/domain/guard"
	"github.com/debate-club/portal/internal/domain/menu"
	"github.com/debate-club/portal/internal/observability/metrics"
)

var (
	errSessionLoading = errors.New("session is still loading")
	errAuthRequired   = errors.New("authentication required")
	errInsufficient   = errors.New("insufficient permissions")
)

// GuardResponder renders the browser side of guard outcomes that do not redirect.
type GuardResponder interface {
	// Pending renders a neutral loading view. It must not reveal the guarded content.
	Pending(w http.ResponseWriter, r *http.Request)
	// Forbidden renders the 403 page in place, leaving the URL unchanged.
	Forbidden(w http.ResponseWriter, r *http.Request)
}

// RequireRoles returns a middleware that gates next behind the request's session.
// An empty requirement admits any authenticated identity.
//
// Browsers get the pending page, a history-replacing redirect to login, or the 403 page.
// API clients get 503, 401 or 403 JSON errors.
func RequireRoles(resp GuardResponder, req guard.Requirement) func(http.Handler) http.Handler {
	return requireRoles(resp, req, nil)
}

// RequireMenuEntry gates next behind the role set of the menu entry key. A role outside
// the closed set is resolved by the registry's unknown-role policy first, so a page is
// reachable exactly when its menu entry is shown.
func RequireMenuEntry(resp GuardResponder, reg *menu.Registry, key string) (func(http.Handler) http.Handler, error) {
	entry, ok := reg.Entry(key)
	if !ok {
		return nil, fmt.Errorf("no menu entry %q", key)
	}
	resolve := func(st domainauth.SessionState) domainauth.SessionState {
		if st.Identity == nil {
			return st
		}
		if role, ok := reg.EffectiveRole(st.Identity.Role); ok {
			id := *st.Identity
			id.Role = role
			st.Identity = &id
		}
		return st
	}
	return requireRoles(resp, guard.AnyRole(entry.Roles...), resolve), nil
}

func requireRoles(
	resp GuardResponder,
	req guard.Requirement,
	resolve func(domainauth.SessionState) domainauth.SessionState,
) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			state := SessionStateFromContext(r.Context())
			if resolve != nil {
				state = resolve(state)
			}
			outcome := guard.Decide(state, req)
			metrics.GuardDecisionsTotal.WithLabelValues(outcome.String()).Inc()

			browser := IsBrowserRequest(r)
			switch outcome {
			case guard.Authorized:
				next.ServeHTTP(w, r)
			case guard.Pending:
				if browser {
					resp.Pending(w, r)
					return
				}
				w.Header().Set("Retry-After", "1")
				WriteError(w, ErrorParams{Code: http.StatusServiceUnavailable, ErrCode: "session_loading", Err: errSessionLoading})
			case guard.Unauthenticated:
				if browser {
					redirectToLogin(w, r)
					return
				}
				WriteError(w, ErrorParams{Code: http.StatusUnauthorized, ErrCode: "authentication_required", Err: errAuthRequired})
			default:
				if browser {
					resp.Forbidden(w, r)
					return
				}
				WriteError(w, ErrorParams{Code: http.StatusForbidden, ErrCode: "insufficient_permissions", Err: errInsufficient})
			}
		})
	}
}

// RequireAuth admits any authenticated identity.
func RequireAuth(resp GuardResponder) func(http.Handler) http.Handler {
	return RequireRoles(resp, nil)
}

// RedirectIfAuthenticated sends signed-in browsers away from pages meant for guests,
// such as login and register.
func RedirectIfAuthenticated(target string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodGet && SessionStateFromContext(r.Context()).Authenticated {
				dest := target
				if ru := r.URL.Query().Get("redirect_uri"); ru != "" {
					dest = safeRedirectPath(ru)
				}
				http.Redirect(w, r, dest, http.StatusSeeOther)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
