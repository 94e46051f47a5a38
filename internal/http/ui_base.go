package httpx

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	domainauth "github.com/debate-club/portal/internal/domain/auth"
	"github.com/debate-club/portal/internal/domain/menu"
	"github.com/debate-club/portal/internal/domain/model"
	"github.com/debate-club/portal/internal/http/ui/viewmodel"
	"github.com/debate-club/portal/internal/http/validation"
	"github.com/debate-club/portal/internal/service"
)

// ProfileService is a minimal interface for the profile page.
type ProfileService interface {
	Current(ctx context.Context, sess service.Session) (domainauth.Identity, error)
	Update(ctx context.Context, sess service.Session, upd model.ProfileUpdate) (domainauth.Identity, error)
}

// MembersService is a minimal interface for member management.
type MembersService interface {
	List(ctx context.Context, sess service.Session, filter service.MemberFilter) ([]domainauth.Identity, error)
	Delete(ctx context.Context, sess service.Session, id string) error
	AssignRole(ctx context.Context, sess service.Session, id string, role domainauth.Role) (domainauth.Identity, error)
}

// PaymentsService is a minimal interface for the payment pages.
type PaymentsService interface {
	Mine(ctx context.Context, sess service.Session) ([]model.Payment, error)
	All(ctx context.Context, sess service.Session, status model.PaymentStatus) ([]model.Payment, error)
	Initiate(ctx context.Context, sess service.Session, req model.InitiatePaymentRequest) (model.PaymentSession, error)
	SetStatus(ctx context.Context, sess service.Session, id string, status model.PaymentStatus) (model.Payment, error)
}

// EventsService is a minimal interface for the public and management event pages.
type EventsService interface {
	Schedule(ctx context.Context) (service.Schedule, error)
	Get(ctx context.Context, id string) (model.ClubEvent, error)
	Create(ctx context.Context, sess service.Session, req model.CreateEventRequest) (model.ClubEvent, error)
	Update(ctx context.Context, sess service.Session, id string, req model.UpdateEventRequest) (model.ClubEvent, error)
	Delete(ctx context.Context, sess service.Session, id string) error
}

// GalleryService is a minimal interface for the gallery pages.
type GalleryService interface {
	List(ctx context.Context) ([]model.GalleryImage, error)
	Lightbox(ctx context.Context, index int) (service.LightboxView, error)
	Add(ctx context.Context, sess service.Session, req model.AddImageRequest) (model.GalleryImage, error)
	Delete(ctx context.Context, sess service.Session, id string) error
}

// ContactService is a minimal interface for the contact form.
type ContactService interface {
	Send(ctx context.Context, msg model.ContactMessage) error
}

// AdminService is a minimal interface for the admin console.
type AdminService interface {
	Overview(ctx context.Context, sess service.Session) (service.Overview, error)
}

// Compile-time interface assertions to ensure concrete services satisfy their UI interfaces.
var (
	_ ProfileService  = (*service.ProfileService)(nil)
	_ MembersService  = (*service.MemberService)(nil)
	_ PaymentsService = (*service.PaymentService)(nil)
	_ EventsService   = (*service.EventService)(nil)
	_ GalleryService  = (*service.GalleryService)(nil)
	_ ContactService  = (*service.ContactService)(nil)
	_ AdminService    = (*service.AdminService)(nil)
)

// UIHandlers serves browser-facing routes.
type UIHandlers struct {
	T         *TemplateRenderer
	Menu      *menu.Registry
	Validator *validation.Validator
	Profile   ProfileService
	Members   MembersService
	Payments  PaymentsService
	Events    EventsService
	Gallery   GalleryService
	Contact   ContactService
	Admin     AdminService
	IsDev     bool
	Logger    *slog.Logger
}

// logger returns the configured logger or falls back to slog.Default().
func (h *UIHandlers) logger() *slog.Logger {
	if h != nil && h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}

func (h *UIHandlers) validator() *validation.Validator {
	if h.Validator == nil {
		h.Validator = validation.New()
	}
	return h.Validator
}

// PageMeta contains metadata for page rendering.
type PageMeta struct {
	Title       string
	PageTitle   string
	CurrentPage string
}

const siteName = "Debate Club"

// buildLayout constructs shared layout metadata from the request/session context.
func (h *UIHandlers) buildLayout(r *http.Request, meta PageMeta) viewmodel.Layout {
	title := meta.Title
	if title == "" {
		title = siteName
	} else if !strings.HasSuffix(title, siteName) {
		title += " - " + siteName
	}

	layout := viewmodel.Layout{
		Title:       title,
		PageTitle:   meta.PageTitle,
		CurrentPage: meta.CurrentPage,
		CSRFToken:   GetCSRFToken(r),
		Dashboard:   dashboardPages[meta.CurrentPage],
		Flash:       flashMessages[r.URL.Query().Get("flash")],
	}

	if id, ok := CurrentIdentity(r.Context()); ok {
		layout.User = &id
		layout.IsAuthenticated = true
		if h.Menu != nil {
			for _, e := range h.Menu.AccessibleEntries(id.Role) {
				layout.Menu = append(layout.Menu, viewmodel.MenuItem{Entry: e, Active: isActivePath(r.URL.Path, e.Path)})
			}
		}
	}
	return layout
}

// isActivePath marks the menu entry for path. "/dashboard" is only active on itself so it
// does not light up under every dashboard page.
func isActivePath(path, entryPath string) bool {
	path = strings.TrimSuffix(path, "/")
	if path == entryPath {
		return true
	}
	if entryPath == "/dashboard" || entryPath == "/admin" {
		return false
	}
	return strings.HasPrefix(path, entryPath+"/")
}

// basePageData constructs the common page data map with user context.
func (h *UIHandlers) basePageData(r *http.Request, meta PageMeta) map[string]any {
	layout := h.buildLayout(r, meta)
	return map[string]any{
		"Layout":          &layout,
		"Title":           layout.Title,
		"PageTitle":       layout.PageTitle,
		"CurrentPage":     layout.CurrentPage,
		"CSRFToken":       layout.CSRFToken,
		"IsAuthenticated": layout.IsAuthenticated,
		"User":            layout.User,
	}
}

// renderPage renders a page with htmx partial support.
func (h *UIHandlers) renderPage(w http.ResponseWriter, r *http.Request, data any) {
	if !WantsPartial(r) {
		if err := h.T.RenderFull(w, r, data); err != nil {
			h.logAndRenderTemplateError(w, r, err)
		}
		return
	}
	if err := h.T.RenderPartial(w, r, data); err != nil {
		h.logAndRenderTemplateError(w, r, err)
	}
}

// renderPageStatus is renderPage with a non-200 status.
func (h *UIHandlers) renderPageStatus(w http.ResponseWriter, r *http.Request, status int, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	h.renderPage(w, r, data)
}

func (h *UIHandlers) logAndRenderTemplateError(w http.ResponseWriter, r *http.Request, err error) {
	h.logger().ErrorContext(r.Context(), "render failed", "path", r.URL.Path, "error", err)
	http.Error(w, "Internal Server Error", http.StatusInternalServerError)
}

// statusPage renders the standalone status page used for 403, 404 and 500.
func (h *UIHandlers) statusPage(w http.ResponseWriter, r *http.Request, status int, message string) {
	data := h.basePageData(r, PageMeta{Title: http.StatusText(status)})
	data["Code"] = status
	data["Message"] = message
	data["ShowLogin"] = !SessionStateFromContext(r.Context()).Authenticated
	data["RedirectURI"] = safeRedirectPath(r.URL.RequestURI())

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if h.T == nil {
		_, _ = w.Write([]byte(message))
		return
	}
	if err := h.T.RenderError(w, r, data); err != nil {
		h.logger().ErrorContext(r.Context(), "render status page failed", "status", status, "error", err)
	}
}

// Forbidden renders the 403 page in place, keeping the requested URL.
func (h *UIHandlers) Forbidden(w http.ResponseWriter, r *http.Request) {
	if IsHTMX(r) {
		// Swap the whole page so the guarded view never mixes with the old one.
		w.Header().Set("Hx-Retarget", "body")
		w.Header().Set("Hx-Reswap", "innerHTML")
	}
	h.statusPage(w, r, http.StatusForbidden, "You don't have permission to view this page.")
}

// Pending renders the neutral loading page. It refreshes itself until the session settles.
func (h *UIHandlers) Pending(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("Retry-After", "1")
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusServiceUnavailable)
	data := map[string]any{"Title": "Loading - " + siteName, "RefreshURL": safeRedirectPath(r.URL.RequestURI())}
	if h.T == nil {
		_, _ = w.Write([]byte("Loading…"))
		return
	}
	if err := h.T.RenderLoading(w, r, data); err != nil {
		h.logger().ErrorContext(r.Context(), "render loading page failed", "error", err)
	}
}

// NotFound renders an HTML 404 for browsers and a JSON 404 for API clients.
func (h *UIHandlers) NotFound(w http.ResponseWriter, r *http.Request) {
	if !IsBrowserRequest(r) {
		WriteError(w, ErrorParams{Code: http.StatusNotFound, ErrCode: "not_found", Err: errNotFound})
		return
	}
	h.statusPage(w, r, http.StatusNotFound, "The page you're looking for doesn't exist.")
}

var _ GuardResponder = (*UIHandlers)(nil)

// session returns the request's session store. Routes behind RequireRoles always have one.
func session(r *http.Request) service.Session {
	if s, ok := GetSessionFromContext(r.Context()); ok {
		return s
	}
	return anonymousSession{}
}

// anonymousSession stands in when a handler runs without the Sessions middleware.
type anonymousSession struct{}

func (anonymousSession) Token() string { return "" }
func (anonymousSession) Identity() (domainauth.Identity, bool) { return domainauth.Identity{}, false }
func (anonymousSession) UpdateIdentity(context.Context, domainauth.Identity) {}
func (anonymousSession) Logout(context.Context) {}
