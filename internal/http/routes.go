package httpx

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	portal "github.com/debate-club/portal"
	domainauth "github.com/debate-club/portal/internal/domain/auth"
	"github.com/debate-club/portal/internal/domain/menu"
	httpassets "github.com/debate-club/portal/internal/http/assets"
	"github.com/debate-club/portal/internal/http/validation"
	"github.com/debate-club/portal/internal/ports"
)

// StaticPathFromRoot is the on-disk static directory used in dev mode.
const StaticPathFromRoot = "frontend/static"

// RouterServices holds everything the HTTP router needs.
type RouterServices struct {
	Menu     *menu.Registry
	Storage  ports.ClientStorage
	Auth     ports.Authenticator
	Profile  ProfileService
	Members  MembersService
	Payments PaymentsService
	Events   EventsService
	Gallery  GalleryService
	Contact  ContactService
	Admin    AdminService

	// TemplateFS and StaticFS override where pages and assets are loaded from.
	// When nil, dev mode reads from disk and production uses the embedded copies.
	TemplateFS fs.FS
	StaticFS   fs.FS

	CookieDomain     string
	ClientCookieName string
	SessionInitWait  time.Duration
	Compression      bool
	Metrics          bool
	IsDev            bool         // Development mode: templates and assets from disk.
	Logger           *slog.Logger // Logger for template and HTTP errors (optional)
}

// guardedRoute binds a pattern to the menu entry whose role set gates it.
type guardedRoute struct {
	pattern string
	key     string
	handle  func(*UIHandlers, http.ResponseWriter, *http.Request)
}

// guardedRoutes is every protected view. A view's roles are its menu entry's roles, so
// the menu never links to a page the guard would refuse.
//
//nolint:gochecknoglobals // static route table
var guardedRoutes = []guardedRoute{
	{"GET /dashboard", menu.KeyOverview, (*UIHandlers).Dashboard},

	{"GET /dashboard/profile", menu.KeyProfile, (*UIHandlers).ProfilePage},
	{"POST /dashboard/profile", menu.KeyProfile, (*UIHandlers).ProfileSubmit},

	{"GET /dashboard/payments", menu.KeyMyPayments, (*UIHandlers).MyPaymentsPage},
	{"POST /dashboard/payments", menu.KeyMyPayments, (*UIHandlers).InitiatePayment},
	{"GET /dashboard/payments/result", menu.KeyMyPayments, (*UIHandlers).PaymentResult},

	{"GET /dashboard/events", menu.KeyMemberEvents, (*UIHandlers).MemberEventsPage},

	{"GET /dashboard/manage/users", menu.KeyManageUsers, (*UIHandlers).ManageUsers},
	{"POST /dashboard/manage/users/{id}/delete", menu.KeyManageUsers, (*UIHandlers).DeleteUser},

	{"GET /dashboard/manage/payments", menu.KeyManagePayments, (*UIHandlers).ManagePayments},
	{"POST /dashboard/manage/payments/{id}/status", menu.KeyManagePayments, (*UIHandlers).UpdatePaymentStatus},

	{"GET /dashboard/manage/events", menu.KeyManageEvents, (*UIHandlers).ManageEvents},
	{"GET /dashboard/manage/events/new", menu.KeyManageEvents, (*UIHandlers).NewEvent},
	{"POST /dashboard/manage/events", menu.KeyManageEvents, (*UIHandlers).CreateEvent},
	{"GET /dashboard/manage/events/{id}/edit", menu.KeyManageEvents, (*UIHandlers).EditEvent},
	{"POST /dashboard/manage/events/{id}", menu.KeyManageEvents, (*UIHandlers).UpdateEvent},
	{"POST /dashboard/manage/events/{id}/delete", menu.KeyManageEvents, (*UIHandlers).DeleteEvent},

	{"GET /dashboard/manage/gallery", menu.KeyManageGallery, (*UIHandlers).ManageGallery},
	{"POST /dashboard/manage/gallery", menu.KeyManageGallery, (*UIHandlers).AddImage},
	{"POST /dashboard/manage/gallery/{id}/delete", menu.KeyManageGallery, (*UIHandlers).DeleteImage},

	{"GET /admin", menu.KeyAdminConsole, (*UIHandlers).AdminConsole},
	{"GET /admin/roles", menu.KeyAdminRoleAssign, (*UIHandlers).AdminRoles},
	{"POST /admin/roles/{id}", menu.KeyAdminRoleAssign, (*UIHandlers).AssignRole},
}

// RouteInfo describes a guarded route for tooling.
type RouteInfo struct {
	Pattern string
	MenuKey string
	Roles   []domainauth.Role
}

// GuardedRoutes lists the protected routes with the role sets reg gives them.
func GuardedRoutes(reg *menu.Registry) []RouteInfo {
	out := make([]RouteInfo, 0, len(guardedRoutes))
	for _, gr := range guardedRoutes {
		e, _ := reg.Entry(gr.key)
		out = append(out, RouteInfo{Pattern: gr.pattern, MenuKey: gr.key, Roles: e.Roles})
	}
	return out
}

// NewRouter builds the portal's handler: infrastructure routes, then the session-aware
// application behind Sessions and CSRF protection.
func NewRouter(services RouterServices) (http.Handler, error) {
	if services.Menu == nil {
		return nil, errors.New("menu registry is required")
	}
	logger := services.Logger
	if logger == nil {
		logger = slog.Default()
	}

	staticFS, err := staticFileSystem(services)
	if err != nil {
		return nil, err
	}
	uiHandlers, err := setupUIHandlers(services, staticFS, logger)
	if err != nil {
		return nil, err
	}

	app := http.NewServeMux()
	registerPublicRoutes(app, uiHandlers)
	registerAPIRoutes(app, uiHandlers)
	if err := registerGuardedRoutes(app, uiHandlers); err != nil {
		return nil, err
	}

	cookieDomain := CookieDomain(services.CookieDomain, logger)
	var appHandler http.Handler = &notFoundHandler{mux: app, uiHandlers: uiHandlers}
	appHandler = CSRFProtection(CSRFConfig{CookieDomain: cookieDomain})(appHandler)
	appHandler = Sessions(SessionConfig{
		Storage:      services.Storage,
		Auth:         services.Auth,
		CookieName:   services.ClientCookieName,
		CookieDomain: cookieDomain,
		InitWait:     services.SessionInitWait,
		Logger:       logger,
	})(appHandler)

	root := http.NewServeMux()
	root.Handle("GET /static/", staticWithCacheHeaders(http.StripPrefix("/static/", http.FileServerFS(staticFS))))
	root.HandleFunc("GET /healthz", healthHandler)
	root.HandleFunc("HEAD /healthz", healthHandler)
	if services.Metrics {
		root.Handle("GET /metrics", promhttp.Handler())
	}
	root.Handle("/", appHandler)

	var handler http.Handler = routeRecorder{mux: root}
	handler = BrowserDetection()(handler)
	if services.Compression {
		handler = Compression(CompressionConfig{Logger: logger})(handler)
	}
	handler = Logging(logger)(handler)
	handler = Recover(logger)(handler)
	return handler, nil
}

func registerPublicRoutes(mux *http.ServeMux, h *UIHandlers) {
	mux.HandleFunc("GET /{$}", h.Home)
	mux.HandleFunc("GET /about", h.About)
	mux.HandleFunc("GET /events", h.EventsPage)
	mux.HandleFunc("GET /events/{id}", h.EventDetail)
	mux.HandleFunc("GET /gallery", h.GalleryPage)
	mux.HandleFunc("GET /gallery/{index}", h.LightboxPage)
	mux.HandleFunc("GET /contact", h.ContactForm)
	mux.HandleFunc("POST /contact", h.ContactSubmit)

	signedOutOnly := RedirectIfAuthenticated(dashboardPath)
	mux.Handle("GET /login", signedOutOnly(http.HandlerFunc(h.LoginPage)))
	mux.HandleFunc("POST /login", h.LoginSubmit)
	mux.Handle("GET /register", signedOutOnly(http.HandlerFunc(h.RegisterPage)))
	mux.HandleFunc("POST /register", h.RegisterSubmit)
	mux.HandleFunc("POST /logout", h.Logout)
}

func registerAPIRoutes(mux *http.ServeMux, h *UIHandlers) {
	mux.HandleFunc("GET /api/session", h.SessionAPI)
	mux.HandleFunc("GET /api/events", h.EventsAPI)
	mux.Handle("GET /api/menu", RequireAuth(h)(http.HandlerFunc(h.MenuAPI)))
}

func registerGuardedRoutes(mux *http.ServeMux, h *UIHandlers) error {
	for _, gr := range guardedRoutes {
		gate, err := RequireMenuEntry(h, h.Menu, gr.key)
		if err != nil {
			return fmt.Errorf("route %q: %w", gr.pattern, err)
		}
		handle := gr.handle
		next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { handle(h, w, r) })
		mux.Handle(gr.pattern, gate(next))
	}
	return nil
}

// staticFileSystem picks the static asset root: the override, the disk copy in dev mode,
// or the embedded copy.
func staticFileSystem(services RouterServices) (fs.FS, error) {
	if services.StaticFS != nil {
		return services.StaticFS, nil
	}
	if services.IsDev {
		return os.DirFS(StaticPathFromRoot), nil
	}
	sub, err := fs.Sub(portal.StaticFS, "frontend/static")
	if err != nil {
		return nil, fmt.Errorf("static assets: %w", err)
	}
	return sub, nil
}

func templateFileSystem(services RouterServices) (fs.FS, error) {
	if services.TemplateFS != nil {
		return services.TemplateFS, nil
	}
	if services.IsDev {
		return os.DirFS(TemplatePathFromRoot), nil
	}
	sub, err := fs.Sub(portal.TemplateFS, "frontend/templates")
	if err != nil {
		return nil, fmt.Errorf("templates: %w", err)
	}
	return sub, nil
}

// setupUIHandlers creates UI handlers with template renderer and asset resolver.
func setupUIHandlers(services RouterServices, staticFS fs.FS, logger *slog.Logger) (*UIHandlers, error) {
	templateFS, err := templateFileSystem(services)
	if err != nil {
		return nil, err
	}

	resolver, err := httpassets.NewAssetResolver(staticFS)
	if err != nil {
		// Unversioned asset URLs still work; they just are not cached long-term.
		logger.Warn("asset fingerprinting unavailable", slog.Any("error", err))
		resolver = nil
	}

	tr, err := NewTemplateRenderer(TemplateRendererConfig{
		TemplateFS: templateFS,
		Resolver:   resolver,
		DevMode:    services.IsDev,
		Logger:     logger,
	})
	if err != nil {
		return nil, fmt.Errorf("template renderer: %w", err)
	}

	return &UIHandlers{
		T:         tr,
		Menu:      services.Menu,
		Validator: validation.New(),
		Profile:   services.Profile,
		Members:   services.Members,
		Payments:  services.Payments,
		Events:    services.Events,
		Gallery:   services.Gallery,
		Contact:   services.Contact,
		Admin:     services.Admin,
		IsDev:     services.IsDev,
		Logger:    logger,
	}, nil
}

// staticWithCacheHeaders adds cache headers. URLs carrying a content version (?v=) are
// immutable; anything else must be revalidated.
func staticWithCacheHeaders(handler http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("v") != "" {
			w.Header().Set("Cache-Control", "public, max-age=31536000, immutable")
		} else {
			w.Header().Set("Cache-Control", "no-cache")
		}
		handler.ServeHTTP(w, r)
	})
}

// routeRecorder reports the infrastructure route that matched, unless the application
// mux already reported a more specific one.
type routeRecorder struct {
	mux *http.ServeMux
}

func (rr routeRecorder) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	rr.mux.ServeHTTP(w, r)
	if r.Pattern != "/" {
		setRoutePattern(r.Context(), r.Pattern)
	}
}

// notFoundHandler wraps a ServeMux and provides custom 404 handling.
type notFoundHandler struct {
	mux        *http.ServeMux
	uiHandlers *UIHandlers
}

// ServeHTTP implements http.Handler and provides custom 404 handling.
func (h *notFoundHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	cw := newCaptureWriter(w)
	h.mux.ServeHTTP(cw, r)
	setRoutePattern(r.Context(), r.Pattern)

	// The mux answers unmatched paths with its own 404 and wrong methods with 405.
	if r.Pattern == "" && cw.status == http.StatusNotFound {
		h.uiHandlers.NotFound(w, r)
		return
	}
	cw.flushTo(w)
}

// captureWriter buffers headers, status and body so we can decide post-dispatch.
type captureWriter struct {
	rw     http.ResponseWriter
	header http.Header
	status int
	buf    bytes.Buffer
}

func newCaptureWriter(w http.ResponseWriter) *captureWriter {
	return &captureWriter{rw: w, header: make(http.Header), status: http.StatusOK}
}

func (c *captureWriter) Header() http.Header         { return c.header }
func (c *captureWriter) WriteHeader(code int)        { c.status = code }
func (c *captureWriter) Write(b []byte) (int, error) { return c.buf.Write(b) }

func (c *captureWriter) flushTo(w http.ResponseWriter) {
	for k, vs := range c.header {
		for _, v := range vs {
			w.Header().Add(k, v)
		}
	}
	w.WriteHeader(c.status)
	if _, err := w.Write(c.buf.Bytes()); err != nil {
		slog.Debug("failed to write captured response", "error", err)
	}
}
