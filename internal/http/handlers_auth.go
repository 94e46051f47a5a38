package httpx

import (
	"net/http"

	"github.com/debate-club/portal/internal/domain/model"
	apperrors "github.com/debate-club/portal/internal/errors"
	"github.com/debate-club/portal/internal/service"
)

const dashboardPath = "/dashboard"

var (
	loginMeta    = PageMeta{Title: "Sign in", PageTitle: "Sign in", CurrentPage: PageLogin}
	registerMeta = PageMeta{Title: "Join the club", PageTitle: "Create an account", CurrentPage: PageRegister}
)

// LoginPage renders the sign-in form. redirect_uri is carried through as a hidden field.
func (h *UIHandlers) LoginPage(w http.ResponseWriter, r *http.Request) {
	data := h.NewTemplateData(r, loginMeta).
		With("Form", model.LoginRequest{}).
		With("RedirectURI", loginRedirect(r.URL.Query().Get("redirect_uri"))).
		Build()
	h.renderPage(w, r, data)
}

// LoginSubmit signs the client in and sends it to redirect_uri, or the dashboard.
// Credentials are validated before any backend call. The password is never echoed back.
func (h *UIHandlers) LoginSubmit(w http.ResponseWriter, r *http.Request) {
	errs := parseForm(r)
	req := model.LoginRequest{Email: formValue(r, "email"), Password: r.FormValue("password")}
	redirect := loginRedirect(r.FormValue("redirect_uri"))
	form := map[string]any{"Form": model.LoginRequest{Email: req.Email}, "RedirectURI": redirect}

	errs = mergeErrors(errs, h.validator().Struct(req))
	if len(errs) > 0 {
		h.RenderError(ErrorOpts{W: w, R: r, FieldErrors: errs, Renderer: h.renderPage, PageMeta: loginMeta, Data: form})
		return
	}

	store, ok := GetSessionFromContext(r.Context())
	if !ok {
		h.RenderError(ErrorOpts{
			W: w, R: r, Err: apperrors.Internal("session unavailable"),
			Renderer: h.renderPage, PageMeta: loginMeta, Data: form,
		})
		return
	}
	if res := store.Login(r.Context(), req.Email, req.Password); !res.Success {
		h.RenderError(ErrorOpts{W: w, R: r, Err: loginFailure(res), Renderer: h.renderPage, PageMeta: loginMeta, Data: form})
		return
	}
	seeOther(w, r, redirect)
}

// RegisterPage renders the sign-up form.
func (h *UIHandlers) RegisterPage(w http.ResponseWriter, r *http.Request) {
	data := h.NewTemplateData(r, registerMeta).With("Form", model.RegisterRequest{}).Build()
	h.renderPage(w, r, data)
}

// RegisterSubmit creates an account, signs it in and lands on the dashboard.
func (h *UIHandlers) RegisterSubmit(w http.ResponseWriter, r *http.Request) {
	errs := parseForm(r)
	req := model.RegisterRequest{
		Name:       formValue(r, "name"),
		Email:      formValue(r, "email"),
		Password:   r.FormValue("password"),
		Confirm:    r.FormValue("confirm"),
		Phone:      formValue(r, "phone"),
		Department: formValue(r, "department"),
		Batch:      formValue(r, "batch"),
	}
	echo := req
	echo.Password, echo.Confirm = "", ""
	form := map[string]any{"Form": echo}

	errs = mergeErrors(errs, h.validator().Struct(req))
	if len(errs) > 0 {
		h.RenderError(ErrorOpts{W: w, R: r, FieldErrors: errs, Renderer: h.renderPage, PageMeta: registerMeta, Data: form})
		return
	}

	store, ok := GetSessionFromContext(r.Context())
	if !ok {
		h.RenderError(ErrorOpts{
			W: w, R: r, Err: apperrors.Internal("session unavailable"),
			Renderer: h.renderPage, PageMeta: registerMeta, Data: form,
		})
		return
	}
	if res := store.Register(r.Context(), req); !res.Success {
		h.RenderError(ErrorOpts{W: w, R: r, Err: loginFailure(res), Renderer: h.renderPage, PageMeta: registerMeta, Data: form})
		return
	}
	seeOther(w, r, dashboardPath+"?flash=welcome")
}

// Logout clears the session and returns to the landing page.
func (h *UIHandlers) Logout(w http.ResponseWriter, r *http.Request) {
	if store, ok := GetSessionFromContext(r.Context()); ok {
		store.Logout(r.Context())
	}
	seeOther(w, r, "/?flash=signed-out")
}

// loginFailure turns a failed login result into an error for the form. A result naming a
// field is shown inline there.
func loginFailure(res service.LoginResult) error {
	if res.Field != "" {
		return apperrors.ValidationField(res.Field, res.Message)
	}
	return apperrors.Unauthenticated(res.Message)
}

// loginRedirect is where a successful login lands. The landing page is not a useful
// destination, so it becomes the dashboard.
func loginRedirect(candidate string) string {
	target := safeRedirectPath(candidate)
	if target == "/" {
		return dashboardPath
	}
	return target
}
