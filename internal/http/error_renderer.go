package httpx

import (
	"context"
	"errors"
	"maps"
	"net/http"

	apperrors "github.com/debate-club/portal/internal/errors"
)

var errNotFound = errors.New("not found")

// ErrorRenderer renders a page template with the given data.
type ErrorRenderer func(w http.ResponseWriter, r *http.Request, data any)

// ErrorOpts contains all options needed to render an error response.
type ErrorOpts struct {
	W http.ResponseWriter
	R *http.Request
	// Err is the error that occurred (optional when only FieldErrors are set).
	Err error
	// FieldErrors maps form field name to message.
	FieldErrors map[string]string
	// Renderer renders the page; typically UIHandlers.renderPage.
	Renderer ErrorRenderer
	PageMeta PageMeta
	// Data carries form values and options so the form re-renders as submitted.
	Data map[string]any
	// StatusCode overrides the status derived from Err. htmx requests always get 200 so
	// the swap happens.
	StatusCode int
	// ShowToast also raises the general message as a toast.
	ShowToast bool
}

// RenderError re-renders a page with inline field errors and a general message.
// AppError validation failures with a Field are attached to that field.
func (h *UIHandlers) RenderError(opts ErrorOpts) {
	if opts.Renderer == nil {
		http.Error(opts.W, "misconfigured error renderer", http.StatusInternalServerError)
		return
	}

	builder := h.NewTemplateData(opts.R, opts.PageMeta)
	general := processError(opts.Err, &opts.FieldErrors)
	builder.WithFieldErrors(opts.FieldErrors)
	switch {
	case general != "":
		builder.WithError(general)
	case len(opts.FieldErrors) > 0:
		builder.WithError(errMsgFixBelow)
	}
	data := builder.Build()
	maps.Copy(data, opts.Data)

	if opts.ShowToast && general != "" {
		triggerToast(opts.W, general, toastError)
	}

	status := opts.StatusCode
	if status == 0 {
		status = errorStatus(opts.Err, len(opts.FieldErrors) > 0)
	}
	if IsHTMX(opts.R) {
		status = http.StatusOK
	}
	if status != http.StatusOK {
		opts.W.Header().Set("Content-Type", "text/html; charset=utf-8")
		opts.W.WriteHeader(status)
	}
	opts.Renderer(opts.W, opts.R, data)
}

func errorStatus(err error, hasFieldErrors bool) int {
	if err == nil {
		if hasFieldErrors {
			return http.StatusUnprocessableEntity
		}
		return http.StatusOK
	}
	if apperrors.IsValidation(err) {
		return http.StatusUnprocessableEntity
	}
	return StatusForError(err)
}

// processError returns the user-facing general message for err. A validation error
// naming a field is moved into fieldErrors and reported through errMsgFixBelow.
func processError(err error, fieldErrors *map[string]string) string {
	if err == nil {
		return ""
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return "Request timed out. Please try again."
	}
	if errors.Is(err, context.Canceled) {
		return "Request was canceled."
	}

	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) {
		return genericErrorMessage
	}
	if appErr.Code == apperrors.ErrCodeValidation && appErr.Field != "" && fieldErrors != nil {
		if *fieldErrors == nil {
			*fieldErrors = make(map[string]string)
		}
		(*fieldErrors)[appErr.Field] = appErr.Message
		return errMsgFixBelow
	}
	if appErr.Code == apperrors.ErrCodeInternal || appErr.Message == "" {
		return genericErrorMessage
	}
	return appErr.Message
}

// handleServiceError routes errors that cannot be shown inline: a rejected session goes to
// login, a role refusal to the 403 page and a missing record to the 404 page.
// It reports whether it wrote a response.
func (h *UIHandlers) handleServiceError(w http.ResponseWriter, r *http.Request, err error) bool {
	switch {
	case apperrors.IsUnauthenticated(err):
		redirectToLogin(w, r)
	case apperrors.IsForbidden(err):
		h.Forbidden(w, r)
	case apperrors.IsNotFound(err):
		h.NotFound(w, r)
	default:
		return false
	}
	return true
}

// pageError renders spec with err as a page-level message after handleServiceError had
// its chance. Used by read-only pages.
func (h *UIHandlers) pageError(w http.ResponseWriter, r *http.Request, meta PageMeta, err error) {
	if h.handleServiceError(w, r, err) {
		return
	}
	h.logger().WarnContext(r.Context(), "page fetch failed", "path", r.URL.Path, "error", err)
	h.RenderError(ErrorOpts{
		W: w, R: r, Err: err,
		Renderer:  h.renderPage,
		PageMeta:  meta,
		ShowToast: true,
	})
}
