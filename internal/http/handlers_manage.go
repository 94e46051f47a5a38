package httpx

import (
	"maps"
	"net/http"
	"net/url"
	"slices"
	"strings"

	domainauth "github.com/debate-club/portal/internal/domain/auth"
	"github.com/debate-club/portal/internal/domain/model"
	"github.com/debate-club/portal/internal/http/ui/viewmodel"
	"github.com/debate-club/portal/internal/service"
)

var (
	manageUsersMeta    = PageMeta{Title: "Manage Users", PageTitle: "Members", CurrentPage: PageManageUsers}
	managePaymentsMeta = PageMeta{Title: "Manage Payments", PageTitle: "Payments", CurrentPage: PageManagePayments}
	manageEventsMeta   = PageMeta{Title: "Manage Events", PageTitle: "Events", CurrentPage: PageManageEvents}
	manageGalleryMeta  = PageMeta{Title: "Manage Gallery", PageTitle: "Gallery", CurrentPage: PageManageGallery}
)

// memberQuery is the filter and page of a member table.
type memberQuery struct {
	Query string
	Role  domainauth.Role
	Page  int
}

func parseMemberQuery(r *http.Request) memberQuery {
	q := r.URL.Query()
	mq := memberQuery{Query: strings.TrimSpace(q.Get("q")), Page: pageParam(r)}
	if role, ok := domainauth.ParseRole(q.Get("role")); ok {
		mq.Role = role
	}
	return mq
}

// ManageUsers lists accounts with search, role filter and pagination.
func (h *UIHandlers) ManageUsers(w http.ResponseWriter, r *http.Request) {
	h.renderManageUsers(w, r, nil)
}

func (h *UIHandlers) renderManageUsers(w http.ResponseWriter, r *http.Request, actionErr error) {
	h.renderMemberPage(w, r, manageUsersMeta, "/dashboard/manage/users", actionErr)
}

func (h *UIHandlers) renderMemberPage(w http.ResponseWriter, r *http.Request, meta PageMeta, basePath string, actionErr error) {
	mq := parseMemberQuery(r)
	users, err := h.Members.List(r.Context(), session(r), service.MemberFilter{Query: mq.Query, Role: mq.Role})
	if err != nil {
		h.pageError(w, r, meta, err)
		return
	}
	rows, p := viewmodel.Paginate(users, mq.Page, membersPageSize)
	extra := map[string]any{
		"Users":      rows,
		"Query":      mq.Query,
		"RoleFilter": string(mq.Role),
		"Pagination": withPageURLs(p, basePath, r.URL.Query()),
	}
	if actionErr != nil {
		h.RenderError(ErrorOpts{
			W: w, R: r, Err: actionErr,
			Renderer: h.renderPage, PageMeta: meta, Data: extra,
			ShowToast: true,
		})
		return
	}
	data := h.NewTemplateData(r, meta).
		WithPagination(p, basePath).
		With("Users", rows).
		With("Query", mq.Query).
		With("RoleFilter", string(mq.Role)).
		Build()
	h.renderPage(w, r, data)
}

func withPageURLs(p viewmodel.Pagination, basePath string, q url.Values) viewmodel.Pagination {
	if p.HasPrev {
		p.PrevURL = buildPageURL(basePath, q, p.Page-1)
	}
	if p.HasNext {
		p.NextURL = buildPageURL(basePath, q, p.Page+1)
	}
	return p
}

// DeleteUser removes an account and returns to the list.
func (h *UIHandlers) DeleteUser(w http.ResponseWriter, r *http.Request) {
	if err := h.Members.Delete(r.Context(), session(r), r.PathValue("id")); err != nil {
		if h.handleServiceError(w, r, err) {
			return
		}
		h.renderManageUsers(w, r, err)
		return
	}
	seeOther(w, r, backTo(r, "/dashboard/manage/users")+"flash=user-deleted")
}

// ManagePayments lists every payment, optionally filtered by ?status.
func (h *UIHandlers) ManagePayments(w http.ResponseWriter, r *http.Request) {
	h.renderManagePayments(w, r, nil)
}

func (h *UIHandlers) renderManagePayments(w http.ResponseWriter, r *http.Request, actionErr error) {
	status, _ := model.ParsePaymentStatus(r.URL.Query().Get("status"))
	payments, err := h.Payments.All(r.Context(), session(r), status)
	if err != nil {
		h.pageError(w, r, managePaymentsMeta, err)
		return
	}
	extra := map[string]any{"Payments": payments, "StatusFilter": string(status)}
	if actionErr != nil {
		h.RenderError(ErrorOpts{
			W: w, R: r, Err: actionErr,
			Renderer: h.renderPage, PageMeta: managePaymentsMeta, Data: extra,
			ShowToast: true,
		})
		return
	}
	data := h.NewTemplateData(r, managePaymentsMeta).Build()
	maps.Copy(data, extra)
	h.renderPage(w, r, data)
}

// UpdatePaymentStatus reconciles one payment.
func (h *UIHandlers) UpdatePaymentStatus(w http.ResponseWriter, r *http.Request) {
	_ = r.ParseForm()
	status := model.PaymentStatus(formValue(r, "status"))
	if _, err := h.Payments.SetStatus(r.Context(), session(r), r.PathValue("id"), status); err != nil {
		if h.handleServiceError(w, r, err) {
			return
		}
		h.renderManagePayments(w, r, err)
		return
	}
	seeOther(w, r, backTo(r, "/dashboard/manage/payments")+"flash=payment-updated")
}

// ManageEvents lists all events, upcoming first, with edit and delete actions.
func (h *UIHandlers) ManageEvents(w http.ResponseWriter, r *http.Request) {
	h.renderManageEvents(w, r, nil)
}

func (h *UIHandlers) renderManageEvents(w http.ResponseWriter, r *http.Request, actionErr error) {
	sched, err := h.Events.Schedule(r.Context())
	if err != nil {
		h.pageError(w, r, manageEventsMeta, err)
		return
	}
	extra := map[string]any{
		"Events":        slices.Concat(sched.Upcoming, sched.Past),
		"UpcomingCount": len(sched.Upcoming),
	}
	if actionErr != nil {
		h.RenderError(ErrorOpts{
			W: w, R: r, Err: actionErr,
			Renderer: h.renderPage, PageMeta: manageEventsMeta, Data: extra,
			ShowToast: true,
		})
		return
	}
	data := h.NewTemplateData(r, manageEventsMeta).Build()
	maps.Copy(data, extra)
	h.renderPage(w, r, data)
}

func eventFormMeta(mode FormMode) PageMeta {
	if mode == FormModeEdit {
		return PageMeta{Title: "Edit Event", PageTitle: "Edit Event", CurrentPage: PageManageEventForm}
	}
	return PageMeta{Title: "New Event", PageTitle: "New Event", CurrentPage: PageManageEventForm}
}

func (h *UIHandlers) renderEventForm(w http.ResponseWriter, r *http.Request, mode FormMode, id string, form eventForm) {
	data := h.NewTemplateData(r, eventFormMeta(mode)).
		With("Mode", mode).
		With("EventID", id).
		With("Form", form).
		Build()
	h.renderPage(w, r, data)
}

// NewEvent renders the empty event form.
func (h *UIHandlers) NewEvent(w http.ResponseWriter, r *http.Request) {
	h.renderEventForm(w, r, FormModeCreate, "", eventForm{RegistrationOpen: true})
}

// EditEvent renders the form for an existing event.
func (h *UIHandlers) EditEvent(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	ev, err := h.Events.Get(r.Context(), id)
	if err != nil {
		h.pageError(w, r, eventFormMeta(FormModeEdit), err)
		return
	}
	h.renderEventForm(w, r, FormModeEdit, id, eventFormFrom(ev))
}

// CreateEvent publishes a new event.
func (h *UIHandlers) CreateEvent(w http.ResponseWriter, r *http.Request) {
	h.saveEvent(w, r, FormModeCreate, "")
}

// UpdateEvent replaces an event's fields.
func (h *UIHandlers) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	h.saveEvent(w, r, FormModeEdit, r.PathValue("id"))
}

func (h *UIHandlers) saveEvent(w http.ResponseWriter, r *http.Request, mode FormMode, id string) {
	form, errs := parseEventForm(r)
	req, timeErrs := form.request()
	errs = mergeErrors(errs, timeErrs)
	errs = mergeErrors(errs, h.validator().Struct(req))
	formData := map[string]any{"Mode": mode, "EventID": id, "Form": form}
	if len(errs) > 0 {
		h.RenderError(ErrorOpts{W: w, R: r, FieldErrors: errs, Renderer: h.renderPage, PageMeta: eventFormMeta(mode), Data: formData})
		return
	}

	var (
		err   error
		flash string
	)
	if mode == FormModeEdit {
		_, err = h.Events.Update(r.Context(), session(r), id, updateRequest(req))
		flash = "event-updated"
	} else {
		_, err = h.Events.Create(r.Context(), session(r), req)
		flash = "event-created"
	}
	if err != nil {
		if h.handleServiceError(w, r, err) {
			return
		}
		h.RenderError(ErrorOpts{
			W: w, R: r, Err: err,
			Renderer: h.renderPage, PageMeta: eventFormMeta(mode), Data: formData,
			ShowToast: true,
		})
		return
	}
	seeOther(w, r, "/dashboard/manage/events?flash="+flash)
}

// DeleteEvent removes an event.
func (h *UIHandlers) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	if err := h.Events.Delete(r.Context(), session(r), r.PathValue("id")); err != nil {
		if h.handleServiceError(w, r, err) {
			return
		}
		h.renderManageEvents(w, r, err)
		return
	}
	seeOther(w, r, "/dashboard/manage/events?flash=event-deleted")
}

// ManageGallery lists images next to the add-image form.
func (h *UIHandlers) ManageGallery(w http.ResponseWriter, r *http.Request) {
	h.renderManageGallery(w, r, model.AddImageRequest{}, nil, nil)
}

func (h *UIHandlers) renderManageGallery(
	w http.ResponseWriter,
	r *http.Request,
	form model.AddImageRequest,
	fieldErrs map[string]string,
	formErr error,
) {
	imgs, err := h.Gallery.List(r.Context())
	if err != nil {
		h.pageError(w, r, manageGalleryMeta, err)
		return
	}
	extra := map[string]any{"Images": imgs, "Form": form}
	if len(fieldErrs) > 0 || formErr != nil {
		h.RenderError(ErrorOpts{
			W: w, R: r, Err: formErr, FieldErrors: fieldErrs,
			Renderer: h.renderPage, PageMeta: manageGalleryMeta, Data: extra,
			ShowToast: formErr != nil,
		})
		return
	}
	data := h.NewTemplateData(r, manageGalleryMeta).Build()
	maps.Copy(data, extra)
	h.renderPage(w, r, data)
}

// AddImage registers a hosted image in the gallery.
func (h *UIHandlers) AddImage(w http.ResponseWriter, r *http.Request) {
	errs := parseForm(r)
	req := model.AddImageRequest{
		Title:   formValue(r, "title"),
		Caption: formValue(r, "caption"),
		URL:     formValue(r, "url"),
		EventID: formValue(r, "event_id"),
	}
	errs = mergeErrors(errs, h.validator().Struct(req))
	if len(errs) > 0 {
		h.renderManageGallery(w, r, req, errs, nil)
		return
	}
	if _, err := h.Gallery.Add(r.Context(), session(r), req); err != nil {
		if h.handleServiceError(w, r, err) {
			return
		}
		h.renderManageGallery(w, r, req, nil, err)
		return
	}
	seeOther(w, r, "/dashboard/manage/gallery?flash=image-added")
}

// DeleteImage removes an image from the gallery.
func (h *UIHandlers) DeleteImage(w http.ResponseWriter, r *http.Request) {
	if err := h.Gallery.Delete(r.Context(), session(r), r.PathValue("id")); err != nil {
		if h.handleServiceError(w, r, err) {
			return
		}
		h.renderManageGallery(w, r, model.AddImageRequest{}, nil, err)
		return
	}
	seeOther(w, r, "/dashboard/manage/gallery?flash=image-deleted")
}

// backTo returns the list URL with the filters the action was posted from, ready for
// another query parameter to be appended.
func backTo(r *http.Request, listPath string) string {
	q := url.Values{}
	if ref, err := url.Parse(r.Header.Get("Referer")); err == nil && ref.Path == listPath {
		for k, vs := range ref.Query() {
			if k == "flash" {
				continue
			}
			q[k] = vs
		}
	}
	if len(q) == 0 {
		return listPath + "?"
	}
	return listPath + "?" + q.Encode() + "&"
}
