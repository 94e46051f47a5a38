package httpx

import (
	"net/http"

	"golang.org/x/sync/errgroup"

	domainauth "github.com/debate-club/portal/internal/domain/auth"
	"github.com/debate-club/portal/internal/domain/model"
	"github.com/debate-club/portal/internal/service"
)

const dashboardRecent = 5

var (
	dashboardMeta    = PageMeta{Title: "Dashboard", PageTitle: "Dashboard", CurrentPage: PageDashboard}
	profileMeta      = PageMeta{Title: "My Profile", PageTitle: "My Profile", CurrentPage: PageProfile}
	myPaymentsMeta   = PageMeta{Title: "My Payments", PageTitle: "My Payments", CurrentPage: PageMyPayments}
	memberEventsMeta = PageMeta{Title: "Club Events", PageTitle: "Club Events", CurrentPage: PageMemberEvents}
)

// Dashboard renders the overview: the role menu as cards, recent payments and the next events.
func (h *UIHandlers) Dashboard(w http.ResponseWriter, r *http.Request) {
	var (
		payments []model.Payment
		sched    service.Schedule
	)
	g, gctx := errgroup.WithContext(r.Context())
	g.Go(func() (err error) {
		payments, err = h.Payments.Mine(gctx, session(r))
		return err
	})
	g.Go(func() (err error) {
		sched, err = h.Events.Schedule(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		h.pageError(w, r, dashboardMeta, err)
		return
	}

	data := h.NewTemplateData(r, dashboardMeta).
		With("RecentPayments", payments[:min(len(payments), dashboardRecent)]).
		With("NextEvents", sched.Upcoming[:min(len(sched.Upcoming), dashboardRecent)]).
		Build()
	h.renderPage(w, r, data)
}

// ProfilePage renders the profile form with the backend's current copy of the identity.
func (h *UIHandlers) ProfilePage(w http.ResponseWriter, r *http.Request) {
	id, err := h.Profile.Current(r.Context(), session(r))
	if err != nil {
		h.pageError(w, r, profileMeta, err)
		return
	}
	data := h.NewTemplateData(r, profileMeta).With("Form", profileForm(id)).Build()
	h.renderPage(w, r, data)
}

// ProfileSubmit saves the editable profile fields.
func (h *UIHandlers) ProfileSubmit(w http.ResponseWriter, r *http.Request) {
	errs := parseForm(r)
	upd := model.ProfileUpdate{
		Name:       formValue(r, "name"),
		Phone:      formValue(r, "phone"),
		Department: formValue(r, "department"),
		Batch:      formValue(r, "batch"),
		Avatar:     formValue(r, "avatar"),
	}
	form := map[string]any{"Form": upd}

	errs = mergeErrors(errs, h.validator().Struct(upd))
	if len(errs) > 0 {
		h.RenderError(ErrorOpts{W: w, R: r, FieldErrors: errs, Renderer: h.renderPage, PageMeta: profileMeta, Data: form})
		return
	}
	if _, err := h.Profile.Update(r.Context(), session(r), upd); err != nil {
		if h.handleServiceError(w, r, err) {
			return
		}
		h.RenderError(ErrorOpts{
			W: w, R: r, Err: err,
			Renderer: h.renderPage, PageMeta: profileMeta, Data: form,
			ShowToast: true,
		})
		return
	}
	seeOther(w, r, "/dashboard/profile?flash=profile-saved")
}

func profileForm(id domainauth.Identity) model.ProfileUpdate {
	return model.ProfileUpdate{
		Name:       id.Name,
		Phone:      id.Phone,
		Department: id.Department,
		Batch:      id.Batch,
		Avatar:     id.Avatar,
	}
}

// paymentPurposes are the options of the pay-dues form.
//
//nolint:gochecknoglobals // static read-only options
var paymentPurposes = []string{"membership", "event", "donation"}

// MyPaymentsPage lists the member's payments next to the pay-dues form.
func (h *UIHandlers) MyPaymentsPage(w http.ResponseWriter, r *http.Request) {
	h.renderMyPayments(w, r, model.InitiatePaymentRequest{Purpose: paymentPurposes[0]}, nil, nil)
}

func (h *UIHandlers) renderMyPayments(
	w http.ResponseWriter,
	r *http.Request,
	form model.InitiatePaymentRequest,
	fieldErrs map[string]string,
	formErr error,
) {
	payments, err := h.Payments.Mine(r.Context(), session(r))
	if err != nil {
		h.pageError(w, r, myPaymentsMeta, err)
		return
	}
	data := map[string]any{
		"Payments": payments,
		"Form":     form,
		"Purposes": paymentPurposes,
	}
	if len(fieldErrs) > 0 || formErr != nil {
		h.RenderError(ErrorOpts{
			W: w, R: r, Err: formErr, FieldErrors: fieldErrs,
			Renderer: h.renderPage, PageMeta: myPaymentsMeta, Data: data,
			ShowToast: formErr != nil,
		})
		return
	}
	b := h.NewTemplateData(r, myPaymentsMeta)
	for k, v := range data {
		b.With(k, v)
	}
	h.renderPage(w, r, b.Build())
}

// InitiatePayment opens a gateway checkout and sends the browser there.
func (h *UIHandlers) InitiatePayment(w http.ResponseWriter, r *http.Request) {
	errs := parseForm(r)
	amount, ok := parseAmount(r.FormValue("amount"))
	if !ok {
		errs["amount"] = "Enter an amount like 500 or 500.00."
	}
	req := model.InitiatePaymentRequest{Purpose: formValue(r, "purpose"), Amount: amount}
	errs = mergeErrors(errs, h.validator().Struct(req))
	if len(errs) > 0 {
		h.renderMyPayments(w, r, req, errs, nil)
		return
	}

	ps, err := h.Payments.Initiate(r.Context(), session(r), req)
	if err != nil {
		if h.handleServiceError(w, r, err) {
			return
		}
		h.logger().WarnContext(r.Context(), "payment initiation failed", "error", err)
		h.renderMyPayments(w, r, req, nil, err)
		return
	}
	seeOther(w, r, ps.GatewayURL)
}

// PaymentResult is where the gateway returns the member after checkout.
// The gateway reports the status in the query; anything unrecognised reads as pending.
func (h *UIHandlers) PaymentResult(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	status, ok := model.ParsePaymentStatus(q.Get("status"))
	if !ok {
		status = model.PaymentPending
	}
	data := h.NewTemplateData(r, PageMeta{Title: "Payment", PageTitle: "Payment", CurrentPage: PagePaymentResult}).
		With("Status", status).
		With("TransactionID", q.Get("tran_id")).
		Build()
	h.renderPage(w, r, data)
}

// MemberEventsPage lists club events for members, upcoming first.
func (h *UIHandlers) MemberEventsPage(w http.ResponseWriter, r *http.Request) {
	sched, err := h.Events.Schedule(r.Context())
	if err != nil {
		h.pageError(w, r, memberEventsMeta, err)
		return
	}
	data := h.NewTemplateData(r, memberEventsMeta).
		With("Upcoming", sched.Upcoming).
		With("Past", sched.Past).
		Build()
	h.renderPage(w, r, data)
}
