package httpx

import (
	"net/http"
	"strconv"

	"github.com/debate-club/portal/internal/domain/model"
	"github.com/debate-club/portal/internal/service"
)

// Home renders the landing page with a teaser of upcoming events.
// A failing events backend degrades to an empty teaser rather than an error page.
func (h *UIHandlers) Home(w http.ResponseWriter, r *http.Request) {
	var upcoming []model.ClubEvent
	if h.Events != nil {
		sched, err := h.Events.Schedule(r.Context())
		if err != nil {
			h.logger().WarnContext(r.Context(), "landing page events unavailable", "error", err)
		} else {
			upcoming = sched.Upcoming[:min(len(sched.Upcoming), homeEventCount)]
		}
	}
	data := h.NewTemplateData(r, PageMeta{Title: siteName, CurrentPage: PageHome}).
		With("Upcoming", upcoming).
		Build()
	h.renderPage(w, r, data)
}

// About renders the static about page.
func (h *UIHandlers) About(w http.ResponseWriter, r *http.Request) {
	data := h.NewTemplateData(r, PageMeta{Title: "About", PageTitle: "About the Club", CurrentPage: PageAbout}).Build()
	h.renderPage(w, r, data)
}

// EventsPage lists upcoming and past events.
func (h *UIHandlers) EventsPage(w http.ResponseWriter, r *http.Request) {
	meta := PageMeta{Title: "Events", PageTitle: "Events", CurrentPage: PageEvents}
	sched, err := h.Events.Schedule(r.Context())
	if err != nil {
		h.pageError(w, r, meta, err)
		return
	}
	data := h.NewTemplateData(r, meta).
		With("Upcoming", sched.Upcoming).
		With("Past", sched.Past).
		Build()
	h.renderPage(w, r, data)
}

// EventDetail renders one event.
func (h *UIHandlers) EventDetail(w http.ResponseWriter, r *http.Request) {
	ev, err := h.Events.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		h.pageError(w, r, PageMeta{Title: "Event", CurrentPage: PageEvent}, err)
		return
	}
	data := h.NewTemplateData(r, PageMeta{Title: ev.Title, PageTitle: ev.Title, CurrentPage: PageEvent}).
		With("Event", ev).
		Build()
	h.renderPage(w, r, data)
}

// GalleryPage renders the image grid. Each tile opens the lightbox at its index.
func (h *UIHandlers) GalleryPage(w http.ResponseWriter, r *http.Request) {
	meta := PageMeta{Title: "Gallery", PageTitle: "Gallery", CurrentPage: PageGallery}
	imgs, err := h.Gallery.List(r.Context())
	if err != nil {
		h.pageError(w, r, meta, err)
		return
	}
	data := h.NewTemplateData(r, meta).With("Images", imgs).Build()
	h.renderPage(w, r, data)
}

// LightboxPage opens the viewer at /gallery/{index}. Prev and next wrap around.
func (h *UIHandlers) LightboxPage(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(r.PathValue("index"))
	if err != nil || index < 0 {
		h.NotFound(w, r)
		return
	}
	view, err := h.Gallery.Lightbox(r.Context(), index)
	if err != nil {
		h.pageError(w, r, PageMeta{Title: "Gallery", CurrentPage: PageLightbox}, err)
		return
	}
	data := h.NewTemplateData(r, PageMeta{Title: view.Image.Title, PageTitle: "Gallery", CurrentPage: PageLightbox}).
		With("View", lightboxData(view)).
		Build()
	h.renderPage(w, r, data)
}

type lightboxView struct {
	service.LightboxView
	PrevURL string
	NextURL string
}

func lightboxData(v service.LightboxView) lightboxView {
	return lightboxView{
		LightboxView: v,
		PrevURL:      "/gallery/" + strconv.Itoa(v.Position.Prev()),
		NextURL:      "/gallery/" + strconv.Itoa(v.Position.Next()),
	}
}

var contactMeta = PageMeta{Title: "Contact", PageTitle: "Contact Us", CurrentPage: PageContact}

// ContactForm renders the empty contact form. Signed-in members get name and email prefilled.
func (h *UIHandlers) ContactForm(w http.ResponseWriter, r *http.Request) {
	var form model.ContactMessage
	if id, ok := CurrentIdentity(r.Context()); ok {
		form.Name, form.Email = id.Name, id.Email
	}
	data := h.NewTemplateData(r, contactMeta).With("Form", form).Build()
	h.renderPage(w, r, data)
}

// ContactSubmit validates and forwards a contact message.
func (h *UIHandlers) ContactSubmit(w http.ResponseWriter, r *http.Request) {
	errs := parseForm(r)
	msg := model.ContactMessage{
		Name:    formValue(r, "name"),
		Email:   formValue(r, "email"),
		Subject: formValue(r, "subject"),
		Body:    formValue(r, "message"),
	}
	errs = mergeErrors(errs, h.validator().Struct(msg))
	if len(errs) > 0 {
		h.RenderError(ErrorOpts{
			W: w, R: r, FieldErrors: errs,
			Renderer: h.renderPage, PageMeta: contactMeta,
			Data: map[string]any{"Form": msg},
		})
		return
	}

	if err := h.Contact.Send(r.Context(), msg); err != nil {
		h.logger().WarnContext(r.Context(), "contact message failed", "error", err)
		h.RenderError(ErrorOpts{
			W: w, R: r, Err: err,
			Renderer: h.renderPage, PageMeta: contactMeta,
			Data:      map[string]any{"Form": msg},
			ShowToast: true,
		})
		return
	}
	seeOther(w, r, "/contact?flash=message-sent")
}
