package httpx

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/debate-club/portal/internal/domain/model"
)

// errInvalidForm is the message for a body that could not be parsed at all.
const errInvalidForm = "Invalid form submission."

// formValue returns the trimmed value of a posted field.
func formValue(r *http.Request, key string) string {
	return strings.TrimSpace(r.FormValue(key))
}

// parseForm parses the request body and reports a form-level error when it cannot.
func parseForm(r *http.Request) map[string]string {
	errs := map[string]string{}
	if err := r.ParseForm(); err != nil {
		errs["_"] = errInvalidForm
	}
	return errs
}

// mergeErrors copies src into dst, keeping the first message per field.
func mergeErrors(dst, src map[string]string) map[string]string {
	if dst == nil {
		dst = map[string]string{}
	}
	for k, v := range src {
		if _, ok := dst[k]; !ok {
			dst[k] = v
		}
	}
	return dst
}

// parseLocalTime parses an <input type="datetime-local"> value in the server's zone.
// Browsers omit seconds unless a step is set, so both forms are accepted.
func parseLocalTime(v string) (time.Time, bool) {
	if v == "" {
		return time.Time{}, true
	}
	for _, layout := range []string{"2006-01-02T15:04", "2006-01-02T15:04:05"} {
		if t, err := time.ParseInLocation(layout, v, time.Local); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// eventForm is the management form for creating or editing an event.
type eventForm struct {
	Title            string
	Description      string
	Venue            string
	StartsAt         string
	EndsAt           string
	CoverURL         string
	RegistrationOpen bool
}

func eventFormFrom(e model.ClubEvent) eventForm {
	f := eventForm{
		Title:            e.Title,
		Description:      e.Description,
		Venue:            e.Venue,
		CoverURL:         e.CoverURL,
		RegistrationOpen: e.RegistrationOpen,
	}
	if !e.StartsAt.IsZero() {
		f.StartsAt = e.StartsAt.Local().Format("2006-01-02T15:04")
	}
	if !e.EndsAt.IsZero() {
		f.EndsAt = e.EndsAt.Local().Format("2006-01-02T15:04")
	}
	return f
}

func parseEventForm(r *http.Request) (eventForm, map[string]string) {
	errs := parseForm(r)
	return eventForm{
		Title:            formValue(r, "title"),
		Description:      formValue(r, "description"),
		Venue:            formValue(r, "venue"),
		StartsAt:         formValue(r, "starts_at"),
		EndsAt:           formValue(r, "ends_at"),
		CoverURL:         formValue(r, "cover_url"),
		RegistrationOpen: r.FormValue("registration_open") == "on",
	}, errs
}

// request converts the form into a create request. Unparseable times are reported per field.
func (f eventForm) request() (model.CreateEventRequest, map[string]string) {
	errs := map[string]string{}
	starts, ok := parseLocalTime(f.StartsAt)
	if !ok {
		errs["starts_at"] = "Enter a valid date and time."
	}
	ends, ok := parseLocalTime(f.EndsAt)
	if !ok {
		errs["ends_at"] = "Enter a valid date and time."
	}
	return model.CreateEventRequest{
		Title:            f.Title,
		Description:      f.Description,
		Venue:            f.Venue,
		StartsAt:         starts,
		EndsAt:           ends,
		CoverURL:         f.CoverURL,
		RegistrationOpen: f.RegistrationOpen,
	}, errs
}

// updateRequest turns a validated create request into a full replacement update.
func updateRequest(req model.CreateEventRequest) model.UpdateEventRequest {
	upd := model.UpdateEventRequest{
		Title:            &req.Title,
		Description:      &req.Description,
		Venue:            &req.Venue,
		StartsAt:         &req.StartsAt,
		CoverURL:         &req.CoverURL,
		RegistrationOpen: &req.RegistrationOpen,
	}
	if !req.EndsAt.IsZero() {
		upd.EndsAt = &req.EndsAt
	}
	return upd
}

// parseAmount reads a positive money amount. Thousands separators are tolerated.
func parseAmount(v string) (float64, bool) {
	v = strings.ReplaceAll(strings.TrimSpace(v), ",", "")
	if v == "" {
		return 0, true
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}
