package httpx

import (
	"net/http"

	domainauth "github.com/debate-club/portal/internal/domain/auth"
	"github.com/debate-club/portal/internal/domain/menu"
)

type menuEntryJSON struct {
	Key   string `json:"key"`
	Label string `json:"label"`
	Path  string `json:"path"`
	Icon  string `json:"icon,omitempty"`
}

type sessionJSON struct {
	Authenticated bool                 `json:"authenticated"`
	Loading       bool                 `json:"loading"`
	User          *domainauth.Identity `json:"user,omitempty"`
	Menu          []menuEntryJSON      `json:"menu"`
}

func menuJSON(entries []menu.Entry) []menuEntryJSON {
	out := make([]menuEntryJSON, 0, len(entries))
	for _, e := range entries {
		out = append(out, menuEntryJSON{Key: e.Key, Label: e.Label, Path: e.Path, Icon: e.Icon})
	}
	return out
}

// SessionAPI reports the client's session state and, when signed in, its menu.
// It is never guarded: a loading or anonymous session is a valid answer.
func (h *UIHandlers) SessionAPI(w http.ResponseWriter, r *http.Request) {
	st := SessionStateFromContext(r.Context())
	body := sessionJSON{Authenticated: st.Authenticated, Loading: st.Loading, User: st.Identity, Menu: []menuEntryJSON{}}
	if st.Identity != nil && h.Menu != nil {
		body.Menu = menuJSON(h.Menu.AccessibleEntries(st.Identity.Role))
	}
	w.Header().Set("Cache-Control", "no-store")
	WriteJSON(w, http.StatusOK, body)
}

// MenuAPI returns the accessible menu entries for the signed-in role.
func (h *UIHandlers) MenuAPI(w http.ResponseWriter, r *http.Request) {
	id, _ := CurrentIdentity(r.Context())
	w.Header().Set("Cache-Control", "no-store")
	WriteJSON(w, http.StatusOK, map[string]any{
		"role":    id.Role,
		"entries": menuJSON(h.Menu.AccessibleEntries(id.Role)),
	})
}

// EventsAPI returns the public schedule as JSON.
func (h *UIHandlers) EventsAPI(w http.ResponseWriter, r *http.Request) {
	sched, err := h.Events.Schedule(r.Context())
	if err != nil {
		h.logger().WarnContext(r.Context(), "events api failed", "error", err)
		WriteAppError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{
		"upcoming": nonNil(sched.Upcoming),
		"past":     nonNil(sched.Past),
	})
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
