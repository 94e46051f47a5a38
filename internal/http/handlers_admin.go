package httpx

import (
	"net/http"

	domainauth "github.com/debate-club/portal/internal/domain/auth"
	"github.com/debate-club/portal/internal/domain/model"
	apperrors "github.com/debate-club/portal/internal/errors"
)

var (
	adminMeta      = PageMeta{Title: "Admin Console", PageTitle: "Admin Console", CurrentPage: PageAdmin}
	adminRolesMeta = PageMeta{Title: "Assign Roles", PageTitle: "Assign Roles", CurrentPage: PageAdminRoles}
)

// AdminConsole renders the club-wide figures with recent payments and the next events.
func (h *UIHandlers) AdminConsole(w http.ResponseWriter, r *http.Request) {
	ov, err := h.Admin.Overview(r.Context(), session(r))
	if err != nil {
		h.pageError(w, r, adminMeta, err)
		return
	}
	data := h.NewTemplateData(r, adminMeta).With("Overview", ov).Build()
	h.renderPage(w, r, data)
}

// AdminRoles lists members with a role picker per row.
func (h *UIHandlers) AdminRoles(w http.ResponseWriter, r *http.Request) {
	h.renderMemberPage(w, r, adminRolesMeta, "/admin/roles", nil)
}

// AssignRole changes one member's role. The role is checked against the closed set before
// the backend is asked.
func (h *UIHandlers) AssignRole(w http.ResponseWriter, r *http.Request) {
	_ = r.ParseForm()
	assignment := model.RoleAssignment{
		UserID: r.PathValue("id"),
		Role:   domainauth.Role(formValue(r, "role")),
	}
	if errs := h.validator().Struct(assignment); len(errs) > 0 {
		field, msg := firstError(errs)
		h.renderMemberPage(w, r, adminRolesMeta, "/admin/roles", apperrors.ValidationField(field, msg))
		return
	}
	if _, err := h.Members.AssignRole(r.Context(), session(r), assignment.UserID, assignment.Role); err != nil {
		if h.handleServiceError(w, r, err) {
			return
		}
		h.renderMemberPage(w, r, adminRolesMeta, "/admin/roles", err)
		return
	}
	seeOther(w, r, backTo(r, "/admin/roles")+"flash=role-assigned")
}

// firstError picks a deterministic message from a field error map for row actions, where
// there is no form to show the errors inline.
func firstError(errs map[string]string) (string, string) {
	for _, k := range []string{"role", "user_id"} {
		if msg, ok := errs[k]; ok {
			return k, msg
		}
	}
	for k, msg := range errs {
		return k, msg
	}
	return "", ""
}
