// Package core provides template helpers shared by every page.
package core

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"strings"
	"time"

	domainauth "github.com/debate-club/portal/internal/domain/auth"
	"github.com/debate-club/portal/internal/domain/model"
)

const (
	friendlyDateTimeLayout = "Jan 2, 2006 3:04 PM"
	friendlyDateLayout     = "Mon, Jan 2 2006"
	datetimeLocalLayout    = "2006-01-02T15:04"
)

// Deps holds optional dependencies for constructing the core template func map.
type Deps struct {
	Template           **template.Template
	ContentTemplateFor func(string) string
}

// Funcs returns a template.FuncMap containing helpers that are broadly useful across templates.
func Funcs(deps Deps) template.FuncMap {
	funcs := template.FuncMap{
		"sectionTmpl":     deps.ContentTemplateFor,
		"friendlyTime":    friendlyTime,
		"friendlyDate":    friendlyDate,
		"timeTag":         timeTag,
		"datetimeLocal":   datetimeLocal,
		"add":             func(a, b int) int { return a + b },
		"sub":             func(a, b int) int { return a - b },
		"truncateText":    TruncateText,
		"roleLabel":       roleLabel,
		"roles":           domainauth.Roles,
		"paymentStatuses": model.PaymentStatuses,
		"statusClass":     statusClass,
		"initials":        func(id domainauth.Identity) string { return id.Initials() },
	}

	addRenderFuncs(funcs, deps)
	return funcs
}

func addRenderFuncs(funcs template.FuncMap, deps Deps) {
	funcs["renderSection"] = func(page string, data any) (template.HTML, error) {
		if deps.Template == nil || *deps.Template == nil {
			return "", errors.New("template not initialized")
		}
		var buf bytes.Buffer
		if err := (*deps.Template).ExecuteTemplate(&buf, deps.ContentTemplateFor(page), data); err != nil {
			return "", err
		}
		// #nosec G203 - rendered by our own html/template set; values were escaped during execution.
		return template.HTML(buf.String()), nil
	}

	funcs["toJSON"] = func(v any) (string, error) {
		b, err := json.Marshal(v)
		if err != nil {
			return "", err
		}
		return string(b), nil
	}
}

func asTime(ts any) time.Time {
	switch v := ts.(type) {
	case time.Time:
		return v
	case *time.Time:
		if v != nil {
			return *v
		}
	}
	return time.Time{}
}

func friendlyTime(ts any) string {
	t := asTime(ts)
	if t.IsZero() {
		return ""
	}
	return t.Local().Format(friendlyDateTimeLayout)
}

func friendlyDate(ts any) string {
	t := asTime(ts)
	if t.IsZero() {
		return ""
	}
	return t.Local().Format(friendlyDateLayout)
}

// datetimeLocal formats a time for an <input type="datetime-local"> value.
func datetimeLocal(ts any) string {
	t := asTime(ts)
	if t.IsZero() {
		return ""
	}
	return t.Local().Format(datetimeLocalLayout)
}

func timeTag(ts any) template.HTML {
	t := asTime(ts)
	if t.IsZero() {
		return ""
	}
	// #nosec G203 - built from formatted times, each escaped
	return template.HTML(fmt.Sprintf(
		"<time datetime=\"%s\" title=\"%s\">%s</time>",
		t.UTC().Format(time.RFC3339),
		template.HTMLEscapeString(t.Local().Format(time.RFC1123)),
		template.HTMLEscapeString(t.Local().Format(friendlyDateTimeLayout)),
	))
}

// TruncateText shortens s to maxLen runes, appending an ellipsis when cut.
func TruncateText(s string, maxLen int) string {
	r := []rune(s)
	if maxLen <= 0 || len(r) <= maxLen {
		return s
	}
	if maxLen == 1 {
		return "…"
	}
	return strings.TrimSpace(string(r[:maxLen-1])) + "…"
}

func roleLabel(v any) string {
	switch r := v.(type) {
	case domainauth.Role:
		return r.Label()
	case string:
		return domainauth.Role(r).Label()
	}
	return "Unknown"
}

func statusClass(s model.PaymentStatus) string {
	switch s {
	case model.PaymentCompleted:
		return "badge-success"
	case model.PaymentPending:
		return "badge-warning"
	case model.PaymentFailed:
		return "badge-danger"
	default:
		return "badge-muted"
	}
}
