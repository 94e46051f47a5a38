// Package viewmodel holds the typed data shared by every rendered page.
package viewmodel

import (
	domainauth "github.com/debate-club/portal/internal/domain/auth"
	"github.com/debate-club/portal/internal/domain/menu"
)

// MenuItem is a dashboard menu entry as rendered, with its active state resolved.
type MenuItem struct {
	menu.Entry
	Active bool
}

// Layout captures shared chrome metadata (titles, navigation state, auth flags).
type Layout struct {
	Title           string
	PageTitle       string
	CurrentPage     string
	CSRFToken       string
	IsAuthenticated bool
	User            *domainauth.Identity
	// Dashboard is true for pages rendered inside the dashboard chrome.
	Dashboard bool
	// Menu lists only the entries the user's role may access.
	Menu  []MenuItem
	Flash string
}

// LayoutProvider exposes layout metadata for renderer utilities.
type LayoutProvider interface {
	LayoutData() *Layout
}

// LayoutData implements LayoutProvider.
func (l *Layout) LayoutData() *Layout { return l }

// HasMenuEntry reports whether key is among the rendered entries.
// Templates use it to hide links to pages the guard would refuse.
func (l *Layout) HasMenuEntry(key string) bool {
	for _, m := range l.Menu {
		if m.Key == key {
			return true
		}
	}
	return false
}
