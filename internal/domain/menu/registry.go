// Package menu holds the static authorization policy for dashboard navigation:
// which menu entries, and by extension which protected views, each role may see.
//
// The policy is data. Adding a role or an entry means editing the table in
// entries.go, never the lookup code.
package menu

import (
	"slices"
	"strings"

	"github.com/debate-club/portal/internal/domain/auth"
)

// Entry is a single dashboard menu item and the roles allowed to see it.
type Entry struct {
	Key   string
	Label string
	Path  string
	Icon  string
	Roles []auth.Role
}

// Allows reports whether role is a member of the entry's role set.
func (e Entry) Allows(role auth.Role) bool {
	return slices.Contains(e.Roles, role)
}

// UnknownRolePolicy decides what a role outside the closed set may see.
type UnknownRolePolicy string

const (
	// FallbackToUser treats an absent or unrecognized role as auth.RoleUser.
	FallbackToUser UnknownRolePolicy = "user"
	// DenyAll gives an absent or unrecognized role no entries at all.
	DenyAll UnknownRolePolicy = "deny"
)

// Valid reports whether p is a known policy.
func (p UnknownRolePolicy) Valid() bool {
	return p == FallbackToUser || p == DenyAll
}

// Registry is a read-only, ordered table of menu entries.
// Declaration order is the on-screen order.
type Registry struct {
	entries []Entry
	byKey   map[string]int
	unknown UnknownRolePolicy
}

// NewRegistry builds a registry over entries. Entries are copied; later mutation of the
// argument does not affect the registry. An invalid policy falls back to FallbackToUser.
func NewRegistry(entries []Entry, unknown UnknownRolePolicy) *Registry {
	if !unknown.Valid() {
		unknown = FallbackToUser
	}
	reg := &Registry{
		entries: make([]Entry, len(entries)),
		byKey:   make(map[string]int, len(entries)),
		unknown: unknown,
	}
	for i, e := range entries {
		e.Roles = slices.Clone(e.Roles)
		reg.entries[i] = e
		reg.byKey[e.Key] = i
	}
	return reg
}

// Default returns the registry over the club's dashboard table.
func Default(unknown UnknownRolePolicy) *Registry {
	return NewRegistry(dashboardEntries(), unknown)
}

// Policy returns the configured unknown-role policy.
func (r *Registry) Policy() UnknownRolePolicy { return r.unknown }

// AccessibleEntries returns, in declaration order, the entries whose role set contains role.
// A role outside the closed set is resolved through the registry's UnknownRolePolicy.
func (r *Registry) AccessibleEntries(role auth.Role) []Entry {
	effective, ok := r.EffectiveRole(role)
	if !ok {
		return []Entry{}
	}
	out := make([]Entry, 0, len(r.entries))
	for _, e := range r.entries {
		if e.Allows(effective) {
			out = append(out, cloneEntry(e))
		}
	}
	return out
}

// Entries returns every entry in declaration order.
func (r *Registry) Entries() []Entry {
	out := make([]Entry, len(r.entries))
	for i, e := range r.entries {
		out[i] = cloneEntry(e)
	}
	return out
}

// Entry looks up an entry by key.
func (r *Registry) Entry(key string) (Entry, bool) {
	i, ok := r.byKey[key]
	if !ok {
		return Entry{}, false
	}
	return cloneEntry(r.entries[i]), true
}

// RolesFor returns the role set of the entry registered at exactly path.
func (r *Registry) RolesFor(path string) ([]auth.Role, bool) {
	path = strings.TrimSuffix(path, "/")
	for _, e := range r.entries {
		if e.Path == path {
			return slices.Clone(e.Roles), true
		}
	}
	return nil, false
}

// EffectiveRole resolves role through the unknown-role policy. Valid roles map to
// themselves; the result is false when the policy denies the role everything.
func (r *Registry) EffectiveRole(role auth.Role) (auth.Role, bool) {
	if role.Valid() {
		return role, true
	}
	if r.unknown == DenyAll {
		return "", false
	}
	return auth.RoleUser, true
}

func cloneEntry(e Entry) Entry {
	e.Roles = slices.Clone(e.Roles)
	return e
}
