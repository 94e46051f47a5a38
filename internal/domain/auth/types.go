// Package auth contains domain-level types for authentication and sessions.
// It is pure and free of framework/adapter concerns.
package auth

import (
	"encoding/json"
	"strings"
	"unicode"
)

// Role represents a club member's authorization role.
// Keep string form for easy persistence and JSON round-trips with the backend.
// The set is closed: valid values are the constants below.
type Role string

const (
	RoleUser             Role = "user"
	RoleMember           Role = "member"
	RoleExecutiveMember  Role = "executive_member"
	RoleGeneralSecretary Role = "general_secretary"
	RolePresident        Role = "president"
	RoleModerator        Role = "moderator"
	RoleAdmin            Role = "admin"
)

// Roles lists every valid role in ascending order of responsibility.
// The order is for display only; no role inherits another's permissions.
func Roles() []Role {
	return []Role{
		RoleUser,
		RoleMember,
		RoleExecutiveMember,
		RoleGeneralSecretary,
		RolePresident,
		RoleModerator,
		RoleAdmin,
	}
}

// ParseRole returns the Role for s and whether s names a member of the closed set.
// Matching is exact after trimming surrounding whitespace.
func ParseRole(s string) (Role, bool) {
	r := Role(strings.TrimSpace(s))
	return r, r.Valid()
}

// Valid reports whether r is one of the defined roles.
func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleMember, RoleExecutiveMember, RoleGeneralSecretary,
		RolePresident, RoleModerator, RoleAdmin:
		return true
	}
	return false
}

// Label returns a human-readable name for the role.
func (r Role) Label() string {
	if !r.Valid() {
		return "Unknown"
	}
	words := strings.Split(string(r), "_")
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

// Identity is the authenticated principal as returned by the backend.
// Role is kept as reported; callers decide how to treat values outside the closed set.
type Identity struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	Role       Role   `json:"role"`
	Phone      string `json:"phone,omitempty"`
	Department string `json:"department,omitempty"`
	Batch      string `json:"batch,omitempty"`
	Avatar     string `json:"avatar,omitempty"`
}

// UnmarshalJSON accepts "_id" as an alias for "id", which some backend payloads use.
func (i *Identity) UnmarshalJSON(data []byte) error {
	type plain Identity
	var aux struct {
		plain
		MongoID string `json:"_id"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*i = Identity(aux.plain)
	if i.ID == "" {
		i.ID = aux.MongoID
	}
	return nil
}

// HasRole reports whether the identity's role is exactly one of roles.
func (i Identity) HasRole(roles ...Role) bool {
	for _, r := range roles {
		if i.Role == r {
			return true
		}
	}
	return false
}

// Initials returns up to two uppercase initials for avatar placeholders.
func (i Identity) Initials() string {
	out := make([]rune, 0, 2)
	for _, f := range strings.Fields(i.Name) {
		out = append(out, unicode.ToUpper([]rune(f)[0]))
		if len(out) == 2 {
			break
		}
	}
	return string(out)
}

// SessionState is a derived view of a session store.
// Authenticated is always equal to Identity != nil.
type SessionState struct {
	Authenticated bool
	Loading       bool
	Identity      *Identity
}

// Credentials carries a login attempt.
type Credentials struct {
	Email    string
	Password string
}

// Grant is what the backend returns on successful login or registration.
type Grant struct {
	Token string   `json:"token"`
	User  Identity `json:"user"`
}
