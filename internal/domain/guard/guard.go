// Package guard decides what a protected view renders for the current session.
package guard

import (
	"github.com/debate-club/portal/internal/domain/auth"
)

// Outcome is the terminal (or pending) state of a guarded navigation.
type Outcome int

const (
	// Pending means the session has not finished rehydrating. No decision is made yet.
	Pending Outcome = iota
	// Unauthenticated means there is no identity. Callers redirect to login.
	Unauthenticated
	// Forbidden means the identity's role is not in the required set.
	Forbidden
	// Authorized means the guarded view may render.
	Authorized
)

func (o Outcome) String() string {
	switch o {
	case Pending:
		return "pending"
	case Unauthenticated:
		return "unauthenticated"
	case Forbidden:
		return "forbidden"
	case Authorized:
		return "authorized"
	default:
		return "unknown"
	}
}

// Requirement is the allow-list of roles for a route. An empty requirement only asks for
// an authenticated identity.
type Requirement []auth.Role

// AnyRole builds a requirement satisfied by any of roles.
func AnyRole(roles ...auth.Role) Requirement {
	return Requirement(roles)
}

// Satisfied reports whether role passes the requirement. Membership is exact.
func (r Requirement) Satisfied(role auth.Role) bool {
	if len(r) == 0 {
		return true
	}
	for _, want := range r {
		if want == role {
			return true
		}
	}
	return false
}

// Decide maps a session state and a route requirement to an outcome.
// Loading is consulted before anything else.
func Decide(state auth.SessionState, req Requirement) Outcome {
	if state.Loading {
		return Pending
	}
	if state.Identity == nil {
		return Unauthenticated
	}
	if !req.Satisfied(state.Identity.Role) {
		return Forbidden
	}
	return Authorized
}
