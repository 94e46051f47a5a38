//revive:disable-next-line:var-naming // legacy package name widely used across the project
package model

import (
	"github.com/debate-club/portal/internal/domain/auth"
)

// RegisterRequest is the public sign-up form.
type RegisterRequest struct {
	Name       string `json:"name"                 validate:"required,min=2,max=100"`
	Email      string `json:"email"                validate:"required,email"`
	Password   string `json:"password"             validate:"required,min=6,max=128"`
	Confirm    string `json:"-"                    validate:"required,eqfield=Password"`
	Phone      string `json:"phone,omitempty"      validate:"omitempty,e164|numeric"`
	Department string `json:"department,omitempty" validate:"max=100"`
	Batch      string `json:"batch,omitempty"      validate:"max=20"`
}

// LoginRequest is the sign-in form.
type LoginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// ProfileUpdate is the member's own profile edit. Role and email are not editable here.
type ProfileUpdate struct {
	Name       string `json:"name"                 validate:"required,min=2,max=100"`
	Phone      string `json:"phone,omitempty"      validate:"omitempty,e164|numeric"`
	Department string `json:"department,omitempty" validate:"max=100"`
	Batch      string `json:"batch,omitempty"      validate:"max=20"`
	Avatar     string `json:"avatar,omitempty"     validate:"omitempty,url"`
}

// Apply returns a copy of id with the editable fields replaced.
func (p ProfileUpdate) Apply(id auth.Identity) auth.Identity {
	id.Name = p.Name
	id.Phone = p.Phone
	id.Department = p.Department
	id.Batch = p.Batch
	id.Avatar = p.Avatar
	return id
}

// RoleAssignment changes a member's role from the admin console.
type RoleAssignment struct {
	UserID string    `json:"-"    validate:"required"`
	Role   auth.Role `json:"role" validate:"required,club_role"`
}

// ContactMessage is a message sent from the public contact form.
type ContactMessage struct {
	Name    string `json:"name"    validate:"required,max=100"`
	Email   string `json:"email"   validate:"required,email"`
	Subject string `json:"subject" validate:"required,max=200"`
	Body    string `json:"message" validate:"required,min=10,max=5000"`
}

// DashboardStats is the aggregate shown on the admin console.
type DashboardStats struct {
	Users           int     `json:"users"`
	Members         int     `json:"members"`
	Events          int     `json:"events"`
	UpcomingEvents  int     `json:"upcoming_events"`
	Images          int     `json:"images"`
	Payments        int     `json:"payments"`
	PendingPayments int     `json:"pending_payments"`
	Collected       float64 `json:"collected"`
}
