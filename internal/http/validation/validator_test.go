package validation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	domainauth "github.com/debate-club/portal/internal/domain/auth"
	"github.com/debate-club/portal/internal/domain/model"
)

func TestStruct_Register(t *testing.T) {
	v := New()

	errs := v.Struct(model.RegisterRequest{
		Name:     "R",
		Email:    "not-an-email",
		Password: "abc",
		Confirm:  "abd",
		Phone:    "call me",
	})
	assert.Equal(t, "Name must be at least 2 characters.", errs["name"])
	assert.Equal(t, "Enter a valid email address.", errs["email"])
	assert.Equal(t, "Password must be at least 6 characters.", errs["password"])
	assert.Equal(t, "Passwords do not match.", errs["confirm"])
	assert.Equal(t, "Enter a valid phone number.", errs["phone"])

	assert.Nil(t, v.Struct(model.RegisterRequest{
		Name:     "Rafi Islam",
		Email:    "rafi@example.edu",
		Password: "secret1",
		Confirm:  "secret1",
		Phone:    "01712345678",
	}))
}

func TestStruct_Required(t *testing.T) {
	errs := New().Struct(model.LoginRequest{})
	assert.Equal(t, map[string]string{
		"email":    "Email is required.",
		"password": "Password is required.",
	}, errs)
}

func TestStruct_ClubRole(t *testing.T) {
	v := New()

	errs := v.Struct(model.RoleAssignment{UserID: "u1", Role: "superuser"})
	assert.Equal(t, "Choose a valid role.", errs["role"])

	errs = v.Struct(model.RoleAssignment{Role: domainauth.RoleMember})
	assert.Equal(t, "Member is required.", errs["user_id"])

	assert.Nil(t, v.Struct(model.RoleAssignment{UserID: "u1", Role: domainauth.RoleModerator}))
}

func TestStruct_EventTimes(t *testing.T) {
	start := time.Date(2026, 3, 1, 18, 0, 0, 0, time.UTC)
	errs := New().Struct(model.CreateEventRequest{
		Title:       "Spring Open",
		Description: "British Parliamentary",
		Venue:       "Hall A",
		StartsAt:    start,
		EndsAt:      start.Add(-time.Hour),
		CoverURL:    "nope",
	})
	assert.Equal(t, "End time must be after start time.", errs["ends_at"])
	assert.Equal(t, "Enter a valid URL.", errs["cover_url"])
	assert.Len(t, errs, 2)
}

func TestStruct_PaymentAmount(t *testing.T) {
	v := New()
	errs := v.Struct(model.InitiatePaymentRequest{Purpose: "snacks", Amount: 0})
	assert.Equal(t, "Purpose must be one of: membership, event, donation.", errs["purpose"])
	assert.Equal(t, "Amount is required.", errs["amount"])

	errs = v.Struct(model.InitiatePaymentRequest{Purpose: "donation", Amount: 500000})
	assert.Equal(t, "Amount must be at most 100000.", errs["amount"])
}

func TestVar(t *testing.T) {
	v := New()
	assert.Equal(t, "", v.Var("Email", "a@b.co", "required,email"))
	assert.Equal(t, "Enter a valid email address.", v.Var("Email", "ab", "required,email"))
	assert.Equal(t, "Search cannot exceed 5 characters.", v.Var("Search", "abcdefgh", "max=5"))
}

func TestLabel(t *testing.T) {
	assert.Equal(t, "Start time", Label("starts_at"))
	assert.Equal(t, "Department", Label("department"))
	assert.Equal(t, "Value", Label(""))
	assert.Equal(t, "user_id", snake("UserID"))
	assert.Equal(t, "starts_at", snake("StartsAt"))
}
