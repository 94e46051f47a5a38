//revive:disable-next-line:var-naming // legacy package name widely used across the project
package model

import (
	"strings"
	"time"
)

// ClubEvent is a debate, workshop, or social published by the club.
type ClubEvent struct {
	ID               string    `json:"id"`
	Title            string    `json:"title"`
	Description      string    `json:"description"`
	Venue            string    `json:"venue"`
	StartsAt         time.Time `json:"starts_at"`
	EndsAt           time.Time `json:"ends_at,omitzero"`
	CoverURL         string    `json:"cover_url,omitempty"`
	RegistrationOpen bool      `json:"registration_open"`
}

// Upcoming reports whether the event starts after now.
func (e ClubEvent) Upcoming(now time.Time) bool {
	return e.StartsAt.After(now)
}

// Summary returns the first line of the description, capped at limit runes.
func (e ClubEvent) Summary(limit int) string {
	line, _, _ := strings.Cut(strings.TrimSpace(e.Description), "\n")
	r := []rune(line)
	if limit <= 0 || len(r) <= limit {
		return line
	}
	return strings.TrimSpace(string(r[:limit])) + "…"
}

// CreateEventRequest carries the management form for a new event.
type CreateEventRequest struct {
	Title            string    `json:"title"             validate:"required,max=200"`
	Description      string    `json:"description"       validate:"required,max=5000"`
	Venue            string    `json:"venue"             validate:"required,max=200"`
	StartsAt         time.Time `json:"starts_at"         validate:"required"`
	EndsAt           time.Time `json:"ends_at,omitzero"  validate:"omitempty,gtfield=StartsAt"`
	CoverURL         string    `json:"cover_url,omitempty" validate:"omitempty,url"`
	RegistrationOpen bool      `json:"registration_open"`
}

// UpdateEventRequest carries a partial event update.
type UpdateEventRequest struct {
	Title            *string    `json:"title,omitempty"             validate:"omitempty,min=1,max=200"`
	Description      *string    `json:"description,omitempty"       validate:"omitempty,max=5000"`
	Venue            *string    `json:"venue,omitempty"             validate:"omitempty,max=200"`
	StartsAt         *time.Time `json:"starts_at,omitempty"`
	EndsAt           *time.Time `json:"ends_at,omitempty"`
	CoverURL         *string    `json:"cover_url,omitempty"         validate:"omitempty,url"`
	RegistrationOpen *bool      `json:"registration_open,omitempty"`
}

// HasUpdates reports whether any field is set.
func (r UpdateEventRequest) HasUpdates() bool {
	return r.Title != nil || r.Description != nil || r.Venue != nil || r.StartsAt != nil ||
		r.EndsAt != nil || r.CoverURL != nil || r.RegistrationOpen != nil
}

// SplitEvents partitions events into upcoming and past, preserving input order.
func SplitEvents(events []ClubEvent, now time.Time) (upcoming, past []ClubEvent) {
	for _, e := range events {
		if e.Upcoming(now) {
			upcoming = append(upcoming, e)
		} else {
			past = append(past, e)
		}
	}
	return upcoming, past
}
