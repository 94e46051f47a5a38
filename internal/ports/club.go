package ports

import (
	"context"

	domainauth "github.com/debate-club/portal/internal/domain/auth"
	"github.com/debate-club/portal/internal/domain/model"
)

// Methods taking a token call authenticated backend endpoints with it as the bearer.
// A rejected token surfaces as an errors.ErrCodeUnauthenticated AppError.

// UserDirectory manages member accounts.
type UserDirectory interface {
	ListUsers(ctx context.Context, token string) ([]domainauth.Identity, error)
	GetUser(ctx context.Context, token, id string) (domainauth.Identity, error)
	UpdateUser(ctx context.Context, token, id string, upd model.ProfileUpdate) (domainauth.Identity, error)
	DeleteUser(ctx context.Context, token, id string) error
	AssignRole(ctx context.Context, token, id string, role domainauth.Role) (domainauth.Identity, error)
}

// PaymentLedger reads and reconciles payments. Gateway processing happens off-site.
type PaymentLedger interface {
	ListPayments(ctx context.Context, token string) ([]model.Payment, error)
	MyPayments(ctx context.Context, token string) ([]model.Payment, error)
	InitiatePayment(ctx context.Context, token string, req model.InitiatePaymentRequest) (model.PaymentSession, error)
	UpdatePaymentStatus(ctx context.Context, token, id string, status model.PaymentStatus) (model.Payment, error)
}

// EventCatalog publishes club events. Reads are public.
type EventCatalog interface {
	ListEvents(ctx context.Context) ([]model.ClubEvent, error)
	GetEvent(ctx context.Context, id string) (model.ClubEvent, error)
	CreateEvent(ctx context.Context, token string, req model.CreateEventRequest) (model.ClubEvent, error)
	UpdateEvent(ctx context.Context, token, id string, req model.UpdateEventRequest) (model.ClubEvent, error)
	DeleteEvent(ctx context.Context, token, id string) error
}

// GalleryStore lists and curates gallery images. Reads are public.
type GalleryStore interface {
	ListImages(ctx context.Context) ([]model.GalleryImage, error)
	AddImage(ctx context.Context, token string, req model.AddImageRequest) (model.GalleryImage, error)
	DeleteImage(ctx context.Context, token, id string) error
}

// ContactInbox accepts messages from the public contact form.
type ContactInbox interface {
	SendContact(ctx context.Context, msg model.ContactMessage) error
}

// StatsSource reports dashboard aggregates.
type StatsSource interface {
	DashboardStats(ctx context.Context, token string) (model.DashboardStats, error)
}
