package service

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"golang.org/x/sync/errgroup"

	domainauth "github.com/debate-club/portal/internal/domain/auth"
	"github.com/debate-club/portal/internal/domain/model"
	apperrors "github.com/debate-club/portal/internal/errors"
	"github.com/debate-club/portal/internal/ports"
)

// AdminSources are the club API ports the console reads from.
type AdminSources struct {
	Stats    ports.StatsSource
	Users    ports.UserDirectory
	Payments ports.PaymentLedger
	Events   ports.EventCatalog
	Gallery  ports.GalleryStore
}

// AdminServiceOptions groups dependencies for AdminService.
type AdminServiceOptions struct {
	Sources AdminSources
	Logger  *slog.Logger
}

// AdminService builds the admin console overview.
type AdminService struct {
	src    AdminSources
	logger *slog.Logger
	now    func() time.Time
}

// NewAdminService constructs an AdminService. Stats is optional; the others are required.
func NewAdminService(opts AdminServiceOptions) *AdminService {
	src := opts.Sources
	if src.Users == nil || src.Payments == nil || src.Events == nil || src.Gallery == nil {
		panic("AdminSources Users, Payments, Events and Gallery are required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &AdminService{src: src, logger: logger, now: time.Now}
}

// Overview is the admin console landing page.
type Overview struct {
	Stats          model.DashboardStats
	RecentPayments []model.Payment
	NextEvents     []model.ClubEvent
}

const overviewRecent = 5

// Overview fetches users, payments, events and images concurrently and aggregates them.
// When the backend serves /admin/stats its figures win over the local counts.
func (s *AdminService) Overview(ctx context.Context, sess Session) (Overview, error) {
	token := sess.Token()
	if token == "" {
		return Overview{}, errSignInRequired
	}

	var (
		users    []domainauth.Identity
		payments []model.Payment
		events   []model.ClubEvent
		images   []model.GalleryImage
		remote   *model.DashboardStats
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		users, err = s.src.Users.ListUsers(gctx, token)
		return err
	})
	g.Go(func() (err error) {
		payments, err = s.src.Payments.ListPayments(gctx, token)
		return err
	})
	g.Go(func() (err error) {
		events, err = s.src.Events.ListEvents(gctx)
		return err
	})
	g.Go(func() (err error) {
		images, err = s.src.Gallery.ListImages(gctx)
		return err
	})
	if s.src.Stats != nil {
		g.Go(func() error {
			st, err := s.src.Stats.DashboardStats(gctx, token)
			switch {
			case err == nil:
				remote = &st
			case apperrors.IsNotFound(err):
				// Older backends have no stats endpoint.
			default:
				return err
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		if apperrors.IsUnauthenticated(err) {
			sess.Logout(ctx)
		}
		return Overview{}, fmt.Errorf("admin overview: %w", err)
	}

	now := s.now()
	ov := Overview{Stats: computeStats(users, payments, events, images, now)}
	if remote != nil {
		ov.Stats = *remote
	}

	sortNewestFirst(payments)
	ov.RecentPayments = payments[:min(len(payments), overviewRecent)]

	upcoming, _ := model.SplitEvents(events, now)
	slices.SortStableFunc(upcoming, func(a, b model.ClubEvent) int { return a.StartsAt.Compare(b.StartsAt) })
	ov.NextEvents = upcoming[:min(len(upcoming), overviewRecent)]
	return ov, nil
}

func computeStats(
	users []domainauth.Identity,
	payments []model.Payment,
	events []model.ClubEvent,
	images []model.GalleryImage,
	now time.Time,
) model.DashboardStats {
	st := model.DashboardStats{
		Users:    len(users),
		Events:   len(events),
		Images:   len(images),
		Payments: len(payments),
	}
	for _, u := range users {
		if u.Role != domainauth.RoleUser && u.Role.Valid() {
			st.Members++
		}
	}
	for _, e := range events {
		if e.Upcoming(now) {
			st.UpcomingEvents++
		}
	}
	for _, p := range payments {
		switch p.Status {
		case model.PaymentPending:
			st.PendingPayments++
		case model.PaymentCompleted:
			st.Collected += p.Amount
		case model.PaymentFailed, model.PaymentCancelled:
		}
	}
	return st
}
