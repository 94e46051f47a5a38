package service

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/debate-club/portal/internal/domain/model"
	apperrors "github.com/debate-club/portal/internal/errors"
	"github.com/debate-club/portal/internal/ports"
)

// EventServiceOptions groups dependencies for EventService.
type EventServiceOptions struct {
	Catalog ports.EventCatalog
	Logger  *slog.Logger
}

// EventService publishes club events.
type EventService struct {
	catalog ports.EventCatalog
	logger  *slog.Logger
	now     func() time.Time
}

// NewEventService constructs an EventService.
func NewEventService(opts EventServiceOptions) *EventService {
	if opts.Catalog == nil {
		panic("EventCatalog is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &EventService{catalog: opts.Catalog, logger: logger, now: time.Now}
}

// Schedule is the public events page: upcoming events soonest first, past events latest first.
type Schedule struct {
	Upcoming []model.ClubEvent
	Past     []model.ClubEvent
}

// Schedule lists events split around now.
func (s *EventService) Schedule(ctx context.Context) (Schedule, error) {
	events, err := s.catalog.ListEvents(ctx)
	if err != nil {
		return Schedule{}, fmt.Errorf("list events: %w", err)
	}
	upcoming, past := model.SplitEvents(events, s.now())
	slices.SortStableFunc(upcoming, func(a, b model.ClubEvent) int { return a.StartsAt.Compare(b.StartsAt) })
	slices.SortStableFunc(past, func(a, b model.ClubEvent) int { return b.StartsAt.Compare(a.StartsAt) })
	return Schedule{Upcoming: upcoming, Past: past}, nil
}

// Get returns one event.
func (s *EventService) Get(ctx context.Context, id string) (model.ClubEvent, error) {
	e, err := s.catalog.GetEvent(ctx, id)
	if err != nil {
		return model.ClubEvent{}, fmt.Errorf("get event: %w", err)
	}
	return e, nil
}

// Create publishes an event.
func (s *EventService) Create(ctx context.Context, sess Session, req model.CreateEventRequest) (model.ClubEvent, error) {
	e, err := withToken(ctx, sess, func(token string) (model.ClubEvent, error) {
		return s.catalog.CreateEvent(ctx, token, req)
	})
	if err != nil {
		return model.ClubEvent{}, fmt.Errorf("create event: %w", err)
	}
	s.logger.InfoContext(ctx, "event created", "event_id", e.ID, "title", e.Title)
	return e, nil
}

// Update applies a partial update. An empty update is rejected.
func (s *EventService) Update(
	ctx context.Context,
	sess Session,
	id string,
	req model.UpdateEventRequest,
) (model.ClubEvent, error) {
	if !req.HasUpdates() {
		return model.ClubEvent{}, apperrors.Validation("Nothing to update.")
	}
	e, err := withToken(ctx, sess, func(token string) (model.ClubEvent, error) {
		return s.catalog.UpdateEvent(ctx, token, id, req)
	})
	if err != nil {
		return model.ClubEvent{}, fmt.Errorf("update event: %w", err)
	}
	s.logger.InfoContext(ctx, "event updated", "event_id", id)
	return e, nil
}

// Delete removes an event.
func (s *EventService) Delete(ctx context.Context, sess Session, id string) error {
	if err := withTokenErr(ctx, sess, func(token string) error {
		return s.catalog.DeleteEvent(ctx, token, id)
	}); err != nil {
		return fmt.Errorf("delete event: %w", err)
	}
	s.logger.InfoContext(ctx, "event deleted", "event_id", id)
	return nil
}
