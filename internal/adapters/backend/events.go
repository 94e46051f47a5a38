package backend

import (
	"context"
	"net/http"
	"net/url"

	"github.com/debate-club/portal/internal/domain/model"
)

func eventPath(id string) string { return "/events/" + url.PathEscape(id) }

// ListEvents returns published events. No token is needed.
func (c *Client) ListEvents(ctx context.Context) ([]model.ClubEvent, error) {
	out := []model.ClubEvent{}
	err := c.do(ctx, call{Method: http.MethodGet, Path: "/events", Out: &out})
	return out, err
}

// GetEvent returns one event.
func (c *Client) GetEvent(ctx context.Context, id string) (model.ClubEvent, error) {
	var e model.ClubEvent
	err := c.do(ctx, call{Method: http.MethodGet, Path: eventPath(id), Out: &e})
	return e, err
}

// CreateEvent publishes a new event.
func (c *Client) CreateEvent(ctx context.Context, token string, req model.CreateEventRequest) (model.ClubEvent, error) {
	var e model.ClubEvent
	err := c.do(ctx, call{Method: http.MethodPost, Path: "/events", Token: token, Body: req, Out: &e})
	return e, err
}

// UpdateEvent applies a partial update.
func (c *Client) UpdateEvent(
	ctx context.Context,
	token, id string,
	req model.UpdateEventRequest,
) (model.ClubEvent, error) {
	var e model.ClubEvent
	err := c.do(ctx, call{Method: http.MethodPut, Path: eventPath(id), Token: token, Body: req, Out: &e})
	return e, err
}

// DeleteEvent removes an event.
func (c *Client) DeleteEvent(ctx context.Context, token, id string) error {
	return c.do(ctx, call{Method: http.MethodDelete, Path: eventPath(id), Token: token})
}
