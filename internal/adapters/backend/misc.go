package backend

import (
	"context"
	"net/http"

	"github.com/debate-club/portal/internal/domain/model"
	"github.com/debate-club/portal/internal/ports"
)

var (
	_ ports.Authenticator = (*Client)(nil)
	_ ports.UserDirectory = (*Client)(nil)
	_ ports.PaymentLedger = (*Client)(nil)
	_ ports.EventCatalog  = (*Client)(nil)
	_ ports.GalleryStore  = (*Client)(nil)
	_ ports.ContactInbox  = (*Client)(nil)
	_ ports.StatsSource   = (*Client)(nil)
)

// SendContact forwards a contact-form message.
func (c *Client) SendContact(ctx context.Context, msg model.ContactMessage) error {
	return c.do(ctx, call{Method: http.MethodPost, Path: "/contact", Body: msg})
}

// DashboardStats returns admin aggregates.
func (c *Client) DashboardStats(ctx context.Context, token string) (model.DashboardStats, error) {
	var s model.DashboardStats
	err := c.do(ctx, call{Method: http.MethodGet, Path: "/admin/stats", Token: token, Out: &s})
	return s, err
}

// Ping checks that the API answers GET /health.
func (c *Client) Ping(ctx context.Context) error {
	return c.do(ctx, call{Method: http.MethodGet, Path: "/health"})
}
