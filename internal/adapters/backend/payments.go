package backend

import (
	"context"
	"net/http"
	"net/url"

	"github.com/debate-club/portal/internal/domain/model"
)

// ListPayments returns every payment in the ledger.
func (c *Client) ListPayments(ctx context.Context, token string) ([]model.Payment, error) {
	out := []model.Payment{}
	err := c.do(ctx, call{Method: http.MethodGet, Path: "/payments", Token: token, Out: &out})
	return out, err
}

// MyPayments returns the caller's own payments.
func (c *Client) MyPayments(ctx context.Context, token string) ([]model.Payment, error) {
	out := []model.Payment{}
	err := c.do(ctx, call{Method: http.MethodGet, Path: "/payments/my-payments", Token: token, Out: &out})
	return out, err
}

// InitiatePayment opens a gateway session for the caller.
func (c *Client) InitiatePayment(
	ctx context.Context,
	token string,
	req model.InitiatePaymentRequest,
) (model.PaymentSession, error) {
	var s model.PaymentSession
	err := c.do(ctx, call{Method: http.MethodPost, Path: "/payments/initiate", Token: token, Body: req, Out: &s})
	return s, err
}

// UpdatePaymentStatus reconciles a payment by hand.
func (c *Client) UpdatePaymentStatus(
	ctx context.Context,
	token, id string,
	status model.PaymentStatus,
) (model.Payment, error) {
	var p model.Payment
	err := c.do(ctx, call{
		Method: http.MethodPut,
		Path:   "/payments/" + url.PathEscape(id) + "/status",
		Token:  token,
		Body:   model.UpdatePaymentStatusRequest{Status: status},
		Out:    &p,
	})
	return p, err
}
