package service

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"slices"

	"github.com/debate-club/portal/internal/domain/model"
	apperrors "github.com/debate-club/portal/internal/errors"
	"github.com/debate-club/portal/internal/ports"
)

// PaymentServiceOptions groups dependencies for PaymentService.
type PaymentServiceOptions struct {
	Ledger ports.PaymentLedger
	Logger *slog.Logger
}

// PaymentService lists payments and starts gateway checkouts.
type PaymentService struct {
	ledger ports.PaymentLedger
	logger *slog.Logger
}

// NewPaymentService constructs a PaymentService.
func NewPaymentService(opts PaymentServiceOptions) *PaymentService {
	if opts.Ledger == nil {
		panic("PaymentLedger is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &PaymentService{ledger: opts.Ledger, logger: logger}
}

// Mine returns the caller's payments, newest first.
func (s *PaymentService) Mine(ctx context.Context, sess Session) ([]model.Payment, error) {
	ps, err := withToken(ctx, sess, func(token string) ([]model.Payment, error) {
		return s.ledger.MyPayments(ctx, token)
	})
	if err != nil {
		return nil, fmt.Errorf("my payments: %w", err)
	}
	sortNewestFirst(ps)
	return ps, nil
}

// All returns every payment, optionally limited to one status, newest first.
func (s *PaymentService) All(ctx context.Context, sess Session, status model.PaymentStatus) ([]model.Payment, error) {
	ps, err := withToken(ctx, sess, func(token string) ([]model.Payment, error) {
		return s.ledger.ListPayments(ctx, token)
	})
	if err != nil {
		return nil, fmt.Errorf("list payments: %w", err)
	}
	if status != "" {
		ps = slices.DeleteFunc(ps, func(p model.Payment) bool { return p.Status != status })
	}
	sortNewestFirst(ps)
	return ps, nil
}

// Initiate opens a checkout and returns the gateway URL to redirect the browser to.
// Only absolute http(s) URLs are accepted from the backend.
func (s *PaymentService) Initiate(
	ctx context.Context,
	sess Session,
	req model.InitiatePaymentRequest,
) (model.PaymentSession, error) {
	ps, err := withToken(ctx, sess, func(token string) (model.PaymentSession, error) {
		return s.ledger.InitiatePayment(ctx, token, req)
	})
	if err != nil {
		return model.PaymentSession{}, fmt.Errorf("initiate payment: %w", err)
	}
	u, err := url.Parse(ps.GatewayURL)
	if err != nil || (u.Scheme != "https" && u.Scheme != "http") || u.Host == "" {
		return model.PaymentSession{}, apperrors.Backend("The payment gateway is unavailable. Please try again later.")
	}
	s.logger.InfoContext(ctx, "payment initiated", "payment_id", ps.PaymentID, "purpose", req.Purpose)
	return ps, nil
}

// SetStatus reconciles a payment by hand.
func (s *PaymentService) SetStatus(
	ctx context.Context,
	sess Session,
	id string,
	status model.PaymentStatus,
) (model.Payment, error) {
	if !status.Valid() {
		return model.Payment{}, apperrors.ValidationField("status", "Choose a valid payment status.")
	}
	p, err := withToken(ctx, sess, func(token string) (model.Payment, error) {
		return s.ledger.UpdatePaymentStatus(ctx, token, id, status)
	})
	if err != nil {
		return model.Payment{}, fmt.Errorf("update payment status: %w", err)
	}
	s.logger.InfoContext(ctx, "payment status updated", "payment_id", id, "status", string(status))
	return p, nil
}

func sortNewestFirst(ps []model.Payment) {
	slices.SortStableFunc(ps, func(a, b model.Payment) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
}
