//revive:disable-next-line:var-naming // legacy package name widely used across the project
package model

import (
	"fmt"
	"strings"
	"time"
)

// PaymentStatus is the lifecycle state reported by the backend for a payment.
type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentCompleted PaymentStatus = "completed"
	PaymentFailed    PaymentStatus = "failed"
	PaymentCancelled PaymentStatus = "cancelled"
)

// Valid reports whether the status is supported.
func (s PaymentStatus) Valid() bool {
	switch s {
	case PaymentPending, PaymentCompleted, PaymentFailed, PaymentCancelled:
		return true
	default:
		return false
	}
}

// ParsePaymentStatus normalizes a status string and reports whether it is supported.
func ParsePaymentStatus(value string) (PaymentStatus, bool) {
	s := PaymentStatus(strings.ToLower(strings.TrimSpace(value)))
	if s.Valid() {
		return s, true
	}
	return "", false
}

// PaymentStatuses lists statuses in display order.
func PaymentStatuses() []PaymentStatus {
	return []PaymentStatus{PaymentPending, PaymentCompleted, PaymentFailed, PaymentCancelled}
}

// Payment is a membership or event fee recorded by the backend.
type Payment struct {
	ID            string        `json:"id"`
	UserID        string        `json:"user_id"`
	UserName      string        `json:"user_name,omitempty"`
	Purpose       string        `json:"purpose"`
	Amount        float64       `json:"amount"`
	Currency      string        `json:"currency"`
	Status        PaymentStatus `json:"status"`
	TransactionID string        `json:"transaction_id,omitempty"`
	CreatedAt     time.Time     `json:"created_at"`
}

// DisplayAmount formats the amount with its currency code.
func (p Payment) DisplayAmount() string {
	cur := p.Currency
	if cur == "" {
		cur = "BDT"
	}
	return fmt.Sprintf("%s %.2f", cur, p.Amount)
}

// InitiatePaymentRequest starts a gateway payment for the signed-in member.
type InitiatePaymentRequest struct {
	Purpose string  `json:"purpose" validate:"required,oneof=membership event donation"`
	Amount  float64 `json:"amount"  validate:"required,gt=0,lte=100000"`
}

// PaymentSession is the gateway redirect returned when a payment is initiated.
type PaymentSession struct {
	PaymentID  string `json:"payment_id"`
	GatewayURL string `json:"gateway_url"`
}

// UpdatePaymentStatusRequest is used by treasurers to reconcile a payment.
type UpdatePaymentStatusRequest struct {
	Status PaymentStatus `json:"status" validate:"required,oneof=pending completed failed cancelled"`
}
