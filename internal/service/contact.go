package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/debate-club/portal/internal/domain/model"
	"github.com/debate-club/portal/internal/ports"
)

// ContactService forwards contact-form messages.
type ContactService struct {
	inbox  ports.ContactInbox
	logger *slog.Logger
}

// NewContactService constructs a ContactService.
func NewContactService(inbox ports.ContactInbox, logger *slog.Logger) *ContactService {
	if inbox == nil {
		panic("ContactInbox is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ContactService{inbox: inbox, logger: logger}
}

// Send trims and forwards msg.
func (s *ContactService) Send(ctx context.Context, msg model.ContactMessage) error {
	msg.Name = strings.TrimSpace(msg.Name)
	msg.Email = strings.TrimSpace(msg.Email)
	msg.Subject = strings.TrimSpace(msg.Subject)
	msg.Body = strings.TrimSpace(msg.Body)
	if err := s.inbox.SendContact(ctx, msg); err != nil {
		return fmt.Errorf("send contact message: %w", err)
	}
	s.logger.InfoContext(ctx, "contact message sent", "subject", msg.Subject)
	return nil
}
