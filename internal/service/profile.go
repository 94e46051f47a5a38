package service

import (
	"context"
	"fmt"
	"log/slog"

	domainauth "github.com/debate-club/portal/internal/domain/auth"
	"github.com/debate-club/portal/internal/domain/model"
	"github.com/debate-club/portal/internal/ports"
)

// ProfileServiceOptions groups dependencies for ProfileService.
type ProfileServiceOptions struct {
	Users  ports.UserDirectory
	Logger *slog.Logger
}

// ProfileService lets a member read and edit their own account.
type ProfileService struct {
	users  ports.UserDirectory
	logger *slog.Logger
}

// NewProfileService constructs a ProfileService.
func NewProfileService(opts ProfileServiceOptions) *ProfileService {
	if opts.Users == nil {
		panic("UserDirectory is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &ProfileService{users: opts.Users, logger: logger}
}

// Current returns the signed-in identity as the backend knows it now. The cached copy is
// refreshed when it differs.
func (s *ProfileService) Current(ctx context.Context, sess Session) (domainauth.Identity, error) {
	cached, ok := sess.Identity()
	if !ok {
		return domainauth.Identity{}, errSignInRequired
	}
	fresh, err := withToken(ctx, sess, func(token string) (domainauth.Identity, error) {
		return s.users.GetUser(ctx, token, cached.ID)
	})
	if err != nil {
		return domainauth.Identity{}, fmt.Errorf("get profile: %w", err)
	}
	if fresh.ID == "" {
		return cached, nil
	}
	if fresh != cached {
		sess.UpdateIdentity(ctx, fresh)
	}
	return fresh, nil
}

// Update saves the editable profile fields and replaces the session identity with the result.
func (s *ProfileService) Update(
	ctx context.Context,
	sess Session,
	upd model.ProfileUpdate,
) (domainauth.Identity, error) {
	current, ok := sess.Identity()
	if !ok {
		return domainauth.Identity{}, errSignInRequired
	}
	saved, err := withToken(ctx, sess, func(token string) (domainauth.Identity, error) {
		return s.users.UpdateUser(ctx, token, current.ID, upd)
	})
	if err != nil {
		return domainauth.Identity{}, fmt.Errorf("update profile: %w", err)
	}
	if saved.ID == "" {
		saved = upd.Apply(current)
	}
	sess.UpdateIdentity(ctx, saved)
	s.logger.InfoContext(ctx, "profile updated", "user_id", saved.ID)
	return saved, nil
}
