package service

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	domainauth "github.com/debate-club/portal/internal/domain/auth"
	apperrors "github.com/debate-club/portal/internal/errors"
	"github.com/debate-club/portal/internal/ports"
)

// MemberServiceOptions groups dependencies for MemberService.
type MemberServiceOptions struct {
	Users  ports.UserDirectory
	Logger *slog.Logger
}

// MemberService backs the user management and role assignment views.
type MemberService struct {
	users  ports.UserDirectory
	logger *slog.Logger
}

// NewMemberService constructs a MemberService.
func NewMemberService(opts MemberServiceOptions) *MemberService {
	if opts.Users == nil {
		panic("UserDirectory is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &MemberService{users: opts.Users, logger: logger}
}

// MemberFilter narrows the member list.
type MemberFilter struct {
	Query string
	Role  domainauth.Role
}

// List returns accounts matching filter, sorted by name.
func (s *MemberService) List(ctx context.Context, sess Session, filter MemberFilter) ([]domainauth.Identity, error) {
	users, err := withToken(ctx, sess, func(token string) ([]domainauth.Identity, error) {
		return s.users.ListUsers(ctx, token)
	})
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}

	q := strings.ToLower(strings.TrimSpace(filter.Query))
	out := make([]domainauth.Identity, 0, len(users))
	for _, u := range users {
		if filter.Role != "" && u.Role != filter.Role {
			continue
		}
		if q != "" && !strings.Contains(strings.ToLower(u.Name), q) && !strings.Contains(strings.ToLower(u.Email), q) {
			continue
		}
		out = append(out, u)
	}
	slices.SortStableFunc(out, func(a, b domainauth.Identity) int {
		return strings.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name))
	})
	return out, nil
}

// Delete removes an account. Members cannot delete themselves here.
func (s *MemberService) Delete(ctx context.Context, sess Session, id string) error {
	if self, ok := sess.Identity(); ok && self.ID == id {
		return apperrors.Validation("You cannot delete your own account from the member list.")
	}
	if err := withTokenErr(ctx, sess, func(token string) error {
		return s.users.DeleteUser(ctx, token, id)
	}); err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	s.logger.InfoContext(ctx, "user deleted", "user_id", id)
	return nil
}

// AssignRole changes an account's role. The role must be in the closed set and an
// account cannot change its own role.
func (s *MemberService) AssignRole(
	ctx context.Context,
	sess Session,
	id string,
	role domainauth.Role,
) (domainauth.Identity, error) {
	if !role.Valid() {
		return domainauth.Identity{}, apperrors.ValidationField("role", "Choose a valid role.")
	}
	self, ok := sess.Identity()
	if ok && self.ID == id {
		return domainauth.Identity{}, apperrors.Validation("You cannot change your own role.")
	}
	updated, err := withToken(ctx, sess, func(token string) (domainauth.Identity, error) {
		return s.users.AssignRole(ctx, token, id, role)
	})
	if err != nil {
		return domainauth.Identity{}, fmt.Errorf("assign role: %w", err)
	}
	s.logger.InfoContext(ctx, "role assigned", "user_id", id, "role", string(role), "by", self.ID)
	return updated, nil
}
