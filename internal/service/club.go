package service

import (
	"context"

	domainauth "github.com/debate-club/portal/internal/domain/auth"
	apperrors "github.com/debate-club/portal/internal/errors"
)

// Session is the signed-in client that club services act for. *SessionStore implements it.
type Session interface {
	Token() string
	Identity() (domainauth.Identity, bool)
	UpdateIdentity(ctx context.Context, identity domainauth.Identity)
	Logout(ctx context.Context)
}

var _ Session = (*SessionStore)(nil)

var errSignInRequired = apperrors.Unauthenticated("Please sign in to continue.")

// withToken calls fn with the session's bearer token. When the backend rejects the token
// the session is logged out before the error is returned.
func withToken[T any](ctx context.Context, sess Session, fn func(token string) (T, error)) (T, error) {
	var zero T
	token := sess.Token()
	if token == "" {
		return zero, errSignInRequired
	}
	v, err := fn(token)
	if err != nil {
		if apperrors.IsUnauthenticated(err) {
			sess.Logout(ctx)
		}
		return zero, err
	}
	return v, nil
}

func withTokenErr(ctx context.Context, sess Session, fn func(token string) error) error {
	_, err := withToken(ctx, sess, func(token string) (struct{}, error) {
		return struct{}{}, fn(token)
	})
	return err
}
