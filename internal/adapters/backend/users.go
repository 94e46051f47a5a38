package backend

import (
	"context"
	"net/http"
	"net/url"

	domainauth "github.com/debate-club/portal/internal/domain/auth"
	"github.com/debate-club/portal/internal/domain/model"
)

func userPath(id string) string { return "/users/" + url.PathEscape(id) }

// ListUsers returns every account.
func (c *Client) ListUsers(ctx context.Context, token string) ([]domainauth.Identity, error) {
	out := []domainauth.Identity{}
	err := c.do(ctx, call{Method: http.MethodGet, Path: "/users", Token: token, Out: &out})
	return out, err
}

// GetUser returns one account.
func (c *Client) GetUser(ctx context.Context, token, id string) (domainauth.Identity, error) {
	var u domainauth.Identity
	err := c.do(ctx, call{Method: http.MethodGet, Path: userPath(id), Token: token, Out: &u})
	return u, err
}

// UpdateUser replaces the editable profile fields of an account.
func (c *Client) UpdateUser(
	ctx context.Context,
	token, id string,
	upd model.ProfileUpdate,
) (domainauth.Identity, error) {
	var u domainauth.Identity
	err := c.do(ctx, call{Method: http.MethodPut, Path: userPath(id), Token: token, Body: upd, Out: &u})
	return u, err
}

// DeleteUser removes an account.
func (c *Client) DeleteUser(ctx context.Context, token, id string) error {
	return c.do(ctx, call{Method: http.MethodDelete, Path: userPath(id), Token: token})
}

// AssignRole sets an account's role.
func (c *Client) AssignRole(
	ctx context.Context,
	token, id string,
	role domainauth.Role,
) (domainauth.Identity, error) {
	var u domainauth.Identity
	body := map[string]domainauth.Role{"role": role}
	err := c.do(ctx, call{Method: http.MethodPut, Path: userPath(id) + "/role", Token: token, Body: body, Out: &u})
	return u, err
}
