package backend

import (
	"context"
	"net/http"
	"strings"

	domainauth "github.com/debate-club/portal/internal/domain/auth"
	"github.com/debate-club/portal/internal/domain/model"
	apperrors "github.com/debate-club/portal/internal/errors"
)

// Login exchanges credentials at POST /auth/login.
func (c *Client) Login(ctx context.Context, creds domainauth.Credentials) (domainauth.Grant, error) {
	var grant domainauth.Grant
	err := c.do(ctx, call{
		Method:       http.MethodPost,
		Path:         "/auth/login",
		Body:         model.LoginRequest{Email: strings.TrimSpace(creds.Email), Password: creds.Password},
		Out:          &grant,
		Unauthorized: "Invalid email or password.",
	})
	if err != nil {
		return domainauth.Grant{}, err
	}
	return checkGrant(grant)
}

// Register creates an account at POST /auth/register.
func (c *Client) Register(ctx context.Context, req model.RegisterRequest) (domainauth.Grant, error) {
	req.Email = strings.TrimSpace(req.Email)
	var grant domainauth.Grant
	if err := c.do(ctx, call{Method: http.MethodPost, Path: "/auth/register", Body: req, Out: &grant}); err != nil {
		return domainauth.Grant{}, err
	}
	return checkGrant(grant)
}

func checkGrant(g domainauth.Grant) (domainauth.Grant, error) {
	if strings.TrimSpace(g.Token) == "" {
		return domainauth.Grant{}, apperrors.Backend("The server did not return a session token.")
	}
	return g, nil
}
