// Package devauth provides a config-driven Authenticator for local development.
// It accepts one configured account plus any accounts registered while the process runs.
package devauth

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	domainauth "github.com/debate-club/portal/internal/domain/auth"
	"github.com/debate-club/portal/internal/domain/model"
	apperrors "github.com/debate-club/portal/internal/errors"
	"github.com/debate-club/portal/internal/ports"
)

var _ ports.Authenticator = (*Provider)(nil)

// Config controls the dev auth provider behavior.
// All fields are required except Name, Role and SessionDuration.
type Config struct {
	UserID          string
	Name            string
	Email           string
	Password        string
	Role            domainauth.Role
	SessionDuration time.Duration // default 8h when zero
}

type account struct {
	hash     []byte
	identity domainauth.Identity
}

// Provider implements ports.Authenticator without a backend.
// Tokens are HS256 JWTs signed with a per-process key and carry an exp claim.
type Provider struct {
	mu              sync.RWMutex
	accounts        map[string]account
	secret          []byte
	sessionDuration time.Duration
	cost            int
	now             func() time.Time
}

// NewProvider constructs a dev auth provider from Config.
func NewProvider(cfg Config) (*Provider, error) {
	if cfg.UserID == "" {
		return nil, errors.New("dev auth: UserID is required")
	}
	email := normalizeEmail(cfg.Email)
	if email == "" {
		return nil, errors.New("dev auth: Email is required")
	}
	if cfg.Password == "" {
		return nil, errors.New("dev auth: Password is required")
	}
	role := cfg.Role
	if role == "" {
		role = domainauth.RoleAdmin
	}
	if !role.Valid() {
		return nil, fmt.Errorf("dev auth: invalid role %q", role)
	}
	dur := cfg.SessionDuration
	if dur == 0 {
		dur = 8 * time.Hour
	}

	secret := make([]byte, 32)
	if _, err := rand.Read(secret); err != nil {
		return nil, fmt.Errorf("dev auth: generate signing key: %w", err)
	}

	p := &Provider{
		accounts:        make(map[string]account),
		secret:          secret,
		sessionDuration: dur,
		cost:            bcrypt.DefaultCost,
		now:             time.Now,
	}
	name := cfg.Name
	if name == "" {
		name = "Dev User"
	}
	if err := p.add(cfg.Password, domainauth.Identity{ID: cfg.UserID, Name: name, Email: email, Role: role}); err != nil {
		return nil, err
	}
	return p, nil
}

// Login checks creds against the known accounts.
func (p *Provider) Login(_ context.Context, creds domainauth.Credentials) (domainauth.Grant, error) {
	p.mu.RLock()
	acct, ok := p.accounts[normalizeEmail(creds.Email)]
	p.mu.RUnlock()

	if !ok || bcrypt.CompareHashAndPassword(acct.hash, []byte(creds.Password)) != nil {
		return domainauth.Grant{}, apperrors.Unauthenticated("Invalid email or password.")
	}
	return p.grant(acct.identity)
}

// Register adds an account with the baseline user role and signs it in.
func (p *Provider) Register(_ context.Context, req model.RegisterRequest) (domainauth.Grant, error) {
	email := normalizeEmail(req.Email)
	if email == "" || req.Password == "" {
		return domainauth.Grant{}, apperrors.Validation("Email and password are required.")
	}

	p.mu.RLock()
	_, exists := p.accounts[email]
	n := len(p.accounts)
	p.mu.RUnlock()
	if exists {
		return domainauth.Grant{}, apperrors.ValidationField("email", "An account with this email already exists.")
	}

	id := domainauth.Identity{
		ID:         fmt.Sprintf("dev-%d", n+1),
		Name:       strings.TrimSpace(req.Name),
		Email:      email,
		Role:       domainauth.RoleUser,
		Phone:      req.Phone,
		Department: req.Department,
		Batch:      req.Batch,
	}
	if err := p.add(req.Password, id); err != nil {
		return domainauth.Grant{}, err
	}
	return p.grant(id)
}

func (p *Provider) add(password string, id domainauth.Identity) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), p.cost)
	if err != nil {
		return fmt.Errorf("dev auth: hash password: %w", err)
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, exists := p.accounts[id.Email]; exists {
		return apperrors.ValidationField("email", "An account with this email already exists.")
	}
	p.accounts[id.Email] = account{hash: hash, identity: id}
	return nil
}

func (p *Provider) grant(id domainauth.Identity) (domainauth.Grant, error) {
	now := p.now()
	claims := jwt.MapClaims{
		"sub":  id.ID,
		"role": string(id.Role),
		"iat":  now.Unix(),
		"exp":  now.Add(p.sessionDuration).Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(p.secret)
	if err != nil {
		return domainauth.Grant{}, fmt.Errorf("dev auth: sign token: %w", err)
	}
	return domainauth.Grant{Token: token, User: id}, nil
}

func normalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
