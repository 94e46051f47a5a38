package service

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	domainauth "github.com/debate-club/portal/internal/domain/auth"
	"github.com/debate-club/portal/internal/domain/model"
	"github.com/debate-club/portal/internal/observability/metrics"
	"github.com/debate-club/portal/internal/ports"
)

const defaultLoginFailure = "Login failed. Please try again."

// SessionStoreOptions groups dependencies for SessionStore.
type SessionStoreOptions struct {
	Storage ports.LocalStorage
	Auth    ports.Authenticator
	Logger  *slog.Logger
}

// SessionStore owns the login lifecycle for one browser client.
// It is the only writer of the persisted token and user keys.
//
// A store starts in the loading state. Initialize rehydrates it from storage exactly once.
// Login, Register, Logout and UpdateIdentity wait for a running Initialize before they
// write, and an Initialize that starts after one of them leaves the session alone.
type SessionStore struct {
	storage ports.LocalStorage
	auth    ports.Authenticator
	logger  *slog.Logger
	now     func() time.Time

	initOnce sync.Once

	// writeMu serializes rehydration with every write to storage and session state.
	writeMu sync.Mutex
	mutated bool

	mu       sync.RWMutex
	loading  bool
	token    string
	identity *domainauth.Identity
}

// LoginResult reports the outcome of Login or Register.
// Message is user-facing and set only on failure.
type LoginResult struct {
	Success bool
	Message string
	Field   string
}

// NewSessionStore constructs a store in the loading state.
func NewSessionStore(opts SessionStoreOptions) *SessionStore {
	if opts.Storage == nil {
		panic("LocalStorage is required")
	}
	if opts.Auth == nil {
		panic("Authenticator is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &SessionStore{
		storage: opts.Storage,
		auth:    opts.Auth,
		logger:  logger.With("component", "session_store"),
		now:     time.Now,
		loading: true,
	}
}

// Initialize reads the persisted token and user. When both are present and usable the
// session becomes authenticated; otherwise it stays unauthenticated. Loading is false
// once Initialize returns. Calls after the first are no-ops.
//
// The cached identity is trusted without a network call. A token whose JWT exp claim has
// passed is treated as absent and both keys are cleared.
func (s *SessionStore) Initialize(ctx context.Context) {
	s.initOnce.Do(func() {
		s.writeMu.Lock()
		defer s.writeMu.Unlock()
		if s.mutated {
			s.mu.Lock()
			s.loading = false
			s.mu.Unlock()
			return
		}

		token, identity := s.rehydrate(ctx)

		s.mu.Lock()
		defer s.mu.Unlock()
		s.token = token
		s.identity = identity
		s.loading = false
	})
}

func (s *SessionStore) rehydrate(ctx context.Context) (string, *domainauth.Identity) {
	token := s.read(ctx, ports.StorageKeyToken)
	raw := s.read(ctx, ports.StorageKeyUser)
	if token == "" || raw == "" {
		return "", nil
	}

	var identity domainauth.Identity
	if err := json.Unmarshal([]byte(raw), &identity); err != nil {
		s.logger.WarnContext(ctx, "discarding unreadable persisted user", "error", err)
		s.clear(ctx)
		return "", nil
	}
	if tokenExpired(token, s.now()) {
		s.logger.InfoContext(ctx, "persisted token expired", "user_id", identity.ID)
		s.clear(ctx)
		return "", nil
	}
	return token, &identity
}

// tokenExpired reports whether token is a JWT with an exp claim before now.
// Opaque tokens never expire here; the backend rejects them when they lapse.
func tokenExpired(token string, now time.Time) bool {
	if strings.Count(token, ".") != 2 {
		return false
	}
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return !now.Before(exp.Time)
}

// State returns a snapshot of the session. The identity is a copy.
func (s *SessionStore) State() domainauth.SessionState {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st := domainauth.SessionState{Loading: s.loading}
	if s.identity != nil {
		id := *s.identity
		st.Identity = &id
		st.Authenticated = true
	}
	return st
}

// Identity returns the signed-in identity.
func (s *SessionStore) Identity() (domainauth.Identity, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.identity == nil {
		return domainauth.Identity{}, false
	}
	return *s.identity, true
}

// Token returns the bearer token, or "" when unauthenticated.
func (s *SessionStore) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// Login authenticates with the backend. Failures never escape as errors: they become
// a LoginResult carrying a message, and the session is left as it was.
func (s *SessionStore) Login(ctx context.Context, email, password string) LoginResult {
	grant, err := s.auth.Login(ctx, domainauth.Credentials{Email: email, Password: password})
	return s.complete(ctx, "login", grant, err)
}

// Register creates an account and signs it in, with the same failure contract as Login.
func (s *SessionStore) Register(ctx context.Context, req model.RegisterRequest) LoginResult {
	grant, err := s.auth.Register(ctx, req)
	return s.complete(ctx, "register", grant, err)
}

func (s *SessionStore) complete(ctx context.Context, kind string, grant domainauth.Grant, err error) LoginResult {
	if err != nil {
		metrics.LoginsTotal.WithLabelValues(kind, metrics.ResultFailure).Inc()
		s.logger.InfoContext(ctx, kind+" failed", "error", err)
		return failureResult(err)
	}

	user, err := json.Marshal(grant.User)
	if err != nil {
		metrics.LoginsTotal.WithLabelValues(kind, metrics.ResultFailure).Inc()
		s.logger.ErrorContext(ctx, "encode identity", "error", err)
		return LoginResult{Message: defaultLoginFailure}
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	s.mutated = true
	s.write(ctx, ports.StorageKeyToken, grant.Token)
	s.write(ctx, ports.StorageKeyUser, string(user))

	id := grant.User
	s.mu.Lock()
	s.token = grant.Token
	s.identity = &id
	s.loading = false
	s.mu.Unlock()

	metrics.LoginsTotal.WithLabelValues(kind, metrics.ResultSuccess).Inc()
	s.logger.InfoContext(ctx, kind+" succeeded", "user_id", id.ID, "role", string(id.Role))
	return LoginResult{Success: true}
}

// Logout clears both persisted keys and the in-memory session. It is idempotent.
func (s *SessionStore) Logout(ctx context.Context) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	s.mutated = true
	s.clear(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
	s.identity = nil
	s.loading = false
}

// UpdateIdentity replaces the in-memory and persisted identity. The persisted copy is
// overwritten, never merged. The token is left untouched and not re-validated.
func (s *SessionStore) UpdateIdentity(ctx context.Context, identity domainauth.Identity) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	s.mutated = true

	user, err := json.Marshal(identity)
	if err != nil {
		s.logger.ErrorContext(ctx, "encode identity", "error", err)
	} else {
		s.write(ctx, ports.StorageKeyUser, string(user))
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.identity = &identity
}

func (s *SessionStore) read(ctx context.Context, key string) string {
	v, err := s.storage.GetItem(ctx, key)
	switch {
	case err == nil:
		return v
	case errors.Is(err, ports.ErrItemNotFound):
		return ""
	default:
		metrics.StorageErrorsTotal.WithLabelValues("get").Inc()
		s.logger.WarnContext(ctx, "client storage read failed", "key", key, "error", err)
		return ""
	}
}

func (s *SessionStore) write(ctx context.Context, key, value string) {
	if err := s.storage.SetItem(ctx, key, value); err != nil {
		metrics.StorageErrorsTotal.WithLabelValues("set").Inc()
		s.logger.WarnContext(ctx, "client storage write failed", "key", key, "error", err)
	}
}

func (s *SessionStore) clear(ctx context.Context) {
	for _, key := range []string{ports.StorageKeyToken, ports.StorageKeyUser} {
		if err := s.storage.RemoveItem(ctx, key); err != nil {
			metrics.StorageErrorsTotal.WithLabelValues("remove").Inc()
			s.logger.WarnContext(ctx, "client storage remove failed", "key", key, "error", err)
		}
	}
}
