package access

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenStore persists the access token across console restarts.
type TokenStore interface {
	LoadToken(ctx context.Context) (string, error)
	SaveToken(ctx context.Context, token string) error
	ClearToken(ctx context.Context) error
}

// Session holds the signed-in operator's token and role. It is the credential
// provider of the backend client and the role source of the Gate.
type Session struct {
	mu    sync.RWMutex
	token string
	role  Role
	store TokenStore
}

func NewSession(store TokenStore) *Session {
	return &Session{store: store}
}

func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

func (s *Session) Role() Role {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.role
}

// Authenticated reports whether a login or restore succeeded. Cookie-based
// backends may grant a role without issuing a bearer token.
func (s *Session) Authenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token != "" || s.role != RoleNone
}

// SetAuth installs a fresh token and role and persists the token.
func (s *Session) SetAuth(ctx context.Context, token string, role Role) error {
	s.mu.Lock()
	s.token = token
	s.role = role
	s.mu.Unlock()

	if s.store == nil {
		return nil
	}
	if token == "" {
		return s.store.ClearToken(ctx)
	}
	if err := s.store.SaveToken(ctx, token); err != nil {
		return fmt.Errorf("failed to persist token: %w", err)
	}
	return nil
}

// SetToken installs a token without a role, as done while the role of a
// restored token is being looked up.
func (s *Session) SetToken(token string) {
	s.mu.Lock()
	s.token = token
	s.mu.Unlock()
}

func (s *Session) SetRole(role Role) {
	s.mu.Lock()
	s.role = role
	s.mu.Unlock()
}

// Logout forgets the token and role and removes the persisted token.
func (s *Session) Logout(ctx context.Context) error {
	s.mu.Lock()
	s.token = ""
	s.role = RoleNone
	s.mu.Unlock()

	if s.store == nil {
		return nil
	}
	if err := s.store.ClearToken(ctx); err != nil {
		return fmt.Errorf("failed to clear persisted token: %w", err)
	}
	return nil
}

// Persisted returns the stored token, or "" when there is none.
func (s *Session) Persisted(ctx context.Context) (string, error) {
	if s.store == nil {
		return "", nil
	}
	token, err := s.store.LoadToken(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to load persisted token: %w", err)
	}
	return token, nil
}

// TokenExpired reports whether token is a JWT whose exp claim is before now.
// Tokens that are not JWTs, or carry no exp, are never considered expired;
// the backend decides.
func TokenExpired(token string, now time.Time) bool {
	parsed, _, err := jwt.NewParser().ParseUnverified(token, jwt.MapClaims{})
	if err != nil {
		return false
	}
	exp, err := parsed.Claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return exp.Time.Before(now)
}
