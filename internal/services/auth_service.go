package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"catalog-console/internal/access"
	"catalog-console/internal/catalogapi"

	"go.uber.org/zap"
)

// AuthService runs the login, logout and startup restore flows.
type AuthService struct {
	api     *catalogapi.Client
	session *access.Session
	now     func() time.Time
}

func NewAuthService(api *catalogapi.Client, session *access.Session) *AuthService {
	return &AuthService{api: api, session: session, now: time.Now}
}

// Login exchanges credentials for a token and role. When the login answer
// carries no role, it is looked up with the new token.
func (s *AuthService) Login(ctx context.Context, username, password string) (access.Role, error) {
	if strings.TrimSpace(username) == "" || password == "" {
		return access.RoleNone, fmt.Errorf("%w: username and password are required", ErrValidation)
	}

	resp, err := s.api.Login(ctx, username, password)
	if err != nil {
		zap.L().Warn("login failed", zap.String("username", username), zap.Error(err))
		return access.RoleNone, err
	}

	role := access.Role(resp.Role)
	if role == access.RoleNone {
		s.session.SetToken(resp.AccessToken)
		me, err := s.api.CurrentUser(ctx)
		if err != nil {
			s.session.SetToken("")
			zap.L().Warn("failed to resolve role after login", zap.Error(err))
			return access.RoleNone, err
		}
		role = access.Role(me.Role)
	}

	if err := s.session.SetAuth(ctx, resp.AccessToken, role); err != nil {
		zap.L().Warn("signed in but the token was not persisted", zap.Error(err))
	}
	zap.L().Info("operator signed in", zap.String("username", username), zap.String("role", string(role)))
	return role, nil
}

func (s *AuthService) Logout(ctx context.Context) error {
	if err := s.session.Logout(ctx); err != nil {
		zap.L().Warn("failed to clear persisted token", zap.Error(err))
		return err
	}
	return nil
}

// Restore resumes the persisted session at startup. An expired or rejected
// token is cleared and the console starts signed out.
func (s *AuthService) Restore(ctx context.Context) error {
	token, err := s.session.Persisted(ctx)
	if err != nil {
		return err
	}
	if token == "" {
		return nil
	}

	if access.TokenExpired(token, s.now()) {
		zap.L().Info("persisted token has expired")
		return s.session.Logout(ctx)
	}

	s.session.SetToken(token)
	me, err := s.api.CurrentUser(ctx)
	if err != nil {
		if clearErr := s.session.Logout(ctx); clearErr != nil {
			zap.L().Warn("failed to clear rejected token", zap.Error(clearErr))
		}
		return fmt.Errorf("failed to restore session: %w", err)
	}

	s.session.SetRole(access.Role(me.Role))
	zap.L().Info("session restored", zap.String("role", me.Role))
	return nil
}
