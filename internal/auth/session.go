package auth

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// LoginClient is the part of the API client used to log in.
type LoginClient interface {
	Login(ctx context.Context, email, password string) (string, error)
}

// Session manages the platform login state.
type Session struct {
	client LoginClient
	store  Store
	logger *zap.Logger
}

// NewSession creates a session that saves tokens into store.
func NewSession(client LoginClient, store Store, logger *zap.Logger) *Session {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Session{client: client, store: store, logger: logger}
}

// Login exchanges the credentials for an access token and saves it.
func (s *Session) Login(ctx context.Context, email, password string) (Claims, error) {
	token, err := s.client.Login(ctx, email, password)
	if err != nil {
		return Claims{}, fmt.Errorf("login failed: %w", err)
	}
	if err := s.store.PutSession(tokenKey, token); err != nil {
		return Claims{}, fmt.Errorf("saving session: %w", err)
	}

	claims, err := ParseClaims(token)
	if err != nil {
		// Opaque token; nothing more to learn from it.
		s.logger.Debug("login token is not a JWT", zap.Error(err))
		return Claims{}, nil
	}
	s.logger.Info("logged in", zap.String("username", claims.Username))
	return claims, nil
}

// Logout forgets the saved token.
func (s *Session) Logout() error {
	if err := s.store.DeleteSession(tokenKey); err != nil {
		return fmt.Errorf("clearing session: %w", err)
	}
	return nil
}
