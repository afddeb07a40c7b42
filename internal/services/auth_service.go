package services

import (
	"context"

	"github.com/vctrubio/summer-expense-tracker/internal/auth"
	"github.com/vctrubio/summer-expense-tracker/internal/core"
)

// AuthService pairs credential checks with session token issuance.
type AuthService struct {
	authenticator *auth.PasswordAuthenticator
	tokens        *auth.JWTManager
}

func NewAuthService(authenticator *auth.PasswordAuthenticator, tokens *auth.JWTManager) *AuthService {
	return &AuthService{
		authenticator: authenticator,
		tokens:        tokens,
	}
}

// Register creates an account and returns a session token for it.
func (s *AuthService) Register(ctx context.Context, email, displayName, password string) (*core.User, string, error) {
	user, err := s.authenticator.Register(ctx, email, displayName, password)
	if err != nil {
		return nil, "", err
	}
	token, err := s.tokens.Generate(user)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// Login verifies credentials and returns a session token.
func (s *AuthService) Login(ctx context.Context, email, password string) (*core.User, string, error) {
	user, err := s.authenticator.Authenticate(ctx, email, password)
	if err != nil {
		return nil, "", err
	}
	token, err := s.tokens.Generate(user)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}
