// Package auth implements password hashing and bearer-token issuance/verification.
//
// The rest of the application treats this as an opaque identity service:
// Issue hands out a signed token for a user, Verify resolves a token back
// to the user record or rejects it.
package auth

import (
	"context"
	"errors"

	"github.com/pscheid92/eventpulse/internal/domain"
)

// Service binds token management to the user store. Implements domain.TokenVerifier.
type Service struct {
	tokens *TokenManager
	users  domain.UserRepository
}

func NewService(tokens *TokenManager, users domain.UserRepository) *Service {
	return &Service{tokens: tokens, users: users}
}

// Issue creates a bearer token for the given user.
func (s *Service) Issue(user *domain.User) (string, error) {
	return s.tokens.Issue(user)
}

// Verify validates a token and resolves it to a user. Returns
// domain.ErrInvalidToken when the credential is missing, malformed, expired,
// or its subject no longer exists.
func (s *Service) Verify(ctx context.Context, token string) (*domain.User, error) {
	email, err := s.tokens.Subject(token)
	if err != nil {
		return nil, err
	}

	user, err := s.users.GetByEmail(ctx, email)
	if errors.Is(err, domain.ErrUserNotFound) {
		return nil, domain.ErrInvalidToken
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}
