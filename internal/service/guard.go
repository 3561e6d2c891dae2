package service

import (
	"context"
	"fmt"

	"catframe/internal/auth"
	"catframe/internal/models"
	"catframe/internal/repository"
)

// GuardService authenticates bearer tokens against the credential store.
type GuardService struct {
	tokens *auth.TokenService
	users  repository.UserRepo
}

func NewGuardService(tokens *auth.TokenService, users repository.UserRepo) *GuardService {
	return &GuardService{tokens: tokens, users: users}
}

// Authenticate resolves rawToken to its user. Every token problem and an unknown
// subject collapse to ErrUnauthorized; the cause stays in the chain for logging.
// Store failures are returned as is.
func (g *GuardService) Authenticate(ctx context.Context, rawToken string) (*models.User, error) {
	username, err := g.tokens.DecodeAccessToken(rawToken)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnauthorized, err)
	}

	u, err := g.users.FindByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("resolve token subject: %w", err)
	}
	if u == nil {
		return nil, fmt.Errorf("%w: subject %q no longer exists", ErrUnauthorized, username)
	}
	return u, nil
}

// RequireAdmin returns u unchanged when it holds the admin role.
func (g *GuardService) RequireAdmin(u *models.User) (*models.User, error) {
	if u == nil || !u.IsAdmin {
		return nil, ErrForbidden
	}
	return u, nil
}
