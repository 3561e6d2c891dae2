package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"catframe/internal/auth"
	"catframe/internal/models"
	"catframe/internal/repository"
	"catframe/internal/validation"
)

const (
	// DefaultResetTokenTTL is how long a password reset token stays usable.
	DefaultResetTokenTTL = time.Hour

	// ResetRequestedMessage is returned for every forgot-password request,
	// whether or not the account exists.
	ResetRequestedMessage = "If an account with that username exists, a password reset token has been generated " +
		"and would be delivered out of band."
	// PasswordResetMessage confirms a successful reset.
	PasswordResetMessage = "Password has been reset successfully."
)

// PasswordResetTicket is the outcome of a forgot-password request. Token is empty
// when the username is unknown; callers decide whether it is ever exposed.
type PasswordResetTicket struct {
	Message string
	Token   string
}

// AuthService handles user auth logic.
type AuthService struct {
	users    repository.UserRepo
	hasher   *auth.PasswordHasher
	tokens   *auth.TokenService
	validate *validation.Validator
	resetTTL time.Duration
	now      func() time.Time

	decoyOnce sync.Once
	decoyHash string
}

func NewAuthService(
	users repository.UserRepo,
	hasher *auth.PasswordHasher,
	tokens *auth.TokenService,
	val *validation.Validator,
	resetTTL time.Duration,
	now func() time.Time,
) *AuthService {
	if resetTTL <= 0 {
		resetTTL = DefaultResetTokenTTL
	}
	if now == nil {
		now = time.Now
	}
	if val == nil {
		val = validation.New()
	}
	return &AuthService{
		users:    users,
		hasher:   hasher,
		tokens:   tokens,
		validate: val,
		resetTTL: resetTTL,
		now:      now,
	}
}

// decoy returns a hash used to burn a bcrypt comparison for unknown usernames.
func (s *AuthService) decoy() string {
	s.decoyOnce.Do(func() {
		h, err := s.hasher.Hash("catframe-decoy-password")
		if err == nil {
			s.decoyHash = h
		}
	})
	return s.decoyHash
}

// Login verifies credentials and issues an access token. Unknown users and wrong
// passwords yield the same ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, username, password string) (string, error) {
	u, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		return "", fmt.Errorf("login: %w", err)
	}
	if u == nil {
		s.hasher.Verify(password, s.decoy())
		return "", ErrInvalidCredentials
	}
	if !s.hasher.Verify(password, u.PasswordHash) {
		return "", ErrInvalidCredentials
	}

	token, err := s.tokens.IssueAccessToken(u.Username)
	if err != nil {
		return "", fmt.Errorf("issue access token: %w", err)
	}
	return token, nil
}

// Register creates a regular user.
func (s *AuthService) Register(ctx context.Context, username, password string) (*models.User, error) {
	return s.createUser(ctx, username, password, false)
}

// CreateAdmin bootstraps an administrator account.
func (s *AuthService) CreateAdmin(ctx context.Context, username, password string) (*models.User, error) {
	return s.createUser(ctx, username, password, true)
}

func (s *AuthService) createUser(ctx context.Context, username, password string, admin bool) (*models.User, error) {
	if err := s.validate.Credentials(username, password); err != nil {
		return nil, err
	}

	existing, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("register: %w", err)
	}
	if existing != nil {
		return nil, ErrUsernameTaken
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	u := &models.User{Username: username, PasswordHash: hash, IsAdmin: admin}
	if err := s.users.Save(ctx, u); err != nil {
		// A concurrent registration won the unique constraint.
		if errors.Is(err, repository.ErrConflict) {
			return nil, ErrUsernameTaken
		}
		return nil, fmt.Errorf("register: %w", err)
	}
	return u, nil
}

// RequestPasswordReset stores a fresh reset token for username when the account
// exists. The returned message never reveals whether it does.
func (s *AuthService) RequestPasswordReset(ctx context.Context, username string) (PasswordResetTicket, error) {
	ticket := PasswordResetTicket{Message: ResetRequestedMessage}
	if err := s.validate.ForgotPassword(username); err != nil {
		return ticket, err
	}

	u, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		return ticket, fmt.Errorf("forgot password: %w", err)
	}
	if u == nil {
		return ticket, nil
	}

	token, err := s.tokens.IssueResetToken()
	if err != nil {
		return ticket, fmt.Errorf("issue reset token: %w", err)
	}
	expiresAt := s.now().Add(s.resetTTL).UTC()
	u.ResetToken = &token
	u.ResetTokenExpiresAt = &expiresAt

	if err := s.users.Save(ctx, u); err != nil {
		return ticket, fmt.Errorf("store reset token: %w", err)
	}
	ticket.Token = token
	return ticket, nil
}

// ResetPassword consumes a reset token and sets a new password. The token is
// single use: both reset fields are cleared on success.
func (s *AuthService) ResetPassword(ctx context.Context, token, newPassword string) error {
	if err := s.validate.ResetPassword(token, newPassword); err != nil {
		return err
	}

	u, err := s.users.FindByResetToken(ctx, token)
	if err != nil {
		return fmt.Errorf("reset password: %w", err)
	}
	if u == nil || !u.HasLiveResetToken(s.now()) {
		return ErrInvalidOrExpiredToken
	}

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	u.PasswordHash = hash
	u.ResetToken = nil
	u.ResetTokenExpiresAt = nil

	if err := s.users.Save(ctx, u); err != nil {
		return fmt.Errorf("reset password: %w", err)
	}
	return nil
}
