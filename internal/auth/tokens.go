package auth

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	// DefaultAccessTokenTTL applies when TokenConfig.AccessTTL is zero.
	DefaultAccessTokenTTL = 30 * time.Minute

	resetTokenBytes = 32 // 256 bits
)

// Token failure kinds. Callers that must not reveal the cause collapse them.
var (
	ErrInvalidToken   = errors.New("invalid token")
	ErrExpiredToken   = errors.New("token expired")
	ErrMissingSubject = errors.New("token subject missing")
)

// TokenConfig is the signing configuration, loaded once at startup.
type TokenConfig struct {
	Secret    []byte
	Algorithm string // HS256 | HS384 | HS512
	AccessTTL time.Duration
}

// TokenService issues and decodes access tokens and issues reset tokens.
type TokenService struct {
	key    []byte
	method jwt.SigningMethod
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenService validates cfg and builds a TokenService.
func NewTokenService(cfg TokenConfig) (*TokenService, error) {
	if len(cfg.Secret) == 0 {
		return nil, errors.New("token secret is empty")
	}
	method, err := hmacMethod(cfg.Algorithm)
	if err != nil {
		return nil, err
	}
	ttl := cfg.AccessTTL
	if ttl <= 0 {
		ttl = DefaultAccessTokenTTL
	}
	return &TokenService{key: cfg.Secret, method: method, ttl: ttl, now: time.Now}, nil
}

// hmacMethod resolves an HMAC signing method by name.
func hmacMethod(alg string) (jwt.SigningMethod, error) {
	if alg == "" {
		return jwt.SigningMethodHS256, nil
	}
	m, ok := jwt.GetSigningMethod(alg).(*jwt.SigningMethodHMAC)
	if !ok {
		return nil, fmt.Errorf("unsupported signing algorithm %q", alg)
	}
	return m, nil
}

// WithClock replaces the time source. Intended for tests.
func (s *TokenService) WithClock(now func() time.Time) *TokenService {
	cp := *s
	cp.now = now
	return &cp
}

// AccessTTL returns the default access-token lifetime.
func (s *TokenService) AccessTTL() time.Duration { return s.ttl }

// IssueAccessToken signs a token for username with the default TTL.
func (s *TokenService) IssueAccessToken(username string) (string, error) {
	return s.IssueAccessTokenTTL(username, s.ttl)
}

// IssueAccessTokenTTL signs a token for username that expires after ttl.
func (s *TokenService) IssueAccessTokenTTL(username string, ttl time.Duration) (string, error) {
	now := s.now()
	token := jwt.NewWithClaims(s.method, jwt.RegisteredClaims{
		Subject:   username,
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		IssuedAt:  jwt.NewNumericDate(now),
	})
	signed, err := token.SignedString(s.key)
	if err != nil {
		return "", fmt.Errorf("sign access token: %w", err)
	}
	return signed, nil
}

// DecodeAccessToken verifies token and returns its subject.
func (s *TokenService) DecodeAccessToken(token string) (string, error) {
	var claims jwt.RegisteredClaims
	_, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (interface{}, error) {
		return s.key, nil
	},
		jwt.WithValidMethods([]string{s.method.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	switch {
	case err == nil:
	case errors.Is(err, jwt.ErrTokenExpired):
		return "", ErrExpiredToken
	default:
		return "", fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims.Subject == "" {
		return "", ErrMissingSubject
	}
	return claims.Subject, nil
}

// IssueResetToken returns a random URL-safe token with 256 bits of entropy.
// It carries no claims and is unrelated to the signing key.
func (s *TokenService) IssueResetToken() (string, error) {
	b := make([]byte, resetTokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate reset token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
