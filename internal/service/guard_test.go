package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"catframe/internal/auth"
	"catframe/internal/models"
)

func TestGuardService_Authenticate(t *testing.T) {
	users := newFakeUserRepo()
	alice := newUser(t, users, "alice", "correct-horse", false)

	now := testNow
	tokens := testTokens(t, func() time.Time { return now })
	guard := NewGuardService(tokens, users)

	valid, err := tokens.IssueAccessToken("alice")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	ghost, err := tokens.IssueAccessToken("ghost")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	other, err := auth.NewTokenService(auth.TokenConfig{Secret: []byte("another-secret-another-secret-xx")})
	if err != nil {
		t.Fatalf("other service: %v", err)
	}
	forged, err := other.WithClock(func() time.Time { return testNow }).IssueAccessToken("alice")
	if err != nil {
		t.Fatalf("issue forged: %v", err)
	}

	tests := []struct {
		name      string
		token     string
		advance   time.Duration
		wantUser  int64
		wantCause error
	}{
		{name: "valid", token: valid, wantUser: alice.ID},
		{name: "garbage", token: "not-a-jwt", wantCause: auth.ErrInvalidToken},
		{name: "wrong key", token: forged, wantCause: auth.ErrInvalidToken},
		{name: "expired", token: valid, advance: 31 * time.Minute, wantCause: auth.ErrExpiredToken},
		{name: "unknown subject", token: ghost},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			now = testNow.Add(tt.advance)
			defer func() { now = testNow }()

			u, err := guard.Authenticate(context.Background(), tt.token)
			if tt.wantUser != 0 {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if u.ID != tt.wantUser {
					t.Fatalf("expected user %d, got %d", tt.wantUser, u.ID)
				}
				return
			}
			if !errors.Is(err, ErrUnauthorized) {
				t.Fatalf("expected ErrUnauthorized, got %v", err)
			}
			if tt.wantCause != nil && !errors.Is(err, tt.wantCause) {
				t.Fatalf("expected cause %v to be kept, got %v", tt.wantCause, err)
			}
			if u != nil {
				t.Fatalf("expected nil user on failure")
			}
		})
	}
}

func TestGuardService_Authenticate_StoreFailure(t *testing.T) {
	users := newFakeUserRepo()
	tokens := testTokens(t, func() time.Time { return testNow })
	guard := NewGuardService(tokens, users)

	token, _ := tokens.IssueAccessToken("alice")
	users.findErr = errors.New("db down")

	_, err := guard.Authenticate(context.Background(), token)
	if err == nil || errors.Is(err, ErrUnauthorized) {
		t.Fatalf("store failure should not look like a credential problem, got %v", err)
	}
}

func TestGuardService_RequireAdmin(t *testing.T) {
	guard := NewGuardService(nil, nil)

	admin := &models.User{ID: 1, Username: "root", IsAdmin: true}
	got, err := guard.RequireAdmin(admin)
	if err != nil || got != admin {
		t.Fatalf("admin should pass unchanged, got %+v, %v", got, err)
	}

	if _, err := guard.RequireAdmin(&models.User{ID: 2, Username: "bob"}); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	if _, err := guard.RequireAdmin(nil); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden for nil user, got %v", err)
	}
}
