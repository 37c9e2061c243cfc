package auth

import (
	"errors"
	"testing"
	"time"
)

func TestTokenIssuer_RoundTrip(t *testing.T) {
	issuer := NewTokenIssuer("test-secret", 7*24*time.Hour)

	tok, err := issuer.Issue("user-1", "a@b.co")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	claims, err := issuer.Verify(tok)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if claims.UserID != "user-1" || claims.Email != "a@b.co" {
		t.Fatalf("unexpected claims: %+v", claims)
	}
	if got := claims.ExpiresAt.Sub(claims.IssuedAt.Time); got != 7*24*time.Hour {
		t.Fatalf("exp - iat = %v, want 7 days", got)
	}
}

func TestTokenIssuer_Expired(t *testing.T) {
	issuer := NewTokenIssuer("test-secret", time.Hour)
	issuer.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	tok, err := issuer.Issue("user-1", "a@b.co")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	issuer.now = time.Now
	if _, err := issuer.Verify(tok); !errors.Is(err, ErrExpiredToken) {
		t.Fatalf("expected ErrExpiredToken, got %v", err)
	}
}

func TestTokenIssuer_Invalid(t *testing.T) {
	issuer := NewTokenIssuer("test-secret", time.Hour)
	other := NewTokenIssuer("other-secret", time.Hour)
	foreign, _ := other.Issue("user-1", "a@b.co")

	for name, tok := range map[string]string{
		"garbage":      "not-a-jwt",
		"empty":        "",
		"wrong secret": foreign,
	} {
		if _, err := issuer.Verify(tok); !errors.Is(err, ErrInvalidToken) {
			t.Errorf("%s: expected ErrInvalidToken, got %v", name, err)
		}
	}
}

func TestPassword(t *testing.T) {
	hash, err := HashPassword("correct horse")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if !CheckPassword("correct horse", hash) {
		t.Fatal("expected match")
	}
	if CheckPassword("wrong", hash) {
		t.Fatal("expected mismatch")
	}
	if CheckPassword("x", "not-a-hash") {
		t.Fatal("malformed hash must not match")
	}
}
