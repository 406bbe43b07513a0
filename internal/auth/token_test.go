package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/business-nexus/backend/internal/domain"
)

func testUser() domain.User {
	return domain.User{
		ID:    7,
		Email: "maya@example.com",
		Role:  domain.RoleInvestor,
	}
}

func TestTokenRoundTrip(t *testing.T) {
	a := NewAuthenticator("secret", time.Hour)

	token, err := a.IssueToken(testUser())
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	claims, err := a.VerifyToken(token)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if claims.UserID != 7 || claims.Email != "maya@example.com" || claims.Role != domain.RoleInvestor {
		t.Fatalf("unexpected claims: %+v", claims)
	}
}

func TestVerifyRejectsBadInput(t *testing.T) {
	a := NewAuthenticator("secret", time.Hour)
	token, err := a.IssueToken(testUser())
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	cases := []struct {
		name  string
		token string
	}{
		{"malformed", "not-a-jwt"},
		{"empty", ""},
		{"tampered", token + "x"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := a.VerifyToken(tc.token); !errors.Is(err, ErrInvalidToken) {
				t.Fatalf("expected ErrInvalidToken, got %v", err)
			}
		})
	}
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	issuer := NewAuthenticator("secret-one", time.Hour)
	verifier := NewAuthenticator("secret-two", time.Hour)

	token, err := issuer.IssueToken(testUser())
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := verifier.VerifyToken(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken across secrets, got %v", err)
	}
}

func TestVerifyRejectsExpiredToken(t *testing.T) {
	a := NewAuthenticator("secret", -time.Minute)

	token, err := a.IssueToken(testUser())
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := a.VerifyToken(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for an expired token, got %v", err)
	}
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("hunter22")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if hash == "hunter22" {
		t.Fatal("hash must not equal the plaintext")
	}
	if !CheckPassword(hash, "hunter22") {
		t.Fatal("expected the correct password to verify")
	}
	if CheckPassword(hash, "wrong") {
		t.Fatal("expected a wrong password to fail")
	}
}
