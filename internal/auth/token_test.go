package auth

import (
	"errors"
	"strings"
	"testing"
	"time"
)

const testSecret = "test-secret"

func TestVerifyToken_RoundTrip(t *testing.T) {
	token := IssueToken(testSecret, 42, time.Hour)

	userID, err := VerifyToken(testSecret, token)
	if err != nil {
		t.Fatalf("verify failed: %v", err)
	}
	if userID != 42 {
		t.Errorf("user id = %d, want 42", userID)
	}
}

func TestVerifyToken_Expired(t *testing.T) {
	token := IssueToken(testSecret, 42, -time.Minute)

	_, err := VerifyToken(testSecret, token)
	if !errors.Is(err, ErrExpiredToken) {
		t.Errorf("expected ErrExpiredToken, got %v", err)
	}
}

func TestVerifyToken_WrongSecret(t *testing.T) {
	token := IssueToken(testSecret, 42, time.Hour)

	_, err := VerifyToken("other-secret", token)
	if !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expected ErrInvalidToken, got %v", err)
	}
}

func TestVerifyToken_Tampered(t *testing.T) {
	token := IssueToken(testSecret, 42, time.Hour)

	// Re-sign a forged payload claiming another user with the wrong secret.
	forged := IssueToken("attacker-secret", 99, time.Hour)
	parts := strings.Split(token, ".")
	forgedParts := strings.Split(forged, ".")
	tampered := forgedParts[0] + "." + parts[1]

	_, err := VerifyToken(testSecret, tampered)
	if !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expected ErrInvalidToken, got %v", err)
	}
}

func TestVerifyToken_Garbage(t *testing.T) {
	tests := []struct {
		name  string
		token string
	}{
		{"empty", ""},
		{"no separator", "abcdef"},
		{"too many parts", "a.b.c"},
		{"not base64", "ü.ü"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := VerifyToken(testSecret, tt.token); !errors.Is(err, ErrInvalidToken) {
				t.Errorf("expected ErrInvalidToken, got %v", err)
			}
		})
	}
}
