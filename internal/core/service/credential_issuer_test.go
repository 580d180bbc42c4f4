package service

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestNewCredentialIssuer_EmptySecret(t *testing.T) {
	if _, err := NewCredentialIssuer("", time.Hour); err != ErrEmptySigningSecret {
		t.Fatalf("expected ErrEmptySigningSecret, got %v", err)
	}
}

func TestCredentialIssuer_Issue(t *testing.T) {
	issuer, err := NewCredentialIssuer("secret", time.Hour)
	if err != nil {
		t.Fatalf("NewCredentialIssuer: %v", err)
	}

	token, expiresIn, err := issuer.Issue("conv123")
	if err != nil {
		t.Fatalf("Issue returned error: %v", err)
	}
	if token == "" {
		t.Fatalf("expected token, got empty")
	}
	if expiresIn != 3600 {
		t.Fatalf("expected 3600 seconds, got %d", expiresIn)
	}

	claims := jwt.MapClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(token *jwt.Token) (interface{}, error) {
		return []byte("secret"), nil
	})
	if err != nil || !parsed.Valid {
		t.Fatalf("token invalid: %v", err)
	}
	if claims["conversation_id"] != "conv123" {
		t.Fatalf("expected conversation_id conv123, got %v", claims["conversation_id"])
	}

	exp, ok := claims["exp"].(float64)
	if !ok {
		t.Fatalf("expected numeric exp claim, got %v", claims["exp"])
	}
	delta := int64(exp) - time.Now().Add(time.Hour).Unix()
	if delta < -5 || delta > 5 {
		t.Fatalf("expiry not ~1h out, off by %d seconds", delta)
	}
}

func TestCredentialIssuer_DefaultTTL(t *testing.T) {
	issuer, err := NewCredentialIssuer("secret", 0)
	if err != nil {
		t.Fatalf("NewCredentialIssuer: %v", err)
	}
	_, expiresIn, err := issuer.Issue("conv123")
	if err != nil {
		t.Fatalf("Issue returned error: %v", err)
	}
	if expiresIn != 3600 {
		t.Fatalf("expected default TTL of 3600 seconds, got %d", expiresIn)
	}
}

func TestCredentialIssuer_RejectsForgedSignature(t *testing.T) {
	issuer, _ := NewCredentialIssuer("secret", time.Hour)
	token, _, err := issuer.Issue("conv123")
	if err != nil {
		t.Fatalf("Issue returned error: %v", err)
	}

	parsed, err := jwt.Parse(token, func(token *jwt.Token) (interface{}, error) {
		return []byte("other-secret"), nil
	})
	if err == nil && parsed.Valid {
		t.Fatalf("token verified with the wrong secret")
	}
}
