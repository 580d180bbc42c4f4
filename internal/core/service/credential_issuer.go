package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const defaultCredentialTTL = time.Hour

var ErrEmptySigningSecret = errors.New("signing secret must not be empty")

// CredentialIssuer signs short-lived conversation credentials. The secret is
// injected at construction; cmd/api refuses to start when it is absent, so
// the issuer never has to decide what an unsigned token would mean.
//
// Credentials are stateless — there is no revocation list. A token stays
// valid until its expiry, so protected endpoints must re-check conversation
// existence on every call.
type CredentialIssuer struct {
	secret []byte
	ttl    time.Duration
}

// NewCredentialIssuer creates an issuer with the given secret and TTL.
// A non-positive ttl falls back to one hour.
func NewCredentialIssuer(secret string, ttl time.Duration) (*CredentialIssuer, error) {
	if secret == "" {
		return nil, ErrEmptySigningSecret
	}
	if ttl <= 0 {
		ttl = defaultCredentialTTL
	}
	return &CredentialIssuer{secret: []byte(secret), ttl: ttl}, nil
}

// Issue signs a credential binding conversationID, expiring ttl from now.
// Returns the compact token and its lifetime in seconds.
func (i *CredentialIssuer) Issue(conversationID string) (string, int64, error) {
	claims := jwt.MapClaims{
		"conversation_id": conversationID,
		"exp":             time.Now().Add(i.ttl).Unix(),
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString(i.secret)
	if err != nil {
		return "", 0, fmt.Errorf("sign credential: %w", err)
	}
	return signed, int64(i.ttl.Seconds()), nil
}
