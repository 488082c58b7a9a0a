package httpapi

import (
	"crypto/rand"
	"errors"
	"fmt"
	"time"

	"github.com/o1egl/paseto"
)

const tokenFooter = "vending-admin"

var errInvalidToken = errors.New("invalid admin token")

// TokenIssuer signs admin session ids into PASETO v2 local tokens.
type TokenIssuer struct {
	key []byte
	ttl time.Duration
	v2  *paseto.V2
}

// NewTokenIssuer uses secret as the symmetric key. An empty secret selects a
// random key, which invalidates tokens across restarts.
func NewTokenIssuer(secret string, ttl time.Duration) (*TokenIssuer, error) {
	key := []byte(secret)
	if secret == "" {
		key = make([]byte, 32)
		if _, err := rand.Read(key); err != nil {
			return nil, fmt.Errorf("generate token key: %w", err)
		}
	}
	if len(key) != 32 {
		return nil, errors.New("token secret must be 32 bytes long")
	}
	return &TokenIssuer{key: key, ttl: ttl, v2: paseto.NewV2()}, nil
}

// Issue returns a token naming sessionID.
func (t *TokenIssuer) Issue(sessionID string) (string, error) {
	now := time.Now()
	jt := paseto.JSONToken{
		Subject:    sessionID,
		IssuedAt:   now,
		NotBefore:  now,
		Expiration: now.Add(t.ttl),
	}
	return t.v2.Encrypt(t.key, jt, tokenFooter)
}

// Verify returns the session id carried by a valid, unexpired token.
func (t *TokenIssuer) Verify(token string) (string, error) {
	var jt paseto.JSONToken
	var footer string
	if err := t.v2.Decrypt(token, t.key, &jt, &footer); err != nil {
		return "", fmt.Errorf("%w: %v", errInvalidToken, err)
	}
	if footer != tokenFooter {
		return "", errInvalidToken
	}
	if err := jt.Validate(paseto.ValidAt(time.Now())); err != nil {
		return "", fmt.Errorf("%w: %v", errInvalidToken, err)
	}
	return jt.Subject, nil
}
