package session

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// idClaims is the subset of ID-token claims the client cares about.
type idClaims struct {
	UID       string
	Email     string
	ExpiresAt time.Time
}

// claimsFromIDToken extracts uid, email, and expiry from a provider-issued
// ID token. The signature is not verified here: the token was just received
// from the provider over TLS and is used for display and expiry tracking
// only, never as an authorization decision.
func claimsFromIDToken(token string) (*idClaims, error) {
	if token == "" {
		return nil, errors.New("empty id token")
	}

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil, err
	}

	out := &idClaims{}

	if sub, err := claims.GetSubject(); err == nil {
		out.UID = sub
	}
	if uid, ok := claims["user_id"].(string); ok && out.UID == "" {
		out.UID = uid
	}
	if email, ok := claims["email"].(string); ok {
		out.Email = email
	}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		out.ExpiresAt = exp.Time
	}
	return out, nil
}
