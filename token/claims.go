// Package token inspects the backend's auth token without verifying it.
//
// The client never trusts these claims for authorization; the backend verifies the
// token on every request. They are only read to pick a local session expiry.
package token

import (
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/pkg/errors"
)

// Claims is the subset of registered claims the client cares about
type Claims struct {
	Subject   string
	ExpiresAt time.Time
	IssuedAt  time.Time
}

// IsJWT reports whether raw has the three-segment JWT shape
func IsJWT(raw string) bool {
	return strings.Count(raw, ".") == 2
}

// Inspect decodes the registered claims of a JWT without checking its signature
func Inspect(raw string) (*Claims, error) {
	if !IsJWT(raw) {
		return nil, errors.New("[token.Inspect] not a JWT")
	}

	parsed, _, err := jwt.NewParser().ParseUnverified(raw, jwt.MapClaims{})
	if err != nil {
		return nil, errors.Wrap(err, "[token.Inspect] ParseUnverified")
	}

	claims := &Claims{}
	if sub, err := parsed.Claims.GetSubject(); err == nil {
		claims.Subject = sub
	}
	if exp, err := parsed.Claims.GetExpirationTime(); err == nil && exp != nil {
		claims.ExpiresAt = exp.Time
	}
	if iat, err := parsed.Claims.GetIssuedAt(); err == nil && iat != nil {
		claims.IssuedAt = iat.Time
	}
	return claims, nil
}

// Expiry picks the session expiry for a freshly issued token: the JWT exp claim when
// present, otherwise now + fallback. Opaque tokens always use the fallback.
func Expiry(raw string, now time.Time, fallback time.Duration) time.Time {
	claims, err := Inspect(raw)
	if err == nil && !claims.ExpiresAt.IsZero() {
		return claims.ExpiresAt
	}
	return now.Add(fallback)
}
