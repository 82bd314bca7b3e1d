package auth

import (
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenInfo describes the credential held by the console. The API issues
// either opaque personal-access tokens or JWTs; claims are only known for
// the latter.
type TokenInfo struct {
	Present   bool       `json:"present"`
	Opaque    bool       `json:"opaque"`
	Subject   string     `json:"subject,omitempty"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
	Expired   bool       `json:"expired"`
}

// Inspect reads the claims of token without verifying its signature.
// Only the API can reject a token.
func Inspect(token string, now time.Time) TokenInfo {
	token = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(token), "Bearer"))
	if token == "" {
		return TokenInfo{}
	}
	info := TokenInfo{Present: true}

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		info.Opaque = true
		return info
	}
	if sub, err := claims.GetSubject(); err == nil {
		info.Subject = sub
	}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		t := exp.Time.UTC()
		info.ExpiresAt = &t
		info.Expired = !now.Before(t)
	}
	return info
}
