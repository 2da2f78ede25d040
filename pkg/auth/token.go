package auth

import (
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ParseAccessTokenUnverified decodes the token without checking its signature. The client never
// holds the signing secret; the server remains the authority on validity.
func ParseAccessTokenUnverified(tokenString string) (*AccessTokenClaims, error) {
	tokenString = strings.TrimSpace(tokenString)
	if tokenString == "" {
		return nil, fmt.Errorf("access token is required")
	}
	claims := &AccessTokenClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(tokenString, claims); err != nil {
		return nil, fmt.Errorf("parsing access token: %w", err)
	}
	return claims, nil
}

// Expired reports whether the token's exp claim is at or before now.
// Tokens without exp never expire; unparsable tokens count as expired.
func Expired(tokenString string, now time.Time) bool {
	claims, err := ParseAccessTokenUnverified(tokenString)
	if err != nil {
		return true
	}
	if claims.ExpiresAt == nil {
		return false
	}
	return !now.Before(claims.ExpiresAt.Time)
}
