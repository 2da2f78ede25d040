package auth

import (
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// AccessTokenClaims is the subset of the storefront API's access token the client reads.
// The API has used both "id" and "_id" for the subject.
type AccessTokenClaims struct {
	ID      string `json:"id,omitempty"`
	AltID   string `json:"_id,omitempty"`
	IsAdmin bool   `json:"isAdmin,omitempty"`
	jwt.RegisteredClaims
}

// UserID returns the first non-empty of id, _id and sub.
func (c *AccessTokenClaims) UserID() string {
	for _, v := range []string{c.ID, c.AltID, c.Subject} {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
