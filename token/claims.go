package token

import "github.com/golang-jwt/jwt/v5"

// Custom claim names carried by the session tokens.
const (
	ClaimRole      = "role"
	ClaimUsername  = "username"
	ClaimName      = "name"
	ClaimAvatarURL = "avatarUrl"
)

// RoleAPI is the access token role that unlocks the proxy.
const RoleAPI = "api"

// Claims is the decoded claim set of a token: the registered claims
// (sub, iss, aud, iat) plus whatever custom claims were issued.
//
// Verified claims hold JSON-decoded values: numbers come back as float64,
// objects as map[string]any and arrays as []any, whatever type was issued.
type Claims map[string]any

func (c Claims) Subject() string {
	return c.String("sub")
}

func (c Claims) Role() string {
	return c.String(ClaimRole)
}

// String returns the claim as a string, or "" when absent or not a string.
func (c Claims) String(key string) string {
	s, _ := c[key].(string)
	return s
}

func (c Claims) mapClaims() jwt.MapClaims {
	m := make(jwt.MapClaims, len(c))
	for k, v := range c {
		m[k] = v
	}
	return m
}
