package sessions

import (
	"net/http"
	"strconv"
	"strings"
)

// Kind names one of the two session cookies.
type Kind string

const (
	// AccessToken carries authorization claims and is never readable by page scripts.
	AccessToken Kind = "access_token"
	// IDToken carries display identity claims for the SPA.
	IDToken Kind = "id_token"
)

// DefaultMaxAge is 30 days in seconds.
const DefaultMaxAge = 60 * 60 * 24 * 30

const hostPrefix = "__Host-"

// CookieConfig holds the environment dependent cookie attributes. Resolve it
// once at startup with NewCookieConfig.
type CookieConfig struct {
	Prefix string
	Secure bool
}

// NewCookieConfig returns the production config (__Host- prefix, Secure)
// unless development is true.
func NewCookieConfig(development bool) CookieConfig {
	if development {
		return CookieConfig{}
	}
	return CookieConfig{Prefix: hostPrefix, Secure: true}
}

// Name returns the cookie name used for kind.
func (c CookieConfig) Name(kind Kind) string {
	return c.Prefix + string(kind)
}

// Serialize builds the Set-Cookie value for kind:
//
//	<name>=<jwt>; Max-Age=<n>; Path=/; [HttpOnly; ][Secure; ]SameSite=Strict
//
// net/http's Cookie.String orders attributes differently and drops Max-Age=0,
// so the value is assembled by hand.
func (c CookieConfig) Serialize(kind Kind, token string, maxAge int) string {
	var b strings.Builder
	b.WriteString(c.Name(kind))
	b.WriteByte('=')
	b.WriteString(token)
	b.WriteString("; Max-Age=")
	b.WriteString(strconv.Itoa(maxAge))
	b.WriteString("; Path=/; ")
	if kind == AccessToken {
		b.WriteString("HttpOnly; ")
	}
	if c.Secure {
		b.WriteString("Secure; ")
	}
	b.WriteString("SameSite=Strict")
	return b.String()
}

// SetPair writes both session cookies. The pair is always written together.
func (c CookieConfig) SetPair(w http.ResponseWriter, accessToken, idToken string, maxAge int) {
	w.Header().Add("Set-Cookie", c.Serialize(AccessToken, accessToken, maxAge))
	w.Header().Add("Set-Cookie", c.Serialize(IDToken, idToken, maxAge))
}

// ClearPair expires both session cookies.
func (c CookieConfig) ClearPair(w http.ResponseWriter) {
	c.SetPair(w, "", "", 0)
}

// Tokens are the raw cookie values found on a request. Empty means absent.
type Tokens struct {
	AccessToken string
	IDToken     string
}

// GetTokens reads both session cookies from r. It never fails: a missing
// Cookie header or a missing cookie just yields an empty value.
func (c CookieConfig) GetTokens(r *http.Request) Tokens {
	return Tokens{
		AccessToken: cookieValue(r, c.Name(AccessToken)),
		IDToken:     cookieValue(r, c.Name(IDToken)),
	}
}

func cookieValue(r *http.Request, name string) string {
	cookie, err := r.Cookie(name)
	if err != nil {
		return ""
	}
	return cookie.Value
}
