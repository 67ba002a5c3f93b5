package config

type SessionConfig interface {
	GetJWTSecret() string
	GetCookieMaxAge() int
}

type Session struct{}

var _ SessionConfig = Session{}

// GetJWTSecret is read on every call; the secret is never cached.
func (Session) GetJWTSecret() string {
	return GetEnv("JWT_SECRET", "")
}

func (Session) GetCookieMaxAge() int {
	return GetEnvInt("COOKIE_MAX_AGE", 60*60*24*30) // 30 days
}
