package config

type Config interface {
	EnvConfig
	CorsConfig
	OAuthConfig
	SessionConfig
	ProxyConfig
	ShareConfig
}

type EnvConfig interface {
	GetPort() string
	GetAppName() string
	GetEnv() string
	IsDevelopment() bool
	GetOrigin() string
	GetLogLevel() string
}

type CorsConfig interface {
	GetAllowedOrigins() AllowedOrigins
	GetAllowedMethods() string
	GetAllowedHeaders() string
}

type mainConfig struct {
	EnvVars
	Cors
	OAuth
	Session
	Proxy
	Share
}

func New() Config {
	return mainConfig{}
}
