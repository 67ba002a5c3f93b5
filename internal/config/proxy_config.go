package config

import "time"

type ProxyConfig interface {
	GetProxyTimeout() time.Duration
	GetProxyRatePerMinute() int
	GetCaptionCacheTTL() time.Duration
}

type Proxy struct{}

var _ ProxyConfig = Proxy{}

func (Proxy) GetProxyTimeout() time.Duration {
	return GetEnvDuration("PROXY_TIMEOUT", 30*time.Second)
}

func (Proxy) GetProxyRatePerMinute() int {
	return GetEnvInt("PROXY_RATE_PER_MINUTE", 60)
}

func (Proxy) GetCaptionCacheTTL() time.Duration {
	return GetEnvDuration("CAPTION_CACHE_TTL", time.Hour)
}
