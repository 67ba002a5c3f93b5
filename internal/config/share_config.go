package config

const (
	ShareBackendMemory = "memory"
	ShareBackendRedis  = "redis"
)

type ShareConfig interface {
	GetShareBackend() string
	GetRedisURL() string
	GetShareMaxBytes() int64
}

type Share struct{}

var _ ShareConfig = Share{}

func (Share) GetShareBackend() string {
	return GetEnv("SHARE_BACKEND", ShareBackendMemory)
}

func (Share) GetRedisURL() string {
	return GetEnv("REDIS_URL", "redis://localhost:6379/0")
}

func (Share) GetShareMaxBytes() int64 {
	return int64(GetEnvInt("SHARE_MAX_BYTES", 5*1024*1024))
}
