package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	portEnvVar        = "PORT"
	appNameVar        = "APP_NAME"
	environmentEnvVar = "ENVIRONMENT"
	originEnvVar      = "APP_ORIGIN"
	logLevelEnvVar    = "LOG_LEVEL"
)

const (
	EnvProduction  = "production"
	EnvDevelopment = "development"
)

type EnvVars struct{}

var _ EnvConfig = EnvVars{}

func (EnvVars) GetPort() string {
	port := GetEnv(portEnvVar, "8788")
	if !strings.HasPrefix(port, ":") {
		port = ":" + port
	}
	return port
}

func (EnvVars) GetAppName() string {
	return GetEnv(appNameVar, "ChatCraft")
}

// GetEnv returns the deployment environment. Anything other than
// "development" is treated as production so cookies stay strict by default.
func (EnvVars) GetEnv() string {
	if strings.EqualFold(os.Getenv(environmentEnvVar), EnvDevelopment) {
		return EnvDevelopment
	}
	return EnvProduction
}

func (e EnvVars) IsDevelopment() bool {
	return e.GetEnv() == EnvDevelopment
}

// GetOrigin returns the fixed serving origin (e.g. "https://chatcraft.org").
// Empty means the origin is derived from each request.
func (EnvVars) GetOrigin() string {
	return strings.TrimRight(GetEnv(originEnvVar, ""), "/")
}

func (e EnvVars) GetLogLevel() string {
	if e.IsDevelopment() {
		return GetEnv(logLevelEnvVar, "debug")
	}
	return GetEnv(logLevelEnvVar, "info")
}

func GetEnv(envVar, defaultValue string) string {
	value := os.Getenv(envVar)
	if value == "" {
		return defaultValue
	}
	return value
}

func GetEnvInt(envVar string, defaultValue int) int {
	v, err := strconv.Atoi(os.Getenv(envVar))
	if err != nil {
		return defaultValue
	}
	return v
}

func GetEnvDuration(envVar string, defaultValue time.Duration) time.Duration {
	d, err := time.ParseDuration(os.Getenv(envVar))
	if err != nil {
		return defaultValue
	}
	return d
}
