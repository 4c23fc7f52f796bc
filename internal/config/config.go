package config

import (
	"fmt"
	"os"
	"strings"
	"time"
)

// DefaultSessionTTL is how long an unrenewed session lives before the
// store reclaims its connection code.
const DefaultSessionTTL = 4 * time.Hour

type Config struct {
	AppPort string

	RedisAddr     string
	RedisPassword string

	S3Region          string
	S3Endpoint        string // optional, for S3-compatible stores
	S3Bucket          string
	S3AccessKeyID     string
	S3SecretAccessKey string

	SessionTTL time.Duration

	LogLevel  string
	LogFormat string
}

// Load reads configuration from environment variables. S3 settings are
// required (the service cannot broker slide URLs without them); the rest
// default to sane development values.
func Load() (Config, error) {
	sessionTTL, err := parseDurationEnv("SESSION_TTL", DefaultSessionTTL)
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		AppPort: getEnvOrDefault("APP_PORT", "8080"),

		RedisAddr:     getEnvOrDefault("REDIS_ADDR", "localhost:6379"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),

		S3Region:          strings.TrimSpace(os.Getenv("S3_REGION")),
		S3Endpoint:        strings.TrimSpace(os.Getenv("S3_ENDPOINT")),
		S3Bucket:          strings.TrimSpace(os.Getenv("S3_BUCKET")),
		S3AccessKeyID:     strings.TrimSpace(os.Getenv("S3_ACCESS_KEY_ID")),
		S3SecretAccessKey: strings.TrimSpace(os.Getenv("S3_SECRET_ACCESS_KEY")),

		SessionTTL: sessionTTL,

		LogLevel:  getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat: getEnvOrDefault("LOG_FORMAT", "console"),
	}

	for key, val := range map[string]string{
		"S3_REGION":            cfg.S3Region,
		"S3_BUCKET":            cfg.S3Bucket,
		"S3_ACCESS_KEY_ID":     cfg.S3AccessKeyID,
		"S3_SECRET_ACCESS_KEY": cfg.S3SecretAccessKey,
	} {
		if val == "" {
			return Config{}, fmt.Errorf("config: missing required environment variable %s", key)
		}
	}

	return cfg, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func parseDurationEnv(key string, defaultValue time.Duration) (time.Duration, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return defaultValue, nil
	}

	val, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("config: invalid %s value %q: %w", key, raw, err)
	}
	if val <= 0 {
		return 0, fmt.Errorf("config: %s must be positive, got %q", key, raw)
	}
	return val, nil
}
