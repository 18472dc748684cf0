package app

import (
	"errors"
	"os"
	"strconv"
	"time"
)

// Config is the immutable process configuration, loaded once from the
// environment at startup and injected into the components that need it.
type Config struct {
	SecretKey string // Required: HMAC secret for signing tokens
	Algorithm string // Optional: JWT signing algorithm (HS256, HS384, HS512) (default: HS256)

	AccessTTL  time.Duration // Optional: access token lifetime (default: 30m)
	RefreshTTL time.Duration // Optional: refresh token lifetime (default: 168h)

	DatabaseFile string // Optional: path to SQLite database file (default: ./sessiond.db)
	PepperFile   string // Optional: path to the password-hashing pepper file (default: ./pepper)

	AdminEmail    string // Optional: seed admin account email (created only if no users exist)
	AdminPassword string // Optional: seed admin account password
	AdminName     string // Optional: seed admin account display name

	Env                  string        // Environment (dev, staging, prod) (default: dev)
	LogLevel             string        // Log level (debug, info, warn, error) (default: info)
	LogFormat            string        // Log format (json, text) (default: json)
	Port                 int           // HTTP server port (default: 8080)
	ShutdownGracePeriod  time.Duration // Graceful shutdown timeout (default: 10s)
	HousekeepingInterval time.Duration // Expired-token sweep interval (default: 1h)
}

// ErrMissingSecretKey is returned when SECRET_KEY is unset. There is no
// default: a guessable signing key would make every token forgeable.
var ErrMissingSecretKey = errors.New("SECRET_KEY must be set")

func LoadConfig() (Config, error) {
	cfg := Config{
		SecretKey: os.Getenv("SECRET_KEY"),
		Algorithm: getEnvOrDefault("ALGORITHM", "HS256"),

		AccessTTL:  getEnvMinutesOrDefault("ACCESS_TOKEN_EXPIRE_MINUTES", 30*time.Minute),
		RefreshTTL: getEnvDaysOrDefault("REFRESH_TOKEN_EXPIRE_DAYS", 7*24*time.Hour),

		DatabaseFile: getEnvOrDefault("DATABASE_FILE", "sessiond.db"),
		PepperFile:   getEnvOrDefault("PEPPER_FILE", "pepper"),

		AdminEmail:    os.Getenv("ADMIN_EMAIL"),
		AdminPassword: os.Getenv("ADMIN_PASSWORD"),
		AdminName:     getEnvOrDefault("ADMIN_NAME", "Admin"),

		Env:                  getEnvOrDefault("ENV", "dev"),
		LogLevel:             getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:            getEnvOrDefault("LOG_FORMAT", "json"),
		Port:                 getEnvIntOrDefault("PORT", 8080),
		ShutdownGracePeriod:  getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
		HousekeepingInterval: getEnvDurationOrDefault("HOUSEKEEPING_INTERVAL", 1*time.Hour),
	}

	if cfg.SecretKey == "" {
		return Config{}, ErrMissingSecretKey
	}

	return cfg, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if intValue, err := strconv.Atoi(value); err == nil {
		return intValue
	}

	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}

	return defaultValue
}

func getEnvMinutesOrDefault(key string, defaultValue time.Duration) time.Duration {
	if minutes, err := strconv.Atoi(os.Getenv(key)); err == nil && minutes > 0 {
		return time.Duration(minutes) * time.Minute
	}
	return defaultValue
}

func getEnvDaysOrDefault(key string, defaultValue time.Duration) time.Duration {
	if days, err := strconv.Atoi(os.Getenv(key)); err == nil && days > 0 {
		return time.Duration(days) * 24 * time.Hour
	}
	return defaultValue
}
