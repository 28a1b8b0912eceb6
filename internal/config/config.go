package config

import (
	"net/url"
	"os"
	"strconv"
	"time"
)

type Config struct {
	Port                string
	Environment         string
	DatabaseURL         string
	JWTSecret           string
	JWTExpiresInSeconds int

	// Player settings, shared between the API (playlist resolution) and
	// the device runtime (timers).
	ImageDuration     time.Duration
	RefreshInterval   time.Duration
	HeartbeatInterval time.Duration
	WatchdogCeiling   time.Duration
}

func Load() *Config {
	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		host := getEnv("PSQL_HOST", "localhost")
		port := getEnv("PSQL_PORT", "5432")
		user := getEnv("PSQL_USER", "postgres")
		password := getEnv("PSQL_PASSWORD", "postgres")
		dbName := getEnv("PSQL_DB_NAME", "signage")

		u := &url.URL{
			Scheme: "postgres",
			User:   url.UserPassword(user, password),
			Host:   host + ":" + port,
			Path:   dbName,
		}
		q := u.Query()
		q.Set("sslmode", "disable")
		u.RawQuery = q.Encode()
		databaseURL = u.String()
	}

	return &Config{
		Port:                getEnv("PORT", "8080"),
		Environment:         getEnv("ENVIRONMENT", "development"),
		DatabaseURL:         databaseURL,
		JWTSecret:           getEnv("JWT_SECRET", "dev-secret-change-me"),
		JWTExpiresInSeconds: getEnvInt("JWT_EXPIRES_IN_SECONDS", 86400),
		ImageDuration:       getEnvDuration("SIGNAGE_IMAGE_DURATION", 10*time.Second),
		RefreshInterval:     getEnvDuration("SIGNAGE_REFRESH_INTERVAL", 5*time.Minute),
		HeartbeatInterval:   getEnvDuration("SIGNAGE_HEARTBEAT_INTERVAL", 60*time.Second),
		WatchdogCeiling:     getEnvDuration("SIGNAGE_WATCHDOG_CEILING", 60*time.Second),
	}
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if d, err := time.ParseDuration(value); err == nil && d > 0 {
			return d
		}
	}
	return defaultValue
}
