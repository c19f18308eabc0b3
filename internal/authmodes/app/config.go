package app

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/aussiebroadwan/authmodes/internal/authmodes/service"
	"github.com/aussiebroadwan/authmodes/pkg/jwtx"
)

// Supported AUTH_DATABASE_DRIVER and AUTH_SESSION_BACKEND values.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"

	SessionBackendSQL   = "sql"
	SessionBackendRedis = "redis"
)

type Config struct {
	StatelessSecret string // Signs stateless tokens; operations fail with 500 when empty
	AccessSecret    string // Signs hybrid access tokens
	RefreshSecret   string // Signs hybrid refresh tokens

	StatelessTTL time.Duration // Stateless token lifetime (default: 7d)
	AccessTTL    time.Duration // Hybrid access token lifetime (default: 15m)
	RefreshTTL   time.Duration // Hybrid refresh token lifetime (default: 14d)
	SessionTTL   time.Duration // Server-side session lifetime (default: 7d)

	DatabaseDriver string // sqlite or postgres (default: sqlite)
	DatabaseFile   string // SQLite database file (default: ./authmodes.db)
	DatabaseURL    string // Postgres DSN, required when the driver is postgres

	SessionBackend string // sql or redis (default: sql)
	RedisAddr      string // Redis address (default: localhost:6379)
	RedisPassword  string // Optional
	RedisDB        int    // Redis logical database (default: 0)

	PepperFile  string   // Path to file containing pepper for password hashing (default: ./pepper)
	CORSOrigins []string // Browser origins allowed to call the API with credentials

	Env                  string        // Environment (dev, staging, prod) (default: dev)
	LogLevel             string        // Log level (debug, info, warn, error) (default: info)
	LogFormat            string        // Log format (json, text) (default: json)
	Port                 int           // HTTP server port (default: 8080)
	ShutdownGracePeriod  time.Duration // Graceful shutdown timeout (default: 10s)
	HousekeepingInterval time.Duration // Expired session purge interval (default: 1h)
}

func LoadConfig() Config {
	return Config{
		StatelessSecret: getEnvFirst("AUTH_STATELESS_SECRET", "JWT_SECRET"),
		AccessSecret:    getEnvFirst("AUTH_ACCESS_SECRET", "JWT_ACCESS_SECRET"),
		RefreshSecret:   getEnvFirst("AUTH_REFRESH_SECRET", "JWT_REFRESH_SECRET"),

		StatelessTTL: getEnvDurationOrDefault("AUTH_STATELESS_TTL", jwtx.DefaultStatelessTokenTTL),
		AccessTTL:    getEnvDurationOrDefault("AUTH_ACCESS_TTL", jwtx.DefaultAccessTokenTTL),
		RefreshTTL:   getEnvDurationOrDefault("AUTH_REFRESH_TTL", jwtx.DefaultRefreshTokenTTL),
		SessionTTL:   getEnvDurationOrDefault("AUTH_SESSION_TTL", service.DefaultSessionTTL),

		DatabaseDriver: getEnvOrDefault("AUTH_DATABASE_DRIVER", DriverSQLite),
		DatabaseFile:   getEnvOrDefault("AUTH_DATABASE_FILE", "authmodes.db"),
		DatabaseURL:    os.Getenv("AUTH_DATABASE_URL"),

		SessionBackend: getEnvOrDefault("AUTH_SESSION_BACKEND", SessionBackendSQL),
		RedisAddr:      getEnvOrDefault("AUTH_REDIS_ADDR", "localhost:6379"),
		RedisPassword:  os.Getenv("AUTH_REDIS_PASSWORD"),
		RedisDB:        getEnvIntOrDefault("AUTH_REDIS_DB", 0),

		PepperFile:  getEnvOrDefault("AUTH_PEPPER_FILE", "pepper"),
		CORSOrigins: splitList(getEnvOrDefault("AUTH_CORS_ORIGINS", "http://localhost:3000")),

		Env:                  getEnvOrDefault("ENV", "dev"),
		LogLevel:             getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:            getEnvOrDefault("LOG_FORMAT", "json"),
		Port:                 getEnvIntOrDefault("PORT", 8080),
		ShutdownGracePeriod:  getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
		HousekeepingInterval: getEnvDurationOrDefault("AUTH_HOUSEKEEPING_INTERVAL", 1*time.Hour),
	}
}

// Validate rejects configurations the application cannot start with.
// Missing signing secrets are allowed: the affected operations fail at
// request time instead.
func (c Config) Validate() error {
	switch c.DatabaseDriver {
	case DriverSQLite:
	case DriverPostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("AUTH_DATABASE_URL is required for the %s driver", DriverPostgres)
		}
	default:
		return fmt.Errorf("unknown database driver %q", c.DatabaseDriver)
	}

	switch c.SessionBackend {
	case SessionBackendSQL, SessionBackendRedis:
	default:
		return fmt.Errorf("unknown session backend %q", c.SessionBackend)
	}

	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Port)
	}
	return nil
}

// SecureCookies reports whether credential cookies carry the Secure flag.
func (c Config) SecureCookies() bool { return c.Env == "prod" }

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvFirst returns the first non-empty variable among keys.
func getEnvFirst(keys ...string) string {
	for _, key := range keys {
		if value := os.Getenv(key); value != "" {
			return value
		}
	}
	return ""
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

	if duration, err := parseDuration(value); err == nil {
		return duration
	}

	// Try parsing as integer minutes (for backwards compatibility)
	if minutes, err := strconv.Atoi(value); err == nil {
		return time.Duration(minutes) * time.Minute
	}

	return defaultValue
}

// parseDuration extends time.ParseDuration with a whole-day suffix ("7d").
func parseDuration(value string) (time.Duration, error) {
	if days, ok := strings.CutSuffix(value, "d"); ok {
		n, err := strconv.Atoi(days)
		if err != nil || n < 0 {
			return 0, fmt.Errorf("invalid duration %q", value)
		}
		return time.Duration(n) * 24 * time.Hour, nil
	}
	return time.ParseDuration(value)
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
