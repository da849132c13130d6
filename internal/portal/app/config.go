package app

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/aussiebroadwan/fieldops/internal/portal/identity"
	"github.com/aussiebroadwan/fieldops/internal/portal/service"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

var ErrInvalidConfig = errors.New("invalid configuration")

type Config struct {
	BaseURL      string   // Required: externally reachable origin of the portal (e.g. https://portal.example.com)
	AllowedHosts []string // Optional: hosts accepted from X-Forwarded-Host (default: none)
	Secret       string   // Required: input for the login state signing key, at least 32 bytes

	DatabaseDriver string // Optional: sqlite or postgres (default: sqlite)
	DatabaseDSN    string // Optional: sqlite file or postgres URL (default: ./portal.db)

	OIDC identity.Config // Required: identity provider client settings

	SessionTTL          time.Duration // Optional: lifetime of a portal session (default: 12h)
	PermissionCacheTTL  time.Duration // Optional: how long a session's permission set is cached (default: 15m)
	PermissionCacheSize int           // Optional: number of sessions kept in the permission cache (default: 4096)
	RoleCatalog         string        // Optional: path to a YAML role catalog (default: embedded catalog)

	Env                  string        // Environment (local, dev, staging, prod) (default: dev)
	LogLevel             string        // Log level (debug, info, warn, error) (default: info)
	LogFormat            string        // Log format (json, text) (default: json)
	Port                 int           // HTTP server port (default: 8080)
	ShutdownGracePeriod  time.Duration // Graceful shutdown timeout (default: 10s)
	HousekeepingInterval time.Duration // Housekeeping interval (default: 1h)
}

func LoadConfig() Config {
	cfg := Config{
		BaseURL:        getEnvOrDefault("PORTAL_BASE_URL", "http://localhost:8080"),
		AllowedHosts:   splitList(os.Getenv("PORTAL_ALLOWED_HOSTS")),
		Secret:         os.Getenv("PORTAL_SECRET"),
		DatabaseDriver: getEnvOrDefault("PORTAL_DATABASE_DRIVER", DriverSQLite),
		DatabaseDSN:    os.Getenv("PORTAL_DATABASE_DSN"),
		OIDC: identity.Config{
			IssuerURL:    os.Getenv("OIDC_ISSUER_URL"),
			ClientID:     os.Getenv("OIDC_CLIENT_ID"),
			ClientSecret: os.Getenv("OIDC_CLIENT_SECRET"),
			RedirectURL:  os.Getenv("OIDC_REDIRECT_URL"),
		},
		SessionTTL:           getEnvDurationOrDefault("PORTAL_SESSION_TTL", service.DefaultSessionTTL),
		PermissionCacheTTL:   getEnvDurationOrDefault("PORTAL_PERMISSION_CACHE_TTL", service.DefaultPermissionCacheTTL),
		PermissionCacheSize:  getEnvIntOrDefault("PORTAL_PERMISSION_CACHE_SIZE", service.DefaultPermissionCacheSize),
		RoleCatalog:          os.Getenv("PORTAL_ROLE_CATALOG"),
		Env:                  getEnvOrDefault("ENV", "dev"),
		LogLevel:             getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:            getEnvOrDefault("LOG_FORMAT", "json"),
		Port:                 getEnvIntOrDefault("PORT", 8080),
		ShutdownGracePeriod:  getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
		HousekeepingInterval: getEnvDurationOrDefault("HOUSEKEEPING_INTERVAL", 1*time.Hour),
	}

	if cfg.DatabaseDSN == "" && cfg.DatabaseDriver == DriverSQLite {
		cfg.DatabaseDSN = "portal.db"
	}

	// The callback lives under the portal itself unless told otherwise
	if cfg.OIDC.RedirectURL == "" {
		cfg.OIDC.RedirectURL = strings.TrimRight(cfg.BaseURL, "/") + "/auth/callback"
	}

	return cfg
}

// Local reports whether forwarded headers must be ignored.
func (c Config) Local() bool { return c.Env == "local" }

// Validate checks the settings every command needs. Identity provider
// settings are only checked by the server, so migrate and seed can run
// without them.
func (c Config) Validate() error {
	u, err := url.Parse(c.BaseURL)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return fmt.Errorf("%w: PORTAL_BASE_URL must be an absolute http(s) URL, got %q", ErrInvalidConfig, c.BaseURL)
	}

	for _, host := range c.AllowedHosts {
		if strings.Contains(host, "://") || strings.ContainsAny(host, "/?#") {
			return fmt.Errorf("%w: PORTAL_ALLOWED_HOSTS entries must be bare hosts, got %q", ErrInvalidConfig, host)
		}
	}

	switch c.DatabaseDriver {
	case DriverSQLite, DriverPostgres:
	default:
		return fmt.Errorf("%w: unknown PORTAL_DATABASE_DRIVER %q", ErrInvalidConfig, c.DatabaseDriver)
	}
	if c.DatabaseDSN == "" {
		return fmt.Errorf("%w: PORTAL_DATABASE_DSN is required for %s", ErrInvalidConfig, c.DatabaseDriver)
	}

	if c.PermissionCacheSize < 0 {
		return fmt.Errorf("%w: PORTAL_PERMISSION_CACHE_SIZE must not be negative", ErrInvalidConfig)
	}

	return nil
}

// SecureCookies is true when the portal is served over https.
func (c Config) SecureCookies() bool {
	return strings.HasPrefix(strings.ToLower(c.BaseURL), "https://")
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, strings.ToLower(part))
		}
	}
	return out
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

	// Try parsing as duration (e.g., "1h", "30m", "90s")
	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}

	// Try parsing as integer minutes
	if minutes, err := strconv.Atoi(value); err == nil {
		return time.Duration(minutes) * time.Minute
	}

	return defaultValue
}
