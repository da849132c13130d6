package app

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/aussiebroadwan/fieldops/internal/portal/service"
)

func TestLoadConfigDefaults(t *testing.T) {
	for _, key := range []string{
		"PORTAL_BASE_URL", "PORTAL_ALLOWED_HOSTS", "PORTAL_DATABASE_DRIVER", "PORTAL_DATABASE_DSN",
		"OIDC_REDIRECT_URL", "PORTAL_SESSION_TTL", "PORTAL_PERMISSION_CACHE_SIZE", "ENV", "PORT",
	} {
		t.Setenv(key, "")
	}

	cfg := LoadConfig()
	require.Equal(t, "http://localhost:8080", cfg.BaseURL)
	require.Equal(t, DriverSQLite, cfg.DatabaseDriver)
	require.Equal(t, "portal.db", cfg.DatabaseDSN)
	require.Equal(t, "http://localhost:8080/auth/callback", cfg.OIDC.RedirectURL)
	require.Equal(t, service.DefaultSessionTTL, cfg.SessionTTL)
	require.Equal(t, service.DefaultPermissionCacheSize, cfg.PermissionCacheSize)
	require.Equal(t, 8080, cfg.Port)
	require.Empty(t, cfg.AllowedHosts)
	require.False(t, cfg.Local())
	require.False(t, cfg.SecureCookies())
}

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("PORTAL_BASE_URL", "https://portal.example.com")
	t.Setenv("PORTAL_ALLOWED_HOSTS", " Portal.Example.com , ,staff.example.com")
	t.Setenv("PORTAL_DATABASE_DRIVER", "postgres")
	t.Setenv("PORTAL_DATABASE_DSN", "postgres://portal@db/portal")
	t.Setenv("OIDC_REDIRECT_URL", "https://portal.example.com/custom/callback")
	t.Setenv("PORTAL_SESSION_TTL", "2h")
	t.Setenv("PORTAL_PERMISSION_CACHE_TTL", "30")
	t.Setenv("PORTAL_PERMISSION_CACHE_SIZE", "not-a-number")
	t.Setenv("ENV", "local")

	cfg := LoadConfig()
	require.Equal(t, []string{"portal.example.com", "staff.example.com"}, cfg.AllowedHosts)
	require.Equal(t, DriverPostgres, cfg.DatabaseDriver)
	require.Equal(t, "postgres://portal@db/portal", cfg.DatabaseDSN)
	require.Equal(t, "https://portal.example.com/custom/callback", cfg.OIDC.RedirectURL)
	require.Equal(t, 2*time.Hour, cfg.SessionTTL)
	require.Equal(t, 30*time.Minute, cfg.PermissionCacheTTL)
	require.Equal(t, service.DefaultPermissionCacheSize, cfg.PermissionCacheSize)
	require.True(t, cfg.Local())
	require.True(t, cfg.SecureCookies())
	require.NoError(t, cfg.Validate())
}

func TestConfigValidate(t *testing.T) {
	valid := Config{
		BaseURL:        "https://portal.example.com",
		DatabaseDriver: DriverSQLite,
		DatabaseDSN:    ":memory:",
	}
	require.NoError(t, valid.Validate())

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"relative base url", func(c *Config) { c.BaseURL = "/portal" }},
		{"unparsable base url", func(c *Config) { c.BaseURL = "https://exa mple.com:xx" }},
		{"non http scheme", func(c *Config) { c.BaseURL = "ftp://portal.example.com" }},
		{"allowed host with scheme", func(c *Config) { c.AllowedHosts = []string{"https://portal.example.com"} }},
		{"allowed host with path", func(c *Config) { c.AllowedHosts = []string{"portal.example.com/app"} }},
		{"unknown driver", func(c *Config) { c.DatabaseDriver = "mysql" }},
		{"missing dsn", func(c *Config) { c.DatabaseDSN = "" }},
		{"negative cache size", func(c *Config) { c.PermissionCacheSize = -1 }},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := valid
			tc.mutate(&cfg)
			require.ErrorIs(t, cfg.Validate(), ErrInvalidConfig)
		})
	}
}

func TestOpenStoreAndSeedCatalog(t *testing.T) {
	ctx := context.Background()

	st, err := OpenStore(Config{DatabaseDriver: DriverSQLite, DatabaseDSN: ":memory:"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.ApplyMigrations())

	created, err := SeedCatalog(ctx, st, "")
	require.NoError(t, err)
	require.Equal(t, 3, created)

	created, err = SeedCatalog(ctx, st, "")
	require.NoError(t, err)
	require.Zero(t, created)

	_, err = SeedCatalog(ctx, st, "does-not-exist.yaml")
	require.Error(t, err)

	_, err = OpenStore(Config{DatabaseDriver: "mysql"})
	require.ErrorIs(t, err, ErrInvalidConfig)
}

func TestSQLiteDSN(t *testing.T) {
	require.Equal(t, ":memory:", sqliteDSN(":memory:"))
	require.Equal(t, "file:x.db?mode=ro", sqliteDSN("file:x.db?mode=ro"))
	require.Equal(t, "file:portal.db?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", sqliteDSN("portal.db"))
}
