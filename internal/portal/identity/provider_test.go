package identity

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestValidateConfig(t *testing.T) {
	t.Parallel()

	valid := Config{
		IssuerURL:   "https://idp.example.com",
		ClientID:    "portal",
		RedirectURL: "https://portal.example.com/auth/callback",
	}
	require.NoError(t, ValidateConfig(valid))

	cases := map[string]func(c *Config){
		"missing client id":   func(c *Config) { c.ClientID = "" },
		"issuer not absolute": func(c *Config) { c.IssuerURL = "idp.example.com" },
		"issuer bad scheme":   func(c *Config) { c.IssuerURL = "ftp://idp.example.com" },
		"redirect no host":    func(c *Config) { c.RedirectURL = "https:///callback" },
	}
	for name, mutate := range cases {
		cfg := valid
		mutate(&cfg)
		require.Error(t, ValidateConfig(cfg), name)
	}
}

func TestScopesWithRequired(t *testing.T) {
	t.Parallel()

	require.Equal(t, []string{"openid", "email"}, scopesWithRequired(nil))
	require.Equal(t, []string{"email", "profile", "openid"}, scopesWithRequired([]string{"email", "profile"}))

	in := []string{"profile"}
	_ = scopesWithRequired(in)
	require.Equal(t, []string{"profile"}, in, "input is not modified")
}
