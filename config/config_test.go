package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg := &Config{}
	err := LoadConfig(cfg)
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "localhost", cfg.Server.Host)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, 15*time.Minute, cfg.Auth.CodeTTL)
	assert.Equal(t, 7, cfg.Auth.SessionTTLDays)
	assert.False(t, cfg.Auth.EchoCode)
	assert.Equal(t, "session_id", cfg.Auth.CookieName)
	assert.Equal(t, "lax", cfg.Auth.CookieSameSite)
	assert.Empty(t, cfg.Auth.AllowedDomains)
	assert.Equal(t, 5, cfg.RateLimit.RequestCodeRate)
	assert.Equal(t, 10, cfg.RateLimit.VerifyCodeRate)
}

func TestLoadConfig_FromEnvironment(t *testing.T) {
	t.Setenv("ORCALOG_SERVER_PORT", "9000")
	t.Setenv("ORCALOG_AUTH_ALLOWED_DOMAINS", "example.com,example.org")
	t.Setenv("ORCALOG_AUTH_SESSION_TTL_DAYS", "14")
	t.Setenv("ORCALOG_AUTH_CODE_TTL", "5m")
	t.Setenv("ORCALOG_AUTH_ECHO_CODE", "true")
	t.Setenv("ORCALOG_APP_ENV", "production")

	cfg := &Config{}
	err := LoadConfig(cfg)
	require.NoError(t, err)

	assert.Equal(t, "9000", cfg.Server.Port)
	assert.Equal(t, "example.com,example.org", cfg.Auth.AllowedDomains)
	assert.Equal(t, 14, cfg.Auth.SessionTTLDays)
	assert.Equal(t, 5*time.Minute, cfg.Auth.CodeTTL)
	assert.True(t, cfg.Auth.EchoCode)
	assert.True(t, cfg.App.IsProduction())
}

func TestAuthConfig_SessionTTL(t *testing.T) {
	t.Run("uses configured days", func(t *testing.T) {
		cfg := AuthConfig{SessionTTLDays: 3}
		assert.Equal(t, 3*24*time.Hour, cfg.SessionTTL())
	})

	t.Run("falls back to seven days for non-positive values", func(t *testing.T) {
		assert.Equal(t, 7*24*time.Hour, AuthConfig{}.SessionTTL())
		assert.Equal(t, 7*24*time.Hour, AuthConfig{SessionTTLDays: -1}.SessionTTL())
	})
}
