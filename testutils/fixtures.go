package testutils

import (
	"time"

	"github.com/travelingorcas/orcalog/config"
)

func GetTestConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{
			Name:        "Test App",
			URL:         "http://localhost:8080",
			Environment: "test",
		},
		Auth: config.AuthConfig{
			AllowedDomains: "example.com",
			CodeTTL:        15 * time.Minute,
			SessionTTLDays: 7,
			EchoCode:       true,
			CookieName:     "session_id",
			CookieSecure:   false,
			CookieSameSite: "lax",
		},
		Database: config.DatabaseConfig{
			Driver:      "sqlite",
			DSN:         ":memory:",
			AutoMigrate: true,
		},
		RateLimit: config.RateLimitConfig{
			RequestCodeRate:   5,
			RequestCodePeriod: 15 * time.Minute,
			VerifyCodeRate:    10,
			VerifyCodePeriod:  15 * time.Minute,
		},
	}
}

var TestEmails = struct {
	Allowed       string
	AllowedUpper  string
	DeniedDomain  string
	Malformed     string
	MissingDomain string
}{
	Allowed:       "a@example.com",
	AllowedUpper:  "A@EXAMPLE.COM",
	DeniedDomain:  "a@evil.test",
	Malformed:     "not-an-email",
	MissingDomain: "a@",
}
