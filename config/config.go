package config

import (
	"log"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

type Config struct {
	App       AppConfig       `envPrefix:"ORCALOG_APP_"`
	Server    ServerConfig    `envPrefix:"ORCALOG_SERVER_"`
	Log       LogConfig       `envPrefix:"ORCALOG_LOG_"`
	Database  DatabaseConfig  `envPrefix:"ORCALOG_DB_"`
	Auth      AuthConfig      `envPrefix:"ORCALOG_AUTH_"`
	Mail      MailConfig      `envPrefix:"ORCALOG_MAIL_"`
	RateLimit RateLimitConfig `envPrefix:"ORCALOG_RATELIMIT_"`
}

type AppConfig struct {
	Name        string `env:"NAME" envDefault:"Traveling Orcas"`
	URL         string `env:"URL" envDefault:"http://localhost:8080"`
	Environment string `env:"ENV" envDefault:"development"`
}

func (c AppConfig) IsProduction() bool {
	return c.Environment == "production"
}

type ServerConfig struct {
	Port string `env:"PORT" envDefault:"8080"`
	Host string `env:"HOST" envDefault:"localhost"`
}

type LogConfig struct {
	Level  string `env:"LEVEL" envDefault:"info"`
	Format string `env:"FORMAT" envDefault:"json"`
	Output string `env:"OUTPUT" envDefault:"stdout"`
}

type DatabaseConfig struct {
	Driver      string `env:"DRIVER" envDefault:"sqlite"`
	DSN         string `env:"DSN" envDefault:"orcalog.db"`
	AutoMigrate bool   `env:"AUTO_MIGRATE" envDefault:"true"`
}

type AuthConfig struct {
	// AllowedDomains is a comma-separated list of email domains permitted
	// to request login codes. An empty list denies every email.
	AllowedDomains string        `env:"ALLOWED_DOMAINS"`
	CodeTTL        time.Duration `env:"CODE_TTL" envDefault:"15m"`
	SessionTTLDays int           `env:"SESSION_TTL_DAYS" envDefault:"7"`
	// EchoCode returns the issued code in the request-code response.
	// Only honored outside production, regardless of this flag.
	EchoCode       bool   `env:"ECHO_CODE" envDefault:"false"`
	CookieName     string `env:"COOKIE_NAME" envDefault:"session_id"`
	CookieSecure   bool   `env:"COOKIE_SECURE" envDefault:"false"`
	CookieSameSite string `env:"COOKIE_SAMESITE" envDefault:"lax"`
}

func (c AuthConfig) SessionTTL() time.Duration {
	days := c.SessionTTLDays
	if days <= 0 {
		days = 7
	}
	return time.Duration(days) * 24 * time.Hour
}

type MailConfig struct {
	Host         string `env:"HOST"`
	Port         int    `env:"PORT" envDefault:"587"`
	Username     string `env:"USERNAME"`
	Password     string `env:"PASSWORD"`
	Encryption   string `env:"ENCRYPTION" envDefault:"starttls"`
	FromAddress  string `env:"FROM_ADDRESS"`
	FromName     string `env:"FROM_NAME"`
	TemplatesDir string `env:"TEMPLATES_DIR" envDefault:"templates/mail"`
}

type RateLimitConfig struct {
	RequestCodeRate   int           `env:"REQUEST_CODE_RATE" envDefault:"5"`
	RequestCodePeriod time.Duration `env:"REQUEST_CODE_PERIOD" envDefault:"15m"`
	VerifyCodeRate    int           `env:"VERIFY_CODE_RATE" envDefault:"10"`
	VerifyCodePeriod  time.Duration `env:"VERIFY_CODE_PERIOD" envDefault:"15m"`
}

func LoadConfig(cfg any) error {
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file found: %v", err)
	}

	return env.Parse(cfg)
}
