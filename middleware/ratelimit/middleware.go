package ratelimit

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
)

type Config struct {
	Store Store
	// Rate is the number of requests allowed per Period. A non-positive
	// rate disables the limiter.
	Rate   int
	Period time.Duration
	// KeyPrefix separates windows of independently limited endpoints
	// sharing one store.
	KeyPrefix    string
	KeyGenerator func(c echo.Context) string
}

// Middleware applies a fixed-window per-client limit. Keys default to the
// client IP.
func Middleware(cfg Config) echo.MiddlewareFunc {
	if cfg.Store == nil {
		cfg.Store = NewMemoryStore()
	}
	if cfg.Period <= 0 {
		cfg.Period = time.Minute
	}
	if cfg.KeyGenerator == nil {
		cfg.KeyGenerator = func(c echo.Context) string {
			ip := c.RealIP()
			if ip == "" {
				ip = "unknown"
			}
			return cfg.KeyPrefix + ":" + ip
		}
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if cfg.Rate <= 0 {
				return next(c)
			}

			count, resetTime := cfg.Store.Increment(cfg.KeyGenerator(c), cfg.Period)

			remaining := cfg.Rate - count
			if remaining < 0 {
				remaining = 0
			}

			c.Response().Header().Set("X-RateLimit-Limit", strconv.Itoa(cfg.Rate))
			c.Response().Header().Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
			c.Response().Header().Set("X-RateLimit-Reset", strconv.FormatInt(resetTime.Unix(), 10))

			if count > cfg.Rate {
				return echo.NewHTTPError(http.StatusTooManyRequests, "Too Many Requests")
			}

			return next(c)
		}
	}
}
