package sessiongate

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/travelingorcas/orcalog/services/logging"
	"github.com/travelingorcas/orcalog/session"
)

const sessionContextKey = "gate_session"

// SessionReader is the gate's read-only view of the session store.
type SessionReader interface {
	Get(id string) (*session.Session, error)
}

type Config struct {
	CookieName string
	LoginPath  string
	// BypassPrefixes are path prefixes reachable without a session: the
	// login and verify pages, the auth endpoints backing them, and static
	// assets.
	BypassPrefixes []string
	Sessions       SessionReader
	Logger         *logging.Service
}

// DefaultBypassPrefixes match the unauthenticated surface of the app.
func DefaultBypassPrefixes() []string {
	return []string{
		"/auth/login",
		"/auth/verify",
		"/auth/error",
		"/api/auth/request-code",
		"/api/auth/verify-code",
		"/api/auth/logout",
		"/api/openapi",
		"/assets/",
		"/favicon.ico",
		"/healthz",
	}
}

// Middleware gates every request on a live session. Each request ends in
// exactly one of: bypassed, denied without a cookie, denied with a dead
// session, or allowed. The gate never writes to the session store.
func Middleware(cfg Config) echo.MiddlewareFunc {
	if cfg.LoginPath == "" {
		cfg.LoginPath = "/auth/login"
	}
	if cfg.BypassPrefixes == nil {
		cfg.BypassPrefixes = DefaultBypassPrefixes()
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			path := c.Request().URL.Path

			for _, prefix := range cfg.BypassPrefixes {
				if strings.HasPrefix(path, prefix) {
					return next(c)
				}
			}

			cookie, err := c.Cookie(cfg.CookieName)
			if err != nil || cookie.Value == "" {
				return deny(c, cfg)
			}

			sess, err := cfg.Sessions.Get(cookie.Value)
			if err != nil {
				cfg.Logger.Debug("request denied: no live session for cookie")
				return deny(c, cfg)
			}

			c.Set(sessionContextKey, sess)
			return next(c)
		}
	}
}

func deny(c echo.Context, cfg Config) error {
	if wantsJSON(c) {
		return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	}

	target := c.Request().URL.Path
	if q := c.Request().URL.RawQuery; q != "" {
		target += "?" + q
	}

	return c.Redirect(http.StatusFound,
		cfg.LoginPath+"?callbackUrl="+url.QueryEscape(target))
}

func wantsJSON(c echo.Context) bool {
	if strings.HasPrefix(c.Request().URL.Path, "/api/") {
		return true
	}
	return strings.Contains(c.Request().Header.Get(echo.HeaderAccept), echo.MIMEApplicationJSON)
}

// GetSession returns the session the gate attached to the request, or nil
// on bypassed paths.
func GetSession(c echo.Context) *session.Session {
	if sess, ok := c.Get(sessionContextKey).(*session.Session); ok {
		return sess
	}
	return nil
}
