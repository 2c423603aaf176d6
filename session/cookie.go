package session

import (
	"net/http"
	"time"

	"github.com/travelingorcas/orcalog/config"
)

// NewCookie builds the session cookie for a freshly created session.
// The cookie carries the session ID verbatim.
func NewCookie(cfg *config.Config, sess *Session) *http.Cookie {
	return &http.Cookie{
		Name:     cfg.Auth.CookieName,
		Value:    sess.ID,
		Path:     "/",
		Expires:  sess.ExpiresAt,
		HttpOnly: true,
		Secure:   cookieSecure(cfg),
		SameSite: parseSameSite(cfg.Auth.CookieSameSite),
	}
}

// ClearCookie expires the session cookie immediately.
func ClearCookie(cfg *config.Config) *http.Cookie {
	return &http.Cookie{
		Name:     cfg.Auth.CookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   cookieSecure(cfg),
		SameSite: parseSameSite(cfg.Auth.CookieSameSite),
	}
}

// Secure is forced on in production even if left unset in the environment.
func cookieSecure(cfg *config.Config) bool {
	return cfg.Auth.CookieSecure || cfg.App.IsProduction()
}

func parseSameSite(value string) http.SameSite {
	switch value {
	case "strict":
		return http.SameSiteStrictMode
	case "lax":
		return http.SameSiteLaxMode
	case "none":
		return http.SameSiteNoneMode
	default:
		return http.SameSiteLaxMode
	}
}
