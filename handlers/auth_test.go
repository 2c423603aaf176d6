package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/travelingorcas/orcalog/config"
	"github.com/travelingorcas/orcalog/middleware/sessiongate"
	"github.com/travelingorcas/orcalog/services/authcode"
	"github.com/travelingorcas/orcalog/session"
	"github.com/travelingorcas/orcalog/testutils"
)

type testApp struct {
	echo     *echo.Echo
	config   *config.Config
	sessions session.Service
	codes    *authcode.Service
}

func setupTestApp(t *testing.T) *testApp {
	t.Helper()

	cfg := testutils.GetTestConfig()
	db := testutils.SetupTestDB(t, &authcode.OneTimeCode{}, &session.Session{})

	sessions := session.NewService(cfg, db, nil)
	codes := authcode.NewService(cfg, db, sessions, nil)
	handler := NewAuthHandler(cfg, codes, sessions, nil)

	e := echo.New()
	e.Use(sessiongate.Middleware(sessiongate.Config{
		CookieName: cfg.Auth.CookieName,
		Sessions:   sessions,
	}))

	e.POST("/api/auth/request-code", handler.RequestCode)
	e.POST("/api/auth/verify-code", handler.VerifyCode)
	e.POST("/api/auth/logout", handler.Logout)
	e.GET("/api/auth/session", handler.Session)
	e.GET("/healthz", Health)
	e.GET("/logbook", func(c echo.Context) error {
		return c.String(http.StatusOK, "logbook")
	})

	return &testApp{echo: e, config: cfg, sessions: sessions, codes: codes}
}

func (app *testApp) postJSON(path, body string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	for _, cookie := range cookies {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	app.echo.ServeHTTP(rec, req)
	return rec
}

func (app *testApp) get(path string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for _, cookie := range cookies {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	app.echo.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func sessionCookie(t *testing.T, app *testApp, rec *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, cookie := range rec.Result().Cookies() {
		if cookie.Name == app.config.Auth.CookieName {
			return cookie
		}
	}
	t.Fatal("no session cookie in response")
	return nil
}

func TestRequestCode(t *testing.T) {
	t.Run("issues a code for an allowed email", func(t *testing.T) {
		app := setupTestApp(t)

		rec := app.postJSON("/api/auth/request-code", `{"email":"a@example.com"}`)

		require.Equal(t, http.StatusOK, rec.Code)
		body := decodeBody(t, rec)
		assert.Equal(t, "Auth code sent", body["message"])
		assert.Len(t, body["code"], 6)
	})

	t.Run("rejects a missing email", func(t *testing.T) {
		app := setupTestApp(t)

		rec := app.postJSON("/api/auth/request-code", `{}`)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("rejects a malformed email", func(t *testing.T) {
		app := setupTestApp(t)

		rec := app.postJSON("/api/auth/request-code", `{"email":"not-an-email"}`)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("rejects a disallowed domain", func(t *testing.T) {
		app := setupTestApp(t)

		rec := app.postJSON("/api/auth/request-code", `{"email":"a@evil.test"}`)

		require.Equal(t, http.StatusForbidden, rec.Code)
		body := decodeBody(t, rec)
		assert.Equal(t, "Email domain not allowed", body["error"])
		assert.NotContains(t, rec.Body.String(), "example.com")
	})

	t.Run("omits the code in production", func(t *testing.T) {
		app := setupTestApp(t)
		app.config.App.Environment = "production"

		rec := app.postJSON("/api/auth/request-code", `{"email":"a@example.com"}`)

		require.Equal(t, http.StatusOK, rec.Code)
		body := decodeBody(t, rec)
		assert.NotContains(t, body, "code")
	})
}

func TestVerifyCode(t *testing.T) {
	t.Run("exchanges a valid code for a session", func(t *testing.T) {
		app := setupTestApp(t)

		rec := app.postJSON("/api/auth/request-code", `{"email":"a@example.com"}`)
		code := decodeBody(t, rec)["code"].(string)

		rec = app.postJSON("/api/auth/verify-code", `{"email":"a@example.com","code":"`+code+`"}`)

		require.Equal(t, http.StatusOK, rec.Code)
		cookie := sessionCookie(t, app, rec)
		assert.True(t, cookie.HttpOnly)

		body := decodeBody(t, rec)
		sess := body["session"].(map[string]any)
		assert.Equal(t, "a@example.com", sess["email"])
		assert.Equal(t, cookie.Value, sess["id"])

		_, err := time.Parse(time.RFC3339, sess["expiresAt"].(string))
		assert.NoError(t, err, "expiresAt should be RFC 3339")
	})

	t.Run("rejects a wrong code", func(t *testing.T) {
		app := setupTestApp(t)

		app.postJSON("/api/auth/request-code", `{"email":"a@example.com"}`)

		rec := app.postJSON("/api/auth/verify-code", `{"email":"a@example.com","code":"000000"}`)

		require.Equal(t, http.StatusBadRequest, rec.Code)
		body := decodeBody(t, rec)
		assert.Equal(t, "Invalid or expired code", body["error"])
	})

	t.Run("rejects a code for an email that never requested one", func(t *testing.T) {
		app := setupTestApp(t)

		rec := app.postJSON("/api/auth/verify-code", `{"email":"b@example.com","code":"123456"}`)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("malformed code gets the unified invalid-code response", func(t *testing.T) {
		app := setupTestApp(t)

		app.postJSON("/api/auth/request-code", `{"email":"a@example.com"}`)

		for _, code := range []string{"abcdef", "12345", "1234567"} {
			rec := app.postJSON("/api/auth/verify-code", `{"email":"a@example.com","code":"`+code+`"}`)
			require.Equal(t, http.StatusBadRequest, rec.Code)
			body := decodeBody(t, rec)
			assert.Equal(t, "Invalid or expired code", body["error"], "code %q", code)
		}
	})

	t.Run("missing code is an input error", func(t *testing.T) {
		app := setupTestApp(t)

		rec := app.postJSON("/api/auth/verify-code", `{"email":"a@example.com"}`)

		require.Equal(t, http.StatusBadRequest, rec.Code)
		body := decodeBody(t, rec)
		assert.Equal(t, "Email and code are required", body["error"])
	})
}

func TestLogout(t *testing.T) {
	t.Run("deletes the session and clears the cookie", func(t *testing.T) {
		app := setupTestApp(t)

		sess, err := app.sessions.Create("a@example.com", "127.0.0.1", "")
		require.NoError(t, err)

		rec := app.postJSON("/api/auth/logout", "",
			&http.Cookie{Name: app.config.Auth.CookieName, Value: sess.ID})

		require.Equal(t, http.StatusOK, rec.Code)
		cookie := sessionCookie(t, app, rec)
		assert.Empty(t, cookie.Value)
		assert.Negative(t, cookie.MaxAge)

		_, err = app.sessions.Get(sess.ID)
		assert.ErrorIs(t, err, session.ErrSessionNotFound)
	})

	t.Run("succeeds without a cookie", func(t *testing.T) {
		app := setupTestApp(t)

		rec := app.postJSON("/api/auth/logout", "")

		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("succeeds with an unknown session id", func(t *testing.T) {
		app := setupTestApp(t)

		rec := app.postJSON("/api/auth/logout", "",
			&http.Cookie{Name: app.config.Auth.CookieName, Value: "no-such-session"})

		assert.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestSessionProbe(t *testing.T) {
	t.Run("returns the caller's session", func(t *testing.T) {
		app := setupTestApp(t)

		sess, err := app.sessions.Create("a@example.com", "127.0.0.1", "")
		require.NoError(t, err)

		rec := app.get("/api/auth/session",
			&http.Cookie{Name: app.config.Auth.CookieName, Value: sess.ID})

		require.Equal(t, http.StatusOK, rec.Code)
		body := decodeBody(t, rec)
		probe := body["session"].(map[string]any)
		assert.Equal(t, sess.ID, probe["id"])
		assert.Equal(t, "a@example.com", probe["email"])
	})

	t.Run("denies without a session", func(t *testing.T) {
		app := setupTestApp(t)

		rec := app.get("/api/auth/session")

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

// TestLoginFlow walks the whole passwordless flow: two code requests where
// only the latest code works, the code working exactly once, the gate
// honoring the resulting cookie, and logout killing it.
func TestLoginFlow(t *testing.T) {
	app := setupTestApp(t)

	rec := app.postJSON("/api/auth/request-code", `{"email":"a@example.com"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	firstCode := decodeBody(t, rec)["code"].(string)

	rec = app.postJSON("/api/auth/request-code", `{"email":"a@example.com"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	secondCode := decodeBody(t, rec)["code"].(string)

	// The first code was superseded by the second request.
	if firstCode != secondCode {
		rec = app.postJSON("/api/auth/verify-code", `{"email":"a@example.com","code":"`+firstCode+`"}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	}

	rec = app.postJSON("/api/auth/verify-code", `{"email":"a@example.com","code":"`+secondCode+`"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	cookie := sessionCookie(t, app, rec)

	// A code verifies at most once.
	rec = app.postJSON("/api/auth/verify-code", `{"email":"a@example.com","code":"`+secondCode+`"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = app.get("/logbook")
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Contains(t, rec.Header().Get(echo.HeaderLocation), "callbackUrl=%2Flogbook")

	rec = app.get("/logbook", cookie)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "logbook", rec.Body.String())

	rec = app.postJSON("/api/auth/logout", "", cookie)
	require.Equal(t, http.StatusOK, rec.Code)

	// The stale cookie no longer opens the gate.
	rec = app.get("/logbook", cookie)
	assert.Equal(t, http.StatusFound, rec.Code)
}

func TestHealth(t *testing.T) {
	app := setupTestApp(t)

	rec := app.get("/healthz")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", decodeBody(t, rec)["status"])
}
