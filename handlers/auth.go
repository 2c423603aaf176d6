package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/travelingorcas/orcalog/config"
	"github.com/travelingorcas/orcalog/middleware/sessiongate"
	"github.com/travelingorcas/orcalog/services/authcode"
	"github.com/travelingorcas/orcalog/services/logging"
	"github.com/travelingorcas/orcalog/session"
	"go.uber.org/zap"
)

type AuthHandler struct {
	config    *config.Config
	authCodes *authcode.Service
	sessions  session.Service
	logger    *logging.Service
	validate  *validator.Validate
}

func NewAuthHandler(cfg *config.Config, authCodes *authcode.Service, sessions session.Service, logger *logging.Service) *AuthHandler {
	return &AuthHandler{
		config:    cfg,
		authCodes: authCodes,
		sessions:  sessions,
		logger:    logger,
		validate:  validator.New(),
	}
}

type requestCodeRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// The code carries no shape constraint: a present-but-malformed code is
// indistinguishable from a wrong one and gets the same response.
type verifyCodeRequest struct {
	Email string `json:"email" validate:"required,email"`
	Code  string `json:"code" validate:"required"`
}

type sessionResponse struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	ExpiresAt string `json:"expiresAt"`
}

// RequestCode handles POST /api/auth/request-code.
func (h *AuthHandler) RequestCode(c echo.Context) error {
	var req requestCodeRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Email is required"})
	}
	if err := h.validate.Struct(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Email is required"})
	}

	code, err := h.authCodes.RequestCode(req.Email)
	switch {
	case errors.Is(err, authcode.ErrInvalidEmail):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Email is required"})
	case errors.Is(err, authcode.ErrDomainNotAllowed):
		return c.JSON(http.StatusForbidden, echo.Map{"error": "Email domain not allowed"})
	case err != nil:
		h.logger.Error("request-code failed", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Internal server error"})
	}

	resp := echo.Map{"message": "Auth code sent"}
	if h.authCodes.EchoEnabled() {
		resp["code"] = code
	}

	return c.JSON(http.StatusOK, resp)
}

// VerifyCode handles POST /api/auth/verify-code. On success it sets the
// session cookie and returns the new session.
func (h *AuthHandler) VerifyCode(c echo.Context) error {
	var req verifyCodeRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Email and code are required"})
	}
	if err := h.validate.Struct(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Email and code are required"})
	}

	sess, err := h.authCodes.VerifyCode(req.Email, req.Code, c.RealIP(), c.Request().UserAgent())
	switch {
	case errors.Is(err, authcode.ErrInvalidCode):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid or expired code"})
	case err != nil:
		h.logger.Error("verify-code failed", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Internal server error"})
	}

	c.SetCookie(session.NewCookie(h.config, sess))

	return c.JSON(http.StatusOK, echo.Map{
		"message": "Code verified",
		"session": sessionResponse{
			ID:        sess.ID,
			Email:     sess.Email,
			ExpiresAt: sess.ExpiresAt.Format(time.RFC3339),
		},
	})
}

// Logout handles POST /api/auth/logout. It always succeeds, even when no
// session exists for the cookie.
func (h *AuthHandler) Logout(c echo.Context) error {
	if cookie, err := c.Cookie(h.config.Auth.CookieName); err == nil && cookie.Value != "" {
		if err := h.sessions.Delete(cookie.Value); err != nil {
			h.logger.Error("failed to delete session on logout", zap.Error(err))
		}
	}

	c.SetCookie(session.ClearCookie(h.config))

	return c.JSON(http.StatusOK, echo.Map{"message": "Logged out successfully"})
}

// Session handles GET /api/auth/session behind the gate and reports the
// caller's current session.
func (h *AuthHandler) Session(c echo.Context) error {
	sess := sessiongate.GetSession(c)
	if sess == nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	}

	return c.JSON(http.StatusOK, echo.Map{
		"session": sessionResponse{
			ID:        sess.ID,
			Email:     sess.Email,
			ExpiresAt: sess.ExpiresAt.Format(time.RFC3339),
		},
	})
}
