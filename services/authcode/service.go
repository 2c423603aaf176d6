package authcode

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/travelingorcas/orcalog/config"
	"github.com/travelingorcas/orcalog/services/logging"
	"github.com/travelingorcas/orcalog/session"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	// ErrInvalidEmail covers missing or malformed email input.
	ErrInvalidEmail = errors.New("invalid email address")

	// ErrDomainNotAllowed is surfaced verbatim but must never reveal which
	// domains are on the list.
	ErrDomainNotAllowed = errors.New("email domain not allowed")

	// ErrInvalidCode covers missing, mismatched and expired codes alike so
	// callers cannot tell which one happened.
	ErrInvalidCode = errors.New("invalid or expired code")
)

// MailService dispatches the login code to the user. Dispatch failures do
// not fail issuance; the code is already stored and usable.
type MailService interface {
	SendTemplate(templateName string, to []string, subject string, data map[string]any) error
}

type Service struct {
	config      *config.Config
	db          *gorm.DB
	allowList   AllowList
	sessions    session.Service
	mailService MailService
	logger      *logging.Service
}

func NewService(cfg *config.Config, db *gorm.DB, sessions session.Service, logger *logging.Service) *Service {
	return &Service{
		config:    cfg,
		db:        db,
		allowList: NewAllowList(cfg.Auth.AllowedDomains),
		sessions:  sessions,
		logger:    logger,
	}
}

func (s *Service) SetMailService(mailService MailService) {
	s.mailService = mailService
}

// RequestCode issues a one-time login code for email and dispatches it by
// mail. Any previously issued codes for the email are invalidated. The
// issued code is returned so that non-production deployments may echo it.
func (s *Service) RequestCode(email string) (string, error) {
	email, err := normalizeEmail(email)
	if err != nil {
		return "", err
	}

	if !s.allowList.Allows(email) {
		s.logger.Warn("login code requested for disallowed domain",
			zap.String("domain", email[strings.Index(email, "@")+1:]))
		return "", ErrDomainNotAllowed
	}

	code, err := GenerateCode()
	if err != nil {
		return "", err
	}

	now := time.Now()
	record := &OneTimeCode{
		Email:     email,
		Code:      code,
		CreatedAt: now,
		ExpiresAt: now.Add(s.config.Auth.CodeTTL),
	}

	// Upsert keyed on the email unique index. Concurrent requests for the
	// same email leave exactly one row, last writer wins, on every driver.
	err = s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "email"}},
		DoUpdates: clause.AssignmentColumns([]string{"code", "created_at", "expires_at"}),
	}).Create(record).Error
	if err != nil {
		s.logger.Error("failed to store one-time code", zap.Error(err), zap.String("email", email))
		return "", fmt.Errorf("failed to store one-time code: %w", err)
	}

	s.logger.Info("one-time code issued",
		zap.String("email", email),
		zap.Time("expires_at", record.ExpiresAt))

	s.dispatchCode(email, code)

	return code, nil
}

func (s *Service) dispatchCode(email, code string) {
	if s.mailService == nil {
		s.logger.Warn("mail service not configured, login code not dispatched",
			zap.String("email", email))
		return
	}

	data := map[string]any{
		"AppName":   s.config.App.Name,
		"Code":      code,
		"ExpiresIn": fmt.Sprintf("%d minutes", int(s.config.Auth.CodeTTL.Minutes())),
	}

	subject := fmt.Sprintf("Your Access Code for %s", s.config.App.Name)
	if err := s.mailService.SendTemplate("login_code", []string{email}, subject, data); err != nil {
		// The code is stored and verifiable, so a failed send is logged
		// rather than returned.
		s.logger.Error("failed to send login code email", zap.Error(err), zap.String("email", email))
		return
	}

	s.logger.Info("login code email sent", zap.String("email", email))
}

// VerifyCode checks the submitted code and, on success, exchanges it for a
// new session. A code verifies at most once.
func (s *Service) VerifyCode(email, code, ipAddress, userAgent string) (*session.Session, error) {
	email, err := normalizeEmail(email)
	if err != nil || code == "" {
		return nil, ErrInvalidCode
	}

	var record OneTimeCode
	err = s.db.Where("email = ?", email).First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrInvalidCode
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up one-time code: %w", err)
	}

	if record.Code != code || record.Expired() {
		s.logger.Warn("one-time code rejected", zap.String("email", email))
		return nil, ErrInvalidCode
	}

	// The delete is the race-resolution point: only the caller that removes
	// the row still holding the code it checked proceeds to session
	// creation. Matching on code too keeps a concurrent reissue (which
	// rewrites the row in place) from being consumed by a stale code.
	result := s.db.Where("id = ? AND code = ?", record.ID, record.Code).Delete(&OneTimeCode{})
	if result.Error != nil {
		return nil, fmt.Errorf("failed to consume one-time code: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, ErrInvalidCode
	}

	sess, err := s.sessions.Create(email, ipAddress, userAgent)
	if err != nil {
		return nil, err
	}

	s.logger.Info("one-time code verified", zap.String("email", email))
	return sess, nil
}

// CleanupExpired removes expired codes. Housekeeping only; verification
// rejects expired codes whether or not this has run.
func (s *Service) CleanupExpired() (int64, error) {
	result := s.db.Where("expires_at < ?", time.Now()).Delete(&OneTimeCode{})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to cleanup expired codes: %w", result.Error)
	}

	if result.RowsAffected > 0 {
		s.logger.Info("expired one-time codes removed", zap.Int64("codes_removed", result.RowsAffected))
	}
	return result.RowsAffected, nil
}

// EchoEnabled reports whether issued codes may be returned to the caller.
// Never true in production.
func (s *Service) EchoEnabled() bool {
	return s.config.Auth.EchoCode && !s.config.App.IsProduction()
}

func normalizeEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || strings.Count(email, "@") != 1 {
		return "", ErrInvalidEmail
	}
	return email, nil
}
