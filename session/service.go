package session

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mileusna/useragent"
	"github.com/travelingorcas/orcalog/config"
	"github.com/travelingorcas/orcalog/services/logging"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var ErrSessionNotFound = errors.New("session not found or expired")

type service struct {
	config *config.Config
	db     *gorm.DB
	logger *logging.Service
}

func NewService(cfg *config.Config, db *gorm.DB, logger *logging.Service) Service {
	return &service{
		config: cfg,
		db:     db,
		logger: logger,
	}
}

func (s *service) Create(email, ipAddress, userAgent string) (*Session, error) {
	now := time.Now()
	sess := &Session{
		ID:        uuid.NewString(),
		Email:     strings.ToLower(email),
		IPAddress: ipAddress,
		UserAgent: userAgent,
		Browser:   BrowserSummary(userAgent),
		CreatedAt: now,
		ExpiresAt: now.Add(s.config.Auth.SessionTTL()),
	}

	if err := s.db.Create(sess).Error; err != nil {
		s.logger.Error("failed to create session", zap.Error(err), zap.String("email", sess.Email))
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	s.logger.Info("session created",
		zap.String("email", sess.Email),
		zap.String("browser", sess.Browser),
		zap.Time("expires_at", sess.ExpiresAt))
	return sess, nil
}

func (s *service) Get(id string) (*Session, error) {
	if id == "" {
		return nil, ErrSessionNotFound
	}

	var sess Session
	err := s.db.Where("id = ? AND expires_at > ?", id, time.Now()).First(&sess).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up session: %w", err)
	}

	return &sess, nil
}

func (s *service) Delete(id string) error {
	if id == "" {
		return nil
	}

	if err := s.db.Where("id = ?", id).Delete(&Session{}).Error; err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

func (s *service) CleanupExpired() (int64, error) {
	result := s.db.Where("expires_at < ?", time.Now()).Delete(&Session{})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to cleanup expired sessions: %w", result.Error)
	}

	if result.RowsAffected > 0 {
		s.logger.Info("expired sessions removed", zap.Int64("sessions_removed", result.RowsAffected))
	}
	return result.RowsAffected, nil
}

// BrowserSummary condenses a User-Agent header into "Name Version".
func BrowserSummary(userAgentString string) string {
	if userAgentString == "" {
		return "Unknown Browser"
	}

	ua := useragent.Parse(userAgentString)
	if ua.Name == "" {
		return "Unknown Browser"
	}
	if ua.Version != "" {
		return ua.Name + " " + ua.Version
	}
	return ua.Name
}
