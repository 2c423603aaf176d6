package session

import (
	"time"
)

// Session is a server-side login record. Its ID doubles as the session
// cookie value, so it must be unguessable (a random UUID).
type Session struct {
	ID        string    `json:"id" gorm:"primaryKey;size:36"`
	Email     string    `json:"email" gorm:"size:255;not null;index"`
	IPAddress string    `json:"ip_address" gorm:"size:45"`
	UserAgent string    `json:"user_agent" gorm:"size:500"`
	Browser   string    `json:"browser" gorm:"size:100"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

func (Session) TableName() string {
	return "sessions"
}

// Valid reports whether the session is still live.
func (s *Session) Valid() bool {
	return time.Now().Before(s.ExpiresAt)
}

// Service owns the sessions table. Nothing else writes to it.
type Service interface {
	// Create stores a new session for email expiring after the configured TTL.
	Create(email, ipAddress, userAgent string) (*Session, error)

	// Get returns the session for the given identifier, or ErrSessionNotFound
	// if it does not exist or has expired. Expired rows are left in place.
	Get(id string) (*Session, error)

	// Delete removes a session. Deleting an absent session is not an error.
	Delete(id string) error

	// CleanupExpired removes expired rows. Housekeeping only; validity never
	// depends on it having run.
	CleanupExpired() (int64, error)
}
