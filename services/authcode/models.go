package authcode

import (
	"time"
)

// OneTimeCode is an outstanding login code for an email address.
// At most one code exists per email, enforced by the unique index: issuing
// a new one replaces the row, and verification deletes the row it matched.
type OneTimeCode struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Email     string    `json:"email" gorm:"size:255;not null;uniqueIndex"`
	Code      string    `json:"-" gorm:"size:6;not null"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

func (OneTimeCode) TableName() string {
	return "auth_codes"
}

func (c *OneTimeCode) Expired() bool {
	return !time.Now().Before(c.ExpiresAt)
}
