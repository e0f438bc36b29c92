package models

import "time"

// PasswordReset is a single-use, time-limited reset credential bound to an
// email address. Hashed at rest like auth tokens; the row is replaced on
// re-request and deleted on successful reset.
type PasswordReset struct {
	Base
	Email     string    `gorm:"index;not null" json:"email"`
	TokenHash string    `gorm:"uniqueIndex;not null" json:"-"`
	ExpiresAt time.Time `gorm:"not null" json:"expires_at"`
}

func (PasswordReset) TableName() string {
	return "password_resets"
}

func (r *PasswordReset) Expired(now time.Time) bool {
	return r.ExpiresAt.Before(now)
}
