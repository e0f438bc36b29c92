package models

import (
	"time"

	"github.com/google/uuid"
)

// AuthToken is a bearer session credential. Only the SHA-256 digest of the
// opaque token string is stored; the plaintext exists once, in the response
// that issued it.
type AuthToken struct {
	Base
	UserID     uuid.UUID  `gorm:"type:uuid;index;not null" json:"user_id"`
	Name       string     `gorm:"default:'auth_token'" json:"name"`
	TokenHash  string     `gorm:"uniqueIndex;not null" json:"-"`
	ExpiresAt  *time.Time `json:"expires_at,omitempty"`
	LastUsedAt *time.Time `json:"last_used_at,omitempty"`

	User *User `gorm:"foreignKey:UserID" json:"-"`
}

func (AuthToken) TableName() string {
	return "auth_tokens"
}

// Expired reports whether the token has an expiry in the past.
func (t *AuthToken) Expired(now time.Time) bool {
	return t.ExpiresAt != nil && t.ExpiresAt.Before(now)
}
