package models

import "time"

type Role string

const (
	RoleAdmin   Role = "admin"
	RoleUser    Role = "user"
	RoleManager Role = "manager"
)

type User struct {
	Base
	Name         string     `gorm:"not null" json:"name"`
	Email        string     `gorm:"uniqueIndex;not null" json:"email"` // stored lowercased and trimmed
	PasswordHash string     `gorm:"not null" json:"-"`
	Role         Role       `gorm:"default:'user'" json:"role"`
	LastLoginAt  *time.Time `json:"last_login_at,omitempty"`

	// Relationships
	Projects []Project   `gorm:"foreignKey:OwnerID" json:"-"`
	Tasks    []Task      `gorm:"foreignKey:UserID" json:"-"`
	Tokens   []AuthToken `gorm:"foreignKey:UserID" json:"-"`
}

func (User) TableName() string {
	return "users"
}
