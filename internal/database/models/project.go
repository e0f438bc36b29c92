package models

import (
	"time"

	"github.com/google/uuid"
)

type ProjectStatus string

const (
	ProjectStatusPending   ProjectStatus = "pending"
	ProjectStatusActive    ProjectStatus = "active"
	ProjectStatusCompleted ProjectStatus = "completed"
	ProjectStatusCancelled ProjectStatus = "cancelled"
)

func (s ProjectStatus) Valid() bool {
	switch s {
	case ProjectStatusPending, ProjectStatusActive, ProjectStatusCompleted, ProjectStatusCancelled:
		return true
	}
	return false
}

type Project struct {
	Base
	Name        string        `gorm:"not null" json:"name"`
	Description string        `json:"description,omitempty"`
	Status      ProjectStatus `gorm:"not null;index;default:'pending'" json:"status"`
	OwnerID     uuid.UUID     `gorm:"type:uuid;index;not null" json:"owner_id"` // immutable after creation
	StartDate   time.Time     `gorm:"not null" json:"start_date"`
	EndDate     *time.Time    `json:"end_date,omitempty"` // must be >= StartDate when set

	// Relationships
	Owner *User  `gorm:"foreignKey:OwnerID" json:"-"`
	Tasks []Task `gorm:"foreignKey:ProjectID" json:"-"`
}

func (Project) TableName() string {
	return "projects"
}
