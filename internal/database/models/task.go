package models

import (
	"time"

	"github.com/google/uuid"
)

type TaskStatus string

const (
	TaskStatusTodo       TaskStatus = "todo"
	TaskStatusInProgress TaskStatus = "in_progress"
	TaskStatusCompleted  TaskStatus = "completed"
	TaskStatusCancelled  TaskStatus = "cancelled"
)

func (s TaskStatus) Valid() bool {
	switch s {
	case TaskStatusTodo, TaskStatusInProgress, TaskStatusCompleted, TaskStatusCancelled:
		return true
	}
	return false
}

type TaskPriority string

const (
	TaskPriorityLow    TaskPriority = "low"
	TaskPriorityMedium TaskPriority = "medium"
	TaskPriorityHigh   TaskPriority = "high"
	TaskPriorityUrgent TaskPriority = "urgent"
)

func (p TaskPriority) Valid() bool {
	switch p {
	case TaskPriorityLow, TaskPriorityMedium, TaskPriorityHigh, TaskPriorityUrgent:
		return true
	}
	return false
}

type Task struct {
	Base
	Title       string       `gorm:"not null" json:"title"`
	Description string       `json:"description,omitempty"`
	Status      TaskStatus   `gorm:"not null;index;default:'todo'" json:"status"`
	Priority    TaskPriority `gorm:"not null;index;default:'medium'" json:"priority"`
	ProjectID   uuid.UUID    `gorm:"type:uuid;index;not null" json:"project_id"` // must reference a project owned by UserID
	UserID      uuid.UUID    `gorm:"type:uuid;index;not null" json:"user_id"`
	DueDate     *time.Time   `json:"due_date,omitempty"`
	CompletedAt *time.Time   `json:"completed_at,omitempty"` // derived from status transitions, never client-supplied

	// Relationships
	Project *Project `gorm:"foreignKey:ProjectID" json:"-"`
	User    *User    `gorm:"foreignKey:UserID" json:"-"`
}

func (Task) TableName() string {
	return "tasks"
}
