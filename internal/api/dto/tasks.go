package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/taskforge/taskforge/internal/api/validation"
	"github.com/taskforge/taskforge/internal/database/models"
	"github.com/taskforge/taskforge/internal/tasks"
)

type CreateTaskRequest struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Status      string `json:"status,omitempty"`
	Priority    string `json:"priority,omitempty"`
	ProjectID   string `json:"project_id"`
	DueDate     string `json:"due_date,omitempty"`
}

func (r CreateTaskRequest) Validate() map[string]string {
	errors := make(map[string]string)

	if r.Title == "" {
		errors["title"] = "Title is required"
	}
	if r.Status != "" && !models.TaskStatus(r.Status).Valid() {
		errors["status"] = "Invalid task status"
	}
	if r.Priority != "" && !models.TaskPriority(r.Priority).Valid() {
		errors["priority"] = "Invalid task priority"
	}
	if r.ProjectID == "" {
		errors["project_id"] = "Project is required"
	} else if !validation.IsValidUUID(r.ProjectID) {
		errors["project_id"] = "Project ID must be a valid UUID"
	}
	if r.DueDate != "" {
		if _, err := validation.ParseDate(r.DueDate); err != nil {
			errors["due_date"] = "Due date must be a valid date"
		}
	}

	return errors
}

// ToInput assumes Validate passed.
func (r CreateTaskRequest) ToInput() tasks.CreateInput {
	projectID, _ := uuid.Parse(r.ProjectID)
	in := tasks.CreateInput{
		Title:       r.Title,
		Description: r.Description,
		Status:      models.TaskStatus(r.Status),
		Priority:    models.TaskPriority(r.Priority),
		ProjectID:   projectID,
	}
	if r.DueDate != "" {
		due, _ := validation.ParseDate(r.DueDate)
		in.DueDate = &due
	}
	return in
}

// UpdateTaskRequest uses pointers for partial-update semantics. There is no
// completed_at field on purpose: the server derives it from the status
// transition and a client-supplied value would be ignored anyway.
type UpdateTaskRequest struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	Status      *string `json:"status,omitempty"`
	Priority    *string `json:"priority,omitempty"`
	ProjectID   *string `json:"project_id,omitempty"`
	DueDate     *string `json:"due_date,omitempty"`
}

func (r UpdateTaskRequest) Validate() map[string]string {
	errors := make(map[string]string)

	if r.Title != nil && *r.Title == "" {
		errors["title"] = "Title cannot be empty"
	}
	if r.Status != nil && !models.TaskStatus(*r.Status).Valid() {
		errors["status"] = "Invalid task status"
	}
	if r.Priority != nil && !models.TaskPriority(*r.Priority).Valid() {
		errors["priority"] = "Invalid task priority"
	}
	if r.ProjectID != nil && !validation.IsValidUUID(*r.ProjectID) {
		errors["project_id"] = "Project ID must be a valid UUID"
	}
	if r.DueDate != nil && *r.DueDate != "" {
		if _, err := validation.ParseDate(*r.DueDate); err != nil {
			errors["due_date"] = "Due date must be a valid date"
		}
	}

	return errors
}

func (r UpdateTaskRequest) ToInput() tasks.UpdateInput {
	in := tasks.UpdateInput{
		Title:       r.Title,
		Description: r.Description,
	}
	if r.Status != nil {
		status := models.TaskStatus(*r.Status)
		in.Status = &status
	}
	if r.Priority != nil {
		priority := models.TaskPriority(*r.Priority)
		in.Priority = &priority
	}
	if r.ProjectID != nil {
		projectID, _ := uuid.Parse(*r.ProjectID)
		in.ProjectID = &projectID
	}
	if r.DueDate != nil {
		// An explicit empty string unsets the due date.
		if *r.DueDate == "" {
			in.ClearDueDate = true
		} else {
			due, _ := validation.ParseDate(*r.DueDate)
			in.DueDate = &due
		}
	}
	return in
}

type TaskDTO struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Status      string     `json:"status"`
	Priority    string     `json:"priority"`
	ProjectID   string     `json:"project_id"`
	UserID      string     `json:"user_id"`
	DueDate     *time.Time `json:"due_date,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

func TaskToDTO(t *models.Task) TaskDTO {
	return TaskDTO{
		ID:          t.ID.String(),
		Title:       t.Title,
		Description: t.Description,
		Status:      string(t.Status),
		Priority:    string(t.Priority),
		ProjectID:   t.ProjectID.String(),
		UserID:      t.UserID.String(),
		DueDate:     t.DueDate,
		CompletedAt: t.CompletedAt,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}
