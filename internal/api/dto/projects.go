package dto

import (
	"time"

	"github.com/taskforge/taskforge/internal/api/validation"
	"github.com/taskforge/taskforge/internal/database/models"
	"github.com/taskforge/taskforge/internal/projects"
)

type CreateProjectRequest struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Status      string `json:"status,omitempty"`
	StartDate   string `json:"start_date"`
	EndDate     string `json:"end_date,omitempty"`
}

func (r CreateProjectRequest) Validate() map[string]string {
	errors := make(map[string]string)

	if r.Name == "" {
		errors["name"] = "Name is required"
	}
	if r.Status != "" && !models.ProjectStatus(r.Status).Valid() {
		errors["status"] = "Invalid project status"
	}
	if r.StartDate == "" {
		errors["start_date"] = "Start date is required"
	} else if _, err := validation.ParseDate(r.StartDate); err != nil {
		errors["start_date"] = "Start date must be a valid date"
	}
	if r.EndDate != "" {
		if _, err := validation.ParseDate(r.EndDate); err != nil {
			errors["end_date"] = "End date must be a valid date"
		}
	}

	return errors
}

// ToInput assumes Validate passed.
func (r CreateProjectRequest) ToInput() projects.CreateInput {
	start, _ := validation.ParseDate(r.StartDate)
	in := projects.CreateInput{
		Name:        r.Name,
		Description: r.Description,
		Status:      models.ProjectStatus(r.Status),
		StartDate:   start,
	}
	if r.EndDate != "" {
		end, _ := validation.ParseDate(r.EndDate)
		in.EndDate = &end
	}
	return in
}

// UpdateProjectRequest uses pointers for partial-update semantics: absent
// fields stay untouched. An owner_id in the body is simply not represented
// here, so ownership can never be reassigned through the API.
type UpdateProjectRequest struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
	Status      *string `json:"status,omitempty"`
	StartDate   *string `json:"start_date,omitempty"`
	EndDate     *string `json:"end_date,omitempty"`
}

func (r UpdateProjectRequest) Validate() map[string]string {
	errors := make(map[string]string)

	if r.Name != nil && *r.Name == "" {
		errors["name"] = "Name cannot be empty"
	}
	if r.Status != nil && !models.ProjectStatus(*r.Status).Valid() {
		errors["status"] = "Invalid project status"
	}
	if r.StartDate != nil {
		if _, err := validation.ParseDate(*r.StartDate); err != nil {
			errors["start_date"] = "Start date must be a valid date"
		}
	}
	if r.EndDate != nil && *r.EndDate != "" {
		if _, err := validation.ParseDate(*r.EndDate); err != nil {
			errors["end_date"] = "End date must be a valid date"
		}
	}

	return errors
}

func (r UpdateProjectRequest) ToInput() projects.UpdateInput {
	in := projects.UpdateInput{
		Name:        r.Name,
		Description: r.Description,
	}
	if r.Status != nil {
		status := models.ProjectStatus(*r.Status)
		in.Status = &status
	}
	if r.StartDate != nil {
		start, _ := validation.ParseDate(*r.StartDate)
		in.StartDate = &start
	}
	if r.EndDate != nil {
		// An explicit empty string unsets the end date.
		if *r.EndDate == "" {
			in.ClearEndDate = true
		} else {
			end, _ := validation.ParseDate(*r.EndDate)
			in.EndDate = &end
		}
	}
	return in
}

type ProjectDTO struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description,omitempty"`
	Status      string     `json:"status"`
	OwnerID     string     `json:"owner_id"`
	StartDate   time.Time  `json:"start_date"`
	EndDate     *time.Time `json:"end_date,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

func ProjectToDTO(p *models.Project) ProjectDTO {
	return ProjectDTO{
		ID:          p.ID.String(),
		Name:        p.Name,
		Description: p.Description,
		Status:      string(p.Status),
		OwnerID:     p.OwnerID.String(),
		StartDate:   p.StartDate,
		EndDate:     p.EndDate,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}
