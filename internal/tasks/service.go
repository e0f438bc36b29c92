package tasks

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/taskforge/taskforge/internal/database/models"
	"github.com/taskforge/taskforge/internal/projects"
	"github.com/taskforge/taskforge/internal/repo"
	"gorm.io/gorm"
)

// OwnerColumn is the column every task query is scoped by.
const OwnerColumn = "user_id"

// ErrProjectNotOwned covers both a nonexistent project and one owned by
// another user; the two cases are indistinguishable on purpose and surface
// as a validation error on project_id.
var ErrProjectNotOwned = errors.New("project does not exist or is not owned by caller")

type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

type CreateInput struct {
	Title       string
	Description string
	Status      models.TaskStatus   // empty means todo
	Priority    models.TaskPriority // empty means medium
	ProjectID   uuid.UUID
	DueDate     *time.Time
}

// UpdateInput carries partial-update semantics: nil fields are left alone.
// CompletedAt is absent on purpose: it is derived from status transitions.
type UpdateInput struct {
	Title       *string
	Description *string
	Status      *models.TaskStatus
	Priority    *models.TaskPriority
	ProjectID   *uuid.UUID
	DueDate     *time.Time
	// ClearDueDate unsets the due date; it wins over DueDate.
	ClearDueDate bool
}

type ListFilter struct {
	Status    models.TaskStatus
	Priority  models.TaskPriority
	ProjectID *uuid.UUID
	Overdue   bool
}

// checkProject verifies the project exists and is owned by the caller.
func (s *Service) checkProject(ctx context.Context, ownerID, projectID uuid.UUID) error {
	var count int64
	err := s.db.WithContext(ctx).
		Model(&models.Project{}).
		Scopes(repo.OwnedBy(projects.OwnerColumn, ownerID)).
		Where("id = ?", projectID).
		Count(&count).Error
	if err != nil {
		return err
	}
	if count == 0 {
		return ErrProjectNotOwned
	}
	return nil
}

func (s *Service) Create(ctx context.Context, ownerID uuid.UUID, in CreateInput) (*models.Task, error) {
	if err := s.checkProject(ctx, ownerID, in.ProjectID); err != nil {
		return nil, err
	}

	status := in.Status
	if status == "" {
		status = models.TaskStatusTodo
	}
	priority := in.Priority
	if priority == "" {
		priority = models.TaskPriorityMedium
	}

	task := models.Task{
		Title:       in.Title,
		Description: in.Description,
		Status:      status,
		Priority:    priority,
		ProjectID:   in.ProjectID,
		UserID:      ownerID,
		DueDate:     in.DueDate,
	}
	if status == models.TaskStatusCompleted {
		now := time.Now()
		task.CompletedAt = &now
	}

	if err := s.db.WithContext(ctx).Create(&task).Error; err != nil {
		return nil, err
	}
	return &task, nil
}

func (s *Service) Get(ctx context.Context, ownerID, id uuid.UUID) (*models.Task, error) {
	return repo.FindOwned[models.Task](s.db.WithContext(ctx), OwnerColumn, ownerID, id)
}

func (s *Service) List(ctx context.Context, ownerID uuid.UUID, f ListFilter, p repo.Pagination) (*repo.Page[models.Task], error) {
	query := s.db.WithContext(ctx).
		Model(&models.Task{}).
		Scopes(repo.OwnedBy(OwnerColumn, ownerID))

	if f.Status != "" {
		query = query.Where("status = ?", f.Status)
	}
	if f.Priority != "" {
		query = query.Where("priority = ?", f.Priority)
	}
	if f.ProjectID != nil {
		query = query.Where("project_id = ?", *f.ProjectID)
	}
	if f.Overdue {
		// Completed and cancelled tasks are never overdue, whatever the date.
		query = query.
			Where("due_date < ?", time.Now()).
			Where("status IN ?", []models.TaskStatus{models.TaskStatusTodo, models.TaskStatusInProgress})
	}

	return repo.ListPage[models.Task](query, p)
}

// ListForProject authorizes view on the project first (404 if it does not
// exist, 403 if owned by someone else), then pages through its tasks.
func (s *Service) ListForProject(ctx context.Context, ownerID, projectID uuid.UUID, p repo.Pagination) (*repo.Page[models.Task], error) {
	if _, err := repo.FindOwned[models.Project](s.db.WithContext(ctx), projects.OwnerColumn, ownerID, projectID); err != nil {
		return nil, err
	}

	query := s.db.WithContext(ctx).
		Model(&models.Task{}).
		Scopes(repo.OwnedBy(OwnerColumn, ownerID)).
		Where("project_id = ?", projectID)

	return repo.ListPage[models.Task](query, p)
}

// Update applies only the supplied fields. Reassigning project_id re-runs
// the ownership check against the new project. completed_at is stamped
// exactly on the transition into completed and cleared on the transition
// out; re-completing an already-completed task leaves the original stamp.
func (s *Service) Update(ctx context.Context, ownerID, id uuid.UUID, in UpdateInput) (*models.Task, error) {
	task, err := s.Get(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}

	if in.ProjectID != nil && *in.ProjectID != task.ProjectID {
		if err := s.checkProject(ctx, ownerID, *in.ProjectID); err != nil {
			return nil, err
		}
		task.ProjectID = *in.ProjectID
	}

	if in.Title != nil {
		task.Title = *in.Title
	}
	if in.Description != nil {
		task.Description = *in.Description
	}
	if in.Priority != nil {
		task.Priority = *in.Priority
	}
	if in.ClearDueDate {
		task.DueDate = nil
	} else if in.DueDate != nil {
		task.DueDate = in.DueDate
	}

	if in.Status != nil && *in.Status != task.Status {
		previous := task.Status
		task.Status = *in.Status
		switch {
		case task.Status == models.TaskStatusCompleted && previous != models.TaskStatusCompleted:
			now := time.Now()
			task.CompletedAt = &now
		case task.Status != models.TaskStatusCompleted && previous == models.TaskStatusCompleted:
			task.CompletedAt = nil
		}
	}

	if err := s.db.WithContext(ctx).Save(task).Error; err != nil {
		return nil, err
	}
	return task, nil
}

// Delete removes the task only; its project is untouched.
func (s *Service) Delete(ctx context.Context, ownerID, id uuid.UUID) error {
	task, err := s.Get(ctx, ownerID, id)
	if err != nil {
		return err
	}
	return s.db.WithContext(ctx).Delete(&models.Task{}, "id = ?", task.ID).Error
}
