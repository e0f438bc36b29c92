package projects

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/taskforge/taskforge/internal/database/models"
	"github.com/taskforge/taskforge/internal/repo"
	"gorm.io/gorm"
)

// OwnerColumn is the column every project query is scoped by.
const OwnerColumn = "owner_id"

var ErrEndBeforeStart = errors.New("end_date must be on or after start_date")

type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

type CreateInput struct {
	Name        string
	Description string
	Status      models.ProjectStatus // empty means pending
	StartDate   time.Time
	EndDate     *time.Time
}

// UpdateInput carries partial-update semantics: nil fields are left alone.
// There is deliberately no owner field; ownership is immutable.
type UpdateInput struct {
	Name        *string
	Description *string
	Status      *models.ProjectStatus
	StartDate   *time.Time
	EndDate     *time.Time
	// ClearEndDate unsets the end date; it wins over EndDate.
	ClearEndDate bool
}

type ListFilter struct {
	Status models.ProjectStatus
}

// Create persists a project for the owner taken from the session context,
// never from the request body.
func (s *Service) Create(ctx context.Context, ownerID uuid.UUID, in CreateInput) (*models.Project, error) {
	if in.EndDate != nil && in.EndDate.Before(in.StartDate) {
		return nil, ErrEndBeforeStart
	}

	status := in.Status
	if status == "" {
		status = models.ProjectStatusPending
	}

	project := models.Project{
		Name:        in.Name,
		Description: in.Description,
		Status:      status,
		OwnerID:     ownerID,
		StartDate:   in.StartDate,
		EndDate:     in.EndDate,
	}

	if err := s.db.WithContext(ctx).Create(&project).Error; err != nil {
		return nil, err
	}
	return &project, nil
}

func (s *Service) Get(ctx context.Context, ownerID, id uuid.UUID) (*models.Project, error) {
	return repo.FindOwned[models.Project](s.db.WithContext(ctx), OwnerColumn, ownerID, id)
}

func (s *Service) List(ctx context.Context, ownerID uuid.UUID, f ListFilter, p repo.Pagination) (*repo.Page[models.Project], error) {
	query := s.db.WithContext(ctx).
		Model(&models.Project{}).
		Scopes(repo.OwnedBy(OwnerColumn, ownerID))

	if f.Status != "" {
		query = query.Where("status = ?", f.Status)
	}

	return repo.ListPage[models.Project](query, p)
}

// Update applies only the supplied fields. The start/end date invariant is
// re-checked against the effective values after the patch.
func (s *Service) Update(ctx context.Context, ownerID, id uuid.UUID, in UpdateInput) (*models.Project, error) {
	project, err := s.Get(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}

	if in.Name != nil {
		project.Name = *in.Name
	}
	if in.Description != nil {
		project.Description = *in.Description
	}
	if in.Status != nil {
		project.Status = *in.Status
	}
	if in.StartDate != nil {
		project.StartDate = *in.StartDate
	}
	if in.ClearEndDate {
		project.EndDate = nil
	} else if in.EndDate != nil {
		project.EndDate = in.EndDate
	}

	if project.EndDate != nil && project.EndDate.Before(project.StartDate) {
		return nil, ErrEndBeforeStart
	}

	if err := s.db.WithContext(ctx).Save(project).Error; err != nil {
		return nil, err
	}
	return project, nil
}

// Delete removes the project and all its tasks in one transaction (hard
// delete, cascading).
func (s *Service) Delete(ctx context.Context, ownerID, id uuid.UUID) error {
	project, err := s.Get(ctx, ownerID, id)
	if err != nil {
		return err
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("project_id = ?", project.ID).Delete(&models.Task{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Project{}, "id = ?", project.ID).Error
	})
}
