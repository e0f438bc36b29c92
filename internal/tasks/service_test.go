package tasks_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taskforge/taskforge/internal/database/models"
	"github.com/taskforge/taskforge/internal/repo"
	"github.com/taskforge/taskforge/internal/tasks"
	"github.com/taskforge/taskforge/internal/testutil"
)

func TestCreate(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := tasks.NewService(db)
	owner := testutil.CreateTestUser(t, db, "owner@example.com")
	project := testutil.CreateTestProject(t, db, owner.ID, "Task Home")

	task, err := svc.Create(context.Background(), owner.ID, tasks.CreateInput{
		Title:     "Write docs",
		ProjectID: project.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, models.TaskStatusTodo, task.Status)
	assert.Equal(t, models.TaskPriorityMedium, task.Priority)
	assert.Equal(t, owner.ID, task.UserID)
	assert.Nil(t, task.CompletedAt)
}

func TestCreate_CompletedGetsStamp(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := tasks.NewService(db)
	owner := testutil.CreateTestUser(t, db, "owner@example.com")
	project := testutil.CreateTestProject(t, db, owner.ID, "Task Home")

	task, err := svc.Create(context.Background(), owner.ID, tasks.CreateInput{
		Title:     "Born done",
		Status:    models.TaskStatusCompleted,
		ProjectID: project.ID,
	})
	require.NoError(t, err)
	require.NotNil(t, task.CompletedAt)
	assert.WithinDuration(t, time.Now(), *task.CompletedAt, time.Minute)
}

func TestCreate_ForeignProjectRejected(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := tasks.NewService(db)
	owner := testutil.CreateTestUser(t, db, "owner@example.com")
	other := testutil.CreateTestUser(t, db, "other@example.com")
	foreign := testutil.CreateTestProject(t, db, other.ID, "Not Yours")

	_, err := svc.Create(context.Background(), owner.ID, tasks.CreateInput{
		Title:     "Sneaky",
		ProjectID: foreign.ID,
	})
	assert.ErrorIs(t, err, tasks.ErrProjectNotOwned)

	// A nonexistent project fails the same way.
	_, err = svc.Create(context.Background(), owner.ID, tasks.CreateInput{
		Title:     "Nowhere",
		ProjectID: uuid.New(),
	})
	assert.ErrorIs(t, err, tasks.ErrProjectNotOwned)

	var count int64
	require.NoError(t, db.Model(&models.Task{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestUpdate_CompletedAtLifecycle(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := tasks.NewService(db)
	owner := testutil.CreateTestUser(t, db, "owner@example.com")
	project := testutil.CreateTestProject(t, db, owner.ID, "Task Home")
	task := testutil.CreateTestTask(t, db, owner.ID, project.ID, "Lifecycle")

	completed := models.TaskStatusCompleted
	updated, err := svc.Update(context.Background(), owner.ID, task.ID, tasks.UpdateInput{
		Status: &completed,
	})
	require.NoError(t, err)
	require.NotNil(t, updated.CompletedAt)
	stamp := *updated.CompletedAt

	// Re-completing keeps the original stamp. The reload comes back in UTC
	// without the monotonic reading, so compare instants, not representations.
	updated, err = svc.Update(context.Background(), owner.ID, task.ID, tasks.UpdateInput{
		Status: &completed,
	})
	require.NoError(t, err)
	require.NotNil(t, updated.CompletedAt)
	assert.True(t, stamp.Equal(*updated.CompletedAt),
		"completed_at changed on re-complete: had %v, got %v", stamp, *updated.CompletedAt)

	// Moving out of completed clears it.
	inProgress := models.TaskStatusInProgress
	updated, err = svc.Update(context.Background(), owner.ID, task.ID, tasks.UpdateInput{
		Status: &inProgress,
	})
	require.NoError(t, err)
	assert.Nil(t, updated.CompletedAt)
}

func TestUpdate_ReassignProject(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := tasks.NewService(db)
	owner := testutil.CreateTestUser(t, db, "owner@example.com")
	other := testutil.CreateTestUser(t, db, "other@example.com")
	home := testutil.CreateTestProject(t, db, owner.ID, "Home")
	target := testutil.CreateTestProject(t, db, owner.ID, "Target")
	foreign := testutil.CreateTestProject(t, db, other.ID, "Foreign")
	task := testutil.CreateTestTask(t, db, owner.ID, home.ID, "Mover")

	updated, err := svc.Update(context.Background(), owner.ID, task.ID, tasks.UpdateInput{
		ProjectID: &target.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, target.ID, updated.ProjectID)

	// Reassignment to a project the caller does not own is rejected.
	_, err = svc.Update(context.Background(), owner.ID, task.ID, tasks.UpdateInput{
		ProjectID: &foreign.ID,
	})
	assert.ErrorIs(t, err, tasks.ErrProjectNotOwned)

	var stored models.Task
	require.NoError(t, db.First(&stored, "id = ?", task.ID).Error)
	assert.Equal(t, target.ID, stored.ProjectID)
}

func TestList_Filters(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := tasks.NewService(db)
	owner := testutil.CreateTestUser(t, db, "owner@example.com")
	project := testutil.CreateTestProject(t, db, owner.ID, "Filtered")

	testutil.CreateTestTask(t, db, owner.ID, project.ID, "Todo Task")
	done := testutil.CreateTestTask(t, db, owner.ID, project.ID, "Done Task")
	require.NoError(t, db.Model(done).Update("status", models.TaskStatusCompleted).Error)
	urgent := testutil.CreateTestTask(t, db, owner.ID, project.ID, "Urgent Task")
	require.NoError(t, db.Model(urgent).Update("priority", models.TaskPriorityHigh).Error)

	page, err := svc.List(context.Background(), owner.ID,
		tasks.ListFilter{Status: models.TaskStatusCompleted}, repo.Pagination{})
	require.NoError(t, err)
	require.Equal(t, int64(1), page.Total)
	assert.Equal(t, done.ID, page.Data[0].ID)

	page, err = svc.List(context.Background(), owner.ID,
		tasks.ListFilter{Priority: models.TaskPriorityHigh}, repo.Pagination{})
	require.NoError(t, err)
	require.Equal(t, int64(1), page.Total)
	assert.Equal(t, urgent.ID, page.Data[0].ID)

	pid := project.ID
	page, err = svc.List(context.Background(), owner.ID,
		tasks.ListFilter{ProjectID: &pid}, repo.Pagination{})
	require.NoError(t, err)
	assert.Equal(t, int64(3), page.Total)
}

func TestList_Overdue(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := tasks.NewService(db)
	owner := testutil.CreateTestUser(t, db, "owner@example.com")
	project := testutil.CreateTestProject(t, db, owner.ID, "Deadlines")

	past := time.Now().Add(-48 * time.Hour)
	future := time.Now().Add(48 * time.Hour)

	overdue := testutil.CreateTestTask(t, db, owner.ID, project.ID, "Late")
	require.NoError(t, db.Model(overdue).Update("due_date", past).Error)

	// Completed tasks are never overdue, no matter the due date.
	finished := testutil.CreateTestTask(t, db, owner.ID, project.ID, "Late But Done")
	require.NoError(t, db.Model(finished).Updates(map[string]interface{}{
		"due_date": past,
		"status":   models.TaskStatusCompleted,
	}).Error)

	upcoming := testutil.CreateTestTask(t, db, owner.ID, project.ID, "On Time")
	require.NoError(t, db.Model(upcoming).Update("due_date", future).Error)

	// No due date means no deadline to miss.
	testutil.CreateTestTask(t, db, owner.ID, project.ID, "Unscheduled")

	page, err := svc.List(context.Background(), owner.ID,
		tasks.ListFilter{Overdue: true}, repo.Pagination{})
	require.NoError(t, err)
	require.Equal(t, int64(1), page.Total)
	assert.Equal(t, overdue.ID, page.Data[0].ID)
}

func TestListForProject(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := tasks.NewService(db)
	owner := testutil.CreateTestUser(t, db, "owner@example.com")
	other := testutil.CreateTestUser(t, db, "other@example.com")
	project := testutil.CreateTestProject(t, db, owner.ID, "Mine")
	foreign := testutil.CreateTestProject(t, db, other.ID, "Theirs")

	testutil.CreateTestTask(t, db, owner.ID, project.ID, "One")
	testutil.CreateTestTask(t, db, owner.ID, project.ID, "Two")

	page, err := svc.ListForProject(context.Background(), owner.ID, project.ID, repo.Pagination{})
	require.NoError(t, err)
	assert.Equal(t, int64(2), page.Total)

	_, err = svc.ListForProject(context.Background(), owner.ID, foreign.ID, repo.Pagination{})
	assert.ErrorIs(t, err, repo.ErrForbidden)

	_, err = svc.ListForProject(context.Background(), owner.ID, uuid.New(), repo.Pagination{})
	assert.ErrorIs(t, err, repo.ErrNotFound)
}

func TestDelete(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := tasks.NewService(db)
	owner := testutil.CreateTestUser(t, db, "owner@example.com")
	project := testutil.CreateTestProject(t, db, owner.ID, "Sturdy")
	task := testutil.CreateTestTask(t, db, owner.ID, project.ID, "Disposable")

	require.NoError(t, svc.Delete(context.Background(), owner.ID, task.ID))

	var taskCount int64
	require.NoError(t, db.Model(&models.Task{}).Where("id = ?", task.ID).Count(&taskCount).Error)
	assert.Zero(t, taskCount)

	// The parent project stays put.
	var stored models.Project
	assert.NoError(t, db.First(&stored, "id = ?", project.ID).Error)
}
