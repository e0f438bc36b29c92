package repo_test

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taskforge/taskforge/internal/database/models"
	"github.com/taskforge/taskforge/internal/repo"
	"github.com/taskforge/taskforge/internal/testutil"
)

func TestFindOwned(t *testing.T) {
	db := testutil.SetupTestDB(t)
	owner := testutil.CreateTestUser(t, db, "owner@example.com")
	intruder := testutil.CreateTestUser(t, db, "intruder@example.com")
	project := testutil.CreateTestProject(t, db, owner.ID, "Scoped Project")

	found, err := repo.FindOwned[models.Project](db, "owner_id", owner.ID, project.ID)
	require.NoError(t, err)
	assert.Equal(t, project.ID, found.ID)

	// Existing row under another owner is forbidden, not missing.
	_, err = repo.FindOwned[models.Project](db, "owner_id", intruder.ID, project.ID)
	assert.ErrorIs(t, err, repo.ErrForbidden)

	_, err = repo.FindOwned[models.Project](db, "owner_id", owner.ID, uuid.New())
	assert.ErrorIs(t, err, repo.ErrNotFound)
}

func TestOwnedByExcludesForeignRows(t *testing.T) {
	db := testutil.SetupTestDB(t)
	owner := testutil.CreateTestUser(t, db, "owner@example.com")
	other := testutil.CreateTestUser(t, db, "other@example.com")

	testutil.CreateTestProject(t, db, owner.ID, "Mine")
	testutil.CreateTestProject(t, db, other.ID, "Theirs")

	var projects []models.Project
	err := db.Scopes(repo.OwnedBy("owner_id", owner.ID)).Find(&projects).Error
	require.NoError(t, err)
	require.Len(t, projects, 1)
	assert.Equal(t, "Mine", projects[0].Name)
}

func TestPaginationNormalize(t *testing.T) {
	p := repo.Pagination{Page: 0, PerPage: 0}
	p.Normalize()
	assert.Equal(t, 1, p.Page)
	assert.Equal(t, repo.DefaultPerPage, p.PerPage)

	p = repo.Pagination{Page: -3, PerPage: 500}
	p.Normalize()
	assert.Equal(t, 1, p.Page)
	assert.Equal(t, repo.MaxPerPage, p.PerPage)

	p = repo.Pagination{Page: 3, PerPage: 25}
	assert.Equal(t, 50, p.Offset())
}

func TestListPage(t *testing.T) {
	db := testutil.SetupTestDB(t)
	owner := testutil.CreateTestUser(t, db, "pages@example.com")
	for i := 0; i < 25; i++ {
		testutil.CreateTestProject(t, db, owner.ID, fmt.Sprintf("Project %02d", i))
	}

	query := db.Model(&models.Project{}).Scopes(repo.OwnedBy("owner_id", owner.ID))
	page, err := repo.ListPage[models.Project](query, repo.Pagination{Page: 1, PerPage: 10})
	require.NoError(t, err)
	assert.Len(t, page.Data, 10)
	assert.Equal(t, int64(25), page.Total)
	assert.Equal(t, 1, page.CurrentPage)
	assert.Equal(t, 3, page.LastPage)
	assert.Equal(t, 10, page.PerPage)
	assert.Equal(t, 1, page.From)
	assert.Equal(t, 10, page.To)
}

func TestListPage_LastPartialPage(t *testing.T) {
	db := testutil.SetupTestDB(t)
	owner := testutil.CreateTestUser(t, db, "partial@example.com")
	for i := 0; i < 25; i++ {
		testutil.CreateTestProject(t, db, owner.ID, fmt.Sprintf("Project %02d", i))
	}

	query := db.Model(&models.Project{}).Scopes(repo.OwnedBy("owner_id", owner.ID))
	page, err := repo.ListPage[models.Project](query, repo.Pagination{Page: 3, PerPage: 10})
	require.NoError(t, err)
	assert.Len(t, page.Data, 5)
	assert.Equal(t, 21, page.From)
	assert.Equal(t, 25, page.To)
}

func TestListPage_Empty(t *testing.T) {
	db := testutil.SetupTestDB(t)
	owner := testutil.CreateTestUser(t, db, "empty@example.com")

	query := db.Model(&models.Project{}).Scopes(repo.OwnedBy("owner_id", owner.ID))
	page, err := repo.ListPage[models.Project](query, repo.Pagination{})
	require.NoError(t, err)
	assert.Empty(t, page.Data)
	assert.Equal(t, int64(0), page.Total)
	assert.Equal(t, 1, page.LastPage)
	assert.Zero(t, page.From)
	assert.Zero(t, page.To)
}

func TestListPage_BeyondLastPage(t *testing.T) {
	db := testutil.SetupTestDB(t)
	owner := testutil.CreateTestUser(t, db, "beyond@example.com")
	for i := 0; i < 5; i++ {
		testutil.CreateTestProject(t, db, owner.ID, fmt.Sprintf("Project %d", i))
	}

	query := db.Model(&models.Project{}).Scopes(repo.OwnedBy("owner_id", owner.ID))
	page, err := repo.ListPage[models.Project](query, repo.Pagination{Page: 4, PerPage: 10})
	require.NoError(t, err)
	assert.Empty(t, page.Data)
	assert.Equal(t, int64(5), page.Total)
	assert.Equal(t, 4, page.CurrentPage)
	assert.Equal(t, 1, page.LastPage)
}
