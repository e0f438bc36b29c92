package testutil

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/taskforge/taskforge/internal/auth"
	"github.com/taskforge/taskforge/internal/database/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// SetupTestDB creates an in-memory SQLite database for testing
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}

	err = db.AutoMigrate(
		&models.User{},
		&models.AuthToken{},
		&models.PasswordReset{},
		&models.Project{},
		&models.Task{},
	)
	if err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	return db
}

// NewLogger returns a logger that discards nothing but stays quiet at info.
func NewLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(testWriter{}, &slog.HandlerOptions{Level: slog.LevelError}))
}

type testWriter struct{}

func (testWriter) Write(p []byte) (int, error) { return len(p), nil }

// NewAuthService wires an auth service without a queue client.
func NewAuthService(db *gorm.DB) *auth.Service {
	issuer := auth.NewTokenIssuer(db, 24*time.Hour)
	return auth.NewService(db, issuer, nil, NewLogger(), time.Hour, "http://localhost/reset-password")
}

// CreateTestUser creates a user with password "password123"
func CreateTestUser(t *testing.T, db *gorm.DB, email string) *models.User {
	t.Helper()

	hash, err := auth.HashPassword("password123")
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	user := &models.User{
		Base:         models.Base{ID: uuid.New()},
		Name:         "Test User",
		Email:        email,
		PasswordHash: hash,
		Role:         models.RoleUser,
	}

	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}

	return user
}

// CreateTestProject creates a project owned by the given user
func CreateTestProject(t *testing.T, db *gorm.DB, ownerID uuid.UUID, name string) *models.Project {
	t.Helper()

	project := &models.Project{
		Base:      models.Base{ID: uuid.New()},
		Name:      name,
		Status:    models.ProjectStatusPending,
		OwnerID:   ownerID,
		StartDate: time.Now().Truncate(24 * time.Hour),
	}

	if err := db.Create(project).Error; err != nil {
		t.Fatalf("failed to create test project: %v", err)
	}

	return project
}

// CreateTestTask creates a task in the given project for the given user
func CreateTestTask(t *testing.T, db *gorm.DB, userID, projectID uuid.UUID, title string) *models.Task {
	t.Helper()

	task := &models.Task{
		Base:      models.Base{ID: uuid.New()},
		Title:     title,
		Status:    models.TaskStatusTodo,
		Priority:  models.TaskPriorityMedium,
		ProjectID: projectID,
		UserID:    userID,
	}

	if err := db.Create(task).Error; err != nil {
		t.Fatalf("failed to create test task: %v", err)
	}

	return task
}

// TestSetup holds the common test dependencies
type TestSetup struct {
	DB    *gorm.DB
	Auth  *auth.Service
	User  *models.User
	Token string
}

// NewTestContext creates a complete setup with DB, auth service, one user,
// and a valid session token for that user.
func NewTestContext(t *testing.T) *TestSetup {
	t.Helper()

	db := SetupTestDB(t)
	authService := NewAuthService(db)
	user := CreateTestUser(t, db, "test-"+uuid.New().String()[:8]+"@example.com")

	session, err := authService.Login(context.Background(), user.Email, "password123")
	if err != nil {
		t.Fatalf("failed to log in test user: %v", err)
	}

	return &TestSetup{
		DB:    db,
		Auth:  authService,
		User:  user,
		Token: session.Token,
	}
}

// Cleanup closes the test database
func (ts *TestSetup) Cleanup() {
	if ts.DB != nil {
		sqlDB, err := ts.DB.DB()
		if err == nil {
			sqlDB.Close()
		}
	}
}

// AuthenticatedRequest creates an HTTP request with a bearer token
func AuthenticatedRequest(t *testing.T, method, path string, body interface{}, token string) *http.Request {
	t.Helper()

	var reqBody *bytes.Buffer
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to marshal request body: %v", err)
		}
		reqBody = bytes.NewBuffer(jsonData)
	} else {
		reqBody = bytes.NewBuffer(nil)
	}

	req := httptest.NewRequest(method, path, reqBody)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	return req
}

// UnauthenticatedRequest creates an HTTP request without a token
func UnauthenticatedRequest(t *testing.T, method, path string, body interface{}) *http.Request {
	t.Helper()
	return AuthenticatedRequest(t, method, path, body, "")
}

// ParseJSONResponse parses the response body into the given struct
func ParseJSONResponse(t *testing.T, rr *httptest.ResponseRecorder, v interface{}) {
	t.Helper()

	if err := json.Unmarshal(rr.Body.Bytes(), v); err != nil {
		t.Fatalf("failed to parse response body: %v. Body: %s", err, rr.Body.String())
	}
}
