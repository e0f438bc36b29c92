package jobs_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taskforge/taskforge/internal/database/models"
	"github.com/taskforge/taskforge/internal/jobs"
	"github.com/taskforge/taskforge/internal/testutil"
)

// recordingMailer captures sends instead of delivering them.
type recordingMailer struct {
	welcomes []string
	resets   []string
	fail     error
}

func (m *recordingMailer) SendWelcome(_ context.Context, user *models.User) error {
	if m.fail != nil {
		return m.fail
	}
	m.welcomes = append(m.welcomes, user.Email)
	return nil
}

func (m *recordingMailer) SendPasswordReset(_ context.Context, email, resetURL string) error {
	if m.fail != nil {
		return m.fail
	}
	m.resets = append(m.resets, email+" "+resetURL)
	return nil
}

func TestHandleWelcomeEmail(t *testing.T) {
	db := testutil.SetupTestDB(t)
	user := testutil.CreateTestUser(t, db, "welcome@example.com")
	mailer := &recordingMailer{}
	handler := jobs.NewHandler(db, testutil.NewLogger(), mailer)

	task, err := jobs.NewWelcomeEmailTask(jobs.WelcomeEmailPayload{
		UserID: user.ID,
		Email:  user.Email,
		Name:   user.Name,
	})
	require.NoError(t, err)
	assert.Equal(t, jobs.TypeWelcomeEmail, task.Type())

	require.NoError(t, handler.HandleWelcomeEmail(context.Background(), task))
	assert.Equal(t, []string{"welcome@example.com"}, mailer.welcomes)
}

func TestHandleWelcomeEmail_MissingUser(t *testing.T) {
	db := testutil.SetupTestDB(t)
	mailer := &recordingMailer{}
	handler := jobs.NewHandler(db, testutil.NewLogger(), mailer)

	task, err := jobs.NewWelcomeEmailTask(jobs.WelcomeEmailPayload{
		UserID: uuid.New(),
		Email:  "gone@example.com",
	})
	require.NoError(t, err)

	// A deleted user is not a retryable failure.
	assert.NoError(t, handler.HandleWelcomeEmail(context.Background(), task))
	assert.Empty(t, mailer.welcomes)
}

func TestHandleWelcomeEmail_BadPayload(t *testing.T) {
	db := testutil.SetupTestDB(t)
	handler := jobs.NewHandler(db, testutil.NewLogger(), &recordingMailer{})

	task := asynq.NewTask(jobs.TypeWelcomeEmail, []byte("not json"))
	assert.Error(t, handler.HandleWelcomeEmail(context.Background(), task))
}

func TestHandlePasswordReset(t *testing.T) {
	db := testutil.SetupTestDB(t)
	mailer := &recordingMailer{}
	handler := jobs.NewHandler(db, testutil.NewLogger(), mailer)

	task, err := jobs.NewPasswordResetTask(jobs.PasswordResetPayload{
		Email:    "reset@example.com",
		ResetURL: "http://localhost:3000/reset-password?email=reset%40example.com&token=abc",
	})
	require.NoError(t, err)
	assert.Equal(t, jobs.TypePasswordReset, task.Type())

	require.NoError(t, handler.HandlePasswordReset(context.Background(), task))
	require.Len(t, mailer.resets, 1)
	assert.Contains(t, mailer.resets[0], "reset@example.com")
	assert.Contains(t, mailer.resets[0], "token=abc")
}

func TestHandlePasswordReset_MailerFailurePropagates(t *testing.T) {
	db := testutil.SetupTestDB(t)
	sendErr := errors.New("smtp down")
	handler := jobs.NewHandler(db, testutil.NewLogger(), &recordingMailer{fail: sendErr})

	task, err := jobs.NewPasswordResetTask(jobs.PasswordResetPayload{
		Email:    "reset@example.com",
		ResetURL: "http://localhost:3000/reset-password",
	})
	require.NoError(t, err)

	// Delivery failures bubble up so the queue retries the task.
	assert.ErrorIs(t, handler.HandlePasswordReset(context.Background(), task), sendErr)
}
