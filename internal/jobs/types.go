package jobs

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/taskforge/taskforge/pkg/queue"
)

// Task type names
const (
	TypeWelcomeEmail  = "notify:welcome"
	TypePasswordReset = "notify:password_reset"
)

// Notification jobs own their retry budget: 3 attempts, 30s per attempt,
// dropped 5 minutes after enqueue. Asynq logs exhausted tasks; nothing
// propagates back to the request that enqueued them.
func notifyOptions(queueName string) []asynq.Option {
	return []asynq.Option{
		asynq.Queue(queueName),
		asynq.MaxRetry(3),
		asynq.Timeout(30 * time.Second),
		asynq.Deadline(time.Now().Add(5 * time.Minute)),
	}
}

// WelcomeEmailPayload contains the data for a post-registration welcome
// notification.
type WelcomeEmailPayload struct {
	UserID uuid.UUID `json:"user_id"`
	Email  string    `json:"email"`
	Name   string    `json:"name"`
}

func NewWelcomeEmailTask(payload WelcomeEmailPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeWelcomeEmail, data, notifyOptions(queue.QueueLow)...), nil
}

// PasswordResetPayload carries the out-of-band reset link for an email.
type PasswordResetPayload struct {
	Email    string `json:"email"`
	ResetURL string `json:"reset_url"`
}

func NewPasswordResetTask(payload PasswordResetPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypePasswordReset, data, notifyOptions(queue.QueueCritical)...), nil
}
