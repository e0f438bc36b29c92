// Package notify is the notification sink behind the background worker.
// Actual delivery (SMTP, provider API) is an external concern; the worker
// only ever talks to the Mailer interface.
package notify

import (
	"context"
	"log/slog"

	"github.com/taskforge/taskforge/internal/database/models"
)

type Mailer interface {
	SendWelcome(ctx context.Context, user *models.User) error
	SendPasswordReset(ctx context.Context, email, resetURL string) error
}

// LogMailer writes notifications to the structured log instead of delivering
// them. It is the default sink when no delivery backend is configured.
type LogMailer struct {
	logger *slog.Logger
	from   string
}

func NewLogMailer(logger *slog.Logger, from string) *LogMailer {
	return &LogMailer{logger: logger, from: from}
}

func (m *LogMailer) SendWelcome(ctx context.Context, user *models.User) error {
	m.logger.Info("welcome notification",
		"from", m.from,
		"to", user.Email,
		"name", user.Name,
	)
	return nil
}

func (m *LogMailer) SendPasswordReset(ctx context.Context, email, resetURL string) error {
	m.logger.Info("password reset notification",
		"from", m.from,
		"to", email,
		"reset_url", resetURL,
	)
	return nil
}

var _ Mailer = (*LogMailer)(nil)
