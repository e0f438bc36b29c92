package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/hibiken/asynq"
	"github.com/taskforge/taskforge/internal/database/models"
	"github.com/taskforge/taskforge/internal/notify"
	"gorm.io/gorm"
)

type Handler struct {
	db     *gorm.DB
	logger *slog.Logger
	mailer notify.Mailer
}

func NewHandler(db *gorm.DB, logger *slog.Logger, mailer notify.Mailer) *Handler {
	return &Handler{db: db, logger: logger, mailer: mailer}
}

func (h *Handler) RegisterHandlers(mux *asynq.ServeMux) {
	mux.HandleFunc(TypeWelcomeEmail, h.HandleWelcomeEmail)
	mux.HandleFunc(TypePasswordReset, h.HandlePasswordReset)
}

func (h *Handler) HandleWelcomeEmail(ctx context.Context, t *asynq.Task) error {
	var payload WelcomeEmailPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("unmarshal payload: %w", err)
	}

	var user models.User
	err := h.db.WithContext(ctx).First(&user, "id = ?", payload.UserID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// User was deleted between enqueue and delivery; nothing to send.
			h.logger.Warn("skipping welcome notification for missing user", "user_id", payload.UserID)
			return nil
		}
		return err
	}

	if err := h.mailer.SendWelcome(ctx, &user); err != nil {
		h.logger.Error("welcome notification failed",
			"user_id", user.ID,
			"error", err,
		)
		return err
	}

	h.logger.Info("welcome notification sent", "user_id", user.ID, "email", user.Email)
	return nil
}

func (h *Handler) HandlePasswordReset(ctx context.Context, t *asynq.Task) error {
	var payload PasswordResetPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("unmarshal payload: %w", err)
	}

	if err := h.mailer.SendPasswordReset(ctx, payload.Email, payload.ResetURL); err != nil {
		h.logger.Error("password reset notification failed",
			"email", payload.Email,
			"error", err,
		)
		return err
	}

	h.logger.Info("password reset notification sent", "email", payload.Email)
	return nil
}
