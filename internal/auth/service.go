package auth

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/taskforge/taskforge/internal/database/models"
	"github.com/taskforge/taskforge/internal/jobs"
	"gorm.io/gorm"
)

var (
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidResetToken  = errors.New("invalid or expired reset token")
	ErrUserNotFound       = errors.New("user not found")
)

// Service orchestrates registration, login, session lifecycle, and password
// reset flows on top of the credential store and token issuer.
type Service struct {
	db       *gorm.DB
	issuer   *TokenIssuer
	queue    *asynq.Client // nil disables notification dispatch
	logger   *slog.Logger
	resetTTL time.Duration
	resetURL string
}

func NewService(db *gorm.DB, issuer *TokenIssuer, queueClient *asynq.Client, logger *slog.Logger, resetTTL time.Duration, resetURL string) *Service {
	return &Service{
		db:       db,
		issuer:   issuer,
		queue:    queueClient,
		logger:   logger,
		resetTTL: resetTTL,
		resetURL: resetURL,
	}
}

// NormalizeEmail is applied to every email before storage or lookup, which is
// what makes the uniqueness check case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

type RegisterInput struct {
	Name     string
	Email    string
	Password string
}

// Session is the result of any flow that issues a token.
type Session struct {
	User      *models.User
	Token     string
	ExpiresAt *time.Time
}

// Register creates the user and issues the first token in one transaction:
// if either step fails, nothing persists. The welcome notification is
// enqueued only after the transaction commits and never fails the request.
func (s *Service) Register(ctx context.Context, input RegisterInput) (*Session, error) {
	email := NormalizeEmail(input.Email)

	hash, err := HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	var user models.User
	var token *models.AuthToken
	var plaintext string

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return ErrEmailTaken
		}

		user = models.User{
			Name:         input.Name,
			Email:        email,
			PasswordHash: hash,
			Role:         models.RoleUser,
		}
		if err := tx.Create(&user).Error; err != nil {
			// A registration racing this one past the count check lands on
			// the unique index instead.
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrEmailTaken
			}
			return err
		}

		plaintext, token, err = s.issuer.Issue(ctx, tx, user.ID, "auth_token")
		return err
	})
	if err != nil {
		return nil, err
	}

	s.enqueueWelcome(&user)

	return &Session{User: &user, Token: plaintext, ExpiresAt: token.ExpiresAt}, nil
}

// Login verifies credentials and issues a fresh token. Unknown email and
// wrong password fail identically so responses cannot be used to enumerate
// accounts.
func (s *Service) Login(ctx context.Context, email, password string) (*Session, error) {
	var user models.User
	err := s.db.WithContext(ctx).
		Where("email = ?", NormalizeEmail(email)).
		First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if !CheckPassword(password, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	plaintext, token, err := s.issuer.Issue(ctx, nil, user.ID, "auth_token")
	if err != nil {
		return nil, err
	}

	now := time.Now()
	if err := s.db.WithContext(ctx).Model(&user).Update("last_login_at", now).Error; err != nil {
		return nil, err
	}
	user.LastLoginAt = &now

	return &Session{User: &user, Token: plaintext, ExpiresAt: token.ExpiresAt}, nil
}

// ResolveToken maps a presented bearer token to its user. Used by the auth
// middleware on every protected request.
func (s *Service) ResolveToken(ctx context.Context, plaintext string) (*models.User, error) {
	token, err := s.issuer.Resolve(ctx, plaintext)
	if err != nil {
		return nil, err
	}
	if token.User == nil {
		return nil, ErrInvalidToken
	}
	return token.User, nil
}

// Logout revokes only the presented token; other sessions stay valid.
func (s *Service) Logout(ctx context.Context, plaintext string) error {
	return s.issuer.Revoke(ctx, plaintext)
}

// LogoutAll revokes every session for the user.
func (s *Service) LogoutAll(ctx context.Context, userID uuid.UUID) error {
	return s.issuer.RevokeAll(ctx, nil, userID)
}

// Refresh atomically revokes the presented token and issues a replacement,
// so a single refresh never leaves two valid tokens behind.
func (s *Service) Refresh(ctx context.Context, plaintext string) (*Session, error) {
	current, err := s.issuer.Resolve(ctx, plaintext)
	if err != nil {
		return nil, err
	}

	var fresh string
	var token *models.AuthToken
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&models.AuthToken{}, "id = ?", current.ID).Error; err != nil {
			return err
		}
		fresh, token, err = s.issuer.Issue(ctx, tx, current.UserID, "auth_token")
		return err
	})
	if err != nil {
		return nil, err
	}

	return &Session{User: current.User, Token: fresh, ExpiresAt: token.ExpiresAt}, nil
}

// ForgotPassword creates a single-use reset token and hands the link to the
// notification queue. Unknown emails get the same nil result as known ones;
// the miss is only logged.
func (s *Service) ForgotPassword(ctx context.Context, email string) error {
	email = NormalizeEmail(email)

	var user models.User
	err := s.db.WithContext(ctx).Where("email = ?", email).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			s.logger.Info("password reset requested for unknown email", "email", email)
			return nil
		}
		return err
	}

	secret, err := generateSecret()
	if err != nil {
		return err
	}

	reset := models.PasswordReset{
		Email:     email,
		TokenHash: hashToken(secret),
		ExpiresAt: time.Now().Add(s.resetTTL),
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// A re-request replaces any outstanding reset token for the email.
		if err := tx.Where("email = ?", email).Delete(&models.PasswordReset{}).Error; err != nil {
			return err
		}
		return tx.Create(&reset).Error
	})
	if err != nil {
		return err
	}

	s.enqueueReset(email, secret)
	return nil
}

// ResetPassword consumes a reset token: on success the password is rehashed,
// every session is revoked, and the reset row is deleted, all in one
// transaction.
func (s *Service) ResetPassword(ctx context.Context, email, token, newPassword string) error {
	email = NormalizeEmail(email)

	var reset models.PasswordReset
	err := s.db.WithContext(ctx).Where("email = ?", email).First(&reset).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrInvalidResetToken
		}
		return err
	}

	if reset.Expired(time.Now()) {
		s.db.WithContext(ctx).Delete(&models.PasswordReset{}, "id = ?", reset.ID)
		return ErrInvalidResetToken
	}

	if subtle.ConstantTimeCompare([]byte(reset.TokenHash), []byte(hashToken(token))) != 1 {
		return ErrInvalidResetToken
	}

	var user models.User
	if err := s.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrInvalidResetToken
		}
		return err
	}

	hash, err := HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("hashing password: %w", err)
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&user).Update("password_hash", hash).Error; err != nil {
			return err
		}
		if err := s.issuer.RevokeAll(ctx, tx, user.ID); err != nil {
			return err
		}
		return tx.Delete(&models.PasswordReset{}, "id = ?", reset.ID).Error
	})
}

func (s *Service) GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (s *Service) enqueueWelcome(user *models.User) {
	if s.queue == nil {
		return
	}
	task, err := jobs.NewWelcomeEmailTask(jobs.WelcomeEmailPayload{
		UserID: user.ID,
		Email:  user.Email,
		Name:   user.Name,
	})
	if err == nil {
		_, err = s.queue.Enqueue(task)
	}
	if err != nil {
		s.logger.Error("failed to enqueue welcome notification", "user_id", user.ID, "error", err)
	}
}

func (s *Service) enqueueReset(email, secret string) {
	if s.queue == nil {
		return
	}
	link := s.resetURL + "?" + url.Values{"email": {email}, "token": {secret}}.Encode()
	task, err := jobs.NewPasswordResetTask(jobs.PasswordResetPayload{
		Email:    email,
		ResetURL: link,
	})
	if err == nil {
		_, err = s.queue.Enqueue(task)
	}
	if err != nil {
		s.logger.Error("failed to enqueue reset notification", "email", email, "error", err)
	}
}
