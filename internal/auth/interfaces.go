package auth

import (
	"context"

	"github.com/google/uuid"
	"github.com/taskforge/taskforge/internal/database/models"
)

// Authenticator defines the session lifecycle operations exposed to the API.
type Authenticator interface {
	Register(ctx context.Context, input RegisterInput) (*Session, error)
	Login(ctx context.Context, email, password string) (*Session, error)
	Logout(ctx context.Context, token string) error
	LogoutAll(ctx context.Context, userID uuid.UUID) error
	Refresh(ctx context.Context, token string) (*Session, error)
	ForgotPassword(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, email, token, newPassword string) error
	GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// TokenResolver maps presented bearer tokens to users; the auth middleware
// depends on this rather than on the concrete service.
type TokenResolver interface {
	ResolveToken(ctx context.Context, token string) (*models.User, error)
}

// Compile-time interface satisfaction checks
var (
	_ Authenticator = (*Service)(nil)
	_ TokenResolver = (*Service)(nil)
)
