package auth_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taskforge/taskforge/internal/auth"
	"github.com/taskforge/taskforge/internal/database/models"
	"github.com/taskforge/taskforge/internal/testutil"
)

func TestRegister(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := testutil.NewAuthService(db)

	session, err := svc.Register(context.Background(), auth.RegisterInput{
		Name:     "Jane Doe",
		Email:    "Jane@Example.com",
		Password: "secret123",
	})
	require.NoError(t, err)
	require.NotNil(t, session.User)
	assert.NotEmpty(t, session.Token)
	assert.Equal(t, "jane@example.com", session.User.Email)
	assert.Equal(t, models.RoleUser, session.User.Role)

	// Stored credential must be a hash, never the password.
	var stored models.User
	require.NoError(t, db.First(&stored, "id = ?", session.User.ID).Error)
	assert.NotEqual(t, "secret123", stored.PasswordHash)
	assert.True(t, auth.CheckPassword("secret123", stored.PasswordHash))
}

func TestRegister_DuplicateEmail(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := testutil.NewAuthService(db)

	_, err := svc.Register(context.Background(), auth.RegisterInput{
		Name: "First", Email: "taken@example.com", Password: "secret123",
	})
	require.NoError(t, err)

	// Uniqueness is case-insensitive.
	_, err = svc.Register(context.Background(), auth.RegisterInput{
		Name: "Second", Email: "TAKEN@example.com", Password: "secret123",
	})
	assert.ErrorIs(t, err, auth.ErrEmailTaken)

	var count int64
	require.NoError(t, db.Model(&models.User{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestLogin(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := testutil.NewAuthService(db)
	user := testutil.CreateTestUser(t, db, "login@example.com")
	require.Nil(t, user.LastLoginAt)

	session, err := svc.Login(context.Background(), "login@example.com", "password123")
	require.NoError(t, err)
	assert.NotEmpty(t, session.Token)
	assert.Equal(t, user.ID, session.User.ID)

	var updated models.User
	require.NoError(t, db.First(&updated, "id = ?", user.ID).Error)
	assert.NotNil(t, updated.LastLoginAt)
}

func TestLogin_BadCredentials(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := testutil.NewAuthService(db)
	testutil.CreateTestUser(t, db, "someone@example.com")

	// Unknown account and wrong password are indistinguishable to the caller.
	_, wrongPass := svc.Login(context.Background(), "someone@example.com", "not-the-password")
	_, noAccount := svc.Login(context.Background(), "nobody@example.com", "password123")

	assert.ErrorIs(t, wrongPass, auth.ErrInvalidCredentials)
	assert.ErrorIs(t, noAccount, auth.ErrInvalidCredentials)
	assert.Equal(t, wrongPass, noAccount)
}

func TestLogout_RevokesOnlyPresentedToken(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := testutil.NewAuthService(db)
	testutil.CreateTestUser(t, db, "devices@example.com")

	phone, err := svc.Login(context.Background(), "devices@example.com", "password123")
	require.NoError(t, err)
	laptop, err := svc.Login(context.Background(), "devices@example.com", "password123")
	require.NoError(t, err)

	require.NoError(t, svc.Logout(context.Background(), phone.Token))

	_, err = svc.ResolveToken(context.Background(), phone.Token)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)

	_, err = svc.ResolveToken(context.Background(), laptop.Token)
	assert.NoError(t, err)
}

func TestLogoutAll(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := testutil.NewAuthService(db)
	user := testutil.CreateTestUser(t, db, "all@example.com")

	var sessions []*auth.Session
	for i := 0; i < 3; i++ {
		s, err := svc.Login(context.Background(), "all@example.com", "password123")
		require.NoError(t, err)
		sessions = append(sessions, s)
	}

	require.NoError(t, svc.LogoutAll(context.Background(), user.ID))

	for _, s := range sessions {
		_, err := svc.ResolveToken(context.Background(), s.Token)
		assert.ErrorIs(t, err, auth.ErrInvalidToken)
	}
}

func TestRefresh(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := testutil.NewAuthService(db)
	user := testutil.CreateTestUser(t, db, "refresh@example.com")

	session, err := svc.Login(context.Background(), "refresh@example.com", "password123")
	require.NoError(t, err)

	fresh, err := svc.Refresh(context.Background(), session.Token)
	require.NoError(t, err)
	assert.NotEqual(t, session.Token, fresh.Token)
	assert.Equal(t, user.ID, fresh.User.ID)

	// The old token dies with the rotation and the row count stays flat.
	_, err = svc.ResolveToken(context.Background(), session.Token)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
	_, err = svc.ResolveToken(context.Background(), fresh.Token)
	assert.NoError(t, err)

	var count int64
	require.NoError(t, db.Model(&models.AuthToken{}).Where("user_id = ?", user.ID).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestRefresh_InvalidToken(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := testutil.NewAuthService(db)

	_, err := svc.Refresh(context.Background(), "bogus")
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}
