package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/taskforge/taskforge/internal/api/dto"
	"github.com/taskforge/taskforge/internal/api/middleware"
	"github.com/taskforge/taskforge/internal/auth"
)

type AuthHandler struct {
	authService *auth.Service
}

func NewAuthHandler(authService *auth.Service) *AuthHandler {
	return &AuthHandler{authService: authService}
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req dto.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w)
		return
	}

	if errs := req.Validate(); len(errs) > 0 {
		validationFailed(w, errs)
		return
	}

	session, err := h.authService.Register(r.Context(), auth.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		if errors.Is(err, auth.ErrEmailTaken) {
			validationFailed(w, map[string]string{"email": "Email is already registered"})
			return
		}
		serverError(w)
		return
	}

	user := dto.UserToDTO(session.User)
	writeJSON(w, http.StatusCreated, dto.OK("User registered successfully", dto.SessionData{
		User:      &user,
		Token:     session.Token,
		ExpiresAt: session.ExpiresAt,
	}))
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w)
		return
	}

	if errs := req.Validate(); len(errs) > 0 {
		validationFailed(w, errs)
		return
	}

	session, err := h.authService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			// One body for unknown email and wrong password alike.
			writeJSON(w, http.StatusUnauthorized, dto.Fail("Invalid credentials", nil))
			return
		}
		serverError(w)
		return
	}

	user := dto.UserToDTO(session.User)
	writeJSON(w, http.StatusOK, dto.OK("Login successful", dto.SessionData{
		User:      &user,
		Token:     session.Token,
		ExpiresAt: session.ExpiresAt,
	}))
}

// Logout revokes the presented token only.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.authService.Logout(r.Context(), middleware.GetToken(r.Context())); err != nil {
		serverError(w)
		return
	}
	writeJSON(w, http.StatusOK, dto.OK("Logged out successfully", nil))
}

// LogoutAll revokes every session for the authenticated user.
func (h *AuthHandler) LogoutAll(w http.ResponseWriter, r *http.Request) {
	if err := h.authService.LogoutAll(r.Context(), middleware.GetUserID(r.Context())); err != nil {
		serverError(w)
		return
	}
	writeJSON(w, http.StatusOK, dto.OK("Logged out from all devices", nil))
}

func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	session, err := h.authService.Refresh(r.Context(), middleware.GetToken(r.Context()))
	if err != nil {
		if errors.Is(err, auth.ErrInvalidToken) {
			writeJSON(w, http.StatusUnauthorized, dto.Fail("Unauthenticated", nil))
			return
		}
		serverError(w)
		return
	}

	writeJSON(w, http.StatusOK, dto.OK("Token refreshed successfully", dto.SessionData{
		Token:     session.Token,
		ExpiresAt: session.ExpiresAt,
	}))
}

// ForgotPassword answers identically for known and unknown emails.
func (h *AuthHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req dto.ForgotPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w)
		return
	}

	if errs := req.Validate(); len(errs) > 0 {
		validationFailed(w, errs)
		return
	}

	if err := h.authService.ForgotPassword(r.Context(), req.Email); err != nil {
		serverError(w)
		return
	}

	writeJSON(w, http.StatusOK, dto.OK("If the email exists, a password reset link has been sent", nil))
}

func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req dto.ResetPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w)
		return
	}

	if errs := req.Validate(); len(errs) > 0 {
		validationFailed(w, errs)
		return
	}

	err := h.authService.ResetPassword(r.Context(), req.Email, req.Token, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidResetToken) {
			validationFailed(w, map[string]string{"token": "Reset token is invalid or has expired"})
			return
		}
		serverError(w)
		return
	}

	writeJSON(w, http.StatusOK, dto.OK("Password reset successfully", nil))
}
