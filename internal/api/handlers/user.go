package handlers

import (
	"net/http"

	"github.com/taskforge/taskforge/internal/api/dto"
	"github.com/taskforge/taskforge/internal/api/middleware"
)

type UserHandler struct{}

func NewUserHandler() *UserHandler {
	return &UserHandler{}
}

// Me handles GET /api/user
func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r.Context())
	if user == nil {
		writeJSON(w, http.StatusUnauthorized, dto.Fail("Unauthenticated", nil))
		return
	}
	writeJSON(w, http.StatusOK, dto.OK("", dto.UserToDTO(user)))
}
