package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/taskforge/taskforge/internal/api/dto"
	"github.com/taskforge/taskforge/internal/repo"
)

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func badRequest(w http.ResponseWriter) {
	writeJSON(w, http.StatusBadRequest, dto.Fail("Invalid request body", nil))
}

func validationFailed(w http.ResponseWriter, errs map[string]string) {
	writeJSON(w, http.StatusUnprocessableEntity, dto.Fail("Validation failed", errs))
}

func serverError(w http.ResponseWriter) {
	// Detail stays in the log; the client gets generic text.
	writeJSON(w, http.StatusInternalServerError, dto.Fail("Internal server error", nil))
}

// ownershipError maps the repository's lookup outcomes: a row that does not
// exist is 404, a row owned by someone else is 403.
func ownershipError(w http.ResponseWriter, err error, resource string) bool {
	switch {
	case errors.Is(err, repo.ErrNotFound):
		writeJSON(w, http.StatusNotFound, dto.Fail(resource+" not found", nil))
		return true
	case errors.Is(err, repo.ErrForbidden):
		writeJSON(w, http.StatusForbidden, dto.Fail("This action is unauthorized", nil))
		return true
	}
	return false
}
