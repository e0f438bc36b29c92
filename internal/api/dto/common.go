package dto

import (
	"net/http"
	"strconv"

	"github.com/taskforge/taskforge/internal/repo"
)

// Envelope is the uniform response wrapper for every endpoint.
type Envelope struct {
	Success bool              `json:"success"`
	Message string            `json:"message,omitempty"`
	Data    interface{}       `json:"data,omitempty"`
	Errors  map[string]string `json:"errors,omitempty"`
}

func OK(message string, data interface{}) Envelope {
	return Envelope{Success: true, Message: message, Data: data}
}

func Fail(message string, errors map[string]string) Envelope {
	return Envelope{Success: false, Message: message, Errors: errors}
}

// PaginationFromQuery reads page/per_page; Normalize happens downstream.
func PaginationFromQuery(r *http.Request) repo.Pagination {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	perPage, _ := strconv.Atoi(r.URL.Query().Get("per_page"))
	return repo.Pagination{Page: page, PerPage: perPage}
}
