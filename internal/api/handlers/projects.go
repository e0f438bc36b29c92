package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/taskforge/taskforge/internal/api/dto"
	"github.com/taskforge/taskforge/internal/api/middleware"
	"github.com/taskforge/taskforge/internal/database/models"
	"github.com/taskforge/taskforge/internal/projects"
	"github.com/taskforge/taskforge/internal/repo"
)

type ProjectHandler struct {
	service *projects.Service
}

func NewProjectHandler(service *projects.Service) *ProjectHandler {
	return &ProjectHandler{service: service}
}

func projectPageToDTO(page *repo.Page[models.Project]) repo.Page[dto.ProjectDTO] {
	out := make([]dto.ProjectDTO, len(page.Data))
	for i := range page.Data {
		out[i] = dto.ProjectToDTO(&page.Data[i])
	}
	return repo.Page[dto.ProjectDTO]{
		Data:        out,
		CurrentPage: page.CurrentPage,
		LastPage:    page.LastPage,
		PerPage:     page.PerPage,
		Total:       page.Total,
		From:        page.From,
		To:          page.To,
	}
}

// List handles GET /api/projects
func (h *ProjectHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	filter := projects.ListFilter{}
	if status := r.URL.Query().Get("status"); status != "" {
		if !models.ProjectStatus(status).Valid() {
			validationFailed(w, map[string]string{"status": "Invalid project status"})
			return
		}
		filter.Status = models.ProjectStatus(status)
	}

	page, err := h.service.List(r.Context(), userID, filter, dto.PaginationFromQuery(r))
	if err != nil {
		serverError(w)
		return
	}

	writeJSON(w, http.StatusOK, dto.OK("", projectPageToDTO(page)))
}

// Create handles POST /api/projects
func (h *ProjectHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	var req dto.CreateProjectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w)
		return
	}

	if errs := req.Validate(); len(errs) > 0 {
		validationFailed(w, errs)
		return
	}

	project, err := h.service.Create(r.Context(), userID, req.ToInput())
	if err != nil {
		if errors.Is(err, projects.ErrEndBeforeStart) {
			validationFailed(w, map[string]string{"end_date": "End date must be on or after start date"})
			return
		}
		serverError(w)
		return
	}

	writeJSON(w, http.StatusCreated, dto.OK("Project created successfully", dto.ProjectToDTO(project)))
}

// Get handles GET /api/projects/{id}
func (h *ProjectHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	projectID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusNotFound, dto.Fail("Project not found", nil))
		return
	}

	project, err := h.service.Get(r.Context(), userID, projectID)
	if err != nil {
		if ownershipError(w, err, "Project") {
			return
		}
		serverError(w)
		return
	}

	writeJSON(w, http.StatusOK, dto.OK("", dto.ProjectToDTO(project)))
}

// Update handles PUT /api/projects/{id}
func (h *ProjectHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	projectID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusNotFound, dto.Fail("Project not found", nil))
		return
	}

	var req dto.UpdateProjectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w)
		return
	}

	if errs := req.Validate(); len(errs) > 0 {
		validationFailed(w, errs)
		return
	}

	project, err := h.service.Update(r.Context(), userID, projectID, req.ToInput())
	if err != nil {
		if ownershipError(w, err, "Project") {
			return
		}
		if errors.Is(err, projects.ErrEndBeforeStart) {
			validationFailed(w, map[string]string{"end_date": "End date must be on or after start date"})
			return
		}
		serverError(w)
		return
	}

	writeJSON(w, http.StatusOK, dto.OK("Project updated successfully", dto.ProjectToDTO(project)))
}

// Delete handles DELETE /api/projects/{id}; tasks under the project go with it.
func (h *ProjectHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	projectID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusNotFound, dto.Fail("Project not found", nil))
		return
	}

	if err := h.service.Delete(r.Context(), userID, projectID); err != nil {
		if ownershipError(w, err, "Project") {
			return
		}
		serverError(w)
		return
	}

	writeJSON(w, http.StatusOK, dto.OK("Project deleted successfully", nil))
}
