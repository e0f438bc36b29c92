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
	"github.com/taskforge/taskforge/internal/repo"
	"github.com/taskforge/taskforge/internal/tasks"
)

type TaskHandler struct {
	service *tasks.Service
}

func NewTaskHandler(service *tasks.Service) *TaskHandler {
	return &TaskHandler{service: service}
}

func taskPageToDTO(page *repo.Page[models.Task]) repo.Page[dto.TaskDTO] {
	out := make([]dto.TaskDTO, len(page.Data))
	for i := range page.Data {
		out[i] = dto.TaskToDTO(&page.Data[i])
	}
	return repo.Page[dto.TaskDTO]{
		Data:        out,
		CurrentPage: page.CurrentPage,
		LastPage:    page.LastPage,
		PerPage:     page.PerPage,
		Total:       page.Total,
		From:        page.From,
		To:          page.To,
	}
}

// List handles GET /api/tasks
func (h *TaskHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	q := r.URL.Query()

	filter := tasks.ListFilter{}
	if status := q.Get("status"); status != "" {
		if !models.TaskStatus(status).Valid() {
			validationFailed(w, map[string]string{"status": "Invalid task status"})
			return
		}
		filter.Status = models.TaskStatus(status)
	}
	if priority := q.Get("priority"); priority != "" {
		if !models.TaskPriority(priority).Valid() {
			validationFailed(w, map[string]string{"priority": "Invalid task priority"})
			return
		}
		filter.Priority = models.TaskPriority(priority)
	}
	if projectID := q.Get("project_id"); projectID != "" {
		id, err := uuid.Parse(projectID)
		if err != nil {
			validationFailed(w, map[string]string{"project_id": "Project ID must be a valid UUID"})
			return
		}
		filter.ProjectID = &id
	}
	filter.Overdue = q.Get("overdue") == "true"

	page, err := h.service.List(r.Context(), userID, filter, dto.PaginationFromQuery(r))
	if err != nil {
		serverError(w)
		return
	}

	writeJSON(w, http.StatusOK, dto.OK("", taskPageToDTO(page)))
}

// ListForProject handles GET /api/projects/{id}/tasks
func (h *TaskHandler) ListForProject(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	projectID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusNotFound, dto.Fail("Project not found", nil))
		return
	}

	page, err := h.service.ListForProject(r.Context(), userID, projectID, dto.PaginationFromQuery(r))
	if err != nil {
		if ownershipError(w, err, "Project") {
			return
		}
		serverError(w)
		return
	}

	writeJSON(w, http.StatusOK, dto.OK("", taskPageToDTO(page)))
}

// Create handles POST /api/tasks
func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	var req dto.CreateTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w)
		return
	}

	if errs := req.Validate(); len(errs) > 0 {
		validationFailed(w, errs)
		return
	}

	task, err := h.service.Create(r.Context(), userID, req.ToInput())
	if err != nil {
		if errors.Is(err, tasks.ErrProjectNotOwned) {
			validationFailed(w, map[string]string{"project_id": "The selected project is invalid"})
			return
		}
		serverError(w)
		return
	}

	writeJSON(w, http.StatusCreated, dto.OK("Task created successfully", dto.TaskToDTO(task)))
}

// Get handles GET /api/tasks/{id}
func (h *TaskHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	taskID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusNotFound, dto.Fail("Task not found", nil))
		return
	}

	task, err := h.service.Get(r.Context(), userID, taskID)
	if err != nil {
		if ownershipError(w, err, "Task") {
			return
		}
		serverError(w)
		return
	}

	writeJSON(w, http.StatusOK, dto.OK("", dto.TaskToDTO(task)))
}

// Update handles PUT /api/tasks/{id}
func (h *TaskHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	taskID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusNotFound, dto.Fail("Task not found", nil))
		return
	}

	var req dto.UpdateTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w)
		return
	}

	if errs := req.Validate(); len(errs) > 0 {
		validationFailed(w, errs)
		return
	}

	task, err := h.service.Update(r.Context(), userID, taskID, req.ToInput())
	if err != nil {
		if ownershipError(w, err, "Task") {
			return
		}
		if errors.Is(err, tasks.ErrProjectNotOwned) {
			validationFailed(w, map[string]string{"project_id": "The selected project is invalid"})
			return
		}
		serverError(w)
		return
	}

	writeJSON(w, http.StatusOK, dto.OK("Task updated successfully", dto.TaskToDTO(task)))
}

// Delete handles DELETE /api/tasks/{id}; the parent project is untouched.
func (h *TaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	taskID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusNotFound, dto.Fail("Task not found", nil))
		return
	}

	if err := h.service.Delete(r.Context(), userID, taskID); err != nil {
		if ownershipError(w, err, "Task") {
			return
		}
		serverError(w)
		return
	}

	writeJSON(w, http.StatusOK, dto.OK("Task deleted successfully", nil))
}
