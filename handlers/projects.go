package handlers

import (
	"net/http"

	"p9e.in/sitecore/middleware"
	"p9e.in/sitecore/models"
	"p9e.in/sitecore/pkg/engine"
)

// ProjectHandler handles project management operations
type ProjectHandler struct {
	svc *engine.Service
}

// NewProjectHandler creates a new project handler
func NewProjectHandler(svc *engine.Service) *ProjectHandler {
	return &ProjectHandler{svc: svc}
}

// CreateProject creates a new project
func (h *ProjectHandler) CreateProject(w http.ResponseWriter, r *http.Request) {
	var req engine.ProjectInput
	if !decodeJSON(w, r, &req) {
		return
	}
	project, err := h.svc.CreateProject(r.Context(), middleware.GetActor(r), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"message": "Project created successfully",
		"project": project,
	})
}

// GetProjects lists projects, optionally filtered by ?status= and
// ?state=started|not-started
func (h *ProjectHandler) GetProjects(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	projects, err := h.svc.ListProjects(r.Context(), models.ProjectFilter{
		Status: models.ProjectStatus(q.Get("status")),
		State:  q.Get("state"),
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"projects": projects,
		"count":    len(projects),
	})
}

// GetProject returns one project with its assigned manpower
func (h *ProjectHandler) GetProject(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	project, err := h.svc.GetProject(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"project": project})
}

// UpdateProject applies a partial update
func (h *ProjectHandler) UpdateProject(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req engine.ProjectPatch
	if !decodeJSON(w, r, &req) {
		return
	}
	project, err := h.svc.UpdateProject(r.Context(), middleware.GetActor(r), id, req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Project updated successfully",
		"project": project,
	})
}

// DeleteProject removes a project; dependent records are kept
func (h *ProjectHandler) DeleteProject(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if err := h.svc.DeleteProject(r.Context(), middleware.GetActor(r), id); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"message": "Project deleted successfully"})
}
