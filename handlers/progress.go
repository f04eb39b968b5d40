package handlers

import (
	"net/http"

	"github.com/google/uuid"

	"p9e.in/sitecore/middleware"
	"p9e.in/sitecore/pkg/engine"
)

// ProgressHandler handles progress report submission
type ProgressHandler struct {
	svc *engine.Service
}

func NewProgressHandler(svc *engine.Service) *ProgressHandler {
	return &ProgressHandler{svc: svc}
}

// SubmitProgress stores a report and projects it onto the project. A
// partial failure answers 500 with the committed report ID.
func (h *ProgressHandler) SubmitProgress(w http.ResponseWriter, r *http.Request) {
	var req engine.ProgressInput
	if !decodeJSON(w, r, &req) {
		return
	}
	report, err := h.svc.SubmitProgress(r.Context(), middleware.GetActor(r), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"message":  "Progress report submitted successfully",
		"progress": report,
	})
}

// GetProgress lists every report, optionally narrowed by ?project=
func (h *ProgressHandler) GetProgress(w http.ResponseWriter, r *http.Request) {
	projectID, ok := queryID(w, r, "project")
	if !ok {
		return
	}
	h.list(w, r, projectID)
}

// GetProjectProgress lists one project's reports, newest first
func (h *ProgressHandler) GetProjectProgress(w http.ResponseWriter, r *http.Request) {
	projectID, ok := pathID(w, r, "projectId")
	if !ok {
		return
	}
	h.list(w, r, &projectID)
}

func (h *ProgressHandler) list(w http.ResponseWriter, r *http.Request, projectID *uuid.UUID) {
	reports, err := h.svc.ListProgress(r.Context(), projectID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"progress": reports,
		"count":    len(reports),
	})
}

// UpdateProgress amends a report; only its reporter or an admin may
func (h *ProgressHandler) UpdateProgress(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req engine.ProgressPatch
	if !decodeJSON(w, r, &req) {
		return
	}
	report, err := h.svc.UpdateProgress(r.Context(), middleware.GetActor(r), id, req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message":  "Progress report updated successfully",
		"progress": report,
	})
}
