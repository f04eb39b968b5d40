package handlers

import (
	"net/http"
	"strconv"

	"p9e.in/sitecore/middleware"
	"p9e.in/sitecore/models"
	"p9e.in/sitecore/pkg/engine"
)

// ManpowerHandler handles worker records and assignments
type ManpowerHandler struct {
	svc *engine.Service
}

func NewManpowerHandler(svc *engine.Service) *ManpowerHandler {
	return &ManpowerHandler{svc: svc}
}

type assignRequest struct {
	ProjectID models.OptionalID `json:"projectId"`
}

func (h *ManpowerHandler) CreateManpower(w http.ResponseWriter, r *http.Request) {
	var req engine.ManpowerInput
	if !decodeJSON(w, r, &req) {
		return
	}
	m, err := h.svc.CreateManpower(r.Context(), middleware.GetActor(r), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"message":  "Manpower created successfully",
		"manpower": m,
	})
}

// GetManpower lists workers; ?available=true|false, ?project= and ?role=
// narrow the result
func (h *ManpowerHandler) GetManpower(w http.ResponseWriter, r *http.Request) {
	var filter models.ManpowerFilter
	if raw := r.URL.Query().Get("available"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			badRequest(w, "available", "must be true or false")
			return
		}
		filter.Available = &v
	}
	projectID, ok := queryID(w, r, "project")
	if !ok {
		return
	}
	filter.ProjectID = projectID
	filter.Role = r.URL.Query().Get("role")

	list, err := h.svc.ListManpower(r.Context(), filter)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"manpower": list,
		"count":    len(list),
	})
}

// GetAvailableManpower returns unassigned workers grouped by role
func (h *ManpowerHandler) GetAvailableManpower(w http.ResponseWriter, r *http.Request) {
	byRole, err := h.svc.ListAvailableManpower(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	total := 0
	for _, list := range byRole {
		total += len(list)
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"manpower": byRole,
		"count":    total,
	})
}

func (h *ManpowerHandler) GetManpowerByID(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	m, err := h.svc.GetManpower(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"manpower": m})
}

func (h *ManpowerHandler) UpdateManpower(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req engine.ManpowerPatch
	if !decodeJSON(w, r, &req) {
		return
	}
	m, err := h.svc.UpdateManpower(r.Context(), middleware.GetActor(r), id, req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message":  "Manpower updated successfully",
		"manpower": m,
	})
}

// AssignManpower puts a worker on the project named in the body
func (h *ManpowerHandler) AssignManpower(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req assignRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.ProjectID.Value == nil {
		badRequest(w, "projectId", "is required")
		return
	}
	m, err := h.svc.AssignManpower(r.Context(), middleware.GetActor(r), id, *req.ProjectID.Value)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message":  "Manpower assigned successfully",
		"manpower": m,
	})
}

// UnassignManpower releases a worker from its project
func (h *ManpowerHandler) UnassignManpower(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	m, err := h.svc.UnassignManpower(r.Context(), middleware.GetActor(r), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message":  "Manpower unassigned successfully",
		"manpower": m,
	})
}

func (h *ManpowerHandler) DeleteManpower(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if err := h.svc.DeleteManpower(r.Context(), middleware.GetActor(r), id); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"message": "Manpower deleted successfully"})
}
