package handlers

import (
	"net/http"

	"p9e.in/sitecore/middleware"
	"p9e.in/sitecore/models"
	"p9e.in/sitecore/pkg/engine"
)

// MaterialHandler handles material lines reported against projects
type MaterialHandler struct {
	svc *engine.Service
}

func NewMaterialHandler(svc *engine.Service) *MaterialHandler {
	return &MaterialHandler{svc: svc}
}

func (h *MaterialHandler) CreateMaterial(w http.ResponseWriter, r *http.Request) {
	var req engine.MaterialInput
	if !decodeJSON(w, r, &req) {
		return
	}
	m, err := h.svc.CreateMaterial(r.Context(), middleware.GetActor(r), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"message":  "Material created successfully",
		"material": m,
	})
}

// GetMaterials lists materials by ?type= and ?project=
func (h *MaterialHandler) GetMaterials(w http.ResponseWriter, r *http.Request) {
	projectID, ok := queryID(w, r, "project")
	if !ok {
		return
	}
	list, err := h.svc.ListMaterials(r.Context(), models.MaterialFilter{
		Type:      models.MaterialType(r.URL.Query().Get("type")),
		ProjectID: projectID,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeMaterials(w, list)
}

func (h *MaterialHandler) GetAvailableMaterials(w http.ResponseWriter, r *http.Request) {
	projectID, ok := queryID(w, r, "project")
	if !ok {
		return
	}
	list, err := h.svc.ListAvailableMaterials(r.Context(), projectID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeMaterials(w, list)
}

// GetRequiredMaterials lists needed materials, most urgent first
func (h *MaterialHandler) GetRequiredMaterials(w http.ResponseWriter, r *http.Request) {
	projectID, ok := queryID(w, r, "project")
	if !ok {
		return
	}
	list, err := h.svc.ListRequiredMaterials(r.Context(), projectID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeMaterials(w, list)
}

func writeMaterials(w http.ResponseWriter, list []models.Material) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"materials": list,
		"count":     len(list),
	})
}

func (h *MaterialHandler) GetMaterial(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	m, err := h.svc.GetMaterial(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"material": m})
}

func (h *MaterialHandler) UpdateMaterial(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req engine.MaterialPatch
	if !decodeJSON(w, r, &req) {
		return
	}
	m, err := h.svc.UpdateMaterial(r.Context(), middleware.GetActor(r), id, req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message":  "Material updated successfully",
		"material": m,
	})
}

func (h *MaterialHandler) DeleteMaterial(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if err := h.svc.DeleteMaterial(r.Context(), middleware.GetActor(r), id); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"message": "Material deleted successfully"})
}
