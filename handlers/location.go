package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"p9e.in/sitecore/middleware"
	"p9e.in/sitecore/pkg/engine"
)

// LocationHandler handles staff position reports
type LocationHandler struct {
	svc *engine.Service
}

func NewLocationHandler(svc *engine.Service) *LocationHandler {
	return &LocationHandler{svc: svc}
}

// UpdateLocation records the caller's own position
func (h *LocationHandler) UpdateLocation(w http.ResponseWriter, r *http.Request) {
	var req engine.LocationInput
	if !decodeJSON(w, r, &req) {
		return
	}
	l, err := h.svc.UpdateLocation(r.Context(), middleware.GetActor(r), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message":  "Location updated successfully",
		"location": l,
	})
}

// GetLocations lists the last known position of every staff member;
// ?role= narrows it
func (h *LocationHandler) GetLocations(w http.ResponseWriter, r *http.Request) {
	list, err := h.svc.ListLocations(r.Context(), r.URL.Query().Get("role"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"locations": list,
		"count":     len(list),
	})
}

func (h *LocationHandler) GetUserLocation(w http.ResponseWriter, r *http.Request) {
	l, err := h.svc.GetLocation(r.Context(), mux.Vars(r)["userId"])
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"location": l,
	})
}
