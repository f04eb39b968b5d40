package handlers

import (
	"net/http"

	"p9e.in/sitecore/middleware"
	"p9e.in/sitecore/pkg/engine"
)

// FinanceHandler handles project finance records and the portfolio summary
type FinanceHandler struct {
	svc *engine.Service
}

func NewFinanceHandler(svc *engine.Service) *FinanceHandler {
	return &FinanceHandler{svc: svc}
}

func (h *FinanceHandler) GetFinances(w http.ResponseWriter, r *http.Request) {
	list, err := h.svc.ListFinances(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"finances": list,
		"count":    len(list),
	})
}

func (h *FinanceHandler) CreateFinance(w http.ResponseWriter, r *http.Request) {
	var req engine.FinanceInput
	if !decodeJSON(w, r, &req) {
		return
	}
	f, err := h.svc.CreateFinance(r.Context(), middleware.GetActor(r), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"message": "Finance record created successfully",
		"finance": f,
	})
}

// UpdateFinance sets totals and appends expense/revenue lines
func (h *FinanceHandler) UpdateFinance(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req engine.FinancePatch
	if !decodeJSON(w, r, &req) {
		return
	}
	f, err := h.svc.UpdateFinance(r.Context(), middleware.GetActor(r), id, req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Finance record updated successfully",
		"finance": f,
	})
}

func (h *FinanceHandler) GetSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.svc.GetFinanceSummary(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"summary": summary})
}

// GetProjectFinance returns the project's finance record, creating an
// empty one on first access
func (h *FinanceHandler) GetProjectFinance(w http.ResponseWriter, r *http.Request) {
	projectID, ok := pathID(w, r, "projectId")
	if !ok {
		return
	}
	f, err := h.svc.GetOrCreateProjectFinance(r.Context(), middleware.GetActor(r), projectID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"finance": f})
}
