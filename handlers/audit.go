package handlers

import (
	"net/http"

	"p9e.in/sitecore/pkg/engine"
)

type AuditHandler struct {
	svc *engine.Service
}

func NewAuditHandler(svc *engine.Service) *AuditHandler {
	return &AuditHandler{svc: svc}
}

// RunAudit scans the store and lists every consistency finding
func (h *AuditHandler) RunAudit(w http.ResponseWriter, r *http.Request) {
	report, err := h.svc.Audit(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"clean":  report.Clean(),
		"report": report,
	})
}
