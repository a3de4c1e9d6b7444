// HTTP handler for reading the audit trail.
package handlers

import (
	"net/http"

	"github.com/martinserrat/triagent/internal/domain/audit"
)

// AuditHandler handles audit trail HTTP requests.
type AuditHandler struct {
	service *audit.Service
}

// NewAuditHandler creates an AuditHandler backed by the given service.
func NewAuditHandler(svc *audit.Service) *AuditHandler {
	return &AuditHandler{service: svc}
}

// auditListResponse is the response body for GET /api/v1/audit.
type auditListResponse struct {
	Events []*audit.Event `json:"events"`
	Count  int            `json:"count"`
}

// List handles GET /api/v1/audit. Supports limit/offset query params.
func (h *AuditHandler) List(w http.ResponseWriter, r *http.Request) {
	page := parsePaginationParams(r)

	events, err := h.service.List(r.Context(), page.Limit, page.Offset)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list audit events")
		return
	}

	writeJSON(w, http.StatusOK, auditListResponse{
		Events: events,
		Count:  len(events),
	})
}
