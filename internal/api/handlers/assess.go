// HTTP handler for running a cancer-risk assessment.
// POST /api/v1/assess drives the tool-calling loop for one patient and
// returns the structured assessment.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/martinserrat/triagent/internal/domain/assessment"
	"github.com/martinserrat/triagent/internal/domain/patient"
)

// AssessHandler handles assessment HTTP requests.
type AssessHandler struct {
	service *assessment.Service
}

// NewAssessHandler creates an AssessHandler backed by the given service.
func NewAssessHandler(svc *assessment.Service) *AssessHandler {
	return &AssessHandler{service: svc}
}

// assessRequest is the JSON request body for POST /api/v1/assess.
type assessRequest struct {
	PatientID string `json:"patient_id"`
}

// Assess handles POST /api/v1/assess.
//
// Response codes:
//   - 200 OK: structured assessment (a fallback assessment still returns 200)
//   - 400 Bad Request: invalid JSON or missing patient_id
//   - 404 Not Found: unknown patient
//   - 503 Service Unavailable: model provider unreachable
func (h *AssessHandler) Assess(w http.ResponseWriter, r *http.Request) {
	var req assessRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.PatientID == "" {
		writeError(w, http.StatusBadRequest, "patient_id is required")
		return
	}

	result, err := h.service.Assess(r.Context(), req.PatientID)
	if err != nil {
		if errors.Is(err, patient.ErrPatientNotFound) {
			writeError(w, http.StatusNotFound, "patient not found: "+req.PatientID)
			return
		}
		if errors.Is(err, assessment.ErrUpstreamUnavailable) {
			writeError(w, http.StatusServiceUnavailable, "model provider is unavailable")
			return
		}
		writeError(w, http.StatusInternalServerError, "assessment failed")
		return
	}

	writeJSON(w, http.StatusOK, result)
}
