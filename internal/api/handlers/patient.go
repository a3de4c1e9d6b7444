// HTTP handlers for patient demographics lookup.
// GET /api/v1/patients and GET /api/v1/patients/{id}.
package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/martinserrat/triagent/internal/domain/patient"
)

// PatientHandler handles patient HTTP requests.
type PatientHandler struct {
	store *patient.Store
}

// NewPatientHandler creates a PatientHandler backed by the given store.
func NewPatientHandler(store *patient.Store) *PatientHandler {
	return &PatientHandler{store: store}
}

// patientListResponse is the response body for GET /api/v1/patients.
type patientListResponse struct {
	Patients []*patient.Patient `json:"patients"`
	Count    int                `json:"count"`
}

// List handles GET /api/v1/patients.
func (h *PatientHandler) List(w http.ResponseWriter, r *http.Request) {
	patients, err := h.store.List(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list patients")
		return
	}

	writeJSON(w, http.StatusOK, patientListResponse{
		Patients: patients,
		Count:    len(patients),
	})
}

// Get handles GET /api/v1/patients/{id}.
//
// Response codes:
//   - 200 OK: patient found
//   - 404 Not Found: no patient with that ID
func (h *PatientHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	p, err := h.store.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, patient.ErrPatientNotFound) {
			writeError(w, http.StatusNotFound, "patient not found: "+id)
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to load patient")
		return
	}

	writeJSON(w, http.StatusOK, p)
}
