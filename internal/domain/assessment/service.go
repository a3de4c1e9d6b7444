package assessment

import (
	"context"
	"time"

	"github.com/martinserrat/triagent/internal/domain/patient"
)

// patientGetter is the slice of the patient store the service needs.
type patientGetter interface {
	Get(ctx context.Context, id string) (*patient.Patient, error)
}

// Service is the assessment workflow entry point.
type Service struct {
	patients         patientGetter
	driver           *Driver
	fallbackCategory string
}

// NewService creates a Service. fallbackCategory is used when the model's
// answer omits or garbles the assessment field; pass "" for Routine.
func NewService(patients patientGetter, driver *Driver, fallbackCategory string) *Service {
	if fallbackCategory == "" {
		fallbackCategory = CategoryRoutine
	}
	return &Service{
		patients:         patients,
		driver:           driver,
		fallbackCategory: fallbackCategory,
	}
}

// Assess runs the full workflow for one patient.
//
// The patient's existence is verified up front: inside the conversation a
// missing patient only surfaces as a tool error payload the model may talk
// around, so the check here is what produces patient.ErrPatientNotFound for
// the API layer.
func (s *Service) Assess(ctx context.Context, patientID string) (*Assessment, error) {
	if _, err := s.patients.Get(ctx, patientID); err != nil {
		return nil, err
	}

	raw, err := s.driver.Run(ctx, systemPrompt, userPrompt(patientID))
	if err != nil {
		return nil, err
	}

	return normalize(patientID, raw, s.fallbackCategory, time.Now().UTC()), nil
}
