// Package patient holds the patient demographic records the assessment
// workflow reads. Records are reference data: seeded at startup from a JSON
// file and read-only afterward.
package patient

import (
	"errors"
	"time"
)

// ErrPatientNotFound is returned by Store.Get for unknown patient IDs.
var ErrPatientNotFound = errors.New("patient not found")

// Patient is a single patient record.
type Patient struct {
	ID                  string    `json:"patient_id"`
	Name                string    `json:"name"`
	Age                 int       `json:"age"`
	Gender              string    `json:"gender"`
	SmokingHistory      string    `json:"smoking_history"`
	Symptoms            []string  `json:"symptoms"`
	SymptomDurationDays int       `json:"symptom_duration_days"`
	CreatedAt           time.Time `json:"-"`
	UpdatedAt           time.Time `json:"-"`
}
