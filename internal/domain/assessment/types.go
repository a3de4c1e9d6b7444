// Package assessment implements the cancer risk assessment workflow: a
// tool-calling conversation with the model followed by normalization of its
// final answer into a structured result.
package assessment

import "time"

// Assessment categories, in increasing urgency order.
const (
	CategoryRoutine             = "Routine"
	CategoryUrgentInvestigation = "Urgent Investigation"
	CategoryUrgentReferral      = "Urgent Referral"
)

// Citation is a guideline reference backing an assessment.
type Citation struct {
	PageNumber     int     `json:"page_number"`
	Section        string  `json:"section"`
	Content        string  `json:"content"`
	RelevanceScore float64 `json:"relevance_score"`
}

// Assessment is the structured outcome of a risk assessment.
type Assessment struct {
	PatientID        string     `json:"patient_id"`
	Assessment       string     `json:"assessment"`
	Reasoning        string     `json:"reasoning"`
	Citations        []Citation `json:"citations"`
	RelevantSymptoms []string   `json:"relevant_symptoms"`
	Confidence       float64    `json:"confidence"`
	Timestamp        time.Time  `json:"timestamp"`
}
