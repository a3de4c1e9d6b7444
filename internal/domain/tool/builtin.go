// Built-in tools exposed to the model during assessments: patient record
// lookup and guideline search.
package tool

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/martinserrat/triagent/internal/domain/guideline"
	"github.com/martinserrat/triagent/internal/domain/patient"
	"github.com/martinserrat/triagent/internal/infra/llm"
)

const (
	BuiltinGetPatientData   = "get_patient_data"
	BuiltinSearchGuidelines = "search_clinical_guidelines"
)

// GetPatientDataSpec declares the patient lookup tool to the model.
func GetPatientDataSpec() llm.ToolSpec {
	return llm.ToolSpec{
		Name:        BuiltinGetPatientData,
		Description: "Retrieve a patient's demographic and clinical record by patient ID",
		Parameters:  json.RawMessage(`{"type":"object","required":["patient_id"],"properties":{"patient_id":{"type":"string","description":"Patient identifier, e.g. PT-101"}},"additionalProperties":false}`),
	}
}

// SearchGuidelinesSpec declares the guideline search tool to the model.
func SearchGuidelinesSpec() llm.ToolSpec {
	return llm.ToolSpec{
		Name:        BuiltinSearchGuidelines,
		Description: "Search clinical guideline documents for passages relevant to a query",
		Parameters:  json.RawMessage(`{"type":"object","required":["query"],"properties":{"query":{"type":"string","description":"Clinical question or topic to search for"},"top_k":{"type":"integer","description":"Number of passages to return","default":5}},"additionalProperties":false}`),
	}
}

// patientGetter is the slice of the patient store the executor needs.
type patientGetter interface {
	Get(ctx context.Context, id string) (*patient.Patient, error)
}

// GetPatientDataExecutor fetches a patient record.
type GetPatientDataExecutor struct {
	patients patientGetter
}

func NewGetPatientDataExecutor(patients patientGetter) ToolExecutor {
	return &GetPatientDataExecutor{patients: patients}
}

type getPatientDataParams struct {
	PatientID string `json:"patient_id"`
}

func (e *GetPatientDataExecutor) Execute(ctx context.Context, params json.RawMessage) (json.RawMessage, error) {
	var in getPatientDataParams
	if err := json.Unmarshal(params, &in); err != nil {
		return nil, fmt.Errorf("invalid params: %v", err)
	}
	if in.PatientID == "" {
		return nil, fmt.Errorf("patient_id is required")
	}

	p, err := e.patients.Get(ctx, in.PatientID)
	if errors.Is(err, patient.ErrPatientNotFound) {
		return nil, fmt.Errorf("No patient found with ID: %s", in.PatientID)
	}
	if err != nil {
		return nil, err
	}
	return json.Marshal(p)
}

// passageSearcher is the slice of the guideline search service the executor needs.
type passageSearcher interface {
	Search(ctx context.Context, query string, topK int) ([]guideline.Passage, error)
}

// SearchGuidelinesExecutor runs semantic search over the guideline corpus.
type SearchGuidelinesExecutor struct {
	search passageSearcher
}

func NewSearchGuidelinesExecutor(search passageSearcher) ToolExecutor {
	return &SearchGuidelinesExecutor{search: search}
}

func (e *SearchGuidelinesExecutor) Execute(ctx context.Context, params json.RawMessage) (json.RawMessage, error) {
	// top_k arrives as a JSON number; models sometimes emit it as a float
	// ("3.0"), so decode loosely and coerce.
	var in struct {
		Query string   `json:"query"`
		TopK  *float64 `json:"top_k"`
	}
	if err := json.Unmarshal(params, &in); err != nil {
		return nil, fmt.Errorf("invalid params: %v", err)
	}
	if in.Query == "" {
		return nil, fmt.Errorf("query is required")
	}
	topK := guideline.DefaultTopK
	if in.TopK != nil {
		topK = int(*in.TopK)
	}

	passages, err := e.search.Search(ctx, in.Query, topK)
	if err != nil {
		return nil, err
	}
	return json.Marshal(map[string]any{
		"query":   in.Query,
		"results": passages,
	})
}
