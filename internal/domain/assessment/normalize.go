package assessment

import (
	"encoding/json"
	"strings"
	"time"
)

// fallbackConfidence is assigned when the model's answer cannot be parsed as
// JSON and the raw text is carried as reasoning instead.
const fallbackConfidence = 0.3

// defaultConfidence is assigned when the parsed JSON omits the confidence field.
const defaultConfidence = 0.5

// extractFencedJSON strips markdown code fences from a model answer. A
// ```json fence wins over a generic ``` fence; text without fences is
// returned as-is.
func extractFencedJSON(text string) string {
	if _, after, found := strings.Cut(text, "```json"); found {
		body, _, _ := strings.Cut(after, "```")
		return strings.TrimSpace(body)
	}
	if _, after, found := strings.Cut(text, "```"); found {
		body, _, _ := strings.Cut(after, "```")
		return strings.TrimSpace(body)
	}
	return strings.TrimSpace(text)
}

// parsedAssessment mirrors the JSON contract the system prompt pins down.
// Confidence is a pointer so an absent field is distinguishable from 0.
type parsedAssessment struct {
	Assessment       string     `json:"assessment"`
	Reasoning        string     `json:"reasoning"`
	Citations        []Citation `json:"citations"`
	RelevantSymptoms []string   `json:"relevant_symptoms"`
	Confidence       *float64   `json:"confidence"`
}

// normalize turns the model's raw final text into an Assessment.
//
// Parse path: fences stripped, JSON decoded, missing fields defaulted
// (assessment → fallbackCategory, confidence → 0.5, slices → empty), and
// confidence clamped to [0,1].
//
// Fallback path (non-JSON answer): fallbackCategory, raw text as reasoning,
// no citations, confidence 0.3.
func normalize(patientID, raw, fallbackCategory string, now time.Time) *Assessment {
	out := &Assessment{
		PatientID:        patientID,
		Citations:        []Citation{},
		RelevantSymptoms: []string{},
		Timestamp:        now,
	}

	// json.Unmarshal accepts a bare "null" as a no-op success, which would
	// slip past the fallback with zero-valued fields; only an object can
	// carry the contract's fields.
	text := extractFencedJSON(raw)
	var parsed parsedAssessment
	if !strings.HasPrefix(text, "{") || json.Unmarshal([]byte(text), &parsed) != nil {
		out.Assessment = fallbackCategory
		out.Reasoning = raw
		out.Confidence = fallbackConfidence
		return out
	}

	out.Assessment = parsed.Assessment
	if out.Assessment == "" {
		out.Assessment = fallbackCategory
	}
	out.Reasoning = parsed.Reasoning
	if parsed.Citations != nil {
		out.Citations = parsed.Citations
	}
	if parsed.RelevantSymptoms != nil {
		out.RelevantSymptoms = parsed.RelevantSymptoms
	}
	if parsed.Confidence != nil {
		out.Confidence = clamp01(*parsed.Confidence)
	} else {
		out.Confidence = defaultConfidence
	}
	return out
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
