package assessment

import (
	"testing"
	"time"
)

var testNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

const wellFormed = `{
	"assessment": "Urgent Referral",
	"reasoning": "Hemoptysis in a 67-year-old with 45 pack-years meets NG12 lung cancer referral criteria.",
	"citations": [{"page_number": 12, "section": "Lung cancer", "content": "refer urgently", "relevance_score": 0.91}],
	"relevant_symptoms": ["hemoptysis", "weight loss"],
	"confidence": 0.9
}`

func TestNormalize_WellFormedJSON(t *testing.T) {
	t.Parallel()

	got := normalize("PT-101", wellFormed, CategoryRoutine, testNow)
	if got.Assessment != CategoryUrgentReferral {
		t.Errorf("Assessment = %q, want Urgent Referral", got.Assessment)
	}
	if len(got.Citations) != 1 || got.Citations[0].PageNumber != 12 {
		t.Errorf("citations wrong: %+v", got.Citations)
	}
	if got.Confidence != 0.9 {
		t.Errorf("Confidence = %v, want 0.9", got.Confidence)
	}
	if got.PatientID != "PT-101" || !got.Timestamp.Equal(testNow) {
		t.Errorf("identity fields wrong: %+v", got)
	}
}

func TestNormalize_FencedEqualsUnfenced(t *testing.T) {
	t.Parallel()

	plain := normalize("PT-101", wellFormed, CategoryRoutine, testNow)
	jsonFenced := normalize("PT-101", "```json\n"+wellFormed+"\n```", CategoryRoutine, testNow)
	genericFenced := normalize("PT-101", "```\n"+wellFormed+"\n```", CategoryRoutine, testNow)

	for name, got := range map[string]*Assessment{"json fence": jsonFenced, "generic fence": genericFenced} {
		if got.Assessment != plain.Assessment || got.Confidence != plain.Confidence ||
			got.Reasoning != plain.Reasoning || len(got.Citations) != len(plain.Citations) {
			t.Errorf("%s: normalized result differs from unfenced", name)
		}
	}
}

func TestNormalize_MissingFieldsDefaulted(t *testing.T) {
	t.Parallel()

	got := normalize("PT-101", `{"reasoning":"thin answer"}`, CategoryRoutine, testNow)
	if got.Assessment != CategoryRoutine {
		t.Errorf("Assessment = %q, want default Routine", got.Assessment)
	}
	if got.Confidence != defaultConfidence {
		t.Errorf("Confidence = %v, want %v", got.Confidence, defaultConfidence)
	}
	if got.Citations == nil || len(got.Citations) != 0 {
		t.Errorf("Citations = %v, want empty slice", got.Citations)
	}
	if got.RelevantSymptoms == nil || len(got.RelevantSymptoms) != 0 {
		t.Errorf("RelevantSymptoms = %v, want empty slice", got.RelevantSymptoms)
	}
}

func TestNormalize_ConfidenceClamped(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want float64
	}{
		{"above one", `{"assessment":"Routine","confidence":1.7}`, 1.0},
		{"below zero", `{"assessment":"Routine","confidence":-0.2}`, 0.0},
		{"in range", `{"assessment":"Routine","confidence":0.42}`, 0.42},
		{"explicit zero kept", `{"assessment":"Routine","confidence":0}`, 0.0},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := normalize("PT-101", tt.in, CategoryRoutine, testNow)
			if got.Confidence != tt.want {
				t.Errorf("Confidence = %v, want %v", got.Confidence, tt.want)
			}
		})
	}
}

func TestNormalize_UnparseableText_Fallback(t *testing.T) {
	t.Parallel()

	raw := "I cannot determine this from the available guidelines."
	got := normalize("PT-101", raw, CategoryRoutine, testNow)

	if got.Assessment != CategoryRoutine {
		t.Errorf("Assessment = %q, want fallback Routine", got.Assessment)
	}
	if got.Reasoning != raw {
		t.Errorf("Reasoning = %q, want the raw text", got.Reasoning)
	}
	if got.Confidence != fallbackConfidence {
		t.Errorf("Confidence = %v, want %v", got.Confidence, fallbackConfidence)
	}
	if len(got.Citations) != 0 {
		t.Errorf("Citations = %v, want empty", got.Citations)
	}
}

func TestNormalize_NonObjectJSON_Fallback(t *testing.T) {
	t.Parallel()

	// "null", "[]" and friends decode into the zero struct without error,
	// so they must be routed to the fallback path explicitly.
	tests := []struct {
		name string
		raw  string
	}{
		{"bare null", "null"},
		{"fenced null", "```json\nnull\n```"},
		{"array", `[{"assessment":"Routine"}]`},
		{"quoted string", `"Routine"`},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := normalize("PT-1", tt.raw, CategoryRoutine, testNow)
			if got.Assessment != CategoryRoutine {
				t.Errorf("Assessment = %q, want fallback Routine", got.Assessment)
			}
			if got.Reasoning != tt.raw {
				t.Errorf("Reasoning = %q, want raw text %q", got.Reasoning, tt.raw)
			}
			if got.Confidence != fallbackConfidence {
				t.Errorf("Confidence = %v, want %v", got.Confidence, fallbackConfidence)
			}
		})
	}
}

func TestNormalize_ConfigurableFallbackCategory(t *testing.T) {
	t.Parallel()

	got := normalize("PT-101", "not json at all", CategoryUrgentInvestigation, testNow)
	if got.Assessment != CategoryUrgentInvestigation {
		t.Errorf("Assessment = %q, want configured fallback", got.Assessment)
	}
}

func TestExtractFencedJSON(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"no fences", `{"a":1}`, `{"a":1}`},
		{"json fence", "prefix\n```json\n{\"a\":1}\n```\nsuffix", `{"a":1}`},
		{"generic fence", "```\n{\"a\":1}\n```", `{"a":1}`},
		{"json fence preferred", "```json\n{\"a\":1}\n```\n```\n{\"b\":2}\n```", `{"a":1}`},
		{"unclosed fence takes remainder", "```json\n{\"a\":1}", `{"a":1}`},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := extractFencedJSON(tt.in); got != tt.want {
				t.Errorf("extractFencedJSON() = %q, want %q", got, tt.want)
			}
		})
	}
}
