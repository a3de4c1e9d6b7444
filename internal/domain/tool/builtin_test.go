package tool

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"github.com/martinserrat/triagent/internal/domain/guideline"
	"github.com/martinserrat/triagent/internal/domain/patient"
)

type fakePatients struct {
	records map[string]*patient.Patient
}

func (f *fakePatients) Get(_ context.Context, id string) (*patient.Patient, error) {
	p, ok := f.records[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", patient.ErrPatientNotFound, id)
	}
	return p, nil
}

type fakeSearch struct {
	lastTopK int
	passages []guideline.Passage
	err      error
}

func (f *fakeSearch) Search(_ context.Context, _ string, topK int) ([]guideline.Passage, error) {
	f.lastTopK = topK
	if f.err != nil {
		return nil, f.err
	}
	return f.passages, nil
}

func TestGetPatientDataExecutor_ReturnsRecord(t *testing.T) {
	t.Parallel()

	exec := NewGetPatientDataExecutor(&fakePatients{records: map[string]*patient.Patient{
		"PT-101": {ID: "PT-101", Name: "John Smith", Age: 67, Symptoms: []string{"hemoptysis"}},
	}})

	out, err := exec.Execute(context.Background(), json.RawMessage(`{"patient_id":"PT-101"}`))
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}

	var got patient.Patient
	if err := json.Unmarshal(out, &got); err != nil {
		t.Fatalf("output not valid JSON: %v", err)
	}
	if got.Name != "John Smith" || got.Age != 67 {
		t.Errorf("unexpected record: %+v", got)
	}
}

func TestGetPatientDataExecutor_UnknownPatient_FriendlyMessage(t *testing.T) {
	t.Parallel()

	exec := NewGetPatientDataExecutor(&fakePatients{records: map[string]*patient.Patient{}})

	_, err := exec.Execute(context.Background(), json.RawMessage(`{"patient_id":"PT-999"}`))
	if err == nil {
		t.Fatal("expected error for unknown patient")
	}
	if err.Error() != "No patient found with ID: PT-999" {
		t.Errorf("error = %q, want friendly not-found message", err.Error())
	}
}

func TestGetPatientDataExecutor_MissingID_ReturnsError(t *testing.T) {
	t.Parallel()

	exec := NewGetPatientDataExecutor(&fakePatients{})
	if _, err := exec.Execute(context.Background(), json.RawMessage(`{}`)); err == nil {
		t.Error("expected error for missing patient_id")
	}
}

func TestSearchGuidelinesExecutor_FloatTopKCoerced(t *testing.T) {
	t.Parallel()

	search := &fakeSearch{passages: []guideline.Passage{{ChunkID: "c1", Content: "spirometry"}}}
	exec := NewSearchGuidelinesExecutor(search)

	out, err := exec.Execute(context.Background(), json.RawMessage(`{"query":"spirometry","top_k":5.0}`))
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if search.lastTopK != 5 {
		t.Errorf("topK = %d, want 5 (coerced from float)", search.lastTopK)
	}
	if !strings.Contains(string(out), "spirometry") {
		t.Errorf("output missing results: %s", out)
	}
}

func TestSearchGuidelinesExecutor_DefaultTopK(t *testing.T) {
	t.Parallel()

	search := &fakeSearch{}
	exec := NewSearchGuidelinesExecutor(search)

	if _, err := exec.Execute(context.Background(), json.RawMessage(`{"query":"copd"}`)); err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if search.lastTopK != guideline.DefaultTopK {
		t.Errorf("topK = %d, want default %d", search.lastTopK, guideline.DefaultTopK)
	}
}

func TestSearchGuidelinesExecutor_MissingQuery_ReturnsError(t *testing.T) {
	t.Parallel()

	exec := NewSearchGuidelinesExecutor(&fakeSearch{})
	if _, err := exec.Execute(context.Background(), json.RawMessage(`{"top_k":3}`)); err == nil {
		t.Error("expected error for missing query")
	}
}
