package patient

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"
)

// Store is the sqlite-backed patient repository.
type Store struct {
	db *sql.DB
}

// NewStore creates a Store on top of an open database handle.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// Get returns the patient with the given ID.
// Returns ErrPatientNotFound if no such patient exists.
func (s *Store) Get(ctx context.Context, id string) (*Patient, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, age, gender, smoking_history, symptoms,
		       symptom_duration_days, created_at, updated_at
		FROM patient
		WHERE id = ?
	`, id)

	p, err := scanPatient(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrPatientNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

// List returns all patients ordered by ID.
func (s *Store) List(ctx context.Context) ([]*Patient, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, age, gender, smoking_history, symptoms,
		       symptom_duration_days, created_at, updated_at
		FROM patient
		ORDER BY id ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]*Patient, 0)
	for rows.Next() {
		p, scanErr := scanPatient(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// Put inserts or replaces a patient record.
func (s *Store) Put(ctx context.Context, p *Patient) error {
	if strings.TrimSpace(p.ID) == "" {
		return fmt.Errorf("patient id is required")
	}
	symptoms := p.Symptoms
	if symptoms == nil {
		symptoms = []string{}
	}
	symptomsRaw, err := json.Marshal(symptoms)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	p.UpdatedAt = now

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO patient (
			id, name, age, gender, smoking_history, symptoms,
			symptom_duration_days, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			age = excluded.age,
			gender = excluded.gender,
			smoking_history = excluded.smoking_history,
			symptoms = excluded.symptoms,
			symptom_duration_days = excluded.symptom_duration_days,
			updated_at = excluded.updated_at
	`,
		p.ID,
		p.Name,
		p.Age,
		p.Gender,
		p.SmokingHistory,
		string(symptomsRaw),
		p.SymptomDurationDays,
		p.CreatedAt,
		p.UpdatedAt,
	)
	return err
}

// SeedFromFile loads patient records from a JSON file (array of patients)
// and upserts them. Returns the number of records loaded.
func (s *Store) SeedFromFile(ctx context.Context, path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("read patient seed file: %w", err)
	}

	var patients []*Patient
	if err := json.Unmarshal(data, &patients); err != nil {
		return 0, fmt.Errorf("parse patient seed file: %w", err)
	}

	for _, p := range patients {
		if err := s.Put(ctx, p); err != nil {
			return 0, fmt.Errorf("seed patient %s: %w", p.ID, err)
		}
	}
	return len(patients), nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPatient(row rowScanner) (*Patient, error) {
	var (
		p           Patient
		symptomsRaw string
	)
	err := row.Scan(
		&p.ID,
		&p.Name,
		&p.Age,
		&p.Gender,
		&p.SmokingHistory,
		&symptomsRaw,
		&p.SymptomDurationDays,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if symptomsRaw != "" {
		if err := json.Unmarshal([]byte(symptomsRaw), &p.Symptoms); err != nil {
			return nil, fmt.Errorf("decode symptoms for %s: %w", p.ID, err)
		}
	}
	if p.Symptoms == nil {
		p.Symptoms = []string{}
	}
	return &p, nil
}
