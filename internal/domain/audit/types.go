// Package audit provides append-only audit logging for clinically relevant
// actions (assessments, chat turns, guideline ingests).
package audit

import (
	"encoding/json"
	"time"
)

// ActorType represents the type of actor performing an action.
type ActorType string

const (
	ActorTypeClient ActorType = "client"
	ActorTypeSystem ActorType = "system"
)

// Outcome represents the result of an audited action.
type Outcome string

const (
	OutcomeSuccess Outcome = "success"
	OutcomeDenied  Outcome = "denied"
	OutcomeError   Outcome = "error"
)

// Event is a single audit log entry. Immutable once created.
type Event struct {
	ID         string          `json:"id"`
	ActorID    string          `json:"actor_id"`
	ActorType  ActorType       `json:"actor_type"`
	Action     string          `json:"action"`
	EntityType *string         `json:"entity_type,omitempty"`
	EntityID   *string         `json:"entity_id,omitempty"`
	Details    json.RawMessage `json:"details,omitempty"`
	Outcome    Outcome         `json:"outcome"`
	IPAddress  *string         `json:"ip_address,omitempty"`
	UserAgent  *string         `json:"user_agent,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
}
