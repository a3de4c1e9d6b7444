package audit

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/martinserrat/triagent/pkg/uuid"
)

// Service provides audit logging capabilities.
// All operations are append-only; no updates or deletes are supported.
type Service struct {
	db *sql.DB
}

// NewService creates a new audit service.
func NewService(db *sql.DB) *Service {
	return &Service{db: db}
}

// Log creates a new audit event. This is the ONLY way to create audit
// events - no updates, no deletes.
func (s *Service) Log(ctx context.Context, event *Event) error {
	details := event.Details
	if len(details) == 0 {
		details = json.RawMessage(`{}`)
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO audit_event (
			id, actor_id, actor_type, action, entity_type, entity_id,
			details, outcome, ip_address, user_agent, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		event.ID,
		event.ActorID,
		string(event.ActorType),
		event.Action,
		event.EntityType,
		event.EntityID,
		string(details),
		string(event.Outcome),
		event.IPAddress,
		event.UserAgent,
		event.CreatedAt,
	)
	return err
}

// LogAction is a helper for the common case: generated ID, structured
// details, current timestamp.
func (s *Service) LogAction(
	ctx context.Context,
	actorID string,
	actorType ActorType,
	action string,
	entityType *string,
	entityID *string,
	details any,
	outcome Outcome,
) error {
	var detailsJSON json.RawMessage
	if details != nil {
		var err error
		detailsJSON, err = json.Marshal(details)
		if err != nil {
			return err
		}
	}

	return s.Log(ctx, &Event{
		ID:         uuid.NewV7().String(),
		ActorID:    actorID,
		ActorType:  actorType,
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		Details:    detailsJSON,
		Outcome:    outcome,
		CreatedAt:  time.Now().UTC(),
	})
}

// List retrieves audit events ordered by created_at DESC (newest first).
func (s *Service) List(ctx context.Context, limit, offset int) ([]*Event, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, actor_id, actor_type, action, entity_type, entity_id,
		       details, outcome, ip_address, user_agent, created_at
		FROM audit_event
		ORDER BY created_at DESC
		LIMIT ? OFFSET ?
	`, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]*Event, 0)
	for rows.Next() {
		var (
			e         Event
			actorType string
			outcome   string
			details   string
		)
		if err := rows.Scan(
			&e.ID, &e.ActorID, &actorType, &e.Action, &e.EntityType,
			&e.EntityID, &details, &outcome, &e.IPAddress, &e.UserAgent,
			&e.CreatedAt,
		); err != nil {
			return nil, err
		}
		e.ActorType = ActorType(actorType)
		e.Outcome = Outcome(outcome)
		e.Details = json.RawMessage(details)
		out = append(out, &e)
	}
	return out, rows.Err()
}
