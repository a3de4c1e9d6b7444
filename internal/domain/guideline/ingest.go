// IngestService stores guideline documents as page-aware chunks with
// status=pending, then publishes a guideline.ingested event for the embedder.
package guideline

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/martinserrat/triagent/internal/infra/eventbus"
	"github.com/martinserrat/triagent/pkg/uuid"
)

// TopicGuidelineIngested is the event bus topic published after a successful ingest.
const TopicGuidelineIngested = "guideline.ingested"

// IngestedEventPayload carries identifiers for the downstream embedder.
type IngestedEventPayload struct {
	Source     string
	ChunkCount int
}

// IngestInput is a guideline document to ingest: a source name plus its pages.
type IngestInput struct {
	Source string
	Pages  []Page
}

// IngestService handles guideline chunking and storage.
type IngestService struct {
	db  *sql.DB
	bus eventbus.EventBus
}

// NewIngestService creates an IngestService backed by the given DB and event bus.
func NewIngestService(db *sql.DB, bus eventbus.EventBus) *IngestService {
	return &IngestService{db: db, bus: bus}
}

// Ingest splits the document into chunks, replaces any previous chunks for the
// same source, and publishes a guideline.ingested event.
//
// Re-ingesting a source is idempotent: old chunks (and their vectors, via
// FK cascade) are deleted before the new ones are inserted.
func (s *IngestService) Ingest(ctx context.Context, input IngestInput) ([]*Chunk, error) {
	if strings.TrimSpace(input.Source) == "" {
		return nil, fmt.Errorf("source is required")
	}

	drafts := chunkPages(input.Pages)
	if len(drafts) == 0 {
		return nil, fmt.Errorf("document %q has no extractable text", input.Source)
	}

	now := time.Now().UTC()
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx, `DELETE FROM guideline_chunk WHERE source = ?`, input.Source); err != nil {
		return nil, fmt.Errorf("clear previous chunks: %w", err)
	}

	chunks := make([]*Chunk, 0, len(drafts))
	for i, d := range drafts {
		c := &Chunk{
			ID:              uuid.NewV7().String(),
			Source:          input.Source,
			ChunkIndex:      i,
			PageNumber:      d.StartPage,
			EndPage:         d.EndPage,
			Section:         d.Section,
			Content:         d.Text,
			EmbeddingStatus: EmbeddingStatusPending,
			CreatedAt:       now,
		}
		_, err := tx.ExecContext(ctx, `
			INSERT INTO guideline_chunk (
				id, source, chunk_index, page_number, end_page, section,
				content, embedding_status, embedded_at, created_at
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, NULL, ?)
		`,
			c.ID, c.Source, c.ChunkIndex, c.PageNumber, c.EndPage,
			c.Section, c.Content, string(c.EmbeddingStatus), c.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("insert chunk %d: %w", i, err)
		}
		chunks = append(chunks, c)
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	s.bus.Publish(TopicGuidelineIngested, IngestedEventPayload{
		Source:     input.Source,
		ChunkCount: len(chunks),
	})

	return chunks, nil
}

// CountBySource returns the number of stored chunks per source.
func (s *IngestService) CountBySource(ctx context.Context) (map[string]int, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT source, COUNT(*) FROM guideline_chunk GROUP BY source
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]int)
	for rows.Next() {
		var (
			source string
			n      int
		)
		if err := rows.Scan(&source, &n); err != nil {
			return nil, err
		}
		out[source] = n
	}
	return out, rows.Err()
}
