// EmbedderService consumes guideline.ingested events, calls LLMProvider.Embed
// in batch per source, stores vectors in chunk_vector, and marks chunks as
// 'embedded' or 'failed'.
package guideline

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/martinserrat/triagent/internal/infra/eventbus"
	"github.com/martinserrat/triagent/internal/infra/llm"
)

const (
	embedMaxRetries = 3
	embedBaseDelay  = 100 * time.Millisecond
)

// EmbedderService processes pending guideline_chunk rows.
type EmbedderService struct {
	db  *sql.DB
	llm llm.LLMProvider
}

// NewEmbedderService creates an EmbedderService backed by the given DB and LLM provider.
func NewEmbedderService(db *sql.DB, provider llm.LLMProvider) *EmbedderService {
	return &EmbedderService{db: db, llm: provider}
}

// Start subscribes to TopicGuidelineIngested and runs EmbedPending for each event.
// Runs in the calling goroutine — launch with: go svc.Start(ctx, bus)
// Stops when ctx is cancelled.
func (s *EmbedderService) Start(ctx context.Context, bus eventbus.EventBus) {
	ch := bus.Subscribe(TopicGuidelineIngested)
	for {
		select {
		case <-ctx.Done():
			return
		case evt := <-ch:
			payload, ok := evt.Payload.(IngestedEventPayload)
			if !ok {
				continue
			}
			if err := s.EmbedPending(ctx, payload.Source); err != nil {
				log.Printf("embedder: source %s: %v", payload.Source, err)
			}
		}
	}
}

// EmbedPending fetches all pending chunks for a source, calls LLM.Embed in a
// single batch, stores vectors in chunk_vector, and marks status='embedded'.
// If the LLM call fails after all retries, marks chunks as 'failed' and
// returns an error.
func (s *EmbedderService) EmbedPending(ctx context.Context, source string) error {
	chunks, err := s.fetchPendingChunks(ctx, source)
	if err != nil {
		return fmt.Errorf("embedder: fetch chunks: %w", err)
	}
	if len(chunks) == 0 {
		return nil
	}

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Content
	}

	vecs, err := s.callEmbedWithRetry(ctx, texts)
	if err != nil {
		s.markAllFailed(ctx, chunks)
		return fmt.Errorf("embedder: LLM.Embed: %w", err)
	}
	if len(vecs) != len(chunks) {
		s.markAllFailed(ctx, chunks)
		return fmt.Errorf("embedder: got %d vectors for %d chunks", len(vecs), len(chunks))
	}

	if storeErr := s.storeVectors(ctx, chunks, vecs); storeErr != nil {
		s.markAllFailed(ctx, chunks)
		return fmt.Errorf("embedder: store vectors: %w", storeErr)
	}
	return nil
}

func (s *EmbedderService) fetchPendingChunks(ctx context.Context, source string) ([]*Chunk, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, content FROM guideline_chunk
		WHERE source = ? AND embedding_status = ?
		ORDER BY chunk_index ASC
	`, source, string(EmbeddingStatusPending))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var chunks []*Chunk
	for rows.Next() {
		var c Chunk
		if err := rows.Scan(&c.ID, &c.Content); err != nil {
			return nil, err
		}
		chunks = append(chunks, &c)
	}
	return chunks, rows.Err()
}

// callEmbedWithRetry calls LLMProvider.Embed with exponential backoff.
// Attempts: embedMaxRetries (100ms, 200ms, 400ms delays).
func (s *EmbedderService) callEmbedWithRetry(ctx context.Context, texts []string) ([][]float32, error) {
	var lastErr error
	delay := embedBaseDelay
	for attempt := 0; attempt < embedMaxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(delay):
				delay *= 2
			}
		}
		resp, err := s.llm.Embed(ctx, llm.EmbedRequest{Texts: texts})
		if err == nil {
			return resp.Embeddings, nil
		}
		lastErr = err
	}
	return nil, fmt.Errorf("all %d retries failed: %w", embedMaxRetries, lastErr)
}

// storeVectors inserts JSON-encoded vectors into chunk_vector and marks each
// chunk as 'embedded'. Runs in a single transaction.
func (s *EmbedderService) storeVectors(ctx context.Context, chunks []*Chunk, vecs [][]float32) error {
	now := time.Now().UTC()
	tx, txErr := s.db.BeginTx(ctx, nil)
	if txErr != nil {
		return txErr
	}
	defer tx.Rollback() //nolint:errcheck

	for i, chunk := range chunks {
		embJSON, encErr := encodeEmbedding(vecs[i])
		if encErr != nil {
			return fmt.Errorf("encode embedding[%d]: %w", i, encErr)
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO chunk_vector (chunk_id, embedding, created_at)
			VALUES (?, ?, ?)
			ON CONFLICT(chunk_id) DO UPDATE SET embedding = excluded.embedding
		`, chunk.ID, embJSON, now); err != nil {
			return fmt.Errorf("insert chunk_vector[%d]: %w", i, err)
		}
		if _, err := tx.ExecContext(ctx, `
			UPDATE guideline_chunk SET embedding_status = ?, embedded_at = ? WHERE id = ?
		`, string(EmbeddingStatusEmbedded), now, chunk.ID); err != nil {
			return fmt.Errorf("update guideline_chunk[%d]: %w", i, err)
		}
	}
	return tx.Commit()
}

// markAllFailed sets embedding_status='failed' on all given chunks.
// Errors are silently ignored to avoid masking the original embed error.
func (s *EmbedderService) markAllFailed(ctx context.Context, chunks []*Chunk) {
	for _, chunk := range chunks {
		_, _ = s.db.ExecContext(ctx, `
			UPDATE guideline_chunk SET embedding_status = ?, embedded_at = NULL WHERE id = ?
		`, string(EmbeddingStatusFailed), chunk.ID)
	}
}

// encodeEmbedding serialises a float32 slice to JSON TEXT for storage.
// e.g. [0.1, 0.2, 0.3] → "[0.1,0.2,0.3]"
func encodeEmbedding(vec []float32) (string, error) {
	b, err := json.Marshal(vec)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// decodeEmbedding parses a JSON TEXT vector back into a float32 slice.
func decodeEmbedding(raw string) ([]float32, error) {
	var vec []float32
	if err := json.Unmarshal([]byte(raw), &vec); err != nil {
		return nil, err
	}
	return vec, nil
}
