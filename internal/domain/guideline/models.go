// Package guideline implements the clinical guideline corpus: ingestion with
// page-aware chunking, asynchronous embedding, and semantic search. The
// assessment and chat workflows consume it through SearchService.
package guideline

import (
	"errors"
	"time"
)

// EmbeddingStatus tracks the lifecycle of a chunk through the embedding pipeline.
type EmbeddingStatus string

const (
	EmbeddingStatusPending  EmbeddingStatus = "pending"
	EmbeddingStatusEmbedded EmbeddingStatus = "embedded"
	EmbeddingStatusFailed   EmbeddingStatus = "failed"
)

// ErrSearchUnavailable is returned when the embedding backend cannot be
// reached, so query vectors cannot be computed.
var ErrSearchUnavailable = errors.New("guideline search unavailable")

// Chunk is a stored slice of a guideline document.
// DB table: guideline_chunk (migration 001).
type Chunk struct {
	ID              string
	Source          string
	ChunkIndex      int
	PageNumber      int
	EndPage         int
	Section         string
	Content         string
	EmbeddingStatus EmbeddingStatus
	EmbeddedAt      *time.Time
	CreatedAt       time.Time
}

// Passage is a single ranked retrieval result.
type Passage struct {
	ChunkID        string  `json:"chunk_id"`
	Source         string  `json:"source"`
	Content        string  `json:"content"`
	PageNumber     int     `json:"page_number"`
	Section        string  `json:"section"`
	RelevanceScore float64 `json:"relevance_score"`
}

// Page is one page of an incoming guideline document, pre-extraction.
type Page struct {
	Number int
	Text   string
}
