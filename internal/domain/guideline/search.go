// SearchService: semantic retrieval over the guideline corpus.
// Embeds the query, computes cosine similarity in-memory against the stored
// chunk vectors, and returns the top-k passages.
package guideline

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"sort"

	"github.com/martinserrat/triagent/internal/infra/llm"
)

const (
	// DefaultTopK is the number of passages returned when the caller does
	// not specify one.
	DefaultTopK = 5

	// maxPassageChars caps the content carried in each returned passage.
	maxPassageChars = 2000
)

// SearchService runs vector search over guideline chunks.
type SearchService struct {
	db  *sql.DB
	llm llm.LLMProvider
}

// NewSearchService creates a SearchService backed by the given DB and LLM provider.
func NewSearchService(db *sql.DB, provider llm.LLMProvider) *SearchService {
	return &SearchService{db: db, llm: provider}
}

// Search embeds the query and returns the topK most similar passages, ordered
// by descending relevance. Relevance scores are clamped to [0,1] and rounded
// to 3 decimals. Passage content is truncated to maxPassageChars.
//
// Returns ErrSearchUnavailable (wrapped) if the query cannot be embedded.
func (s *SearchService) Search(ctx context.Context, query string, topK int) ([]Passage, error) {
	if topK <= 0 {
		topK = DefaultTopK
	}

	resp, err := s.llm.Embed(ctx, llm.EmbedRequest{Texts: []string{query}})
	if err != nil {
		return nil, fmt.Errorf("%w: embed query: %v", ErrSearchUnavailable, err)
	}
	if len(resp.Embeddings) == 0 {
		return nil, fmt.Errorf("%w: embed query returned no vector", ErrSearchUnavailable)
	}
	queryVec := resp.Embeddings[0]

	rows, err := s.db.QueryContext(ctx, `
		SELECT gc.id, gc.source, gc.content, gc.page_number, gc.section, cv.embedding
		FROM guideline_chunk gc
		JOIN chunk_vector cv ON cv.chunk_id = gc.id
		WHERE gc.embedding_status = ?
	`, string(EmbeddingStatusEmbedded))
	if err != nil {
		return nil, fmt.Errorf("search: fetch vectors: %w", err)
	}
	defer rows.Close()

	var scored []Passage
	for rows.Next() {
		var (
			p   Passage
			raw string
		)
		if scanErr := rows.Scan(&p.ChunkID, &p.Source, &p.Content, &p.PageNumber, &p.Section, &raw); scanErr != nil {
			return nil, fmt.Errorf("search: scan: %w", scanErr)
		}
		vec, decodeErr := decodeEmbedding(raw)
		if decodeErr != nil {
			continue // skip malformed vectors
		}
		p.RelevanceScore = roundRelevance(cosineSimilarity(queryVec, vec))
		p.Content = truncatePassage(p.Content, maxPassageChars)
		scored = append(scored, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].RelevanceScore > scored[j].RelevanceScore
	})
	if len(scored) > topK {
		scored = scored[:topK]
	}
	return scored, nil
}

// cosineSimilarity computes the cosine of the angle between two vectors.
// Returns 0 for mismatched lengths or zero-magnitude vectors.
func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// truncatePassage caps content at max characters without splitting a
// multi-byte rune.
func truncatePassage(s string, max int) string {
	if len(s) <= max {
		return s
	}
	n := 0
	for i := range s {
		if n == max {
			return s[:i]
		}
		n++
	}
	return s
}

// roundRelevance clamps a similarity to [0,1] and rounds to 3 decimals.
func roundRelevance(sim float64) float64 {
	if sim < 0 {
		sim = 0
	}
	if sim > 1 {
		sim = 1
	}
	return math.Round(sim*1000) / 1000
}
