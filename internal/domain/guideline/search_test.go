package guideline

import (
	"context"
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/martinserrat/triagent/internal/infra/eventbus"
)

// seedCorpus ingests and embeds a small corpus where each chunk gets a
// distinct axis-aligned vector, so query vectors select winners exactly.
func seedCorpus(t *testing.T, provider *fakeEmbedProvider) *SearchService {
	t.Helper()
	db := openGuidelineTestDB(t)
	ctx := context.Background()

	ingest := NewIngestService(db, eventbus.New())
	docs := []struct {
		source string
		page   int
		text   string
	}{
		{"gold.pdf", 12, "Urgent Referral Criteria\nHemoptysis with significant smoking history warrants urgent specialist referral."},
		{"gold.pdf", 30, "Stable Disease Management\nMaintenance bronchodilators for stable patients."},
		{"asthma.pdf", 5, "Mild Intermittent Asthma\nShort-acting beta agonists as needed."},
	}
	vectors := [][]float32{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}}
	provider.vectors = map[string][]float32{}

	for i, d := range docs {
		chunks, err := ingest.Ingest(ctx, IngestInput{
			Source: d.source,
			Pages:  []Page{{Number: d.page, Text: d.text}},
		})
		if err != nil {
			t.Fatalf("Ingest %s failed: %v", d.source, err)
		}
		for _, c := range chunks {
			provider.vectors[c.Content] = vectors[i]
		}
		embedder := NewEmbedderService(db, provider)
		if err := embedder.EmbedPending(ctx, d.source); err != nil {
			t.Fatalf("EmbedPending %s failed: %v", d.source, err)
		}
	}

	return NewSearchService(db, provider)
}

func TestSearchService_Search_RanksByCosineSimilarity(t *testing.T) {
	t.Parallel()

	provider := &fakeEmbedProvider{}
	search := seedCorpus(t, provider)

	// Query vector closest to the urgent-referral chunk, with a small
	// component toward the stable-disease chunk.
	provider.vectors["urgent referral for hemoptysis"] = []float32{0.9, 0.1, 0}

	passages, err := search.Search(context.Background(), "urgent referral for hemoptysis", 2)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(passages) != 2 {
		t.Fatalf("expected 2 passages, got %d", len(passages))
	}
	if passages[0].PageNumber != 12 || !strings.Contains(passages[0].Content, "urgent specialist referral") {
		t.Errorf("top passage wrong: %+v", passages[0])
	}
	if passages[0].RelevanceScore <= passages[1].RelevanceScore {
		t.Errorf("results not ordered by relevance: %v >= %v expected",
			passages[0].RelevanceScore, passages[1].RelevanceScore)
	}
	if passages[0].Section != "Urgent Referral Criteria" {
		t.Errorf("Section = %q, want %q", passages[0].Section, "Urgent Referral Criteria")
	}
}

func TestSearchService_Search_RelevanceRoundedAndBounded(t *testing.T) {
	t.Parallel()

	provider := &fakeEmbedProvider{}
	search := seedCorpus(t, provider)
	provider.vectors["any query"] = []float32{0.5, 0.5, 0.1}

	passages, err := search.Search(context.Background(), "any query", 3)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	for _, p := range passages {
		if p.RelevanceScore < 0 || p.RelevanceScore > 1 {
			t.Errorf("relevance %v outside [0,1]", p.RelevanceScore)
		}
		scaled := p.RelevanceScore * 1000
		if math.Abs(scaled-math.Round(scaled)) > 1e-6 {
			t.Errorf("relevance %v not rounded to 3 decimals", p.RelevanceScore)
		}
	}
}

func TestSearchService_Search_DefaultTopK(t *testing.T) {
	t.Parallel()

	provider := &fakeEmbedProvider{}
	search := seedCorpus(t, provider)

	passages, err := search.Search(context.Background(), "anything", 0)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(passages) > DefaultTopK {
		t.Errorf("got %d passages, want at most %d", len(passages), DefaultTopK)
	}
}

func TestSearchService_Search_ContentCapped(t *testing.T) {
	t.Parallel()

	db := openGuidelineTestDB(t)
	ctx := context.Background()
	provider := &fakeEmbedProvider{}

	ingest := NewIngestService(db, eventbus.New())
	long := "Pulmonary Rehabilitation\n" + strings.Repeat("evidence ", 500)
	if _, err := ingest.Ingest(ctx, IngestInput{
		Source: "rehab.pdf",
		Pages:  []Page{{Number: 3, Text: long}},
	}); err != nil {
		t.Fatalf("Ingest failed: %v", err)
	}
	if err := NewEmbedderService(db, provider).EmbedPending(ctx, "rehab.pdf"); err != nil {
		t.Fatalf("EmbedPending failed: %v", err)
	}

	passages, err := NewSearchService(db, provider).Search(ctx, "rehabilitation", 1)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(passages) != 1 {
		t.Fatalf("expected 1 passage, got %d", len(passages))
	}
	if len(passages[0].Content) > maxPassageChars {
		t.Errorf("content length %d exceeds cap %d", len(passages[0].Content), maxPassageChars)
	}
}

func TestSearchService_Search_EmbedFailure_ReturnsErrSearchUnavailable(t *testing.T) {
	t.Parallel()

	db := openGuidelineTestDB(t)
	provider := &fakeEmbedProvider{err: errors.New("backend down")}
	search := NewSearchService(db, provider)

	_, err := search.Search(context.Background(), "anything", 3)
	if !errors.Is(err, ErrSearchUnavailable) {
		t.Errorf("expected ErrSearchUnavailable, got %v", err)
	}
}

func TestCosineSimilarity(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		a, b []float32
		want float64
	}{
		{"identical", []float32{1, 2, 3}, []float32{1, 2, 3}, 1},
		{"orthogonal", []float32{1, 0}, []float32{0, 1}, 0},
		{"opposite", []float32{1, 0}, []float32{-1, 0}, -1},
		{"length mismatch", []float32{1, 0}, []float32{1}, 0},
		{"zero vector", []float32{0, 0}, []float32{1, 1}, 0},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := cosineSimilarity(tt.a, tt.b)
			if diff := got - tt.want; diff > 1e-9 || diff < -1e-9 {
				t.Errorf("cosineSimilarity() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTruncatePassage_RuneBoundary(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		max  int
		want string
	}{
		{"under cap untouched", "short", 100, "short"},
		{"ascii capped", "abcdef", 4, "abcd"},
		{"multibyte not split", "ééééé", 3, "ééé"},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := truncatePassage(tt.in, tt.max); got != tt.want {
				t.Errorf("truncatePassage(%q, %d) = %q, want %q", tt.in, tt.max, got, tt.want)
			}
		})
	}
}
