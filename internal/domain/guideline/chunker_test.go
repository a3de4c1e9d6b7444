package guideline

import (
	"strings"
	"testing"
)

func TestChunkPages_EmptyInput_ReturnsNil(t *testing.T) {
	t.Parallel()

	if got := chunkPages(nil); got != nil {
		t.Errorf("expected nil for empty input, got %d drafts", len(got))
	}
	if got := chunkPages([]Page{{Number: 1, Text: "   \n\t "}}); got != nil {
		t.Errorf("expected nil for whitespace-only input, got %d drafts", len(got))
	}
}

func TestChunkPages_SmallPagesMergeIntoOneChunk(t *testing.T) {
	t.Parallel()

	pages := []Page{
		{Number: 1, Text: "Spirometry Testing\nFEV1/FVC ratio below 0.70 confirms obstruction."},
		{Number: 2, Text: "Treatment follows a stepwise approach."},
	}
	drafts := chunkPages(pages)
	if len(drafts) != 1 {
		t.Fatalf("expected 1 draft, got %d", len(drafts))
	}
	d := drafts[0]
	if d.StartPage != 1 || d.EndPage != 2 {
		t.Errorf("page span = %d..%d, want 1..2", d.StartPage, d.EndPage)
	}
	if !strings.Contains(d.Text, "stepwise approach") {
		t.Errorf("second page text missing from draft: %q", d.Text)
	}
	if d.Section != "Spirometry Testing" {
		t.Errorf("Section = %q, want %q", d.Section, "Spirometry Testing")
	}
}

func TestChunkPages_SplitsWhenLimitExceeded(t *testing.T) {
	t.Parallel()

	big := strings.Repeat("x", maxChunkChars-10)
	pages := []Page{
		{Number: 1, Text: big},
		{Number: 2, Text: "Management of Acute Exacerbations\nmore text"},
	}
	drafts := chunkPages(pages)
	if len(drafts) != 2 {
		t.Fatalf("expected 2 drafts, got %d", len(drafts))
	}
	if drafts[0].StartPage != 1 || drafts[0].EndPage != 1 {
		t.Errorf("first draft span = %d..%d, want 1..1", drafts[0].StartPage, drafts[0].EndPage)
	}
	if drafts[1].StartPage != 2 {
		t.Errorf("second draft StartPage = %d, want 2", drafts[1].StartPage)
	}
}

func TestChunkPages_OversizedSinglePageStillChunks(t *testing.T) {
	t.Parallel()

	pages := []Page{{Number: 7, Text: strings.Repeat("y", maxChunkChars+5000)}}
	drafts := chunkPages(pages)
	if len(drafts) != 1 {
		t.Fatalf("expected 1 draft for single oversized page, got %d", len(drafts))
	}
	if drafts[0].StartPage != 7 || drafts[0].EndPage != 7 {
		t.Errorf("page span = %d..%d, want 7..7", drafts[0].StartPage, drafts[0].EndPage)
	}
}

func TestSectionTitle(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		text string
		want string
	}{
		{
			name: "first line is the heading",
			text: "Diagnosis and Assessment\nSpirometry is required.",
			want: "Diagnosis and Assessment",
		},
		{
			name: "short lines are skipped",
			text: "1.\nGOLD Stage Classification\nbody",
			want: "GOLD Stage Classification",
		},
		{
			name: "overlong first line is skipped",
			text: strings.Repeat("a", sectionTitleMaxLen+1) + "\nShort Heading",
			want: "Short Heading",
		},
		{
			name: "no qualifying line falls back",
			text: "a\nb\nc",
			want: "General",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := sectionTitle(tt.text); got != tt.want {
				t.Errorf("sectionTitle() = %q, want %q", got, tt.want)
			}
		})
	}
}
