// Page-aware chunker for the ingestion pipeline.
// Guideline PDFs are split along page boundaries rather than token windows so
// every retrieved passage can cite a real page number.
package guideline

import "strings"

// maxChunkChars caps the accumulated text per chunk. Pages are appended until
// the next page would push the chunk past this limit.
const maxChunkChars = 20000

// sectionTitleMaxLen bounds how long a line can be and still count as a
// section heading.
const sectionTitleMaxLen = 100

// chunkDraft is a chunk before persistence: text plus its page span.
type chunkDraft struct {
	Text      string
	StartPage int
	EndPage   int
	Section   string
}

// chunkPages groups consecutive pages into drafts of at most maxChunkChars
// characters.
//
// Rules:
//   - Pages with only whitespace are skipped.
//   - A chunk always contains at least one page; a single page longer than
//     maxChunkChars still becomes its own chunk.
//   - Each draft records the first and last page it spans and a section title
//     derived from its leading lines.
func chunkPages(pages []Page) []chunkDraft {
	var (
		drafts    []chunkDraft
		buf       strings.Builder
		startPage int
		endPage   int
	)

	flush := func() {
		if buf.Len() == 0 {
			return
		}
		text := buf.String()
		drafts = append(drafts, chunkDraft{
			Text:      text,
			StartPage: startPage,
			EndPage:   endPage,
			Section:   sectionTitle(text),
		})
		buf.Reset()
	}

	for _, p := range pages {
		text := strings.TrimSpace(p.Text)
		if text == "" {
			continue
		}
		if buf.Len() > 0 && buf.Len()+len(text) > maxChunkChars {
			flush()
		}
		if buf.Len() == 0 {
			startPage = p.Number
		} else {
			buf.WriteString("\n")
		}
		buf.WriteString(text)
		endPage = p.Number
	}
	flush()

	return drafts
}

// sectionTitle returns the first line of text that looks like a heading:
// longer than 3 characters after trimming and at most sectionTitleMaxLen.
// Falls back to "General" when no line qualifies.
func sectionTitle(text string) string {
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if len(line) > 3 && len(line) <= sectionTitleMaxLen {
			return line
		}
	}
	return "General"
}
