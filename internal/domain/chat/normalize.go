package chat

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/martinserrat/triagent/internal/domain/guideline"
)

const (
	// maxExcerptChars caps excerpts taken from parsed model citations.
	maxExcerptChars = 500

	// fallbackExcerptChars caps excerpts synthesized from retrieved passages
	// when the model's answer is not valid JSON.
	fallbackExcerptChars = 200

	// fallbackCitationCount limits how many retrieved passages become
	// synthesized citations on the fallback path.
	fallbackCitationCount = 3

	defaultCitationSource = "NG12 PDF"
)

// Citation is a guideline reference attached to a chat answer.
type Citation struct {
	Source  string `json:"source"`
	Page    int    `json:"page"`
	ChunkID string `json:"chunk_id"`
	Excerpt string `json:"excerpt"`
}

type parsedReply struct {
	Answer    string `json:"answer"`
	Citations []struct {
		Source  string   `json:"source"`
		Page    *float64 `json:"page"`
		ChunkID string   `json:"chunk_id"`
		Excerpt string   `json:"excerpt"`
	} `json:"citations"`
}

// parseReply turns the model's raw answer into (answer, citations).
//
// Parse path: fences stripped, JSON decoded, citation fields normalised
// (missing source/chunk_id defaulted, page coerced to int, excerpt capped).
//
// Fallback path (non-JSON answer): the raw text is the answer and citations
// are synthesized from the first fallbackCitationCount retrieved passages.
func parseReply(raw string, passages []guideline.Passage) (string, []Citation) {
	// json.Unmarshal accepts a bare "null" as a no-op success; require an
	// object so literal non-object answers still synthesize citations.
	text := stripFences(raw)
	var parsed parsedReply
	if !strings.HasPrefix(text, "{") || json.Unmarshal([]byte(text), &parsed) != nil {
		return raw, fallbackCitations(passages)
	}

	answer := parsed.Answer
	if answer == "" {
		answer = raw
	}

	citations := make([]Citation, 0, len(parsed.Citations))
	for _, c := range parsed.Citations {
		out := Citation{
			Source:  c.Source,
			ChunkID: c.ChunkID,
			Excerpt: c.Excerpt,
		}
		if out.Source == "" {
			out.Source = defaultCitationSource
		}
		if out.ChunkID == "" {
			out.ChunkID = "unknown"
		}
		if c.Page != nil {
			out.Page = int(*c.Page)
		}
		out.Excerpt = truncateRunes(out.Excerpt, maxExcerptChars)
		citations = append(citations, out)
	}
	return answer, citations
}

func fallbackCitations(passages []guideline.Passage) []Citation {
	n := len(passages)
	if n > fallbackCitationCount {
		n = fallbackCitationCount
	}
	out := make([]Citation, 0, n)
	for i := 0; i < n; i++ {
		excerpt := truncateRunes(passages[i].Content, fallbackExcerptChars)
		out = append(out, Citation{
			Source:  defaultCitationSource,
			Page:    passages[i].PageNumber,
			ChunkID: "chunk_" + strconv.Itoa(i),
			Excerpt: excerpt,
		})
	}
	return out
}

// truncateRunes caps s at max characters without splitting a multi-byte rune.
func truncateRunes(s string, max int) string {
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

// stripFences removes markdown code fences; a ```json fence wins over a
// generic one.
func stripFences(text string) string {
	if _, after, found := strings.Cut(text, "```json"); found {
		body, _, _ := strings.Cut(after, "```")
		return strings.TrimSpace(body)
	}
	if _, after, found := strings.Cut(text, "```"); found {
		body, _, _ := strings.Cut(after, "```")
		return strings.TrimSpace(body)
	}
	return strings.TrimSpace(text)
}
