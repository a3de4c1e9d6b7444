package chat

import (
	"fmt"
	"strings"

	"github.com/martinserrat/triagent/internal/domain/guideline"
)

// chatSystemPrompt pins the evidence-only behavior and the JSON output contract.
const chatSystemPrompt = `You are a clinical guideline assistant specialising in the NICE NG12 guidelines ("Suspected cancer: recognition and referral").

## Your Role
Answer questions about the NG12 cancer referral guidelines using ONLY the guideline passages provided in the CONTEXT section below. You support multi-turn conversations — the user may ask follow-up questions that refer to earlier parts of the conversation.

## Rules
1. **Evidence-only** — base every answer on the CONTEXT passages. Do NOT use general medical knowledge or information not present in the provided passages.
2. **Cite your sources** — whenever you make a clinical statement, include an inline citation in the format [NG12 p.XX].
3. **Refuse gracefully** — if the CONTEXT does not contain enough information to answer the question, say so clearly: "I couldn't find support in the NG12 text for that. The retrieved passages cover: ..." and summarise what IS available.
4. **Do NOT invent** — never fabricate thresholds, age cut-offs, or referral criteria that are not explicitly stated in the CONTEXT.
5. **Be concise** — answer directly, then provide supporting detail.

## Output Format
Return a JSON object (no markdown fences, no surrounding text):

{
    "answer": "Your natural-language answer with [NG12 p.XX] citations.",
    "citations": [
        {
            "source": "NG12 PDF",
            "page": 0,
            "chunk_id": "chunk_0",
            "excerpt": "Short relevant excerpt from the passage"
        }
    ]
}`

const (
	// maxContextCharsPerPassage caps how much of each passage goes into the
	// prompt's CONTEXT block.
	maxContextCharsPerPassage = 3000

	// historyWindow is how many trailing turns of the session history are
	// included in the prompt. The full history stays in the store.
	historyWindow = 20
)

// formatContext renders retrieved passages as the CONTEXT block.
func formatContext(passages []guideline.Passage) string {
	if len(passages) == 0 {
		return "CONTEXT:\nNo relevant guideline passages were found."
	}

	var b strings.Builder
	b.WriteString("CONTEXT:")
	for i, p := range passages {
		content := truncateRunes(p.Content, maxContextCharsPerPassage)
		fmt.Fprintf(&b, "\n\n--- [chunk_%d] Page %d | %s ---\n%s", i, p.PageNumber, p.Section, content)
	}
	return b.String()
}

// buildPrompt assembles the user-facing prompt from the CONTEXT block, the
// trailing history window, and the new message.
func buildPrompt(context string, history []Turn, newMessage string) string {
	parts := []string{context, ""}

	if len(history) > 0 {
		window := history
		if len(window) > historyWindow {
			window = window[len(window)-historyWindow:]
		}
		parts = append(parts, "CONVERSATION HISTORY:")
		for _, turn := range window {
			parts = append(parts, fmt.Sprintf("%s: %s", strings.ToUpper(turn.Role), turn.Content))
		}
		parts = append(parts, "")
	}

	parts = append(parts, "USER QUESTION: "+newMessage)
	return strings.Join(parts, "\n")
}
