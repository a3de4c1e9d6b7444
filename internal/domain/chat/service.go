package chat

import (
	"context"
	"fmt"

	"github.com/martinserrat/triagent/internal/domain/guideline"
	"github.com/martinserrat/triagent/internal/infra/llm"
)

// chatTemperature is slightly higher than the assessment workflow's; chat
// answers are prose, not categorical decisions.
const chatTemperature = 0.2

// DefaultTopK is the retrieval depth per chat turn.
const DefaultTopK = 5

// passageSearcher is the slice of the guideline search service the chat flow needs.
type passageSearcher interface {
	Search(ctx context.Context, query string, topK int) ([]guideline.Passage, error)
}

// Reply is the outcome of one chat turn.
type Reply struct {
	SessionID string     `json:"session_id"`
	Answer    string     `json:"answer"`
	Citations []Citation `json:"citations"`
}

// Service runs the retrieval-augmented chat workflow. Each turn performs
// exactly one retrieval and one generation.
type Service struct {
	search   passageSearcher
	llm      llm.LLMProvider
	sessions *Store
}

// NewService creates a chat Service.
func NewService(search passageSearcher, provider llm.LLMProvider, sessions *Store) *Service {
	return &Service{search: search, llm: provider, sessions: sessions}
}

// Chat processes one user message for a session. Turns within the same
// session are serialised; different sessions proceed concurrently.
func (s *Service) Chat(ctx context.Context, sessionID, message string, topK int) (*Reply, error) {
	if topK <= 0 {
		topK = DefaultTopK
	}

	sess := s.sessions.acquire(sessionID)
	defer sess.release()

	passages, err := s.search.Search(ctx, message, topK)
	if err != nil {
		return nil, fmt.Errorf("chat retrieval: %w", err)
	}

	prompt := buildPrompt(formatContext(passages), sess.turns, message)
	resp, err := s.llm.ChatCompletion(ctx, llm.ChatRequest{
		Messages: []llm.Message{
			{Role: "system", Content: chatSystemPrompt},
			{Role: "user", Content: prompt},
		},
		Temperature: chatTemperature,
	})
	if err != nil {
		return nil, fmt.Errorf("chat generation: %w", err)
	}

	answer, citations := parseReply(resp.Content, passages)

	sess.turns = append(sess.turns,
		Turn{Role: "user", Content: message},
		Turn{Role: "assistant", Content: answer},
	)

	return &Reply{
		SessionID: sessionID,
		Answer:    answer,
		Citations: citations,
	}, nil
}

// History returns a copy of the session's full history.
func (s *Service) History(sessionID string) []Turn {
	return s.sessions.History(sessionID)
}

// Clear removes a session's history. Returns true if the session existed.
func (s *Service) Clear(sessionID string) bool {
	return s.sessions.Clear(sessionID)
}
