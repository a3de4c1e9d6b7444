package llm

import "context"

// LLMProvider is the model-agnostic interface for LLM operations. Adapters
// (Ollama, OpenAI) implement it so the rest of the application is never
// coupled to a specific vendor. Chat and embedding calls are the only
// blocking operations the core performs; both honor ctx cancellation.
type LLMProvider interface {
	// ChatCompletion performs a non-streaming chat completion. When
	// req.Tools is non-empty the model may answer with tool-invocation
	// requests instead of final text.
	ChatCompletion(ctx context.Context, req ChatRequest) (*ChatResponse, error)

	// Embed computes dense vector representations for a batch of texts.
	Embed(ctx context.Context, req EmbedRequest) (*EmbedResponse, error)

	// ModelInfo returns static metadata about the provider/model.
	ModelInfo() ModelMeta

	// HealthCheck returns nil if the provider is reachable and operational.
	HealthCheck(ctx context.Context) error
}
