// Package llm defines the model-agnostic LLM provider abstraction.
// All types here are shared between the provider interface and adapters.
package llm

import "encoding/json"

// Message represents a single turn in a conversation.
// Role is one of "system", "user", "assistant", or "tool".
// ToolCalls is set on assistant messages that requested tool invocations;
// ToolName/ToolCallID are set on "tool" messages carrying a tool result.
type Message struct {
	Role       string
	Content    string
	ToolCalls  []ToolCall
	ToolName   string
	ToolCallID string
}

// ToolSpec declares a callable function to the model: name, description, and
// a JSON Schema object describing the parameters.
type ToolSpec struct {
	Name        string
	Description string
	Parameters  json.RawMessage
}

// ToolCall is a single tool invocation requested by the model.
// Arguments is the raw JSON object emitted by the model.
type ToolCall struct {
	ID        string
	Name      string
	Arguments json.RawMessage
}

// ChatRequest is the input for a non-streaming chat completion.
type ChatRequest struct {
	// Model overrides the provider default when non-empty.
	Model       string
	Messages    []Message
	Tools       []ToolSpec
	Temperature float32
	MaxTokens   int
}

// ChatResponse is the output from a non-streaming chat completion.
// A response with a non-empty ToolCalls slice is a tool-invocation request;
// otherwise Content is the final answer text.
type ChatResponse struct {
	Content    string
	ToolCalls  []ToolCall
	StopReason string // "stop" | "length" | "tool_calls" | provider-specific
	Tokens     int    // Total tokens consumed (prompt + completion).
}

// EmbedRequest is the input for a batch embedding call.
type EmbedRequest struct {
	// Model overrides the provider default when non-empty.
	Model string
	Texts []string
}

// EmbedResponse is the output from a batch embedding call.
// Embeddings[i] corresponds to Texts[i] in the request.
type EmbedResponse struct {
	Embeddings [][]float32
	Tokens     int
}

// ModelMeta describes the model / provider identity.
type ModelMeta struct {
	ID        string // e.g. "llama3.2:3b", "gpt-4o-mini"
	Provider  string // e.g. "ollama", "openai"
	Version   string
	MaxTokens int // Maximum context window size.
}
