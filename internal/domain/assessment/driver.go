package assessment

import (
	"context"
	"errors"
	"fmt"

	"github.com/martinserrat/triagent/internal/domain/tool"
	"github.com/martinserrat/triagent/internal/infra/llm"
)

// ErrUpstreamUnavailable wraps LLM transport failures so the API layer can
// map them to 503 without inspecting provider internals.
var ErrUpstreamUnavailable = errors.New("model backend unavailable")

// DefaultMaxToolRounds bounds how many tool rounds a single conversation may
// take before the driver stops feeding results back.
const DefaultMaxToolRounds = 10

// Driver runs a bounded tool-calling conversation: the model decides which
// tools to call and when; the driver dispatches them and feeds results back
// until the model answers with text or the round budget runs out.
type Driver struct {
	llm         llm.LLMProvider
	registry    *tool.Registry
	maxRounds   int
	temperature float32
}

// NewDriver creates a Driver. maxRounds <= 0 selects DefaultMaxToolRounds.
func NewDriver(provider llm.LLMProvider, registry *tool.Registry, maxRounds int, temperature float32) *Driver {
	if maxRounds <= 0 {
		maxRounds = DefaultMaxToolRounds
	}
	return &Driver{
		llm:         provider,
		registry:    registry,
		maxRounds:   maxRounds,
		temperature: temperature,
	}
}

// Run drives the conversation to completion and returns the model's final
// text. At most maxRounds tool rounds are executed, so the provider is called
// at most maxRounds+1 times. If the model still wants tools when the budget
// is exhausted, the loop stops quietly and whatever text the last response
// carried is returned.
func (d *Driver) Run(ctx context.Context, system, user string) (string, error) {
	messages := []llm.Message{
		{Role: "system", Content: system},
		{Role: "user", Content: user},
	}
	tools := d.registry.Specs()

	for round := 0; ; round++ {
		resp, err := d.llm.ChatCompletion(ctx, llm.ChatRequest{
			Messages:    messages,
			Tools:       tools,
			Temperature: d.temperature,
		})
		if err != nil {
			return "", fmt.Errorf("%w: %v", ErrUpstreamUnavailable, err)
		}

		if len(resp.ToolCalls) == 0 || round == d.maxRounds {
			return resp.Content, nil
		}

		messages = append(messages, llm.Message{
			Role:      "assistant",
			Content:   resp.Content,
			ToolCalls: resp.ToolCalls,
		})
		for _, res := range d.registry.DispatchAll(ctx, resp.ToolCalls) {
			messages = append(messages, llm.Message{
				Role:       "tool",
				Content:    string(res.Payload),
				ToolName:   res.ToolName,
				ToolCallID: res.CallID,
			})
		}
	}
}
