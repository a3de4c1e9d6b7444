// Package tool implements the registry the assessment workflow dispatches
// model-requested tool calls through. Execution failures never escape as Go
// errors: they are encoded into the result payload so the model can read them
// and adjust on the next round.
package tool

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/martinserrat/triagent/internal/infra/llm"
)

var (
	ErrToolExecutorAlreadyRegistered = errors.New("tool executor already registered")
	ErrToolExecutorNotRegistered     = errors.New("tool executor not registered")
)

// Result is the outcome of a single dispatched tool call. Payload is always a
// valid JSON document: either the executor output or {"error": "..."}.
type Result struct {
	ToolName string
	CallID   string
	Payload  json.RawMessage
}

type registration struct {
	spec     llm.ToolSpec
	executor ToolExecutor
}

// Registry maps tool names to executors and their declared specs.
// Registration happens once at startup; Dispatch may be called concurrently
// afterward.
type Registry struct {
	tools map[string]registration
	order []string
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{tools: make(map[string]registration)}
}

// Register adds a tool under spec.Name.
func (r *Registry) Register(spec llm.ToolSpec, executor ToolExecutor) error {
	name := strings.TrimSpace(spec.Name)
	if name == "" || executor == nil {
		return ErrToolExecutorNotRegistered
	}
	if _, exists := r.tools[name]; exists {
		return ErrToolExecutorAlreadyRegistered
	}
	spec.Name = name
	r.tools[name] = registration{spec: spec, executor: executor}
	r.order = append(r.order, name)
	return nil
}

// Get returns the executor registered under name.
func (r *Registry) Get(name string) (ToolExecutor, error) {
	reg, ok := r.tools[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrToolExecutorNotRegistered, name)
	}
	return reg.executor, nil
}

// Specs returns the declared tool specs in registration order, for handing
// to the LLM provider.
func (r *Registry) Specs() []llm.ToolSpec {
	out := make([]llm.ToolSpec, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.tools[name].spec)
	}
	return out
}

// Dispatch executes a single tool call and always returns a Result. Unknown
// tools, executor errors, and executor panics all become error payloads; the
// conversation keeps going either way.
func (r *Registry) Dispatch(ctx context.Context, call llm.ToolCall) Result {
	res := Result{ToolName: call.Name, CallID: call.ID}

	reg, ok := r.tools[call.Name]
	if !ok {
		res.Payload = errorPayload(fmt.Sprintf("Unknown tool: %s", call.Name))
		return res
	}

	payload, err := safeExecute(ctx, reg.executor, call.Arguments)
	if err != nil {
		res.Payload = errorPayload(err.Error())
		return res
	}
	res.Payload = payload
	return res
}

// DispatchAll executes the calls in the given order and returns results in
// the same order.
func (r *Registry) DispatchAll(ctx context.Context, calls []llm.ToolCall) []Result {
	out := make([]Result, len(calls))
	for i, call := range calls {
		out[i] = r.Dispatch(ctx, call)
	}
	return out
}

// safeExecute runs the executor with panic recovery.
func safeExecute(ctx context.Context, executor ToolExecutor, args json.RawMessage) (payload json.RawMessage, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			payload = nil
			err = fmt.Errorf("tool panicked: %v", rec)
		}
	}()
	return executor.Execute(ctx, args)
}

func errorPayload(msg string) json.RawMessage {
	out, _ := json.Marshal(map[string]string{"error": msg})
	return out
}
