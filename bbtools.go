package bbtools

import (
	"context"
	"encoding/json"
	"time"
)

// APIPrefix is stripped from operation paths before they are resolved.
const APIPrefix = "/api/v1/"

// Tool is the contract for an LLM-callable instrument.
// It is provider-agnostic (no knowledge of OpenAI, Anthropic, etc.).
type Tool interface {
	Name() string
	Description() string
	// Parameters returns a valid JSON Schema as map (compatible with LLM tool definitions).
	Parameters() map[string]any
	// Execute validates argsJSON, runs the tool and hands the JSON-encoded Output to yield.
	// If yield returns an error, that error is returned wrapped as ErrStreamAborted.
	Execute(ctx context.Context, argsJSON []byte, yield func([]byte) error) error
}

// ToolMetadata is implemented by tools created with NewTool and NewFuncTool.
// Registry uses Timeout() to override the default execution timeout when set.
type ToolMetadata interface {
	Timeout() time.Duration
	Tags() []string
	Version() string
}

// ToolCall is a single execution request (as produced by the LLM).
type ToolCall struct {
	ID       string
	ToolName string
	Args     json.RawMessage // JSON payload of arguments
}

// Func is a tool body invoked with keyword arguments. It returns a list of records,
// a single record, or nothing, depending on how the tool was built.
type Func func(ctx context.Context, args map[string]any) (Output, error)

// Operation invokes one data-provider endpoint with keyword parameters and returns the
// raw JSON items of its result collection, in provider order.
type Operation func(ctx context.Context, params map[string]any) ([]json.RawMessage, error)

// Resolver maps an operation path (for example "/api/v1/equity/price/quote") to an Operation.
type Resolver interface {
	Resolve(path string) (Operation, error)
}

// ExecutionSummary is passed to the after-execution hook (WithOnAfterExecute).
type ExecutionSummary struct {
	CallID     string
	ToolName   string
	Error      error
	TotalBytes int64
}
