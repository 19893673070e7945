package bbtools

import (
	"context"
	"time"
)

// toolOptions hold optional tool settings (timeout, strict, tags, etc.).
type toolOptions struct {
	strict  bool
	timeout time.Duration
	tags    []string
	version string
}

// ToolOption configures a tool (e.g. WithStrict, WithTimeout).
type ToolOption func(*toolOptions)

// WithStrict sets strict mode for schema: additionalProperties: false for all objects,
// and all properties become required. Use for OpenAI Structured Outputs compatibility.
func WithStrict() ToolOption {
	return func(o *toolOptions) {
		o.strict = true
	}
}

// WithTimeout sets a per-tool timeout, honoured by Registry.Execute.
func WithTimeout(d time.Duration) ToolOption {
	return func(o *toolOptions) {
		o.timeout = d
	}
}

// WithTags sets tool tags (metadata for discovery/orchestrator).
func WithTags(tags ...string) ToolOption {
	return func(o *toolOptions) {
		o.tags = tags
	}
}

// WithVersion sets the tool version.
func WithVersion(version string) ToolOption {
	return func(o *toolOptions) {
		o.version = version
	}
}

// RegistryOption configures a Registry.
type RegistryOption func(*registryOptions)

type registryOptions struct {
	timeout       time.Duration
	recoverPanics bool
	onBefore      func(context.Context, ToolCall)
	onAfter       func(context.Context, ToolCall, ExecutionSummary, time.Duration)
}

// WithDefaultTimeout sets the default execution timeout for tools. Zero disables it.
func WithDefaultTimeout(d time.Duration) RegistryOption {
	return func(o *registryOptions) {
		o.timeout = d
	}
}

// WithRecoverPanics enables panic recovery in Execute (returns SystemError).
func WithRecoverPanics(enable bool) RegistryOption {
	return func(o *registryOptions) {
		o.recoverPanics = enable
	}
}

// WithOnBeforeExecute sets a hook called before each tool execution.
func WithOnBeforeExecute(fn func(context.Context, ToolCall)) RegistryOption {
	return func(o *registryOptions) {
		o.onBefore = fn
	}
}

// WithOnAfterExecute sets a hook called after each tool execution, success or error.
func WithOnAfterExecute(fn func(context.Context, ToolCall, ExecutionSummary, time.Duration)) RegistryOption {
	return func(o *registryOptions) {
		o.onAfter = fn
	}
}
