package bbtools

import (
	"context"
	"errors"
	"slices"
	"sync"
	"time"
)

// Registry holds tools by name and executes them with a timeout and optional panic recovery.
type Registry struct {
	tools       map[string]Tool // wrapped with middlewares, used by Execute
	rawTools    map[string]Tool // unwrapped, used by Use() to re-apply middlewares from scratch
	opts        registryOptions
	mu          sync.RWMutex
	middlewares []Middleware
}

// NewRegistry creates a Registry with the given options.
// Defaults: 30s timeout, panic recovery on.
func NewRegistry(opts ...RegistryOption) *Registry {
	o := registryOptions{
		timeout:       30 * time.Second,
		recoverPanics: true,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return &Registry{
		tools:    make(map[string]Tool),
		rawTools: make(map[string]Tool),
		opts:     o,
	}
}

// Register adds a tool. Stored middlewares (see Use) are applied to the tool before registration.
// If a tool with the same name already exists, it is replaced.
func (r *Registry) Register(t Tool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	name := t.Name()
	r.rawTools[name] = t
	r.tools[name] = wrap(t, r.middlewares)
}

// GetAllTools returns all registered tools sorted by name.
func (r *Registry) GetAllTools() []Tool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.tools))
	for name := range r.tools {
		names = append(names, name)
	}
	slices.Sort(names)
	out := make([]Tool, 0, len(names))
	for _, name := range names {
		out = append(out, r.tools[name])
	}
	return out
}

// GetTool returns the tool with the given name (after middlewares are applied), or (nil, false) if not found.
func (r *Registry) GetTool(name string) (Tool, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.tools[name]
	return t, ok
}

// Execute runs one tool call and hands its JSON output to yield.
// The after-execution hook (WithOnAfterExecute) is always invoked with the ExecutionSummary.
func (r *Registry) Execute(ctx context.Context, call ToolCall, yield func([]byte) error) (err error) {
	t, ok := r.GetTool(call.ToolName)
	if !ok {
		return ErrToolNotFound
	}

	timeout := r.opts.timeout
	if tm, ok := t.(ToolMetadata); ok && tm.Timeout() > 0 {
		timeout = tm.Timeout()
	}
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	summary := ExecutionSummary{CallID: call.ID, ToolName: call.ToolName}
	start := time.Now()
	// Recover is deferred after onAfter so it runs first and the hook sees the panic as summary.Error.
	defer func() {
		if r.opts.onAfter != nil {
			r.opts.onAfter(ctx, call, summary, time.Since(start))
		}
	}()
	if r.opts.recoverPanics {
		defer func() {
			if p := recover(); p != nil {
				summary.Error = &SystemError{Err: &panicError{p: p}}
				err = summary.Error
			}
		}()
	}

	if r.opts.onBefore != nil {
		r.opts.onBefore(ctx, call)
	}

	counted := func(chunk []byte) error {
		if err := yield(chunk); err != nil {
			return err
		}
		summary.TotalBytes += int64(len(chunk))
		return nil
	}
	summary.Error = t.Execute(ctx, call.Args, counted)
	if errors.Is(summary.Error, context.DeadlineExceeded) {
		summary.Error = errors.Join(ErrTimeout, summary.Error)
	}
	return summary.Error
}

// Use stores the given middlewares and reapplies them from scratch to all registered tools (onion order:
// first middleware is outermost). Tools registered after Use will also get these middlewares applied.
func (r *Registry) Use(middlewares ...Middleware) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.middlewares = middlewares
	for name, raw := range r.rawTools {
		r.tools[name] = wrap(raw, middlewares)
	}
}

func wrap(t Tool, middlewares []Middleware) Tool {
	for i := len(middlewares) - 1; i >= 0; i-- {
		t = middlewares[i](t)
	}
	return t
}
