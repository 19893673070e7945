package bbtools

import (
	"context"
	"log/slog"
	"time"
)

// Middleware wraps a Tool with cross-cutting behavior (logging, recovery, timeout).
type Middleware func(Tool) Tool

// WithLogging returns a middleware that logs start, end, duration, output size and errors.
func WithLogging(logger *slog.Logger) Middleware {
	if logger == nil {
		logger = slog.Default()
	}
	return func(next Tool) Tool {
		return &loggingTool{toolBase: toolBase{next: next}, logger: logger}
	}
}

// WithRecovery returns a middleware that recovers panics and returns SystemError.
func WithRecovery() Middleware {
	return func(next Tool) Tool {
		return &recoveryTool{toolBase{next: next}}
	}
}

// WithTimeoutMiddleware returns a middleware that enforces a per-tool timeout. When the registry
// default also applies, the effective timeout is the smaller of the two.
func WithTimeoutMiddleware(d time.Duration) Middleware {
	return func(next Tool) Tool {
		return &timeoutTool{toolBase: toolBase{next: next}, timeout: d}
	}
}

// toolBase delegates Tool and ToolMetadata to the wrapped Tool; used by middleware wrappers.
type toolBase struct{ next Tool }

func (b *toolBase) Name() string               { return b.next.Name() }
func (b *toolBase) Description() string        { return b.next.Description() }
func (b *toolBase) Parameters() map[string]any { return b.next.Parameters() }

func (b *toolBase) Timeout() time.Duration {
	if tm, ok := b.next.(ToolMetadata); ok {
		return tm.Timeout()
	}
	return 0
}

func (b *toolBase) Tags() []string {
	if tm, ok := b.next.(ToolMetadata); ok {
		return tm.Tags()
	}
	return nil
}

func (b *toolBase) Version() string {
	if tm, ok := b.next.(ToolMetadata); ok {
		return tm.Version()
	}
	return ""
}

type loggingTool struct {
	toolBase
	logger *slog.Logger
}

func (m *loggingTool) Execute(ctx context.Context, args []byte, yield func([]byte) error) error {
	m.logger.InfoContext(ctx, "tool start", "tool", m.next.Name())
	start := time.Now()
	var size int
	err := m.next.Execute(ctx, args, func(chunk []byte) error {
		size += len(chunk)
		return yield(chunk)
	})
	dur := time.Since(start)
	if err != nil {
		m.logger.ErrorContext(ctx, "tool error", "tool", m.next.Name(), "duration", dur, "error", err)
		return err
	}
	m.logger.InfoContext(ctx, "tool end", "tool", m.next.Name(), "duration", dur, "bytes", size)
	return nil
}

type recoveryTool struct{ toolBase }

func (r *recoveryTool) Execute(ctx context.Context, args []byte, yield func([]byte) error) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = &SystemError{Err: &panicError{p: p}}
		}
	}()
	return r.next.Execute(ctx, args, yield)
}

type timeoutTool struct {
	toolBase
	timeout time.Duration
}

func (t *timeoutTool) Timeout() time.Duration {
	if t.timeout > 0 {
		return t.timeout
	}
	return t.toolBase.Timeout()
}

func (t *timeoutTool) Execute(ctx context.Context, args []byte, yield func([]byte) error) error {
	if t.timeout <= 0 {
		return t.next.Execute(ctx, args, yield)
	}
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()
	return t.next.Execute(ctx, args, yield)
}
