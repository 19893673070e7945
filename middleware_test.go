package bbtools

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithLogging(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo}))
	inner := &minTool{name: "log_me", desc: "desc", params: map[string]any{}}
	inner.execute = func(_ context.Context, _ []byte, yield func([]byte) error) error {
		return yield([]byte(`{"ok":true}`))
	}
	wrapped := WithLogging(logger)(inner)
	var out []byte
	require.NoError(t, wrapped.Execute(context.Background(), []byte(`{}`), collect(&out)))
	assert.Equal(t, []byte(`{"ok":true}`), out)
	logStr := buf.String()
	assert.Contains(t, logStr, "tool start")
	assert.Contains(t, logStr, "tool end")
	assert.Contains(t, logStr, "log_me")
	assert.Contains(t, logStr, "bytes=11")
}

func TestWithLogging_Error(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	inner := &minTool{name: "fails", execute: func(context.Context, []byte, func([]byte) error) error {
		return errors.New("provider down")
	}}
	err := WithLogging(logger)(inner).Execute(context.Background(), nil, discard)
	require.Error(t, err)
	assert.Contains(t, buf.String(), "tool error")
	assert.NotContains(t, buf.String(), "tool end")
}

func TestWithRecovery(t *testing.T) {
	inner := &minTool{name: "panic_me", desc: "desc", params: map[string]any{}}
	inner.execute = func(context.Context, []byte, func([]byte) error) error {
		panic("test panic")
	}
	err := WithRecovery()(inner).Execute(context.Background(), []byte(`{}`), discard)
	var sysErr *SystemError
	require.ErrorAs(t, err, &sysErr)
	// SystemError hides message; unwrapped error contains "panic"
	assert.Contains(t, sysErr.Err.Error(), "panic")
}

func TestWithTimeoutMiddleware(t *testing.T) {
	inner := &minTool{name: "slow", desc: "desc", params: map[string]any{}}
	inner.execute = func(ctx context.Context, _ []byte, _ func([]byte) error) error {
		<-ctx.Done()
		return ctx.Err()
	}
	wrapped := WithTimeoutMiddleware(5 * time.Millisecond)(inner)
	err := wrapped.Execute(context.Background(), []byte(`{}`), discard)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	meta, ok := wrapped.(ToolMetadata)
	require.True(t, ok)
	assert.Equal(t, 5*time.Millisecond, meta.Timeout())
}

func TestMiddleware_DelegatesMetadata(t *testing.T) {
	tool := newQuoteTool(t, WithTags("quotes"), WithVersion("2"), WithTimeout(time.Minute))
	wrapped := WithRecovery()(WithLogging(nil)(tool))
	assert.Equal(t, "get_quote", wrapped.Name())
	assert.Equal(t, "Quote", wrapped.Description())
	meta, ok := wrapped.(ToolMetadata)
	require.True(t, ok)
	assert.Equal(t, []string{"quotes"}, meta.Tags())
	assert.Equal(t, "2", meta.Version())
	assert.Equal(t, time.Minute, meta.Timeout())
}

func TestRegistry_Use(t *testing.T) {
	reg := NewRegistry()
	reg.Register(newQuoteTool(t))
	reg.Use(WithRecovery(), WithLogging(slog.Default()))
	var out []byte
	err := reg.Execute(context.Background(), ToolCall{ID: "1", ToolName: "get_quote", Args: raw(`{"symbol":"AAPL"}`)}, collect(&out))
	require.NoError(t, err)
	assert.JSONEq(t, `{"price":1.5,"symbol":"AAPL"}`, string(out))
}

// TestRegistry_Use_NoDoubleWrap verifies that calling Use() twice rewraps from raw tools,
// so middlewares are not applied twice.
func TestRegistry_Use_NoDoubleWrap(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo}))
	reg := NewRegistry()
	reg.Register(newQuoteTool(t))
	reg.Use(WithLogging(logger))
	reg.Use(WithLogging(logger))
	err := reg.Execute(context.Background(), ToolCall{ID: "1", ToolName: "get_quote", Args: raw(`{"symbol":"A"}`)}, discard)
	require.NoError(t, err)
	require.Equal(t, 1, strings.Count(buf.String(), "tool start"))
}
