// Package testutil provides test helpers for bbtools (MockTool, StaticResolver).
package testutil

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/skosovsky/bbtools"
)

// MockTool is a configurable Tool implementation for tests.
type MockTool struct {
	NameVal   string
	DescVal   string
	ParamsVal map[string]any
	ExecuteFn func(ctx context.Context, args []byte, yield func([]byte) error) error
}

// Name returns the tool name.
func (m *MockTool) Name() string {
	if m.NameVal != "" {
		return m.NameVal
	}
	return "mock"
}

// Description returns the tool description.
func (m *MockTool) Description() string {
	return m.DescVal
}

// Parameters returns the parameters schema (or empty map).
func (m *MockTool) Parameters() map[string]any {
	if m.ParamsVal != nil {
		return m.ParamsVal
	}
	return map[string]any{}
}

// Execute runs ExecuteFn if set, otherwise returns nil.
func (m *MockTool) Execute(ctx context.Context, args []byte, yield func([]byte) error) error {
	if m.ExecuteFn != nil {
		return m.ExecuteFn(ctx, args, yield)
	}
	return nil
}

var _ bbtools.Tool = (*MockTool)(nil)

// Call records one operation invocation.
type Call struct {
	Path   string
	Params map[string]any
}

// StaticResolver resolves operation paths to canned results. Items are given as JSON text.
// Unknown paths fail with bbtools.ErrUnknownOperation.
type StaticResolver struct {
	Results map[string][]string
	Errors  map[string]error

	mu    sync.Mutex
	calls []Call
}

// Resolve implements bbtools.Resolver.
func (s *StaticResolver) Resolve(path string) (bbtools.Operation, error) {
	items, ok := s.Results[path]
	opErr, failing := s.Errors[path]
	if !ok && !failing {
		return nil, fmt.Errorf("%w: %s", bbtools.ErrUnknownOperation, path)
	}
	return func(_ context.Context, params map[string]any) ([]json.RawMessage, error) {
		s.mu.Lock()
		s.calls = append(s.calls, Call{Path: path, Params: params})
		s.mu.Unlock()
		if failing {
			return nil, opErr
		}
		out := make([]json.RawMessage, len(items))
		for i, item := range items {
			out[i] = json.RawMessage(strings.TrimSpace(item))
		}
		return out, nil
	}, nil
}

// Calls returns the recorded invocations in order.
func (s *StaticResolver) Calls() []Call {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Call(nil), s.calls...)
}

var _ bbtools.Resolver = (*StaticResolver)(nil)
