package bbtools

import (
	"context"
	"encoding/json"
	"errors"
	"maps"
	"time"
)

// tool is the internal implementation of Tool built by NewTool or NewFuncTool.
type tool struct {
	name        string
	description string
	schema      map[string]any
	execute     func(context.Context, []byte, func([]byte) error) error
	opts        toolOptions
}

// NewTool builds a Tool from a typed function. Schema and validation are delegated to Extractor[T].
// Execute runs ParseAndValidate, fn, marshals the result, then calls yield once with that JSON.
func NewTool[T any, R any](
	name, description string,
	fn func(ctx context.Context, args T) (R, error),
	opts ...ToolOption,
) (Tool, error) {
	var o toolOptions
	for _, opt := range opts {
		opt(&o)
	}
	ext, err := NewExtractor[T](o.strict)
	if err != nil {
		return nil, err
	}
	execute := func(ctx context.Context, argsJSON []byte, yield func([]byte) error) error {
		args, err := ext.ParseAndValidate(argsJSON)
		if err != nil {
			return err
		}
		res, err := fn(ctx, args)
		if err != nil {
			return wrapHandlerError(err)
		}
		return deliver(res, yield)
	}
	return &tool{
		name:        name,
		description: description,
		schema:      ext.Schema(),
		execute:     execute,
		opts:        o,
	}, nil
}

// NewFuncTool builds a Tool from a Func and one of the known argument schemas.
// Execute validates the JSON arguments against schema, calls fn with the resulting
// keyword arguments and yields the JSON encoding of its Output.
func NewFuncTool(name, description string, schema ArgsSchema, fn Func, opts ...ToolOption) (Tool, error) {
	if schema == nil {
		return nil, errors.New("args schema must not be nil")
	}
	if fn == nil {
		return nil, errors.New("tool func must not be nil")
	}
	var o toolOptions
	for _, opt := range opts {
		opt(&o)
	}
	execute := func(ctx context.Context, argsJSON []byte, yield func([]byte) error) error {
		args, err := schema.Parse(argsJSON)
		if err != nil {
			return err
		}
		out, err := fn(ctx, args)
		if err != nil {
			return wrapHandlerError(err)
		}
		return deliver(out, yield)
	}
	return &tool{
		name:        name,
		description: description,
		schema:      schema.Parameters(),
		execute:     execute,
		opts:        o,
	}, nil
}

func deliver(v any, yield func([]byte) error) error {
	b, err := json.Marshal(v)
	if err != nil {
		return &SystemError{Err: err}
	}
	if err := yield(b); err != nil {
		return wrapYieldError(err)
	}
	return nil
}

func (t *tool) Name() string        { return t.name }
func (t *tool) Description() string { return t.description }

// Parameters returns a shallow copy of the JSON Schema (top-level keys only).
// Nested maps (e.g. under "properties") are shared; callers must not mutate them.
func (t *tool) Parameters() map[string]any { return maps.Clone(t.schema) }

func (t *tool) Execute(ctx context.Context, argsJSON []byte, yield func([]byte) error) error {
	return t.execute(ctx, argsJSON, yield)
}

func (t *tool) Timeout() time.Duration { return t.opts.timeout }
func (t *tool) Tags() []string         { return append([]string(nil), t.opts.tags...) }
func (t *tool) Version() string        { return t.opts.version }

// wrapHandlerError passes through ClientError; wraps other errors as SystemError.
func wrapHandlerError(err error) error {
	if err == nil {
		return nil
	}
	if IsClientError(err) {
		return err
	}
	return &SystemError{Err: err}
}

var (
	_ Tool         = (*tool)(nil)
	_ ToolMetadata = (*tool)(nil)
)
