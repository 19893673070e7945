package bbtools

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/skosovsky/bbtools/prompt"
)

// Catalog is the read-only set of tools built from definitions at startup, together with
// their enriched descriptions and the prompt block that lists them.
type Catalog struct {
	registry *Registry
	entries  []Entry
	lines    []string
	base     string
}

// Entry describes one generic tool of a Catalog.
type Entry struct {
	Name        string
	Description string
	Schema      SchemaName
	Func        Func
}

type buildOptions struct {
	logger      *slog.Logger
	base        string
	fixed       []Tool
	middlewares []Middleware
	registry    []RegistryOption
	strict      bool
}

// BuildOption configures Build.
type BuildOption func(*buildOptions)

// WithLogger sets the logger used while building. Default: slog.Default().
func WithLogger(l *slog.Logger) BuildOption {
	return func(o *buildOptions) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithBasePrompt sets the instruction text placed ahead of the tool list. Default: prompt.DefaultBase.
func WithBasePrompt(base string) BuildOption {
	return func(o *buildOptions) {
		o.base = base
	}
}

// WithFixedTools registers hand-written tools next to the generic ones.
// They are not listed in the prompt block.
func WithFixedTools(tools ...Tool) BuildOption {
	return func(o *buildOptions) {
		o.fixed = append(o.fixed, tools...)
	}
}

// WithMiddlewares applies middlewares to every registered tool.
func WithMiddlewares(mw ...Middleware) BuildOption {
	return func(o *buildOptions) {
		o.middlewares = append(o.middlewares, mw...)
	}
}

// WithRegistryOptions configures the underlying Registry.
func WithRegistryOptions(opts ...RegistryOption) BuildOption {
	return func(o *buildOptions) {
		o.registry = append(o.registry, opts...)
	}
}

// WithStrictSchemas builds every argument schema in strict mode.
func WithStrictSchemas() BuildOption {
	return func(o *buildOptions) {
		o.strict = true
	}
}

// Build constructs the Catalog. For each definition, in order, it resolves the operation,
// wraps it with NewOperationFunc, runs the first example to enrich the description and
// registers the tool under the definition's argument schema.
// Any failure (unknown path, unknown schema, failing example) aborts the build.
func Build(ctx context.Context, defs []Definition, resolver Resolver, opts ...BuildOption) (*Catalog, error) {
	o := buildOptions{logger: slog.Default(), base: prompt.DefaultBase}
	for _, opt := range opts {
		opt(&o)
	}
	reg := NewRegistry(o.registry...)
	c := &Catalog{registry: reg, base: o.base}
	for _, def := range defs {
		entry, t, err := buildTool(ctx, def, resolver, o)
		if err != nil {
			return nil, err
		}
		reg.Register(t)
		c.entries = append(c.entries, entry)
		c.lines = append(c.lines, prompt.Line(entry.Name, entry.Description))
	}
	for _, t := range o.fixed {
		o.logger.InfoContext(ctx, "registering tool", "tool", t.Name())
		reg.Register(t)
	}
	if len(o.middlewares) > 0 {
		reg.Use(o.middlewares...)
	}
	return c, nil
}

func buildTool(ctx context.Context, def Definition, resolver Resolver, o buildOptions) (Entry, Tool, error) {
	o.logger.InfoContext(ctx, "creating tool", "tool", def.Name, "path", def.OpenAPIPath)
	var schemaOpts []ToolOption
	if o.strict {
		schemaOpts = append(schemaOpts, WithStrict())
	}
	schema, err := LookupSchema(def.ArgsSchema, schemaOpts...)
	if err != nil {
		return Entry{}, nil, fmt.Errorf("tool %s: %w", def.Name, err)
	}
	op, err := resolver.Resolve(def.OpenAPIPath)
	if err != nil {
		return Entry{}, nil, fmt.Errorf("tool %s: %w", def.Name, err)
	}
	fn := NewOperationFunc(def, op)
	example, err := RenderExample(ctx, def.Name, def.ExampleParameterValues, fn)
	if err != nil {
		return Entry{}, nil, fmt.Errorf("tool %s: %w", def.Name, err)
	}
	desc := EnrichDescription(def.Description, example)
	toolOpts := []ToolOption{WithTags(def.Tags...)}
	if def.Timeout > 0 {
		toolOpts = append(toolOpts, WithTimeout(def.Timeout))
	}
	t, err := NewFuncTool(def.Name, desc, schema, fn, toolOpts...)
	if err != nil {
		return Entry{}, nil, fmt.Errorf("tool %s: %w", def.Name, err)
	}
	return Entry{Name: def.Name, Description: desc, Schema: schema.Name(), Func: fn}, t, nil
}

// Tool returns the registered tool with the given name.
func (c *Catalog) Tool(name string) (Tool, bool) {
	return c.registry.GetTool(name)
}

// Tools returns every registered tool, generic and fixed, sorted by name.
func (c *Catalog) Tools() []Tool {
	return c.registry.GetAllTools()
}

// Entries returns the generic tools in definition order.
func (c *Catalog) Entries() []Entry {
	return append([]Entry(nil), c.entries...)
}

// Execute runs one tool call through the registry.
func (c *Catalog) Execute(ctx context.Context, call ToolCall, yield func([]byte) error) error {
	return c.registry.Execute(ctx, call, yield)
}

// Descriptions returns the "name : description" line of every generic tool, in definition order.
func (c *Catalog) Descriptions() []string {
	return append([]string(nil), c.lines...)
}

// Prompt returns the base instructions followed by the tool list, with every brace
// escaped by doubling (see prompt.Format).
func (c *Catalog) Prompt() string {
	return prompt.Enrich(c.base, c.lines)
}
