package bbtools

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"
)

// SchemaName names one of the known argument schemas, as written in tool definitions.
type SchemaName string

// Known argument schemas.
const (
	SymbolSchemaName      SchemaName = "SymbolSchema"
	SymbolLimitSchemaName SchemaName = "SymbolLimitSchema"
	QuerySchemaName       SchemaName = "QuerySchema"
)

// SymbolSchema is the input of tools keyed by a stock symbol.
type SymbolSchema struct {
	Symbol string `json:"symbol" jsonschema:"The stock symbol of the equity."`
}

// Validate rejects blank symbols.
func (s SymbolSchema) Validate() error {
	return validateSymbol(s.Symbol)
}

// SymbolLimitSchema is the input of tools keyed by a stock symbol that return a bounded number of rows.
type SymbolLimitSchema struct {
	Symbol string `json:"symbol" jsonschema:"The stock symbol of the equity."`
	Limit  int    `json:"limit" jsonschema:"The maximum number of values to return."`
}

// Validate rejects blank symbols and non-positive limits.
func (s SymbolLimitSchema) Validate() error {
	if err := validateSymbol(s.Symbol); err != nil {
		return err
	}
	if s.Limit <= 0 {
		return errors.New("limit must be positive")
	}
	return nil
}

// QuerySchema is the input of symbol search tools.
// The SEC provider does not support a limit, so there is none.
type QuerySchema struct {
	Query string `json:"query" jsonschema:"The search string to match to the stock symbol."`
}

func validateSymbol(symbol string) error {
	if strings.TrimSpace(symbol) == "" {
		return errors.New("symbol must not be blank")
	}
	return nil
}

// ArgsSchema is one argument schema variant: its name, its JSON Schema and its parser.
type ArgsSchema interface {
	Name() SchemaName
	// Parameters returns the JSON Schema shown to the LLM.
	Parameters() map[string]any
	// Parse validates argsJSON and returns the keyword arguments for a Func.
	Parse(argsJSON []byte) (map[string]any, error)
}

type argsSchema[T any] struct {
	name SchemaName
	ext  *Extractor[T]
}

func newArgsSchema[T any](name SchemaName, strict bool) (ArgsSchema, error) {
	ext, err := NewExtractor[T](strict)
	if err != nil {
		return nil, fmt.Errorf("schema %s: %w", name, err)
	}
	return &argsSchema[T]{name: name, ext: ext}, nil
}

func (s *argsSchema[T]) Name() SchemaName           { return s.name }
func (s *argsSchema[T]) Parameters() map[string]any { return s.ext.Schema() }
func (s *argsSchema[T]) Parse(argsJSON []byte) (map[string]any, error) {
	return s.ext.ParseArgs(argsJSON)
}

var schemaBuilders = map[SchemaName]func(strict bool) (ArgsSchema, error){
	SymbolSchemaName: func(strict bool) (ArgsSchema, error) {
		return newArgsSchema[SymbolSchema](SymbolSchemaName, strict)
	},
	SymbolLimitSchemaName: func(strict bool) (ArgsSchema, error) {
		return newArgsSchema[SymbolLimitSchema](SymbolLimitSchemaName, strict)
	},
	QuerySchemaName: func(strict bool) (ArgsSchema, error) {
		return newArgsSchema[QuerySchema](QuerySchemaName, strict)
	},
}

// LookupSchema returns the argument schema variant with the given name.
func LookupSchema(name SchemaName, opts ...ToolOption) (ArgsSchema, error) {
	build, ok := schemaBuilders[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownSchema, name)
	}
	var o toolOptions
	for _, opt := range opts {
		opt(&o)
	}
	return build(o.strict)
}

// SchemaNames lists the known schema names in sorted order.
func SchemaNames() []SchemaName {
	return slices.Sorted(maps.Keys(schemaBuilders))
}

// Validatable is implemented by argument structs that need custom business validation.
// Called after schema validation and unmarshaling.
type Validatable interface {
	Validate() error
}

// schemaValidator validates a JSON-like value (e.g. map[string]any from json.Unmarshal).
// *jsonschema.Resolved implements it.
type schemaValidator interface {
	Validate(v any) error
}

func validateAgainstSchema(validate schemaValidator, v any) error {
	if err := validate.Validate(v); err != nil {
		return &ClientError{Reason: err.Error(), Err: ErrValidation}
	}
	return nil
}

func validateCustom(args any) error {
	if v, ok := args.(Validatable); ok {
		return v.Validate()
	}
	return nil
}
