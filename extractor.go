package bbtools

import (
	"encoding/json"
	"maps"
	"reflect"

	"github.com/google/jsonschema-go/jsonschema"
)

// Extractor generates the JSON Schema for argument type T and validates incoming
// arguments in two layers: the schema itself, then Validatable if T implements it.
type Extractor[T any] struct {
	schemaMap map[string]any
	resolved  *jsonschema.Resolved
}

// NewExtractor creates an Extractor for type T. When strict is true, the generated schema
// has additionalProperties: false for all objects and all properties required.
func NewExtractor[T any](strict bool) (*Extractor[T], error) {
	schemaMap, resolved, err := generateSchema[T](strict)
	if err != nil {
		return nil, err
	}
	return &Extractor[T]{
		schemaMap: schemaMap,
		resolved:  resolved,
	}, nil
}

// Schema returns a shallow copy of the JSON Schema (top-level keys only).
// Nested maps are shared; callers must not mutate them.
func (e *Extractor[T]) Schema() map[string]any {
	return maps.Clone(e.schemaMap)
}

// ParseAndValidate deserializes argsJSON into T after schema validation and then runs
// Validatable. Invalid JSON and validation failures are returned as ClientError.
func (e *Extractor[T]) ParseAndValidate(argsJSON []byte) (T, error) {
	var zero T
	var v any
	if err := json.Unmarshal(argsJSON, &v); err != nil {
		return zero, wrapJSONParseError(err)
	}
	if err := validateAgainstSchema(e.resolved, v); err != nil {
		return zero, err
	}
	var args T
	if err := json.Unmarshal(argsJSON, &args); err != nil {
		return zero, wrapJSONParseError(err)
	}
	if err := runLayer2Validation(args); err != nil {
		if IsClientError(err) {
			return zero, err
		}
		return zero, &ClientError{Reason: err.Error(), Err: ErrValidation}
	}
	return args, nil
}

// ParseArgs validates argsJSON like ParseAndValidate and returns the validated value as
// keyword arguments keyed by JSON field name. Numbers keep their Go types (int stays int).
func (e *Extractor[T]) ParseArgs(argsJSON []byte) (map[string]any, error) {
	args, err := e.ParseAndValidate(argsJSON)
	if err != nil {
		return nil, err
	}
	return structToArgs(args), nil
}

// structToArgs flattens the exported, json-tagged fields of a struct into a map.
func structToArgs(v any) map[string]any {
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return map[string]any{}
		}
		rv = rv.Elem()
	}
	out := make(map[string]any)
	if rv.Kind() != reflect.Struct {
		return out
	}
	rt := rv.Type()
	for i := range rt.NumField() {
		field := rt.Field(i)
		if !field.IsExported() {
			continue
		}
		name := jsonFieldName(field)
		if name == "" {
			continue
		}
		out[name] = rv.Field(i).Interface()
	}
	return out
}

func jsonFieldName(field reflect.StructField) string {
	tag := field.Tag.Get("json")
	if tag == "-" {
		return ""
	}
	for i := 0; i < len(tag); i++ {
		if tag[i] == ',' {
			tag = tag[:i]
			break
		}
	}
	if tag == "" {
		return field.Name
	}
	return tag
}

// runLayer2Validation runs Validatable.Validate() on args; if args does not implement Validatable,
// it tries &args for value types (pointer receiver). Never calls Validate twice for the same receiver.
func runLayer2Validation[T any](args T) error {
	if err := validateCustom(any(args)); err != nil {
		return err
	}
	if _, ok := any(args).(Validatable); ok {
		return nil
	}
	typ := reflect.TypeOf(args)
	if typ == nil || typ.Kind() == reflect.Pointer {
		return nil
	}
	return validateCustom(any(&args))
}
