package bbtools

import (
	"encoding/json"
	"errors"
	"reflect"
	"slices"
	"strings"

	"github.com/google/jsonschema-go/jsonschema"
)

// generateSchema produces a JSON Schema map and a resolved validator for type T.
// It is called once when building an argument schema. strict sets additionalProperties: false
// for all objects (OpenAI Structured Outputs).
func generateSchema[T any](strict bool) (map[string]any, *jsonschema.Resolved, error) {
	schema, err := jsonschema.For[T](nil)
	if err != nil {
		return nil, nil, err
	}
	if schema == nil {
		return nil, nil, errNilSchema
	}
	data, err := json.Marshal(schema)
	if err != nil {
		return nil, nil, err
	}
	var schemaMap map[string]any
	if err := json.Unmarshal(data, &schemaMap); err != nil {
		return nil, nil, err
	}
	enrichSchemaFromStructTags(schemaMap, reflect.TypeOf(*new(T)))
	if strict {
		applyStrictMode(schemaMap)
	}
	stripSchemaIDs(schemaMap)
	resolved, err := compileRawSchema(schemaMap)
	if err != nil {
		return nil, nil, err
	}
	return schemaMap, resolved, nil
}

// enrichSchemaFromStructTags adds description and enum from struct tags to root-level properties.
// typ may be a pointer; json tag (first part before comma) is used to match property keys.
func enrichSchemaFromStructTags(schemaMap map[string]any, typ reflect.Type) {
	if schemaMap == nil || typ == nil {
		return
	}
	if typ.Kind() == reflect.Pointer {
		typ = typ.Elem()
	}
	if typ.Kind() != reflect.Struct {
		return
	}
	props, ok := schemaMap["properties"].(map[string]any)
	if !ok || len(props) == 0 {
		return
	}
	jsonToField := make(map[string]reflect.StructField, typ.NumField())
	for i := range typ.NumField() {
		field := typ.Field(i)
		jsonTag := strings.Split(field.Tag.Get("json"), ",")[0]
		if jsonTag == "" || jsonTag == "-" {
			continue
		}
		jsonToField[jsonTag] = field
	}
	for key, val := range props {
		prop, ok := val.(map[string]any)
		if !ok {
			continue
		}
		field, ok := jsonToField[key]
		if !ok {
			continue
		}
		if desc := field.Tag.Get("description"); desc != "" {
			prop["description"] = desc
		}
		if enumStr := field.Tag.Get("enum"); enumStr != "" {
			parts := strings.Split(enumStr, ",")
			enum := make([]any, len(parts))
			for i, p := range parts {
				enum[i] = strings.TrimSpace(p)
			}
			prop["enum"] = enum
		}
	}
}

// walkSchema recursively visits every map node in the schema tree (including $defs and definitions).
func walkSchema(schemaMap map[string]any, visit func(map[string]any)) {
	if schemaMap == nil {
		return
	}
	visit(schemaMap)
	for _, val := range schemaMap {
		switch v := val.(type) {
		case map[string]any:
			walkSchema(v, visit)
		case []any:
			for _, item := range v {
				if m2, ok := item.(map[string]any); ok {
					walkSchema(m2, visit)
				}
			}
		}
	}
}

// applyStrictMode sets additionalProperties: false for every object in the schema.
func applyStrictMode(schemaMap map[string]any) {
	walkSchema(schemaMap, func(n map[string]any) {
		props, ok := n["properties"].(map[string]any)
		if !ok {
			return
		}
		n["additionalProperties"] = false
		keys := make([]string, 0, len(props))
		for k := range props {
			keys = append(keys, k)
		}
		slices.Sort(keys)
		required := make([]any, len(keys))
		for i, k := range keys {
			required[i] = k
		}
		if len(required) > 0 {
			n["required"] = required
		}
	})
}

var errNilSchema = errors.New("schema reflection returned nil")

// compileRawSchema compiles a raw JSON Schema map into a resolved validator. The map is not mutated.
func compileRawSchema(schemaMap map[string]any) (*jsonschema.Resolved, error) {
	data, err := json.Marshal(schemaMap)
	if err != nil {
		return nil, err
	}
	var s jsonschema.Schema
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, err
	}
	return s.Resolve(nil)
}

// stripSchemaIDs removes id and $id from schema so resolution does not depend on them.
func stripSchemaIDs(schemaMap map[string]any) {
	walkSchema(schemaMap, func(n map[string]any) {
		delete(n, "id")
		delete(n, "$id")
	})
}
