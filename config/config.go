// Package config loads tool definitions from YAML and holds the runtime settings of the binary.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/skosovsky/bbtools"
)

// ErrInvalidDefinition is wrapped by every validation failure of Parse.
var ErrInvalidDefinition = errors.New("invalid tool definition")

// Load reads and validates the tool definitions in the YAML file at path.
func Load(path string) ([]bbtools.Definition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read tool definitions: %w", err)
	}
	defs, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return defs, nil
}

// Parse decodes a YAML sequence of tool definitions and validates each of them.
// Unknown keys are rejected.
func Parse(data []byte) ([]bbtools.Definition, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	var defs []bbtools.Definition
	if err := dec.Decode(&defs); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("decode tool definitions: %w", err)
	}
	if err := Validate(defs); err != nil {
		return nil, err
	}
	return defs, nil
}

// Validate checks every definition: unique non-empty name, operation path under the
// API prefix, known argument schema, valid singular mode and at least one example.
func Validate(defs []bbtools.Definition) error {
	seen := make(map[string]int, len(defs))
	var errs []error
	for i, def := range defs {
		where := fmt.Sprintf("definition %d", i)
		if def.Name != "" {
			where = fmt.Sprintf("definition %d (%s)", i, def.Name)
		}
		fail := func(format string, args ...any) {
			errs = append(errs, fmt.Errorf("%w: %s: %s", ErrInvalidDefinition, where, fmt.Sprintf(format, args...)))
		}
		if strings.TrimSpace(def.Name) == "" {
			fail("name is required")
		} else if prev, ok := seen[def.Name]; ok {
			fail("name duplicates definition %d", prev)
		} else {
			seen[def.Name] = i
		}
		if !strings.HasPrefix(def.OpenAPIPath, bbtools.APIPrefix) || def.OpenAPIPath == bbtools.APIPrefix {
			fail("openapi_path %q must start with %s", def.OpenAPIPath, bbtools.APIPrefix)
		}
		if _, err := bbtools.LookupSchema(def.ArgsSchema); err != nil {
			fail("args_schema: %v (known: %v)", err, bbtools.SchemaNames())
		}
		if !def.Singular.Valid() {
			fail("singular must be 0, 1 or -1, got %d", int(def.Singular))
		}
		if len(def.ExampleParameterValues) == 0 {
			fail("example_parameter_values needs at least one parameter set")
		}
		if def.Timeout < 0 {
			fail("timeout must not be negative")
		}
	}
	return errors.Join(errs...)
}
