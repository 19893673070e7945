package bbtools

import (
	"fmt"
	"time"

	orderedmap "github.com/wk8/go-ordered-map/v2"
	"gopkg.in/yaml.v3"
)

// Singular selects whether a generic tool returns its full result list or one record of it.
type Singular int

const (
	SingularNone  Singular = 0
	SingularFirst Singular = 1
	SingularLast  Singular = -1
)

// Valid reports whether s is one of the known modes.
func (s Singular) Valid() bool {
	return s == SingularNone || s == SingularFirst || s == SingularLast
}

func (s Singular) String() string {
	switch s {
	case SingularNone:
		return "none"
	case SingularFirst:
		return "first"
	case SingularLast:
		return "last"
	default:
		return fmt.Sprintf("Singular(%d)", int(s))
	}
}

// Definition describes one generic tool: which provider operation it wraps, how its
// parameters are filled in, and how its result is shaped. Immutable once loaded.
type Definition struct {
	Name        string     `yaml:"name"`
	Description string     `yaml:"description"`
	OpenAPIPath string     `yaml:"openapi_path"`
	ArgsSchema  SchemaName `yaml:"args_schema"`
	// DefaultParameters fill in arguments the caller did not supply.
	DefaultParameters Params `yaml:"default_parameters"`
	// OverrideParameters always replace caller-supplied arguments.
	OverrideParameters     Params        `yaml:"override_parameters"`
	ExampleParameterValues []Params      `yaml:"example_parameter_values"`
	Singular               Singular      `yaml:"singular"`
	Tags                   []string      `yaml:"tags,omitempty"`
	Timeout                time.Duration `yaml:"timeout,omitempty"`
}

// Params is an insertion-ordered mapping of parameter names to values.
// The zero value is an empty mapping ready to use.
type Params struct {
	om *orderedmap.OrderedMap[string, any]
}

// NewParams builds Params from alternating name/value pairs.
func NewParams(kv ...any) Params {
	var p Params
	for i := 0; i+1 < len(kv); i += 2 {
		p.Set(fmt.Sprint(kv[i]), kv[i+1])
	}
	return p
}

// Len returns the number of parameters.
func (p Params) Len() int {
	if p.om == nil {
		return 0
	}
	return p.om.Len()
}

// Get returns the value of name.
func (p Params) Get(name string) (any, bool) {
	if p.om == nil {
		return nil, false
	}
	return p.om.Get(name)
}

// Set adds or replaces name, keeping its original position when it already exists.
func (p *Params) Set(name string, value any) {
	if p.om == nil {
		p.om = orderedmap.New[string, any]()
	}
	p.om.Set(name, value)
}

// Each calls fn for every parameter in insertion order.
func (p Params) Each(fn func(name string, value any)) {
	if p.om == nil {
		return
	}
	for pair := p.om.Oldest(); pair != nil; pair = pair.Next() {
		fn(pair.Key, pair.Value)
	}
}

// Keys returns the parameter names in insertion order.
func (p Params) Keys() []string {
	keys := make([]string, 0, p.Len())
	p.Each(func(name string, _ any) { keys = append(keys, name) })
	return keys
}

// Map returns the parameters as a plain map.
func (p Params) Map() map[string]any {
	m := make(map[string]any, p.Len())
	p.Each(func(name string, value any) { m[name] = value })
	return m
}

// UnmarshalYAML decodes a mapping node, keeping key order. A null node is an empty mapping.
func (p *Params) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode && node.Tag == "!!null" {
		return nil
	}
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: parameters must be a mapping", node.Line)
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		var name string
		if err := node.Content[i].Decode(&name); err != nil {
			return fmt.Errorf("line %d: parameter name: %w", node.Content[i].Line, err)
		}
		var value any
		if err := node.Content[i+1].Decode(&value); err != nil {
			return fmt.Errorf("line %d: parameter %q: %w", node.Content[i+1].Line, name, err)
		}
		p.Set(name, value)
	}
	return nil
}

// MarshalYAML encodes p as a mapping in insertion order.
func (p Params) MarshalYAML() (any, error) {
	node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	var err error
	p.Each(func(name string, value any) {
		if err != nil {
			return
		}
		var k, v yaml.Node
		if err = k.Encode(name); err != nil {
			return
		}
		if err = v.Encode(value); err != nil {
			return
		}
		node.Content = append(node.Content, &k, &v)
	})
	if err != nil {
		return nil, err
	}
	return node, nil
}
