package bbtools

import (
	"context"
	"fmt"
	"strings"
)

const (
	// MaxDescriptionLen bounds enriched tool descriptions, in characters.
	MaxDescriptionLen = 1000
	// exampleListHead is how many records of a list result an example shows.
	exampleListHead = 3
	ellipsis        = "…"
)

// RenderExample runs fn with the example parameter sets and formats a usage line
// "name(k1=\"v1\", k2=\"v2\") -> result". Every value is quoted as a string whatever its type.
// A list result shows its first three records.
//
// Only the first example set is executed and rendered; later sets are ignored.
func RenderExample(ctx context.Context, name string, examples []Params, fn Func) (string, error) {
	if len(examples) == 0 {
		return "", fmt.Errorf("%s: %w", name, ErrNoExample)
	}
	example := examples[0]
	args := make([]string, 0, example.Len())
	example.Each(func(k string, v any) {
		args = append(args, fmt.Sprintf("%s=\"%v\"", k, v))
	})
	out, err := fn(ctx, example.Map())
	if err != nil {
		return "", fmt.Errorf("%s: run example: %w", name, err)
	}
	return fmt.Sprintf("%s(%s) -> %s", name, strings.Join(args, ", "), out.Head(exampleListHead)), nil
}

// EnrichDescription appends the usage example to description and bounds the result
// with TruncateDescription.
func EnrichDescription(description, example string) string {
	return TruncateDescription(description + " Usage: " + example)
}

// TruncateDescription returns s unchanged when it has at most MaxDescriptionLen characters;
// otherwise its first MaxDescriptionLen-1 characters followed by "…".
func TruncateDescription(s string) string {
	runes := []rune(s)
	if len(runes) <= MaxDescriptionLen {
		return s
	}
	return string(runes[:MaxDescriptionLen-1]) + ellipsis
}
