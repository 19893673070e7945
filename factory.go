package bbtools

import (
	"context"
	"fmt"
	"maps"
)

// NewOperationFunc wraps op as a Func driven by def.
//
// Arguments are merged in this order: the caller's arguments, then every override
// parameter (replacing caller values), then every default parameter whose name is still
// absent. The result items are serialized to records and shaped by def.Singular:
// an empty result is always an empty list, SingularFirst and SingularLast return one
// record, anything else returns the whole list in provider order.
// Errors from op are returned unchanged.
func NewOperationFunc(def Definition, op Operation) Func {
	overrides := def.OverrideParameters.Map()
	defaults := def.DefaultParameters.Map()
	singular := def.Singular
	return func(ctx context.Context, args map[string]any) (Output, error) {
		merged := MergeParams(args, overrides, defaults)
		items, err := op(ctx, merged)
		if err != nil {
			return Output{}, err
		}
		records := make([]Record, 0, len(items))
		for i, item := range items {
			r, err := NewRecord(item)
			if err != nil {
				return Output{}, fmt.Errorf("%s: item %d: %w", def.Name, i, err)
			}
			records = append(records, r)
		}
		return shape(records, singular), nil
	}
}

// MergeParams returns a new map holding args, then overrides, then the defaults not yet present.
// None of the inputs is modified.
func MergeParams(args, overrides, defaults map[string]any) map[string]any {
	merged := make(map[string]any, len(args)+len(overrides)+len(defaults))
	maps.Copy(merged, args)
	maps.Copy(merged, overrides)
	for k, v := range defaults {
		if _, ok := merged[k]; !ok {
			merged[k] = v
		}
	}
	return merged
}

func shape(records []Record, singular Singular) Output {
	if len(records) == 0 {
		return ListOutput([]Record{})
	}
	switch singular {
	case SingularFirst:
		return SingleOutput(records[0])
	case SingularLast:
		return SingleOutput(records[len(records)-1])
	default:
		return ListOutput(records)
	}
}
