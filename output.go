package bbtools

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// Record is the serialized JSON text of one result item.
type Record string

// NewRecord compacts raw JSON into a Record, so equal items always serialize the same way.
func NewRecord(raw json.RawMessage) (Record, error) {
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return "", fmt.Errorf("serialize record: %w", err)
	}
	return Record(buf.String()), nil
}

// MarshalRecord encodes v as a Record.
func MarshalRecord(v any) (Record, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("serialize record: %w", err)
	}
	return Record(b), nil
}

type outputKind uint8

const (
	kindList outputKind = iota
	kindSingle
	kindNone
)

// Output is what a tool invocation produces. Generic tools return a list of records,
// or exactly one record in singular mode; the filing tool may return nothing.
// The zero value is an empty list.
type Output struct {
	kind    outputKind
	records []Record
}

// ListOutput returns a list result. A nil slice is an empty list.
func ListOutput(records []Record) Output {
	return Output{kind: kindList, records: records}
}

// SingleOutput returns a single-record result.
func SingleOutput(r Record) Output {
	return Output{kind: kindSingle, records: []Record{r}}
}

// NoOutput returns the absence indicator.
func NoOutput() Output {
	return Output{kind: kindNone}
}

// IsList reports whether o is a list result (possibly empty).
func (o Output) IsList() bool { return o.kind == kindList }

// IsSingle reports whether o is a single record.
func (o Output) IsSingle() bool { return o.kind == kindSingle }

// IsNone reports whether o is the absence indicator.
func (o Output) IsNone() bool { return o.kind == kindNone }

// Records returns a copy of the list records. It is nil for single and none results.
func (o Output) Records() []Record {
	if o.kind != kindList {
		return nil
	}
	return append([]Record(nil), o.records...)
}

// Record returns the single record, if o is a single result.
func (o Output) Record() (Record, bool) {
	if o.kind != kindSingle {
		return "", false
	}
	return o.records[0], true
}

// Head returns o with a list truncated to its first n records. Other shapes are returned as is.
func (o Output) Head(n int) Output {
	if o.kind != kindList || len(o.records) <= n {
		return o
	}
	return ListOutput(o.records[:n])
}

// String renders o for descriptions: a list as "[r1, r2]", a single record as its text,
// and the absence indicator as "null".
func (o Output) String() string {
	switch o.kind {
	case kindSingle:
		return string(o.records[0])
	case kindNone:
		return "null"
	default:
		parts := make([]string, len(o.records))
		for i, r := range o.records {
			parts[i] = string(r)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	}
}

// MarshalJSON encodes a list as a JSON array of the records, a single record as the
// record itself and the absence indicator as null. Records that are not valid JSON
// are encoded as strings.
func (o Output) MarshalJSON() ([]byte, error) {
	switch o.kind {
	case kindSingle:
		return recordJSON(o.records[0])
	case kindNone:
		return []byte("null"), nil
	default:
		var buf bytes.Buffer
		buf.WriteByte('[')
		for i, r := range o.records {
			if i > 0 {
				buf.WriteByte(',')
			}
			b, err := recordJSON(r)
			if err != nil {
				return nil, err
			}
			buf.Write(b)
		}
		buf.WriteByte(']')
		return buf.Bytes(), nil
	}
}

func recordJSON(r Record) ([]byte, error) {
	if json.Valid([]byte(r)) {
		return []byte(r), nil
	}
	return json.Marshal(string(r))
}
