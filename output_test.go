package bbtools

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRecord_Compacts(t *testing.T) {
	r, err := NewRecord(json.RawMessage("{ \"a\" : 1,\n \"b\": [1, 2] }"))
	require.NoError(t, err)
	assert.Equal(t, Record(`{"a":1,"b":[1,2]}`), r)
	_, err = NewRecord(json.RawMessage(`{`))
	assert.Error(t, err)
}

func TestOutput_String(t *testing.T) {
	assert.Equal(t, "[]", ListOutput(nil).String())
	assert.Equal(t, "[]", Output{}.String())
	assert.Equal(t, `[{"a":1}, {"a":2}]`, ListOutput([]Record{`{"a":1}`, `{"a":2}`}).String())
	assert.Equal(t, `{"a":1}`, SingleOutput(`{"a":1}`).String())
	assert.Equal(t, "null", NoOutput().String())
}

func TestOutput_Kinds(t *testing.T) {
	list := ListOutput([]Record{"1"})
	assert.True(t, list.IsList())
	assert.False(t, list.IsSingle())
	_, ok := list.Record()
	assert.False(t, ok)

	single := SingleOutput("1")
	assert.True(t, single.IsSingle())
	assert.Nil(t, single.Records())

	none := NoOutput()
	assert.True(t, none.IsNone())
	assert.Nil(t, none.Records())
}

func TestOutput_Head(t *testing.T) {
	out := ListOutput([]Record{"1", "2", "3", "4"})
	assert.Equal(t, []Record{"1", "2", "3"}, out.Head(3).Records())
	assert.Len(t, out.Records(), 4, "Head must not modify the receiver")
	assert.Equal(t, []Record{"1"}, ListOutput([]Record{"1"}).Head(3).Records())
	assert.True(t, SingleOutput("1").Head(3).IsSingle())
}

func TestOutput_Records_ReturnsCopy(t *testing.T) {
	out := ListOutput([]Record{"1", "2"})
	rs := out.Records()
	rs[0] = "mutated"
	assert.Equal(t, Record("1"), out.Records()[0])
}

func TestOutput_MarshalJSON(t *testing.T) {
	tests := []struct {
		name string
		out  Output
		want string
	}{
		{"list", ListOutput([]Record{`{"a":1}`, `2`}), `[{"a":1},2]`},
		{"empty", ListOutput(nil), `[]`},
		{"single", SingleOutput(`{"item1":"text"}`), `{"item1":"text"}`},
		{"none", NoOutput(), `null`},
		{"invalid record", SingleOutput(`not json`), `"not json"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := json.Marshal(tt.out)
			require.NoError(t, err)
			assert.JSONEq(t, tt.want, string(b))
		})
	}
}

func TestMarshalRecord(t *testing.T) {
	r, err := MarshalRecord(map[string]string{"item1": "Apple designs"})
	require.NoError(t, err)
	assert.Equal(t, Record(`{"item1":"Apple designs"}`), r)
	_, err = MarshalRecord(make(chan int))
	assert.Error(t, err)
}
