package bbtools

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidatable_NotImplemented(t *testing.T) {
	type Args struct {
		Low  int `json:"low"`
		High int `json:"high"`
	}
	args := &Args{Low: 10, High: 5}
	// Args does not implement Validatable; validateCustom should no-op
	err := validateCustom(args)
	assert.NoError(t, err)
}

// validatableArgs implements Validatable for tests.
type validatableArgs struct {
	Low  int `json:"low"`
	High int `json:"high"`
}

func (a validatableArgs) Validate() error {
	if a.Low > a.High {
		return errors.New("low must be <= high")
	}
	return nil
}

func TestValidatable_Implemented(t *testing.T) {
	tool, err := NewTool("validatable_tool", "desc", func(_ context.Context, _ validatableArgs) (struct{ Ok bool }, error) {
		return struct{ Ok bool }{Ok: true}, nil
	})
	require.NoError(t, err)
	var res []byte
	err = tool.Execute(context.Background(), []byte(`{"low":1,"high":10}`), collect(&res))
	require.NoError(t, err)
	require.NotNil(t, res)
	// Invalid: low > high, Validatable.Validate returns error
	res = nil
	err = tool.Execute(context.Background(), []byte(`{"low":10,"high":5}`), collect(&res))
	require.Error(t, err)
	assert.Nil(t, res)
	assert.True(t, IsClientError(err))
	assert.ErrorIs(t, err, ErrValidation)
}

// pointerValidatableArgs implements Validatable with pointer receiver only.
type pointerValidatableArgs struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

func (a *pointerValidatableArgs) Validate() error {
	if a.Min > a.Max {
		return errors.New("min must be <= max")
	}
	return nil
}

func TestValidatable_PointerReceiver(t *testing.T) {
	tool, err := NewTool("ptr_validatable", "desc", func(_ context.Context, _ pointerValidatableArgs) (struct{ Ok bool }, error) {
		return struct{ Ok bool }{Ok: true}, nil
	})
	require.NoError(t, err)
	var res []byte
	err = tool.Execute(context.Background(), []byte(`{"min":1,"max":10}`), collect(&res))
	require.NoError(t, err)
	require.NotNil(t, res)
	err = tool.Execute(context.Background(), []byte(`{"min":10,"max":5}`), discard)
	require.Error(t, err)
	assert.True(t, IsClientError(err))
	assert.ErrorIs(t, err, ErrValidation)
}

func TestArgsSchemas_Validate(t *testing.T) {
	tests := []struct {
		name    string
		args    Validatable
		wantErr bool
	}{
		{"symbol ok", SymbolSchema{Symbol: "AAPL"}, false},
		{"symbol blank", SymbolSchema{Symbol: "  "}, true},
		{"symbol limit ok", SymbolLimitSchema{Symbol: "AAPL", Limit: 3}, false},
		{"symbol limit zero", SymbolLimitSchema{Symbol: "AAPL", Limit: 0}, true},
		{"symbol limit negative", SymbolLimitSchema{Symbol: "AAPL", Limit: -1}, true},
		{"symbol limit blank symbol", SymbolLimitSchema{Symbol: "", Limit: 3}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.args.Validate()
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
		})
	}
}
