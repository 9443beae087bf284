package hcl_adapter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"
)

func TestCtyValueToInterface(t *testing.T) {
	testCases := []struct {
		name     string
		in       cty.Value
		expected any
	}{
		{name: "string", in: cty.StringVal("a"), expected: "a"},
		{name: "whole number", in: cty.NumberIntVal(42), expected: int64(42)},
		{name: "fraction", in: cty.NumberFloatVal(1.5), expected: 1.5},
		{name: "bool", in: cty.True, expected: true},
		{name: "null", in: cty.NullVal(cty.String), expected: nil},
		{name: "list", in: cty.ListVal([]cty.Value{cty.NumberIntVal(1), cty.NumberIntVal(2)}), expected: []any{int64(1), int64(2)}},
		{name: "empty tuple", in: cty.EmptyTupleVal, expected: []any{}},
		{name: "map", in: cty.MapVal(map[string]cty.Value{"k": cty.StringVal("v")}), expected: map[string]any{"k": "v"}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			out, err := ctyValueToInterface(tc.in)
			require.NoError(t, err)
			assert.Equal(t, tc.expected, out)
		})
	}
}

func TestCtyValueToInterface_Unknown(t *testing.T) {
	_, err := ctyValueToInterface(cty.UnknownVal(cty.String))
	assert.Error(t, err)
}
