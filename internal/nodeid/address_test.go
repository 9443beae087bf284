// internal/nodeid/address_test.go
package nodeid

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddress_String(t *testing.T) {
	testCases := []struct {
		name        string
		addr        Address
		expectedStr string
		label       string
	}{
		{
			name:        "plain task",
			addr:        New("print_brup1", "main.go:10"),
			expectedStr: "print_brup1@main.go:10",
			label:       "print_brup1",
		},
		{
			name:        "batch",
			addr:        New("sum", "numbers.go:7").Child(3),
			expectedStr: "sum[3]@numbers.go:7",
			label:       "sum_3",
		},
		{
			name:        "placeholder",
			addr:        New("print_brup4", "main.go:22").PlaceholderChild(),
			expectedStr: "print_brup4.children@main.go:22",
			label:       "print_brup4_children",
		},
		{
			name:        "no site",
			addr:        New("root", ""),
			expectedStr: "root",
			label:       "root",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expectedStr, tc.addr.String())
			assert.Equal(t, tc.label, tc.addr.Label())
		})
	}
}

func TestAddress_RoundTrip(t *testing.T) {
	testIDs := []string{
		"a@x.go:1",
		"sum_batches[15]@numbers.go:31",
		"print_brup3.children@main.go:9",
		"http-client",
	}

	for _, id := range testIDs {
		t.Run(id, func(t *testing.T) {
			addr, err := Parse(id)
			require.NoError(t, err)

			roundTripID := addr.String()
			assert.Equal(t, id, roundTripID)

			roundTripAddr, err := Parse(roundTripID)
			require.NoError(t, err)
			assert.True(t, addr.Equal(roundTripAddr))
		})
	}
}

func TestAddress_Equal(t *testing.T) {
	base := New("a", "x.go:1")

	assert.True(t, base.Equal(New("a", "x.go:1")))
	assert.False(t, base.Equal(New("a", "x.go:2")), "same name at another site is another node")
	assert.False(t, base.Equal(base.Child(0)))
	assert.False(t, base.Equal(base.PlaceholderChild()))
	assert.True(t, Address{}.IsZero())
	assert.False(t, base.IsZero())
}
