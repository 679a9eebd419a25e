package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseQuantity(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"100", "100", false},
		{" 12.5 ", "12.5", false},
		{"0.0001", "0.0001", false},
		{"-3", "-3", false},
		{"", "", true},
		{"1e3", "", true},
		{"abc", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseQuantity(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.True(t, got.Equal(MustQuantity(tt.want)), "got %s", got)
		})
	}
}

func TestFitsPrecision(t *testing.T) {
	assert.True(t, FitsPrecision(MustQuantity("99999999999999.9999")))
	assert.True(t, FitsPrecision(MustQuantity("-99999999999999")))
	assert.False(t, FitsPrecision(MustQuantity("100000000000000")))
	assert.False(t, FitsPrecision(MustQuantity("1000000000000000")))
	assert.Equal(t, "100000000000000", QuantityLimit().String())
}

func TestFitsScale(t *testing.T) {
	assert.True(t, FitsScale(MustQuantity("1.2345")))
	assert.True(t, FitsScale(MustQuantity("10")))
	assert.True(t, FitsScale(MustQuantity("1.23450")))
	assert.False(t, FitsScale(MustQuantity("1.23456")))
}
