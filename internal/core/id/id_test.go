package id

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewIsTimeOrdered(t *testing.T) {
	a := New()
	b := New()
	assert.Equal(t, 7, int(a.Version()))
	assert.LessOrEqual(t, Compare(a, b), 0)
}

func TestParseOptional(t *testing.T) {
	v, err := ParseOptional("")
	require.NoError(t, err)
	assert.Nil(t, v)

	v, err = ParseOptional("0190a0d6-8f7e-7b6a-9c1d-2f3e4a5b6c7d")
	require.NoError(t, err)
	require.NotNil(t, v)
	assert.Equal(t, "0190a0d6-8f7e-7b6a-9c1d-2f3e4a5b6c7d", v.String())

	_, err = ParseOptional("not-a-uuid")
	assert.Error(t, err)
}

func TestCompare(t *testing.T) {
	a := MustParse("00000000-0000-0000-0000-000000000001")
	b := MustParse("00000000-0000-0000-0000-000000000002")
	assert.Equal(t, -1, Compare(a, b))
	assert.Equal(t, 1, Compare(b, a))
	assert.Equal(t, 0, Compare(a, a))
	assert.True(t, IsNil(ID{}))
}
