package infra

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsAbsentKey(t *testing.T) {
	require.True(t, IsAbsentKey(math.NaN()))
	require.True(t, IsAbsentKey(float32(math.NaN())))
	require.False(t, IsAbsentKey(math.Inf(1)))
	require.False(t, IsAbsentKey(0.0))
	require.False(t, IsAbsentKey(0))
	require.False(t, IsAbsentKey(""))
}

func TestKeyComparators(t *testing.T) {
	type testcase struct {
		name   string
		i, j   int
		asc    int64
		desc   int64
	}
	testcases := []testcase{
		{name: "less", i: 1, j: 2, asc: -1, desc: 1},
		{name: "equal", i: 2, j: 2, asc: 0, desc: 0},
		{name: "greater", i: 3, j: 2, asc: 1, desc: -1},
	}
	for _, tc := range testcases {
		t.Run(tc.name, func(tt *testing.T) {
			assert.Equal(tt, tc.asc, AscendingKeyComparator(tc.i, tc.j))
			assert.Equal(tt, tc.desc, DescendingKeyComparator(tc.i, tc.j))
		})
	}
	assert.Equal(t, int64(-1), AscendingKeyComparator("abc", "abd"))
	assert.Equal(t, int64(1), AscendingKeyComparator(math.Inf(1), math.MaxFloat64))
}
