package queue

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeque_PopOnEmpty(t *testing.T) {
	dq := NewDeque[int]()
	_, err := dq.PopFront()
	require.ErrorIs(t, err, ErrDequeEmpty)
	_, err = dq.PopBack()
	require.ErrorIs(t, err, ErrDequeEmpty)
	_, err = dq.PeekFront()
	require.ErrorIs(t, err, ErrDequeEmpty)
	_, err = dq.PeekBack()
	require.ErrorIs(t, err, ErrDequeEmpty)
}

func TestDeque_SizeAndIsEmpty(t *testing.T) {
	dq := NewDeque[int]()
	require.True(t, dq.IsEmpty())
	require.Equal(t, int64(0), dq.Len())

	dq.PushFront(1)
	require.False(t, dq.IsEmpty())
	require.Equal(t, int64(1), dq.Len())

	dq.PushBack(2)
	require.Equal(t, int64(2), dq.Len())

	e, err := dq.PopFront()
	require.NoError(t, err)
	require.Equal(t, 1, e)
	require.Equal(t, int64(1), dq.Len())

	e, err = dq.PopBack()
	require.NoError(t, err)
	require.Equal(t, 2, e)
	require.Equal(t, int64(0), dq.Len())
	require.True(t, dq.IsEmpty())
}

func TestDeque_AddRemove(t *testing.T) {
	dq := NewDeque[int](WithDequeCapacity[int](3))
	dq.PushFront(2)
	dq.PushFront(1)
	dq.PushBack(3)
	dq.PushBack(4)

	front, err := dq.PeekFront()
	require.NoError(t, err)
	require.Equal(t, 1, front)
	back, err := dq.PeekBack()
	require.NoError(t, err)
	require.Equal(t, 4, back)
	require.Equal(t, []int{1, 2, 3, 4}, slices.Collect(dq.All()))

	for _, expected := range []int{4, 3} {
		e, err := dq.PopBack()
		require.NoError(t, err)
		require.Equal(t, expected, e)
	}
	for _, expected := range []int{1, 2} {
		e, err := dq.PopFront()
		require.NoError(t, err)
		require.Equal(t, expected, e)
	}
	require.True(t, dq.IsEmpty())
}

func TestDeque_GrowAcrossWrap(t *testing.T) {
	type testcase struct {
		name string
		size int
	}
	testcases := []testcase{
		{name: "below default capacity", size: 10},
		{name: "exactly default capacity", size: defaultDequeCapacity},
		{name: "multiple grows", size: 1000},
	}
	for _, tc := range testcases {
		t.Run(tc.name, func(tt *testing.T) {
			dq := NewDeque[int]()
			expected := make([]int, 0, tc.size)
			// Alternate both ends so the head wraps before growing.
			for i := 0; i < tc.size; i++ {
				if i&1 == 0 {
					dq.PushFront(i)
					expected = append([]int{i}, expected...)
				} else {
					dq.PushBack(i)
					expected = append(expected, i)
				}
			}
			require.Equal(tt, int64(tc.size), dq.Len())
			require.Equal(tt, expected, slices.Collect(dq.All()))
			for i := 0; i < tc.size; i++ {
				e, err := dq.PopFront()
				require.NoError(tt, err)
				assert.Equal(tt, expected[i], e)
			}
			require.True(tt, dq.IsEmpty())
		})
	}
}

func TestDeque_FIFOAndLIFO(t *testing.T) {
	const total = 1000
	fifo := NewDeque[int]()
	lifo := NewDeque[int]()
	for i := 0; i < total; i++ {
		fifo.PushBack(i)
		lifo.PushBack(i)
	}
	for i := 0; i < total; i++ {
		e, err := fifo.PopFront()
		require.NoError(t, err)
		require.Equal(t, i, e)
		e, err = lifo.PopBack()
		require.NoError(t, err)
		require.Equal(t, total-1-i, e)
	}
}

func TestDeque_AllStopsEarlyAndClear(t *testing.T) {
	dq := NewDeque[string]()
	for _, s := range []string{"a", "b", "c"} {
		dq.PushBack(s)
	}
	visited := make([]string, 0, 2)
	for s := range dq.All() {
		visited = append(visited, s)
		if len(visited) == 2 {
			break
		}
	}
	require.Equal(t, []string{"a", "b"}, visited)

	dq.Clear()
	require.True(t, dq.IsEmpty())
	require.Empty(t, slices.Collect(dq.All()))
	dq.PushFront("z")
	e, err := dq.PeekBack()
	require.NoError(t, err)
	require.Equal(t, "z", e)
}
