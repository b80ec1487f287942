package bench

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWorkload_Check(t *testing.T) {
	valid := Workload{Name: "ok", Ops: 10, KeySpace: 10, RemoveRatio: 0.5}
	testcases := []struct {
		name   string
		modify func(w *Workload)
		err    bool
	}{
		{"valid", func(w *Workload) {}, false},
		{"valid pattern", func(w *Workload) { w.Pattern = DescendingPattern }, false},
		{"empty name", func(w *Workload) { w.Name = "" }, true},
		{"zero ops", func(w *Workload) { w.Ops = 0 }, true},
		{"zero key space", func(w *Workload) { w.KeySpace = 0 }, true},
		{"negative ratio", func(w *Workload) { w.RemoveRatio = -0.1 }, true},
		{"ratio over one", func(w *Workload) { w.RemoveRatio = 1.1 }, true},
		{"negative trials", func(w *Workload) { w.Trials = -1 }, true},
		{"unknown pattern", func(w *Workload) { w.Pattern = "zigzag" }, true},
	}
	for _, tc := range testcases {
		t.Run(tc.name, func(tt *testing.T) {
			w := valid
			tc.modify(&w)
			err := w.check()
			if tc.err {
				require.ErrorIs(tt, err, ErrInvalidWorkload)
				return
			}
			require.NoError(tt, err)
		})
	}
}

func TestWorkload_Ops(t *testing.T) {
	w := Workload{Name: "random", Ops: 1000, KeySpace: 64, RemoveRatio: 0.3, Seed: 7}
	first := slices.Collect(w.ops(0))
	require.Len(t, first, 1000)
	require.Equal(t, first, slices.Collect(w.ops(0)))
	require.NotEqual(t, first, slices.Collect(w.ops(1)))

	removes := 0
	for _, o := range first {
		require.GreaterOrEqual(t, o.key, 0)
		require.Less(t, o.key, 64)
		if o.kind == opRemove {
			removes++
		}
	}
	require.InDelta(t, 300, removes, 80)

	w = Workload{Name: "asc", Pattern: AscendingPattern, Ops: 10, KeySpace: 4}
	keys := make([]int, 0, 10)
	for o := range w.ops(0) {
		require.Equal(t, opInsert, o.kind)
		keys = append(keys, o.key)
	}
	require.Equal(t, []int{0, 1, 2, 3, 0, 1, 2, 3, 0, 1}, keys)

	w.Pattern = DescendingPattern
	keys = keys[:0]
	for o := range w.ops(0) {
		keys = append(keys, o.key)
		if len(keys) == 5 {
			break
		}
	}
	require.Equal(t, []int{3, 2, 1, 0, 3}, keys)
}

func TestDefaultWorkloads(t *testing.T) {
	workloads := DefaultWorkloads(Workload{Ops: 10, KeySpace: 10})
	require.Len(t, workloads, 3)
	require.Equal(t, "random", workloads[0].Name)
	require.Equal(t, AscendingPattern, workloads[1].Pattern)

	workloads = DefaultWorkloads(Workload{Name: "ci", Ops: 10, KeySpace: 10})
	require.Equal(t, "ci-descending", workloads[2].Name)
	for _, w := range workloads {
		require.NoError(t, w.check())
	}
}
