package bench

import (
	"context"
	"testing"

	antsv2 "github.com/panjf2000/ants/v2"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/benz9527/xtree/xlog"
)

func newTestLogger() xlog.XLogger {
	return xlog.NewXLogger(
		xlog.WithXLoggerLevel(xlog.LogLevelError),
		xlog.WithXLoggerConsoleCore(),
	)
}

func sumInt64(t *testing.T, reader metric.Reader, name string) int64 {
	t.Helper()
	rm := metricdata.ResourceMetrics{}
	require.NoError(t, reader.Collect(context.Background(), &rm))
	var total int64
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != name {
				continue
			}
			sum, ok := m.Data.(metricdata.Sum[int64])
			require.True(t, ok)
			for _, dp := range sum.DataPoints {
				total += dp.Value
			}
		}
	}
	return total
}

func TestRunner_Run(t *testing.T) {
	reader := metric.NewManualReader()
	mp := metric.NewMeterProvider(metric.WithReader(reader))
	logger := newTestLogger()

	store, err := OpenReportStore("file:bench_runner?mode=memory&cache=shared", logger)
	require.NoError(t, err)
	defer func() {
		require.NoError(t, store.Close())
	}()

	r, err := NewRunner(
		WithRunnerLogger(logger),
		WithRunnerPoolSize(4),
		WithRunnerStats(NewStats(mp)),
		WithRunnerStore(store),
	)
	require.NoError(t, err)
	defer r.Close()

	workloads := DefaultWorkloads(Workload{
		Ops:         3000,
		KeySpace:    500,
		RemoveRatio: 0.4,
		Trials:      2,
		Validate:    true,
		Seed:        42,
	})
	reports, err := r.Run(context.Background(), workloads)
	require.NoError(t, err)
	require.Len(t, reports, len(workloads)*2*2)

	for i := 0; i < len(reports); i += 2 {
		avl, rb := reports[i], reports[i+1]
		require.Equal(t, avlTreeName, avl.Tree)
		require.Equal(t, rbTreeName, rb.Tree)
		require.Equal(t, avl.Workload, rb.Workload)
		require.Equal(t, avl.Trial, rb.Trial)
		require.Equal(t, int64(3000), avl.Ops)
		require.Equal(t, avl.FinalSize, rb.FinalSize)
		require.Equal(t, avl.Inserted, rb.Inserted)
		require.Equal(t, avl.Removed, rb.Removed)
		require.Equal(t, avl.Inserted-avl.Removed, avl.FinalSize)
		require.Zero(t, avl.Mismatches)
		require.Zero(t, rb.Mismatches)
		require.NotZero(t, avl.ID)
	}

	require.Equal(t, int64(len(workloads)*2*3000*2), sumInt64(t, reader, "xtree.bench.ops"))
	require.Zero(t, sumInt64(t, reader, "xtree.bench.mismatches"))

	saved, err := store.List(context.Background(), reports[0].RunID)
	require.NoError(t, err)
	require.Len(t, saved, len(reports))
	runs, err := store.Runs(context.Background())
	require.NoError(t, err)
	require.Contains(t, runs, reports[0].RunID)
}

func TestRunner_SharedPool(t *testing.T) {
	pool, err := antsv2.NewPool(2)
	require.NoError(t, err)
	defer pool.Release()

	r, err := NewRunner(WithRunnerLogger(newTestLogger()), WithRunnerPool(pool))
	require.NoError(t, err)
	r.Close()
	require.False(t, pool.IsClosed())

	reports, err := r.Run(context.Background(), []Workload{
		{Name: "small", Ops: 200, KeySpace: 16, RemoveRatio: 0.5},
	})
	require.NoError(t, err)
	require.Len(t, reports, 2)
	require.Zero(t, reports[0].Mismatches)
	require.Zero(t, reports[1].Mismatches)
}

func TestRunner_Errors(t *testing.T) {
	_, err := NewRunner(WithRunnerPoolSize(0))
	require.Error(t, err)
	_, err = NewRunner(WithRunnerPool(nil))
	require.Error(t, err)

	r, err := NewRunner(WithRunnerLogger(newTestLogger()), WithRunnerPoolSize(1))
	require.NoError(t, err)
	defer r.Close()

	_, err = r.Run(context.Background(), []Workload{{Name: "bad", Ops: 0, KeySpace: 1}})
	require.ErrorIs(t, err, ErrInvalidWorkload)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	reports, err := r.Run(ctx, []Workload{{Name: "cancelled", Ops: 10, KeySpace: 10}})
	require.ErrorIs(t, err, context.Canceled)
	require.Empty(t, reports)
}
