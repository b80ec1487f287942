package observability

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func TestInitAppStats(t *testing.T) {
	reader := metric.NewManualReader()
	mp := metric.NewMeterProvider(metric.WithReader(reader))
	defer func() {
		_ = mp.Shutdown(context.Background())
	}()
	otel.SetMeterProvider(mp)

	ctx := context.Background()
	require.NoError(t, InitAppStats(ctx, "test"))
	// Registered once.
	require.NoError(t, InitAppStats(ctx, "again"))
	require.NotNil(t, stats)

	rm := metricdata.ResourceMetrics{}
	require.NoError(t, reader.Collect(ctx, &rm))
	names := make(map[string]struct{}, 16)
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			names[m.Name] = struct{}{}
		}
	}
	require.Contains(t, names, "app.core.goroutines")
	require.Contains(t, names, "app.core.processes")
	require.Contains(t, names, "app.mem.rss")
}

func TestProcessRSS(t *testing.T) {
	rss, err := ProcessRSS(context.Background())
	require.NoError(t, err)
	require.Greater(t, rss, uint64(0))
}
