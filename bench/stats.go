package bench

import (
	"context"
	"time"

	"github.com/samber/lo"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Stats are the runner instruments. A nil *Stats records nothing.
type Stats struct {
	ops        metric.Int64Counter
	latency    metric.Int64Histogram
	height     metric.Int64Histogram
	mismatches metric.Int64Counter
	attrs      map[string]metric.MeasurementOption
}

// NewStats builds the instruments on mp, or on the global provider if
// mp is nil.
func NewStats(mp metric.MeterProvider) *Stats {
	if mp == nil {
		mp = otel.GetMeterProvider()
	}
	meter := mp.Meter("xtree/bench")
	stats := &Stats{
		ops: lo.Must[metric.Int64Counter](meter.Int64Counter(
			"xtree.bench.ops",
			metric.WithDescription(`The tree operations executed.`),
		)),
		latency: lo.Must[metric.Int64Histogram](meter.Int64Histogram(
			"xtree.bench.op.latency",
			metric.WithDescription(`The latency of a single tree operation.`),
			metric.WithUnit("ns"),
		)),
		height: lo.Must[metric.Int64Histogram](meter.Int64Histogram(
			"xtree.bench.tree.height",
			metric.WithDescription(`The tree height at the end of a trial.`),
		)),
		mismatches: lo.Must[metric.Int64Counter](meter.Int64Counter(
			"xtree.bench.mismatches",
			metric.WithDescription(`The tree results diverged from the reference set.`),
		)),
		attrs: make(map[string]metric.MeasurementOption, 8),
	}
	for _, name := range []string{avlTreeName, rbTreeName} {
		stats.attrs[name] = metric.WithAttributeSet(attribute.NewSet(attribute.String("tree", name)))
		for _, kind := range []opKind{opInsert, opRemove} {
			stats.attrs[name+"/"+kind.String()] = metric.WithAttributeSet(attribute.NewSet(
				attribute.String("tree", name),
				attribute.String("op", kind.String()),
			))
		}
	}
	return stats
}

func (s *Stats) recordOp(ctx context.Context, tree string, kind opKind, elapsed time.Duration) {
	if s == nil {
		return
	}
	attrs := s.attrs[tree+"/"+kind.String()]
	s.ops.Add(ctx, 1, attrs)
	s.latency.Record(ctx, elapsed.Nanoseconds(), attrs)
}

func (s *Stats) recordHeight(ctx context.Context, tree string, height int) {
	if s == nil {
		return
	}
	s.height.Record(ctx, int64(height), s.attrs[tree])
}

func (s *Stats) recordMismatch(ctx context.Context, tree string) {
	if s == nil {
		return
	}
	s.mismatches.Add(ctx, 1, s.attrs[tree])
}
