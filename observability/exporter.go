package observability

// https://opentelemetry.io/docs/languages/go/exporters/

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	promclient "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/sdk/metric"
)

type MetricsExporterType string

const (
	NoneMetrics       MetricsExporterType = "none"
	StdoutMetrics     MetricsExporterType = "stdout"
	PrometheusMetrics MetricsExporterType = "prometheus"
)

var ErrUnknownMetricsExporter = errors.New("[observability] unknown metrics exporter")

func ParseMetricsExporterType(typ string) (MetricsExporterType, error) {
	switch t := MetricsExporterType(strings.ToLower(strings.TrimSpace(typ))); t {
	case "":
		return NoneMetrics, nil
	case NoneMetrics, StdoutMetrics, PrometheusMetrics:
		return t, nil
	}
	return NoneMetrics, ErrUnknownMetricsExporter
}

type exporterCfg struct {
	interval   time.Duration
	timeout    time.Duration
	writer     io.Writer
	registerer promclient.Registerer
}

type ExporterOption func(*exporterCfg)

func WithExporterInterval(interval time.Duration) ExporterOption {
	return func(cfg *exporterCfg) {
		if interval > 0 {
			cfg.interval = interval
		}
	}
}

func WithExporterWriter(w io.Writer) ExporterOption {
	return func(cfg *exporterCfg) {
		if w != nil {
			cfg.writer = w
		}
	}
}

// WithExporterRegisterer replaces the prometheus default registerer.
func WithExporterRegisterer(reg promclient.Registerer) ExporterOption {
	return func(cfg *exporterCfg) {
		if reg != nil {
			cfg.registerer = reg
		}
	}
}

// InitMetricsExporter sets the global meter provider and returns its
// shutdown callback.
func InitMetricsExporter(typ MetricsExporterType, opts ...ExporterOption) (func(ctx context.Context) error, error) {
	cfg := &exporterCfg{
		interval:   10 * time.Second,
		timeout:    5 * time.Second,
		writer:     os.Stdout,
		registerer: promclient.DefaultRegisterer,
	}
	for _, o := range opts {
		if o != nil {
			o(cfg)
		}
	}

	var (
		mp  *metric.MeterProvider
		err error
	)
	switch typ {
	case StdoutMetrics:
		mp, err = newConsoleMetricsExporter(cfg.interval, cfg.timeout,
			stdoutmetric.WithWriter(cfg.writer),
		)
	case PrometheusMetrics:
		mp, err = newPrometheusMetricsExporter(prometheus.WithRegisterer(cfg.registerer))
	case NoneMetrics:
		otel.SetMeterProvider(noop.NewMeterProvider())
		return func(ctx context.Context) error { return nil }, nil
	default:
		return nil, ErrUnknownMetricsExporter
	}
	if err != nil {
		return nil, err
	}
	otel.SetMeterProvider(mp)
	return mp.Shutdown, nil
}

// Serves for test/dev environment.
func newConsoleMetricsExporter(interval, timeout time.Duration, opts ...stdoutmetric.Option) (*metric.MeterProvider, error) {
	exporter, err := stdoutmetric.New(opts...)
	if err != nil {
		return nil, err
	}
	mp := metric.NewMeterProvider(metric.WithReader(metric.NewPeriodicReader(
		exporter,
		metric.WithInterval(interval),
		metric.WithTimeout(timeout),
	)))
	return mp, nil
}

// Serves for the product environment and fetch stats metrics by HTTP.
func newPrometheusMetricsExporter(opts ...prometheus.Option) (*metric.MeterProvider, error) {
	exporter, err := prometheus.New(opts...)
	if err != nil {
		return nil, err
	}
	return metric.NewMeterProvider(metric.WithReader(exporter)), nil
}

// NewMetricsServer exposes the gatherer at /metrics. A nil gatherer
// means the prometheus default one.
func NewMetricsServer(addr string, gatherer promclient.Gatherer) *http.Server {
	if gatherer == nil {
		gatherer = promclient.DefaultGatherer
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	return &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
}
