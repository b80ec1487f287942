package main

import (
	"context"
	"errors"
	"net/http"

	"go.uber.org/automaxprocs/maxprocs"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/benz9527/xtree/bench"
	"github.com/benz9527/xtree/observability"
	"github.com/benz9527/xtree/xlog"
)

func newFxApp(cfg *config, populate ...any) *fx.App {
	return fx.New(
		fx.Supply(cfg),
		fx.WithLogger(func(logger xlog.XLogger) fxevent.Logger {
			return xlog.NewFxXLogger(logger)
		}),
		fx.Provide(
			newLoggerWithLifecycle,
			newStats,
			newReportStore,
			newRunner,
		),
		fx.Invoke(setMaxProcs),
		fx.Populate(populate...),
	)
}

func newLogger(cfg *config) xlog.XLogger {
	return xlog.NewXLogger(
		xlog.WithXLoggerLevelText(cfg.logLevel),
		xlog.WithXLoggerConsoleCore(),
	)
}

func newLoggerWithLifecycle(lc fx.Lifecycle, cfg *config) xlog.XLogger {
	logger := newLogger(cfg)
	lc.Append(fx.StopHook(func() {
		_ = logger.Sync()
	}))
	return logger
}

func setMaxProcs(lc fx.Lifecycle, logger xlog.XLogger) error {
	undo, err := maxprocs.Set(maxprocs.Logger(func(format string, args ...any) {
		logger.Logf(zapcore.InfoLevel, format, args...)
	}))
	if err != nil {
		return err
	}
	lc.Append(fx.StopHook(undo))
	return nil
}

func newStats(lc fx.Lifecycle, cfg *config, logger xlog.XLogger) (*bench.Stats, error) {
	typ, err := observability.ParseMetricsExporterType(cfg.metrics)
	if err != nil {
		return nil, err
	}
	shutdown, err := observability.InitMetricsExporter(typ)
	if err != nil {
		return nil, err
	}
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			return observability.InitAppStats(ctx, "bench")
		},
		OnStop: shutdown,
	})

	if typ == observability.PrometheusMetrics && len(cfg.metricsAddr) > 0 {
		srv := observability.NewMetricsServer(cfg.metricsAddr, nil)
		lc.Append(fx.Hook{
			OnStart: func(ctx context.Context) error {
				go func() {
					if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
						logger.Error(err, "metrics server exited", zap.String("addr", cfg.metricsAddr))
					}
				}()
				logger.Info("metrics server started", zap.String("addr", cfg.metricsAddr))
				return nil
			},
			OnStop: srv.Shutdown,
		})
	}
	return bench.NewStats(nil), nil
}

// newReportStore returns nil if no report db is configured.
func newReportStore(lc fx.Lifecycle, cfg *config, logger xlog.XLogger) (*bench.ReportStore, error) {
	if len(cfg.reportDB) == 0 {
		return nil, nil
	}
	store, err := bench.OpenReportStore(cfg.reportDB, logger)
	if err != nil {
		return nil, err
	}
	lc.Append(fx.StopHook(store.Close))
	return store, nil
}

func newRunner(
	lc fx.Lifecycle,
	cfg *config,
	logger xlog.XLogger,
	stats *bench.Stats,
	store *bench.ReportStore,
) (*bench.Runner, error) {
	opts := []bench.RunnerOption{
		bench.WithRunnerLogger(logger),
		bench.WithRunnerStats(stats),
		bench.WithRunnerStore(store),
	}
	if cfg.poolSize > 0 {
		opts = append(opts, bench.WithRunnerPoolSize(cfg.poolSize))
	}
	runner, err := bench.NewRunner(opts...)
	if err != nil {
		return nil, err
	}
	lc.Append(fx.StopHook(runner.Close))
	return runner, nil
}
