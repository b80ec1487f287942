package main

import (
	"context"
	"fmt"
	"io"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/urfave/cli"
	"go.uber.org/multierr"

	"github.com/benz9527/xtree/bench"
	"github.com/benz9527/xtree/xlog"
)

type config struct {
	ops         int
	keySpace    int
	removeRatio float64
	trials      int
	validate    bool
	seed        uint64
	poolSize    int
	reportDB    string
	metrics     string
	metricsAddr string
	logLevel    string
}

func (cfg *config) workload() bench.Workload {
	return bench.Workload{
		Ops:         cfg.ops,
		KeySpace:    cfg.keySpace,
		RemoveRatio: cfg.removeRatio,
		Trials:      cfg.trials,
		Validate:    cfg.validate,
		Seed:        cfg.seed,
	}
}

var (
	reportDBFlag = cli.StringFlag{
		Name:   "report-db",
		Value:  "",
		Usage:  " sqlite `DSN` of the report history, empty to skip saving",
		EnvVar: "XTREE_REPORT_DB",
	}
	logLevelFlag = cli.StringFlag{
		Name:   "log-level",
		Value:  "info",
		Usage:  " `LEVEL` [debug|info|warn|error]",
		EnvVar: "XTREE_LOG_LEVEL",
	}
)

func newCLIApp(stdout, stderr io.Writer) *cli.App {
	app := cli.NewApp()
	app.Name = "xtree"
	app.Usage = "differential workloads of the AVL and red-black trees"
	app.Version = version
	app.Writer = stdout
	app.ErrWriter = stderr

	app.Commands = []cli.Command{
		{
			Name:  "bench",
			Usage: "replay random, ascending and descending workloads against both trees",
			Flags: []cli.Flag{
				cli.IntFlag{
					Name:   "ops",
					Value:  100_000,
					Usage:  " insert or remove calls per trial `COUNT`",
					EnvVar: "XTREE_OPS",
				},
				cli.IntFlag{
					Name:   "keyspace",
					Value:  10_000,
					Usage:  " keys are drawn from [0, `N`)",
					EnvVar: "XTREE_KEYSPACE",
				},
				cli.Float64Flag{
					Name:   "remove-ratio",
					Value:  0.4,
					Usage:  " probability of a removal `RATIO`",
					EnvVar: "XTREE_REMOVE_RATIO",
				},
				cli.IntFlag{
					Name:   "trials",
					Value:  4,
					Usage:  " trials per workload `COUNT`",
					EnvVar: "XTREE_TRIALS",
				},
				cli.BoolFlag{
					Name:   "validate",
					Usage:  " check the tree invariants during the trials",
					EnvVar: "XTREE_VALIDATE",
				},
				cli.Uint64Flag{
					Name:   "seed",
					Value:  1,
					Usage:  " random `SEED`",
					EnvVar: "XTREE_SEED",
				},
				cli.IntFlag{
					Name:   "pool-size",
					Value:  0,
					Usage:  " concurrent trials `COUNT`, 0 for GOMAXPROCS",
					EnvVar: "XTREE_POOL_SIZE",
				},
				reportDBFlag,
				cli.StringFlag{
					Name:   "metrics",
					Value:  "none",
					Usage:  " metrics `EXPORTER` [none|stdout|prometheus]",
					EnvVar: "XTREE_METRICS",
				},
				cli.StringFlag{
					Name:   "metrics-addr",
					Value:  "",
					Usage:  " serve prometheus metrics on `HOST:PORT`",
					EnvVar: "XTREE_METRICS_ADDR",
				},
				logLevelFlag,
			},
			Action: runBench,
		},
		{
			Name:  "reports",
			Usage: "list the saved bench reports",
			Flags: []cli.Flag{
				reportDBFlag,
				cli.StringFlag{
					Name:  "run",
					Value: "",
					Usage: " only the reports of run `ID`",
				},
				logLevelFlag,
			},
			Action: runReports,
		},
	}
	return app
}

func configFromCLI(c *cli.Context) *config {
	return &config{
		ops:         c.Int("ops"),
		keySpace:    c.Int("keyspace"),
		removeRatio: c.Float64("remove-ratio"),
		trials:      c.Int("trials"),
		validate:    c.Bool("validate"),
		seed:        c.Uint64("seed"),
		poolSize:    c.Int("pool-size"),
		reportDB:    c.String("report-db"),
		metrics:     c.String("metrics"),
		metricsAddr: c.String("metrics-addr"),
		logLevel:    c.String("log-level"),
	}
}

func runBench(c *cli.Context) error {
	cfg := configFromCLI(c)

	var (
		runner *bench.Runner
		logger xlog.XLogger
	)
	app := newFxApp(cfg, &runner, &logger)
	if err := app.Err(); err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()
	if err := app.Start(ctx); err != nil {
		return err
	}
	logger.Banner(xtreeBanner{})

	reports, runErr := runner.Run(ctx, bench.DefaultWorkloads(cfg.workload()))
	printReports(c.App.Writer, reports)

	stopCtx, stopCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer stopCancel()
	return multierr.Combine(runErr, app.Stop(stopCtx))
}

func runReports(c *cli.Context) error {
	dsn := c.String("report-db")
	if len(dsn) == 0 {
		return fmt.Errorf("[xtree] --report-db is required")
	}
	logger := newLogger(&config{logLevel: c.String("log-level")})
	defer func() {
		_ = logger.Sync()
	}()
	store, err := bench.OpenReportStore(dsn, logger)
	if err != nil {
		return err
	}
	defer func() {
		_ = store.Close()
	}()
	reports, err := store.List(context.Background(), c.String("run"))
	if err != nil {
		return err
	}
	printReports(c.App.Writer, reports)
	return nil
}

func printReports(w io.Writer, reports []bench.Report) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "RUN\tWORKLOAD\tTRIAL\tTREE\tOPS\tSIZE\tHEIGHT\tELAPSED\tNS/OP\tRSS(MiB)\tMISMATCHES")
	for _, rep := range reports {
		nsPerOp := int64(0)
		if rep.Ops > 0 {
			nsPerOp = rep.ElapsedNs / rep.Ops
		}
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%d\t%d\t%d\t%s\t%d\t%.1f\t%d\n",
			rep.RunID,
			rep.Workload,
			rep.Trial,
			rep.Tree,
			rep.Ops,
			rep.FinalSize,
			rep.Height,
			time.Duration(rep.ElapsedNs).Round(time.Microsecond),
			nsPerOp,
			float64(rep.RSSBytes)/(1<<20),
			rep.Mismatches,
		)
	}
	_ = tw.Flush()
}

type xtreeBanner struct{}

func (xtreeBanner) JSON() string {
	return fmt.Sprintf(`{"app":"xtree","version":%q}`, version)
}

func (xtreeBanner) PlainText() string {
	return `
 __  __  _____  ____   _____  _____
 \ \/ / |_   _||  _ \ | ____|| ____|
  >  <    | |  | |_) ||  _|  |  _|
 /_/\_\   |_|  |_| \_\|_____||_____|  ` + version
}
