package bench

import (
	"cmp"
	"context"
	"fmt"
	"math"
	"runtime"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/btree"
	antsv2 "github.com/panjf2000/ants/v2"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/benz9527/xtree/lib/id"
	"github.com/benz9527/xtree/lib/infra"
	"github.com/benz9527/xtree/lib/tree"
	"github.com/benz9527/xtree/observability"
	"github.com/benz9527/xtree/xlog"
)

const (
	avlTreeName = "avl"
	rbTreeName  = "rbtree"
	// Per tree and trial, the rest are only counted.
	maxMismatchErrs = 8
)

// Runner replays workloads against the AVL tree, the red-black tree and a
// btree reference set. Each trial runs in a pool goroutine and owns its
// trees.
type Runner struct {
	logger   xlog.XLogger
	pool     *antsv2.Pool
	ownPool  bool
	poolSize int
	stats    *Stats
	store    *ReportStore
	runID    id.NanoIDGen
}

type RunnerOption func(*Runner) error

func WithRunnerLogger(logger xlog.XLogger) RunnerOption {
	return func(r *Runner) error {
		r.logger = logger
		return nil
	}
}

// WithRunnerPool shares the pool with the caller, the runner will not
// release it.
func WithRunnerPool(pool *antsv2.Pool) RunnerOption {
	return func(r *Runner) error {
		if pool == nil {
			return infra.NewErrorStack("[bench] nil pool")
		}
		r.pool = pool
		return nil
	}
}

func WithRunnerPoolSize(size int) RunnerOption {
	return func(r *Runner) error {
		if size <= 0 {
			return infra.NewErrorStack(fmt.Sprintf("[bench] invalid pool size %d", size))
		}
		r.poolSize = size
		return nil
	}
}

func WithRunnerStats(stats *Stats) RunnerOption {
	return func(r *Runner) error {
		r.stats = stats
		return nil
	}
}

func WithRunnerStore(store *ReportStore) RunnerOption {
	return func(r *Runner) error {
		r.store = store
		return nil
	}
}

func NewRunner(opts ...RunnerOption) (*Runner, error) {
	r := &Runner{
		poolSize: runtime.GOMAXPROCS(0),
	}
	for _, o := range opts {
		if o == nil {
			continue
		}
		if err := o(r); err != nil {
			return nil, err
		}
	}
	if r.logger == nil {
		r.logger = xlog.NewXLogger(xlog.WithXLoggerLevel(xlog.LogLevelWarn))
	}
	if r.stats == nil {
		r.stats = NewStats(nil)
	}
	gen, err := id.ClassicNanoID(12)
	if err != nil {
		return nil, err
	}
	r.runID = gen
	if r.pool == nil {
		pool, err := antsv2.NewPool(r.poolSize,
			antsv2.WithLogger(xlog.NewAntsXLogger(r.logger)),
		)
		if err != nil {
			return nil, infra.WrapErrorStackWithMessage(err, "[bench] new pool")
		}
		r.pool = pool
		r.ownPool = true
	}
	return r, nil
}

// Close releases the pool created by the runner.
func (r *Runner) Close() {
	if r.ownPool {
		r.pool.Release()
	}
}

// Run executes every trial of the workloads and returns the reports sorted
// by workload, trial and tree. Mismatches against the reference set are
// returned as a combined error next to the reports. The reports are saved
// if a store is set.
func (r *Runner) Run(ctx context.Context, workloads []Workload) ([]Report, error) {
	for _, w := range workloads {
		if err := w.check(); err != nil {
			return nil, err
		}
	}

	runID := r.runID()
	r.logger.InfoContext(ctx, "bench run started",
		zap.String("runID", runID),
		zap.Int("workloads", len(workloads)),
	)
	var (
		wg      sync.WaitGroup
		lock    sync.Mutex
		reports = make([]Report, 0, len(workloads)*4)
		merr    error
	)
	collect := func(rs []Report, err error) {
		lock.Lock()
		defer lock.Unlock()
		reports = append(reports, rs...)
		merr = multierr.Append(merr, err)
	}
submit:
	for _, w := range workloads {
		for trial := 0; trial < w.trials(); trial++ {
			if err := ctx.Err(); err != nil {
				collect(nil, err)
				break submit
			}
			wg.Add(1)
			err := r.pool.Submit(func() {
				defer wg.Done()
				collect(r.runTrial(ctx, runID, w, trial))
			})
			if err != nil {
				wg.Done()
				collect(nil, infra.WrapErrorStackWithMessage(err, "[bench] submit trial"))
				break submit
			}
		}
	}
	wg.Wait()

	slices.SortFunc(reports, func(a, b Report) int {
		return cmp.Or(
			strings.Compare(a.Workload, b.Workload),
			cmp.Compare(a.Trial, b.Trial),
			strings.Compare(a.Tree, b.Tree),
		)
	})
	if r.store != nil && len(reports) > 0 {
		merr = multierr.Append(merr, r.store.Save(ctx, reports))
	}
	for _, rep := range reports {
		r.logger.InfoContext(ctx, "bench report",
			zap.String("runID", runID),
			zap.String("workload", rep.Workload),
			zap.Int("trial", rep.Trial),
			zap.String("tree", rep.Tree),
			zap.Int64("ops", rep.Ops),
			zap.Int64("size", rep.FinalSize),
			zap.Int("height", rep.Height),
			zap.Duration("elapsed", time.Duration(rep.ElapsedNs)),
			zap.Int64("mismatches", rep.Mismatches),
		)
	}
	if merr != nil {
		r.logger.Error(merr, "bench run failed", zap.String("runID", runID))
	}
	return reports, merr
}

type subject struct {
	name       string
	set        tree.OrderedSet[int]
	insert     func(key int) (bool, error)
	validate   func() error
	maxHeight  func(n int64) int
	inserted   int64
	removed    int64
	mismatches int64
	elapsed    time.Duration
}

func (r *Runner) runTrial(ctx context.Context, runID string, w Workload, trial int) (reports []Report, err error) {
	defer func() {
		// The trees panic on a broken internal assertion.
		if p := recover(); p != nil {
			err = multierr.Append(err, infra.NewErrorStack(
				fmt.Sprintf("[bench] %s/%d panic: %v", w.Name, trial, p),
			))
		}
	}()

	avl := tree.NewAVLTree[int]()
	rb := tree.NewRBTree[int]()
	subjects := []*subject{
		{
			name: avlTreeName,
			set:  avl,
			insert: func(key int) (bool, error) {
				return avl.Insert(key), nil
			},
			validate: func() error {
				return tree.AVLTreeValidate(avl, nil)
			},
			maxHeight: func(n int64) int {
				return int(1.4405*math.Log2(float64(n)+2) - 0.3277)
			},
		},
		{
			name:   rbTreeName,
			set:    rb,
			insert: rb.Insert,
			validate: func() error {
				return tree.RBTreeValidate(rb, nil)
			},
			maxHeight: func(n int64) int {
				return int(2 * math.Log2(float64(n)+1))
			},
		},
	}
	ref := btree.NewOrderedG[int](32)
	mismatch := func(s *subject, format string, args ...any) {
		s.mismatches++
		r.stats.recordMismatch(ctx, s.name)
		if s.mismatches <= maxMismatchErrs {
			err = multierr.Append(err, fmt.Errorf("[bench] %s/%d %s: "+format,
				append([]any{w.Name, trial, s.name}, args...)...,
			))
		}
	}

	validateEvery := max(w.Ops/16, 1)
	var steps int64
	for o := range w.ops(trial) {
		if ctxErr := ctx.Err(); ctxErr != nil {
			err = multierr.Append(err, ctxErr)
			break
		}
		var expected bool
		switch o.kind {
		case opInsert:
			_, replaced := ref.ReplaceOrInsert(o.key)
			expected = !replaced
		case opRemove:
			_, expected = ref.Delete(o.key)
		}
		steps++
		for _, s := range subjects {
			var (
				ok    bool
				opErr error
				begin = time.Now()
			)
			switch o.kind {
			case opInsert:
				if ok, opErr = s.insert(o.key); ok {
					s.inserted++
				}
			case opRemove:
				if ok = s.set.Remove(o.key); ok {
					s.removed++
				}
			}
			elapsed := time.Since(begin)
			s.elapsed += elapsed
			r.stats.recordOp(ctx, s.name, o.kind, elapsed)

			if opErr != nil {
				mismatch(s, "%s(%d) error %v", o.kind, o.key, opErr)
			}
			if ok != expected {
				mismatch(s, "%s(%d) = %t, want %t", o.kind, o.key, ok, expected)
			}
			if s.set.Contains(o.key) != ref.Has(o.key) {
				mismatch(s, "contains(%d) = %t after %s", o.key, s.set.Contains(o.key), o.kind)
			}
			if s.set.Len() != int64(ref.Len()) {
				mismatch(s, "len %d, want %d", s.set.Len(), ref.Len())
			}
			if w.Validate && steps%int64(validateEvery) == 0 {
				if vErr := s.validate(); vErr != nil {
					mismatch(s, "invariants at step %d: %v", steps, vErr)
				}
			}
		}
	}

	expectedKeys := make([]int, 0, ref.Len())
	ref.Ascend(func(key int) bool {
		expectedKeys = append(expectedKeys, key)
		return true
	})
	rss, rssErr := observability.ProcessRSS(ctx)
	if rssErr != nil {
		r.logger.Warn("sample rss failed", zap.Error(rssErr))
	}
	for _, s := range subjects {
		if keys := slices.Collect(s.set.All()); !slices.Equal(keys, expectedKeys) {
			mismatch(s, "in-order keys diverged, got %d keys want %d", len(keys), len(expectedKeys))
		}
		if w.Validate {
			if vErr := s.validate(); vErr != nil {
				mismatch(s, "final invariants: %v", vErr)
			}
		}
		height := s.set.Height()
		if height > s.maxHeight(s.set.Len()) {
			mismatch(s, "height %d exceeds bound %d for %d keys", height, s.maxHeight(s.set.Len()), s.set.Len())
		}
		r.stats.recordHeight(ctx, s.name, height)
		reports = append(reports, Report{
			RunID:      runID,
			Workload:   w.Name,
			Pattern:    string(cmp.Or(w.Pattern, RandomPattern)),
			Trial:      trial,
			Tree:       s.name,
			Ops:        steps,
			Inserted:   s.inserted,
			Removed:    s.removed,
			FinalSize:  s.set.Len(),
			Height:     height,
			ElapsedNs:  s.elapsed.Nanoseconds(),
			RSSBytes:   rss,
			Mismatches: s.mismatches,
		})
		s.set.Release()
	}
	r.logger.DebugContext(ctx, "bench trial done",
		zap.String("workload", w.Name),
		zap.Int("trial", trial),
		zap.Int64("steps", steps),
	)
	return reports, err
}
