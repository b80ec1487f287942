package bench

import (
	"errors"
	"fmt"
	"iter"
	randv2 "math/rand/v2"

	"github.com/benz9527/xtree/lib/infra"
)

type Pattern string

const (
	RandomPattern     Pattern = "random"
	AscendingPattern  Pattern = "ascending"
	DescendingPattern Pattern = "descending"
)

var ErrInvalidWorkload = errors.New("[bench] invalid workload")

// Workload describes a differential trial. Every trial replays the same
// operation stream against each tree and the reference set.
type Workload struct {
	Name    string
	Pattern Pattern
	// Ops is the number of insert or remove calls per trial.
	Ops int
	// Keys are drawn from [0, KeySpace).
	KeySpace int
	// RemoveRatio is the probability of a step being a removal.
	RemoveRatio float64
	Trials      int
	// Validate runs the invariant validators periodically. Slow.
	Validate bool
	Seed     uint64
}

func (w Workload) check() error {
	var reason string
	switch {
	case len(w.Name) == 0:
		reason = "empty name"
	case w.Ops <= 0:
		reason = fmt.Sprintf("%s: ops %d must be positive", w.Name, w.Ops)
	case w.KeySpace <= 0:
		reason = fmt.Sprintf("%s: key space %d must be positive", w.Name, w.KeySpace)
	case w.RemoveRatio < 0 || w.RemoveRatio > 1:
		reason = fmt.Sprintf("%s: remove ratio %v out of [0, 1]", w.Name, w.RemoveRatio)
	case w.Trials < 0:
		reason = fmt.Sprintf("%s: trials %d must not be negative", w.Name, w.Trials)
	}
	switch w.Pattern {
	case "", RandomPattern, AscendingPattern, DescendingPattern:
	default:
		reason = fmt.Sprintf("%s: unknown pattern %q", w.Name, w.Pattern)
	}
	if len(reason) > 0 {
		return infra.WrapErrorStackWithMessage(ErrInvalidWorkload, reason)
	}
	return nil
}

func (w Workload) trials() int {
	return max(w.Trials, 1)
}

type opKind uint8

const (
	opInsert opKind = iota
	opRemove
)

func (k opKind) String() string {
	if k == opRemove {
		return "remove"
	}
	return "insert"
}

type op struct {
	kind opKind
	key  int
}

// ops is deterministic for the pair (Seed, trial).
func (w Workload) ops(trial int) iter.Seq[op] {
	return func(yield func(op) bool) {
		rng := randv2.New(randv2.NewPCG(w.Seed, uint64(trial)))
		for i := 0; i < w.Ops; i++ {
			o := op{kind: opInsert}
			if rng.Float64() < w.RemoveRatio {
				o.kind = opRemove
			}
			switch w.Pattern {
			case AscendingPattern:
				o.key = i % w.KeySpace
			case DescendingPattern:
				o.key = w.KeySpace - 1 - i%w.KeySpace
			default:
				o.key = rng.IntN(w.KeySpace)
			}
			if !yield(o) {
				return
			}
		}
	}
}

// DefaultWorkloads expands base into one workload per key pattern.
func DefaultWorkloads(base Workload) []Workload {
	patterns := []Pattern{RandomPattern, AscendingPattern, DescendingPattern}
	workloads := make([]Workload, 0, len(patterns))
	for _, p := range patterns {
		w := base
		w.Pattern = p
		w.Name = string(p)
		if len(base.Name) > 0 {
			w.Name = base.Name + "-" + string(p)
		}
		workloads = append(workloads, w)
	}
	return workloads
}
