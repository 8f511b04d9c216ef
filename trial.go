package perfectmap

import (
	"errors"
	"math/rand/v2"

	"github.com/tamirms/perfectmap/internal/accum"
	"github.com/tamirms/perfectmap/internal/keygraph"

	pmerrors "github.com/tamirms/perfectmap/errors"
)

// trialVerdict is the outcome of one construction attempt.
type trialVerdict uint8

const (
	verdictOK trialVerdict = iota
	verdictDuplicate
	verdictCyclic
)

func (v trialVerdict) String() string {
	switch v {
	case verdictOK:
		return "ok"
	case verdictDuplicate:
		return "duplicate-edge"
	case verdictCyclic:
		return "cyclic"
	default:
		return "unknown"
	}
}

// trialSeed identifies the random tables of one attempt.
type trialSeed struct {
	attempt int
	s1, s2  uint64
}

// trialResult is what a successful (or failed) attempt leaves behind.
type trialResult struct {
	seed    trialSeed
	verdict trialVerdict
	edges   int // keys inserted before the trial stopped
	pair    *accum.Pair
	graph   *keygraph.Graph
}

// trialInput is the per-construction state shared read-only by all trials.
type trialInput struct {
	keys    [][]byte // encoded known keys, in slot order
	seedLen int
	n       uint64
}

// runTrial draws fresh seed tables for seed and inserts every key into a new
// key graph, stopping at the first duplicate or cycle.
func runTrial(in *trialInput, seed trialSeed) (trialResult, error) {
	rng := rand.New(rand.NewPCG(seed.s1, seed.s2))
	pair := accum.NewPair(rng, in.seedLen, in.n)
	kg := keygraph.New(uint32(in.n), len(in.keys))

	res := trialResult{seed: seed, pair: pair, graph: kg}
	for i, key := range in.keys {
		f1, f2 := pair.Sum(key)
		if err := kg.InsertVertex(f1); err != nil {
			return res, err
		}
		if err := kg.InsertVertex(f2); err != nil {
			return res, err
		}
		if err := kg.InsertEdge(f1, f2, uint32(i)); err != nil {
			if errors.Is(err, pmerrors.ErrDuplicateEdge) {
				res.verdict = verdictDuplicate
				return res, nil
			}
			return res, err
		}
		res.edges++
		if !kg.IsAcyclic() {
			res.verdict = verdictCyclic
			return res, nil
		}
	}
	res.verdict = verdictOK
	return res, nil
}
