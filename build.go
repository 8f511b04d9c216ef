package perfectmap

import (
	"context"
	"fmt"
	"math/rand/v2"
	"reflect"

	"github.com/cockroachdb/swiss"
	"github.com/go-logr/logr"

	"github.com/tamirms/perfectmap/internal/displace"

	pmerrors "github.com/tamirms/perfectmap/errors"
)

// MaxKnownKeys is the largest supported known key set. It keeps the bucket
// count within uint32.
const MaxKnownKeys = 1 << 30

// bucketCount returns n = 2m + m/12, the number of key-graph vertices for m
// known keys.
func bucketCount(m int) uint64 {
	return uint64(2*m + m/12)
}

// New constructs a map whose perfect table covers keys. Known keys start
// without a value; use Insert to set one.
//
// Slot i of the perfect table belongs to keys[i]. Keys must be distinct and
// their type must have an Encoder (built in or given with WithEncoder).
//
// Construction is randomized: each attempt draws fresh seed tables and fails
// if the resulting key graph has a cycle or a repeated bucket pair. After
// WithMaxAttempts failed attempts New returns ErrConstructionExhausted.
func New[K comparable, V any](ctx context.Context, keys []K, opts ...BuildOption) (*Map[K, V], error) {
	return build[K, V](ctx, keys, nil, opts)
}

// NewWithValues is like New but stores values[i] for keys[i].
func NewWithValues[K comparable, V any](ctx context.Context, keys []K, values []V, opts ...BuildOption) (*Map[K, V], error) {
	if len(values) != len(keys) {
		return nil, fmt.Errorf("%w: %d keys, %d values", pmerrors.ErrValueCountMismatch, len(keys), len(values))
	}
	return build(ctx, keys, values, opts)
}

// preparedKeys is the encoded known key set.
type preparedKeys[K comparable] struct {
	codec   *keyCodec[K]
	encoded [][]byte
	seedLen int
	digest  KeyDigest
}

// prepareKeys validates keys and encodes them once for all trials.
func prepareKeys[K comparable](keys []K, cfg *buildConfig) (*preparedKeys[K], error) {
	if len(keys) > MaxKnownKeys {
		return nil, fmt.Errorf("%w: %d", pmerrors.ErrTooManyKeys, len(keys))
	}
	enc, ok := encoderFor[K](cfg)
	if !ok {
		return nil, fmt.Errorf("%w: %v", pmerrors.ErrUnsupportedKey, reflect.TypeFor[K]())
	}

	seen := swiss.New[K, int](len(keys))
	for i, k := range keys {
		if k != k {
			return nil, fmt.Errorf("%w: key %d is not equal to itself", pmerrors.ErrUnsupportedKey, i)
		}
		if j, dup := seen.Get(k); dup {
			return nil, fmt.Errorf("%w: keys %d and %d", pmerrors.ErrDuplicateKey, j, i)
		}
		seen.Put(k, i)
	}

	p := &preparedKeys[K]{
		codec:   newKeyCodec(enc, cfg.preHash),
		encoded: make([][]byte, len(keys)),
	}
	d := newKeySetDigest()
	for i, k := range keys {
		b := p.codec.appendKey(nil, k)
		p.encoded[i] = b
		p.seedLen = max(p.seedLen, len(b))
		d.add(b)
	}
	sum := d.sum()
	p.digest = KeyDigest{Lo: sum.Lo, Hi: sum.Hi}
	return p, nil
}

func build[K comparable, V any](ctx context.Context, keys []K, values []V, opts []BuildOption) (*Map[K, V], error) {
	cfg, err := newBuildConfig(opts)
	if err != nil {
		return nil, err
	}
	log := cfg.loggerFrom(ctx)

	prep, err := prepareKeys(keys, cfg)
	if err != nil {
		return nil, err
	}

	m := len(keys)
	in := &trialInput{
		keys:    prep.encoded,
		seedLen: prep.seedLen,
		n:       bucketCount(m),
	}

	var res trialResult
	if cfg.workers > 1 {
		res, err = searchParallel(ctx, in, cfg, log)
	} else {
		res, err = searchSerial(ctx, in, cfg, log)
	}
	if err != nil {
		return nil, err
	}

	g, err := displace.Assign(res.graph, uint32(m))
	if err != nil {
		return nil, err
	}
	if err := displace.Verify(res.pair, g, uint32(m), prep.encoded); err != nil {
		return nil, err
	}

	tbl, err := newPerfectTable(prep.codec, res.pair, g, keys, values)
	if err != nil {
		return nil, err
	}

	log.V(1).Info("perfect table constructed",
		"keys", m,
		"buckets", in.n,
		"seedLen", in.seedLen,
		"attempts", res.seed.attempt+1,
		"components", res.graph.Components(),
		"workers", cfg.workers)

	return newMap[K, V](tbl, layoutMeta{
		attempts: uint32(res.seed.attempt + 1),
		digest:   prep.digest,
		preHash:  cfg.preHash,
	}), nil
}

// drawSeed takes the seeds for the next attempt from the master source.
func drawSeed(src rand.Source, attempt int) trialSeed {
	s1 := src.Uint64()
	s2 := src.Uint64()
	return trialSeed{attempt: attempt, s1: s1, s2: s2}
}

// searchSerial runs trials one at a time until one succeeds.
func searchSerial(ctx context.Context, in *trialInput, cfg *buildConfig, log logr.Logger) (trialResult, error) {
	src := cfg.masterSource()
	for attempt := range cfg.maxAttempts {
		if err := ctx.Err(); err != nil {
			return trialResult{}, err
		}
		res, err := runTrial(in, drawSeed(src, attempt))
		if err != nil {
			return trialResult{}, err
		}
		if res.verdict == verdictOK {
			return res, nil
		}
		logFailedTrial(log, res, len(in.keys))
	}
	return trialResult{}, exhausted(cfg.maxAttempts)
}

func logFailedTrial(log logr.Logger, res trialResult, m int) {
	log.V(2).Info("construction attempt rejected",
		"attempt", res.seed.attempt,
		"verdict", res.verdict.String(),
		"edges", res.edges,
		"keys", m)
}

func exhausted(attempts int) error {
	return fmt.Errorf("%w: %d attempts", pmerrors.ErrConstructionExhausted, attempts)
}

func (c *buildConfig) loggerFrom(ctx context.Context) logr.Logger {
	if c.logger != nil {
		return *c.logger
	}
	return logr.FromContextOrDiscard(ctx)
}
