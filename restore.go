package perfectmap

import (
	"context"
	"fmt"
	"slices"

	"github.com/tamirms/perfectmap/internal/accum"
	"github.com/tamirms/perfectmap/internal/displace"

	pmerrors "github.com/tamirms/perfectmap/errors"
)

// Restore rebuilds a map from a saved Layout without running the randomized
// search. keys must be the key set the layout was built for, in the same
// order, and encode the same way; otherwise Restore returns
// ErrKeySetMismatch.
//
// The layout's pre-hash setting overrides WithPreHash. Options that only
// affect the search (attempts, workers, seeds) are ignored. Logging follows
// New: WithLogger, else the logger in ctx.
func Restore[K comparable, V any](ctx context.Context, layout *Layout, keys []K, opts ...BuildOption) (*Map[K, V], error) {
	cfg, err := newBuildConfig(opts)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if layout == nil {
		return nil, fmt.Errorf("%w: nil layout", pmerrors.ErrCorruptedLayout)
	}
	if err := layout.validate(); err != nil {
		return nil, err
	}
	if uint64(len(keys)) != layout.KnownKeys {
		return nil, fmt.Errorf("%w: %d keys, layout has %d", pmerrors.ErrKeySetMismatch, len(keys), layout.KnownKeys)
	}
	cfg.preHash = layout.PreHash

	prep, err := prepareKeys(keys, cfg)
	if err != nil {
		return nil, err
	}
	if prep.digest != layout.KeyDigest {
		return nil, fmt.Errorf("%w: key digest differs", pmerrors.ErrKeySetMismatch)
	}
	if prep.seedLen != len(layout.T1) {
		return nil, fmt.Errorf("%w: seed length %d, longest key %d", pmerrors.ErrCorruptedLayout, len(layout.T1), prep.seedLen)
	}

	pair := &accum.Pair{
		T1: slices.Clone(layout.T1),
		T2: slices.Clone(layout.T2),
		N:  layout.Buckets,
	}
	g := slices.Clone(layout.G)
	m := uint32(len(keys))
	if err := displace.Verify(pair, g, m, prep.encoded); err != nil {
		return nil, fmt.Errorf("%w: %w", pmerrors.ErrCorruptedLayout, err)
	}

	tbl, err := newPerfectTable[K, V](prep.codec, pair, g, keys, nil)
	if err != nil {
		return nil, err
	}

	cfg.loggerFrom(ctx).V(1).Info("perfect table restored",
		"keys", m,
		"buckets", layout.Buckets,
		"seedLen", len(layout.T1))

	return newMap(tbl, layoutMeta{
		attempts: layout.Attempts,
		digest:   prep.digest,
		preHash:  layout.PreHash,
	}), nil
}
