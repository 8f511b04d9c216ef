// Package displace computes per-vertex displacements for an acyclic key
// graph so that every key lands on its own slot.
//
// Each edge of the graph is a key K with intended slot s(K) joining buckets
// f1(K) and f2(K). We want g such that
//
//	(g[f1(K)] + g[f2(K)]) mod m == s(K)
//
// for every key. On a tree this is always solvable: fix the root to 0 and
// propagate g[child] = (s - g[parent]) mod m along the tree edges.
package displace

import (
	"fmt"

	"github.com/tamirms/perfectmap/internal/accum"
	"github.com/tamirms/perfectmap/internal/keygraph"

	pmerrors "github.com/tamirms/perfectmap/errors"
)

// Assign returns the displacement of every vertex of kg for m slots.
// Edge labels must be slot indexes in [0, m). Vertices that no key touches
// keep displacement 0.
func Assign(kg *keygraph.Graph, m uint32) ([]uint32, error) {
	if !kg.IsAcyclic() {
		return nil, pmerrors.ErrCyclicGraph
	}

	g := make([]uint32, kg.N())
	if m == 0 {
		return g, nil
	}

	kg.Forest(
		func(root uint32) {
			g[root] = 0
		},
		func(from, to, slot uint32) {
			g[to] = uint32((uint64(slot) + uint64(m) - uint64(g[from])) % uint64(m))
		},
	)
	return g, nil
}

// Slot returns the slot selected by displacements g for a key hashed to
// buckets (f1, f2).
func Slot(g []uint32, m uint32, f1, f2 uint32) uint32 {
	return uint32((uint64(g[f1]) + uint64(g[f2])) % uint64(m))
}

// Verify checks that keys[i] maps to slot i under (pair, g) for every i.
// A failure means the assignment is not a bijection, which only a solver
// bug or a mismatched layout can cause.
func Verify(pair *accum.Pair, g []uint32, m uint32, keys [][]byte) error {
	if len(keys) != int(m) {
		return fmt.Errorf("%w: %d keys for %d slots", pmerrors.ErrSlotCollision, len(keys), m)
	}
	for i, key := range keys {
		f1, f2 := pair.Sum(key)
		if int(f1) >= len(g) || int(f2) >= len(g) {
			return fmt.Errorf("%w: key %d hashes to buckets (%d, %d) beyond %d", pmerrors.ErrSlotCollision, i, f1, f2, len(g))
		}
		if s := Slot(g, m, f1, f2); s != uint32(i) {
			return fmt.Errorf("%w: key %d mapped to slot %d", pmerrors.ErrSlotCollision, i, s)
		}
	}
	return nil
}
