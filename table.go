package perfectmap

import (
	"fmt"

	"github.com/tamirms/perfectmap/internal/accum"
	"github.com/tamirms/perfectmap/internal/displace"

	pmerrors "github.com/tamirms/perfectmap/errors"
)

// slot is one entry of the perfect table. The key is fixed at construction;
// only the value comes and goes.
type slot[K comparable, V any] struct {
	key     K
	val     V
	present bool
}

// perfectTable holds one slot per known key, addressed by
// (g[f1(key)] + g[f2(key)]) mod m.
type perfectTable[K comparable, V any] struct {
	codec *keyCodec[K]
	pair  *accum.Pair
	g     []uint32
	m     uint32

	slots    []slot[K, V]
	occupied int
}

// newPerfectTable places every known key at its computed slot. values may be
// nil, in which case all slots start empty.
func newPerfectTable[K comparable, V any](codec *keyCodec[K], pair *accum.Pair, g []uint32, keys []K, values []V) (*perfectTable[K, V], error) {
	m := uint32(len(keys))
	t := &perfectTable[K, V]{
		codec: codec,
		pair:  pair,
		g:     g,
		m:     m,
		slots: make([]slot[K, V], m),
	}
	if m == 0 {
		return t, nil
	}

	placed := make([]bool, m)
	for i, k := range keys {
		s := t.slotOf(k)
		if placed[s] {
			return nil, fmt.Errorf("%w: key %d and an earlier key share slot %d", pmerrors.ErrSlotCollision, i, s)
		}
		placed[s] = true
		t.slots[s].key = k
		if values != nil {
			t.slots[s].val = values[i]
			t.slots[s].present = true
			t.occupied++
		}
	}
	return t, nil
}

// slotOf hashes key to its slot. Only meaningful when m > 0.
func (t *perfectTable[K, V]) slotOf(key K) uint32 {
	bp := t.codec.bufs.Get().(*[]byte)
	b := t.codec.appendKey((*bp)[:0], key)
	f1, f2 := t.pair.Sum(b)
	*bp = b
	t.codec.bufs.Put(bp)
	return displace.Slot(t.g, t.m, f1, f2)
}

// lookup returns the slot owned by key, or false if key is not a known key.
func (t *perfectTable[K, V]) lookup(key K) (uint32, bool) {
	if t.m == 0 {
		return 0, false
	}
	s := t.slotOf(key)
	if t.slots[s].key != key {
		return 0, false
	}
	return s, true
}

func (t *perfectTable[K, V]) get(s uint32) (V, bool) {
	e := &t.slots[s]
	return e.val, e.present
}

// update stores v in slot s and returns the previous value, if any.
func (t *perfectTable[K, V]) update(s uint32, v V) (V, bool) {
	e := &t.slots[s]
	prev, had := e.val, e.present
	e.val = v
	if !had {
		e.present = true
		t.occupied++
	}
	return prev, had
}

// clear empties slot s. The slot stays reserved for its key.
func (t *perfectTable[K, V]) clear(s uint32) (V, bool) {
	e := &t.slots[s]
	prev, had := e.val, e.present
	if had {
		var zero V
		e.val = zero
		e.present = false
		t.occupied--
	}
	return prev, had
}
