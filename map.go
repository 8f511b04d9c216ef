package perfectmap

import (
	"iter"
	"slices"
)

// Map is a hash map with a collision-free table for the key set it was
// constructed with and an ordinary hash table for every other key.
//
// Keys of the known set always live in their perfect slot, even after
// Remove: a removed known key can be inserted again and returns to the same
// slot. Any other key goes to the backup table, which is allocated on the
// first such insert.
//
// A Map is safe for concurrent reads. Insert and Remove must not run
// concurrently with any other method.
type Map[K comparable, V any] struct {
	table  *perfectTable[K, V]
	backup backupStore[K, V]
	meta   layoutMeta
}

// layoutMeta is the construction metadata carried into a Layout.
type layoutMeta struct {
	attempts uint32
	digest   KeyDigest
	preHash  bool
}

func newMap[K comparable, V any](t *perfectTable[K, V], meta layoutMeta) *Map[K, V] {
	return &Map[K, V]{table: t, meta: meta}
}

// Get returns the value stored for key.
func (m *Map[K, V]) Get(key K) (V, bool) {
	if s, ok := m.table.lookup(key); ok {
		return m.table.get(s)
	}
	return m.backup.get(key)
}

// Insert stores value for key and returns the previous value, if any.
func (m *Map[K, V]) Insert(key K, value V) (V, bool) {
	if s, ok := m.table.lookup(key); ok {
		return m.table.update(s, value)
	}
	return m.backup.put(key, value)
}

// Remove deletes key and returns its value, if any. A known key keeps its
// slot.
func (m *Map[K, V]) Remove(key K) (V, bool) {
	if s, ok := m.table.lookup(key); ok {
		return m.table.clear(s)
	}
	return m.backup.remove(key)
}

// ContainsKey reports whether key currently has a value.
func (m *Map[K, V]) ContainsKey(key K) bool {
	_, ok := m.Get(key)
	return ok
}

// IsKnown reports whether key belongs to the known key set, whether or not
// it currently has a value.
func (m *Map[K, V]) IsKnown(key K) bool {
	_, ok := m.table.lookup(key)
	return ok
}

// Len returns the number of keys with a value.
func (m *Map[K, V]) Len() int {
	return m.table.occupied + m.backup.len()
}

// All yields every key with a value: known keys in slot order, then backup
// keys in unspecified order. The map must not be modified during iteration.
func (m *Map[K, V]) All() iter.Seq2[K, V] {
	return func(yield func(K, V) bool) {
		for i := range m.table.slots {
			e := &m.table.slots[i]
			if e.present && !yield(e.key, e.val) {
				return
			}
		}
		m.backup.all(yield)
	}
}

// Stats describes the shape of a Map.
type Stats struct {
	KnownKeys    int  // size of the known key set (m)
	Buckets      int  // key-graph vertices (n)
	SeedLen      int  // key bytes that contribute to the hash
	Attempts     int  // construction attempts until success
	KnownPresent int  // known keys that currently have a value
	BackupActive bool // whether the backup table has been allocated
	BackupLen    int
}

// Stats returns a snapshot of the map's shape.
func (m *Map[K, V]) Stats() Stats {
	return Stats{
		KnownKeys:    int(m.table.m),
		Buckets:      int(m.table.pair.N),
		SeedLen:      m.table.pair.SeedLen(),
		Attempts:     int(m.meta.attempts),
		KnownPresent: m.table.occupied,
		BackupActive: m.backup.state == backupActive,
		BackupLen:    m.backup.len(),
	}
}

// Layout returns the solved construction of m's perfect table. It can be
// saved and passed to Restore to rebuild the table for the same key set
// without searching again. The returned Layout shares nothing with m.
func (m *Map[K, V]) Layout() *Layout {
	return &Layout{
		KnownKeys: uint64(m.table.m),
		Buckets:   m.table.pair.N,
		Attempts:  m.meta.attempts,
		PreHash:   m.meta.preHash,
		KeyDigest: m.meta.digest,
		T1:        slices.Clone(m.table.pair.T1),
		T2:        slices.Clone(m.table.pair.T2),
		G:         slices.Clone(m.table.g),
	}
}
