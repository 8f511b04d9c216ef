// Package perfectmap implements a hash map with a collision-free table for a
// key set known at construction time and an ordinary hash table for every
// other key.
//
// Known keys are placed with the classic two-function perfect hashing
// scheme: each key is hashed twice into n = 2m + m/12 buckets, the bucket
// pairs form a graph with one edge per key, and if that graph is acyclic a
// displacement per bucket can be chosen so that
//
//	slot(key) = (g[f1(key)] + g[f2(key)]) mod m
//
// is a bijection from the m known keys onto [0, m). Lookups of known keys
// cost two table hashes, one array index and one equality check, with no
// probing and no empty slots. Keys outside the known set go to a backup
// swiss table allocated on first use.
//
// # Basic Usage
//
// Building a map:
//
//	m, err := perfectmap.New[string, int](ctx, []string{"a", "b", "c"})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	m.Insert("a", 1) // perfect slot
//	m.Insert("z", 5) // backup table
//
// Saving the solved construction and restoring it later:
//
//	if err := m.Layout().WriteFile("keys.pmap"); err != nil {
//	    log.Fatal(err)
//	}
//	layout, err := perfectmap.ReadLayoutFile("keys.pmap")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	m2, err := perfectmap.Restore[string, int](ctx, layout, []string{"a", "b", "c"})
//
// # Package Structure
//
//   - Public API: map.go (Map), build.go (New, NewWithValues), restore.go (Restore)
//   - Configuration: options.go (BuildOption, With* functions)
//   - Construction: trial.go (one attempt), build_parallel.go (parallel attempts)
//   - Storage: table.go (perfect slots), backup.go (backup table)
//   - Key encoding: encoder.go (Encoder), prehash.go (PreHash, key-set digest)
//   - Serialization: layout.go, layout_header.go, layout_writer.go, layout_reader.go
//   - Algorithms: internal/accum (seed-table hash), internal/keygraph (key
//     graph), internal/displace (displacement solver)
//   - Platform: fallocate_*.go, prefault_*.go, fadvise_*.go
package perfectmap
