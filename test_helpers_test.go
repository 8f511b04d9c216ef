package perfectmap

import (
	"context"
	"encoding/binary"
	"fmt"
	"hash/fnv"
	"math/rand/v2"
	"testing"
)

// Named seeds for deterministic reproduction.
const (
	testSeed1 = 0x1234567890ABCDEF
	testSeed2 = 0xFEDCBA9876543210
)

func newTestRNG(t testing.TB) *rand.Rand {
	t.Helper()
	h := fnv.New128a()
	h.Write([]byte(t.Name()))
	sum := h.Sum(nil)
	s1 := binary.LittleEndian.Uint64(sum[:8])
	s2 := binary.LittleEndian.Uint64(sum[8:])
	return rand.New(rand.NewPCG(testSeed1^s1, testSeed2^s2))
}

// generateStringKeys returns n distinct pseudo-random keys of varying length.
func generateStringKeys(rng *rand.Rand, n int) []string {
	keys := make([]string, n)
	seen := make(map[string]bool, n)
	for i := range keys {
		for {
			k := fmt.Sprintf("key-%x-%d", rng.Uint64(), rng.IntN(1000))
			if !seen[k] {
				seen[k] = true
				keys[i] = k
				break
			}
		}
	}
	return keys
}

// generateUnknownKeys returns n keys that never collide with generateStringKeys.
func generateUnknownKeys(rng *rand.Rand, n int) []string {
	keys := make([]string, n)
	for i := range keys {
		keys[i] = fmt.Sprintf("unknown-%x-%d", rng.Uint64(), i)
	}
	return keys
}

// buildMap constructs a map over keys and fails the test on error.
func buildMap[K comparable, V any](t testing.TB, keys []K, opts ...BuildOption) *Map[K, V] {
	t.Helper()
	m, err := New[K, V](context.Background(), keys, opts...)
	if err != nil {
		t.Fatalf("New(%d keys): %v", len(keys), err)
	}
	return m
}

// verifyBijection checks that known key i owns slot i and that every slot
// is owned by exactly one key.
func verifyBijection[K comparable, V any](t *testing.T, m *Map[K, V], keys []K) {
	t.Helper()
	owners := make([]int, len(keys))
	for i := range owners {
		owners[i] = -1
	}
	for i, k := range keys {
		s, ok := m.table.lookup(k)
		if !ok {
			t.Fatalf("known key %d (%v) not found in perfect table", i, k)
		}
		if int(s) >= len(keys) {
			t.Fatalf("key %d: slot %d out of range [0, %d)", i, s, len(keys))
		}
		if owners[s] != -1 {
			t.Fatalf("keys %d and %d share slot %d", owners[s], i, s)
		}
		owners[s] = i
		if int(s) != i {
			t.Errorf("key %d: slot %d, want %d", i, s, i)
		}
	}
}

// constantEncoder maps every key to the same bytes, so every construction
// attempt with two or more keys fails.
func constantEncoder[K comparable](dst []byte, _ K) []byte {
	return append(dst, 'x', 0xff)
}

// rawStringEncoder feeds the string bytes, terminated by 0xff, straight into
// the seed-table hash.
func rawStringEncoder(dst []byte, s string) []byte {
	dst = append(dst, s...)
	return append(dst, 0xff)
}
