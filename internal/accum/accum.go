// Package accum implements the seed-table hash used to place keys in the
// key graph.
//
// A key's byte encoding b is hashed against a table t of random integers as
//
//	h(b) = (t[0]*b[0] + t[1]*b[1] + ... ) mod n
//
// over the first min(len(b), len(t)) bytes. Bytes past the end of the table
// do not contribute: tables are sized to the longest known key, so only
// unknown keys are ever truncated, and those are rejected by the equality
// check in the perfect table anyway.
//
// Every step is reduced modulo n using 128-bit intermediates, so no table
// size or key length can overflow.
package accum

import (
	"math/bits"
	"math/rand/v2"
)

// Table is a displacement seed table. Entries are in [0, n) for the bucket
// count n the table was drawn for.
type Table []uint64

// NewTable draws length entries uniformly from [0, n).
// With n == 0 the table is all zeros.
func NewTable(r *rand.Rand, length int, n uint64) Table {
	t := make(Table, length)
	if n == 0 {
		return t
	}
	for i := range t {
		t[i] = r.Uint64N(n)
	}
	return t
}

// Accumulator absorbs key bytes into a running sum modulo n.
// The zero value is not usable; create one with New.
type Accumulator struct {
	table Table
	n     uint64
	pos   int
	sum   uint64
}

// New returns an accumulator over table t for bucket count n.
func New(t Table, n uint64) Accumulator {
	return Accumulator{table: t, n: n}
}

// Absorb feeds p into the accumulator. It may be called repeatedly; the
// byte position carries over between calls, and bytes past len(table) are
// ignored.
func (a *Accumulator) Absorb(p []byte) {
	if a.n == 0 {
		return
	}
	rest := len(a.table) - a.pos
	if rest <= 0 {
		return
	}
	if len(p) > rest {
		p = p[:rest]
	}
	t := a.table[a.pos : a.pos+len(p)]
	for i, b := range p {
		a.sum = mulAddMod(t[i], uint64(b), a.sum, a.n)
	}
	a.pos += len(p)
}

// Sum returns the accumulated hash in [0, n).
func (a *Accumulator) Sum() uint64 {
	return a.sum
}

// Reset clears the running state so the accumulator can hash another key.
func (a *Accumulator) Reset() {
	a.pos = 0
	a.sum = 0
}

// Pair holds the two independent tables that produce f1 and f2.
type Pair struct {
	T1, T2 Table
	N      uint64
}

// NewPair draws two fresh tables of the given length for bucket count n.
func NewPair(r *rand.Rand, length int, n uint64) *Pair {
	return &Pair{
		T1: NewTable(r, length, n),
		T2: NewTable(r, length, n),
		N:  n,
	}
}

// Sum returns (f1(key), f2(key)), both in [0, N). N == 0 yields (0, 0).
func (p *Pair) Sum(key []byte) (f1, f2 uint32) {
	if p.N == 0 {
		return 0, 0
	}
	u := New(p.T1, p.N)
	v := New(p.T2, p.N)
	u.Absorb(key)
	v.Absorb(key)
	return uint32(u.Sum()), uint32(v.Sum())
}

// SeedLen returns the number of key bytes that contribute to the hash.
func (p *Pair) SeedLen() int {
	return len(p.T1)
}

// mulAddMod returns (t*b + acc) mod n without overflow.
// Preconditions: acc < n, n > 0.
func mulAddMod(t, b, acc, n uint64) uint64 {
	hi, lo := bits.Mul64(t, b)
	lo, carry := bits.Add64(lo, acc, 0)
	hi += carry
	return bits.Rem64(hi, lo, n)
}
