package perfectmap

import (
	"bytes"
	"math"
	"testing"

	"github.com/zeebo/xxh3"
)

type userID string
type shard int16

func encodeWith[K comparable](t *testing.T, key K) []byte {
	t.Helper()
	enc, ok := defaultEncoder[K]()
	if !ok {
		t.Fatalf("no built-in encoder for %T", key)
	}
	return enc(nil, key)
}

func TestStringEncoding(t *testing.T) {
	if got, want := encodeWith(t, "ab"), PreHash([]byte("ab")); !bytes.Equal(got, want) {
		t.Errorf("\"ab\": expected % x, got % x", want, got)
	}
	if got := encodeWith(t, ""); len(got) != 16 {
		t.Errorf("empty string: expected 16 bytes, got % x", got)
	}
	if a, b := encodeWith(t, "a"), encodeWith(t, "a\x00"); bytes.Equal(a, b) {
		t.Error("\"a\" and \"a\\x00\" encode identically")
	}
	if a, b := encodeWith(t, userID("u1")), encodeWith(t, "u1"); !bytes.Equal(a, b) {
		t.Errorf("named string type: expected % x, got % x", b, a)
	}
}

func TestNumericEncoding(t *testing.T) {
	want := encodeWith(t, int(5))
	if len(want) != 16 {
		t.Fatalf("int encoding: expected 16 pre-hashed bytes, got %d", len(want))
	}
	for name, got := range map[string][]byte{
		"int64":  encodeWith(t, int64(5)),
		"uint64": encodeWith(t, uint64(5)),
		"uint32": encodeWith(t, uint32(5)),
		"int16":  encodeWith(t, int16(5)),
		"uint8":  encodeWith(t, uint8(5)),
		"shard":  encodeWith(t, shard(5)),
	} {
		if !bytes.Equal(got, want) {
			t.Errorf("%s(5): expected % x, got % x", name, want, got)
		}
	}

	if bytes.Equal(encodeWith(t, 1), encodeWith(t, 2)) {
		t.Error("1 and 2 encode identically")
	}
	if !bytes.Equal(encodeWith(t, -1), encodeWith(t, uint64(math.MaxUint64))) {
		t.Error("-1 should share the two's complement encoding of MaxUint64")
	}
}

func TestFloatEncoding(t *testing.T) {
	if !bytes.Equal(encodeWith(t, 0.0), encodeWith(t, math.Copysign(0, -1))) {
		t.Error("0.0 and -0.0 are == but encode differently")
	}
	if bytes.Equal(encodeWith(t, 1.5), encodeWith(t, 2.5)) {
		t.Error("1.5 and 2.5 encode identically")
	}
	if !bytes.Equal(encodeWith(t, float32(0.5)), encodeWith(t, 0.5)) {
		t.Error("float32 and float64 of the same value encode differently")
	}
}

func TestBoolAndArrayEncoding(t *testing.T) {
	if bytes.Equal(encodeWith(t, true), encodeWith(t, false)) {
		t.Error("true and false encode identically")
	}

	id := [4]byte{1, 2, 3, 4}
	if got, want := encodeWith(t, id), PreHash(id[:]); !bytes.Equal(got, want) {
		t.Errorf("[4]byte: expected % x, got % x", want, got)
	}
	if a, b := encodeWith(t, id), encodeWith(t, string(id[:])); !bytes.Equal(a, b) {
		t.Error("[4]byte and string with the same bytes encode differently")
	}

	if _, ok := defaultEncoder[[4]int](); ok {
		t.Error("[4]int should have no built-in encoder")
	}
	if _, ok := defaultEncoder[point](); ok {
		t.Error("struct should have no built-in encoder")
	}
	if _, ok := defaultEncoder[*int](); ok {
		t.Error("pointer should have no built-in encoder")
	}
}

func TestEncoderAppends(t *testing.T) {
	enc, _ := defaultEncoder[string]()
	dst := []byte("prefix:")
	got := enc(dst, "k")
	want := append([]byte("prefix:"), PreHash([]byte("k"))...)
	if !bytes.Equal(got, want) {
		t.Errorf("expected append to dst, got %q", got)
	}

	arr, _ := defaultEncoder[[3]byte]()
	got = arr([]byte("p:"), [3]byte{'a', 'b', 'c'})
	want = append([]byte("p:"), PreHash([]byte("abc"))...)
	if !bytes.Equal(got, want) {
		t.Errorf("array encoder: expected append to dst, got %q", got)
	}
}

// =============================================================================
// PreHash
// =============================================================================

func TestPreHash(t *testing.T) {
	in := []byte("hello")
	got := PreHash(in)
	if len(got) != 16 {
		t.Fatalf("PreHash length: expected 16, got %d", len(got))
	}

	h := xxh3.Hash128(in)
	want := make([]byte, 16)
	for i := range 8 {
		want[i] = byte(h.Lo >> (8 * i))
		want[8+i] = byte(h.Hi >> (8 * i))
	}
	if !bytes.Equal(got, want) {
		t.Errorf("PreHash: expected % x, got % x", want, got)
	}

	dst := make([]byte, 16)
	PreHashInPlace(in, dst)
	if !bytes.Equal(dst, got) {
		t.Errorf("PreHashInPlace: expected % x, got % x", got, dst)
	}
}

func TestKeyCodecPreHash(t *testing.T) {
	enc := Encoder[string](rawStringEncoder)
	plain := newKeyCodec(enc, false)
	hashed := newKeyCodec(enc, true)

	raw := plain.appendKey(nil, "some-long-key-with-structure")
	got := hashed.appendKey(nil, "some-long-key-with-structure")
	if !bytes.Equal(got, PreHash(raw)) {
		t.Errorf("pre-hashed key: expected PreHash(encoding), got % x", got)
	}
}

func TestKeySetDigest(t *testing.T) {
	digest := func(keys ...string) xxh3.Uint128 {
		d := newKeySetDigest()
		for _, k := range keys {
			d.add([]byte(k))
		}
		return d.sum()
	}

	if digest("ab", "c") == digest("a", "bc") {
		t.Error("length prefix missing: [ab c] and [a bc] share a digest")
	}
	if digest("a", "b") == digest("b", "a") {
		t.Error("order not covered: [a b] and [b a] share a digest")
	}
	if digest("a", "b") != digest("a", "b") {
		t.Error("digest is not deterministic")
	}
}
