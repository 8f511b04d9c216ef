package perfectmap

import (
	"encoding/binary"

	"github.com/zeebo/xxh3"
)

// PreHash applies xxHash3-128 to b, returning 16 bytes.
//
// The seed-table hash sums t[i]*b[i] over the key bytes, so keys that differ
// in only a few positions produce bucket pairs that differ by only a few
// table entries, and keys whose difference is a multiple of the bucket count
// in every position collide under every table. The built-in encoders emit
// PreHash output for that reason.
//
// PreHash is what WithPreHash applies to every encoded key. It is exported
// so custom encoders can pre-hash part of their output:
//
//	enc := func(dst []byte, r Record) []byte {
//	    var raw [12]byte
//	    binary.LittleEndian.PutUint32(raw[0:4], r.Shard)
//	    binary.LittleEndian.PutUint64(raw[4:12], r.ID)
//	    return append(dst, perfectmap.PreHash(raw[:])...)
//	}
func PreHash(b []byte) []byte {
	return appendPreHash(make([]byte, 0, 16), b)
}

// PreHashInPlace applies xxHash3-128 to b, writing the result to dst.
// dst must be at least 16 bytes.
func PreHashInPlace(b []byte, dst []byte) {
	h := xxh3.Hash128(b)
	binary.LittleEndian.PutUint64(dst[0:8], h.Lo)
	binary.LittleEndian.PutUint64(dst[8:16], h.Hi)
}

func appendPreHash(dst, b []byte) []byte {
	h := xxh3.Hash128(b)
	dst = binary.LittleEndian.AppendUint64(dst, h.Lo)
	return binary.LittleEndian.AppendUint64(dst, h.Hi)
}

// appendStringHash is appendPreHash for a string, without copying it.
func appendStringHash(dst []byte, s string) []byte {
	h := xxh3.HashString128(s)
	dst = binary.LittleEndian.AppendUint64(dst, h.Lo)
	return binary.LittleEndian.AppendUint64(dst, h.Hi)
}

// keySetDigest fingerprints an ordered sequence of encoded keys. Each key is
// length-prefixed so that ["ab", "c"] and ["a", "bc"] differ.
type keySetDigest struct {
	h   *xxh3.Hasher
	buf [binary.MaxVarintLen64]byte
}

func newKeySetDigest() *keySetDigest {
	return &keySetDigest{h: xxh3.New()}
}

func (d *keySetDigest) add(key []byte) {
	n := binary.PutUvarint(d.buf[:], uint64(len(key)))
	_, _ = d.h.Write(d.buf[:n])
	_, _ = d.h.Write(key)
}

func (d *keySetDigest) sum() xxh3.Uint128 {
	return d.h.Sum128()
}
