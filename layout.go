package perfectmap

import (
	"encoding/binary"
	"fmt"

	"github.com/cespare/xxhash/v2"

	pmerrors "github.com/tamirms/perfectmap/errors"
)

// KeyDigest is the xxHash3-128 fingerprint of an ordered, encoded key set.
type KeyDigest struct {
	Lo, Hi uint64
}

// Layout is the solved construction of a perfect table: the two seed tables
// and the displacement of every bucket. Together with the key set it was
// built for, it determines the table completely.
//
// Binary form (little endian):
//
//	[Header 64B][T1 L*8B][T2 L*8B][G n*4B][Footer 32B]
type Layout struct {
	KnownKeys uint64
	Buckets   uint64
	Attempts  uint32
	PreHash   bool
	KeyDigest KeyDigest

	T1, T2 []uint64
	G      []uint32
}

// validate checks the internal consistency of l.
func (l *Layout) validate() error {
	if l.KnownKeys > MaxKnownKeys {
		return fmt.Errorf("%w: %d known keys", pmerrors.ErrCorruptedLayout, l.KnownKeys)
	}
	if l.Buckets != bucketCount(int(l.KnownKeys)) {
		return fmt.Errorf("%w: %d buckets for %d keys", pmerrors.ErrCorruptedLayout, l.Buckets, l.KnownKeys)
	}
	if len(l.T1) != len(l.T2) {
		return fmt.Errorf("%w: seed tables of length %d and %d", pmerrors.ErrCorruptedLayout, len(l.T1), len(l.T2))
	}
	if uint64(len(l.G)) != l.Buckets {
		return fmt.Errorf("%w: %d displacements for %d buckets", pmerrors.ErrCorruptedLayout, len(l.G), l.Buckets)
	}
	for i := range l.T1 {
		if l.T1[i] >= l.Buckets || l.T2[i] >= l.Buckets {
			return fmt.Errorf("%w: seed table entry %d out of range", pmerrors.ErrCorruptedLayout, i)
		}
	}
	for v, d := range l.G {
		if uint64(d) >= l.KnownKeys {
			return fmt.Errorf("%w: displacement of bucket %d out of range", pmerrors.ErrCorruptedLayout, v)
		}
	}
	return nil
}

func (l *Layout) header() header {
	h := header{
		Magic:       layoutMagic,
		Version:     layoutVersion,
		KnownKeys:   l.KnownKeys,
		Buckets:     l.Buckets,
		SeedLen:     uint32(len(l.T1)),
		Attempts:    l.Attempts,
		KeyDigestLo: l.KeyDigest.Lo,
		KeyDigestHi: l.KeyDigest.Hi,
	}
	if l.PreHash {
		h.Flags |= flagPreHash
	}
	return h
}

// encodedSize returns the length of the binary form of l.
func (l *Layout) encodedSize() int {
	return headerSize + 16*len(l.T1) + 4*len(l.G) + footerSize
}

// encodeTo writes the binary form of l into buf, which must be exactly
// encodedSize bytes.
func (l *Layout) encodeTo(buf []byte) {
	hdr := l.header()
	hdr.encodeTo(buf[:headerSize])

	off := headerSize
	for _, t := range l.T1 {
		binary.LittleEndian.PutUint64(buf[off:], t)
		off += 8
	}
	for _, t := range l.T2 {
		binary.LittleEndian.PutUint64(buf[off:], t)
		off += 8
	}
	for _, d := range l.G {
		binary.LittleEndian.PutUint32(buf[off:], d)
		off += 4
	}

	ftr := footer{BodyHash: xxhash.Sum64(buf[:off])}
	ftr.encodeTo(buf[off : off+footerSize])
}

// MarshalBinary encodes l.
func (l *Layout) MarshalBinary() ([]byte, error) {
	if err := l.validate(); err != nil {
		return nil, err
	}
	buf := make([]byte, l.encodedSize())
	l.encodeTo(buf)
	return buf, nil
}

// UnmarshalBinary decodes data into l. l does not retain data.
func (l *Layout) UnmarshalBinary(data []byte) error {
	dec, err := decodeLayout(data)
	if err != nil {
		return err
	}
	*l = *dec
	return nil
}

// UnmarshalLayout decodes a layout produced by MarshalBinary or WriteFile.
func UnmarshalLayout(data []byte) (*Layout, error) {
	return decodeLayout(data)
}

// decodeLayout parses, checksums and validates data. The returned Layout
// holds copies, so data may be unmapped afterwards.
func decodeLayout(data []byte) (*Layout, error) {
	if len(data) < headerSize+footerSize {
		return nil, pmerrors.ErrTruncatedLayout
	}
	hdr, err := decodeHeader(data[:headerSize])
	if err != nil {
		return nil, err
	}

	bodyEnd := int64(headerSize) + hdr.bodySize()
	total := bodyEnd + footerSize
	switch {
	case int64(len(data)) < total:
		return nil, fmt.Errorf("%w: %d bytes, want %d", pmerrors.ErrTruncatedLayout, len(data), total)
	case int64(len(data)) > total:
		return nil, fmt.Errorf("%w: %d trailing bytes", pmerrors.ErrCorruptedLayout, int64(len(data))-total)
	}

	ftr, err := decodeFooter(data[bodyEnd:])
	if err != nil {
		return nil, err
	}
	if xxhash.Sum64(data[:bodyEnd]) != ftr.BodyHash {
		return nil, pmerrors.ErrChecksumFailed
	}

	l := &Layout{
		KnownKeys: hdr.KnownKeys,
		Buckets:   hdr.Buckets,
		Attempts:  hdr.Attempts,
		PreHash:   hdr.Flags&flagPreHash != 0,
		KeyDigest: KeyDigest{Lo: hdr.KeyDigestLo, Hi: hdr.KeyDigestHi},
		T1:        make([]uint64, hdr.SeedLen),
		T2:        make([]uint64, hdr.SeedLen),
		G:         make([]uint32, hdr.Buckets),
	}
	off := headerSize
	for i := range l.T1 {
		l.T1[i] = binary.LittleEndian.Uint64(data[off:])
		off += 8
	}
	for i := range l.T2 {
		l.T2[i] = binary.LittleEndian.Uint64(data[off:])
		off += 8
	}
	for i := range l.G {
		l.G[i] = binary.LittleEndian.Uint32(data[off:])
		off += 4
	}

	if err := l.validate(); err != nil {
		return nil, err
	}
	return l, nil
}
