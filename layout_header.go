package perfectmap

import (
	"encoding/binary"
	"fmt"

	pmerrors "github.com/tamirms/perfectmap/errors"
)

const (
	// layoutMagic is "PMAP" read as a little-endian uint32.
	layoutMagic = uint32(0x50414D50)

	layoutVersion = uint16(0x0001)

	headerSize = 64
	footerSize = 32

	// flagPreHash records that keys were passed through PreHash before
	// being hashed into the key graph.
	flagPreHash = uint16(1 << 0)

	knownFlags = flagPreHash
)

// header is the 64-byte layout header.
//
// Layout:
//
//	Offset  Size  Field        Type
//	0       4     Magic        0x50414D50 ("PMAP")
//	4       2     Version      0x0001
//	6       2     Flags        uint16_le (bit 0: keys pre-hashed)
//	8       8     KnownKeys    uint64_le (m)
//	16      8     Buckets      uint64_le (n = 2m + m/12)
//	24      4     SeedLen      uint32_le (L, entries per seed table)
//	28      4     Attempts     uint32_le (construction attempts used)
//	32      8     KeyDigestLo  uint64_le
//	40      8     KeyDigestHi  uint64_le
//	48      16    Reserved     [16]byte (zero)
//
// The body follows the header: T1 (L x uint64), T2 (L x uint64), G (n x uint32).
type header struct {
	Magic       uint32
	Version     uint16
	Flags       uint16
	KnownKeys   uint64
	Buckets     uint64
	SeedLen     uint32
	Attempts    uint32
	KeyDigestLo uint64
	KeyDigestHi uint64
	Reserved    [16]byte
}

func (h *header) encodeTo(buf []byte) {
	binary.LittleEndian.PutUint32(buf[0:4], h.Magic)
	binary.LittleEndian.PutUint16(buf[4:6], h.Version)
	binary.LittleEndian.PutUint16(buf[6:8], h.Flags)
	binary.LittleEndian.PutUint64(buf[8:16], h.KnownKeys)
	binary.LittleEndian.PutUint64(buf[16:24], h.Buckets)
	binary.LittleEndian.PutUint32(buf[24:28], h.SeedLen)
	binary.LittleEndian.PutUint32(buf[28:32], h.Attempts)
	binary.LittleEndian.PutUint64(buf[32:40], h.KeyDigestLo)
	binary.LittleEndian.PutUint64(buf[40:48], h.KeyDigestHi)
	copy(buf[48:64], h.Reserved[:])
}

// decodeHeader parses and sanity-checks a 64-byte header.
func decodeHeader(buf []byte) (*header, error) {
	if len(buf) < headerSize {
		return nil, pmerrors.ErrTruncatedLayout
	}

	h := &header{
		Magic:       binary.LittleEndian.Uint32(buf[0:4]),
		Version:     binary.LittleEndian.Uint16(buf[4:6]),
		Flags:       binary.LittleEndian.Uint16(buf[6:8]),
		KnownKeys:   binary.LittleEndian.Uint64(buf[8:16]),
		Buckets:     binary.LittleEndian.Uint64(buf[16:24]),
		SeedLen:     binary.LittleEndian.Uint32(buf[24:28]),
		Attempts:    binary.LittleEndian.Uint32(buf[28:32]),
		KeyDigestLo: binary.LittleEndian.Uint64(buf[32:40]),
		KeyDigestHi: binary.LittleEndian.Uint64(buf[40:48]),
	}
	copy(h.Reserved[:], buf[48:64])

	if h.Magic != layoutMagic {
		return nil, pmerrors.ErrInvalidMagic
	}
	if h.Version != layoutVersion {
		return nil, pmerrors.ErrInvalidVersion
	}
	if h.Flags&^knownFlags != 0 {
		return nil, fmt.Errorf("%w: unknown flags %#x", pmerrors.ErrCorruptedLayout, h.Flags)
	}
	if h.KnownKeys > MaxKnownKeys {
		return nil, fmt.Errorf("%w: %d known keys", pmerrors.ErrCorruptedLayout, h.KnownKeys)
	}
	if h.Buckets != bucketCount(int(h.KnownKeys)) {
		return nil, fmt.Errorf("%w: %d buckets for %d keys", pmerrors.ErrCorruptedLayout, h.Buckets, h.KnownKeys)
	}
	return h, nil
}

// bodySize returns the byte length of the seed tables and displacements.
func (h *header) bodySize() int64 {
	return 16*int64(h.SeedLen) + 4*int64(h.Buckets)
}

// footer is the 32-byte layout trailer.
//
//	Offset  Size  Field     Type
//	0       8     BodyHash  uint64_le (xxHash64 of header and body)
//	8       24    Reserved  [24]byte (zero)
type footer struct {
	BodyHash uint64
	Reserved [24]byte
}

func (f *footer) encodeTo(buf []byte) {
	binary.LittleEndian.PutUint64(buf[0:8], f.BodyHash)
	copy(buf[8:32], f.Reserved[:])
}

func decodeFooter(buf []byte) (*footer, error) {
	if len(buf) < footerSize {
		return nil, pmerrors.ErrTruncatedLayout
	}
	f := &footer{BodyHash: binary.LittleEndian.Uint64(buf[0:8])}
	copy(f.Reserved[:], buf[8:32])
	return f, nil
}
