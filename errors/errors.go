// Package errors defines all exported error sentinels for the perfectmap library.
//
// This is the single source of truth for error values. The top-level
// perfectmap package and the internal construction packages import from here,
// so errors.Is checks work across package boundaries.
package errors

import "errors"

// Construction errors
var (
	ErrConstructionExhausted = errors.New("perfectmap: no acyclic key graph found within the attempt limit")
	ErrDuplicateKey          = errors.New("perfectmap: duplicate key in known key set")
	ErrTooManyKeys           = errors.New("perfectmap: known key count exceeds maximum (2^30)")
	ErrUnsupportedKey        = errors.New("perfectmap: no byte encoder for key type")
	ErrInvalidOption         = errors.New("perfectmap: invalid build option")
	ErrValueCountMismatch    = errors.New("perfectmap: value count does not match key count")
)

// Solver errors. Both indicate a bug rather than bad input.
var (
	ErrSlotCollision = errors.New("perfectmap: displacement assignment is not a bijection")
	ErrCyclicGraph   = errors.New("perfectmap: key graph is not acyclic")
)

// Graph errors
var (
	ErrDuplicateEdge    = errors.New("perfectmap: duplicate edge in key graph")
	ErrVertexOutOfRange = errors.New("perfectmap: vertex out of range")
)

// Layout errors
var (
	ErrInvalidMagic    = errors.New("perfectmap: invalid layout magic number")
	ErrInvalidVersion  = errors.New("perfectmap: unsupported layout version")
	ErrTruncatedLayout = errors.New("perfectmap: layout data is truncated")
	ErrChecksumFailed  = errors.New("perfectmap: layout checksum verification failed")
	ErrCorruptedLayout = errors.New("perfectmap: layout data is corrupted")
	ErrKeySetMismatch  = errors.New("perfectmap: key set does not match layout")
)
