package perfectmap

import (
	"encoding/binary"
	"math"
	"reflect"
	"sync"
)

// Encoder appends the byte encoding of key to dst and returns the extended
// slice. Two keys that are == must encode identically; two keys that are !=
// should encode differently, or construction will exhaust its attempts.
//
// Built-in encoders exist for every type whose underlying type is a string,
// bool, integer, float, or byte array. Each one emits the xxHash3-128 digest
// (16 bytes) of the key's raw bytes: the string or array contents, or the
// 8-byte little-endian value of a bool, integer, or float.
//
// The key-graph hash is linear in the key bytes. Two raw encodings of equal
// length that differ in a single byte by a multiple of the bucket count land
// on the same bucket pair under every seed table, and construction can never
// succeed. Custom encoders should therefore emit well-mixed bytes, either by
// calling PreHash themselves or by building with WithPreHash.
type Encoder[K comparable] func(dst []byte, key K) []byte

// encoderFor resolves the encoder for K from cfg, falling back to the
// built-in one.
func encoderFor[K comparable](cfg *buildConfig) (Encoder[K], bool) {
	if cfg.encoder != nil {
		// Set for a different key type when the assertion fails.
		enc, ok := cfg.encoder.(Encoder[K])
		return enc, ok
	}
	return defaultEncoder[K]()
}

// defaultEncoder returns the built-in encoder for K.
func defaultEncoder[K comparable]() (Encoder[K], bool) {
	var zero K
	switch any(zero).(type) {
	case string:
		return func(dst []byte, key K) []byte {
			return appendStringHash(dst, any(key).(string))
		}, true
	case int:
		return func(dst []byte, key K) []byte {
			return appendUint64(dst, uint64(any(key).(int)))
		}, true
	case int64:
		return func(dst []byte, key K) []byte {
			return appendUint64(dst, uint64(any(key).(int64)))
		}, true
	case uint64:
		return func(dst []byte, key K) []byte {
			return appendUint64(dst, any(key).(uint64))
		}, true
	case uint32:
		return func(dst []byte, key K) []byte {
			return appendUint64(dst, uint64(any(key).(uint32)))
		}, true
	}

	// Named types and the remaining kinds go through reflection.
	t := reflect.TypeFor[K]()
	switch t.Kind() {
	case reflect.String:
		return func(dst []byte, key K) []byte {
			return appendStringHash(dst, reflect.ValueOf(key).String())
		}, true
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return func(dst []byte, key K) []byte {
			return appendUint64(dst, uint64(reflect.ValueOf(key).Int()))
		}, true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return func(dst []byte, key K) []byte {
			return appendUint64(dst, reflect.ValueOf(key).Uint())
		}, true
	case reflect.Float32, reflect.Float64:
		return func(dst []byte, key K) []byte {
			return appendFloat(dst, reflect.ValueOf(key).Float())
		}, true
	case reflect.Bool:
		return func(dst []byte, key K) []byte {
			var v uint64
			if reflect.ValueOf(key).Bool() {
				v = 1
			}
			return appendUint64(dst, v)
		}, true
	case reflect.Array:
		if t.Elem().Kind() != reflect.Uint8 {
			return nil, false
		}
		return func(dst []byte, key K) []byte {
			v := reflect.ValueOf(key)
			start := len(dst)
			for i := 0; i < v.Len(); i++ {
				dst = append(dst, byte(v.Index(i).Uint()))
			}
			// The digest is computed before it overwrites the raw bytes.
			return appendPreHash(dst[:start], dst[start:])
		}, true
	}
	return nil, false
}

func appendUint64(dst []byte, v uint64) []byte {
	var raw [8]byte
	binary.LittleEndian.PutUint64(raw[:], v)
	return appendPreHash(dst, raw[:])
}

func appendFloat(dst []byte, f float64) []byte {
	if f == 0 {
		f = 0 // -0.0 == 0.0, so they must share an encoding
	}
	return appendUint64(dst, math.Float64bits(f))
}

// keyCodec turns keys into the bytes fed to the seed-table hash.
// It is safe for concurrent use.
type keyCodec[K comparable] struct {
	encode  Encoder[K]
	preHash bool
	bufs    sync.Pool // *[]byte scratch buffers
}

func newKeyCodec[K comparable](enc Encoder[K], preHash bool) *keyCodec[K] {
	return &keyCodec[K]{
		encode:  enc,
		preHash: preHash,
		bufs: sync.Pool{
			New: func() any {
				b := make([]byte, 0, 64)
				return &b
			},
		},
	}
}

// appendKey appends the final hash input for key to dst.
func (c *keyCodec[K]) appendKey(dst []byte, key K) []byte {
	if !c.preHash {
		return c.encode(dst, key)
	}
	bp := c.bufs.Get().(*[]byte)
	raw := c.encode((*bp)[:0], key)
	dst = appendPreHash(dst, raw)
	*bp = raw
	c.bufs.Put(bp)
	return dst
}
