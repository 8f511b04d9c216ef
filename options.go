package perfectmap

import (
	"fmt"
	"math/rand/v2"

	"github.com/go-logr/logr"

	pmerrors "github.com/tamirms/perfectmap/errors"
)

const (
	// DefaultMaxAttempts bounds the construction retry loop. A single trial
	// succeeds with probability around 0.2 for n = 2.08m, so the chance of
	// exhausting 256 attempts on a well-formed key set is negligible.
	DefaultMaxAttempts = 256

	// defaultSeed is the master seed used when neither WithSeed nor
	// WithRandSource is given. Arbitrary; builds are deterministic per seed.
	defaultSeed = 0x9e3779b97f4a7c15
)

// BuildOption is a functional option for configuring construction.
type BuildOption func(*buildConfig)

type buildConfig struct {
	maxAttempts int
	workers     int
	seed        uint64
	source      rand.Source // master source; overrides seed when set
	preHash     bool
	logger      *logr.Logger

	// encoder is an Encoder[K] stored untyped; New asserts it back.
	encoder any
}

func defaultBuildConfig() *buildConfig {
	return &buildConfig{
		maxAttempts: DefaultMaxAttempts,
		workers:     1,
		seed:        defaultSeed,
	}
}

// newBuildConfig applies opts over the defaults and validates the result.
func newBuildConfig(opts []BuildOption) (*buildConfig, error) {
	cfg := defaultBuildConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.maxAttempts <= 0 {
		return nil, fmt.Errorf("%w: max attempts must be positive, got %d", pmerrors.ErrInvalidOption, cfg.maxAttempts)
	}
	if cfg.workers <= 0 {
		return nil, fmt.Errorf("%w: workers must be positive, got %d", pmerrors.ErrInvalidOption, cfg.workers)
	}
	return cfg, nil
}

// masterSource returns the source that attempt seeds are drawn from.
func (c *buildConfig) masterSource() rand.Source {
	if c.source != nil {
		return c.source
	}
	return rand.NewPCG(c.seed, c.seed^defaultSeed)
}

// WithMaxAttempts bounds the number of construction trials.
// Construction fails with ErrConstructionExhausted past the bound.
func WithMaxAttempts(n int) BuildOption {
	return func(c *buildConfig) {
		c.maxAttempts = n
	}
}

// WithWorkers runs up to n construction trials in parallel.
// The solved layout does not depend on n.
func WithWorkers(n int) BuildOption {
	return func(c *buildConfig) {
		c.workers = n
	}
}

// WithSeed sets the seed of the default master random source.
func WithSeed(seed uint64) BuildOption {
	return func(c *buildConfig) {
		c.seed = seed
	}
}

// WithRandSource supplies the master random source explicitly.
// Two values are drawn from it per attempt to seed that attempt's tables.
// The source is only used during construction and only from the calling
// goroutine.
func WithRandSource(src rand.Source) BuildOption {
	return func(c *buildConfig) {
		c.source = src
	}
}

// WithEncoder sets the function that turns keys into hashable bytes.
// It is required for key types without a built-in encoder (see Encoder).
func WithEncoder[K comparable](enc Encoder[K]) BuildOption {
	return func(c *buildConfig) {
		c.encoder = enc
	}
}

// WithPreHash passes every encoded key through xxHash3-128 before it is
// hashed into the key graph. Built-in encoders already emit digests; use it
// with a custom Encoder whose output is raw structured bytes.
func WithPreHash() BuildOption {
	return func(c *buildConfig) {
		c.preHash = true
	}
}

// WithLogger sets the logger used during construction. By default the
// logger is taken from the context passed to New, or discarded.
func WithLogger(l logr.Logger) BuildOption {
	return func(c *buildConfig) {
		c.logger = &l
	}
}
