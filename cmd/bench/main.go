// Bench measures perfectmap construction time, lookup latency for known and
// unknown keys, and layout save/restore time.
//
// Usage:
//
//	go run ./cmd/bench -keys 1000000 -workers 4 -v 1
//
// Flags:
//
//	-keys        Number of known keys (default: 1,000,000)
//	-unknown     Number of unknown keys inserted into the backup (default: 10,000)
//	-workers     Parallel construction trials (default: 1)
//	-attempts    Maximum construction attempts (default: 256)
//	-seed        Master seed (default: 1)
//	-layout      Save the layout to this path and restore from it (default: none)
//	-cpuprofile  Write a CPU profile of the build phase
//	-v           Log verbosity: 0 info, 1 construction summary, 2 every attempt
package main

import (
	"context"
	"encoding/hex"
	"flag"
	"math/rand/v2"
	"os"
	"runtime/pprof"
	"time"

	"github.com/go-logr/logr"
	"github.com/go-logr/stdr"
	"github.com/spaolacci/murmur3"

	"github.com/tamirms/perfectmap"
)

const numQueries = 1_000_000

// getLogger returns a stdr logger with verbosity v, clamped to [0, 2].
func getLogger(v int) logr.Logger {
	logger := stdr.New(nil)
	if v > 2 || v < 0 {
		logger.Info("invalid verbosity, using 0", "v", v)
		v = 0
	}
	stdr.SetVerbosity(v)
	return logger
}

func exitOnErr(logger logr.Logger, err error, msg string) {
	if err != nil {
		logger.Error(err, msg)
		os.Exit(1)
	}
}

// genKeys derives n distinct hex keys from murmur3 of their index.
func genKeys(n int, seed uint32) []string {
	keys := make([]string, n)
	var buf [8]byte
	for i := range keys {
		for j := range buf {
			buf[j] = byte(uint64(i) >> (8 * j))
		}
		h1, h2 := murmur3.Sum128WithSeed(buf[:], seed)
		var sum [16]byte
		for j := range 8 {
			sum[j] = byte(h1 >> (8 * j))
			sum[8+j] = byte(h2 >> (8 * j))
		}
		keys[i] = hex.EncodeToString(sum[:])
	}
	return keys
}

func main() {
	keysFlag := flag.Int("keys", 1_000_000, "number of known keys")
	unknownFlag := flag.Int("unknown", 10_000, "number of unknown keys inserted into the backup")
	workersFlag := flag.Int("workers", 1, "parallel construction trials")
	attemptsFlag := flag.Int("attempts", perfectmap.DefaultMaxAttempts, "maximum construction attempts")
	seedFlag := flag.Uint64("seed", 1, "master seed")
	layoutFlag := flag.String("layout", "", "save the layout to this path and restore from it")
	cpuprofile := flag.String("cpuprofile", "", "write cpu profile to file (build phase only)")
	verbosity := flag.Int("v", 0, "log verbosity (0-2)")
	flag.Parse()

	logger := getLogger(*verbosity)
	ctx := logr.NewContext(context.Background(), logger)
	if *keysFlag <= 0 {
		flag.Usage()
		os.Exit(2)
	}

	logger.Info("generating keys", "known", *keysFlag, "unknown", *unknownFlag)
	known := genKeys(*keysFlag, 0x1234)
	unknown := genKeys(*unknownFlag, 0x5678)

	opts := []perfectmap.BuildOption{
		perfectmap.WithWorkers(*workersFlag),
		perfectmap.WithMaxAttempts(*attemptsFlag),
		perfectmap.WithSeed(*seedFlag),
	}

	if *cpuprofile != "" {
		f, err := os.Create(*cpuprofile)
		exitOnErr(logger, err, "could not create CPU profile")
		defer func() { _ = f.Close() }()
		exitOnErr(logger, pprof.StartCPUProfile(f), "could not start CPU profile")
	}

	values := make([]uint64, len(known))
	for i := range values {
		values[i] = uint64(i)
	}
	buildStart := time.Now()
	m, err := perfectmap.NewWithValues(ctx, known, values, opts...)
	buildDuration := time.Since(buildStart)
	if *cpuprofile != "" {
		pprof.StopCPUProfile()
	}
	exitOnErr(logger, err, "construction failed")

	insertStart := time.Now()
	for i, k := range unknown {
		m.Insert(k, uint64(i))
	}
	insertDuration := time.Since(insertStart)

	builtin := make(map[string]uint64, len(known))
	for i, k := range known {
		builtin[k] = uint64(i)
	}

	order := make([]int, numQueries)
	for i := range order {
		order[i] = rand.IntN(len(known))
	}

	var sink uint64
	knownStart := time.Now()
	for _, i := range order {
		v, _ := m.Get(known[i])
		sink += v
	}
	knownDuration := time.Since(knownStart)

	builtinStart := time.Now()
	for _, i := range order {
		sink += builtin[known[i]]
	}
	builtinDuration := time.Since(builtinStart)

	var unknownDuration time.Duration
	if len(unknown) > 0 {
		unknownStart := time.Now()
		for i := range numQueries {
			v, _ := m.Get(unknown[i%len(unknown)])
			sink += v
		}
		unknownDuration = time.Since(unknownStart)
	}

	var saveDuration, restoreDuration time.Duration
	if *layoutFlag != "" {
		saveStart := time.Now()
		exitOnErr(logger, m.Layout().WriteFile(*layoutFlag), "write layout")
		saveDuration = time.Since(saveStart)

		restoreStart := time.Now()
		layout, err := perfectmap.ReadLayoutFile(*layoutFlag)
		exitOnErr(logger, err, "read layout")
		_, err = perfectmap.Restore[string, uint64](ctx, layout, known)
		exitOnErr(logger, err, "restore")
		restoreDuration = time.Since(restoreStart)
	}

	stats := m.Stats()
	perQuery := func(d time.Duration) float64 {
		return float64(d.Nanoseconds()) / numQueries
	}

	logger.Info("benchmark complete",
		"knownKeys", stats.KnownKeys,
		"buckets", stats.Buckets,
		"seedLen", stats.SeedLen,
		"attempts", stats.Attempts,
		"backupLen", stats.BackupLen,
		"buildSec", buildDuration.Seconds(),
		"buildMKeysPerSec", float64(stats.KnownKeys)/buildDuration.Seconds()/1_000_000,
		"backupInsertSec", insertDuration.Seconds(),
		"knownGetNs", perQuery(knownDuration),
		"builtinGetNs", perQuery(builtinDuration),
		"unknownGetNs", perQuery(unknownDuration),
		"layoutSaveSec", saveDuration.Seconds(),
		"layoutRestoreSec", restoreDuration.Seconds(),
		"checksum", sink)
}
