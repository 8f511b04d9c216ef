package perfectmap

import (
	"context"
	"fmt"

	"github.com/go-logr/logr"
	"golang.org/x/sync/errgroup"
)

// searchParallel runs trials in batches of cfg.workers goroutines.
//
// Seeds are drawn from the master source in attempt order on the calling
// goroutine before a batch starts, and the lowest successful attempt of a
// batch wins. Attempt a therefore uses the same tables it would use in
// searchSerial, and both searches return the same result.
func searchParallel(ctx context.Context, in *trialInput, cfg *buildConfig, log logr.Logger) (trialResult, error) {
	src := cfg.masterSource()
	results := make([]trialResult, cfg.workers)

	for next := 0; next < cfg.maxAttempts; {
		if err := ctx.Err(); err != nil {
			return trialResult{}, err
		}

		batch := min(cfg.workers, cfg.maxAttempts-next)
		seeds := make([]trialSeed, batch)
		for i := range seeds {
			seeds[i] = drawSeed(src, next+i)
		}

		g, gctx := errgroup.WithContext(ctx)
		for i, seed := range seeds {
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}
				res, err := runTrial(in, seed)
				if err != nil {
					return fmt.Errorf("attempt %d: %w", seed.attempt, err)
				}
				results[i] = res
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return trialResult{}, err
		}

		for _, res := range results[:batch] {
			if res.verdict == verdictOK {
				return res, nil
			}
			logFailedTrial(log, res, len(in.keys))
		}
		next += batch
	}
	return trialResult{}, exhausted(cfg.maxAttempts)
}
