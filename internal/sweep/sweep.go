package sweep

import (
	"context"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"carrymap/internal/core"
	"carrymap/internal/trajectory"
	"carrymap/internal/util"
)

// Run verifies every odd seed in the half-open range [lo, hi), one worker
// per partition span. progress, when non-nil, receives cumulative completed
// counts and may be called concurrently. Cancellation through ctx stops
// workers at the next sub-batch boundary; the partial result comes back
// with Cancelled set and covers exactly the seeds that finished.
func Run(ctx context.Context, lo, hi uint64, cfg core.SweepConfig, progress func(done uint64)) (*Result, error) {
	m, err := core.NewMapConstant(cfg.X)
	if err != nil {
		return nil, err
	}
	if cfg.MaxSteps == 0 {
		cfg.MaxSteps = core.DefaultMaxSteps
	}
	spans, err := Partition(lo, hi, cfg.EffectiveWorkers())
	if err != nil {
		return nil, err
	}

	total := OddCount(lo, hi)
	util.Log(cfg.Verbose, "sweep: [%d, %d) under %dn+1, %d seeds across %d workers",
		lo, hi, cfg.X, total, len(spans))
	start := time.Now()
	pl := util.NewProgressLogger(total, "sweep: ", cfg.Verbose)
	var done atomic.Uint64
	report := func(batch uint64) {
		pl.Add(batch)
		if progress != nil {
			progress(done.Add(batch))
		}
	}

	parts := make([]*Result, len(spans))
	g, gctx := errgroup.WithContext(ctx)
	for i := range spans {
		i := i
		g.Go(func() error {
			parts[i] = runSpan(gctx, spans[i], m, cfg, report)
			return nil
		})
	}
	_ = g.Wait() // workers stop, they never fail

	res := newResult()
	res.X, res.Lo, res.Hi = cfg.X, lo, hi
	res.Workers = len(spans)
	res.Rule = cfg.Rule
	for _, p := range parts {
		res.Merge(p)
	}
	res.sortAnomalies()
	res.Elapsed = time.Since(start)
	pl.Finalize()
	util.Log(cfg.Verbose, "sweep: %d verified, %d anomalies, cancelled=%v in %s",
		res.Verified, len(res.Anomalies), res.Cancelled, res.Elapsed)
	return res, nil
}

// runSpan walks one span's seeds in ascending order, checking for
// cancellation between sub-batches. A seed's contribution to the partial
// is all-or-nothing.
func runSpan(ctx context.Context, sp Span, m core.MapConstant, cfg core.SweepConfig, report func(batch uint64)) *Result {
	w := trajectory.NewWalker(m, cfg)
	part := newResult()
	var tally *trajectory.Tally
	if cfg.CollectGpk {
		tally = trajectory.NewTally()
	}

	finish := func() *Result {
		if tally != nil {
			part.Stats = tally.Stats
			for d, c := range tally.DHist {
				part.DHist[d] += c
			}
		}
		return part
	}

	batchSize := cfg.Batch
	if batchSize == 0 {
		batchSize = core.ProgressBatch
	}
	var batch uint64
	for n := sp.Lo; n < sp.Hi; n += 2 {
		if batch >= batchSize {
			report(batch)
			batch = 0
			select {
			case <-ctx.Done():
				part.Cancelled = true
				return finish()
			default:
			}
		}
		part.fold(n, w.Seed(n, tally))
		batch++
	}
	if batch > 0 {
		report(batch)
	}
	return finish()
}
