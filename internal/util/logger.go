package util

import (
	"log"
	"sync"
	"sync/atomic"
	"time"
)

// Log logs a message if verbose is true.
func Log(verbose bool, format string, args ...any) {
	if verbose {
		log.Printf(format, args...)
	}
}

// ProgressLogger prints percent progress for long runs. Add is safe for
// concurrent use from many workers; output is throttled to percent steps.
type ProgressLogger struct {
	total   uint64
	step    uint64
	prefix  string
	enabled bool
	start   time.Time

	done atomic.Uint64
	next atomic.Uint64

	mu   sync.Mutex
	last time.Time
}

// NewProgressLogger creates a progress logger over total events, printing
// at 5% steps (1% once totals reach a hundred million).
func NewProgressLogger(total uint64, prefix string, enable bool) *ProgressLogger {
	pl := &ProgressLogger{
		total:   total,
		prefix:  prefix,
		enabled: enable,
		start:   time.Now(),
	}
	frac := uint64(20)
	if total >= 100_000_000 {
		frac = 100
	}
	pl.step = (total + frac - 1) / frac
	if pl.step == 0 {
		pl.step = 1
	}
	pl.next.Store(pl.step)
	return pl
}

// Add records n completed events and prints when a percent step is crossed.
// The count advances even when printing is disabled.
func (pl *ProgressLogger) Add(n uint64) {
	done := pl.done.Add(n)
	if !pl.enabled {
		return
	}
	next := pl.next.Load()
	for done >= next {
		if pl.next.CompareAndSwap(next, next+pl.step) {
			pl.print(done, false)
			return
		}
		next = pl.next.Load()
	}
}

// Done returns the events recorded so far.
func (pl *ProgressLogger) Done() uint64 { return pl.done.Load() }

// Finalize prints the closing line with the elapsed time. On a cancelled
// run the printed count is what actually completed, not the total.
func (pl *ProgressLogger) Finalize() {
	if !pl.enabled {
		return
	}
	pl.print(pl.done.Load(), true)
}

func (pl *ProgressLogger) print(done uint64, final bool) {
	pl.mu.Lock()
	defer pl.mu.Unlock()
	now := time.Now()
	if !final && now.Sub(pl.last) < 100*time.Millisecond {
		return
	}
	pl.last = now
	perc := uint64(0)
	if pl.total > 0 {
		perc = 100 * done / pl.total
	}
	if final {
		log.Printf("%s%d%% (%d/%d, %.2fs)", pl.prefix, perc, done, pl.total, time.Since(pl.start).Seconds())
		return
	}
	log.Printf("%s%d%% (%d/%d)", pl.prefix, perc, done, pl.total)
}
