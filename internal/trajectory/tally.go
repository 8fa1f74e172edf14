package trajectory

import "carrymap/internal/core"

// Tally accumulates per-step aggregates across many seeds: classification
// counts plus the histogram of shift amounts. Each walked seed lands in a
// tally wholly or not at all.
type Tally struct {
	Stats core.GpkStats
	DHist map[int]uint64
}

func NewTally() *Tally {
	return &Tally{DHist: make(map[int]uint64)}
}

func (t *Tally) addD(d int) {
	t.DHist[d]++
}

// Merge folds o into t. Commutative and associative, so per-worker tallies
// reduce to the same totals in any order.
func (t *Tally) Merge(o *Tally) {
	t.Stats.Merge(&o.Stats)
	for d, c := range o.DHist {
		t.DHist[d] += c
	}
}

// EqualHist reports whether two shift histograms hold the same counts.
func EqualHist(a, b map[int]uint64) bool {
	if len(a) != len(b) {
		return false
	}
	for d, c := range a {
		if b[d] != c {
			return false
		}
	}
	return true
}
