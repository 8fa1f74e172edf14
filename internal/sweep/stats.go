package sweep

import (
	"sort"
	"time"

	"carrymap/internal/core"
	"carrymap/internal/trajectory"
)

// Anomaly is a seed that did not settle: it entered a cycle or blew a cap.
type Anomaly struct {
	Seed   uint64
	Kind   string // terminal outcome name
	Detail string
}

// Result aggregates one sweep. Worker partials combine through Merge; the
// combined outcome is the same for every worker count and merge order, with
// witness ties broken toward the smaller seed.
type Result struct {
	X       uint64
	Lo, Hi  uint64
	Workers int
	Rule    core.StopRule
	Elapsed time.Duration

	Processed uint64 // seeds walked to a terminal
	Verified  uint64 // seeds that settled

	MaxStop      uint64 // largest standard stopping time seen
	MaxStopSeed  uint64
	MaxPairs     int // widest value met across all orbits, in pairs
	MaxPairsSeed uint64

	Stats core.GpkStats
	DHist map[int]uint64

	Anomalies []Anomaly
	Cancelled bool
}

func newResult() *Result {
	return &Result{DHist: make(map[int]uint64)}
}

// fold adds one walked seed. Seeds arrive in ascending order within a
// worker, so strict comparisons keep the smallest witness on ties.
func (r *Result) fold(n uint64, res trajectory.Result) {
	r.Processed++
	if res.Outcome == trajectory.Converged {
		r.Verified++
		if res.StoppingTime > r.MaxStop {
			r.MaxStop = res.StoppingTime
			r.MaxStopSeed = n
		}
	} else {
		r.Anomalies = append(r.Anomalies, Anomaly{Seed: n, Kind: res.Outcome.String(), Detail: res.Detail})
	}
	if res.MaxPairs > r.MaxPairs {
		r.MaxPairs = res.MaxPairs
		r.MaxPairsSeed = n
	}
}

// Merge folds o into r. Commutative and associative over the observable
// result once the anomaly list is sorted.
func (r *Result) Merge(o *Result) {
	r.Processed += o.Processed
	r.Verified += o.Verified
	if o.MaxStop > r.MaxStop || (o.MaxStop == r.MaxStop && o.MaxStop > 0 && o.MaxStopSeed < r.MaxStopSeed) {
		r.MaxStop, r.MaxStopSeed = o.MaxStop, o.MaxStopSeed
	}
	if o.MaxPairs > r.MaxPairs || (o.MaxPairs == r.MaxPairs && o.MaxPairs > 0 && o.MaxPairsSeed < r.MaxPairsSeed) {
		r.MaxPairs, r.MaxPairsSeed = o.MaxPairs, o.MaxPairsSeed
	}
	r.Stats.Merge(&o.Stats)
	for d, c := range o.DHist {
		r.DHist[d] += c
	}
	r.Anomalies = append(r.Anomalies, o.Anomalies...)
	r.Cancelled = r.Cancelled || o.Cancelled
}

func (r *Result) sortAnomalies() {
	sort.Slice(r.Anomalies, func(i, j int) bool { return r.Anomalies[i].Seed < r.Anomalies[j].Seed })
}
